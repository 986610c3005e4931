// Package posture classifies a hand's landmarks into a finger-state vector.
package posture

import (
	"fmt"
	"strings"

	"github.com/ayusman/phantomtouch/internal/detector"
)

// Digit positions within a FingerState.
const (
	Index = iota
	Middle
	Ring
	Pinky
	Thumb
	NumDigits
)

// NumStates is the size of the finger-state space.
const NumStates = 1 << NumDigits

// FingerState records which digits are raised, ordered
// [index, middle, ring, pinky, thumb].
type FingerState [NumDigits]bool

// Canonical postures.
var (
	PointingIndex = FingerState{true, false, false, false, false}
	TwoFingers    = FingerState{true, true, false, false, false}
	FourFingers   = FingerState{true, true, true, true, false}
	OpenHand      = FingerState{true, true, true, true, true}
	MiddleOnly    = FingerState{false, true, false, false, false}
)

// fingerTips are the tips compared against the joint two positions below them.
var fingerTips = [4]int{detector.IndexTip, detector.MiddleTip, detector.RingTip, detector.PinkyTip}

// Classify returns the raw single-frame finger state for a hand.
//
// A finger is up when its tip is higher on screen (smaller y) than the PIP
// joint two indices below it. The thumb extends sideways, so it is up when its
// tip is left of the thumb MCP (smaller x). The thumb rule only holds while
// the hand is upright with the palm facing the camera; rotated or back-facing
// hands misreport the thumb.
func Classify(h *detector.HandLandmarks) FingerState {
	var fs FingerState
	for i, tip := range fingerTips {
		fs[i] = h.Points[tip].Y < h.Points[tip-2].Y
	}
	fs[Thumb] = h.Points[detector.ThumbTip].X < h.Points[detector.ThumbTip-2].X
	return fs
}

// Code packs the state into 0..31, index as the most significant bit, so the
// code reads the same as String in binary.
func (fs FingerState) Code() uint8 {
	var c uint8
	for _, up := range fs {
		c <<= 1
		if up {
			c |= 1
		}
	}
	return c
}

// FromCode is the inverse of Code. Bits above the fifth are ignored.
func FromCode(c uint8) FingerState {
	var fs FingerState
	for i := NumDigits - 1; i >= 0; i-- {
		fs[i] = c&1 == 1
		c >>= 1
	}
	return fs
}

// String renders the state as five 0/1 characters, e.g. "10000".
func (fs FingerState) String() string {
	var b strings.Builder
	b.Grow(NumDigits)
	for _, up := range fs {
		if up {
			b.WriteByte('1')
		} else {
			b.WriteByte('0')
		}
	}
	return b.String()
}

// Raised returns how many digits are up.
func (fs FingerState) Raised() int {
	n := 0
	for _, up := range fs {
		if up {
			n++
		}
	}
	return n
}

// Parse reads a state written as five 0/1 characters. Commas and spaces are
// ignored so "[1, 0, 0, 0, 0]" is accepted too.
func Parse(s string) (FingerState, error) {
	var fs FingerState
	cleaned := strings.Map(func(r rune) rune {
		switch r {
		case ' ', ',', '[', ']':
			return -1
		}
		return r
	}, s)

	if len(cleaned) != NumDigits {
		return fs, fmt.Errorf("finger state %q: want %d digits, got %d", s, NumDigits, len(cleaned))
	}
	for i := 0; i < NumDigits; i++ {
		switch cleaned[i] {
		case '1':
			fs[i] = true
		case '0':
		default:
			return fs, fmt.Errorf("finger state %q: invalid digit %q", s, cleaned[i])
		}
	}
	return fs, nil
}

// MarshalText implements encoding.TextMarshaler.
func (fs FingerState) MarshalText() ([]byte, error) {
	return []byte(fs.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (fs *FingerState) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*fs = parsed
	return nil
}
