// Package click converts pinch distances into debounced click events.
package click

import (
	"fmt"
	"time"

	"github.com/ayusman/phantomtouch/internal/clock"
	"github.com/ayusman/phantomtouch/internal/detector"
)

// Button identifies a pointer button.
type Button string

const (
	Left  Button = "left"
	Right Button = "right"
)

// Landmarks returns the landmark pair whose pinch triggers the button:
// thumb-index for left, thumb-middle for right.
func (b Button) Landmarks() (int, int) {
	if b == Right {
		return detector.ThumbTip, detector.MiddleTip
	}
	return detector.ThumbTip, detector.IndexTip
}

// PinchDetector fires at most one click per pinch-close episode and at most
// one per cooldown window. Each button needs its own detector.
//
// While inactive, a distance at or under the threshold latches the detector
// and fires if the cooldown has elapsed since the last fire. The latch is set
// even when the cooldown suppresses the click, so a held pinch never retries.
// The latch releases only when the distance rises above the threshold.
type PinchDetector struct {
	button    Button
	threshold float64
	cooldown  time.Duration
	clock     clock.Clock

	active   bool
	fired    bool
	lastFire time.Time
}

// NewPinchDetector creates a detector for one button.
func NewPinchDetector(button Button, threshold float64, cooldown time.Duration, c clock.Clock) (*PinchDetector, error) {
	if threshold <= 0 {
		return nil, fmt.Errorf("%s pinch threshold must be positive, got %g", button, threshold)
	}
	if cooldown < 0 {
		return nil, fmt.Errorf("%s click cooldown must not be negative, got %v", button, cooldown)
	}
	if c == nil {
		c = clock.Real{}
	}
	return &PinchDetector{
		button:    button,
		threshold: threshold,
		cooldown:  cooldown,
		clock:     c,
	}, nil
}

// Button returns the button this detector fires.
func (d *PinchDetector) Button() Button {
	return d.button
}

// Active reports whether the pinch latch is closed.
func (d *PinchDetector) Active() bool {
	return d.active
}

// Update feeds one distance sample and reports whether a click fires.
func (d *PinchDetector) Update(distance float64) bool {
	if d.active {
		if distance > d.threshold {
			d.active = false
		}
		return false
	}

	if distance > d.threshold {
		return false
	}

	d.active = true
	now := d.clock.Now()
	if d.fired && now.Sub(d.lastFire) <= d.cooldown {
		return false
	}
	d.fired = true
	d.lastFire = now
	return true
}

// UpdateHand measures the button's landmark pair on h and feeds it to Update.
func (d *PinchDetector) UpdateHand(h *detector.HandLandmarks) bool {
	a, b := d.button.Landmarks()
	return d.Update(h.Distance2D(a, b))
}
