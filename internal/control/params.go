// Package control runs the per-frame gesture pipeline for one hand-tracking
// session: posture, mode, then cursor, click or scroll output.
package control

import (
	"fmt"
	"time"

	"github.com/ayusman/phantomtouch/internal/cursor"
	"github.com/ayusman/phantomtouch/internal/detector"
	"github.com/ayusman/phantomtouch/internal/mode"
	"github.com/ayusman/phantomtouch/internal/posture"
	"github.com/ayusman/phantomtouch/internal/scroll"
)

// Params holds the tuning for one session.
type Params struct {
	// Hand is the handedness label to track; other hands are ignored.
	Hand string
	// Bounds is the actuator surface in pixels.
	Bounds cursor.Bounds

	Filter cursor.Strategy
	Alpha  float64
	Window int

	LeftThreshold  float64
	RightThreshold float64
	Cooldown       time.Duration

	ScrollReference   scroll.Reference
	ScrollDeadband    float64
	ScrollSensitivity float64
	ScrollInvert      bool

	ShutdownPosture posture.FingerState
	ShutdownFrames  int
}

// DefaultParams returns the stock tuning for a surface of the given size.
func DefaultParams(bounds cursor.Bounds) Params {
	return Params{
		Hand:              detector.HandRight,
		Bounds:            bounds,
		Filter:            cursor.StrategyExponential,
		Alpha:             0.2,
		Window:            10,
		LeftThreshold:     0.05,
		RightThreshold:    0.05,
		Cooldown:          300 * time.Millisecond,
		ScrollReference:   scroll.ReferenceWrist,
		ScrollDeadband:    10,
		ScrollSensitivity: 2,
		ShutdownPosture:   posture.MiddleOnly,
		ShutdownFrames:    mode.DefaultShutdownFrames,
	}
}

// Validate checks the parameters that component constructors do not.
func (p Params) Validate() error {
	if p.Hand != detector.HandLeft && p.Hand != detector.HandRight {
		return fmt.Errorf("tracked hand must be %q or %q, got %q", detector.HandLeft, detector.HandRight, p.Hand)
	}
	switch p.ScrollReference {
	case scroll.ReferenceWrist, scroll.ReferenceFingertips:
	default:
		return fmt.Errorf("unknown scroll reference %q", p.ScrollReference)
	}
	return nil
}
