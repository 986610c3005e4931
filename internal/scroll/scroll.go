// Package scroll converts vertical hand motion into scroll amounts.
package scroll

import (
	"fmt"
	"math"

	"github.com/ayusman/phantomtouch/internal/detector"
)

// Reference selects the tracked point whose vertical motion drives scrolling.
type Reference string

const (
	// ReferenceWrist tracks the wrist landmark.
	ReferenceWrist Reference = "wrist"
	// ReferenceFingertips tracks the mean of the four non-thumb fingertips.
	ReferenceFingertips Reference = "fingertips"
)

// Y returns the normalized vertical coordinate of the reference point on h.
func (r Reference) Y(h *detector.HandLandmarks) float64 {
	if r == ReferenceFingertips {
		return h.FingertipMeanY()
	}
	return h.Points[detector.Wrist].Y
}

// Config holds scroll tuning.
type Config struct {
	// Height of the actuator surface in pixels, used to convert normalized y.
	Height float64
	// Deadband is the minimum displacement in pixels treated as motion.
	Deadband float64
	// Sensitivity divides the displacement into a scroll amount.
	Sensitivity float64
	// Invert flips the direction convention.
	Invert bool
}

// Step is the outcome of one update.
type Step struct {
	// Amount is positive for scroll up, negative for scroll down.
	Amount int
	Fired  bool
	// Displacement is the pixel motion since the previous reference.
	Displacement float64
	// ReferenceY is the new reference, in pixels.
	ReferenceY float64
}

// Controller tracks the reference point between frames.
//
// Direction convention: moving the hand up (y decreasing) scrolls up and
// yields a positive amount; Invert reverses this.
type Controller struct {
	cfg         Config
	prev        float64
	initialized bool
}

// NewController validates cfg and returns a Controller with no reference yet.
func NewController(cfg Config) (*Controller, error) {
	if cfg.Height <= 0 {
		return nil, fmt.Errorf("scroll surface height must be positive, got %g", cfg.Height)
	}
	if cfg.Deadband < 0 {
		return nil, fmt.Errorf("scroll deadband must not be negative, got %g", cfg.Deadband)
	}
	if cfg.Sensitivity <= 0 {
		return nil, fmt.Errorf("scroll sensitivity must be positive, got %g", cfg.Sensitivity)
	}
	return &Controller{cfg: cfg}, nil
}

// Update feeds the reference point's normalized y. The reference is replaced
// on every call, whether or not a scroll fires, so drift is tracked
// continuously. The first call only seeds the reference.
func (c *Controller) Update(normY float64) Step {
	y := normY * c.cfg.Height
	if !c.initialized {
		c.prev = y
		c.initialized = true
		return Step{ReferenceY: y}
	}

	step := Step{Displacement: y - c.prev, ReferenceY: y}
	c.prev = y

	if math.Abs(step.Displacement) < c.cfg.Deadband {
		return step
	}

	amount := -step.Displacement / c.cfg.Sensitivity
	if c.cfg.Invert {
		amount = -amount
	}
	step.Amount = int(math.Round(amount))
	step.Fired = step.Amount != 0
	return step
}

// ReferenceY returns the current reference in pixels and whether one is set.
func (c *Controller) ReferenceY() (float64, bool) {
	return c.prev, c.initialized
}
