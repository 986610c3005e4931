// Package cursor smooths raw pointer targets into bounded cursor positions.
package cursor

import "fmt"

// Point is a position on the actuator surface in pixels.
type Point struct {
	X float64
	Y float64
}

// Bounds is the actuator surface, [0,Width]x[0,Height].
type Bounds struct {
	Width  float64
	Height float64
}

// Clamp limits p to the surface.
func (b Bounds) Clamp(p Point) Point {
	return Point{X: clamp(p.X, 0, b.Width), Y: clamp(p.Y, 0, b.Height)}
}

// Scale maps a normalized [0,1] coordinate pair onto the surface.
func (b Bounds) Scale(nx, ny float64) Point {
	return Point{X: nx * b.Width, Y: ny * b.Height}
}

func (b Bounds) validate() error {
	if b.Width <= 0 || b.Height <= 0 {
		return fmt.Errorf("bounds must be positive, got %gx%g", b.Width, b.Height)
	}
	return nil
}

// Filter turns a stream of raw targets into smoothed positions. Filters carry
// state between calls and are not safe for concurrent use.
type Filter interface {
	// Apply feeds one raw target and returns the new smoothed position.
	Apply(raw Point) Point
	// Position returns the last smoothed position.
	Position() Point
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Strategy names a filter implementation.
type Strategy string

const (
	StrategyExponential   Strategy = "exponential"
	StrategyMovingAverage Strategy = "moving_average"
)

// New builds the filter named by strategy. Alpha is used by the exponential
// filter and window by the moving average.
func New(strategy Strategy, alpha float64, window int, bounds Bounds) (Filter, error) {
	switch strategy {
	case StrategyExponential, "":
		return NewExponential(alpha, bounds)
	case StrategyMovingAverage:
		return NewMovingAverage(window, bounds)
	default:
		return nil, fmt.Errorf("unknown cursor filter strategy %q", strategy)
	}
}
