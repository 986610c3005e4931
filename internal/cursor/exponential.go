package cursor

import "fmt"

// Exponential applies smoothed = alpha*raw + (1-alpha)*previous per axis.
// The result is clamped after smoothing and stored as the next previous
// value, so overshoot at the edges decays on later frames.
type Exponential struct {
	alpha  float64
	bounds Bounds
	prev   Point
}

// NewExponential creates a filter starting at the origin. alpha must be in (0,1].
func NewExponential(alpha float64, bounds Bounds) (*Exponential, error) {
	if !(alpha > 0 && alpha <= 1) {
		return nil, fmt.Errorf("alpha must be in (0,1], got %g", alpha)
	}
	if err := bounds.validate(); err != nil {
		return nil, err
	}
	return &Exponential{alpha: alpha, bounds: bounds}, nil
}

// Apply implements Filter.
func (f *Exponential) Apply(raw Point) Point {
	smoothed := Point{
		X: f.alpha*raw.X + (1-f.alpha)*f.prev.X,
		Y: f.alpha*raw.Y + (1-f.alpha)*f.prev.Y,
	}
	f.prev = f.bounds.Clamp(smoothed)
	return f.prev
}

// Position implements Filter.
func (f *Exponential) Position() Point {
	return f.prev
}
