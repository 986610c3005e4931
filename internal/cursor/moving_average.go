package cursor

import "fmt"

// MovingAverage outputs the mean of the last Window raw targets per axis.
// The history is a fixed-capacity ring; the oldest sample is evicted once full.
type MovingAverage struct {
	bounds  Bounds
	xs, ys  []float64
	next    int
	size    int
	current Point
}

// NewMovingAverage creates a filter averaging over window samples.
func NewMovingAverage(window int, bounds Bounds) (*MovingAverage, error) {
	if window < 1 {
		return nil, fmt.Errorf("window must be at least 1, got %d", window)
	}
	if err := bounds.validate(); err != nil {
		return nil, err
	}
	return &MovingAverage{
		bounds: bounds,
		xs:     make([]float64, window),
		ys:     make([]float64, window),
	}, nil
}

// Apply implements Filter.
func (f *MovingAverage) Apply(raw Point) Point {
	f.xs[f.next] = raw.X
	f.ys[f.next] = raw.Y
	f.next = (f.next + 1) % len(f.xs)
	if f.size < len(f.xs) {
		f.size++
	}

	var sx, sy float64
	for i := 0; i < f.size; i++ {
		sx += f.xs[i]
		sy += f.ys[i]
	}
	n := float64(f.size)
	f.current = f.bounds.Clamp(Point{X: sx / n, Y: sy / n})
	return f.current
}

// Position implements Filter.
func (f *MovingAverage) Position() Point {
	return f.current
}

// Len returns how many samples are currently held.
func (f *MovingAverage) Len() int {
	return f.size
}
