package mode

import (
	"fmt"

	"github.com/ayusman/phantomtouch/internal/posture"
)

// DefaultShutdownFrames is the number of consecutive shutdown postures needed
// to end a session.
const DefaultShutdownFrames = 20

// Resolution is the outcome of resolving one posture.
type Resolution struct {
	Mode     ControlMode
	Previous ControlMode
	Changed  bool
	// Shutdown is set on the frame the shutdown gesture reaches its threshold.
	Shutdown bool
	// ShutdownCount is the current run of consecutive shutdown postures.
	ShutdownCount int
}

// Resolver turns finger states into a control mode. The mode is sticky:
// postures outside the mode table leave it unchanged.
type Resolver struct {
	mode      ControlMode
	shutdown  posture.FingerState
	threshold int
	count     int
}

// NewResolver creates a Resolver starting in Idle. The shutdown posture must
// be held for threshold consecutive frames; a threshold of 1 shuts down
// immediately.
func NewResolver(shutdown posture.FingerState, threshold int) (*Resolver, error) {
	if threshold < 1 {
		return nil, fmt.Errorf("shutdown threshold must be at least 1, got %d", threshold)
	}
	if _, ok := table(shutdown); ok {
		return nil, fmt.Errorf("shutdown posture %s collides with a mode posture", shutdown)
	}
	return &Resolver{
		mode:      Idle,
		shutdown:  shutdown,
		threshold: threshold,
	}, nil
}

// Mode returns the current mode.
func (r *Resolver) Mode() ControlMode {
	return r.mode
}

// Resolve applies one frame's finger state.
func (r *Resolver) Resolve(fs posture.FingerState) Resolution {
	res := Resolution{Previous: r.mode}

	if next, ok := table(fs); ok {
		r.count = 0
		r.mode = next
	} else if fs == r.shutdown {
		r.count++
		res.Shutdown = r.count >= r.threshold
	} else {
		r.count = 0
	}

	res.Mode = r.mode
	res.Changed = res.Mode != res.Previous
	res.ShutdownCount = r.count
	return res
}

// table is the closed mode table over the 32-value posture space. The default
// arm reports no mapping.
func table(fs posture.FingerState) (ControlMode, bool) {
	switch fs {
	case posture.PointingIndex:
		return Mouse, true
	case posture.TwoFingers:
		return Click, true
	case posture.FourFingers:
		return Scroll, true
	case posture.OpenHand:
		return Idle, true
	default:
		return Idle, false
	}
}
