// Package detector provides the hand landmark types consumed by the control
// pipeline and the detectors that produce them.
package detector

import (
	"errors"
	"fmt"
	"math"
)

// Hand landmark indices following MediaPipe convention.
// See: https://developers.google.com/mediapipe/solutions/vision/hand_landmarker
const (
	Wrist        = 0
	ThumbCMC     = 1
	ThumbMCP     = 2
	ThumbIP      = 3
	ThumbTip     = 4
	IndexMCP     = 5
	IndexPIP     = 6
	IndexDIP     = 7
	IndexTip     = 8
	MiddleMCP    = 9
	MiddlePIP    = 10
	MiddleDIP    = 11
	MiddleTip    = 12
	RingMCP      = 13
	RingPIP      = 14
	RingDIP      = 15
	RingTip      = 16
	PinkyMCP     = 17
	PinkyPIP     = 18
	PinkyDIP     = 19
	PinkyTip     = 20
	NumLandmarks = 21
)

// Handedness labels reported by the landmark model.
const (
	HandLeft  = "Left"
	HandRight = "Right"
)

// ErrMalformedLandmarks is returned when a landmark set violates the detector
// contract: wrong point count or coordinates outside the normalized range.
var ErrMalformedLandmarks = errors.New("malformed landmarks")

// Point3D is a landmark position. X and Y are normalized to the frame
// ([0,1], Y grows downward); Z is relative depth and unused by the pipeline.
type Point3D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// HandLandmarks represents the 21 hand landmarks detected for one hand in one frame.
type HandLandmarks struct {
	Points     [NumLandmarks]Point3D `json:"points"`
	Handedness string                `json:"handedness"` // "Left" or "Right"
	Score      float64               `json:"score"`
}

// FromPoints builds a HandLandmarks from a variable-length point slice,
// rejecting anything that is not exactly NumLandmarks long.
func FromPoints(points []Point3D, handedness string, score float64) (HandLandmarks, error) {
	h := HandLandmarks{Handedness: handedness, Score: score}
	if len(points) != NumLandmarks {
		return h, fmt.Errorf("%w: got %d points, want %d", ErrMalformedLandmarks, len(points), NumLandmarks)
	}
	copy(h.Points[:], points)
	return h, nil
}

// Validate checks that every point has finite X and Y inside [0,1].
func (h *HandLandmarks) Validate() error {
	if h == nil {
		return fmt.Errorf("%w: nil hand", ErrMalformedLandmarks)
	}
	for i, p := range h.Points {
		if !inUnit(p.X) || !inUnit(p.Y) {
			return fmt.Errorf("%w: point %d (%.4f, %.4f) outside [0,1]", ErrMalformedLandmarks, i, p.X, p.Y)
		}
	}
	return nil
}

// Distance2D returns the Euclidean distance between two landmarks in the
// normalized image plane, ignoring depth.
func (h *HandLandmarks) Distance2D(a, b int) float64 {
	pa, pb := h.Points[a], h.Points[b]
	return math.Hypot(pa.X-pb.X, pa.Y-pb.Y)
}

// FingertipMeanY returns the mean Y of the index, middle, ring and pinky tips.
func (h *HandLandmarks) FingertipMeanY() float64 {
	return (h.Points[IndexTip].Y + h.Points[MiddleTip].Y + h.Points[RingTip].Y + h.Points[PinkyTip].Y) / 4
}

func inUnit(v float64) bool {
	return !math.IsNaN(v) && v >= 0 && v <= 1
}
