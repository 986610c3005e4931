package detector

import (
	"sync"

	"gocv.io/x/gocv"
)

// MockDetector is a test implementation of the Detector interface.
// Queued frames are returned first, in order; once the queue is drained
// every call returns the hands set with SetHands.
type MockDetector struct {
	mu    sync.Mutex
	queue [][]HandLandmarks
	hands []HandLandmarks
	err   error
	calls int
}

// NewMockDetector creates a new MockDetector instance.
func NewMockDetector() *MockDetector {
	return &MockDetector{}
}

// SetHands sets the hands returned once the queue is empty.
func (m *MockDetector) SetHands(hands []HandLandmarks) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hands = hands
}

// Enqueue appends per-frame detection results. A nil entry is a frame with no hands.
func (m *MockDetector) Enqueue(frames ...[]HandLandmarks) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queue = append(m.queue, frames...)
}

// SetError sets the error that will be returned by Detect.
func (m *MockDetector) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Calls returns how many times Detect has been called.
func (m *MockDetector) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// Detect returns the next queued frame, the pre-configured hands, or the error.
func (m *MockDetector) Detect(frame *gocv.Mat) ([]HandLandmarks, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	if len(m.queue) > 0 {
		next := m.queue[0]
		m.queue = m.queue[1:]
		return next, nil
	}
	return m.hands, nil
}

// Close is a no-op for the mock detector.
func (m *MockDetector) Close() error {
	return nil
}

// Synthetic hand geometry. Finger columns run index to pinky left to right,
// with the thumb extending to the left as a mirrored right hand does.
var (
	fingerColumns = [4]float64{0.45, 0.50, 0.55, 0.60}
	fingerTips    = [4]int{IndexTip, MiddleTip, RingTip, PinkyTip}
)

// SyntheticHand returns a right hand whose digits are raised according to up,
// ordered [index, middle, ring, pinky, thumb]. Raised fingers have their tip
// above the PIP joint; a raised thumb has its tip left of the thumb MCP.
func SyntheticHand(up [5]bool) HandLandmarks {
	h := HandLandmarks{
		Handedness: HandRight,
		Score:      0.95,
	}

	h.Points[Wrist] = Point3D{X: 0.50, Y: 0.80}

	for i, tip := range fingerTips {
		x := fingerColumns[i]
		h.Points[tip-3] = Point3D{X: x, Y: 0.65} // MCP
		h.Points[tip-2] = Point3D{X: x, Y: 0.55} // PIP
		if up[i] {
			h.Points[tip-1] = Point3D{X: x, Y: 0.47}
			h.Points[tip] = Point3D{X: x, Y: 0.40}
		} else {
			h.Points[tip-1] = Point3D{X: x, Y: 0.60}
			h.Points[tip] = Point3D{X: x, Y: 0.64}
		}
	}

	h.Points[ThumbCMC] = Point3D{X: 0.42, Y: 0.75}
	h.Points[ThumbMCP] = Point3D{X: 0.38, Y: 0.72}
	if up[4] {
		h.Points[ThumbIP] = Point3D{X: 0.34, Y: 0.70}
		h.Points[ThumbTip] = Point3D{X: 0.30, Y: 0.68}
	} else {
		h.Points[ThumbIP] = Point3D{X: 0.42, Y: 0.72}
		h.Points[ThumbTip] = Point3D{X: 0.47, Y: 0.74}
	}

	return h
}
