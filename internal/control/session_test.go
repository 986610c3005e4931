package control

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/ayusman/phantomtouch/internal/actuator"
	"github.com/ayusman/phantomtouch/internal/click"
	"github.com/ayusman/phantomtouch/internal/clock"
	"github.com/ayusman/phantomtouch/internal/cursor"
	"github.com/ayusman/phantomtouch/internal/detector"
	"github.com/ayusman/phantomtouch/internal/mode"
	"github.com/ayusman/phantomtouch/internal/posture"
)

var surface = cursor.Bounds{Width: 1000, Height: 1000}

func newTestSession(t *testing.T, mutate func(*Params)) (*Session, *actuator.Recorder, *clock.Fake) {
	t.Helper()
	params := DefaultParams(surface)
	params.ShutdownFrames = 3
	if mutate != nil {
		mutate(&params)
	}
	rec := actuator.NewRecorder()
	clk := clock.NewFake(time.Unix(1000, 0))
	s, err := NewSession(params, rec, WithClock(clk))
	if err != nil {
		t.Fatalf("NewSession() error = %v", err)
	}
	return s, rec, clk
}

func hand(fs posture.FingerState) detector.HandLandmarks {
	return detector.SyntheticHand(fs)
}

func frame(hands ...detector.HandLandmarks) []detector.HandLandmarks {
	return hands
}

func process(t *testing.T, s *Session, hands []detector.HandLandmarks) FrameResult {
	t.Helper()
	res, err := s.ProcessFrame(context.Background(), hands)
	if err != nil {
		t.Fatalf("ProcessFrame() error = %v", err)
	}
	return res
}

func TestSession_MouseIdleMouseKeepsFilterState(t *testing.T) {
	s, rec, _ := newTestSession(t, nil)

	// Index tip of the synthetic hand sits at (0.45, 0.40).
	r1 := process(t, s, frame(hand(posture.PointingIndex)))
	r2 := process(t, s, frame(hand(posture.PointingIndex)))
	r3 := process(t, s, frame(hand(posture.OpenHand)))

	if r1.Mode != mode.Mouse || r2.Mode != mode.Mouse {
		t.Fatalf("frames 1-2 mode = %v, %v, want mouse", r1.Mode, r2.Mode)
	}
	if r3.Mode != mode.Idle {
		t.Fatalf("frame 3 mode = %v, want idle", r3.Mode)
	}
	if r3.Moved {
		t.Error("frame 3 moved the cursor in idle mode")
	}
	if got := rec.Count(actuator.OpMove); got != 2 {
		t.Fatalf("move calls = %d, want 2", got)
	}

	// (0,0) -> 0.2*450 = 90 -> 90 + 0.2*(450-90) = 162
	want := cursor.Point{X: 162, Y: 144}
	if got := s.Cursor(); math.Abs(got.X-want.X) > 1e-9 || math.Abs(got.Y-want.Y) > 1e-9 {
		t.Errorf("Cursor() after idle = %+v, want %+v", got, want)
	}

	// Re-entering mouse mode continues from the preserved position.
	r4 := process(t, s, frame(hand(posture.PointingIndex)))
	wantX := 162 + 0.2*(450-162)
	if math.Abs(r4.Cursor.X-wantX) > 1e-9 {
		t.Errorf("re-entry cursor X = %f, want %f", r4.Cursor.X, wantX)
	}

	calls := rec.Calls()
	if last := calls[len(calls)-1]; last.Op != actuator.OpMove || last.X != int(math.Round(wantX)) {
		t.Errorf("last call = %s, want move to x=%d", last, int(math.Round(wantX)))
	}
}

func TestSession_DropoutKeepsMode(t *testing.T) {
	s, rec, _ := newTestSession(t, nil)

	process(t, s, frame(hand(posture.FourFingers)))
	rec.Reset()

	for i := 0; i < 5; i++ {
		res := process(t, s, nil)
		if res.Tracked {
			t.Fatalf("dropout frame %d reported a tracked hand", i)
		}
		if res.Mode != mode.Scroll {
			t.Fatalf("dropout frame %d mode = %v, want scroll", i, res.Mode)
		}
	}

	// A left hand alone is also a dropout for a right-hand session.
	left := hand(posture.OpenHand)
	left.Handedness = detector.HandLeft
	if res := process(t, s, frame(left)); res.Tracked || res.Mode != mode.Scroll {
		t.Errorf("left-hand frame = %+v, want untracked scroll", res)
	}

	if n := len(rec.Calls()); n != 0 {
		t.Errorf("dropout frames issued %d calls", n)
	}
}

func TestSession_UnmappedPostureKeepsModeAndActs(t *testing.T) {
	s, rec, _ := newTestSession(t, nil)

	process(t, s, frame(hand(posture.PointingIndex)))
	res := process(t, s, frame(hand(posture.FingerState{false, false, true, false, false})))

	if res.Mode != mode.Mouse || res.Resolution.Changed {
		t.Errorf("unmapped posture changed mode to %v", res.Mode)
	}
	if got := rec.Count(actuator.OpMove); got != 2 {
		t.Errorf("move calls = %d, want 2", got)
	}
}

func TestSession_RejectsMalformedHand(t *testing.T) {
	s, rec, _ := newTestSession(t, nil)
	process(t, s, frame(hand(posture.PointingIndex)))
	before := s.Cursor()
	rec.Reset()

	bad := hand(posture.OpenHand)
	bad.Points[detector.IndexTip].X = 1.5

	res, err := s.ProcessFrame(context.Background(), frame(bad))
	if !errors.Is(err, detector.ErrMalformedLandmarks) {
		t.Fatalf("ProcessFrame() error = %v, want ErrMalformedLandmarks", err)
	}
	if res.Mode != mode.Mouse || s.Mode() != mode.Mouse {
		t.Errorf("mode after rejected frame = %v, want mouse", s.Mode())
	}
	if s.Cursor() != before {
		t.Errorf("cursor changed on rejected frame: %+v -> %+v", before, s.Cursor())
	}
	if n := len(rec.Calls()); n != 0 {
		t.Errorf("rejected frame issued %d calls", n)
	}
}

func TestSession_PinchClicks(t *testing.T) {
	// Adjacent raised fingertips are 0.05 apart, so keep thresholds below that.
	s, rec, clk := newTestSession(t, func(p *Params) {
		p.LeftThreshold = 0.03
		p.RightThreshold = 0.03
	})

	open := hand(posture.TwoFingers)
	pinchLeft := hand(posture.TwoFingers)
	pinchLeft.Points[detector.ThumbTip] = pinchLeft.Points[detector.IndexTip]
	pinchRight := hand(posture.TwoFingers)
	pinchRight.Points[detector.ThumbTip] = pinchRight.Points[detector.MiddleTip]

	steps := []struct {
		name    string
		hand    detector.HandLandmarks
		advance time.Duration
		want    []click.Button
	}{
		{"enter click mode", open, 0, nil},
		{"left pinch closes", pinchLeft, 50 * time.Millisecond, []click.Button{click.Left}},
		{"left pinch held", pinchLeft, 50 * time.Millisecond, nil},
		{"release", open, 50 * time.Millisecond, nil},
		{"left pinch inside cooldown", pinchLeft, 50 * time.Millisecond, nil},
		{"release again", open, 50 * time.Millisecond, nil},
		{"right pinch unaffected by left", pinchRight, 10 * time.Millisecond, []click.Button{click.Right}},
		{"release right", open, 400 * time.Millisecond, nil},
		{"left pinch after cooldown", pinchLeft, 10 * time.Millisecond, []click.Button{click.Left}},
	}

	for _, st := range steps {
		clk.Advance(st.advance)
		res := process(t, s, frame(st.hand))
		if res.Mode != mode.Click {
			t.Fatalf("%s: mode = %v, want click", st.name, res.Mode)
		}
		if len(res.Clicks) != len(st.want) {
			t.Fatalf("%s: clicks = %v, want %v", st.name, res.Clicks, st.want)
		}
		for i := range st.want {
			if res.Clicks[i] != st.want[i] {
				t.Errorf("%s: click %d = %s, want %s", st.name, i, res.Clicks[i], st.want[i])
			}
		}
	}

	if got := rec.Count(actuator.OpClick); got != 3 {
		t.Errorf("click calls = %d, want 3", got)
	}
}

func TestSession_Scroll(t *testing.T) {
	s, rec, _ := newTestSession(t, nil)

	at := func(wristY float64) detector.HandLandmarks {
		h := hand(posture.FourFingers)
		h.Points[detector.Wrist].Y = wristY
		return h
	}

	process(t, s, frame(at(0.80)))            // enter scroll, seed reference at 800px
	r := process(t, s, frame(at(0.75)))       // up 50px
	small := process(t, s, frame(at(0.7455))) // 4.5px, under the deadband
	down := process(t, s, frame(at(0.8055)))  // down 60px

	if !r.Scroll.Fired || r.Scroll.Amount != 25 {
		t.Errorf("upward step = %+v, want amount 25", r.Scroll)
	}
	if small.Scroll.Fired {
		t.Errorf("sub-deadband step fired: %+v", small.Scroll)
	}
	if math.Abs(small.Scroll.ReferenceY-745.5) > 1e-9 {
		t.Errorf("sub-deadband reference = %f, want 745.5", small.Scroll.ReferenceY)
	}
	if down.Scroll.Amount != -30 {
		t.Errorf("downward step amount = %d, want -30", down.Scroll.Amount)
	}

	calls := rec.Calls()
	if len(calls) != 2 || calls[0].Amount != 25 || calls[1].Amount != -30 {
		t.Errorf("calls = %v, want scroll(25) scroll(-30)", calls)
	}
}

func TestSession_ScrollInvertAndFingertips(t *testing.T) {
	s, _, _ := newTestSession(t, func(p *Params) {
		p.ScrollInvert = true
		p.ScrollReference = "fingertips"
	})

	base := hand(posture.FourFingers)
	process(t, s, frame(base))

	moved := hand(posture.FourFingers)
	for _, tip := range []int{detector.IndexTip, detector.MiddleTip, detector.RingTip, detector.PinkyTip} {
		moved.Points[tip].Y -= 0.02 // 20px up
	}
	res := process(t, s, frame(moved))
	if res.Scroll.Amount != -10 {
		t.Errorf("inverted amount = %d, want -10", res.Scroll.Amount)
	}
}

func TestSession_Shutdown(t *testing.T) {
	t.Run("held for threshold", func(t *testing.T) {
		s, _, _ := newTestSession(t, nil)
		for i := 1; i <= 3; i++ {
			res := process(t, s, frame(hand(posture.MiddleOnly)))
			if res.Shutdown != (i == 3) {
				t.Fatalf("frame %d: Shutdown = %v", i, res.Shutdown)
			}
		}
		if !s.Done() {
			t.Error("Done() = false after shutdown")
		}
	})

	t.Run("interrupted by another posture", func(t *testing.T) {
		s, _, _ := newTestSession(t, nil)
		process(t, s, frame(hand(posture.MiddleOnly)))
		process(t, s, frame(hand(posture.MiddleOnly)))
		process(t, s, frame(hand(posture.PointingIndex)))
		res := process(t, s, frame(hand(posture.MiddleOnly)))
		if res.Shutdown || res.Resolution.ShutdownCount != 1 {
			t.Errorf("after interruption = %+v, want count 1", res.Resolution)
		}
	})

	t.Run("dropout does not reset", func(t *testing.T) {
		s, _, _ := newTestSession(t, nil)
		process(t, s, frame(hand(posture.MiddleOnly)))
		process(t, s, frame(hand(posture.MiddleOnly)))
		process(t, s, nil)
		if res := process(t, s, frame(hand(posture.MiddleOnly))); !res.Shutdown {
			t.Error("shutdown not reached across a dropout frame")
		}
	})
}

func TestSession_TracksConfiguredHand(t *testing.T) {
	s, rec, _ := newTestSession(t, func(p *Params) { p.Hand = detector.HandLeft })

	right := hand(posture.PointingIndex)
	left := hand(posture.PointingIndex)
	left.Handedness = detector.HandLeft

	if res := process(t, s, frame(right)); res.Tracked {
		t.Error("right hand tracked by a left-hand session")
	}
	if res := process(t, s, frame(right, left)); !res.Tracked || res.Hand.Handedness != detector.HandLeft {
		t.Errorf("left hand not selected: %+v", res)
	}
	if got := rec.Count(actuator.OpMove); got != 1 {
		t.Errorf("move calls = %d, want 1", got)
	}
}

func TestNewSession_Validation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Params)
	}{
		{"bad hand", func(p *Params) { p.Hand = "Both" }},
		{"bad scroll reference", func(p *Params) { p.ScrollReference = "elbow" }},
		{"zero alpha", func(p *Params) { p.Alpha = 0 }},
		{"unknown filter", func(p *Params) { p.Filter = "kalman" }},
		{"zero left threshold", func(p *Params) { p.LeftThreshold = 0 }},
		{"zero sensitivity", func(p *Params) { p.ScrollSensitivity = 0 }},
		{"shutdown collides with mouse", func(p *Params) { p.ShutdownPosture = posture.PointingIndex }},
		{"zero shutdown frames", func(p *Params) { p.ShutdownFrames = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			params := DefaultParams(surface)
			tt.mutate(&params)
			if _, err := NewSession(params, actuator.NewRecorder()); err == nil {
				t.Error("expected error")
			}
		})
	}

	if _, err := NewSession(DefaultParams(surface), nil); err == nil {
		t.Error("expected error for nil pointer")
	}
}

func TestNewSession_WithFilter(t *testing.T) {
	avg, err := cursor.NewMovingAverage(2, surface)
	if err != nil {
		t.Fatalf("NewMovingAverage() error = %v", err)
	}
	s, err := NewSession(DefaultParams(surface), actuator.NewRecorder(), WithFilter(avg))
	if err != nil {
		t.Fatalf("NewSession() error = %v", err)
	}

	res := process(t, s, frame(hand(posture.PointingIndex)))
	if res.Cursor != (cursor.Point{X: 450, Y: 400}) {
		t.Errorf("moving average first output = %+v, want raw target", res.Cursor)
	}
	if s.ID() == "" {
		t.Error("ID() is empty")
	}
}
