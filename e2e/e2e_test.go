package e2e

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/ayusman/phantomtouch/internal/actuator"
	"github.com/ayusman/phantomtouch/internal/app"
	"github.com/ayusman/phantomtouch/internal/capture"
	"github.com/ayusman/phantomtouch/internal/click"
	"github.com/ayusman/phantomtouch/internal/clock"
	"github.com/ayusman/phantomtouch/internal/config"
	"github.com/ayusman/phantomtouch/internal/control"
	"github.com/ayusman/phantomtouch/internal/detector"
	"github.com/ayusman/phantomtouch/internal/fixtures"
	"github.com/ayusman/phantomtouch/internal/mode"
	"github.com/ayusman/phantomtouch/internal/telemetry"
)

// frameInterval is the fake time between frames (30 FPS).
const frameInterval = 33 * time.Millisecond

type pipeline struct {
	app      *app.App
	camera   *capture.BlankCamera
	recorder *actuator.Recorder
	metrics  *telemetry.Recorder
	clock    *clock.Fake
}

func newPipeline(t *testing.T, cfg *config.Config, det detector.Detector) *pipeline {
	t.Helper()

	metricsRec, metrics, err := telemetry.NewRecorder()
	if err != nil {
		t.Fatalf("telemetry.NewRecorder() error = %v", err)
	}
	t.Cleanup(func() { metricsRec.Shutdown(context.Background()) })

	rec := actuator.NewRecorder()
	toggle := actuator.NewToggle(rec, true)
	clk := clock.NewFake(time.Unix(1_700_000_000, 0))

	session, err := control.NewSession(cfg.Params(1000, 1000), toggle,
		control.WithClock(clk),
		control.WithMetrics(metrics),
	)
	if err != nil {
		t.Fatalf("NewSession() error = %v", err)
	}

	camera := capture.NewBlankCamera(64, 48)
	t.Cleanup(func() { camera.Close() })

	a, err := app.New(app.Config{
		Camera:   camera,
		Detector: det,
		Session:  session,
		Toggle:   toggle,
	})
	if err != nil {
		t.Fatalf("app.New() error = %v", err)
	}

	return &pipeline{app: a, camera: camera, recorder: rec, metrics: metricsRec, clock: clk}
}

// drain steps the pipeline until the recording ends or shutdown is requested.
func (p *pipeline) drain(t *testing.T) (results []control.FrameResult) {
	t.Helper()
	if err := p.camera.Open(); err != nil {
		t.Fatalf("camera.Open() error = %v", err)
	}
	for {
		res, err := p.app.Step(context.Background())
		if errors.Is(err, io.EOF) {
			return results
		}
		if err != nil {
			t.Fatalf("Step() #%d error = %v", len(results), err)
		}
		results = append(results, res)
		if res.Shutdown {
			return results
		}
		p.clock.Advance(frameInterval)
	}
}

func TestE2E_RecordedSession(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping e2e test")
	}

	det, err := fixtures.Replay(fixtures.Session, false)
	if err != nil {
		t.Fatalf("Replay() error = %v", err)
	}
	p := newPipeline(t, config.Default(), det)

	var modes []mode.ControlMode
	p.app.OnModeChange(func(m mode.ControlMode) { modes = append(modes, m) })

	results := p.drain(t)

	if len(results) != det.Len() {
		t.Fatalf("frames processed = %d, want %d", len(results), det.Len())
	}
	last := results[len(results)-1]
	if !last.Shutdown {
		t.Error("last frame did not request shutdown")
	}
	if !p.app.Session().Done() {
		t.Error("session not done")
	}

	t.Run("ModeSequence", func(t *testing.T) {
		want := []mode.ControlMode{mode.Mouse, mode.Click, mode.Scroll, mode.Idle}
		if len(modes) != len(want) {
			t.Fatalf("modes = %v, want %v", modes, want)
		}
		for i := range want {
			if modes[i] != want[i] {
				t.Errorf("mode %d = %v, want %v", i, modes[i], want[i])
			}
		}
	})

	t.Run("CursorSweep", func(t *testing.T) {
		if got := p.recorder.Count(actuator.OpMove); got != 10 {
			t.Fatalf("moves = %d, want 10", got)
		}
		var xs []int
		for _, c := range p.recorder.Calls() {
			if c.Op == actuator.OpMove {
				xs = append(xs, c.X)
			}
		}
		for i := 1; i < len(xs); i++ {
			if xs[i] < xs[i-1] {
				t.Errorf("cursor x went backwards: %v", xs)
				break
			}
		}
		// The filter lags the raw tip, which ends at x=660.
		if xs[len(xs)-1] >= 660 {
			t.Errorf("final x = %d, want lag behind 660", xs[len(xs)-1])
		}
	})

	t.Run("Clicks", func(t *testing.T) {
		var buttons []click.Button
		for _, c := range p.recorder.Calls() {
			if c.Op == actuator.OpClick {
				buttons = append(buttons, c.Button)
			}
		}
		if len(buttons) != 2 || buttons[0] != click.Left || buttons[1] != click.Right {
			t.Errorf("clicks = %v, want [left right]", buttons)
		}
	})

	t.Run("Scroll", func(t *testing.T) {
		var amounts []int
		for _, c := range p.recorder.Calls() {
			if c.Op == actuator.OpScroll {
				amounts = append(amounts, c.Amount)
			}
		}
		if len(amounts) != 3 {
			t.Fatalf("scrolls = %v, want 3", amounts)
		}
		for _, a := range amounts {
			if a <= 0 {
				t.Errorf("scroll amount %d, want positive for an upward hand", a)
			}
		}
	})

	t.Run("Metrics", func(t *testing.T) {
		totals, err := p.metrics.Totals(context.Background())
		if err != nil {
			t.Fatalf("Totals() error = %v", err)
		}
		want := map[string]int64{
			telemetry.FramesProcessed: int64(det.Len() - 2),
			telemetry.HandDropouts:    2,
			telemetry.FramesRejected:  0,
			telemetry.ModeChanges:     4,
			telemetry.Clicks:          2,
			telemetry.Scrolls:         3,
		}
		for name, v := range want {
			if totals[name] != v {
				t.Errorf("%s = %d, want %d", name, totals[name], v)
			}
		}
	})
}

func TestE2E_PausedSessionStillShutsDown(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping e2e test")
	}

	det, err := fixtures.Replay(fixtures.Session, false)
	if err != nil {
		t.Fatalf("Replay() error = %v", err)
	}
	p := newPipeline(t, config.Default(), det)
	p.app.SetEnabled(false)

	results := p.drain(t)

	if got := len(p.recorder.Calls()); got != 0 {
		t.Errorf("pointer calls while paused = %d, want 0", got)
	}
	if !results[len(results)-1].Shutdown {
		t.Error("shutdown gesture ignored while paused")
	}
}

func TestE2E_OverridesChangeBehaviour(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping e2e test")
	}

	cfg := config.Default()
	err := cfg.ApplyOverrides(map[string]string{
		"scroll.invert":   "true",
		"hand.label":      "Left",
		"shutdown.frames": "5",
	})
	if err != nil {
		t.Fatalf("ApplyOverrides() error = %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}

	det, err := fixtures.Replay(fixtures.Session, false)
	if err != nil {
		t.Fatalf("Replay() error = %v", err)
	}
	p := newPipeline(t, cfg, det)
	results := p.drain(t)

	// Only one frame carries a left hand, and it is an open hand.
	if got := len(p.recorder.Calls()); got != 0 {
		t.Errorf("pointer calls tracking the left hand = %d, want 0", got)
	}
	if results[len(results)-1].Shutdown {
		t.Error("shutdown requested without the left hand holding the gesture")
	}
	if len(results) != det.Len() {
		t.Errorf("frames = %d, want %d", len(results), det.Len())
	}
}

func TestE2E_LoopingReplayRunsUntilCancelled(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping e2e test")
	}

	det, err := fixtures.Replay(fixtures.Sweep, true)
	if err != nil {
		t.Fatalf("Replay() error = %v", err)
	}
	p := newPipeline(t, config.Default(), det)
	p.camera.SetFPS(200)

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()

	if err := p.app.Run(ctx); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if got := p.recorder.Count(actuator.OpMove); got <= det.Len() {
		t.Errorf("moves = %d, want more than one pass of %d frames", got, det.Len())
	}
}

func TestRecordingsLoad(t *testing.T) {
	names, err := fixtures.List()
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(names) < 2 {
		t.Fatalf("recordings = %v, want at least 2", names)
	}
	for _, name := range names {
		d, err := fixtures.Replay(name, false)
		if err != nil {
			t.Errorf("Replay(%s) error = %v", name, err)
			continue
		}
		if d.Len() == 0 {
			t.Errorf("recording %s is empty", name)
		}
	}
}
