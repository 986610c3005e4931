package scroll

import (
	"math"
	"testing"

	"github.com/ayusman/phantomtouch/internal/detector"
)

const epsilon = 1e-9

func newController(t *testing.T, cfg Config) *Controller {
	t.Helper()
	c, err := NewController(cfg)
	if err != nil {
		t.Fatalf("NewController() error = %v", err)
	}
	return c
}

func TestController_Update(t *testing.T) {
	cfg := Config{Height: 1000, Deadband: 10, Sensitivity: 5}

	tests := []struct {
		name       string
		invert     bool
		from, to   float64 // normalized y
		wantAmount int
		wantFired  bool
	}{
		{name: "hand moves down 50px", from: 0.5, to: 0.55, wantAmount: -10, wantFired: true},
		{name: "hand moves up 50px", from: 0.5, to: 0.45, wantAmount: 10, wantFired: true},
		{name: "inverted hand moves down 50px", invert: true, from: 0.5, to: 0.55, wantAmount: 10, wantFired: true},
		{name: "below deadband", from: 0.5, to: 0.505, wantAmount: 0, wantFired: false},
		{name: "exactly deadband", from: 0.5, to: 0.51, wantAmount: -2, wantFired: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := cfg
			c.Invert = tt.invert
			ctrl := newController(t, c)

			if first := ctrl.Update(tt.from); first.Fired {
				t.Fatal("seeding update should not fire")
			}

			step := ctrl.Update(tt.to)

			if step.Amount != tt.wantAmount {
				t.Errorf("Amount = %d, want %d", step.Amount, tt.wantAmount)
			}
			if step.Fired != tt.wantFired {
				t.Errorf("Fired = %v, want %v", step.Fired, tt.wantFired)
			}
			if math.Abs(step.ReferenceY-tt.to*1000) > epsilon {
				t.Errorf("ReferenceY = %f, want %f", step.ReferenceY, tt.to*1000)
			}
		})
	}
}

func TestController_ReferenceTracksBelowDeadband(t *testing.T) {
	ctrl := newController(t, Config{Height: 1000, Deadband: 10, Sensitivity: 5})

	ctrl.Update(0.500)
	// Three 5px steps: each is noise on its own.
	for i, y := range []float64{0.505, 0.510, 0.515} {
		step := ctrl.Update(y)
		if step.Fired {
			t.Errorf("step %d fired on a 5px move", i)
		}
		ref, ok := ctrl.ReferenceY()
		if !ok || math.Abs(ref-y*1000) > epsilon {
			t.Errorf("step %d: reference = %f, want %f", i, ref, y*1000)
		}
	}
}

func TestController_SmallAmountRoundsToNothing(t *testing.T) {
	ctrl := newController(t, Config{Height: 1000, Deadband: 1, Sensitivity: 10})

	ctrl.Update(0.5)
	step := ctrl.Update(0.504) // 4px / 10 rounds to 0

	if step.Fired || step.Amount != 0 {
		t.Errorf("step = %+v, want no scroll", step)
	}
}

func TestNewController_Validation(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{name: "zero height", cfg: Config{Height: 0, Deadband: 1, Sensitivity: 1}},
		{name: "negative deadband", cfg: Config{Height: 10, Deadband: -1, Sensitivity: 1}},
		{name: "zero sensitivity", cfg: Config{Height: 10, Deadband: 1, Sensitivity: 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewController(tt.cfg); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestReference_Y(t *testing.T) {
	hand := detector.SyntheticHand([5]bool{true, true, true, true, false})

	if got := ReferenceWrist.Y(&hand); got != hand.Points[detector.Wrist].Y {
		t.Errorf("wrist Y = %f, want %f", got, hand.Points[detector.Wrist].Y)
	}
	if got := ReferenceFingertips.Y(&hand); math.Abs(got-0.40) > epsilon {
		t.Errorf("fingertip mean Y = %f, want 0.40", got)
	}
}
