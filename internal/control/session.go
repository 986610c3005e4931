package control

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/ayusman/phantomtouch/internal/actuator"
	"github.com/ayusman/phantomtouch/internal/click"
	"github.com/ayusman/phantomtouch/internal/clock"
	"github.com/ayusman/phantomtouch/internal/cursor"
	"github.com/ayusman/phantomtouch/internal/detector"
	"github.com/ayusman/phantomtouch/internal/mode"
	"github.com/ayusman/phantomtouch/internal/posture"
	"github.com/ayusman/phantomtouch/internal/scroll"
	"github.com/ayusman/phantomtouch/internal/telemetry"
)

// FrameResult describes what one frame did.
type FrameResult struct {
	// Tracked is false when no hand with the tracked label was present.
	Tracked bool
	Hand    *detector.HandLandmarks
	Posture posture.FingerState
	// Mode is the mode in effect after the frame.
	Mode       mode.ControlMode
	Resolution mode.Resolution

	// Moved is set when the cursor was moved to Cursor.
	Moved  bool
	Cursor cursor.Point
	Clicks []click.Button
	Scroll scroll.Step

	// Shutdown asks the caller to stop after this frame.
	Shutdown bool
}

// Option configures a Session.
type Option func(*Session)

// WithClock sets the time source for click cooldowns.
func WithClock(c clock.Clock) Option {
	return func(s *Session) {
		s.clock = c
	}
}

// WithLogger sets the parent logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Session) {
		s.logger = l
	}
}

// WithMetrics records pipeline counters on m.
func WithMetrics(m *telemetry.Metrics) Option {
	return func(s *Session) {
		s.metrics = m
	}
}

// WithFilter replaces the cursor filter built from Params.
func WithFilter(f cursor.Filter) Option {
	return func(s *Session) {
		s.filter = f
	}
}

// Session owns all per-session pipeline state. It is driven by a single
// goroutine and is not safe for concurrent use.
type Session struct {
	id      string
	params  Params
	pointer actuator.Pointer

	clock   clock.Clock
	frame   *frameClock
	logger  *slog.Logger
	metrics *telemetry.Metrics

	resolver *mode.Resolver
	filter   cursor.Filter
	left     *click.PinchDetector
	right    *click.PinchDetector
	scroller *scroll.Controller

	done bool
}

// NewSession builds a session that drives pointer.
func NewSession(params Params, pointer actuator.Pointer, opts ...Option) (*Session, error) {
	if pointer == nil {
		return nil, fmt.Errorf("session requires a pointer")
	}
	if err := params.Validate(); err != nil {
		return nil, err
	}

	s := &Session{
		id:      uuid.NewString(),
		params:  params,
		pointer: pointer,
		clock:   clock.Real{},
		logger:  slog.Default(),
		frame:   &frameClock{},
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With("component", "control", "session_id", s.id)

	var err error
	if s.resolver, err = mode.NewResolver(params.ShutdownPosture, params.ShutdownFrames); err != nil {
		return nil, err
	}
	if s.filter == nil {
		if s.filter, err = cursor.New(params.Filter, params.Alpha, params.Window, params.Bounds); err != nil {
			return nil, err
		}
	}
	if s.left, err = click.NewPinchDetector(click.Left, params.LeftThreshold, params.Cooldown, s.frame); err != nil {
		return nil, err
	}
	if s.right, err = click.NewPinchDetector(click.Right, params.RightThreshold, params.Cooldown, s.frame); err != nil {
		return nil, err
	}
	if s.scroller, err = scroll.NewController(scroll.Config{
		Height:      params.Bounds.Height,
		Deadband:    params.ScrollDeadband,
		Sensitivity: params.ScrollSensitivity,
		Invert:      params.ScrollInvert,
	}); err != nil {
		return nil, err
	}

	return s, nil
}

// ID returns the session identifier.
func (s *Session) ID() string {
	return s.id
}

// Mode returns the current control mode.
func (s *Session) Mode() mode.ControlMode {
	return s.resolver.Mode()
}

// Done reports whether the shutdown gesture has ended the session.
func (s *Session) Done() bool {
	return s.done
}

// Cursor returns the last smoothed cursor position.
func (s *Session) Cursor() cursor.Point {
	return s.filter.Position()
}

// ProcessFrame runs one frame of detected hands through the pipeline.
//
// A frame without the tracked hand leaves every piece of state untouched and
// fires nothing. A tracked hand that fails validation is rejected with an
// error wrapping detector.ErrMalformedLandmarks, also without touching state.
func (s *Session) ProcessFrame(ctx context.Context, hands []detector.HandLandmarks) (FrameResult, error) {
	now := s.clock.Now()
	s.frame.now = now
	defer func() {
		s.metrics.ObserveFrame(ctx, s.clock.Now().Sub(now))
	}()

	result := FrameResult{Mode: s.resolver.Mode()}

	hand := s.selectHand(hands)
	if hand == nil {
		s.metrics.HandDropout(ctx)
		return result, nil
	}
	if err := hand.Validate(); err != nil {
		s.metrics.FrameRejected(ctx)
		return result, fmt.Errorf("session %s: %w", s.id, err)
	}

	result.Tracked = true
	result.Hand = hand
	result.Posture = posture.Classify(hand)
	result.Resolution = s.resolver.Resolve(result.Posture)
	result.Mode = result.Resolution.Mode
	s.metrics.FrameProcessed(ctx, result.Mode.String())

	if result.Resolution.Changed {
		s.logger.Info("mode changed",
			"from", result.Resolution.Previous,
			"to", result.Mode,
			"status", result.Mode.Banner())
		s.metrics.ModeChanged(ctx, result.Resolution.Previous.String(), result.Mode.String())
	}

	if result.Resolution.Shutdown {
		s.done = true
		result.Shutdown = true
		s.logger.Info("shutdown gesture held", "posture", result.Posture, "frames", result.Resolution.ShutdownCount)
		return result, nil
	}

	switch result.Mode {
	case mode.Mouse:
		s.moveCursor(hand, &result)
	case mode.Click:
		s.detectClicks(ctx, hand, &result)
	case mode.Scroll:
		s.updateScroll(ctx, hand, &result)
	case mode.Idle:
	}

	return result, nil
}

func (s *Session) selectHand(hands []detector.HandLandmarks) *detector.HandLandmarks {
	for i := range hands {
		if hands[i].Handedness == s.params.Hand {
			return &hands[i]
		}
	}
	return nil
}

func (s *Session) moveCursor(hand *detector.HandLandmarks, result *FrameResult) {
	tip := hand.Points[detector.IndexTip]
	pos := s.filter.Apply(s.params.Bounds.Scale(tip.X, tip.Y))
	s.pointer.MoveTo(int(math.Round(pos.X)), int(math.Round(pos.Y)))
	result.Moved = true
	result.Cursor = pos
}

func (s *Session) detectClicks(ctx context.Context, hand *detector.HandLandmarks, result *FrameResult) {
	for _, d := range []*click.PinchDetector{s.left, s.right} {
		if !d.UpdateHand(hand) {
			continue
		}
		s.pointer.Click(d.Button())
		s.metrics.Click(ctx, string(d.Button()))
		s.logger.Debug("click", "button", d.Button())
		result.Clicks = append(result.Clicks, d.Button())
	}
}

func (s *Session) updateScroll(ctx context.Context, hand *detector.HandLandmarks, result *FrameResult) {
	step := s.scroller.Update(s.params.ScrollReference.Y(hand))
	result.Scroll = step
	if !step.Fired {
		return
	}
	s.pointer.ScrollBy(step.Amount)
	direction := "up"
	if step.Amount < 0 {
		direction = "down"
	}
	s.metrics.Scroll(ctx, direction)
}

// frameClock hands every detector the same timestamp within a frame.
type frameClock struct {
	now time.Time
}

func (c *frameClock) Now() time.Time {
	return c.now
}
