// Package app runs the frame loop that feeds camera frames through the
// landmark detector into a control session.
package app

import (
	"errors"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/ayusman/phantomtouch/internal/actuator"
	"github.com/ayusman/phantomtouch/internal/capture"
	"github.com/ayusman/phantomtouch/internal/control"
	"github.com/ayusman/phantomtouch/internal/detector"
	"github.com/ayusman/phantomtouch/internal/mode"
)

// WarnInterval is the minimum gap between repeated warnings of one kind.
const WarnInterval = 5 * time.Second

// ErrQuit is returned by Step when the user pressed the quit key in the
// overlay window.
var ErrQuit = errors.New("quit requested")

// Config holds the collaborators of an App.
type Config struct {
	Camera   capture.Camera
	Detector detector.Detector
	Session  *control.Session
	// Toggle gates the pointer the session drives.
	Toggle *actuator.Toggle
	// Display shows annotated frames. Nil runs headless.
	Display Display
	Logger  *slog.Logger
}

// App is the frame orchestrator. Run drives it from a single goroutine;
// SetEnabled and OnModeChange may be called from any goroutine.
type App struct {
	camera   capture.Camera
	detector detector.Detector
	session  *control.Session
	toggle   *actuator.Toggle
	display  Display
	logger   *slog.Logger

	mu        sync.RWMutex
	listeners []func(mode.ControlMode)

	readWarn   rate.Sometimes
	detectWarn rate.Sometimes
	rejectWarn rate.Sometimes
}

// New creates an App from cfg.
func New(cfg Config) (*App, error) {
	switch {
	case cfg.Camera == nil:
		return nil, errors.New("app requires a camera")
	case cfg.Detector == nil:
		return nil, errors.New("app requires a detector")
	case cfg.Session == nil:
		return nil, errors.New("app requires a session")
	case cfg.Toggle == nil:
		return nil, errors.New("app requires a pointer toggle")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &App{
		camera:     cfg.Camera,
		detector:   cfg.Detector,
		session:    cfg.Session,
		toggle:     cfg.Toggle,
		display:    cfg.Display,
		logger:     logger.With("component", "app"),
		readWarn:   rate.Sometimes{First: 1, Interval: WarnInterval},
		detectWarn: rate.Sometimes{First: 1, Interval: WarnInterval},
		rejectWarn: rate.Sometimes{First: 1, Interval: WarnInterval},
	}, nil
}

// SetEnabled pauses or resumes pointer output. The session keeps tracking
// modes while paused, so the shutdown gesture still works.
func (a *App) SetEnabled(enabled bool) {
	if a.toggle.Enabled() == enabled {
		return
	}
	a.toggle.SetEnabled(enabled)
	a.logger.Info("pointer output toggled", "enabled", enabled)
}

// IsEnabled reports whether pointer output is on.
func (a *App) IsEnabled() bool {
	return a.toggle.Enabled()
}

// OnModeChange registers fn to be called from the frame loop after every
// mode transition.
func (a *App) OnModeChange(fn func(mode.ControlMode)) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.listeners = append(a.listeners, fn)
}

func (a *App) notifyMode(m mode.ControlMode) {
	a.mu.RLock()
	listeners := append([](func(mode.ControlMode))(nil), a.listeners...)
	a.mu.RUnlock()

	for _, fn := range listeners {
		fn(m)
	}
}

// Session returns the control session.
func (a *App) Session() *control.Session {
	return a.session
}

// Close releases the detector and the display. The camera is closed by Run.
func (a *App) Close() error {
	var errs []error
	if err := a.detector.Close(); err != nil {
		errs = append(errs, err)
	}
	if a.display != nil {
		if err := a.display.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
