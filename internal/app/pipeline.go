package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/ayusman/phantomtouch/internal/capture"
	"github.com/ayusman/phantomtouch/internal/control"
)

// Run opens the camera and processes one frame per tick at the camera's
// frame rate until ctx is cancelled, the input is exhausted, the quit key
// is pressed or the shutdown gesture completes. Per-frame failures are
// logged and skipped.
func (a *App) Run(ctx context.Context) error {
	if err := a.camera.Open(); err != nil {
		return fmt.Errorf("open camera: %w", err)
	}
	defer func() {
		if err := a.camera.Close(); err != nil {
			a.logger.Warn("close camera failed", "error", err)
		}
	}()

	fps := a.camera.FPS()
	if fps <= 0 {
		fps = capture.DefaultFPS
	}
	ticker := time.NewTicker(time.Second / time.Duration(fps))
	defer ticker.Stop()

	a.logger.Info("pipeline started", "fps", fps, "session_id", a.session.ID(), "enabled", a.IsEnabled())

	for {
		select {
		case <-ctx.Done():
			a.logger.Info("pipeline stopped", "reason", "cancelled")
			return nil
		case <-ticker.C:
			result, err := a.Step(ctx)
			switch {
			case errors.Is(err, io.EOF):
				a.logger.Info("pipeline stopped", "reason", "input exhausted")
				return nil
			case errors.Is(err, ErrQuit):
				a.logger.Info("pipeline stopped", "reason", "quit key")
				return nil
			case err != nil:
				continue
			}
			if result.Shutdown {
				a.logger.Info("pipeline stopped", "reason", "shutdown gesture")
				return nil
			}
		}
	}
}

// Step reads, detects and processes a single frame. It returns io.EOF
// (wrapped) when the camera or detector has no more input.
func (a *App) Step(ctx context.Context) (control.FrameResult, error) {
	idle := control.FrameResult{Mode: a.session.Mode()}

	frame, err := a.camera.ReadFrame()
	if err != nil {
		if !errors.Is(err, io.EOF) {
			a.readWarn.Do(func() {
				a.logger.Warn("read frame failed", "error", err)
			})
		}
		return idle, fmt.Errorf("read frame: %w", err)
	}
	defer frame.Close()

	hands, err := a.detector.Detect(frame)
	if err != nil {
		if !errors.Is(err, io.EOF) {
			a.detectWarn.Do(func() {
				a.logger.Warn("hand detection failed", "error", err)
			})
		}
		return idle, fmt.Errorf("detect: %w", err)
	}

	result, err := a.session.ProcessFrame(ctx, hands)
	if err != nil {
		a.rejectWarn.Do(func() {
			a.logger.Warn("frame rejected", "error", err)
		})
		return result, err
	}

	if result.Resolution.Changed {
		a.notifyMode(result.Mode)
	}

	if a.display != nil {
		Annotate(frame, result, a.IsEnabled())
		if a.display.Show(frame) {
			return result, ErrQuit
		}
	}

	return result, nil
}
