package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/ayusman/phantomtouch/internal/actuator"
	"github.com/ayusman/phantomtouch/internal/app"
	"github.com/ayusman/phantomtouch/internal/capture"
	"github.com/ayusman/phantomtouch/internal/config"
	"github.com/ayusman/phantomtouch/internal/control"
	"github.com/ayusman/phantomtouch/internal/detector"
	"github.com/ayusman/phantomtouch/internal/mode"
	"github.com/ayusman/phantomtouch/internal/plugin"
	"github.com/ayusman/phantomtouch/internal/store"
	"github.com/ayusman/phantomtouch/internal/telemetry"
	"github.com/ayusman/phantomtouch/internal/tray"
)

func main() {
	configPath := flag.String("config", "", "YAML config file (defaults apply when empty)")
	setting := flag.String("set", "", "store a key=value setting override and exit")
	unset := flag.String("unset", "", "remove a stored setting override and exit")
	replayPath := flag.String("replay", "", "replay a recorded landmark stream instead of the camera")
	loop := flag.Bool("loop", false, "loop the replayed recording")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	var st *store.Store
	if cfg.Store.Path != "" {
		st, err = store.New(cfg.Store.Path)
		if err != nil {
			log.Fatalf("Failed to open settings store: %v", err)
		}
		defer st.Close()
	}

	if *setting != "" || *unset != "" {
		if st == nil {
			log.Fatalf("No settings store configured (store.path is empty)")
		}
		if err := editSetting(cfg, st, *setting, *unset); err != nil {
			log.Fatalf("%v", err)
		}
		return
	}

	if st != nil {
		overrides, err := st.Settings().Map()
		if err != nil {
			log.Fatalf("Failed to read stored settings: %v", err)
		}
		if err := cfg.ApplyOverrides(overrides); err != nil {
			log.Fatalf("Failed to apply stored settings: %v", err)
		}
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("%v", err)
	}

	level, _ := config.ParseLevel(cfg.Log.Level)
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	fmt.Println("PhantomTouch - Hand Pointer Control")

	width, height := surfaceSize(cfg)
	if width <= 0 || height <= 0 {
		log.Fatalf("Cannot determine screen size; set screen.width and screen.height")
	}

	pointer, closePointer, err := newPointer(cfg, logger)
	if err != nil {
		log.Fatalf("Failed to set up pointer backend: %v", err)
	}
	defer closePointer()
	toggle := actuator.NewToggle(pointer, true)

	recorder, metrics, err := telemetry.NewRecorder()
	if err != nil {
		log.Fatalf("Failed to set up telemetry: %v", err)
	}

	session, err := control.NewSession(cfg.Params(width, height), toggle,
		control.WithLogger(logger),
		control.WithMetrics(metrics),
	)
	if err != nil {
		log.Fatalf("Failed to create session: %v", err)
	}

	camera, det, err := newSource(cfg, *replayPath, *loop)
	if err != nil {
		log.Fatalf("Failed to set up frame source: %v", err)
	}

	var display app.Display
	if cfg.Display.Overlay {
		display = app.NewWindow(cfg.Display.Title)
	}

	a, err := app.New(app.Config{
		Camera:   camera,
		Detector: det,
		Session:  session,
		Toggle:   toggle,
		Display:  display,
		Logger:   logger,
	})
	if err != nil {
		log.Fatalf("Failed to create app: %v", err)
	}
	defer a.Close()

	logger.Info("starting",
		"backend", cfg.Actuator.Backend,
		"screen", fmt.Sprintf("%dx%d", width, height),
		"hand", cfg.Hand.Label,
		"shutdown_gesture", cfg.Shutdown.Gesture,
		"replay", *replayPath != "")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Tray.Enabled {
		runWithTray(ctx, stop, a, logger)
	} else if err := a.Run(ctx); err != nil {
		logger.Error("pipeline failed", "error", err)
	}

	totals, err := recorder.Totals(context.Background())
	if err == nil {
		logger.Info("session summary",
			"frames", totals[telemetry.FramesProcessed],
			"dropouts", totals[telemetry.HandDropouts],
			"rejected", totals[telemetry.FramesRejected],
			"mode_changes", totals[telemetry.ModeChanges],
			"clicks", totals[telemetry.Clicks],
			"scrolls", totals[telemetry.Scrolls])
	}
	recorder.Shutdown(context.Background())
}

// runWithTray runs the pipeline in the background while the tray owns the
// main goroutine.
func runWithTray(ctx context.Context, stop context.CancelFunc, a *app.App, logger *slog.Logger) {
	t := tray.New()
	t.OnToggle(a.SetEnabled)
	t.OnQuit(stop)
	a.OnModeChange(func(m mode.ControlMode) { t.SetMode(m) })

	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := a.Run(ctx); err != nil {
			logger.Error("pipeline failed", "error", err)
		}
		t.Quit()
	}()

	t.Run()
	stop()
	<-done
}

// editSetting validates and stores one override, or removes one.
func editSetting(cfg *config.Config, st *store.Store, setting, unset string) error {
	if unset != "" {
		if err := st.Settings().Delete(unset); err != nil {
			return fmt.Errorf("remove setting %s: %w", unset, err)
		}
		fmt.Printf("Removed %s\n", unset)
		return nil
	}

	key, value, ok := strings.Cut(setting, "=")
	if !ok {
		return fmt.Errorf("setting %q is not key=value", setting)
	}

	probe := *cfg
	if err := probe.Set(key, value); err != nil {
		return err
	}
	if err := probe.Validate(); err != nil {
		return err
	}
	if err := st.Settings().Set(key, value); err != nil {
		return fmt.Errorf("store setting %s: %w", key, err)
	}
	fmt.Printf("Stored %s=%s\n", key, value)
	return nil
}

// surfaceSize returns the configured screen size, falling back to the main
// display.
func surfaceSize(cfg *config.Config) (int, int) {
	if cfg.Screen.Width > 0 && cfg.Screen.Height > 0 {
		return cfg.Screen.Width, cfg.Screen.Height
	}
	return actuator.ScreenSize()
}

func newPointer(cfg *config.Config, logger *slog.Logger) (actuator.Pointer, func() error, error) {
	noop := func() error { return nil }

	switch cfg.Actuator.Backend {
	case actuator.BackendRobotgo:
		return actuator.NewRobotgo(), noop, nil

	case actuator.BackendPlugin:
		mgr := plugin.NewManager(cfg.Actuator.PluginDir)
		if err := mgr.Discover(); err != nil {
			return nil, nil, fmt.Errorf("discover plugins in %s: %w", cfg.Actuator.PluginDir, err)
		}
		p, err := mgr.Get(cfg.Actuator.Plugin)
		if err != nil {
			return nil, nil, err
		}
		for _, op := range []actuator.Op{actuator.OpMove, actuator.OpClick, actuator.OpScroll} {
			if !p.Manifest.Supports(string(op)) {
				return nil, nil, fmt.Errorf("plugin %s does not support %s", p.Manifest.Name, op)
			}
		}
		pp := actuator.NewPluginPointer(p, plugin.NewExecutor(cfg.Actuator.Timeout), cfg.Actuator.QueueSize)
		logger.Info("using pointer plugin", "name", p.Manifest.Name, "version", p.Manifest.Version)
		return pp, pp.Close, nil

	default:
		return actuator.NewLogPointer(logger), noop, nil
	}
}

func newSource(cfg *config.Config, replayPath string, loop bool) (capture.Camera, detector.Detector, error) {
	if replayPath != "" {
		f, err := os.Open(replayPath)
		if err != nil {
			return nil, nil, err
		}
		defer f.Close()

		det, err := detector.NewReplayDetector(f, loop)
		if err != nil {
			return nil, nil, fmt.Errorf("load recording %s: %w", replayPath, err)
		}
		if det.Len() == 0 {
			return nil, nil, fmt.Errorf("recording %s has no frames", replayPath)
		}
		camera := capture.NewBlankCamera(capture.DefaultWidth, capture.DefaultHeight)
		camera.SetFPS(cfg.Camera.FPS)
		return camera, det, nil
	}

	camera := capture.NewCamera(capture.Options{
		DeviceID: cfg.Camera.DeviceID,
		FPS:      cfg.Camera.FPS,
		Mirror:   cfg.Camera.Mirror,
	})
	det, err := detector.NewMediaPipeDetector(cfg.DetectorConfig())
	if err != nil {
		return nil, nil, err
	}
	return camera, det, nil
}
