// Package config holds the PhantomTouch configuration: defaults, the YAML
// file, and dotted-key overrides from the settings store.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ayusman/phantomtouch/internal/actuator"
	"github.com/ayusman/phantomtouch/internal/control"
	"github.com/ayusman/phantomtouch/internal/cursor"
	"github.com/ayusman/phantomtouch/internal/detector"
	"github.com/ayusman/phantomtouch/internal/mode"
	"github.com/ayusman/phantomtouch/internal/posture"
	"github.com/ayusman/phantomtouch/internal/scroll"
)

// ErrInvalidConfig is wrapped by every validation failure.
var ErrInvalidConfig = errors.New("invalid config")

// DataDirName is the directory under the user's home holding PhantomTouch state.
const DataDirName = ".phantomtouch"

// Config is the complete application configuration.
type Config struct {
	Log      LogConfig      `yaml:"log"`
	Camera   CameraConfig   `yaml:"camera"`
	Detector DetectorConfig `yaml:"detector"`
	Hand     HandConfig     `yaml:"hand"`
	Screen   ScreenConfig   `yaml:"screen"`
	Cursor   CursorConfig   `yaml:"cursor"`
	Click    ClickConfig    `yaml:"click"`
	Scroll   ScrollConfig   `yaml:"scroll"`
	Shutdown ShutdownConfig `yaml:"shutdown"`
	Actuator ActuatorConfig `yaml:"actuator"`
	Display  DisplayConfig  `yaml:"display"`
	Tray     TrayConfig     `yaml:"tray"`
	Store    StoreConfig    `yaml:"store"`
}

type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `yaml:"level"`
}

type CameraConfig struct {
	DeviceID int  `yaml:"device_id"`
	FPS      int  `yaml:"fps"`
	Mirror   bool `yaml:"mirror"`
}

type DetectorConfig struct {
	MaxHands               int     `yaml:"max_hands"`
	MinDetectionConfidence float64 `yaml:"min_detection_confidence"`
	MinTrackingConfidence  float64 `yaml:"min_tracking_confidence"`
}

type HandConfig struct {
	// Label is the handedness to track, Left or Right.
	Label string `yaml:"label"`
}

// ScreenConfig overrides the actuator surface size. Zero means use the
// main display size.
type ScreenConfig struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

type CursorConfig struct {
	Strategy cursor.Strategy `yaml:"strategy"`
	Alpha    float64         `yaml:"alpha"`
	Window   int             `yaml:"window"`
}

type ClickConfig struct {
	LeftThreshold  float64       `yaml:"left_threshold"`
	RightThreshold float64       `yaml:"right_threshold"`
	Cooldown       time.Duration `yaml:"cooldown"`
}

type ScrollConfig struct {
	Reference   scroll.Reference `yaml:"reference"`
	Deadband    float64          `yaml:"deadband"`
	Sensitivity float64          `yaml:"sensitivity"`
	Invert      bool             `yaml:"invert"`
}

type ShutdownConfig struct {
	Gesture posture.FingerState `yaml:"gesture"`
	Frames  int                 `yaml:"frames"`
}

type ActuatorConfig struct {
	// Backend is robotgo, plugin or none.
	Backend   string        `yaml:"backend"`
	PluginDir string        `yaml:"plugin_dir"`
	Plugin    string        `yaml:"plugin"`
	Timeout   time.Duration `yaml:"timeout"`
	QueueSize int           `yaml:"queue_size"`
}

type DisplayConfig struct {
	// Overlay opens a preview window with landmarks and the mode banner.
	Overlay bool   `yaml:"overlay"`
	Title   string `yaml:"title"`
}

type TrayConfig struct {
	Enabled bool `yaml:"enabled"`
}

type StoreConfig struct {
	// Path of the SQLite settings database. Empty disables stored overrides.
	Path string `yaml:"path"`
}

// Default returns the stock configuration.
func Default() *Config {
	dataDir := DataDir()
	return &Config{
		Log:    LogConfig{Level: "info"},
		Camera: CameraConfig{DeviceID: 0, FPS: 30, Mirror: true},
		Detector: DetectorConfig{
			MaxHands:               2,
			MinDetectionConfidence: 0.7,
			MinTrackingConfidence:  0.7,
		},
		Hand:   HandConfig{Label: detector.HandRight},
		Cursor: CursorConfig{Strategy: cursor.StrategyExponential, Alpha: 0.2, Window: 10},
		Click: ClickConfig{
			LeftThreshold:  0.05,
			RightThreshold: 0.05,
			Cooldown:       300 * time.Millisecond,
		},
		Scroll: ScrollConfig{
			Reference:   scroll.ReferenceWrist,
			Deadband:    10,
			Sensitivity: 2,
		},
		Shutdown: ShutdownConfig{Gesture: posture.MiddleOnly, Frames: mode.DefaultShutdownFrames},
		Actuator: ActuatorConfig{
			Backend:   actuator.BackendRobotgo,
			PluginDir: filepath.Join(dataDir, "plugins"),
			Plugin:    "pointer-xdotool",
			Timeout:   time.Second,
			QueueSize: actuator.DefaultQueueSize,
		},
		Display: DisplayConfig{Overlay: true, Title: "PhantomTouch - Right Hand Cursor Control"},
		Tray:    TrayConfig{Enabled: false},
		Store:   StoreConfig{Path: filepath.Join(dataDir, "phantomtouch.db")},
	}
}

// DataDir returns ~/.phantomtouch, or a relative .phantomtouch when the home
// directory is unknown.
func DataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return DataDirName
	}
	return filepath.Join(home, DataDirName)
}

// Load reads a YAML file over the defaults. Unknown keys are rejected.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load config %q: %w", path, err)
	}
	if err := decodeStrict(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %q: %w", path, err)
	}
	return cfg, nil
}

func decodeStrict(data []byte, cfg *Config) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// ApplyOverrides sets fields addressed by dotted keys, such as
// "cursor.alpha" = "0.3". Keys are applied in sorted order.
func (c *Config) ApplyOverrides(overrides map[string]string) error {
	keys := make([]string, 0, len(overrides))
	for k := range overrides {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		if err := c.Set(key, overrides[key]); err != nil {
			return err
		}
	}
	return nil
}

// Set applies one dotted-key override.
func (c *Config) Set(key, value string) error {
	parts := strings.Split(key, ".")
	for _, p := range parts {
		if p == "" {
			return fmt.Errorf("%w: malformed key %q", ErrInvalidConfig, key)
		}
	}

	// Build {a: {b: value}} and decode it over the current values.
	node := &yaml.Node{Kind: yaml.ScalarNode, Value: value}
	for i := len(parts) - 1; i >= 0; i-- {
		node = &yaml.Node{
			Kind: yaml.MappingNode,
			Content: []*yaml.Node{
				{Kind: yaml.ScalarNode, Value: parts[i]},
				node,
			},
		}
	}
	data, err := yaml.Marshal(node)
	if err != nil {
		return fmt.Errorf("encode override %q: %w", key, err)
	}
	if err := decodeStrict(data, c); err != nil {
		return fmt.Errorf("%w: override %s=%q: %v", ErrInvalidConfig, key, value, err)
	}
	return nil
}

// Validate checks ranges and enumerations.
func (c *Config) Validate() error {
	var errs []error
	check := func(ok bool, format string, args ...any) {
		if !ok {
			errs = append(errs, fmt.Errorf(format, args...))
		}
	}

	_, levelErr := ParseLevel(c.Log.Level)
	check(levelErr == nil, "log.level %q is not one of debug, info, warn, error", c.Log.Level)
	check(c.Camera.DeviceID >= 0, "camera.device_id must not be negative")
	check(c.Camera.FPS > 0, "camera.fps must be positive")
	check(c.Detector.MaxHands >= 1, "detector.max_hands must be at least 1")
	check(inUnit(c.Detector.MinDetectionConfidence), "detector.min_detection_confidence must be in [0,1]")
	check(inUnit(c.Detector.MinTrackingConfidence), "detector.min_tracking_confidence must be in [0,1]")
	check(c.Hand.Label == detector.HandLeft || c.Hand.Label == detector.HandRight,
		"hand.label must be %s or %s", detector.HandLeft, detector.HandRight)
	check(c.Screen.Width >= 0 && c.Screen.Height >= 0, "screen size must not be negative")
	check(c.Cursor.Strategy == cursor.StrategyExponential || c.Cursor.Strategy == cursor.StrategyMovingAverage,
		"cursor.strategy %q is not exponential or moving_average", c.Cursor.Strategy)
	check(c.Cursor.Alpha > 0 && c.Cursor.Alpha <= 1, "cursor.alpha must be in (0,1]")
	check(c.Cursor.Window >= 1, "cursor.window must be at least 1")
	check(c.Click.LeftThreshold > 0, "click.left_threshold must be positive")
	check(c.Click.RightThreshold > 0, "click.right_threshold must be positive")
	check(c.Click.Cooldown >= 0, "click.cooldown must not be negative")
	check(c.Scroll.Reference == scroll.ReferenceWrist || c.Scroll.Reference == scroll.ReferenceFingertips,
		"scroll.reference %q is not wrist or fingertips", c.Scroll.Reference)
	check(c.Scroll.Deadband >= 0, "scroll.deadband must not be negative")
	check(c.Scroll.Sensitivity > 0, "scroll.sensitivity must be positive")
	check(c.Shutdown.Frames >= 1, "shutdown.frames must be at least 1")
	if _, err := mode.NewResolver(c.Shutdown.Gesture, max(c.Shutdown.Frames, 1)); err != nil {
		errs = append(errs, fmt.Errorf("shutdown.gesture: %v", err))
	}
	switch c.Actuator.Backend {
	case actuator.BackendRobotgo, actuator.BackendNone:
	case actuator.BackendPlugin:
		check(c.Actuator.Plugin != "", "actuator.plugin is required for the plugin backend")
		check(c.Actuator.Timeout > 0, "actuator.timeout must be positive")
	default:
		errs = append(errs, fmt.Errorf("actuator.backend %q is not robotgo, plugin or none", c.Actuator.Backend))
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
	}
	return nil
}

// Params builds session parameters for a surface of width x height pixels.
func (c *Config) Params(width, height int) control.Params {
	p := control.DefaultParams(cursor.Bounds{Width: float64(width), Height: float64(height)})
	p.Hand = c.Hand.Label
	p.Filter = c.Cursor.Strategy
	p.Alpha = c.Cursor.Alpha
	p.Window = c.Cursor.Window
	p.LeftThreshold = c.Click.LeftThreshold
	p.RightThreshold = c.Click.RightThreshold
	p.Cooldown = c.Click.Cooldown
	p.ScrollReference = c.Scroll.Reference
	p.ScrollDeadband = c.Scroll.Deadband
	p.ScrollSensitivity = c.Scroll.Sensitivity
	p.ScrollInvert = c.Scroll.Invert
	p.ShutdownPosture = c.Shutdown.Gesture
	p.ShutdownFrames = c.Shutdown.Frames
	return p
}

// DetectorConfig returns the landmark detector settings.
func (c *Config) DetectorConfig() detector.Config {
	return detector.Config{
		MaxHands:        c.Detector.MaxHands,
		MinConfidence:   c.Detector.MinDetectionConfidence,
		MinTrackingConf: c.Detector.MinTrackingConfidence,
	}
}

// ParseLevel maps a level name to a slog level.
func ParseLevel(name string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(name)); err != nil {
		return 0, err
	}
	return level, nil
}

func inUnit(v float64) bool {
	return v >= 0 && v <= 1
}
