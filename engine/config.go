// Package engine runs an ecs.World inside an ebiten window: it loads the engine configuration,
// builds the logger, translates window input into scheduler events and drives the frame stages.
package engine

import (
	"errors"
	"io"
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/plus3/hotbean/ecs"
)

var ErrInvalidConfig = eris.New("invalid engine config")

// Config is the engine configuration, usually read from a YAML file.
type Config struct {
	Window  WindowConfig  `yaml:"window"`
	Logging LoggingConfig `yaml:"logging"`
	Loop    LoopConfig    `yaml:"loop"`
	Debug   DebugConfig   `yaml:"debug"`
}

type WindowConfig struct {
	Title     string `yaml:"title"`
	Width     int    `yaml:"width"`
	Height    int    `yaml:"height"`
	Resizable bool   `yaml:"resizable"`
}

type LoggingConfig struct {
	// Level is a zap level name: debug, info, warn or error.
	Level string `yaml:"level"`
	// Console selects the human readable development encoder instead of JSON.
	Console bool `yaml:"console"`
	// Path is an extra output file. Logs always go to stderr.
	Path string `yaml:"path"`
}

type LoopConfig struct {
	// TPS is the number of Update calls per second.
	TPS int `yaml:"tps"`
	// FixedStep is the FixedUpdate step in seconds.
	FixedStep float64 `yaml:"fixed_step"`
	// MaxDelta caps the frame delta in seconds.
	MaxDelta float64 `yaml:"max_delta"`
}

type DebugConfig struct {
	// Imgui enables the Dear ImGui overlay and the debug windows.
	Imgui bool `yaml:"imgui"`
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() Config {
	return Config{
		Window: WindowConfig{
			Title:     "Hot Bean Engine",
			Width:     1280,
			Height:    720,
			Resizable: true,
		},
		Logging: LoggingConfig{
			Level:   "info",
			Console: true,
		},
		Loop: LoopConfig{
			TPS:       60,
			FixedStep: ecs.DefaultFixedStep,
			MaxDelta:  ecs.DefaultMaxDelta,
		},
	}
}

// LoadConfig decodes YAML from r over the defaults, so a file only needs the keys it changes.
func LoadConfig(r io.Reader) (Config, error) {
	cfg := DefaultConfig()
	if err := yaml.NewDecoder(r).Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, eris.Wrap(err, "decoding engine config")
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadConfigFile reads the config at path. An empty path returns the defaults.
func LoadConfigFile(path string) (Config, error) {
	if path == "" {
		return DefaultConfig(), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return Config{}, eris.Wrapf(err, "opening engine config %q", path)
	}
	defer f.Close()
	return LoadConfig(f)
}

func (c Config) Validate() error {
	switch {
	case c.Window.Width <= 0 || c.Window.Height <= 0:
		return eris.Wrapf(ErrInvalidConfig, "window size %dx%d", c.Window.Width, c.Window.Height)
	case c.Loop.TPS <= 0:
		return eris.Wrapf(ErrInvalidConfig, "tps %d", c.Loop.TPS)
	case c.Loop.FixedStep <= 0:
		return eris.Wrapf(ErrInvalidConfig, "fixed step %v", c.Loop.FixedStep)
	case c.Loop.MaxDelta < c.Loop.FixedStep:
		return eris.Wrapf(ErrInvalidConfig, "max delta %v is below the fixed step %v", c.Loop.MaxDelta, c.Loop.FixedStep)
	}
	if _, err := parseLevel(c.Logging.Level); err != nil {
		return err
	}
	return nil
}

// SchedulerOptions returns the scheduler settings of the loop section.
func (c Config) SchedulerOptions() []ecs.SchedulerOption {
	return []ecs.SchedulerOption{
		ecs.WithFixedStep(c.Loop.FixedStep),
		ecs.WithMaxDelta(c.Loop.MaxDelta),
	}
}
