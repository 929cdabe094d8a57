package config

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/viper"

	"github.com/hubastard/handmade/engine/core"
	"github.com/hubastard/handmade/engine/input"
)

// Config is the on-disk and environment form of the settings. Keys are
// snake_case under their section, e.g. window.width or HANDMADE_WINDOW_WIDTH.
type Config struct {
	Backend string        `mapstructure:"backend"`
	Window  WindowConfig  `mapstructure:"window"`
	Buffer  BufferConfig  `mapstructure:"buffer"`
	Input   InputConfig   `mapstructure:"input"`
	Loop    LoopConfig    `mapstructure:"loop"`
	Logging LoggingConfig `mapstructure:"logging"`
}

type WindowConfig struct {
	Title     string `mapstructure:"title"`
	ClassName string `mapstructure:"class_name"`
	Width     int    `mapstructure:"width"`
	Height    int    `mapstructure:"height"`
	VSync     bool   `mapstructure:"vsync"`
}

type BufferConfig struct {
	Resize string `mapstructure:"resize"`
}

type InputConfig struct {
	ControllerSlots int `mapstructure:"controller_slots"`
}

type LoopConfig struct {
	MaxFrames uint64 `mapstructure:"max_frames"`
}

type LoggingConfig struct {
	Level   string `mapstructure:"level"`
	File    string `mapstructure:"file"`
	Console bool   `mapstructure:"console"`
}

// DefaultConfig mirrors core.DefaultConfig plus the process settings.
func DefaultConfig() *Config {
	c := core.DefaultConfig()
	return &Config{
		Backend: "glfw",
		Window: WindowConfig{
			Title:     c.Title,
			ClassName: c.ClassName,
			Width:     c.Width,
			Height:    c.Height,
			VSync:     c.VSync,
		},
		Buffer:  BufferConfig{Resize: string(c.Resize)},
		Input:   InputConfig{ControllerSlots: c.ControllerSlots},
		Logging: LoggingConfig{Level: "info", Console: true},
	}
}

// Load reads defaults, then the config file, then HANDMADE_* variables.
// Without cfgFile a missing handmade.yaml in the working directory is fine.
func Load(cfgFile string) (*Config, error) {
	v := viper.New()

	cfg := DefaultConfig()
	setDefaults(v, cfg)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.AddConfigPath(".")
		v.SetConfigType("yaml")
		v.SetConfigName("handmade")
	}

	v.SetEnvPrefix("HANDMADE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	return cfg, nil
}

var validLevels = []string{"trace", "debug", "info", "warn", "error"}

func (c *Config) Validate() error {
	if c.Backend == "" {
		return errors.New("backend must be set")
	}
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		return fmt.Errorf("window size must be positive, got %dx%d", c.Window.Width, c.Window.Height)
	}
	if c.Input.ControllerSlots < 1 || c.Input.ControllerSlots > input.MaxSlots {
		return fmt.Errorf("input.controller_slots must be between 1 and %d", input.MaxSlots)
	}
	switch core.ResizePolicy(c.Buffer.Resize) {
	case core.ResizeMatchWindow, core.ResizeFixed:
	default:
		return fmt.Errorf("buffer.resize must be %q or %q", core.ResizeMatchWindow, core.ResizeFixed)
	}
	if !slices.Contains(validLevels, c.Logging.Level) {
		return fmt.Errorf("logging.level must be one of: %v", validLevels)
	}
	return nil
}

// Core converts to the loop's configuration.
func (c *Config) Core() core.Config {
	return core.Config{
		Title:           c.Window.Title,
		ClassName:       c.Window.ClassName,
		Width:           c.Window.Width,
		Height:          c.Window.Height,
		VSync:           c.Window.VSync,
		ControllerSlots: c.Input.ControllerSlots,
		Resize:          core.ResizePolicy(c.Buffer.Resize),
		MaxFrames:       c.Loop.MaxFrames,
	}
}

func setDefaults(v *viper.Viper, cfg *Config) {
	v.SetDefault("backend", cfg.Backend)

	v.SetDefault("window.title", cfg.Window.Title)
	v.SetDefault("window.class_name", cfg.Window.ClassName)
	v.SetDefault("window.width", cfg.Window.Width)
	v.SetDefault("window.height", cfg.Window.Height)
	v.SetDefault("window.vsync", cfg.Window.VSync)

	v.SetDefault("buffer.resize", cfg.Buffer.Resize)
	v.SetDefault("input.controller_slots", cfg.Input.ControllerSlots)
	v.SetDefault("loop.max_frames", cfg.Loop.MaxFrames)

	v.SetDefault("logging.level", cfg.Logging.Level)
	v.SetDefault("logging.file", cfg.Logging.File)
	v.SetDefault("logging.console", cfg.Logging.Console)
}
