// Package config loads viewer settings from defaults, an optional YAML file,
// REPLICA_ environment variables and command line flags, in that order of
// precedence (flags win).
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// ErrInvalid is wrapped by Validate failures.
var ErrInvalid = errors.New("invalid config")

// Config holds application configuration.
type Config struct {
	Asset    AssetConfig
	Window   WindowConfig
	Headless HeadlessConfig
	Render   RenderConfig
	Bridge   BridgeConfig
	Log      LogConfig
	Prefs    PrefsConfig
}

// AssetConfig controls which model is loaded and how it is normalised.
type AssetConfig struct {
	Path       string
	Watch      bool
	YawDegrees float32 `mapstructure:"yaw_degrees"`
	Lift       float32
	TargetSize float32 `mapstructure:"target_size"`
}

// WindowConfig holds desktop window settings.
type WindowConfig struct {
	Title  string
	Width  int
	Height int
	TPS    int
}

// HeadlessConfig holds settings for running without a window.
type HeadlessConfig struct {
	Enabled  bool
	Hz       int
	Ticks    uint64
	Width    int
	Height   int
	Snapshot string
}

// RenderConfig holds framing and quality settings.
type RenderConfig struct {
	CompactBreakpoint int  `mapstructure:"compact_breakpoint"`
	HD                bool `mapstructure:"hd"`
}

// BridgeConfig holds live framebuffer settings.
type BridgeConfig struct {
	TelemetryInterval time.Duration `mapstructure:"telemetry_interval"`
	FocusDistance     float32       `mapstructure:"focus_distance"`
	SynthHz           int           `mapstructure:"synth_hz"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string
	Color bool
}

// PrefsConfig locates the persisted preference store.
type PrefsConfig struct {
	Path string
}

// Dir returns the per-user configuration directory for replica.
func Dir() string {
	if d, err := os.UserConfigDir(); err == nil {
		return filepath.Join(d, "replica")
	}
	return filepath.Join(os.Getenv("HOME"), ".config", "replica")
}

// flagKeys maps command line flag names to config keys.
var flagKeys = map[string]string{
	"asset":    "asset.path",
	"watch":    "asset.watch",
	"headless": "headless.enabled",
	"hz":       "headless.hz",
	"ticks":    "headless.ticks",
	"snapshot": "headless.snapshot",
	"width":    "window.width",
	"height":   "window.height",
	"hd":       "render.hd",
	"log":      "log.level",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("asset.path", "assets/replica.glb")
	v.SetDefault("asset.watch", true)
	v.SetDefault("asset.yaw_degrees", -90)
	v.SetDefault("asset.lift", 0.05)
	v.SetDefault("asset.target_size", 1.5)
	v.SetDefault("window.title", "Replica")
	v.SetDefault("window.width", 1280)
	v.SetDefault("window.height", 800)
	v.SetDefault("window.tps", 60)
	v.SetDefault("headless.enabled", false)
	v.SetDefault("headless.hz", 60)
	v.SetDefault("headless.ticks", 0)
	v.SetDefault("headless.width", 1280)
	v.SetDefault("headless.height", 800)
	v.SetDefault("headless.snapshot", "")
	v.SetDefault("render.compact_breakpoint", 768)
	v.SetDefault("render.hd", true)
	v.SetDefault("bridge.telemetry_interval", "166ms")
	v.SetDefault("bridge.focus_distance", 3.5)
	v.SetDefault("bridge.synth_hz", 60)
	v.SetDefault("log.level", "warn")
	v.SetDefault("log.color", true)
	v.SetDefault("prefs.path", filepath.Join(Dir(), "prefs.yaml"))
}

// Load reads configuration. file may be empty, in which case REPLICA_CONFIG
// or config.yaml in Dir is used when present. flags may be nil; only flags
// the user actually set override other sources.
func Load(file string, flags *pflag.FlagSet) (Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigType("yaml")
	if file == "" {
		file = os.Getenv("REPLICA_CONFIG")
	}
	explicit := file != ""
	if explicit {
		v.SetConfigFile(file)
	} else {
		v.AddConfigPath(Dir())
		v.SetConfigName("config")
	}

	v.SetEnvPrefix("REPLICA")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if explicit || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	if flags != nil {
		for name, key := range flagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return Config{}, fmt.Errorf("bind flag %s: %w", name, err)
				}
			}
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Validate reports settings the viewer cannot run with.
func (c Config) Validate() error {
	switch {
	case c.Asset.TargetSize <= 0:
		return fmt.Errorf("%w: asset.target_size must be positive", ErrInvalid)
	case c.Headless.Hz <= 0:
		return fmt.Errorf("%w: headless.hz must be positive", ErrInvalid)
	case c.Render.CompactBreakpoint <= 0:
		return fmt.Errorf("%w: render.compact_breakpoint must be positive", ErrInvalid)
	case c.Bridge.TelemetryInterval <= 0:
		return fmt.Errorf("%w: bridge.telemetry_interval must be positive", ErrInvalid)
	case c.Window.Width <= 0 || c.Window.Height <= 0:
		return fmt.Errorf("%w: window size must be positive", ErrInvalid)
	}
	return nil
}
