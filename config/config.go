// Package config loads runtime settings from defaults, an optional
// redroom.yaml, REDROOM_ environment variables and command-line flags.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/milk9111/redroom/common"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	ModeRoom = "room"
	ModeFlat = "flat"

	EnvPrefix = "REDROOM"
	FileName  = "redroom"
)

var (
	ErrUnknownMode = errors.New("config: unknown mode")
	ErrWindowSize  = errors.New("config: window size must be positive")
)

type Config struct {
	// Mode selects the 3D room sandbox or the flat sprite variant.
	Mode       string `mapstructure:"mode"`
	Debug      bool   `mapstructure:"debug"`
	HotReload  bool   `mapstructure:"hot_reload"`
	SkipMenu   bool   `mapstructure:"skip_menu"`
	PrefabsDir string `mapstructure:"prefabs_dir"`
	Window     Window `mapstructure:"window"`
}

type Window struct {
	Width      int    `mapstructure:"width"`
	Height     int    `mapstructure:"height"`
	Title      string `mapstructure:"title"`
	Fullscreen bool   `mapstructure:"fullscreen"`
	Resizable  bool   `mapstructure:"resizable"`
}

func Defaults() Config {
	return Config{
		Mode:       ModeRoom,
		PrefabsDir: "prefabs",
		Window: Window{
			Width:     common.BaseWidth,
			Height:    common.BaseHeight,
			Title:     "red room",
			Resizable: true,
		},
	}
}

// Mobile is the configuration used by the mobile binding: fullscreen, fixed
// size, no disk overrides, and straight into play since touch has no menu
// navigation.
func Mobile() Config {
	c := Defaults()
	c.PrefabsDir = ""
	c.SkipMenu = true
	c.Window.Fullscreen = true
	c.Window.Resizable = false
	return c
}

func (c Config) Validate() error {
	var errs []error
	switch c.Mode {
	case ModeRoom, ModeFlat:
	default:
		errs = append(errs, fmt.Errorf("%w %q (want %s or %s)", ErrUnknownMode, c.Mode, ModeRoom, ModeFlat))
	}
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		errs = append(errs, fmt.Errorf("%w, got %dx%d", ErrWindowSize, c.Window.Width, c.Window.Height))
	}
	return errors.Join(errs...)
}

// NewViper returns a viper instance with defaults, config file search paths
// and environment binding set up.
func NewViper() *viper.Viper {
	v := viper.New()
	d := Defaults()
	v.SetDefault("mode", d.Mode)
	v.SetDefault("debug", d.Debug)
	v.SetDefault("hot_reload", d.HotReload)
	v.SetDefault("skip_menu", d.SkipMenu)
	v.SetDefault("prefabs_dir", d.PrefabsDir)
	v.SetDefault("window.width", d.Window.Width)
	v.SetDefault("window.height", d.Window.Height)
	v.SetDefault("window.title", d.Window.Title)
	v.SetDefault("window.fullscreen", d.Window.Fullscreen)
	v.SetDefault("window.resizable", d.Window.Resizable)

	v.SetConfigName(FileName)
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME/.config/redroom")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// RegisterFlags adds the command-line flags and binds them to v.
func RegisterFlags(v *viper.Viper, flags *pflag.FlagSet) error {
	d := Defaults()
	flags.String("mode", d.Mode, "scene to play: room or flat")
	flags.Bool("debug", d.Debug, "show the debug overlay and physics minimap")
	flags.Bool("hot-reload", d.HotReload, "reload the scene when prefab files change")
	flags.Bool("skip-menu", d.SkipMenu, "start playing without the title menu")
	flags.String("prefabs-dir", d.PrefabsDir, "directory with prefab overrides, empty for embedded only")
	flags.Bool("fullscreen", d.Window.Fullscreen, "start fullscreen")

	binds := map[string]string{
		"mode":              "mode",
		"debug":             "debug",
		"hot_reload":        "hot-reload",
		"skip_menu":         "skip-menu",
		"prefabs_dir":       "prefabs-dir",
		"window.fullscreen": "fullscreen",
	}
	for key, name := range binds {
		if err := v.BindPFlag(key, flags.Lookup(name)); err != nil {
			return fmt.Errorf("config: bind %s: %w", name, err)
		}
	}
	return nil
}

// Load reads the optional config file and returns the validated settings.
// A missing config file is not an error.
func Load(v *viper.Viper) (Config, error) {
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("config: read %s: %w", v.ConfigFileUsed(), err)
		}
	}
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("config: decode: %w", err)
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}
