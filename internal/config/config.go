package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"

	"github.com/spf13/viper"

	"github.com/erkantaylan/marklite/internal/toc"
)

// Config holds the application configuration.
type Config struct {
	Host         string  `mapstructure:"host"`
	Port         int     `mapstructure:"port"`
	Theme        string  `mapstructure:"theme"`
	Font         string  `mapstructure:"font"`
	FontSize     string  `mapstructure:"font_size"`
	LogLevel     string  `mapstructure:"log_level"`
	ScrollMargin float64 `mapstructure:"scroll_margin"`
	ExportFooter bool    `mapstructure:"export_footer"`
}

// ErrInvalidSetting is returned when a theme, font or font size is unknown.
var ErrInvalidSetting = errors.New("invalid setting")

var (
	Themes    = []string{"dark", "light", "paper"}
	Fonts     = []string{"inter", "merriweather", "lora", "source-serif", "fira-sans"}
	FontSizes = []string{"small", "medium", "large"}
)

// Store wraps a viper instance and persists settings changes.
type Store struct {
	v *viper.Viper
}

// Dir returns the marklite config directory, respecting XDG_CONFIG_HOME.
func Dir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "marklite")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "marklite")
}

// Load reads configuration from file (or the default search path when
// file is empty) and the environment. A missing file is not an error.
func Load(file string) (*Store, error) {
	v := viper.New()
	v.SetDefault("host", "localhost")
	v.SetDefault("port", 3000)
	v.SetDefault("theme", "dark")
	v.SetDefault("font", "inter")
	v.SetDefault("font_size", "medium")
	v.SetDefault("log_level", "info")
	v.SetDefault("scroll_margin", toc.DefaultMargin)
	v.SetDefault("export_footer", true)

	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName("marklite")
		v.SetConfigType("yaml")
		v.AddConfigPath(Dir())
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("MARKLITE")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	s := &Store{v: v}
	c := s.Config()
	for key, val := range map[string]string{"theme": c.Theme, "font": c.Font, "font_size": c.FontSize} {
		if err := Validate(key, val); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Viper exposes the underlying instance for flag binding.
func (s *Store) Viper() *viper.Viper {
	return s.v
}

// Config returns the current configuration.
func (s *Store) Config() Config {
	var c Config
	// Unmarshal only fails on type mismatches; fall back to getters.
	if err := s.v.Unmarshal(&c); err != nil {
		c = Config{
			Host:         s.v.GetString("host"),
			Port:         s.v.GetInt("port"),
			Theme:        s.v.GetString("theme"),
			Font:         s.v.GetString("font"),
			FontSize:     s.v.GetString("font_size"),
			LogLevel:     s.v.GetString("log_level"),
			ScrollMargin: s.v.GetFloat64("scroll_margin"),
			ExportFooter: s.v.GetBool("export_footer"),
		}
	}
	return c
}

// Validate checks a theme, font or font_size value.
func Validate(key, value string) error {
	var allowed []string
	switch key {
	case "theme":
		allowed = Themes
	case "font":
		allowed = Fonts
	case "font_size":
		allowed = FontSizes
	default:
		return fmt.Errorf("%w: unknown key %q", ErrInvalidSetting, key)
	}
	if !slices.Contains(allowed, value) {
		return fmt.Errorf("%w: %s %q", ErrInvalidSetting, key, value)
	}
	return nil
}

// Set validates and stores a display setting, then writes the config file.
func (s *Store) Set(key, value string) error {
	if err := Validate(key, value); err != nil {
		return err
	}
	s.v.Set(key, value)
	return s.save()
}

func (s *Store) save() error {
	if used := s.v.ConfigFileUsed(); used != "" {
		if err := os.MkdirAll(filepath.Dir(used), 0755); err != nil {
			return fmt.Errorf("create config dir: %w", err)
		}
		if err := s.v.WriteConfigAs(used); err != nil {
			return fmt.Errorf("write config: %w", err)
		}
		return nil
	}

	dir := Dir()
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	path := filepath.Join(dir, "marklite.yaml")
	if err := s.v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	s.v.SetConfigFile(path)
	return nil
}
