package config

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/spf13/viper"
	"github.com/terraincognita07/forgeboard/internal/services"
)

const EnvPrefix = "FORGEBOARD"

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Streak   StreakConfig   `mapstructure:"streak"`
	Timezone string         `mapstructure:"timezone"`
	LogLevel string         `mapstructure:"log_level"`
}

type ServerConfig struct {
	Port         string `mapstructure:"port"`
	CookieSecure bool   `mapstructure:"cookie_secure"`
}

type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

type AuthConfig struct {
	SecretKey string        `mapstructure:"secret_key"`
	TokenTTL  time.Duration `mapstructure:"token_ttl"`
}

type StreakConfig struct {
	WindowDays        int           `mapstructure:"window_days"`
	ImplicitMiss      bool          `mapstructure:"implicit_miss"`
	Cutoff            time.Duration `mapstructure:"cutoff"`
	SweepLookbackDays int           `mapstructure:"sweep_lookback_days"`
	SweepInterval     time.Duration `mapstructure:"sweep_interval"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.cookie_secure", false)
	v.SetDefault("database.path", filepath.Join("data", "forgeboard.db"))
	v.SetDefault("auth.secret_key", "")
	v.SetDefault("auth.token_ttl", 7*24*time.Hour)
	v.SetDefault("streak.window_days", 0)
	v.SetDefault("streak.implicit_miss", true)
	v.SetDefault("streak.cutoff", 24*time.Hour)
	v.SetDefault("streak.sweep_lookback_days", 7)
	v.SetDefault("streak.sweep_interval", time.Hour)
	v.SetDefault("timezone", "UTC")
	v.SetDefault("log_level", "info")
}

// Load reads forgeboard.yaml from the working directory (or the explicit
// path) and lets FORGEBOARD_* variables override it, e.g.
// FORGEBOARD_STREAK_WINDOW_DAYS. A missing file is not an error.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("forgeboard")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (cfg *Config) validate() error {
	if strings.TrimSpace(cfg.Database.Path) == "" {
		return errors.New("database.path must not be empty")
	}
	if cfg.Streak.WindowDays < 0 {
		return errors.New("streak.window_days must not be negative")
	}
	if cfg.Streak.Cutoff <= 0 || cfg.Streak.Cutoff > 24*time.Hour {
		return errors.New("streak.cutoff must be within (0, 24h]")
	}
	if cfg.Streak.SweepLookbackDays <= 0 {
		return errors.New("streak.sweep_lookback_days must be positive")
	}
	return nil
}

// Location falls back to UTC for an unknown zone name.
func (cfg *Config) Location() *time.Location {
	location, err := time.LoadLocation(strings.TrimSpace(cfg.Timezone))
	if err != nil {
		slog.Warn("invalid timezone, falling back to UTC", "timezone", cfg.Timezone)
		return time.UTC
	}
	return location
}

func (cfg *Config) SlogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(cfg.LogLevel))); err != nil {
		return slog.LevelInfo
	}
	return level
}

func (cfg *Config) StreakServiceConfig() services.StreakConfig {
	return services.StreakConfig{
		WindowDays:        cfg.Streak.WindowDays,
		Policy:            services.StreakPolicy{ImplicitMissOnGap: cfg.Streak.ImplicitMiss},
		Cutoff:            cfg.Streak.Cutoff,
		SweepLookbackDays: cfg.Streak.SweepLookbackDays,
	}
}
