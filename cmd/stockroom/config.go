package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/tinytelemetry/stockroom/internal/model"

	"github.com/spf13/viper"
)

// cliConfig holds the client settings.
type cliConfig struct {
	ServerURL         string        `mapstructure:"server-url"`
	AlertTimeout      int           `mapstructure:"alert-timeout"`
	RowsPerPage       int           `mapstructure:"rows-per-page"`
	AnimationDuration time.Duration `mapstructure:"animation-duration"`
	AnimationFrame    time.Duration `mapstructure:"animation-frame"`
	AnchorMargin      int           `mapstructure:"anchor-margin"`
	RequestTimeout    time.Duration `mapstructure:"request-timeout"`
	LogFile           string        `mapstructure:"log-file"`
}

func loadCLIConfig(configPath string) (cliConfig, error) {
	var cfg cliConfig

	home, err := os.UserHomeDir()
	if err != nil {
		return cfg, fmt.Errorf("finding home directory: %w", err)
	}

	v := viper.New()
	v.SetEnvPrefix("STOCKROOM")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))

	v.SetDefault("server-url", model.DefaultServerURL)
	v.SetDefault("alert-timeout", model.DefaultAlertTimeout)
	v.SetDefault("rows-per-page", model.DefaultRowsPerPage)
	v.SetDefault("animation-duration", model.DefaultAnimationDuration)
	v.SetDefault("animation-frame", model.DefaultAnimationFrame)
	v.SetDefault("anchor-margin", model.DefaultAnchorMargin)
	v.SetDefault("request-timeout", model.DefaultRequestTimeout)
	v.SetDefault("log-file", filepath.Join(home, ".config", "stockroom", "stockroom.log"))

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigFile(filepath.Join(home, ".config", "stockroom", "config.yml"))
	}

	if err := v.ReadInConfig(); err != nil {
		var configFileNotFound viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFound) && !os.IsNotExist(err) {
			return cfg, err
		}
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, err
	}

	if cfg.RowsPerPage <= 0 {
		return cfg, fmt.Errorf("rows-per-page must be positive, got %d", cfg.RowsPerPage)
	}
	if cfg.AnimationFrame <= 0 {
		return cfg, fmt.Errorf("animation-frame must be positive, got %s", cfg.AnimationFrame)
	}

	return cfg, nil
}
