// Package config loads crusty settings from defaults, an optional
// crusty.yaml, CRUSTY_* environment variables and bound flags.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	RedisAddr  string
	BadgerPath string
	HTTPPort   string
	TopWords   int
	LogLevel   string
}

// New returns a viper instance with crusty's defaults, config search paths
// and environment binding. Flags can be bound to it before Load.
func New() *viper.Viper {
	v := viper.New()
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("badger.path", "./badger-data")
	v.SetDefault("http.port", "3000")
	v.SetDefault("words.top", 10)
	v.SetDefault("log.level", "info")

	v.SetConfigName("crusty")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME")

	v.SetEnvPrefix("CRUSTY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads the config file (a missing file is fine) and returns the
// resolved settings. A non-empty path replaces the search paths.
func Load(v *viper.Viper, path string) (*Config, error) {
	if path != "" {
		v.SetConfigFile(path)
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	cfg := &Config{
		RedisAddr:  v.GetString("redis.addr"),
		BadgerPath: v.GetString("badger.path"),
		HTTPPort:   v.GetString("http.port"),
		TopWords:   v.GetInt("words.top"),
		LogLevel:   v.GetString("log.level"),
	}
	if cfg.TopWords < 0 {
		return nil, fmt.Errorf("words.top must not be negative, got %d", cfg.TopWords)
	}
	return cfg, nil
}
