package main

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config holds the settings shared by every command. Flags take precedence over
// OVERLAY_* environment variables, which take precedence over the config file.
type Config struct {
	Source  string      `mapstructure:"source"`
	Version int         `mapstructure:"version"`
	Format  string      `mapstructure:"format"`
	Log     LogConfig   `mapstructure:"log"`
	Neo4j   Neo4jConfig `mapstructure:"neo4j"`
}

type LogConfig struct {
	Format string `mapstructure:"format"`
	Level  string `mapstructure:"level"`
}

type Neo4jConfig struct {
	URL      string `mapstructure:"url"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Database string `mapstructure:"database"`
}

// setDefaults registers every key, so that AutomaticEnv can find the
// environment variable of keys no flag or file mentions.
func setDefaults(v *viper.Viper) {
	v.SetDefault("source", "file://.")
	v.SetDefault("version", 0)
	v.SetDefault("format", "yaml")
	v.SetDefault("log.format", "text")
	v.SetDefault("log.level", "info")
	v.SetDefault("neo4j.url", "neo4j://localhost:7687")
	v.SetDefault("neo4j.user", "")
	v.SetDefault("neo4j.password", "")
	v.SetDefault("neo4j.database", "neo4j")
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix("OVERLAY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	setDefaults(v)
	return v
}

// loadConfig reads the optional config file and binds the flags of the running
// command, then decodes the result.
func loadConfig(v *viper.Viper, path string, flags *pflag.FlagSet) (*Config, error) {
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file %s: %w", path, err)
		}
	}
	for key, name := range flagKeys {
		if f := flags.Lookup(name); f != nil {
			if err := v.BindPFlag(key, f); err != nil {
				return nil, fmt.Errorf("bind flag %s: %w", name, err)
			}
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if c.Version < 0 {
		return nil, fmt.Errorf("game version %d is negative", c.Version)
	}
	return &c, nil
}

// flagKeys maps config keys to the flags that override them.
var flagKeys = map[string]string{
	"source":         "source",
	"version":        "version",
	"format":         "format",
	"log.format":     "log-format",
	"log.level":      "log-level",
	"neo4j.url":      "neo4j-url",
	"neo4j.user":     "neo4j-user",
	"neo4j.password": "neo4j-password",
	"neo4j.database": "database",
}

// newLogger builds the process logger described by c.
func newLogger(w io.Writer, c LogConfig) (*slog.Logger, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Level)); err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}
	opts := &slog.HandlerOptions{Level: level}
	switch strings.ToLower(c.Format) {
	case "text":
		return slog.New(slog.NewTextHandler(w, opts)), nil
	case "json":
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	}
	return nil, fmt.Errorf("unknown log format %q", c.Format)
}
