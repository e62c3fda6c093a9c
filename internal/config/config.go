// Package config loads the server's two configuration value objects from
// a YAML file plus environment overrides, the way firestige-Otus's
// internal/otus/config loader wires up viper.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// GameMode mirrors the wire-visible game mode values.
type GameMode int32

const (
	Survival GameMode = iota
	Creative
	Adventure
	Spectator
)

// ParseGameMode accepts the names used in config files and CLI flags.
func ParseGameMode(s string) (GameMode, error) {
	switch strings.ToLower(s) {
	case "survival":
		return Survival, nil
	case "creative":
		return Creative, nil
	case "adventure":
		return Adventure, nil
	case "spectator":
		return Spectator, nil
	default:
		return 0, fmt.Errorf("unknown game mode %q", s)
	}
}

// ServerConfig holds the wire-affecting settings spec.md §6.5 names.
type ServerConfig struct {
	Motd             string   `mapstructure:"motd" yaml:"motd"`
	Slots            int32    `mapstructure:"slots" yaml:"slots"`
	GameMode         GameMode `mapstructure:"-" yaml:"-"`
	GameModeName     string   `mapstructure:"game_mode" yaml:"game_mode"`
	Difficulty       uint8    `mapstructure:"difficulty" yaml:"difficulty"`
	NetEndpoint      string   `mapstructure:"net_endpoint" yaml:"net_endpoint"`
	NetCompression   int32    `mapstructure:"net_compression" yaml:"net_compression"`
	GeneratorThreads uint32   `mapstructure:"generator_threads" yaml:"generator_threads"`
	ViewDistance     int32    `mapstructure:"view_dist" yaml:"view_dist"`
	Seed             *int64   `mapstructure:"seed" yaml:"seed,omitempty"`
}

// RuntimeLimits holds the ambient resource-control settings spec.md treats
// as implicit rather than naming outright.
type RuntimeLimits struct {
	MaxPacketsPerSecond int           `mapstructure:"max_packets_per_second" yaml:"max_packets_per_second"`
	ReadTimeout         time.Duration `mapstructure:"read_timeout" yaml:"read_timeout"`
	WriteTimeout        time.Duration `mapstructure:"write_timeout" yaml:"write_timeout"`
}

// Config bundles both value objects as loaded from a single file.
type Config struct {
	Server   ServerConfig  `mapstructure:"server" yaml:"server"`
	Limits   RuntimeLimits `mapstructure:"limits" yaml:"limits"`
	LogLevel string        `mapstructure:"log_level" yaml:"log_level"`
}

const envPrefix = "STONEGATE"

// Load reads path (YAML) and environment variables prefixed STONEGATE_,
// applying defaults after unmarshalling — matching firestige-Otus's
// loader.go, which fills LoggerConfig defaults post-unmarshal rather than
// pre-seeding viper with them.
func Load(path string) (*Config, error) {
	v := viper.New()

	dir := filepath.Dir(path)
	filename := filepath.Base(path)
	ext := filepath.Ext(filename)
	name := strings.TrimSuffix(filename, ext)

	v.SetConfigName(name)
	v.SetConfigType(strings.TrimPrefix(ext, "."))
	v.AddConfigPath(dir)

	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config file %s: %w", path, err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	applyDefaults(&cfg)

	mode, err := ParseGameMode(cfg.Server.GameModeName)
	if err != nil {
		return nil, err
	}
	cfg.Server.GameMode = mode

	return &cfg, nil
}

// applyDefaults fills in zero-value fields the YAML/env layer left unset.
func applyDefaults(cfg *Config) {
	if cfg.Server.Motd == "" {
		cfg.Server.Motd = "A Stonegate Server"
	}
	if cfg.Server.Slots == 0 {
		cfg.Server.Slots = 20
	}
	if cfg.Server.GameModeName == "" {
		cfg.Server.GameModeName = "survival"
	}
	if cfg.Server.NetEndpoint == "" {
		cfg.Server.NetEndpoint = "0.0.0.0:25565"
	}
	if cfg.Server.GeneratorThreads == 0 {
		cfg.Server.GeneratorThreads = 4
	}
	if cfg.Server.ViewDistance == 0 {
		cfg.Server.ViewDistance = 7
	}
	if cfg.Limits.MaxPacketsPerSecond == 0 {
		cfg.Limits.MaxPacketsPerSecond = 200
	}
	if cfg.Limits.ReadTimeout == 0 {
		cfg.Limits.ReadTimeout = 30 * time.Second
	}
	if cfg.Limits.WriteTimeout == 0 {
		cfg.Limits.WriteTimeout = 10 * time.Second
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
}

// WriteDefault marshals a Config with every default applied to path as
// YAML, for scaffolding a new deployment's config file.
func WriteDefault(path string) error {
	var cfg Config
	applyDefaults(&cfg)

	out, err := yaml.Marshal(&cfg)
	if err != nil {
		return fmt.Errorf("marshalling default config: %w", err)
	}
	if err := os.WriteFile(path, out, 0o644); err != nil {
		return fmt.Errorf("writing config file %s: %w", path, err)
	}
	return nil
}
