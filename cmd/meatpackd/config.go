package main

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/danmuck/meatpack/internal/config"
	"github.com/danmuck/meatpack/internal/logging"
	"github.com/rs/zerolog"
)

type fileConfig struct {
	LogLevel string `toml:"log_level"`
	Packer   struct {
		BufferSize      int  `toml:"buffer_size"`
		StripComments   bool `toml:"strip_comments"`
		StripWhitespace bool `toml:"strip_whitespace"`
	} `toml:"packer"`
	Unpacker struct {
		BufferSize int `toml:"buffer_size"`
	} `toml:"unpacker"`
	Server struct {
		Name         string   `toml:"name"`
		Addr         string   `toml:"addr"`
		CorsOrigins  []string `toml:"cors_origins"`
		MaxBodyBytes int64    `toml:"max_body_bytes"`
	} `toml:"server"`
}

type serviceConfig struct {
	config.Config
	// LogLevel is only set when the file names one.
	LogLevel *zerolog.Level
}

func defaultServiceConfig() serviceConfig {
	return serviceConfig{Config: config.Default()}
}

func loadServiceConfig(path string) (serviceConfig, error) {
	cfg := defaultServiceConfig()

	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return serviceConfig{}, fmt.Errorf("load meatpackd config: %w", err)
	}

	if meta.IsDefined("server", "name") {
		if name := strings.TrimSpace(raw.Server.Name); name != "" {
			cfg.Server.Name = name
		}
	}

	if meta.IsDefined("server", "addr") {
		cfg.Server.Addr = strings.TrimSpace(raw.Server.Addr)
	}

	if meta.IsDefined("server", "cors_origins") {
		cfg.Server.CorsOrigins = normalizeOrigins(raw.Server.CorsOrigins)
	}

	if meta.IsDefined("server", "max_body_bytes") {
		cfg.Server.MaxBodyBytes = raw.Server.MaxBodyBytes
	}

	if meta.IsDefined("packer", "buffer_size") {
		cfg.Packer.BufferSize = raw.Packer.BufferSize
	}

	if meta.IsDefined("unpacker", "buffer_size") {
		cfg.Unpacker.BufferSize = raw.Unpacker.BufferSize
	}

	if meta.IsDefined("packer", "strip_comments") {
		cfg.Packer.StripComments = raw.Packer.StripComments
	}

	if meta.IsDefined("packer", "strip_whitespace") {
		cfg.Packer.StripWhitespace = raw.Packer.StripWhitespace
	}

	if meta.IsDefined("log_level") {
		lvl, ok := logging.ParseLevel(raw.LogLevel)
		if !ok {
			return serviceConfig{}, fmt.Errorf("parse log_level: unknown level %q", raw.LogLevel)
		}
		cfg.LogLevel = &lvl
	}

	if err := config.Validate(cfg.Config); err != nil {
		return serviceConfig{}, fmt.Errorf("validate meatpackd config: %w", err)
	}
	return cfg, nil
}

func normalizeOrigins(in []string) []string {
	out := make([]string, 0, len(in))
	for _, origin := range in {
		v := strings.TrimSpace(origin)
		if v == "" {
			continue
		}
		out = append(out, v)
	}
	return out
}
