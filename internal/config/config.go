// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

// Package config loads libisofuzz's environment-variable configuration
// (spec section "EXTERNAL INTERFACES") using viper, mirroring the teacher's
// mapstructure-tagged configuration structs.
package config

import (
	"strconv"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

const (
	defaultRandomSeed = int64(42)
	defaultEpochMS    = 5
)

// Config holds everything the library reads from the environment at Init.
type Config struct {
	// RandomSeed seeds the scheduler's priority PRNG. RANDOM_SEED env var;
	// non-integer values fall back to defaultRandomSeed.
	RandomSeed int64 `mapstructure:"random_seed"`

	// OutFile is the trace destination path. Empty means stdout. OUT_FILE
	// env var.
	OutFile string `mapstructure:"out_file"`

	// EpochMS is the COLLECTING window duration in milliseconds.
	// ISOFUZZ_EPOCH_MS env var; non-positive or non-integer falls back to
	// defaultEpochMS.
	EpochMS int `mapstructure:"epoch_ms"`

	// MetricsAddr, when non-empty, starts the optional debug HTTP server
	// (/metrics, /debug/status) on this address. ISOFUZZ_METRICS_ADDR.
	MetricsAddr string `mapstructure:"metrics_addr"`

	// WatchFile, when non-empty, is watched for live EpochMS overrides.
	// ISOFUZZ_CONFIG_FILE. Never overrides RandomSeed.
	WatchFile string `mapstructure:"watch_file"`

	// RotateMaxSizeMB enables lumberjack-style size-based rotation of
	// OutFile when non-zero. Supplemental; default 0 keeps the spec's
	// plain single-file append behavior.
	RotateMaxSizeMB  int  `mapstructure:"rotate_max_size_mb"`
	RotateMaxBackups int  `mapstructure:"rotate_max_backups"`
	RotateCompress   bool `mapstructure:"rotate_compress"`

	// LogLevel controls the library's own diagnostic logging (not the trace
	// sink). ISOFUZZ_LOG_LEVEL env var; defaults to "info", falls back to
	// "info" on an unrecognized value.
	LogLevel string `mapstructure:"log_level"`
}

// Load reads configuration from the environment. It never returns an error
// for malformed values (spec: "Environment parse failure: fall back to the
// documented default; no warning"). The returned error is currently always
// nil: an unreadable WatchFile is logged as a warning and its override is
// skipped.
func Load() (*Config, error) {
	v := viper.New()
	v.AutomaticEnv()

	cfg := &Config{
		RandomSeed:  parseIntOr(v.GetString("RANDOM_SEED"), defaultRandomSeed),
		OutFile:     v.GetString("OUT_FILE"),
		EpochMS:     parsePositiveIntOr(v.GetString("ISOFUZZ_EPOCH_MS"), defaultEpochMS),
		MetricsAddr: v.GetString("ISOFUZZ_METRICS_ADDR"),
		WatchFile:   v.GetString("ISOFUZZ_CONFIG_FILE"),
		LogLevel:    v.GetString("ISOFUZZ_LOG_LEVEL"),
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}

	if raw := v.GetString("ISOFUZZ_ROTATE_MAX_SIZE_MB"); raw != "" {
		cfg.RotateMaxSizeMB = parsePositiveIntOr(raw, 0)
	}
	if raw := v.GetString("ISOFUZZ_ROTATE_MAX_BACKUPS"); raw != "" {
		cfg.RotateMaxBackups = parsePositiveIntOr(raw, 0)
	}
	cfg.RotateCompress = v.GetBool("ISOFUZZ_ROTATE_COMPRESS")

	if cfg.WatchFile != "" {
		if err := applyFileOverride(cfg, cfg.WatchFile); err != nil {
			log.Warn().Err(errors.Wrap(err, "config: initial watch file read")).
				Str("path", cfg.WatchFile).
				Msg("ignoring unreadable ISOFUZZ_CONFIG_FILE at startup")
		}
	}

	return cfg, nil
}

func applyFileOverride(cfg *Config, path string) error {
	fv := viper.New()
	fv.SetConfigFile(path)
	if err := fv.ReadInConfig(); err != nil {
		return errors.Wrap(err, "read config file")
	}
	if fv.IsSet("epoch_ms") {
		if ms := fv.GetInt("epoch_ms"); ms > 0 {
			cfg.EpochMS = ms
		}
	}
	return nil
}

func parseIntOr(raw string, fallback int64) int64 {
	if raw == "" {
		return fallback
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return fallback
	}
	return n
}

func parsePositiveIntOr(raw string, fallback int) int {
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}
