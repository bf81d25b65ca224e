// Melodex - Mood-Driven Music Recommendation Core
// Copyright 2026 Sonic Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/soniclabs/melodex

// Package logging builds the zerolog loggers used throughout Melodex.
//
// Melodex is a library, so there is no global logger: callers construct
// a zerolog.Logger with New and hand it to the engine, which scopes it
// per component. JSON output is the default; console output is meant
// for local development.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Config holds logging configuration.
type Config struct {
	// Level is the minimum log level: trace, debug, info, warn, error.
	// Default: info.
	Level string `json:"level" koanf:"level"`

	// Format is the output format: json or console.
	// Default: json.
	Format string `json:"format" koanf:"format"`

	// Caller includes caller file and line number in log events.
	// Default: false.
	Caller bool `json:"caller" koanf:"caller"`

	// Output is the writer for log output. Default: os.Stderr.
	Output io.Writer `json:"-" koanf:"-"`
}

// DefaultConfig returns the default logging configuration.
func DefaultConfig() Config {
	return Config{
		Level:  "info",
		Format: "json",
		Caller: false,
		Output: os.Stderr,
	}
}

// New constructs a zerolog.Logger from cfg.
// An unknown level or format is reported as an error rather than
// silently downgraded.
func New(cfg Config) (zerolog.Logger, error) {
	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}

	level := cfg.Level
	if level == "" {
		level = "info"
	}
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil {
		return zerolog.Nop(), fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
	}

	switch strings.ToLower(cfg.Format) {
	case "", "json":
		// zerolog's native output
	case "console":
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	default:
		return zerolog.Nop(), fmt.Errorf("invalid log format %q: want json or console", cfg.Format)
	}

	ctx := zerolog.New(out).Level(lvl).With().Timestamp()
	if cfg.Caller {
		ctx = ctx.Caller()
	}
	return ctx.Logger(), nil
}
