// Melodex - Mood-Driven Music Recommendation Core
// Copyright 2026 Sonic Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/soniclabs/melodex

package melodex

import (
	"fmt"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
	"github.com/rs/zerolog"

	"github.com/soniclabs/melodex/internal/logging"
	"github.com/soniclabs/melodex/internal/search"
	"github.com/soniclabs/melodex/internal/simgraph"
)

// SimilarityConfig parameterizes the similarity graph build.
type SimilarityConfig struct {
	// FeatureKeys names the audio features compared by cosine
	// similarity. Default: energy, valence, tempo.
	FeatureKeys []string `json:"feature_keys" koanf:"feature_keys"`

	// MoodWeight scales the mood-tag overlap term. Default: 0.6.
	MoodWeight float64 `json:"mood_weight" koanf:"mood_weight"`

	// FeatureWeight scales the feature cosine term. Must sum to 1 with
	// MoodWeight. Default: 0.4.
	FeatureWeight float64 `json:"feature_weight" koanf:"feature_weight"`

	// Threshold is the minimum combined score that creates an edge.
	// Default: 0.3.
	Threshold float64 `json:"threshold" koanf:"threshold"`
}

// TraversalConfig bounds the tree recommendation traversals.
type TraversalConfig struct {
	// MaxDepth bounds BFS category descent from the start genre; 0
	// means only tracks directly attached to it. Default: 2.
	MaxDepth int `json:"max_depth" koanf:"max_depth"`

	// MaxBreadth bounds the children DFS explores per node. Default: 5.
	MaxBreadth int `json:"max_breadth" koanf:"max_breadth"`
}

// SearchConfig controls the text search index.
type SearchConfig struct {
	// MinQueryLength is the minimum rune count of a query. Default: 3.
	MinQueryLength int `json:"min_query_length" koanf:"min_query_length"`

	// MaxResults caps the number of search matches. Default: 20.
	MaxResults int `json:"max_results" koanf:"max_results"`

	// EnableFuzzy turns on trigram typo-tolerant matching. Default: false.
	EnableFuzzy bool `json:"enable_fuzzy" koanf:"enable_fuzzy"`

	// FuzzyThreshold is the minimum trigram similarity for a fuzzy
	// match, in [0, 1]. Default: 0.6.
	FuzzyThreshold float64 `json:"fuzzy_threshold" koanf:"fuzzy_threshold"`

	// CacheSize bounds the similarity memoization cache. Default: 4096.
	CacheSize int `json:"cache_size" koanf:"cache_size"`
}

// LoggingConfig controls structured log output.
type LoggingConfig struct {
	// Level is the minimum log level: trace, debug, info, warn, error.
	// Default: info.
	Level string `json:"level" koanf:"level"`

	// Format is json or console. Default: json.
	Format string `json:"format" koanf:"format"`

	// Caller includes caller file and line in log events. Default: false.
	Caller bool `json:"caller" koanf:"caller"`
}

// Config is the full engine configuration.
type Config struct {
	Similarity SimilarityConfig `json:"similarity" koanf:"similarity"`
	Traversal  TraversalConfig  `json:"traversal" koanf:"traversal"`
	Search     SearchConfig     `json:"search" koanf:"search"`
	Logging    LoggingConfig    `json:"logging" koanf:"logging"`
}

// DefaultConfig returns the default engine configuration.
func DefaultConfig() Config {
	return Config{
		Similarity: SimilarityConfig{
			FeatureKeys:   []string{"energy", "valence", "tempo"},
			MoodWeight:    0.6,
			FeatureWeight: 0.4,
			Threshold:     0.3,
		},
		Traversal: TraversalConfig{
			MaxDepth:   2,
			MaxBreadth: 5,
		},
		Search: SearchConfig{
			MinQueryLength: search.DefaultMinQueryLength,
			MaxResults:     search.DefaultMaxResults,
			EnableFuzzy:    false,
			FuzzyThreshold: search.DefaultFuzzyThreshold,
			CacheSize:      search.DefaultCacheSize,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
	}
}

// Validate checks the configuration, failing fast rather than clamping.
func (c *Config) Validate() error {
	if err := c.similarityParams().Validate(); err != nil {
		return fmt.Errorf("similarity: %w", err)
	}
	if c.Traversal.MaxDepth < 0 {
		return fmt.Errorf("traversal: max_depth must be non-negative, got %d", c.Traversal.MaxDepth)
	}
	if c.Traversal.MaxBreadth < 1 {
		return fmt.Errorf("traversal: max_breadth must be positive, got %d", c.Traversal.MaxBreadth)
	}
	if err := c.searchConfig().Validate(); err != nil {
		return fmt.Errorf("search: %w", err)
	}
	return nil
}

// similarityParams converts the similarity section to graph parameters.
func (c *Config) similarityParams() simgraph.Params {
	return simgraph.Params{
		FeatureKeys:   c.Similarity.FeatureKeys,
		MoodWeight:    c.Similarity.MoodWeight,
		FeatureWeight: c.Similarity.FeatureWeight,
		Threshold:     c.Similarity.Threshold,
	}
}

// searchConfig converts the search section to the index configuration.
func (c *Config) searchConfig() search.Config {
	return search.Config{
		MinQueryLength: c.Search.MinQueryLength,
		MaxResults:     c.Search.MaxResults,
		EnableFuzzy:    c.Search.EnableFuzzy,
		FuzzyThreshold: c.Search.FuzzyThreshold,
		CacheSize:      c.Search.CacheSize,
	}
}

// NewLogger constructs a zerolog.Logger from the logging section,
// suitable for passing to NewEngine. An unknown level or format is an
// error rather than a silent downgrade.
func NewLogger(cfg LoggingConfig) (zerolog.Logger, error) {
	return logging.New(logging.Config{
		Level:  cfg.Level,
		Format: cfg.Format,
		Caller: cfg.Caller,
	})
}

// Load builds a Config from layered sources with increasing priority:
// built-in defaults, then the optional YAML file at path (skipped when
// path is empty), then MELODEX_* environment variables. The result is
// validated before it is returned.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	defaults := DefaultConfig()
	if err := k.Load(structs.Provider(&defaults, "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// sliceConfigPaths lists config paths parsed as comma-separated slices
// when they arrive as plain strings from the environment.
var sliceConfigPaths = []string{
	"similarity.feature_keys",
}

// processSliceFields converts comma-separated string values to slices
// for the known slice fields.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		val := k.Get(path)
		if val == nil {
			continue
		}
		if _, ok := val.([]interface{}); ok {
			continue
		}
		if _, ok := val.([]string); ok {
			continue
		}

		strVal, ok := val.(string)
		if !ok || strVal == "" {
			continue
		}
		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if len(trimmed) > 0 {
			if err := k.Set(path, trimmed); err != nil {
				return fmt.Errorf("failed to set %s: %w", path, err)
			}
		}
	}
	return nil
}

// envTransformFunc maps MELODEX_* environment variable names to koanf
// config paths. Unmapped variables are skipped so unrelated environment
// entries never pollute the configuration.
//
// Examples:
//   - MELODEX_MOOD_WEIGHT -> similarity.mood_weight
//   - MELODEX_MAX_DEPTH -> traversal.max_depth
//   - MELODEX_LOG_LEVEL -> logging.level
func envTransformFunc(key string) string {
	key = strings.ToLower(key)

	envMappings := map[string]string{
		// Similarity mappings
		"melodex_feature_keys":         "similarity.feature_keys",
		"melodex_mood_weight":          "similarity.mood_weight",
		"melodex_feature_weight":       "similarity.feature_weight",
		"melodex_similarity_threshold": "similarity.threshold",

		// Traversal mappings
		"melodex_max_depth":   "traversal.max_depth",
		"melodex_max_breadth": "traversal.max_breadth",

		// Search mappings
		"melodex_min_query_length": "search.min_query_length",
		"melodex_max_results":      "search.max_results",
		"melodex_enable_fuzzy":     "search.enable_fuzzy",
		"melodex_fuzzy_threshold":  "search.fuzzy_threshold",
		"melodex_cache_size":       "search.cache_size",

		// Logging mappings
		"melodex_log_level":  "logging.level",
		"melodex_log_format": "logging.format",
		"melodex_log_caller": "logging.caller",
	}

	if mapped, ok := envMappings[key]; ok {
		return mapped
	}
	return ""
}
