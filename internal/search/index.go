// Melodex - Mood-Driven Music Recommendation Core
// Copyright 2026 Sonic Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/soniclabs/melodex

// Package search implements approximate text search over track names
// and artists.
//
// The index has two layers: an exact index of normalized strings with
// tiered substring scoring, and an optional trigram inverted index for
// fuzzy (typo-tolerant) matching. Fuzzy candidates are prefiltered
// through the trigram postings, so a query never scans the full
// catalog, and pairwise similarity scores are memoized in a bounded
// LRU cache to amortize repeated keystroke-driven queries.
//
// The index is built once from a finalized catalog. Queries are safe
// to run concurrently: the only mutable state is the similarity cache,
// which is lock-protected.
package search

import (
	"fmt"
	"sort"
	"strings"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/soniclabs/melodex/internal/cache"
)

// Default configuration values.
const (
	DefaultMinQueryLength = 3
	DefaultMaxResults     = 20
	DefaultFuzzyThreshold = 0.6
	DefaultCacheSize      = 4096
)

// Exact-phase tier scores.
const (
	scoreEqual     = 1.0
	scorePrefix    = 0.95
	scoreSuffix    = 0.9
	scoreSubstring = 0.8
)

// pairSeparator joins the two compared strings into a cache key. Unit
// separator cannot occur in normalized track text.
const pairSeparator = "\x1f"

// Config controls index construction and query behavior.
type Config struct {
	// MinQueryLength is the minimum number of runes a query must have;
	// shorter queries return no results. Default: 3.
	MinQueryLength int `json:"min_query_length" koanf:"min_query_length"`

	// MaxResults caps the number of matches returned. Default: 20.
	MaxResults int `json:"max_results" koanf:"max_results"`

	// EnableFuzzy builds the trigram index and enables the fuzzy
	// phase. Default: false.
	EnableFuzzy bool `json:"enable_fuzzy" koanf:"enable_fuzzy"`

	// FuzzyThreshold is the minimum trigram similarity a fuzzy
	// candidate must reach, in [0, 1]. Default: 0.6.
	FuzzyThreshold float64 `json:"fuzzy_threshold" koanf:"fuzzy_threshold"`

	// CacheSize bounds the similarity memoization cache. Default: 4096.
	CacheSize int `json:"cache_size" koanf:"cache_size"`
}

// DefaultConfig returns the default search configuration.
func DefaultConfig() Config {
	return Config{
		MinQueryLength: DefaultMinQueryLength,
		MaxResults:     DefaultMaxResults,
		EnableFuzzy:    false,
		FuzzyThreshold: DefaultFuzzyThreshold,
		CacheSize:      DefaultCacheSize,
	}
}

// Validate checks the configuration, failing fast rather than clamping.
func (c Config) Validate() error {
	if c.MinQueryLength < 1 {
		return fmt.Errorf("min_query_length must be positive, got %d", c.MinQueryLength)
	}
	if c.MaxResults < 1 {
		return fmt.Errorf("max_results must be positive, got %d", c.MaxResults)
	}
	if c.FuzzyThreshold < 0 || c.FuzzyThreshold > 1 {
		return fmt.Errorf("fuzzy_threshold must be in [0, 1], got %f", c.FuzzyThreshold)
	}
	if c.CacheSize < 1 {
		return fmt.Errorf("cache_size must be positive, got %d", c.CacheSize)
	}
	return nil
}

// Entry is one track's searchable text at construction time.
type Entry struct {
	ID     string
	Name   string
	Artist string
}

// MatchType distinguishes exact-phase from fuzzy-phase matches.
type MatchType int

const (
	// MatchExact is a tiered substring match against the exact index.
	MatchExact MatchType = iota
	// MatchFuzzy is a trigram-similarity match.
	MatchFuzzy
)

// String returns the wire name of the match type.
func (m MatchType) String() string {
	switch m {
	case MatchExact:
		return "exact"
	case MatchFuzzy:
		return "fuzzy"
	default:
		return "unknown"
	}
}

// MarshalJSON encodes the match type as its wire name.
func (m MatchType) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.String())
}

// Match is one ranked search result.
type Match struct {
	ID    string    `json:"id"`
	Score float64   `json:"score"`
	Type  MatchType `json:"match_type"`
}

// trackText holds a track's normalized text and trigram sets.
type trackText struct {
	name           string
	artist         string
	nameTrigrams   map[string]struct{}
	artistTrigrams map[string]struct{}
}

// Index answers ranked text queries over a track catalog.
type Index struct {
	cfg    Config
	logger zerolog.Logger

	// exact maps each normalized name, artist, and "name artist"
	// concatenation to the ids exhibiting it.
	exact map[string]map[string]struct{}

	// tracks holds per-id normalized text and trigram sets.
	tracks map[string]*trackText

	// postings is the trigram inverted index, present only when fuzzy
	// matching is enabled.
	postings map[string]map[string]struct{}

	// simCache memoizes trigram similarity scores keyed by the
	// compared string pair.
	simCache *cache.LRU
}

// NewIndex builds an index over entries. Zero-valued config fields
// take their defaults; out-of-range values are rejected.
func NewIndex(entries []Entry, cfg Config, logger zerolog.Logger) (*Index, error) {
	if cfg.MinQueryLength == 0 {
		cfg.MinQueryLength = DefaultMinQueryLength
	}
	if cfg.MaxResults == 0 {
		cfg.MaxResults = DefaultMaxResults
	}
	if cfg.FuzzyThreshold == 0 {
		cfg.FuzzyThreshold = DefaultFuzzyThreshold
	}
	if cfg.CacheSize == 0 {
		cfg.CacheSize = DefaultCacheSize
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid search config: %w", err)
	}

	idx := &Index{
		cfg:      cfg,
		logger:   logger.With().Str("component", "search").Logger(),
		exact:    make(map[string]map[string]struct{}),
		tracks:   make(map[string]*trackText, len(entries)),
		simCache: cache.NewLRU(cfg.CacheSize),
	}
	if cfg.EnableFuzzy {
		idx.postings = make(map[string]map[string]struct{})
	}

	for _, e := range entries {
		idx.add(e)
	}

	idx.logger.Debug().
		Int("tracks", len(idx.tracks)).
		Int("exact_keys", len(idx.exact)).
		Int("trigrams", len(idx.postings)).
		Bool("fuzzy", cfg.EnableFuzzy).
		Msg("search index built")
	return idx, nil
}

// add indexes a single entry.
func (i *Index) add(e Entry) {
	name := normalize(e.Name)
	artist := normalize(e.Artist)

	tt := &trackText{name: name, artist: artist}
	i.tracks[e.ID] = tt

	for _, key := range []string{name, artist, joinNonEmpty(name, artist)} {
		if key == "" {
			continue
		}
		if i.exact[key] == nil {
			i.exact[key] = make(map[string]struct{})
		}
		i.exact[key][e.ID] = struct{}{}
	}

	if !i.cfg.EnableFuzzy {
		return
	}

	if name != "" {
		tt.nameTrigrams = trigrams(name)
		i.post(tt.nameTrigrams, e.ID)
	}
	if artist != "" {
		tt.artistTrigrams = trigrams(artist)
		i.post(tt.artistTrigrams, e.ID)
	}
}

// post records id under every trigram in set.
func (i *Index) post(set map[string]struct{}, id string) {
	for t := range set {
		if i.postings[t] == nil {
			i.postings[t] = make(map[string]struct{})
		}
		i.postings[t][id] = struct{}{}
	}
}

// Search returns ranked matches for query: the exact phase first, then
// (when enabled) fuzzy matches for candidates the exact phase missed,
// truncated to MaxResults. Too-short queries and queries with no match
// return an empty result, never an error.
func (i *Index) Search(query string) []Match {
	q := normalize(query)
	if len([]rune(q)) < i.cfg.MinQueryLength {
		return nil
	}

	matches, seen := i.exactPhase(q)

	if i.cfg.EnableFuzzy && len(matches) < i.cfg.MaxResults {
		matches = append(matches, i.fuzzyPhase(q, seen)...)
	}

	if len(matches) > i.cfg.MaxResults {
		matches = matches[:i.cfg.MaxResults]
	}
	return matches
}

// exactPhase scans the exact index keys and scores them by tier:
// equality, key-starts-with-query, key-ends-with-query, then generic
// substring containment in either direction. Each id keeps its best
// tier.
func (i *Index) exactPhase(q string) ([]Match, map[string]struct{}) {
	best := make(map[string]float64)
	for key, ids := range i.exact {
		var tier float64
		switch {
		case key == q:
			tier = scoreEqual
		case strings.HasPrefix(key, q):
			tier = scorePrefix
		case strings.HasSuffix(key, q):
			tier = scoreSuffix
		case strings.Contains(key, q) || strings.Contains(q, key):
			tier = scoreSubstring
		default:
			continue
		}
		for id := range ids {
			if tier > best[id] {
				best[id] = tier
			}
		}
	}

	matches := make([]Match, 0, len(best))
	seen := make(map[string]struct{}, len(best))
	for id, score := range best {
		matches = append(matches, Match{ID: id, Score: score, Type: MatchExact})
		seen[id] = struct{}{}
	}
	sortMatches(matches)
	return matches, seen
}

// fuzzyPhase unions the candidate ids posted under the query's
// trigrams, scores each unseen candidate by its best name/artist
// trigram similarity, and keeps those meeting the threshold.
func (i *Index) fuzzyPhase(q string, seen map[string]struct{}) []Match {
	queryTrigrams := trigrams(q)

	candidates := make(map[string]struct{})
	for t := range queryTrigrams {
		for id := range i.postings[t] {
			if _, ok := seen[id]; !ok {
				candidates[id] = struct{}{}
			}
		}
	}

	var matches []Match
	for id := range candidates {
		tt := i.tracks[id]
		score := i.similarity(q, tt.name, queryTrigrams, tt.nameTrigrams)
		if s := i.similarity(q, tt.artist, queryTrigrams, tt.artistTrigrams); s > score {
			score = s
		}
		if score >= i.cfg.FuzzyThreshold {
			matches = append(matches, Match{ID: id, Score: score, Type: MatchFuzzy})
		}
	}
	sortMatches(matches)
	return matches
}

// similarity returns the memoized trigram similarity between the query
// and one indexed string.
func (i *Index) similarity(q, text string, queryTrigrams, textTrigrams map[string]struct{}) float64 {
	if text == "" || len(textTrigrams) == 0 {
		return 0
	}

	key := q + pairSeparator + text
	if score, ok := i.simCache.Get(key); ok {
		return score
	}

	score := trigramSimilarity(queryTrigrams, textTrigrams)
	i.simCache.Add(key, score)
	return score
}

// CacheStats returns hit/miss counters and size of the similarity cache.
func (i *Index) CacheStats() (hits, misses int64, size int) {
	return i.simCache.Stats()
}

// sortMatches orders by descending score, ties broken by id.
func sortMatches(matches []Match) {
	sort.Slice(matches, func(a, b int) bool {
		if matches[a].Score != matches[b].Score {
			return matches[a].Score > matches[b].Score
		}
		return matches[a].ID < matches[b].ID
	})
}

// normalize lowercases and trims surrounding whitespace.
func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// joinNonEmpty joins name and artist with a space, tolerating either
// being absent.
func joinNonEmpty(name, artist string) string {
	switch {
	case name == "":
		return artist
	case artist == "":
		return name
	default:
		return name + " " + artist
	}
}
