// Melodex - Mood-Driven Music Recommendation Core
// Copyright 2026 Sonic Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/soniclabs/melodex

package melodex

import (
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/soniclabs/melodex/internal/hierarchy"
	"github.com/soniclabs/melodex/internal/search"
	"github.com/soniclabs/melodex/internal/simgraph"
	"github.com/soniclabs/melodex/internal/validation"
)

// Engine is the recommendation facade. It owns the genre hierarchy, the
// similarity graph, and the search index, all built eagerly from a
// finalized catalog in NewEngine.
//
// After construction the engine is read-only: every query method is
// safe to call concurrently. Adding tracks later requires a full
// rebuild through NewEngine.
type Engine struct {
	cfg    Config
	logger zerolog.Logger

	tree  *hierarchy.Tree
	graph *simgraph.Graph
	index *search.Index
}

// NewEngine builds the three structures from catalog in a single
// insertion pass followed by one global similarity pass. A nil cfg uses
// DefaultConfig. Invalid configuration fails immediately; the catalog
// itself never does: records failing validation are skipped with a
// warning and duplicate ids replace the prior track.
func NewEngine(catalog []Track, cfg *Config, logger zerolog.Logger) (*Engine, error) {
	if cfg == nil {
		c := DefaultConfig()
		cfg = &c
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid engine config: %w", err)
	}

	buildID := uuid.NewString()
	log := logger.With().
		Str("component", "engine").
		Str("build_id", buildID).
		Logger()

	if cfgJSON, err := json.Marshal(cfg); err == nil {
		log.Debug().RawJSON("config", cfgJSON).Msg("engine configuration resolved")
	}

	start := time.Now()
	tree := hierarchy.New(log)
	graph := simgraph.New(log)
	entries := make([]search.Entry, 0, len(catalog))

	skipped := 0
	for _, t := range catalog {
		if verr := validation.ValidateRecord(&t); verr != nil {
			log.Warn().
				Str("track_id", t.ID).
				Err(verr).
				Msg("skipping invalid catalog record")
			skipped++
			continue
		}

		tree.AddTrack(t.ID, t.GenrePath, hierarchy.Payload{
			Title:    t.Name,
			Artist:   t.Artist,
			MoodTags: t.MoodTags,
			Features: t.Features,
			Duration: t.Duration,
		})
		graph.AddNode(t.ID, t.MoodTags, t.Features)
		entries = append(entries, search.Entry{ID: t.ID, Name: t.Name, Artist: t.Artist})
	}

	if err := graph.CalculateSimilarities(cfg.similarityParams()); err != nil {
		return nil, fmt.Errorf("similarity pass failed: %w", err)
	}

	index, err := search.NewIndex(entries, cfg.searchConfig(), log)
	if err != nil {
		return nil, fmt.Errorf("search index build failed: %w", err)
	}

	log.Info().
		Int("tracks", tree.TrackCount()).
		Int("skipped", skipped).
		Int("genres", len(tree.GenreNames())).
		Int("edges", graph.EdgeCount()).
		Dur("elapsed", time.Since(start)).
		Msg("engine built")

	return &Engine{
		cfg:    *cfg,
		logger: log,
		tree:   tree,
		graph:  graph,
		index:  index,
	}, nil
}

// RecommendByGenre returns up to limit tracks under any category named
// genre, at any depth. Unknown genres yield an empty result.
func (e *Engine) RecommendByGenre(genre string, limit int) []Result {
	return e.results(e.tree.SearchByGenre(genre), limit)
}

// RecommendByMood returns up to limit tracks tagged with mood, in
// sorted-id order.
func (e *Engine) RecommendByMood(mood string, limit int) []Result {
	return e.results(e.tree.SearchByMood(mood), limit)
}

// RecommendByGenreAndMood intersects a genre lookup with a mood filter.
func (e *Engine) RecommendByGenreAndMood(genre, mood string, limit int) []Result {
	return e.results(e.tree.SearchByGenreAndMood(genre, mood), limit)
}

// RecommendBFS walks breadth-first from the first category named genre,
// descending at most the configured MaxDepth category levels, and
// returns up to limit tracks in visitation order. An empty mood
// disables mood filtering.
func (e *Engine) RecommendBFS(genre, mood string, limit int) []Result {
	return e.results(e.tree.BFS(genre, mood, e.cfg.Traversal.MaxDepth), limit)
}

// RecommendDFS walks depth-first from the first category named genre,
// exploring at most the configured MaxBreadth children per node, and
// returns up to limit tracks in visitation order.
func (e *Engine) RecommendDFS(genre, mood string, limit int) []Result {
	return e.results(e.tree.DFS(genre, mood, e.cfg.Traversal.MaxBreadth), limit)
}

// RecommendSimilar returns up to limit graph neighbors of trackID in
// descending similarity order, with Similarity set on each result. The
// track itself is never included; absent or isolated ids yield an
// empty result.
func (e *Engine) RecommendSimilar(trackID string, limit int) []Result {
	if limit <= 0 {
		return nil
	}

	var results []Result
	for _, n := range e.graph.RecommendSimilar(trackID, limit) {
		node, ok := e.tree.Track(n.ID)
		if !ok {
			continue
		}
		r := e.result(node)
		r.Similarity = n.Weight
		results = append(results, r)
	}
	return results
}

// SimilarByMood returns up to limit tracks tagged with mood, ranked by
// similarity-graph degree centrality so well-connected tracks surface
// first.
func (e *Engine) SimilarByMood(mood string, limit int) []Result {
	if limit <= 0 {
		return nil
	}

	var results []Result
	for _, id := range e.graph.RecommendByMood(mood, limit) {
		node, ok := e.tree.Track(id)
		if !ok {
			continue
		}
		results = append(results, e.result(node))
	}
	return results
}

// Search answers a ranked text query over track names and artists,
// setting Score and MatchType on each result. Too-short queries and
// queries with no match return an empty result, never an error.
func (e *Engine) Search(query string) []Result {
	var results []Result
	for _, m := range e.index.Search(query) {
		node, ok := e.tree.Track(m.ID)
		if !ok {
			continue
		}
		r := e.result(node)
		r.Score = m.Score
		r.MatchType = m.Type.String()
		results = append(results, r)
	}
	return results
}

// TrackInfo returns the full result record for a single track id.
func (e *Engine) TrackInfo(trackID string) (*Result, bool) {
	node, ok := e.tree.Track(trackID)
	if !ok {
		return nil, false
	}
	r := e.result(node)
	return &r, true
}

// Genres returns the sorted distinct genre names in the catalog.
func (e *Engine) Genres() []string {
	return e.tree.GenreNames()
}

// Moods returns the sorted distinct mood tags in the catalog.
func (e *Engine) Moods() []string {
	return e.tree.MoodNames()
}

// TrackCount returns the number of tracks loaded into the engine.
func (e *Engine) TrackCount() int {
	return e.tree.TrackCount()
}

// SearchCacheStats returns hit/miss counters and current size of the
// fuzzy-search similarity cache.
func (e *Engine) SearchCacheStats() (hits, misses int64, size int) {
	return e.index.CacheStats()
}

// results converts tree nodes to result records, truncated to limit.
// A non-positive limit yields an empty result.
func (e *Engine) results(nodes []*hierarchy.Node, limit int) []Result {
	if limit <= 0 || len(nodes) == 0 {
		return nil
	}
	if len(nodes) > limit {
		nodes = nodes[:limit]
	}

	results := make([]Result, 0, len(nodes))
	for _, n := range nodes {
		results = append(results, e.result(n))
	}
	return results
}

// result builds the uniform record for one track node. Features are
// restricted to the configured feature keys actually present on the
// track.
func (e *Engine) result(n *hierarchy.Node) Result {
	r := Result{
		TrackID:   n.Name,
		GenrePath: e.tree.GenrePath(n),
	}
	if n.Payload == nil {
		return r
	}

	r.Name = n.Payload.Title
	r.Artist = n.Payload.Artist
	r.MoodTags = n.Payload.MoodTags
	r.Duration = n.Payload.Duration

	for _, key := range e.cfg.Similarity.FeatureKeys {
		if v, ok := n.Payload.Features[key]; ok {
			if r.Features == nil {
				r.Features = make(map[string]float64, len(e.cfg.Similarity.FeatureKeys))
			}
			r.Features[key] = v
		}
	}
	return r
}
