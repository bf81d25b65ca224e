// Melodex - Mood-Driven Music Recommendation Core
// Copyright 2026 Sonic Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/soniclabs/melodex

// Package simgraph implements the pairwise track-similarity graph.
//
// Nodes carry a mood-tag set and named numeric audio features. The
// similarity pass combines mood-tag Jaccard overlap and audio-feature
// cosine similarity into a single weighted score; an undirected edge
// exists only where that score meets the configured threshold, keeping
// the graph intentionally sparse.
//
// The O(n²) pass is bounded by a hard cap on the node set, taken in
// insertion order. The cap is an order-dependent truncation, not a
// sampling strategy: catalogs larger than the cap leave later nodes
// isolated.
package simgraph

import (
	"fmt"
	"sort"

	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/floats"
)

// maxSimilarityNodes caps the number of nodes considered by the
// similarity pass.
const maxSimilarityNodes = 500

// weightSumTolerance is the allowed floating-point slack when checking
// that the two similarity weights sum to one.
const weightSumTolerance = 1e-9

// Params configures a similarity pass.
type Params struct {
	// FeatureKeys names the audio features compared by cosine
	// similarity. A pair contributes feature similarity only when
	// every key is present on both nodes.
	FeatureKeys []string `json:"feature_keys"`

	// MoodWeight scales the mood-tag Jaccard term. Must be in [0, 1].
	MoodWeight float64 `json:"mood_weight"`

	// FeatureWeight scales the cosine term. Must be in [0, 1] and sum
	// to 1 with MoodWeight.
	FeatureWeight float64 `json:"feature_weight"`

	// Threshold is the minimum combined score that creates an edge.
	// Must be in [0, 1].
	Threshold float64 `json:"threshold"`
}

// Validate checks the parameters, failing fast rather than clamping.
func (p Params) Validate() error {
	if p.MoodWeight < 0 || p.MoodWeight > 1 {
		return fmt.Errorf("mood_weight must be in [0, 1], got %f", p.MoodWeight)
	}
	if p.FeatureWeight < 0 || p.FeatureWeight > 1 {
		return fmt.Errorf("feature_weight must be in [0, 1], got %f", p.FeatureWeight)
	}
	if sum := p.MoodWeight + p.FeatureWeight; sum < 1-weightSumTolerance || sum > 1+weightSumTolerance {
		return fmt.Errorf("mood_weight + feature_weight must equal 1, got %f", sum)
	}
	if p.Threshold < 0 || p.Threshold > 1 {
		return fmt.Errorf("threshold must be in [0, 1], got %f", p.Threshold)
	}
	return nil
}

// Neighbor is a similar track with its edge weight.
type Neighbor struct {
	ID     string  `json:"id"`
	Weight float64 `json:"weight"`
}

// attrs is the attribute bag of a graph node.
type attrs struct {
	moods    map[string]struct{}
	features map[string]float64
}

// Graph is an undirected, weighted similarity graph over tracks.
// It is built once and read-only afterwards; concurrent queries are
// safe, concurrent mutation is not.
type Graph struct {
	nodes  map[string]*attrs
	order  []string // insertion order, drives the similarity cap
	edges  map[string]map[string]float64
	logger zerolog.Logger
}

// New creates an empty graph.
func New(logger zerolog.Logger) *Graph {
	return &Graph{
		nodes:  make(map[string]*attrs),
		edges:  make(map[string]map[string]float64),
		logger: logger.With().Str("component", "simgraph").Logger(),
	}
}

// AddNode registers a track with its mood tags and audio features.
// Re-adding an id replaces its attributes but keeps its original
// position in insertion order.
func (g *Graph) AddNode(id string, moodTags []string, features map[string]float64) {
	moods := make(map[string]struct{}, len(moodTags))
	for _, tag := range moodTags {
		moods[tag] = struct{}{}
	}

	feats := make(map[string]float64, len(features))
	for k, v := range features {
		feats[k] = v
	}

	if _, exists := g.nodes[id]; !exists {
		g.order = append(g.order, id)
	}
	g.nodes[id] = &attrs{moods: moods, features: feats}
}

// NodeCount returns the number of registered tracks.
func (g *Graph) NodeCount() int {
	return len(g.nodes)
}

// EdgeCount returns the number of undirected edges.
func (g *Graph) EdgeCount() int {
	total := 0
	for _, neighbors := range g.edges {
		total += len(neighbors)
	}
	return total / 2
}

// Degree returns the number of neighbors of id.
func (g *Graph) Degree(id string) int {
	return len(g.edges[id])
}

// CalculateSimilarities runs the pairwise similarity pass and replaces
// the edge set. For each unordered pair, the combined score is
//
//	MoodWeight·jaccard(moods) + FeatureWeight·cosine(features)
//
// where the mood term is 0 if either tag set is empty and the feature
// term is 0 if any requested key is missing on either node. An edge is
// created iff the combined score meets the threshold.
func (g *Graph) CalculateSimilarities(p Params) error {
	if err := p.Validate(); err != nil {
		return fmt.Errorf("invalid similarity params: %w", err)
	}

	ids := g.order
	if len(ids) > maxSimilarityNodes {
		g.logger.Warn().
			Int("nodes", len(ids)).
			Int("cap", maxSimilarityNodes).
			Msg("node count exceeds similarity cap, later nodes stay isolated")
		ids = ids[:maxSimilarityNodes]
	}

	g.edges = make(map[string]map[string]float64, len(ids))
	edgeCount := 0

	for i := 0; i < len(ids); i++ {
		a := g.nodes[ids[i]]
		for j := i + 1; j < len(ids); j++ {
			b := g.nodes[ids[j]]

			combined := p.MoodWeight*jaccard(a.moods, b.moods) +
				p.FeatureWeight*featureCosine(p.FeatureKeys, a.features, b.features)

			if combined >= p.Threshold {
				g.addEdge(ids[i], ids[j], combined)
				edgeCount++
			}
		}
	}

	g.logger.Info().
		Int("nodes", len(ids)).
		Int("edges", edgeCount).
		Float64("threshold", p.Threshold).
		Msg("similarity graph built")
	return nil
}

// RecommendSimilar returns up to n neighbors of id, sorted by strictly
// descending weight (ties broken by id for determinism). The track
// itself is never included. An absent or isolated id yields an empty
// result.
func (g *Graph) RecommendSimilar(id string, n int) []Neighbor {
	adjacent, ok := g.edges[id]
	if !ok || n <= 0 {
		return nil
	}

	neighbors := make([]Neighbor, 0, len(adjacent))
	for nid, w := range adjacent {
		neighbors = append(neighbors, Neighbor{ID: nid, Weight: w})
	}
	sort.Slice(neighbors, func(i, j int) bool {
		if neighbors[i].Weight != neighbors[j].Weight {
			return neighbors[i].Weight > neighbors[j].Weight
		}
		return neighbors[i].ID < neighbors[j].ID
	})

	if len(neighbors) > n {
		neighbors = neighbors[:n]
	}
	return neighbors
}

// RecommendByMood returns up to n track ids tagged with mood, ranked
// by degree centrality so well-connected tracks surface first. Ties
// are broken by id.
func (g *Graph) RecommendByMood(mood string, n int) []string {
	if n <= 0 {
		return nil
	}

	var candidates []string
	for id, a := range g.nodes {
		if _, ok := a.moods[mood]; ok {
			candidates = append(candidates, id)
		}
	}
	if len(candidates) == 0 {
		return nil
	}

	denom := float64(len(g.nodes) - 1)
	centrality := func(id string) float64 {
		if denom <= 0 {
			return 0
		}
		return float64(len(g.edges[id])) / denom
	}

	sort.Slice(candidates, func(i, j int) bool {
		ci, cj := centrality(candidates[i]), centrality(candidates[j])
		if ci != cj {
			return ci > cj
		}
		return candidates[i] < candidates[j]
	})

	if len(candidates) > n {
		candidates = candidates[:n]
	}
	return candidates
}

// addEdge records a symmetric edge. Self-loops are ignored.
func (g *Graph) addEdge(a, b string, weight float64) {
	if a == b {
		return
	}
	if g.edges[a] == nil {
		g.edges[a] = make(map[string]float64)
	}
	if g.edges[b] == nil {
		g.edges[b] = make(map[string]float64)
	}
	g.edges[a][b] = weight
	g.edges[b][a] = weight
}

// jaccard returns |a ∩ b| / |a ∪ b|, or 0 if either set is empty.
func jaccard(a, b map[string]struct{}) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}

	intersection := 0
	for tag := range a {
		if _, ok := b[tag]; ok {
			intersection++
		}
	}
	union := len(a) + len(b) - intersection
	return float64(intersection) / float64(union)
}

// featureCosine returns the cosine similarity of the two feature maps
// over keys, or 0 if any key is missing on either side or either
// vector has zero norm.
func featureCosine(keys []string, a, b map[string]float64) float64 {
	if len(keys) == 0 {
		return 0
	}

	va := make([]float64, 0, len(keys))
	vb := make([]float64, 0, len(keys))
	for _, key := range keys {
		x, okA := a[key]
		y, okB := b[key]
		if !okA || !okB {
			return 0
		}
		va = append(va, x)
		vb = append(vb, y)
	}

	na := floats.Norm(va, 2)
	nb := floats.Norm(vb, 2)
	if na == 0 || nb == 0 {
		return 0
	}
	return floats.Dot(va, vb) / (na * nb)
}
