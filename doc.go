// Melodex - Mood-Driven Music Recommendation Core
// Copyright 2026 Sonic Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/soniclabs/melodex

// Package melodex turns a flat track catalog into a mood/genre
// recommendation engine with approximate text search.
//
// The engine is built once, eagerly, from the full catalog:
//
//	cfg := melodex.DefaultConfig()
//	cfg.Search.EnableFuzzy = true
//
//	logger, err := melodex.NewLogger(cfg.Logging)
//	if err != nil {
//		return err
//	}
//
//	engine, err := melodex.NewEngine(catalog, &cfg, logger)
//	if err != nil {
//		return err
//	}
//
//	punk := engine.RecommendByGenre("punkrock", 10)
//	similar := engine.RecommendSimilar("track-42", 5)
//	found := engine.Search("bohemiam")
//
// Three structures back the queries: a genre hierarchy tree for
// path-based lookups and bounded BFS/DFS recommendation, a weighted
// similarity graph combining mood-tag overlap with audio-feature
// cosine similarity, and a trigram search index with tiered exact
// matching and an LRU-cached fuzzy phase. All query methods are safe
// for concurrent use after construction; they degrade to empty results
// on unknown names rather than returning errors.
//
// Persistence, incremental updates after construction, and any network
// or CLI surface are out of scope: the caller supplies the catalog and
// consumes plain result records.
package melodex
