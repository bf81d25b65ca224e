// Melodex - Mood-Driven Music Recommendation Core
// Copyright 2026 Sonic Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/soniclabs/melodex

package melodex

// Track is one catalog input record, supplied by the ingestion layer.
// Records failing their validate tags are skipped during the engine
// build with a warning.
type Track struct {
	// ID uniquely identifies the track across the catalog.
	ID string `json:"id" validate:"required"`

	// Name is the display title.
	Name string `json:"name" validate:"required"`

	// Artist is the display name of the performing artist.
	Artist string `json:"artist"`

	// GenrePath orders genres broad to specific, e.g. ["rock", "punkrock"].
	// Segments must be non-empty.
	GenrePath []string `json:"genre_path" validate:"omitempty,dive,required"`

	// MoodTags labels the track's moods, e.g. ["energetic", "rebellious"].
	MoodTags []string `json:"mood_tags"`

	// Features maps audio feature names to numeric values; energy and
	// valence are conventionally normalized to [0, 1].
	Features map[string]float64 `json:"features"`

	// Duration is the track length in seconds.
	Duration float64 `json:"duration" validate:"gte=0"`
}

// Result is the uniform output record of every engine query. Context
// fields are populated per operation: Similarity on similarity queries,
// Score and MatchType on search queries.
type Result struct {
	TrackID   string             `json:"track_id"`
	Name      string             `json:"name"`
	Artist    string             `json:"artist"`
	GenrePath []string           `json:"genre_path"`
	MoodTags  []string           `json:"mood_tags,omitempty"`
	Features  map[string]float64 `json:"features,omitempty"`
	Duration  float64            `json:"duration"`

	// Similarity is the edge weight for similarity-based queries.
	Similarity float64 `json:"similarity,omitempty"`

	// Score and MatchType are set by Search: Score is the tier or
	// trigram score, MatchType is "exact" or "fuzzy".
	Score     float64 `json:"score,omitempty"`
	MatchType string  `json:"match_type,omitempty"`
}
