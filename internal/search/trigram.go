// Melodex - Mood-Driven Music Recommendation Core
// Copyright 2026 Sonic Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/soniclabs/melodex

package search

// trigrams returns the set of overlapping 3-character shingles of s,
// computed over runes with a single space of padding on each side so
// word boundaries produce distinguishable shingles. Strings shorter
// than 3 runes map to a single-element set containing the string
// itself.
func trigrams(s string) map[string]struct{} {
	runes := []rune(s)
	if len(runes) < 3 {
		return map[string]struct{}{s: {}}
	}

	padded := make([]rune, 0, len(runes)+2)
	padded = append(padded, ' ')
	padded = append(padded, runes...)
	padded = append(padded, ' ')

	set := make(map[string]struct{}, len(padded)-2)
	for i := 0; i+3 <= len(padded); i++ {
		set[string(padded[i:i+3])] = struct{}{}
	}
	return set
}

// trigramSimilarity returns the fraction of query trigrams present in
// the candidate set. This query-containment measure (the shape of
// PostgreSQL's word_similarity) tolerates the length mismatch between
// short queries and long indexed titles, where strict Jaccard would
// punish every trigram the query never saw.
func trigramSimilarity(query, candidate map[string]struct{}) float64 {
	if len(query) == 0 || len(candidate) == 0 {
		return 0
	}

	common := 0
	for t := range query {
		if _, ok := candidate[t]; ok {
			common++
		}
	}
	return float64(common) / float64(len(query))
}
