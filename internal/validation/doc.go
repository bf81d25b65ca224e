// Melodex - Mood-Driven Music Recommendation Core
// Copyright 2026 Sonic Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/soniclabs/melodex

// Package validation validates catalog records against their struct
// tags using go-playground/validator v10.
//
// The engine validates every incoming track record before insertion;
// records that fail are skipped with a warning rather than aborting
// the build, so one malformed row never poisons the whole catalog.
//
// Example:
//
//	type Track struct {
//	    ID       string  `validate:"required"`
//	    Duration float64 `validate:"gte=0"`
//	}
//
//	if err := validation.ValidateRecord(&track); err != nil {
//	    log.Warn().Err(err).Msg("skipping invalid catalog record")
//	}
package validation
