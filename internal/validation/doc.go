// Guildstats - Guild Message Analytics Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/guildstats

// Package validation provides struct validation using go-playground/validator
// v10 behind a thread-safe singleton, plus the custom tags the API needs.
//
//	type leaderboardQuery struct {
//	    Amount int    `validate:"min=1,max=100"`
//	    Metric string `validate:"oneof=messages words characters"`
//	}
//
//	if err := validation.ValidateStruct(&q); err != nil {
//	    // errors.Is(err, models.ErrInvalidArgument) holds
//	}
package validation
