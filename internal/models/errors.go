// Guildstats - Guild Message Analytics Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/guildstats

package models

import "errors"

// Error taxonomy shared by every layer. Wrap with fmt.Errorf("%w: ...") and
// test with errors.Is. An empty aggregation is never an error.
var (
	// ErrNotFound is returned for a missing guild partition, message or mapping.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists is returned by strict partition creation only.
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidArgument covers bad caller input: both ignore scopes nil,
	// unknown period token, non-positive amount, unknown metric or scope.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrInternal wraps storage failures. The core does not retry them.
	ErrInternal = errors.New("internal error")
)
