// Guildstats - Guild Message Analytics Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/guildstats

package auth

import (
	"context"
	"errors"
)

// Standard authentication errors
var (
	// ErrNoCredentials indicates no credentials were provided.
	ErrNoCredentials = errors.New("no credentials provided")

	// ErrInvalidCredentials indicates credentials were invalid.
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// Method identifies how a subject was authenticated.
type Method string

const (
	// MethodAPIKey is the X-API-Key header.
	MethodAPIKey Method = "api_key"

	// MethodNone is used when authentication is disabled.
	MethodNone Method = "none"
)

// Subject is an authenticated caller.
type Subject struct {
	// ID identifies the key without revealing it (a short hash prefix).
	ID string `json:"id"`

	// Role is view, edit or admin.
	Role string `json:"role"`

	Method Method `json:"method"`
}

type subjectKey struct{}

// WithSubject attaches the subject to ctx.
func WithSubject(ctx context.Context, s *Subject) context.Context {
	return context.WithValue(ctx, subjectKey{}, s)
}

// SubjectFrom returns the subject stored in ctx, or nil.
func SubjectFrom(ctx context.Context) *Subject {
	s, _ := ctx.Value(subjectKey{}).(*Subject)
	return s
}
