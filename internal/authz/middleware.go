// Guildstats - Guild Message Analytics Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/guildstats

package authz

import (
	"net/http"

	"github.com/tomtom215/guildstats/internal/auth"
	"github.com/tomtom215/guildstats/internal/logging"
)

// DenyFunc writes a rejection. The API layer supplies one that renders its
// error envelope.
type DenyFunc func(w http.ResponseWriter, r *http.Request, status int, message string)

// Middleware enforces the role required by a route.
type Middleware struct {
	enforcer *Enforcer
	deny     DenyFunc
}

// NewMiddleware creates a new authorization middleware. A nil deny falls
// back to http.Error.
func NewMiddleware(enforcer *Enforcer, deny DenyFunc) *Middleware {
	if deny == nil {
		deny = func(w http.ResponseWriter, _ *http.Request, status int, message string) {
			http.Error(w, message, status)
		}
	}
	return &Middleware{enforcer: enforcer, deny: deny}
}

// Require lets the request through only if the authenticated subject's
// role grants action.
func (m *Middleware) Require(action string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			subject := auth.SubjectFrom(r.Context())
			if subject == nil {
				m.deny(w, r, http.StatusUnauthorized, "authentication required")
				return
			}

			allowed, err := m.enforcer.Enforce(subject.Role, action)
			if err != nil {
				logging.Ctx(r.Context()).Error().Err(err).Str("action", action).Msg("Authorization error")
				m.deny(w, r, http.StatusInternalServerError, "authorization failed")
				return
			}
			if !allowed {
				logging.Ctx(r.Context()).Debug().
					Str("subject", subject.ID).
					Str("role", subject.Role).
					Str("action", action).
					Msg("Request forbidden")
				m.deny(w, r, http.StatusForbidden, "insufficient permissions")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
