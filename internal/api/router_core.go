// Guildstats - Guild Message Analytics Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/guildstats

package api

import (
	"github.com/tomtom215/guildstats/internal/auth"
	"github.com/tomtom215/guildstats/internal/authz"
	"github.com/tomtom215/guildstats/internal/config"
)

// Router wires the handler into the chi route table.
type Router struct {
	handler         *Handler
	chiMiddleware   *ChiMiddleware
	authenticator   Authenticator
	enforcer        *authz.Enforcer
	authzMiddleware *authz.Middleware
	compress        bool
}

// RouterDeps bundles the Router's collaborators.
type RouterDeps struct {
	Handler    *Handler
	Middleware *ChiMiddleware
	// Authenticator resolves API keys. Nil runs every request as an
	// anonymous admin.
	Authenticator Authenticator
	Enforcer      *authz.Enforcer
	Compress      bool
}

// NewRouter creates a Router.
func NewRouter(deps RouterDeps) *Router {
	mw := deps.Middleware
	if mw == nil {
		mw = NewChiMiddleware(nil)
	}
	return &Router{
		handler:         deps.Handler,
		chiMiddleware:   mw,
		authenticator:   deps.Authenticator,
		enforcer:        deps.Enforcer,
		authzMiddleware: authz.NewMiddleware(deps.Enforcer, denyWithEnvelope),
		compress:        deps.Compress,
	}
}

// NewAuthenticator returns the API key authenticator for sec, or nil when
// auth is disabled. The result is a true nil interface in that case so
// Authenticate falls back to the anonymous admin.
func NewAuthenticator(sec *config.SecurityConfig) (Authenticator, error) {
	if sec.AuthDisabled {
		return nil, nil
	}
	a, err := auth.NewAPIKeyAuthenticator(sec.APIKeys)
	if err != nil {
		return nil, err
	}
	return a, nil
}
