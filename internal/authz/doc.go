// Guildstats - Guild Message Analytics Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/guildstats

// Package authz decides whether an authenticated caller's role permits a
// route, using Casbin RBAC.
//
//	Request -> API key auth -> Require(action) -> Handler
//	           (internal/auth)   (this package)
//
// # RBAC Model
//
// The embedded model matches on subject, object and action with role
// inheritance:
//
//	[matchers]
//	m = g(r.sub, p.sub) && r.obj == p.obj && r.act == p.act
//
// The embedded policy grants one action per role and chains the roles:
//
//	p, view, guilds, read
//	p, edit, guilds, write
//	p, admin, guilds, manage
//	g, edit, view
//	g, admin, edit
//
// so admin may read, write and manage, edit may read and write, and view
// may only read. EnforcerConfig.PolicyPath swaps in a policy file with the
// same shape.
package authz
