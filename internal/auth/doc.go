// Guildstats - Guild Message Analytics Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/guildstats

/*
Package auth authenticates API callers.

Callers present a static key in the X-API-Key header. The server is
configured with "role:hash" pairs where hash is produced by HashKey:

	hash, _ := auth.HashKey("s3cret")
	// API_KEYS=admin:<hash>

Role checks happen later in internal/authz; this package only answers
"who is calling".
*/
package auth
