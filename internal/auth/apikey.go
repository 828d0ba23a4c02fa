// Guildstats - Guild Message Analytics Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/guildstats

package auth

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"golang.org/x/crypto/bcrypt"
)

// APIKeyHeader carries the caller's key.
const APIKeyHeader = "X-API-Key"

// bcryptCost is the bcrypt cost factor used by HashKey.
const bcryptCost = 12

type apiKey struct {
	role string
	hash []byte
}

// APIKeyAuthenticator validates X-API-Key headers against bcrypt hashes.
//
// Keys are SHA-256 digested before bcrypt so arbitrarily long keys stay
// under bcrypt's 72-byte input limit. Successful verifications are
// remembered by digest so a key pays the bcrypt cost once per process.
type APIKeyAuthenticator struct {
	keys     []apiKey
	verified sync.Map // digest hex -> *Subject
}

// NewAPIKeyAuthenticator parses "role:bcrypt-hash" entries.
func NewAPIKeyAuthenticator(entries []string) (*APIKeyAuthenticator, error) {
	a := &APIKeyAuthenticator{keys: make([]apiKey, 0, len(entries))}
	for i, entry := range entries {
		role, hash, ok := strings.Cut(entry, ":")
		if !ok || role == "" || hash == "" {
			return nil, fmt.Errorf("api key entry %d must have the form role:bcrypt-hash", i)
		}
		if _, err := bcrypt.Cost([]byte(hash)); err != nil {
			return nil, fmt.Errorf("api key entry %d: invalid bcrypt hash: %w", i, err)
		}
		a.keys = append(a.keys, apiKey{role: role, hash: []byte(hash)})
	}
	return a, nil
}

// Authenticate resolves the request's API key to a subject.
func (a *APIKeyAuthenticator) Authenticate(r *http.Request) (*Subject, error) {
	key := strings.TrimSpace(r.Header.Get(APIKeyHeader))
	if key == "" {
		return nil, ErrNoCredentials
	}

	sum := sha256.Sum256([]byte(key))
	digest := hex.EncodeToString(sum[:])
	if s, ok := a.verified.Load(digest); ok {
		return s.(*Subject), nil
	}

	for _, k := range a.keys {
		if bcrypt.CompareHashAndPassword(k.hash, sum[:]) == nil {
			s := &Subject{ID: digest[:12], Role: k.role, Method: MethodAPIKey}
			a.verified.Store(digest, s)
			return s, nil
		}
	}
	return nil, ErrInvalidCredentials
}

// HashKey produces the bcrypt hash to configure for a plaintext key.
func HashKey(key string) (string, error) {
	if key == "" {
		return "", fmt.Errorf("api key must not be empty")
	}
	sum := sha256.Sum256([]byte(key))
	hash, err := bcrypt.GenerateFromPassword(sum[:], bcryptCost)
	if err != nil {
		return "", fmt.Errorf("bcrypt failed: %w", err)
	}
	return string(hash), nil
}
