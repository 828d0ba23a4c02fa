// Guildstats - Guild Message Analytics Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/guildstats

package authz

import (
	"os"
	"path/filepath"
	"slices"
	"testing"
	"time"
)

// setupEnforcer creates an enforcer and registers cleanup.
func setupEnforcer(t *testing.T, cfg *EnforcerConfig) *Enforcer {
	t.Helper()
	enforcer, err := NewEnforcer(cfg)
	if err != nil {
		t.Fatalf("NewEnforcer() error = %v", err)
	}
	t.Cleanup(enforcer.Close)
	return enforcer
}

func TestEnforce_RoleHierarchy(t *testing.T) {
	t.Parallel()

	for _, cfg := range []*EnforcerConfig{nil, {CacheTTL: 0}} {
		e := setupEnforcer(t, cfg)

		tests := []struct {
			role   string
			action string
			want   bool
		}{
			{RoleView, ActionRead, true},
			{RoleView, ActionWrite, false},
			{RoleView, ActionManage, false},
			{RoleEdit, ActionRead, true},
			{RoleEdit, ActionWrite, true},
			{RoleEdit, ActionManage, false},
			{RoleAdmin, ActionRead, true},
			{RoleAdmin, ActionWrite, true},
			{RoleAdmin, ActionManage, true},
			{"stranger", ActionRead, false},
			{RoleAdmin, "delete", false},
		}
		for _, tt := range tests {
			// Twice so the cached path is exercised too.
			for i := 0; i < 2; i++ {
				got, err := e.Enforce(tt.role, tt.action)
				if err != nil {
					t.Fatalf("Enforce(%s, %s) error = %v", tt.role, tt.action, err)
				}
				if got != tt.want {
					t.Errorf("Enforce(%s, %s) = %v, want %v", tt.role, tt.action, got, tt.want)
				}
			}
		}
	}
}

func TestImplicitRoles(t *testing.T) {
	t.Parallel()

	e := setupEnforcer(t, nil)
	roles, err := e.ImplicitRoles(RoleAdmin)
	if err != nil {
		t.Fatalf("ImplicitRoles() error = %v", err)
	}
	if !slices.Contains(roles, RoleEdit) || !slices.Contains(roles, RoleView) {
		t.Errorf("ImplicitRoles(admin) = %v, want edit and view", roles)
	}
}

func TestNewEnforcer_PolicyFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "policy.csv")
	policy := "p, view, guilds, read\np, view, guilds, write\n"
	if err := os.WriteFile(path, []byte(policy), 0o600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	e := setupEnforcer(t, &EnforcerConfig{PolicyPath: path, CacheTTL: time.Minute})
	if ok, _ := e.Enforce(RoleView, ActionWrite); !ok {
		t.Error("Enforce(view, write) = false, want true from the policy file")
	}
	if ok, _ := e.Enforce(RoleAdmin, ActionRead); ok {
		t.Error("Enforce(admin, read) = true, want false without grouping rules")
	}
}

func TestNewEnforcer_MissingPolicyFileFallsBack(t *testing.T) {
	t.Parallel()

	e := setupEnforcer(t, &EnforcerConfig{PolicyPath: "/nonexistent/policy.csv"})
	if ok, _ := e.Enforce(RoleAdmin, ActionManage); !ok {
		t.Error("Enforce(admin, manage) = false, want embedded policy")
	}
}

func TestLoadPolicy_Malformed(t *testing.T) {
	t.Parallel()

	e := setupEnforcer(t, nil)
	if err := loadPolicy(e.enforcer, "p, only-two"); err == nil {
		t.Error("loadPolicy() should reject malformed lines")
	}
}
