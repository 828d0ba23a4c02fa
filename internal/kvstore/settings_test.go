// Guildstats - Guild Message Analytics Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/guildstats

package kvstore

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/tomtom215/guildstats/internal/models"
)

func TestSetConfig_Validation(t *testing.T) {
	t.Parallel()
	s := setupTestStore(t)

	tests := []struct {
		name    string
		key     string
		value   string
		want    string
		wantErr bool
	}{
		{"timezone", models.ConfigTimezone, " -5 ", "-5", false},
		{"timezone max", models.ConfigTimezone, "14", "14", false},
		{"timezone too low", models.ConfigTimezone, "-13", "", true},
		{"timezone not a number", models.ConfigTimezone, "utc", "", true},
		{"paused", models.ConfigPaused, "TRUE", "true", false},
		{"paused invalid", models.ConfigPaused, "maybe", "", true},
		{"stopwords", models.ConfigStopword, "Foo  BAR", "foo bar", false},
		{"stopwords empty", models.ConfigStopword, "  ", "", true},
		{"unknown key", "colour", "red", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entry, err := s.SetConfig(1, tt.key, tt.value)
			if tt.wantErr {
				if !errors.Is(err, models.ErrInvalidArgument) {
					t.Errorf("SetConfig() error = %v, want ErrInvalidArgument", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("SetConfig() error = %v", err)
			}
			if entry.Value != tt.want {
				t.Errorf("SetConfig() value = %q, want %q", entry.Value, tt.want)
			}
		})
	}
}

func TestTypedSettings(t *testing.T) {
	t.Parallel()
	s := setupTestStore(t)

	tz, err := s.TimezoneOffset(1, 3)
	if err != nil || tz != 3 {
		t.Errorf("TimezoneOffset() unset = %d, %v; want fallback 3", tz, err)
	}
	paused, err := s.Paused(1)
	if err != nil || paused {
		t.Errorf("Paused() unset = %v, %v; want false", paused, err)
	}
	words, err := s.Stopwords(1)
	if err != nil || len(words) != 0 {
		t.Errorf("Stopwords() unset = %v, %v", words, err)
	}

	_, _ = s.SetConfig(1, models.ConfigTimezone, "-7")
	_, _ = s.SetConfig(1, models.ConfigPaused, "true")
	_, _ = s.SetConfig(1, models.ConfigStopword, "lol brb")

	if tz, _ := s.TimezoneOffset(1, 3); tz != -7 {
		t.Errorf("TimezoneOffset() = %d, want -7", tz)
	}
	if p, _ := s.Paused(1); !p {
		t.Error("Paused() = false, want true")
	}
	if w, _ := s.Stopwords(1); !reflect.DeepEqual(w, []string{"lol", "brb"}) {
		t.Errorf("Stopwords() = %v", w)
	}

	entries, err := s.ListConfig(context.Background(), 1)
	if err != nil {
		t.Fatalf("ListConfig() error = %v", err)
	}
	if len(entries) != 3 {
		t.Errorf("ListConfig() = %d entries, want 3", len(entries))
	}

	if err := s.DeleteConfig(1, models.ConfigPaused); err != nil {
		t.Fatalf("DeleteConfig() error = %v", err)
	}
	if p, _ := s.Paused(1); p {
		t.Error("Paused() after delete = true")
	}
}

func TestValidateTimezoneOffset(t *testing.T) {
	t.Parallel()
	for _, h := range []int{-12, 0, 3, 14} {
		if err := ValidateTimezoneOffset(h); err != nil {
			t.Errorf("ValidateTimezoneOffset(%d) error = %v", h, err)
		}
	}
	for _, h := range []int{-13, 15} {
		if err := ValidateTimezoneOffset(h); !errors.Is(err, models.ErrInvalidArgument) {
			t.Errorf("ValidateTimezoneOffset(%d) error = %v, want ErrInvalidArgument", h, err)
		}
	}
}
