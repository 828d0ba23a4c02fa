// Guildstats - Guild Message Analytics Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/guildstats

package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/goccy/go-json"

	"github.com/tomtom215/guildstats/internal/logging"
)

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) APIResponse {
	t.Helper()
	var response APIResponse
	if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to unmarshal response %q: %v", w.Body.String(), err)
	}
	return response
}

func TestResponseWriter_Success(t *testing.T) {
	t.Parallel()

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/test", nil)
	r = r.WithContext(logging.ContextWithRequestID(r.Context(), "req-1"))

	NewResponseWriter(w, r).Success(map[string]string{"message": "hello"})

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q, want application/json", ct)
	}

	response := decodeEnvelope(t, w)
	if !response.Success {
		t.Error("Success = false, want true")
	}
	if response.Error != nil {
		t.Errorf("Error = %+v, want nil", response.Error)
	}
	if response.Meta == nil || response.Meta.Timestamp.IsZero() {
		t.Fatal("Meta timestamp not set")
	}
	if response.Meta.RequestID != "req-1" {
		t.Errorf("RequestID = %q, want req-1", response.Meta.RequestID)
	}
}

func TestResponseWriter_Created(t *testing.T) {
	t.Parallel()

	w := httptest.NewRecorder()
	NewResponseWriter(w, httptest.NewRequest(http.MethodPost, "/test", nil)).Created("ok")

	if w.Code != http.StatusCreated {
		t.Errorf("status = %d, want 201", w.Code)
	}
	if !decodeEnvelope(t, w).Success {
		t.Error("Success = false, want true")
	}
}

func TestResponseWriter_NoContent(t *testing.T) {
	t.Parallel()

	w := httptest.NewRecorder()
	NewResponseWriter(w, httptest.NewRequest(http.MethodDelete, "/test", nil)).NoContent()

	if w.Code != http.StatusNoContent {
		t.Errorf("status = %d, want 204", w.Code)
	}
	if w.Body.Len() != 0 {
		t.Errorf("body = %q, want empty", w.Body.String())
	}
}

func TestResponseWriter_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		write  func(rw *ResponseWriter)
		status int
		code   string
	}{
		{"bad request", func(rw *ResponseWriter) { rw.BadRequest("bad") }, http.StatusBadRequest, ErrCodeBadRequest},
		{"unauthorized", func(rw *ResponseWriter) { rw.Unauthorized("who") }, http.StatusUnauthorized, ErrCodeUnauthorized},
		{"forbidden", func(rw *ResponseWriter) { rw.Forbidden("no") }, http.StatusForbidden, ErrCodeForbidden},
		{"not found", func(rw *ResponseWriter) { rw.NotFound("gone") }, http.StatusNotFound, ErrCodeNotFound},
		{"conflict", func(rw *ResponseWriter) { rw.Conflict("dup") }, http.StatusConflict, ErrCodeConflict},
		{"rate limited", func(rw *ResponseWriter) { rw.TooManyRequests("slow") }, http.StatusTooManyRequests, ErrCodeTooManyRequests},
		{"internal", func(rw *ResponseWriter) { rw.InternalError("oops") }, http.StatusInternalServerError, ErrCodeInternalError},
		{"unavailable", func(rw *ResponseWriter) { rw.ServiceUnavailable("later") }, http.StatusServiceUnavailable, ErrCodeServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			w := httptest.NewRecorder()
			r := httptest.NewRequest(http.MethodGet, "/test", nil)
			r = r.WithContext(logging.ContextWithRequestID(r.Context(), "req-err"))
			tt.write(NewResponseWriter(w, r))

			if w.Code != tt.status {
				t.Errorf("status = %d, want %d", w.Code, tt.status)
			}
			response := decodeEnvelope(t, w)
			if response.Success {
				t.Error("Success = true, want false")
			}
			if response.Error == nil {
				t.Fatal("Error is nil")
			}
			if response.Error.Code != tt.code {
				t.Errorf("Code = %q, want %q", response.Error.Code, tt.code)
			}
			if response.Error.RequestID != "req-err" {
				t.Errorf("Error.RequestID = %q, want req-err", response.Error.RequestID)
			}
		})
	}
}

func TestDenyWithEnvelope(t *testing.T) {
	t.Parallel()

	for _, status := range []int{http.StatusUnauthorized, http.StatusForbidden, http.StatusInternalServerError} {
		w := httptest.NewRecorder()
		denyWithEnvelope(w, httptest.NewRequest(http.MethodGet, "/test", nil), status, "denied")
		if w.Code != status {
			t.Errorf("denyWithEnvelope(%d) wrote %d", status, w.Code)
		}
		if response := decodeEnvelope(t, w); response.Error == nil || response.Error.Message != "denied" {
			t.Errorf("denyWithEnvelope(%d) error = %+v", status, response.Error)
		}
	}
}
