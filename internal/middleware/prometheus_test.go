// Guildstats - Guild Message Analytics Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/guildstats

package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/tomtom215/guildstats/internal/metrics"
)

func newTestRouter() http.Handler {
	r := chi.NewRouter()
	r.Use(PrometheusMetrics)
	r.Get("/mw-test/{id}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		_, _ = w.Write([]byte("short and stout"))
	})
	r.Post("/mw-test/implicit", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})
	return r
}

func TestPrometheusMetrics_UsesRoutePattern(t *testing.T) {
	router := newTestRouter()
	counter := metrics.APIRequestsTotal.WithLabelValues("GET", "/mw-test/{id}", "418")
	before := testutil.ToFloat64(counter)

	for _, id := range []string{"1", "2", "3"} {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest("GET", "/mw-test/"+id, nil))
		if rec.Code != http.StatusTeapot {
			t.Fatalf("status = %d, want 418", rec.Code)
		}
	}

	if got := testutil.ToFloat64(counter) - before; got != 3 {
		t.Errorf("requests under the route pattern = %v, want 3", got)
	}
}

func TestPrometheusMetrics_StatusCodes(t *testing.T) {
	router := newTestRouter()

	tests := []struct {
		name     string
		method   string
		path     string
		endpoint string
		status   string
	}{
		{"implicit 200", "POST", "/mw-test/implicit", "/mw-test/implicit", "200"},
		{"explicit 418", "GET", "/mw-test/9", "/mw-test/{id}", "418"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := metrics.APIRequestsTotal.WithLabelValues(tt.method, tt.endpoint, tt.status)
			before := testutil.ToFloat64(c)
			router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(tt.method, tt.path, nil))
			if got := testutil.ToFloat64(c) - before; got != 1 {
				t.Errorf("counter{%s,%s,%s} delta = %v, want 1", tt.method, tt.endpoint, tt.status, got)
			}
		})
	}
}

func TestRoutePattern_NoChiContext(t *testing.T) {
	t.Parallel()

	if got := RoutePattern(httptest.NewRequest("GET", "/x", nil)); got != unmatchedEndpoint {
		t.Errorf("RoutePattern() = %q, want %q", got, unmatchedEndpoint)
	}
}
