package health_test

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/harkle-the-cake/dhbw-capturethecode/internal/handler/health"
)

type mockChecker struct{ err error }

func (m mockChecker) Check(_ context.Context) error { return m.err }

func TestHandler(t *testing.T) {
	tests := []struct {
		name       string
		checks     map[string]health.Checker
		wantStatus int
		wantState  string
		wantChecks map[string]string
	}{
		{
			name:       "no checks",
			checks:     map[string]health.Checker{},
			wantStatus: http.StatusOK,
			wantState:  "ok",
			wantChecks: map[string]string{},
		},
		{
			name: "all healthy",
			checks: map[string]health.Checker{
				"sqlite": mockChecker{},
				"redis":  health.CheckFunc(func(context.Context) error { return nil }),
			},
			wantStatus: http.StatusOK,
			wantState:  "ok",
			wantChecks: map[string]string{"sqlite": "ok", "redis": "ok"},
		},
		{
			name: "sqlite down",
			checks: map[string]health.Checker{
				"sqlite": mockChecker{err: errors.New("locked")},
				"redis":  mockChecker{},
			},
			wantStatus: http.StatusServiceUnavailable,
			wantState:  "degraded",
			wantChecks: map[string]string{"sqlite": "error", "redis": "ok"},
		},
		{
			name: "redis down",
			checks: map[string]health.Checker{
				"sqlite": mockChecker{},
				"redis":  mockChecker{err: errors.New("refused")},
			},
			wantStatus: http.StatusServiceUnavailable,
			wantState:  "degraded",
			wantChecks: map[string]string{"sqlite": "ok", "redis": "error"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := health.NewHandler(slog.New(slog.DiscardHandler), tt.checks)

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			rec := httptest.NewRecorder()
			h.Routes().ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}

			var body struct {
				Status string
				Checks map[string]struct{ Status string }
			}
			if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
				t.Fatalf("decoding response: %v", err)
			}
			if body.Status != tt.wantState {
				t.Errorf("overall = %q, want %q", body.Status, tt.wantState)
			}
			if len(body.Checks) != len(tt.wantChecks) {
				t.Errorf("checks = %d, want %d", len(body.Checks), len(tt.wantChecks))
			}
			for name, want := range tt.wantChecks {
				if got := body.Checks[name].Status; got != want {
					t.Errorf("%s status = %q, want %q", name, got, want)
				}
			}
		})
	}
}
