package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	if err := json.NewDecoder(w.Body).Decode(&env); err != nil {
		t.Fatalf("decoding envelope: %v", err)
	}
	return env
}

func newTestApp() *application {
	var cfg config
	cfg.env = "test"
	cfg.jwt.secret = "test-secret"
	cfg.jwt.expiry = time.Hour
	return &application{config: cfg}
}

func TestAuthenticateBearer(t *testing.T) {
	app := newTestApp()
	ident := identity{ID: 5, Username: "dave", Email: "dave@example.com", Role: roleUser}
	token, err := issueToken(app.config.jwt.secret, app.config.jwt.expiry, ident)
	if err != nil {
		t.Fatalf("issueToken: %v", err)
	}
	expired, err := issueToken(app.config.jwt.secret, -time.Hour, ident)
	if err != nil {
		t.Fatalf("issueToken: %v", err)
	}

	tests := []struct {
		name       string
		header     string
		wantStatus int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"not bearer", "Basic abc", http.StatusUnauthorized},
		{"bearer without token", "Bearer", http.StatusUnauthorized},
		{"garbage token", "Bearer not.a.token", http.StatusForbidden},
		{"expired token", "Bearer " + expired, http.StatusForbidden},
		{"valid token", "Bearer " + token, http.StatusOK},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var got *identity
			handler := app.authenticateBearer(func(w http.ResponseWriter, r *http.Request) {
				got = identityFromRequest(r)
				w.WriteHeader(http.StatusOK)
			})

			r := httptest.NewRequest("GET", "/api/tasks", nil)
			if tc.header != "" {
				r.Header.Set("Authorization", tc.header)
			}
			w := httptest.NewRecorder()
			handler(w, r)

			if w.Code != tc.wantStatus {
				t.Fatalf("got status %d, want %d", w.Code, tc.wantStatus)
			}
			if tc.wantStatus == http.StatusOK {
				if got == nil || *got != ident {
					t.Errorf("handler saw identity %+v, want %+v", got, ident)
				}
			} else {
				if got != nil {
					t.Error("handler ran despite failed authentication")
				}
				if env := decodeEnvelope(t, w); env.Success {
					t.Error("failure envelope has success=true")
				}
			}
		})
	}
}

func TestAuthenticateAPIKeyMissing(t *testing.T) {
	app := newTestApp()
	called := false
	handler := app.authenticateAPIKey(func(w http.ResponseWriter, r *http.Request) {
		called = true
	})

	r := httptest.NewRequest("GET", "/api/key/tasks", nil)
	w := httptest.NewRecorder()
	handler(w, r)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("got status %d, want %d", w.Code, http.StatusUnauthorized)
	}
	if called {
		t.Error("handler ran without an api key")
	}
}

func TestNotFoundHandler(t *testing.T) {
	r := httptest.NewRequest("GET", "/api/unknown", nil)
	w := httptest.NewRecorder()
	notFoundHandler(w, r)

	if w.Code != http.StatusNotFound {
		t.Errorf("got status %d, want %d", w.Code, http.StatusNotFound)
	}
	if env := decodeEnvelope(t, w); env.Success {
		t.Error("not-found envelope has success=true")
	}
}

func TestHealthCheckHandler(t *testing.T) {
	app := newTestApp()
	r := httptest.NewRequest("GET", "/health", nil)
	w := httptest.NewRecorder()
	app.healthCheckHandler(w, r)

	if w.Code != http.StatusOK {
		t.Fatalf("got status %d, want %d", w.Code, http.StatusOK)
	}
	env := decodeEnvelope(t, w)
	if !env.Success {
		t.Error("health envelope has success=false")
	}
	data, ok := env.Data.(map[string]any)
	if !ok {
		t.Fatalf("health data is %T, want an object", env.Data)
	}
	if data["environment"] != "test" {
		t.Errorf("got environment %v, want test", data["environment"])
	}
}
