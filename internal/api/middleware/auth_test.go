package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"buildwatch/internal/config"
)

func TestValidateAPIKey(t *testing.T) {
	am := NewAuthMiddleware(config.APIConfig{Keys: []string{"valid-key", "another-key"}})

	tests := []struct {
		name   string
		apiKey string
		valid  bool
	}{
		{"valid key", "valid-key", true},
		{"second valid key", "another-key", true},
		{"valid key with bearer prefix", "Bearer valid-key", true},
		{"valid key with whitespace", " valid-key ", true},
		{"invalid key", "wrong-key", false},
		{"empty key", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := am.ValidateAPIKey(tt.apiKey); got != tt.valid {
				t.Errorf("ValidateAPIKey(%q) = %v, want %v", tt.apiKey, got, tt.valid)
			}
		})
	}
}

func TestAuthMiddleware(t *testing.T) {
	am := NewAuthMiddleware(config.APIConfig{Keys: []string{"valid-key"}})

	var gotKey string
	handler := am.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey, _ = r.Context().Value(APIKeyContextKey).(string)
		w.WriteHeader(http.StatusOK)
	}))

	// Authorized request passes through with the key in context
	req := httptest.NewRequest(http.MethodGet, "/api/v1/audit", nil)
	req.Header.Set("Authorization", "Bearer valid-key")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("Expected 200, got %d", rec.Code)
	}
	if gotKey != "valid-key" {
		t.Errorf("Expected api key in context, got %q", gotKey)
	}

	// Missing credentials are rejected
	req = httptest.NewRequest(http.MethodGet, "/api/v1/audit", nil)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("Expected 401, got %d", rec.Code)
	}
}
