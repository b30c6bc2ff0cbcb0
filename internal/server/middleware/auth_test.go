package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestAuthDisabledWhenKeyEmpty(t *testing.T) {
	h := Auth("")(okHandler())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}

func TestAuthToken(t *testing.T) {
	h := Auth("secret")(okHandler())

	tests := []struct {
		name   string
		header string
		value  string
		want   int
	}{
		{"no token", "", "", http.StatusUnauthorized},
		{"bearer valid", "Authorization", "Bearer secret", http.StatusOK},
		{"bearer wrong", "Authorization", "Bearer nope", http.StatusUnauthorized},
		{"api key valid", "X-API-Key", "secret", http.StatusOK},
		{"api key wrong", "X-API-Key", "nope", http.StatusUnauthorized},
		{"basic scheme ignored", "Authorization", "Basic secret", http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set(tt.header, tt.value)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}
}
