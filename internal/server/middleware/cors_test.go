package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestCORS(t *testing.T) {
	tests := []struct {
		name       string
		config     CORSConfig
		origin     string
		wantOrigin string
	}{
		{"allow all", CORSConfig{AllowAll: true}, "https://a.example", "*"},
		{"empty list allows all", CORSConfig{}, "https://a.example", "*"},
		{"listed origin echoed", CORSConfig{AllowedOrigins: []string{"https://a.example"}}, "https://a.example", "https://a.example"},
		{"unlisted origin", CORSConfig{AllowedOrigins: []string{"https://a.example"}}, "https://b.example", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/profile", nil)
			req.Header.Set("Origin", tt.origin)
			w := httptest.NewRecorder()
			CORS(tt.config)(okHandler()).ServeHTTP(w, req)

			assert.Equal(t, tt.wantOrigin, w.Header().Get("Access-Control-Allow-Origin"))
			assert.Equal(t, http.StatusOK, w.Code)
		})
	}
}

func TestCORS_Preflight(t *testing.T) {
	called := false
	handler := CORS(DefaultCORSConfig())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/form", nil)
	req.Header.Set("Origin", "https://a.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodPut)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.False(t, called)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Methods"), "PUT")
}

func TestIsOriginAllowed(t *testing.T) {
	assert.True(t, isOriginAllowed("https://a.example", []string{"*"}))
	assert.True(t, isOriginAllowed("https://a.example", []string{"https://a.example"}))
	assert.False(t, isOriginAllowed("https://a.example", []string{"https://b.example"}))
	assert.False(t, isOriginAllowed("https://a.example", nil))
}
