package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akinalp/kisalt/pkg"
	"github.com/akinalp/kisalt/pkg/i18n"
	"github.com/akinalp/kisalt/pkg/ratelimit"
)

type fixedSession bool

func (f fixedSession) IsAuthenticated() bool { return bool(f) }

func okHandler(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusNoContent)
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) pkg.APIResponse {
	t.Helper()
	var resp pkg.APIResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestRequireSession(t *testing.T) {
	blocked := NewSessionMiddleware(fixedSession(false)).Require(http.HandlerFunc(okHandler))
	rec := httptest.NewRecorder()
	blocked.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/urls", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	resp := decodeResponse(t, rec)
	assert.False(t, resp.Success)
	assert.Equal(t, "Bu işlemi gerçekleştirmek için giriş yapmanız gerekiyor.", resp.Message)

	allowed := NewSessionMiddleware(fixedSession(true)).Require(http.HandlerFunc(okHandler))
	rec = httptest.NewRecorder()
	allowed.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/urls", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestLanguage(t *testing.T) {
	var got string
	handler := Language("tr")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = i18n.FromContext(r.Context(), nil).Lang()
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, "en", got)
	assert.Equal(t, "en", rec.Header().Get("Content-Language"))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, "tr", got)
}

func TestLanguageAppliesToSessionMessage(t *testing.T) {
	chain := Language("tr")(NewSessionMiddleware(fixedSession(false)).Require(http.HandlerFunc(okHandler)))

	req := httptest.NewRequest(http.MethodGet, "/api/urls", nil)
	req.Header.Set("Accept-Language", "en")
	rec := httptest.NewRecorder()
	chain.ServeHTTP(rec, req)

	assert.Equal(t, "You need to log in to perform this action.", decodeResponse(t, rec).Message)
}

func TestRateLimit(t *testing.T) {
	limiter := ratelimit.NewWindowLimiter(2, time.Minute)
	defer limiter.Close()

	handler := RateLimit(limiter)(http.HandlerFunc(okHandler))

	send := func(ip string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/r/abc", nil)
		req.Header.Set("X-Forwarded-For", ip)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec
	}

	assert.Equal(t, http.StatusNoContent, send("10.0.0.1").Code)
	assert.Equal(t, http.StatusNoContent, send("10.0.0.1").Code)

	rec := send("10.0.0.1")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
	assert.Contains(t, decodeResponse(t, rec).Message, "saniye")

	assert.Equal(t, http.StatusNoContent, send("10.0.0.2").Code, "other IPs unaffected")
}

func TestRateLimitNilIsNoop(t *testing.T) {
	handler := RateLimit(nil)(http.HandlerFunc(okHandler))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestSameOrigin(t *testing.T) {
	handler := Language("en")(SameOrigin([]string{"http://localhost:3000"})(http.HandlerFunc(okHandler)))

	tests := []struct {
		name      string
		method    string
		origin    string
		fetchSite string
		want      int
	}{
		{"read from anywhere", http.MethodGet, "https://evil.example", "cross-site", http.StatusNoContent},
		{"cross-site post", http.MethodPost, "https://evil.example", "cross-site", http.StatusForbidden},
		{"cross-site delete", http.MethodDelete, "https://evil.example", "", http.StatusForbidden},
		{"configured origin", http.MethodPost, "http://localhost:3000", "same-site", http.StatusNoContent},
		{"dashboard page", http.MethodPut, "http://example.com", "same-origin", http.StatusNoContent},
		{"non-browser client", http.MethodPost, "", "", http.StatusNoContent},
		{"fetch metadata without origin", http.MethodPost, "", "cross-site", http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "http://example.com/api/urls", nil)
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}
			if tt.fetchSite != "" {
				req.Header.Set("Sec-Fetch-Site", tt.fetchSite)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.want, rec.Code)
			if tt.want == http.StatusForbidden {
				assert.Equal(t, "You are not allowed to perform this action", decodeResponse(t, rec).Message)
			}
		})
	}
}
