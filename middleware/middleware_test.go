package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Dosada05/forza-race-organizer/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeVerifier struct {
	tokens map[string]*models.SessionUser
}

func (f fakeVerifier) VerifySession(token string) (*models.SessionUser, error) {
	if u, ok := f.tokens[token]; ok {
		return u, nil
	}
	return nil, errors.New("bad token")
}

func TestAuthenticate(t *testing.T) {
	verifier := fakeVerifier{tokens: map[string]*models.SessionUser{"good": {ID: "42", Username: "racer"}}}
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := GetUserIDFromContext(r.Context())
		require.NoError(t, err)
		_, _ = w.Write([]byte(id))
	})
	handler := Authenticate(verifier)(next)

	tests := []struct {
		name       string
		url        string
		header     string
		wantStatus int
		wantBody   string
	}{
		{name: "bearer header", url: "/", header: "Bearer good", wantStatus: http.StatusOK, wantBody: "42"},
		{name: "lowercase scheme", url: "/", header: "bearer good", wantStatus: http.StatusOK, wantBody: "42"},
		{name: "query token", url: "/?token=good", wantStatus: http.StatusOK, wantBody: "42"},
		{name: "missing token", url: "/", wantStatus: http.StatusUnauthorized, wantBody: `{"error":"authentication required"}` + "\n"},
		{name: "wrong scheme", url: "/?token=good", header: "Basic good", wantStatus: http.StatusUnauthorized, wantBody: `{"error":"authentication required"}` + "\n"},
		{name: "invalid token", url: "/", header: "Bearer bad", wantStatus: http.StatusUnauthorized, wantBody: `{"error":"invalid or expired session"}` + "\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.url, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)

			assert.Equal(t, tt.wantStatus, rr.Code)
			assert.Equal(t, tt.wantBody, rr.Body.String())
		})
	}
}

func TestGetUserFromContextWithoutSession(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	_, err := GetUserIDFromContext(req.Context())
	assert.Error(t, err)

	ctx := WithUser(req.Context(), &models.SessionUser{ID: "7"})
	id, err := GetUserIDFromContext(ctx)
	require.NoError(t, err)
	assert.Equal(t, "7", id)
}

func TestRateLimiter_PerIP(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	l := NewRateLimiter(1, 2)
	l.now = func() time.Time { return now }
	handler := l.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	call := func(addr string) int {
		req := httptest.NewRequest(http.MethodGet, "/api/races", nil)
		req.RemoteAddr = addr
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		return rr.Code
	}

	assert.Equal(t, http.StatusNoContent, call("10.0.0.1:5000"))
	assert.Equal(t, http.StatusNoContent, call("10.0.0.1:5001"))
	assert.Equal(t, http.StatusTooManyRequests, call("10.0.0.1:5002"))
	assert.Equal(t, http.StatusNoContent, call("10.0.0.2:5000"))

	now = now.Add(time.Second)
	assert.Equal(t, http.StatusNoContent, call("10.0.0.1:5003"))
}

func TestRateLimiter_PrunesIdleVisitors(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	l := NewRateLimiter(5, 5)
	l.now = func() time.Time { return now }

	assert.True(t, l.allow("10.0.0.1"))
	now = now.Add(visitorIdleTTL + time.Minute)
	assert.True(t, l.allow("10.0.0.2"))

	l.mu.Lock()
	defer l.mu.Unlock()
	assert.NotContains(t, l.visitors, "10.0.0.1")
	assert.Contains(t, l.visitors, "10.0.0.2")
}

func TestRateLimitDisabled(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})
	handler := RateLimit(0, 0)(next)
	for range 100 {
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusOK, rr.Code)
	}
}
