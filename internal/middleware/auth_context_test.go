package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"pet-adoption-hub/internal/ports/auth"

	"github.com/stretchr/testify/assert"
)

type stubVerifier struct {
	token string
}

func (s stubVerifier) Verify(_ context.Context, token string) (auth.Claims, error) {
	if token != s.token {
		return auth.Claims{}, errors.New("bad token")
	}
	return auth.Claims{UserID: "u-jwt", Email: "jwt@example.com"}, nil
}

func capture(t *testing.T, mw func(http.Handler) http.Handler, req *http.Request) (auth.Claims, bool) {
	t.Helper()
	var (
		got auth.Claims
		ok  bool
	)
	h := mw(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		got, ok = CurrentUser(r)
	}))
	h.ServeHTTP(httptest.NewRecorder(), req)
	return got, ok
}

func TestAuthContext_DevHeaders(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Debug-User-ID", "u-1")
	req.Header.Set("X-Debug-User-Name", "Ana")

	c, ok := capture(t, AuthContext(nil), req)
	assert.True(t, ok)
	assert.Equal(t, "u-1", c.UserID)
	assert.Equal(t, "Ana", c.DisplayName)
}

func TestAuthContext_VerifierIgnoresDebugHeader(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Debug-User-ID", "u-1")

	_, ok := capture(t, AuthContext(stubVerifier{token: "good"}), req)
	assert.False(t, ok)
}

func TestAuthContext_BearerAndQueryToken(t *testing.T) {
	mw := AuthContext(stubVerifier{token: "good"})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer good")
	c, ok := capture(t, mw, req)
	assert.True(t, ok)
	assert.Equal(t, "u-jwt", c.UserID)

	req = httptest.NewRequest(http.MethodGet, "/me/notifications/stream?access_token=good", nil)
	_, ok = capture(t, mw, req)
	assert.True(t, ok)

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer bad")
	_, ok = capture(t, mw, req)
	assert.False(t, ok)
}

func TestBearerToken(t *testing.T) {
	assert.Equal(t, "abc", bearerToken("bearer abc"))
	assert.Equal(t, "", bearerToken("Basic abc"))
	assert.Equal(t, "", bearerToken("Bearer"))
	assert.Equal(t, "", bearerToken(""))
}

func TestAdminOnly(t *testing.T) {
	h := AuthContext(nil)(AdminOnly([]string{" admin-1 ", ""})(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})))

	cases := []struct {
		user string
		want int
	}{
		{"", http.StatusUnauthorized},
		{"u-1", http.StatusForbidden},
		{"admin-1", http.StatusNoContent},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodPost, "/admin/x", nil)
		if tc.user != "" {
			req.Header.Set("X-Debug-User-ID", tc.user)
		}
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, tc.want, rec.Code, "user %q", tc.user)
	}
}

func TestAuthContext_QueryTokenOnlyOnStream(t *testing.T) {
	mw := AuthContext(stubVerifier{token: "good"})

	for _, target := range []string{
		"/me/notifications?access_token=good",
		"/me/adoption-requests?access_token=good",
		"/me/notifications/stream/extra?access_token=good",
	} {
		req := httptest.NewRequest(http.MethodGet, target, nil)
		_, ok := capture(t, mw, req)
		assert.False(t, ok, target)
	}

	req := httptest.NewRequest(http.MethodPost, StreamPath+"?access_token=good", nil)
	_, ok := capture(t, mw, req)
	assert.False(t, ok, "only GET streams")

	req = httptest.NewRequest(http.MethodGet, StreamPath+"?access_token=good", nil)
	c, ok := capture(t, mw, req)
	assert.True(t, ok)
	assert.Equal(t, "u-jwt", c.UserID)
}
