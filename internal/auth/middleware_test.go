package auth

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "test-secret"

func sign(t *testing.T, key string, c jwt.MapClaims) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString([]byte(key))
	require.NoError(t, err)
	return tok
}

func discard() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func echoIdentity() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := FromContext(r.Context())
		if !ok {
			_, _ = w.Write([]byte("anonymous"))
			return
		}
		_, _ = w.Write([]byte(id.UserID + "|" + id.Email))
	})
}

func TestAuthenticate(t *testing.T) {
	h := Authenticate(discard(), NewVerifier(secret))(echoIdentity())
	valid := sign(t, secret, jwt.MapClaims{"sub": "u1", "email": "a@b.c", "exp": time.Now().Add(time.Hour).Unix()})

	cases := []struct {
		name   string
		header string
		status int
		body   string
	}{
		{"no header", "", http.StatusOK, "anonymous"},
		{"valid token", "Bearer " + valid, http.StatusOK, "u1|a@b.c"},
		{"wrong scheme", "Basic abc", http.StatusUnauthorized, ""},
		{"bad signature", "Bearer " + sign(t, "other", jwt.MapClaims{"sub": "u1", "exp": time.Now().Add(time.Hour).Unix()}), http.StatusUnauthorized, ""},
		{"expired", "Bearer " + sign(t, secret, jwt.MapClaims{"sub": "u1", "exp": time.Now().Add(-time.Hour).Unix()}), http.StatusUnauthorized, ""},
		{"no expiry", "Bearer " + sign(t, secret, jwt.MapClaims{"sub": "u1"}), http.StatusUnauthorized, ""},
		{"no subject", "Bearer " + sign(t, secret, jwt.MapClaims{"exp": time.Now().Add(time.Hour).Unix()}), http.StatusUnauthorized, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			assert.Equal(t, tc.status, rec.Code)
			if tc.body != "" {
				assert.Equal(t, tc.body, rec.Body.String())
			}
		})
	}
}

func TestRequireUser(t *testing.T) {
	h := RequireUser(echoIdentity())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(WithIdentity(req.Context(), Identity{UserID: "u1"}))
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

type admins map[string]bool

func (a admins) IsAdmin(_ context.Context, userID string) (bool, error) {
	if userID == "broken" {
		return false, errors.New("db down")
	}
	return a[userID], nil
}

func TestRequireAdmin(t *testing.T) {
	h := RequireAdmin(discard(), admins{"boss": true})(echoIdentity())

	for user, status := range map[string]int{"boss": http.StatusOK, "shopper": http.StatusForbidden, "broken": http.StatusInternalServerError} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req = req.WithContext(WithIdentity(req.Context(), Identity{UserID: user}))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, status, rec.Code, user)
	}
}
