package auth

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/dmehra2102/storefront/pkg/httpjson"
)

type claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

type Verifier struct {
	secret []byte
}

func NewVerifier(secret string) *Verifier {
	return &Verifier{secret: []byte(secret)}
}

func (v *Verifier) Verify(token string) (Identity, error) {
	var c claims
	_, err := jwt.ParseWithClaims(token, &c, func(t *jwt.Token) (any, error) {
		return v.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return Identity{}, fmt.Errorf("%w: %v", ErrUnauthenticated, err)
	}
	if c.Subject == "" {
		return Identity{}, fmt.Errorf("%w: token has no subject", ErrUnauthenticated)
	}
	return Identity{UserID: c.Subject, Email: c.Email}, nil
}

// Authenticate attaches the identity when a valid bearer token is present. Requests without a token
// pass through anonymously; a malformed or expired token is rejected.
func Authenticate(log *slog.Logger, v *Verifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				next.ServeHTTP(w, r)
				return
			}
			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok {
				httpjson.Error(w, http.StatusUnauthorized, "invalid authorization header")
				return
			}
			id, err := v.Verify(token)
			if err != nil {
				log.Info("token rejected", "err", err)
				httpjson.Error(w, http.StatusUnauthorized, "invalid token")
				return
			}
			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
		})
	}
}

func RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := FromContext(r.Context()); !ok {
			httpjson.Error(w, http.StatusUnauthorized, "sign in required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

type AdminDirectory interface {
	IsAdmin(ctx context.Context, userID string) (bool, error)
}

// RequireAdmin must run after RequireUser.
func RequireAdmin(log *slog.Logger, dir AdminDirectory) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, ok := FromContext(r.Context())
			if !ok {
				httpjson.Error(w, http.StatusUnauthorized, "sign in required")
				return
			}
			admin, err := dir.IsAdmin(r.Context(), id.UserID)
			if err != nil {
				log.Error("admin lookup failed", "user_id", id.UserID, "err", err)
				httpjson.Error(w, http.StatusInternalServerError, "admin lookup failed")
				return
			}
			if !admin {
				httpjson.Error(w, http.StatusForbidden, ErrForbidden.Error())
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
