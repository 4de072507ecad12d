// Package auth verifies identity-provider session tokens and exposes the
// authenticated caller id to handlers. Sign-in itself happens at the provider;
// this package only checks the session JWT it issues.
package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	jwt "github.com/golang-jwt/jwt/v5"

	"github.com/example/microblog/internal/platform/api"
)

type ctxKeyCallerID struct{}

// CallerIDFromContext returns the authenticated provider user id, if any.
func CallerIDFromContext(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(ctxKeyCallerID{}).(string)
	return v, ok
}

// WithCallerID injects a caller id into context. Useful for testing.
func WithCallerID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxKeyCallerID{}, id)
}

// SessionClaims is the subset of the provider session token we rely on.
// Subject carries the provider user id.
type SessionClaims struct {
	jwt.RegisteredClaims
	// AuthorizedParty is the origin the session was minted for.
	AuthorizedParty string `json:"azp,omitempty"`
}

type SessionVerifier struct {
	Secret []byte
}

func (v SessionVerifier) Parse(tokenString string) (*SessionClaims, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &SessionClaims{}, func(token *jwt.Token) (any, error) {
		if token.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, errors.New("unexpected signing method")
		}
		return v.Secret, nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := parsed.Claims.(*SessionClaims)
	if !ok || !parsed.Valid {
		return nil, errors.New("invalid session token")
	}
	return claims, nil
}

// RequireSession validates the Bearer session token and injects the caller id
// into context. Requests without a valid session get a 401 in the shared
// error envelope, same as handler-level rejections.
func RequireSession(verifier SessionVerifier) func(next http.Handler) http.Handler {
	deny := func(w http.ResponseWriter) {
		api.Unauthorized(w, "UNAUTHORIZED", "missing or invalid session token", "")
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authz := strings.TrimSpace(r.Header.Get("Authorization"))
			if authz == "" {
				deny(w)
				return
			}
			parts := strings.SplitN(authz, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				deny(w)
				return
			}
			claims, err := verifier.Parse(strings.TrimSpace(parts[1]))
			if err != nil || strings.TrimSpace(claims.Subject) == "" {
				deny(w)
				return
			}
			ctx := context.WithValue(r.Context(), ctxKeyCallerID{}, claims.Subject)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
