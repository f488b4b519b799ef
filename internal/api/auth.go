package api

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v4"
)

// AnonymousUser is the identity recorded when no credential resolves.
const AnonymousUser = "anonymous"

const authCookieName = "auth_token"

type userIDCtxKey struct{}

var ctxKeyUserID = userIDCtxKey{}

// userIDFromContext retrieves the resolved identity from the request
// context. Falls back to AnonymousUser if the middleware did not run.
func userIDFromContext(ctx context.Context) string {
	if uid, ok := ctx.Value(ctxKeyUserID).(string); ok {
		return uid
	}
	return AnonymousUser
}

// identityResolver resolves a caller identity from one credential source.
// It returns ("", false) when its credential is absent or invalid.
type identityResolver func(r *http.Request) (string, bool)

// identityChain tries each resolver in order and returns the first
// successful identity. The core never authenticates; it only records the
// identity resolved here for session attribution.
type identityChain struct {
	resolvers []identityResolver
}

func (c *identityChain) resolve(r *http.Request) string {
	for _, resolve := range c.resolvers {
		if uid, ok := resolve(r); ok {
			return uid
		}
	}
	return AnonymousUser
}

// newIdentityChain builds the default chain: auth cookie, then bearer
// token, then anonymous.
func newIdentityChain(jwtSecret []byte) *identityChain {
	return &identityChain{resolvers: []identityResolver{
		cookieResolver(jwtSecret),
		bearerResolver(jwtSecret),
	}}
}

func cookieResolver(secret []byte) identityResolver {
	return func(r *http.Request) (string, bool) {
		cookie, err := r.Cookie(authCookieName)
		if err != nil {
			return "", false
		}
		return verifyToken(cookie.Value, secret)
	}
}

func bearerResolver(secret []byte) identityResolver {
	return func(r *http.Request) (string, bool) {
		auth := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(auth, "Bearer ")
		if !ok || token == "" {
			return "", false
		}
		return verifyToken(token, secret)
	}
}

// verifyToken validates an HMAC-signed JWT and extracts the subject.
func verifyToken(tokenString string, secret []byte) (string, bool) {
	if len(secret) == 0 {
		return "", false
	}

	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return secret, nil
	})
	if err != nil || !token.Valid || claims.Subject == "" {
		return "", false
	}
	return claims.Subject, true
}

// identityMiddleware resolves the caller identity and attaches it to the
// request context. Unauthenticated requests proceed as anonymous; this
// layer never rejects.
func identityMiddleware(chain *identityChain) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			uid := chain.resolve(r)
			ctx := context.WithValue(r.Context(), ctxKeyUserID, uid)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
