package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/md-rashed-zaman/apptcrm/libs/httpx"
)

type ctxKey struct{}

func ContextWithClaims(ctx context.Context, c *Claims) context.Context {
	return context.WithValue(ctx, ctxKey{}, c)
}

func ClaimsFromContext(ctx context.Context) (*Claims, bool) {
	c, ok := ctx.Value(ctxKey{}).(*Claims)
	return c, ok && c != nil
}

// BusinessIDFromContext returns the authenticated owner's business, or "".
func BusinessIDFromContext(ctx context.Context) string {
	if c, ok := ClaimsFromContext(ctx); ok {
		return c.BusinessID
	}
	return ""
}

// RequireOwner rejects requests without a valid owner bearer token.
func RequireOwner(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok {
				unauthorized(w, "missing bearer token")
				return
			}
			claims, err := ParseAndVerifyHS256(token, secret)
			if err != nil {
				unauthorized(w, "invalid token")
				return
			}
			if claims.Role != RoleOwner {
				httpx.WriteError(w, http.StatusForbidden, "forbidden", "owner role required")
				return
			}
			next.ServeHTTP(w, r.WithContext(ContextWithClaims(r.Context(), claims)))
		})
	}
}

func bearerToken(r *http.Request) (string, bool) {
	h := r.Header.Get("Authorization")
	scheme, token, ok := strings.Cut(h, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func unauthorized(w http.ResponseWriter, msg string) {
	w.Header().Set("WWW-Authenticate", `Bearer realm="owner"`)
	httpx.WriteError(w, http.StatusUnauthorized, "unauthorized", msg)
}
