package webapi

import (
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/dbaworks/awr-advisor/pkg/logger"
)

// AuthMiddleware gates every request behind a bearer token signed with the
// server's JWT secret. Unlike the teacher's RBAC middleware this package
// replaced, it carries no roles or permissions: read access to analyzed
// workspaces is all-or-nothing for any holder of a valid token.
type AuthMiddleware struct {
	secret []byte
	log    logger.Logger
}

// NewAuthMiddleware builds a bearer-token gate around the given secret.
func NewAuthMiddleware(secret string, log logger.Logger) *AuthMiddleware {
	return &AuthMiddleware{secret: []byte(secret), log: log}
}

// Middleware rejects requests without a valid bearer token.
func (m *AuthMiddleware) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		tokenStr, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || tokenStr == "" {
			writeError(w, http.StatusUnauthorized, "missing bearer token")
			return
		}

		_, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return m.secret, nil
		})
		if err != nil {
			m.log.Warn("rejected request with invalid token", logger.String("path", r.URL.Path), logger.Error(err))
			writeError(w, http.StatusUnauthorized, "invalid or expired token")
			return
		}

		next.ServeHTTP(w, r)
	})
}
