package middleware

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/Dan9191/loan-risk-service/internal/config"
	"github.com/golang-jwt/jwt/v5"
)

type contextKey string

const lenderIDKey contextKey = "lenderID"

// LenderIDFromContext returns the authenticated lender id
func LenderIDFromContext(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(lenderIDKey).(int64)
	return id, ok
}

// WithLenderID stores an authenticated lender id in the context
func WithLenderID(ctx context.Context, id int64) context.Context {
	return context.WithValue(ctx, lenderIDKey, id)
}

// AuthMiddleware validates the Bearer JWT and stores the lender id in the request context
func AuthMiddleware(cfg *config.Config) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			tokenString, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || tokenString == "" {
				http.Error(w, "missing bearer token", http.StatusUnauthorized)
				return
			}

			claims := &jwt.RegisteredClaims{}
			_, err := jwt.ParseWithClaims(tokenString, claims, func(*jwt.Token) (any, error) {
				return []byte(cfg.JWTSecret), nil
			}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
			if err != nil {
				http.Error(w, "invalid token", http.StatusUnauthorized)
				return
			}

			lenderID, err := strconv.ParseInt(claims.Subject, 10, 64)
			if err != nil {
				http.Error(w, "invalid token subject", http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithLenderID(r.Context(), lenderID)))
		})
	}
}
