package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"streetbite/internal/httputil"
	"streetbite/internal/model"
)

type contextKey string

// UserIDKey holds the authenticated user's id in the request context.
const UserIDKey contextKey = "user_id"

// accessTokenCookie carries the token for browser clients.
const accessTokenCookie = "access_token"

var errMissingUserClaim = errors.New("token has no user_id claim")

// AuthMiddleware accepts an HS256 access token from the Authorization header
// (mobile) or the access_token cookie (web) and puts its user_id claim into
// the request context. Tokens are issued elsewhere; only verification lives here.
func AuthMiddleware(jwtSecret string) func(http.Handler) http.Handler {
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	keyFunc := func(*jwt.Token) (interface{}, error) {
		return []byte(jwtSecret), nil
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := accessToken(r)
			if raw == "" {
				httputil.WriteUnauthorized(w, "Missing authentication token")
				return
			}

			userID, err := userIDFromToken(parser, keyFunc, raw)
			switch {
			case errors.Is(err, jwt.ErrTokenExpired):
				httputil.WriteUnauthorizedWithCode(w, model.CodeTokenExpired, "Access token has expired")
				return
			case err != nil:
				httputil.WriteUnauthorizedWithCode(w, model.CodeTokenInvalid, "Invalid authentication token")
				return
			}

			ctx := context.WithValue(r.Context(), UserIDKey, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// accessToken prefers "Authorization: Bearer <token>" over the cookie.
func accessToken(r *http.Request) string {
	if scheme, token, ok := strings.Cut(r.Header.Get("Authorization"), " "); ok && strings.EqualFold(scheme, "Bearer") {
		return strings.TrimSpace(token)
	}
	if cookie, err := r.Cookie(accessTokenCookie); err == nil {
		return cookie.Value
	}
	return ""
}

func userIDFromToken(parser *jwt.Parser, keyFunc jwt.Keyfunc, raw string) (int64, error) {
	claims := jwt.MapClaims{}
	if _, err := parser.ParseWithClaims(raw, claims, keyFunc); err != nil {
		return 0, err
	}

	// JSON numbers decode as float64
	id, ok := claims["user_id"].(float64)
	if !ok || id <= 0 {
		return 0, errMissingUserClaim
	}
	return int64(id), nil
}

// GetUserIDFromContext returns the id stored by AuthMiddleware.
func GetUserIDFromContext(ctx context.Context) (int64, bool) {
	userID, ok := ctx.Value(UserIDKey).(int64)
	return userID, ok
}
