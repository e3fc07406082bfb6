package middleware

import (
	"net/http"
	"strings"

	"taskhub/internal/auth"
	"taskhub/internal/repo"
)

// RequireAuth authenticates the request from its Bearer access token,
// loads the user it was issued for, and injects the user into the
// request context. Requests with a missing, invalid, or expired token,
// or a token whose user no longer exists, get a 401.
func RequireAuth(store repo.Store, tokens auth.Tokens) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			header := req.Header.Get("Authorization")
			if !strings.HasPrefix(header, "Bearer ") {
				http.Error(w, "not authorized, no token", http.StatusUnauthorized)
				return
			}
			userID, ok := tokens.VerifyAccessToken(strings.TrimPrefix(header, "Bearer "))
			if !ok {
				http.Error(w, "not authorized, token failed", http.StatusUnauthorized)
				return
			}
			user, err := store.GetUserByID(req.Context(), userID)
			if err != nil {
				http.Error(w, "not authorized, user not found", http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, req.WithContext(auth.WithUser(req.Context(), &user)))
		})
	}
}
