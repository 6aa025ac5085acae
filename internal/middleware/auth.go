package middleware

import (
	"net/http"

	"oxytoxin-be/internal/auth"
	"oxytoxin-be/internal/user"
	"oxytoxin-be/internal/utils"
)

// AuthMiddleware is passive: it populates user context when a valid token
// is present and lets anonymous requests through. Handlers that need a
// user check the context themselves.
func AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenStr := auth.ExtractAccessToken(r)
		if tokenStr == "" {
			next.ServeHTTP(w, r)
			return
		}

		claims, err := user.ParseJWT(tokenStr)
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}

		ctx := utils.SetUserContext(r.Context(), claims.UserID, claims.Email, claims.Name)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireAuth rejects requests with no authenticated user.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := utils.GetUserIDFromContext(r.Context()); !ok {
			http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}
