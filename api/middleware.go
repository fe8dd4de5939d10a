package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"slotwise/internal/auth"
	"slotwise/services/accounts"
	"slotwise/services/sessions"
)

// SessionAuthMiddleware validates the bearer token and loads the account
// behind it. Tokens arrive in the Authorization header or, for redirects
// that cannot set headers, a ?token= query param.
func SessionAuthMiddleware(sessionsSvc *sessions.Service, accountsSvc *accounts.Service) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Always allow OPTIONS for CORS
			if r.Method == http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}

			token := extractToken(r)
			if token == "" {
				unauthorized(w, "authentication required")
				return
			}

			session, err := sessionsSvc.Validate(token)
			if err != nil {
				unauthorized(w, "invalid or expired session")
				return
			}

			acct, err := accountsSvc.Get(r.Context(), session.AccountID)
			if err != nil {
				unauthorized(w, "account no longer exists")
				return
			}

			next.ServeHTTP(w, r.WithContext(auth.WithAccount(r.Context(), acct, session)))
		})
	}
}

func unauthorized(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

// extractToken pulls the session token from the Authorization header
// (with or without the Bearer prefix) or the token query param.
func extractToken(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		if strings.HasPrefix(h, "Bearer ") {
			return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
		}
		return strings.TrimSpace(h)
	}
	return r.URL.Query().Get("token")
}
