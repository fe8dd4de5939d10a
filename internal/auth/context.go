package auth

import (
	"context"
	"net/http"

	"slotwise/models"
)

// ContextKey is the type used for context keys.
type ContextKey string

const (
	// ContextKeyAccount is the key for the authenticated account.
	ContextKeyAccount ContextKey = "account"
	// ContextKeySession is the key for the session in the context.
	ContextKeySession ContextKey = "session"
)

// WithAccount returns a context carrying the authenticated account and its
// session.
func WithAccount(ctx context.Context, acct models.Account, session models.Session) context.Context {
	ctx = context.WithValue(ctx, ContextKeyAccount, acct)
	return context.WithValue(ctx, ContextKeySession, session)
}

// GetAccount retrieves the authenticated account from the request context.
func GetAccount(r *http.Request) (models.Account, bool) {
	acct, ok := r.Context().Value(ContextKeyAccount).(models.Account)
	return acct, ok
}

// GetSession retrieves the session from the request context.
func GetSession(r *http.Request) (models.Session, bool) {
	s, ok := r.Context().Value(ContextKeySession).(models.Session)
	return s, ok
}
