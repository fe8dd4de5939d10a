package models

import "time"

// Account is a Google-authenticated user together with the calendar tokens
// obtained during the OAuth consent flow.
type Account struct {
	ID           string    `json:"id"`
	GoogleID     string    `json:"googleId"`
	Email        string    `json:"email"`
	Name         string    `json:"name,omitempty"`
	Picture      string    `json:"picture,omitempty"`
	AccessToken  string    `json:"-"`
	RefreshToken string    `json:"-"`
	TokenExpiry  time.Time `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
	LastLogin    time.Time `json:"lastLogin"`
}

// HasCalendarGrant reports whether the account holds the token pair needed
// to touch the calendar store. Absence is a distinct condition from absence
// of identity: the user is known but must re-consent.
func (a Account) HasCalendarGrant() bool {
	return a.AccessToken != "" && a.RefreshToken != ""
}

// Session is a bearer token issued after a successful OAuth callback.
type Session struct {
	Token     string    `json:"token"`
	AccountID string    `json:"accountId"`
	ExpiresAt time.Time `json:"expiresAt"`
	CreatedAt time.Time `json:"createdAt"`
	UserAgent string    `json:"userAgent,omitempty"`
	IPAddress string    `json:"ipAddress,omitempty"`
}

// IsExpired reports whether the session has passed its expiry.
func (s Session) IsExpired() bool {
	return time.Now().After(s.ExpiresAt)
}
