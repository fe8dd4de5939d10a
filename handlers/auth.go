package handlers

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"golang.org/x/oauth2"

	"slotwise/api"
	"slotwise/internal/auth"
	"slotwise/services/accounts"
	"slotwise/services/sessions"
)

const (
	stateCookie     = "oauth_state"
	stateTTL        = 10 * time.Minute
	userinfoURL     = "https://www.googleapis.com/oauth2/v2/userinfo"
	exchangeTimeout = 30 * time.Second
)

// AuthHandler runs the Google OAuth flow and manages sessions.
type AuthHandler struct {
	oauth       *oauth2.Config
	accounts    *accounts.Service
	sessions    *sessions.Service
	frontendURL string
}

func NewAuthHandler(oauth *oauth2.Config, accountsSvc *accounts.Service, sessionsSvc *sessions.Service, frontendURL string) *AuthHandler {
	return &AuthHandler{
		oauth:       oauth,
		accounts:    accountsSvc,
		sessions:    sessionsSvc,
		frontendURL: frontendURL,
	}
}

// Login starts the consent flow. The offline access type plus forced
// consent is what makes Google return a refresh token.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	state, err := randomState()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to start login")
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     stateCookie,
		Value:    state,
		Path:     "/",
		MaxAge:   int(stateTTL.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	url := h.oauth.AuthCodeURL(state,
		oauth2.AccessTypeOffline,
		oauth2.SetAuthURLParam("prompt", "consent"),
	)
	http.Redirect(w, r, url, http.StatusTemporaryRedirect)
}

// Callback finishes the consent flow: code exchange, profile fetch,
// account upsert, session issue, and a redirect back to the frontend with
// the session token.
func (h *AuthHandler) Callback(w http.ResponseWriter, r *http.Request) {
	fail := func(reason string, err error) {
		log.Printf("[auth] callback failed (%s): %v", reason, err)
		http.Redirect(w, r, h.frontendURL+"/login?error=auth_failed", http.StatusTemporaryRedirect)
	}

	cookie, err := r.Cookie(stateCookie)
	if err != nil || cookie.Value == "" || cookie.Value != r.URL.Query().Get("state") {
		fail("state mismatch", err)
		return
	}
	code := r.URL.Query().Get("code")
	if code == "" {
		fail("missing code", fmt.Errorf("query: %s", r.URL.RawQuery))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), exchangeTimeout)
	defer cancel()

	token, err := h.oauth.Exchange(ctx, code)
	if err != nil {
		fail("exchange", err)
		return
	}

	profile, err := h.fetchProfile(ctx, token)
	if err != nil {
		fail("userinfo", err)
		return
	}

	acct, err := h.accounts.Upsert(ctx, profile, token.AccessToken, token.RefreshToken, token.Expiry)
	if err != nil {
		fail("upsert", err)
		return
	}

	session, err := h.sessions.Create(acct.ID, r.Header.Get("User-Agent"), api.ClientIP(r))
	if err != nil {
		fail("session", err)
		return
	}

	// Clear the state cookie now that the flow is done.
	http.SetCookie(w, &http.Cookie{Name: stateCookie, Value: "", Path: "/", MaxAge: -1})
	http.Redirect(w, r, h.frontendURL+"/dashboard?token="+session.Token, http.StatusTemporaryRedirect)
}

func (h *AuthHandler) fetchProfile(ctx context.Context, token *oauth2.Token) (accounts.Profile, error) {
	resp, err := h.oauth.Client(ctx, token).Get(userinfoURL)
	if err != nil {
		return accounts.Profile{}, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return accounts.Profile{}, fmt.Errorf("userinfo status %d", resp.StatusCode)
	}

	var info struct {
		ID      string `json:"id"`
		Email   string `json:"email"`
		Name    string `json:"name"`
		Picture string `json:"picture"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return accounts.Profile{}, err
	}
	if info.ID == "" || info.Email == "" {
		return accounts.Profile{}, fmt.Errorf("incomplete profile")
	}
	return accounts.Profile{
		GoogleID: info.ID,
		Email:    info.Email,
		Name:     info.Name,
		Picture:  info.Picture,
	}, nil
}

// Me returns the authenticated account's profile.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	acct, ok := auth.GetAccount(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "not authenticated")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"id":                acct.ID,
		"email":             acct.Email,
		"name":              acct.Name,
		"picture":           acct.Picture,
		"hasCalendarAccess": acct.HasCalendarGrant(),
	})
}

// Logout revokes the current session.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	session, ok := auth.GetSession(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "not authenticated")
		return
	}
	if err := h.sessions.Revoke(session.Token); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to log out")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "logged out"})
}

func randomState() (string, error) {
	b := make([]byte, 24)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b), nil
}
