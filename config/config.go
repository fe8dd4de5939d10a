// Package config loads server configuration from the environment.
package config

import (
	"errors"
	"os"
	"strings"
)

// Config holds all server settings.
type Config struct {
	ListenAddr string
	DataDir    string

	// Google OAuth client used for both login and calendar access.
	GoogleClientID     string
	GoogleClientSecret string
	OAuthRedirectURL   string

	// FrontendURL is where the chat UI lives; OAuth callbacks redirect
	// there and it is added to the CORS allow list.
	FrontendURL string

	// GeminiAPIKey authorizes calls to the language-model translator.
	// Empty means the scheduling endpoint reports the translator as
	// unavailable rather than failing at startup.
	GeminiAPIKey string

	// DefaultTimeZone is assigned to parsed events that carry none.
	DefaultTimeZone string

	// LogFile, when set, enables rotated file logging.
	LogFile string
}

// Load reads configuration from environment variables, applying defaults.
func Load() (Config, error) {
	cfg := Config{
		ListenAddr:         getenv("LISTEN_ADDR", ":5000"),
		DataDir:            getenv("DATA_DIR", "./data"),
		GoogleClientID:     os.Getenv("GOOGLE_CLIENT_ID"),
		GoogleClientSecret: os.Getenv("GOOGLE_CLIENT_SECRET"),
		OAuthRedirectURL:   getenv("OAUTH_REDIRECT_URL", "http://localhost:5000/auth/google/callback"),
		FrontendURL:        getenv("FRONTEND_URL", "http://localhost:3000"),
		GeminiAPIKey:       os.Getenv("GEMINI_API_KEY"),
		DefaultTimeZone:    getenv("DEFAULT_TIMEZONE", "Asia/Kolkata"),
		LogFile:            os.Getenv("LOG_FILE"),
	}

	if cfg.GoogleClientID == "" || cfg.GoogleClientSecret == "" {
		return Config{}, errors.New("GOOGLE_CLIENT_ID and GOOGLE_CLIENT_SECRET are required")
	}
	return cfg, nil
}

func getenv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}
