// Command slotwise runs the scheduling assistant backend: Google-backed
// login, natural-language event scheduling with conflict resolution, and a
// small prospects contact book.
package main

import (
	"context"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"golang.org/x/time/rate"
	"gopkg.in/natefinch/lumberjack.v2"

	"slotwise/api"
	"slotwise/config"
	"slotwise/handlers"
	"slotwise/internal/database"
	"slotwise/services/accounts"
	"slotwise/services/gcal"
	"slotwise/services/prospects"
	"slotwise/services/scheduler"
	"slotwise/services/sessions"
	"slotwise/services/translator"
	"slotwise/utils"
)

var oauthScopes = []string{
	"https://www.googleapis.com/auth/calendar",
	"https://www.googleapis.com/auth/calendar.events",
	"https://www.googleapis.com/auth/userinfo.profile",
	"https://www.googleapis.com/auth/userinfo.email",
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	if cfg.LogFile != "" {
		log.SetOutput(io.MultiWriter(os.Stderr, &lumberjack.Logger{
			Filename:   cfg.LogFile,
			MaxSize:    20, // megabytes
			MaxBackups: 5,
			MaxAge:     30, // days
			Compress:   true,
		}))
	}
	log.Printf("[main] starting slotwise on %s", cfg.ListenAddr)

	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		log.Fatalf("creating data dir %q: %v", cfg.DataDir, err)
	}
	db, err := database.NewDB(filepath.Join(cfg.DataDir, "slotwise.db"))
	if err != nil {
		log.Fatalf("opening database: %v", err)
	}
	defer db.Close()
	if err := database.RunMigrations(db); err != nil {
		log.Fatalf("migrations: %v", err)
	}

	oauthCfg := &oauth2.Config{
		ClientID:     cfg.GoogleClientID,
		ClientSecret: cfg.GoogleClientSecret,
		RedirectURL:  cfg.OAuthRedirectURL,
		Scopes:       oauthScopes,
		Endpoint:     google.Endpoint,
	}

	accountsSvc := accounts.NewService(database.NewAccountRepository(db))
	prospectsSvc := prospects.NewService(database.NewProspectRepository(db))
	sessionsSvc, err := sessions.NewService(cfg.DataDir, sessions.DefaultDuration)
	if err != nil {
		log.Fatalf("sessions: %v", err)
	}

	if cfg.GeminiAPIKey == "" {
		log.Printf("[main] GEMINI_API_KEY not set, scheduling prompts will be rejected")
	}
	parser := translator.NewService(translator.NewGeminiClient(cfg.GeminiAPIKey, nil), cfg.DefaultTimeZone)
	schedulerSvc := scheduler.New()
	calendarClient := gcal.NewClient(oauthCfg)

	authHandler := handlers.NewAuthHandler(oauthCfg, accountsSvc, sessionsSvc, cfg.FrontendURL)
	scheduleHandler := handlers.NewScheduleHandler(parser, schedulerSvc, calendarClient, prospectsSvc)
	prospectsHandler := handlers.NewProspectsHandler(prospectsSvc)

	utils.SetTrustedOrigins([]string{cfg.FrontendURL})
	router := utils.NewRouter()

	// Scheduling fans out to the translator and the calendar API, so it
	// gets a tight per-IP budget. Login is limited against abuse too.
	loginLimiter := api.NewIPRateLimiter(rate.Every(12*time.Second), 5)
	scheduleLimiter := api.NewIPRateLimiter(rate.Every(6*time.Second), 10)

	router.HandleFunc("/auth/google/login", api.RateLimitHandlerFunc(loginLimiter, authHandler.Login)).Methods(http.MethodGet)
	router.HandleFunc("/auth/google/callback", authHandler.Callback).Methods(http.MethodGet)

	authed := router.NewRoute().Subrouter()
	authed.Use(api.SessionAuthMiddleware(sessionsSvc, accountsSvc))

	authed.HandleFunc("/api/auth/me", authHandler.Me).Methods(http.MethodGet, http.MethodOptions)
	authed.HandleFunc("/api/auth/logout", authHandler.Logout).Methods(http.MethodPost, http.MethodOptions)

	authed.HandleFunc("/api/schedule", api.RateLimitHandlerFunc(scheduleLimiter, scheduleHandler.Schedule)).Methods(http.MethodPost, http.MethodOptions)
	authed.HandleFunc("/api/schedule/resolve", api.RateLimitHandlerFunc(scheduleLimiter, scheduleHandler.ResolveConflict)).Methods(http.MethodPost, http.MethodOptions)

	authed.HandleFunc("/api/events", scheduleHandler.ListUpcoming).Methods(http.MethodGet, http.MethodOptions)
	authed.HandleFunc("/api/events", scheduleHandler.CreateEvent).Methods(http.MethodPost)
	authed.HandleFunc("/api/events/freeslots", scheduleHandler.FreeSlots).Methods(http.MethodPost, http.MethodOptions)
	authed.HandleFunc("/api/events/cleanup", scheduleHandler.CleanupDuplicates).Methods(http.MethodPost, http.MethodOptions)
	authed.HandleFunc("/api/events/{eventID}", scheduleHandler.DeleteEvent).Methods(http.MethodDelete, http.MethodOptions)

	authed.HandleFunc("/api/prospects", prospectsHandler.List).Methods(http.MethodGet, http.MethodOptions)
	authed.HandleFunc("/api/prospects", prospectsHandler.Create).Methods(http.MethodPost)
	authed.HandleFunc("/api/prospects/{prospectID}", prospectsHandler.Get).Methods(http.MethodGet, http.MethodOptions)
	authed.HandleFunc("/api/prospects/{prospectID}", prospectsHandler.Update).Methods(http.MethodPut)
	authed.HandleFunc("/api/prospects/{prospectID}", prospectsHandler.Delete).Methods(http.MethodDelete)

	server := &http.Server{
		Addr:         cfg.ListenAddr,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Printf("[main] listening on %s", cfg.ListenAddr)
		if err := server.ListenAndServe(); err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("[main] shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Printf("[main] shutdown: %v", err)
	}
}
