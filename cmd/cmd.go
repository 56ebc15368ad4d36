package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"commonplate-backend/internal/ai"
	"commonplate-backend/internal/config"
	"commonplate-backend/internal/directory"
	"commonplate-backend/internal/handlers"
	"commonplate-backend/internal/middleware"
	"commonplate-backend/internal/repository"
	"commonplate-backend/internal/services"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func Run() {
	// .env is optional; real deployments set environment variables directly
	_ = godotenv.Load()

	// Load configuration
	cfg, err := config.Load("config.yaml")
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Setup logger
	setupLogger(cfg.Log.Level)

	// Connect to database
	db, err := pgxpool.New(context.Background(), cfg.Database.DSN())
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()

	// Test database connection
	if err := db.Ping(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("Failed to ping database")
	}
	log.Info().Msg("Database connection established")

	if err := repository.CreateSchema(context.Background(), db); err != nil {
		log.Fatal().Err(err).Msg("Failed to create database schema")
	}

	// Initialize repositories
	sessionRepo := repository.NewSessionRepository(db)
	participantRepo := repository.NewParticipantRepository(db)
	voteRepo := repository.NewVoteRepository(db)
	swipeRepo := repository.NewSwipeRepository(db)
	candidateRepo := repository.NewCandidateRepository(db)
	activityRepo := repository.NewActivityRepository(db)
	detailRepo := repository.NewDetailRepository(db)

	// Initialize services
	sessionService := services.NewSessionService(sessionRepo, participantRepo, voteRepo, swipeRepo, candidateRepo, activityRepo)
	voteService := services.NewVoteService(sessionRepo, voteRepo, participantRepo, activityRepo)
	swipeService := services.NewSwipeService(sessionRepo, swipeRepo, candidateRepo, participantRepo, activityRepo)

	// Winner resolution works without AI: ties fall back to random choice
	var tieBreaker services.TieBreaker
	var extractor handlers.PreferenceExtractor
	if cfg.OpenAI.APIKey != "" {
		aiClient := ai.NewClient(cfg.OpenAI.APIKey, cfg.OpenAI.Model)
		tieBreaker = aiClient
		extractor = aiClient
	} else {
		log.Warn().Msg("No OpenAI API key configured, ties will be broken randomly")
	}
	resolver := services.NewWinnerResolver(sessionRepo, swipeRepo, candidateRepo, voteRepo, tieBreaker)

	hub := services.NewHub()
	synchronizer := services.NewSynchronizer(hub, sessionService)

	directoryClient := directory.NewClient(cfg.Directory.BaseURL, cfg.Directory.APIKey)

	// Initialize handlers
	sessionHandler := handlers.NewSessionHandler(sessionService, synchronizer)
	voteHandler := handlers.NewVoteHandler(voteService, synchronizer)
	swipeHandler := handlers.NewSwipeHandler(swipeService, synchronizer)
	candidateHandler := handlers.NewCandidateHandler(sessionService, voteService, directoryClient, detailRepo, synchronizer)
	winnerHandler := handlers.NewWinnerHandler(resolver, synchronizer)
	preferenceHandler := handlers.NewPreferenceHandler(extractor)
	wsHandler := handlers.NewWebSocketHandler(sessionService, synchronizer)

	// Setup router
	r := chi.NewRouter()

	// Middleware
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(corsMiddleware)

	// Routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(middleware.Identity)

			r.Post("/sessions", sessionHandler.HostSession)
			r.Post("/sessions/{code}/join", sessionHandler.JoinSession)
			r.Post("/sessions/{code}/leave", sessionHandler.LeaveSession)
			r.Post("/sessions/{code}/lock", sessionHandler.LockSession)
			r.Get("/sessions/{code}", sessionHandler.GetSession)
			r.Get("/sessions/{code}/activity", sessionHandler.GetActivity)

			r.Post("/sessions/{code}/votes", voteHandler.CastVote)
			r.Get("/sessions/{code}/preferences", voteHandler.GetMergedPreferences)

			r.Post("/sessions/{code}/swipes", swipeHandler.RecordSwipe)

			r.Post("/sessions/{code}/candidates", candidateHandler.SetCandidates)
			r.Put("/sessions/{code}/restaurants/{id}/detail", candidateHandler.PutDetail)
			r.Get("/sessions/{code}/restaurants/{id}/detail", candidateHandler.GetDetail)

			r.Post("/sessions/{code}/winner", winnerHandler.ResolveWinner)

			r.Post("/preferences/analyze", preferenceHandler.Analyze)
		})
	})

	// WebSocket route
	r.Get("/ws", wsHandler.HandleWebSocket)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	// Create HTTP server
	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info().
			Str("host", cfg.Server.Host).
			Int("port", cfg.Server.Port).
			Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed to start")
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}

// setupLogger configures zerolog logger
func setupLogger(level string) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	switch level {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "info":
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	case "warn":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}

// corsMiddleware handles CORS
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, X-User-ID, X-User-Name")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
