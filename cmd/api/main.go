// cmd/api/main.go
// Main entry point: bootstraps all components and starts the server.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-redis/redis/v8"
	"github.com/gorilla/mux"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/sparkevents/spark-backend/internal/auth"
	"github.com/sparkevents/spark-backend/internal/common/database"
	"github.com/sparkevents/spark-backend/internal/compat"
	"github.com/sparkevents/spark-backend/internal/config"
	"github.com/sparkevents/spark-backend/internal/logging"
	"github.com/sparkevents/spark-backend/internal/matches"
	"github.com/sparkevents/spark-backend/internal/notify"
	"github.com/sparkevents/spark-backend/internal/profiles"
	"github.com/sparkevents/spark-backend/internal/roster"
	"github.com/sparkevents/spark-backend/internal/scoring"
)

var startTime = time.Now()

func main() {
	// 1. Load environment variables
	if err := godotenv.Load(); err != nil {
		fmt.Println("No .env file found, using environment variables")
	}

	// 2. Bootstrap structured logging
	logging.BootstrapLogger()
	log := logging.Log

	log.Info("Starting Spark Events matching API")

	// 3. Load and validate configuration
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.WithError(err).Fatal("Configuration validation failed")
	}
	log.WithField("environment", cfg.Environment).Info("Configuration loaded")

	// 4. Connect to PostgreSQL
	db, err := database.NewPostgresDB(cfg.DatabaseURL, database.DefaultPostgresConfig())
	if err != nil {
		log.WithError(err).Fatal("Failed to connect to PostgreSQL")
	}
	defer db.Close()
	log.Info("Connected to PostgreSQL")

	// 5. Connect to Redis (optional; caching and job tracking degrade without it)
	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = database.NewRedisClient(cfg.RedisURL)
		if err != nil {
			log.WithError(err).Warn("Redis unavailable, continuing without cache")
			redisClient = nil
		} else {
			defer redisClient.Close()
			log.Info("Connected to Redis")
		}
	}

	// 6. Run database migrations
	if err := runMigrations(db); err != nil {
		log.WithError(err).Fatal("Failed to run migrations")
	}
	log.Info("Database migrations completed")

	// 7. Auth middleware (tokens come from the accounts service)
	authMiddleware := auth.NewMiddleware(cfg.JWTSecret, cfg.AdminAPIKeyHash)

	// 8. Roster module: events and participants synced from the booking subsystem
	rosterRepo := roster.NewPostgresRepository(db)
	rosterService := roster.NewService(rosterRepo)
	rosterHandler := roster.NewHandler(rosterService)

	// 9. Profiles module: member snapshots, assessments, dealbreakers
	profilesRepo := profiles.NewPostgresRepository(db)
	profilesHandler := profiles.NewHandler(profilesRepo, cfg)

	// 10. Scoring module: the draft/finalize state machine
	scoringRepo := scoring.NewPostgresRepository(db)
	scoringService := scoring.NewService(scoringRepo, rosterService)
	scoringHandler := scoring.NewHandler(scoringService)

	// 11. Notifications for the results release path
	var notifier notify.Service
	if cfg.EnableMatchNotifications {
		notifier = notify.NewService(cfg)
		log.WithFields(map[string]interface{}{
			"email": cfg.EmailProvider,
			"sms":   cfg.SMSProvider,
		}).Info("Match notifications enabled")
	}

	// 12. Matches module: mutual match resolution
	matchesRepo := matches.NewPostgresRepository(db)
	matchesService := matches.NewService(
		matchesRepo, rosterService, profilesRepo, redisClient, notifier,
		&matches.ServiceConfig{CacheTTL: cfg.ResultsCacheTTL},
	)
	matchesHandler := matches.NewHandler(matchesService)

	// 13. Compat module: pairwise compatibility scoring
	engine := compat.NewEngine(compat.EngineParams{
		WeightLifeAlignment: cfg.WeightLifeAlignment,
		WeightPsychological: cfg.WeightPsychological,
		WeightChemistry:     cfg.WeightChemistry,
		WeightTasteFit:      cfg.WeightTasteFit,
		WeightCompleteness:  cfg.WeightCompleteness,
		ChemistryNeutral:    cfg.ChemistryNeutral,
		JitterAmplitude:     cfg.ScoreJitter,
	})
	compatRepo := compat.NewPostgresRepository(db)
	compatService := compat.NewService(
		compatRepo, profilesRepo, rosterService, engine, redisClient,
		compat.ServiceConfig{
			BatchSize:  cfg.RecomputeBatchSize,
			BatchDelay: cfg.RecomputeBatchDelay,
		},
	)
	compatHandler := compat.NewHandler(compatService)

	// 14. Nightly refresh of stale compatibility scores
	refreshScheduler := compat.NewRefreshScheduler(compatService, cfg.RefreshHour, cfg.RefreshStaleAfter)
	go refreshScheduler.Start(context.Background())

	// 15. Routes
	router := mux.NewRouter()

	router.HandleFunc("/health", healthCheck).Methods("GET")
	router.Handle("/metrics", promhttp.Handler()).Methods("GET")

	roster.RegisterRoutes(router, rosterHandler, authMiddleware)
	scoring.RegisterRoutes(router, scoringHandler, authMiddleware)
	matches.RegisterRoutes(router, matchesHandler, authMiddleware)
	compat.RegisterRoutes(router, compatHandler, authMiddleware)

	// Profile routes live on a chi sub-router
	profileRouter := chi.NewRouter()
	profiles.RegisterRoutes(profileRouter, profilesHandler, authMiddleware)
	router.PathPrefix("/api/v1/profile").Handler(profileRouter)

	router.Use(loggingMiddleware)
	router.Use(corsMiddleware)

	// 16. Start HTTP server with graceful shutdown
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.WithField("addr", srv.Addr).Info("Server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutdown signal received")
	refreshScheduler.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.WithError(err).Fatal("Server forced to shutdown")
	}

	log.Info("Server exited gracefully")
}

// healthCheck returns server health status
func healthCheck(w http.ResponseWriter, r *http.Request) {
	response := map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now().Format(time.RFC3339),
		"uptime":    time.Since(startTime).String(),
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(response)
}

// loggingMiddleware logs all requests
func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(wrapped, r)

		logging.Log.WithFields(map[string]interface{}{
			"method":   r.Method,
			"path":     r.RequestURI,
			"status":   wrapped.statusCode,
			"duration": time.Since(start).String(),
		}).Debug("request")
	})
}

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// corsMiddleware handles CORS
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Admin-Key")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// runMigrations creates the schema if it does not exist
func runMigrations(db *sqlx.DB) error {
	migrations := []string{
		// Events synced from the booking subsystem; ids are theirs.
		`CREATE TABLE IF NOT EXISTS events (
            id BIGINT PRIMARY KEY,
            name VARCHAR(255) NOT NULL,
            city VARCHAR(100),
            starts_at TIMESTAMP WITH TIME ZONE NOT NULL,
            deadline TIMESTAMP WITH TIME ZONE NOT NULL,
            submission_open BOOLEAN DEFAULT TRUE,
            results_released BOOLEAN DEFAULT FALSE,
            created_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP,
            updated_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP
        )`,

		`CREATE TABLE IF NOT EXISTS event_participants (
            event_id BIGINT NOT NULL REFERENCES events(id) ON DELETE CASCADE,
            member_id BIGINT NOT NULL,
            gender VARCHAR(20) NOT NULL,
            status VARCHAR(20) NOT NULL DEFAULT 'confirmed',
            attended BOOLEAN,
            PRIMARY KEY (event_id, member_id)
        )`,

		`CREATE TABLE IF NOT EXISTS event_questions (
            id SERIAL PRIMARY KEY,
            event_id BIGINT NOT NULL REFERENCES events(id) ON DELETE CASCADE,
            prompt TEXT NOT NULL,
            required BOOLEAN DEFAULT FALSE,
            position INTEGER NOT NULL DEFAULT 0,
            CONSTRAINT unique_event_question UNIQUE(event_id, position)
        )`,

		`CREATE TABLE IF NOT EXISTS draft_scores (
            event_id BIGINT NOT NULL REFERENCES events(id) ON DELETE CASCADE,
            scorer_id BIGINT NOT NULL,
            scored_id BIGINT NOT NULL,
            choice VARCHAR(10) NOT NULL DEFAULT '',
            share_email BOOLEAN DEFAULT FALSE,
            share_phone BOOLEAN DEFAULT FALSE,
            share_whatsapp BOOLEAN DEFAULT FALSE,
            share_instagram BOOLEAN DEFAULT FALSE,
            share_facebook BOOLEAN DEFAULT FALSE,
            answers JSONB DEFAULT '{}',
            rating_conversation SMALLINT,
            rating_long_term SMALLINT,
            rating_chemistry SMALLINT,
            rating_comfort SMALLINT,
            rating_values SMALLINT,
            rating_energy SMALLINT,
            updated_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP,
            PRIMARY KEY (event_id, scorer_id, scored_id)
        )`,

		`CREATE TABLE IF NOT EXISTS submissions (
            event_id BIGINT NOT NULL REFERENCES events(id) ON DELETE CASCADE,
            scorer_id BIGINT NOT NULL,
            state VARCHAR(20) NOT NULL DEFAULT 'drafting',
            finalized_at TIMESTAMP WITH TIME ZONE,
            PRIMARY KEY (event_id, scorer_id)
        )`,

		`CREATE TABLE IF NOT EXISTS final_scores (
            event_id BIGINT NOT NULL REFERENCES events(id) ON DELETE CASCADE,
            scorer_id BIGINT NOT NULL,
            scored_id BIGINT NOT NULL,
            choice VARCHAR(10) NOT NULL,
            share_email BOOLEAN DEFAULT FALSE,
            share_phone BOOLEAN DEFAULT FALSE,
            share_whatsapp BOOLEAN DEFAULT FALSE,
            share_instagram BOOLEAN DEFAULT FALSE,
            share_facebook BOOLEAN DEFAULT FALSE,
            answers JSONB DEFAULT '{}',
            rating_conversation SMALLINT,
            rating_long_term SMALLINT,
            rating_chemistry SMALLINT,
            rating_comfort SMALLINT,
            rating_values SMALLINT,
            rating_energy SMALLINT,
            submitted_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP,
            PRIMARY KEY (event_id, scorer_id, scored_id)
        )`,

		`CREATE TABLE IF NOT EXISTS match_results (
            event_id BIGINT NOT NULL REFERENCES events(id) ON DELETE CASCADE,
            member_a BIGINT NOT NULL,
            member_b BIGINT NOT NULL,
            result_type VARCHAR(20) NOT NULL,
            a_shared_fields TEXT[] DEFAULT '{}',
            b_shared_fields TEXT[] DEFAULT '{}',
            computed_at TIMESTAMP WITH TIME ZONE NOT NULL,
            PRIMARY KEY (event_id, member_a, member_b),
            CONSTRAINT canonical_pair CHECK (member_a < member_b)
        )`,

		`CREATE TABLE IF NOT EXISTS member_profiles (
            member_id BIGINT PRIMARY KEY,
            birth_date DATE,
            gender VARCHAR(20) NOT NULL DEFAULT '',
            faith VARCHAR(50),
            education_level SMALLINT,
            wants_children VARCHAR(10),
            religion_importance SMALLINT,
            email VARCHAR(255),
            phone VARCHAR(20),
            updated_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP
        )`,

		`CREATE TABLE IF NOT EXISTS compatibility_profiles (
            member_id BIGINT PRIMARY KEY,
            emotional_expressiveness SMALLINT NOT NULL,
            emotional_stability SMALLINT NOT NULL,
            stress_resilience SMALLINT NOT NULL,
            empathy SMALLINT NOT NULL,
            lifestyle_pace SMALLINT NOT NULL,
            social_energy SMALLINT NOT NULL,
            tidiness SMALLINT NOT NULL,
            spontaneity SMALLINT NOT NULL,
            career_ambition SMALLINT NOT NULL,
            financial_drive SMALLINT NOT NULL,
            growth_mindset SMALLINT NOT NULL,
            risk_appetite SMALLINT NOT NULL,
            family_orientation SMALLINT NOT NULL,
            children_desire SMALLINT NOT NULL,
            family_closeness SMALLINT NOT NULL,
            tradition_value SMALLINT NOT NULL,
            conversation_depth SMALLINT NOT NULL,
            conflict_approach SMALLINT NOT NULL,
            humor_style SMALLINT NOT NULL,
            affection_style SMALLINT NOT NULL,
            updated_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP
        )`,

		`CREATE TABLE IF NOT EXISTS dealbreaker_prefs (
            member_id BIGINT PRIMARY KEY,
            age_min SMALLINT NOT NULL DEFAULT 18,
            age_max SMALLINT NOT NULL DEFAULT 99,
            religion_must_match BOOLEAN DEFAULT FALSE,
            religions_allowed TEXT[] DEFAULT '{}',
            must_want_children BOOLEAN DEFAULT FALSE,
            min_education_level SMALLINT
        )`,

		`CREATE TABLE IF NOT EXISTS taste_vectors (
            member_id BIGINT PRIMARY KEY,
            education_level DOUBLE PRECISION,
            religion_importance DOUBLE PRECISION,
            career_ambition DOUBLE PRECISION,
            social_energy DOUBLE PRECISION,
            lifestyle_pace DOUBLE PRECISION,
            conversation_depth DOUBLE PRECISION,
            affection_style DOUBLE PRECISION,
            age_difference DOUBLE PRECISION,
            sample_count INTEGER NOT NULL DEFAULT 0,
            updated_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP
        )`,

		`CREATE TABLE IF NOT EXISTS compatibility_scores (
            member_a BIGINT NOT NULL,
            member_b BIGINT NOT NULL,
            score_a_to_b DOUBLE PRECISION NOT NULL,
            score_b_to_a DOUBLE PRECISION NOT NULL,
            final_score DOUBLE PRECISION NOT NULL,
            breakdown JSONB NOT NULL DEFAULT '{}',
            computed_at TIMESTAMP WITH TIME ZONE NOT NULL,
            PRIMARY KEY (member_a, member_b),
            CONSTRAINT canonical_score_pair CHECK (member_a < member_b)
        )`,

		// Indexes
		`CREATE INDEX IF NOT EXISTS idx_participants_member ON event_participants(member_id)`,
		`CREATE INDEX IF NOT EXISTS idx_final_scores_scorer ON final_scores(scorer_id)`,
		`CREATE INDEX IF NOT EXISTS idx_final_scores_pair ON final_scores(scorer_id, scored_id)`,
		`CREATE INDEX IF NOT EXISTS idx_match_results_member_a ON match_results(member_a)`,
		`CREATE INDEX IF NOT EXISTS idx_match_results_member_b ON match_results(member_b)`,
		`CREATE INDEX IF NOT EXISTS idx_compat_scores_member_b ON compatibility_scores(member_b)`,
		`CREATE INDEX IF NOT EXISTS idx_compat_scores_computed ON compatibility_scores(computed_at)`,
	}

	for i, migration := range migrations {
		if _, err := db.Exec(migration); err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}

	return nil
}
