// Package main implements the entry point for the mnemo API server, which
// schedules users' spaced repetition flashcards and augments the schedule
// with AI forgetting-curve predictions.
package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"log/slog"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/mnemo-app/mnemo-api/internal/api"
	"github.com/mnemo-app/mnemo-api/internal/config"
	"github.com/mnemo-app/mnemo-api/internal/domain/srs"
	"github.com/mnemo-app/mnemo-api/internal/platform/logger"
	"github.com/mnemo-app/mnemo-api/internal/platform/oracle"
	"github.com/mnemo-app/mnemo-api/internal/platform/postgres"
	"github.com/mnemo-app/mnemo-api/internal/prediction"
	"github.com/mnemo-app/mnemo-api/internal/service/auth"
	"github.com/mnemo-app/mnemo-api/internal/service/review"
)

// application holds the assembled dependency graph for the server.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB

	jwtService        auth.JWTService
	deckHandler       *api.DeckHandler
	reviewHandler     *api.ReviewHandler
	predictionHandler *api.PredictionHandler
}

func main() {
	app, err := initializeApp()
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}
	defer app.cleanup()

	if err := app.startHTTPServer(context.Background(), app.setupRouter()); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}

// initializeApp loads configuration and wires every application component.
func initializeApp() (*application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	appLogger, err := logger.Setup(cfg.Server)
	if err != nil {
		return nil, fmt.Errorf("failed to set up logger: %w", err)
	}

	appLogger.Info("server configuration loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Server.LogLevel)

	db, err := setupAppDatabase(cfg, appLogger)
	if err != nil {
		return nil, err
	}

	if err := runMigrations(db, cfg, appLogger); err != nil {
		return nil, err
	}

	jwtService, err := auth.NewJWTService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to create JWT service: %w", err)
	}

	deckStore := postgres.NewPostgresDeckStore(db, appLogger)
	cardStore := postgres.NewPostgresCardStore(db, appLogger)
	progressStore := postgres.NewPostgresProgressStore(db, appLogger)
	reviewStore := postgres.NewPostgresReviewStore(db, appLogger)

	oracleClient, err := oracle.NewClient(cfg.Oracle, appLogger)
	if err != nil {
		return nil, fmt.Errorf("failed to create oracle client: %w", err)
	}

	predictor := prediction.NewPredictor(
		oracleClient,
		prediction.NewMemoryCache(),
		prediction.Config{
			CacheTTL:      cfg.Oracle.CacheTTL(),
			OracleTimeout: cfg.Oracle.Timeout(),
		},
		appLogger,
	)

	stateSource := review.NewStateSource(cardStore, progressStore, reviewStore)
	aggregator := prediction.NewAggregator(predictor, stateSource, prediction.DefaultBatchConcurrency)

	reviewService := review.NewReviewService(
		db,
		deckStore,
		cardStore,
		progressStore,
		reviewStore,
		srs.NewService(),
		predictor,
		aggregator,
		appLogger,
	)

	return &application{
		config:            cfg,
		logger:            appLogger,
		db:                db,
		jwtService:        jwtService,
		deckHandler:       api.NewDeckHandler(deckStore, cardStore, appLogger),
		reviewHandler:     api.NewReviewHandler(reviewService, appLogger),
		predictionHandler: api.NewPredictionHandler(reviewService, appLogger),
	}, nil
}

// cleanup releases resources held by the application.
func (app *application) cleanup() {
	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("failed to close database connection", "error", err)
		}
	}
}
