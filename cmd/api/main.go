package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Dan9191/loan-risk-service/internal/cache"
	"github.com/Dan9191/loan-risk-service/internal/config"
	"github.com/Dan9191/loan-risk-service/internal/handler"
	"github.com/Dan9191/loan-risk-service/internal/integrations/inference"
	"github.com/Dan9191/loan-risk-service/internal/metrics"
	"github.com/Dan9191/loan-risk-service/internal/repository"
	"github.com/Dan9191/loan-risk-service/internal/scoring"
	"github.com/Dan9191/loan-risk-service/internal/service"
	"github.com/Dan9191/loan-risk-service/internal/utils/email"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

func main() {
	// Initialize logger
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	// Load configuration
	cfg, err := config.NewConfig()
	if err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}
	logLevel, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)

	// Load model artifacts
	artifacts, err := loadArtifacts(cfg, logger)
	if err != nil {
		logger.Fatalf("Failed to load model artifacts: %v", err)
	}

	// Initialize database
	db, err := sql.Open("postgres", cfg.DBConn)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		logger.Fatalf("Failed to ping database: %v", err)
	}

	// Initialize layers
	repo := repository.NewRepository(db, cfg.EncryptionKey)
	m := metrics.New()
	opts := []service.Option{service.WithMetrics(m)}

	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		defer rdb.Close()
		if err := rdb.Ping(context.Background()).Err(); err != nil {
			logger.Warnf("Redis unavailable, assessment cache disabled: %v", err)
		} else {
			opts = append(opts, service.WithCache(cache.NewRedisCache(rdb, cfg.CacheTTL)))
			logger.Infof("Assessment cache: redis at %s", cfg.RedisAddr)
		}
	}
	if cfg.RiskTeamEmail != "" {
		opts = append(opts, service.WithNotifier(email.NewSender(cfg, logger)))
	}

	svc := service.NewService(artifacts, repo, logger, cfg, opts...)
	h := handler.NewHandler(svc)

	if cfg.RescoreSchedule != "" {
		scheduler := service.NewScheduler(svc, logger)
		if err := scheduler.Start(cfg.RescoreSchedule); err != nil {
			logger.Fatalf("Failed to start scheduler: %v", err)
		}
		defer scheduler.Stop()
	}

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      handler.NewRouter(h, cfg, m.Handler()),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		logger.Infof("Starting server on %s", addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("Server failed: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Errorf("Server shutdown failed: %v", err)
	}
	logger.Info("Server stopped")
}

// loadArtifacts reads the feature list, the interpretation table and the
// configured model backend
func loadArtifacts(cfg *config.Config, logger *logrus.Logger) (*scoring.Artifacts, error) {
	names, err := scoring.LoadFeatureNames(cfg.FeaturesPath)
	if err != nil {
		return nil, err
	}
	descriptions, err := scoring.LoadInterpretations(cfg.InterpretationPath)
	if err != nil {
		return nil, err
	}

	artifacts := &scoring.Artifacts{
		FeatureNames: names,
		Descriptions: descriptions,
		Version:      cfg.ModelVersion,
	}

	switch cfg.ModelBackend {
	case config.ModelBackendRemote:
		artifacts.Model = inference.NewClient(cfg, logger)
		logger.Infof("Using remote model at %s", cfg.ModelURL)
	default:
		model, err := scoring.LoadPMML(cfg.ModelPath)
		if err != nil {
			return nil, err
		}
		if err := scoring.CheckColumns(model.Predictors(), names); err != nil {
			return nil, err
		}
		artifacts.Model = model
		logger.Infof("Loaded PMML model from %s", cfg.ModelPath)
	}

	logger.Infof("Loaded %d model features and %d risk descriptions", len(names), len(descriptions))
	return artifacts, nil
}
