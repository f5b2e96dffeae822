package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Dan9191/blog-service/internal/auth"
	"github.com/Dan9191/blog-service/internal/config"
	"github.com/Dan9191/blog-service/internal/graph"
	"github.com/Dan9191/blog-service/internal/handler"
	"github.com/Dan9191/blog-service/internal/metrics"
	"github.com/Dan9191/blog-service/internal/repository"
	"github.com/Dan9191/blog-service/internal/repository/memory"
	"github.com/Dan9191/blog-service/internal/server"
	"github.com/Dan9191/blog-service/internal/service"
	"github.com/Dan9191/blog-service/internal/storage"
	"github.com/Dan9191/blog-service/internal/utils/email"
	"github.com/sirupsen/logrus"
)

// orphanGrace keeps freshly uploaded images that no post references yet
const orphanGrace = time.Hour

type store interface {
	service.Store
	storage.ImageLister
}

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
		logger.Warnf("Unknown LOG_LEVEL %q, using info", cfg.LogLevel)
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)

	// Initialize store
	var st store
	switch cfg.StoreDriver {
	case config.StoreMemory:
		logger.Warn("Using in-memory store, data is lost on exit")
		st = memory.New()
	default:
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		client, err := repository.Connect(ctx, cfg.MongoURI)
		if err != nil {
			cancel()
			logger.Fatalf("Failed to connect to database: %v", err)
		}
		defer client.Disconnect(context.Background())
		repo := repository.NewRepository(client.Database(cfg.MongoDB))
		if err := repo.EnsureIndexes(ctx); err != nil {
			cancel()
			logger.Fatalf("Failed to create indexes: %v", err)
		}
		cancel()
		st = repo
	}

	images, err := storage.NewImages(cfg.ImageDir, logger)
	if err != nil {
		logger.Fatalf("Failed to prepare image storage: %v", err)
	}
	m := metrics.New()

	// Initialize layers
	issuer := auth.NewIssuer(cfg.JWTSecret, cfg.TokenTTL)
	svc := service.NewService(st, issuer, images, logger, cfg)
	if cfg.MailEnabled() {
		svc.UseMailer(email.NewSender(cfg, logger))
	}
	gql, err := graph.NewHandler(svc, logger, m)
	if err != nil {
		logger.Fatalf("Failed to build GraphQL handler: %v", err)
	}

	sweeper := storage.NewSweeper(images, st, orphanGrace, m, logger)
	if err := sweeper.Start(cfg.SweepSchedule); err != nil {
		logger.Fatalf("Failed to schedule image sweeper: %v", err)
	}
	defer sweeper.Stop()

	// Setup router
	r := server.NewRouter(server.Deps{
		GraphQL:  gql,
		Upload:   handler.NewHandler(images, svc, logger, cfg.MaxUploadBytes),
		Issuer:   issuer,
		Metrics:  m,
		ImageDir: cfg.ImageDir,
		Log:      logger,
	})

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-stop
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			logger.Errorf("Shutdown failed: %v", err)
		}
	}()

	logger.Infof("Starting server on %s", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatalf("Server failed: %v", err)
	}
	logger.Info("Server stopped")
}
