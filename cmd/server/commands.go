package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rohits-web03/formstore/internal/api"
	"github.com/rohits-web03/formstore/internal/api/handlers"
	"github.com/rohits-web03/formstore/internal/api/middleware"
	"github.com/rohits-web03/formstore/internal/config"
	"github.com/rohits-web03/formstore/internal/deleter"
	"github.com/rohits-web03/formstore/internal/formstore"
	"github.com/rohits-web03/formstore/internal/metrics"
	"github.com/rohits-web03/formstore/internal/repositories"
	"github.com/rohits-web03/formstore/internal/storage"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	cfg    config.Config
	logger *zap.Logger

	deviceID string
	tokenTTL time.Duration

	rootCmd = &cobra.Command{
		Use:   "formstore",
		Short: "Serve and manage the local forms metadata store",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg = config.Load()
			l, err := config.NewLogger(cfg)
			if err != nil {
				return err
			}
			logger = l
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if logger != nil {
				_ = logger.Sync()
			}
		},
		RunE: runServe,
	}

	serveCmd = &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		RunE:  runServe,
	}

	migrateCmd = &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema and exit",
		RunE:  runMigrate,
	}

	tokenCmd = &cobra.Command{
		Use:   "token",
		Short: "Issue a device token for the API",
		RunE:  runToken,
	}
)

func init() {
	tokenCmd.Flags().StringVar(&deviceID, "device", "", "device id placed in the token subject")
	tokenCmd.Flags().DurationVar(&tokenTTL, "ttl", 30*24*time.Hour, "token lifetime")
	_ = tokenCmd.MarkFlagRequired("device")

	rootCmd.AddCommand(serveCmd, migrateCmd, tokenCmd)
}

func runMigrate(cmd *cobra.Command, args []string) error {
	db, err := repositories.Open(cfg.DBDriver, cfg.DB_URL)
	if err != nil {
		return err
	}
	if err := repositories.Migrate(db); err != nil {
		return err
	}
	logger.Info("Database migrated", zap.String("driver", cfg.DBDriver))
	return nil
}

func runToken(cmd *cobra.Command, args []string) error {
	token, err := middleware.IssueToken(cfg.JWTSecret, deviceID, tokenTTL)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), token)
	return nil
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := repositories.ConnectDatabase(cfg.DBDriver, cfg.DB_URL)
	if err != nil {
		return err
	}
	logger.Info("Database connection established", zap.String("driver", cfg.DBDriver))

	store, instances, artifacts, m, err := buildStore(db)
	if err != nil {
		return err
	}
	defer store.Close()

	mux := api.SetupRouter(api.Deps{
		Store:     store,
		Instances: instances,
		Artifacts: artifacts,
		Metrics:   m,
		Config:    cfg,
		Logger:    logger,
	})

	server := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Port),
		Handler: mux,
		// Timeouts prevent resource exhaustion from slow clients
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Starting formstore server", zap.String("port", cfg.Port))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("could not listen on port %s: %w", cfg.Port, err)
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	// Watchers hold hijacked connections that Shutdown does not wait for.
	store.Close()
	return server.Shutdown(shutdownCtx)
}

// buildStore wires repositories, the artifact backend and the deleter into
// a store.
// artifactStore is what both the deleter and the HTTP layer need from a
// backend.
type artifactStore interface {
	deleter.Artifacts
	formstore.Artifacts
	handlers.ArtifactReader
}

func buildStore(db *gorm.DB) (*formstore.Store, *repositories.InstanceRepository, artifactStore, *metrics.Metrics, error) {
	paths, err := storage.NewPaths(cfg.Storage.Root, cfg.Storage.FormsDir, cfg.Storage.CacheDir)
	if err != nil {
		return nil, nil, nil, nil, err
	}

	var artifacts artifactStore
	switch cfg.Storage.Backend {
	case "local", "":
		artifacts = storage.NewLocalArtifacts(paths)
	case "r2":
		bucket, err := repositories.NewR2Bucket(cfg.R2)
		if err != nil {
			return nil, nil, nil, nil, err
		}
		artifacts = bucket
	default:
		return nil, nil, nil, nil, fmt.Errorf("unsupported storage backend %q", cfg.Storage.Backend)
	}
	logger.Info("Artifact storage ready",
		zap.String("backend", cfg.Storage.Backend),
		zap.String("root", paths.Root()),
	)

	forms := repositories.NewFormRepository(db)
	instances := repositories.NewInstanceRepository(db)
	itemsets := repositories.NewItemsetRepository(db)
	m := metrics.New()

	store, err := formstore.New(formstore.Options{
		Repository:            forms,
		Deleter:               deleter.New(forms, instances, itemsets, artifacts, nil, logger.Named("deleter")),
		Paths:                 paths,
		Artifacts:             artifacts,
		Logger:                logger,
		Metrics:               m,
		StrictDeleteCount:     !cfg.Store.LenientDeleteCount,
		LatestIncludesDeleted: cfg.Store.LatestIncludesDeleted,
	})
	if err != nil {
		return nil, nil, nil, nil, err
	}
	return store, instances, artifacts, m, nil
}
