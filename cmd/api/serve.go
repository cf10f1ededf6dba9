package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"path"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/justsurfingit/hireflow/internal/database"
	"github.com/justsurfingit/hireflow/internal/handlers"
	"github.com/justsurfingit/hireflow/internal/services"
	"github.com/justsurfingit/hireflow/internal/storage"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return serve(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("addr", "", "listen address (overrides server.addr)")
	serveCmd.Flags().Bool("migrate", true, "migrate the schema before serving")
	_ = v.BindPFlag("server.addr", serveCmd.Flags().Lookup("addr"))
	_ = v.BindPFlag("serve.migrate", serveCmd.Flags().Lookup("migrate"))
}

func serve(parent context.Context) error {
	cfg, log, err := setup()
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	if !cfg.Log.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.Open(cfg.Database, log)
	if err != nil {
		return err
	}
	if v.GetBool("serve.migrate") {
		if err := database.Migrate(db); err != nil {
			return err
		}
	}

	store := storage.NewFileStore(afero.NewOsFs(), cfg.Storage.Root, cfg.Storage.URLPrefix)
	parser := services.NewParserService(cfg.Parser.BaseURL, cfg.Parser.Timeout, log,
		services.WithRateLimit(cfg.Parser.RatePerSecond, cfg.Parser.Burst))

	jobs := services.NewJobService(db)
	resumes := services.NewResumeService(db, store)
	repo := services.NewApplicationRepository(db)
	notes := services.NewNotificationService(db)
	validator := services.NewIntakeValidator(jobs, resumes, repo, cfg.Upload.MaxBytes)
	apps := services.NewApplicationService(validator, resumes, parser, repo, log)
	status := services.NewStatusService(db, repo, notes, log)

	router := handlers.NewRouter(handlers.RouterConfig{
		AllowOrigins:   cfg.Server.AllowOrigins,
		MaxUploadBytes: cfg.Upload.MaxBytes,
		UploadsDir:     filepath.Join(cfg.Storage.Root, filepath.FromSlash(path.Clean("/"+cfg.Storage.URLPrefix))),
		UploadsPrefix:  cfg.Storage.URLPrefix,
	}, log,
		handlers.NewJobHandler(jobs),
		handlers.NewApplicationHandler(apps, status, resumes, cfg.Upload.MaxBytes),
		handlers.NewNotificationHandler(notes),
	)

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Info("server starting", zap.String("addr", cfg.Server.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	return nil
}
