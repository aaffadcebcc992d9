package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	dbadapter "todoapi/internal/adapter/db"
	httpadapter "todoapi/internal/adapter/http"
	"todoapi/internal/adapter/http/handlers"
	"todoapi/internal/app/seed"
	"todoapi/internal/config"
	"todoapi/internal/telemetry"
	"todoapi/pkg/translator"
)

func newRootCommand(logger *zap.Logger) *cobra.Command {
	root := &cobra.Command{
		Use:           "todo-api",
		Short:         "Per-user todo list HTTP API",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), logger)
		},
	}

	root.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "Start the HTTP server",
			RunE: func(cmd *cobra.Command, _ []string) error {
				return runServe(cmd.Context(), logger)
			},
		},
		&cobra.Command{
			Use:   "migrate",
			Short: "Apply pending MySQL migrations",
			RunE: func(cmd *cobra.Command, _ []string) error {
				return runMigrate()
			},
		},
		newSeedCommand(),
	)
	return root
}

func newSeedCommand() *cobra.Command {
	var fixturePath string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Create the demo user and its todos when missing",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSeed(cmd.Context(), fixturePath)
		},
	}
	cmd.Flags().StringVarP(&fixturePath, "file", "f", "", "YAML fixture to load instead of the bundled one")
	return cmd
}

func runServe(ctx context.Context, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}

	translator.InitTranslator(translator.Config{
		TranslationFolder:  cfg.App.TranslationFolder,
		SupportedLanguages: []string{translator.LanguageEn, translator.LanguageEs},
	})

	shutdownTelemetry, err := telemetry.Setup(ctx, cfg.App, cfg.Telemetry)
	if err != nil {
		return err
	}
	defer func() {
		if err := shutdownTelemetry(context.WithoutCancel(ctx)); err != nil {
			logger.Warn("failed to shutdown telemetry", zap.Error(err))
		}
	}()

	app, err := newApplication(cfg)
	if err != nil {
		return err
	}
	defer app.close(context.WithoutCancel(ctx), cfg.HTTP.ShutdownTimeout)

	if cfg.App.Env == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}
	router, err := httpadapter.NewRouter(logger, cfg.HTTP.TrustedProxies)
	if err != nil {
		return fmt.Errorf("trusted proxies: %w", err)
	}
	httpadapter.RegisterRoutes(router, app.tokens, httpadapter.Handlers{
		Health: handlers.NewHealthHandler(cfg.App, app.pingMySQL(), app.pingRedis()),
		Auth:   handlers.NewAuthHandler(app.authService),
		Todos:  handlers.NewTodoHandler(app.todoService),
	})

	server := &http.Server{
		Addr: ":" + cfg.HTTP.Port,
		Handler: otelhttp.NewHandler(router, cfg.App.Name,
			otelhttp.WithFilter(func(r *http.Request) bool {
				return r.URL.Path != "/api/health"
			}),
		),
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("starting server", zap.String("addr", server.Addr), zap.String("storage", cfg.App.Storage))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("could not start server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cfg.HTTP.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", zap.Error(err))
	}
	logger.Info("server stopped")
	return nil
}

func runMigrate() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}
	if err := requireMySQL(cfg, "migrate"); err != nil {
		return err
	}

	db, err := dbadapter.ConnectDB(cfg)
	if err != nil {
		return fmt.Errorf("failed to connect to mysql: %w", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			zap.L().Warn("failed to close mysql connection", zap.Error(err))
		}
	}()

	return dbadapter.Migrate(db.DB)
}

func requireMySQL(cfg *config.Config, command string) error {
	if cfg.App.Storage != config.StorageMySQL {
		return fmt.Errorf("%s requires STORAGE_DRIVER=%s", command, config.StorageMySQL)
	}
	return nil
}

func runSeed(ctx context.Context, fixturePath string) error {
	fixture, err := loadFixture(fixturePath)
	if err != nil {
		return err
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}
	// Seeding the in-memory store would be lost when the command exits.
	if err := requireMySQL(cfg, "seed"); err != nil {
		return err
	}

	app, err := newApplication(cfg)
	if err != nil {
		return err
	}
	defer app.close(context.WithoutCancel(ctx), cfg.HTTP.ShutdownTimeout)

	result, err := seed.NewSeeder(app.authService, app.todoService).Run(ctx, fixture)
	if err != nil {
		return err
	}
	fmt.Printf("seeded user %d: %d todos created, %d skipped\n", result.UserID, result.Created, result.Skipped)
	return nil
}

func loadFixture(path string) (seed.Fixture, error) {
	if path == "" {
		return seed.DefaultFixture()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return seed.Fixture{}, fmt.Errorf("read fixture: %w", err)
	}
	return seed.ParseFixture(data)
}
