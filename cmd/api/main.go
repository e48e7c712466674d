package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/survivalcast/survivalcast-go/internal/config"
	"github.com/survivalcast/survivalcast-go/internal/crypto"
	"github.com/survivalcast/survivalcast-go/internal/handler"
	"github.com/survivalcast/survivalcast-go/internal/logging"
	"github.com/survivalcast/survivalcast-go/internal/predictor"
	"github.com/survivalcast/survivalcast-go/internal/repository"
	"github.com/survivalcast/survivalcast-go/internal/service"
	"github.com/urfave/cli/v2"
)

var version = "dev"

var flags = []cli.Flag{
	&cli.StringFlag{
		Name:  "env-file",
		Value: ".env",
		Usage: "dotenv file to load before reading the environment",
	},
	&cli.BoolFlag{
		Name:  "log-json",
		Usage: "log in JSON format",
	},
	&cli.BoolFlag{
		Name:  "log-debug",
		Usage: "log debug messages",
	},
	&cli.BoolFlag{
		Name:  "log-uid",
		Usage: "generate a uuid and add to all log messages",
	},
	&cli.StringFlag{
		Name:  "log-service",
		Value: "survivalcast-api",
		Usage: "add 'service' tag to logs",
	},
}

func main() {
	app := &cli.App{
		Name:    "survivalcast-api",
		Usage:   "Serve Titanic survival predictions",
		Version: version,
		Flags:   flags,
		Before:  loadEnvFile,
		Action:  serve,
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "run the HTTP API (default)",
				Action: serve,
			},
			{
				Name:   "migrate",
				Usage:  "apply database migrations and exit",
				Action: migrate,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		slog.Error("fatal", "error", err)
		os.Exit(1)
	}
}

func loadEnvFile(cCtx *cli.Context) error {
	path := cCtx.String("env-file")
	if err := godotenv.Load(path); err != nil {
		slog.Warn("no .env file found, using environment variables", "path", path)
	}
	return nil
}

func newLogger(cCtx *cli.Context) *slog.Logger {
	logger := logging.New(os.Stderr, logging.Options{
		JSON:    cCtx.Bool("log-json"),
		Debug:   cCtx.Bool("log-debug"),
		UID:     cCtx.Bool("log-uid"),
		Service: cCtx.String("log-service"),
		Version: version,
	})
	slog.SetDefault(logger)
	return logger
}

func migrate(cCtx *cli.Context) error {
	logger := newLogger(cCtx)

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	db, err := repository.NewDB(cCtx.Context, cfg.DB, logger)
	if err != nil {
		return err
	}
	defer db.Close()

	return repository.Migrate(cCtx.Context, db, cfg.DB.Driver(), logger)
}

func serve(cCtx *cli.Context) error {
	logger := newLogger(cCtx)

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	tokens, err := crypto.NewTokenIssuer(cfg.JWTSecret, cfg.JWTAlgorithm, cfg.JWTExpiry)
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	ctx, stop := signal.NotifyContext(cCtx.Context, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("connecting to database", "target", cfg.DB.String())
	db, err := repository.NewDB(ctx, cfg.DB, logger)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := repository.Migrate(ctx, db, cfg.DB.Driver(), logger); err != nil {
		return err
	}

	engine := predictor.NewEngine(cfg.ModelPath)
	if err := engine.Load(); err != nil {
		logger.Error("model artifact not loaded; predictions will fail until it is present", "path", engine.Path(), "error", err)
	}

	authService := service.NewAuthService(repository.NewUserRepository(db), tokens)
	predictionService := service.NewPredictionService(engine, repository.NewPredictionRepository(db))

	router := handler.NewRouter(ctx, handler.RouterConfig{
		Auth:           authService,
		Predictions:    predictionService,
		Logger:         logger,
		CORSOrigins:    cfg.CORSOrigins,
		RequestTimeout: cfg.RequestTimeout,
		RateLimitRPS:   cfg.RateLimitRPS,
		RateLimitBurst: cfg.RateLimitBurst,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("server starting", "port", cfg.Port, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced shutdown: %w", err)
	}

	logger.Info("server stopped")
	return nil
}
