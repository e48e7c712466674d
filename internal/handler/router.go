package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"
	"github.com/survivalcast/survivalcast-go/internal/middleware"
	"github.com/survivalcast/survivalcast-go/internal/service"
)

// RouterConfig holds the dependencies and HTTP policies of the API.
type RouterConfig struct {
	Auth        *service.AuthService
	Predictions *service.PredictionService
	Logger      *slog.Logger

	CORSOrigins    []string
	RequestTimeout time.Duration
	RateLimitRPS   float64
	RateLimitBurst int
}

// NewRouter builds the API routes. ctx bounds background work owned by the
// router, such as rate-limiter cleanup.
func NewRouter(ctx context.Context, cfg RouterConfig) http.Handler {
	authHandler := NewAuthHandler(cfg.Auth, cfg.Logger)
	predictionHandler := NewPredictionHandler(cfg.Predictions, cfg.Logger)

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(middleware.RequestLogger(cfg.Logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.New(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	}).Handler)
	if cfg.RequestTimeout > 0 {
		r.Use(chimiddleware.Timeout(cfg.RequestTimeout))
	}

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	r.Get("/stats", predictionHandler.HandleStats)

	r.Group(func(r chi.Router) {
		if cfg.RateLimitRPS > 0 {
			r.Use(middleware.RateLimit(ctx, cfg.RateLimitRPS, cfg.RateLimitBurst))
		}
		r.Post("/signup", authHandler.HandleSignup)
		r.Post("/login", authHandler.HandleLogin)
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.BearerAuth(cfg.Auth, isAuthError, cfg.Logger))
		r.Post("/predict", predictionHandler.HandlePredict)
		r.Get("/predictions", predictionHandler.HandleListPredictions)
	})

	return r
}

func isAuthError(err error) bool {
	return errors.Is(err, service.ErrUnauthorized)
}
