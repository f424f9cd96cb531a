package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/sirupsen/logrus"

	"github.com/cloo-solutions/coach/internal/api"
	"github.com/cloo-solutions/coach/internal/api/handlers"
	"github.com/cloo-solutions/coach/internal/api/middleware"
)

const defaultMaxBodyBytes int64 = 1 << 20

type RouterConfig struct {
	Logger         logrus.FieldLogger
	Model          string
	AskHandler     *handlers.AskHandler
	HealthHandler  *handlers.HealthHandler
	AllowedOrigins []string
	MaxBodyBytes   int64
}

func NewRouter(cfg RouterConfig) http.Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	maxBodyBytes := cfg.MaxBodyBytes
	if maxBodyBytes == 0 {
		maxBodyBytes = defaultMaxBodyBytes
	}
	healthHandler := cfg.HealthHandler
	if healthHandler == nil {
		healthHandler = handlers.NewHealthHandler()
	}

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Sentry(cfg.Model))
	r.Use(middleware.AccessLog(logger))
	r.Use(middleware.Recover(logger))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(middleware.MaxBodyBytes(maxBodyBytes))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		api.Error(w, http.StatusNotFound, "not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		api.Error(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	r.Get("/health", healthHandler.Health)
	r.Post("/ask", cfg.AskHandler.Ask)

	return r
}
