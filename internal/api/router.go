package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/Auriora/admin-assistant-sub000/internal/appointment"
	"github.com/Auriora/admin-assistant-sub000/internal/archive"
)

type RouterConfig struct {
	Service       *archive.Service
	Repo          appointment.Repository
	PgPool        *pgxpool.Pool
	Redis         *redis.Client
	Env           string
	Version       string
	IncludeTravel bool
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Apply middleware
	r.Use(RequestIDMiddleware)
	r.Use(LoggingMiddleware)

	// Health endpoints
	health := NewHealthHandler(cfg.PgPool, cfg.Redis, cfg.Env, cfg.Version)
	r.Get("/health/live", health.Liveness)
	r.Get("/health/ready", health.Readiness)

	// Archive endpoints
	r.Post("/archive/runs", archiveRunHandler(cfg.Service, cfg.IncludeTravel))
	r.Post("/appointments/statistics/categories", categoryStatisticsHandler(cfg.Repo))
	r.Post("/appointments/statistics/privacy", privacyStatisticsHandler(cfg.Repo))

	return r
}
