package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/Auriora/admin-assistant-sub000/internal/api"
	"github.com/Auriora/admin-assistant-sub000/internal/appointment"
	"github.com/Auriora/admin-assistant-sub000/internal/archive"
	"github.com/Auriora/admin-assistant-sub000/internal/config"
	"github.com/Auriora/admin-assistant-sub000/internal/db"
	"github.com/Auriora/admin-assistant-sub000/internal/graph"
	redisclient "github.com/Auriora/admin-assistant-sub000/internal/redis"
)

const version = "0.3.0"

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("api-server starting up")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config load error: %v", err)
	}

	log.Printf("running in env=%s http_port=%s", cfg.Env, cfg.HTTPPort)

	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Connect Postgres
	pgCtx, cancelPg := context.WithTimeout(rootCtx, 10*time.Second)
	pgPool, err := db.ConnectPostgres(pgCtx, cfg.PostgresDSN)
	cancelPg()
	if err != nil {
		log.Fatalf("postgres connection error: %v", err)
	}
	defer pgPool.Close()
	log.Println("connected to Postgres")

	// Connect Redis
	rdb, err := redisclient.NewRedisClient(cfg.RedisAddr, cfg.RedisUsername, cfg.RedisPassword)
	if err != nil {
		log.Fatalf("redis connection error: %v", err)
	}
	defer func() {
		if err := rdb.Close(); err != nil {
			log.Printf("error closing redis: %v", err)
		}
	}()
	log.Println("connected to Redis")

	repo := appointment.NewPgRepository(pgPool)
	locker := redisclient.NewRedisArchiveLocker(rdb, cfg.LockTTL)

	var source archive.Source = archive.NewStoreSource(repo)
	if cfg.GraphEnabled() {
		source = graph.NewClient(rootCtx, cfg.GraphTenantID, cfg.GraphClientID, cfg.GraphClientSecret)
		log.Println("archiving from Microsoft Graph")
	} else {
		log.Println("archiving from the local store")
	}

	svc := archive.NewService(source, archive.NewStoreSink(repo), repo, locker, cfg)

	router := api.NewRouter(api.RouterConfig{
		Service:       svc,
		Repo:          repo,
		PgPool:        pgPool,
		Redis:         rdb,
		Env:           cfg.Env,
		Version:       version,
		IncludeTravel: cfg.IncludeTravel,
	})

	srv := &http.Server{
		Addr:    ":" + cfg.HTTPPort,
		Handler: router,
	}

	go func() {
		log.Printf("listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("http server error: %v", err)
		}
	}()

	<-rootCtx.Done()

	log.Println("shutting down api-server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown error: %v", err)
	}
}
