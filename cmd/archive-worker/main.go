package main

import (
	"context"
	"errors"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/Auriora/admin-assistant-sub000/internal/appointment"
	"github.com/Auriora/admin-assistant-sub000/internal/archive"
	"github.com/Auriora/admin-assistant-sub000/internal/config"
	"github.com/Auriora/admin-assistant-sub000/internal/db"
	"github.com/Auriora/admin-assistant-sub000/internal/graph"
	redisclient "github.com/Auriora/admin-assistant-sub000/internal/redis"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("archive-worker starting up")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config load error: %v", err)
	}

	log.Printf("running archive worker in env=%s schedule=%q window=%dd", cfg.Env, cfg.ArchiveCron, cfg.ArchiveWindowDays)

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

	userID := cfg.ArchiveUserID
	var source archive.Source = archive.NewStoreSource(repo)
	if cfg.GraphEnabled() {
		source = graph.NewClient(rootCtx, cfg.GraphTenantID, cfg.GraphClientID, cfg.GraphClientSecret)
		if cfg.GraphUserID != "" {
			userID = cfg.GraphUserID
		}
		log.Println("archiving from Microsoft Graph")
	} else {
		log.Println("archiving from the local store")
	}

	svc := archive.NewService(source, archive.NewStoreSink(repo), repo, locker, cfg)

	// Run once at startup, then on the configured schedule.
	runOnce(rootCtx, svc, cfg, userID)

	c := cron.New()
	if _, err := c.AddFunc(cfg.ArchiveCron, func() {
		runOnce(rootCtx, svc, cfg, userID)
	}); err != nil {
		log.Fatalf("invalid ARCHIVE_CRON %q: %v", cfg.ArchiveCron, err)
	}
	c.Start()

	<-rootCtx.Done()
	log.Println("shutdown signal received, stopping archive worker")

	stopCtx := c.Stop()
	select {
	case <-stopCtx.Done():
	case <-time.After(cfg.ShutdownTimeout):
		log.Println("timed out waiting for running jobs")
	}
}

func runOnce(ctx context.Context, svc *archive.Service, cfg config.Config, userID string) {
	runCtx, cancel := context.WithTimeout(ctx, 5*time.Minute)
	defer cancel()

	// Archive the trailing window up to midnight today, end exclusive.
	now := time.Now().UTC()
	end := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	start := end.AddDate(0, 0, -cfg.ArchiveWindowDays)

	began := time.Now()
	result, err := svc.Run(runCtx, archive.RunRequest{
		UserID:          userID,
		ArchiveCalendar: cfg.ArchiveCalendar,
		Start:           start,
		End:             end,
		IncludeTravel:   cfg.IncludeTravel,
	})
	if err != nil {
		if errors.Is(err, archive.ErrArchiveInProgress) {
			log.Printf("archive run skipped, another run holds the lock for user=%s", userID)
			return
		}
		log.Printf("archive run error: %v", err)
		return
	}

	log.Printf("archive run finished in %s: fetched=%d archived=%d merged=%d conflicts=%d",
		time.Since(began), result.Fetched, result.Archived, result.MergedModifiers, result.Conflicts)
}
