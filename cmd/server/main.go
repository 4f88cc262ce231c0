package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"tutorhive/schedule/internal/cache"
	"tutorhive/schedule/internal/clients"
	"tutorhive/schedule/internal/config"
	"tutorhive/schedule/internal/db"
	internalhttp "tutorhive/schedule/internal/http"
	"tutorhive/schedule/internal/jobs"
	"tutorhive/schedule/internal/notify"
	"tutorhive/schedule/internal/schedule"
	"tutorhive/schedule/migrations"
)

func main() {
	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := db.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db connection failed: %v", err)
	}
	defer pool.Close()

	if err := migrations.Up(ctx, pool); err != nil {
		log.Fatalf("migrations failed: %v", err)
	}

	var rowCache schedule.RowCache
	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		})
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		if err := redisClient.Ping(pingCtx).Err(); err != nil {
			cancel()
			log.Fatalf("redis ping failed: %v", err)
		}
		cancel()
		defer func() {
			if err := redisClient.Close(); err != nil {
				log.Printf("redis close error: %v", err)
			}
		}()
		rowCache = cache.NewScheduleCache(redisClient, cfg.CacheTTL)
	}

	var notifier schedule.Notifier
	if cfg.SendgridAPIKey != "" {
		notifier = notify.NewSendgridNotifier(cfg.SendgridAPIKey, cfg.NotifyFrom, cfg.NotifyTo)
	} else {
		notifier = notify.ConsoleNotifier{}
	}

	sheet := clients.NewSheetClient(cfg.SheetBaseURL, cfg.SheetAPIKey, cfg.SheetTimeout)
	store := db.NewOverrideStore(pool)
	service := schedule.NewService(sheet, store, rowCache, notifier)

	server := internalhttp.NewServer(cfg, service)
	httpServer := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           server.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	jobs.StartCachePrewarmJob(ctx, cfg, service)

	go func() {
		log.Printf("schedule http listening on %s", cfg.HTTPAddr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("http server error: %v", err)
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown error: %v", err)
	}
}
