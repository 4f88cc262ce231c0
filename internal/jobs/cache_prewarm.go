package jobs

import (
	"context"
	"log"
	"time"

	"tutorhive/schedule/internal/config"
	"tutorhive/schedule/internal/schedule"
)

// StartCachePrewarmJob keeps the admin dashboard's ALL-teachers schedule
// warm by refreshing it on an interval. Errors are logged and the next tick
// tries again.
func StartCachePrewarmJob(ctx context.Context, cfg config.Config, service *schedule.Service) {
	if !cfg.PrewarmEnabled {
		return
	}
	if !service.CacheEnabled() {
		log.Printf("cache prewarm enabled but no cache configured, skipping")
		return
	}
	interval := cfg.PrewarmInterval
	if interval <= 0 {
		interval = time.Minute
	}

	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				tickCtx, cancel := context.WithTimeout(ctx, cfg.SheetTimeout+5*time.Second)
				_, err := service.GetReconciledSchedule(tickCtx, schedule.AllTeachers)
				cancel()
				if err != nil {
					log.Printf("cache prewarm error: %v", err)
				}
			}
		}
	}()
}
