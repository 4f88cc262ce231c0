package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"tutorhive/schedule/internal/schedule"
)

// ScheduleCache holds spreadsheet rows per teacher with a TTL. Its own
// failures are logged and treated as cache misses; the cache must never take
// the schedule down.
type ScheduleCache struct {
	client *redis.Client
	ttl    time.Duration
}

var _ schedule.RowCache = (*ScheduleCache)(nil)

func NewScheduleCache(client *redis.Client, ttl time.Duration) *ScheduleCache {
	return &ScheduleCache{client: client, ttl: ttl}
}

func (c *ScheduleCache) Get(ctx context.Context, teacherID string) ([]schedule.ScheduledClass, bool) {
	value, err := c.client.Get(ctx, rowsKey(teacherID)).Result()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		log.Printf("cache: get failed for %s: %v", teacherID, err)
		return nil, false
	}
	var rows []schedule.ScheduledClass
	if err := json.Unmarshal([]byte(value), &rows); err != nil {
		log.Printf("cache: corrupt entry for %s: %v", teacherID, err)
		return nil, false
	}
	return rows, true
}

func (c *ScheduleCache) Set(ctx context.Context, teacherID string, rows []schedule.ScheduledClass) {
	data, err := json.Marshal(rows)
	if err != nil {
		log.Printf("cache: marshal failed for %s: %v", teacherID, err)
		return
	}
	if err := c.client.Set(ctx, rowsKey(teacherID), data, c.ttl).Err(); err != nil {
		log.Printf("cache: set failed for %s: %v", teacherID, err)
	}
}

func (c *ScheduleCache) Invalidate(ctx context.Context, teacherID string) {
	if err := c.client.Del(ctx, rowsKey(teacherID)).Err(); err != nil {
		log.Printf("cache: invalidate failed for %s: %v", teacherID, err)
	}
}

func rowsKey(teacherID string) string {
	return fmt.Sprintf("schedule:rows:%s", teacherID)
}
