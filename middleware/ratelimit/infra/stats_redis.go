package infra

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"kisan-gateway/middleware/ratelimit/domain"
)

type RedisStatsStore struct {
	rdb redis.Cmdable

	prefix string
	// ttl aplica apenas em chaves por minuto / por key.
	// total é cumulativo e não expira.
	ttl time.Duration

	bucket string // "minute" (padrão) ou "none"

	trackKeys bool
}

type RedisStatsOption func(*RedisStatsStore)

func WithStatsPrefix(prefix string) RedisStatsOption {
	return func(s *RedisStatsStore) { s.prefix = strings.Trim(prefix, ":") }
}

func WithStatsTTL(d time.Duration) RedisStatsOption {
	return func(s *RedisStatsStore) { s.ttl = d }
}

func WithStatsBucket(bucket string) RedisStatsOption {
	return func(s *RedisStatsStore) { s.bucket = strings.ToLower(strings.TrimSpace(bucket)) }
}

func WithStatsTrackKeys(track bool) RedisStatsOption {
	return func(s *RedisStatsStore) { s.trackKeys = track }
}

func NewRedisStatsStore(rdb redis.Cmdable, opts ...RedisStatsOption) *RedisStatsStore {
	s := &RedisStatsStore{
		rdb:    rdb,
		prefix: "ratelimit:stats",
		ttl:    24 * time.Hour,
		bucket: "minute",
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func field(allowed bool) string {
	if allowed {
		return "allowed"
	}
	return "denied"
}

func (s *RedisStatsStore) Record(ctx context.Context, ev domain.StatsEvent) error {
	if s == nil || s.rdb == nil {
		return nil
	}

	at := ev.At
	if at.IsZero() {
		at = time.Now()
	}
	f := field(ev.Allowed)

	pipe := s.rdb.Pipeline()
	pipe.HIncrBy(ctx, s.prefix+":total", f, 1)

	if s.bucket == "minute" {
		bucketKey := fmt.Sprintf("%s:minute:%s", s.prefix, at.UTC().Format("200601021504"))
		pipe.HIncrBy(ctx, bucketKey, f, 1)
		if s.ttl > 0 {
			pipe.Expire(ctx, bucketKey, s.ttl)
		}
	}

	if route := strings.TrimSpace(strings.TrimSpace(ev.Method) + " " + strings.TrimSpace(ev.Path)); route != "" {
		pipe.HIncrBy(ctx, s.prefix+":route", route+":"+f, 1)
	}

	if k := strings.TrimSpace(string(ev.Key)); s.trackKeys && k != "" {
		keyKey := s.prefix + ":key:" + k
		pipe.HIncrBy(ctx, keyKey, f, 1)
		if s.ttl > 0 {
			pipe.Expire(ctx, keyKey, s.ttl)
		}
	}

	_, err := pipe.Exec(ctx)
	return err
}

// Totals implementa domain.StatsReader.
func (s *RedisStatsStore) Totals(ctx context.Context) (domain.Counters, error) {
	vals, err := s.rdb.HGetAll(ctx, s.prefix+":total").Result()
	if err != nil {
		return domain.Counters{}, fmt.Errorf("redis stats totals: %w", err)
	}

	var out domain.Counters
	out.Allowed, _ = strconv.ParseInt(vals["allowed"], 10, 64)
	out.Denied, _ = strconv.ParseInt(vals["denied"], 10, 64)
	return out, nil
}
