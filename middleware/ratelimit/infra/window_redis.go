package infra

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"kisan-gateway/middleware/ratelimit/domain"
)

// RedisWindowCounter guarda a janela de cada chave no Redis (script Lua INCR + PEXPIRE),
// então o limite vale para todas as instâncias do gateway.
type RedisWindowCounter struct {
	rdb    redis.Cmdable
	prefix string
	now    func() time.Time
}

type RedisWindowOption func(*RedisWindowCounter)

func WithWindowPrefix(prefix string) RedisWindowOption {
	return func(c *RedisWindowCounter) { c.prefix = strings.Trim(prefix, ":") }
}

func NewRedisWindowCounter(rdb redis.Cmdable, opts ...RedisWindowOption) *RedisWindowCounter {
	c := &RedisWindowCounter{
		rdb:    rdb,
		prefix: "ratelimit:window",
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// hitScript incrementa e, se a chave ficou sem TTL (primeira requisição da janela, ou
// um PEXPIRE que se perdeu), aplica a janela. Tudo roda atômico no Redis, então
// instâncias concorrentes nunca abrem a mesma janela com inícios diferentes.
var hitScript = redis.NewScript(`
local n = redis.call('INCR', KEYS[1])
local ttl = redis.call('PTTL', KEYS[1])
if n == 1 or ttl < 0 then
	redis.call('PEXPIRE', KEYS[1], ARGV[1])
	ttl = tonumber(ARGV[1])
end
return {n, ttl}
`)

// Hit implementa domain.WindowCounter.
func (c *RedisWindowCounter) Hit(ctx context.Context, key domain.Key, window time.Duration) (domain.WindowHit, error) {
	k := c.prefix + ":" + string(key)

	res, err := hitScript.Run(ctx, c.rdb, []string{k}, window.Milliseconds()).Int64Slice()
	if err != nil {
		return domain.WindowHit{}, fmt.Errorf("redis window hit: %w", err)
	}
	if len(res) != 2 {
		return domain.WindowHit{}, fmt.Errorf("redis window hit: unexpected reply %v", res)
	}

	remaining := time.Duration(res[1]) * time.Millisecond
	return domain.WindowHit{
		Count:       res[0],
		WindowStart: c.now().Add(remaining - window),
	}, nil
}
