package redisx

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// Open dials host:port and pings it once.
func Open(ctx context.Context, host, port string) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr: fmt.Sprintf("%s:%s", host, port),
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping %s:%s: %w", host, port, err)
	}
	return rdb, nil
}
