package db

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// Connect to redis and make sure it responds
// url: redis://[:password@]host:port/db
func ConnectRedis(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url. Err: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis not available. Err: %w", err)
	}

	return client, nil
}
