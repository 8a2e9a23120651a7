package testutil

import (
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

type RedisServer struct {
	URL    string
	Server *miniredis.Miniredis
	Client *redis.Client
}

// Start in-memory redis server
// It's stopped automatically when test ends
// Use Server.FastForward to expire keys
func StartRedis(t *testing.T) RedisServer {
	t.Helper()

	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return RedisServer{
		URL:    "redis://" + server.Addr() + "/0",
		Server: server,
		Client: client,
	}
}
