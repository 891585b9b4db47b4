package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// Script is a Lua script cached server-side by its SHA.
type Script = redis.Script

// NewScript wraps a Lua source as a Script.
func NewScript(src string) *Script {
	return redis.NewScript(src)
}

// Client wraps the Redis client.
type Client struct {
	rdb *redis.Client
}

// New creates a new Redis client from a URI.
func New(uri string) (*Client, error) {
	opt, err := redis.ParseURL(uri)
	if err != nil {
		return nil, err
	}

	rdb := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, err
	}

	return &Client{rdb: rdb}, nil
}

// RunInts executes a script that returns an array of integers.
func (c *Client) RunInts(ctx context.Context, script *Script, keys []string, args ...any) ([]int64, error) {
	return script.Run(ctx, c.rdb, keys, args...).Int64Slice()
}

// Close closes the Redis connection.
func (c *Client) Close() error {
	return c.rdb.Close()
}
