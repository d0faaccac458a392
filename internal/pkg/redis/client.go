package redis

import (
	"context"
	"fmt"
	"time"

	redis "github.com/redis/go-redis/v9"

	"github.com/Gopher0727/SocialHub/config"
)

// Client wraps go-redis with the small set of operations the chat core needs:
// per-group message sequences, user presence flags and plain KV helpers.
type Client struct {
	client *redis.Client
	config *config.RedisConfig
}

func NewClient(cfg *config.RedisConfig) (*Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &Client{
		client: rdb,
		config: cfg,
	}, nil
}

func (c *Client) Close() error {
	return c.client.Close()
}

func (c *Client) GetClient() *redis.Client {
	return c.client
}

func (c *Client) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// NextGroupSeq returns the next message sequence number for a group.
// Sequences are monotonic per group and survive process restarts.
func (c *Client) NextGroupSeq(ctx context.Context, groupID uint) (int64, error) {
	key := fmt.Sprintf("group:%d:seq", groupID)
	result, err := c.client.Incr(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to generate seq for group %d: %w", groupID, err)
	}
	return result, nil
}

// SetUserOnline marks a user online with a TTL; refreshed on every pong.
func (c *Client) SetUserOnline(ctx context.Context, userID uint, ttl time.Duration) error {
	key := fmt.Sprintf("user:%d:online", userID)
	if err := c.client.Set(ctx, key, "1", ttl).Err(); err != nil {
		return fmt.Errorf("failed to set user %d online: %w", userID, err)
	}
	return nil
}

// IsUserOnline reports whether the online flag for a user is still alive.
func (c *Client) IsUserOnline(ctx context.Context, userID uint) (bool, error) {
	key := fmt.Sprintf("user:%d:online", userID)
	result, err := c.client.Exists(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check if user %d is online: %w", userID, err)
	}
	return result > 0, nil
}

// RemoveUserOnline clears the online flag on disconnect.
func (c *Client) RemoveUserOnline(ctx context.Context, userID uint) error {
	key := fmt.Sprintf("user:%d:online", userID)
	if err := c.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("failed to remove user %d online status: %w", userID, err)
	}
	return nil
}

func (c *Client) Set(ctx context.Context, key string, value any, expiration time.Duration) error {
	return c.client.Set(ctx, key, value, expiration).Err()
}

func (c *Client) Get(ctx context.Context, key string) (string, error) {
	return c.client.Get(ctx, key).Result()
}

func (c *Client) Del(ctx context.Context, keys ...string) error {
	return c.client.Del(ctx, keys...).Err()
}

func (c *Client) Exists(ctx context.Context, keys ...string) (int64, error) {
	return c.client.Exists(ctx, keys...).Result()
}
