package notify

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/redis/go-redis/v9"
)

// RedisClient is the subset of redis.UniversalClient used for publishing.
type RedisClient interface {
	Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd
}

// RedisPublisher sends events with PUBLISH.
type RedisPublisher struct {
	client RedisClient
}

// NewRedisPublisher wraps client.
func NewRedisPublisher(client RedisClient) *RedisPublisher {
	return &RedisPublisher{client: client}
}

// DialRedis parses a redis:// URL and returns a client for it.
func DialRedis(url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, errors.Wrap(err, "parse redis url")
	}
	return redis.NewClient(opts), nil
}

// Publish implements Publisher. Zero subscribers is not an error.
func (p *RedisPublisher) Publish(ctx context.Context, channel string, payload []byte) error {
	if err := p.client.Publish(ctx, channel, payload).Err(); err != nil {
		return errors.Wrapf(err, "publish to %s", channel)
	}
	return nil
}
