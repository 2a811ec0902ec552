package publisher

import (
	"context"
	"math/rand"
	"strconv"

	"sjsage522/cardwatch/logger"
	apperrors "sjsage522/cardwatch/pkg/errors"

	"github.com/redis/go-redis/v9"
)

// RedisPublisher implements Publisher using Redis streams
type RedisPublisher struct {
	client          *redis.Client
	streamPrefix    string
	streamCount     int
	streamMaxLength int
	log             *logger.Logger
}

// NewRedisPublisher creates a new Redis publisher
func NewRedisPublisher(addr string, db int, streamPrefix string, streamCount int, streamMaxLength int) *RedisPublisher {
	client := redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   db,
	})

	return &RedisPublisher{
		client:          client,
		streamPrefix:    streamPrefix,
		streamCount:     max(streamCount, 1),
		streamMaxLength: streamMaxLength,
		log:             logger.ForPublisher().WithField("stream", streamPrefix),
	}
}

// Ping checks that Redis is reachable
func (p *RedisPublisher) Ping(ctx context.Context) error {
	if err := p.client.Ping(ctx).Err(); err != nil {
		return apperrors.NewPublisher("redis", "ping", err)
	}
	return nil
}

// Stream returns the stream a message goes to. With a stream count of N
// the names are prefix:0 to prefix:N-1.
func (p *RedisPublisher) Stream() string {
	return p.streamPrefix + ":" + strconv.Itoa(rand.Intn(p.streamCount))
}

// Publish appends the message to one of the streams
func (p *RedisPublisher) Publish(ctx context.Context, key string, message []byte) error {
	stream := p.Stream()
	err := p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: stream,
		Values: map[string]interface{}{
			key: message,
		},
	}).Err()
	if err != nil {
		return apperrors.NewPublisher("redis", "publish "+key, err)
	}
	p.log.Debug().Str("target", stream).Str("key", key).Int("bytes", len(message)).Msg("message published")
	return nil
}

// TrimStreams trims all streams to the configured maximum length
func (p *RedisPublisher) TrimStreams(ctx context.Context) error {
	for i := 0; i < p.streamCount; i++ {
		stream := p.streamPrefix + ":" + strconv.Itoa(i)
		if err := p.client.XTrimMaxLen(ctx, stream, int64(p.streamMaxLength)).Err(); err != nil {
			return apperrors.NewPublisher("redis", "trim "+stream, err)
		}
	}
	p.log.Debug().Int("streams", p.streamCount).Int("max_length", p.streamMaxLength).Msg("streams trimmed")
	return nil
}

// Close closes the Redis connection
func (p *RedisPublisher) Close() error {
	p.log.Info().Msg("closing redis connection")
	return p.client.Close()
}
