package worker

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// QueueEvents is the Redis list domain events are pushed to (LPUSH) and
// consumed from (BRPOP).
const QueueEvents = "events:domain"

// ErrQueueEmpty is returned by Pop when the timeout passes with nothing to read.
var ErrQueueEmpty = errors.New("queue empty")

// Envelope is the wire format of every queued event.
type Envelope struct {
	ID          string          `json:"id"`
	Type        string          `json:"type"`
	Payload     json.RawMessage `json:"payload"`
	Attempts    int             `json:"attempts"`
	PublishedAt time.Time       `json:"published_at"`
}

// Queue is the list primitive the dispatcher, pool and DLQ share.
type Queue interface {
	Push(ctx context.Context, key string, value []byte) error
	Pop(ctx context.Context, key string, timeout time.Duration) ([]byte, error)
	Len(ctx context.Context, key string) (int64, error)
}

// RedisQueue implements Queue on Redis lists.
type RedisQueue struct {
	rdb *redis.Client
}

func NewRedisQueue(rdb *redis.Client) *RedisQueue { return &RedisQueue{rdb: rdb} }

func (q *RedisQueue) Push(ctx context.Context, key string, value []byte) error {
	return q.rdb.LPush(ctx, key, value).Err()
}

func (q *RedisQueue) Pop(ctx context.Context, key string, timeout time.Duration) ([]byte, error) {
	result, err := q.rdb.BRPop(ctx, timeout, key).Result()
	if errors.Is(err, redis.Nil) {
		return nil, ErrQueueEmpty
	}
	if err != nil {
		return nil, err
	}
	if len(result) < 2 {
		return nil, ErrQueueEmpty
	}
	return []byte(result[1]), nil
}

func (q *RedisQueue) Len(ctx context.Context, key string) (int64, error) {
	return q.rdb.LLen(ctx, key).Result()
}
