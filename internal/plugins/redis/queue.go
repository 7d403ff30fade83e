package redis

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// RedisMessageQueue is the durable ingest stream for chat messages. One
// stream keeps a total order across entries, which preserves per-pair
// message order through the persistence path.
type RedisMessageQueue struct {
	rdb    *redis.Client
	stream string
	log    *slog.Logger
}

func NewRedisMessageQueue(log *slog.Logger, rdb *redis.Client, stream string) *RedisMessageQueue {
	return &RedisMessageQueue{rdb: rdb, stream: stream, log: log}
}

func (q *RedisMessageQueue) Publish(ctx context.Context, payload []byte) error {
	return q.rdb.XAdd(ctx, &redis.XAddArgs{
		Stream: q.stream,
		MaxLen: 10000,
		Approx: true,
		ID:     "*",
		Values: map[string]interface{}{"data": payload},
	}).Err()
}

func (q *RedisMessageQueue) Subscribe(
	ctx context.Context,
	group string,
	handler func(ctx context.Context, messageID string, data []byte) error,
) error {
	err := q.rdb.XGroupCreateMkStream(ctx, q.stream, group, "0").Err()
	if err != nil && !strings.Contains(err.Error(), "BUSYGROUP") {
		return fmt.Errorf("create consumer group %s: %w", group, err)
	}
	consumerName := uuid.NewString()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
			res, err := q.rdb.XReadGroup(ctx, &redis.XReadGroupArgs{
				Group:    group,
				Consumer: consumerName,
				Streams:  []string{q.stream, ">"},
				Count:    16,
				Block:    2 * time.Second,
			}).Result()
			if err != nil {
				if err != redis.Nil && ctx.Err() == nil {
					q.log.Error("redis queue - stream read failed", "stream", q.stream, "err", err)
				}
				continue
			}
			for _, stream := range res {
				for _, msg := range stream.Messages {
					raw, ok := msg.Values["data"].(string)
					if !ok {
						continue
					}
					if err := handler(ctx, msg.ID, []byte(raw)); err != nil {
						q.log.Error("redis queue - handler failed", "message_id", msg.ID, "err", err)
					}
				}
			}
		}
	}
}

func (q *RedisMessageQueue) Ack(ctx context.Context, group, messageID string) error {
	return q.rdb.XAck(ctx, q.stream, group, messageID).Err()
}

func (q *RedisMessageQueue) Delete(ctx context.Context, messageID string) error {
	return q.rdb.XDel(ctx, q.stream, messageID).Err()
}
