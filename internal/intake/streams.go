package intake

import (
	"context"
	"errors"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// streamStore is the slice of Redis Streams the consumer needs.
type streamStore interface {
	EnsureGroup(ctx context.Context, stream, group string) error
	Read(ctx context.Context, stream, group, consumer string, count int64, block time.Duration) ([]goredis.XMessage, error)
	Reclaim(ctx context.Context, stream, group, consumer string, minIdle time.Duration, count int64) ([]goredis.XMessage, error)
	Ack(ctx context.Context, stream, group string, ids ...string) error
	Add(ctx context.Context, stream string, maxLen int64, values map[string]any) (string, error)
}

type redisStreams struct {
	rdb goredis.UniversalClient
}

func (r redisStreams) EnsureGroup(ctx context.Context, stream, group string) error {
	err := r.rdb.XGroupCreateMkStream(ctx, stream, group, "0").Err()
	if err != nil && !strings.HasPrefix(err.Error(), "BUSYGROUP") {
		return err
	}
	return nil
}

func (r redisStreams) Read(ctx context.Context, stream, group, consumer string, count int64, block time.Duration) ([]goredis.XMessage, error) {
	res, err := r.rdb.XReadGroup(ctx, &goredis.XReadGroupArgs{
		Group:    group,
		Consumer: consumer,
		Streams:  []string{stream, ">"},
		Count:    count,
		Block:    block,
	}).Result()
	if errors.Is(err, goredis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var out []goredis.XMessage
	for _, s := range res {
		out = append(out, s.Messages...)
	}
	return out, nil
}

func (r redisStreams) Reclaim(ctx context.Context, stream, group, consumer string, minIdle time.Duration, count int64) ([]goredis.XMessage, error) {
	msgs, _, err := r.rdb.XAutoClaim(ctx, &goredis.XAutoClaimArgs{
		Stream:   stream,
		Group:    group,
		Consumer: consumer,
		MinIdle:  minIdle,
		Start:    "0-0",
		Count:    count,
	}).Result()
	if errors.Is(err, goredis.Nil) {
		return nil, nil
	}
	return msgs, err
}

func (r redisStreams) Ack(ctx context.Context, stream, group string, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	return r.rdb.XAck(ctx, stream, group, ids...).Err()
}

func (r redisStreams) Add(ctx context.Context, stream string, maxLen int64, values map[string]any) (string, error) {
	args := &goredis.XAddArgs{Stream: stream, Values: values}
	if maxLen > 0 {
		args.MaxLen = maxLen
		args.Approx = true
	}
	return r.rdb.XAdd(ctx, args).Result()
}
