package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"shopbot/internal/order"
	logx "shopbot/pkg/logx"
)

// redisStore shares sessions across bot replicas. Values are JSON so they can
// be inspected with redis-cli.
type redisStore struct {
	rdb *redis.Client
	ttl time.Duration
	log logx.Logger
}

func openRedis(cfg Config, log logx.Logger) (Store, error) {
	if cfg.Addr == "" {
		return nil, errors.New("sessions.addr is required for redis driver")
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	log.Info("session store connected", logx.String("driver", "redis"), logx.String("addr", cfg.Addr))
	return &redisStore{rdb: rdb, ttl: cfg.TTL, log: log}, nil
}

func lastKey(customerID int64) string {
	return fmt.Sprintf("shopbot:last:%d", customerID)
}

func (s *redisStore) PutLast(ctx context.Context, customerID int64, o *order.Order) error {
	b, err := json.Marshal(o)
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, lastKey(customerID), b, s.ttl).Err()
}

func (s *redisStore) GetLast(ctx context.Context, customerID int64) (*order.Order, bool, error) {
	b, err := s.rdb.Get(ctx, lastKey(customerID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var o order.Order
	if err := json.Unmarshal(b, &o); err != nil {
		// Treat undecodable state as absent; it self-heals on the next order.
		s.log.Warn("dropping corrupt session value", logx.Int64("customer_id", customerID), logx.Err(err))
		_ = s.rdb.Del(ctx, lastKey(customerID)).Err()
		return nil, false, nil
	}
	return &o, true, nil
}

func (s *redisStore) Close() error { return s.rdb.Close() }
