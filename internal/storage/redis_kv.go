package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-redis/redis/v8"
	"github.com/hqanh/scoresheet/config"
	"github.com/rs/zerolog/log"
)

type redisKV struct {
	rdb *redis.Client
}

func NewRedisKV(cfg *config.Config) (KV, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.Redis.Addr, err)
	}
	log.Info().Str("addr", cfg.Redis.Addr).Msg("Redis snapshot storage ready")
	return &redisKV{rdb: rdb}, nil
}

func (s *redisKV) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := s.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrKeyNotFound
	}
	if err != nil {
		return nil, err
	}
	return val, nil
}

func (s *redisKV) Set(ctx context.Context, key string, value []byte) error {
	// Snapshots never expire; the latest overwrite is the state of record.
	return s.rdb.Set(ctx, key, value, 0).Err()
}

func (s *redisKV) Close() error {
	return s.rdb.Close()
}
