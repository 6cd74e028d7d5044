// Package storage provides the durable key-value snapshot device behind
// the record store. Each collection is one opaque JSON blob under a fixed
// key; writes are full overwrites, never incremental. Backends: a
// postgres blob table, redis, or an in-process map.
package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/hqanh/scoresheet/config"
)

// Fixed snapshot keys, one per collection.
const (
	StudentKey = "student_db"
	ExamKey    = "exam_db"
)

// ErrKeyNotFound reports an absent key. Callers treat it as "no snapshot
// yet" and start from an empty collection.
var ErrKeyNotFound = errors.New("key not found")

type KV interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Close() error
}

// New builds the KV backend named by the configuration.
func New(cfg *config.Config) (KV, error) {
	switch cfg.Storage.Backend {
	case "postgres":
		return NewGormKV(cfg)
	case "redis":
		return NewRedisKV(cfg)
	case "memory":
		return NewMemoryKV(), nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}
}
