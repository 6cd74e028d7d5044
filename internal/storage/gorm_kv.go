package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hqanh/scoresheet/config"
	"github.com/rs/zerolog/log"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// kvRecord is the single table the postgres backend owns. The value is an
// opaque JSON blob; nothing relational happens to its contents.
type kvRecord struct {
	Key       string `gorm:"primaryKey;size:64"`
	Value     []byte `gorm:"type:bytea"`
	UpdatedAt time.Time
}

func (kvRecord) TableName() string { return "kv_records" }

type gormKV struct {
	db *gorm.DB
}

func NewGormKV(cfg *config.Config) (KV, error) {
	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		cfg.Database.Host, cfg.Database.Port, cfg.Database.User, cfg.Database.Password, cfg.Database.Name)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}
	if err := db.AutoMigrate(&kvRecord{}); err != nil {
		return nil, fmt.Errorf("failed to migrate kv_records: %w", err)
	}
	log.Info().Str("db", cfg.Database.Name).Msg("Postgres snapshot storage ready")
	return &gormKV{db: db}, nil
}

func (s *gormKV) Get(ctx context.Context, key string) ([]byte, error) {
	var rec kvRecord
	err := s.db.WithContext(ctx).First(&rec, "key = ?", key).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrKeyNotFound
	}
	if err != nil {
		return nil, err
	}
	return rec.Value, nil
}

func (s *gormKV) Set(ctx context.Context, key string, value []byte) error {
	rec := kvRecord{Key: key, Value: value, UpdatedAt: time.Now()}
	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
		}).
		Create(&rec).Error
}

func (s *gormKV) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
