package store

import (
	"context"
	"errors"

	"github.com/mediakit/asset-console/internal/store/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// KV is the durable key-value surface the notification subsystem persists
// through. Each key holds exactly one string value.
type KV interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value string) error
	Delete(ctx context.Context, key string) error
	InitialMigration(ctx context.Context) error
}

type KVStore struct {
	db *gorm.DB
}

func NewKVStore(db *gorm.DB) KV {
	return &KVStore{db: db}
}

func (s *KVStore) InitialMigration(ctx context.Context) error {
	return s.getDB(ctx).AutoMigrate(&model.KeyValue{})
}

// Get returns the value stored under key, or ErrRecordNotFound.
func (s *KVStore) Get(ctx context.Context, key string) (string, error) {
	kv := model.KeyValue{Key: key}
	if err := s.getDB(ctx).WithContext(ctx).First(&kv).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrRecordNotFound
		}
		return "", err
	}
	return kv.Value, nil
}

// Set upserts the value under key.
func (s *KVStore) Set(ctx context.Context, key string, value string) error {
	kv := model.KeyValue{Key: key, Value: value}
	return s.getDB(ctx).WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&kv).Error
}

// Delete removes the key. Deleting an absent key is not an error.
func (s *KVStore) Delete(ctx context.Context, key string) error {
	err := s.getDB(ctx).WithContext(ctx).Delete(&model.KeyValue{Key: key}).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	return nil
}

func (s *KVStore) getDB(ctx context.Context) *gorm.DB {
	tx := FromContext(ctx)
	if tx != nil {
		return tx
	}
	return s.db
}
