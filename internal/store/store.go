package store

import (
	"context"

	"gorm.io/gorm"
)

type Store interface {
	NewTransactionContext(ctx context.Context) (context.Context, error)
	KV() KV
	InitialMigration() error
	Close() error
}

type DataStore struct {
	kv KV
	db *gorm.DB
}

func NewStore(db *gorm.DB) Store {
	return &DataStore{
		kv: NewKVStore(db),
		db: db,
	}
}

func (s *DataStore) NewTransactionContext(ctx context.Context) (context.Context, error) {
	return newTransactionContext(ctx, s.db)
}

func (s *DataStore) KV() KV {
	return s.kv
}

func (s *DataStore) InitialMigration() error {
	return s.kv.InitialMigration(context.Background())
}

func (s *DataStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
