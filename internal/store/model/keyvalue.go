package model

import "time"

// KeyValue is one durable string value. The notification feed and the three
// reconciliation key-sets each occupy a single row, mirroring the storage
// contract of one value per key.
type KeyValue struct {
	Key       string `gorm:"primaryKey;column:key;type:VARCHAR;size:255"`
	Value     string `gorm:"column:value;type:TEXT;not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (KeyValue) TableName() string {
	return "key_values"
}
