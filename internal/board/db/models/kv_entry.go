// Package models contains the persistence models of the board,
// configured to work using GORM as the ORM.
package models

import (
	"time"
)

// KVEntry is one key of the board snapshot. Values are JSON documents.
type KVEntry struct {
	Key       string `gorm:"column:entry_key;primaryKey;size:64"`
	Value     string `gorm:"column:value;type:text"`
	UpdatedAt time.Time
}

// TableName pins the table name.
func (KVEntry) TableName() string {
	return "kv_entries"
}
