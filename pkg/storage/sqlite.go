package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// StoredSetting is one persisted key with its JSON-encoded value.
type StoredSetting struct {
	Key       string    `gorm:"primaryKey" json:"key"`
	ValueJSON string    `gorm:"type:text" json:"value_json"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName pins the table name.
func (StoredSetting) TableName() string {
	return "stored_settings"
}

// SQLiteStore implements Adapter on a SQLite database through gorm.
type SQLiteStore struct {
	db *gorm.DB
}

// OpenSQLite opens (or creates) the database at path and migrates the schema.
// Use ":memory:" for a throwaway database.
func OpenSQLite(path string) (*SQLiteStore, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	return NewSQLiteStore(db)
}

// NewSQLiteStore wraps an existing gorm connection and migrates the schema.
func NewSQLiteStore(db *gorm.DB) (*SQLiteStore, error) {
	if err := db.AutoMigrate(&StoredSetting{}); err != nil {
		return nil, fmt.Errorf("failed to migrate storage schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// GetAll returns every stored key.
func (s *SQLiteStore) GetAll(ctx context.Context) (map[string]any, error) {
	var rows []StoredSetting
	if err := s.db.WithContext(ctx).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to read settings: %w", err)
	}

	out := make(map[string]any, len(rows))
	for _, row := range rows {
		var v any
		if err := json.Unmarshal([]byte(row.ValueJSON), &v); err != nil {
			return nil, fmt.Errorf("failed to decode stored value for %s: %w", row.Key, err)
		}
		out[row.Key] = v
	}
	return out, nil
}

// Set upserts items in a single transaction.
func (s *SQLiteStore) Set(ctx context.Context, items map[string]any) error {
	if len(items) == 0 {
		return nil
	}
	rows := make([]StoredSetting, 0, len(items))
	now := time.Now()
	for k, v := range items {
		data, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("failed to encode value for %s: %w", k, err)
		}
		rows = append(rows, StoredSetting{Key: k, ValueJSON: string(data), UpdatedAt: now})
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value_json", "updated_at"}),
		}).Create(&rows).Error
	})
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
