// Package localcache provides the client-side key-value substrate the ledger
// mirrors its state into. Values survive restarts but are private to the
// machine they were written on.
package localcache

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"
)

// Store is a string key-value store.
type Store interface {
	// Get returns the value for key; ok is false when the key was never set.
	Get(key string) (value string, ok bool, err error)
	Set(key, value string) error
	// SetMany writes every entry or none of them.
	SetMany(values map[string]string) error
	Delete(key string) error
}

// entry is one cached key.
type entry struct {
	Key       string `gorm:"column:cache_key;primaryKey;size:128"`
	Value     string `gorm:"type:text;not null"`
	UpdatedAt time.Time
}

func (entry) TableName() string { return "cache_entries" }

// SQLiteStore keeps cache entries in a SQLite file.
type SQLiteStore struct {
	db *gorm.DB
}

// Open opens or creates the cache database at path.
func Open(path string) (*SQLiteStore, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("creating cache dir: %w", err)
		}
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("opening cache db: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("opening cache db: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)
	return New(db)
}

// New wraps an open database, creating the cache table if needed.
func New(db *gorm.DB) (*SQLiteStore, error) {
	if err := db.AutoMigrate(&entry{}); err != nil {
		return nil, fmt.Errorf("creating cache schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// Get implements Store.
func (s *SQLiteStore) Get(key string) (string, bool, error) {
	var e entry
	err := s.db.Where("cache_key = ?", key).First(&e).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("reading cache key %q: %w", key, err)
	}
	return e.Value, true, nil
}

// Set implements Store.
func (s *SQLiteStore) Set(key, value string) error {
	return s.SetMany(map[string]string{key: value})
}

// SetMany implements Store.
func (s *SQLiteStore) SetMany(values map[string]string) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		for k, v := range values {
			e := entry{Key: k, Value: v}
			if err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "cache_key"}},
				DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
			}).Create(&e).Error; err != nil {
				return fmt.Errorf("writing cache key %q: %w", k, err)
			}
		}
		return nil
	})
}

// Delete implements Store.
func (s *SQLiteStore) Delete(key string) error {
	if err := s.db.Where("cache_key = ?", key).Delete(&entry{}).Error; err != nil {
		return fmt.Errorf("deleting cache key %q: %w", key, err)
	}
	return nil
}

// Close releases the database handle.
func (s *SQLiteStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
