// Package settings persists small client-side values (session token,
// remembered email, cached stats, filter preferences) in a local SQLite
// file. Every value is addressed by a typed Key and may carry an expiry.
package settings

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"
)

// Key names a setting and fixes its Go type. A zero TTL never expires.
type Key[T any] struct {
	Name string
	TTL  time.Duration
}

type entry struct {
	Name      string     `gorm:"primaryKey;size:128"`
	Value     string     `gorm:"type:text;not null"`
	ExpiresAt *time.Time `gorm:"index"`
	UpdatedAt time.Time
}

func (entry) TableName() string { return "settings" }

// Meta describes a stored value without decoding it.
type Meta struct {
	Name      string
	UpdatedAt time.Time
	ExpiresAt *time.Time
}

func (m Meta) Expired(now time.Time) bool {
	return m.ExpiresAt != nil && !now.Before(*m.ExpiresAt)
}

type Store struct {
	db     *gorm.DB
	now    func() time.Time
	logger *zap.Logger
}

func Open(path string, logger *zap.Logger) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("open settings db: %w", err)
	}
	return NewStore(db, logger)
}

// NewStore migrates db and routes its statement log into logger. A missing
// key is an ordinary miss and is not logged.
func NewStore(db *gorm.DB, logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("settings")
	db = db.Session(&gorm.Session{Logger: gormlogger.New(zap.NewStdLog(logger), gormlogger.Config{
		SlowThreshold:             200 * time.Millisecond,
		LogLevel:                  gormlogger.Warn,
		IgnoreRecordNotFoundError: true,
	})})

	// SQLite takes one writer, and each ":memory:" connection is its own database.
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("settings db handle: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(&entry{}); err != nil {
		return nil, fmt.Errorf("migrate settings: %w", err)
	}
	return &Store{db: db, now: time.Now, logger: logger}, nil
}

// SetClock overrides the time source used for expiry.
func (s *Store) SetClock(now func() time.Time) {
	s.now = now
}

func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (s *Store) load(ctx context.Context, name string) (*entry, error) {
	var e entry
	err := s.db.WithContext(ctx).Where("name = ?", name).Take(&e).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load setting %s: %w", name, err)
	}
	return &e, nil
}

func (s *Store) Meta(ctx context.Context, name string) (Meta, bool, error) {
	e, err := s.load(ctx, name)
	if err != nil || e == nil {
		return Meta{}, false, err
	}
	return Meta{Name: e.Name, UpdatedAt: e.UpdatedAt, ExpiresAt: e.ExpiresAt}, true, nil
}

func (s *Store) remove(ctx context.Context, name string) error {
	if err := s.db.WithContext(ctx).Where("name = ?", name).Delete(&entry{}).Error; err != nil {
		return fmt.Errorf("delete setting %s: %w", name, err)
	}
	return nil
}

// PurgeExpired drops every expired value and reports how many were removed.
func (s *Store) PurgeExpired(ctx context.Context) (int64, error) {
	res := s.db.WithContext(ctx).Where("expires_at IS NOT NULL AND expires_at <= ?", s.now()).Delete(&entry{})
	if res.Error != nil {
		return 0, fmt.Errorf("purge settings: %w", res.Error)
	}
	return res.RowsAffected, nil
}

// Get returns the stored value for key. Missing and expired values report
// ok=false; an expired value is removed on read.
func Get[T any](ctx context.Context, s *Store, key Key[T]) (T, bool, error) {
	var zero T
	e, err := s.load(ctx, key.Name)
	if err != nil || e == nil {
		return zero, false, err
	}

	meta := Meta{Name: e.Name, UpdatedAt: e.UpdatedAt, ExpiresAt: e.ExpiresAt}
	if meta.Expired(s.now()) {
		s.logger.Debug("setting expired", zap.String("name", key.Name))
		return zero, false, s.remove(ctx, key.Name)
	}

	var value T
	if err := json.Unmarshal([]byte(e.Value), &value); err != nil {
		s.logger.Warn("dropping undecodable setting", zap.String("name", key.Name), zap.Error(err))
		return zero, false, s.remove(ctx, key.Name)
	}
	return value, true, nil
}

func Set[T any](ctx context.Context, s *Store, key Key[T], value T) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode setting %s: %w", key.Name, err)
	}

	now := s.now()
	e := entry{Name: key.Name, Value: string(raw), UpdatedAt: now}
	if key.TTL > 0 {
		expires := now.Add(key.TTL)
		e.ExpiresAt = &expires
	}

	err = s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "expires_at", "updated_at"}),
	}).Create(&e).Error
	if err != nil {
		return fmt.Errorf("save setting %s: %w", key.Name, err)
	}
	return nil
}

func Delete[T any](ctx context.Context, s *Store, key Key[T]) error {
	return s.remove(ctx, key.Name)
}
