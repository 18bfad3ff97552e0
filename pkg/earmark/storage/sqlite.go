//go:build !js && !wasm
// +build !js,!wasm

package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/himanishpuri/EarMark/pkg/earmark/fingerprint"
	"github.com/himanishpuri/EarMark/pkg/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

const DefaultDBFile = "earmark.sqlite3"
const errDBClientNil = "db client is nil"

// DBClient is the SQLite-backed sound library.
type DBClient struct {
	DB   *gorm.DB
	db   *sql.DB
	path string
}

// Sound is the row stored for every taught sound.
type Sound struct {
	ID         string                  `gorm:"primaryKey;type:varchar(36)"`
	Name       string                  `gorm:"not null"`
	OwnerID    string                  `gorm:"type:varchar(128);index:idx_owner;not null"`
	Features   fingerprint.Fingerprint `gorm:"serializer:json;type:text"`
	FrameCount int
	SampleRate int
	DurationMs int
	CreatedAt  time.Time `gorm:"index:idx_created"`
}

func (Sound) TableName() string { return "sounds" }

func NewDBClient() (*DBClient, error) {
	dbPath := os.Getenv("EARMARK_DB_PATH")
	if dbPath == "" {
		dbPath = DefaultDBFile
	}
	return NewDBClientWithPath(dbPath)
}

func NewDBClientWithPath(dbPath string) (*DBClient, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating db dir: %w", err)
		}
	}

	gormConfig := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	}

	dsn := dbPath + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	db, err := gorm.Open(sqlite.Open(dsn), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("getting sql.DB from gorm: %w", err)
	}

	sqlDB.SetMaxOpenConns(8)
	sqlDB.SetMaxIdleConns(2)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := db.AutoMigrate(&Sound{}); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("auto migrate: %w", err)
	}

	return &DBClient{DB: db, db: sqlDB, path: dbPath}, nil
}

func (c *DBClient) Close() error {
	if c == nil || c.db == nil {
		return nil
	}
	return c.db.Close()
}

func toRow(e models.SoundEntry) Sound {
	return Sound{
		ID:         e.ID,
		Name:       e.Name,
		OwnerID:    e.OwnerID,
		Features:   e.Fingerprint,
		FrameCount: len(e.Fingerprint),
		SampleRate: e.SampleRate,
		DurationMs: e.DurationMs,
		CreatedAt:  e.CreatedAt,
	}
}

func fromRow(r Sound) models.SoundEntry {
	fp := r.Features
	if fp == nil {
		fp = fingerprint.Fingerprint{}
	}
	return models.SoundEntry{
		ID:          r.ID,
		Name:        r.Name,
		OwnerID:     r.OwnerID,
		Fingerprint: fp,
		SampleRate:  r.SampleRate,
		DurationMs:  r.DurationMs,
		CreatedAt:   r.CreatedAt,
	}
}

func (c *DBClient) Get(id string) (*models.SoundEntry, error) {
	if c == nil || c.DB == nil {
		return nil, errors.New(errDBClientNil)
	}

	var row Sound
	if err := c.DB.Where("id = ?", id).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return nil, fmt.Errorf("querying sound: %w", err)
	}
	entry := fromRow(row)
	return &entry, nil
}

// Put inserts entry or replaces every column of the row with the same id.
func (c *DBClient) Put(entry models.SoundEntry) error {
	if c == nil || c.DB == nil {
		return errors.New(errDBClientNil)
	}
	if err := validate(entry); err != nil {
		return err
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}

	row := toRow(entry)
	return c.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.OnConflict{UpdateAll: true}).Create(&row).Error; err != nil {
			return fmt.Errorf("storing sound: %w", err)
		}
		return nil
	})
}

func (c *DBClient) Delete(id string) error {
	if c == nil || c.DB == nil {
		return errors.New(errDBClientNil)
	}
	return c.DB.Transaction(func(tx *gorm.DB) error {
		res := tx.Where("id = ?", id).Delete(&Sound{})
		if res.Error != nil {
			return fmt.Errorf("deleting sound: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return nil
	})
}

// ListByOwner returns the owner's sounds oldest first; an empty owner lists
// every sound.
func (c *DBClient) ListByOwner(ownerID string) ([]models.SoundEntry, error) {
	if c == nil || c.DB == nil {
		return nil, errors.New(errDBClientNil)
	}

	q := c.DB.Order("created_at ASC").Order("id ASC")
	if ownerID != "" {
		q = q.Where("owner_id = ?", ownerID)
	}

	var rows []Sound
	if err := q.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("listing sounds: %w", err)
	}

	out := make([]models.SoundEntry, len(rows))
	for i, r := range rows {
		out[i] = fromRow(r)
	}
	return out, nil
}

func (c *DBClient) ScanAll() ([]models.SoundEntry, error) {
	return c.ListByOwner("")
}

// Path returns the database file the client was opened on.
func (c *DBClient) Path() string { return c.path }

// Count returns the number of stored sounds.
func (c *DBClient) Count() (int, error) {
	if c == nil || c.DB == nil {
		return 0, errors.New(errDBClientNil)
	}
	var count int64
	if err := c.DB.Model(&Sound{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("counting sounds: %w", err)
	}
	return int(count), nil
}
