package dbstore

import (
	"errors"
	"fmt"

	"github.com/yiblet/sieve/internal/session"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// SchemaVersion is written to the meta table on creation.
const SchemaVersion = "1"

// SQLiteStore is a SQLite-backed implementation of session.Store
type SQLiteStore struct {
	db     *gorm.DB
	dbPath string
}

// NewSQLiteStore creates a new SQLite-backed store at the specified path.
// It initializes the database schema and records the schema version.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite allows a single writer; one connection serializes access
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database handle: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)

	// Run auto-migration for all models
	if err := db.AutoMigrate(&SessionEntryModel{}, &MetaModel{}); err != nil {
		return nil, fmt.Errorf("failed to migrate schema: %w", err)
	}

	store := &SQLiteStore{
		db:     db,
		dbPath: dbPath,
	}

	if err := store.initMeta(); err != nil {
		return nil, fmt.Errorf("failed to init meta: %w", err)
	}

	return store, nil
}

// Session returns the backend for the named session
func (s *SQLiteStore) Session(name string) session.Backend {
	if name == "" {
		name = session.DefaultName
	}
	return &sqliteBackend{db: s.db, name: name}
}

// Names lists sessions that hold at least one entry
func (s *SQLiteStore) Names() ([]string, error) {
	var names []string
	err := s.db.Model(&SessionEntryModel{}).
		Distinct("session").
		Order("session").
		Pluck("session", &names).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	return names, nil
}

// SchemaVersion returns the schema version recorded in the database
func (s *SQLiteStore) SchemaVersion() (string, error) {
	var meta MetaModel
	if err := s.db.First(&meta, "key = ?", "schema_version").Error; err != nil {
		return "", fmt.Errorf("failed to read schema version: %w", err)
	}
	return meta.Value, nil
}

// Path returns the database file path
func (s *SQLiteStore) Path() string {
	return s.dbPath
}

// Close closes the database connection
func (s *SQLiteStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// initMeta records the schema version if it is not present yet
func (s *SQLiteStore) initMeta() error {
	meta := &MetaModel{Key: "schema_version", Value: SchemaVersion}
	return s.db.Clauses(clause.OnConflict{DoNothing: true}).Create(meta).Error
}

// sqliteBackend implements session.Backend for one named session
type sqliteBackend struct {
	db   *gorm.DB
	name string
}

// Get retrieves a value by key
func (b *sqliteBackend) Get(key string) (string, error) {
	var model SessionEntryModel
	err := b.db.First(&model, "session = ? AND key = ?", b.name, key).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", fmt.Errorf("%w: %s", session.ErrNotFound, key)
		}
		return "", fmt.Errorf("failed to get session entry: %w", err)
	}
	return model.Value, nil
}

// Set stores a value (upsert)
func (b *sqliteBackend) Set(key, value string) error {
	model := &SessionEntryModel{
		Session: b.name,
		Key:     key,
		Value:   value,
	}

	// Upsert: update if exists, insert if not
	result := b.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "session"}, {Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(model)

	if result.Error != nil {
		return fmt.Errorf("failed to set session entry: %w", result.Error)
	}
	return nil
}

// Remove deletes a key; a missing key is not an error
func (b *sqliteBackend) Remove(key string) error {
	result := b.db.Delete(&SessionEntryModel{}, "session = ? AND key = ?", b.name, key)
	if result.Error != nil {
		return fmt.Errorf("failed to remove session entry: %w", result.Error)
	}
	return nil
}

// List returns all entries of the session
func (b *sqliteBackend) List() (map[string]string, error) {
	var models []SessionEntryModel
	if err := b.db.Where("session = ?", b.name).Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to list session entries: %w", err)
	}

	result := make(map[string]string, len(models))
	for _, model := range models {
		result[model.Key] = model.Value
	}
	return result, nil
}

// Close releases any resources
func (b *sqliteBackend) Close() error {
	return nil // No-op, parent store handles DB closing
}
