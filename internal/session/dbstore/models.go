package dbstore

import (
	"time"
)

// SessionEntryModel represents one key-value pair of a named session.
type SessionEntryModel struct {
	Session   string    `gorm:"primaryKey;size:100"`
	Key       string    `gorm:"primaryKey;size:100"`
	Value     string    `gorm:"type:text;not null"`
	CreatedAt time.Time `gorm:"autoCreateTime"` // GORM managed timestamp
	UpdatedAt time.Time `gorm:"autoUpdateTime"` // GORM managed timestamp
}

// TableName returns the table name for SessionEntryModel
func (SessionEntryModel) TableName() string {
	return "session_entries"
}

// MetaModel holds database-level settings such as the schema version.
type MetaModel struct {
	Key       string    `gorm:"primaryKey;size:100"`
	Value     string    `gorm:"type:text;not null"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

// TableName returns the table name for MetaModel
func (MetaModel) TableName() string {
	return "meta"
}
