package store

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Property is one row of the string-keyed, string-valued persistent store.
// The monitor uses exactly one key, but the table is generic on purpose.
type Property struct {
	Key       string `gorm:"primaryKey;type:varchar(191);column:prop_key"`
	Value     string `gorm:"type:text"`
	UpdatedAt time.Time
}

// TableName specifies the table name for Property
func (Property) TableName() string {
	return "properties"
}

// PropertyStore is a persistent string-keyed, string-valued store.
type PropertyStore interface {
	// Get returns the stored value and whether the key exists.
	Get(key string) (string, bool, error)
	// Set writes the value for the key, creating or replacing it.
	Set(key, value string) error
}

// DBPropertyStore implements PropertyStore on top of a SQL database.
type DBPropertyStore struct {
	db *gorm.DB
}

// NewDBPropertyStore creates a database-backed property store.
func NewDBPropertyStore(db *gorm.DB) *DBPropertyStore {
	return &DBPropertyStore{db: db}
}

func (s *DBPropertyStore) Get(key string) (string, bool, error) {
	var prop Property
	result := s.db.First(&prop, "prop_key = ?", key)
	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if result.Error != nil {
		return "", false, fmt.Errorf("failed to read property %s: %w", key, result.Error)
	}
	return prop.Value, true, nil
}

func (s *DBPropertyStore) Set(key, value string) error {
	prop := Property{Key: key, Value: value, UpdatedAt: time.Now()}
	result := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "prop_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&prop)
	if result.Error != nil {
		return fmt.Errorf("failed to write property %s: %w", key, result.Error)
	}
	return nil
}
