package database

import (
	"fmt"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// DocumentRow holds one schemaless document. Collection is the full slash path.
type DocumentRow struct {
	Collection string         `gorm:"primaryKey;size:255"`
	ID         string         `gorm:"primaryKey;size:128"`
	Data       datatypes.JSON `gorm:"not null"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (DocumentRow) TableName() string { return "documents" }

// Account is a sign-in identity. Anonymous accounts carry no email or password, so Email
// is NULL for them.
type Account struct {
	UID          string  `gorm:"primaryKey;size:64"`
	Email        *string `gorm:"uniqueIndex;size:255"`
	PasswordHash string
	Provider     string `gorm:"size:32"`
	Anonymous    bool
	CreatedAt    time.Time
}

// Pref is a key/value pair of the terminal client's local settings.
type Pref struct {
	Key       string `gorm:"primaryKey;size:64"`
	Value     string
	UpdatedAt time.Time
}

// Migrate creates the server tables.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&DocumentRow{}, &Account{}); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

// MigratePrefs creates the client settings table.
func MigratePrefs(db *gorm.DB) error {
	if err := db.AutoMigrate(&Pref{}); err != nil {
		return fmt.Errorf("migrate prefs: %w", err)
	}
	return nil
}
