package database

import (
	"strings"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

var DB *gorm.DB

// Connect initializes the database connection.
// SQLite for now; the schema relies on ON DELETE actions, so foreign key
// enforcement is switched on for every pooled connection via the DSN.
func Connect(dsn string) error {
	if !strings.Contains(dsn, "?") {
		dsn += "?_fk=1"
	}
	var err error
	DB, err = gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		return err
	}
	return nil
}

// GetDB returns the database instance.
func GetDB() *gorm.DB {
	return DB
}
