package store

import (
	log "github.com/sirupsen/logrus"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// NewSqliteStore backs the placed-orders index with a local file, mainly
// for tests.
func NewSqliteStore(path string, logger *log.Logger) (Store, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{})
	if err != nil {
		return nil, err
	}
	return newStore(db, logger)
}
