package store

import (
	"errors"
	"time"

	log "github.com/sirupsen/logrus"
	"gorm.io/datatypes"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"orderbot/models"
)

// PlacedOrder is one placed delivery, keyed by client and date so a re-run
// for an already processed date is detectable.
type PlacedOrder struct {
	ID             uint           `gorm:"primaryKey"`
	ClientID       string         `gorm:"index:idx_client_date"`
	OrderDate      datatypes.Date `gorm:"index:idx_client_date"`
	QuoteID        string
	CarrierOrderID string
	PickupCode     string
	CreatedAt      time.Time
}

type Store interface {
	AlreadyScheduled(clientID string, date time.Time) (bool, error)
	RecordPlaced(rec models.AuditRecord, date time.Time) error
}

type PgStore struct {
	db     *gorm.DB
	Logger *log.Logger
}

func NewPgStore(dsn string, logger *log.Logger) (Store, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}
	return newStore(db, logger)
}

func newStore(db *gorm.DB, logger *log.Logger) (Store, error) {
	if err := db.AutoMigrate(&PlacedOrder{}); err != nil {
		return nil, err
	}
	return &PgStore{db: db, Logger: logger}, nil
}

func (s *PgStore) AlreadyScheduled(clientID string, date time.Time) (bool, error) {
	var existing PlacedOrder
	err := s.db.Where("client_id = ? AND order_date = ?", clientID, datatypes.Date(date)).First(&existing).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (s *PgStore) RecordPlaced(rec models.AuditRecord, date time.Time) error {
	return s.db.Create(&PlacedOrder{
		ClientID:       rec.ClientID,
		OrderDate:      datatypes.Date(date),
		QuoteID:        rec.QuoteID,
		CarrierOrderID: rec.OrderID,
		PickupCode:     rec.PickupOrderCode,
	}).Error
}
