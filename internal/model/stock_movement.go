package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Movement types
const (
	MovementInitial         = "INITIAL"
	MovementAdjust          = "ADJUST"
	MovementRequestApproved = "REQUEST_APPROVED"
)

// StockMovement records one change to an item's stock
type StockMovement struct {
	ID              uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	ItemID          uuid.UUID  `gorm:"type:uuid;not null;index" json:"item_id"`
	RequestID       *uuid.UUID `gorm:"type:uuid;index" json:"request_id"` // Set only for approval decrements
	MovementType    string     `gorm:"type:varchar(20);not null" json:"movement_type"`
	QuantityChanged int        `gorm:"type:int;not null" json:"quantity_changed"`
	StockAfter      int        `gorm:"type:int;not null" json:"stock_after"`
	CreatedAt       time.Time  `gorm:"index" json:"created_at"`
}

func (m *StockMovement) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}
