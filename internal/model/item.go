package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// DefaultUnit is applied when an item is saved without a unit of measure.
const DefaultUnit = "pcs"

// Item represents an office-supply entry in the inventory
type Item struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	Name      string          `gorm:"type:varchar(255);not null;index" json:"name"`
	Category  string          `gorm:"type:varchar(100);not null;default:''" json:"category"`
	Stock     int             `gorm:"type:int;not null;default:0;check:chk_items_stock,stock >= 0" json:"stock"`
	Unit      string          `gorm:"type:varchar(20);not null;default:'pcs'" json:"unit"`
	Price     decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"price" swaggertype:"number"`
	Supplier  string          `gorm:"type:varchar(255)" json:"supplier"`
	CreatedAt time.Time       `gorm:"index" json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
	DeletedAt gorm.DeletedAt  `gorm:"index" json:"-"`
}

// BeforeCreate assigns the primary key so inserts do not depend on a database-side generator.
func (i *Item) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}
