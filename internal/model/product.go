package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Product is a stocked item sold over the counter or consumed as a part in a
// service job. StockQuantity is only ever changed through the stock ledger.
type Product struct {
	ID    uuid.UUID       `gorm:"type:uuid;primaryKey"`
	Name  string          `gorm:"index;not null"`
	SKU   *string         `gorm:"uniqueIndex"`
	Price decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	// StockQuantity is the quantity on hand; the check constraint keeps it >= 0
	// even if a caller bypasses the ledger.
	StockQuantity int `gorm:"not null;default:0;check:chk_products_stock_non_negative,stock_quantity >= 0"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (p *Product) BeforeCreate(*gorm.DB) error {
	assignID(&p.ID)
	return nil
}
