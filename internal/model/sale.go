package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// PaymentStatus: "paid" | "pending"
const (
	PaymentPaid    = "paid"
	PaymentPending = "pending"
)

// Sale is a committed point-of-sale checkout. TotalAmount is the sum of the
// line totals at the prices frozen in the cart.
type Sale struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey"`
	SaleNumber    string          `gorm:"type:varchar(16);uniqueIndex;not null"`
	CustomerID    *uuid.UUID      `gorm:"type:uuid;index"`
	SalespersonID uuid.UUID       `gorm:"type:uuid;not null;index"`
	TotalAmount   decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	PaymentStatus string          `gorm:"type:varchar(20);not null;default:'paid'"`
	CreatedAt     time.Time

	Items       []SaleItem `gorm:"foreignKey:SaleID"`
	Customer    *Customer  `gorm:"foreignKey:CustomerID"`
	Salesperson *User      `gorm:"foreignKey:SalespersonID"`
}

func (s *Sale) BeforeCreate(*gorm.DB) error {
	assignID(&s.ID)
	return nil
}

// SaleItem is one line of a sale. PricePerUnit is the cart snapshot and is
// never re-read from the product.
type SaleItem struct {
	ID           uuid.UUID       `gorm:"type:uuid;primaryKey"`
	SaleID       uuid.UUID       `gorm:"type:uuid;index;not null"`
	ProductID    uuid.UUID       `gorm:"type:uuid;index;not null"`
	Quantity     int             `gorm:"not null;check:chk_sale_items_quantity_positive,quantity > 0"`
	PricePerUnit decimal.Decimal `gorm:"type:decimal(10,2);not null"`

	Product *Product `gorm:"foreignKey:ProductID"`
}

func (i *SaleItem) BeforeCreate(*gorm.DB) error {
	assignID(&i.ID)
	return nil
}

// LineTotal is quantity × unit price.
func (i SaleItem) LineTotal() decimal.Decimal {
	return i.PricePerUnit.Mul(decimal.NewFromInt(int64(i.Quantity)))
}
