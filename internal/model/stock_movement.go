package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MovementKind classifies a stock movement.
type MovementKind string

const (
	MovementSale       MovementKind = "sale"
	MovementPartUsage  MovementKind = "part_usage"
	MovementPartReturn MovementKind = "part_return"
)

// StockMovement records every change the ledger makes to a product's stock.
// Rows are never modified or deleted; a release is a new row with a positive
// quantity.
type StockMovement struct {
	ID          uuid.UUID    `gorm:"type:uuid;primaryKey"`
	ProductID   uuid.UUID    `gorm:"type:uuid;not null;index"`
	Kind        MovementKind `gorm:"type:varchar(20);not null"`
	Quantity    int          `gorm:"not null"` // positive = in, negative = out
	StockBefore int          `gorm:"not null"`
	StockAfter  int          `gorm:"not null"`
	Reference   string       // business identifier, e.g. SAL12345678 or SRV123456
	ReferenceID *uuid.UUID   `gorm:"type:uuid;index"`
	CreatedAt   time.Time

	Product *Product `gorm:"foreignKey:ProductID"`
}

// TableName keeps the table name singular-plural consistent with the other ledgers.
func (StockMovement) TableName() string { return "stock_movements" }

func (m *StockMovement) BeforeCreate(*gorm.DB) error {
	assignID(&m.ID)
	return nil
}
