package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Customer struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name      string    `gorm:"index;not null"`
	Phone     *string   `gorm:"type:varchar(20);index"`
	Email     *string   `gorm:"type:varchar(120)"`
	Address   *string
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (c *Customer) BeforeCreate(*gorm.DB) error {
	assignID(&c.ID)
	return nil
}

// assignID fills a zero primary key so rows can be created on any dialect
// (no reliance on gen_random_uuid()).
func assignID(id *uuid.UUID) {
	if *id == uuid.Nil {
		*id = uuid.New()
	}
}
