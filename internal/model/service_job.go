package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ServiceJob is a repair ticket. Status moves only through the transitions
// allowed by JobStatus.CanTransitionTo.
type ServiceJob struct {
	ID                 uuid.UUID  `gorm:"type:uuid;primaryKey"`
	JobNumber          string     `gorm:"type:varchar(16);uniqueIndex;not null"`
	CustomerID         uuid.UUID  `gorm:"type:uuid;not null;index"`
	Title              string     `gorm:"type:varchar(200);not null"`
	ProblemDescription string     `gorm:"type:text;not null"`
	Status             JobStatus  `gorm:"type:varchar(20);not null;index"`
	DueDate            *time.Time `gorm:"index"` // UTC
	CompletedAt        *time.Time
	CreatedAt          time.Time
	UpdatedAt          time.Time

	Customer *Customer        `gorm:"foreignKey:CustomerID"`
	Parts    []ServiceJobPart `gorm:"foreignKey:ServiceJobID"`
	Updates  []JobUpdate      `gorm:"foreignKey:ServiceJobID"`
}

func (j *ServiceJob) BeforeCreate(*gorm.DB) error {
	assignID(&j.ID)
	return nil
}

// PartsCost sums quantity × price_at_time over the loaded parts.
func (j *ServiceJob) PartsCost() decimal.Decimal {
	total := decimal.Zero
	for _, p := range j.Parts {
		total = total.Add(p.LineTotal())
	}
	return total
}

// ServiceJobPart records a product consumed by a job. While the row exists its
// quantity is deducted from the product's stock; deleting it gives it back.
type ServiceJobPart struct {
	ID           uuid.UUID       `gorm:"type:uuid;primaryKey"`
	ServiceJobID uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID    uuid.UUID       `gorm:"type:uuid;not null;index"`
	Quantity     int             `gorm:"not null;check:chk_service_job_parts_quantity_positive,quantity > 0"`
	PriceAtTime  decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	AddedByID    uuid.UUID       `gorm:"type:uuid;not null"`
	CreatedAt    time.Time

	Product *Product `gorm:"foreignKey:ProductID"`
	AddedBy *User    `gorm:"foreignKey:AddedByID"`
}

func (p *ServiceJobPart) BeforeCreate(*gorm.DB) error {
	assignID(&p.ID)
	return nil
}

func (p ServiceJobPart) LineTotal() decimal.Decimal {
	return p.PriceAtTime.Mul(decimal.NewFromInt(int64(p.Quantity)))
}

// JobUpdate is an append-only audit entry on a job. There is no update or
// delete path for these rows anywhere in the repository layer.
type JobUpdate struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	ServiceJobID uuid.UUID `gorm:"type:uuid;not null;index"`
	AuthorID     uuid.UUID `gorm:"type:uuid;not null;index"`
	Summary      string    `gorm:"type:text;not null"`
	CreatedAt    time.Time `gorm:"index"`

	Author *User `gorm:"foreignKey:AuthorID"`
}

func (u *JobUpdate) BeforeCreate(*gorm.DB) error {
	assignID(&u.ID)
	return nil
}
