package dto

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Domain events published after a unit of work commits. External
// collaborators (messaging bot, reports) consume them from the queue.
const (
	EventSaleCommitted         = "sale.committed"
	EventServiceJobOpened      = "service_job.opened"
	EventServiceJobRescheduled = "service_job.rescheduled"
	EventServiceJobCompleted   = "service_job.completed"
	EventServiceJobCancelled   = "service_job.cancelled"
)

type SaleCommittedEvent struct {
	SaleID      uuid.UUID       `json:"sale_id"`
	SaleNumber  string          `json:"sale_number"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	ItemCount   int             `json:"item_count"`
}

type ServiceJobEvent struct {
	JobID     uuid.UUID `json:"job_id"`
	JobNumber string    `json:"job_number"`
	Status    string    `json:"status"`
	DueDate   *string   `json:"due_date,omitempty"`
	Summary   string    `json:"summary,omitempty"`
}
