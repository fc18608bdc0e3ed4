package dto

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// One request type per lifecycle operation; there is no multiplexed
// "update job" command.

type OpenJobRequest struct {
	CustomerID         uuid.UUID `json:"customer_id"         validate:"required"`
	Title              string    `json:"title"               validate:"required,max=200"`
	ProblemDescription string    `json:"problem_description" validate:"required"`
}

// RescheduleJobRequest.DueDate is a civil date-time in the business
// timezone: "2006-01-02T15:04", "2006-01-02 15:04" or "2006-01-02".
type RescheduleJobRequest struct {
	DueDate       string    `json:"due_date"       validate:"required"`
	Reason        string    `json:"reason"         validate:"required"`
	ResponsibleID uuid.UUID `json:"responsible_id" validate:"required"`
}

type AddNoteRequest struct {
	AuthorID uuid.UUID `json:"author_id" validate:"required"`
	Summary  string    `json:"summary"   validate:"required"`
}

type CompleteJobRequest struct {
	ResponsibleID uuid.UUID   `json:"responsible_id" validate:"required"`
	Summary       string      `json:"summary"        validate:"required"`
	TechnicianIDs []uuid.UUID `json:"technician_ids"`
}

type CancelJobRequest struct {
	ResponsibleID uuid.UUID `json:"responsible_id" validate:"required"`
	Reason        string    `json:"reason"`
}

type AddPartRequest struct {
	ProductID uuid.UUID `json:"product_id"  validate:"required"`
	Quantity  int       `json:"quantity"    validate:"required,min=1"`
	AddedByID uuid.UUID `json:"added_by_id" validate:"required"`
}

// ServiceJobFilter is bound from the query string of GET /v1/service-jobs.
type ServiceJobFilter struct {
	Status string `form:"status"` // one of the four status tokens; empty = all
	Page   int    `form:"page,default=1"   validate:"min=1"`
	Limit  int    `form:"limit,default=50" validate:"min=1,max=200"`
}

// ─── Responses ───────────────────────────────────────────────────────────────

type ServiceJobPartResponse struct {
	ID           uuid.UUID       `json:"id"`
	ServiceJobID uuid.UUID       `json:"service_job_id"`
	ProductID    uuid.UUID       `json:"product_id"`
	ProductName  string          `json:"product_name"`
	Quantity     int             `json:"quantity"`
	PriceAtTime  decimal.Decimal `json:"price_at_time"`
	LineTotal    decimal.Decimal `json:"line_total"`
	AddedByID    uuid.UUID       `json:"added_by_id"`
	CreatedAt    string          `json:"created_at"`
}

type JobUpdateResponse struct {
	ID         uuid.UUID `json:"id"`
	AuthorID   uuid.UUID `json:"author_id"`
	AuthorName string    `json:"author_name"`
	Summary    string    `json:"summary"`
	CreatedAt  string    `json:"created_at"`
}

type ServiceJobResponse struct {
	ID                 uuid.UUID                `json:"id"`
	JobNumber          string                   `json:"job_number"`
	CustomerID         uuid.UUID                `json:"customer_id"`
	CustomerName       string                   `json:"customer_name"`
	Title              string                   `json:"title"`
	ProblemDescription string                   `json:"problem_description"`
	Status             string                   `json:"status"`
	DueDate            *string                  `json:"due_date"`
	CompletedAt        *string                  `json:"completed_at"`
	CreatedAt          string                   `json:"created_at"`
	PartsCost          decimal.Decimal          `json:"parts_cost"`
	Parts              []ServiceJobPartResponse `json:"parts"`
	Updates            []JobUpdateResponse      `json:"updates"` // oldest first
}

type ServiceJobListResponse struct {
	Data  []ServiceJobResponse `json:"data"`
	Total int64                `json:"total"`
	Page  int                  `json:"page"`
	Limit int                  `json:"limit"`
}

// JobStatsResponse backs the dashboard counters.
type JobStatsResponse struct {
	Total     int64 `json:"total"`
	Completed int64 `json:"completed"`
	Pending   int64 `json:"pending"`
	DueToday  int64 `json:"due_today"`
}
