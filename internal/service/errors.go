package service

import (
	"errors"
	"fmt"

	"repairpos/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrEmptyCart       = errors.New("cart is empty")
	ErrInvalidQuantity = errors.New("quantity must be a positive integer")
	ErrInvalidPrice    = errors.New("unit price must not be negative")
	ErrInvalidDueDate  = errors.New("due date is not a valid date-time")
	ErrInvalidDate     = errors.New("date must be formatted as YYYY-MM-DD")
	ErrInvalidStatus   = errors.New("unknown service job status")
	ErrEmptySummary    = errors.New("summary must not be empty")
	ErrEmptyName       = errors.New("customer name must not be empty")

	// ErrDuplicateIdentifier is internal: the generator retries on it and it
	// only escapes wrapped in ErrGenerationExhausted.
	ErrDuplicateIdentifier = errors.New("identifier already taken")
	ErrGenerationExhausted = errors.New("identifier generation exhausted")
)

// Entity kinds reported by NotFoundError.
const (
	KindProduct        = "product"
	KindSale           = "sale"
	KindServiceJob     = "service_job"
	KindServiceJobPart = "service_job_part"
	KindUser           = "user"
	KindCustomer       = "customer"
)

// InsufficientStockError reports the product that could not cover a
// reservation. Requested is the total demand on that product within the
// failing operation.
type InsufficientStockError struct {
	ProductID   uuid.UUID
	ProductName string
	Requested   int
	Available   int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %s: requested %d, available %d",
		e.ProductName, e.Requested, e.Available)
}

type NotFoundError struct {
	Kind string
	ID   uuid.UUID
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Kind, e.ID)
}

type InvalidTransitionError struct {
	From model.JobStatus
	To   model.JobStatus
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("cannot move service job from %s to %s", e.From, e.To)
}

// notFound converts gorm.ErrRecordNotFound into a NotFoundError and passes
// every other error through.
func notFound(err error, kind string, id uuid.UUID) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &NotFoundError{Kind: kind, ID: id}
	}
	return err
}
