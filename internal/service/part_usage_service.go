package service

import (
	"context"

	"repairpos/internal/dto"
	"repairpos/internal/model"
	"repairpos/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// PartUsageService records products consumed by a service job. A part row
// and its stock deduction are created and removed together.
type PartUsageService interface {
	AddPart(ctx context.Context, jobID uuid.UUID, req dto.AddPartRequest) (*dto.ServiceJobPartResponse, error)
	RemovePart(ctx context.Context, partID uuid.UUID) error
}

type partUsageService struct {
	jobs   repository.ServiceJobRepository
	users  repository.UserRepository
	ledger StockLedger
	now    Clock
}

func NewPartUsageService(
	jobs repository.ServiceJobRepository,
	users repository.UserRepository,
	ledger StockLedger,
	now Clock,
) PartUsageService {
	if now == nil {
		now = systemClock
	}
	return &partUsageService{jobs: jobs, users: users, ledger: ledger, now: now}
}

func (s *partUsageService) AddPart(ctx context.Context, jobID uuid.UUID, req dto.AddPartRequest) (*dto.ServiceJobPartResponse, error) {
	if req.Quantity <= 0 {
		return nil, ErrInvalidQuantity
	}

	var part model.ServiceJobPart
	err := runTx(ctx, s.jobs.DB(), func(tx *gorm.DB) error {
		job, err := s.jobs.FindByIDForUpdateTx(tx, jobID)
		if err != nil {
			return notFound(err, KindServiceJob, jobID)
		}
		if _, err := s.users.FindByIDTx(tx, req.AddedByID); err != nil {
			return notFound(err, KindUser, req.AddedByID)
		}

		ref := MovementRef{Kind: model.MovementPartUsage, Reference: job.JobNumber, ReferenceID: &job.ID}
		product, err := s.ledger.ReserveTx(tx, req.ProductID, req.Quantity, ref)
		if err != nil {
			return err
		}

		part = model.ServiceJobPart{
			ServiceJobID: job.ID,
			ProductID:    product.ID,
			Quantity:     req.Quantity,
			PriceAtTime:  product.Price,
			AddedByID:    req.AddedByID,
			CreatedAt:    s.now(),
		}
		if err := s.jobs.CreatePartTx(tx, &part); err != nil {
			return err
		}
		part.Product = product
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Info().Str("job_id", jobID.String()).Str("product_id", part.ProductID.String()).
		Int("quantity", part.Quantity).Msg("part added to service job")
	resp := partToResponse(&part)
	return &resp, nil
}

// RemovePart deletes the part row and returns its quantity to stock, whatever
// the job status. Cancelling a job never does this on its own.
func (s *partUsageService) RemovePart(ctx context.Context, partID uuid.UUID) error {
	err := runTx(ctx, s.jobs.DB(), func(tx *gorm.DB) error {
		part, err := s.jobs.FindPartByIDTx(tx, partID)
		if err != nil {
			return notFound(err, KindServiceJobPart, partID)
		}
		job, err := s.jobs.FindByIDForUpdateTx(tx, part.ServiceJobID)
		if err != nil {
			return notFound(err, KindServiceJob, part.ServiceJobID)
		}

		// Deleting first makes a concurrent second removal of the same part
		// affect zero rows instead of releasing twice.
		n, err := s.jobs.DeletePartTx(tx, part.ID)
		if err != nil {
			return err
		}
		if n == 0 {
			return &NotFoundError{Kind: KindServiceJobPart, ID: partID}
		}

		ref := MovementRef{Kind: model.MovementPartReturn, Reference: job.JobNumber, ReferenceID: &job.ID}
		_, err = s.ledger.ReleaseTx(tx, part.ProductID, part.Quantity, ref)
		return err
	})
	if err != nil {
		return err
	}
	log.Info().Str("part_id", partID.String()).Msg("part removed from service job")
	return nil
}

func partToResponse(p *model.ServiceJobPart) dto.ServiceJobPartResponse {
	name := ""
	if p.Product != nil {
		name = p.Product.Name
	}
	return dto.ServiceJobPartResponse{
		ID:           p.ID,
		ServiceJobID: p.ServiceJobID,
		ProductID:    p.ProductID,
		ProductName:  name,
		Quantity:     p.Quantity,
		PriceAtTime:  p.PriceAtTime,
		LineTotal:    p.LineTotal(),
		AddedByID:    p.AddedByID,
		CreatedAt:    formatTime(p.CreatedAt),
	}
}
