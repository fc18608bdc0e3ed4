package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"repairpos/internal/dto"
	"repairpos/internal/model"
	"repairpos/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// ServiceJobService drives the repair-ticket lifecycle. Each transition is
// its own operation and appends exactly one JobUpdate in the same unit of
// work as the status change.
type ServiceJobService interface {
	Open(ctx context.Context, req dto.OpenJobRequest) (*dto.ServiceJobResponse, error)
	Reschedule(ctx context.Context, jobID uuid.UUID, req dto.RescheduleJobRequest) (*dto.ServiceJobResponse, error)
	AddNote(ctx context.Context, jobID uuid.UUID, req dto.AddNoteRequest) (*dto.JobUpdateResponse, error)
	Complete(ctx context.Context, jobID uuid.UUID, req dto.CompleteJobRequest) (*dto.ServiceJobResponse, error)
	Cancel(ctx context.Context, jobID uuid.UUID, req dto.CancelJobRequest) (*dto.ServiceJobResponse, error)

	Get(ctx context.Context, jobID uuid.UUID) (*dto.ServiceJobResponse, error)
	List(ctx context.Context, filter dto.ServiceJobFilter) (*dto.ServiceJobListResponse, error)
	ListUpdates(ctx context.Context, jobID uuid.UUID, newestFirst bool) ([]dto.JobUpdateResponse, error)
	Stats(ctx context.Context) (*dto.JobStatsResponse, error)
}

type serviceJobService struct {
	repo      repository.ServiceJobRepository
	users     repository.UserRepository
	customers repository.CustomerRepository
	ids       *IdentifierGenerator
	events    EventPublisher
	loc       *time.Location
	now       Clock
}

func NewServiceJobService(
	repo repository.ServiceJobRepository,
	users repository.UserRepository,
	customers repository.CustomerRepository,
	ids *IdentifierGenerator,
	events EventPublisher,
	loc *time.Location,
	now Clock,
) ServiceJobService {
	if now == nil {
		now = systemClock
	}
	if loc == nil {
		loc = time.UTC
	}
	return &serviceJobService{
		repo:      repo,
		users:     users,
		customers: customers,
		ids:       ids,
		events:    publisherOrNoop(events),
		loc:       loc,
		now:       now,
	}
}

// dueDateLayouts are the civil date-time forms accepted for a due date.
// A bare date means the start of that business day.
var dueDateLayouts = []string{
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// ParseDueDate reads s as wall-clock time in loc and returns the UTC instant.
func ParseDueDate(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dueDateLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDueDate, s)
}

// ── Open ─────────────────────────────────────────────────────────────────────

func (s *serviceJobService) Open(ctx context.Context, req dto.OpenJobRequest) (*dto.ServiceJobResponse, error) {
	var job model.ServiceJob
	err := withIdentifierRetry(ctx, func() error {
		return runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
			customer, err := s.customers.FindByIDTx(tx, req.CustomerID)
			if err != nil {
				return notFound(err, KindCustomer, req.CustomerID)
			}

			number, err := s.ids.JobNumber(ctx, func(_ context.Context, candidate string) (bool, error) {
				return s.repo.ExistsNumberTx(tx, candidate)
			})
			if err != nil {
				return err
			}

			now := s.now()
			job = model.ServiceJob{
				JobNumber:          number,
				CustomerID:         customer.ID,
				Title:              strings.TrimSpace(req.Title),
				ProblemDescription: req.ProblemDescription,
				Status:             model.JobReceived,
				CreatedAt:          now,
				UpdatedAt:          now,
			}
			if err := s.repo.CreateTx(tx, &job); err != nil {
				return err
			}
			job.Customer = customer
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	log.Info().Str("job_number", job.JobNumber).Msg("service job opened")
	publish(ctx, s.events, dto.EventServiceJobOpened, jobEvent(&job, ""))
	return s.jobToResponse(&job), nil
}

// ── Transitions ──────────────────────────────────────────────────────────────

// prepareFunc supplies the JobUpdate summary and any extra columns for a
// transition. It runs after the job is locked and the move is known legal.
type prepareFunc func(tx *gorm.DB, job *model.ServiceJob, now time.Time) (summary string, fields map[string]interface{}, err error)

func (s *serviceJobService) transition(ctx context.Context, jobID uuid.UUID, to model.JobStatus, authorID uuid.UUID, prepare prepareFunc) (*model.ServiceJob, *model.JobUpdate, error) {
	var (
		job    *model.ServiceJob
		update model.JobUpdate
	)
	err := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		var err error
		job, err = s.repo.FindByIDForUpdateTx(tx, jobID)
		if err != nil {
			return notFound(err, KindServiceJob, jobID)
		}
		if !job.Status.CanTransitionTo(to) {
			return &InvalidTransitionError{From: job.Status, To: to}
		}
		if _, err := s.users.FindByIDTx(tx, authorID); err != nil {
			return notFound(err, KindUser, authorID)
		}

		now := s.now()
		summary, fields, err := prepare(tx, job, now)
		if err != nil {
			return err
		}
		if fields == nil {
			fields = map[string]interface{}{}
		}
		fields["status"] = to
		fields["updated_at"] = now
		if err := s.repo.UpdateFieldsTx(tx, job.ID, fields); err != nil {
			return err
		}

		update = model.JobUpdate{
			ServiceJobID: job.ID,
			AuthorID:     authorID,
			Summary:      summary,
			CreatedAt:    now,
		}
		if err := s.repo.CreateUpdateTx(tx, &update); err != nil {
			return err
		}
		job.Status = to
		job.UpdatedAt = now
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return job, &update, nil
}

func (s *serviceJobService) Reschedule(ctx context.Context, jobID uuid.UUID, req dto.RescheduleJobRequest) (*dto.ServiceJobResponse, error) {
	due, err := ParseDueDate(req.DueDate, s.loc)
	if err != nil {
		return nil, err
	}

	job, _, err := s.transition(ctx, jobID, model.JobInProgress, req.ResponsibleID,
		func(_ *gorm.DB, job *model.ServiceJob, _ time.Time) (string, map[string]interface{}, error) {
			job.DueDate = &due
			summary := fmt.Sprintf("Rescheduled to %s", due.In(s.loc).Format("2006-01-02 15:04"))
			if reason := strings.TrimSpace(req.Reason); reason != "" {
				summary += ". Reason: " + reason
			}
			return summary, map[string]interface{}{"due_date": due}, nil
		})
	if err != nil {
		return nil, err
	}

	log.Info().Str("job_number", job.JobNumber).Time("due_date", due).Msg("service job rescheduled")
	publish(ctx, s.events, dto.EventServiceJobRescheduled, jobEvent(job, req.Reason))
	return s.Get(ctx, job.ID)
}

func (s *serviceJobService) Complete(ctx context.Context, jobID uuid.UUID, req dto.CompleteJobRequest) (*dto.ServiceJobResponse, error) {
	closing := strings.TrimSpace(req.Summary)
	if closing == "" {
		return nil, ErrEmptySummary
	}

	job, update, err := s.transition(ctx, jobID, model.JobCompleted, req.ResponsibleID,
		func(tx *gorm.DB, job *model.ServiceJob, now time.Time) (string, map[string]interface{}, error) {
			names, err := s.technicianNames(tx, req.TechnicianIDs)
			if err != nil {
				return "", nil, err
			}
			summary := closing
			if len(names) > 0 {
				summary += "\nTechnicians: " + strings.Join(names, ", ")
			}
			job.CompletedAt = &now
			return summary, map[string]interface{}{"completed_at": now}, nil
		})
	if err != nil {
		return nil, err
	}

	log.Info().Str("job_number", job.JobNumber).Msg("service job completed")
	publish(ctx, s.events, dto.EventServiceJobCompleted, jobEvent(job, update.Summary))
	return s.Get(ctx, job.ID)
}

// Cancel closes the job. Parts already consumed stay deducted from stock so
// the job keeps its historical cost.
func (s *serviceJobService) Cancel(ctx context.Context, jobID uuid.UUID, req dto.CancelJobRequest) (*dto.ServiceJobResponse, error) {
	job, _, err := s.transition(ctx, jobID, model.JobCancelled, req.ResponsibleID,
		func(*gorm.DB, *model.ServiceJob, time.Time) (string, map[string]interface{}, error) {
			summary := "Cancelled"
			if reason := strings.TrimSpace(req.Reason); reason != "" {
				summary += ": " + reason
			}
			return summary, nil, nil
		})
	if err != nil {
		return nil, err
	}

	log.Info().Str("job_number", job.JobNumber).Msg("service job cancelled")
	publish(ctx, s.events, dto.EventServiceJobCancelled, jobEvent(job, req.Reason))
	return s.Get(ctx, job.ID)
}

// technicianNames resolves ids in request order, skipping repeats.
func (s *serviceJobService) technicianNames(tx *gorm.DB, ids []uuid.UUID) ([]string, error) {
	unique := make([]uuid.UUID, 0, len(ids))
	seen := make(map[uuid.UUID]bool, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			unique = append(unique, id)
		}
	}
	users, err := s.users.FindByIDsTx(tx, unique)
	if err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]*model.User, len(users))
	for i := range users {
		byID[users[i].ID] = &users[i]
	}

	names := make([]string, 0, len(unique))
	for _, id := range unique {
		u, ok := byID[id]
		if !ok {
			return nil, &NotFoundError{Kind: KindUser, ID: id}
		}
		names = append(names, u.FullName())
	}
	return names, nil
}

// ── Progress notes ───────────────────────────────────────────────────────────

// AddNote appends a free-text entry without touching status. Notes are
// accepted on closed jobs too.
func (s *serviceJobService) AddNote(ctx context.Context, jobID uuid.UUID, req dto.AddNoteRequest) (*dto.JobUpdateResponse, error) {
	summary := strings.TrimSpace(req.Summary)
	if summary == "" {
		return nil, ErrEmptySummary
	}

	var update model.JobUpdate
	err := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		job, err := s.repo.FindByIDForUpdateTx(tx, jobID)
		if err != nil {
			return notFound(err, KindServiceJob, jobID)
		}
		author, err := s.users.FindByIDTx(tx, req.AuthorID)
		if err != nil {
			return notFound(err, KindUser, req.AuthorID)
		}
		update = model.JobUpdate{
			ServiceJobID: job.ID,
			AuthorID:     author.ID,
			Summary:      summary,
			CreatedAt:    s.now(),
		}
		if err := s.repo.CreateUpdateTx(tx, &update); err != nil {
			return err
		}
		update.Author = author
		return nil
	})
	if err != nil {
		return nil, err
	}
	resp := updateToResponse(&update)
	return &resp, nil
}

// ── Queries ──────────────────────────────────────────────────────────────────

func (s *serviceJobService) Get(ctx context.Context, jobID uuid.UUID) (*dto.ServiceJobResponse, error) {
	job, err := s.repo.FindByID(ctx, jobID)
	if err != nil {
		return nil, notFound(err, KindServiceJob, jobID)
	}
	return s.jobToResponse(job), nil
}

func (s *serviceJobService) List(ctx context.Context, filter dto.ServiceJobFilter) (*dto.ServiceJobListResponse, error) {
	page, limit := pageDefaults(filter.Page, filter.Limit, 200)
	q := repository.ServiceJobFilter{Page: page, Limit: limit}
	if filter.Status != "" {
		status, err := model.ParseJobStatus(filter.Status)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, filter.Status)
		}
		q.Status = &status
	}

	jobs, total, err := s.repo.List(ctx, q)
	if err != nil {
		return nil, err
	}
	resp := &dto.ServiceJobListResponse{
		Data:  make([]dto.ServiceJobResponse, 0, len(jobs)),
		Total: total,
		Page:  page,
		Limit: limit,
	}
	for i := range jobs {
		resp.Data = append(resp.Data, *s.jobToResponse(&jobs[i]))
	}
	return resp, nil
}

func (s *serviceJobService) ListUpdates(ctx context.Context, jobID uuid.UUID, newestFirst bool) ([]dto.JobUpdateResponse, error) {
	if _, err := s.repo.FindByID(ctx, jobID); err != nil {
		return nil, notFound(err, KindServiceJob, jobID)
	}
	updates, err := s.repo.ListUpdates(ctx, jobID, newestFirst)
	if err != nil {
		return nil, err
	}
	out := make([]dto.JobUpdateResponse, 0, len(updates))
	for i := range updates {
		out = append(out, updateToResponse(&updates[i]))
	}
	return out, nil
}

// Stats counts jobs for the dashboard. "Due today" uses the business day in
// the configured timezone.
func (s *serviceJobService) Stats(ctx context.Context) (*dto.JobStatsResponse, error) {
	local := s.now().In(s.loc)
	dayStart := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, s.loc)
	dayEnd := dayStart.AddDate(0, 0, 1)

	c, err := s.repo.Counts(ctx, dayStart.UTC(), dayEnd.UTC())
	if err != nil {
		return nil, err
	}
	return &dto.JobStatsResponse{
		Total:     c.Total,
		Completed: c.Completed,
		Pending:   c.Pending,
		DueToday:  c.DueToday,
	}, nil
}

// ── Mapping ──────────────────────────────────────────────────────────────────

func (s *serviceJobService) jobToResponse(j *model.ServiceJob) *dto.ServiceJobResponse {
	resp := &dto.ServiceJobResponse{
		ID:                 j.ID,
		JobNumber:          j.JobNumber,
		CustomerID:         j.CustomerID,
		Title:              j.Title,
		ProblemDescription: j.ProblemDescription,
		Status:             j.Status.String(),
		DueDate:            formatTimePtr(j.DueDate),
		CompletedAt:        formatTimePtr(j.CompletedAt),
		CreatedAt:          formatTime(j.CreatedAt),
		PartsCost:          j.PartsCost(),
		Parts:              make([]dto.ServiceJobPartResponse, 0, len(j.Parts)),
		Updates:            make([]dto.JobUpdateResponse, 0, len(j.Updates)),
	}
	if j.Customer != nil {
		resp.CustomerName = j.Customer.Name
	}
	for i := range j.Parts {
		resp.Parts = append(resp.Parts, partToResponse(&j.Parts[i]))
	}
	for i := range j.Updates {
		resp.Updates = append(resp.Updates, updateToResponse(&j.Updates[i]))
	}
	return resp
}

func updateToResponse(u *model.JobUpdate) dto.JobUpdateResponse {
	resp := dto.JobUpdateResponse{
		ID:        u.ID,
		AuthorID:  u.AuthorID,
		Summary:   u.Summary,
		CreatedAt: formatTime(u.CreatedAt),
	}
	if u.Author != nil {
		resp.AuthorName = u.Author.FullName()
	}
	return resp
}

func jobEvent(j *model.ServiceJob, summary string) dto.ServiceJobEvent {
	return dto.ServiceJobEvent{
		JobID:     j.ID,
		JobNumber: j.JobNumber,
		Status:    j.Status.String(),
		DueDate:   formatTimePtr(j.DueDate),
		Summary:   summary,
	}
}
