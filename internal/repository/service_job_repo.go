package repository

import (
	"context"
	"time"

	"repairpos/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ServiceJobFilter struct {
	Status *model.JobStatus
	Page   int
	Limit  int
}

// JobCounts holds the dashboard counters. Pending means not yet completed
// or cancelled.
type JobCounts struct {
	Total     int64
	Completed int64
	Pending   int64
	DueToday  int64
}

var openStatuses = []model.JobStatus{model.JobReceived, model.JobInProgress}

type ServiceJobRepository interface {
	CreateTx(tx *gorm.DB, j *model.ServiceJob) error
	ExistsNumberTx(tx *gorm.DB, number string) (bool, error)
	FindByID(ctx context.Context, id uuid.UUID) (*model.ServiceJob, error)
	FindByIDForUpdateTx(tx *gorm.DB, id uuid.UUID) (*model.ServiceJob, error)
	UpdateFieldsTx(tx *gorm.DB, id uuid.UUID, fields map[string]interface{}) error
	List(ctx context.Context, filter ServiceJobFilter) ([]model.ServiceJob, int64, error)
	// Counts reports dashboard counters; due-today covers [dayStart, dayEnd).
	Counts(ctx context.Context, dayStart, dayEnd time.Time) (JobCounts, error)

	// Timeline
	CreateUpdateTx(tx *gorm.DB, u *model.JobUpdate) error
	ListUpdates(ctx context.Context, jobID uuid.UUID, newestFirst bool) ([]model.JobUpdate, error)

	// Parts
	CreatePartTx(tx *gorm.DB, p *model.ServiceJobPart) error
	FindPartByIDTx(tx *gorm.DB, id uuid.UUID) (*model.ServiceJobPart, error)
	DeletePartTx(tx *gorm.DB, id uuid.UUID) (int64, error)

	DB() *gorm.DB
}

type serviceJobRepo struct{ db *gorm.DB }

func NewServiceJobRepository(db *gorm.DB) ServiceJobRepository { return &serviceJobRepo{db: db} }

func (r *serviceJobRepo) DB() *gorm.DB { return r.db }

func (r *serviceJobRepo) CreateTx(tx *gorm.DB, j *model.ServiceJob) error {
	return tx.Create(j).Error
}

func (r *serviceJobRepo) ExistsNumberTx(tx *gorm.DB, number string) (bool, error) {
	var n int64
	err := tx.Model(&model.ServiceJob{}).Where("job_number = ?", number).Count(&n).Error
	return n > 0, err
}

func (r *serviceJobRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.ServiceJob, error) {
	var j model.ServiceJob
	err := r.db.WithContext(ctx).
		Preload("Customer").
		Preload("Parts", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") }).
		Preload("Parts.Product").
		Preload("Updates", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") }).
		Preload("Updates.Author").
		Where("id = ?", id).First(&j).Error
	return &j, err
}

func (r *serviceJobRepo) FindByIDForUpdateTx(tx *gorm.DB, id uuid.UUID) (*model.ServiceJob, error) {
	var j model.ServiceJob
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).First(&j).Error
	return &j, err
}

func (r *serviceJobRepo) UpdateFieldsTx(tx *gorm.DB, id uuid.UUID, fields map[string]interface{}) error {
	res := tx.Model(&model.ServiceJob{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *serviceJobRepo) List(ctx context.Context, filter ServiceJobFilter) ([]model.ServiceJob, int64, error) {
	var jobs []model.ServiceJob
	var total int64
	offset := (filter.Page - 1) * filter.Limit

	q := r.db.WithContext(ctx).Model(&model.ServiceJob{})
	if filter.Status != nil {
		q = q.Where("status = ?", *filter.Status)
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := q.Preload("Customer").
		Order("created_at DESC").
		Offset(offset).Limit(filter.Limit).
		Find(&jobs).Error
	return jobs, total, err
}

func (r *serviceJobRepo) Counts(ctx context.Context, dayStart, dayEnd time.Time) (JobCounts, error) {
	var c JobCounts
	db := r.db.WithContext(ctx)

	if err := db.Model(&model.ServiceJob{}).Count(&c.Total).Error; err != nil {
		return c, err
	}
	if err := db.Model(&model.ServiceJob{}).
		Where("status = ?", model.JobCompleted).Count(&c.Completed).Error; err != nil {
		return c, err
	}
	if err := db.Model(&model.ServiceJob{}).
		Where("status IN ?", openStatuses).Count(&c.Pending).Error; err != nil {
		return c, err
	}
	err := db.Model(&model.ServiceJob{}).
		Where("status IN ?", openStatuses).
		Where("due_date >= ? AND due_date < ?", dayStart, dayEnd).
		Count(&c.DueToday).Error
	return c, err
}

func (r *serviceJobRepo) CreateUpdateTx(tx *gorm.DB, u *model.JobUpdate) error {
	return tx.Create(u).Error
}

func (r *serviceJobRepo) ListUpdates(ctx context.Context, jobID uuid.UUID, newestFirst bool) ([]model.JobUpdate, error) {
	order := "created_at ASC"
	if newestFirst {
		order = "created_at DESC"
	}
	var updates []model.JobUpdate
	err := r.db.WithContext(ctx).Preload("Author").
		Where("service_job_id = ?", jobID).
		Order(order).Find(&updates).Error
	return updates, err
}

func (r *serviceJobRepo) CreatePartTx(tx *gorm.DB, p *model.ServiceJobPart) error {
	return tx.Create(p).Error
}

func (r *serviceJobRepo) FindPartByIDTx(tx *gorm.DB, id uuid.UUID) (*model.ServiceJobPart, error) {
	var p model.ServiceJobPart
	err := tx.Where("id = ?", id).First(&p).Error
	return &p, err
}

func (r *serviceJobRepo) DeletePartTx(tx *gorm.DB, id uuid.UUID) (int64, error) {
	res := tx.Where("id = ?", id).Delete(&model.ServiceJobPart{})
	return res.RowsAffected, res.Error
}
