package service

import (
	"context"
	"testing"

	"repairpos/internal/dto"
	"repairpos/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (f *fixture) openJob(t *testing.T) *dto.ServiceJobResponse {
	t.Helper()
	job, err := f.jobs.Open(context.Background(), dto.OpenJobRequest{
		CustomerID:         f.customer.ID,
		Title:              "Phone screen",
		ProblemDescription: "Cracked display",
	})
	require.NoError(t, err)
	return job
}

func TestPartUsage_AddThenRemoveRestoresStock(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.product(t, "Screen", "1500.00", 5)
	job := f.openJob(t)

	part, err := f.parts.AddPart(ctx, job.ID, dto.AddPartRequest{ProductID: p.ID, Quantity: 3, AddedByID: f.tech.ID})
	require.NoError(t, err)
	assert.Equal(t, 2, f.stockOf(t, p.ID))
	assert.Equal(t, "1500.00", part.PriceAtTime.StringFixed(2))
	assert.Equal(t, "4500.00", part.LineTotal.StringFixed(2))
	assert.Equal(t, "Screen", part.ProductName)

	detail, err := f.jobs.Get(ctx, job.ID)
	require.NoError(t, err)
	require.Len(t, detail.Parts, 1)
	assert.Equal(t, "4500.00", detail.PartsCost.StringFixed(2))

	require.NoError(t, f.parts.RemovePart(ctx, part.ID))
	assert.Equal(t, 5, f.stockOf(t, p.ID))
	assert.EqualValues(t, 0, f.count(t, &model.ServiceJobPart{}))
	assert.EqualValues(t, 2, f.count(t, &model.StockMovement{}))
}

func TestPartUsage_PriceSnapshotSurvivesPriceChange(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.product(t, "Battery", "300.00", 5)
	job := f.openJob(t)

	_, err := f.parts.AddPart(ctx, job.ID, dto.AddPartRequest{ProductID: p.ID, Quantity: 1, AddedByID: f.tech.ID})
	require.NoError(t, err)
	require.NoError(t, f.db.Model(&model.Product{}).Where("id = ?", p.ID).Update("price", "450.00").Error)

	detail, err := f.jobs.Get(ctx, job.ID)
	require.NoError(t, err)
	require.Len(t, detail.Parts, 1)
	assert.Equal(t, "300.00", detail.Parts[0].PriceAtTime.StringFixed(2))
}

func TestPartUsage_InsufficientStockCreatesNothing(t *testing.T) {
	f := newFixture(t)
	p := f.product(t, "Screen", "1500.00", 2)
	job := f.openJob(t)

	_, err := f.parts.AddPart(context.Background(), job.ID, dto.AddPartRequest{ProductID: p.ID, Quantity: 3, AddedByID: f.tech.ID})
	var insufficient *InsufficientStockError
	require.ErrorAs(t, err, &insufficient)
	assert.Equal(t, 3, insufficient.Requested)
	assert.Equal(t, 2, insufficient.Available)
	assert.Equal(t, 2, f.stockOf(t, p.ID))
	assert.EqualValues(t, 0, f.count(t, &model.ServiceJobPart{}))
}

func TestPartUsage_UnknownReferences(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.product(t, "Screen", "1500.00", 2)
	job := f.openJob(t)
	var nf *NotFoundError

	_, err := f.parts.AddPart(ctx, uuid.New(), dto.AddPartRequest{ProductID: p.ID, Quantity: 1, AddedByID: f.tech.ID})
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, KindServiceJob, nf.Kind)

	_, err = f.parts.AddPart(ctx, job.ID, dto.AddPartRequest{ProductID: uuid.New(), Quantity: 1, AddedByID: f.tech.ID})
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, KindProduct, nf.Kind)

	_, err = f.parts.AddPart(ctx, job.ID, dto.AddPartRequest{ProductID: p.ID, Quantity: 1, AddedByID: uuid.New()})
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, KindUser, nf.Kind)

	err = f.parts.RemovePart(ctx, uuid.New())
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, KindServiceJobPart, nf.Kind)

	assert.Equal(t, 2, f.stockOf(t, p.ID))
}

func TestPartUsage_RemoveTwiceReleasesOnce(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.product(t, "Screw", "2.00", 10)
	job := f.openJob(t)

	part, err := f.parts.AddPart(ctx, job.ID, dto.AddPartRequest{ProductID: p.ID, Quantity: 4, AddedByID: f.tech.ID})
	require.NoError(t, err)
	require.NoError(t, f.parts.RemovePart(ctx, part.ID))

	var nf *NotFoundError
	assert.ErrorAs(t, f.parts.RemovePart(ctx, part.ID), &nf)
	assert.Equal(t, 10, f.stockOf(t, p.ID))
}

func TestPartUsage_ClosedJobsStillTakeAndReturnParts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.product(t, "Screen", "1500.00", 5)

	completed := f.openJob(t)
	part, err := f.parts.AddPart(ctx, completed.ID, dto.AddPartRequest{ProductID: p.ID, Quantity: 3, AddedByID: f.tech.ID})
	require.NoError(t, err)
	_, err = f.jobs.Complete(ctx, completed.ID, dto.CompleteJobRequest{ResponsibleID: f.tech.ID, Summary: "Screen replaced"})
	require.NoError(t, err)
	assert.Equal(t, 2, f.stockOf(t, p.ID))

	require.NoError(t, f.parts.RemovePart(ctx, part.ID))
	assert.Equal(t, 5, f.stockOf(t, p.ID))

	cancelled := f.openJob(t)
	part, err = f.parts.AddPart(ctx, cancelled.ID, dto.AddPartRequest{ProductID: p.ID, Quantity: 2, AddedByID: f.tech.ID})
	require.NoError(t, err)
	_, err = f.jobs.Cancel(ctx, cancelled.ID, dto.CancelJobRequest{ResponsibleID: f.tech.ID, Reason: "customer declined"})
	require.NoError(t, err)
	assert.Equal(t, 3, f.stockOf(t, p.ID), "cancel does not release parts")

	late, err := f.parts.AddPart(ctx, cancelled.ID, dto.AddPartRequest{ProductID: p.ID, Quantity: 1, AddedByID: f.tech.ID})
	require.NoError(t, err)
	assert.Equal(t, 2, f.stockOf(t, p.ID))

	require.NoError(t, f.parts.RemovePart(ctx, part.ID))
	require.NoError(t, f.parts.RemovePart(ctx, late.ID))
	assert.Equal(t, 5, f.stockOf(t, p.ID))

	detail, err := f.jobs.Get(ctx, cancelled.ID)
	require.NoError(t, err)
	assert.Equal(t, "cancelled", detail.Status)
	assert.Empty(t, detail.Parts)
}
