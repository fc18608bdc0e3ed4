package service

import (
	"context"
	"regexp"
	"testing"
	"time"

	"repairpos/internal/dto"
	"repairpos/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServiceJob_OpenStartsReceived(t *testing.T) {
	f := newFixture(t)
	job := f.openJob(t)

	assert.Regexp(t, regexp.MustCompile(`^SRV\d{6}$`), job.JobNumber)
	assert.Equal(t, "received", job.Status)
	assert.Equal(t, "Walk-in", job.CustomerName)
	assert.Nil(t, job.DueDate)
	assert.Nil(t, job.CompletedAt)
	assert.Empty(t, job.Updates)
	assert.Equal(t, []string{dto.EventServiceJobOpened}, f.events.types())
}

func TestServiceJob_OpenUnknownCustomer(t *testing.T) {
	f := newFixture(t)
	_, err := f.jobs.Open(context.Background(), dto.OpenJobRequest{
		CustomerID: uuid.New(), Title: "x", ProblemDescription: "y",
	})
	var nf *NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, KindCustomer, nf.Kind)
	assert.EqualValues(t, 0, f.count(t, &model.ServiceJob{}))
}

func TestServiceJob_RescheduleThenComplete(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	job := f.openJob(t)

	rescheduled, err := f.jobs.Reschedule(ctx, job.ID, dto.RescheduleJobRequest{
		DueDate:       "2026-03-05T14:30",
		Reason:        "waiting for part",
		ResponsibleID: f.tech.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, "in_progress", rescheduled.Status)
	require.NotNil(t, rescheduled.DueDate)
	// 14:30 in Bangkok (UTC+7) is 07:30 UTC.
	assert.Equal(t, "2026-03-05T07:30:00Z", *rescheduled.DueDate)
	require.Len(t, rescheduled.Updates, 1)
	assert.Contains(t, rescheduled.Updates[0].Summary, "2026-03-05 14:30")
	assert.Contains(t, rescheduled.Updates[0].Summary, "waiting for part")

	completed, err := f.jobs.Complete(ctx, job.ID, dto.CompleteJobRequest{
		ResponsibleID: f.tech.ID,
		Summary:       "Replaced screen",
		TechnicianIDs: []uuid.UUID{f.tech.ID, f.clerk.ID, f.tech.ID},
	})
	require.NoError(t, err)
	assert.Equal(t, "completed", completed.Status)
	require.NotNil(t, completed.CompletedAt)

	require.Len(t, completed.Updates, 2)
	first, err := time.Parse(time.RFC3339, completed.Updates[0].CreatedAt)
	require.NoError(t, err)
	second, err := time.Parse(time.RFC3339, completed.Updates[1].CreatedAt)
	require.NoError(t, err)
	assert.True(t, first.Before(second))
	assert.Contains(t, completed.Updates[1].Summary, "Replaced screen")
	assert.Contains(t, completed.Updates[1].Summary, "Technicians: Anan Chai, Somchai Dee")
	assert.Equal(t, "Anan Chai", completed.Updates[1].AuthorName)

	updates, err := f.jobs.ListUpdates(ctx, job.ID, true)
	require.NoError(t, err)
	require.Len(t, updates, 2)
	assert.Equal(t, completed.Updates[1].ID, updates[0].ID)

	assert.Equal(t, []string{
		dto.EventServiceJobOpened,
		dto.EventServiceJobRescheduled,
		dto.EventServiceJobCompleted,
	}, f.events.types())
}

func TestServiceJob_CompleteTwiceIsRejected(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	job := f.openJob(t)

	_, err := f.jobs.Complete(ctx, job.ID, dto.CompleteJobRequest{ResponsibleID: f.tech.ID, Summary: "done"})
	require.NoError(t, err)

	_, err = f.jobs.Complete(ctx, job.ID, dto.CompleteJobRequest{ResponsibleID: f.tech.ID, Summary: "again"})
	var invalid *InvalidTransitionError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, model.JobCompleted, invalid.From)
	assert.Equal(t, model.JobCompleted, invalid.To)

	detail, err := f.jobs.Get(ctx, job.ID)
	require.NoError(t, err)
	assert.Len(t, detail.Updates, 1)
}

func TestServiceJob_TerminalStatesRejectTransitions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	job := f.openJob(t)

	_, err := f.jobs.Cancel(ctx, job.ID, dto.CancelJobRequest{ResponsibleID: f.tech.ID})
	require.NoError(t, err)

	var invalid *InvalidTransitionError
	_, err = f.jobs.Cancel(ctx, job.ID, dto.CancelJobRequest{ResponsibleID: f.tech.ID})
	assert.ErrorAs(t, err, &invalid)
	_, err = f.jobs.Complete(ctx, job.ID, dto.CompleteJobRequest{ResponsibleID: f.tech.ID, Summary: "late"})
	assert.ErrorAs(t, err, &invalid)
	_, err = f.jobs.Reschedule(ctx, job.ID, dto.RescheduleJobRequest{DueDate: "2026-03-05", Reason: "x", ResponsibleID: f.tech.ID})
	assert.ErrorAs(t, err, &invalid)

	detail, err := f.jobs.Get(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, "cancelled", detail.Status)
	assert.Len(t, detail.Updates, 1)
}

func TestServiceJob_CancelKeepsPartsDeducted(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.product(t, "Board", "800.00", 3)
	job := f.openJob(t)

	_, err := f.parts.AddPart(ctx, job.ID, dto.AddPartRequest{ProductID: p.ID, Quantity: 2, AddedByID: f.tech.ID})
	require.NoError(t, err)
	cancelled, err := f.jobs.Cancel(ctx, job.ID, dto.CancelJobRequest{ResponsibleID: f.tech.ID, Reason: "not repairable"})
	require.NoError(t, err)

	assert.Equal(t, "cancelled", cancelled.Status)
	assert.Len(t, cancelled.Parts, 1)
	assert.Equal(t, "1600.00", cancelled.PartsCost.StringFixed(2))
	assert.Equal(t, 1, f.stockOf(t, p.ID))
}

func TestServiceJob_RescheduleWhileInProgress(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	job := f.openJob(t)

	_, err := f.jobs.Reschedule(ctx, job.ID, dto.RescheduleJobRequest{DueDate: "2026-03-05", Reason: "a", ResponsibleID: f.tech.ID})
	require.NoError(t, err)
	again, err := f.jobs.Reschedule(ctx, job.ID, dto.RescheduleJobRequest{DueDate: "2026-03-06 09:00", Reason: "b", ResponsibleID: f.tech.ID})
	require.NoError(t, err)
	assert.Equal(t, "in_progress", again.Status)
	assert.Equal(t, "2026-03-06T02:00:00Z", *again.DueDate)
	assert.Len(t, again.Updates, 2)
}

func TestServiceJob_FailuresHaveNoSideEffects(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	job := f.openJob(t)
	var nf *NotFoundError

	_, err := f.jobs.Reschedule(ctx, uuid.New(), dto.RescheduleJobRequest{DueDate: "2026-03-05", Reason: "x", ResponsibleID: f.tech.ID})
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, KindServiceJob, nf.Kind)

	_, err = f.jobs.Reschedule(ctx, job.ID, dto.RescheduleJobRequest{DueDate: "next tuesday", Reason: "x", ResponsibleID: f.tech.ID})
	assert.ErrorIs(t, err, ErrInvalidDueDate)

	_, err = f.jobs.Complete(ctx, job.ID, dto.CompleteJobRequest{ResponsibleID: uuid.New(), Summary: "done"})
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, KindUser, nf.Kind)

	_, err = f.jobs.Complete(ctx, job.ID, dto.CompleteJobRequest{
		ResponsibleID: f.tech.ID, Summary: "done", TechnicianIDs: []uuid.UUID{uuid.New()},
	})
	require.ErrorAs(t, err, &nf)

	_, err = f.jobs.Complete(ctx, job.ID, dto.CompleteJobRequest{ResponsibleID: f.tech.ID, Summary: "  "})
	assert.ErrorIs(t, err, ErrEmptySummary)

	detail, err := f.jobs.Get(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, "received", detail.Status)
	assert.Nil(t, detail.DueDate)
	assert.Empty(t, detail.Updates)
}

func TestServiceJob_AddNote(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	job := f.openJob(t)

	note, err := f.jobs.AddNote(ctx, job.ID, dto.AddNoteRequest{AuthorID: f.tech.ID, Summary: "  Opened the case  "})
	require.NoError(t, err)
	assert.Equal(t, "Opened the case", note.Summary)
	assert.Equal(t, "Anan Chai", note.AuthorName)

	detail, err := f.jobs.Get(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, "received", detail.Status)
	assert.Len(t, detail.Updates, 1)

	_, err = f.jobs.AddNote(ctx, job.ID, dto.AddNoteRequest{AuthorID: f.tech.ID, Summary: ""})
	assert.ErrorIs(t, err, ErrEmptySummary)
	_, err = f.jobs.AddNote(ctx, uuid.New(), dto.AddNoteRequest{AuthorID: f.tech.ID, Summary: "x"})
	var nf *NotFoundError
	assert.ErrorAs(t, err, &nf)
}

func TestServiceJob_ListAndStats(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.openJob(t)
	b := f.openJob(t)
	c := f.openJob(t)

	// The fixture clock is on 2026-03-02 in Bangkok.
	_, err := f.jobs.Reschedule(ctx, a.ID, dto.RescheduleJobRequest{DueDate: "2026-03-02 18:00", Reason: "x", ResponsibleID: f.tech.ID})
	require.NoError(t, err)
	_, err = f.jobs.Reschedule(ctx, b.ID, dto.RescheduleJobRequest{DueDate: "2026-03-03 09:00", Reason: "x", ResponsibleID: f.tech.ID})
	require.NoError(t, err)
	_, err = f.jobs.Complete(ctx, c.ID, dto.CompleteJobRequest{ResponsibleID: f.tech.ID, Summary: "quick fix"})
	require.NoError(t, err)

	stats, err := f.jobs.Stats(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 3, stats.Total)
	assert.EqualValues(t, 1, stats.Completed)
	assert.EqualValues(t, 2, stats.Pending)
	assert.EqualValues(t, 1, stats.DueToday)

	list, err := f.jobs.List(ctx, dto.ServiceJobFilter{Status: "in_progress", Page: 1, Limit: 50})
	require.NoError(t, err)
	assert.EqualValues(t, 2, list.Total)

	_, err = f.jobs.List(ctx, dto.ServiceJobFilter{Status: "IN_PROGRESS"})
	assert.ErrorIs(t, err, ErrInvalidStatus)
}

func TestParseDueDate(t *testing.T) {
	loc, err := time.LoadLocation("Asia/Bangkok")
	require.NoError(t, err)

	cases := map[string]string{
		"2026-03-05T14:30":    "2026-03-05T07:30:00Z",
		"2026-03-05 14:30":    "2026-03-05T07:30:00Z",
		"2026-03-05T14:30:15": "2026-03-05T07:30:15Z",
		"2026-03-05":          "2026-03-04T17:00:00Z",
	}
	for in, want := range cases {
		got, err := ParseDueDate(in, loc)
		require.NoError(t, err, in)
		assert.Equal(t, want, got.Format(time.RFC3339), in)
		assert.Equal(t, time.UTC, got.Location())
	}

	_, err = ParseDueDate("05/03/2026", loc)
	assert.ErrorIs(t, err, ErrInvalidDueDate)
}
