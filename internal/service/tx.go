package service

import (
	"context"
	"time"

	"gorm.io/gorm"
)

// Clock returns the current instant. Services store every timestamp in UTC.
type Clock func() time.Time

func systemClock() time.Time { return time.Now().UTC() }

// runTx executes fn inside a GORM transaction. Returning an error from fn
// rolls back everything fn wrote, including stock changes.
func runTx(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	return db.WithContext(ctx).Transaction(fn)
}

// pageDefaults fills zero paging values left by callers that skipped binding.
func pageDefaults(page, limit, maxLimit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > maxLimit {
		limit = maxLimit
	}
	return page, limit
}

func formatTime(t time.Time) string { return t.UTC().Format(time.RFC3339) }

func formatTimePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := formatTime(*t)
	return &s
}
