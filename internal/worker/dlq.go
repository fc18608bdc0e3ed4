package worker

// dlq.go: dead letter queue
// Events whose handler keeps failing are moved here for manual inspection.
// Uses a Redis list per source queue: dlq:{original_queue}

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog/log"
)

const DLQPrefix = "dlq:"

// DLQEntry wraps a failed event with metadata for debugging.
type DLQEntry struct {
	OriginalQueue string   `json:"original_queue"`
	Event         Envelope `json:"event"`
	Reason        string   `json:"reason"`
	FailedAt      string   `json:"failed_at"` // ISO 8601
}

// SendToDLQ pushes a failed event to the dead letter queue.
func SendToDLQ(ctx context.Context, q Queue, queue string, env Envelope, reason string) {
	entry := DLQEntry{
		OriginalQueue: queue,
		Event:         env,
		Reason:        reason,
		FailedAt:      time.Now().UTC().Format(time.RFC3339),
	}

	data, err := json.Marshal(entry)
	if err != nil {
		log.Error().Err(err).Str("queue", queue).Msg("dlq: failed to marshal entry")
		return
	}

	dlqKey := DLQPrefix + queue
	if err := q.Push(ctx, dlqKey, data); err != nil {
		log.Error().Err(err).Str("dlq_key", dlqKey).Msg("dlq: failed to push to DLQ")
		return
	}

	log.Warn().
		Str("queue", queue).
		Str("event_type", env.Type).
		Str("event_id", env.ID).
		Str("reason", reason).
		Int("attempts", env.Attempts).
		Msg("dlq: event moved to dead letter queue")
}

// DLQLength returns the number of entries in a DLQ for monitoring.
func DLQLength(ctx context.Context, q Queue, queue string) (int64, error) {
	return q.Len(ctx, DLQPrefix+queue)
}
