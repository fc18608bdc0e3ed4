package service

import (
	"context"

	"github.com/rs/zerolog/log"
)

// EventPublisher hands domain events to the async pipeline. Services publish
// only after their unit of work has committed.
type EventPublisher interface {
	Publish(ctx context.Context, eventType string, payload any) error
}

type noopPublisher struct{}

func (noopPublisher) Publish(context.Context, string, any) error { return nil }

func publisherOrNoop(p EventPublisher) EventPublisher {
	if p == nil {
		return noopPublisher{}
	}
	return p
}

// publish is best-effort: the business operation already committed, so a
// broker failure is logged and swallowed.
func publish(ctx context.Context, p EventPublisher, eventType string, payload any) {
	if err := p.Publish(ctx, eventType, payload); err != nil {
		log.Warn().Err(err).Str("event", eventType).Msg("event publish failed")
	}
}
