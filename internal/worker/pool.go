package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultMaxAttempts = 3
	popTimeout         = 5 * time.Second
	popErrorBackoff    = time.Second
)

// Handler processes one event. A returned error re-queues the event until
// the attempt bound is reached, then it goes to the DLQ.
type Handler func(ctx context.Context, env Envelope) error

// Pool consumes QueueEvents with a fixed number of workers. Each worker
// blocks on BRPOP, so it costs nothing while idle.
type Pool struct {
	queue       Queue
	workers     int
	maxAttempts int
	handlers    map[string]Handler
}

func NewPool(queue Queue, workers int) *Pool {
	if workers < 1 {
		workers = 1
	}
	return &Pool{
		queue:       queue,
		workers:     workers,
		maxAttempts: DefaultMaxAttempts,
		handlers:    make(map[string]Handler),
	}
}

// Handle registers h for eventType. Call before Run.
func (p *Pool) Handle(eventType string, h Handler) {
	p.handlers[eventType] = h
}

// Run blocks until ctx is cancelled and every worker has returned.
func (p *Pool) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	for i := 0; i < p.workers; i++ {
		id := i
		g.Go(func() error { return p.runWorker(ctx, id) })
	}
	log.Info().Msgf("worker pool started with %d workers", p.workers)
	return g.Wait()
}

func (p *Pool) runWorker(ctx context.Context, id int) error {
	for {
		if ctx.Err() != nil {
			log.Info().Msgf("worker %d shutting down", id)
			return nil
		}
		raw, err := p.queue.Pop(ctx, QueueEvents, popTimeout)
		if err != nil {
			if errors.Is(err, ErrQueueEmpty) || ctx.Err() != nil {
				continue
			}
			log.Error().Err(err).Int("worker", id).Msg("worker: pop failed")
			select {
			case <-ctx.Done():
			case <-time.After(popErrorBackoff):
			}
			continue
		}
		p.process(ctx, raw)
	}
}

func (p *Pool) process(ctx context.Context, raw []byte) {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		log.Error().Err(err).Str("queue", QueueEvents).Msg("failed to unmarshal event")
		quoted, _ := json.Marshal(string(raw))
		SendToDLQ(ctx, p.queue, QueueEvents, Envelope{Payload: quoted}, "malformed envelope")
		return
	}

	h, ok := p.handlers[env.Type]
	if !ok {
		SendToDLQ(ctx, p.queue, QueueEvents, env, "no handler registered")
		return
	}

	err := h(ctx, env)
	if err == nil {
		log.Debug().Str("type", env.Type).Str("event_id", env.ID).Msg("event processed")
		return
	}

	env.Attempts++
	if env.Attempts >= p.maxAttempts {
		SendToDLQ(ctx, p.queue, QueueEvents, env, err.Error())
		return
	}
	data, mErr := json.Marshal(env)
	if mErr == nil {
		mErr = p.queue.Push(ctx, QueueEvents, data)
	}
	if mErr != nil {
		SendToDLQ(ctx, p.queue, QueueEvents, env, fmt.Sprintf("requeue failed: %v (handler: %v)", mErr, err))
		return
	}
	log.Warn().Err(err).Str("type", env.Type).Int("attempts", env.Attempts).Msg("event handler failed, requeued")
}
