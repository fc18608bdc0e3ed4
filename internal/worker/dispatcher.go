package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"repairpos/internal/infra"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const defaultMaxPending = 1000

// Dispatcher publishes domain events onto QueueEvents through a circuit
// breaker. Events that cannot be pushed are kept in a bounded buffer and
// flushed by RunRetry once the broker is reachable again.
type Dispatcher struct {
	queue      Queue
	cb         *infra.CircuitBreaker
	now        func() time.Time
	maxPending int

	mu      sync.Mutex
	pending [][]byte
}

func NewDispatcher(queue Queue, cb *infra.CircuitBreaker) *Dispatcher {
	return &Dispatcher{
		queue:      queue,
		cb:         cb,
		now:        func() time.Time { return time.Now().UTC() },
		maxPending: defaultMaxPending,
	}
}

// Publish wraps payload in an Envelope and pushes it. On failure the event is
// buffered for retry and the push error is still returned to the caller.
func (d *Dispatcher) Publish(ctx context.Context, eventType string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encoding %s payload: %w", eventType, err)
	}
	data, err := json.Marshal(Envelope{
		ID:          uuid.NewString(),
		Type:        eventType,
		Payload:     body,
		PublishedAt: d.now(),
	})
	if err != nil {
		return err
	}

	if err := d.push(ctx, data); err != nil {
		d.buffer(data)
		return fmt.Errorf("publishing %s (buffered for retry): %w", eventType, err)
	}
	return nil
}

// Pending reports how many events wait in the retry buffer.
func (d *Dispatcher) Pending() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.pending)
}

// BreakerState exposes the breaker for the health endpoint.
func (d *Dispatcher) BreakerState() infra.CBState { return d.cb.State() }

// DeadLetters reports the DLQ depth of the events queue.
func (d *Dispatcher) DeadLetters(ctx context.Context) (int64, error) {
	return DLQLength(ctx, d.queue, QueueEvents)
}

func (d *Dispatcher) push(ctx context.Context, data []byte) error {
	return d.cb.Execute(ctx, func(ctx context.Context) error {
		return d.queue.Push(ctx, QueueEvents, data)
	})
}

func (d *Dispatcher) buffer(data []byte) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.pending) >= d.maxPending {
		// drop the oldest so the newest state changes survive
		d.pending = d.pending[1:]
		log.Error().Int("max_pending", d.maxPending).Msg("dispatcher: retry buffer full, dropping oldest event")
	}
	d.pending = append(d.pending, data)
}

// takePending empties the buffer and returns its contents in publish order.
func (d *Dispatcher) takePending() [][]byte {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := d.pending
	d.pending = nil
	return out
}

// requeueFront puts unsent events back ahead of anything buffered meanwhile.
func (d *Dispatcher) requeueFront(events [][]byte) {
	if len(events) == 0 {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.pending = append(append([][]byte{}, events...), d.pending...)
	if over := len(d.pending) - d.maxPending; over > 0 {
		d.pending = d.pending[over:]
	}
}
