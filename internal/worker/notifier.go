package worker

// notifier.go
// Turns domain events into one-line customer/staff notifications in the
// shop's locale. Delivery is delegated to a Sink; the default sink only
// logs, external messaging bots read the same events from the queue.

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"repairpos/internal/dto"

	"github.com/rs/zerolog/log"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Message keys double as the English text.
const (
	msgSaleCommitted  = "Sale %s completed: %d item(s), total %s"
	msgJobOpened      = "Repair %s received"
	msgJobRescheduled = "Repair %s rescheduled to %s"
	msgJobCompleted   = "Repair %s is ready for pickup"
	msgJobCancelled   = "Repair %s was cancelled"
)

func init() {
	th := language.Thai
	for key, text := range map[string]string{
		msgSaleCommitted:  "การขาย %s สำเร็จ: %d รายการ ยอดรวม %s บาท",
		msgJobOpened:      "รับงานซ่อม %s แล้ว",
		msgJobRescheduled: "งานซ่อม %s เลื่อนนัดเป็น %s",
		msgJobCompleted:   "งานซ่อม %s เสร็จแล้ว พร้อมรับเครื่อง",
		msgJobCancelled:   "งานซ่อม %s ถูกยกเลิก",
	} {
		_ = message.SetString(th, key, text)
	}
}

// Sink delivers rendered notifications.
type Sink interface {
	Deliver(ctx context.Context, env Envelope, text string) error
}

// LogSink writes notifications to the structured log.
type LogSink struct{}

func (LogSink) Deliver(_ context.Context, env Envelope, text string) error {
	log.Info().Str("event", env.Type).Str("event_id", env.ID).Str("text", text).Msg("notification")
	return nil
}

type Notifier struct {
	printer *message.Printer
	loc     *time.Location
	sink    Sink
}

// NewNotifier renders in locale (a BCP 47 tag such as "th" or "en"); unknown
// tags fall back to English. Times are shown as wall clock in loc.
func NewNotifier(locale string, loc *time.Location, sink Sink) *Notifier {
	tag, err := language.Parse(locale)
	if err != nil {
		tag = language.English
	}
	if loc == nil {
		loc = time.UTC
	}
	if sink == nil {
		sink = LogSink{}
	}
	return &Notifier{printer: message.NewPrinter(tag), loc: loc, sink: sink}
}

// Register subscribes the notifier to every domain event.
func (n *Notifier) Register(p *Pool) {
	for _, t := range []string{
		dto.EventSaleCommitted,
		dto.EventServiceJobOpened,
		dto.EventServiceJobRescheduled,
		dto.EventServiceJobCompleted,
		dto.EventServiceJobCancelled,
	} {
		p.Handle(t, n.Handle)
	}
}

func (n *Notifier) Handle(ctx context.Context, env Envelope) error {
	text, err := n.Render(env)
	if err != nil {
		return err
	}
	return n.sink.Deliver(ctx, env, text)
}

// Render formats the notification line for env.
func (n *Notifier) Render(env Envelope) (string, error) {
	switch env.Type {
	case dto.EventSaleCommitted:
		var e dto.SaleCommittedEvent
		if err := json.Unmarshal(env.Payload, &e); err != nil {
			return "", fmt.Errorf("decoding %s: %w", env.Type, err)
		}
		return n.printer.Sprintf(msgSaleCommitted, e.SaleNumber, e.ItemCount, e.TotalAmount.StringFixed(2)), nil

	case dto.EventServiceJobOpened, dto.EventServiceJobRescheduled,
		dto.EventServiceJobCompleted, dto.EventServiceJobCancelled:
		var e dto.ServiceJobEvent
		if err := json.Unmarshal(env.Payload, &e); err != nil {
			return "", fmt.Errorf("decoding %s: %w", env.Type, err)
		}
		switch env.Type {
		case dto.EventServiceJobOpened:
			return n.printer.Sprintf(msgJobOpened, e.JobNumber), nil
		case dto.EventServiceJobRescheduled:
			due := ""
			if e.DueDate != nil {
				due = *e.DueDate
				if t, err := time.Parse(time.RFC3339, due); err == nil {
					due = t.In(n.loc).Format("2006-01-02 15:04")
				}
			}
			return n.printer.Sprintf(msgJobRescheduled, e.JobNumber, due), nil
		case dto.EventServiceJobCompleted:
			return n.printer.Sprintf(msgJobCompleted, e.JobNumber), nil
		default:
			return n.printer.Sprintf(msgJobCancelled, e.JobNumber), nil
		}
	}
	return "", fmt.Errorf("no notification template for %q", env.Type)
}
