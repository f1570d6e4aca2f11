package notify

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"github.com/hackgods/pickup-appointment-scheduling/internal/appointment"
	"github.com/hackgods/pickup-appointment-scheduling/internal/clock"
)

var ErrNoRecipient = errors.New("notice has no recipient")

// Sink delivers a rendered message.
type Sink interface {
	Send(ctx context.Context, msg Message) error
}

// Notifier renders appointment notices and hands them to a Sink. Notices
// without a recipient are dropped with ErrNoRecipient.
type Notifier struct {
	sink  Sink
	cc    []string
	clock clock.Clock
}

func New(sink Sink, cc []string, clk clock.Clock) *Notifier {
	if clk == nil {
		clk = clock.NewReal()
	}
	return &Notifier{sink: sink, cc: cc, clock: clk}
}

var _ appointment.Notifier = (*Notifier)(nil)

func (n *Notifier) BookingConfirmed(ctx context.Context, orderKey string, slot time.Time, email string) error {
	return n.deliver(ctx, bookedMessage(orderKey, slot, email))
}

func (n *Notifier) Cancelled(ctx context.Context, orderKey, date, timeOfDay, email string) error {
	return n.deliver(ctx, cancelledMessage(orderKey, date, timeOfDay, email))
}

func (n *Notifier) Rescheduled(ctx context.Context, orderKey, oldDate, oldTime string, newSlot time.Time, email string) error {
	return n.deliver(ctx, rescheduledMessage(orderKey, oldDate, oldTime, newSlot, email))
}

func (n *Notifier) deliver(ctx context.Context, msg Message) error {
	if msg.To == "" {
		return errors.Wrapf(ErrNoRecipient, "%s for order %s", msg.Kind, msg.OrderNumber)
	}
	msg.CC = n.cc
	msg.OccurredAt = n.clock.Now()
	if err := n.sink.Send(ctx, msg); err != nil {
		return errors.Wrapf(err, "send %s for order %s", msg.Kind, msg.OrderNumber)
	}
	return nil
}

// LogSink writes notices to the application log instead of delivering them.
type LogSink struct {
	log *zap.Logger
}

func NewLogSink(log *zap.Logger) *LogSink {
	return &LogSink{log: log}
}

func (s *LogSink) Send(ctx context.Context, msg Message) error {
	s.log.Info("customer notice",
		zap.String("kind", msg.Kind),
		zap.String("order_number", msg.OrderNumber),
		zap.String("to", msg.To),
		zap.Strings("cc", msg.CC),
		zap.String("subject", msg.Subject),
		zap.String("body", msg.Body),
	)
	return nil
}
