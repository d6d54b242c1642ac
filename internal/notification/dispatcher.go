// Package notification carries reservation and payment lifecycle events to
// the participants. Delivery is best-effort: a failed or dropped event is
// logged and never reported back to the operation that produced it.
package notification

import (
	"context"

	"tutorbook_backend/internal/model"

	"go.uber.org/zap"
)

type EventType string

const (
	EventReservationCreated   EventType = "reservation_created"
	EventReservationConfirmed EventType = "reservation_confirmed"
	EventReservationCompleted EventType = "reservation_completed"
	EventReservationCancelled EventType = "reservation_cancelled"
	EventPaymentCompleted     EventType = "payment_completed"
)

// Event is an immutable snapshot taken after the transition committed.
// ActorRole identifies who drove the transition; for cancellations the
// channels use it to notify only the other participant.
type Event struct {
	Type          EventType
	Reservation   model.Reservation
	PreviousState model.ReservationState
	NewState      model.ReservationState
	ActorRole     model.Role
	Payment       *model.Payment
}

// Dispatcher accepts events from the core. Notify must never block the
// caller and must never fail into it.
type Dispatcher interface {
	Notify(ctx context.Context, e Event)
}

// Channel is one concrete delivery medium behind the dispatcher.
type Channel interface {
	Name() string
	Send(ctx context.Context, e Event) error
}

const queueSize = 256

// AsyncDispatcher fans events out to its channels from a single background
// worker. A full queue drops the event with a warning; the producing
// transition has already committed and is not affected.
type AsyncDispatcher struct {
	channels []Channel
	logger   *zap.Logger
	queue    chan Event
	stop     chan struct{}
	done     chan struct{}
}

func NewAsyncDispatcher(logger *zap.Logger, channels ...Channel) *AsyncDispatcher {
	return &AsyncDispatcher{
		channels: channels,
		logger:   logger,
		queue:    make(chan Event, queueSize),
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start launches the delivery worker.
func (d *AsyncDispatcher) Start(ctx context.Context) {
	d.logger.Info("Starting notification dispatcher", zap.Int("channels", len(d.channels)))
	go d.run(ctx)
}

// Stop drains pending events and waits for the worker to exit.
func (d *AsyncDispatcher) Stop() {
	d.logger.Info("Stopping notification dispatcher")
	close(d.stop)
	<-d.done
}

// Notify enqueues the event without blocking.
func (d *AsyncDispatcher) Notify(_ context.Context, e Event) {
	select {
	case d.queue <- e:
	default:
		d.logger.Warn("Notification queue full, event dropped",
			zap.String("event", string(e.Type)),
			zap.Int64("reservation_id", e.Reservation.ID),
		)
	}
}

func (d *AsyncDispatcher) run(ctx context.Context) {
	defer close(d.done)

	for {
		select {
		case e := <-d.queue:
			d.deliver(ctx, e)
		case <-d.stop:
			d.drain(ctx)
			return
		case <-ctx.Done():
			d.logger.Info("Notification dispatcher cancelled")
			return
		}
	}
}

func (d *AsyncDispatcher) drain(ctx context.Context) {
	for {
		select {
		case e := <-d.queue:
			d.deliver(ctx, e)
		default:
			return
		}
	}
}

func (d *AsyncDispatcher) deliver(ctx context.Context, e Event) {
	for _, ch := range d.channels {
		if err := ch.Send(ctx, e); err != nil {
			d.logger.Warn("Notification delivery failed",
				zap.String("channel", ch.Name()),
				zap.String("event", string(e.Type)),
				zap.Int64("reservation_id", e.Reservation.ID),
				zap.Error(err),
			)
		}
	}
}

// NopDispatcher discards events. Used where a dispatcher is required but no
// channels are configured.
type NopDispatcher struct{}

func (NopDispatcher) Notify(context.Context, Event) {}
