package notification

import (
	"context"

	"go.uber.org/zap"
)

// LogChannel records every event in the structured log. It always runs so
// that lifecycle events remain observable even when no outbound channel is
// configured.
type LogChannel struct {
	logger *zap.Logger
}

func NewLogChannel(logger *zap.Logger) *LogChannel {
	return &LogChannel{logger: logger}
}

func (c *LogChannel) Name() string {
	return "log"
}

func (c *LogChannel) Send(_ context.Context, e Event) error {
	fields := []zap.Field{
		zap.String("event", string(e.Type)),
		zap.Int64("reservation_id", e.Reservation.ID),
		zap.String("previous_state", string(e.PreviousState)),
		zap.String("new_state", string(e.NewState)),
		zap.String("actor_role", string(e.ActorRole)),
	}
	if e.Payment != nil {
		fields = append(fields,
			zap.Int64("payment_id", e.Payment.ID),
			zap.String("payment_method", string(e.Payment.Method)),
		)
	}

	c.logger.Info("Notification event", fields...)
	return nil
}
