package model

import "time"

type PaymentMethod string

const (
	PaymentMethodGateway PaymentMethod = "online_gateway"
	PaymentMethodCash    PaymentMethod = "cash"
)

type PaymentState string

const (
	PaymentStatePending   PaymentState = "pending"
	PaymentStateCompleted PaymentState = "completed"
	PaymentStateCancelled PaymentState = "cancelled"
)

// Payment settles a completed reservation. At most one completed payment
// may ever exist per reservation; the store enforces this.
type Payment struct {
	ID            int64         `json:"id"`
	ReservationID int64         `json:"reservation_id"`
	Amount        int           `json:"amount"`
	Method        PaymentMethod `json:"method"`
	State         PaymentState  `json:"state"`
	ProviderRef   string        `json:"provider_ref"` // gateway redirect reference, empty for cash
	PaidAt        *time.Time    `json:"paid_at"`
	CreatedAt     time.Time     `json:"created_at"`
}

func (p *Payment) IsCompleted() bool {
	return p.State == PaymentStateCompleted
}

func (p *Payment) IsPending() bool {
	return p.State == PaymentStatePending
}
