package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"tutorbook_backend/internal/model"
	"tutorbook_backend/internal/notification"
	"tutorbook_backend/internal/repository"

	"go.uber.org/zap"
)

// PaymentGateway is the external payment provider boundary. CreateCharge
// returns a redirect reference; the provider later resolves the charge
// through the asynchronous callback handled by HandleGatewayCallback.
type PaymentGateway interface {
	CreateCharge(ctx context.Context, amount int, metadata map[string]string) (redirectRef string, err error)
}

// GatewayResult is the outcome reported by the provider callback.
type GatewayResult string

const (
	GatewayResultCompleted GatewayResult = "completed"
	GatewayResultCancelled GatewayResult = "cancelled"
)

// PaymentService gates payment eligibility on reservation state and keeps
// the at-most-one-completed-payment invariant.
type PaymentService struct {
	payments     PaymentStore
	reservations ReservationStore
	services     ServiceStore
	gateway      PaymentGateway
	dispatcher   notification.Dispatcher
	logger       *zap.Logger
	now          func() time.Time
}

func NewPaymentService(
	payments PaymentStore,
	reservations ReservationStore,
	services ServiceStore,
	gateway PaymentGateway,
	dispatcher notification.Dispatcher,
	logger *zap.Logger,
) *PaymentService {
	return &PaymentService{
		payments:     payments,
		reservations: reservations,
		services:     services,
		gateway:      gateway,
		dispatcher:   dispatcher,
		logger:       logger,
		now:          time.Now,
	}
}

// IsPayable reports whether the reservation is completed and not yet
// settled by a completed payment.
func (s *PaymentService) IsPayable(ctx context.Context, reservationID int64) (bool, error) {
	res, err := s.reservations.GetByID(ctx, reservationID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return false, guardErr(CodeNotFound, "reservation not found", "")
		}
		return false, fmt.Errorf("get reservation: %w", err)
	}
	if res.State != model.ReservationStateCompleted {
		return false, nil
	}

	paid, err := s.payments.HasCompletedForReservation(ctx, reservationID)
	if err != nil {
		return false, fmt.Errorf("check completed payment: %w", err)
	}
	return !paid, nil
}

// CreatePayment opens a payment for a completed reservation. Cash payments
// wait for the tutor's confirmation; gateway payments record the redirect
// reference and wait for the provider callback. Either way the payment
// starts pending.
func (s *PaymentService) CreatePayment(ctx context.Context, actor model.Actor, reservationID int64, method model.PaymentMethod) (*model.Payment, error) {
	if method != model.PaymentMethodCash && method != model.PaymentMethodGateway {
		return nil, validationErr("unknown payment method")
	}

	res, err := s.reservations.GetByID(ctx, reservationID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, guardErr(CodeNotFound, "reservation not found", "")
		}
		return nil, fmt.Errorf("get reservation: %w", err)
	}
	if actor.UserID != res.StudentID || !actor.IsStudent() {
		return nil, guardErr(CodeActorNotAllowed, "only the booking student pays for a reservation", "")
	}

	if res.State != model.ReservationStateCompleted {
		return nil, guardErr(CodeNotPayable,
			"only completed reservations are payable", string(res.State))
	}

	paid, err := s.payments.HasCompletedForReservation(ctx, reservationID)
	if err != nil {
		return nil, fmt.Errorf("check completed payment: %w", err)
	}
	if paid {
		return nil, guardErr(CodeAlreadyPaid, "reservation already has a completed payment", string(res.State))
	}

	svc, err := s.services.GetByID(ctx, res.ServiceID)
	if err != nil {
		return nil, fmt.Errorf("get service: %w", err)
	}

	p := &model.Payment{
		ReservationID: reservationID,
		Amount:        svc.Price,
		Method:        method,
		State:         model.PaymentStatePending,
	}

	if method == model.PaymentMethodGateway {
		ref, err := s.gateway.CreateCharge(ctx, svc.Price, map[string]string{
			"reservation_id": fmt.Sprint(reservationID),
			"subject":        svc.Subject,
		})
		if err != nil {
			return nil, fmt.Errorf("create gateway charge: %w", err)
		}
		p.ProviderRef = ref
	}

	if err := s.payments.Create(ctx, p); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, guardErr(CodeAlreadyPaid, "reservation already has a completed payment", string(res.State))
		}
		return nil, fmt.Errorf("create payment: %w", err)
	}

	s.logger.Info("Payment created",
		zap.Int64("payment_id", p.ID),
		zap.Int64("reservation_id", reservationID),
		zap.String("method", string(method)),
		zap.Int("amount", p.Amount),
	)

	return p, nil
}

// ConfirmCashPayment settles a pending cash payment. Only the tutor of the
// underlying reservation may confirm, and only for the cash method; the
// gateway path settles through its callback instead.
func (s *PaymentService) ConfirmCashPayment(ctx context.Context, actor model.Actor, paymentID int64) (*model.Payment, error) {
	p, err := s.payments.GetByID(ctx, paymentID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, guardErr(CodeNotFound, "payment not found", "")
		}
		return nil, fmt.Errorf("get payment: %w", err)
	}

	res, err := s.reservations.GetByID(ctx, p.ReservationID)
	if err != nil {
		return nil, fmt.Errorf("get reservation: %w", err)
	}
	if !actor.IsTutor() || actor.UserID != res.TutorID {
		return nil, guardErr(CodeActorNotAllowed, "only the reservation's tutor confirms cash payments", "")
	}

	if p.Method != model.PaymentMethodCash {
		return nil, guardErr(CodeInvalidState, "payment method is not cash", string(p.State))
	}
	if p.State != model.PaymentStatePending {
		return nil, guardErr(CodeInvalidState, "payment is not pending", string(p.State))
	}

	if err := s.payments.Complete(ctx, paymentID); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, guardErr(CodeInvalidState, "payment was settled concurrently", string(p.State))
		}
		return nil, fmt.Errorf("complete payment: %w", err)
	}

	now := s.now()
	p.State = model.PaymentStateCompleted
	p.PaidAt = &now

	s.logger.Info("Cash payment confirmed",
		zap.Int64("payment_id", p.ID),
		zap.Int64("reservation_id", p.ReservationID),
		zap.Int64("tutor_id", actor.UserID),
	)

	s.dispatcher.Notify(ctx, notification.Event{
		Type:        notification.EventPaymentCompleted,
		Reservation: *res,
		NewState:    res.State,
		ActorRole:   actor.Role,
		Payment:     p,
	})

	return p, nil
}

// HandleGatewayCallback resolves a gateway payment from the provider's
// asynchronous callback. The provider is a trusted external boundary; no
// actor guard applies.
func (s *PaymentService) HandleGatewayCallback(ctx context.Context, paymentID int64, result GatewayResult) (*model.Payment, error) {
	p, err := s.payments.GetByID(ctx, paymentID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, guardErr(CodeNotFound, "payment not found", "")
		}
		return nil, fmt.Errorf("get payment: %w", err)
	}

	if p.Method != model.PaymentMethodGateway {
		return nil, guardErr(CodeInvalidState, "payment method is not online_gateway", string(p.State))
	}
	if p.State != model.PaymentStatePending {
		return nil, guardErr(CodeInvalidState, "payment is not pending", string(p.State))
	}

	switch result {
	case GatewayResultCompleted:
		if err := s.payments.Complete(ctx, paymentID); err != nil {
			if errors.Is(err, repository.ErrConflict) {
				return nil, guardErr(CodeInvalidState, "payment was settled concurrently", string(p.State))
			}
			return nil, fmt.Errorf("complete payment: %w", err)
		}
		now := s.now()
		p.State = model.PaymentStateCompleted
		p.PaidAt = &now

		s.logger.Info("Gateway payment completed",
			zap.Int64("payment_id", p.ID),
			zap.Int64("reservation_id", p.ReservationID),
		)

		res, err := s.reservations.GetByID(ctx, p.ReservationID)
		if err != nil {
			// The payment settled; the notification snapshot is best-effort.
			s.logger.Warn("Payment settled but reservation lookup failed", zap.Error(err))
			return p, nil
		}
		s.dispatcher.Notify(ctx, notification.Event{
			Type:        notification.EventPaymentCompleted,
			Reservation: *res,
			NewState:    res.State,
			Payment:     p,
		})

	case GatewayResultCancelled:
		if err := s.payments.Cancel(ctx, paymentID); err != nil {
			if errors.Is(err, repository.ErrConflict) {
				return nil, guardErr(CodeInvalidState, "payment was settled concurrently", string(p.State))
			}
			return nil, fmt.Errorf("cancel payment: %w", err)
		}
		p.State = model.PaymentStateCancelled

		s.logger.Info("Gateway payment cancelled",
			zap.Int64("payment_id", p.ID),
			zap.Int64("reservation_id", p.ReservationID),
		)

	default:
		return nil, validationErr("unknown gateway result")
	}

	return p, nil
}
