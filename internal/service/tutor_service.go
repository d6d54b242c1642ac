package service

import (
	"context"
	"errors"
	"fmt"

	"tutorbook_backend/internal/model"
	"tutorbook_backend/internal/repository"

	"go.uber.org/zap"
)

// TutorService manages the tutor-owned catalog: recurring availability
// rules and service offerings. Both are single-writer resources owned by
// their tutor, so no conditional updates are needed here.
type TutorService struct {
	availability AvailabilityStore
	services     ServiceStore
	logger       *zap.Logger
}

func NewTutorService(availability AvailabilityStore, services ServiceStore, logger *zap.Logger) *TutorService {
	return &TutorService{
		availability: availability,
		services:     services,
		logger:       logger,
	}
}

type CreateAvailabilityInput struct {
	Weekday int
	Start   model.MinuteOfDay
	End     model.MinuteOfDay
}

// CreateAvailability adds a recurring weekly rule for the acting tutor.
// The 2-hour span cap applies at creation only; existing rules are never
// re-checked at read time.
func (s *TutorService) CreateAvailability(ctx context.Context, actor model.Actor, in CreateAvailabilityInput) (*model.Availability, error) {
	if !actor.IsTutor() {
		return nil, guardErr(CodeActorNotAllowed, "only tutors manage availability", "")
	}
	if in.Weekday < 1 || in.Weekday > 7 {
		return nil, validationErr("weekday must be between 1 (Monday) and 7 (Sunday)")
	}
	if in.Start >= in.End {
		return nil, validationErr("start time must be before end time")
	}

	a := &model.Availability{
		TutorID: actor.UserID,
		Weekday: in.Weekday,
		Start:   in.Start,
		End:     in.End,
	}
	if a.Span() > model.MaxAvailabilitySpan {
		return nil, validationErr(fmt.Sprintf("availability rule may not exceed %s", model.MaxAvailabilitySpan))
	}

	if err := s.availability.Create(ctx, a); err != nil {
		return nil, fmt.Errorf("create availability: %w", err)
	}

	s.logger.Info("Availability rule created",
		zap.Int64("availability_id", a.ID),
		zap.Int64("tutor_id", a.TutorID),
		zap.Int("weekday", a.Weekday),
		zap.String("start", a.Start.String()),
		zap.String("end", a.End.String()),
	)

	return a, nil
}

func (s *TutorService) ListAvailability(ctx context.Context, tutorID int64) ([]*model.Availability, error) {
	return s.availability.ListByTutor(ctx, tutorID)
}

// DeleteAvailability removes a rule owned by the acting tutor. Existing
// reservations are untouched; only future slot computation changes.
func (s *TutorService) DeleteAvailability(ctx context.Context, actor model.Actor, availabilityID int64) error {
	if !actor.IsTutor() {
		return guardErr(CodeActorNotAllowed, "only tutors manage availability", "")
	}

	if err := s.availability.Delete(ctx, availabilityID, actor.UserID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return guardErr(CodeNotFound, "availability rule not found", "")
		}
		return fmt.Errorf("delete availability: %w", err)
	}

	s.logger.Info("Availability rule deleted",
		zap.Int64("availability_id", availabilityID),
		zap.Int64("tutor_id", actor.UserID),
	)
	return nil
}

type ServiceInput struct {
	Subject     string
	Description string
	Price       int
}

// CreateService publishes a new offering for the acting tutor. All
// offerings are virtual.
func (s *TutorService) CreateService(ctx context.Context, actor model.Actor, in ServiceInput) (*model.Service, error) {
	if !actor.IsTutor() {
		return nil, guardErr(CodeActorNotAllowed, "only tutors manage services", "")
	}
	if in.Subject == "" {
		return nil, validationErr("subject is required")
	}
	if in.Price < 0 {
		return nil, validationErr("price may not be negative")
	}

	svc := &model.Service{
		TutorID:     actor.UserID,
		Subject:     in.Subject,
		Description: in.Description,
		Price:       in.Price,
		Modality:    model.ModalityVirtual,
		IsActive:    true,
	}

	if err := s.services.Create(ctx, svc); err != nil {
		return nil, fmt.Errorf("create service: %w", err)
	}

	s.logger.Info("Service created",
		zap.Int64("service_id", svc.ID),
		zap.Int64("tutor_id", svc.TutorID),
		zap.String("subject", svc.Subject),
		zap.Int("price", svc.Price),
	)

	return svc, nil
}

func (s *TutorService) ListServices(ctx context.Context, tutorID int64) ([]*model.Service, error) {
	return s.services.ListByTutor(ctx, tutorID)
}

// UpdateService edits subject, description and price of an owned offering.
func (s *TutorService) UpdateService(ctx context.Context, actor model.Actor, serviceID int64, in ServiceInput) (*model.Service, error) {
	if !actor.IsTutor() {
		return nil, guardErr(CodeActorNotAllowed, "only tutors manage services", "")
	}
	if in.Subject == "" {
		return nil, validationErr("subject is required")
	}
	if in.Price < 0 {
		return nil, validationErr("price may not be negative")
	}

	svc := &model.Service{
		ID:          serviceID,
		TutorID:     actor.UserID,
		Subject:     in.Subject,
		Description: in.Description,
		Price:       in.Price,
	}

	if err := s.services.Update(ctx, svc); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, guardErr(CodeNotFound, "service not found", "")
		}
		return nil, fmt.Errorf("update service: %w", err)
	}

	s.logger.Info("Service updated",
		zap.Int64("service_id", serviceID),
		zap.Int64("tutor_id", actor.UserID),
	)

	return s.services.GetByID(ctx, serviceID)
}

// DeactivateService withdraws an offering from booking without touching
// reservations that already reference it.
func (s *TutorService) DeactivateService(ctx context.Context, actor model.Actor, serviceID int64) error {
	if !actor.IsTutor() {
		return guardErr(CodeActorNotAllowed, "only tutors manage services", "")
	}

	if err := s.services.Deactivate(ctx, serviceID, actor.UserID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return guardErr(CodeNotFound, "service not found", "")
		}
		return fmt.Errorf("deactivate service: %w", err)
	}

	s.logger.Info("Service deactivated",
		zap.Int64("service_id", serviceID),
		zap.Int64("tutor_id", actor.UserID),
	)
	return nil
}
