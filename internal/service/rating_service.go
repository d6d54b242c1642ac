package service

import (
	"context"
	"errors"
	"fmt"

	"tutorbook_backend/internal/model"
	"tutorbook_backend/internal/repository"

	"go.uber.org/zap"
)

// RatingService opens feedback only after the session completed and its
// payment settled. One rating per participant per reservation.
type RatingService struct {
	ratings      RatingStore
	reservations ReservationStore
	payments     PaymentStore
	logger       *zap.Logger
}

func NewRatingService(ratings RatingStore, reservations ReservationStore, payments PaymentStore, logger *zap.Logger) *RatingService {
	return &RatingService{
		ratings:      ratings,
		reservations: reservations,
		payments:     payments,
		logger:       logger,
	}
}

type CreateRatingInput struct {
	ReservationID int64
	Score         int
	Comment       string
}

func (s *RatingService) Create(ctx context.Context, actor model.Actor, in CreateRatingInput) (*model.Rating, error) {
	if in.Score < 1 || in.Score > 5 {
		return nil, validationErr("score must be between 1 and 5")
	}

	res, err := s.reservations.GetByID(ctx, in.ReservationID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, guardErr(CodeNotFound, "reservation not found", "")
		}
		return nil, fmt.Errorf("get reservation: %w", err)
	}

	var rateeID int64
	switch actor.UserID {
	case res.StudentID:
		rateeID = res.TutorID
	case res.TutorID:
		rateeID = res.StudentID
	default:
		return nil, guardErr(CodeActorNotAllowed, "caller is not a participant of this reservation", "")
	}

	if res.State != model.ReservationStateCompleted {
		return nil, guardErr(CodeInvalidState, "only completed reservations can be rated", string(res.State))
	}
	paid, err := s.payments.HasCompletedForReservation(ctx, in.ReservationID)
	if err != nil {
		return nil, fmt.Errorf("check completed payment: %w", err)
	}
	if !paid {
		return nil, guardErr(CodeInvalidState, "the reservation must be paid before rating", string(res.State))
	}

	rating := &model.Rating{
		ReservationID: in.ReservationID,
		RaterID:       actor.UserID,
		RateeID:       rateeID,
		Score:         in.Score,
		Comment:       in.Comment,
	}

	if err := s.ratings.Create(ctx, rating); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, guardErr(CodeAlreadyRated, "you already rated this reservation", "")
		}
		return nil, fmt.Errorf("create rating: %w", err)
	}

	s.logger.Info("Rating created",
		zap.Int64("rating_id", rating.ID),
		zap.Int64("reservation_id", rating.ReservationID),
		zap.Int64("rater_id", rating.RaterID),
		zap.Int("score", rating.Score),
	)

	return rating, nil
}

func (s *RatingService) ListForUser(ctx context.Context, userID int64) ([]*model.Rating, error) {
	return s.ratings.ListByRatee(ctx, userID)
}
