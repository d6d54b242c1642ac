package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"tutorbook_backend/internal/model"
	"tutorbook_backend/internal/notification"
	"tutorbook_backend/internal/repository"
)

// In-memory stores mirroring the conditional-write semantics of the pgx
// repositories: overlap and uniqueness rejections return
// repository.ErrConflict, missing rows repository.ErrNotFound.

type memReservationStore struct {
	mu       sync.Mutex
	seq      int64
	items    map[int64]*model.Reservation
	payments *memPaymentStore

	// beforeUpdate, when set, runs before the CAS inside UpdateState.
	// Tests use it to interleave a concurrent transition.
	beforeUpdate func()
}

func newMemReservationStore(payments *memPaymentStore) *memReservationStore {
	return &memReservationStore{items: make(map[int64]*model.Reservation), payments: payments}
}

func (m *memReservationStore) Create(_ context.Context, res *model.Reservation) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, other := range m.items {
		if other.TutorID != res.TutorID || !other.BlocksSlot() {
			continue
		}
		if !other.Date.Equal(res.Date) {
			continue
		}
		if other.Overlaps(res.Start, res.End) {
			return fmt.Errorf("create reservation: %w", repository.ErrConflict)
		}
	}

	m.seq++
	res.ID = m.seq
	res.CreatedAt = time.Now()
	res.UpdatedAt = res.CreatedAt
	cp := *res
	m.items[res.ID] = &cp
	return nil
}

func (m *memReservationStore) GetByID(_ context.Context, id int64) (*model.Reservation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	res, ok := m.items[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *res
	return &cp, nil
}

func (m *memReservationStore) UpdateState(_ context.Context, id int64, from, to model.ReservationState) error {
	if m.beforeUpdate != nil {
		m.beforeUpdate()
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	res, ok := m.items[id]
	if !ok || res.State != from {
		return fmt.Errorf("update reservation state: %w", repository.ErrConflict)
	}
	res.State = to
	res.UpdatedAt = time.Now()
	return nil
}

func (m *memReservationStore) ListByTutorBetween(_ context.Context, tutorID int64, from, to time.Time) ([]*model.Reservation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []*model.Reservation
	for _, res := range m.items {
		if res.TutorID != tutorID {
			continue
		}
		if res.Date.Before(from) || !res.Date.Before(to) {
			continue
		}
		cp := *res
		out = append(out, &cp)
	}
	return out, nil
}

func (m *memReservationStore) ListByStudent(_ context.Context, studentID int64) ([]*model.Reservation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []*model.Reservation
	for _, res := range m.items {
		if res.StudentID == studentID {
			cp := *res
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *memReservationStore) ListByTutor(_ context.Context, tutorID int64) ([]*model.Reservation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []*model.Reservation
	for _, res := range m.items {
		if res.TutorID == tutorID {
			cp := *res
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *memReservationStore) HasCompletedUnpaid(ctx context.Context, studentID int64) (bool, error) {
	m.mu.Lock()
	var completed []int64
	for _, res := range m.items {
		if res.StudentID == studentID && res.State == model.ReservationStateCompleted {
			completed = append(completed, res.ID)
		}
	}
	m.mu.Unlock()

	for _, id := range completed {
		paid, err := m.payments.HasCompletedForReservation(ctx, id)
		if err != nil {
			return false, err
		}
		if !paid {
			return true, nil
		}
	}
	return false, nil
}

// seed inserts a reservation bypassing conflict checks.
func (m *memReservationStore) seed(res *model.Reservation) *model.Reservation {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.seq++
	res.ID = m.seq
	cp := *res
	m.items[res.ID] = &cp
	return res
}

type memPaymentStore struct {
	mu    sync.Mutex
	seq   int64
	items map[int64]*model.Payment
}

func newMemPaymentStore() *memPaymentStore {
	return &memPaymentStore{items: make(map[int64]*model.Payment)}
}

func (m *memPaymentStore) Create(_ context.Context, p *model.Payment) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if p.State == model.PaymentStateCompleted && m.completedExistsLocked(p.ReservationID) {
		return fmt.Errorf("create payment: %w", repository.ErrConflict)
	}

	m.seq++
	p.ID = m.seq
	p.CreatedAt = time.Now()
	cp := *p
	m.items[p.ID] = &cp
	return nil
}

func (m *memPaymentStore) GetByID(_ context.Context, id int64) (*model.Payment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.items[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *memPaymentStore) HasCompletedForReservation(_ context.Context, reservationID int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.completedExistsLocked(reservationID), nil
}

func (m *memPaymentStore) ListByReservation(_ context.Context, reservationID int64) ([]*model.Payment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []*model.Payment
	for _, p := range m.items {
		if p.ReservationID == reservationID {
			cp := *p
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *memPaymentStore) Complete(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.items[id]
	if !ok || p.State != model.PaymentStatePending {
		return fmt.Errorf("complete payment: %w", repository.ErrConflict)
	}
	if m.completedExistsLocked(p.ReservationID) {
		return fmt.Errorf("complete payment: %w", repository.ErrConflict)
	}
	now := time.Now()
	p.State = model.PaymentStateCompleted
	p.PaidAt = &now
	return nil
}

func (m *memPaymentStore) Cancel(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.items[id]
	if !ok || p.State != model.PaymentStatePending {
		return fmt.Errorf("cancel payment: %w", repository.ErrConflict)
	}
	p.State = model.PaymentStateCancelled
	return nil
}

func (m *memPaymentStore) completedExistsLocked(reservationID int64) bool {
	for _, p := range m.items {
		if p.ReservationID == reservationID && p.State == model.PaymentStateCompleted {
			return true
		}
	}
	return false
}

type memAvailabilityStore struct {
	mu    sync.Mutex
	seq   int64
	items map[int64]*model.Availability
}

func newMemAvailabilityStore() *memAvailabilityStore {
	return &memAvailabilityStore{items: make(map[int64]*model.Availability)}
}

func (m *memAvailabilityStore) Create(_ context.Context, a *model.Availability) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.seq++
	a.ID = m.seq
	a.CreatedAt = time.Now()
	cp := *a
	m.items[a.ID] = &cp
	return nil
}

func (m *memAvailabilityStore) GetByID(_ context.Context, id int64) (*model.Availability, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	a, ok := m.items[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (m *memAvailabilityStore) ListByTutor(_ context.Context, tutorID int64) ([]*model.Availability, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []*model.Availability
	for _, a := range m.items {
		if a.TutorID == tutorID {
			cp := *a
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *memAvailabilityStore) Delete(_ context.Context, id, tutorID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	a, ok := m.items[id]
	if !ok || a.TutorID != tutorID {
		return repository.ErrNotFound
	}
	delete(m.items, id)
	return nil
}

type memServiceStore struct {
	mu    sync.Mutex
	seq   int64
	items map[int64]*model.Service
}

func newMemServiceStore() *memServiceStore {
	return &memServiceStore{items: make(map[int64]*model.Service)}
}

func (m *memServiceStore) Create(_ context.Context, s *model.Service) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.seq++
	s.ID = m.seq
	s.CreatedAt = time.Now()
	cp := *s
	m.items[s.ID] = &cp
	return nil
}

func (m *memServiceStore) GetByID(_ context.Context, id int64) (*model.Service, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.items[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *s
	return &cp, nil
}

func (m *memServiceStore) ListByTutor(_ context.Context, tutorID int64) ([]*model.Service, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []*model.Service
	for _, s := range m.items {
		if s.TutorID == tutorID {
			cp := *s
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *memServiceStore) Update(_ context.Context, s *model.Service) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	cur, ok := m.items[s.ID]
	if !ok || cur.TutorID != s.TutorID {
		return repository.ErrNotFound
	}
	cur.Subject = s.Subject
	cur.Description = s.Description
	cur.Price = s.Price
	return nil
}

func (m *memServiceStore) Deactivate(_ context.Context, id, tutorID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.items[id]
	if !ok || s.TutorID != tutorID {
		return repository.ErrNotFound
	}
	s.IsActive = false
	return nil
}

type memRatingStore struct {
	mu    sync.Mutex
	seq   int64
	items map[int64]*model.Rating
}

func newMemRatingStore() *memRatingStore {
	return &memRatingStore{items: make(map[int64]*model.Rating)}
}

func (m *memRatingStore) Create(_ context.Context, rating *model.Rating) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, r := range m.items {
		if r.ReservationID == rating.ReservationID && r.RaterID == rating.RaterID {
			return fmt.Errorf("create rating: %w", repository.ErrConflict)
		}
	}

	m.seq++
	rating.ID = m.seq
	rating.CreatedAt = time.Now()
	cp := *rating
	m.items[rating.ID] = &cp
	return nil
}

func (m *memRatingStore) ListByRatee(_ context.Context, rateeID int64) ([]*model.Rating, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []*model.Rating
	for _, r := range m.items {
		if r.RateeID == rateeID {
			cp := *r
			out = append(out, &cp)
		}
	}
	return out, nil
}

type recordingDispatcher struct {
	mu     sync.Mutex
	events []notification.Event
}

func (d *recordingDispatcher) Notify(_ context.Context, e notification.Event) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.events = append(d.events, e)
}

func (d *recordingDispatcher) all() []notification.Event {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]notification.Event(nil), d.events...)
}

func (d *recordingDispatcher) last() (notification.Event, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.events) == 0 {
		return notification.Event{}, false
	}
	return d.events[len(d.events)-1], true
}

type fakeGateway struct {
	mu      sync.Mutex
	charges int
	fail    bool
}

func (g *fakeGateway) CreateCharge(_ context.Context, _ int, _ map[string]string) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.fail {
		return "", fmt.Errorf("gateway unreachable")
	}
	g.charges++
	return fmt.Sprintf("https://pay.example/checkout/%d", g.charges), nil
}
