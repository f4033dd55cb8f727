package testutil

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/m04kA/SMC-CompanionBooking/internal/domain"
	"github.com/m04kA/SMC-CompanionBooking/internal/integrations/profileservice"
	reviewRepo "github.com/m04kA/SMC-CompanionBooking/internal/infra/storage/review"
)

// EventStore mirrors the booking_events outbox table
type EventStore struct {
	mu     sync.Mutex
	events []domain.Event
	errors map[string]string
}

// NewEventStore creates an empty outbox
func NewEventStore() *EventStore {
	return &EventStore{errors: map[string]string{}}
}

func (s *EventStore) snapshot() any {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.Event(nil), s.events...)
}

func (s *EventStore) restore(v any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = v.([]domain.Event)
}

func (s *EventStore) Append(ctx context.Context, events ...*domain.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range events {
		s.events = append(s.events, *e)
	}
	return nil
}

func (s *EventStore) FetchUnpublished(ctx context.Context, limit int) ([]*domain.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*domain.Event, 0)
	for _, e := range s.events {
		if e.PublishedAt == nil && len(out) < limit {
			cp := e
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (s *EventStore) MarkPublished(ctx context.Context, id string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.events {
		if s.events[i].ID == id {
			t := at
			s.events[i].PublishedAt = &t
			delete(s.errors, id)
		}
	}
	return nil
}

func (s *EventStore) MarkFailed(ctx context.Context, id string, publishErr error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.events {
		if s.events[i].ID == id {
			s.events[i].Attempts++
			s.errors[id] = publishErr.Error()
		}
	}
	return nil
}

// Events returns every appended event in order
func (s *EventStore) Events() []domain.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.Event(nil), s.events...)
}

// OfType returns appended events of type t
func (s *EventStore) OfType(t domain.EventType) []domain.Event {
	var out []domain.Event
	for _, e := range s.Events() {
		if e.Type == t {
			out = append(out, e)
		}
	}
	return out
}

// LastError returns the recorded publish error for an event
func (s *EventStore) LastError(id string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.errors[id]
}

// ReviewStore mirrors the reviews table with its unique booking_id
type ReviewStore struct {
	mu      sync.Mutex
	reviews map[int64]domain.Review
	nextID  int64
}

// NewReviewStore creates an empty store
func NewReviewStore() *ReviewStore {
	return &ReviewStore{reviews: map[int64]domain.Review{}, nextID: 1}
}

func (s *ReviewStore) snapshot() any {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := make(map[int64]domain.Review, len(s.reviews))
	for k, v := range s.reviews {
		cp[k] = v
	}
	return cp
}

func (s *ReviewStore) restore(v any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reviews = v.(map[int64]domain.Review)
}

func (s *ReviewStore) Create(ctx context.Context, review *domain.Review) (*domain.Review, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.reviews[review.BookingID]; ok {
		return nil, reviewRepo.ErrAlreadyReviewed
	}
	r := *review
	r.ID = s.nextID
	s.nextID++
	s.reviews[r.BookingID] = r
	return &r, nil
}

// ForBooking returns the review left on a booking
func (s *ReviewStore) ForBooking(bookingID int64) (*domain.Review, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.reviews[bookingID]
	return &r, ok
}

// Schedules serves fixed companion schedules
type Schedules map[int64]*domain.CompanionSchedule

func (s Schedules) GetSchedule(ctx context.Context, companionID int64, from, to time.Time) (*domain.CompanionSchedule, error) {
	if sch, ok := s[companionID]; ok {
		return sch, nil
	}
	return &domain.CompanionSchedule{CompanionID: companionID}, nil
}

// Profiles serves fixed companion profiles
type Profiles struct {
	Companions map[int64]*profileservice.Companion
	Err        error
}

func (p *Profiles) GetCompanion(ctx context.Context, companionID int64) (*profileservice.Companion, error) {
	if p.Err != nil {
		return nil, p.Err
	}
	c, ok := p.Companions[companionID]
	if !ok || !c.IsActive {
		return nil, profileservice.ErrCompanionNotFound
	}
	return c, nil
}

// StaticPolicy always returns P
type StaticPolicy struct {
	P domain.BookingPolicy
}

func (s *StaticPolicy) Policy(ctx context.Context) (domain.BookingPolicy, error) {
	return s.P, nil
}

// ErrInjected is returned by failing fakes
var ErrInjected = errors.New("testutil: injected failure")
