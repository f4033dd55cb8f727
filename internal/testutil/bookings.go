package testutil

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/m04kA/SMC-CompanionBooking/internal/domain"
	bookingRepo "github.com/m04kA/SMC-CompanionBooking/internal/infra/storage/booking"
)

// BookingStore mirrors the bookings table including the exclusion
// constraint on active intervals of one companion.
type BookingStore struct {
	mu       sync.Mutex
	bookings map[int64]domain.Booking
	nextID   int64

	// Locks counts advisory lock calls per scope key, e.g. "companion:7"
	Locks map[string]int
}

// NewBookingStore creates an empty store
func NewBookingStore() *BookingStore {
	return &BookingStore{
		bookings: map[int64]domain.Booking{},
		nextID:   1,
		Locks:    map[string]int{},
	}
}

type bookingSnapshot struct {
	bookings map[int64]domain.Booking
	nextID   int64
}

func (s *BookingStore) snapshot() any {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := make(map[int64]domain.Booking, len(s.bookings))
	for k, v := range s.bookings {
		cp[k] = v
	}
	return bookingSnapshot{bookings: cp, nextID: s.nextID}
}

func (s *BookingStore) restore(v any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := v.(bookingSnapshot)
	s.bookings = snap.bookings
	s.nextID = snap.nextID
}

// Seed stores b as is, assigning an id when missing
func (s *BookingStore) Seed(b domain.Booking) *domain.Booking {
	s.mu.Lock()
	defer s.mu.Unlock()
	if b.ID == 0 {
		b.ID = s.nextID
	}
	if b.ID >= s.nextID {
		s.nextID = b.ID + 1
	}
	s.bookings[b.ID] = b
	out := b
	return &out
}

// All returns every stored booking ordered by id
func (s *BookingStore) All() []*domain.Booking {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*domain.Booking, 0, len(s.bookings))
	for _, b := range s.bookings {
		cp := b
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Get returns a copy of the stored booking or nil
func (s *BookingStore) Get(id int64) *domain.Booking {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.bookings[id]
	if !ok {
		return nil
	}
	return &b
}

func (s *BookingStore) Create(ctx context.Context, booking *domain.Booking) (*domain.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if booking.IsActive() {
		for _, other := range s.bookings {
			if other.CompanionID == booking.CompanionID && other.IsActive() && other.Overlaps(booking.StartTime, booking.EndTime) {
				return nil, fmt.Errorf("%w: Create - exclusion constraint", bookingRepo.ErrOverlap)
			}
		}
	}

	b := *booking
	b.ID = s.nextID
	s.nextID++
	s.bookings[b.ID] = b

	out := b
	return &out, nil
}

func (s *BookingStore) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	if b := s.Get(id); b != nil {
		return b, nil
	}
	return nil, bookingRepo.ErrBookingNotFound
}

func (s *BookingStore) FindOverlapping(ctx context.Context, companionID int64, start, end time.Time) ([]*domain.Booking, error) {
	return s.filter(func(b *domain.Booking) bool {
		return b.CompanionID == companionID && b.IsActive() && b.Overlaps(start, end)
	}), nil
}

func (s *BookingStore) CountByHirerSince(ctx context.Context, hirerID int64, since time.Time) (int, error) {
	return len(s.filter(func(b *domain.Booking) bool {
		return b.HirerID == hirerID && b.Status != domain.StatusCancelled && !b.CreatedAt.Before(since)
	})), nil
}

func (s *BookingStore) UpdateTransition(ctx context.Context, booking *domain.Booking, from domain.BookingStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.bookings[booking.ID]
	if !ok || current.Status != from {
		return bookingRepo.ErrStaleState
	}
	s.bookings[booking.ID] = *booking
	return nil
}

func (s *BookingStore) GetByHirerID(ctx context.Context, hirerID int64, status *domain.BookingStatus) ([]*domain.Booking, error) {
	return s.filter(func(b *domain.Booking) bool {
		return b.HirerID == hirerID && (status == nil || b.Status == *status)
	}), nil
}

func (s *BookingStore) GetByCompanionWithFilter(ctx context.Context, filter domain.CompanionBookingsFilter) ([]*domain.Booking, error) {
	return s.filter(func(b *domain.Booking) bool {
		if b.CompanionID != filter.CompanionID {
			return false
		}
		if filter.From != nil && !b.EndTime.After(*filter.From) {
			return false
		}
		if filter.To != nil && !b.StartTime.Before(*filter.To) {
			return false
		}
		if filter.Status != nil {
			return b.Status == *filter.Status
		}
		return filter.IncludeInactive || b.IsActive()
	}), nil
}

func (s *BookingStore) ListDueForSweep(ctx context.Context, now, pendingCutoff time.Time, limit int) ([]*domain.Booking, error) {
	due := s.filter(func(b *domain.Booking) bool {
		switch b.Status {
		case domain.StatusPending:
			return !b.CreatedAt.After(pendingCutoff) || !b.StartTime.After(now)
		case domain.StatusConfirmed:
			return !b.StartTime.After(now)
		case domain.StatusActive:
			return !b.EndTime.After(now)
		}
		return false
	})
	if len(due) > limit {
		due = due[:limit]
	}
	return due, nil
}

func (s *BookingStore) LockCompanion(ctx context.Context, companionID int64) error {
	return s.lock(ctx, fmt.Sprintf("companion:%d", companionID))
}

func (s *BookingStore) LockHirer(ctx context.Context, hirerID int64) error {
	return s.lock(ctx, fmt.Sprintf("hirer:%d", hirerID))
}

func (s *BookingStore) lock(ctx context.Context, key string) error {
	if !InTx(ctx) {
		return fmt.Errorf("%w: %s", bookingRepo.ErrTransactionRequired, key)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Locks[key]++
	return nil
}

// filter returns matching copies ordered by start time
func (s *BookingStore) filter(match func(b *domain.Booking) bool) []*domain.Booking {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*domain.Booking, 0)
	for _, b := range s.bookings {
		cp := b
		if match(&cp) {
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].StartTime.Equal(out[j].StartTime) {
			return out[i].ID < out[j].ID
		}
		return out[i].StartTime.Before(out[j].StartTime)
	})
	return out
}
