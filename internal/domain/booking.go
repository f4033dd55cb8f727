package domain

import (
	"time"

	"github.com/m04kA/SMC-CompanionBooking/pkg/interval"
)

// BookingStatus represents the status of a booking
type BookingStatus string

const (
	StatusPending   BookingStatus = "PENDING"
	StatusConfirmed BookingStatus = "CONFIRMED"
	StatusActive    BookingStatus = "ACTIVE"
	StatusCompleted BookingStatus = "COMPLETED"
	StatusCancelled BookingStatus = "CANCELLED"
	StatusDisputed  BookingStatus = "DISPUTED"
)

// AllStatuses lists every booking status in lifecycle order
var AllStatuses = []BookingStatus{
	StatusPending,
	StatusConfirmed,
	StatusActive,
	StatusCompleted,
	StatusCancelled,
	StatusDisputed,
}

// ParseBookingStatus validates a raw status value
func ParseBookingStatus(s string) (BookingStatus, bool) {
	for _, st := range AllStatuses {
		if string(st) == s {
			return st, true
		}
	}
	return "", false
}

// Role of the party performing an action on a booking
type Role string

const (
	RoleHirer     Role = "hirer"
	RoleCompanion Role = "companion"
	RoleAdmin     Role = "admin"
	RoleSystem    Role = "system"
)

// Actor identifies who triggers a transition. System actors have ID 0.
type Actor struct {
	ID   int64
	Role Role
}

// SystemActor is used by scheduled transitions
var SystemActor = Actor{Role: RoleSystem}

// CancellationRecord captures how the cancellation fee was decided
type CancellationRecord struct {
	FeePercent        float64
	HoursUntilStart   float64
	FreeWindowHonored bool
}

// Booking is the aggregate root for a reserved companion interval
type Booking struct {
	ID          int64
	HirerID     int64
	CompanionID int64
	StartTime   time.Time
	EndTime     time.Time
	Status      BookingStatus

	// Money in minor-less whole currency units
	BasePrice       int64
	PlatformFee     int64
	CancellationFee *int64
	RefundAmount    *int64
	Cancellation    *CancellationRecord

	Notes         *string
	DisputeReason *string

	CancellationReason *string
	CancelledBy        *Actor
	CancelledAt        *time.Time
	CompletedAt        *time.Time

	CreatedAt        time.Time
	LastTransitionAt time.Time
}

// TotalPrice is what the hirer pays: base price plus platform fee
func (b *Booking) TotalPrice() int64 {
	return b.BasePrice + b.PlatformFee
}

// DurationHours returns the booked duration in hours
func (b *Booking) DurationHours() float64 {
	return interval.DurationHours(b.StartTime, b.EndTime)
}

// IsActive returns true if the booking holds the companion's time
func (b *Booking) IsActive() bool {
	for _, s := range ActiveStatuses {
		if b.Status == s {
			return true
		}
	}
	return false
}

// CanBeCancelled returns true if the booking can be cancelled
func (b *Booking) CanBeCancelled() bool {
	return b.Status == StatusPending || b.Status == StatusConfirmed
}

// IsTerminal returns true if no further transitions are possible
func (b *Booking) IsTerminal() bool {
	return b.Status == StatusCompleted || b.Status == StatusCancelled
}

// Overlaps reports whether the booking intersects [start, end)
func (b *Booking) Overlaps(start, end time.Time) bool {
	return interval.Overlaps(b.StartTime, b.EndTime, start, end)
}

// RoleOf resolves the party role of userID in this booking.
// Returns false when the user is neither the hirer nor the companion.
func (b *Booking) RoleOf(userID int64) (Role, bool) {
	switch userID {
	case b.HirerID:
		return RoleHirer, true
	case b.CompanionID:
		return RoleCompanion, true
	default:
		return "", false
	}
}

// Apply moves the booking through the state table and stamps audit fields.
// It never reads the clock: now is supplied by the caller.
func (b *Booking) Apply(action Action, now time.Time) error {
	next, err := Next(b.Status, action)
	if err != nil {
		return NewInvalidState(b.ID, b.Status, action, SourcesOf(action))
	}

	b.Status = next
	b.LastTransitionAt = now

	switch next {
	case StatusCompleted:
		b.CompletedAt = &now
	case StatusCancelled:
		b.CancelledAt = &now
	}
	return nil
}

// Cancel applies the cancel action and records fee, refund, actor and reason
func (b *Booking) Cancel(quote CancellationQuote, actor Actor, reason string, now time.Time) error {
	if !b.CanBeCancelled() {
		return NewCancellationDenied(b.ID, b.Status, CancellationDeniedInvalidState)
	}
	if err := b.Apply(ActionCancel, now); err != nil {
		return err
	}
	b.settleCancellation(quote, actor, reason)
	return nil
}

// Close cancels a booking through a non-cancel action (decline, expire,
// resolve_cancel). The hirer is refunded in full.
func (b *Booking) Close(action Action, actor Actor, reason string, now time.Time) error {
	if err := b.Apply(action, now); err != nil {
		return err
	}
	if b.Status == StatusCancelled {
		b.settleCancellation(FullRefund(b.TotalPrice(), b.StartTime, now), actor, reason)
	}
	return nil
}

// DueAction returns the timed transition owed at now. A pending request
// expires once it was created at or before pendingCutoff or its start has
// come; confirmed bookings start at start, active ones complete at end.
func (b *Booking) DueAction(now, pendingCutoff time.Time) (Action, bool) {
	switch b.Status {
	case StatusPending:
		if !b.CreatedAt.After(pendingCutoff) || !b.StartTime.After(now) {
			return ActionExpire, true
		}
	case StatusConfirmed:
		if !b.StartTime.After(now) {
			return ActionStart, true
		}
	case StatusActive:
		if !b.EndTime.After(now) {
			return ActionComplete, true
		}
	}
	return "", false
}

// CheckTiming rejects party actions the clock has overtaken or not reached:
// accepting a request that is due to expire and completing before end.
func (b *Booking) CheckTiming(action Action, now, pendingCutoff time.Time) error {
	switch action {
	case ActionAccept:
		if due, ok := b.DueAction(now, pendingCutoff); ok && due == ActionExpire {
			expiry := b.CreatedAt.Add(now.Sub(pendingCutoff))
			if b.StartTime.Before(expiry) {
				expiry = b.StartTime
			}
			return NewInvalidStateAt(b.ID, b.Status, action, TimingRequestExpired, expiry)
		}
	case ActionComplete:
		if b.Status == StatusActive && now.Before(b.EndTime) {
			return NewInvalidStateAt(b.ID, b.Status, action, TimingNotEnded, b.EndTime)
		}
	}
	return nil
}

func (b *Booking) settleCancellation(quote CancellationQuote, actor Actor, reason string) {
	fee := quote.FeeAmount
	refund := quote.RefundAmount
	b.CancellationFee = &fee
	b.RefundAmount = &refund
	b.Cancellation = &CancellationRecord{
		FeePercent:        quote.FeePercent,
		HoursUntilStart:   quote.HoursUntilStart,
		FreeWindowHonored: quote.FreeWindowHonored,
	}
	b.CancelledBy = &actor
	if reason != "" {
		b.CancellationReason = &reason
	}
}

// CancellationQuote is the outcome of the cancellation fee computation
type CancellationQuote struct {
	FeeApplied        bool
	FeeAmount         int64
	RefundAmount      int64
	FeePercent        float64
	HoursUntilStart   float64
	FreeWindowHonored bool
}

// FullRefund quotes a cancellation with no fee
func FullRefund(price int64, start, now time.Time) CancellationQuote {
	return CancellationQuote{
		RefundAmount:      price,
		HoursUntilStart:   start.Sub(now).Hours(),
		FreeWindowHonored: true,
	}
}

// CompanionBookingsFilter фильтр для получения бронирований компаньона
type CompanionBookingsFilter struct {
	CompanionID     int64          // Обязательный параметр
	From            *time.Time     // Начало периода по start_time (опционально)
	To              *time.Time     // Конец периода по start_time (опционально)
	Status          *BookingStatus // Фильтр по статусу (опционально)
	IncludeInactive bool           // Включать ли завершённые и отменённые
}
