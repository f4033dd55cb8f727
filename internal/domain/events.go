package domain

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// EventType of a booking domain event
type EventType string

const (
	EventBookingCreated   EventType = "BookingCreated"
	EventBookingCancelled EventType = "BookingCancelled"
	EventBookingCompleted EventType = "BookingCompleted"
)

// RoutingKey is the broker routing key for the event type
func (t EventType) RoutingKey() string {
	switch t {
	case EventBookingCreated:
		return "booking.created"
	case EventBookingCancelled:
		return "booking.cancelled"
	case EventBookingCompleted:
		return "booking.completed"
	default:
		return "booking.unknown"
	}
}

// Event is an outbox row written in the same transaction as the state change
type Event struct {
	ID          string
	BookingID   int64
	Type        EventType
	Payload     json.RawMessage
	OccurredAt  time.Time
	PublishedAt *time.Time
	Attempts    int
}

type BookingCreatedPayload struct {
	BookingID   int64     `json:"bookingId"`
	HirerID     int64     `json:"hirerId"`
	CompanionID int64     `json:"companionId"`
	StartTime   time.Time `json:"startTime"`
	EndTime     time.Time `json:"endTime"`
	BasePrice   int64     `json:"basePrice"`
	PlatformFee int64     `json:"platformFee"`
	TotalPrice  int64     `json:"totalPrice"`
}

type BookingCancelledPayload struct {
	BookingID    int64   `json:"bookingId"`
	HirerID      int64   `json:"hirerId"`
	CompanionID  int64   `json:"companionId"`
	CancelledBy  int64   `json:"cancelledBy"`
	ActorRole    Role    `json:"actorRole"`
	Reason       *string `json:"reason,omitempty"`
	FeeApplied   bool    `json:"feeApplied"`
	FeeAmount    int64   `json:"feeAmount"`
	RefundAmount int64   `json:"refundAmount"`
}

type BookingCompletedPayload struct {
	BookingID   int64     `json:"bookingId"`
	HirerID     int64     `json:"hirerId"`
	CompanionID int64     `json:"companionId"`
	CompletedAt time.Time `json:"completedAt"`
	TotalPrice  int64     `json:"totalPrice"`
}

// NewBookingCreatedEvent builds the event for a freshly inserted booking
func NewBookingCreatedEvent(b *Booking, now time.Time) (*Event, error) {
	return newEvent(b.ID, EventBookingCreated, now, BookingCreatedPayload{
		BookingID:   b.ID,
		HirerID:     b.HirerID,
		CompanionID: b.CompanionID,
		StartTime:   b.StartTime.UTC(),
		EndTime:     b.EndTime.UTC(),
		BasePrice:   b.BasePrice,
		PlatformFee: b.PlatformFee,
		TotalPrice:  b.TotalPrice(),
	})
}

// NewBookingCancelledEvent builds the event consumed by the payment collaborator
func NewBookingCancelledEvent(b *Booking, now time.Time) (*Event, error) {
	p := BookingCancelledPayload{
		BookingID:   b.ID,
		HirerID:     b.HirerID,
		CompanionID: b.CompanionID,
		Reason:      b.CancellationReason,
	}
	if b.CancelledBy != nil {
		p.CancelledBy = b.CancelledBy.ID
		p.ActorRole = b.CancelledBy.Role
	}
	if b.CancellationFee != nil {
		p.FeeAmount = *b.CancellationFee
		p.FeeApplied = *b.CancellationFee > 0
	}
	if b.RefundAmount != nil {
		p.RefundAmount = *b.RefundAmount
	}
	return newEvent(b.ID, EventBookingCancelled, now, p)
}

// NewBookingCompletedEvent builds the event emitted when a booking completes
func NewBookingCompletedEvent(b *Booking, now time.Time) (*Event, error) {
	completedAt := now
	if b.CompletedAt != nil {
		completedAt = *b.CompletedAt
	}
	return newEvent(b.ID, EventBookingCompleted, now, BookingCompletedPayload{
		BookingID:   b.ID,
		HirerID:     b.HirerID,
		CompanionID: b.CompanionID,
		CompletedAt: completedAt.UTC(),
		TotalPrice:  b.TotalPrice(),
	})
}

// EventsFor returns the events a transition into the booking's current status emits
func EventsFor(b *Booking, now time.Time) ([]*Event, error) {
	switch b.Status {
	case StatusCancelled:
		e, err := NewBookingCancelledEvent(b, now)
		if err != nil {
			return nil, err
		}
		return []*Event{e}, nil
	case StatusCompleted:
		e, err := NewBookingCompletedEvent(b, now)
		if err != nil {
			return nil, err
		}
		return []*Event{e}, nil
	default:
		return nil, nil
	}
}

func newEvent(bookingID int64, t EventType, now time.Time, payload any) (*Event, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal %s payload: %w", t, err)
	}
	return &Event{
		ID:         uuid.NewString(),
		BookingID:  bookingID,
		Type:       t,
		Payload:    raw,
		OccurredAt: now,
	}, nil
}
