package domain

import (
	"errors"
	"fmt"
	"time"
)

// ErrorKind is the closed set of business error kinds.
// The string value doubles as the stable machine-readable code.
type ErrorKind string

const (
	KindBookingNotFound           ErrorKind = "BOOKING_NOT_FOUND"
	KindBookingConflict           ErrorKind = "BOOKING_CONFLICT"
	KindBookingInvalidState       ErrorKind = "BOOKING_INVALID_STATE"
	KindBookingFrequencyLimit     ErrorKind = "BOOKING_FREQUENCY_LIMIT"
	KindDoubleBooking             ErrorKind = "DOUBLE_BOOKING"
	KindBookingCancellationDenied ErrorKind = "BOOKING_CANCELLATION_DENIED"
	KindReviewWindowExpired       ErrorKind = "REVIEW_WINDOW_EXPIRED"
	KindCompanionNotAvailable     ErrorKind = "COMPANION_NOT_AVAILABLE"
)

// Error is a business rule violation with enough metadata to reconstruct the decision
type Error struct {
	Kind    ErrorKind
	Message string
	Meta    map[string]any
}

func (e *Error) Error() string {
	if e.Message == "" {
		return string(e.Kind)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Is matches any *Error of the same kind, so errors.Is(err, ErrDoubleBooking) works
// on values produced by the constructors below.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

// Code returns the stable machine-readable code
func (e *Error) Code() string {
	return string(e.Kind)
}

// Sentinels for errors.Is
var (
	ErrBookingNotFound           = &Error{Kind: KindBookingNotFound}
	ErrBookingConflict           = &Error{Kind: KindBookingConflict}
	ErrBookingInvalidState       = &Error{Kind: KindBookingInvalidState}
	ErrBookingFrequencyLimit     = &Error{Kind: KindBookingFrequencyLimit}
	ErrDoubleBooking             = &Error{Kind: KindDoubleBooking}
	ErrBookingCancellationDenied = &Error{Kind: KindBookingCancellationDenied}
	ErrReviewWindowExpired       = &Error{Kind: KindReviewWindowExpired}
	ErrCompanionNotAvailable     = &Error{Kind: KindCompanionNotAvailable}
)

// AsError extracts the business error from a wrapped chain
func AsError(err error) (*Error, bool) {
	var de *Error
	if errors.As(err, &de) {
		return de, true
	}
	return nil, false
}

// KindOf returns the business kind of err or "" for non-business errors
func KindOf(err error) ErrorKind {
	if de, ok := AsError(err); ok {
		return de.Kind
	}
	return ""
}

// Frequency limit window names
const (
	LimitDaily   = "daily"
	LimitWeekly  = "weekly"
	LimitMonthly = "monthly"
)

// CancellationDeniedInvalidState is the reason used when the status forbids cancelling
const CancellationDeniedInvalidState = "invalid state"

// Reasons for an action the state table allows but the clock does not
const (
	TimingRequestExpired = "request expired"
	TimingNotEnded       = "booking has not ended"
)

func NewBookingNotFound(bookingID int64) *Error {
	return &Error{
		Kind:    KindBookingNotFound,
		Message: fmt.Sprintf("booking %d not found", bookingID),
		Meta:    map[string]any{"bookingId": bookingID},
	}
}

func NewBookingConflict(message string, meta map[string]any) *Error {
	if meta == nil {
		meta = map[string]any{}
	}
	return &Error{Kind: KindBookingConflict, Message: message, Meta: meta}
}

func NewInvalidState(bookingID int64, current BookingStatus, action Action, expected []BookingStatus) *Error {
	exp := make([]string, len(expected))
	for i, s := range expected {
		exp[i] = string(s)
	}
	return &Error{
		Kind:    KindBookingInvalidState,
		Message: fmt.Sprintf("action %s is not allowed from status %s", action, current),
		Meta: map[string]any{
			"bookingId":     bookingID,
			"currentState":  string(current),
			"action":        string(action),
			"expectedState": exp,
		},
	}
}

// NewInvalidStateAt rejects an action that is legal from current but not at
// this moment. at is the instant the rule turns on: the expiry of a pending
// request or the end of the booked interval.
func NewInvalidStateAt(bookingID int64, current BookingStatus, action Action, reason string, at time.Time) *Error {
	e := NewInvalidState(bookingID, current, action, SourcesOf(action))
	e.Message = fmt.Sprintf("action %s is not allowed now: %s", action, reason)
	e.Meta["reason"] = reason
	e.Meta["at"] = at.UTC().Format(time.RFC3339)
	return e
}

func NewFrequencyLimit(limitType string, limit, current int) *Error {
	return &Error{
		Kind:    KindBookingFrequencyLimit,
		Message: fmt.Sprintf("%s booking limit reached (%d of %d)", limitType, current, limit),
		Meta: map[string]any{
			"limitType": limitType,
			"limit":     limit,
			"current":   current,
		},
	}
}

func NewDoubleBooking(companionID int64, start, end time.Time, conflictingID int64) *Error {
	return &Error{
		Kind:    KindDoubleBooking,
		Message: fmt.Sprintf("companion %d already has a booking overlapping the requested interval", companionID),
		Meta: map[string]any{
			"companionId":          companionID,
			"startTime":            start.UTC().Format(time.RFC3339),
			"endTime":              end.UTC().Format(time.RFC3339),
			"conflictingBookingId": conflictingID,
		},
	}
}

func NewCancellationDenied(bookingID int64, current BookingStatus, reason string) *Error {
	return &Error{
		Kind:    KindBookingCancellationDenied,
		Message: fmt.Sprintf("booking %d cannot be cancelled: %s", bookingID, reason),
		Meta: map[string]any{
			"bookingId":    bookingID,
			"reason":       reason,
			"currentState": string(current),
		},
	}
}

func NewReviewWindowExpired(windowDays int, completedAt time.Time) *Error {
	return &Error{
		Kind:    KindReviewWindowExpired,
		Message: fmt.Sprintf("reviews are accepted within %d days after completion", windowDays),
		Meta: map[string]any{
			"windowDays":  windowDays,
			"completedAt": completedAt.UTC().Format(time.RFC3339),
		},
	}
}

func NewCompanionNotAvailable(companionID int64, start, end time.Time) *Error {
	return &Error{
		Kind:    KindCompanionNotAvailable,
		Message: fmt.Sprintf("companion %d is not available in the requested interval", companionID),
		Meta: map[string]any{
			"companionId": companionID,
			"startTime":   start.UTC().Format(time.RFC3339),
			"endTime":     end.UTC().Format(time.RFC3339),
		},
	}
}

// ResultLabel collapses err into a low-cardinality label: "ok", the business kind, or "error"
func ResultLabel(err error) string {
	if err == nil {
		return "ok"
	}
	if kind := KindOf(err); kind != "" {
		return string(kind)
	}
	return "error"
}
