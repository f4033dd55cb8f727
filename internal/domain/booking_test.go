package domain

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestBooking(status BookingStatus) *Booking {
	start := time.Date(2026, 5, 4, 19, 0, 0, 0, time.UTC)
	return &Booking{
		ID:          1,
		HirerID:     10,
		CompanionID: 20,
		StartTime:   start,
		EndTime:     start.Add(2 * time.Hour),
		Status:      status,
		BasePrice:   900_000,
		PlatformFee: 100_000,
	}
}

func TestBooking_Cancel(t *testing.T) {
	now := time.Date(2026, 5, 4, 9, 0, 0, 0, time.UTC)
	b := newTestBooking(StatusConfirmed)
	quote := CancellationQuote{
		FeeApplied:      true,
		FeeAmount:       500_000,
		RefundAmount:    500_000,
		FeePercent:      0.5,
		HoursUntilStart: 10,
	}
	actor := Actor{ID: 10, Role: RoleHirer}

	require.NoError(t, b.Cancel(quote, actor, "plans changed", now))

	assert.Equal(t, StatusCancelled, b.Status)
	assert.Equal(t, int64(500_000), *b.CancellationFee)
	assert.Equal(t, int64(500_000), *b.RefundAmount)
	assert.Equal(t, actor, *b.CancelledBy)
	assert.Equal(t, "plans changed", *b.CancellationReason)
	assert.Equal(t, now, *b.CancelledAt)
	assert.False(t, b.Cancellation.FreeWindowHonored)
}

func TestBooking_CancelDeniedOnTerminal(t *testing.T) {
	for _, st := range []BookingStatus{StatusCompleted, StatusCancelled, StatusActive, StatusDisputed} {
		t.Run(string(st), func(t *testing.T) {
			b := newTestBooking(st)
			err := b.Cancel(CancellationQuote{}, Actor{ID: 10, Role: RoleHirer}, "", time.Now())

			assert.ErrorIs(t, err, ErrBookingCancellationDenied)
			de, _ := AsError(err)
			assert.Equal(t, CancellationDeniedInvalidState, de.Meta["reason"])
			assert.Equal(t, st, b.Status)
		})
	}
}

func TestBooking_CloseRefundsInFull(t *testing.T) {
	now := time.Date(2026, 5, 4, 18, 30, 0, 0, time.UTC)
	b := newTestBooking(StatusPending)

	require.NoError(t, b.Close(ActionExpire, SystemActor, "no response", now))

	assert.Equal(t, StatusCancelled, b.Status)
	assert.Equal(t, int64(0), *b.CancellationFee)
	assert.Equal(t, b.TotalPrice(), *b.RefundAmount)
	assert.Equal(t, RoleSystem, b.CancelledBy.Role)
}

func TestBooking_DueAction(t *testing.T) {
	now := time.Date(2026, 5, 4, 9, 0, 0, 0, time.UTC)
	cutoff := now.Add(-24 * time.Hour)

	tests := []struct {
		name      string
		status    BookingStatus
		createdAt time.Time
		start     time.Time
		want      Action
		wantDue   bool
	}{
		{name: "fresh request waits", status: StatusPending, createdAt: now.Add(-time.Hour), start: now.Add(5 * time.Hour)},
		{name: "request at cutoff expires", status: StatusPending, createdAt: cutoff, start: now.Add(5 * time.Hour), want: ActionExpire, wantDue: true},
		{name: "request reaching start expires", status: StatusPending, createdAt: now.Add(-time.Hour), start: now, want: ActionExpire, wantDue: true},
		{name: "confirmed starts", status: StatusConfirmed, createdAt: cutoff, start: now, want: ActionStart, wantDue: true},
		{name: "active completes at end", status: StatusActive, createdAt: cutoff, start: now.Add(-2 * time.Hour), want: ActionComplete, wantDue: true},
		{name: "active before end", status: StatusActive, createdAt: cutoff, start: now.Add(-time.Hour)},
		{name: "disputed waits for admin", status: StatusDisputed, createdAt: cutoff, start: now.Add(-5 * time.Hour)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := &Booking{Status: tt.status, CreatedAt: tt.createdAt, StartTime: tt.start, EndTime: tt.start.Add(2 * time.Hour)}
			action, ok := b.DueAction(now, cutoff)
			assert.Equal(t, tt.wantDue, ok)
			assert.Equal(t, tt.want, action)
		})
	}
}

func TestBooking_CheckTiming(t *testing.T) {
	now := time.Date(2026, 5, 4, 9, 0, 0, 0, time.UTC)
	cutoff := now.Add(-24 * time.Hour)

	b := &Booking{ID: 3, Status: StatusActive, CreatedAt: cutoff, StartTime: now.Add(-time.Hour), EndTime: now.Add(2 * time.Hour)}
	err := b.CheckTiming(ActionComplete, now, cutoff)
	require.ErrorIs(t, err, ErrBookingInvalidState)
	de, _ := AsError(err)
	assert.Equal(t, TimingNotEnded, de.Meta["reason"])
	assert.Equal(t, "2026-05-04T11:00:00Z", de.Meta["at"])

	assert.NoError(t, b.CheckTiming(ActionComplete, b.EndTime, cutoff))
	assert.NoError(t, b.CheckTiming(ActionDispute, now, cutoff))

	pending := &Booking{ID: 4, Status: StatusPending, CreatedAt: now.Add(-25 * time.Hour), StartTime: now.Add(5 * time.Hour), EndTime: now.Add(7 * time.Hour)}
	err = pending.CheckTiming(ActionAccept, now, cutoff)
	require.ErrorIs(t, err, ErrBookingInvalidState)
	de, _ = AsError(err)
	assert.Equal(t, TimingRequestExpired, de.Meta["reason"])
	assert.Equal(t, "2026-05-04T08:00:00Z", de.Meta["at"])

	pending.CreatedAt = now.Add(-time.Hour)
	assert.NoError(t, pending.CheckTiming(ActionAccept, now, cutoff))
}

func TestBooking_RoleOf(t *testing.T) {
	b := newTestBooking(StatusPending)

	role, ok := b.RoleOf(10)
	assert.True(t, ok)
	assert.Equal(t, RoleHirer, role)

	role, ok = b.RoleOf(20)
	assert.True(t, ok)
	assert.Equal(t, RoleCompanion, role)

	_, ok = b.RoleOf(99)
	assert.False(t, ok)
}

func TestErrorIsMatchesKindOnly(t *testing.T) {
	start := time.Date(2026, 5, 4, 19, 0, 0, 0, time.UTC)
	err := fmt.Errorf("create: %w", NewDoubleBooking(20, start, start.Add(time.Hour), 3))

	assert.ErrorIs(t, err, ErrDoubleBooking)
	assert.NotErrorIs(t, err, ErrBookingConflict)
	assert.Equal(t, KindDoubleBooking, KindOf(err))
	assert.Equal(t, ErrorKind(""), KindOf(fmt.Errorf("plain")))

	fl := NewFrequencyLimit(LimitDaily, 5, 5)
	assert.Equal(t, "BOOKING_FREQUENCY_LIMIT", fl.Code())
	assert.Equal(t, map[string]any{"limitType": "daily", "limit": 5, "current": 5}, fl.Meta)
}

func TestBookingPolicy_SetAndValidate(t *testing.T) {
	p := DefaultBookingPolicy()
	require.NoError(t, p.Validate())

	require.NoError(t, p.Set(KeyCancellationFeePercent, "0.25"))
	require.NoError(t, p.Set(KeyDailyBookingLimit, "3"))
	assert.Equal(t, 0.25, p.CancellationFeePercent)
	assert.Equal(t, 3, p.DailyBookingLimit)
	assert.Equal(t, "0.25", p.Values()[KeyCancellationFeePercent])

	assert.Error(t, p.Set(KeyDailyBookingLimit, "many"))
	assert.Error(t, p.Set("unknown", "1"))

	p.CancellationFeePercent = 1.5
	assert.Error(t, p.Validate())
}

func TestAvailabilitySlot_AppliesTo(t *testing.T) {
	monday := time.Monday
	recurring := AvailabilitySlot{DayOfWeek: &monday, Recurring: true}
	date := time.Date(2026, 5, 5, 0, 0, 0, 0, time.UTC)
	override := AvailabilitySlot{Date: &date}

	loc, _ := time.LoadLocation("Asia/Ho_Chi_Minh")
	assert.True(t, recurring.AppliesTo(time.Date(2026, 5, 4, 10, 0, 0, 0, loc)))
	assert.False(t, recurring.AppliesTo(time.Date(2026, 5, 5, 10, 0, 0, 0, loc)))
	assert.True(t, override.AppliesTo(time.Date(2026, 5, 5, 23, 0, 0, 0, loc)))
}

func TestEventsFor(t *testing.T) {
	now := time.Date(2026, 5, 4, 21, 0, 0, 0, time.UTC)
	b := newTestBooking(StatusActive)
	require.NoError(t, b.Apply(ActionComplete, now))

	events, err := EventsFor(b, now)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, EventBookingCompleted, events[0].Type)
	assert.Equal(t, "booking.completed", events[0].Type.RoutingKey())
	assert.NotEmpty(t, events[0].ID)
	assert.JSONEq(t, `{"bookingId":1,"hirerId":10,"companionId":20,"completedAt":"2026-05-04T21:00:00Z","totalPrice":1000000}`,
		string(events[0].Payload))
}
