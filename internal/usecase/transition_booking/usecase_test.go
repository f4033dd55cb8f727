package transition_booking

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-CompanionBooking/internal/domain"
	"github.com/m04kA/SMC-CompanionBooking/internal/testutil"
	"github.com/m04kA/SMC-CompanionBooking/pkg/logger"
	"github.com/m04kA/SMC-CompanionBooking/pkg/metrics"
)

const (
	hirerID     = int64(1)
	companionID = int64(7)
	adminID     = int64(900)
)

var now = time.Date(2026, 5, 4, 9, 0, 0, 0, time.UTC)

func newUseCase(t *testing.T) (*UseCase, *testutil.BookingStore, *testutil.EventStore) {
	t.Helper()
	bookings := testutil.NewBookingStore()
	events := testutil.NewEventStore()
	uc := NewUseCase(
		bookings,
		events,
		&testutil.StaticPolicy{P: domain.DefaultBookingPolicy()},
		testutil.NewTxManager(bookings, events),
		metrics.NewNop(),
		logger.NewNop(),
	)
	uc.timeProvider = testutil.NewClock(now)
	return uc, bookings, events
}

func seed(store *testutil.BookingStore, status domain.BookingStatus) *domain.Booking {
	return seedAt(store, status, now.Add(5*time.Hour))
}

// seedAt сохраняет двухчасовое бронирование, начинающееся в start
func seedAt(store *testutil.BookingStore, status domain.BookingStatus, start time.Time) *domain.Booking {
	return store.Seed(domain.Booking{
		HirerID:     hirerID,
		CompanionID: companionID,
		StartTime:   start,
		EndTime:     start.Add(2 * time.Hour),
		Status:      status,
		BasePrice:   800_000,
		PlatformFee: 80_000,
		CreatedAt:   now.Add(-time.Hour),
	})
}

func TestExecute_AllowedTransitions(t *testing.T) {
	tests := []struct {
		name      string
		from      domain.BookingStatus
		startIn   time.Duration
		action    string
		actorID   int64
		isAdmin   bool
		want      domain.BookingStatus
		wantEvent domain.EventType
	}{
		{name: "companion accepts", from: domain.StatusPending, action: "accept", actorID: companionID, want: domain.StatusConfirmed},
		{name: "companion declines", from: domain.StatusPending, action: "decline", actorID: companionID, want: domain.StatusCancelled, wantEvent: domain.EventBookingCancelled},
		{name: "hirer completes after end", from: domain.StatusActive, startIn: -3 * time.Hour, action: "complete", actorID: hirerID, want: domain.StatusCompleted, wantEvent: domain.EventBookingCompleted},
		{name: "companion disputes", from: domain.StatusActive, action: "dispute", actorID: companionID, want: domain.StatusDisputed},
		{name: "admin resolves complete", from: domain.StatusDisputed, action: "resolve_complete", actorID: adminID, isAdmin: true, want: domain.StatusCompleted, wantEvent: domain.EventBookingCompleted},
		{name: "admin resolves cancel", from: domain.StatusDisputed, action: "resolve_cancel", actorID: adminID, isAdmin: true, want: domain.StatusCancelled, wantEvent: domain.EventBookingCancelled},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc, bookings, events := newUseCase(t)
			startIn := tt.startIn
			if startIn == 0 {
				startIn = 5 * time.Hour
			}
			b := seedAt(bookings, tt.from, now.Add(startIn))

			resp, err := uc.Execute(context.Background(), &Request{
				BookingID: b.ID, ActorID: tt.actorID, IsAdmin: tt.isAdmin, Action: tt.action, Reason: "because",
			})
			require.NoError(t, err)
			assert.Equal(t, string(tt.from), resp.PreviousStatus)
			assert.Equal(t, string(tt.want), resp.Status)

			stored := bookings.Get(b.ID)
			assert.Equal(t, tt.want, stored.Status)
			assert.Equal(t, now, stored.LastTransitionAt)

			if tt.wantEvent == "" {
				assert.Empty(t, events.Events())
			} else {
				require.Len(t, events.Events(), 1)
				assert.Equal(t, tt.wantEvent, events.Events()[0].Type)
			}
		})
	}
}

func TestExecute_DeclineRefundsInFull(t *testing.T) {
	uc, bookings, _ := newUseCase(t)
	b := seed(bookings, domain.StatusPending)

	resp, err := uc.Execute(context.Background(), &Request{BookingID: b.ID, ActorID: companionID, Action: "decline"})
	require.NoError(t, err)
	require.NotNil(t, resp.RefundAmount)
	assert.Equal(t, int64(880_000), *resp.RefundAmount)
	assert.Zero(t, *bookings.Get(b.ID).CancellationFee)
}

func TestExecute_DisputeStoresReason(t *testing.T) {
	uc, bookings, _ := newUseCase(t)
	b := seed(bookings, domain.StatusActive)

	_, err := uc.Execute(context.Background(), &Request{BookingID: b.ID, ActorID: hirerID, Action: "dispute", Reason: "no show"})
	require.NoError(t, err)
	require.NotNil(t, bookings.Get(b.ID).DisputeReason)
	assert.Equal(t, "no show", *bookings.Get(b.ID).DisputeReason)
}

func TestExecute_Rejections(t *testing.T) {
	tests := []struct {
		name    string
		from    domain.BookingStatus
		action  string
		actorID int64
		isAdmin bool
		wantErr error
	}{
		{name: "hirer cannot accept", from: domain.StatusPending, action: "accept", actorID: hirerID, wantErr: ErrAccessDenied},
		{name: "stranger cannot complete", from: domain.StatusActive, action: "complete", actorID: 42, wantErr: ErrAccessDenied},
		{name: "companion cannot resolve", from: domain.StatusDisputed, action: "resolve_cancel", actorID: companionID, wantErr: ErrAccessDenied},
		{name: "system action hidden", from: domain.StatusPending, action: "expire", actorID: companionID, wantErr: ErrUnknownAction},
		{name: "cancel has its own endpoint", from: domain.StatusPending, action: "cancel", actorID: hirerID, wantErr: ErrUnknownAction},
		{name: "garbage action", from: domain.StatusPending, action: "teleport", actorID: hirerID, wantErr: ErrUnknownAction},
		{name: "complete before start", from: domain.StatusConfirmed, action: "complete", actorID: hirerID, wantErr: domain.ErrBookingInvalidState},
		{name: "accept twice", from: domain.StatusConfirmed, action: "accept", actorID: companionID, wantErr: domain.ErrBookingInvalidState},
		{name: "dispute completed booking", from: domain.StatusCompleted, action: "dispute", actorID: hirerID, wantErr: domain.ErrBookingInvalidState},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc, bookings, events := newUseCase(t)
			b := seed(bookings, tt.from)

			_, err := uc.Execute(context.Background(), &Request{BookingID: b.ID, ActorID: tt.actorID, IsAdmin: tt.isAdmin, Action: tt.action})
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, tt.from, bookings.Get(b.ID).Status)
			assert.Empty(t, events.Events())
		})
	}
}

func TestExecute_CompleteBeforeEndRejected(t *testing.T) {
	uc, bookings, events := newUseCase(t)
	b := seedAt(bookings, domain.StatusActive, now.Add(-time.Hour))

	for _, actorID := range []int64{companionID, hirerID} {
		_, err := uc.Execute(context.Background(), &Request{BookingID: b.ID, ActorID: actorID, Action: "complete"})
		require.ErrorIs(t, err, domain.ErrBookingInvalidState)

		de, _ := domain.AsError(err)
		assert.Equal(t, domain.TimingNotEnded, de.Meta["reason"])
		assert.Equal(t, b.EndTime.Format(time.RFC3339), de.Meta["at"])
	}

	stored := bookings.Get(b.ID)
	assert.Equal(t, domain.StatusActive, stored.Status)
	assert.Nil(t, stored.CompletedAt)
	assert.Empty(t, events.Events())
}

func TestExecute_CompleteAtEnd(t *testing.T) {
	uc, bookings, events := newUseCase(t)
	b := seedAt(bookings, domain.StatusActive, now.Add(-2*time.Hour))

	resp, err := uc.Execute(context.Background(), &Request{BookingID: b.ID, ActorID: companionID, Action: "complete"})
	require.NoError(t, err)
	assert.Equal(t, string(domain.StatusCompleted), resp.Status)
	require.Len(t, events.OfType(domain.EventBookingCompleted), 1)
}

func TestExecute_AcceptExpiredRequestRejected(t *testing.T) {
	tests := []struct {
		name      string
		createdAt time.Time
		start     time.Time
	}{
		{name: "waited past pending expiry", createdAt: now.Add(-25 * time.Hour), start: now.Add(5 * time.Hour)},
		{name: "start already reached", createdAt: now.Add(-2 * time.Hour), start: now.Add(-time.Minute)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc, bookings, events := newUseCase(t)
			b := bookings.Seed(domain.Booking{
				HirerID:     hirerID,
				CompanionID: companionID,
				StartTime:   tt.start,
				EndTime:     tt.start.Add(2 * time.Hour),
				Status:      domain.StatusPending,
				BasePrice:   800_000,
				CreatedAt:   tt.createdAt,
			})

			_, err := uc.Execute(context.Background(), &Request{BookingID: b.ID, ActorID: companionID, Action: "accept"})
			require.ErrorIs(t, err, domain.ErrBookingInvalidState)

			de, _ := domain.AsError(err)
			assert.Equal(t, domain.TimingRequestExpired, de.Meta["reason"])
			assert.Equal(t, domain.StatusPending, bookings.Get(b.ID).Status)
			assert.Empty(t, events.Events())
		})
	}
}

func TestExecute_InvalidStateMeta(t *testing.T) {
	uc, bookings, _ := newUseCase(t)
	b := seed(bookings, domain.StatusCompleted)

	_, err := uc.Execute(context.Background(), &Request{BookingID: b.ID, ActorID: companionID, Action: "accept"})
	de, ok := domain.AsError(err)
	require.True(t, ok)
	assert.Equal(t, b.ID, de.Meta["bookingId"])
	assert.Equal(t, "COMPLETED", de.Meta["currentState"])
	assert.Equal(t, []string{"PENDING"}, de.Meta["expectedState"])
}

func TestExecute_NotFound(t *testing.T) {
	uc, _, _ := newUseCase(t)
	_, err := uc.Execute(context.Background(), &Request{BookingID: 5, ActorID: hirerID, Action: "complete"})
	assert.ErrorIs(t, err, domain.ErrBookingNotFound)
}
