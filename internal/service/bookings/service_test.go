package bookings

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-CompanionBooking/internal/domain"
	"github.com/m04kA/SMC-CompanionBooking/internal/service/bookings/models"
	"github.com/m04kA/SMC-CompanionBooking/internal/testutil"
	"github.com/m04kA/SMC-CompanionBooking/pkg/logger"
	"github.com/m04kA/SMC-CompanionBooking/pkg/ptr"
)

const (
	hirerID     = int64(1)
	companionID = int64(7)
)

var base = time.Date(2026, 5, 4, 18, 0, 0, 0, time.UTC)

func seedBookings(store *testutil.BookingStore) (pending, cancelled *domain.Booking) {
	pending = store.Seed(domain.Booking{
		HirerID: hirerID, CompanionID: companionID,
		StartTime: base, EndTime: base.Add(2 * time.Hour),
		Status: domain.StatusPending, BasePrice: 800_000, PlatformFee: 80_000,
	})
	fee, refund := int64(440_000), int64(440_000)
	cancelledAt := base.Add(-5 * time.Hour)
	cancelled = store.Seed(domain.Booking{
		HirerID: hirerID, CompanionID: companionID,
		StartTime: base.Add(24 * time.Hour), EndTime: base.Add(26 * time.Hour),
		Status: domain.StatusCancelled, BasePrice: 800_000, PlatformFee: 80_000,
		CancellationFee: &fee, RefundAmount: &refund,
		Cancellation: &domain.CancellationRecord{FeePercent: 0.5, HoursUntilStart: 10},
		CancelledBy:  &domain.Actor{ID: hirerID, Role: domain.RoleHirer},
		CancelledAt:  &cancelledAt,
	})
	store.Seed(domain.Booking{
		HirerID: 2, CompanionID: 8,
		StartTime: base, EndTime: base.Add(time.Hour),
		Status: domain.StatusConfirmed,
	})
	return pending, cancelled
}

func TestService_GetByID(t *testing.T) {
	store := testutil.NewBookingStore()
	pending, cancelled := seedBookings(store)
	svc := NewService(store, logger.NewNop())
	ctx := context.Background()

	t.Run("hirer sees price breakdown", func(t *testing.T) {
		resp, err := svc.GetByID(ctx, pending.ID, domain.Actor{ID: hirerID, Role: domain.RoleHirer})
		require.NoError(t, err)
		assert.Equal(t, int64(880_000), resp.PriceBreakdown.Total)
		assert.Equal(t, 2.0, resp.DurationHours)
		assert.Nil(t, resp.Cancellation)
	})

	t.Run("cancellation details", func(t *testing.T) {
		resp, err := svc.GetByID(ctx, cancelled.ID, domain.Actor{ID: companionID, Role: domain.RoleCompanion})
		require.NoError(t, err)
		require.NotNil(t, resp.Cancellation)
		assert.Equal(t, int64(440_000), resp.Cancellation.FeeAmount)
		assert.Equal(t, "hirer", resp.Cancellation.CancelledByRole)
		assert.Equal(t, hirerID, *resp.Cancellation.CancelledByID)
	})

	t.Run("admin", func(t *testing.T) {
		_, err := svc.GetByID(ctx, pending.ID, domain.Actor{ID: 900, Role: domain.RoleAdmin})
		assert.NoError(t, err)
	})

	t.Run("stranger", func(t *testing.T) {
		_, err := svc.GetByID(ctx, pending.ID, domain.Actor{ID: 42})
		assert.ErrorIs(t, err, ErrAccessDenied)
	})

	t.Run("not found", func(t *testing.T) {
		_, err := svc.GetByID(ctx, 404, domain.Actor{ID: hirerID})
		assert.ErrorIs(t, err, domain.ErrBookingNotFound)
	})
}

func TestService_GetHirerBookings(t *testing.T) {
	store := testutil.NewBookingStore()
	seedBookings(store)
	svc := NewService(store, logger.NewNop())

	all, err := svc.GetHirerBookings(context.Background(), &models.GetHirerBookingsRequest{HirerID: hirerID})
	require.NoError(t, err)
	assert.Len(t, all.Bookings, 2)

	cancelled, err := svc.GetHirerBookings(context.Background(), &models.GetHirerBookingsRequest{HirerID: hirerID, Status: ptr.Ptr("cancelled")})
	require.NoError(t, err)
	require.Len(t, cancelled.Bookings, 1)
	assert.Equal(t, "CANCELLED", cancelled.Bookings[0].Status)

	_, err = svc.GetHirerBookings(context.Background(), &models.GetHirerBookingsRequest{HirerID: hirerID, Status: ptr.Ptr("archived")})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestService_GetCompanionBookings(t *testing.T) {
	store := testutil.NewBookingStore()
	seedBookings(store)
	svc := NewService(store, logger.NewNop())
	ctx := context.Background()
	self := domain.Actor{ID: companionID, Role: domain.RoleCompanion}

	active, err := svc.GetCompanionBookings(ctx, &models.GetCompanionBookingsRequest{Actor: self, CompanionID: companionID})
	require.NoError(t, err)
	assert.Len(t, active.Bookings, 1)

	withInactive, err := svc.GetCompanionBookings(ctx, &models.GetCompanionBookingsRequest{Actor: self, CompanionID: companionID, IncludeInactive: true})
	require.NoError(t, err)
	assert.Len(t, withInactive.Bookings, 2)

	terminal, err := svc.GetCompanionBookings(ctx, &models.GetCompanionBookingsRequest{Actor: self, CompanionID: companionID, Status: ptr.Ptr("CANCELLED")})
	require.NoError(t, err)
	assert.Len(t, terminal.Bookings, 1)

	from, to := base.Add(time.Hour), base
	_, err = svc.GetCompanionBookings(ctx, &models.GetCompanionBookingsRequest{Actor: self, CompanionID: companionID, From: &from, To: &to})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.GetCompanionBookings(ctx, &models.GetCompanionBookingsRequest{Actor: domain.Actor{ID: hirerID, Role: domain.RoleHirer}, CompanionID: companionID})
	assert.ErrorIs(t, err, ErrAccessDenied)
}
