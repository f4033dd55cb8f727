package sweeper

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

var now = time.Date(2026, 5, 4, 20, 0, 0, 0, time.UTC)

type fixture struct {
	sweeper  *Sweeper
	bookings *testutil.BookingStore
	events   *testutil.EventStore
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	bookings := testutil.NewBookingStore()
	events := testutil.NewEventStore()

	s := New(
		bookings,
		events,
		&testutil.StaticPolicy{P: domain.DefaultBookingPolicy()},
		testutil.NewTxManager(bookings, events),
		metrics.NewNop(),
		logger.NewNop(),
		time.Minute,
		10,
	)
	s.timeProvider = testutil.NewClock(now)
	return &fixture{sweeper: s, bookings: bookings, events: events}
}

func (f *fixture) seed(status domain.BookingStatus, start, end, created time.Time) *domain.Booking {
	return f.bookings.Seed(domain.Booking{
		HirerID:     1,
		CompanionID: 7,
		StartTime:   start,
		EndTime:     end,
		Status:      status,
		BasePrice:   400_000,
		PlatformFee: 40_000,
		CreatedAt:   created,
	})
}

func TestRunOnce(t *testing.T) {
	f := newFixture(t)
	h := time.Hour

	stalePending := f.seed(domain.StatusPending, now.Add(48*h), now.Add(50*h), now.Add(-25*h))
	startedPending := f.seed(domain.StatusPending, now.Add(-h), now.Add(h), now.Add(-2*h))
	freshPending := f.seed(domain.StatusPending, now.Add(48*h), now.Add(50*h), now.Add(-h))
	dueConfirmed := f.seed(domain.StatusConfirmed, now.Add(-h), now.Add(h), now.Add(-5*h))
	finishedConfirmed := f.seed(domain.StatusConfirmed, now.Add(-3*h), now.Add(-h), now.Add(-5*h))
	dueActive := f.seed(domain.StatusActive, now.Add(-2*h), now, now.Add(-5*h))
	runningActive := f.seed(domain.StatusActive, now.Add(-h), now.Add(h), now.Add(-5*h))

	res, err := f.sweeper.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Result{Expired: 2, Started: 2, Completed: 2}, res)

	assert.Equal(t, domain.StatusCancelled, f.bookings.Get(stalePending.ID).Status)
	assert.Equal(t, domain.StatusCancelled, f.bookings.Get(startedPending.ID).Status)
	assert.Equal(t, domain.StatusPending, f.bookings.Get(freshPending.ID).Status)
	assert.Equal(t, domain.StatusActive, f.bookings.Get(dueConfirmed.ID).Status)
	assert.Equal(t, domain.StatusCompleted, f.bookings.Get(finishedConfirmed.ID).Status)
	assert.Equal(t, domain.StatusCompleted, f.bookings.Get(dueActive.ID).Status)
	assert.Equal(t, domain.StatusActive, f.bookings.Get(runningActive.ID).Status)

	expired := f.bookings.Get(stalePending.ID)
	require.NotNil(t, expired.RefundAmount)
	assert.Equal(t, int64(440_000), *expired.RefundAmount)
	assert.Equal(t, domain.RoleSystem, expired.CancelledBy.Role)

	assert.Len(t, f.events.OfType(domain.EventBookingCancelled), 2)
	assert.Len(t, f.events.OfType(domain.EventBookingCompleted), 2)

	// второй проход ничего не меняет
	res, err = f.sweeper.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Result{}, res)
}

func TestRunOnce_RespectsBatchSize(t *testing.T) {
	f := newFixture(t)
	f.sweeper.batchSize = 2
	for i := 0; i < 5; i++ {
		start := now.Add(-time.Duration(i+1) * time.Hour)
		f.seed(domain.StatusConfirmed, start, start.Add(3*time.Hour), now.Add(-24*time.Hour))
	}

	res, err := f.sweeper.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, res.Started)
}
