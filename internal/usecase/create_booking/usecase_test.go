package create_booking

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-CompanionBooking/internal/domain"
	"github.com/m04kA/SMC-CompanionBooking/internal/integrations/profileservice"
	"github.com/m04kA/SMC-CompanionBooking/internal/service/availability"
	"github.com/m04kA/SMC-CompanionBooking/internal/testutil"
	"github.com/m04kA/SMC-CompanionBooking/pkg/logger"
	"github.com/m04kA/SMC-CompanionBooking/pkg/metrics"
	"github.com/m04kA/SMC-CompanionBooking/pkg/ptr"
	"github.com/m04kA/SMC-CompanionBooking/pkg/types"
)

const (
	companionID = int64(7)
	hourlyRate  = int64(500_000)
)

// 2026-05-04 is a Monday
var monday = time.Date(2026, 5, 4, 0, 0, 0, 0, time.UTC)

func at(h int) time.Time { return monday.Add(time.Duration(h) * time.Hour) }

type fixture struct {
	uc       *UseCase
	bookings *testutil.BookingStore
	events   *testutil.EventStore
	policy   *testutil.StaticPolicy
	clock    *testutil.Clock
	tx       *testutil.TxManager
}

type failingEvents struct{}

func (failingEvents) Append(ctx context.Context, events ...*domain.Event) error {
	return testutil.ErrInjected
}

func newFixture(t *testing.T, eventRepo EventRepository) *fixture {
	t.Helper()

	bookings := testutil.NewBookingStore()
	events := testutil.NewEventStore()
	if eventRepo == nil {
		eventRepo = events
	}
	tx := testutil.NewTxManager(bookings, events)

	schedules := testutil.Schedules{}
	for id := companionID; id < companionID+5; id++ {
		schedules[id] = &domain.CompanionSchedule{
			CompanionID: id,
			Slots: []domain.AvailabilitySlot{{
				DayOfWeek: ptr.Ptr(time.Monday),
				StartTime: types.MustTimeString("18:00"),
				EndTime:   types.MustTimeString("22:00"),
				Recurring: true,
				Available: true,
			}},
		}
	}

	profiles := &testutil.Profiles{Companions: map[int64]*profileservice.Companion{}}
	for id := range schedules {
		profiles.Companions[id] = &profileservice.Companion{ID: id, HourlyRate: hourlyRate, Currency: "VND", IsActive: true}
	}

	policy := &testutil.StaticPolicy{P: domain.DefaultBookingPolicy()}
	clock := testutil.NewClock(at(9))

	uc := NewUseCase(
		bookings,
		eventRepo,
		profiles,
		availability.NewService(schedules, logger.NewNop()),
		policy,
		tx,
		metrics.NewNop(),
		logger.NewNop(),
	)
	uc.timeProvider = clock

	return &fixture{uc: uc, bookings: bookings, events: events, policy: policy, clock: clock, tx: tx}
}

func request(hirerID int64, startHour, endHour int) *Request {
	return &Request{
		HirerID:     hirerID,
		CompanionID: companionID,
		StartTime:   at(startHour),
		EndTime:     at(endHour),
	}
}

func TestExecute_Success(t *testing.T) {
	f := newFixture(t, nil)

	resp, err := f.uc.Execute(context.Background(), &Request{
		HirerID:     1,
		CompanionID: companionID,
		StartTime:   at(19),
		EndTime:     at(21),
		Notes:       ptr.Ptr("dinner"),
	})
	require.NoError(t, err)

	assert.Equal(t, string(domain.StatusPending), resp.Status)
	assert.Equal(t, int64(1_000_000), resp.PriceBreakdown.BasePrice)
	assert.Equal(t, int64(100_000), resp.PriceBreakdown.PlatformFee)
	assert.Equal(t, int64(1_100_000), resp.PriceBreakdown.Total)
	assert.Equal(t, at(9), resp.CreatedAt)

	stored := f.bookings.Get(resp.ID)
	require.NotNil(t, stored)
	assert.Equal(t, domain.StatusPending, stored.Status)
	assert.Equal(t, at(9), stored.LastTransitionAt)

	created := f.events.OfType(domain.EventBookingCreated)
	require.Len(t, created, 1)
	assert.Equal(t, resp.ID, created[0].BookingID)

	assert.Equal(t, 1, f.bookings.Locks["companion:7"])
	assert.Equal(t, 1, f.bookings.Locks["hirer:1"])
}

func TestExecute_ConcurrentDoubleBooking(t *testing.T) {
	f := newFixture(t, nil)

	const attempts = 2
	var wg sync.WaitGroup
	errs := make([]error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.uc.Execute(context.Background(), request(int64(i+1), 19, 21))
		}(i)
	}
	wg.Wait()

	succeeded, doubleBooked := 0, 0
	for _, err := range errs {
		switch {
		case err == nil:
			succeeded++
		case domain.KindOf(err) == domain.KindDoubleBooking:
			doubleBooked++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 1, doubleBooked)

	all := f.bookings.All()
	require.Len(t, all, 1)
	assert.Equal(t, domain.StatusPending, all[0].Status)
	assert.Len(t, f.events.Events(), 1)
}

func TestExecute_DoubleBookingMeta(t *testing.T) {
	f := newFixture(t, nil)

	first, err := f.uc.Execute(context.Background(), request(1, 19, 21))
	require.NoError(t, err)

	_, err = f.uc.Execute(context.Background(), request(2, 20, 22))
	de, ok := domain.AsError(err)
	require.True(t, ok)
	assert.Equal(t, domain.KindDoubleBooking, de.Kind)
	assert.Equal(t, first.ID, de.Meta["conflictingBookingId"])

	// смежный интервал не пересекается
	_, err = f.uc.Execute(context.Background(), request(2, 21, 22))
	assert.NoError(t, err)
}

func TestExecute_CancelledBookingFreesInterval(t *testing.T) {
	f := newFixture(t, nil)
	f.bookings.Seed(domain.Booking{
		HirerID: 3, CompanionID: companionID, StartTime: at(19), EndTime: at(21),
		Status: domain.StatusCancelled, CreatedAt: at(8),
	})

	_, err := f.uc.Execute(context.Background(), request(1, 19, 21))
	assert.NoError(t, err)
}

func TestExecute_DailyCapReached(t *testing.T) {
	f := newFixture(t, nil)
	for i := 0; i < 5; i++ {
		f.bookings.Seed(domain.Booking{
			HirerID: 1, CompanionID: 100 + int64(i), StartTime: at(30 + i), EndTime: at(31 + i),
			Status: domain.StatusPending, CreatedAt: at(9).Add(-time.Duration(i+1) * time.Minute),
		})
	}

	_, err := f.uc.Execute(context.Background(), request(1, 19, 21))
	de, ok := domain.AsError(err)
	require.True(t, ok)
	assert.Equal(t, domain.NewFrequencyLimit(domain.LimitDaily, 5, 5).Meta, de.Meta)
	assert.Len(t, f.bookings.All(), 5)
}

func TestExecute_ConcurrentRequestsRespectCap(t *testing.T) {
	f := newFixture(t, nil)
	f.policy.P.DailyBookingLimit = 5
	for i := 0; i < 3; i++ {
		f.bookings.Seed(domain.Booking{
			HirerID: 1, CompanionID: 100 + int64(i), StartTime: at(30 + i), EndTime: at(31 + i),
			Status: domain.StatusPending, CreatedAt: at(8),
		})
	}

	const attempts = 4
	var wg sync.WaitGroup
	errs := make([]error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			req := request(1, 19, 21)
			req.CompanionID = companionID + int64(i)
			_, errs[i] = f.uc.Execute(context.Background(), req)
		}(i)
	}
	wg.Wait()

	succeeded, limited := 0, 0
	for _, err := range errs {
		switch {
		case err == nil:
			succeeded++
		case domain.KindOf(err) == domain.KindBookingFrequencyLimit:
			limited++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 2, succeeded)
	assert.Equal(t, 2, limited)

	count, err := f.bookings.CountByHirerSince(context.Background(), 1, at(9).Add(-24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 5, count)
}

func TestExecute_Rejections(t *testing.T) {
	tests := []struct {
		name     string
		req      *Request
		wantErr  error
		wantKind domain.ErrorKind
	}{
		{name: "end before start", req: request(1, 21, 19), wantErr: ErrInvalidInput},
		{name: "shorter than minimum", req: &Request{HirerID: 1, CompanionID: companionID, StartTime: at(19), EndTime: at(19).Add(30 * time.Minute)}, wantErr: ErrInvalidInput},
		{name: "longer than maximum", req: request(1, 19, 32), wantErr: ErrInvalidInput},
		{name: "too soon", req: request(1, 10, 12), wantErr: ErrInvalidInput},
		{name: "too far ahead", req: &Request{HirerID: 1, CompanionID: companionID, StartTime: at(24 * 40), EndTime: at(24*40 + 2)}, wantErr: ErrInvalidInput},
		{name: "self booking", req: request(companionID, 19, 21), wantErr: ErrInvalidInput},
		{name: "unknown companion", req: &Request{HirerID: 1, CompanionID: 99, StartTime: at(19), EndTime: at(21)}, wantErr: ErrCompanionNotFound},
		{name: "outside schedule", req: request(1, 16, 18), wantKind: domain.KindCompanionNotAvailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, nil)
			_, err := f.uc.Execute(context.Background(), tt.req)
			require.Error(t, err)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
			if tt.wantKind != "" {
				assert.Equal(t, tt.wantKind, domain.KindOf(err))
			}
			assert.Empty(t, f.bookings.All())
			assert.Zero(t, f.tx.Calls)
		})
	}
}

func TestExecute_OutboxFailureRollsBack(t *testing.T) {
	f := newFixture(t, failingEvents{})

	_, err := f.uc.Execute(context.Background(), request(1, 19, 21))
	assert.ErrorIs(t, err, ErrInternal)
	assert.ErrorIs(t, err, testutil.ErrInjected)
	assert.Empty(t, f.bookings.All())
}

func TestQuotePrice(t *testing.T) {
	base, fee := quotePrice(333_333, 1.5, 0.1)
	assert.Equal(t, int64(500_000), base)
	assert.Equal(t, int64(50_000), fee)
}
