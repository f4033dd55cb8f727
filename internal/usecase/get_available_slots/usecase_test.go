package get_available_slots

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-CompanionBooking/internal/domain"
	"github.com/m04kA/SMC-CompanionBooking/internal/integrations/profileservice"
	"github.com/m04kA/SMC-CompanionBooking/internal/service/availability"
	"github.com/m04kA/SMC-CompanionBooking/internal/testutil"
	"github.com/m04kA/SMC-CompanionBooking/pkg/logger"
	"github.com/m04kA/SMC-CompanionBooking/pkg/ptr"
	"github.com/m04kA/SMC-CompanionBooking/pkg/types"
)

const companionID = int64(7)

// 2026-05-04 is a Monday
var now = time.Date(2026, 5, 4, 9, 0, 0, 0, time.UTC)

func at(h, m int) time.Time {
	return time.Date(2026, 5, 4, h, m, 0, 0, time.UTC)
}

func newUseCase(t *testing.T, schedules testutil.Schedules) (*UseCase, *testutil.BookingStore) {
	t.Helper()
	bookings := testutil.NewBookingStore()
	profiles := &testutil.Profiles{Companions: map[int64]*profileservice.Companion{
		companionID: {ID: companionID, UserID: companionID, HourlyRate: 400_000, IsActive: true},
	}}
	log := logger.NewNop()

	uc := NewUseCase(
		bookings,
		availability.NewService(schedules, log),
		profiles,
		&testutil.StaticPolicy{P: domain.DefaultBookingPolicy()},
		log,
	)
	uc.timeProvider = testutil.NewClock(now)
	return uc, bookings
}

func mondaySchedule(from, to string) testutil.Schedules {
	return testutil.Schedules{companionID: {
		CompanionID: companionID,
		Timezone:    "UTC",
		Slots: []domain.AvailabilitySlot{{
			DayOfWeek: ptr.Ptr(time.Monday),
			StartTime: types.MustTimeString(from),
			EndTime:   types.MustTimeString(to),
			Recurring: true,
			Available: true,
		}},
	}}
}

func TestExecute_SubtractsBookingsAndNotice(t *testing.T) {
	uc, bookings := newUseCase(t, mondaySchedule("09:00", "22:00"))
	bookings.Seed(domain.Booking{HirerID: 1, CompanionID: companionID, StartTime: at(14, 0), EndTime: at(16, 0), Status: domain.StatusConfirmed})
	bookings.Seed(domain.Booking{HirerID: 2, CompanionID: companionID, StartTime: at(18, 0), EndTime: at(19, 0), Status: domain.StatusCancelled})

	resp, err := uc.Execute(context.Background(), &Request{CompanionID: companionID, Date: "2026-05-04"})
	require.NoError(t, err)
	assert.Equal(t, "UTC", resp.Timezone)

	require.Len(t, resp.Windows, 2)
	// 09:00-11:00 lies inside the minimum advance period
	assert.True(t, at(11, 0).Equal(resp.Windows[0].StartTime))
	assert.True(t, at(14, 0).Equal(resp.Windows[0].EndTime))
	assert.Equal(t, 3.0, resp.Windows[0].DurationHours)
	assert.True(t, at(16, 0).Equal(resp.Windows[1].StartTime))
	assert.True(t, at(22, 0).Equal(resp.Windows[1].EndTime))
}

func TestExecute_DropsWindowsShorterThanMinimum(t *testing.T) {
	uc, bookings := newUseCase(t, mondaySchedule("09:00", "22:00"))
	bookings.Seed(domain.Booking{HirerID: 1, CompanionID: companionID, StartTime: at(11, 30), EndTime: at(21, 30), Status: domain.StatusPending})

	resp, err := uc.Execute(context.Background(), &Request{CompanionID: companionID, Date: "2026-05-04"})
	require.NoError(t, err)
	assert.Empty(t, resp.Windows)
}

func TestExecute_NoSchedule(t *testing.T) {
	uc, _ := newUseCase(t, testutil.Schedules{})

	resp, err := uc.Execute(context.Background(), &Request{CompanionID: companionID, Date: "2026-05-05"})
	require.NoError(t, err)
	assert.Empty(t, resp.Windows)
}

func TestExecute_Errors(t *testing.T) {
	tests := []struct {
		name    string
		req     *Request
		wantErr error
	}{
		{name: "past date", req: &Request{CompanionID: companionID, Date: "2026-05-03"}, wantErr: ErrInvalidDate},
		{name: "malformed date", req: &Request{CompanionID: companionID, Date: "04.05.2026"}, wantErr: ErrInvalidDate},
		{name: "beyond horizon", req: &Request{CompanionID: companionID, Date: "2026-07-01"}, wantErr: ErrDateTooFarInFuture},
		{name: "unknown companion", req: &Request{CompanionID: 99, Date: "2026-05-04"}, wantErr: ErrCompanionNotFound},
		{name: "missing date", req: &Request{CompanionID: companionID}, wantErr: ErrInvalidInput},
		{name: "bad companion id", req: &Request{CompanionID: 0, Date: "2026-05-04"}, wantErr: ErrInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc, _ := newUseCase(t, mondaySchedule("09:00", "22:00"))
			_, err := uc.Execute(context.Background(), tt.req)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}
