package frequency

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-CompanionBooking/internal/domain"
)

type createdAtCounter struct {
	createdAt []time.Time
	err       error
}

func (c *createdAtCounter) CountByHirerSince(ctx context.Context, hirerID int64, since time.Time) (int, error) {
	if c.err != nil {
		return 0, c.err
	}
	n := 0
	for _, t := range c.createdAt {
		if !t.Before(since) {
			n++
		}
	}
	return n, nil
}

func TestEnforce(t *testing.T) {
	now := time.Date(2026, 5, 4, 12, 0, 0, 0, time.UTC)
	policy := domain.DefaultBookingPolicy()
	policy.DailyBookingLimit = 5
	policy.WeeklyBookingLimit = 8
	policy.MonthlyBookingLimit = 0

	hoursAgo := func(hours ...int) []time.Time {
		out := make([]time.Time, len(hours))
		for i, h := range hours {
			out[i] = now.Add(-time.Duration(h) * time.Hour)
		}
		return out
	}

	tests := []struct {
		name      string
		createdAt []time.Time
		wantType  string
		wantCur   int
	}{
		{name: "under every cap", createdAt: hoursAgo(1, 2, 3, 4)},
		{name: "daily cap reached", createdAt: hoursAgo(1, 2, 3, 4, 5), wantType: domain.LimitDaily, wantCur: 5},
		{name: "old bookings fall out of daily window", createdAt: hoursAgo(1, 2, 3, 4, 25, 26)},
		{name: "weekly cap reached", createdAt: hoursAgo(1, 30, 50, 70, 90, 110, 130, 150), wantType: domain.LimitWeekly, wantCur: 8},
		{name: "unlimited monthly", createdAt: hoursAgo(200, 300, 400, 500, 600, 700, 710, 715, 716)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			limiter := NewLimiter(&createdAtCounter{createdAt: tt.createdAt})
			err := limiter.Enforce(context.Background(), 1, policy, now)

			if tt.wantType == "" {
				assert.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, domain.ErrBookingFrequencyLimit)
			de, _ := domain.AsError(err)
			assert.Equal(t, tt.wantType, de.Meta["limitType"])
			assert.Equal(t, tt.wantCur, de.Meta["current"])
		})
	}
}

func TestEnforce_ScenarioDailyCapFive(t *testing.T) {
	now := time.Date(2026, 5, 4, 12, 0, 0, 0, time.UTC)
	policy := domain.DefaultBookingPolicy()
	policy.DailyBookingLimit = 5

	counter := &createdAtCounter{}
	for i := 0; i < 5; i++ {
		counter.createdAt = append(counter.createdAt, now.Add(-time.Duration(i+1)*time.Minute))
	}

	err := NewLimiter(counter).Enforce(context.Background(), 1, policy, now)
	de, ok := domain.AsError(err)
	require.True(t, ok)
	assert.Equal(t, domain.NewFrequencyLimit("daily", 5, 5).Meta, de.Meta)
}

func TestEnforce_CounterError(t *testing.T) {
	boom := errors.New("db down")
	err := NewLimiter(&createdAtCounter{err: boom}).Enforce(context.Background(), 1, domain.DefaultBookingPolicy(), time.Now())
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, domain.ErrorKind(""), domain.KindOf(err))
}
