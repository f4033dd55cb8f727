package cancellation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/m04kA/SMC-CompanionBooking/internal/domain"
)

var now = time.Date(2026, 5, 4, 9, 0, 0, 0, time.UTC)

func TestQuote_Scenarios(t *testing.T) {
	tests := []struct {
		name       string
		startIn    time.Duration
		wantFee    int64
		wantRefund int64
		wantFree   bool
	}{
		{name: "starts in 30h, outside free window", startIn: 30 * time.Hour, wantFee: 0, wantRefund: 1_000_000, wantFree: true},
		{name: "starts in 10h, half fee", startIn: 10 * time.Hour, wantFee: 500_000, wantRefund: 500_000},
		{name: "exactly at free window boundary", startIn: 24 * time.Hour, wantFee: 0, wantRefund: 1_000_000, wantFree: true},
		{name: "one second inside free window", startIn: 24*time.Hour - time.Second, wantFee: 500_000, wantRefund: 500_000},
		{name: "already started", startIn: -time.Hour, wantFee: 500_000, wantRefund: 500_000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := Quote(1_000_000, now.Add(tt.startIn), now, 24, 0.5)

			assert.Equal(t, tt.wantFee, q.FeeAmount)
			assert.Equal(t, tt.wantRefund, q.RefundAmount)
			assert.Equal(t, tt.wantFree, q.FreeWindowHonored)
			assert.Equal(t, tt.wantFee > 0, q.FeeApplied)
		})
	}
}

func TestQuote_Bounds(t *testing.T) {
	prices := []int64{0, 1, 3, 999, 1_000_000, 7_777_777}
	percents := []float64{-0.2, 0, 0.15, 0.333, 0.5, 1, 1.7}

	for _, price := range prices {
		for _, pct := range percents {
			for h := -48; h <= 48; h += 6 {
				q := Quote(price, now.Add(time.Duration(h)*time.Hour), now, 24, pct)

				assert.GreaterOrEqual(t, q.FeeAmount, int64(0))
				assert.LessOrEqual(t, q.FeeAmount, price)
				assert.Equal(t, price, q.FeeAmount+q.RefundAmount)
				if float64(h) >= 24 {
					assert.Zero(t, q.FeeAmount)
				}
			}
		}
	}
}

func TestQuoteFor_PartiesPayByPolicy(t *testing.T) {
	b := &domain.Booking{
		StartTime:   now.Add(10 * time.Hour),
		BasePrice:   900_000,
		PlatformFee: 100_000,
	}
	policy := domain.DefaultBookingPolicy()
	policy.FreeCancellationHours = 24
	policy.CancellationFeePercent = 0.5

	for _, role := range []domain.Role{domain.RoleHirer, domain.RoleCompanion} {
		q := QuoteFor(b, role, policy, now)
		assert.Equal(t, int64(500_000), q.FeeAmount, role)
		assert.Equal(t, int64(500_000), q.RefundAmount, role)
		assert.True(t, q.FeeApplied, role)
		assert.False(t, q.FreeWindowHonored, role)
	}
}

func TestQuoteFor_AdminRefundsInFull(t *testing.T) {
	b := &domain.Booking{
		StartTime:   now.Add(2 * time.Hour),
		BasePrice:   900_000,
		PlatformFee: 100_000,
	}

	q := QuoteFor(b, domain.RoleAdmin, domain.DefaultBookingPolicy(), now)
	assert.Zero(t, q.FeeAmount)
	assert.Equal(t, int64(1_000_000), q.RefundAmount)
	assert.InDelta(t, 2.0, q.HoursUntilStart, 1e-9)
}
