// Package cancellation computes cancellation fees. Everything here is pure:
// callers pass the same now that the persisting transition uses.
package cancellation

import (
	"math"
	"time"

	"github.com/m04kA/SMC-CompanionBooking/internal/domain"
)

// Quote computes the fee for cancelling a booking of the given price.
// No fee when start is at least freeCancellationHours away; otherwise
// fee = round(price * feePercent), clamped to [0, price].
func Quote(price int64, start, now time.Time, freeCancellationHours, feePercent float64) domain.CancellationQuote {
	hoursUntilStart := start.Sub(now).Hours()

	if hoursUntilStart >= freeCancellationHours {
		return domain.CancellationQuote{
			FeeAmount:         0,
			RefundAmount:      price,
			FeePercent:        0,
			HoursUntilStart:   hoursUntilStart,
			FreeWindowHonored: true,
		}
	}

	fee := int64(math.Round(float64(price) * feePercent))
	if fee < 0 {
		fee = 0
	}
	if fee > price {
		fee = price
	}

	return domain.CancellationQuote{
		FeeApplied:        fee > 0,
		FeeAmount:         fee,
		RefundAmount:      price - fee,
		FeePercent:        feePercent,
		HoursUntilStart:   hoursUntilStart,
		FreeWindowHonored: false,
	}
}

// QuoteFor applies the policy to a booking cancelled by the given role.
// The hirer and the companion are both quoted by the fee policy; an admin
// cancelling on the platform's behalf refunds the hirer in full.
func QuoteFor(b *domain.Booking, role domain.Role, policy domain.BookingPolicy, now time.Time) domain.CancellationQuote {
	if role == domain.RoleAdmin {
		return domain.FullRefund(b.TotalPrice(), b.StartTime, now)
	}
	return Quote(b.TotalPrice(), b.StartTime, now, policy.FreeCancellationHours, policy.CancellationFeePercent)
}
