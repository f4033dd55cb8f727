package create_booking

import (
	"fmt"
	"math"
	"time"
	"unicode/utf8"

	"github.com/m04kA/SMC-CompanionBooking/internal/domain"
	"github.com/m04kA/SMC-CompanionBooking/pkg/interval"
)

// validateRequest валидирует входные данные запроса
func validateRequest(req *Request) error {
	if req.HirerID <= 0 {
		return fmt.Errorf("%w: hirerID must be positive", ErrInvalidInput)
	}

	if req.CompanionID <= 0 {
		return fmt.Errorf("%w: companionID must be positive", ErrInvalidInput)
	}

	if req.HirerID == req.CompanionID {
		return fmt.Errorf("%w: cannot book yourself", ErrInvalidInput)
	}

	if req.StartTime.IsZero() || req.EndTime.IsZero() {
		return fmt.Errorf("%w: startTime and endTime are required", ErrInvalidInput)
	}

	if !req.EndTime.After(req.StartTime) {
		return fmt.Errorf("%w: endTime must be after startTime", ErrInvalidInput)
	}

	if req.Notes != nil && utf8.RuneCountInString(*req.Notes) > domain.MaxNotesLength {
		return fmt.Errorf("%w: notes must not exceed %d characters", ErrInvalidInput, domain.MaxNotesLength)
	}

	return nil
}

// validateInterval проверяет длительность и горизонт бронирования по политике
func validateInterval(start, end, now time.Time, policy domain.BookingPolicy) error {
	hours := interval.DurationHours(start, end)
	if hours < policy.MinBookingHours || hours > policy.MaxBookingHours {
		return fmt.Errorf("%w: duration must be between %g and %g hours, got %g",
			ErrInvalidInput, policy.MinBookingHours, policy.MaxBookingHours, hours)
	}

	earliest := now.Add(time.Duration(policy.MinAdvanceBookingHours * float64(time.Hour)))
	if start.Before(earliest) {
		return fmt.Errorf("%w: must book at least %g hours in advance", ErrInvalidInput, policy.MinAdvanceBookingHours)
	}

	latest := now.AddDate(0, 0, policy.MaxAdvanceBookingDays)
	if start.After(latest) {
		return fmt.Errorf("%w: can only book %d days in advance", ErrInvalidInput, policy.MaxAdvanceBookingDays)
	}

	return nil
}

// quotePrice считает стоимость: basePrice = round(rate × hours), platformFee = round(basePrice × pct)
func quotePrice(hourlyRate int64, hours, platformFeePercent float64) (basePrice, platformFee int64) {
	basePrice = int64(math.Round(float64(hourlyRate) * hours))
	platformFee = int64(math.Round(float64(basePrice) * platformFeePercent))
	return basePrice, platformFee
}
