package get_available_slots

import (
	"fmt"
	"strings"
	"time"

	"github.com/m04kA/SMC-CompanionBooking/internal/service/availability"
)

// validateRequest валидирует входные данные запроса
func validateRequest(req *Request) error {
	if req.CompanionID <= 0 {
		return fmt.Errorf("%w: companionID must be positive", ErrInvalidInput)
	}

	if strings.TrimSpace(req.Date) == "" {
		return fmt.Errorf("%w: date is required", ErrInvalidInput)
	}

	return nil
}

// validateDate проверяет, что локальный день ещё не прошёл и не дальше горизонта бронирования
func validateDate(day *availability.Day, now time.Time, maxAdvanceDays int) error {
	if !day.End.After(now) {
		return ErrInvalidDate
	}

	horizon := now.AddDate(0, 0, maxAdvanceDays)
	if day.Start.After(horizon) {
		return fmt.Errorf("%w: can only book %d days in advance", ErrDateTooFarInFuture, maxAdvanceDays)
	}

	return nil
}
