// Package review validates the post-completion review window.
package review

import (
	"time"

	"github.com/m04kA/SMC-CompanionBooking/internal/domain"
)

// IsExpired reports whether now is strictly later than completedAt + windowDays.
// A review at exactly the boundary is still accepted.
func IsExpired(completedAt, now time.Time, windowDays int) bool {
	return now.Sub(completedAt) > time.Duration(windowDays)*24*time.Hour
}

// CheckWindow returns ReviewWindowExpired when the window has passed
func CheckWindow(completedAt, now time.Time, windowDays int) error {
	if IsExpired(completedAt, now, windowDays) {
		return domain.NewReviewWindowExpired(windowDays, completedAt)
	}
	return nil
}
