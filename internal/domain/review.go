package domain

import "time"

// Review left by the hirer for the companion after a completed booking
type Review struct {
	ID         int64
	BookingID  int64
	ReviewerID int64
	RevieweeID int64
	Rating     int
	Comment    *string
	CreatedAt  time.Time
}
