package submit_review

import "time"

// Request модель запроса на отзыв
type Request struct {
	BookingID  int64
	ReviewerID int64
	Rating     int
	Comment    *string
}

// Response сохранённый отзыв
type Response struct {
	ID         int64
	BookingID  int64
	ReviewerID int64
	RevieweeID int64
	Rating     int
	Comment    *string
	CreatedAt  time.Time
}
