package submit_review

import (
	"time"

	submitReview "github.com/m04kA/SMC-CompanionBooking/internal/usecase/submit_review"
)

// SubmitReviewRequest HTTP request model
type SubmitReviewRequest struct {
	Rating  int     `json:"rating" validate:"required,min=1,max=5"`
	Comment *string `json:"comment,omitempty"`
}

// ReviewResponse HTTP response model
type ReviewResponse struct {
	ReviewID   int64   `json:"reviewId"`
	BookingID  int64   `json:"bookingId"`
	ReviewerID int64   `json:"reviewerId"`
	RevieweeID int64   `json:"revieweeId"`
	Rating     int     `json:"rating"`
	Comment    *string `json:"comment,omitempty"`
	CreatedAt  string  `json:"createdAt"`
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case
func (r *SubmitReviewRequest) ToUseCaseRequest(bookingID, reviewerID int64) *submitReview.Request {
	return &submitReview.Request{
		BookingID:  bookingID,
		ReviewerID: reviewerID,
		Rating:     r.Rating,
		Comment:    r.Comment,
	}
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *submitReview.Response) *ReviewResponse {
	return &ReviewResponse{
		ReviewID:   resp.ID,
		BookingID:  resp.BookingID,
		ReviewerID: resp.ReviewerID,
		RevieweeID: resp.RevieweeID,
		Rating:     resp.Rating,
		Comment:    resp.Comment,
		CreatedAt:  resp.CreatedAt.Format(time.RFC3339),
	}
}
