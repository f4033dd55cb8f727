package cancel_booking

import (
	"time"

	cancelBooking "github.com/m04kA/SMC-CompanionBooking/internal/usecase/cancel_booking"
)

// CancelBookingRequest HTTP request model
type CancelBookingRequest struct {
	Reason string `json:"reason" validate:"max=500"`
}

// CancelBookingResponse итог отмены с рассчитанным штрафом
type CancelBookingResponse struct {
	BookingID         int64   `json:"bookingId"`
	Status            string  `json:"status"`
	FeeApplied        bool    `json:"feeApplied"`
	FeeAmount         int64   `json:"feeAmount"`
	RefundAmount      int64   `json:"refundAmount"`
	FeePercent        float64 `json:"feePercent"`
	HoursUntilStart   float64 `json:"hoursUntilStart"`
	FreeWindowHonored bool    `json:"freeWindowHonored"`
	CancelledAt       string  `json:"cancelledAt"`
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case
func (r *CancelBookingRequest) ToUseCaseRequest(bookingID, actorID int64, isAdmin bool) *cancelBooking.Request {
	return &cancelBooking.Request{
		BookingID: bookingID,
		ActorID:   actorID,
		IsAdmin:   isAdmin,
		Reason:    r.Reason,
	}
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *cancelBooking.Response) *CancelBookingResponse {
	return &CancelBookingResponse{
		BookingID:         resp.BookingID,
		Status:            resp.Status,
		FeeApplied:        resp.FeeApplied,
		FeeAmount:         resp.FeeAmount,
		RefundAmount:      resp.RefundAmount,
		FeePercent:        resp.FeePercent,
		HoursUntilStart:   resp.HoursUntilStart,
		FreeWindowHonored: resp.FreeWindowHonored,
		CancelledAt:       resp.CancelledAt.Format(time.RFC3339),
	}
}
