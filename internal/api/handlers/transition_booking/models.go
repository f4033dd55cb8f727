package transition_booking

import (
	"time"

	transitionBooking "github.com/m04kA/SMC-CompanionBooking/internal/usecase/transition_booking"
)

// TransitionRequest HTTP request model
type TransitionRequest struct {
	Action string `json:"action" validate:"required"`
	Reason string `json:"reason" validate:"max=500"`
}

// TransitionResponse результат смены статуса
type TransitionResponse struct {
	BookingID        int64  `json:"bookingId"`
	PreviousStatus   string `json:"previousStatus"`
	Status           string `json:"status"`
	RefundAmount     *int64 `json:"refundAmount,omitempty"`
	LastTransitionAt string `json:"lastTransitionAt"`
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case
func (r *TransitionRequest) ToUseCaseRequest(bookingID, actorID int64, isAdmin bool) *transitionBooking.Request {
	return &transitionBooking.Request{
		BookingID: bookingID,
		ActorID:   actorID,
		IsAdmin:   isAdmin,
		Action:    r.Action,
		Reason:    r.Reason,
	}
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *transitionBooking.Response) *TransitionResponse {
	return &TransitionResponse{
		BookingID:        resp.BookingID,
		PreviousStatus:   resp.PreviousStatus,
		Status:           resp.Status,
		RefundAmount:     resp.RefundAmount,
		LastTransitionAt: resp.LastTransitionAt.Format(time.RFC3339),
	}
}
