package transition_booking

import "time"

// Request модель запроса на смену статуса бронирования
type Request struct {
	BookingID int64
	ActorID   int64
	IsAdmin   bool
	Action    string // accept, decline, complete, dispute, resolve_complete, resolve_cancel
	Reason    string // Причина спора или отказа (опционально)
}

// Response результат перехода
type Response struct {
	BookingID        int64
	PreviousStatus   string
	Status           string
	RefundAmount     *int64
	LastTransitionAt time.Time
}
