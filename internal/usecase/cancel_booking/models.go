package cancel_booking

import "time"

// Request модель запроса на отмену бронирования
type Request struct {
	BookingID int64
	ActorID   int64
	IsAdmin   bool   // Администратор может отменить любое бронирование
	Reason    string // Причина отмены (опционально)
}

// Response итог отмены с рассчитанным штрафом
type Response struct {
	BookingID         int64
	Status            string
	FeeApplied        bool
	FeeAmount         int64
	RefundAmount      int64
	FeePercent        float64
	HoursUntilStart   float64
	FreeWindowHonored bool
	CancelledAt       time.Time
}
