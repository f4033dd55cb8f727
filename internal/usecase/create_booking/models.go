package create_booking

import (
	"time"
)

// Request модель запроса на создание бронирования
type Request struct {
	HirerID     int64     // ID нанимателя (из заголовка авторизации)
	CompanionID int64     // ID компаньона
	StartTime   time.Time // Начало интервала
	EndTime     time.Time // Конец интервала (не включительно)
	Notes       *string   // Дополнительные заметки (опционально)
}

// PriceBreakdown разбивка стоимости
type PriceBreakdown struct {
	HourlyRate    int64
	DurationHours float64
	BasePrice     int64
	PlatformFee   int64
	Total         int64
	Currency      string
}

// Response модель ответа с созданным бронированием
type Response struct {
	ID             int64
	HirerID        int64
	CompanionID    int64
	StartTime      time.Time
	EndTime        time.Time
	Status         string
	PriceBreakdown PriceBreakdown
	Notes          *string
	CreatedAt      time.Time
}
