package get_available_slots

import (
	"time"

	getAvailableSlots "github.com/m04kA/SMC-CompanionBooking/internal/usecase/get_available_slots"
)

// AvailableSlotsResponse HTTP ответ со свободными окнами компаньона
type AvailableSlotsResponse struct {
	Date        string           `json:"date"`
	CompanionID int64            `json:"companionId"`
	Timezone    string           `json:"timezone"`
	Windows     []WindowResponse `json:"windows"`
}

// WindowResponse свободное окно
type WindowResponse struct {
	StartTime     time.Time `json:"startTime"`
	EndTime       time.Time `json:"endTime"`
	DurationHours float64   `json:"durationHours"`
}

// ToUseCaseRequest формирует запрос к use case
func ToUseCaseRequest(userID, companionID int64, date string) *getAvailableSlots.Request {
	return &getAvailableSlots.Request{
		UserID:      userID,
		CompanionID: companionID,
		Date:        date,
	}
}

// FromUseCaseResponse конвертирует ответ use case в HTTP ответ
func FromUseCaseResponse(resp *getAvailableSlots.Response) *AvailableSlotsResponse {
	windows := make([]WindowResponse, 0, len(resp.Windows))
	for _, w := range resp.Windows {
		windows = append(windows, WindowResponse{
			StartTime:     w.StartTime,
			EndTime:       w.EndTime,
			DurationHours: w.DurationHours,
		})
	}

	return &AvailableSlotsResponse{
		Date:        resp.Date,
		CompanionID: resp.CompanionID,
		Timezone:    resp.Timezone,
		Windows:     windows,
	}
}
