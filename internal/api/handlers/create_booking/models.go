package create_booking

import (
	"time"

	createBooking "github.com/m04kA/SMC-CompanionBooking/internal/usecase/create_booking"
)

// CreateBookingRequest HTTP request model
type CreateBookingRequest struct {
	CompanionID int64   `json:"companionId" validate:"required,gt=0"`
	StartTime   string  `json:"startTime" validate:"required"` // RFC3339: "2026-05-04T19:00:00+07:00"
	EndTime     string  `json:"endTime" validate:"required"`
	Notes       *string `json:"notes,omitempty" validate:"omitempty,max=500"`
}

// PriceBreakdownResponse разбивка стоимости
type PriceBreakdownResponse struct {
	HourlyRate    int64   `json:"hourlyRate"`
	DurationHours float64 `json:"durationHours"`
	BasePrice     int64   `json:"basePrice"`
	PlatformFee   int64   `json:"platformFee"`
	Total         int64   `json:"total"`
	Currency      string  `json:"currency,omitempty"`
}

// BookingResponse HTTP response model
type BookingResponse struct {
	BookingID      int64                  `json:"bookingId"`
	HirerID        int64                  `json:"hirerId"`
	CompanionID    int64                  `json:"companionId"`
	StartTime      string                 `json:"startTime"`
	EndTime        string                 `json:"endTime"`
	Status         string                 `json:"status"`
	PriceBreakdown PriceBreakdownResponse `json:"priceBreakdown"`
	Notes          *string                `json:"notes,omitempty"`
	CreatedAt      string                 `json:"createdAt"`
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case
func (r *CreateBookingRequest) ToUseCaseRequest(hirerID int64) (*createBooking.Request, error) {
	start, err := time.Parse(time.RFC3339, r.StartTime)
	if err != nil {
		return nil, err
	}

	end, err := time.Parse(time.RFC3339, r.EndTime)
	if err != nil {
		return nil, err
	}

	return &createBooking.Request{
		HirerID:     hirerID,
		CompanionID: r.CompanionID,
		StartTime:   start,
		EndTime:     end,
		Notes:       r.Notes,
	}, nil
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *createBooking.Response) *BookingResponse {
	return &BookingResponse{
		BookingID:   resp.ID,
		HirerID:     resp.HirerID,
		CompanionID: resp.CompanionID,
		StartTime:   resp.StartTime.Format(time.RFC3339),
		EndTime:     resp.EndTime.Format(time.RFC3339),
		Status:      resp.Status,
		PriceBreakdown: PriceBreakdownResponse{
			HourlyRate:    resp.PriceBreakdown.HourlyRate,
			DurationHours: resp.PriceBreakdown.DurationHours,
			BasePrice:     resp.PriceBreakdown.BasePrice,
			PlatformFee:   resp.PriceBreakdown.PlatformFee,
			Total:         resp.PriceBreakdown.Total,
			Currency:      resp.PriceBreakdown.Currency,
		},
		Notes:     resp.Notes,
		CreatedAt: resp.CreatedAt.Format(time.RFC3339),
	}
}
