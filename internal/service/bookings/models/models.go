package models

import (
	"errors"
	"strings"
	"time"

	"github.com/m04kA/SMC-CompanionBooking/internal/domain"
)

var (
	// ErrInvalidStatus возвращается при некорректном статусе
	ErrInvalidStatus = errors.New("invalid booking status")

	// ErrInvalidPeriod возвращается, когда начало периода позже конца
	ErrInvalidPeriod = errors.New("from must be before to")
)

// Request модели

// GetHirerBookingsRequest запрос на получение бронирований нанимателя
type GetHirerBookingsRequest struct {
	HirerID int64   `json:"hirerId"`
	Status  *string `json:"status,omitempty"`
}

// GetCompanionBookingsRequest запрос на получение бронирований компаньона
type GetCompanionBookingsRequest struct {
	Actor           domain.Actor `json:"-"`
	CompanionID     int64        `json:"companionId"`
	From            *time.Time   `json:"from,omitempty"`            // Начало периода (опционально)
	To              *time.Time   `json:"to,omitempty"`              // Конец периода (опционально)
	Status          *string      `json:"status,omitempty"`          // Фильтр по статусу (опционально)
	IncludeInactive bool         `json:"includeInactive,omitempty"` // Включить завершённые и отменённые
}

// ToDomainFilter конвертирует request в domain фильтр
func (r *GetCompanionBookingsRequest) ToDomainFilter() (domain.CompanionBookingsFilter, error) {
	filter := domain.CompanionBookingsFilter{
		CompanionID:     r.CompanionID,
		From:            r.From,
		To:              r.To,
		IncludeInactive: r.IncludeInactive,
	}

	if r.From != nil && r.To != nil && !r.From.Before(*r.To) {
		return filter, ErrInvalidPeriod
	}

	if r.Status != nil {
		status, err := ToDomainBookingStatus(*r.Status)
		if err != nil {
			return filter, err
		}
		filter.Status = &status
		// Явно запрошенный терминальный статус подразумевает неактивные бронирования
		if status == domain.StatusCompleted || status == domain.StatusCancelled {
			filter.IncludeInactive = true
		}
	}

	return filter, nil
}

// Response модели

// PriceBreakdown разбивка стоимости бронирования
type PriceBreakdown struct {
	BasePrice   int64 `json:"basePrice"`
	PlatformFee int64 `json:"platformFee"`
	Total       int64 `json:"total"`
}

// CancellationInfo сведения об отмене
type CancellationInfo struct {
	FeeAmount         int64      `json:"feeAmount"`
	RefundAmount      int64      `json:"refundAmount"`
	FeePercent        float64    `json:"feePercent"`
	HoursUntilStart   float64    `json:"hoursUntilStart"`
	FreeWindowHonored bool       `json:"freeWindowHonored"`
	CancelledByID     *int64     `json:"cancelledById,omitempty"`
	CancelledByRole   string     `json:"cancelledByRole,omitempty"`
	Reason            *string    `json:"reason,omitempty"`
	CancelledAt       *time.Time `json:"cancelledAt,omitempty"`
}

// BookingResponse ответ с данными бронирования
type BookingResponse struct {
	ID             int64          `json:"id"`
	HirerID        int64          `json:"hirerId"`
	CompanionID    int64          `json:"companionId"`
	StartTime      time.Time      `json:"startTime"`
	EndTime        time.Time      `json:"endTime"`
	DurationHours  float64        `json:"durationHours"`
	Status         string         `json:"status"`
	PriceBreakdown PriceBreakdown `json:"priceBreakdown"`
	Notes          *string        `json:"notes,omitempty"`
	DisputeReason  *string        `json:"disputeReason,omitempty"`

	Cancellation *CancellationInfo `json:"cancellation,omitempty"`
	CompletedAt  *time.Time        `json:"completedAt,omitempty"`

	CreatedAt        time.Time `json:"createdAt"`
	LastTransitionAt time.Time `json:"lastTransitionAt"`
}

// BookingListResponse ответ со списком бронирований
type BookingListResponse struct {
	Bookings []BookingResponse `json:"bookings"`
}

// Методы конвертации

// NewPriceBreakdown собирает разбивку стоимости бронирования
func NewPriceBreakdown(b *domain.Booking) PriceBreakdown {
	return PriceBreakdown{
		BasePrice:   b.BasePrice,
		PlatformFee: b.PlatformFee,
		Total:       b.TotalPrice(),
	}
}

// FromDomainBooking конвертирует domain модель в DTO
func FromDomainBooking(b *domain.Booking) *BookingResponse {
	if b == nil {
		return nil
	}

	resp := &BookingResponse{
		ID:               b.ID,
		HirerID:          b.HirerID,
		CompanionID:      b.CompanionID,
		StartTime:        b.StartTime,
		EndTime:          b.EndTime,
		DurationHours:    b.DurationHours(),
		Status:           string(b.Status),
		PriceBreakdown:   NewPriceBreakdown(b),
		Notes:            b.Notes,
		DisputeReason:    b.DisputeReason,
		CompletedAt:      b.CompletedAt,
		CreatedAt:        b.CreatedAt,
		LastTransitionAt: b.LastTransitionAt,
	}

	if b.Status == domain.StatusCancelled && b.CancellationFee != nil {
		info := &CancellationInfo{
			FeeAmount:   *b.CancellationFee,
			Reason:      b.CancellationReason,
			CancelledAt: b.CancelledAt,
		}
		if b.RefundAmount != nil {
			info.RefundAmount = *b.RefundAmount
		}
		if b.Cancellation != nil {
			info.FeePercent = b.Cancellation.FeePercent
			info.HoursUntilStart = b.Cancellation.HoursUntilStart
			info.FreeWindowHonored = b.Cancellation.FreeWindowHonored
		}
		if b.CancelledBy != nil {
			info.CancelledByRole = string(b.CancelledBy.Role)
			if b.CancelledBy.ID != 0 {
				id := b.CancelledBy.ID
				info.CancelledByID = &id
			}
		}
		resp.Cancellation = info
	}

	return resp
}

// FromDomainBookingList конвертирует список domain моделей в DTO
func FromDomainBookingList(bookings []*domain.Booking) *BookingListResponse {
	resp := &BookingListResponse{
		Bookings: make([]BookingResponse, 0, len(bookings)),
	}

	for _, booking := range bookings {
		if bookingResp := FromDomainBooking(booking); bookingResp != nil {
			resp.Bookings = append(resp.Bookings, *bookingResp)
		}
	}

	return resp
}

// ToDomainBookingStatus конвертирует строку в domain.BookingStatus с валидацией
// Регистр не важен: "pending" и "PENDING" равнозначны
func ToDomainBookingStatus(status string) (domain.BookingStatus, error) {
	s, ok := domain.ParseBookingStatus(strings.ToUpper(strings.TrimSpace(status)))
	if !ok {
		return "", ErrInvalidStatus
	}
	return s, nil
}
