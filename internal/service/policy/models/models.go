package models

import (
	"github.com/m04kA/SMC-CompanionBooking/internal/domain"
)

// Request модели

// UpdatePolicyRequest запрос на обновление политики бронирования
// Все поля опциональны - обновляются только переданные значения
type UpdatePolicyRequest struct {
	Actor                  domain.Actor `json:"-"`
	MinBookingHours        *float64     `json:"minBookingHours,omitempty"`
	MaxBookingHours        *float64     `json:"maxBookingHours,omitempty"`
	MinAdvanceBookingHours *float64     `json:"minAdvanceBookingHours,omitempty"`
	MaxAdvanceBookingDays  *int         `json:"maxAdvanceBookingDays,omitempty"`
	FreeCancellationHours  *float64     `json:"freeCancellationHours,omitempty"`
	CancellationFeePercent *float64     `json:"cancellationFeePercent,omitempty"`
	PlatformFeePercent     *float64     `json:"platformFeePercent,omitempty"`
	DailyBookingLimit      *int         `json:"dailyBookingLimit,omitempty"`
	WeeklyBookingLimit     *int         `json:"weeklyBookingLimit,omitempty"`
	MonthlyBookingLimit    *int         `json:"monthlyBookingLimit,omitempty"`
	ReviewWindowDays       *int         `json:"reviewWindowDays,omitempty"`
	PendingExpiryHours     *float64     `json:"pendingExpiryHours,omitempty"`
}

// Response модели

// PolicyResponse действующая политика бронирования
type PolicyResponse struct {
	MinBookingHours        float64 `json:"minBookingHours"`
	MaxBookingHours        float64 `json:"maxBookingHours"`
	MinAdvanceBookingHours float64 `json:"minAdvanceBookingHours"`
	MaxAdvanceBookingDays  int     `json:"maxAdvanceBookingDays"`
	FreeCancellationHours  float64 `json:"freeCancellationHours"`
	CancellationFeePercent float64 `json:"cancellationFeePercent"`
	PlatformFeePercent     float64 `json:"platformFeePercent"`
	DailyBookingLimit      int     `json:"dailyBookingLimit"`
	WeeklyBookingLimit     int     `json:"weeklyBookingLimit"`
	MonthlyBookingLimit    int     `json:"monthlyBookingLimit"`
	ReviewWindowDays       int     `json:"reviewWindowDays"`
	PendingExpiryHours     float64 `json:"pendingExpiryHours"`
}

// Методы конвертации

// FromDomainPolicy конвертирует domain модель в DTO
func FromDomainPolicy(p domain.BookingPolicy) *PolicyResponse {
	return &PolicyResponse{
		MinBookingHours:        p.MinBookingHours,
		MaxBookingHours:        p.MaxBookingHours,
		MinAdvanceBookingHours: p.MinAdvanceBookingHours,
		MaxAdvanceBookingDays:  p.MaxAdvanceBookingDays,
		FreeCancellationHours:  p.FreeCancellationHours,
		CancellationFeePercent: p.CancellationFeePercent,
		PlatformFeePercent:     p.PlatformFeePercent,
		DailyBookingLimit:      p.DailyBookingLimit,
		WeeklyBookingLimit:     p.WeeklyBookingLimit,
		MonthlyBookingLimit:    p.MonthlyBookingLimit,
		ReviewWindowDays:       p.ReviewWindowDays,
		PendingExpiryHours:     p.PendingExpiryHours,
	}
}

// ApplyToPolicy применяет обновления к политике
// Обновляются только непустые (not nil) поля из request, возвращаются изменённые ключи
func (r *UpdatePolicyRequest) ApplyToPolicy(p *domain.BookingPolicy) []string {
	var changed []string
	setF := func(dst *float64, v *float64, key string) {
		if v != nil {
			*dst = *v
			changed = append(changed, key)
		}
	}
	setI := func(dst *int, v *int, key string) {
		if v != nil {
			*dst = *v
			changed = append(changed, key)
		}
	}

	setF(&p.MinBookingHours, r.MinBookingHours, domain.KeyMinBookingHours)
	setF(&p.MaxBookingHours, r.MaxBookingHours, domain.KeyMaxBookingHours)
	setF(&p.MinAdvanceBookingHours, r.MinAdvanceBookingHours, domain.KeyMinAdvanceBookingHours)
	setI(&p.MaxAdvanceBookingDays, r.MaxAdvanceBookingDays, domain.KeyMaxAdvanceBookingDays)
	setF(&p.FreeCancellationHours, r.FreeCancellationHours, domain.KeyFreeCancellationHours)
	setF(&p.CancellationFeePercent, r.CancellationFeePercent, domain.KeyCancellationFeePercent)
	setF(&p.PlatformFeePercent, r.PlatformFeePercent, domain.KeyPlatformFeePercent)
	setI(&p.DailyBookingLimit, r.DailyBookingLimit, domain.KeyDailyBookingLimit)
	setI(&p.WeeklyBookingLimit, r.WeeklyBookingLimit, domain.KeyWeeklyBookingLimit)
	setI(&p.MonthlyBookingLimit, r.MonthlyBookingLimit, domain.KeyMonthlyBookingLimit)
	setI(&p.ReviewWindowDays, r.ReviewWindowDays, domain.KeyReviewWindowDays)
	setF(&p.PendingExpiryHours, r.PendingExpiryHours, domain.KeyPendingExpiryHours)

	return changed
}
