package update_booking_policy

import (
	"github.com/m04kA/SMC-CompanionBooking/internal/domain"
	"github.com/m04kA/SMC-CompanionBooking/internal/service/policy/models"
)

// UpdateBookingPolicyRequest HTTP запрос на частичное обновление политики
type UpdateBookingPolicyRequest struct {
	MinBookingHours        *float64 `json:"minBookingHours,omitempty" validate:"omitempty,gt=0"`
	MaxBookingHours        *float64 `json:"maxBookingHours,omitempty" validate:"omitempty,gt=0"`
	MinAdvanceBookingHours *float64 `json:"minAdvanceBookingHours,omitempty" validate:"omitempty,gte=0"`
	MaxAdvanceBookingDays  *int     `json:"maxAdvanceBookingDays,omitempty" validate:"omitempty,gt=0"`
	FreeCancellationHours  *float64 `json:"freeCancellationHours,omitempty" validate:"omitempty,gte=0"`
	CancellationFeePercent *float64 `json:"cancellationFeePercent,omitempty" validate:"omitempty,gte=0,lte=1"`
	PlatformFeePercent     *float64 `json:"platformFeePercent,omitempty" validate:"omitempty,gte=0,lte=1"`
	DailyBookingLimit      *int     `json:"dailyBookingLimit,omitempty" validate:"omitempty,gte=0"`
	WeeklyBookingLimit     *int     `json:"weeklyBookingLimit,omitempty" validate:"omitempty,gte=0"`
	MonthlyBookingLimit    *int     `json:"monthlyBookingLimit,omitempty" validate:"omitempty,gte=0"`
	ReviewWindowDays       *int     `json:"reviewWindowDays,omitempty" validate:"omitempty,gt=0"`
	PendingExpiryHours     *float64 `json:"pendingExpiryHours,omitempty" validate:"omitempty,gt=0"`
}

// ToServiceRequest конвертирует HTTP запрос в модель сервиса
func (r *UpdateBookingPolicyRequest) ToServiceRequest(actor domain.Actor) *models.UpdatePolicyRequest {
	return &models.UpdatePolicyRequest{
		Actor:                  actor,
		MinBookingHours:        r.MinBookingHours,
		MaxBookingHours:        r.MaxBookingHours,
		MinAdvanceBookingHours: r.MinAdvanceBookingHours,
		MaxAdvanceBookingDays:  r.MaxAdvanceBookingDays,
		FreeCancellationHours:  r.FreeCancellationHours,
		CancellationFeePercent: r.CancellationFeePercent,
		PlatformFeePercent:     r.PlatformFeePercent,
		DailyBookingLimit:      r.DailyBookingLimit,
		WeeklyBookingLimit:     r.WeeklyBookingLimit,
		MonthlyBookingLimit:    r.MonthlyBookingLimit,
		ReviewWindowDays:       r.ReviewWindowDays,
		PendingExpiryHours:     r.PendingExpiryHours,
	}
}
