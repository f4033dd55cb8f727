package domain

import (
	"fmt"
	"strconv"
	"time"
)

// BookingPolicy is the platform configuration consumed by the booking core.
// Values are read on every request; nothing in the core keeps them beyond one operation.
type BookingPolicy struct {
	MinBookingHours        float64
	MaxBookingHours        float64
	MinAdvanceBookingHours float64
	MaxAdvanceBookingDays  int
	FreeCancellationHours  float64
	CancellationFeePercent float64 // fraction of price, 0.5 = 50%
	PlatformFeePercent     float64 // fraction of base price
	DailyBookingLimit      int     // 0 = unlimited
	WeeklyBookingLimit     int     // 0 = unlimited
	MonthlyBookingLimit    int     // 0 = unlimited
	ReviewWindowDays       int
	PendingExpiryHours     float64
}

// Platform config keys as stored in platform_config
const (
	KeyMinBookingHours        = "min_booking_hours"
	KeyMaxBookingHours        = "max_booking_hours"
	KeyMinAdvanceBookingHours = "min_advance_booking_hours"
	KeyMaxAdvanceBookingDays  = "max_advance_booking_days"
	KeyFreeCancellationHours  = "free_cancellation_hours"
	KeyCancellationFeePercent = "cancellation_fee_percent"
	KeyPlatformFeePercent     = "platform_fee_percent"
	KeyDailyBookingLimit      = "daily_booking_limit"
	KeyWeeklyBookingLimit     = "weekly_booking_limit"
	KeyMonthlyBookingLimit    = "monthly_booking_limit"
	KeyReviewWindowDays       = "review_window_days"
	KeyPendingExpiryHours     = "pending_expiry_hours"
)

// PolicyKeys lists every recognised key
var PolicyKeys = []string{
	KeyMinBookingHours,
	KeyMaxBookingHours,
	KeyMinAdvanceBookingHours,
	KeyMaxAdvanceBookingDays,
	KeyFreeCancellationHours,
	KeyCancellationFeePercent,
	KeyPlatformFeePercent,
	KeyDailyBookingLimit,
	KeyWeeklyBookingLimit,
	KeyMonthlyBookingLimit,
	KeyReviewWindowDays,
	KeyPendingExpiryHours,
}

// DefaultBookingPolicy returns the compiled-in defaults
func DefaultBookingPolicy() BookingPolicy {
	return BookingPolicy{
		MinBookingHours:        DefaultMinBookingHours,
		MaxBookingHours:        DefaultMaxBookingHours,
		MinAdvanceBookingHours: DefaultMinAdvanceBookingHours,
		MaxAdvanceBookingDays:  DefaultMaxAdvanceBookingDays,
		FreeCancellationHours:  DefaultFreeCancellationHours,
		CancellationFeePercent: DefaultCancellationFeePercent,
		PlatformFeePercent:     DefaultPlatformFeePercent,
		DailyBookingLimit:      DefaultDailyBookingLimit,
		WeeklyBookingLimit:     DefaultWeeklyBookingLimit,
		MonthlyBookingLimit:    DefaultMonthlyBookingLimit,
		ReviewWindowDays:       DefaultReviewWindowDays,
		PendingExpiryHours:     DefaultPendingExpiryHours,
	}
}

// ReviewWindow returns the review window as a duration
func (p BookingPolicy) ReviewWindow() time.Duration {
	return time.Duration(p.ReviewWindowDays) * 24 * time.Hour
}

// PendingExpiry returns how long a PENDING booking waits for the companion
func (p BookingPolicy) PendingExpiry() time.Duration {
	return time.Duration(p.PendingExpiryHours * float64(time.Hour))
}

// Set parses raw and assigns it to the field named by key
func (p *BookingPolicy) Set(key, raw string) error {
	switch key {
	case KeyMinBookingHours:
		return setFloat(&p.MinBookingHours, key, raw)
	case KeyMaxBookingHours:
		return setFloat(&p.MaxBookingHours, key, raw)
	case KeyMinAdvanceBookingHours:
		return setFloat(&p.MinAdvanceBookingHours, key, raw)
	case KeyMaxAdvanceBookingDays:
		return setInt(&p.MaxAdvanceBookingDays, key, raw)
	case KeyFreeCancellationHours:
		return setFloat(&p.FreeCancellationHours, key, raw)
	case KeyCancellationFeePercent:
		return setFloat(&p.CancellationFeePercent, key, raw)
	case KeyPlatformFeePercent:
		return setFloat(&p.PlatformFeePercent, key, raw)
	case KeyDailyBookingLimit:
		return setInt(&p.DailyBookingLimit, key, raw)
	case KeyWeeklyBookingLimit:
		return setInt(&p.WeeklyBookingLimit, key, raw)
	case KeyMonthlyBookingLimit:
		return setInt(&p.MonthlyBookingLimit, key, raw)
	case KeyReviewWindowDays:
		return setInt(&p.ReviewWindowDays, key, raw)
	case KeyPendingExpiryHours:
		return setFloat(&p.PendingExpiryHours, key, raw)
	default:
		return fmt.Errorf("unknown policy key %q", key)
	}
}

// Values serialises the policy into platform_config rows
func (p BookingPolicy) Values() map[string]string {
	f := func(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }
	i := strconv.Itoa
	return map[string]string{
		KeyMinBookingHours:        f(p.MinBookingHours),
		KeyMaxBookingHours:        f(p.MaxBookingHours),
		KeyMinAdvanceBookingHours: f(p.MinAdvanceBookingHours),
		KeyMaxAdvanceBookingDays:  i(p.MaxAdvanceBookingDays),
		KeyFreeCancellationHours:  f(p.FreeCancellationHours),
		KeyCancellationFeePercent: f(p.CancellationFeePercent),
		KeyPlatformFeePercent:     f(p.PlatformFeePercent),
		KeyDailyBookingLimit:      i(p.DailyBookingLimit),
		KeyWeeklyBookingLimit:     i(p.WeeklyBookingLimit),
		KeyMonthlyBookingLimit:    i(p.MonthlyBookingLimit),
		KeyReviewWindowDays:       i(p.ReviewWindowDays),
		KeyPendingExpiryHours:     f(p.PendingExpiryHours),
	}
}

// Validate checks business ranges for every field
func (p BookingPolicy) Validate() error {
	switch {
	case p.MinBookingHours <= 0:
		return fmt.Errorf("%s must be positive", KeyMinBookingHours)
	case p.MaxBookingHours < p.MinBookingHours || p.MaxBookingHours > MaxBookingHoursLimit:
		return fmt.Errorf("%s must be between %s and %d", KeyMaxBookingHours, KeyMinBookingHours, MaxBookingHoursLimit)
	case p.MinAdvanceBookingHours < 0:
		return fmt.Errorf("%s must not be negative", KeyMinAdvanceBookingHours)
	case p.MaxAdvanceBookingDays < 1 || p.MaxAdvanceBookingDays > MaxAdvanceBookingDaysLimit:
		return fmt.Errorf("%s must be between 1 and %d", KeyMaxAdvanceBookingDays, MaxAdvanceBookingDaysLimit)
	case p.FreeCancellationHours < 0:
		return fmt.Errorf("%s must not be negative", KeyFreeCancellationHours)
	case p.CancellationFeePercent < 0 || p.CancellationFeePercent > 1:
		return fmt.Errorf("%s must be between 0 and 1", KeyCancellationFeePercent)
	case p.PlatformFeePercent < 0 || p.PlatformFeePercent > 1:
		return fmt.Errorf("%s must be between 0 and 1", KeyPlatformFeePercent)
	case p.DailyBookingLimit < 0 || p.WeeklyBookingLimit < 0 || p.MonthlyBookingLimit < 0:
		return fmt.Errorf("booking limits must not be negative")
	case p.ReviewWindowDays < 1:
		return fmt.Errorf("%s must be at least 1", KeyReviewWindowDays)
	case p.PendingExpiryHours <= 0:
		return fmt.Errorf("%s must be positive", KeyPendingExpiryHours)
	}
	return nil
}

func setFloat(dst *float64, key, raw string) error {
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return fmt.Errorf("policy key %s: %w", key, err)
	}
	*dst = v
	return nil
}

func setInt(dst *int, key, raw string) error {
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fmt.Errorf("policy key %s: %w", key, err)
	}
	*dst = v
	return nil
}
