package domain

// Default booking policy values
const (
	DefaultMinBookingHours        = 1.0
	DefaultMaxBookingHours        = 12.0
	DefaultMinAdvanceBookingHours = 2.0
	DefaultMaxAdvanceBookingDays  = 30
	DefaultFreeCancellationHours  = 24.0
	DefaultCancellationFeePercent = 0.5
	DefaultPlatformFeePercent     = 0.1
	DefaultDailyBookingLimit      = 5
	DefaultWeeklyBookingLimit     = 15
	DefaultMonthlyBookingLimit    = 40
	DefaultReviewWindowDays       = 7
	DefaultPendingExpiryHours     = 24.0
)

// Business validation constants
const (
	MaxBookingHoursLimit        = 72
	MaxAdvanceBookingDaysLimit  = 365
	MaxNotesLength              = 500
	MaxCancellationReasonLength = 500
	MaxReviewCommentLength      = 2000
	MinRating                   = 1
	MaxRating                   = 5
)

// Time format constants
const (
	TimeFormat = "15:04"      // HH:MM
	DateFormat = "2006-01-02" // YYYY-MM-DD
)

// ActiveStatuses статусы, занимающие время компаньона.
// Пересечения среди них запрещены.
var ActiveStatuses = []BookingStatus{
	StatusPending,
	StatusConfirmed,
	StatusActive,
}

// InactiveStatuses статусы, исключаемые из списков по умолчанию
var InactiveStatuses = []BookingStatus{
	StatusCompleted,
	StatusCancelled,
}
