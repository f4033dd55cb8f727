package get_available_slots

import (
	"context"
	"time"

	"github.com/m04kA/SMC-CompanionBooking/internal/domain"
	"github.com/m04kA/SMC-CompanionBooking/internal/integrations/profileservice"
	"github.com/m04kA/SMC-CompanionBooking/internal/service/availability"
)

// BookingRepository интерфейс репозитория бронирований
type BookingRepository interface {
	// GetByCompanionWithFilter получает бронирования компаньона, пересекающие период
	GetByCompanionWithFilter(ctx context.Context, filter domain.CompanionBookingsFilter) ([]*domain.Booking, error)
}

// AvailabilityService источник окон расписания компаньона
type AvailabilityService interface {
	DayWindows(ctx context.Context, companionID int64, date string) (*availability.Day, error)
}

// ProfileServiceClient интерфейс клиента для ProfileService
type ProfileServiceClient interface {
	GetCompanion(ctx context.Context, companionID int64) (*profileservice.Companion, error)
}

// PolicyProvider источник политики бронирования
type PolicyProvider interface {
	Policy(ctx context.Context) (domain.BookingPolicy, error)
}

// TimeProvider интерфейс для получения текущего времени (для тестирования)
type TimeProvider interface {
	Now() time.Time
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// RealTimeProvider реальный провайдер времени для production
type RealTimeProvider struct{}

// Now возвращает текущее время
func (p *RealTimeProvider) Now() time.Time {
	return time.Now().UTC()
}
