package create_booking

import (
	"context"
	"time"

	"github.com/m04kA/SMC-CompanionBooking/internal/domain"
	"github.com/m04kA/SMC-CompanionBooking/internal/integrations/profileservice"
)

// BookingRepository интерфейс репозитория бронирований
type BookingRepository interface {
	Create(ctx context.Context, booking *domain.Booking) (*domain.Booking, error)
	FindOverlapping(ctx context.Context, companionID int64, start, end time.Time) ([]*domain.Booking, error)
	CountByHirerSince(ctx context.Context, hirerID int64, since time.Time) (int, error)
	LockCompanion(ctx context.Context, companionID int64) error
	LockHirer(ctx context.Context, hirerID int64) error
}

// EventRepository интерфейс outbox-таблицы событий
type EventRepository interface {
	Append(ctx context.Context, events ...*domain.Event) error
}

// ProfileServiceClient интерфейс клиента для ProfileService
type ProfileServiceClient interface {
	GetCompanion(ctx context.Context, companionID int64) (*profileservice.Companion, error)
}

// AvailabilityChecker проверка расписания компаньона
type AvailabilityChecker interface {
	IsAvailable(ctx context.Context, companionID int64, start, end time.Time) (bool, error)
}

// PolicyProvider источник политики бронирования
type PolicyProvider interface {
	Policy(ctx context.Context) (domain.BookingPolicy, error)
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
}

// TimeProvider интерфейс для получения текущего времени (для тестирования)
type TimeProvider interface {
	Now() time.Time
}

// Metrics счётчики бизнес-операций
type Metrics interface {
	IncBookingOperation(operation, result string)
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
