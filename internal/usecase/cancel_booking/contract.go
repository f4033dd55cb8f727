package cancel_booking

import (
	"context"
	"time"

	"github.com/m04kA/SMC-CompanionBooking/internal/domain"
)

// BookingRepository интерфейс репозитория бронирований
type BookingRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Booking, error)
	UpdateTransition(ctx context.Context, booking *domain.Booking, from domain.BookingStatus) error
}

// EventRepository интерфейс outbox-таблицы событий
type EventRepository interface {
	Append(ctx context.Context, events ...*domain.Event) error
}

// PolicyProvider источник политики бронирования
type PolicyProvider interface {
	Policy(ctx context.Context) (domain.BookingPolicy, error)
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
}

// TimeProvider интерфейс для получения текущего времени
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
