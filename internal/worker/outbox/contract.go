package outbox

import (
	"context"
	"time"

	"github.com/m04kA/SMC-CompanionBooking/internal/domain"
)

// EventRepository интерфейс outbox-таблицы событий
type EventRepository interface {
	FetchUnpublished(ctx context.Context, limit int) ([]*domain.Event, error)
	MarkPublished(ctx context.Context, id string, at time.Time) error
	MarkFailed(ctx context.Context, id string, publishErr error) error
}

// Publisher отправляет сообщение брокеру
type Publisher interface {
	PublishJSON(ctx context.Context, key string, messageID string, v any) error
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}

// TimeProvider интерфейс для получения текущего времени
type TimeProvider interface {
	Now() time.Time
}

// Metrics счётчики публикации событий
type Metrics interface {
	IncEventPublished(eventType, status string)
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
