package policy

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/m04kA/SMC-CompanionBooking/internal/domain"
)

// Provider источник актуальной политики бронирования.
// Ядро бронирования зависит только от этого интерфейса.
type Provider interface {
	Policy(ctx context.Context) (domain.BookingPolicy, error)
}

// ConfigRepository интерфейс репозитория параметров платформы
type ConfigRepository interface {
	GetValues(ctx context.Context, keys []string) (map[string]string, error)
	Upsert(ctx context.Context, values map[string]string, updatedBy int64, now time.Time) error
}

// Cache подмножество команд redis, которое использует CachedProvider
type Cache interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// Invalidator сбрасывает закэшированную политику после обновления
type Invalidator interface {
	Invalidate(ctx context.Context)
}

// TimeProvider интерфейс для получения текущего времени
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

func (p *RealTimeProvider) Now() time.Time {
	return time.Now().UTC()
}
