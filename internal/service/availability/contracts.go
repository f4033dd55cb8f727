package availability

import (
	"context"
	"time"

	"github.com/m04kA/SMC-CompanionBooking/internal/domain"
)

// ScheduleRepository интерфейс репозитория расписаний компаньонов
type ScheduleRepository interface {
	GetSchedule(ctx context.Context, companionID int64, from, to time.Time) (*domain.CompanionSchedule, error)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
