package frequency

import (
	"context"
	"fmt"
	"time"

	"github.com/m04kA/SMC-CompanionBooking/internal/domain"
)

// Window скользящее окно лимита
type Window struct {
	Type   string
	Length time.Duration
}

var (
	Daily   = Window{Type: domain.LimitDaily, Length: 24 * time.Hour}
	Weekly  = Window{Type: domain.LimitWeekly, Length: 7 * 24 * time.Hour}
	Monthly = Window{Type: domain.LimitMonthly, Length: 30 * 24 * time.Hour}
)

// Limiter считает неотменённые бронирования нанимателя, созданные в скользящих окнах
type Limiter struct {
	counter BookingCounter
}

// NewLimiter создает новый экземпляр лимитера
func NewLimiter(counter BookingCounter) *Limiter {
	return &Limiter{counter: counter}
}

// Count возвращает текущее количество бронирований в окне w, отсчитанном от now.
// Сравнение с лимитом выполняет вызывающий.
func (l *Limiter) Count(ctx context.Context, hirerID int64, w Window, now time.Time) (int, error) {
	count, err := l.counter.CountByHirerSince(ctx, hirerID, now.Add(-w.Length))
	if err != nil {
		return 0, fmt.Errorf("frequency: count %s window: %w", w.Type, err)
	}
	return count, nil
}

// Enforce проверяет все окна с ненулевым лимитом.
// Возвращает BookingFrequencyLimit, если очередное бронирование превысит лимит (current >= limit).
// Должен вызываться в той же транзакции, что и вставка бронирования.
func (l *Limiter) Enforce(ctx context.Context, hirerID int64, policy domain.BookingPolicy, now time.Time) error {
	checks := []struct {
		window Window
		limit  int
	}{
		{Daily, policy.DailyBookingLimit},
		{Weekly, policy.WeeklyBookingLimit},
		{Monthly, policy.MonthlyBookingLimit},
	}

	for _, c := range checks {
		if c.limit <= 0 {
			continue
		}
		current, err := l.Count(ctx, hirerID, c.window, now)
		if err != nil {
			return err
		}
		if current >= c.limit {
			return domain.NewFrequencyLimit(c.window.Type, c.limit, current)
		}
	}
	return nil
}
