package frequency

import (
	"context"
	"time"
)

// BookingCounter считает бронирования нанимателя (должен читать из текущей транзакции)
type BookingCounter interface {
	CountByHirerSince(ctx context.Context, hirerID int64, since time.Time) (int, error)
}
