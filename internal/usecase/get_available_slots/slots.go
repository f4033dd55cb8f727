package get_available_slots

import (
	"time"

	"github.com/m04kA/SMC-CompanionBooking/internal/domain"
	"github.com/m04kA/SMC-CompanionBooking/internal/service/availability"
	"github.com/m04kA/SMC-CompanionBooking/pkg/interval"
)

// freeWindows вычитает из окон расписания активные бронирования и время до earliest.
// Окна короче minHours не возвращаются: в них нельзя уложить минимальное бронирование.
func freeWindows(windows []interval.Range, bookings []*domain.Booking, earliest time.Time, minHours float64) []interval.Range {
	free := windows
	for _, b := range bookings {
		// Завершённые и отменённые бронирования время не занимают
		if !b.IsActive() {
			continue
		}
		free = availability.Subtract(free, interval.Range{Start: b.StartTime, End: b.EndTime})
	}

	result := make([]interval.Range, 0, len(free))
	for _, w := range free {
		if w.Start.Before(earliest) {
			w.Start = earliest
		}
		if !w.Start.Before(w.End) {
			continue
		}
		if interval.DurationHours(w.Start, w.End) < minHours {
			continue
		}
		result = append(result, w)
	}
	return result
}

// toWindows переводит интервалы в часовой пояс компаньона
func toWindows(ranges []interval.Range, loc *time.Location) []Window {
	out := make([]Window, len(ranges))
	for i, r := range ranges {
		out[i] = Window{
			StartTime:     r.Start.In(loc),
			EndTime:       r.End.In(loc),
			DurationHours: interval.DurationHours(r.Start, r.End),
		}
	}
	return out
}
