package availability

import (
	"sort"
	"time"

	"github.com/m04kA/SMC-CompanionBooking/internal/domain"
	"github.com/m04kA/SMC-CompanionBooking/pkg/interval"
)

// DayWindows возвращает свободные окна расписания на локальный календарный день day.
// Слоты-переопределения на конкретную дату полностью заменяют еженедельные слоты этого дня.
// Пересекающиеся доступные слоты объединяются, недоступные слоты и блэкауты вычитаются.
func DayWindows(schedule *domain.CompanionSchedule, day time.Time) []interval.Range {
	loc := schedule.Location()
	day = day.In(loc)

	var overrides, recurring []domain.AvailabilitySlot
	for _, slot := range schedule.Slots {
		if !slot.AppliesTo(day) {
			continue
		}
		if slot.Recurring {
			recurring = append(recurring, slot)
		} else {
			overrides = append(overrides, slot)
		}
	}

	applicable := recurring
	if len(overrides) > 0 {
		applicable = overrides
	}

	var open, closed []interval.Range
	for _, slot := range applicable {
		r := interval.Range{Start: slot.StartTime.On(day, loc), End: slot.EndTime.On(day, loc)}
		if !r.Start.Before(r.End) {
			continue
		}
		if slot.Available {
			open = append(open, r)
		} else {
			closed = append(closed, r)
		}
	}

	windows := Merge(open)
	for _, c := range closed {
		windows = Subtract(windows, c)
	}
	for _, b := range schedule.Blackouts {
		windows = Subtract(windows, interval.Range{Start: b.Start, End: b.End})
	}
	return windows
}

// Covers проверяет, что [start, end) целиком покрыт расписанием.
// Интервал режется по локальным полуночам и каждая часть проверяется по своему дню.
// Пустое расписание означает «недоступен».
func Covers(schedule *domain.CompanionSchedule, start, end time.Time) bool {
	if schedule == nil || !schedule.HasData() || !start.Before(end) {
		return false
	}

	for _, part := range interval.SplitByDay(start, end, schedule.Location()) {
		covered := false
		for _, w := range DayWindows(schedule, part.Start) {
			if interval.Contains(w.Start, w.End, part.Start, part.End) {
				covered = true
				break
			}
		}
		if !covered {
			return false
		}
	}
	return true
}

// Merge объединяет пересекающиеся и смежные интервалы, результат отсортирован
func Merge(ranges []interval.Range) []interval.Range {
	if len(ranges) == 0 {
		return nil
	}
	sorted := make([]interval.Range, len(ranges))
	copy(sorted, ranges)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Start.Before(sorted[j].Start) })

	merged := []interval.Range{sorted[0]}
	for _, r := range sorted[1:] {
		last := &merged[len(merged)-1]
		if !r.Start.After(last.End) {
			if r.End.After(last.End) {
				last.End = r.End
			}
			continue
		}
		merged = append(merged, r)
	}
	return merged
}

// Subtract вычитает cut из каждого интервала
func Subtract(ranges []interval.Range, cut interval.Range) []interval.Range {
	result := make([]interval.Range, 0, len(ranges))
	for _, r := range ranges {
		if !interval.Overlaps(r.Start, r.End, cut.Start, cut.End) {
			result = append(result, r)
			continue
		}
		if r.Start.Before(cut.Start) {
			result = append(result, interval.Range{Start: r.Start, End: cut.Start})
		}
		if cut.End.Before(r.End) {
			result = append(result, interval.Range{Start: cut.End, End: r.End})
		}
	}
	return result
}
