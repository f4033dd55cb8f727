package availability

import (
	"context"
	"fmt"
	"time"

	"github.com/m04kA/SMC-CompanionBooking/internal/domain"
	"github.com/m04kA/SMC-CompanionBooking/pkg/interval"
)

// Service отвечает на вопрос «свободен ли компаньон в [start, end)» по его расписанию.
// Бронирования здесь не учитываются: пересечения проверяются в транзакции создания.
type Service struct {
	schedules ScheduleRepository
	logger    Logger
}

// NewService создает новый экземпляр сервиса доступности
func NewService(schedules ScheduleRepository, logger Logger) *Service {
	return &Service{
		schedules: schedules,
		logger:    logger,
	}
}

// IsAvailable возвращает true, если интервал целиком покрыт доступными слотами
// и не задевает блэкауты. Отсутствие расписания трактуется как недоступность.
func (s *Service) IsAvailable(ctx context.Context, companionID int64, start, end time.Time) (bool, error) {
	// Загружаем с запасом в сутки: слоты задаются в локальном времени компаньона
	schedule, err := s.schedules.GetSchedule(ctx, companionID, start.Add(-24*time.Hour), end.Add(24*time.Hour))
	if err != nil {
		s.logger.Error("IsAvailable: failed to load schedule companion_id=%d: %v", companionID, err)
		return false, fmt.Errorf("%w: IsAvailable - load schedule: %w", ErrInternal, err)
	}

	if !schedule.HasData() {
		s.logger.Info("IsAvailable: no schedule for companion_id=%d, treating as unavailable", companionID)
		return false, nil
	}

	return Covers(schedule, start, end), nil
}

// Day свободные окна расписания на один локальный день компаньона
type Day struct {
	Location *time.Location
	Start    time.Time // локальная полночь
	End      time.Time // следующая локальная полночь
	Windows  []interval.Range
}

// DayWindows возвращает окна расписания на дату date ("YYYY-MM-DD") в часовом поясе компаньона.
// Для компаньона без расписания возвращается день без окон.
func (s *Service) DayWindows(ctx context.Context, companionID int64, date string) (*Day, error) {
	approx, err := time.Parse(domain.DateFormat, date)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDate, err)
	}

	schedule, err := s.schedules.GetSchedule(ctx, companionID, approx.Add(-24*time.Hour), approx.Add(48*time.Hour))
	if err != nil {
		s.logger.Error("DayWindows: failed to load schedule companion_id=%d: %v", companionID, err)
		return nil, fmt.Errorf("%w: DayWindows - load schedule: %w", ErrInternal, err)
	}

	loc := schedule.Location()
	dayStart, err := time.ParseInLocation(domain.DateFormat, date, loc)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDate, err)
	}

	day := &Day{
		Location: loc,
		Start:    dayStart,
		End:      time.Date(dayStart.Year(), dayStart.Month(), dayStart.Day()+1, 0, 0, 0, 0, loc),
	}
	if schedule.HasData() {
		day.Windows = DayWindows(schedule, dayStart)
	}
	return day, nil
}
