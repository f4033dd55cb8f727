package get_available_slots

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/SMC-CompanionBooking/internal/domain"
	profileClient "github.com/m04kA/SMC-CompanionBooking/internal/integrations/profileservice"
	"github.com/m04kA/SMC-CompanionBooking/internal/service/availability"
)

// UseCase use case для получения свободных окон компаньона на день
type UseCase struct {
	bookingRepo   BookingRepository
	availability  AvailabilityService
	profileClient ProfileServiceClient
	policy        PolicyProvider
	timeProvider  TimeProvider
	logger        Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	bookingRepo BookingRepository,
	availability AvailabilityService,
	profileClient ProfileServiceClient,
	policy PolicyProvider,
	logger Logger,
) *UseCase {
	return &UseCase{
		bookingRepo:   bookingRepo,
		availability:  availability,
		profileClient: profileClient,
		policy:        policy,
		timeProvider:  &RealTimeProvider{},
		logger:        logger,
	}
}

// Execute возвращает окна расписания за вычетом занятого времени.
// Результат носит справочный характер: решение о брони принимается в транзакции создания.
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("GetAvailableSlots: user=%d, companion=%d, date=%s", req.UserID, req.CompanionID, req.Date)

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("GetAvailableSlots: validation failed: %v", err)
		return nil, err
	}

	// 2. Получаем текущее время и политику
	now := uc.timeProvider.Now()

	policy, err := uc.policy.Policy(ctx)
	if err != nil {
		uc.logger.Error("GetAvailableSlots: failed to load policy: %v", err)
		return nil, fmt.Errorf("%w: failed to load policy: %w", ErrInternal, err)
	}

	// 3. Проверяем, что компаньон существует и активен
	if _, err := uc.profileClient.GetCompanion(ctx, req.CompanionID); err != nil {
		if errors.Is(err, profileClient.ErrCompanionNotFound) {
			uc.logger.Warn("GetAvailableSlots: companion id=%d not found", req.CompanionID)
			return nil, ErrCompanionNotFound
		}
		uc.logger.Error("GetAvailableSlots: failed to get companion id=%d: %v", req.CompanionID, err)
		return nil, fmt.Errorf("%w: failed to get companion: %w", ErrInternal, err)
	}

	// 4. Окна расписания на локальный день компаньона
	day, err := uc.availability.DayWindows(ctx, req.CompanionID, req.Date)
	if err != nil {
		if errors.Is(err, availability.ErrInvalidDate) {
			uc.logger.Warn("GetAvailableSlots: invalid date %q", req.Date)
			return nil, fmt.Errorf("%w: %v", ErrInvalidDate, err)
		}
		uc.logger.Error("GetAvailableSlots: failed to load schedule: %v", err)
		return nil, fmt.Errorf("%w: failed to load schedule: %w", ErrInternal, err)
	}

	// 5. Валидация даты с учетом политики
	if err := validateDate(day, now, policy.MaxAdvanceBookingDays); err != nil {
		uc.logger.Warn("GetAvailableSlots: date validation failed: %v", err)
		return nil, err
	}

	resp := &Response{
		Date:        req.Date,
		CompanionID: req.CompanionID,
		Timezone:    day.Location.String(),
		Windows:     []Window{},
	}
	if len(day.Windows) == 0 {
		uc.logger.Info("GetAvailableSlots: companion=%d has no schedule on %s", req.CompanionID, req.Date)
		return resp, nil
	}

	// 6. Активные бронирования, пересекающие день
	from, to := day.Start, day.End
	bookings, err := uc.bookingRepo.GetByCompanionWithFilter(ctx, domain.CompanionBookingsFilter{
		CompanionID: req.CompanionID,
		From:        &from,
		To:          &to,
	})
	if err != nil {
		uc.logger.Error("GetAvailableSlots: failed to get bookings: %v", err)
		return nil, fmt.Errorf("%w: failed to get bookings: %w", ErrInternal, err)
	}

	// 7. Вычитаем занятое время и время до минимального упреждения
	earliest := now.Add(time.Duration(policy.MinAdvanceBookingHours * float64(time.Hour)))
	free := freeWindows(day.Windows, bookings, earliest, policy.MinBookingHours)
	resp.Windows = toWindows(free, day.Location)

	uc.logger.Info("GetAvailableSlots: %d free windows for companion=%d on %s", len(resp.Windows), req.CompanionID, req.Date)

	return resp, nil
}
