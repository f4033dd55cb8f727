package create_booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/SMC-CompanionBooking/internal/domain"
	bookingRepo "github.com/m04kA/SMC-CompanionBooking/internal/infra/storage/booking"
	profileClient "github.com/m04kA/SMC-CompanionBooking/internal/integrations/profileservice"
	"github.com/m04kA/SMC-CompanionBooking/internal/service/frequency"
	"github.com/m04kA/SMC-CompanionBooking/pkg/interval"
)

const operation = "create"

// UseCase use case для создания бронирования
type UseCase struct {
	bookingRepo   BookingRepository
	eventRepo     EventRepository
	profileClient ProfileServiceClient
	availability  AvailabilityChecker
	policy        PolicyProvider
	limiter       *frequency.Limiter
	txManager     TransactionManager
	timeProvider  TimeProvider
	metrics       Metrics
	logger        Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	bookingRepo BookingRepository,
	eventRepo EventRepository,
	profileClient ProfileServiceClient,
	availability AvailabilityChecker,
	policy PolicyProvider,
	txManager TransactionManager,
	metrics Metrics,
	logger Logger,
) *UseCase {
	return &UseCase{
		bookingRepo:   bookingRepo,
		eventRepo:     eventRepo,
		profileClient: profileClient,
		availability:  availability,
		policy:        policy,
		limiter:       frequency.NewLimiter(bookingRepo),
		txManager:     txManager,
		timeProvider:  &RealTimeProvider{},
		metrics:       metrics,
		logger:        logger,
	}
}

// Execute выполняет use case создания бронирования
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	resp, err := uc.execute(ctx, req)
	uc.metrics.IncBookingOperation(operation, domain.ResultLabel(err))
	return resp, err
}

func (uc *UseCase) execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("CreateBooking: hirer=%d, companion=%d, start=%s, end=%s",
		req.HirerID, req.CompanionID, req.StartTime.Format(time.RFC3339), req.EndTime.Format(time.RFC3339))

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("CreateBooking: validation failed: %v", err)
		return nil, err
	}

	// 2. Время фиксируется один раз на всю операцию
	now := uc.timeProvider.Now()
	start, end := req.StartTime.UTC(), req.EndTime.UTC()

	// 3. Читаем актуальную политику
	policy, err := uc.policy.Policy(ctx)
	if err != nil {
		uc.logger.Error("CreateBooking: failed to load policy: %v", err)
		return nil, fmt.Errorf("%w: failed to load policy: %w", ErrInternal, err)
	}

	// 4. Длительность и горизонт бронирования
	if err := validateInterval(start, end, now, policy); err != nil {
		uc.logger.Warn("CreateBooking: interval rejected: %v", err)
		return nil, err
	}

	// 5. Профиль компаньона: ставка и активность
	companion, err := uc.profileClient.GetCompanion(ctx, req.CompanionID)
	if err != nil {
		if errors.Is(err, profileClient.ErrCompanionNotFound) {
			uc.logger.Warn("CreateBooking: companion id=%d not found", req.CompanionID)
			return nil, ErrCompanionNotFound
		}
		if errors.Is(err, profileClient.ErrServiceUnavailable) {
			uc.logger.Error("CreateBooking: profile service unavailable: %v", err)
			return nil, fmt.Errorf("%w: %v", ErrProfileUnavailable, err)
		}
		uc.logger.Error("CreateBooking: failed to get companion id=%d: %v", req.CompanionID, err)
		return nil, fmt.Errorf("%w: failed to get companion: %v", ErrInternal, err)
	}

	// 6. Расписание компаньона. Читается вне транзакции: слоты меняются редко,
	// а решение о пересечении принимается ниже по бронированиям под блокировкой
	available, err := uc.availability.IsAvailable(ctx, req.CompanionID, start, end)
	if err != nil {
		uc.logger.Error("CreateBooking: availability check failed for companion=%d: %v", req.CompanionID, err)
		return nil, fmt.Errorf("%w: availability check failed: %w", ErrInternal, err)
	}
	if !available {
		uc.logger.Warn("CreateBooking: companion=%d not available in [%s, %s)",
			req.CompanionID, start.Format(time.RFC3339), end.Format(time.RFC3339))
		return nil, domain.NewCompanionNotAvailable(req.CompanionID, start, end)
	}

	hours := interval.DurationHours(start, end)
	basePrice, platformFee := quotePrice(companion.HourlyRate, hours, policy.PlatformFeePercent)

	var result *domain.Booking

	// 7. Проверка лимитов, пересечений и вставка в одной сериализуемой транзакции
	err = uc.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		// 7.1. Блокировки всегда в порядке компаньон -> наниматель.
		// Снимок SERIALIZABLE берётся первым запросом, то есть до ожидания блокировки,
		// и вставку держателя ожидающий не увидит. От двойной записи защищают SSI
		// (40001 при коммите, повтор в txmanager с новым снимком) и исключающее
		// ограничение bookings_no_overlap; блокировки только снижают число конфликтов.
		if err := uc.bookingRepo.LockCompanion(txCtx, req.CompanionID); err != nil {
			uc.logger.Error("CreateBooking: failed to lock companion=%d: %v", req.CompanionID, err)
			return fmt.Errorf("%w: lock companion: %w", ErrInternal, err)
		}
		if err := uc.bookingRepo.LockHirer(txCtx, req.HirerID); err != nil {
			uc.logger.Error("CreateBooking: failed to lock hirer=%d: %v", req.HirerID, err)
			return fmt.Errorf("%w: lock hirer: %w", ErrInternal, err)
		}

		// 7.2. Лимиты частоты по снимку этой же транзакции
		if err := uc.limiter.Enforce(txCtx, req.HirerID, policy, now); err != nil {
			if _, ok := domain.AsError(err); ok {
				uc.logger.Warn("CreateBooking: hirer=%d rejected: %v", req.HirerID, err)
				return err
			}
			uc.logger.Error("CreateBooking: frequency check failed for hirer=%d: %v", req.HirerID, err)
			return fmt.Errorf("%w: frequency check: %w", ErrInternal, err)
		}

		// 7.3. Пересечения с активными бронированиями компаньона (FOR UPDATE)
		overlapping, err := uc.bookingRepo.FindOverlapping(txCtx, req.CompanionID, start, end)
		if err != nil {
			uc.logger.Error("CreateBooking: failed to find overlapping bookings: %v", err)
			return fmt.Errorf("%w: find overlapping: %w", ErrInternal, err)
		}
		if len(overlapping) > 0 {
			uc.logger.Warn("CreateBooking: companion=%d already booked by booking id=%d",
				req.CompanionID, overlapping[0].ID)
			return domain.NewDoubleBooking(req.CompanionID, start, end, overlapping[0].ID)
		}

		// 7.4. Сохраняем бронирование
		booking := &domain.Booking{
			HirerID:          req.HirerID,
			CompanionID:      req.CompanionID,
			StartTime:        start,
			EndTime:          end,
			Status:           domain.StatusPending,
			BasePrice:        basePrice,
			PlatformFee:      platformFee,
			Notes:            req.Notes,
			CreatedAt:        now,
			LastTransitionAt: now,
		}

		created, err := uc.bookingRepo.Create(txCtx, booking)
		if err != nil {
			// Exclusion constraint в БД - последний рубеж против двойного бронирования
			if errors.Is(err, bookingRepo.ErrOverlap) {
				uc.logger.Warn("CreateBooking: exclusion constraint rejected companion=%d", req.CompanionID)
				return domain.NewDoubleBooking(req.CompanionID, start, end, 0)
			}
			uc.logger.Error("CreateBooking: failed to create booking: %v", err)
			return fmt.Errorf("%w: failed to create booking: %w", ErrInternal, err)
		}

		// 7.5. Событие в outbox в той же транзакции
		event, err := domain.NewBookingCreatedEvent(created, now)
		if err != nil {
			return fmt.Errorf("%w: build event: %v", ErrInternal, err)
		}
		if err := uc.eventRepo.Append(txCtx, event); err != nil {
			uc.logger.Error("CreateBooking: failed to append event: %v", err)
			return fmt.Errorf("%w: append event: %w", ErrInternal, err)
		}

		result = created
		return nil
	})

	if err != nil {
		return nil, err
	}

	uc.logger.Info("CreateBooking: successfully created booking id=%d", result.ID)

	return &Response{
		ID:          result.ID,
		HirerID:     result.HirerID,
		CompanionID: result.CompanionID,
		StartTime:   result.StartTime,
		EndTime:     result.EndTime,
		Status:      string(result.Status),
		PriceBreakdown: PriceBreakdown{
			HourlyRate:    companion.HourlyRate,
			DurationHours: hours,
			BasePrice:     result.BasePrice,
			PlatformFee:   result.PlatformFee,
			Total:         result.TotalPrice(),
			Currency:      companion.Currency,
		},
		Notes:     result.Notes,
		CreatedAt: result.CreatedAt,
	}, nil
}
