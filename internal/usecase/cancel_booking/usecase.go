package cancel_booking

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/m04kA/SMC-CompanionBooking/internal/domain"
	bookingRepo "github.com/m04kA/SMC-CompanionBooking/internal/infra/storage/booking"
	"github.com/m04kA/SMC-CompanionBooking/internal/service/cancellation"
)

const operation = "cancel"

// UseCase use case для отмены бронирования с расчётом штрафа
type UseCase struct {
	bookingRepo  BookingRepository
	eventRepo    EventRepository
	policy       PolicyProvider
	txManager    TransactionManager
	timeProvider TimeProvider
	metrics      Metrics
	logger       Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	bookingRepo BookingRepository,
	eventRepo EventRepository,
	policy PolicyProvider,
	txManager TransactionManager,
	metrics Metrics,
	logger Logger,
) *UseCase {
	return &UseCase{
		bookingRepo:  bookingRepo,
		eventRepo:    eventRepo,
		policy:       policy,
		txManager:    txManager,
		timeProvider: &RealTimeProvider{},
		metrics:      metrics,
		logger:       logger,
	}
}

// Execute отменяет бронирование.
// Штраф считается по тому же now, которым помечается переход в CANCELLED.
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	resp, err := uc.execute(ctx, req)
	uc.metrics.IncBookingOperation(operation, domain.ResultLabel(err))
	return resp, err
}

func (uc *UseCase) execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("CancelBooking: booking=%d by user=%d", req.BookingID, req.ActorID)

	// 1. Валидация входных данных
	if req.BookingID <= 0 {
		return nil, fmt.Errorf("%w: bookingID must be positive", ErrInvalidInput)
	}
	reason := strings.TrimSpace(req.Reason)
	if utf8.RuneCountInString(reason) > domain.MaxCancellationReasonLength {
		return nil, fmt.Errorf("%w: reason must not exceed %d characters", ErrInvalidInput, domain.MaxCancellationReasonLength)
	}

	now := uc.timeProvider.Now()

	policy, err := uc.policy.Policy(ctx)
	if err != nil {
		uc.logger.Error("CancelBooking: failed to load policy: %v", err)
		return nil, fmt.Errorf("%w: failed to load policy: %w", ErrInternal, err)
	}

	var (
		booking *domain.Booking
		quote   domain.CancellationQuote
	)

	err = uc.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		// 2. Читаем бронирование под блокировкой строки
		b, err := uc.bookingRepo.GetByID(txCtx, req.BookingID)
		if err != nil {
			if errors.Is(err, bookingRepo.ErrBookingNotFound) {
				uc.logger.Warn("CancelBooking: booking id=%d not found", req.BookingID)
				return domain.NewBookingNotFound(req.BookingID)
			}
			uc.logger.Error("CancelBooking: failed to get booking id=%d: %v", req.BookingID, err)
			return fmt.Errorf("%w: get booking: %w", ErrInternal, err)
		}

		// 3. Отменить может участник бронирования или администратор
		actor, ok := resolveActor(b, req)
		if !ok {
			uc.logger.Warn("CancelBooking: user=%d is not a party of booking id=%d", req.ActorID, req.BookingID)
			return ErrAccessDenied
		}

		// 4. Считаем штраф и применяем переход
		quote = cancellation.QuoteFor(b, actor.Role, policy, now)
		from := b.Status
		if err := b.Cancel(quote, actor, reason, now); err != nil {
			uc.logger.Warn("CancelBooking: booking id=%d rejected: %v", req.BookingID, err)
			return err
		}

		if err := uc.bookingRepo.UpdateTransition(txCtx, b, from); err != nil {
			if errors.Is(err, bookingRepo.ErrStaleState) {
				uc.logger.Warn("CancelBooking: booking id=%d changed concurrently", req.BookingID)
				return domain.NewBookingConflict("booking was modified concurrently",
					map[string]any{"bookingId": req.BookingID, "expectedState": string(from)})
			}
			uc.logger.Error("CancelBooking: failed to update booking id=%d: %v", req.BookingID, err)
			return fmt.Errorf("%w: update booking: %w", ErrInternal, err)
		}

		// 5. Событие для платёжного сервиса: деньги двигает не ядро
		event, err := domain.NewBookingCancelledEvent(b, now)
		if err != nil {
			return fmt.Errorf("%w: build event: %v", ErrInternal, err)
		}
		if err := uc.eventRepo.Append(txCtx, event); err != nil {
			uc.logger.Error("CancelBooking: failed to append event: %v", err)
			return fmt.Errorf("%w: append event: %w", ErrInternal, err)
		}

		booking = b
		return nil
	})

	if err != nil {
		return nil, err
	}

	uc.logger.Info("CancelBooking: booking id=%d cancelled, fee=%d, refund=%d",
		booking.ID, quote.FeeAmount, quote.RefundAmount)

	return &Response{
		BookingID:         booking.ID,
		Status:            string(booking.Status),
		FeeApplied:        quote.FeeApplied,
		FeeAmount:         quote.FeeAmount,
		RefundAmount:      quote.RefundAmount,
		FeePercent:        quote.FeePercent,
		HoursUntilStart:   quote.HoursUntilStart,
		FreeWindowHonored: quote.FreeWindowHonored,
		CancelledAt:       now,
	}, nil
}

// resolveActor определяет роль инициатора отмены
func resolveActor(b *domain.Booking, req *Request) (domain.Actor, bool) {
	if role, ok := b.RoleOf(req.ActorID); ok {
		return domain.Actor{ID: req.ActorID, Role: role}, true
	}
	if req.IsAdmin {
		return domain.Actor{ID: req.ActorID, Role: domain.RoleAdmin}, true
	}
	return domain.Actor{}, false
}
