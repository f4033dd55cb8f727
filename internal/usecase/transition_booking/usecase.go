package transition_booking

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/m04kA/SMC-CompanionBooking/internal/domain"
	bookingRepo "github.com/m04kA/SMC-CompanionBooking/internal/infra/storage/booking"
)

const operation = "transition"

// UseCase use case для явных переходов состояния бронирования
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

// Execute применяет действие к бронированию через таблицу переходов
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	resp, err := uc.execute(ctx, req)
	uc.metrics.IncBookingOperation(operation, domain.ResultLabel(err))
	return resp, err
}

func (uc *UseCase) execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("TransitionBooking: booking=%d, action=%s by user=%d", req.BookingID, req.Action, req.ActorID)

	// 1. Валидация входных данных
	if req.BookingID <= 0 {
		return nil, fmt.Errorf("%w: bookingID must be positive", ErrInvalidInput)
	}
	action, ok := parseAction(req.Action)
	if !ok {
		uc.logger.Warn("TransitionBooking: unsupported action=%q", req.Action)
		return nil, fmt.Errorf("%w: %q", ErrUnknownAction, req.Action)
	}
	reason := strings.TrimSpace(req.Reason)
	if utf8.RuneCountInString(reason) > domain.MaxCancellationReasonLength {
		return nil, fmt.Errorf("%w: reason must not exceed %d characters", ErrInvalidInput, domain.MaxCancellationReasonLength)
	}

	now := uc.timeProvider.Now()

	policy, err := uc.policy.Policy(ctx)
	if err != nil {
		uc.logger.Error("TransitionBooking: failed to load policy: %v", err)
		return nil, fmt.Errorf("%w: failed to load policy: %w", ErrInternal, err)
	}
	// Та же граница ожидания, что и у планировщика
	pendingCutoff := now.Add(-policy.PendingExpiry())

	var (
		booking *domain.Booking
		from    domain.BookingStatus
	)

	err = uc.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		b, err := uc.bookingRepo.GetByID(txCtx, req.BookingID)
		if err != nil {
			if errors.Is(err, bookingRepo.ErrBookingNotFound) {
				uc.logger.Warn("TransitionBooking: booking id=%d not found", req.BookingID)
				return domain.NewBookingNotFound(req.BookingID)
			}
			uc.logger.Error("TransitionBooking: failed to get booking id=%d: %v", req.BookingID, err)
			return fmt.Errorf("%w: get booking: %w", ErrInternal, err)
		}

		actor, ok := resolveActor(b, action, req.ActorID, req.IsAdmin)
		if !ok {
			uc.logger.Warn("TransitionBooking: user=%d may not %s booking id=%d", req.ActorID, action, req.BookingID)
			return ErrAccessDenied
		}

		// Просроченную заявку принять нельзя, завершить можно только после end_time
		if err := b.CheckTiming(action, now, pendingCutoff); err != nil {
			uc.logger.Warn("TransitionBooking: booking id=%d rejected by clock: %v", req.BookingID, err)
			return err
		}

		from = b.Status
		if err := b.Close(action, actor, reason, now); err != nil {
			uc.logger.Warn("TransitionBooking: booking id=%d rejected: %v", req.BookingID, err)
			return err
		}
		if action == domain.ActionDispute && reason != "" {
			b.DisputeReason = &reason
		}

		if err := uc.bookingRepo.UpdateTransition(txCtx, b, from); err != nil {
			if errors.Is(err, bookingRepo.ErrStaleState) {
				uc.logger.Warn("TransitionBooking: booking id=%d changed concurrently", req.BookingID)
				return domain.NewBookingConflict("booking was modified concurrently",
					map[string]any{"bookingId": req.BookingID, "expectedState": string(from)})
			}
			uc.logger.Error("TransitionBooking: failed to update booking id=%d: %v", req.BookingID, err)
			return fmt.Errorf("%w: update booking: %w", ErrInternal, err)
		}

		events, err := domain.EventsFor(b, now)
		if err != nil {
			return fmt.Errorf("%w: build events: %v", ErrInternal, err)
		}
		if len(events) > 0 {
			if err := uc.eventRepo.Append(txCtx, events...); err != nil {
				uc.logger.Error("TransitionBooking: failed to append events: %v", err)
				return fmt.Errorf("%w: append events: %w", ErrInternal, err)
			}
		}

		booking = b
		return nil
	})

	if err != nil {
		return nil, err
	}

	uc.logger.Info("TransitionBooking: booking id=%d %s -> %s", booking.ID, from, booking.Status)

	return &Response{
		BookingID:        booking.ID,
		PreviousStatus:   string(from),
		Status:           string(booking.Status),
		RefundAmount:     booking.RefundAmount,
		LastTransitionAt: booking.LastTransitionAt,
	}, nil
}
