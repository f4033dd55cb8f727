package sweeper

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/SMC-CompanionBooking/internal/domain"
	bookingRepo "github.com/m04kA/SMC-CompanionBooking/internal/infra/storage/booking"
)

const DefaultBatchSize = 100

// Result итог одного прохода
type Result struct {
	Expired   int
	Started   int
	Completed int
	Skipped   int
	Failed    int
}

// Sweeper периодически двигает бронирования по расписанию:
// просроченные PENDING истекают, CONFIRMED стартуют в start_time, ACTIVE завершаются в end_time.
type Sweeper struct {
	bookingRepo  BookingRepository
	eventRepo    EventRepository
	policy       PolicyProvider
	txManager    TransactionManager
	timeProvider TimeProvider
	metrics      Metrics
	logger       Logger
	interval     time.Duration
	batchSize    int
}

// New создает новый экземпляр воркера
func New(
	bookingRepo BookingRepository,
	eventRepo EventRepository,
	policy PolicyProvider,
	txManager TransactionManager,
	metrics Metrics,
	logger Logger,
	interval time.Duration,
	batchSize int,
) *Sweeper {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &Sweeper{
		bookingRepo:  bookingRepo,
		eventRepo:    eventRepo,
		policy:       policy,
		txManager:    txManager,
		timeProvider: &RealTimeProvider{},
		metrics:      metrics,
		logger:       logger,
		interval:     interval,
		batchSize:    batchSize,
	}
}

// Run выполняет проходы раз в interval до отмены ctx
func (s *Sweeper) Run(ctx context.Context) error {
	s.logger.Info("Sweeper: started, interval=%s, batch=%d", s.interval, s.batchSize)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("Sweeper: stopped")
			return nil
		case <-ticker.C:
			if _, err := s.RunOnce(ctx); err != nil {
				s.logger.Error("Sweeper: pass failed: %v", err)
			}
		}
	}
}

// RunOnce выполняет один проход. Каждое бронирование переводится в своей транзакции,
// поэтому ошибка на одном бронировании не откатывает остальные.
func (s *Sweeper) RunOnce(ctx context.Context) (Result, error) {
	var res Result

	now := s.timeProvider.Now()

	policy, err := s.policy.Policy(ctx)
	if err != nil {
		return res, fmt.Errorf("%w: load policy: %w", ErrInternal, err)
	}
	pendingCutoff := now.Add(-policy.PendingExpiry())

	due, err := s.bookingRepo.ListDueForSweep(ctx, now, pendingCutoff, s.batchSize)
	if err != nil {
		return res, fmt.Errorf("%w: list due bookings: %w", ErrInternal, err)
	}

	for _, candidate := range due {
		applied, err := s.sweepOne(ctx, candidate.ID, now, pendingCutoff)
		switch {
		case errors.Is(err, errNothingToDo):
			res.Skipped++
		case err != nil:
			s.logger.Error("Sweeper: booking id=%d failed: %v", candidate.ID, err)
			res.Failed++
		}

		for _, action := range applied {
			switch action {
			case domain.ActionExpire:
				res.Expired++
			case domain.ActionStart:
				res.Started++
			case domain.ActionComplete:
				res.Completed++
			}
		}
	}

	if len(due) > 0 {
		s.logger.Info("Sweeper: expired=%d, started=%d, completed=%d, skipped=%d, failed=%d",
			res.Expired, res.Started, res.Completed, res.Skipped, res.Failed)
	}
	return res, nil
}

// sweepOne перечитывает бронирование в транзакции и применяет все положенные переходы.
// CONFIRMED с прошедшим end_time проходит start и complete за одну транзакцию.
func (s *Sweeper) sweepOne(ctx context.Context, id int64, now, pendingCutoff time.Time) ([]domain.Action, error) {
	var applied []domain.Action

	err := s.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		applied = applied[:0]

		b, err := s.bookingRepo.GetByID(txCtx, id)
		if err != nil {
			if errors.Is(err, bookingRepo.ErrBookingNotFound) {
				return errNothingToDo
			}
			return fmt.Errorf("%w: get booking: %w", ErrInternal, err)
		}

		from := b.Status
		for {
			action, ok := b.DueAction(now, pendingCutoff)
			if !ok {
				break
			}
			if err := b.Close(action, domain.SystemActor, "", now); err != nil {
				return err
			}
			applied = append(applied, action)
		}
		if len(applied) == 0 {
			return errNothingToDo
		}

		if err := s.bookingRepo.UpdateTransition(txCtx, b, from); err != nil {
			if errors.Is(err, bookingRepo.ErrStaleState) {
				return errNothingToDo
			}
			return fmt.Errorf("%w: update booking: %w", ErrInternal, err)
		}

		events, err := domain.EventsFor(b, now)
		if err != nil {
			return fmt.Errorf("%w: build events: %v", ErrInternal, err)
		}
		if len(events) > 0 {
			if err := s.eventRepo.Append(txCtx, events...); err != nil {
				return fmt.Errorf("%w: append events: %w", ErrInternal, err)
			}
		}

		s.logger.Info("Sweeper: booking id=%d %s -> %s", b.ID, from, b.Status)
		return nil
	})

	if errors.Is(err, errNothingToDo) {
		return nil, err
	}
	for _, action := range applied {
		s.metrics.IncBookingOperation(string(action), domain.ResultLabel(err))
	}
	if err != nil {
		return nil, err
	}
	return applied, nil
}
