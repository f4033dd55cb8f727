package outbox

import (
	"context"
	"fmt"
	"time"
)

const DefaultBatchSize = 50

// Relay публикует события из booking_events в брокер.
// Доставка at-least-once: событие помечается опубликованным только после подтверждения отправки,
// потребители отбрасывают дубликаты по MessageId.
type Relay struct {
	eventRepo    EventRepository
	publisher    Publisher
	txManager    TransactionManager
	timeProvider TimeProvider
	metrics      Metrics
	logger       Logger
	interval     time.Duration
	batchSize    int
}

// New создает новый экземпляр релея
func New(
	eventRepo EventRepository,
	publisher Publisher,
	txManager TransactionManager,
	metrics Metrics,
	logger Logger,
	interval time.Duration,
	batchSize int,
) *Relay {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &Relay{
		eventRepo:    eventRepo,
		publisher:    publisher,
		txManager:    txManager,
		timeProvider: &RealTimeProvider{},
		metrics:      metrics,
		logger:       logger,
		interval:     interval,
		batchSize:    batchSize,
	}
}

// Run публикует пачки событий раз в interval до отмены ctx
func (r *Relay) Run(ctx context.Context) error {
	r.logger.Info("Outbox: started, interval=%s, batch=%d", r.interval, r.batchSize)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("Outbox: stopped")
			return nil
		case <-ticker.C:
			if _, err := r.RunOnce(ctx); err != nil {
				r.logger.Error("Outbox: pass failed: %v", err)
			}
		}
	}
}

// RunOnce публикует одну пачку. Строки заблокированы на время транзакции,
// параллельный релей их пропустит.
func (r *Relay) RunOnce(ctx context.Context) (int, error) {
	published := 0

	err := r.txManager.Do(ctx, func(txCtx context.Context) error {
		published = 0

		events, err := r.eventRepo.FetchUnpublished(txCtx, r.batchSize)
		if err != nil {
			return fmt.Errorf("%w: fetch events: %w", ErrInternal, err)
		}

		for _, e := range events {
			if err := r.publisher.PublishJSON(ctx, e.Type.RoutingKey(), e.ID, e.Payload); err != nil {
				r.logger.Warn("Outbox: publish event id=%s type=%s failed (attempt %d): %v", e.ID, e.Type, e.Attempts+1, err)
				r.metrics.IncEventPublished(string(e.Type), "error")
				if err := r.eventRepo.MarkFailed(txCtx, e.ID, err); err != nil {
					return fmt.Errorf("%w: mark failed: %w", ErrInternal, err)
				}
				continue
			}

			if err := r.eventRepo.MarkPublished(txCtx, e.ID, r.timeProvider.Now()); err != nil {
				return fmt.Errorf("%w: mark published: %w", ErrInternal, err)
			}
			r.metrics.IncEventPublished(string(e.Type), "ok")
			published++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	if published > 0 {
		r.logger.Info("Outbox: published %d events", published)
	}
	return published, nil
}
