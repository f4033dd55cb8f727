package events

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/SMC-CompanionBooking/internal/domain"
	"github.com/m04kA/SMC-CompanionBooking/pkg/dbmetrics"
	"github.com/m04kA/SMC-CompanionBooking/pkg/psqlbuilder"
)

// Repository transactional outbox доменных событий (таблица booking_events)
type Repository struct {
	db dbmetrics.DBExecutor
}

// NewRepository создает новый экземпляр outbox-репозитория
func NewRepository(db dbmetrics.DBExecutor) *Repository {
	return &Repository{db: db}
}

// Append записывает события. Вызывается в той же транзакции, что и смена статуса.
func (r *Repository) Append(ctx context.Context, events ...*domain.Event) error {
	if len(events) == 0 {
		return nil
	}
	executor := dbmetrics.GetExecutor(ctx, r.db)

	insertBuilder := psqlbuilder.Insert("booking_events").
		Columns("id", "booking_id", "event_type", "payload", "occurred_at")
	for _, e := range events {
		insertBuilder = insertBuilder.Values(e.ID, e.BookingID, string(e.Type), string(e.Payload), e.OccurredAt.UTC())
	}

	query, args, err := insertBuilder.ToSql()
	if err != nil {
		return fmt.Errorf("%w: Append - build insert query: %v", ErrBuildQuery, err)
	}

	if _, err := executor.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%w: Append - execute insert: %w", ErrExecQuery, err)
	}
	return nil
}

// FetchUnpublished выбирает неопубликованные события в порядке возникновения.
// Внутри транзакции строки блокируются с SKIP LOCKED, чтобы несколько релеев не публиковали одно и то же.
func (r *Repository) FetchUnpublished(ctx context.Context, limit int) ([]*domain.Event, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select("id", "booking_id", "event_type", "payload", "occurred_at", "attempts").
		From("booking_events").
		Where(squirrel.Eq{"published_at": nil}).
		OrderBy("occurred_at ASC").
		Limit(uint64(limit))

	if dbmetrics.IsInTransaction(ctx) {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE SKIP LOCKED")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: FetchUnpublished - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: FetchUnpublished - execute query: %w", ErrExecQuery, err)
	}
	defer rows.Close()

	result := make([]*domain.Event, 0)
	for rows.Next() {
		var (
			e         domain.Event
			eventType string
			payload   []byte
		)
		if err := rows.Scan(&e.ID, &e.BookingID, &eventType, &payload, &e.OccurredAt, &e.Attempts); err != nil {
			return nil, fmt.Errorf("%w: FetchUnpublished - scan row: %w", ErrScanRow, err)
		}
		e.Type = domain.EventType(eventType)
		e.Payload = payload
		result = append(result, &e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: FetchUnpublished - rows error: %w", ErrScanRow, err)
	}
	return result, nil
}

// MarkPublished отмечает событие как отправленное брокеру
func (r *Repository) MarkPublished(ctx context.Context, id string, at time.Time) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("booking_events").
		Set("published_at", at.UTC()).
		Set("last_error", nil).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: MarkPublished - build update query: %v", ErrBuildQuery, err)
	}

	if _, err := executor.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%w: MarkPublished - execute update: %w", ErrExecQuery, err)
	}
	return nil
}

// MarkFailed увеличивает счётчик попыток и сохраняет последнюю ошибку
func (r *Repository) MarkFailed(ctx context.Context, id string, publishErr error) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("booking_events").
		Set("attempts", squirrel.Expr("attempts + 1")).
		Set("last_error", sql.NullString{String: publishErr.Error(), Valid: true}).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: MarkFailed - build update query: %v", ErrBuildQuery, err)
	}

	if _, err := executor.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%w: MarkFailed - execute update: %w", ErrExecQuery, err)
	}
	return nil
}
