package booking

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"github.com/m04kA/SMC-CompanionBooking/internal/domain"
	"github.com/m04kA/SMC-CompanionBooking/pkg/dbmetrics"
	"github.com/m04kA/SMC-CompanionBooking/pkg/psqlbuilder"
)

// SQLSTATE exclusion_violation (bookings_no_overlap)
const codeExclusionViolation = "23P01"

var bookingColumns = []string{
	"id",
	"hirer_id",
	"companion_id",
	"start_time",
	"end_time",
	"status",
	"base_price",
	"platform_fee",
	"cancellation_fee",
	"refund_amount",
	"cancellation_fee_percent",
	"hours_until_start",
	"free_window_honored",
	"notes",
	"dispute_reason",
	"cancellation_reason",
	"cancelled_by",
	"cancelled_by_role",
	"cancelled_at",
	"completed_at",
	"created_at",
	"last_transition_at",
}

func activeStatuses() []string {
	statuses := make([]string, len(domain.ActiveStatuses))
	for i, s := range domain.ActiveStatuses {
		statuses[i] = string(s)
	}
	return statuses
}

// Repository репозиторий для работы с бронированиями
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория бронирований
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Create вставляет новое бронирование.
// created_at и last_transition_at берутся из booking, чтобы окна частоты
// считались по тем же часам, что и проверка лимитов.
func (r *Repository) Create(ctx context.Context, booking *domain.Booking) (*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("bookings").
		Columns(
			"hirer_id",
			"companion_id",
			"start_time",
			"end_time",
			"status",
			"base_price",
			"platform_fee",
			"notes",
			"created_at",
			"last_transition_at",
		).
		Values(
			booking.HirerID,
			booking.CompanionID,
			booking.StartTime.UTC(),
			booking.EndTime.UTC(),
			booking.Status,
			booking.BasePrice,
			booking.PlatformFee,
			booking.Notes,
			booking.CreatedAt.UTC(),
			booking.LastTransitionAt.UTC(),
		).
		Suffix("RETURNING id").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	err = executor.QueryRowContext(ctx, query, args...).Scan(&booking.ID)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == codeExclusionViolation {
			return nil, fmt.Errorf("%w: Create - %w", ErrOverlap, err)
		}
		return nil, fmt.Errorf("%w: Create - execute insert: %w", ErrExecQuery, err)
	}

	return booking, nil
}

// GetByID получает бронирование по ID.
// Внутри транзакции строка блокируется (FOR UPDATE) до конца транзакции.
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(bookingColumns...).
		From("bookings").
		Where(squirrel.Eq{"id": id})

	if dbmetrics.IsInTransaction(ctx) {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %v", ErrBuildQuery, err)
	}

	booking, err := scanBooking(executor.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - scan booking: %w", ErrScanRow, err)
	}

	return booking, nil
}

// FindOverlapping возвращает активные бронирования компаньона, пересекающие [start, end).
// Внутри транзакции найденные строки блокируются.
func (r *Repository) FindOverlapping(ctx context.Context, companionID int64, start, end time.Time) ([]*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(bookingColumns...).
		From("bookings").
		Where(squirrel.Eq{"companion_id": companionID}).
		Where(squirrel.Eq{"status": activeStatuses()}).
		Where(squirrel.Lt{"start_time": end.UTC()}).
		Where(squirrel.Gt{"end_time": start.UTC()}).
		OrderBy("start_time ASC")

	if dbmetrics.IsInTransaction(ctx) {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: FindOverlapping - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: FindOverlapping - execute query: %w", ErrExecQuery, err)
	}
	defer rows.Close()

	return scanBookings(rows)
}

// CountByHirerSince считает неотменённые бронирования нанимателя, созданные не раньше since
func (r *Repository) CountByHirerSince(ctx context.Context, hirerID int64, since time.Time) (int, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("COUNT(*)").
		From("bookings").
		Where(squirrel.Eq{"hirer_id": hirerID}).
		Where(squirrel.NotEq{"status": string(domain.StatusCancelled)}).
		Where(squirrel.GtOrEq{"created_at": since.UTC()}).
		ToSql()

	if err != nil {
		return 0, fmt.Errorf("%w: CountByHirerSince - build select query: %v", ErrBuildQuery, err)
	}

	var count int
	if err := executor.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("%w: CountByHirerSince - scan count: %w", ErrScanRow, err)
	}

	return count, nil
}

// UpdateTransition сохраняет результат перехода состояния.
// Запись применяется только если текущий статус в БД равен from, иначе ErrStaleState.
func (r *Repository) UpdateTransition(ctx context.Context, booking *domain.Booking, from domain.BookingStatus) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	updateBuilder := psqlbuilder.Update("bookings").
		Set("status", booking.Status).
		Set("last_transition_at", booking.LastTransitionAt.UTC()).
		Set("cancellation_fee", booking.CancellationFee).
		Set("refund_amount", booking.RefundAmount).
		Set("dispute_reason", booking.DisputeReason).
		Set("cancellation_reason", booking.CancellationReason).
		Set("cancelled_at", utcPtr(booking.CancelledAt)).
		Set("completed_at", utcPtr(booking.CompletedAt))

	if c := booking.Cancellation; c != nil {
		updateBuilder = updateBuilder.
			Set("cancellation_fee_percent", c.FeePercent).
			Set("hours_until_start", c.HoursUntilStart).
			Set("free_window_honored", c.FreeWindowHonored)
	}

	if a := booking.CancelledBy; a != nil {
		var actorID *int64
		if a.ID != 0 {
			actorID = &a.ID
		}
		updateBuilder = updateBuilder.
			Set("cancelled_by", actorID).
			Set("cancelled_by_role", string(a.Role))
	}

	query, args, err := updateBuilder.
		Where(squirrel.Eq{"id": booking.ID, "status": from}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: UpdateTransition - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: UpdateTransition - execute update: %w", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: UpdateTransition - get rows affected: %w", ErrExecQuery, err)
	}

	if rowsAffected == 0 {
		return ErrStaleState
	}

	return nil
}

// GetByHirerID получает список бронирований нанимателя
// Опционально фильтрует по статусу
func (r *Repository) GetByHirerID(ctx context.Context, hirerID int64, status *domain.BookingStatus) ([]*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(bookingColumns...).
		From("bookings").
		Where(squirrel.Eq{"hirer_id": hirerID}).
		OrderBy("start_time DESC")

	if status != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"status": *status})
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByHirerID - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetByHirerID - execute query: %w", ErrExecQuery, err)
	}
	defer rows.Close()

	return scanBookings(rows)
}

// GetByCompanionWithFilter получает бронирования компаньона с фильтрацией
// по периоду начала, статусу и признаку включения неактивных бронирований
func (r *Repository) GetByCompanionWithFilter(ctx context.Context, filter domain.CompanionBookingsFilter) ([]*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(bookingColumns...).
		From("bookings").
		Where(squirrel.Eq{"companion_id": filter.CompanionID})

	// Фильтрация по периоду (пересечение с [From, To))
	if filter.From != nil {
		selectBuilder = selectBuilder.Where(squirrel.Gt{"end_time": filter.From.UTC()})
	}
	if filter.To != nil {
		selectBuilder = selectBuilder.Where(squirrel.Lt{"start_time": filter.To.UTC()})
	}

	// Фильтрация по статусу
	if filter.Status != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"status": *filter.Status})
	} else if !filter.IncludeInactive {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"status": activeStatuses()})
	}

	query, args, err := selectBuilder.OrderBy("start_time ASC").ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByCompanionWithFilter - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetByCompanionWithFilter - execute query: %w", ErrExecQuery, err)
	}
	defer rows.Close()

	return scanBookings(rows)
}

// ListDueForSweep возвращает бронирования, которым пора сменить статус по времени:
// PENDING, созданные до pendingCutoff или уже начавшиеся; CONFIRMED с наступившим началом;
// ACTIVE с наступившим окончанием.
func (r *Repository) ListDueForSweep(ctx context.Context, now, pendingCutoff time.Time, limit int) ([]*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(bookingColumns...).
		From("bookings").
		Where(squirrel.Or{
			squirrel.And{
				squirrel.Eq{"status": string(domain.StatusPending)},
				squirrel.Or{
					squirrel.LtOrEq{"created_at": pendingCutoff.UTC()},
					squirrel.LtOrEq{"start_time": now.UTC()},
				},
			},
			squirrel.And{
				squirrel.Eq{"status": string(domain.StatusConfirmed)},
				squirrel.LtOrEq{"start_time": now.UTC()},
			},
			squirrel.And{
				squirrel.Eq{"status": string(domain.StatusActive)},
				squirrel.LtOrEq{"end_time": now.UTC()},
			},
		}).
		OrderBy("start_time ASC").
		Limit(uint64(limit)).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: ListDueForSweep - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListDueForSweep - execute query: %w", ErrExecQuery, err)
	}
	defer rows.Close()

	return scanBookings(rows)
}

// LockCompanion берёт транзакционную advisory-блокировку на таймлайн компаньона
func (r *Repository) LockCompanion(ctx context.Context, companionID int64) error {
	return r.advisoryLock(ctx, "companion", companionID)
}

// LockHirer берёт транзакционную advisory-блокировку на лимиты нанимателя
func (r *Repository) LockHirer(ctx context.Context, hirerID int64) error {
	return r.advisoryLock(ctx, "hirer", hirerID)
}

func (r *Repository) advisoryLock(ctx context.Context, scope string, id int64) error {
	if !dbmetrics.IsInTransaction(ctx) {
		return fmt.Errorf("%w: advisoryLock %s=%d", ErrTransactionRequired, scope, id)
	}
	executor := dbmetrics.GetExecutor(ctx, r.db)

	key := fmt.Sprintf("%s:%d", scope, id)
	if _, err := executor.ExecContext(ctx, "SELECT pg_advisory_xact_lock(hashtextextended($1, 0))", key); err != nil {
		return fmt.Errorf("%w: advisoryLock %s - %w", ErrExecQuery, key, err)
	}
	return nil
}

func scanBooking(row rowScanner) (*domain.Booking, error) {
	var (
		b                 domain.Booking
		cancellationFee   sql.NullInt64
		refundAmount      sql.NullInt64
		feePercent        sql.NullFloat64
		hoursUntilStart   sql.NullFloat64
		freeWindowHonored sql.NullBool
		cancelledBy       sql.NullInt64
		cancelledByRole   sql.NullString
		cancelledAt       sql.NullTime
		completedAt       sql.NullTime
	)

	err := row.Scan(
		&b.ID,
		&b.HirerID,
		&b.CompanionID,
		&b.StartTime,
		&b.EndTime,
		&b.Status,
		&b.BasePrice,
		&b.PlatformFee,
		&cancellationFee,
		&refundAmount,
		&feePercent,
		&hoursUntilStart,
		&freeWindowHonored,
		&b.Notes,
		&b.DisputeReason,
		&b.CancellationReason,
		&cancelledBy,
		&cancelledByRole,
		&cancelledAt,
		&completedAt,
		&b.CreatedAt,
		&b.LastTransitionAt,
	)
	if err != nil {
		return nil, err
	}

	if cancellationFee.Valid {
		b.CancellationFee = &cancellationFee.Int64
	}
	if refundAmount.Valid {
		b.RefundAmount = &refundAmount.Int64
	}
	if feePercent.Valid {
		b.Cancellation = &domain.CancellationRecord{
			FeePercent:        feePercent.Float64,
			HoursUntilStart:   hoursUntilStart.Float64,
			FreeWindowHonored: freeWindowHonored.Bool,
		}
	}
	if cancelledByRole.Valid {
		b.CancelledBy = &domain.Actor{ID: cancelledBy.Int64, Role: domain.Role(cancelledByRole.String)}
	}
	if cancelledAt.Valid {
		b.CancelledAt = &cancelledAt.Time
	}
	if completedAt.Valid {
		b.CompletedAt = &completedAt.Time
	}

	return &b, nil
}

// scanBookings сканирует результаты запроса в слайс бронирований
func scanBookings(rows *sql.Rows) ([]*domain.Booking, error) {
	bookings := make([]*domain.Booking, 0)

	for rows.Next() {
		booking, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scanBookings - scan row: %w", ErrScanRow, err)
		}
		bookings = append(bookings, booking)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: scanBookings - rows error: %w", ErrScanRow, err)
	}

	return bookings, nil
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
