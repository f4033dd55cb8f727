package availability

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/SMC-CompanionBooking/internal/domain"
	"github.com/m04kA/SMC-CompanionBooking/pkg/dbmetrics"
	"github.com/m04kA/SMC-CompanionBooking/pkg/psqlbuilder"
)

// Repository читает расписание компаньона. Запись расписания выполняет
// отдельный сервис профилей, для ядра бронирования таблицы только на чтение.
type Repository struct {
	db dbmetrics.DBExecutor
}

// NewRepository создает новый экземпляр репозитория доступности
func NewRepository(db dbmetrics.DBExecutor) *Repository {
	return &Repository{db: db}
}

// GetSchedule загружает часовой пояс, слоты и блэкауты компаньона,
// пересекающие [from, to). Если данных нет, возвращается пустое расписание без ошибки.
func (r *Repository) GetSchedule(ctx context.Context, companionID int64, from, to time.Time) (*domain.CompanionSchedule, error) {
	schedule := &domain.CompanionSchedule{CompanionID: companionID}

	tz, err := r.getTimezone(ctx, companionID)
	if err != nil {
		return nil, err
	}
	schedule.Timezone = tz

	slots, err := r.getSlots(ctx, companionID)
	if err != nil {
		return nil, err
	}
	schedule.Slots = slots

	blackouts, err := r.getBlackouts(ctx, companionID, from, to)
	if err != nil {
		return nil, err
	}
	schedule.Blackouts = blackouts

	return schedule, nil
}

func (r *Repository) getTimezone(ctx context.Context, companionID int64) (string, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("timezone").
		From("companion_schedules").
		Where(squirrel.Eq{"companion_id": companionID}).
		ToSql()
	if err != nil {
		return "", fmt.Errorf("%w: getTimezone - build select query: %v", ErrBuildQuery, err)
	}

	var tz string
	err = executor.QueryRowContext(ctx, query, args...).Scan(&tz)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("%w: getTimezone - scan timezone: %w", ErrScanRow, err)
	}
	return tz, nil
}

func (r *Repository) getSlots(ctx context.Context, companionID int64) ([]domain.AvailabilitySlot, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(
		"id",
		"companion_id",
		"day_of_week",
		"slot_date",
		"start_time",
		"end_time",
		"is_recurring",
		"is_available",
	).
		From("availability_slots").
		Where(squirrel.Eq{"companion_id": companionID}).
		OrderBy("start_time ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: getSlots - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: getSlots - execute query: %w", ErrExecQuery, err)
	}
	defer rows.Close()

	slots := make([]domain.AvailabilitySlot, 0)
	for rows.Next() {
		var (
			slot      domain.AvailabilitySlot
			dayOfWeek sql.NullInt16
			slotDate  sql.NullTime
		)
		if err := rows.Scan(
			&slot.ID,
			&slot.CompanionID,
			&dayOfWeek,
			&slotDate,
			&slot.StartTime,
			&slot.EndTime,
			&slot.Recurring,
			&slot.Available,
		); err != nil {
			return nil, fmt.Errorf("%w: getSlots - scan slot: %w", ErrScanRow, err)
		}

		if dayOfWeek.Valid {
			wd := time.Weekday(dayOfWeek.Int16)
			slot.DayOfWeek = &wd
		}
		if slotDate.Valid {
			d := slotDate.Time
			slot.Date = &d
		}
		slots = append(slots, slot)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: getSlots - rows error: %w", ErrScanRow, err)
	}
	return slots, nil
}

func (r *Repository) getBlackouts(ctx context.Context, companionID int64, from, to time.Time) ([]domain.Blackout, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("id", "companion_id", "start_time", "end_time", "reason").
		From("availability_blackouts").
		Where(squirrel.Eq{"companion_id": companionID}).
		Where(squirrel.Lt{"start_time": to.UTC()}).
		Where(squirrel.Gt{"end_time": from.UTC()}).
		OrderBy("start_time ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: getBlackouts - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: getBlackouts - execute query: %w", ErrExecQuery, err)
	}
	defer rows.Close()

	blackouts := make([]domain.Blackout, 0)
	for rows.Next() {
		var b domain.Blackout
		if err := rows.Scan(&b.ID, &b.CompanionID, &b.Start, &b.End, &b.Reason); err != nil {
			return nil, fmt.Errorf("%w: getBlackouts - scan blackout: %w", ErrScanRow, err)
		}
		blackouts = append(blackouts, b)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: getBlackouts - rows error: %w", ErrScanRow, err)
	}
	return blackouts, nil
}
