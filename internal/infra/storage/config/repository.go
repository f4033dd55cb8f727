package config

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/SMC-CompanionBooking/pkg/dbmetrics"
	"github.com/m04kA/SMC-CompanionBooking/pkg/psqlbuilder"
)

// Repository хранит параметры платформы в таблице platform_config (key/value)
type Repository struct {
	db dbmetrics.DBExecutor
}

// NewRepository создает новый экземпляр репозитория конфигурации платформы
func NewRepository(db dbmetrics.DBExecutor) *Repository {
	return &Repository{db: db}
}

// GetValues возвращает значения для указанных ключей.
// Отсутствующие ключи просто не попадают в результат.
func (r *Repository) GetValues(ctx context.Context, keys []string) (map[string]string, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("key", "value").
		From("platform_config").
		Where(squirrel.Eq{"key": keys}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetValues - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetValues - execute query: %w", ErrExecQuery, err)
	}
	defer rows.Close()

	values := make(map[string]string, len(keys))
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("%w: GetValues - scan row: %w", ErrScanRow, err)
		}
		values[key] = value
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: GetValues - rows error: %w", ErrScanRow, err)
	}
	return values, nil
}

// Upsert записывает значения одним запросом INSERT ... ON CONFLICT
func (r *Repository) Upsert(ctx context.Context, values map[string]string, updatedBy int64, now time.Time) error {
	if len(values) == 0 {
		return ErrEmptyUpdate
	}
	executor := dbmetrics.GetExecutor(ctx, r.db)

	// Стабильный порядок строк, чтобы конкурентные upsert не блокировали ключи крест-накрест
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	insertBuilder := psqlbuilder.Insert("platform_config").
		Columns("key", "value", "updated_by", "updated_at")
	for _, k := range keys {
		insertBuilder = insertBuilder.Values(k, values[k], updatedBy, now.UTC())
	}

	query, args, err := insertBuilder.
		Suffix("ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_by = EXCLUDED.updated_by, updated_at = EXCLUDED.updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: Upsert - build insert query: %v", ErrBuildQuery, err)
	}

	if _, err := executor.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%w: Upsert - execute insert: %w", ErrExecQuery, err)
	}
	return nil
}
