package blockedslot

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"

	"github.com/avkuzmin/ACP-AppointmentService/internal/domain"
	"github.com/avkuzmin/ACP-AppointmentService/pkg/dbmetrics"
	"github.com/avkuzmin/ACP-AppointmentService/pkg/psqlbuilder"
)

var blockedSlotColumns = []string{
	"id",
	"blocked_date",
	"block_type",
	"start_time",
	"end_time",
	"reason",
	"created_by",
	"created_at",
}

// Repository репозиторий для работы с блокировками слотов
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория блокировок
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Create создает новую блокировку (полный день или временное окно)
func (r *Repository) Create(ctx context.Context, block *domain.BlockedSlot) (*domain.BlockedSlot, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	insertBuilder := psqlbuilder.Insert("blocked_slots").
		Columns(
			"blocked_date",
			"block_type",
			"start_time",
			"end_time",
			"reason",
			"created_by",
		)

	// Для блокировки полного дня временное окно не задано
	if block.BlockType == domain.BlockFullDay {
		insertBuilder = insertBuilder.Values(
			dateOnly(block.BlockedDate),
			block.BlockType,
			nil,
			nil,
			block.Reason,
			block.CreatedBy,
		)
	} else {
		insertBuilder = insertBuilder.Values(
			dateOnly(block.BlockedDate),
			block.BlockType,
			block.StartTime,
			block.EndTime,
			block.Reason,
			block.CreatedBy,
		)
	}

	query, args, err := insertBuilder.
		Suffix("RETURNING id, created_at").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	var createdAt sql.NullTime
	err = executor.QueryRowContext(ctx, query, args...).Scan(&block.ID, &createdAt)
	if err != nil {
		return nil, fmt.Errorf("%w: Create - execute insert: %v", ErrExecQuery, err)
	}

	block.CreatedAt = createdAt.Time

	return block, nil
}

// CreatePeriod создает блокировку периода: одна full_day запись на каждый
// календарный день диапазона [from, to] включительно.
// Вызывается внутри транзакции, чтобы период создавался атомарно.
func (r *Repository) CreatePeriod(ctx context.Context, from, to time.Time, reason string, createdBy int64) ([]*domain.BlockedSlot, error) {
	created := make([]*domain.BlockedSlot, 0)

	for day := dateOnly(from); !day.After(dateOnly(to)); day = day.AddDate(0, 0, 1) {
		block := &domain.BlockedSlot{
			BlockedDate: day,
			BlockType:   domain.BlockFullDay,
			Reason:      reason,
			CreatedBy:   createdBy,
		}

		result, err := r.Create(ctx, block)
		if err != nil {
			return nil, fmt.Errorf("CreatePeriod - day %s: %w", day.Format(domain.DateFormat), err)
		}
		created = append(created, result)
	}

	return created, nil
}

// GetByDate получает все блокировки на указанную дату
func (r *Repository) GetByDate(ctx context.Context, date time.Time) ([]*domain.BlockedSlot, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(blockedSlotColumns...).
		From("blocked_slots").
		Where(squirrel.Eq{"blocked_date": dateOnly(date)}).
		OrderBy("start_time ASC NULLS FIRST").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetByDate - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetByDate - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	return scanBlockedSlots(rows)
}

// GetByRange получает блокировки за период [from, to] включительно
func (r *Repository) GetByRange(ctx context.Context, from, to time.Time) ([]*domain.BlockedSlot, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(blockedSlotColumns...).
		From("blocked_slots").
		Where(squirrel.GtOrEq{"blocked_date": dateOnly(from)}).
		Where(squirrel.LtOrEq{"blocked_date": dateOnly(to)}).
		OrderBy("blocked_date ASC, start_time ASC NULLS FIRST").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetByRange - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetByRange - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	return scanBlockedSlots(rows)
}

// Delete удаляет блокировку по ID
func (r *Repository) Delete(ctx context.Context, id int64) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Delete("blocked_slots").
		Where(squirrel.Eq{"id": id}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: Delete - build delete query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: Delete - execute delete: %v", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: Delete - get rows affected: %v", ErrExecQuery, err)
	}

	if rowsAffected == 0 {
		return ErrBlockedSlotNotFound
	}

	return nil
}

// scanBlockedSlots сканирует результаты запроса в слайс блокировок
func scanBlockedSlots(rows *sql.Rows) ([]*domain.BlockedSlot, error) {
	blocks := make([]*domain.BlockedSlot, 0)

	for rows.Next() {
		var block domain.BlockedSlot
		var createdAt sql.NullTime

		err := rows.Scan(
			&block.ID,
			&block.BlockedDate,
			&block.BlockType,
			&block.StartTime,
			&block.EndTime,
			&block.Reason,
			&block.CreatedBy,
			&createdAt,
		)
		if err != nil {
			return nil, fmt.Errorf("%w: scanBlockedSlots - scan row: %v", ErrScanRow, err)
		}

		block.CreatedAt = createdAt.Time
		blocks = append(blocks, &block)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: scanBlockedSlots - rows error: %v", ErrScanRow, err)
	}

	return blocks, nil
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
