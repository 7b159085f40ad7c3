package ledger

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

var ledgerColumns = []string{
	"id",
	"user_id",
	"month",
	"appointment_count",
	"last_cancellation_at",
	"monthly_limit",
	"created_at",
	"updated_at",
}

// Repository репозиторий учёта месячных квот пользователей
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория квот
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// GetOrCreate возвращает запись учёта пользователя, создавая её при первом обращении.
// Выполняет ленивый переход месяца: если сохранённый месяц не совпадает с текущим,
// счётчик сбрасывается в 0, месяц обновляется, и сброс сохраняется в БД.
// Повторные вызовы в пределах одного месяца без мутаций возвращают идентичный снимок.
func (r *Repository) GetOrCreate(ctx context.Context, userID int64, month string, monthlyLimit int) (*domain.QuotaLedger, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	// Создаём запись, если её ещё нет
	insertQuery, insertArgs, err := psqlbuilder.Insert("quota_ledger").
		Columns("user_id", "month", "appointment_count", "monthly_limit").
		Values(userID, month, 0, monthlyLimit).
		Suffix("ON CONFLICT (user_id) DO NOTHING").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetOrCreate - build insert query: %v", ErrBuildQuery, err)
	}

	if _, err := executor.ExecContext(ctx, insertQuery, insertArgs...); err != nil {
		return nil, fmt.Errorf("%w: GetOrCreate - execute insert: %v", ErrExecQuery, err)
	}

	entry, err := r.getByUserID(ctx, executor, userID)
	if err != nil {
		return nil, err
	}

	// Ленивый переход месяца: сброс счётчика с сохранением в БД
	if entry.Month != month {
		rolloverQuery, rolloverArgs, err := psqlbuilder.Update("quota_ledger").
			Set("month", month).
			Set("appointment_count", 0).
			Set("updated_at", squirrel.Expr("NOW()")).
			Where(squirrel.Eq{"user_id": userID}).
			ToSql()

		if err != nil {
			return nil, fmt.Errorf("%w: GetOrCreate - build rollover query: %v", ErrBuildQuery, err)
		}

		if _, err := executor.ExecContext(ctx, rolloverQuery, rolloverArgs...); err != nil {
			return nil, fmt.Errorf("%w: GetOrCreate - execute rollover: %v", ErrExecQuery, err)
		}

		entry.Month = month
		entry.AppointmentCount = 0
	}

	return entry, nil
}

// Increment увеличивает счётчик записей пользователя на 1
func (r *Repository) Increment(ctx context.Context, userID int64) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("quota_ledger").
		Set("appointment_count", squirrel.Expr("appointment_count + 1")).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"user_id": userID}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: Increment - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: Increment - execute update: %v", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: Increment - get rows affected: %v", ErrExecQuery, err)
	}

	if rowsAffected == 0 {
		return ErrLedgerNotFound
	}

	return nil
}

// Decrement уменьшает счётчик записей пользователя на 1 с нижней границей 0.
// Защита от двойной отмены и артефактов гонок: счётчик никогда не уходит в минус.
func (r *Repository) Decrement(ctx context.Context, userID int64) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("quota_ledger").
		Set("appointment_count", squirrel.Expr("GREATEST(appointment_count - 1, 0)")).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"user_id": userID}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: Decrement - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: Decrement - execute update: %v", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: Decrement - get rows affected: %v", ErrExecQuery, err)
	}

	if rowsAffected == 0 {
		return ErrLedgerNotFound
	}

	return nil
}

// StampCancellation фиксирует момент последней отмены пользователя
func (r *Repository) StampCancellation(ctx context.Context, userID int64, at time.Time) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("quota_ledger").
		Set("last_cancellation_at", at).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"user_id": userID}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: StampCancellation - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: StampCancellation - execute update: %v", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: StampCancellation - get rows affected: %v", ErrExecQuery, err)
	}

	if rowsAffected == 0 {
		return ErrLedgerNotFound
	}

	return nil
}

func (r *Repository) getByUserID(ctx context.Context, executor DBExecutor, userID int64) (*domain.QuotaLedger, error) {
	query, args, err := psqlbuilder.Select(ledgerColumns...).
		From("quota_ledger").
		Where(squirrel.Eq{"user_id": userID}).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: getByUserID - build select query: %v", ErrBuildQuery, err)
	}

	var entry domain.QuotaLedger
	var createdAt, updatedAt sql.NullTime

	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&entry.ID,
		&entry.UserID,
		&entry.Month,
		&entry.AppointmentCount,
		&entry.LastCancellationAt,
		&entry.MonthlyLimit,
		&createdAt,
		&updatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, ErrLedgerNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: getByUserID - scan ledger: %v", ErrScanRow, err)
	}

	entry.CreatedAt = createdAt.Time
	entry.UpdatedAt = updatedAt.Time

	return &entry, nil
}
