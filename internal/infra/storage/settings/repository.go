package settings

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Masterminds/squirrel"

	"github.com/avkuzmin/ACP-AppointmentService/internal/domain"
	"github.com/avkuzmin/ACP-AppointmentService/pkg/dbmetrics"
	"github.com/avkuzmin/ACP-AppointmentService/pkg/psqlbuilder"
)

// settingsRowID единственная запись настроек
const settingsRowID = 1

// Repository репозиторий системных настроек (singleton-запись)
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория настроек
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Get возвращает системные настройки.
// Если запись ещё не создана, возвращает ErrSettingsNotFound -
// вызывающий слой подставляет значения по умолчанию.
func (r *Repository) Get(ctx context.Context) (*domain.SystemSettings, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(
		"id",
		"working_hours_start",
		"working_hours_end",
		"appointment_duration_minutes",
		"monthly_limit_per_user",
		"cancellation_blocking_hours",
		"min_cancellation_lead_time_hours",
		"max_advance_booking_days",
		"blocking_time_after_hours",
		"updated_at",
	).
		From("system_settings").
		Where(squirrel.Eq{"id": settingsRowID}).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: Get - build select query: %v", ErrBuildQuery, err)
	}

	var s domain.SystemSettings
	var updatedAt sql.NullTime

	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&s.ID,
		&s.WorkingHoursStart,
		&s.WorkingHoursEnd,
		&s.AppointmentDurationMinutes,
		&s.MonthlyLimitPerUser,
		&s.CancellationBlockingHours,
		&s.MinCancellationLeadTimeHrs,
		&s.MaxAdvancedBookingDays,
		&s.BlockingTimeAfterHours,
		&updatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, ErrSettingsNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: Get - scan settings: %v", ErrScanRow, err)
	}

	s.UpdatedAt = updatedAt.Time

	return &s, nil
}

// Upsert сохраняет системные настройки (создаёт запись при первом обновлении)
func (r *Repository) Upsert(ctx context.Context, s *domain.SystemSettings) (*domain.SystemSettings, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("system_settings").
		Columns(
			"id",
			"working_hours_start",
			"working_hours_end",
			"appointment_duration_minutes",
			"monthly_limit_per_user",
			"cancellation_blocking_hours",
			"min_cancellation_lead_time_hours",
			"max_advance_booking_days",
			"blocking_time_after_hours",
		).
		Values(
			settingsRowID,
			s.WorkingHoursStart,
			s.WorkingHoursEnd,
			s.AppointmentDurationMinutes,
			s.MonthlyLimitPerUser,
			s.CancellationBlockingHours,
			s.MinCancellationLeadTimeHrs,
			s.MaxAdvancedBookingDays,
			s.BlockingTimeAfterHours,
		).
		Suffix(`ON CONFLICT (id) DO UPDATE SET
			working_hours_start = EXCLUDED.working_hours_start,
			working_hours_end = EXCLUDED.working_hours_end,
			appointment_duration_minutes = EXCLUDED.appointment_duration_minutes,
			monthly_limit_per_user = EXCLUDED.monthly_limit_per_user,
			cancellation_blocking_hours = EXCLUDED.cancellation_blocking_hours,
			min_cancellation_lead_time_hours = EXCLUDED.min_cancellation_lead_time_hours,
			max_advance_booking_days = EXCLUDED.max_advance_booking_days,
			blocking_time_after_hours = EXCLUDED.blocking_time_after_hours,
			updated_at = NOW()
		RETURNING id, updated_at`).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: Upsert - build upsert query: %v", ErrBuildQuery, err)
	}

	var updatedAt sql.NullTime
	err = executor.QueryRowContext(ctx, query, args...).Scan(&s.ID, &updatedAt)
	if err != nil {
		return nil, fmt.Errorf("%w: Upsert - execute upsert: %v", ErrExecQuery, err)
	}

	s.UpdatedAt = updatedAt.Time

	return s, nil
}
