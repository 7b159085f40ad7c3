package audit

import (
	"context"
	"errors"
	"fmt"

	"github.com/avkuzmin/ACP-AppointmentService/pkg/dbmetrics"
	"github.com/avkuzmin/ACP-AppointmentService/pkg/psqlbuilder"
)

// DBExecutor интерфейс для выполнения запросов к БД
type DBExecutor = dbmetrics.DBExecutor

var (
	// ErrBuildQuery возвращается при ошибке построения SQL запроса
	ErrBuildQuery = errors.New("audit.repository: failed to build query")

	// ErrExecQuery возвращается при ошибке выполнения SQL запроса
	ErrExecQuery = errors.New("audit.repository: failed to execute query")
)

// Действия, фиксируемые в журнале аудита
const (
	ActionAppointmentCreated   = "appointment_created"
	ActionAppointmentCancelled = "appointment_cancelled"
	ActionStatusUpdated        = "appointment_status_updated"
	ActionSlotBlocked          = "slot_blocked"
	ActionSlotUnblocked        = "slot_unblocked"
	ActionSettingsUpdated      = "settings_updated"
)

// Repository журнал аудита административных и пользовательских действий.
// Записи best-effort: ошибка записи аудита логируется вызывающим слоем,
// но не прерывает бизнес-операцию.
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр журнала аудита
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Log фиксирует действие пользователя над сущностью
func (r *Repository) Log(ctx context.Context, userID int64, action string, entityType string, entityID int64, details string) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("audit_logs").
		Columns("user_id", "action", "entity_type", "entity_id", "details").
		Values(userID, action, entityType, entityID, details).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: Log - build insert query: %v", ErrBuildQuery, err)
	}

	if _, err := executor.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%w: Log - execute insert: %v", ErrExecQuery, err)
	}

	return nil
}
