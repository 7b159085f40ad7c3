package create_appointment

import (
	"context"
	"time"

	"github.com/avkuzmin/ACP-AppointmentService/internal/domain"
	"github.com/avkuzmin/ACP-AppointmentService/pkg/types"
)

// AppointmentRepository интерфейс репозитория записей на приём
type AppointmentRepository interface {
	Create(ctx context.Context, appt *domain.Appointment) (*domain.Appointment, error)
}

// AppointmentValidator интерфейс конвейера валидации записей
type AppointmentValidator interface {
	ValidateAppointment(ctx context.Context, userID int64, date time.Time, startTime types.TimeString) (*domain.ValidationResult, error)
	GetSettings(ctx context.Context) (*domain.SystemSettings, error)
	CalculateEndTime(startTime types.TimeString, settings *domain.SystemSettings) (types.TimeString, error)
}

// LedgerRepository интерфейс репозитория квот пользователей
type LedgerRepository interface {
	Increment(ctx context.Context, userID int64) error
}

// EmailQueue интерфейс очереди исходящих писем
type EmailQueue interface {
	Enqueue(ctx context.Context, userID int64, template string, payload map[string]interface{}) error
}

// AuditLogger интерфейс журнала аудита
type AuditLogger interface {
	Log(ctx context.Context, userID int64, action string, entityType string, entityID int64, details string) error
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
