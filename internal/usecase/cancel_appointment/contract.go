package cancel_appointment

import (
	"context"
	"time"

	"github.com/avkuzmin/ACP-AppointmentService/internal/domain"
)

// AppointmentRepository интерфейс репозитория записей на приём
type AppointmentRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Appointment, error)
	Cancel(ctx context.Context, id int64, reason string) error
}

// CancellationValidator интерфейс проверки срока самостоятельной отмены
type CancellationValidator interface {
	GetSettings(ctx context.Context) (*domain.SystemSettings, error)
	ValidateCancellationLeadTime(appt *domain.Appointment, settings *domain.SystemSettings) *domain.ValidationError
}

// LedgerRepository интерфейс репозитория квот пользователей
type LedgerRepository interface {
	GetOrCreate(ctx context.Context, userID int64, month string, monthlyLimit int) (*domain.QuotaLedger, error)
	Decrement(ctx context.Context, userID int64) error
	StampCancellation(ctx context.Context, userID int64, at time.Time) error
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

// TimeProvider интерфейс для получения текущего времени (для тестирования)
type TimeProvider interface {
	Now() time.Time
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// RealTimeProvider реальный провайдер времени для production
type RealTimeProvider struct{}

// Now возвращает текущее время
func (p *RealTimeProvider) Now() time.Time {
	return time.Now()
}
