package validation

import (
	"context"
	"time"

	"github.com/avkuzmin/ACP-AppointmentService/internal/domain"
)

// AppointmentRepository интерфейс репозитория записей на приём
type AppointmentRepository interface {
	GetConfirmedByDate(ctx context.Context, date time.Time) ([]*domain.Appointment, error)
	GetByUserAndPeriod(ctx context.Context, userID int64, from, to time.Time) ([]*domain.Appointment, error)
}

// BlockedSlotRepository интерфейс репозитория блокировок слотов
type BlockedSlotRepository interface {
	GetByDate(ctx context.Context, date time.Time) ([]*domain.BlockedSlot, error)
}

// SettingsRepository интерфейс репозитория системных настроек
type SettingsRepository interface {
	Get(ctx context.Context) (*domain.SystemSettings, error)
}

// LedgerRepository интерфейс репозитория квот пользователей
type LedgerRepository interface {
	GetOrCreate(ctx context.Context, userID int64, month string, monthlyLimit int) (*domain.QuotaLedger, error)
}

// TimeProvider источник текущего времени (для тестируемости проверок)
type TimeProvider interface {
	Now() time.Time
}

// Logger интерфейс для логирования
type Logger interface {
	Debug(format string, v ...interface{})
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
