package settings

import (
	"context"

	"github.com/avkuzmin/ACP-AppointmentService/internal/domain"
)

// SettingsRepository интерфейс репозитория системных настроек
type SettingsRepository interface {
	Get(ctx context.Context) (*domain.SystemSettings, error)
	Upsert(ctx context.Context, s *domain.SystemSettings) (*domain.SystemSettings, error)
}

// AuditLogger интерфейс журнала аудита
type AuditLogger interface {
	Log(ctx context.Context, userID int64, action string, entityType string, entityID int64, details string) error
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
