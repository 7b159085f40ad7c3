package blockedslots

import (
	"context"
	"time"

	"github.com/avkuzmin/ACP-AppointmentService/internal/domain"
)

// BlockedSlotRepository интерфейс репозитория блокировок слотов
type BlockedSlotRepository interface {
	Create(ctx context.Context, block *domain.BlockedSlot) (*domain.BlockedSlot, error)
	CreatePeriod(ctx context.Context, from, to time.Time, reason string, createdBy int64) ([]*domain.BlockedSlot, error)
	GetByDate(ctx context.Context, date time.Time) ([]*domain.BlockedSlot, error)
	GetByRange(ctx context.Context, from, to time.Time) ([]*domain.BlockedSlot, error)
	Delete(ctx context.Context, id int64) error
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
