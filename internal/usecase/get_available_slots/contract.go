package get_available_slots

import (
	"context"
	"time"

	"github.com/avkuzmin/ACP-AppointmentService/internal/domain"
)

// SlotProvider интерфейс расчёта доступных слотов
type SlotProvider interface {
	GetAvailableSlots(ctx context.Context, date time.Time) (*domain.DayAvailability, error)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
