package get_day_schedule

import (
	"context"
	"time"

	"github.com/avkuzmin/ACP-AppointmentService/internal/service/appointments/models"
)

type AppointmentsService interface {
	GetByDate(ctx context.Context, date time.Time) (*models.AppointmentListResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
