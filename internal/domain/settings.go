package domain

import (
	"time"

	"github.com/avkuzmin/ACP-AppointmentService/pkg/types"
)

// SystemSettings конфигурируемые бизнес-параметры системы записи.
// Единственная запись, обновляется только через административный интерфейс.
type SystemSettings struct {
	ID                         int64
	WorkingHoursStart          types.TimeString
	WorkingHoursEnd            types.TimeString
	AppointmentDurationMinutes int
	MonthlyLimitPerUser        int
	CancellationBlockingHours  int              // Блокировка новой записи после отмены (часы)
	MinCancellationLeadTimeHrs int              // Минимальный срок до приёма для самостоятельной отмены (часы)
	MaxAdvancedBookingDays     int              // Горизонт записи вперёд (дни)
	BlockingTimeAfterHours     types.TimeString // Время, после которого запись на завтра запрещена
	UpdatedAt                  time.Time
}

// DefaultSettings возвращает настройки по умолчанию.
// Используются, когда административная запись настроек ещё не создана.
func DefaultSettings() *SystemSettings {
	workStart, _ := types.NewTimeStringFromString(DefaultWorkingHoursStart)
	workEnd, _ := types.NewTimeStringFromString(DefaultWorkingHoursEnd)
	cutoff, _ := types.NewTimeStringFromString(DefaultBlockingTimeAfterHours)

	return &SystemSettings{
		WorkingHoursStart:          workStart,
		WorkingHoursEnd:            workEnd,
		AppointmentDurationMinutes: DefaultAppointmentDurationMinutes,
		MonthlyLimitPerUser:        DefaultMonthlyLimitPerUser,
		CancellationBlockingHours:  DefaultCancellationBlockingHours,
		MinCancellationLeadTimeHrs: DefaultMinCancellationLeadTimeHours,
		MaxAdvancedBookingDays:     DefaultMaxAdvancedBookingDays,
		BlockingTimeAfterHours:     cutoff,
	}
}
