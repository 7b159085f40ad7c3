package domain

import "github.com/avkuzmin/ACP-AppointmentService/pkg/types"

// ValidationCode машиночитаемый код отказа валидации.
// Закрытое перечисление: обработчики отображают коды в пользовательские сообщения.
type ValidationCode string

const (
	CodePastDate                  ValidationCode = "PAST_DATE"
	CodeWeekend                   ValidationCode = "WEEKEND"
	CodeOutsideWorkingHours       ValidationCode = "OUTSIDE_WORKING_HOURS"
	CodeAfterHoursNextDay         ValidationCode = "AFTER_HOURS_NEXT_DAY"
	CodeAlreadyAttendedThisMonth  ValidationCode = "ALREADY_ATTENDED_THIS_MONTH"
	CodeMonthlyLimitExceeded      ValidationCode = "MONTHLY_LIMIT_EXCEEDED"
	CodeCancellationBlock         ValidationCode = "CANCELLATION_BLOCK"
	CodeSlotNotAvailable          ValidationCode = "SLOT_NOT_AVAILABLE"
	CodeNotFound                  ValidationCode = "NOT_FOUND"
	CodeCancellationLeadTime      ValidationCode = "CANCELLATION_LEAD_TIME_EXCEEDED"
)

// ValidationError структурированный отказ одной из проверок.
// Не является ошибкой инфраструктуры: те передаются обычным error.
type ValidationError struct {
	Code    ValidationCode
	Message string
}

// ValidationResult итог полной валидации запроса на запись.
// При успехе содержит список доступных слотов на дату (для обновления UI).
type ValidationResult struct {
	Valid          bool
	Code           ValidationCode
	Message        string
	AvailableSlots []types.TimeString
}

// DayAvailability доступность слотов на конкретную дату
type DayAvailability struct {
	Slots            []types.TimeString
	IsFullDayBlocked bool
	BlockReason      *string
}
