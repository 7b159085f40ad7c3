package domain

// Default system settings values
const (
	DefaultWorkingHoursStart            = "08:00:00"
	DefaultWorkingHoursEnd              = "12:00:00"
	DefaultAppointmentDurationMinutes   = 30
	DefaultMonthlyLimitPerUser          = 2
	DefaultCancellationBlockingHours    = 2
	DefaultMinCancellationLeadTimeHours = 12
	DefaultMaxAdvancedBookingDays       = 30
	DefaultBlockingTimeAfterHours       = "19:00:00"
)

// Business validation constants
const (
	MinAppointmentDurationMinutes = 5
	MaxAppointmentDurationMinutes = 240
	MinMonthlyLimitPerUser        = 1
	MaxMonthlyLimitPerUser        = 31
	MaxReasonLength               = 500
	MaxNotesLength                = 500
	MaxCancellationReasonLength   = 500
	MaxBlockPeriodDays            = 90 // Максимальная длина периода блокировки
)

// Time format constants
const (
	DateFormat = "2006-01-02" // YYYY-MM-DD
)
