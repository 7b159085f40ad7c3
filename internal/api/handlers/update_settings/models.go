package update_settings

// UpdateSettingsRequest HTTP request model
type UpdateSettingsRequest struct {
	WorkingHoursStart          string `json:"workingHoursStart"` // "08:00:00"
	WorkingHoursEnd            string `json:"workingHoursEnd"`
	AppointmentDurationMinutes int    `json:"appointmentDurationMinutes"`
	MonthlyLimitPerUser        int    `json:"monthlyLimitPerUser"`
	CancellationBlockingHours  int    `json:"cancellationBlockingHours"`
	MinCancellationLeadTimeHrs int    `json:"minCancellationLeadTimeHours"`
	MaxAdvancedBookingDays     int    `json:"maxAdvanceBookingDays"`
	BlockingTimeAfterHours     string `json:"blockingTimeAfterHours"` // "19:00:00"
}
