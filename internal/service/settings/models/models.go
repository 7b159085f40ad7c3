package models

import (
	"time"

	"github.com/avkuzmin/ACP-AppointmentService/internal/domain"
)

// UpdateSettingsRequest запрос на обновление системных настроек.
// Передаются все поля целиком, частичное обновление не поддерживается.
type UpdateSettingsRequest struct {
	UserID                     int64  `json:"userId"`
	WorkingHoursStart          string `json:"workingHoursStart"` // "08:00:00"
	WorkingHoursEnd            string `json:"workingHoursEnd"`
	AppointmentDurationMinutes int    `json:"appointmentDurationMinutes"`
	MonthlyLimitPerUser        int    `json:"monthlyLimitPerUser"`
	CancellationBlockingHours  int    `json:"cancellationBlockingHours"`
	MinCancellationLeadTimeHrs int    `json:"minCancellationLeadTimeHours"`
	MaxAdvancedBookingDays     int    `json:"maxAdvanceBookingDays"`
	BlockingTimeAfterHours     string `json:"blockingTimeAfterHours"` // "19:00:00"
}

// SettingsResponse ответ с системными настройками
type SettingsResponse struct {
	WorkingHoursStart          string     `json:"workingHoursStart"`
	WorkingHoursEnd            string     `json:"workingHoursEnd"`
	AppointmentDurationMinutes int        `json:"appointmentDurationMinutes"`
	MonthlyLimitPerUser        int        `json:"monthlyLimitPerUser"`
	CancellationBlockingHours  int        `json:"cancellationBlockingHours"`
	MinCancellationLeadTimeHrs int        `json:"minCancellationLeadTimeHours"`
	MaxAdvancedBookingDays     int        `json:"maxAdvanceBookingDays"`
	BlockingTimeAfterHours     string     `json:"blockingTimeAfterHours"`
	UpdatedAt                  *time.Time `json:"updatedAt,omitempty"`
}

// FromDomainSettings конвертирует domain модель в response
func FromDomainSettings(s *domain.SystemSettings) *SettingsResponse {
	resp := &SettingsResponse{
		WorkingHoursStart:          s.WorkingHoursStart.String(),
		WorkingHoursEnd:            s.WorkingHoursEnd.String(),
		AppointmentDurationMinutes: s.AppointmentDurationMinutes,
		MonthlyLimitPerUser:        s.MonthlyLimitPerUser,
		CancellationBlockingHours:  s.CancellationBlockingHours,
		MinCancellationLeadTimeHrs: s.MinCancellationLeadTimeHrs,
		MaxAdvancedBookingDays:     s.MaxAdvancedBookingDays,
		BlockingTimeAfterHours:     s.BlockingTimeAfterHours.String(),
	}

	if !s.UpdatedAt.IsZero() {
		updatedAt := s.UpdatedAt
		resp.UpdatedAt = &updatedAt
	}

	return resp
}
