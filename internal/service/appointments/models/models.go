package models

import (
	"errors"
	"time"

	"github.com/avkuzmin/ACP-AppointmentService/internal/domain"
	"github.com/avkuzmin/ACP-AppointmentService/pkg/ptr"
)

var (
	// ErrInvalidStatus возвращается при некорректном статусе
	ErrInvalidStatus = errors.New("invalid appointment status")
)

// Request модели

// GetUserAppointmentsRequest запрос на получение записей пользователя
type GetUserAppointmentsRequest struct {
	UserID int64   `json:"userId"`
	Status *string `json:"status,omitempty"`
}

// UpdateStatusRequest запрос на обновление статуса записи
type UpdateStatusRequest struct {
	UserID int64  `json:"userId"`
	Status string `json:"status"`
}

// Response модели

// AppointmentResponse ответ с данными записи на приём
type AppointmentResponse struct {
	ID              int64   `json:"id"`
	UserID          int64   `json:"userId"`
	AppointmentDate string  `json:"appointmentDate"` // "2025-10-15"
	StartTime       string  `json:"startTime"`       // "09:30:00"
	EndTime         string  `json:"endTime"`
	Reason          string  `json:"reason"`
	Notes           *string `json:"notes,omitempty"`
	Status          string  `json:"status"`

	CancellationReason *string `json:"cancellationReason,omitempty"`
	CancelledAt        *string `json:"cancelledAt,omitempty"` // ISO 8601 format

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// AppointmentListResponse ответ со списком записей
type AppointmentListResponse struct {
	Appointments []AppointmentResponse `json:"appointments"`
	Total        int                   `json:"total"`
}

// FromDomainAppointment конвертирует domain модель в response
func FromDomainAppointment(appt *domain.Appointment) *AppointmentResponse {
	resp := &AppointmentResponse{
		ID:                 appt.ID,
		UserID:             appt.UserID,
		AppointmentDate:    appt.AppointmentDate.Format(domain.DateFormat),
		StartTime:          appt.StartTime.String(),
		EndTime:            appt.EndTime.String(),
		Reason:             appt.Reason,
		Notes:              appt.Notes,
		Status:             string(appt.Status),
		CancellationReason: appt.CancellationReason,
		CreatedAt:          appt.CreatedAt,
		UpdatedAt:          appt.UpdatedAt,
	}

	if appt.CancelledAt != nil {
		resp.CancelledAt = ptr.Ptr(appt.CancelledAt.Format(time.RFC3339))
	}

	return resp
}

// FromDomainAppointmentList конвертирует список domain моделей в response
func FromDomainAppointmentList(appointments []*domain.Appointment) *AppointmentListResponse {
	result := make([]AppointmentResponse, 0, len(appointments))
	for _, appt := range appointments {
		result = append(result, *FromDomainAppointment(appt))
	}
	return &AppointmentListResponse{
		Appointments: result,
		Total:        len(result),
	}
}

// ToDomainAppointmentStatus конвертирует строку в domain статус
func ToDomainAppointmentStatus(status string) (domain.AppointmentStatus, error) {
	switch domain.AppointmentStatus(status) {
	case domain.StatusPending:
		return domain.StatusPending, nil
	case domain.StatusConfirmed:
		return domain.StatusConfirmed, nil
	case domain.StatusCompleted:
		return domain.StatusCompleted, nil
	case domain.StatusCancelled:
		return domain.StatusCancelled, nil
	case domain.StatusNoShow:
		return domain.StatusNoShow, nil
	default:
		return "", ErrInvalidStatus
	}
}
