package domain

import (
	"time"

	"github.com/avkuzmin/ACP-AppointmentService/pkg/types"
)

// AppointmentStatus represents the status of an appointment
type AppointmentStatus string

const (
	StatusPending   AppointmentStatus = "pending"
	StatusConfirmed AppointmentStatus = "confirmed"
	StatusCompleted AppointmentStatus = "completed"
	StatusCancelled AppointmentStatus = "cancelled"
	StatusNoShow    AppointmentStatus = "no_show"
)

// Appointment represents a member appointment in the system
type Appointment struct {
	ID              int64
	UserID          int64
	AppointmentDate time.Time // Только дата, время хранится отдельно в StartTime
	StartTime       types.TimeString
	EndTime         types.TimeString // Вычисляется: StartTime + длительность из настроек
	Reason          string
	Notes           *string
	Status          AppointmentStatus

	CancellationReason *string
	CancelledAt        *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsConfirmed returns true if the appointment holds a slot
func (a *Appointment) IsConfirmed() bool {
	return a.Status == StatusConfirmed
}

// CanBeCancelled returns true if the appointment can be cancelled
func (a *Appointment) CanBeCancelled() bool {
	return a.Status == StatusPending || a.Status == StatusConfirmed
}

// IsFinished returns true if the appointment reached a terminal state
func (a *Appointment) IsFinished() bool {
	return a.Status == StatusCompleted || a.Status == StatusNoShow || a.Status == StatusCancelled
}

// StartsAt возвращает полный момент начала приёма (дата + время)
func (a *Appointment) StartsAt() time.Time {
	return a.StartTime.OnDate(a.AppointmentDate)
}
