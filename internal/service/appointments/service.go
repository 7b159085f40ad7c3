package appointments

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/avkuzmin/ACP-AppointmentService/internal/domain"
	appointmentRepo "github.com/avkuzmin/ACP-AppointmentService/internal/infra/storage/appointment"
	"github.com/avkuzmin/ACP-AppointmentService/internal/infra/storage/audit"
	"github.com/avkuzmin/ACP-AppointmentService/internal/service/appointments/models"
)

// Service сервис для чтения и администрирования записей на приём.
// Создание и отмена записей проходят через сценарии верхнего уровня,
// так как требуют транзакций и валидации.
type Service struct {
	appointmentRepo AppointmentRepository
	auditLog        AuditLogger
	logger          Logger
}

// NewService создает новый экземпляр сервиса записей
func NewService(
	appointmentRepo AppointmentRepository,
	auditLog AuditLogger,
	logger Logger,
) *Service {
	return &Service{
		appointmentRepo: appointmentRepo,
		auditLog:        auditLog,
		logger:          logger,
	}
}

// GetByID получает запись по ID
// Пользователь видит только свою запись, администратор - любую
func (s *Service) GetByID(ctx context.Context, id int64, userID int64, isAdmin bool) (*models.AppointmentResponse, error) {
	s.logger.Info("GetByID: fetching appointment id=%d for user=%d", id, userID)

	appt, err := s.appointmentRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, appointmentRepo.ErrAppointmentNotFound) {
			s.logger.Warn("GetByID: appointment id=%d not found", id)
			return nil, ErrAppointmentNotFound
		}
		s.logger.Error("GetByID: repository error for appointment id=%d: %v", id, err)
		return nil, fmt.Errorf("%w: GetByID - repository error: %v", ErrInternal, err)
	}

	if appt.UserID != userID && !isAdmin {
		s.logger.Warn("GetByID: access denied for user=%d to appointment id=%d", userID, id)
		return nil, ErrAccessDenied
	}

	return models.FromDomainAppointment(appt), nil
}

// GetUserAppointments получает историю записей пользователя
// Опционально фильтрует по статусу
func (s *Service) GetUserAppointments(ctx context.Context, req *models.GetUserAppointmentsRequest) (*models.AppointmentListResponse, error) {
	s.logger.Info("GetUserAppointments: fetching appointments for user=%d, status=%v", req.UserID, req.Status)

	var domainStatus *domain.AppointmentStatus
	if req.Status != nil {
		status, err := models.ToDomainAppointmentStatus(*req.Status)
		if err != nil {
			s.logger.Warn("GetUserAppointments: invalid status=%s for user=%d", *req.Status, req.UserID)
			return nil, fmt.Errorf("%w: invalid status", ErrInvalidInput)
		}
		domainStatus = &status
	}

	appointments, err := s.appointmentRepo.GetByUserID(ctx, req.UserID, domainStatus)
	if err != nil {
		s.logger.Error("GetUserAppointments: repository error for user=%d: %v", req.UserID, err)
		return nil, fmt.Errorf("%w: GetUserAppointments - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("GetUserAppointments: fetched %d appointments for user=%d", len(appointments), req.UserID)
	return models.FromDomainAppointmentList(appointments), nil
}

// GetByDate получает все записи на дату (расписание дня для администратора)
func (s *Service) GetByDate(ctx context.Context, date time.Time) (*models.AppointmentListResponse, error) {
	s.logger.Info("GetByDate: fetching appointments for date=%s", date.Format(domain.DateFormat))

	appointments, err := s.appointmentRepo.GetByDate(ctx, date)
	if err != nil {
		s.logger.Error("GetByDate: repository error for date=%s: %v", date.Format(domain.DateFormat), err)
		return nil, fmt.Errorf("%w: GetByDate - repository error: %v", ErrInternal, err)
	}

	return models.FromDomainAppointmentList(appointments), nil
}

// UpdateStatus обновляет статус записи (подтверждение, завершение, неявка)
// Доступно только администраторам
func (s *Service) UpdateStatus(ctx context.Context, id int64, req *models.UpdateStatusRequest) error {
	s.logger.Info("UpdateStatus: updating appointment id=%d to status=%s by user=%d", id, req.Status, req.UserID)

	newStatus, err := models.ToDomainAppointmentStatus(req.Status)
	if err != nil {
		s.logger.Warn("UpdateStatus: invalid status=%s for appointment id=%d", req.Status, id)
		return fmt.Errorf("%w: invalid status", ErrInvalidInput)
	}

	appt, err := s.appointmentRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, appointmentRepo.ErrAppointmentNotFound) {
			s.logger.Warn("UpdateStatus: appointment id=%d not found", id)
			return ErrAppointmentNotFound
		}
		s.logger.Error("UpdateStatus: repository error for appointment id=%d: %v", id, err)
		return fmt.Errorf("%w: UpdateStatus - repository error: %v", ErrInternal, err)
	}

	// Завершённые записи не меняют статус
	if appt.IsFinished() {
		s.logger.Warn("UpdateStatus: appointment id=%d is already finished, status=%s", id, appt.Status)
		return ErrInvalidStatus
	}

	if err := s.appointmentRepo.UpdateStatus(ctx, id, newStatus); err != nil {
		if errors.Is(err, appointmentRepo.ErrAppointmentNotFound) {
			return ErrAppointmentNotFound
		}
		s.logger.Error("UpdateStatus: repository error for appointment id=%d: %v", id, err)
		return fmt.Errorf("%w: UpdateStatus - repository error: %v", ErrInternal, err)
	}

	// Аудит best-effort: сбой журнала не откатывает смену статуса
	details := fmt.Sprintf("status changed from %s to %s", appt.Status, newStatus)
	if err := s.auditLog.Log(ctx, req.UserID, audit.ActionStatusUpdated, "appointment", id, details); err != nil {
		s.logger.Error("UpdateStatus: failed to write audit log for appointment id=%d: %v", id, err)
	}

	s.logger.Info("UpdateStatus: appointment id=%d updated to status=%s", id, newStatus)
	return nil
}
