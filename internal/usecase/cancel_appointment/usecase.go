package cancel_appointment

import (
	"context"
	"errors"
	"fmt"

	"github.com/avkuzmin/ACP-AppointmentService/internal/domain"
	appointmentRepo "github.com/avkuzmin/ACP-AppointmentService/internal/infra/storage/appointment"
	"github.com/avkuzmin/ACP-AppointmentService/internal/infra/storage/audit"
)

// Шаблон письма об отмене записи
const emailTemplateCancelled = "appointment_cancelled"

// UseCase use case для отмены записи на приём
type UseCase struct {
	appointmentRepo AppointmentRepository
	validator       CancellationValidator
	ledgerRepo      LedgerRepository
	emailQueue      EmailQueue
	auditLog        AuditLogger
	txManager       TransactionManager
	timeProvider    TimeProvider
	logger          Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	appointmentRepo AppointmentRepository,
	validator CancellationValidator,
	ledgerRepo LedgerRepository,
	emailQueue EmailQueue,
	auditLog AuditLogger,
	txManager TransactionManager,
	logger Logger,
) *UseCase {
	return &UseCase{
		appointmentRepo: appointmentRepo,
		validator:       validator,
		ledgerRepo:      ledgerRepo,
		emailQueue:      emailQueue,
		auditLog:        auditLog,
		txManager:       txManager,
		timeProvider:    &RealTimeProvider{},
		logger:          logger,
	}
}

// Execute выполняет use case отмены записи.
// Пользователь отменяет свою запись с проверкой минимального срока,
// администратор - любую запись без ограничения по сроку.
// Отмена, возврат квоты и отметка времени отмены выполняются в одной транзакции.
func (uc *UseCase) Execute(ctx context.Context, req *Request) error {
	uc.logger.Info("CancelAppointment: appointment=%d by user=%d admin=%t",
		req.AppointmentID, req.UserID, req.IsAdmin)

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("CancelAppointment: validation failed: %v", err)
		return err
	}

	var ownerID int64

	// 2. Выполняем операции с БД в сериализуемой транзакции
	err := uc.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		// 2.1. Получаем запись
		appt, err := uc.appointmentRepo.GetByID(txCtx, req.AppointmentID)
		if err != nil {
			if errors.Is(err, appointmentRepo.ErrAppointmentNotFound) {
				uc.logger.Warn("CancelAppointment: appointment id=%d not found", req.AppointmentID)
				return ErrAppointmentNotFound
			}
			uc.logger.Error("CancelAppointment: repository error for appointment id=%d: %v", req.AppointmentID, err)
			return fmt.Errorf("%w: failed to get appointment: %v", ErrInternal, err)
		}

		// 2.2. Проверяем права: пользователь отменяет только свою запись
		if appt.UserID != req.UserID && !req.IsAdmin {
			uc.logger.Warn("CancelAppointment: access denied for user=%d to appointment id=%d",
				req.UserID, req.AppointmentID)
			return ErrAccessDenied
		}

		// 2.3. Завершённые записи не отменяются
		if !appt.CanBeCancelled() {
			uc.logger.Warn("CancelAppointment: appointment id=%d cannot be cancelled, status=%s",
				req.AppointmentID, appt.Status)
			return ErrCannotCancel
		}

		settings, err := uc.validator.GetSettings(txCtx)
		if err != nil {
			return fmt.Errorf("%w: get settings: %v", ErrInternal, err)
		}

		// 2.4. Для самостоятельной отмены действует минимальный срок до приёма
		if !req.IsAdmin {
			if verr := uc.validator.ValidateCancellationLeadTime(appt, settings); verr != nil {
				uc.logger.Warn("CancelAppointment: appointment id=%d too close to start for user=%d",
					req.AppointmentID, req.UserID)
				return ErrTooLateToCancel
			}
		}

		// 2.5. Отменяем запись
		if err := uc.appointmentRepo.Cancel(txCtx, req.AppointmentID, req.CancellationReason); err != nil {
			if errors.Is(err, appointmentRepo.ErrAppointmentNotFound) {
				return ErrAppointmentNotFound
			}
			uc.logger.Error("CancelAppointment: failed to cancel appointment id=%d: %v", req.AppointmentID, err)
			return fmt.Errorf("%w: failed to cancel appointment: %v", ErrInternal, err)
		}

		now := uc.timeProvider.Now()

		// 2.6. Возвращаем квоту; счётчик не уходит ниже нуля
		if _, err := uc.ledgerRepo.GetOrCreate(txCtx, appt.UserID, domain.MonthKey(now), settings.MonthlyLimitPerUser); err != nil {
			uc.logger.Error("CancelAppointment: failed to ensure ledger for user=%d: %v", appt.UserID, err)
			return fmt.Errorf("%w: failed to ensure ledger: %v", ErrInternal, err)
		}
		if err := uc.ledgerRepo.Decrement(txCtx, appt.UserID); err != nil {
			uc.logger.Error("CancelAppointment: failed to decrement quota for user=%d: %v", appt.UserID, err)
			return fmt.Errorf("%w: failed to decrement quota: %v", ErrInternal, err)
		}

		// 2.7. Самостоятельная отмена включает блокировку повторной записи;
		// административная отмена пользователя не наказывает
		if !req.IsAdmin {
			if err := uc.ledgerRepo.StampCancellation(txCtx, appt.UserID, now); err != nil {
				uc.logger.Error("CancelAppointment: failed to stamp cancellation for user=%d: %v", appt.UserID, err)
				return fmt.Errorf("%w: failed to stamp cancellation: %v", ErrInternal, err)
			}
		}

		// 2.8. Ставим письмо об отмене в очередь
		payload := map[string]interface{}{
			"appointmentId": appt.ID,
			"date":          appt.AppointmentDate.Format(domain.DateFormat),
			"startTime":     appt.StartTime.String(),
			"reason":        req.CancellationReason,
		}
		if err := uc.emailQueue.Enqueue(txCtx, appt.UserID, emailTemplateCancelled, payload); err != nil {
			uc.logger.Error("CancelAppointment: failed to enqueue email for user=%d: %v", appt.UserID, err)
			return fmt.Errorf("%w: failed to enqueue email: %v", ErrInternal, err)
		}

		ownerID = appt.UserID
		return nil
	})

	if err != nil {
		return err
	}

	// 3. Аудит best-effort, вне транзакции
	if err := uc.auditLog.Log(ctx, req.UserID, audit.ActionAppointmentCancelled, "appointment", req.AppointmentID, req.CancellationReason); err != nil {
		uc.logger.Error("CancelAppointment: failed to write audit log for appointment id=%d: %v", req.AppointmentID, err)
	}

	uc.logger.Info("CancelAppointment: successfully cancelled appointment id=%d owner=%d", req.AppointmentID, ownerID)
	return nil
}

// validateRequest валидирует входные данные запроса
func validateRequest(req *Request) error {
	if req.AppointmentID <= 0 {
		return fmt.Errorf("%w: appointmentID must be positive", ErrInvalidInput)
	}

	if req.UserID <= 0 {
		return fmt.Errorf("%w: userID must be positive", ErrInvalidInput)
	}

	if req.CancellationReason == "" {
		return fmt.Errorf("%w: cancellation reason is required", ErrInvalidInput)
	}

	if len(req.CancellationReason) > domain.MaxCancellationReasonLength {
		return fmt.Errorf("%w: cancellation reason exceeds %d characters", ErrInvalidInput, domain.MaxCancellationReasonLength)
	}

	return nil
}
