package create_appointment

import (
	"context"
	"errors"
	"fmt"

	"github.com/avkuzmin/ACP-AppointmentService/internal/domain"
	appointmentRepo "github.com/avkuzmin/ACP-AppointmentService/internal/infra/storage/appointment"
	"github.com/avkuzmin/ACP-AppointmentService/internal/infra/storage/audit"
)

// Шаблон письма-подтверждения записи
const emailTemplateCreated = "appointment_created"

// UseCase use case для создания записи на приём
type UseCase struct {
	appointmentRepo AppointmentRepository
	validator       AppointmentValidator
	ledgerRepo      LedgerRepository
	emailQueue      EmailQueue
	auditLog        AuditLogger
	txManager       TransactionManager
	logger          Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	appointmentRepo AppointmentRepository,
	validator AppointmentValidator,
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
		logger:          logger,
	}
}

// Execute выполняет use case создания записи на приём.
// Конвейер валидации, вставка записи, инкремент квоты и постановка письма
// в очередь выполняются в одной сериализуемой транзакции: при гонке за слот
// вторая транзакция либо повторится, либо упрётся в уникальный индекс.
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("CreateAppointment: user=%d, date=%s, time=%s",
		req.UserID, req.Date.Format(domain.DateFormat), req.StartTime)

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("CreateAppointment: validation failed: %v", err)
		return nil, err
	}

	var result *domain.Appointment

	// 2. Выполняем операции с БД в сериализуемой транзакции
	err := uc.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		// 2.1. Конвейер проверок; подтверждённые записи дня блокируются FOR UPDATE
		validation, err := uc.validator.ValidateAppointment(txCtx, req.UserID, req.Date, req.StartTime)
		if err != nil {
			uc.logger.Error("CreateAppointment: validation pipeline error: %v", err)
			return fmt.Errorf("%w: validation pipeline: %v", ErrInternal, err)
		}

		if !validation.Valid {
			uc.logger.Warn("CreateAppointment: rejected user=%d with code=%s", req.UserID, validation.Code)
			return &ValidationFailedError{Result: validation}
		}

		// 2.2. Вычисляем время окончания приёма
		settings, err := uc.validator.GetSettings(txCtx)
		if err != nil {
			return fmt.Errorf("%w: get settings: %v", ErrInternal, err)
		}

		endTime, err := uc.validator.CalculateEndTime(req.StartTime, settings)
		if err != nil {
			uc.logger.Warn("CreateAppointment: failed to calculate end time for %s: %v", req.StartTime, err)
			return fmt.Errorf("%w: invalid start time", ErrInvalidInput)
		}

		// 2.3. Создаем запись
		appt := &domain.Appointment{
			UserID:          req.UserID,
			AppointmentDate: req.Date,
			StartTime:       req.StartTime,
			EndTime:         endTime,
			Reason:          req.Reason,
			Notes:           req.Notes,
			Status:          domain.StatusConfirmed,
		}

		created, err := uc.appointmentRepo.Create(txCtx, appt)
		if err != nil {
			// Уникальный индекс - последний рубеж против двойного бронирования
			if errors.Is(err, appointmentRepo.ErrSlotTaken) {
				uc.logger.Warn("CreateAppointment: slot %s on %s lost to concurrent booking",
					req.StartTime, req.Date.Format(domain.DateFormat))
				return &ValidationFailedError{Result: &domain.ValidationResult{
					Code:    domain.CodeSlotNotAvailable,
					Message: "selected time slot is not available",
				}}
			}
			uc.logger.Error("CreateAppointment: failed to create appointment: %v", err)
			return fmt.Errorf("%w: failed to create appointment: %v", ErrInternal, err)
		}

		// 2.4. Увеличиваем счётчик квоты в том же месяце
		if err := uc.ledgerRepo.Increment(txCtx, req.UserID); err != nil {
			uc.logger.Error("CreateAppointment: failed to increment quota for user=%d: %v", req.UserID, err)
			return fmt.Errorf("%w: failed to increment quota: %v", ErrInternal, err)
		}

		// 2.5. Ставим письмо-подтверждение в очередь в той же транзакции
		payload := map[string]interface{}{
			"appointmentId": created.ID,
			"date":          created.AppointmentDate.Format(domain.DateFormat),
			"startTime":     created.StartTime.String(),
		}
		if err := uc.emailQueue.Enqueue(txCtx, req.UserID, emailTemplateCreated, payload); err != nil {
			uc.logger.Error("CreateAppointment: failed to enqueue email for user=%d: %v", req.UserID, err)
			return fmt.Errorf("%w: failed to enqueue email: %v", ErrInternal, err)
		}

		result = created
		return nil
	})

	if err != nil {
		return nil, err
	}

	// 3. Аудит best-effort, вне транзакции
	details := fmt.Sprintf("date %s, time %s", result.AppointmentDate.Format(domain.DateFormat), result.StartTime)
	if err := uc.auditLog.Log(ctx, req.UserID, audit.ActionAppointmentCreated, "appointment", result.ID, details); err != nil {
		uc.logger.Error("CreateAppointment: failed to write audit log for appointment id=%d: %v", result.ID, err)
	}

	uc.logger.Info("CreateAppointment: successfully created appointment id=%d", result.ID)

	return &Response{
		ID:              result.ID,
		UserID:          result.UserID,
		AppointmentDate: result.AppointmentDate,
		StartTime:       result.StartTime,
		EndTime:         result.EndTime,
		Reason:          result.Reason,
		Notes:           result.Notes,
		Status:          string(result.Status),
		CreatedAt:       result.CreatedAt,
		UpdatedAt:       result.UpdatedAt,
	}, nil
}
