package settings

import (
	"context"
	"errors"
	"fmt"

	"github.com/avkuzmin/ACP-AppointmentService/internal/domain"
	"github.com/avkuzmin/ACP-AppointmentService/internal/infra/storage/audit"
	settingsRepo "github.com/avkuzmin/ACP-AppointmentService/internal/infra/storage/settings"
	"github.com/avkuzmin/ACP-AppointmentService/internal/service/settings/models"
	"github.com/avkuzmin/ACP-AppointmentService/pkg/types"
)

// Service сервис системных настроек
type Service struct {
	settingsRepo SettingsRepository
	auditLog     AuditLogger
	logger       Logger
}

// NewService создает новый экземпляр сервиса настроек
func NewService(
	settingsRepo SettingsRepository,
	auditLog AuditLogger,
	logger Logger,
) *Service {
	return &Service{
		settingsRepo: settingsRepo,
		auditLog:     auditLog,
		logger:       logger,
	}
}

// Get возвращает действующие настройки.
// До первого административного обновления действуют значения по умолчанию.
func (s *Service) Get(ctx context.Context) (*models.SettingsResponse, error) {
	settings, err := s.settingsRepo.Get(ctx)
	if err != nil {
		if errors.Is(err, settingsRepo.ErrSettingsNotFound) {
			return models.FromDomainSettings(domain.DefaultSettings()), nil
		}
		s.logger.Error("Get: repository error: %v", err)
		return nil, fmt.Errorf("%w: Get - repository error: %v", ErrInternal, err)
	}

	return models.FromDomainSettings(settings), nil
}

// Update обновляет системные настройки
// Доступно только администраторам
func (s *Service) Update(ctx context.Context, req *models.UpdateSettingsRequest) (*models.SettingsResponse, error) {
	s.logger.Info("Update: updating settings by user=%d", req.UserID)

	settings, err := s.toDomainSettings(req)
	if err != nil {
		s.logger.Warn("Update: validation failed: %v", err)
		return nil, err
	}

	updated, err := s.settingsRepo.Upsert(ctx, settings)
	if err != nil {
		s.logger.Error("Update: repository error: %v", err)
		return nil, fmt.Errorf("%w: Update - repository error: %v", ErrInternal, err)
	}

	details := fmt.Sprintf("working hours %s-%s, duration %d min, monthly limit %d",
		updated.WorkingHoursStart, updated.WorkingHoursEnd,
		updated.AppointmentDurationMinutes, updated.MonthlyLimitPerUser)
	if err := s.auditLog.Log(ctx, req.UserID, audit.ActionSettingsUpdated, "system_settings", updated.ID, details); err != nil {
		s.logger.Error("Update: failed to write audit log: %v", err)
	}

	s.logger.Info("Update: settings updated by user=%d", req.UserID)
	return models.FromDomainSettings(updated), nil
}

// toDomainSettings валидирует запрос и собирает domain модель настроек
func (s *Service) toDomainSettings(req *models.UpdateSettingsRequest) (*domain.SystemSettings, error) {
	workStart, err := types.NewTimeStringFromString(req.WorkingHoursStart)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid working hours start", ErrInvalidInput)
	}
	workEnd, err := types.NewTimeStringFromString(req.WorkingHoursEnd)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid working hours end", ErrInvalidInput)
	}
	cutoff, err := types.NewTimeStringFromString(req.BlockingTimeAfterHours)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid blocking time", ErrInvalidInput)
	}

	if !workStart.IsBefore(workEnd) {
		return nil, ErrInvalidWorkingHours
	}

	if req.AppointmentDurationMinutes < domain.MinAppointmentDurationMinutes ||
		req.AppointmentDurationMinutes > domain.MaxAppointmentDurationMinutes {
		return nil, fmt.Errorf("%w: appointment duration must be between %d and %d minutes",
			ErrInvalidInput, domain.MinAppointmentDurationMinutes, domain.MaxAppointmentDurationMinutes)
	}

	if req.MonthlyLimitPerUser < domain.MinMonthlyLimitPerUser ||
		req.MonthlyLimitPerUser > domain.MaxMonthlyLimitPerUser {
		return nil, fmt.Errorf("%w: monthly limit must be between %d and %d",
			ErrInvalidInput, domain.MinMonthlyLimitPerUser, domain.MaxMonthlyLimitPerUser)
	}

	if req.CancellationBlockingHours < 0 {
		return nil, fmt.Errorf("%w: cancellation blocking hours must not be negative", ErrInvalidInput)
	}
	if req.MinCancellationLeadTimeHrs < 0 {
		return nil, fmt.Errorf("%w: cancellation lead time must not be negative", ErrInvalidInput)
	}
	if req.MaxAdvancedBookingDays <= 0 {
		return nil, fmt.Errorf("%w: advance booking days must be positive", ErrInvalidInput)
	}

	return &domain.SystemSettings{
		WorkingHoursStart:          workStart,
		WorkingHoursEnd:            workEnd,
		AppointmentDurationMinutes: req.AppointmentDurationMinutes,
		MonthlyLimitPerUser:        req.MonthlyLimitPerUser,
		CancellationBlockingHours:  req.CancellationBlockingHours,
		MinCancellationLeadTimeHrs: req.MinCancellationLeadTimeHrs,
		MaxAdvancedBookingDays:     req.MaxAdvancedBookingDays,
		BlockingTimeAfterHours:     cutoff,
	}, nil
}
