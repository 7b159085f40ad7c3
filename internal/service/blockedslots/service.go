package blockedslots

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/avkuzmin/ACP-AppointmentService/internal/domain"
	"github.com/avkuzmin/ACP-AppointmentService/internal/infra/storage/audit"
	blockedslotRepo "github.com/avkuzmin/ACP-AppointmentService/internal/infra/storage/blockedslot"
	"github.com/avkuzmin/ACP-AppointmentService/internal/service/blockedslots/models"
	"github.com/avkuzmin/ACP-AppointmentService/pkg/types"
)

// Service сервис управления блокировками слотов.
// Все операции доступны только администраторам, проверка роли
// выполняется на уровне обработчиков.
type Service struct {
	blockedSlotRepo BlockedSlotRepository
	auditLog        AuditLogger
	logger          Logger
}

// NewService создает новый экземпляр сервиса блокировок
func NewService(
	blockedSlotRepo BlockedSlotRepository,
	auditLog AuditLogger,
	logger Logger,
) *Service {
	return &Service{
		blockedSlotRepo: blockedSlotRepo,
		auditLog:        auditLog,
		logger:          logger,
	}
}

// Create блокирует дату целиком или временное окно внутри даты
func (s *Service) Create(ctx context.Context, req *models.CreateBlockRequest) (*models.BlockResponse, error) {
	s.logger.Info("Create: blocking date=%s type=%s by user=%d", req.BlockedDate, req.BlockType, req.UserID)

	block, err := s.toDomainBlock(req)
	if err != nil {
		s.logger.Warn("Create: validation failed: %v", err)
		return nil, err
	}

	created, err := s.blockedSlotRepo.Create(ctx, block)
	if err != nil {
		s.logger.Error("Create: repository error: %v", err)
		return nil, fmt.Errorf("%w: Create - repository error: %v", ErrInternal, err)
	}

	if err := s.auditLog.Log(ctx, req.UserID, audit.ActionSlotBlocked, "blocked_slot", created.ID, req.Reason); err != nil {
		s.logger.Error("Create: failed to write audit log for block id=%d: %v", created.ID, err)
	}

	s.logger.Info("Create: created block id=%d for date=%s", created.ID, req.BlockedDate)
	return models.FromDomainBlock(created), nil
}

// CreatePeriod блокирует каждый день периода целиком (отпуск, праздники)
func (s *Service) CreatePeriod(ctx context.Context, req *models.CreatePeriodRequest) (*models.BlockListResponse, error) {
	s.logger.Info("CreatePeriod: blocking period %s - %s by user=%d", req.StartDate, req.EndDate, req.UserID)

	from, err := time.Parse(domain.DateFormat, req.StartDate)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid start date", ErrInvalidInput)
	}
	to, err := time.Parse(domain.DateFormat, req.EndDate)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid end date", ErrInvalidInput)
	}

	if to.Before(from) {
		s.logger.Warn("CreatePeriod: end date %s is before start date %s", req.EndDate, req.StartDate)
		return nil, ErrInvalidTimeRange
	}
	if int(to.Sub(from).Hours()/24) > domain.MaxBlockPeriodDays {
		s.logger.Warn("CreatePeriod: period %s - %s exceeds %d days", req.StartDate, req.EndDate, domain.MaxBlockPeriodDays)
		return nil, ErrPeriodTooLong
	}
	if err := validateReason(req.Reason); err != nil {
		return nil, err
	}

	blocks, err := s.blockedSlotRepo.CreatePeriod(ctx, from, to, req.Reason, req.UserID)
	if err != nil {
		s.logger.Error("CreatePeriod: repository error: %v", err)
		return nil, fmt.Errorf("%w: CreatePeriod - repository error: %v", ErrInternal, err)
	}

	for _, block := range blocks {
		if err := s.auditLog.Log(ctx, req.UserID, audit.ActionSlotBlocked, "blocked_slot", block.ID, req.Reason); err != nil {
			s.logger.Error("CreatePeriod: failed to write audit log for block id=%d: %v", block.ID, err)
		}
	}

	s.logger.Info("CreatePeriod: created %d blocks for period %s - %s", len(blocks), req.StartDate, req.EndDate)
	return models.FromDomainBlockList(blocks), nil
}

// List возвращает блокировки за период
func (s *Service) List(ctx context.Context, req *models.ListBlocksRequest) (*models.BlockListResponse, error) {
	from, err := time.Parse(domain.DateFormat, req.StartDate)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid start date", ErrInvalidInput)
	}
	to, err := time.Parse(domain.DateFormat, req.EndDate)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid end date", ErrInvalidInput)
	}
	if to.Before(from) {
		return nil, ErrInvalidTimeRange
	}

	blocks, err := s.blockedSlotRepo.GetByRange(ctx, from, to)
	if err != nil {
		s.logger.Error("List: repository error for period %s - %s: %v", req.StartDate, req.EndDate, err)
		return nil, fmt.Errorf("%w: List - repository error: %v", ErrInternal, err)
	}

	return models.FromDomainBlockList(blocks), nil
}

// Delete снимает блокировку
func (s *Service) Delete(ctx context.Context, id int64, userID int64) error {
	s.logger.Info("Delete: removing block id=%d by user=%d", id, userID)

	if err := s.blockedSlotRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, blockedslotRepo.ErrBlockedSlotNotFound) {
			s.logger.Warn("Delete: block id=%d not found", id)
			return ErrBlockNotFound
		}
		s.logger.Error("Delete: repository error for block id=%d: %v", id, err)
		return fmt.Errorf("%w: Delete - repository error: %v", ErrInternal, err)
	}

	if err := s.auditLog.Log(ctx, userID, audit.ActionSlotUnblocked, "blocked_slot", id, ""); err != nil {
		s.logger.Error("Delete: failed to write audit log for block id=%d: %v", id, err)
	}

	s.logger.Info("Delete: removed block id=%d", id)
	return nil
}

// toDomainBlock валидирует запрос и собирает domain модель блокировки
func (s *Service) toDomainBlock(req *models.CreateBlockRequest) (*domain.BlockedSlot, error) {
	date, err := time.Parse(domain.DateFormat, req.BlockedDate)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid blocked date", ErrInvalidInput)
	}
	if err := validateReason(req.Reason); err != nil {
		return nil, err
	}

	block := &domain.BlockedSlot{
		BlockedDate: date,
		Reason:      req.Reason,
		CreatedBy:   req.UserID,
	}

	switch domain.BlockType(req.BlockType) {
	case domain.BlockFullDay:
		block.BlockType = domain.BlockFullDay

	case domain.BlockTimeSlot:
		if req.StartTime == nil || req.EndTime == nil {
			return nil, fmt.Errorf("%w: time_slot block requires start and end time", ErrInvalidInput)
		}

		startTime, err := types.NewTimeStringFromString(*req.StartTime)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid start time", ErrInvalidInput)
		}
		endTime, err := types.NewTimeStringFromString(*req.EndTime)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid end time", ErrInvalidInput)
		}
		if !startTime.IsBefore(endTime) {
			return nil, ErrInvalidTimeRange
		}

		block.BlockType = domain.BlockTimeSlot
		block.StartTime = startTime
		block.EndTime = endTime

	default:
		return nil, fmt.Errorf("%w: unknown block type %q", ErrInvalidInput, req.BlockType)
	}

	return block, nil
}

func validateReason(reason string) error {
	if reason == "" {
		return fmt.Errorf("%w: reason is required", ErrInvalidInput)
	}
	if len(reason) > domain.MaxReasonLength {
		return fmt.Errorf("%w: reason is too long", ErrInvalidInput)
	}
	return nil
}
