package block_slot

import (
	"context"

	"github.com/avkuzmin/ACP-AppointmentService/internal/service/blockedslots/models"
)

type BlockedSlotsService interface {
	Create(ctx context.Context, req *models.CreateBlockRequest) (*models.BlockResponse, error)
	CreatePeriod(ctx context.Context, req *models.CreatePeriodRequest) (*models.BlockListResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
