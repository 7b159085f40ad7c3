package list_blocked_slots

import (
	"context"

	"github.com/avkuzmin/ACP-AppointmentService/internal/service/blockedslots/models"
)

type BlockedSlotsService interface {
	List(ctx context.Context, req *models.ListBlocksRequest) (*models.BlockListResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
