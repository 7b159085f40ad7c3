package get_available_slots

import (
	"context"
	"fmt"

	"github.com/avkuzmin/ACP-AppointmentService/internal/domain"
)

// UseCase use case для получения доступных слотов на дату
type UseCase struct {
	slotProvider SlotProvider
	logger       Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(slotProvider SlotProvider, logger Logger) *UseCase {
	return &UseCase{
		slotProvider: slotProvider,
		logger:       logger,
	}
}

// Execute возвращает свободные слоты на дату
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	if req.Date.IsZero() {
		return nil, fmt.Errorf("%w: date is required", ErrInvalidInput)
	}

	uc.logger.Info("GetAvailableSlots: date=%s", req.Date.Format(domain.DateFormat))

	availability, err := uc.slotProvider.GetAvailableSlots(ctx, req.Date)
	if err != nil {
		uc.logger.Error("GetAvailableSlots: failed for date=%s: %v", req.Date.Format(domain.DateFormat), err)
		return nil, fmt.Errorf("%w: %v", ErrInternal, err)
	}

	slots := make([]string, 0, len(availability.Slots))
	for _, slot := range availability.Slots {
		slots = append(slots, slot.String())
	}

	uc.logger.Info("GetAvailableSlots: date=%s has %d free slots", req.Date.Format(domain.DateFormat), len(slots))

	return &Response{
		Date:             req.Date,
		Slots:            slots,
		IsFullDayBlocked: availability.IsFullDayBlocked,
		BlockReason:      availability.BlockReason,
	}, nil
}
