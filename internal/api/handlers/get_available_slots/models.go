package get_available_slots

import (
	"github.com/avkuzmin/ACP-AppointmentService/internal/domain"
	getAvailableSlots "github.com/avkuzmin/ACP-AppointmentService/internal/usecase/get_available_slots"
)

// AvailableSlotsResponse HTTP response model
type AvailableSlotsResponse struct {
	Date             string   `json:"date"`
	Slots            []string `json:"slots"`
	IsFullDayBlocked bool     `json:"isFullDayBlocked"`
	BlockReason      *string  `json:"blockReason,omitempty"`
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *getAvailableSlots.Response) *AvailableSlotsResponse {
	return &AvailableSlotsResponse{
		Date:             resp.Date.Format(domain.DateFormat),
		Slots:            resp.Slots,
		IsFullDayBlocked: resp.IsFullDayBlocked,
		BlockReason:      resp.BlockReason,
	}
}
