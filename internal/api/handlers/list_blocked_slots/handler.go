package list_blocked_slots

import (
	"errors"
	"net/http"

	"github.com/avkuzmin/ACP-AppointmentService/internal/api/handlers"
	blockedslotsService "github.com/avkuzmin/ACP-AppointmentService/internal/service/blockedslots"
	"github.com/avkuzmin/ACP-AppointmentService/internal/service/blockedslots/models"
)

const (
	msgMissingPeriod = "параметры startDate и endDate обязательны"
	msgInvalidPeriod = "некорректный период, ожидается YYYY-MM-DD"
)

type Handler struct {
	service BlockedSlotsService
	logger  Logger
}

func NewHandler(service BlockedSlotsService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle GET /api/v1/admin/blocked-slots?startDate=2025-10-01&endDate=2025-10-31
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	startDate := r.URL.Query().Get("startDate")
	endDate := r.URL.Query().Get("endDate")
	if startDate == "" || endDate == "" {
		handlers.RespondBadRequest(w, msgMissingPeriod)
		return
	}

	result, err := h.service.List(r.Context(), &models.ListBlocksRequest{
		StartDate: startDate,
		EndDate:   endDate,
	})
	if err != nil {
		if errors.Is(err, blockedslotsService.ErrInvalidInput) || errors.Is(err, blockedslotsService.ErrInvalidTimeRange) {
			h.logger.Warn("GET /admin/blocked-slots - Invalid period: %s - %s", startDate, endDate)
			handlers.RespondBadRequest(w, msgInvalidPeriod)
			return
		}
		h.logger.Error("GET /admin/blocked-slots - Failed: %v", err)
		handlers.RespondInternalError(w)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}
