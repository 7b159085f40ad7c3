package block_slot

import (
	"errors"
	"net/http"

	"github.com/avkuzmin/ACP-AppointmentService/internal/api/handlers"
	"github.com/avkuzmin/ACP-AppointmentService/internal/api/middleware"
	blockedslotsService "github.com/avkuzmin/ACP-AppointmentService/internal/service/blockedslots"
	"github.com/avkuzmin/ACP-AppointmentService/internal/service/blockedslots/models"
)

const (
	msgInvalidRequestBody = "некорректное тело запроса"
	msgUnauthorized       = "пользователь не аутентифицирован"
	msgInvalidInput       = "некорректные данные блокировки"
	msgInvalidTimeRange   = "некорректный временной диапазон"
	msgPeriodTooLong      = "период блокировки слишком длинный"
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

// Handle POST /api/v1/admin/blocked-slots
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		handlers.RespondError(w, http.StatusUnauthorized, msgUnauthorized)
		return
	}

	var req BlockSlotRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /admin/blocked-slots - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	result, err := h.service.Create(r.Context(), &models.CreateBlockRequest{
		UserID:      userID,
		BlockedDate: req.BlockedDate,
		BlockType:   req.BlockType,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		Reason:      req.Reason,
	})
	if err != nil {
		h.respondServiceError(w, "POST /admin/blocked-slots", err)
		return
	}

	h.logger.Info("POST /admin/blocked-slots - Created block id=%d by admin=%d", result.ID, userID)
	handlers.RespondJSON(w, http.StatusCreated, result)
}

// HandlePeriod POST /api/v1/admin/blocked-slots/period
func (h *Handler) HandlePeriod(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		handlers.RespondError(w, http.StatusUnauthorized, msgUnauthorized)
		return
	}

	var req BlockPeriodRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /admin/blocked-slots/period - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	result, err := h.service.CreatePeriod(r.Context(), &models.CreatePeriodRequest{
		UserID:    userID,
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
		Reason:    req.Reason,
	})
	if err != nil {
		h.respondServiceError(w, "POST /admin/blocked-slots/period", err)
		return
	}

	h.logger.Info("POST /admin/blocked-slots/period - Created %d blocks by admin=%d", result.Total, userID)
	handlers.RespondJSON(w, http.StatusCreated, result)
}

func (h *Handler) respondServiceError(w http.ResponseWriter, route string, err error) {
	switch {
	case errors.Is(err, blockedslotsService.ErrInvalidTimeRange):
		h.logger.Warn("%s - Invalid time range: %v", route, err)
		handlers.RespondBadRequest(w, msgInvalidTimeRange)

	case errors.Is(err, blockedslotsService.ErrPeriodTooLong):
		h.logger.Warn("%s - Period too long: %v", route, err)
		handlers.RespondBadRequest(w, msgPeriodTooLong)

	case errors.Is(err, blockedslotsService.ErrInvalidInput):
		h.logger.Warn("%s - Invalid input: %v", route, err)
		handlers.RespondBadRequest(w, msgInvalidInput)

	default:
		h.logger.Error("%s - Failed: %v", route, err)
		handlers.RespondInternalError(w)
	}
}
