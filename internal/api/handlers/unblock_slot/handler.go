package unblock_slot

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/avkuzmin/ACP-AppointmentService/internal/api/handlers"
	"github.com/avkuzmin/ACP-AppointmentService/internal/api/middleware"
	blockedslotsService "github.com/avkuzmin/ACP-AppointmentService/internal/service/blockedslots"
)

const (
	msgInvalidBlockID = "некорректный ID блокировки"
	msgUnauthorized   = "пользователь не аутентифицирован"
	msgBlockNotFound  = "блокировка не найдена"
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

// Handle DELETE /api/v1/admin/blocked-slots/{blockId}
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		handlers.RespondError(w, http.StatusUnauthorized, msgUnauthorized)
		return
	}

	blockID, err := strconv.ParseInt(mux.Vars(r)["blockId"], 10, 64)
	if err != nil || blockID <= 0 {
		handlers.RespondBadRequest(w, msgInvalidBlockID)
		return
	}

	if err := h.service.Delete(r.Context(), blockID, userID); err != nil {
		if errors.Is(err, blockedslotsService.ErrBlockNotFound) {
			h.logger.Warn("DELETE /admin/blocked-slots/{id} - Not found: block_id=%d", blockID)
			handlers.RespondNotFound(w, msgBlockNotFound)
			return
		}
		h.logger.Error("DELETE /admin/blocked-slots/{id} - Failed: block_id=%d, error=%v", blockID, err)
		handlers.RespondInternalError(w)
		return
	}

	h.logger.Info("DELETE /admin/blocked-slots/{id} - Removed: block_id=%d by admin=%d", blockID, userID)
	handlers.RespondJSON(w, http.StatusNoContent, nil)
}
