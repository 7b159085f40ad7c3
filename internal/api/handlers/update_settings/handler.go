package update_settings

import (
	"errors"
	"net/http"

	"github.com/avkuzmin/ACP-AppointmentService/internal/api/handlers"
	"github.com/avkuzmin/ACP-AppointmentService/internal/api/middleware"
	settingsService "github.com/avkuzmin/ACP-AppointmentService/internal/service/settings"
	"github.com/avkuzmin/ACP-AppointmentService/internal/service/settings/models"
)

const (
	msgInvalidRequestBody  = "некорректное тело запроса"
	msgUnauthorized        = "пользователь не аутентифицирован"
	msgInvalidSettings     = "некорректные значения настроек"
	msgInvalidWorkingHours = "некорректные рабочие часы"
)

type Handler struct {
	service SettingsService
	logger  Logger
}

func NewHandler(service SettingsService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle PUT /api/v1/admin/settings
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		handlers.RespondError(w, http.StatusUnauthorized, msgUnauthorized)
		return
	}

	var req UpdateSettingsRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("PUT /admin/settings - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	result, err := h.service.Update(r.Context(), &models.UpdateSettingsRequest{
		UserID:                     userID,
		WorkingHoursStart:          req.WorkingHoursStart,
		WorkingHoursEnd:            req.WorkingHoursEnd,
		AppointmentDurationMinutes: req.AppointmentDurationMinutes,
		MonthlyLimitPerUser:        req.MonthlyLimitPerUser,
		CancellationBlockingHours:  req.CancellationBlockingHours,
		MinCancellationLeadTimeHrs: req.MinCancellationLeadTimeHrs,
		MaxAdvancedBookingDays:     req.MaxAdvancedBookingDays,
		BlockingTimeAfterHours:     req.BlockingTimeAfterHours,
	})
	if err != nil {
		switch {
		case errors.Is(err, settingsService.ErrInvalidWorkingHours):
			h.logger.Warn("PUT /admin/settings - Invalid working hours: %v", err)
			handlers.RespondBadRequest(w, msgInvalidWorkingHours)

		case errors.Is(err, settingsService.ErrInvalidInput):
			h.logger.Warn("PUT /admin/settings - Invalid settings: %v", err)
			handlers.RespondBadRequest(w, msgInvalidSettings)

		default:
			h.logger.Error("PUT /admin/settings - Failed: %v", err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("PUT /admin/settings - Updated by admin=%d", userID)
	handlers.RespondJSON(w, http.StatusOK, result)
}
