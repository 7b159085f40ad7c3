package create_appointment

import (
	"errors"
	"net/http"

	"github.com/avkuzmin/ACP-AppointmentService/internal/api/handlers"
	"github.com/avkuzmin/ACP-AppointmentService/internal/api/middleware"
	createAppointment "github.com/avkuzmin/ACP-AppointmentService/internal/usecase/create_appointment"
)

const (
	msgInvalidRequestBody = "некорректное тело запроса"
	msgInvalidDateOrTime  = "некорректный формат даты или времени, ожидается YYYY-MM-DD и HH:MM"
	msgUnauthorized       = "пользователь не аутентифицирован"
	msgInvalidInput       = "некорректные данные запроса"
)

type Handler struct {
	useCase CreateAppointmentUseCase
	logger  Logger
}

func NewHandler(useCase CreateAppointmentUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /api/v1/appointments
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		handlers.RespondError(w, http.StatusUnauthorized, msgUnauthorized)
		return
	}

	var req CreateAppointmentRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /appointments - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	useCaseReq, err := req.ToUseCaseRequest(userID)
	if err != nil {
		h.logger.Warn("POST /appointments - Failed to parse request: %v", err)
		handlers.RespondBadRequest(w, msgInvalidDateOrTime)
		return
	}

	result, err := h.useCase.Execute(r.Context(), useCaseReq)
	if err != nil {
		// Отказ конвейера валидации несёт машиночитаемый код и свободные слоты
		var verr *createAppointment.ValidationFailedError
		if errors.As(err, &verr) {
			h.logger.Warn("POST /appointments - Validation failed: user_id=%d, code=%s", userID, verr.Result.Code)
			handlers.RespondJSON(w, http.StatusConflict, FromValidationResult(verr.Result))
			return
		}

		if errors.Is(err, createAppointment.ErrInvalidInput) {
			h.logger.Warn("POST /appointments - Invalid input: user_id=%d, error=%v", userID, err)
			handlers.RespondBadRequest(w, msgInvalidInput)
			return
		}

		h.logger.Error("POST /appointments - Failed to create appointment: user_id=%d, error=%v", userID, err)
		handlers.RespondInternalError(w)
		return
	}

	h.logger.Info("POST /appointments - Appointment created: appointment_id=%d, user_id=%d", result.ID, userID)
	handlers.RespondJSON(w, http.StatusCreated, FromUseCaseResponse(result))
}
