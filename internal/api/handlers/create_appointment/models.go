package create_appointment

import (
	"time"

	"github.com/avkuzmin/ACP-AppointmentService/internal/domain"
	createAppointment "github.com/avkuzmin/ACP-AppointmentService/internal/usecase/create_appointment"
	"github.com/avkuzmin/ACP-AppointmentService/pkg/types"
)

// CreateAppointmentRequest HTTP request model
type CreateAppointmentRequest struct {
	AppointmentDate string  `json:"appointmentDate"` // "2025-10-15"
	StartTime       string  `json:"startTime"`       // "09:30"
	Reason          string  `json:"reason"`
	Notes           *string `json:"notes,omitempty"`
}

// AppointmentResponse HTTP response model
type AppointmentResponse struct {
	ID              int64   `json:"id"`
	UserID          int64   `json:"userId"`
	AppointmentDate string  `json:"appointmentDate"`
	StartTime       string  `json:"startTime"`
	EndTime         string  `json:"endTime"`
	Reason          string  `json:"reason"`
	Notes           *string `json:"notes,omitempty"`
	Status          string  `json:"status"`
	CreatedAt       string  `json:"createdAt"`
	UpdatedAt       string  `json:"updatedAt"`
}

// ValidationFailedResponse ответ при отказе конвейера валидации
type ValidationFailedResponse struct {
	Code           string   `json:"code"`
	Message        string   `json:"message"`
	AvailableSlots []string `json:"availableSlots,omitempty"`
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case
func (r *CreateAppointmentRequest) ToUseCaseRequest(userID int64) (*createAppointment.Request, error) {
	date, err := time.Parse(domain.DateFormat, r.AppointmentDate)
	if err != nil {
		return nil, err
	}

	startTime, err := types.NewTimeStringFromString(r.StartTime)
	if err != nil {
		return nil, err
	}

	return &createAppointment.Request{
		UserID:    userID,
		Date:      date,
		StartTime: startTime,
		Reason:    r.Reason,
		Notes:     r.Notes,
	}, nil
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *createAppointment.Response) *AppointmentResponse {
	return &AppointmentResponse{
		ID:              resp.ID,
		UserID:          resp.UserID,
		AppointmentDate: resp.AppointmentDate.Format(domain.DateFormat),
		StartTime:       resp.StartTime.String(),
		EndTime:         resp.EndTime.String(),
		Reason:          resp.Reason,
		Notes:           resp.Notes,
		Status:          resp.Status,
		CreatedAt:       resp.CreatedAt.Format(time.RFC3339),
		UpdatedAt:       resp.UpdatedAt.Format(time.RFC3339),
	}
}

// FromValidationResult конвертирует результат отказавшей проверки в HTTP response
func FromValidationResult(result *domain.ValidationResult) *ValidationFailedResponse {
	slots := make([]string, 0, len(result.AvailableSlots))
	for _, slot := range result.AvailableSlots {
		slots = append(slots, slot.String())
	}

	return &ValidationFailedResponse{
		Code:           string(result.Code),
		Message:        result.Message,
		AvailableSlots: slots,
	}
}
