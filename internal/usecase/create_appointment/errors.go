package create_appointment

import (
	"errors"
	"fmt"

	"github.com/avkuzmin/ACP-AppointmentService/internal/domain"
)

var (
	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("create_appointment: invalid input data")

	// ErrValidationFailed возвращается, когда запрос не прошёл конвейер валидации
	ErrValidationFailed = errors.New("create_appointment: validation failed")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("create_appointment: internal error")
)

// ValidationFailedError несёт результат отказавшей проверки.
// Обработчики извлекают его через errors.As, чтобы вернуть клиенту
// код отказа и список свободных слотов.
type ValidationFailedError struct {
	Result *domain.ValidationResult
}

func (e *ValidationFailedError) Error() string {
	return fmt.Sprintf("create_appointment: validation failed with code %s", e.Result.Code)
}

func (e *ValidationFailedError) Unwrap() error {
	return ErrValidationFailed
}
