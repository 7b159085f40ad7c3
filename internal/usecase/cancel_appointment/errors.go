package cancel_appointment

import "errors"

var (
	// ErrAppointmentNotFound возвращается, когда запись не найдена
	ErrAppointmentNotFound = errors.New("cancel_appointment: appointment not found")

	// ErrAccessDenied возвращается, когда пользователь отменяет чужую запись
	ErrAccessDenied = errors.New("cancel_appointment: access denied")

	// ErrCannotCancel возвращается, когда запись уже в конечном статусе
	ErrCannotCancel = errors.New("cancel_appointment: appointment cannot be cancelled")

	// ErrTooLateToCancel возвращается, когда до приёма осталось меньше
	// минимального срока самостоятельной отмены
	ErrTooLateToCancel = errors.New("cancel_appointment: too late to cancel this appointment")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("cancel_appointment: invalid input data")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("cancel_appointment: internal error")
)
