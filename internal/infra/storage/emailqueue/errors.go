package emailqueue

import "errors"

var (
	// ErrEmailNotFound возвращается, когда письмо не найдено в очереди
	ErrEmailNotFound = errors.New("emailqueue.repository: email not found")

	// ErrBuildQuery возвращается при ошибке построения SQL запроса
	ErrBuildQuery = errors.New("emailqueue.repository: failed to build query")

	// ErrExecQuery возвращается при ошибке выполнения SQL запроса
	ErrExecQuery = errors.New("emailqueue.repository: failed to execute query")

	// ErrScanRow возвращается при ошибке сканирования результата запроса
	ErrScanRow = errors.New("emailqueue.repository: failed to scan row")

	// ErrEncodePayload возвращается при ошибке сериализации данных письма
	ErrEncodePayload = errors.New("emailqueue.repository: failed to encode payload")
)
