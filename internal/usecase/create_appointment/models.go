package create_appointment

import (
	"time"

	"github.com/avkuzmin/ACP-AppointmentService/pkg/types"
)

// Request модель запроса на создание записи на приём
type Request struct {
	UserID    int64            // ID пользователя
	Date      time.Time        // Дата приёма (без времени)
	StartTime types.TimeString // Время начала слота (например, "09:30")
	Reason    string           // Причина обращения
	Notes     *string          // Дополнительные заметки (опционально)
}

// Response модель ответа с созданной записью
type Response struct {
	ID              int64            // ID созданной записи
	UserID          int64            // ID пользователя
	AppointmentDate time.Time        // Дата приёма
	StartTime       types.TimeString // Время начала
	EndTime         types.TimeString // Время окончания
	Reason          string           // Причина обращения
	Notes           *string          // Заметки
	Status          string           // Статус записи

	CreatedAt time.Time // Время создания
	UpdatedAt time.Time // Время обновления
}
