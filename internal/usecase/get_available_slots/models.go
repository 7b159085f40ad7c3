package get_available_slots

import "time"

// Request модель запроса доступных слотов
type Request struct {
	Date time.Time // Дата, на которую запрашиваются слоты
}

// Response модель ответа со слотами на дату
type Response struct {
	Date             time.Time // Запрошенная дата
	Slots            []string  // Свободные слоты ("09:30:00")
	IsFullDayBlocked bool      // Весь день закрыт администратором
	BlockReason      *string   // Причина блокировки дня
}
