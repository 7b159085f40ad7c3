package cancel_appointment

// Request модель запроса на отмену записи
type Request struct {
	AppointmentID      int64  // ID отменяемой записи
	UserID             int64  // ID инициатора отмены
	IsAdmin            bool   // Администратор отменяет без ограничений по сроку
	CancellationReason string // Причина отмены
}
