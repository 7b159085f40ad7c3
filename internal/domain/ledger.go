package domain

import "time"

// QuotaLedger учёт месячного потребления приёмов пользователем.
// Одна запись на пользователя. Счётчик сбрасывается лениво при смене месяца.
type QuotaLedger struct {
	ID                 int64
	UserID             int64
	Month              string // Отслеживаемый месяц в формате "YYYY-MM"
	AppointmentCount   int
	LastCancellationAt *time.Time
	MonthlyLimit       int
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// MonthKey возвращает ключ месяца в формате "YYYY-MM" для указанного момента
func MonthKey(t time.Time) string {
	return t.Format("2006-01")
}
