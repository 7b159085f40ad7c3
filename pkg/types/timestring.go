package types

import (
	"database/sql/driver"
	"fmt"
	"time"
)

// SecondsPerDay количество секунд в сутках
const SecondsPerDay = 24 * 60 * 60

// TimeString тип для представления времени суток с точностью до секунды.
// Хранит время как количество секунд с начала суток, сериализуется в формат "HH:MM:SS".
// Замена лексикографического сравнения строк "HH:MM:SS" на явный value type
// с определёнными операциями сравнения и сложения.
type TimeString struct {
	seconds int
	set     bool
}

// NewTimeString создает TimeString из времени time.Time (берёт только время суток)
func NewTimeString(t time.Time) TimeString {
	return TimeString{
		seconds: t.Hour()*3600 + t.Minute()*60 + t.Second(),
		set:     true,
	}
}

// NewTimeStringFromString парсит строку формата "HH:MM:SS" или "HH:MM"
func NewTimeStringFromString(s string) (TimeString, error) {
	var hour, min, sec int

	switch len(s) {
	case 8: // "HH:MM:SS"
		if _, err := fmt.Sscanf(s, "%02d:%02d:%02d", &hour, &min, &sec); err != nil {
			return TimeString{}, fmt.Errorf("invalid time string format: %q", s)
		}
	case 5: // "HH:MM"
		if _, err := fmt.Sscanf(s, "%02d:%02d", &hour, &min); err != nil {
			return TimeString{}, fmt.Errorf("invalid time string format: %q", s)
		}
	default:
		return TimeString{}, fmt.Errorf("invalid time string format: %q", s)
	}

	if hour < 0 || hour > 23 || min < 0 || min > 59 || sec < 0 || sec > 59 {
		return TimeString{}, fmt.Errorf("time string out of range: %q", s)
	}

	return TimeString{seconds: hour*3600 + min*60 + sec, set: true}, nil
}

// String возвращает время в формате "HH:MM:SS"
func (t TimeString) String() string {
	return fmt.Sprintf("%02d:%02d:%02d", t.seconds/3600, (t.seconds%3600)/60, t.seconds%60)
}

// IsZero возвращает true, если время не было установлено
func (t TimeString) IsZero() bool {
	return !t.set
}

// Validate проверяет, что время установлено и находится в допустимом диапазоне
func (t TimeString) Validate() error {
	if !t.set {
		return fmt.Errorf("time is not set")
	}
	if t.seconds < 0 || t.seconds >= SecondsPerDay {
		return fmt.Errorf("time out of range: %d seconds", t.seconds)
	}
	return nil
}

// IsBefore возвращает true, если t строго раньше other
func (t TimeString) IsBefore(other TimeString) bool {
	return t.seconds < other.seconds
}

// IsAfter возвращает true, если t строго позже other
func (t TimeString) IsAfter(other TimeString) bool {
	return t.seconds > other.seconds
}

// Equal возвращает true, если времена совпадают с точностью до секунды
func (t TimeString) Equal(other TimeString) bool {
	return t.set == other.set && t.seconds == other.seconds
}

// AddMinutes возвращает время через minutes минут.
// Переход через полночь не определён для рабочего дня и возвращает ошибку.
func (t TimeString) AddMinutes(minutes int) (TimeString, error) {
	if !t.set {
		return TimeString{}, fmt.Errorf("time is not set")
	}
	if minutes < 0 {
		return TimeString{}, fmt.Errorf("negative minutes: %d", minutes)
	}

	result := t.seconds + minutes*60
	if result >= SecondsPerDay {
		return TimeString{}, fmt.Errorf("time overflows past midnight")
	}

	return TimeString{seconds: result, set: true}, nil
}

// OnDate совмещает время суток с календарной датой
func (t TimeString) OnDate(date time.Time) time.Time {
	return time.Date(
		date.Year(), date.Month(), date.Day(),
		t.seconds/3600, (t.seconds%3600)/60, t.seconds%60, 0,
		date.Location(),
	)
}

// Value реализует driver.Valuer для записи в БД
func (t TimeString) Value() (driver.Value, error) {
	if !t.set {
		return nil, nil
	}
	return t.String(), nil
}

// Scan реализует sql.Scanner для чтения из БД.
// Поддерживает строковое представление колонки TIME и time.Time.
func (t *TimeString) Scan(src interface{}) error {
	if src == nil {
		*t = TimeString{}
		return nil
	}

	switch v := src.(type) {
	case []byte:
		parsed, err := NewTimeStringFromString(string(v))
		if err != nil {
			return err
		}
		*t = parsed
		return nil
	case string:
		parsed, err := NewTimeStringFromString(v)
		if err != nil {
			return err
		}
		*t = parsed
		return nil
	case time.Time:
		*t = NewTimeString(v)
		return nil
	default:
		return fmt.Errorf("cannot scan %T into TimeString", src)
	}
}
