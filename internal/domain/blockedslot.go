package domain

import (
	"time"

	"github.com/avkuzmin/ACP-AppointmentService/pkg/types"
)

// BlockType тип блокировки слотов
type BlockType string

const (
	// BlockFullDay блокировка всего рабочего дня
	BlockFullDay BlockType = "full_day"

	// BlockTimeSlot блокировка конкретного временного окна [StartTime, EndTime)
	BlockTimeSlot BlockType = "time_slot"
)

// BlockedSlot represents an administrator-defined exclusion of a date
// or a sub-window of a date from booking
type BlockedSlot struct {
	ID          int64
	BlockedDate time.Time
	BlockType   BlockType
	StartTime   types.TimeString // Только для BlockTimeSlot
	EndTime     types.TimeString // Только для BlockTimeSlot
	Reason      string
	CreatedBy   int64
	CreatedAt   time.Time
}

// IsFullDay returns true if the block excludes the entire day
func (b *BlockedSlot) IsFullDay() bool {
	return b.BlockType == BlockFullDay
}

// Covers returns true if the block excludes the given slot start time.
// Окно блокировки полуоткрытое: slot >= StartTime AND slot < EndTime.
func (b *BlockedSlot) Covers(slot types.TimeString) bool {
	if b.BlockType == BlockFullDay {
		return true
	}
	return !slot.IsBefore(b.StartTime) && slot.IsBefore(b.EndTime)
}
