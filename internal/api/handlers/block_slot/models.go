package block_slot

// BlockSlotRequest HTTP request model для блокировки даты или окна
type BlockSlotRequest struct {
	BlockedDate string  `json:"blockedDate"` // "2025-10-15"
	BlockType   string  `json:"blockType"`   // full_day | time_slot
	StartTime   *string `json:"startTime,omitempty"`
	EndTime     *string `json:"endTime,omitempty"`
	Reason      string  `json:"reason"`
}

// BlockPeriodRequest HTTP request model для блокировки периода дат
type BlockPeriodRequest struct {
	StartDate string `json:"startDate"` // "2025-10-15"
	EndDate   string `json:"endDate"`
	Reason    string `json:"reason"`
}
