package models

import (
	"time"

	"github.com/avkuzmin/ACP-AppointmentService/internal/domain"
)

// Request модели

// CreateBlockRequest запрос на блокировку даты или временного окна
type CreateBlockRequest struct {
	UserID      int64   `json:"userId"`
	BlockedDate string  `json:"blockedDate"`         // "2025-10-15"
	BlockType   string  `json:"blockType"`           // full_day | time_slot
	StartTime   *string `json:"startTime,omitempty"` // Только для time_slot
	EndTime     *string `json:"endTime,omitempty"`   // Только для time_slot
	Reason      string  `json:"reason"`
}

// CreatePeriodRequest запрос на блокировку периода дат целиком
type CreatePeriodRequest struct {
	UserID    int64  `json:"userId"`
	StartDate string `json:"startDate"` // "2025-10-15"
	EndDate   string `json:"endDate"`
	Reason    string `json:"reason"`
}

// ListBlocksRequest запрос на получение блокировок за период
type ListBlocksRequest struct {
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
}

// Response модели

// BlockResponse ответ с данными блокировки
type BlockResponse struct {
	ID          int64     `json:"id"`
	BlockedDate string    `json:"blockedDate"`
	BlockType   string    `json:"blockType"`
	StartTime   *string   `json:"startTime,omitempty"`
	EndTime     *string   `json:"endTime,omitempty"`
	Reason      string    `json:"reason"`
	CreatedBy   int64     `json:"createdBy"`
	CreatedAt   time.Time `json:"createdAt"`
}

// BlockListResponse ответ со списком блокировок
type BlockListResponse struct {
	Blocks []BlockResponse `json:"blocks"`
	Total  int             `json:"total"`
}

// FromDomainBlock конвертирует domain модель в response
func FromDomainBlock(block *domain.BlockedSlot) *BlockResponse {
	resp := &BlockResponse{
		ID:          block.ID,
		BlockedDate: block.BlockedDate.Format(domain.DateFormat),
		BlockType:   string(block.BlockType),
		Reason:      block.Reason,
		CreatedBy:   block.CreatedBy,
		CreatedAt:   block.CreatedAt,
	}

	if !block.IsFullDay() {
		start := block.StartTime.String()
		end := block.EndTime.String()
		resp.StartTime = &start
		resp.EndTime = &end
	}

	return resp
}

// FromDomainBlockList конвертирует список domain моделей в response
func FromDomainBlockList(blocks []*domain.BlockedSlot) *BlockListResponse {
	result := make([]BlockResponse, 0, len(blocks))
	for _, block := range blocks {
		result = append(result, *FromDomainBlock(block))
	}
	return &BlockListResponse{
		Blocks: result,
		Total:  len(result),
	}
}
