package blockedslots

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avkuzmin/ACP-AppointmentService/internal/domain"
	blockedslotRepo "github.com/avkuzmin/ACP-AppointmentService/internal/infra/storage/blockedslot"
	"github.com/avkuzmin/ACP-AppointmentService/internal/service/blockedslots/models"
)

type nopLogger struct{}

func (nopLogger) Info(format string, v ...interface{})  {}
func (nopLogger) Warn(format string, v ...interface{})  {}
func (nopLogger) Error(format string, v ...interface{}) {}

type fakeBlockedSlotRepo struct {
	blocks []*domain.BlockedSlot
	nextID int64
}

func (f *fakeBlockedSlotRepo) Create(_ context.Context, block *domain.BlockedSlot) (*domain.BlockedSlot, error) {
	f.nextID++
	block.ID = f.nextID
	f.blocks = append(f.blocks, block)
	return block, nil
}

func (f *fakeBlockedSlotRepo) CreatePeriod(ctx context.Context, from, to time.Time, reason string, createdBy int64) ([]*domain.BlockedSlot, error) {
	var created []*domain.BlockedSlot
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		block, _ := f.Create(ctx, &domain.BlockedSlot{
			BlockedDate: d,
			BlockType:   domain.BlockFullDay,
			Reason:      reason,
			CreatedBy:   createdBy,
		})
		created = append(created, block)
	}
	return created, nil
}

func (f *fakeBlockedSlotRepo) GetByDate(_ context.Context, date time.Time) ([]*domain.BlockedSlot, error) {
	var result []*domain.BlockedSlot
	for _, block := range f.blocks {
		if block.BlockedDate.Equal(date) {
			result = append(result, block)
		}
	}
	return result, nil
}

func (f *fakeBlockedSlotRepo) GetByRange(_ context.Context, from, to time.Time) ([]*domain.BlockedSlot, error) {
	var result []*domain.BlockedSlot
	for _, block := range f.blocks {
		if !block.BlockedDate.Before(from) && !block.BlockedDate.After(to) {
			result = append(result, block)
		}
	}
	return result, nil
}

func (f *fakeBlockedSlotRepo) Delete(_ context.Context, id int64) error {
	for i, block := range f.blocks {
		if block.ID == id {
			f.blocks = append(f.blocks[:i], f.blocks[i+1:]...)
			return nil
		}
	}
	return blockedslotRepo.ErrBlockedSlotNotFound
}

type fakeAuditLog struct {
	entries []string
}

func (f *fakeAuditLog) Log(_ context.Context, _ int64, action string, _ string, _ int64, _ string) error {
	f.entries = append(f.entries, action)
	return nil
}

func strPtr(s string) *string {
	return &s
}

func TestService_Create(t *testing.T) {
	t.Run("full day block", func(t *testing.T) {
		repo := &fakeBlockedSlotRepo{}
		auditLog := &fakeAuditLog{}
		svc := NewService(repo, auditLog, nopLogger{})

		resp, err := svc.Create(context.Background(), &models.CreateBlockRequest{
			UserID:      1,
			BlockedDate: "2025-07-01",
			BlockType:   "full_day",
			Reason:      "санитарный день",
		})
		require.NoError(t, err)
		assert.Equal(t, "full_day", resp.BlockType)
		assert.Nil(t, resp.StartTime)
		assert.Len(t, auditLog.entries, 1)
	})

	t.Run("time slot block", func(t *testing.T) {
		repo := &fakeBlockedSlotRepo{}
		svc := NewService(repo, &fakeAuditLog{}, nopLogger{})

		resp, err := svc.Create(context.Background(), &models.CreateBlockRequest{
			UserID:      1,
			BlockedDate: "2025-07-01",
			BlockType:   "time_slot",
			StartTime:   strPtr("10:00"),
			EndTime:     strPtr("11:00"),
			Reason:      "совещание",
		})
		require.NoError(t, err)
		require.NotNil(t, resp.StartTime)
		assert.Equal(t, "10:00:00", *resp.StartTime)
		assert.Equal(t, "11:00:00", *resp.EndTime)
	})

	t.Run("time slot without window rejected", func(t *testing.T) {
		svc := NewService(&fakeBlockedSlotRepo{}, &fakeAuditLog{}, nopLogger{})

		_, err := svc.Create(context.Background(), &models.CreateBlockRequest{
			UserID:      1,
			BlockedDate: "2025-07-01",
			BlockType:   "time_slot",
			Reason:      "совещание",
		})
		assert.ErrorIs(t, err, ErrInvalidInput)
	})

	t.Run("inverted window rejected", func(t *testing.T) {
		svc := NewService(&fakeBlockedSlotRepo{}, &fakeAuditLog{}, nopLogger{})

		_, err := svc.Create(context.Background(), &models.CreateBlockRequest{
			UserID:      1,
			BlockedDate: "2025-07-01",
			BlockType:   "time_slot",
			StartTime:   strPtr("11:00"),
			EndTime:     strPtr("10:00"),
			Reason:      "совещание",
		})
		assert.ErrorIs(t, err, ErrInvalidTimeRange)
	})

	t.Run("oversized reason rejected", func(t *testing.T) {
		svc := NewService(&fakeBlockedSlotRepo{}, &fakeAuditLog{}, nopLogger{})

		_, err := svc.Create(context.Background(), &models.CreateBlockRequest{
			UserID:      1,
			BlockedDate: "2025-07-01",
			BlockType:   "full_day",
			Reason:      strings.Repeat("x", domain.MaxReasonLength+1),
		})
		assert.ErrorIs(t, err, ErrInvalidInput)
	})
}

func TestService_CreatePeriod(t *testing.T) {
	t.Run("blocks every day of the period", func(t *testing.T) {
		repo := &fakeBlockedSlotRepo{}
		auditLog := &fakeAuditLog{}
		svc := NewService(repo, auditLog, nopLogger{})

		resp, err := svc.CreatePeriod(context.Background(), &models.CreatePeriodRequest{
			UserID:    1,
			StartDate: "2025-07-01",
			EndDate:   "2025-07-03",
			Reason:    "отпуск",
		})
		require.NoError(t, err)
		assert.Equal(t, 3, resp.Total)
		assert.Len(t, auditLog.entries, 3)
	})

	t.Run("end before start rejected", func(t *testing.T) {
		svc := NewService(&fakeBlockedSlotRepo{}, &fakeAuditLog{}, nopLogger{})

		_, err := svc.CreatePeriod(context.Background(), &models.CreatePeriodRequest{
			UserID:    1,
			StartDate: "2025-07-03",
			EndDate:   "2025-07-01",
			Reason:    "отпуск",
		})
		assert.ErrorIs(t, err, ErrInvalidTimeRange)
	})

	t.Run("period over limit rejected", func(t *testing.T) {
		svc := NewService(&fakeBlockedSlotRepo{}, &fakeAuditLog{}, nopLogger{})

		_, err := svc.CreatePeriod(context.Background(), &models.CreatePeriodRequest{
			UserID:    1,
			StartDate: "2025-01-01",
			EndDate:   "2025-06-01",
			Reason:    "отпуск",
		})
		assert.ErrorIs(t, err, ErrPeriodTooLong)
	})
}

func TestService_ListAndDelete(t *testing.T) {
	repo := &fakeBlockedSlotRepo{}
	svc := NewService(repo, &fakeAuditLog{}, nopLogger{})

	_, err := svc.CreatePeriod(context.Background(), &models.CreatePeriodRequest{
		UserID:    1,
		StartDate: "2025-07-01",
		EndDate:   "2025-07-05",
		Reason:    "отпуск",
	})
	require.NoError(t, err)

	t.Run("list filters by range", func(t *testing.T) {
		resp, err := svc.List(context.Background(), &models.ListBlocksRequest{
			StartDate: "2025-07-02",
			EndDate:   "2025-07-03",
		})
		require.NoError(t, err)
		assert.Equal(t, 2, resp.Total)
	})

	t.Run("delete removes the block", func(t *testing.T) {
		require.NoError(t, svc.Delete(context.Background(), 1, 1))

		resp, err := svc.List(context.Background(), &models.ListBlocksRequest{
			StartDate: "2025-07-01",
			EndDate:   "2025-07-05",
		})
		require.NoError(t, err)
		assert.Equal(t, 4, resp.Total)
	})

	t.Run("delete missing block", func(t *testing.T) {
		err := svc.Delete(context.Background(), 999, 1)
		assert.ErrorIs(t, err, ErrBlockNotFound)
	})
}
