package settings

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avkuzmin/ACP-AppointmentService/internal/domain"
	settingsRepo "github.com/avkuzmin/ACP-AppointmentService/internal/infra/storage/settings"
	"github.com/avkuzmin/ACP-AppointmentService/internal/service/settings/models"
)

type nopLogger struct{}

func (nopLogger) Info(format string, v ...interface{})  {}
func (nopLogger) Warn(format string, v ...interface{})  {}
func (nopLogger) Error(format string, v ...interface{}) {}

type fakeSettingsRepo struct {
	settings *domain.SystemSettings
}

func (f *fakeSettingsRepo) Get(_ context.Context) (*domain.SystemSettings, error) {
	if f.settings == nil {
		return nil, settingsRepo.ErrSettingsNotFound
	}
	return f.settings, nil
}

func (f *fakeSettingsRepo) Upsert(_ context.Context, s *domain.SystemSettings) (*domain.SystemSettings, error) {
	s.ID = 1
	f.settings = s
	return s, nil
}

type fakeAuditLog struct {
	entries []string
}

func (f *fakeAuditLog) Log(_ context.Context, _ int64, action string, _ string, _ int64, _ string) error {
	f.entries = append(f.entries, action)
	return nil
}

func validUpdateRequest() *models.UpdateSettingsRequest {
	return &models.UpdateSettingsRequest{
		UserID:                     1,
		WorkingHoursStart:          "09:00",
		WorkingHoursEnd:            "13:00",
		AppointmentDurationMinutes: 20,
		MonthlyLimitPerUser:        3,
		CancellationBlockingHours:  4,
		MinCancellationLeadTimeHrs: 24,
		MaxAdvancedBookingDays:     14,
		BlockingTimeAfterHours:     "18:00",
	}
}

func TestService_Get(t *testing.T) {
	t.Run("defaults before first update", func(t *testing.T) {
		svc := NewService(&fakeSettingsRepo{}, &fakeAuditLog{}, nopLogger{})

		resp, err := svc.Get(context.Background())
		require.NoError(t, err)
		assert.Equal(t, domain.DefaultWorkingHoursStart, resp.WorkingHoursStart)
		assert.Equal(t, domain.DefaultMonthlyLimitPerUser, resp.MonthlyLimitPerUser)
		assert.Nil(t, resp.UpdatedAt)
	})

	t.Run("stored settings after update", func(t *testing.T) {
		repo := &fakeSettingsRepo{}
		svc := NewService(repo, &fakeAuditLog{}, nopLogger{})

		_, err := svc.Update(context.Background(), validUpdateRequest())
		require.NoError(t, err)

		resp, err := svc.Get(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "09:00:00", resp.WorkingHoursStart)
		assert.Equal(t, 3, resp.MonthlyLimitPerUser)
	})
}

func TestService_Update(t *testing.T) {
	t.Run("valid update writes audit entry", func(t *testing.T) {
		auditLog := &fakeAuditLog{}
		svc := NewService(&fakeSettingsRepo{}, auditLog, nopLogger{})

		resp, err := svc.Update(context.Background(), validUpdateRequest())
		require.NoError(t, err)
		assert.Equal(t, "13:00:00", resp.WorkingHoursEnd)
		assert.Len(t, auditLog.entries, 1)
	})

	t.Run("inverted working hours", func(t *testing.T) {
		svc := NewService(&fakeSettingsRepo{}, &fakeAuditLog{}, nopLogger{})

		req := validUpdateRequest()
		req.WorkingHoursStart = "13:00"
		req.WorkingHoursEnd = "09:00"
		_, err := svc.Update(context.Background(), req)
		assert.ErrorIs(t, err, ErrInvalidWorkingHours)
	})

	t.Run("invalid values", func(t *testing.T) {
		tests := []struct {
			name   string
			mutate func(req *models.UpdateSettingsRequest)
		}{
			{"unparseable start time", func(req *models.UpdateSettingsRequest) { req.WorkingHoursStart = "9am" }},
			{"duration too short", func(req *models.UpdateSettingsRequest) { req.AppointmentDurationMinutes = 3 }},
			{"duration too long", func(req *models.UpdateSettingsRequest) { req.AppointmentDurationMinutes = 500 }},
			{"zero monthly limit", func(req *models.UpdateSettingsRequest) { req.MonthlyLimitPerUser = 0 }},
			{"negative blocking hours", func(req *models.UpdateSettingsRequest) { req.CancellationBlockingHours = -1 }},
			{"negative lead time", func(req *models.UpdateSettingsRequest) { req.MinCancellationLeadTimeHrs = -1 }},
			{"zero booking horizon", func(req *models.UpdateSettingsRequest) { req.MaxAdvancedBookingDays = 0 }},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				svc := NewService(&fakeSettingsRepo{}, &fakeAuditLog{}, nopLogger{})

				req := validUpdateRequest()
				tt.mutate(req)
				_, err := svc.Update(context.Background(), req)
				assert.ErrorIs(t, err, ErrInvalidInput)
			})
		}
	})
}
