package appointments

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avkuzmin/ACP-AppointmentService/internal/domain"
	appointmentRepo "github.com/avkuzmin/ACP-AppointmentService/internal/infra/storage/appointment"
	"github.com/avkuzmin/ACP-AppointmentService/internal/service/appointments/models"
	"github.com/avkuzmin/ACP-AppointmentService/pkg/types"
)

type nopLogger struct{}

func (nopLogger) Info(format string, v ...interface{})  {}
func (nopLogger) Warn(format string, v ...interface{})  {}
func (nopLogger) Error(format string, v ...interface{}) {}

type fakeAppointmentRepo struct {
	appointments map[int64]*domain.Appointment
	updated      map[int64]domain.AppointmentStatus
}

func newFakeAppointmentRepo() *fakeAppointmentRepo {
	return &fakeAppointmentRepo{
		appointments: make(map[int64]*domain.Appointment),
		updated:      make(map[int64]domain.AppointmentStatus),
	}
}

func (f *fakeAppointmentRepo) GetByID(_ context.Context, id int64) (*domain.Appointment, error) {
	appt, ok := f.appointments[id]
	if !ok {
		return nil, appointmentRepo.ErrAppointmentNotFound
	}
	return appt, nil
}

func (f *fakeAppointmentRepo) GetByDate(_ context.Context, date time.Time) ([]*domain.Appointment, error) {
	var result []*domain.Appointment
	for _, appt := range f.appointments {
		if appt.AppointmentDate.Equal(date) {
			result = append(result, appt)
		}
	}
	return result, nil
}

func (f *fakeAppointmentRepo) GetByUserID(_ context.Context, userID int64, status *domain.AppointmentStatus) ([]*domain.Appointment, error) {
	var result []*domain.Appointment
	for _, appt := range f.appointments {
		if appt.UserID != userID {
			continue
		}
		if status != nil && appt.Status != *status {
			continue
		}
		result = append(result, appt)
	}
	return result, nil
}

func (f *fakeAppointmentRepo) UpdateStatus(_ context.Context, id int64, status domain.AppointmentStatus) error {
	if _, ok := f.appointments[id]; !ok {
		return appointmentRepo.ErrAppointmentNotFound
	}
	f.updated[id] = status
	return nil
}

type fakeAuditLog struct {
	entries []string
	failing bool
}

func (f *fakeAuditLog) Log(_ context.Context, _ int64, action string, _ string, _ int64, _ string) error {
	if f.failing {
		return errors.New("audit write failed")
	}
	f.entries = append(f.entries, action)
	return nil
}

func testAppointment(t *testing.T, id, userID int64, status domain.AppointmentStatus) *domain.Appointment {
	t.Helper()

	start, err := types.NewTimeStringFromString("09:00")
	require.NoError(t, err)
	end, err := types.NewTimeStringFromString("09:30")
	require.NoError(t, err)

	return &domain.Appointment{
		ID:              id,
		UserID:          userID,
		AppointmentDate: time.Date(2025, 6, 20, 0, 0, 0, 0, time.UTC),
		StartTime:       start,
		EndTime:         end,
		Reason:          "консультация",
		Status:          status,
	}
}

func TestService_GetByID(t *testing.T) {
	repo := newFakeAppointmentRepo()
	repo.appointments[1] = testAppointment(t, 1, 42, domain.StatusConfirmed)

	svc := NewService(repo, &fakeAuditLog{}, nopLogger{})

	t.Run("owner gets own appointment", func(t *testing.T) {
		resp, err := svc.GetByID(context.Background(), 1, 42, false)
		require.NoError(t, err)
		assert.Equal(t, int64(1), resp.ID)
		assert.Equal(t, "09:00:00", resp.StartTime)
		assert.Equal(t, "confirmed", resp.Status)
	})

	t.Run("admin gets any appointment", func(t *testing.T) {
		resp, err := svc.GetByID(context.Background(), 1, 99, true)
		require.NoError(t, err)
		assert.Equal(t, int64(42), resp.UserID)
	})

	t.Run("stranger is denied", func(t *testing.T) {
		_, err := svc.GetByID(context.Background(), 1, 99, false)
		assert.ErrorIs(t, err, ErrAccessDenied)
	})

	t.Run("missing appointment", func(t *testing.T) {
		_, err := svc.GetByID(context.Background(), 777, 42, false)
		assert.ErrorIs(t, err, ErrAppointmentNotFound)
	})
}

func TestService_GetUserAppointments(t *testing.T) {
	repo := newFakeAppointmentRepo()
	repo.appointments[1] = testAppointment(t, 1, 42, domain.StatusConfirmed)
	repo.appointments[2] = testAppointment(t, 2, 42, domain.StatusCancelled)
	repo.appointments[3] = testAppointment(t, 3, 7, domain.StatusConfirmed)

	svc := NewService(repo, &fakeAuditLog{}, nopLogger{})

	t.Run("all appointments of user", func(t *testing.T) {
		resp, err := svc.GetUserAppointments(context.Background(), &models.GetUserAppointmentsRequest{UserID: 42})
		require.NoError(t, err)
		assert.Equal(t, 2, resp.Total)
	})

	t.Run("filtered by status", func(t *testing.T) {
		status := "cancelled"
		resp, err := svc.GetUserAppointments(context.Background(), &models.GetUserAppointmentsRequest{
			UserID: 42,
			Status: &status,
		})
		require.NoError(t, err)
		require.Equal(t, 1, resp.Total)
		assert.Equal(t, int64(2), resp.Appointments[0].ID)
	})

	t.Run("unknown status rejected", func(t *testing.T) {
		status := "exploded"
		_, err := svc.GetUserAppointments(context.Background(), &models.GetUserAppointmentsRequest{
			UserID: 42,
			Status: &status,
		})
		assert.ErrorIs(t, err, ErrInvalidInput)
	})
}

func TestService_UpdateStatus(t *testing.T) {
	t.Run("confirmed to completed with audit", func(t *testing.T) {
		repo := newFakeAppointmentRepo()
		repo.appointments[1] = testAppointment(t, 1, 42, domain.StatusConfirmed)
		auditLog := &fakeAuditLog{}
		svc := NewService(repo, auditLog, nopLogger{})

		err := svc.UpdateStatus(context.Background(), 1, &models.UpdateStatusRequest{UserID: 99, Status: "completed"})
		require.NoError(t, err)
		assert.Equal(t, domain.StatusCompleted, repo.updated[1])
		assert.Len(t, auditLog.entries, 1)
	})

	t.Run("finished appointment is immutable", func(t *testing.T) {
		repo := newFakeAppointmentRepo()
		repo.appointments[1] = testAppointment(t, 1, 42, domain.StatusCompleted)
		svc := NewService(repo, &fakeAuditLog{}, nopLogger{})

		err := svc.UpdateStatus(context.Background(), 1, &models.UpdateStatusRequest{UserID: 99, Status: "no_show"})
		assert.ErrorIs(t, err, ErrInvalidStatus)
		assert.Empty(t, repo.updated)
	})

	t.Run("invalid status string", func(t *testing.T) {
		repo := newFakeAppointmentRepo()
		repo.appointments[1] = testAppointment(t, 1, 42, domain.StatusConfirmed)
		svc := NewService(repo, &fakeAuditLog{}, nopLogger{})

		err := svc.UpdateStatus(context.Background(), 1, &models.UpdateStatusRequest{UserID: 99, Status: "done"})
		assert.ErrorIs(t, err, ErrInvalidInput)
	})

	t.Run("audit failure does not roll back the change", func(t *testing.T) {
		repo := newFakeAppointmentRepo()
		repo.appointments[1] = testAppointment(t, 1, 42, domain.StatusConfirmed)
		svc := NewService(repo, &fakeAuditLog{failing: true}, nopLogger{})

		err := svc.UpdateStatus(context.Background(), 1, &models.UpdateStatusRequest{UserID: 99, Status: "no_show"})
		require.NoError(t, err)
		assert.Equal(t, domain.StatusNoShow, repo.updated[1])
	})
}
