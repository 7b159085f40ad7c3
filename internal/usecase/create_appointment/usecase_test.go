package create_appointment

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avkuzmin/ACP-AppointmentService/internal/domain"
	appointmentRepo "github.com/avkuzmin/ACP-AppointmentService/internal/infra/storage/appointment"
	"github.com/avkuzmin/ACP-AppointmentService/pkg/types"
)

type nopLogger struct{}

func (nopLogger) Info(format string, v ...interface{})  {}
func (nopLogger) Warn(format string, v ...interface{})  {}
func (nopLogger) Error(format string, v ...interface{}) {}

type fakeTxManager struct{}

func (fakeTxManager) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fakeAppointmentRepo struct {
	createErr error
	created   *domain.Appointment
}

func (f *fakeAppointmentRepo) Create(ctx context.Context, appt *domain.Appointment) (*domain.Appointment, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	result := *appt
	result.ID = 7
	f.created = &result
	return &result, nil
}

type fakeValidator struct {
	result *domain.ValidationResult
}

func (f *fakeValidator) ValidateAppointment(ctx context.Context, userID int64, date time.Time, startTime types.TimeString) (*domain.ValidationResult, error) {
	if f.result != nil {
		return f.result, nil
	}
	return &domain.ValidationResult{Valid: true}, nil
}

func (f *fakeValidator) GetSettings(ctx context.Context) (*domain.SystemSettings, error) {
	return domain.DefaultSettings(), nil
}

func (f *fakeValidator) CalculateEndTime(startTime types.TimeString, settings *domain.SystemSettings) (types.TimeString, error) {
	return startTime.AddMinutes(settings.AppointmentDurationMinutes)
}

type fakeLedgerRepo struct {
	increments int
}

func (f *fakeLedgerRepo) Increment(ctx context.Context, userID int64) error {
	f.increments++
	return nil
}

type fakeEmailQueue struct {
	enqueued []string
}

func (f *fakeEmailQueue) Enqueue(ctx context.Context, userID int64, template string, payload map[string]interface{}) error {
	f.enqueued = append(f.enqueued, template)
	return nil
}

type fakeAuditLog struct {
	entries []string
}

func (f *fakeAuditLog) Log(ctx context.Context, userID int64, action string, entityType string, entityID int64, details string) error {
	f.entries = append(f.entries, action)
	return nil
}

func ts(t *testing.T, s string) types.TimeString {
	t.Helper()
	v, err := types.NewTimeStringFromString(s)
	require.NoError(t, err)
	return v
}

func validRequest(t *testing.T) *Request {
	return &Request{
		UserID:    42,
		Date:      time.Date(2025, 6, 12, 0, 0, 0, 0, time.UTC),
		StartTime: ts(t, "09:00"),
		Reason:    "checkup",
	}
}

func TestExecute_Success(t *testing.T) {
	appointments := &fakeAppointmentRepo{}
	ledger := &fakeLedgerRepo{}
	emails := &fakeEmailQueue{}
	auditLog := &fakeAuditLog{}

	uc := NewUseCase(appointments, &fakeValidator{}, ledger, emails, auditLog, fakeTxManager{}, nopLogger{})

	resp, err := uc.Execute(context.Background(), validRequest(t))
	require.NoError(t, err)

	assert.Equal(t, int64(7), resp.ID)
	assert.Equal(t, "confirmed", resp.Status)
	assert.Equal(t, "09:30:00", resp.EndTime.String())
	assert.Equal(t, 1, ledger.increments)
	assert.Equal(t, []string{"appointment_created"}, emails.enqueued)
	assert.Equal(t, []string{"appointment_created"}, auditLog.entries)
}

func TestExecute_InvalidInput(t *testing.T) {
	uc := NewUseCase(&fakeAppointmentRepo{}, &fakeValidator{}, &fakeLedgerRepo{}, &fakeEmailQueue{}, &fakeAuditLog{}, fakeTxManager{}, nopLogger{})

	tests := []struct {
		name   string
		mutate func(req *Request)
	}{
		{"missing user", func(req *Request) { req.UserID = 0 }},
		{"missing date", func(req *Request) { req.Date = time.Time{} }},
		{"missing time", func(req *Request) { req.StartTime = types.TimeString{} }},
		{"missing reason", func(req *Request) { req.Reason = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validRequest(t)
			tt.mutate(req)

			_, err := uc.Execute(context.Background(), req)
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}
}

func TestExecute_ValidationFailure(t *testing.T) {
	appointments := &fakeAppointmentRepo{}
	ledger := &fakeLedgerRepo{}
	validator := &fakeValidator{result: &domain.ValidationResult{
		Code:    domain.CodeMonthlyLimitExceeded,
		Message: "monthly appointment limit has been reached",
	}}

	uc := NewUseCase(appointments, validator, ledger, &fakeEmailQueue{}, &fakeAuditLog{}, fakeTxManager{}, nopLogger{})

	_, err := uc.Execute(context.Background(), validRequest(t))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrValidationFailed)

	var verr *ValidationFailedError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, domain.CodeMonthlyLimitExceeded, verr.Result.Code)

	assert.Nil(t, appointments.created)
	assert.Zero(t, ledger.increments)
}

func TestExecute_SlotLostToConcurrentBooking(t *testing.T) {
	appointments := &fakeAppointmentRepo{createErr: appointmentRepo.ErrSlotTaken}
	ledger := &fakeLedgerRepo{}

	uc := NewUseCase(appointments, &fakeValidator{}, ledger, &fakeEmailQueue{}, &fakeAuditLog{}, fakeTxManager{}, nopLogger{})

	_, err := uc.Execute(context.Background(), validRequest(t))
	require.Error(t, err)

	var verr *ValidationFailedError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, domain.CodeSlotNotAvailable, verr.Result.Code)
	assert.Zero(t, ledger.increments)
}
