package cancel_appointment

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avkuzmin/ACP-AppointmentService/internal/domain"
	"github.com/avkuzmin/ACP-AppointmentService/pkg/types"
)

var testNow = time.Date(2025, 6, 11, 7, 0, 0, 0, time.UTC)

type nopLogger struct{}

func (nopLogger) Info(format string, v ...interface{})  {}
func (nopLogger) Warn(format string, v ...interface{})  {}
func (nopLogger) Error(format string, v ...interface{}) {}

type fixedClock struct {
	now time.Time
}

func (c fixedClock) Now() time.Time { return c.now }

type fakeTxManager struct{}

func (fakeTxManager) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fakeAppointmentRepo struct {
	appt      *domain.Appointment
	getErr    error
	cancelled bool
}

func (f *fakeAppointmentRepo) GetByID(ctx context.Context, id int64) (*domain.Appointment, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.appt, nil
}

func (f *fakeAppointmentRepo) Cancel(ctx context.Context, id int64, reason string) error {
	f.cancelled = true
	return nil
}

type fakeValidator struct {
	leadTimeErr *domain.ValidationError
}

func (f *fakeValidator) GetSettings(ctx context.Context) (*domain.SystemSettings, error) {
	return domain.DefaultSettings(), nil
}

func (f *fakeValidator) ValidateCancellationLeadTime(appt *domain.Appointment, settings *domain.SystemSettings) *domain.ValidationError {
	return f.leadTimeErr
}

type fakeLedgerRepo struct {
	decrements int
	stamped    bool
}

func (f *fakeLedgerRepo) GetOrCreate(ctx context.Context, userID int64, month string, monthlyLimit int) (*domain.QuotaLedger, error) {
	return &domain.QuotaLedger{UserID: userID, Month: month, MonthlyLimit: monthlyLimit}, nil
}

func (f *fakeLedgerRepo) Decrement(ctx context.Context, userID int64) error {
	f.decrements++
	return nil
}

func (f *fakeLedgerRepo) StampCancellation(ctx context.Context, userID int64, at time.Time) error {
	f.stamped = true
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

func confirmedAppointment(t *testing.T, userID int64) *domain.Appointment {
	t.Helper()
	start, err := types.NewTimeStringFromString("09:00")
	require.NoError(t, err)

	return &domain.Appointment{
		ID:              7,
		UserID:          userID,
		AppointmentDate: time.Date(2025, 6, 12, 0, 0, 0, 0, time.UTC),
		StartTime:       start,
		Status:          domain.StatusConfirmed,
	}
}

func newUseCase(appointments *fakeAppointmentRepo, validator *fakeValidator, ledger *fakeLedgerRepo, emails *fakeEmailQueue, auditLog *fakeAuditLog) *UseCase {
	uc := NewUseCase(appointments, validator, ledger, emails, auditLog, fakeTxManager{}, nopLogger{})
	uc.timeProvider = fixedClock{now: testNow}
	return uc
}

func TestExecute_SelfCancellation(t *testing.T) {
	appointments := &fakeAppointmentRepo{appt: confirmedAppointment(t, 42)}
	ledger := &fakeLedgerRepo{}
	emails := &fakeEmailQueue{}
	auditLog := &fakeAuditLog{}

	uc := newUseCase(appointments, &fakeValidator{}, ledger, emails, auditLog)

	err := uc.Execute(context.Background(), &Request{
		AppointmentID:      7,
		UserID:             42,
		CancellationReason: "schedule conflict",
	})
	require.NoError(t, err)

	assert.True(t, appointments.cancelled)
	assert.Equal(t, 1, ledger.decrements)
	assert.True(t, ledger.stamped, "self-service cancellation must start the booking block")
	assert.Equal(t, []string{"appointment_cancelled"}, emails.enqueued)
	assert.Equal(t, []string{"appointment_cancelled"}, auditLog.entries)
}

func TestExecute_AdminCancellationSkipsStamp(t *testing.T) {
	appointments := &fakeAppointmentRepo{appt: confirmedAppointment(t, 42)}
	ledger := &fakeLedgerRepo{}

	// Срок до приёма администратора не ограничивает
	validator := &fakeValidator{leadTimeErr: &domain.ValidationError{Code: domain.CodeCancellationLeadTime}}

	uc := newUseCase(appointments, validator, ledger, &fakeEmailQueue{}, &fakeAuditLog{})

	err := uc.Execute(context.Background(), &Request{
		AppointmentID:      7,
		UserID:             99,
		IsAdmin:            true,
		CancellationReason: "clinic closure",
	})
	require.NoError(t, err)

	assert.True(t, appointments.cancelled)
	assert.Equal(t, 1, ledger.decrements)
	assert.False(t, ledger.stamped, "admin cancellation must not penalize the user")
}

func TestExecute_AccessDenied(t *testing.T) {
	appointments := &fakeAppointmentRepo{appt: confirmedAppointment(t, 42)}
	uc := newUseCase(appointments, &fakeValidator{}, &fakeLedgerRepo{}, &fakeEmailQueue{}, &fakeAuditLog{})

	err := uc.Execute(context.Background(), &Request{
		AppointmentID:      7,
		UserID:             99,
		CancellationReason: "not mine",
	})
	assert.ErrorIs(t, err, ErrAccessDenied)
	assert.False(t, appointments.cancelled)
}

func TestExecute_TooLateToCancel(t *testing.T) {
	appointments := &fakeAppointmentRepo{appt: confirmedAppointment(t, 42)}
	ledger := &fakeLedgerRepo{}
	validator := &fakeValidator{leadTimeErr: &domain.ValidationError{Code: domain.CodeCancellationLeadTime}}

	uc := newUseCase(appointments, validator, ledger, &fakeEmailQueue{}, &fakeAuditLog{})

	err := uc.Execute(context.Background(), &Request{
		AppointmentID:      7,
		UserID:             42,
		CancellationReason: "changed my mind",
	})
	assert.ErrorIs(t, err, ErrTooLateToCancel)
	assert.False(t, appointments.cancelled)
	assert.Zero(t, ledger.decrements)
}

func TestExecute_AlreadyFinished(t *testing.T) {
	appt := confirmedAppointment(t, 42)
	appt.Status = domain.StatusCancelled
	appointments := &fakeAppointmentRepo{appt: appt}

	uc := newUseCase(appointments, &fakeValidator{}, &fakeLedgerRepo{}, &fakeEmailQueue{}, &fakeAuditLog{})

	err := uc.Execute(context.Background(), &Request{
		AppointmentID:      7,
		UserID:             42,
		CancellationReason: "again",
	})
	assert.ErrorIs(t, err, ErrCannotCancel)
}

func TestExecute_InvalidInput(t *testing.T) {
	uc := newUseCase(&fakeAppointmentRepo{}, &fakeValidator{}, &fakeLedgerRepo{}, &fakeEmailQueue{}, &fakeAuditLog{})

	err := uc.Execute(context.Background(), &Request{AppointmentID: 7, UserID: 42})
	assert.ErrorIs(t, err, ErrInvalidInput)
}
