package validation

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avkuzmin/ACP-AppointmentService/internal/domain"
	settingsRepo "github.com/avkuzmin/ACP-AppointmentService/internal/infra/storage/settings"
	"github.com/avkuzmin/ACP-AppointmentService/pkg/types"
)

// Среда, 07:00 - до начала рабочего дня
var testNow = time.Date(2025, 6, 11, 7, 0, 0, 0, time.UTC)

type fixedClock struct {
	now time.Time
}

func (c fixedClock) Now() time.Time { return c.now }

type nopLogger struct{}

func (nopLogger) Debug(format string, v ...interface{}) {}
func (nopLogger) Info(format string, v ...interface{})  {}
func (nopLogger) Warn(format string, v ...interface{})  {}
func (nopLogger) Error(format string, v ...interface{}) {}

type fakeAppointmentRepo struct {
	confirmed []*domain.Appointment
	byUser    []*domain.Appointment

	lastPeriodFrom time.Time
	lastPeriodTo   time.Time
}

func (f *fakeAppointmentRepo) GetConfirmedByDate(ctx context.Context, date time.Time) ([]*domain.Appointment, error) {
	return f.confirmed, nil
}

func (f *fakeAppointmentRepo) GetByUserAndPeriod(ctx context.Context, userID int64, from, to time.Time) ([]*domain.Appointment, error) {
	f.lastPeriodFrom = from
	f.lastPeriodTo = to
	return f.byUser, nil
}

type fakeBlockedSlotRepo struct {
	blocks []*domain.BlockedSlot
}

func (f *fakeBlockedSlotRepo) GetByDate(ctx context.Context, date time.Time) ([]*domain.BlockedSlot, error) {
	return f.blocks, nil
}

type fakeSettingsRepo struct {
	settings *domain.SystemSettings
}

func (f *fakeSettingsRepo) Get(ctx context.Context) (*domain.SystemSettings, error) {
	if f.settings == nil {
		return nil, settingsRepo.ErrSettingsNotFound
	}
	return f.settings, nil
}

type fakeLedgerRepo struct {
	entry *domain.QuotaLedger
}

func (f *fakeLedgerRepo) GetOrCreate(ctx context.Context, userID int64, month string, monthlyLimit int) (*domain.QuotaLedger, error) {
	if f.entry != nil {
		return f.entry, nil
	}
	return &domain.QuotaLedger{UserID: userID, Month: month, MonthlyLimit: monthlyLimit}, nil
}

func ts(t *testing.T, s string) types.TimeString {
	t.Helper()
	v, err := types.NewTimeStringFromString(s)
	require.NoError(t, err)
	return v
}

func newTestService(
	appointments *fakeAppointmentRepo,
	blocks *fakeBlockedSlotRepo,
	settings *fakeSettingsRepo,
	ledger *fakeLedgerRepo,
	now time.Time,
) *Service {
	if appointments == nil {
		appointments = &fakeAppointmentRepo{}
	}
	if blocks == nil {
		blocks = &fakeBlockedSlotRepo{}
	}
	if settings == nil {
		settings = &fakeSettingsRepo{}
	}
	if ledger == nil {
		ledger = &fakeLedgerRepo{}
	}
	return NewService(appointments, blocks, settings, ledger, fixedClock{now: now}, nopLogger{})
}

func confirmedAppointment(date time.Time, start types.TimeString) *domain.Appointment {
	return &domain.Appointment{
		UserID:          42,
		AppointmentDate: date,
		StartTime:       start,
		Status:          domain.StatusConfirmed,
	}
}

func TestGenerateSlots_Defaults(t *testing.T) {
	slots, err := GenerateSlots(domain.DefaultSettings())
	require.NoError(t, err)

	// 08:00-12:00 по 30 минут = 8 слотов
	require.Len(t, slots, 8)
	assert.Equal(t, "08:00:00", slots[0].String())
	assert.Equal(t, "08:30:00", slots[1].String())
	assert.Equal(t, "11:30:00", slots[7].String())
}

func TestGenerateSlots_PartialLastSlot(t *testing.T) {
	settings := domain.DefaultSettings()
	settings.AppointmentDurationMinutes = 45

	slots, err := GenerateSlots(settings)
	require.NoError(t, err)

	// 08:00, 08:45, 09:30, 10:15, 11:00; слот 11:45 не укладывается до 12:00
	require.Len(t, slots, 5)
	assert.Equal(t, "11:00:00", slots[4].String())
}

func TestGenerateSlots_InvalidSettings(t *testing.T) {
	settings := domain.DefaultSettings()
	settings.AppointmentDurationMinutes = 0

	_, err := GenerateSlots(settings)
	assert.ErrorIs(t, err, ErrInvalidInput)

	settings = domain.DefaultSettings()
	settings.WorkingHoursStart = settings.WorkingHoursEnd
	_, err = GenerateSlots(settings)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestGetAvailableSlots_ExcludesBookedAndBlocked(t *testing.T) {
	date := time.Date(2025, 6, 12, 0, 0, 0, 0, time.UTC)

	appointments := &fakeAppointmentRepo{
		confirmed: []*domain.Appointment{
			confirmedAppointment(date, ts(t, "08:30")),
		},
	}
	blocks := &fakeBlockedSlotRepo{
		blocks: []*domain.BlockedSlot{
			{
				BlockedDate: date,
				BlockType:   domain.BlockTimeSlot,
				StartTime:   ts(t, "10:00"),
				EndTime:     ts(t, "11:00"),
			},
		},
	}

	svc := newTestService(appointments, blocks, nil, nil, testNow)

	availability, err := svc.GetAvailableSlots(context.Background(), date)
	require.NoError(t, err)
	assert.False(t, availability.IsFullDayBlocked)

	got := make([]string, 0, len(availability.Slots))
	for _, slot := range availability.Slots {
		got = append(got, slot.String())
	}

	// Занят 08:30, блокировка закрывает 10:00 и 10:30 (окно полуоткрытое)
	assert.Equal(t, []string{"08:00:00", "09:00:00", "09:30:00", "11:00:00", "11:30:00"}, got)
}

func TestGetAvailableSlots_FullDayBlock(t *testing.T) {
	date := time.Date(2025, 6, 12, 0, 0, 0, 0, time.UTC)

	blocks := &fakeBlockedSlotRepo{
		blocks: []*domain.BlockedSlot{
			{
				BlockedDate: date,
				BlockType:   domain.BlockFullDay,
				Reason:      "holiday",
			},
		},
	}

	svc := newTestService(nil, blocks, nil, nil, testNow)

	availability, err := svc.GetAvailableSlots(context.Background(), date)
	require.NoError(t, err)

	assert.True(t, availability.IsFullDayBlocked)
	assert.Empty(t, availability.Slots)
	require.NotNil(t, availability.BlockReason)
	assert.Equal(t, "holiday", *availability.BlockReason)
}

func TestValidateDateTime(t *testing.T) {
	settings := domain.DefaultSettings()

	tests := []struct {
		name     string
		now      time.Time
		date     time.Time
		time     string
		wantCode domain.ValidationCode
	}{
		{
			name:     "past day",
			now:      testNow,
			date:     time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC),
			time:     "09:00",
			wantCode: domain.CodePastDate,
		},
		{
			name:     "same day past slot",
			now:      time.Date(2025, 6, 11, 10, 0, 0, 0, time.UTC),
			date:     time.Date(2025, 6, 11, 0, 0, 0, 0, time.UTC),
			time:     "09:00",
			wantCode: domain.CodePastDate,
		},
		{
			// Запись возможна только со следующего дня, даже на будущий слот
			name:     "same day future slot",
			now:      testNow,
			date:     time.Date(2025, 6, 11, 0, 0, 0, 0, time.UTC),
			time:     "09:00",
			wantCode: domain.CodePastDate,
		},
		{
			name:     "saturday",
			now:      testNow,
			date:     time.Date(2025, 6, 14, 0, 0, 0, 0, time.UTC),
			time:     "09:00",
			wantCode: domain.CodeWeekend,
		},
		{
			name:     "before opening",
			now:      testNow,
			date:     time.Date(2025, 6, 12, 0, 0, 0, 0, time.UTC),
			time:     "07:30",
			wantCode: domain.CodeOutsideWorkingHours,
		},
		{
			// 11:45 строго внутри рабочих часов: дата и время корректны,
			// неполный слот отсеет проверка доступности
			name: "late start inside working hours",
			now:  testNow,
			date: time.Date(2025, 6, 12, 0, 0, 0, 0, time.UTC),
			time: "11:45",
		},
		{
			name:     "start exactly at closing",
			now:      testNow,
			date:     time.Date(2025, 6, 12, 0, 0, 0, 0, time.UTC),
			time:     "12:00",
			wantCode: domain.CodeOutsideWorkingHours,
		},
		{
			name:     "next day after cutoff",
			now:      time.Date(2025, 6, 11, 19, 30, 0, 0, time.UTC),
			date:     time.Date(2025, 6, 12, 0, 0, 0, 0, time.UTC),
			time:     "09:00",
			wantCode: domain.CodeAfterHoursNextDay,
		},
		{
			name:     "next day exactly at cutoff",
			now:      time.Date(2025, 6, 11, 19, 0, 0, 0, time.UTC),
			date:     time.Date(2025, 6, 12, 0, 0, 0, 0, time.UTC),
			time:     "09:00",
			wantCode: domain.CodeAfterHoursNextDay,
		},
		{
			name: "next day before cutoff",
			now:  time.Date(2025, 6, 11, 18, 59, 0, 0, time.UTC),
			date: time.Date(2025, 6, 12, 0, 0, 0, 0, time.UTC),
			time: "09:00",
		},
		{
			name: "last slot of the day",
			now:  testNow,
			date: time.Date(2025, 6, 12, 0, 0, 0, 0, time.UTC),
			time: "11:30",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newTestService(nil, nil, nil, nil, tt.now)

			verr := svc.ValidateDateTime(tt.date, ts(t, tt.time), settings)

			if tt.wantCode == "" {
				assert.Nil(t, verr)
				return
			}
			require.NotNil(t, verr)
			assert.Equal(t, tt.wantCode, verr.Code)
		})
	}
}

func TestValidateMonthlyLimit(t *testing.T) {
	settings := domain.DefaultSettings()

	makeAppt := func(status domain.AppointmentStatus) *domain.Appointment {
		return &domain.Appointment{
			UserID:          42,
			AppointmentDate: time.Date(2025, 6, 12, 0, 0, 0, 0, time.UTC),
			Status:          status,
		}
	}

	t.Run("attended this month", func(t *testing.T) {
		appointments := &fakeAppointmentRepo{byUser: []*domain.Appointment{makeAppt(domain.StatusCompleted)}}
		svc := newTestService(appointments, nil, nil, nil, testNow)

		verr, err := svc.ValidateMonthlyLimit(context.Background(), 42, settings)
		require.NoError(t, err)
		require.NotNil(t, verr)
		assert.Equal(t, domain.CodeAlreadyAttendedThisMonth, verr.Code)
	})

	t.Run("confirmed appointments at limit", func(t *testing.T) {
		appointments := &fakeAppointmentRepo{byUser: []*domain.Appointment{
			makeAppt(domain.StatusConfirmed),
			makeAppt(domain.StatusConfirmed),
		}}
		svc := newTestService(appointments, nil, nil, nil, testNow)

		verr, err := svc.ValidateMonthlyLimit(context.Background(), 42, settings)
		require.NoError(t, err)
		require.NotNil(t, verr)
		assert.Equal(t, domain.CodeMonthlyLimitExceeded, verr.Code)
	})

	t.Run("only confirmed count towards the limit", func(t *testing.T) {
		appointments := &fakeAppointmentRepo{byUser: []*domain.Appointment{
			makeAppt(domain.StatusPending),
			makeAppt(domain.StatusCancelled),
			makeAppt(domain.StatusNoShow),
			makeAppt(domain.StatusConfirmed),
		}}
		svc := newTestService(appointments, nil, nil, nil, testNow)

		verr, err := svc.ValidateMonthlyLimit(context.Background(), 42, settings)
		require.NoError(t, err)
		assert.Nil(t, verr)
	})

	t.Run("window is the current month regardless of requested date", func(t *testing.T) {
		// Июньский лимит исчерпан, но запрос проверяется в июле
		appointments := &fakeAppointmentRepo{}
		julyNow := time.Date(2025, 7, 1, 7, 0, 0, 0, time.UTC)
		svc := newTestService(appointments, nil, nil, nil, julyNow)

		verr, err := svc.ValidateMonthlyLimit(context.Background(), 42, settings)
		require.NoError(t, err)
		assert.Nil(t, verr)
		assert.Equal(t, time.July, appointments.lastPeriodFrom.Month())
		assert.Equal(t, 1, appointments.lastPeriodFrom.Day())
		assert.Equal(t, 31, appointments.lastPeriodTo.Day())
	})

	t.Run("no appointments", func(t *testing.T) {
		svc := newTestService(nil, nil, nil, nil, testNow)

		verr, err := svc.ValidateMonthlyLimit(context.Background(), 42, settings)
		require.NoError(t, err)
		assert.Nil(t, verr)
	})
}

func TestValidateCancellationBlock(t *testing.T) {
	settings := domain.DefaultSettings()

	t.Run("no previous cancellation", func(t *testing.T) {
		svc := newTestService(nil, nil, nil, nil, testNow)

		verr, err := svc.ValidateCancellationBlock(context.Background(), 42, settings)
		require.NoError(t, err)
		assert.Nil(t, verr)
	})

	t.Run("recent cancellation blocks", func(t *testing.T) {
		cancelledAt := testNow.Add(-time.Hour)
		ledger := &fakeLedgerRepo{entry: &domain.QuotaLedger{UserID: 42, LastCancellationAt: &cancelledAt}}
		svc := newTestService(nil, nil, nil, ledger, testNow)

		verr, err := svc.ValidateCancellationBlock(context.Background(), 42, settings)
		require.NoError(t, err)
		require.NotNil(t, verr)
		assert.Equal(t, domain.CodeCancellationBlock, verr.Code)
		// Отмена час назад при двухчасовой блокировке: остался ровно час
		assert.Equal(t, "booking is blocked for 60 more minutes after a recent cancellation", verr.Message)
	})

	t.Run("remaining minutes rounded up", func(t *testing.T) {
		cancelledAt := testNow.Add(-time.Hour - 30*time.Minute - 30*time.Second)
		ledger := &fakeLedgerRepo{entry: &domain.QuotaLedger{UserID: 42, LastCancellationAt: &cancelledAt}}
		svc := newTestService(nil, nil, nil, ledger, testNow)

		verr, err := svc.ValidateCancellationBlock(context.Background(), 42, settings)
		require.NoError(t, err)
		require.NotNil(t, verr)
		// Осталось 29 минут 30 секунд - сообщение обещает 30 минут
		assert.Contains(t, verr.Message, "30 more minutes")
	})

	t.Run("expired block window", func(t *testing.T) {
		cancelledAt := testNow.Add(-3 * time.Hour)
		ledger := &fakeLedgerRepo{entry: &domain.QuotaLedger{UserID: 42, LastCancellationAt: &cancelledAt}}
		svc := newTestService(nil, nil, nil, ledger, testNow)

		verr, err := svc.ValidateCancellationBlock(context.Background(), 42, settings)
		require.NoError(t, err)
		assert.Nil(t, verr)
	})
}

func TestValidateAppointment_ChecksRunInOrder(t *testing.T) {
	// Прошедшая суббота: обе проверки сработали бы, но первой должна
	// отказать проверка прошедшей даты
	svc := newTestService(nil, nil, nil, nil, testNow)

	result, err := svc.ValidateAppointment(context.Background(), 42,
		time.Date(2025, 6, 7, 0, 0, 0, 0, time.UTC), ts(t, "09:00"))

	require.NoError(t, err)
	assert.False(t, result.Valid)
	assert.Equal(t, domain.CodePastDate, result.Code)
}

func TestValidateAppointment_SlotTakenReturnsAlternatives(t *testing.T) {
	date := time.Date(2025, 6, 12, 0, 0, 0, 0, time.UTC)
	appointments := &fakeAppointmentRepo{
		confirmed: []*domain.Appointment{confirmedAppointment(date, ts(t, "09:00"))},
	}

	svc := newTestService(appointments, nil, nil, nil, testNow)

	result, err := svc.ValidateAppointment(context.Background(), 42, date, ts(t, "09:00"))
	require.NoError(t, err)

	assert.False(t, result.Valid)
	assert.Equal(t, domain.CodeSlotNotAvailable, result.Code)
	assert.NotEmpty(t, result.AvailableSlots)
	for _, slot := range result.AvailableSlots {
		assert.NotEqual(t, "09:00:00", slot.String())
	}
}

func TestValidateAppointment_PartialSlotRejectedByAvailability(t *testing.T) {
	// 11:45 проходит проверку рабочих часов, но в сетке слотов отсутствует:
	// отказ приходит с кодом недоступности слота, а не рабочих часов
	date := time.Date(2025, 6, 12, 0, 0, 0, 0, time.UTC)
	svc := newTestService(nil, nil, nil, nil, testNow)

	result, err := svc.ValidateAppointment(context.Background(), 42, date, ts(t, "11:45"))
	require.NoError(t, err)

	assert.False(t, result.Valid)
	assert.Equal(t, domain.CodeSlotNotAvailable, result.Code)
}

func TestValidateAppointment_Success(t *testing.T) {
	date := time.Date(2025, 6, 12, 0, 0, 0, 0, time.UTC)
	svc := newTestService(nil, nil, nil, nil, testNow)

	result, err := svc.ValidateAppointment(context.Background(), 42, date, ts(t, "09:00"))
	require.NoError(t, err)

	assert.True(t, result.Valid)
	assert.Empty(t, result.Code)
	assert.Len(t, result.AvailableSlots, 8)
}

func TestValidateCancellationLeadTime(t *testing.T) {
	settings := domain.DefaultSettings()

	makeAppt := func(start time.Time) *domain.Appointment {
		return &domain.Appointment{
			AppointmentDate: time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC),
			StartTime:       types.NewTimeString(start),
			Status:          domain.StatusConfirmed,
		}
	}

	t.Run("enough lead time", func(t *testing.T) {
		svc := newTestService(nil, nil, nil, nil, testNow)

		// Приём завтра в 09:00 - больше 12 часов
		verr := svc.ValidateCancellationLeadTime(makeAppt(testNow.Add(26*time.Hour)), settings)
		assert.Nil(t, verr)
	})

	t.Run("exactly at deadline", func(t *testing.T) {
		svc := newTestService(nil, nil, nil, nil, testNow)

		verr := svc.ValidateCancellationLeadTime(makeAppt(testNow.Add(12*time.Hour)), settings)
		assert.Nil(t, verr)
	})

	t.Run("too close to start", func(t *testing.T) {
		svc := newTestService(nil, nil, nil, nil, testNow)

		verr := svc.ValidateCancellationLeadTime(makeAppt(testNow.Add(3*time.Hour)), settings)
		require.NotNil(t, verr)
		assert.Equal(t, domain.CodeCancellationLeadTime, verr.Code)
	})
}

func TestCalculateEndTime(t *testing.T) {
	svc := newTestService(nil, nil, nil, nil, testNow)
	settings := domain.DefaultSettings()

	end, err := svc.CalculateEndTime(ts(t, "10:45"), settings)
	require.NoError(t, err)
	assert.Equal(t, "11:15:00", end.String())

	_, err = svc.CalculateEndTime(ts(t, "23:45"), settings)
	assert.ErrorIs(t, err, ErrInvalidInput)
}
