package validation

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/avkuzmin/ACP-AppointmentService/internal/domain"
	settingsRepo "github.com/avkuzmin/ACP-AppointmentService/internal/infra/storage/settings"
	"github.com/avkuzmin/ACP-AppointmentService/pkg/types"
)

// Сообщения отказов валидации. Машиночитаемым контрактом являются коды,
// клиенты отображают собственные тексты по коду.
const (
	msgPastDate             = "cannot book an appointment in the past"
	msgWeekend              = "appointments are not available on weekends"
	msgOutsideWorkingHours  = "selected time is outside working hours"
	msgAfterHoursNextDay    = "next-day appointments cannot be booked this late"
	msgAlreadyAttended      = "an appointment has already been attended this month"
	msgMonthlyLimitExceeded = "monthly appointment limit has been reached"
	msgCancellationBlock    = "booking is blocked for %d more minutes after a recent cancellation"
	msgSlotNotAvailable     = "selected time slot is not available"
	msgLeadTimeExceeded     = "appointment is too close to its start time to be cancelled"
)

// Service сервис валидации записей на приём.
// Содержит генератор слотов, расчёт доступности и конвейер проверок,
// через который проходит каждый запрос на создание записи.
type Service struct {
	appointmentRepo AppointmentRepository
	blockedSlotRepo BlockedSlotRepository
	settingsRepo    SettingsRepository
	ledgerRepo      LedgerRepository
	timeProvider    TimeProvider
	logger          Logger
}

// NewService создает новый экземпляр сервиса валидации
func NewService(
	appointmentRepo AppointmentRepository,
	blockedSlotRepo BlockedSlotRepository,
	settingsRepo SettingsRepository,
	ledgerRepo LedgerRepository,
	timeProvider TimeProvider,
	logger Logger,
) *Service {
	return &Service{
		appointmentRepo: appointmentRepo,
		blockedSlotRepo: blockedSlotRepo,
		settingsRepo:    settingsRepo,
		ledgerRepo:      ledgerRepo,
		timeProvider:    timeProvider,
		logger:          logger,
	}
}

// GetSettings возвращает действующие системные настройки.
// Если административная запись ещё не создана, возвращает значения по умолчанию.
func (s *Service) GetSettings(ctx context.Context) (*domain.SystemSettings, error) {
	settings, err := s.settingsRepo.Get(ctx)
	if err != nil {
		if errors.Is(err, settingsRepo.ErrSettingsNotFound) {
			return domain.DefaultSettings(), nil
		}
		s.logger.Error("GetSettings: repository error: %v", err)
		return nil, fmt.Errorf("%w: GetSettings - repository error: %v", ErrInternal, err)
	}
	return settings, nil
}

// CalculateEndTime вычисляет время окончания приёма по настройкам
func (s *Service) CalculateEndTime(startTime types.TimeString, settings *domain.SystemSettings) (types.TimeString, error) {
	endTime, err := startTime.AddMinutes(settings.AppointmentDurationMinutes)
	if err != nil {
		return types.TimeString{}, fmt.Errorf("%w: CalculateEndTime - %v", ErrInvalidInput, err)
	}
	return endTime, nil
}

// GetAvailableSlots возвращает доступные слоты на дату.
// Из сетки рабочего дня исключаются занятые подтверждёнными записями слоты
// и слоты, попавшие под административные блокировки.
func (s *Service) GetAvailableSlots(ctx context.Context, date time.Time) (*domain.DayAvailability, error) {
	settings, err := s.GetSettings(ctx)
	if err != nil {
		return nil, err
	}

	blocks, err := s.blockedSlotRepo.GetByDate(ctx, date)
	if err != nil {
		s.logger.Error("GetAvailableSlots: failed to fetch blocks for date=%s: %v", date.Format(domain.DateFormat), err)
		return nil, fmt.Errorf("%w: GetAvailableSlots - fetch blocks: %v", ErrInternal, err)
	}

	// Блокировка всего дня делает сетку пустой независимо от записей
	for _, block := range blocks {
		if block.IsFullDay() {
			reason := block.Reason
			return &domain.DayAvailability{
				Slots:            []types.TimeString{},
				IsFullDayBlocked: true,
				BlockReason:      &reason,
			}, nil
		}
	}

	slots, err := GenerateSlots(settings)
	if err != nil {
		return nil, err
	}

	confirmed, err := s.appointmentRepo.GetConfirmedByDate(ctx, date)
	if err != nil {
		s.logger.Error("GetAvailableSlots: failed to fetch appointments for date=%s: %v", date.Format(domain.DateFormat), err)
		return nil, fmt.Errorf("%w: GetAvailableSlots - fetch appointments: %v", ErrInternal, err)
	}

	booked := make(map[string]struct{}, len(confirmed))
	for _, appt := range confirmed {
		booked[appt.StartTime.String()] = struct{}{}
	}

	available := make([]types.TimeString, 0, len(slots))

	for _, slot := range slots {
		if _, taken := booked[slot.String()]; taken {
			continue
		}

		covered := false
		for _, block := range blocks {
			if block.Covers(slot) {
				covered = true
				break
			}
		}
		if covered {
			continue
		}

		available = append(available, slot)
	}

	return &domain.DayAvailability{Slots: available}, nil
}

// IsSlotAvailable проверяет, свободен ли слот на дату
func (s *Service) IsSlotAvailable(ctx context.Context, date time.Time, startTime types.TimeString) (bool, error) {
	availability, err := s.GetAvailableSlots(ctx, date)
	if err != nil {
		return false, err
	}

	for _, slot := range availability.Slots {
		if slot.Equal(startTime) {
			return true, nil
		}
	}

	return false, nil
}

// ValidateDateTime проверяет дату и время запроса: прошлое, выходные,
// рабочие часы и запрет поздней записи на завтра
func (s *Service) ValidateDateTime(date time.Time, startTime types.TimeString, settings *domain.SystemSettings) *domain.ValidationError {
	now := s.timeProvider.Now()

	// 1. Запись возможна только со следующего дня: сегодняшняя и прошедшие
	// даты отклоняются независимо от времени слота
	if !dateOnly(date).After(dateOnly(now)) {
		return &domain.ValidationError{Code: domain.CodePastDate, Message: msgPastDate}
	}

	// 2. Выходные дни
	weekday := date.Weekday()
	if weekday == time.Saturday || weekday == time.Sunday {
		return &domain.ValidationError{Code: domain.CodeWeekend, Message: msgWeekend}
	}

	// 3. Рабочие часы: полуоткрытое окно [start, end) по времени начала.
	// Слот, не укладывающийся до закрытия, отсеивает сетка доступности
	if startTime.IsBefore(settings.WorkingHoursStart) || !startTime.IsBefore(settings.WorkingHoursEnd) {
		return &domain.ValidationError{Code: domain.CodeOutsideWorkingHours, Message: msgOutsideWorkingHours}
	}

	// 4. Поздняя запись на завтра: после часа отсечки запись на следующий
	// день запрещена, чтобы утренние слоты не разбирали ночью
	tomorrow := dateOnly(now).AddDate(0, 0, 1)
	if dateOnly(date).Equal(tomorrow) {
		nowTime := types.NewTimeString(now)
		if !nowTime.IsBefore(settings.BlockingTimeAfterHours) {
			return &domain.ValidationError{Code: domain.CodeAfterHoursNextDay, Message: msgAfterHoursNextDay}
		}
	}

	return nil
}

// ValidateMonthlyLimit проверяет месячные ограничения пользователя:
// посещённый приём и лимит подтверждённых записей. Окно всегда текущий
// календарный месяц, а не месяц запрошенной даты
func (s *Service) ValidateMonthlyLimit(ctx context.Context, userID int64, settings *domain.SystemSettings) (*domain.ValidationError, error) {
	now := s.timeProvider.Now()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	monthEnd := monthStart.AddDate(0, 1, -1)

	appointments, err := s.appointmentRepo.GetByUserAndPeriod(ctx, userID, monthStart, monthEnd)
	if err != nil {
		s.logger.Error("ValidateMonthlyLimit: failed to fetch appointments for user=%d: %v", userID, err)
		return nil, fmt.Errorf("%w: ValidateMonthlyLimit - fetch appointments: %v", ErrInternal, err)
	}

	confirmedCount := 0
	for _, appt := range appointments {
		if appt.Status == domain.StatusCompleted {
			return &domain.ValidationError{Code: domain.CodeAlreadyAttendedThisMonth, Message: msgAlreadyAttended}, nil
		}
		if appt.Status == domain.StatusConfirmed {
			confirmedCount++
		}
	}

	if confirmedCount >= settings.MonthlyLimitPerUser {
		return &domain.ValidationError{Code: domain.CodeMonthlyLimitExceeded, Message: msgMonthlyLimitExceeded}, nil
	}

	return nil, nil
}

// ValidateCancellationBlock проверяет временную блокировку записи
// после недавней отмены
func (s *Service) ValidateCancellationBlock(ctx context.Context, userID int64, settings *domain.SystemSettings) (*domain.ValidationError, error) {
	now := s.timeProvider.Now()

	entry, err := s.ledgerRepo.GetOrCreate(ctx, userID, domain.MonthKey(now), settings.MonthlyLimitPerUser)
	if err != nil {
		s.logger.Error("ValidateCancellationBlock: failed to fetch ledger for user=%d: %v", userID, err)
		return nil, fmt.Errorf("%w: ValidateCancellationBlock - fetch ledger: %v", ErrInternal, err)
	}

	if entry.LastCancellationAt == nil {
		return nil, nil
	}

	blockedUntil := entry.LastCancellationAt.Add(time.Duration(settings.CancellationBlockingHours) * time.Hour)
	if now.Before(blockedUntil) {
		// Остаток блокировки в минутах, с округлением вверх
		remaining := int(math.Ceil(blockedUntil.Sub(now).Minutes()))
		s.logger.Warn("ValidateCancellationBlock: user=%d is blocked until %s", userID, blockedUntil.Format(time.RFC3339))
		return &domain.ValidationError{
			Code:    domain.CodeCancellationBlock,
			Message: fmt.Sprintf(msgCancellationBlock, remaining),
		}, nil
	}

	return nil, nil
}

// ValidateAppointment прогоняет запрос на запись через полный конвейер проверок.
// Проверки выполняются строго по порядку, первый отказ завершает конвейер.
// Ошибка валидации возвращается в результате, ошибки инфраструктуры - как error.
func (s *Service) ValidateAppointment(ctx context.Context, userID int64, date time.Time, startTime types.TimeString) (*domain.ValidationResult, error) {
	s.logger.Info("ValidateAppointment: validating user=%d date=%s time=%s",
		userID, date.Format(domain.DateFormat), startTime)

	settings, err := s.GetSettings(ctx)
	if err != nil {
		return nil, err
	}

	// Проверки 1-4: дата и время
	if verr := s.ValidateDateTime(date, startTime, settings); verr != nil {
		return failedResult(verr), nil
	}

	// Проверки 5-6: месячные ограничения
	verr, err := s.ValidateMonthlyLimit(ctx, userID, settings)
	if err != nil {
		return nil, err
	}
	if verr != nil {
		return failedResult(verr), nil
	}

	// Проверка 7: блокировка после отмены
	verr, err = s.ValidateCancellationBlock(ctx, userID, settings)
	if err != nil {
		return nil, err
	}
	if verr != nil {
		return failedResult(verr), nil
	}

	// Проверка 8: доступность слота
	availability, err := s.GetAvailableSlots(ctx, date)
	if err != nil {
		return nil, err
	}

	slotFree := false
	for _, slot := range availability.Slots {
		if slot.Equal(startTime) {
			slotFree = true
			break
		}
	}

	if !slotFree {
		s.logger.Warn("ValidateAppointment: slot %s on %s is not available for user=%d",
			startTime, date.Format(domain.DateFormat), userID)
		// Список свободных слотов прикладывается, чтобы клиент мог предложить альтернативу
		return &domain.ValidationResult{
			Code:           domain.CodeSlotNotAvailable,
			Message:        msgSlotNotAvailable,
			AvailableSlots: availability.Slots,
		}, nil
	}

	s.logger.Info("ValidateAppointment: user=%d passed all checks for date=%s time=%s",
		userID, date.Format(domain.DateFormat), startTime)

	return &domain.ValidationResult{
		Valid:          true,
		AvailableSlots: availability.Slots,
	}, nil
}

// ValidateCancellationLeadTime проверяет, что до начала приёма осталось
// достаточно времени для самостоятельной отмены
func (s *Service) ValidateCancellationLeadTime(appt *domain.Appointment, settings *domain.SystemSettings) *domain.ValidationError {
	now := s.timeProvider.Now()

	deadline := appt.StartsAt().Add(-time.Duration(settings.MinCancellationLeadTimeHrs) * time.Hour)
	if now.After(deadline) {
		return &domain.ValidationError{Code: domain.CodeCancellationLeadTime, Message: msgLeadTimeExceeded}
	}

	return nil
}

func failedResult(verr *domain.ValidationError) *domain.ValidationResult {
	return &domain.ValidationResult{
		Code:    verr.Code,
		Message: verr.Message,
	}
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
