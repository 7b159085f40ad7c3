package validation

import (
	"fmt"

	"github.com/avkuzmin/ACP-AppointmentService/internal/domain"
	"github.com/avkuzmin/ACP-AppointmentService/pkg/types"
)

// GenerateSlots строит сетку слотов рабочего дня из настроек.
// Слоты идут с шагом длительности приёма; слот попадает в сетку,
// только если приём целиком укладывается в рабочие часы.
func GenerateSlots(settings *domain.SystemSettings) ([]types.TimeString, error) {
	if settings.AppointmentDurationMinutes <= 0 {
		return nil, fmt.Errorf("%w: GenerateSlots - non-positive duration %d", ErrInvalidInput, settings.AppointmentDurationMinutes)
	}
	if !settings.WorkingHoursStart.IsBefore(settings.WorkingHoursEnd) {
		return nil, fmt.Errorf("%w: GenerateSlots - working hours start %s is not before end %s",
			ErrInvalidInput, settings.WorkingHoursStart, settings.WorkingHoursEnd)
	}

	slots := make([]types.TimeString, 0)
	current := settings.WorkingHoursStart

	for {
		end, err := current.AddMinutes(settings.AppointmentDurationMinutes)
		if err != nil {
			// Приём вышел за полночь - сетка закончилась
			break
		}
		if end.IsAfter(settings.WorkingHoursEnd) {
			break
		}

		slots = append(slots, current)
		current = end
	}

	return slots, nil
}
