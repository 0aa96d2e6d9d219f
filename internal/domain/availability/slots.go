package availability

import (
	"time"

	"github.com/mentor-bridge/mentor-bridge-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// SLOT GENERATOR
// Нарезает интервалы даты на слоты выбранной длительности и отсеивает
// конфликты с уже занятыми сессиями. Слоты эфемерны: считаются заново на
// каждый запрос и никогда не сохраняются.
// ══════════════════════════════════════════════════════════════════════════════

// TimeSlot - конкретный бронируемый слот.
type TimeSlot struct {
	// Start - момент начала.
	Start time.Time `json:"start"`

	// End - момент конца (строго позже начала).
	End time.Time `json:"end"`

	// Available - свободен ли слот с учётом буфера.
	Available bool `json:"available"`
}

// ReservedSpan - занятый интервал существующей сессии
// (pending, confirmed или reschedule_proposed).
type ReservedSpan struct {
	Start time.Time
	End   time.Time
}

// GenerateSlots возвращает свободные слоты даты для одной длительности.
//
// Алгоритм: внутри каждого интервала даты курсор идёт от начала интервала;
// очередной кандидат длиной duration принимается, пока его конец не выходит
// за конец интервала; после кандидата курсор сдвигается на duration+buffer
// (буфер вставляется только между сгенерированными кандидатами). Кандидат
// недоступен, если пересекает занятый интервал, расширенный буфером
// симметрично в обе стороны. При достигнутом дневном лимите сессий слоты
// не генерируются вовсе.
func GenerateSlots(a *MentorAvailability, date Date, durationMinutes int, reserved []ReservedSpan) ([]TimeSlot, error) {
	const op = "GenerateSlots"

	if err := a.Validate(); err != nil {
		return nil, err
	}
	if !a.AllowsDuration(durationMinutes) {
		return nil, shared.NewDomainError("availability", op, shared.ErrValidation,
			"requested session duration is not allowed by the mentor")
	}

	if a.MaxSessionsPerDay > 0 && len(reserved) >= a.MaxSessionsPerDay {
		return []TimeSlot{}, nil
	}

	loc, err := a.Timezone.Location()
	if err != nil {
		return nil, err
	}

	duration := time.Duration(durationMinutes) * time.Minute
	buffer := time.Duration(a.BufferMinutes) * time.Minute

	slots := make([]TimeSlot, 0)
	for _, block := range BlocksForDate(a, date) {
		blockStart := block.Start.At(date.Year, date.Month, date.Day, loc)
		blockEnd := block.End.At(date.Year, date.Month, date.Day, loc)

		for cursor := blockStart; !cursor.Add(duration).After(blockEnd); cursor = cursor.Add(duration + buffer) {
			slot := TimeSlot{
				Start:     cursor,
				End:       cursor.Add(duration),
				Available: !conflictsWithReserved(cursor, cursor.Add(duration), reserved, buffer),
			}
			if slot.Available {
				slots = append(slots, slot)
			}
		}
	}

	return slots, nil
}

// conflictsWithReserved проверяет пересечение кандидата с занятыми
// интервалами, расширенными буфером с обеих сторон.
func conflictsWithReserved(start, end time.Time, reserved []ReservedSpan, buffer time.Duration) bool {
	for _, span := range reserved {
		guardedStart := span.Start.Add(-buffer)
		guardedEnd := span.End.Add(buffer)
		if start.Before(guardedEnd) && guardedStart.Before(end) {
			return true
		}
	}
	return false
}

// Overlaps проверяет пересечение двух интервалов [aStart,aEnd) и [bStart,bEnd).
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && bStart.Before(aEnd)
}
