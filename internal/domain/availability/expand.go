package availability

// ══════════════════════════════════════════════════════════════════════════════
// AVAILABILITY EXPANDER
// Разворачивает недельные блоки и исключения в конкретные интервалы одной
// календарной даты. Порядок применения: исключение точной даты всегда
// побеждает недельный шаблон.
// ══════════════════════════════════════════════════════════════════════════════

// BlocksForDate возвращает интервалы доступности для даты.
//
// Правила:
//   - blocked-исключение: пустой список, дата закрыта целиком;
//   - override-исключение: его блоки замещают недельные только на эту дату;
//   - иначе берутся недельные блоки с совпадающим днём недели.
func BlocksForDate(a *MentorAvailability, date Date) []TimeRange {
	if exc, ok := a.ExceptionFor(date); ok {
		if exc.Kind == ExceptionBlocked {
			return []TimeRange{}
		}
		blocks := make([]TimeRange, len(exc.Blocks))
		copy(blocks, exc.Blocks)
		return blocks
	}

	weekday := date.Weekday()
	blocks := make([]TimeRange, 0, len(a.WeeklyBlocks))
	for _, wb := range a.WeeklyBlocks {
		if wb.Day == weekday {
			blocks = append(blocks, wb.Range)
		}
	}
	return blocks
}
