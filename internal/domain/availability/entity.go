// Package availability реализует расписание менторов: недельные блоки,
// исключения по датам и генерацию конкретных бронируемых слотов.
package availability

import (
	"fmt"
	"time"

	"github.com/mentor-bridge/mentor-bridge-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// VALUE OBJECTS
// ══════════════════════════════════════════════════════════════════════════════

// Date - календарная дата без времени и таймзоны.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// NewDate создаёт дату из компонент.
func NewDate(year int, month time.Month, day int) Date {
	return Date{Year: year, Month: month, Day: day}
}

// DateOf извлекает календарную дату из момента времени в его локации.
func DateOf(t time.Time) Date {
	return Date{Year: t.Year(), Month: t.Month(), Day: t.Day()}
}

// ParseDate разбирает дату в формате "2006-01-02".
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return Date{}, shared.WrapError("availability", "ParseDate", shared.ErrInvalidFormat,
			fmt.Sprintf("expected YYYY-MM-DD, got %q", s), err)
	}
	return DateOf(t), nil
}

// String возвращает дату в формате "2006-01-02".
func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// IsZero проверяет, что дата не заполнена.
func (d Date) IsZero() bool {
	return d.Year == 0
}

// Weekday возвращает день недели даты.
func (d Date) Weekday() time.Weekday {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC).Weekday()
}

// In возвращает полночь этой даты в указанной локации.
func (d Date) In(loc *time.Location) time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, loc)
}

// TimeRange - интервал внутри одного дня. Конец строго позже начала.
type TimeRange struct {
	// Start - начало интервала.
	Start shared.TimeOfDay

	// End - конец интервала (строго позже начала).
	End shared.TimeOfDay
}

// Validate проверяет инвариант интервала.
func (r TimeRange) Validate() error {
	if !r.Start.IsValid() || !r.End.IsValid() {
		return shared.NewDomainError("availability", "TimeRange.Validate",
			shared.ErrValueOutOfRange, "time of day out of range")
	}
	if !r.Start.Before(r.End) {
		return shared.NewDomainError("availability", "TimeRange.Validate",
			shared.ErrValidation, "range end must be strictly after start")
	}
	return nil
}

// Minutes возвращает длительность интервала в минутах.
func (r TimeRange) Minutes() int {
	return r.End.Minutes() - r.Start.Minutes()
}

// String возвращает интервал в формате "HH:MM-HH:MM".
func (r TimeRange) String() string {
	return r.Start.String() + "-" + r.End.String()
}

// ══════════════════════════════════════════════════════════════════════════════
// WEEKLY BLOCKS & EXCEPTIONS
// ══════════════════════════════════════════════════════════════════════════════

// WeeklyBlock - повторяющийся недельный блок доступности.
type WeeklyBlock struct {
	// Day - день недели (0 = воскресенье, как в time.Weekday).
	Day time.Weekday

	// Range - интервал внутри дня.
	Range TimeRange
}

// Validate проверяет корректность блока.
func (b WeeklyBlock) Validate() error {
	if b.Day < time.Sunday || b.Day > time.Saturday {
		return shared.NewDomainError("availability", "WeeklyBlock.Validate",
			shared.ErrValueOutOfRange, "day of week out of range")
	}
	return b.Range.Validate()
}

// ExceptionKind определяет тип исключения по дате.
type ExceptionKind string

const (
	// ExceptionBlocked - дата полностью закрыта.
	ExceptionBlocked ExceptionKind = "blocked"

	// ExceptionOverride - список блоков даты заменяет недельные блоки.
	ExceptionOverride ExceptionKind = "override"
)

// IsValid проверяет корректность значения.
func (k ExceptionKind) IsValid() bool {
	return k == ExceptionBlocked || k == ExceptionOverride
}

// Exception - исключение для конкретной календарной даты.
// Исключения имеют приоритет над недельными блоками.
type Exception struct {
	// Date - дата, к которой относится исключение.
	Date Date

	// Kind - blocked или override.
	Kind ExceptionKind

	// Blocks - замещающие блоки (только для override).
	Blocks []TimeRange
}

// Validate проверяет корректность исключения.
func (e Exception) Validate() error {
	if e.Date.IsZero() {
		return shared.NewDomainError("availability", "Exception.Validate",
			shared.ErrEmptyValue, "exception date is required")
	}
	if !e.Kind.IsValid() {
		return shared.NewDomainError("availability", "Exception.Validate",
			shared.ErrValidation, "unknown exception kind: "+string(e.Kind))
	}
	if e.Kind == ExceptionBlocked && len(e.Blocks) > 0 {
		return shared.NewDomainError("availability", "Exception.Validate",
			shared.ErrValidation, "blocked exception cannot carry blocks")
	}
	for _, block := range e.Blocks {
		if err := block.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// ══════════════════════════════════════════════════════════════════════════════
// MENTOR AVAILABILITY
// Принадлежит ментору 1:1 и меняется только им самим.
// ══════════════════════════════════════════════════════════════════════════════

// MentorAvailability - расписание одного ментора.
type MentorAvailability struct {
	// MentorID - владелец расписания.
	MentorID shared.MentorID

	// Timezone - таймзона, в которой заданы блоки.
	Timezone shared.Timezone

	// Durations - разрешённые длительности сессий в минутах.
	Durations []int

	// BufferMinutes - обязательная пауза между сессиями.
	BufferMinutes int

	// MaxSessionsPerDay - лимит сессий в день (0 = без лимита).
	MaxSessionsPerDay int

	// WeeklyBlocks - повторяющиеся недельные блоки.
	WeeklyBlocks []WeeklyBlock

	// Exceptions - исключения по датам.
	Exceptions []Exception

	// UpdatedAt - когда расписание менялось в последний раз.
	UpdatedAt time.Time
}

// Validate проверяет все инварианты расписания.
func (a *MentorAvailability) Validate() error {
	const op = "MentorAvailability.Validate"

	if a.MentorID.IsEmpty() {
		return shared.NewDomainError("availability", op, shared.ErrEmptyValue, "mentor id is required")
	}
	if !a.Timezone.IsValid() {
		return shared.NewDomainError("availability", op, shared.ErrInvalidFormat,
			"unknown timezone: "+a.Timezone.String())
	}
	if len(a.WeeklyBlocks) == 0 {
		return shared.NewDomainError("availability", op, shared.ErrValidation,
			"availability requires at least one weekly block")
	}
	if len(a.Durations) == 0 {
		return shared.NewDomainError("availability", op, shared.ErrValidation,
			"availability requires at least one allowed duration")
	}
	for _, d := range a.Durations {
		if d <= 0 {
			return shared.NewDomainError("availability", op, shared.ErrValueOutOfRange,
				"session duration must be positive")
		}
	}
	if a.BufferMinutes < 0 {
		return shared.NewDomainError("availability", op, shared.ErrValueOutOfRange,
			"buffer minutes cannot be negative")
	}
	if a.MaxSessionsPerDay < 0 {
		return shared.NewDomainError("availability", op, shared.ErrValueOutOfRange,
			"max sessions per day cannot be negative")
	}
	for _, block := range a.WeeklyBlocks {
		if err := block.Validate(); err != nil {
			return err
		}
	}
	for _, exc := range a.Exceptions {
		if err := exc.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// AllowsDuration проверяет, разрешена ли длительность сессии.
func (a *MentorAvailability) AllowsDuration(minutes int) bool {
	for _, d := range a.Durations {
		if d == minutes {
			return true
		}
	}
	return false
}

// ExceptionFor возвращает исключение для конкретной даты, если оно есть.
func (a *MentorAvailability) ExceptionFor(date Date) (Exception, bool) {
	for _, exc := range a.Exceptions {
		if exc.Date == date {
			return exc, true
		}
	}
	return Exception{}, false
}
