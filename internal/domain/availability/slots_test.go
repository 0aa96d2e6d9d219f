package availability

import (
	"testing"
	"time"

	"github.com/mentor-bridge/mentor-bridge-hub/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const slotsMentorID = "22222222-2222-2222-2222-222222222222"

// tod is a test shorthand for building a TimeOfDay from hour and minute.
func tod(t *testing.T, hour, minute int) shared.TimeOfDay {
	t.Helper()
	v, err := shared.NewTimeOfDay(hour, minute)
	require.NoError(t, err)
	return v
}

// tuesday 2026-03-10 is used throughout: a plain weekday with no DST edge.
var testDate = NewDate(2026, time.March, 10)

func testAvailability(t *testing.T) *MentorAvailability {
	t.Helper()
	return &MentorAvailability{
		MentorID:  shared.MentorID(slotsMentorID),
		Timezone:  shared.Timezone("UTC"),
		Durations: []int{30, 45},
		WeeklyBlocks: []WeeklyBlock{
			{Day: time.Tuesday, Range: TimeRange{Start: tod(t, 9, 0), End: tod(t, 12, 0)}},
		},
	}
}

func slotStarts(slots []TimeSlot) []string {
	starts := make([]string, 0, len(slots))
	for _, s := range slots {
		starts = append(starts, s.Start.Format("15:04"))
	}
	return starts
}

func TestGenerateSlots_CutsBlockIntoSlots(t *testing.T) {
	a := testAvailability(t)

	slots, err := GenerateSlots(a, testDate, 45, nil)
	require.NoError(t, err)

	// Блок 09:00-12:00 даёт четыре 45-минутных слота; пятый (12:00-12:45)
	// вышел бы за конец блока.
	assert.Equal(t, []string{"09:00", "09:45", "10:30", "11:15"}, slotStarts(slots))
	for _, slot := range slots {
		assert.True(t, slot.Available)
		assert.Equal(t, 45*time.Minute, slot.End.Sub(slot.Start))
	}
}

func TestGenerateSlots_BufferBetweenSlots(t *testing.T) {
	a := testAvailability(t)
	a.BufferMinutes = 15

	slots, err := GenerateSlots(a, testDate, 45, nil)
	require.NoError(t, err)

	// Курсор шагает на 45+15 минут: 09:00, 10:00, 11:00.
	assert.Equal(t, []string{"09:00", "10:00", "11:00"}, slotStarts(slots))
}

func TestGenerateSlots_ReservedConflict(t *testing.T) {
	a := testAvailability(t)

	loc := time.UTC
	reserved := []ReservedSpan{
		{
			Start: time.Date(2026, time.March, 10, 9, 45, 0, 0, loc),
			End:   time.Date(2026, time.March, 10, 10, 30, 0, 0, loc),
		},
	}

	slots, err := GenerateSlots(a, testDate, 45, reserved)
	require.NoError(t, err)

	assert.Equal(t, []string{"09:00", "10:30", "11:15"}, slotStarts(slots))
}

func TestGenerateSlots_ReservedExpandedByBuffer(t *testing.T) {
	a := testAvailability(t)
	a.BufferMinutes = 15

	loc := time.UTC
	reserved := []ReservedSpan{
		{
			Start: time.Date(2026, time.March, 10, 10, 0, 0, 0, loc),
			End:   time.Date(2026, time.March, 10, 10, 45, 0, 0, loc),
		},
	}

	slots, err := GenerateSlots(a, testDate, 45, reserved)
	require.NoError(t, err)

	// Занятый интервал расширяется буфером в обе стороны (09:45-11:00):
	// слот 10:00 вытеснен, а 11:00 начинается ровно на границе и выживает.
	assert.Equal(t, []string{"09:00", "11:00"}, slotStarts(slots))
}

func TestGenerateSlots_DailyCapReached(t *testing.T) {
	a := testAvailability(t)
	a.MaxSessionsPerDay = 2

	loc := time.UTC
	reserved := []ReservedSpan{
		{Start: time.Date(2026, time.March, 10, 9, 0, 0, 0, loc), End: time.Date(2026, time.March, 10, 9, 45, 0, 0, loc)},
		{Start: time.Date(2026, time.March, 10, 10, 0, 0, 0, loc), End: time.Date(2026, time.March, 10, 10, 45, 0, 0, loc)},
	}

	slots, err := GenerateSlots(a, testDate, 45, reserved)
	require.NoError(t, err)
	assert.Empty(t, slots)
}

func TestGenerateSlots_DisallowedDuration(t *testing.T) {
	a := testAvailability(t)

	_, err := GenerateSlots(a, testDate, 60, nil)
	assert.ErrorIs(t, err, shared.ErrValidation)
}

func TestGenerateSlots_WrongWeekday(t *testing.T) {
	a := testAvailability(t)

	// 2026-03-11 - среда, недельный блок задан на вторник.
	slots, err := GenerateSlots(a, NewDate(2026, time.March, 11), 45, nil)
	require.NoError(t, err)
	assert.Empty(t, slots)
}

func TestBlocksForDate_BlockedException(t *testing.T) {
	a := testAvailability(t)
	a.Exceptions = []Exception{{Date: testDate, Kind: ExceptionBlocked}}

	assert.Empty(t, BlocksForDate(a, testDate))

	slots, err := GenerateSlots(a, testDate, 45, nil)
	require.NoError(t, err)
	assert.Empty(t, slots)
}

func TestBlocksForDate_OverrideException(t *testing.T) {
	a := testAvailability(t)
	a.Exceptions = []Exception{{
		Date:   testDate,
		Kind:   ExceptionOverride,
		Blocks: []TimeRange{{Start: tod(t, 14, 0), End: tod(t, 15, 30)}},
	}}

	blocks := BlocksForDate(a, testDate)
	require.Len(t, blocks, 1)
	assert.Equal(t, "14:00-15:30", blocks[0].String())

	// Override замещает недельный шаблон только на свою дату.
	slots, err := GenerateSlots(a, testDate, 45, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"14:00", "14:45"}, slotStarts(slots))
}

func TestGenerateSlots_SlotsInMentorTimezone(t *testing.T) {
	a := testAvailability(t)
	a.Timezone = shared.Timezone("Asia/Almaty")

	slots, err := GenerateSlots(a, testDate, 45, nil)
	require.NoError(t, err)
	require.NotEmpty(t, slots)

	loc, err := time.LoadLocation("Asia/Almaty")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, time.March, 10, 9, 0, 0, 0, loc), slots[0].Start)
}

func TestMentorAvailability_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*MentorAvailability)
	}{
		{"missing mentor id", func(a *MentorAvailability) { a.MentorID = "" }},
		{"unknown timezone", func(a *MentorAvailability) { a.Timezone = "Mars/Olympus" }},
		{"no weekly blocks", func(a *MentorAvailability) { a.WeeklyBlocks = nil }},
		{"no durations", func(a *MentorAvailability) { a.Durations = nil }},
		{"non-positive duration", func(a *MentorAvailability) { a.Durations = []int{0} }},
		{"negative buffer", func(a *MentorAvailability) { a.BufferMinutes = -1 }},
		{"negative daily cap", func(a *MentorAvailability) { a.MaxSessionsPerDay = -1 }},
		{"inverted range", func(a *MentorAvailability) {
			a.WeeklyBlocks[0].Range = TimeRange{Start: tod(t, 12, 0), End: tod(t, 9, 0)}
		}},
		{"blocked exception with blocks", func(a *MentorAvailability) {
			a.Exceptions = []Exception{{
				Date:   testDate,
				Kind:   ExceptionBlocked,
				Blocks: []TimeRange{{Start: tod(t, 9, 0), End: tod(t, 10, 0)}},
			}}
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := testAvailability(t)
			tt.mutate(a)
			assert.Error(t, a.Validate())
		})
	}

	assert.NoError(t, testAvailability(t).Validate())
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2026-03-10")
	require.NoError(t, err)
	assert.Equal(t, testDate, d)
	assert.Equal(t, "2026-03-10", d.String())
	assert.Equal(t, time.Tuesday, d.Weekday())

	_, err = ParseDate("10.03.2026")
	assert.ErrorIs(t, err, shared.ErrInvalidFormat)
}
