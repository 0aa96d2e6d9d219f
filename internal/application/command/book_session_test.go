package command

import (
	"context"
	"testing"
	"time"

	"github.com/mentor-bridge/mentor-bridge-hub/internal/domain/availability"
	"github.com/mentor-bridge/mentor-bridge-hub/internal/domain/profile"
	"github.com/mentor-bridge/mentor-bridge-hub/internal/domain/session"
	"github.com/mentor-bridge/mentor-bridge-hub/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testStudentID = "11111111-1111-1111-1111-111111111111"
	testMentorID  = "22222222-2222-2222-2222-222222222222"
)

// bookingEnv собирает обработчик бронирования с заполненными фейками:
// студент, активный ментор и расписание со вторничным блоком 09:00-12:00
// (UTC, 45-минутные сессии, без буфера).
type bookingEnv struct {
	handler      *BookSessionHandler
	students     *fakeStudentRepo
	mentors      *fakeMentorRepo
	availability *fakeAvailabilityRepo
	sessions     *fakeSessionRepo
	publisher    *fakePublisher
}

func newBookingEnv(t *testing.T) *bookingEnv {
	t.Helper()

	env := &bookingEnv{
		students:     newFakeStudentRepo(),
		mentors:      newFakeMentorRepo(),
		availability: newFakeAvailabilityRepo(),
		sessions:     newFakeSessionRepo(),
		publisher:    &fakePublisher{},
	}
	env.handler = NewBookSessionHandler(
		env.students, env.mentors, env.availability, env.sessions, env.publisher,
	)

	env.students.students[shared.StudentID(testStudentID)] = &profile.StudentProfile{
		ID:       shared.StudentID(testStudentID),
		Goals:    []string{"academic_support"},
		Timezone: shared.Timezone("UTC"),
	}
	env.mentors.mentors[shared.MentorID(testMentorID)] = &profile.MentorProfile{
		ID:         shared.MentorID(testMentorID),
		FocusAreas: []string{"academic_support"},
		Timezone:   shared.Timezone("UTC"),
		Active:     true,
	}

	start, err := shared.NewTimeOfDay(9, 0)
	require.NoError(t, err)
	end, err := shared.NewTimeOfDay(12, 0)
	require.NoError(t, err)

	env.availability.schedules[shared.MentorID(testMentorID)] = &availability.MentorAvailability{
		MentorID:  shared.MentorID(testMentorID),
		Timezone:  shared.Timezone("UTC"),
		Durations: []int{45},
		WeeklyBlocks: []availability.WeeklyBlock{
			{Day: time.Tuesday, Range: availability.TimeRange{Start: start, End: end}},
		},
	}

	return env
}

// bookingCmd - корректная команда: вторник 2026-03-10, слот 09:00-09:45.
func bookingCmd() BookSessionCommand {
	start := time.Date(2026, time.March, 10, 9, 0, 0, 0, time.UTC)
	return BookSessionCommand{
		StudentID:  testStudentID,
		MentorID:   testMentorID,
		Start:      start,
		End:        start.Add(45 * time.Minute),
		Connection: session.ConnectionVideoCall,
		Note:       "хочу разобрать план подготовки",
	}
}

func TestBookSession_CreatesPendingRequest(t *testing.T) {
	env := newBookingEnv(t)

	result, err := env.handler.Handle(context.Background(), bookingCmd())
	require.NoError(t, err)

	assert.Equal(t, session.StatusPending, result.Status)
	assert.True(t, result.SessionID.IsValid())

	stored, ok := env.sessions.sessions[result.SessionID]
	require.True(t, ok)
	assert.Equal(t, shared.StudentID(testStudentID), stored.StudentID)
	assert.Equal(t, shared.MentorID(testMentorID), stored.MentorID)
	assert.Equal(t, "хочу разобрать план подготовки", stored.Note)

	require.Len(t, env.publisher.events, 1)
	assert.Equal(t, shared.EventSessionRequested, env.publisher.events[0].EventType())
}

func TestBookSession_Validation(t *testing.T) {
	env := newBookingEnv(t)

	tests := []struct {
		name    string
		mutate  func(*BookSessionCommand)
		wantErr error
	}{
		{"invalid student id", func(c *BookSessionCommand) { c.StudentID = "nope" }, shared.ErrInvalidID},
		{"invalid mentor id", func(c *BookSessionCommand) { c.MentorID = "" }, shared.ErrInvalidID},
		{"zero start", func(c *BookSessionCommand) { c.Start = time.Time{} }, shared.ErrEmptyValue},
		{"end before start", func(c *BookSessionCommand) { c.End = c.Start.Add(-time.Minute) }, shared.ErrValidation},
		{"unknown connection", func(c *BookSessionCommand) { c.Connection = "smoke_signals" }, shared.ErrValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := bookingCmd()
			tt.mutate(&cmd)
			_, err := env.handler.Handle(context.Background(), cmd)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	assert.Empty(t, env.sessions.sessions, "invalid commands must not reach the store")
}

func TestBookSession_InactiveMentor(t *testing.T) {
	env := newBookingEnv(t)
	env.mentors.mentors[shared.MentorID(testMentorID)].Active = false

	_, err := env.handler.Handle(context.Background(), bookingCmd())
	assert.ErrorIs(t, err, shared.ErrValidation)
}

func TestBookSession_UnknownStudent(t *testing.T) {
	env := newBookingEnv(t)
	delete(env.students.students, shared.StudentID(testStudentID))

	_, err := env.handler.Handle(context.Background(), bookingCmd())
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestBookSession_DisallowedDuration(t *testing.T) {
	env := newBookingEnv(t)

	cmd := bookingCmd()
	cmd.End = cmd.Start.Add(60 * time.Minute)

	_, err := env.handler.Handle(context.Background(), cmd)
	assert.ErrorIs(t, err, shared.ErrValidation)
}

func TestBookSession_IntervalIsNotASlot(t *testing.T) {
	env := newBookingEnv(t)

	// Правильная длительность, но начало не совпадает с границей слота.
	cmd := bookingCmd()
	cmd.Start = cmd.Start.Add(15 * time.Minute)
	cmd.End = cmd.End.Add(15 * time.Minute)

	_, err := env.handler.Handle(context.Background(), cmd)
	assert.ErrorIs(t, err, shared.ErrSlotTaken)
}

func TestBookSession_SlotAlreadyReserved(t *testing.T) {
	env := newBookingEnv(t)

	first, err := env.handler.Handle(context.Background(), bookingCmd())
	require.NoError(t, err)
	require.True(t, first.SessionID.IsValid())

	_, err = env.handler.Handle(context.Background(), bookingCmd())
	assert.ErrorIs(t, err, shared.ErrSlotTaken)
}

func TestBookSession_GuardedInsertConflict(t *testing.T) {
	env := newBookingEnv(t)

	// Гонка: слот заняли между генерацией и условной вставкой.
	env.sessions.createErr = shared.NewDomainError("session", "CreateGuarded",
		shared.ErrSlotTaken, "slot was taken concurrently")

	_, err := env.handler.Handle(context.Background(), bookingCmd())
	assert.ErrorIs(t, err, shared.ErrSlotTaken)
	assert.Empty(t, env.publisher.events)
}
