package query

import (
	"context"
	"testing"
	"time"

	"github.com/mentor-bridge/mentor-bridge-hub/internal/domain/availability"
	"github.com/mentor-bridge/mentor-bridge-hub/internal/domain/session"
	"github.com/mentor-bridge/mentor-bridge-hub/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// slotsEnv - обработчик слотов поверх фейков с вторничным блоком
// 09:00-12:00 (UTC, 45-минутные сессии, без буфера).
func slotsEnv(t *testing.T) (*GetAvailableSlotsHandler, *fakeSessionRepo) {
	t.Helper()

	start, err := shared.NewTimeOfDay(9, 0)
	require.NoError(t, err)
	end, err := shared.NewTimeOfDay(12, 0)
	require.NoError(t, err)

	availRepo := &fakeAvailabilityRepo{
		schedules: map[shared.MentorID]*availability.MentorAvailability{
			shared.MentorID(matchMentorID): {
				MentorID:  shared.MentorID(matchMentorID),
				Timezone:  shared.Timezone("UTC"),
				Durations: []int{45},
				WeeklyBlocks: []availability.WeeklyBlock{
					{Day: time.Tuesday, Range: availability.TimeRange{Start: start, End: end}},
				},
			},
		},
	}
	sessionRepo := &fakeSessionRepo{}
	return NewGetAvailableSlotsHandler(availRepo, sessionRepo), sessionRepo
}

func slotsQuery() GetAvailableSlotsQuery {
	return GetAvailableSlotsQuery{
		MentorID:        matchMentorID,
		Date:            availability.NewDate(2026, time.March, 10),
		DurationMinutes: 45,
	}
}

func TestGetAvailableSlots_ExpandsSchedule(t *testing.T) {
	handler, _ := slotsEnv(t)

	result, err := handler.Handle(context.Background(), slotsQuery())
	require.NoError(t, err)

	assert.Equal(t, shared.Timezone("UTC"), result.Timezone)
	require.Len(t, result.Slots, 4)
	assert.Equal(t, "09:00", result.Slots[0].Start.Format("15:04"))
	assert.Equal(t, "11:15", result.Slots[3].Start.Format("15:04"))
}

func TestGetAvailableSlots_SubtractsReservedSessions(t *testing.T) {
	handler, sessionRepo := slotsEnv(t)

	booked := time.Date(2026, time.March, 10, 9, 0, 0, 0, time.UTC)
	s, err := session.NewSession(session.NewSessionParams{
		ID:         shared.SessionID("33333333-3333-3333-3333-333333333333"),
		StudentID:  shared.StudentID(matchStudentID),
		MentorID:   shared.MentorID(matchMentorID),
		Start:      booked,
		End:        booked.Add(45 * time.Minute),
		Connection: session.ConnectionVideoCall,
	})
	require.NoError(t, err)
	sessionRepo.sessions = append(sessionRepo.sessions, s)

	result, err := handler.Handle(context.Background(), slotsQuery())
	require.NoError(t, err)

	require.Len(t, result.Slots, 3)
	assert.Equal(t, "09:45", result.Slots[0].Start.Format("15:04"))
}

func TestGetAvailableSlots_Validation(t *testing.T) {
	handler, _ := slotsEnv(t)

	tests := []struct {
		name    string
		mutate  func(*GetAvailableSlotsQuery)
		wantErr error
	}{
		{"invalid mentor id", func(q *GetAvailableSlotsQuery) { q.MentorID = "nope" }, shared.ErrInvalidID},
		{"missing date", func(q *GetAvailableSlotsQuery) { q.Date = availability.Date{} }, shared.ErrEmptyValue},
		{"non-positive duration", func(q *GetAvailableSlotsQuery) { q.DurationMinutes = 0 }, shared.ErrValueOutOfRange},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := slotsQuery()
			tt.mutate(&q)
			_, err := handler.Handle(context.Background(), q)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestGetAvailableSlots_UnknownMentor(t *testing.T) {
	handler, _ := slotsEnv(t)

	q := slotsQuery()
	q.MentorID = otherMentorID

	_, err := handler.Handle(context.Background(), q)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestGetAvailableSlots_DisallowedDuration(t *testing.T) {
	handler, _ := slotsEnv(t)

	q := slotsQuery()
	q.DurationMinutes = 60

	_, err := handler.Handle(context.Background(), q)
	assert.ErrorIs(t, err, shared.ErrValidation)
}
