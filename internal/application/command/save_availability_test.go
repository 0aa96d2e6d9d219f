package command

import (
	"context"
	"testing"
	"time"

	"github.com/mentor-bridge/mentor-bridge-hub/internal/domain/availability"
	"github.com/mentor-bridge/mentor-bridge-hub/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validSchedule(t *testing.T) availability.MentorAvailability {
	t.Helper()

	start, err := shared.NewTimeOfDay(18, 0)
	require.NoError(t, err)
	end, err := shared.NewTimeOfDay(21, 0)
	require.NoError(t, err)

	return availability.MentorAvailability{
		MentorID:  shared.MentorID(testMentorID),
		Timezone:  shared.Timezone("Asia/Almaty"),
		Durations: []int{30, 60},
		WeeklyBlocks: []availability.WeeklyBlock{
			{Day: time.Thursday, Range: availability.TimeRange{Start: start, End: end}},
		},
	}
}

func TestSaveAvailability_ReplacesSchedule(t *testing.T) {
	repo := newFakeAvailabilityRepo()
	publisher := &fakePublisher{}
	handler := NewSaveAvailabilityHandler(repo, publisher, nil)

	result, err := handler.Handle(context.Background(), SaveAvailabilityCommand{
		Actor:        shared.Actor{ID: testMentorID, Role: shared.RoleMentor},
		Availability: validSchedule(t),
	})
	require.NoError(t, err)

	assert.Equal(t, shared.MentorID(testMentorID), result.MentorID)
	assert.False(t, result.UpdatedAt.IsZero())

	require.NotNil(t, repo.saved)
	assert.Equal(t, []int{30, 60}, repo.saved.Durations)

	require.Len(t, publisher.events, 1)
	assert.Equal(t, shared.EventAvailabilityUpdated, publisher.events[0].EventType())
}

func TestSaveAvailability_OnlyOwningMentor(t *testing.T) {
	repo := newFakeAvailabilityRepo()
	handler := NewSaveAvailabilityHandler(repo, &fakePublisher{}, nil)

	tests := []struct {
		name  string
		actor shared.Actor
	}{
		{"missing actor", shared.Actor{}},
		{"student actor", shared.Actor{ID: testStudentID, Role: shared.RoleStudent}},
		{"different mentor", shared.Actor{ID: testStudentID, Role: shared.RoleMentor}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := handler.Handle(context.Background(), SaveAvailabilityCommand{
				Actor:        tt.actor,
				Availability: validSchedule(t),
			})
			assert.Error(t, err)
		})
	}

	assert.Nil(t, repo.saved)
}

func TestSaveAvailability_InvalidatesMatchCache(t *testing.T) {
	invalidator := &fakeMatchInvalidator{}
	handler := NewSaveAvailabilityHandler(newFakeAvailabilityRepo(), &fakePublisher{}, invalidator)

	_, err := handler.Handle(context.Background(), SaveAvailabilityCommand{
		Actor:        shared.Actor{ID: testMentorID, Role: shared.RoleMentor},
		Availability: validSchedule(t),
	})
	require.NoError(t, err)

	// Новое расписание устаревает закэшированные прогоны всех студентов,
	// не дожидаясь TTL.
	assert.Equal(t, 1, invalidator.invalidateAlls)
}

func TestSaveAvailability_RejectedWriteKeepsCache(t *testing.T) {
	invalidator := &fakeMatchInvalidator{}
	handler := NewSaveAvailabilityHandler(newFakeAvailabilityRepo(), &fakePublisher{}, invalidator)

	schedule := validSchedule(t)
	schedule.Durations = nil

	_, err := handler.Handle(context.Background(), SaveAvailabilityCommand{
		Actor:        shared.Actor{ID: testMentorID, Role: shared.RoleMentor},
		Availability: schedule,
	})
	require.Error(t, err)

	assert.Zero(t, invalidator.invalidateAlls)
}

func TestSaveAvailability_InvalidSchedule(t *testing.T) {
	handler := NewSaveAvailabilityHandler(newFakeAvailabilityRepo(), &fakePublisher{}, nil)

	schedule := validSchedule(t)
	schedule.Durations = nil

	_, err := handler.Handle(context.Background(), SaveAvailabilityCommand{
		Actor:        shared.Actor{ID: testMentorID, Role: shared.RoleMentor},
		Availability: schedule,
	})
	assert.ErrorIs(t, err, shared.ErrValidation)
}
