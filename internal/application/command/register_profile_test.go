package command

import (
	"context"
	"testing"

	"github.com/mentor-bridge/mentor-bridge-hub/internal/domain/profile"
	"github.com/mentor-bridge/mentor-bridge-hub/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterProfile_Student(t *testing.T) {
	studentRepo := newFakeStudentRepo()
	handler := NewRegisterProfileHandler(studentRepo, newFakeMentorRepo(), nil)

	result, err := handler.HandleStudent(context.Background(), RegisterStudentProfileCommand{
		Profile: profile.RawStudentProfile{
			ID:          testStudentID,
			DisplayName: "Айгерим",
			Goals:       []string{" Academic_Support ", "career_guidance"},
			Timezone:    "Asia/Almaty",
			Age:         16,
		},
	})
	require.NoError(t, err)
	assert.Equal(t, testStudentID, result.ID)
	assert.False(t, result.NormalizedAt.IsZero())

	// В хранилище лежит уже нормализованная анкета.
	stored, err := studentRepo.GetByID(context.Background(), shared.StudentID(testStudentID))
	require.NoError(t, err)
	assert.Equal(t, []string{"academic_support", "career_guidance"}, stored.Goals)
	assert.Equal(t, profile.AgeBucketHighSchool, stored.AgeBucket)
}

func TestRegisterProfile_StudentValidation(t *testing.T) {
	handler := NewRegisterProfileHandler(newFakeStudentRepo(), newFakeMentorRepo(), nil)

	_, err := handler.HandleStudent(context.Background(), RegisterStudentProfileCommand{
		Profile: profile.RawStudentProfile{ID: testStudentID},
	})
	assert.ErrorIs(t, err, shared.ErrValidation)
}

func TestRegisterProfile_Mentor(t *testing.T) {
	mentorRepo := newFakeMentorRepo()
	handler := NewRegisterProfileHandler(newFakeStudentRepo(), mentorRepo, nil)

	result, err := handler.HandleMentor(context.Background(), RegisterMentorProfileCommand{
		Profile: profile.RawMentorProfile{
			ID:           testMentorID,
			DisplayName:  "Данияр",
			FocusAreas:   []string{"career_guidance"},
			NDExperience: "professional_experience",
			Timezone:     "Asia/Almaty",
			MaxMentees:   4,
		},
	})
	require.NoError(t, err)
	assert.Equal(t, testMentorID, result.ID)

	stored, err := mentorRepo.GetByID(context.Background(), shared.MentorID(testMentorID))
	require.NoError(t, err)
	assert.True(t, stored.Active, "активность по умолчанию включена")
	assert.Equal(t, profile.NDExperienceProfessional, stored.NDExperience)
}

func TestRegisterProfile_InvalidatesMatchCache(t *testing.T) {
	invalidator := &fakeMatchInvalidator{}
	handler := NewRegisterProfileHandler(newFakeStudentRepo(), newFakeMentorRepo(), invalidator)

	_, err := handler.HandleStudent(context.Background(), RegisterStudentProfileCommand{
		Profile: profile.RawStudentProfile{
			ID:       testStudentID,
			Goals:    []string{"academic_support"},
			Timezone: "UTC",
		},
	})
	require.NoError(t, err)

	// Перерегистрация студента сбрасывает только его прогон.
	assert.Equal(t, []string{testStudentID}, invalidator.invalidated)
	assert.Zero(t, invalidator.invalidateAlls)

	_, err = handler.HandleMentor(context.Background(), RegisterMentorProfileCommand{
		Profile: profile.RawMentorProfile{
			ID:         testMentorID,
			FocusAreas: []string{"academic_support"},
			Timezone:   "UTC",
			MaxMentees: 4,
		},
	})
	require.NoError(t, err)

	// Менторская запись может попасть в прогон любого студента.
	assert.Equal(t, 1, invalidator.invalidateAlls)
}
