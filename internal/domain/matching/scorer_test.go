package matching

import (
	"testing"
	"time"

	"github.com/mentor-bridge/mentor-bridge-hub/internal/domain/profile"
	"github.com/mentor-bridge/mentor-bridge-hub/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var scoreAt = time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)

func testStudent() *profile.StudentProfile {
	return &profile.StudentProfile{
		ID:                   shared.StudentID("11111111-1111-1111-1111-111111111111"),
		DisplayName:          "Aruzhan",
		Goals:                []string{"academic_support", "career_guidance"},
		CommunicationMethods: []string{"video_call", "text_chat"},
		GuidanceStyle:        profile.GuidanceStepByStep,
		Neurodivergence:      profile.NDDisclosed,
		Timezone:             shared.Timezone("UTC"),
		AgeBucket:            profile.AgeBucketHighSchool,
	}
}

func testMentor(id string) *profile.MentorProfile {
	return &profile.MentorProfile{
		ID:                   shared.MentorID(id),
		DisplayName:          "Daniyar",
		FocusAreas:           []string{"academic_support"},
		CommunicationMethods: []string{"video_call", "text_chat"},
		Approaches:           []profile.MentoringApproach{profile.ApproachStructuredGuidance},
		NDExperience:         profile.NDExperienceProfessional,
		Timezone:             shared.Timezone("UTC"),
		Active:               true,
	}
}

func TestScoreMentor_Composite(t *testing.T) {
	student := testStudent()
	mentor := testMentor("22222222-2222-2222-2222-222222222222")

	scored := ScoreMentor(student, mentor, DefaultWeights(), scoreAt)

	// Цели: покрыта 1 из 2. Связь: 2 из 2. Доступность: одна таймзона и
	// нейтральная слотовая часть. Стиль и нейроотличие: полные совпадения.
	assert.InDelta(t, 50, scored.Breakdown.Goals, 0.001)
	assert.InDelta(t, 100, scored.Breakdown.Communication, 0.001)
	assert.InDelta(t, 0.7*100+0.3*50, scored.Breakdown.Availability, 0.001)
	assert.InDelta(t, 100, scored.Breakdown.Style, 0.001)
	assert.InDelta(t, 100, scored.Breakdown.Neurodivergence, 0.001)

	// (50*40 + 100*20 + 85*15 + 100*15 + 100*10) / 100 = 77.75, плюс джиттер.
	assert.InDelta(t, 77.75, float64(scored.Composite), 0.011)
	assert.GreaterOrEqual(t, float64(scored.Composite), 77.75)
}

func TestScoreMentor_JitterIsDeterministic(t *testing.T) {
	student := testStudent()
	mentor := testMentor("22222222-2222-2222-2222-222222222222")

	first := ScoreMentor(student, mentor, DefaultWeights(), scoreAt)
	second := ScoreMentor(student, mentor, DefaultWeights(), scoreAt)

	assert.Equal(t, first.Composite, second.Composite)

	other := ScoreMentor(student, testMentor("33333333-3333-3333-3333-333333333333"), DefaultWeights(), scoreAt)
	delta := float64(first.Composite) - float64(other.Composite)
	if delta < 0 {
		delta = -delta
	}
	assert.Less(t, delta, 0.01, "jitter never changes the order of distinct sub-scores")
}

func TestHardFilter(t *testing.T) {
	student := testStudent()

	tests := []struct {
		name   string
		mutate func(*profile.MentorProfile)
		reason RejectionReason
		passes bool
	}{
		{
			name:   "active mentor passes",
			mutate: func(m *profile.MentorProfile) {},
			passes: true,
		},
		{
			name:   "inactive mentor is rejected",
			mutate: func(m *profile.MentorProfile) { m.Active = false },
			reason: RejectInactive,
		},
		{
			name: "mentor at capacity is rejected",
			mutate: func(m *profile.MentorProfile) {
				m.CurrentMentees = 3
				m.MaxMentees = 3
			},
			reason: RejectAtCapacity,
		},
		{
			name: "age bucket mismatch is rejected",
			mutate: func(m *profile.MentorProfile) {
				m.AcceptedAgeBuckets = []profile.AgeBucket{profile.AgeBucketAdult}
			},
			reason: RejectAgeBucket,
		},
		{
			name: "disjoint slot tags are rejected",
			mutate: func(m *profile.MentorProfile) {
				m.SlotTags = []string{"mon_morning"}
			},
			reason: RejectNoSlotOverlap,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := *student
			s.SlotTags = []string{"tue_evening"}
			mentor := testMentor("22222222-2222-2222-2222-222222222222")
			mentor.SlotTags = []string{"tue_evening"}
			tt.mutate(mentor)

			reason, ok := HardFilter(&s, mentor)
			assert.Equal(t, tt.passes, ok)
			assert.Equal(t, tt.reason, reason)
		})
	}
}

func TestHardFilter_SlotFilterNeedsBothSides(t *testing.T) {
	student := testStudent()
	student.SlotTags = []string{"tue_evening"}

	// Ментор без тегов не отсекается слотовым фильтром.
	mentor := testMentor("22222222-2222-2222-2222-222222222222")
	mentor.SlotTags = nil

	_, ok := HardFilter(student, mentor)
	assert.True(t, ok)
}

func TestScoreAvailability_TimezoneSteps(t *testing.T) {
	tests := []struct {
		name        string
		studentZone string
		mentorZone  string
		tzScore     float64
	}{
		{"same zone", "UTC", "UTC", 100},
		{"one hour apart", "Europe/Berlin", "Europe/London", 85},
		{"two hours apart", "Europe/Kyiv", "Europe/London", 70},
		{"three hours apart", "Europe/Moscow", "Europe/London", 50},
		{"far apart", "Asia/Almaty", "America/New_York", 30},
		{"unresolvable zone treated as far", "Nowhere/Atlantis", "UTC", 30},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			student := testStudent()
			student.Timezone = shared.Timezone(tt.studentZone)
			mentor := testMentor("22222222-2222-2222-2222-222222222222")
			mentor.Timezone = shared.Timezone(tt.mentorZone)

			// Слотовая часть нейтральна: студент не указал теги.
			got := ScoreAvailability(student, mentor, scoreAt)
			assert.InDelta(t, 0.7*tt.tzScore+0.3*50, got, 0.001)
		})
	}
}

func TestScoreStyle(t *testing.T) {
	mentor := testMentor("22222222-2222-2222-2222-222222222222")

	student := testStudent()
	student.GuidanceStyle = profile.GuidanceStepByStep
	assert.InDelta(t, 100, ScoreStyle(student, mentor), 0.001)

	student.GuidanceStyle = profile.GuidanceOpenEnded
	assert.InDelta(t, 0, ScoreStyle(student, mentor), 0.001)

	// Неуказанный стиль трактуется нейтрально.
	student.GuidanceStyle = profile.GuidanceUnspecified
	assert.InDelta(t, 100, ScoreStyle(student, mentor), 0.001)
}

func TestScoreNeurodivergence(t *testing.T) {
	mentor := testMentor("22222222-2222-2222-2222-222222222222")

	student := testStudent()
	student.Neurodivergence = profile.NDDisclosed
	assert.InDelta(t, 100, ScoreNeurodivergence(student, mentor), 0.001)

	mentor.NDExperience = profile.NDExperienceNone
	assert.InDelta(t, 0, ScoreNeurodivergence(student, mentor), 0.001)

	// Нераскрытие никогда не штрафуется: нейтральные 50 независимо от опыта.
	student.Neurodivergence = profile.NDNotDisclosed
	assert.InDelta(t, 50, ScoreNeurodivergence(student, mentor), 0.001)

	student.Neurodivergence = profile.NDPreferNotToSay
	assert.InDelta(t, 50, ScoreNeurodivergence(student, mentor), 0.001)
}

func TestFilterAndScore(t *testing.T) {
	student := testStudent()
	passing := testMentor("22222222-2222-2222-2222-222222222222")
	inactive := testMentor("33333333-3333-3333-3333-333333333333")
	inactive.Active = false

	scored, rejected := FilterAndScore(student, []*profile.MentorProfile{passing, inactive}, DefaultWeights(), scoreAt)

	require.Len(t, scored, 1)
	assert.Equal(t, passing.ID, scored[0].Mentor.ID)
	assert.Equal(t, RejectInactive, rejected[inactive.ID])
}

func TestWeights_Normalized(t *testing.T) {
	w, err := Weights{Goals: 4, Communication: 2, Availability: 1.5, Style: 1.5, Neurodivergence: 1}.Normalized()
	require.NoError(t, err)
	assert.InDelta(t, 100, w.Sum(), 0.001)
	assert.InDelta(t, 40, w.Goals, 0.001)
	assert.InDelta(t, 10, w.Neurodivergence, 0.001)
}

func TestWeights_NormalizedAllZeroFallsBack(t *testing.T) {
	w, err := Weights{}.Normalized()
	assert.Error(t, err)
	assert.ErrorIs(t, err, shared.ErrConfiguration)
	assert.Equal(t, DefaultWeights(), w)
}
