package query

import (
	"context"
	"testing"
	"time"

	"github.com/mentor-bridge/mentor-bridge-hub/internal/domain/matching"
	"github.com/mentor-bridge/mentor-bridge-hub/internal/domain/profile"
	"github.com/mentor-bridge/mentor-bridge-hub/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	matchStudentID = "11111111-1111-1111-1111-111111111111"
	matchMentorID  = "22222222-2222-2222-2222-222222222222"
	otherMentorID  = "44444444-4444-4444-4444-444444444444"
)

func rawStudent() profile.RawStudentProfile {
	return profile.RawStudentProfile{
		ID:                   matchStudentID,
		DisplayName:          "Айгерим",
		Goals:                []string{"academic_support"},
		CommunicationMethods: []string{"video_call"},
		Timezone:             "UTC",
		Age:                  16,
	}
}

func rawMentor(id string) profile.RawMentorProfile {
	return profile.RawMentorProfile{
		ID:                   id,
		DisplayName:          "Ментор " + id[:4],
		FocusAreas:           []string{"academic_support"},
		CommunicationMethods: []string{"video_call"},
		Timezone:             "UTC",
	}
}

func activeMentor(t *testing.T, id string) *profile.MentorProfile {
	t.Helper()
	mentor, err := profile.NormalizeMentor(rawMentor(id))
	require.NoError(t, err)
	return mentor
}

func TestFindMatches_ExplicitPool(t *testing.T) {
	repo := &fakeMentorRepo{}
	cache := newFakeMatchCache()
	handler := NewFindMatchesHandler(repo, cache, matching.DefaultWeights())

	weak := rawMentor(otherMentorID)
	weak.FocusAreas = []string{"creative_skills"}

	result, err := handler.Handle(context.Background(), FindMatchesQuery{
		Student: rawStudent(),
		Mentors: []profile.RawMentorProfile{weak, rawMentor(matchMentorID)},
		At:      time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	require.Len(t, result.Matches, 2)
	assert.Equal(t, shared.MentorID(matchMentorID), result.Matches[0].MentorID,
		"ментор с совпадающей экспертизой ранжируется выше")
	assert.Equal(t, 2, result.Meta.Considered)
	assert.Equal(t, 2, result.Meta.Returned)
	assert.False(t, result.Meta.WeightsFellBack)

	// Явный пул - одноразовый прогон, кэш не участвует.
	assert.Zero(t, cache.getCalls)
	assert.Zero(t, cache.setCalls)
	assert.Zero(t, repo.listActiveCalls)
}

func TestFindMatches_ImplicitPoolUsesStoreAndCache(t *testing.T) {
	repo := &fakeMentorRepo{mentors: []*profile.MentorProfile{activeMentor(t, matchMentorID)}}
	cache := newFakeMatchCache()
	handler := NewFindMatchesHandler(repo, cache, matching.DefaultWeights())

	q := FindMatchesQuery{Student: rawStudent()}

	first, err := handler.Handle(context.Background(), q)
	require.NoError(t, err)
	require.Len(t, first.Matches, 1)
	assert.Equal(t, 1, repo.listActiveCalls)
	assert.Equal(t, 1, cache.setCalls)

	// Повторный запрос обслуживается из кэша без похода в хранилище.
	second, err := handler.Handle(context.Background(), q)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, repo.listActiveCalls)
	assert.Equal(t, 1, cache.setCalls)
}

func TestFindMatches_ZeroWeightsFallBack(t *testing.T) {
	handler := NewFindMatchesHandler(&fakeMentorRepo{}, nil, matching.DefaultWeights())

	result, err := handler.Handle(context.Background(), FindMatchesQuery{
		Student: rawStudent(),
		Mentors: []profile.RawMentorProfile{rawMentor(matchMentorID)},
		Weights: &matching.Weights{},
	})
	require.NoError(t, err)

	assert.True(t, result.Meta.WeightsFellBack)
	assert.Equal(t, matching.DefaultWeights(), result.Meta.Weights)
}

func TestFindMatches_NegativeWeightsRejected(t *testing.T) {
	handler := NewFindMatchesHandler(&fakeMentorRepo{}, nil, matching.DefaultWeights())

	// Знакопеременные веса нормализуются в отрицательный вклад фактора
	// и могут перевернуть ранжирование - запрос отклоняется целиком.
	_, err := handler.Handle(context.Background(), FindMatchesQuery{
		Student: rawStudent(),
		Mentors: []profile.RawMentorProfile{rawMentor(matchMentorID)},
		Weights: &matching.Weights{Goals: -10, Communication: 20},
	})

	require.ErrorIs(t, err, shared.ErrValidation)
}

func TestFindMatches_InvalidStudent(t *testing.T) {
	handler := NewFindMatchesHandler(&fakeMentorRepo{}, nil, matching.DefaultWeights())

	student := rawStudent()
	student.Goals = nil

	_, err := handler.Handle(context.Background(), FindMatchesQuery{Student: student})
	assert.ErrorIs(t, err, shared.ErrValidation)
}

func TestFindMatches_InvalidMentorInPool(t *testing.T) {
	handler := NewFindMatchesHandler(&fakeMentorRepo{}, nil, matching.DefaultWeights())

	broken := rawMentor(matchMentorID)
	broken.FocusAreas = nil

	_, err := handler.Handle(context.Background(), FindMatchesQuery{
		Student: rawStudent(),
		Mentors: []profile.RawMentorProfile{broken},
	})
	assert.ErrorIs(t, err, shared.ErrValidation)
}

func TestFindMatches_DisclaimerOnWeakPool(t *testing.T) {
	handler := NewFindMatchesHandler(&fakeMentorRepo{}, nil, matching.DefaultWeights())

	// Единственный кандидат без пересечения по целям и способам связи:
	// его оценка ниже порога, список всё равно возвращается.
	weak := rawMentor(otherMentorID)
	weak.FocusAreas = []string{"creative_skills"}
	weak.CommunicationMethods = []string{"text_chat"}

	result, err := handler.Handle(context.Background(), FindMatchesQuery{
		Student: rawStudent(),
		Mentors: []profile.RawMentorProfile{weak},
	})
	require.NoError(t, err)

	require.Len(t, result.Matches, 1)
	assert.NotEmpty(t, result.Meta.Disclaimer)
}

func TestFindMatches_InvalidRankOptions(t *testing.T) {
	handler := NewFindMatchesHandler(&fakeMentorRepo{}, nil, matching.DefaultWeights())

	_, err := handler.Handle(context.Background(), FindMatchesQuery{
		Student:    rawStudent(),
		Mentors:    []profile.RawMentorProfile{rawMentor(matchMentorID)},
		MinResults: 7,
		MaxResults: 5,
	})
	assert.Error(t, err)
}
