package jobs

import (
	"context"
	"testing"
	"time"

	"github.com/mentor-bridge/mentor-bridge-hub/internal/domain/session"
	"github.com/mentor-bridge/mentor-bridge-hub/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedPending(t *testing.T, repo *fakeSessionRepo, id string, age time.Duration) *session.Session {
	t.Helper()

	start := time.Now().Add(7 * 24 * time.Hour)
	s, err := session.NewSession(session.NewSessionParams{
		ID:         shared.SessionID(id),
		StudentID:  shared.StudentID(jobStudentID),
		MentorID:   shared.MentorID(jobMentorID),
		Start:      start,
		End:        start.Add(45 * time.Minute),
		Connection: session.ConnectionVideoCall,
	})
	require.NoError(t, err)
	s.CreatedAt = time.Now().Add(-age)
	repo.sessions[s.ID] = s
	return s
}

func TestExpirePending_CancelsStaleRequests(t *testing.T) {
	repo := newFakeSessionRepo()
	publisher := &fakePublisher{}
	job := NewExpirePendingJob(repo, publisher, quietLogger, DefaultExpirePendingConfig())

	stale := seedPending(t, repo, "33333333-3333-3333-3333-333333333333", 100*time.Hour)
	fresh := seedPending(t, repo, "44444444-4444-4444-4444-444444444444", time.Hour)

	require.NoError(t, job.Run(context.Background()))

	stats := job.LastRunStats()
	require.NotNil(t, stats)
	assert.Equal(t, 1, stats.Candidates)
	assert.Equal(t, 1, stats.Expired)
	assert.Zero(t, stats.LostRaces)

	assert.Equal(t, session.StatusCancelled, repo.sessions[stale.ID].Status)
	assert.Contains(t, repo.sessions[stale.ID].StatusReason, "expired after")
	assert.Equal(t, session.StatusPending, repo.sessions[fresh.ID].Status)

	require.Len(t, publisher.events, 1)
	assert.Equal(t, shared.EventSessionExpired, publisher.events[0].EventType())
}

func TestExpirePending_LostRaceIsNotAnError(t *testing.T) {
	repo := newFakeSessionRepo()
	publisher := &fakePublisher{}
	job := NewExpirePendingJob(repo, publisher, quietLogger, DefaultExpirePendingConfig())

	seedPending(t, repo, "33333333-3333-3333-3333-333333333333", 100*time.Hour)

	// Ментор подтвердил сессию между выборкой и записью: CAS проигран,
	// переход участника остаётся в силе.
	repo.updateErr = shared.NewDomainError("session", "UpdateGuarded",
		shared.ErrOptimisticLock, "status changed concurrently")

	require.NoError(t, job.Run(context.Background()))

	stats := job.LastRunStats()
	assert.Equal(t, 1, stats.Candidates)
	assert.Zero(t, stats.Expired)
	assert.Equal(t, 1, stats.LostRaces)
	assert.Empty(t, publisher.events)
}

func TestExpirePending_RespectsBatchSize(t *testing.T) {
	repo := newFakeSessionRepo()
	config := DefaultExpirePendingConfig()
	config.BatchSize = 1
	job := NewExpirePendingJob(repo, &fakePublisher{}, quietLogger, config)

	seedPending(t, repo, "33333333-3333-3333-3333-333333333333", 100*time.Hour)
	seedPending(t, repo, "44444444-4444-4444-4444-444444444444", 100*time.Hour)

	require.NoError(t, job.Run(context.Background()))

	assert.Equal(t, 1, job.LastRunStats().Candidates)
}

func TestNewExpirePendingJob_GuardsAgainstZeroTTL(t *testing.T) {
	job := NewExpirePendingJob(newFakeSessionRepo(), nil, quietLogger, ExpirePendingConfig{})

	assert.Equal(t, DefaultExpirePendingConfig().TTL, job.config.TTL)
}
