package jobs

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/mentor-bridge/mentor-bridge-hub/internal/domain/session"
	"github.com/mentor-bridge/mentor-bridge-hub/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	jobStudentID = "11111111-1111-1111-1111-111111111111"
	jobMentorID  = "22222222-2222-2222-2222-222222222222"
)

var quietLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

func seedConfirmed(t *testing.T, repo *fakeSessionRepo, id string, startsIn time.Duration) *session.Session {
	t.Helper()

	start := time.Now().Add(startsIn)
	s, err := session.NewSession(session.NewSessionParams{
		ID:         shared.SessionID(id),
		StudentID:  shared.StudentID(jobStudentID),
		MentorID:   shared.MentorID(jobMentorID),
		Start:      start,
		End:        start.Add(45 * time.Minute),
		Connection: session.ConnectionVideoCall,
	})
	require.NoError(t, err)
	s.Status = session.StatusConfirmed
	repo.sessions[s.ID] = s
	return s
}

func TestReminderSweep_EmitsBothHorizons(t *testing.T) {
	repo := newFakeSessionRepo()
	publisher := &fakePublisher{}
	job := NewReminderSweepJob(repo, publisher, quietLogger, DefaultReminderSweepConfig())

	// Сессия через 2 часа попадает только в суточный горизонт,
	// сессия через 30 минут - в оба.
	seedConfirmed(t, repo, "33333333-3333-3333-3333-333333333333", 2*time.Hour)
	soon := seedConfirmed(t, repo, "44444444-4444-4444-4444-444444444444", 30*time.Minute)

	require.NoError(t, job.Run(context.Background()))

	stats := job.LastRunStats()
	require.NotNil(t, stats)
	assert.Equal(t, 3, stats.SessionsChecked)
	assert.Equal(t, 3, stats.RemindersEmitted)
	assert.Equal(t, 2, stats.EmittedByHorizon[session.Horizon24h])
	assert.Equal(t, 1, stats.EmittedByHorizon[session.Horizon1h])

	require.Len(t, publisher.events, 3)
	for _, event := range publisher.events {
		assert.Equal(t, shared.EventReminderDue, event.EventType())
	}
	assert.True(t, soon.Reminder24hSent)
	assert.True(t, soon.Reminder1hSent)
}

func TestReminderSweep_Idempotent(t *testing.T) {
	repo := newFakeSessionRepo()
	publisher := &fakePublisher{}
	job := NewReminderSweepJob(repo, publisher, quietLogger, DefaultReminderSweepConfig())
	seedConfirmed(t, repo, "33333333-3333-3333-3333-333333333333", 30*time.Minute)

	require.NoError(t, job.Run(context.Background()))
	require.Len(t, publisher.events, 2)

	// Повторный свип видит выставленные флаги и ничего не шлёт.
	require.NoError(t, job.Run(context.Background()))
	assert.Len(t, publisher.events, 2)

	stats := job.LastRunStats()
	assert.Zero(t, stats.RemindersEmitted)
	assert.Equal(t, 2, stats.AlreadyScheduled)
}

func TestReminderSweep_SkipsNonConfirmed(t *testing.T) {
	repo := newFakeSessionRepo()
	publisher := &fakePublisher{}
	job := NewReminderSweepJob(repo, publisher, quietLogger, DefaultReminderSweepConfig())

	pending := seedConfirmed(t, repo, "33333333-3333-3333-3333-333333333333", 30*time.Minute)
	pending.Status = session.StatusPending

	require.NoError(t, job.Run(context.Background()))

	assert.Empty(t, publisher.events)
	assert.Zero(t, job.LastRunStats().SessionsChecked)
}
