// Package jobs contains implementations of scheduled jobs for Mentor Bridge Hub.
package jobs

import (
	"github.com/mentor-bridge/mentor-bridge-hub/internal/domain/session"
	"github.com/mentor-bridge/mentor-bridge-hub/internal/domain/shared"

	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"
)

// ══════════════════════════════════════════════════════════════════════════════
// REMINDER SWEEP JOB
// ══════════════════════════════════════════════════════════════════════════════

// ReminderSweepJob finds confirmed sessions approaching their start time and
// emits reminder events at two horizons: 24 hours and 1 hour before start.
//
// The sweep is idempotent: the per-session reminder flag is set with a
// conditional write, so a session crossing a horizon produces exactly one
// event no matter how many sweeps observe it. A session confirmed inside a
// horizon (for example 30 minutes before start) gets the remaining reminders
// on the next sweep and simply never gets the ones whose window already
// passed.
type ReminderSweepJob struct {
	sessionRepo    session.Repository
	eventPublisher shared.EventPublisher
	logger         *slog.Logger

	config ReminderSweepConfig

	lastRunStats atomic.Value // *ReminderSweepStats
}

// ReminderSweepConfig contains configuration for the reminder sweep job.
type ReminderSweepConfig struct {
	// Timeout is the maximum duration for one sweep.
	Timeout time.Duration
}

// DefaultReminderSweepConfig returns sensible defaults.
func DefaultReminderSweepConfig() ReminderSweepConfig {
	return ReminderSweepConfig{
		Timeout: time.Minute,
	}
}

// ReminderSweepStats contains statistics from a sweep run.
type ReminderSweepStats struct {
	StartedAt        time.Time
	CompletedAt      time.Time
	Duration         time.Duration
	SessionsChecked  int
	RemindersEmitted int
	AlreadyScheduled int
	PublishFailures  int
	EmittedByHorizon map[session.ReminderHorizon]int
	Errors           []error
}

// NewReminderSweepJob creates a new reminder sweep job.
func NewReminderSweepJob(
	sessionRepo session.Repository,
	eventPublisher shared.EventPublisher,
	logger *slog.Logger,
	config ReminderSweepConfig,
) *ReminderSweepJob {
	if logger == nil {
		logger = slog.Default()
	}
	if eventPublisher == nil {
		eventPublisher = shared.NoopPublisher{}
	}

	return &ReminderSweepJob{
		sessionRepo:    sessionRepo,
		eventPublisher: eventPublisher,
		logger:         logger,
		config:         config,
	}
}

// Name returns the job name.
func (j *ReminderSweepJob) Name() string {
	return "reminder_sweep"
}

// Description returns a human-readable description.
func (j *ReminderSweepJob) Description() string {
	return "Emits 24h and 1h reminders for upcoming confirmed sessions"
}

// Run executes one sweep across both horizons.
func (j *ReminderSweepJob) Run(ctx context.Context) error {
	startedAt := time.Now()
	stats := &ReminderSweepStats{
		StartedAt:        startedAt,
		EmittedByHorizon: make(map[session.ReminderHorizon]int),
		Errors:           make([]error, 0),
	}

	if j.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, j.config.Timeout)
		defer cancel()
	}

	horizons := []struct {
		horizon session.ReminderHorizon
		window  time.Duration
	}{
		{session.Horizon24h, 24 * time.Hour},
		{session.Horizon1h, time.Hour},
	}

	now := time.Now()
	for _, h := range horizons {
		if err := j.sweepHorizon(ctx, now, h.horizon, h.window, stats); err != nil {
			return fmt.Errorf("reminder sweep at %s failed: %w", h.horizon, err)
		}
	}

	stats.CompletedAt = time.Now()
	stats.Duration = stats.CompletedAt.Sub(startedAt)
	j.lastRunStats.Store(stats)

	j.logger.Info("reminder_sweep completed",
		"duration", stats.Duration.String(),
		"checked", stats.SessionsChecked,
		"emitted", stats.RemindersEmitted,
		"already_scheduled", stats.AlreadyScheduled,
		"publish_failures", stats.PublishFailures,
	)

	return nil
}

// sweepHorizon emits reminders for one horizon. Sessions starting in
// (now, now+window] are candidates; the conditional flag write decides
// which of them actually produce an event.
func (j *ReminderSweepJob) sweepHorizon(
	ctx context.Context,
	now time.Time,
	horizon session.ReminderHorizon,
	window time.Duration,
	stats *ReminderSweepStats,
) error {
	sessions, err := j.sessionRepo.ListConfirmedStartingBetween(ctx, now, now.Add(window))
	if err != nil {
		return err
	}

	stats.SessionsChecked += len(sessions)

	for _, s := range sessions {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		scheduled, err := j.sessionRepo.MarkReminderScheduled(ctx, s.ID, horizon)
		if err != nil {
			stats.Errors = append(stats.Errors, err)
			j.logger.Error("failed to mark reminder",
				"session_id", s.ID.String(),
				"horizon", string(horizon),
				"error", err,
			)
			continue
		}
		if !scheduled {
			stats.AlreadyScheduled++
			continue
		}

		event := shared.NewReminderDueEvent(
			s.ID.String(),
			s.StudentID.String(),
			s.MentorID.String(),
			s.EffectiveStart(),
			string(horizon),
		)
		if err := j.eventPublisher.Publish(ctx, event); err != nil {
			// The flag is already set; delivery is best-effort from here.
			stats.PublishFailures++
			j.logger.Error("failed to publish reminder event",
				"session_id", s.ID.String(),
				"horizon", string(horizon),
				"error", err,
			)
			continue
		}

		stats.RemindersEmitted++
		stats.EmittedByHorizon[horizon]++
	}

	return nil
}

// LastRunStats returns statistics from the most recent run.
func (j *ReminderSweepJob) LastRunStats() *ReminderSweepStats {
	stats, _ := j.lastRunStats.Load().(*ReminderSweepStats)
	return stats
}
