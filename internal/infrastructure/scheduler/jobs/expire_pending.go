package jobs

import (
	"github.com/mentor-bridge/mentor-bridge-hub/internal/domain/session"
	"github.com/mentor-bridge/mentor-bridge-hub/internal/domain/shared"

	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"
)

// ══════════════════════════════════════════════════════════════════════════════
// EXPIRE PENDING JOB
// ══════════════════════════════════════════════════════════════════════════════

// ExpirePendingJob cancels pending session requests that a mentor never
// answered within the configured TTL. The students learn the request is
// dead instead of waiting indefinitely, and the mentor's calendar stops
// reserving the slot.
//
// The cancellation goes through the same compare-and-swap update as user
// transitions, so a mentor confirming in the same instant wins the race and
// the expiry is silently skipped.
type ExpirePendingJob struct {
	sessionRepo    session.Repository
	eventPublisher shared.EventPublisher
	logger         *slog.Logger

	config ExpirePendingConfig

	lastRunStats atomic.Value // *ExpirePendingStats
}

// ExpirePendingConfig contains configuration for the expire pending job.
type ExpirePendingConfig struct {
	// TTL is how long a pending request stays open before expiring.
	TTL time.Duration

	// BatchSize limits how many stale sessions one run processes.
	BatchSize int

	// Timeout is the maximum duration for one run.
	Timeout time.Duration
}

// DefaultExpirePendingConfig returns sensible defaults.
func DefaultExpirePendingConfig() ExpirePendingConfig {
	return ExpirePendingConfig{
		TTL:       72 * time.Hour,
		BatchSize: 200,
		Timeout:   time.Minute,
	}
}

// ExpirePendingStats contains statistics from an expiry run.
type ExpirePendingStats struct {
	StartedAt   time.Time
	CompletedAt time.Time
	Duration    time.Duration
	Candidates  int
	Expired     int
	LostRaces   int
	Errors      []error
}

// NewExpirePendingJob creates a new expire pending job.
func NewExpirePendingJob(
	sessionRepo session.Repository,
	eventPublisher shared.EventPublisher,
	logger *slog.Logger,
	config ExpirePendingConfig,
) *ExpirePendingJob {
	if logger == nil {
		logger = slog.Default()
	}
	if eventPublisher == nil {
		eventPublisher = shared.NoopPublisher{}
	}
	if config.TTL <= 0 {
		config.TTL = DefaultExpirePendingConfig().TTL
	}

	return &ExpirePendingJob{
		sessionRepo:    sessionRepo,
		eventPublisher: eventPublisher,
		logger:         logger,
		config:         config,
	}
}

// Name returns the job name.
func (j *ExpirePendingJob) Name() string {
	return "expire_pending"
}

// Description returns a human-readable description.
func (j *ExpirePendingJob) Description() string {
	return "Cancels pending session requests that outlived their TTL"
}

// Run executes one expiry pass.
func (j *ExpirePendingJob) Run(ctx context.Context) error {
	startedAt := time.Now()
	stats := &ExpirePendingStats{
		StartedAt: startedAt,
		Errors:    make([]error, 0),
	}

	if j.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, j.config.Timeout)
		defer cancel()
	}

	cutoff := startedAt.Add(-j.config.TTL)
	stale, err := j.sessionRepo.ListPendingCreatedBefore(ctx, cutoff, j.config.BatchSize)
	if err != nil {
		return fmt.Errorf("failed to list stale pending sessions: %w", err)
	}

	stats.Candidates = len(stale)

	for _, s := range stale {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if err := j.expireSession(ctx, s, stats); err != nil {
			stats.Errors = append(stats.Errors, err)
			j.logger.Error("failed to expire session",
				"session_id", s.ID.String(),
				"error", err,
			)
		}
	}

	stats.CompletedAt = time.Now()
	stats.Duration = stats.CompletedAt.Sub(startedAt)
	j.lastRunStats.Store(stats)

	j.logger.Info("expire_pending completed",
		"duration", stats.Duration.String(),
		"candidates", stats.Candidates,
		"expired", stats.Expired,
		"lost_races", stats.LostRaces,
	)

	return nil
}

// expireSession cancels a single stale request and publishes the event.
func (j *ExpirePendingJob) expireSession(ctx context.Context, s *session.Session, stats *ExpirePendingStats) error {
	reason := fmt.Sprintf("pending request expired after %s", j.config.TTL)

	if err := session.Expire(s, reason); err != nil {
		return err
	}

	if err := j.sessionRepo.UpdateGuarded(ctx, s, session.StatusPending); err != nil {
		// A participant transitioned the session between the list and the
		// write. Their transition stands.
		if errors.Is(err, shared.ErrOptimisticLock) {
			stats.LostRaces++
			return nil
		}
		return err
	}

	stats.Expired++

	event := shared.NewSessionEvent(
		shared.EventSessionExpired,
		s.ID.String(),
		s.StudentID.String(),
		s.MentorID.String(),
		string(s.Status),
		shared.Actor{},
		reason,
	)
	if err := j.eventPublisher.Publish(ctx, event); err != nil {
		j.logger.Error("failed to publish expiry event",
			"session_id", s.ID.String(),
			"error", err,
		)
	}

	return nil
}

// LastRunStats returns statistics from the most recent run.
func (j *ExpirePendingJob) LastRunStats() *ExpirePendingStats {
	stats, _ := j.lastRunStats.Load().(*ExpirePendingStats)
	return stats
}
