// Package postgres implements PostgreSQL persistence layer for Mentor Bridge Hub.
package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mentor-bridge/mentor-bridge-hub/internal/domain/availability"
	"github.com/mentor-bridge/mentor-bridge-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// AVAILABILITY REPOSITORY IMPLEMENTATION
// Weekly blocks and exceptions live in JSONB: the schedule is a single
// document replaced as a whole, expansion happens in the domain layer.
// ══════════════════════════════════════════════════════════════════════════════

// AvailabilityRepository implements availability.Repository for PostgreSQL.
type AvailabilityRepository struct {
	conn *Connection
}

// NewAvailabilityRepository creates a new AvailabilityRepository.
func NewAvailabilityRepository(conn *Connection) *AvailabilityRepository {
	return &AvailabilityRepository{conn: conn}
}

// ─────────────────────────────────────────────────────────────────────────────
// JSONB document shapes
// ─────────────────────────────────────────────────────────────────────────────

type weeklyBlockDoc struct {
	Day   int    `json:"day"`
	Start string `json:"start"`
	End   string `json:"end"`
}

type exceptionDoc struct {
	Date   string         `json:"date"`
	Kind   string         `json:"kind"`
	Blocks []timeRangeDoc `json:"blocks,omitempty"`
}

type timeRangeDoc struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// Save creates or fully replaces a mentor schedule.
func (r *AvailabilityRepository) Save(ctx context.Context, a *availability.MentorAvailability) error {
	query := `
		INSERT INTO mentor_availability (
			mentor_id, timezone, durations, buffer_minutes, max_sessions_per_day,
			weekly_blocks, exceptions, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (mentor_id) DO UPDATE SET
			timezone = EXCLUDED.timezone,
			durations = EXCLUDED.durations,
			buffer_minutes = EXCLUDED.buffer_minutes,
			max_sessions_per_day = EXCLUDED.max_sessions_per_day,
			weekly_blocks = EXCLUDED.weekly_blocks,
			exceptions = EXCLUDED.exceptions,
			updated_at = EXCLUDED.updated_at
	`

	blocks := make([]weeklyBlockDoc, 0, len(a.WeeklyBlocks))
	for _, b := range a.WeeklyBlocks {
		blocks = append(blocks, weeklyBlockDoc{
			Day:   int(b.Day),
			Start: b.Range.Start.String(),
			End:   b.Range.End.String(),
		})
	}
	blocksJSON, err := json.Marshal(blocks)
	if err != nil {
		return fmt.Errorf("failed to marshal weekly blocks: %w", err)
	}

	exceptions := make([]exceptionDoc, 0, len(a.Exceptions))
	for _, e := range a.Exceptions {
		doc := exceptionDoc{
			Date: e.Date.String(),
			Kind: string(e.Kind),
		}
		for _, blk := range e.Blocks {
			doc.Blocks = append(doc.Blocks, timeRangeDoc{
				Start: blk.Start.String(),
				End:   blk.End.String(),
			})
		}
		exceptions = append(exceptions, doc)
	}
	exceptionsJSON, err := json.Marshal(exceptions)
	if err != nil {
		return fmt.Errorf("failed to marshal exceptions: %w", err)
	}

	_, err = r.conn.Exec(ctx, query,
		a.MentorID.String(),
		a.Timezone.String(),
		a.Durations,
		a.BufferMinutes,
		a.MaxSessionsPerDay,
		blocksJSON,
		exceptionsJSON,
		a.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save availability: %w", err)
	}

	return nil
}

// GetByMentorID returns a mentor's schedule.
func (r *AvailabilityRepository) GetByMentorID(ctx context.Context, mentorID shared.MentorID) (*availability.MentorAvailability, error) {
	query := `
		SELECT mentor_id, timezone, durations, buffer_minutes, max_sessions_per_day,
			   weekly_blocks, exceptions, updated_at
		FROM mentor_availability
		WHERE mentor_id = $1
	`

	var (
		a              availability.MentorAvailability
		id             string
		timezone       string
		blocksJSON     []byte
		exceptionsJSON []byte
	)

	err := r.conn.QueryRow(ctx, query, mentorID.String()).Scan(
		&id,
		&timezone,
		&a.Durations,
		&a.BufferMinutes,
		&a.MaxSessionsPerDay,
		&blocksJSON,
		&exceptionsJSON,
		&a.UpdatedAt,
	)
	if err != nil {
		if IsNoRows(err) {
			return nil, shared.NewDomainError("availability", "GetByMentorID", shared.ErrNotFound,
				"no schedule published for mentor")
		}
		return nil, fmt.Errorf("failed to get availability: %w", err)
	}

	a.MentorID = shared.MentorID(id)
	a.Timezone = shared.Timezone(timezone)

	if a.WeeklyBlocks, err = decodeWeeklyBlocks(blocksJSON); err != nil {
		return nil, err
	}
	if a.Exceptions, err = decodeExceptions(exceptionsJSON); err != nil {
		return nil, err
	}

	return &a, nil
}

func decodeWeeklyBlocks(raw []byte) ([]availability.WeeklyBlock, error) {
	var docs []weeklyBlockDoc
	if err := json.Unmarshal(raw, &docs); err != nil {
		return nil, fmt.Errorf("failed to unmarshal weekly blocks: %w", err)
	}

	blocks := make([]availability.WeeklyBlock, 0, len(docs))
	for _, doc := range docs {
		rng, err := decodeTimeRange(doc.Start, doc.End)
		if err != nil {
			return nil, err
		}
		blocks = append(blocks, availability.WeeklyBlock{
			Day:   time.Weekday(doc.Day),
			Range: rng,
		})
	}
	return blocks, nil
}

func decodeExceptions(raw []byte) ([]availability.Exception, error) {
	var docs []exceptionDoc
	if err := json.Unmarshal(raw, &docs); err != nil {
		return nil, fmt.Errorf("failed to unmarshal exceptions: %w", err)
	}

	exceptions := make([]availability.Exception, 0, len(docs))
	for _, doc := range docs {
		date, err := availability.ParseDate(doc.Date)
		if err != nil {
			return nil, fmt.Errorf("failed to parse exception date %q: %w", doc.Date, err)
		}
		exc := availability.Exception{
			Date: date,
			Kind: availability.ExceptionKind(doc.Kind),
		}
		for _, blk := range doc.Blocks {
			rng, err := decodeTimeRange(blk.Start, blk.End)
			if err != nil {
				return nil, err
			}
			exc.Blocks = append(exc.Blocks, rng)
		}
		exceptions = append(exceptions, exc)
	}
	return exceptions, nil
}

func decodeTimeRange(start, end string) (availability.TimeRange, error) {
	s, err := shared.ParseTimeOfDay(start)
	if err != nil {
		return availability.TimeRange{}, fmt.Errorf("failed to parse time %q: %w", start, err)
	}
	e, err := shared.ParseTimeOfDay(end)
	if err != nil {
		return availability.TimeRange{}, fmt.Errorf("failed to parse time %q: %w", end, err)
	}
	return availability.TimeRange{Start: s, End: e}, nil
}
