// Package postgres implements PostgreSQL persistence layer for Mentor Bridge Hub.
package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mentor-bridge/mentor-bridge-hub/internal/domain/session"
	"github.com/mentor-bridge/mentor-bridge-hub/internal/domain/shared"

	"github.com/jackc/pgx/v5"
)

// ══════════════════════════════════════════════════════════════════════════════
// SESSION REPOSITORY IMPLEMENTATION
// Guarded writes are the contract here:
//   - CreateGuarded takes an advisory lock on the mentor, re-checks overlap
//     and inserts inside one transaction;
//   - UpdateGuarded is a compare-and-swap on the current status;
//   - MarkReminderScheduled is a conditional flag flip.
// ══════════════════════════════════════════════════════════════════════════════

// reservedStatuses hold the mentor's time for overlap purposes.
const reservedStatuses = `('pending', 'confirmed', 'reschedule_proposed')`

// SessionRepository implements session.Repository for PostgreSQL.
type SessionRepository struct {
	conn *Connection
}

// NewSessionRepository creates a new SessionRepository.
func NewSessionRepository(conn *Connection) *SessionRepository {
	return &SessionRepository{conn: conn}
}

// ─────────────────────────────────────────────────────────────────────────────
// Guarded writes
// ─────────────────────────────────────────────────────────────────────────────

// CreateGuarded inserts a session after re-validating non-overlap inside the
// same transaction. The advisory lock serializes bookings per mentor, so two
// concurrent requests for the same slot cannot both pass the overlap check.
func (r *SessionRepository) CreateGuarded(ctx context.Context, s *session.Session, bufferMinutes int) error {
	return r.conn.WithTx(ctx, DefaultTxOptions(), func(tx pgx.Tx) error {
		lockQuery := `SELECT pg_advisory_xact_lock(hashtext($1))`
		if _, err := tx.Exec(ctx, lockQuery, s.MentorID.String()); err != nil {
			return fmt.Errorf("failed to lock mentor bookings: %w", err)
		}

		buffer := time.Duration(bufferMinutes) * time.Minute
		overlapQuery := `
			SELECT COUNT(*)
			FROM sessions
			WHERE mentor_id = $1
			  AND status IN ` + reservedStatuses + `
			  AND COALESCE(confirmed_start, requested_start) < $3
			  AND $2 < COALESCE(confirmed_end, requested_end)
		`

		var conflicts int
		err := tx.QueryRow(ctx, overlapQuery,
			s.MentorID.String(),
			s.RequestedStart.Add(-buffer),
			s.RequestedEnd.Add(buffer),
		).Scan(&conflicts)
		if err != nil {
			return fmt.Errorf("failed to check overlap: %w", err)
		}
		if conflicts > 0 {
			return shared.NewDomainError("booking", "CreateGuarded", shared.ErrSlotTaken,
				"requested interval overlaps a reserved session")
		}

		optionsJSON, err := encodeRescheduleOptions(s.RescheduleOptions)
		if err != nil {
			return err
		}

		insertQuery := `
			INSERT INTO sessions (
				id, student_id, mentor_id, status, requested_start, requested_end,
				confirmed_start, confirmed_end, student_timezone, mentor_timezone,
				connection, reschedule_options, note, status_reason,
				reminder_24h_sent, reminder_1h_sent, created_at, updated_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
		`

		_, err = tx.Exec(ctx, insertQuery,
			s.ID.String(),
			s.StudentID.String(),
			s.MentorID.String(),
			string(s.Status),
			s.RequestedStart,
			s.RequestedEnd,
			s.ConfirmedStart,
			s.ConfirmedEnd,
			s.StudentTimezone.String(),
			s.MentorTimezone.String(),
			string(s.Connection),
			optionsJSON,
			s.Note,
			s.StatusReason,
			s.Reminder24hSent,
			s.Reminder1hSent,
			s.CreatedAt,
			s.UpdatedAt,
		)
		if err != nil {
			if IsUniqueViolation(err) {
				return shared.NewDomainError("booking", "CreateGuarded", shared.ErrConflict,
					"session already exists")
			}
			return fmt.Errorf("failed to insert session: %w", err)
		}

		return nil
	})
}

// UpdateGuarded writes the session only if its stored status still equals
// expected. A mismatch means a concurrent transition won the race.
func (r *SessionRepository) UpdateGuarded(ctx context.Context, s *session.Session, expected session.Status) error {
	optionsJSON, err := encodeRescheduleOptions(s.RescheduleOptions)
	if err != nil {
		return err
	}

	query := `
		UPDATE sessions SET
			status = $1,
			requested_start = $2,
			requested_end = $3,
			confirmed_start = $4,
			confirmed_end = $5,
			reschedule_options = $6,
			status_reason = $7,
			reminder_24h_sent = $8,
			reminder_1h_sent = $9,
			updated_at = $10
		WHERE id = $11 AND status = $12
	`

	tag, err := r.conn.Exec(ctx, query,
		string(s.Status),
		s.RequestedStart,
		s.RequestedEnd,
		s.ConfirmedStart,
		s.ConfirmedEnd,
		optionsJSON,
		s.StatusReason,
		s.Reminder24hSent,
		s.Reminder1hSent,
		s.UpdatedAt,
		s.ID.String(),
		string(expected),
	)
	if err != nil {
		return fmt.Errorf("failed to update session: %w", err)
	}

	if tag.RowsAffected() == 0 {
		// Either the session vanished or the status moved under us.
		var exists bool
		checkErr := r.conn.QueryRow(ctx,
			`SELECT EXISTS(SELECT 1 FROM sessions WHERE id = $1)`, s.ID.String(),
		).Scan(&exists)
		if checkErr != nil {
			return fmt.Errorf("failed to check session existence: %w", checkErr)
		}
		if !exists {
			return shared.NewDomainError("session", "UpdateGuarded", shared.ErrNotFound,
				"session not found")
		}
		return shared.NewDomainError("session", "UpdateGuarded", shared.ErrOptimisticLock,
			"session status changed concurrently")
	}

	return nil
}

// MarkReminderScheduled flips the reminder flag with a conditional write.
// Returns true only when this call set the flag, which makes the sweep
// idempotent across overlapping runs.
func (r *SessionRepository) MarkReminderScheduled(ctx context.Context, id shared.SessionID, horizon session.ReminderHorizon) (bool, error) {
	var column string
	switch horizon {
	case session.Horizon24h:
		column = "reminder_24h_sent"
	case session.Horizon1h:
		column = "reminder_1h_sent"
	default:
		return false, shared.NewDomainError("session", "MarkReminderScheduled",
			shared.ErrValidation, "unknown reminder horizon: "+string(horizon))
	}

	query := fmt.Sprintf(`
		UPDATE sessions
		SET %s = TRUE, updated_at = NOW()
		WHERE id = $1 AND %s = FALSE AND status = 'confirmed'
	`, column, column)

	tag, err := r.conn.Exec(ctx, query, id.String())
	if err != nil {
		return false, fmt.Errorf("failed to mark reminder: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Reads
// ─────────────────────────────────────────────────────────────────────────────

const selectSession = `
	SELECT id, student_id, mentor_id, status, requested_start, requested_end,
		   confirmed_start, confirmed_end, student_timezone, mentor_timezone,
		   connection, reschedule_options, note, status_reason,
		   reminder_24h_sent, reminder_1h_sent, created_at, updated_at
	FROM sessions
`

// GetByID returns a session by ID.
func (r *SessionRepository) GetByID(ctx context.Context, id shared.SessionID) (*session.Session, error) {
	row := r.conn.QueryRow(ctx, selectSession+` WHERE id = $1`, id.String())
	return scanSession(row)
}

// ListByStudent returns a student's sessions, newest first.
func (r *SessionRepository) ListByStudent(ctx context.Context, studentID shared.StudentID, opts session.ListOptions) ([]*session.Session, error) {
	return r.list(ctx, `student_id`, studentID.String(), opts)
}

// ListByMentor returns a mentor's sessions, newest first.
func (r *SessionRepository) ListByMentor(ctx context.Context, mentorID shared.MentorID, opts session.ListOptions) ([]*session.Session, error) {
	return r.list(ctx, `mentor_id`, mentorID.String(), opts)
}

func (r *SessionRepository) list(ctx context.Context, column, id string, opts session.ListOptions) ([]*session.Session, error) {
	query := selectSession + fmt.Sprintf(` WHERE %s = $1`, column)
	args := []interface{}{id}

	if len(opts.Statuses) > 0 {
		statuses := make([]string, 0, len(opts.Statuses))
		for _, st := range opts.Statuses {
			statuses = append(statuses, string(st))
		}
		query += fmt.Sprintf(` AND status = ANY($%d)`, len(args)+1)
		args = append(args, statuses)
	}

	query += ` ORDER BY created_at DESC`

	if opts.Limit > 0 {
		query += fmt.Sprintf(` LIMIT $%d`, len(args)+1)
		args = append(args, opts.Limit)
	}
	if opts.Offset > 0 {
		query += fmt.Sprintf(` OFFSET $%d`, len(args)+1)
		args = append(args, opts.Offset)
	}

	rows, err := r.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer rows.Close()

	return scanSessions(rows)
}

// ListReservedBetween returns reserved sessions of a mentor intersecting
// the [from, to) interval.
func (r *SessionRepository) ListReservedBetween(ctx context.Context, mentorID shared.MentorID, from, to time.Time) ([]*session.Session, error) {
	query := selectSession + `
		WHERE mentor_id = $1
		  AND status IN ` + reservedStatuses + `
		  AND COALESCE(confirmed_start, requested_start) < $3
		  AND $2 < COALESCE(confirmed_end, requested_end)
		ORDER BY COALESCE(confirmed_start, requested_start)
	`

	rows, err := r.conn.Query(ctx, query, mentorID.String(), from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list reserved sessions: %w", err)
	}
	defer rows.Close()

	return scanSessions(rows)
}

// ListConfirmedStartingBetween returns confirmed sessions starting in
// (from, to]. The reminder sweep drives its horizons through this.
func (r *SessionRepository) ListConfirmedStartingBetween(ctx context.Context, from, to time.Time) ([]*session.Session, error) {
	query := selectSession + `
		WHERE status = 'confirmed'
		  AND COALESCE(confirmed_start, requested_start) > $1
		  AND COALESCE(confirmed_start, requested_start) <= $2
		ORDER BY COALESCE(confirmed_start, requested_start)
	`

	rows, err := r.conn.Query(ctx, query, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list confirmed sessions: %w", err)
	}
	defer rows.Close()

	return scanSessions(rows)
}

// ListPendingCreatedBefore returns pending sessions created before cutoff,
// oldest first. The expiry job walks this in batches.
func (r *SessionRepository) ListPendingCreatedBefore(ctx context.Context, cutoff time.Time, limit int) ([]*session.Session, error) {
	query := selectSession + `
		WHERE status = 'pending'
		  AND created_at < $1
		ORDER BY created_at
	`
	args := []interface{}{cutoff}
	if limit > 0 {
		query += ` LIMIT $2`
		args = append(args, limit)
	}

	rows, err := r.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending sessions: %w", err)
	}
	defer rows.Close()

	return scanSessions(rows)
}

// ─────────────────────────────────────────────────────────────────────────────
// Scanning
// ─────────────────────────────────────────────────────────────────────────────

func scanSessions(rows pgx.Rows) ([]*session.Session, error) {
	sessions := make([]*session.Session, 0)
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, s)
	}
	return sessions, rows.Err()
}

func scanSession(row pgx.Row) (*session.Session, error) {
	var (
		s               session.Session
		id              string
		studentID       string
		mentorID        string
		status          string
		studentTimezone string
		mentorTimezone  string
		connection      string
		optionsJSON     []byte
	)

	err := row.Scan(
		&id,
		&studentID,
		&mentorID,
		&status,
		&s.RequestedStart,
		&s.RequestedEnd,
		&s.ConfirmedStart,
		&s.ConfirmedEnd,
		&studentTimezone,
		&mentorTimezone,
		&connection,
		&optionsJSON,
		&s.Note,
		&s.StatusReason,
		&s.Reminder24hSent,
		&s.Reminder1hSent,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
	if err != nil {
		if IsNoRows(err) {
			return nil, shared.NewDomainError("session", "GetByID", shared.ErrNotFound,
				"session not found")
		}
		return nil, fmt.Errorf("failed to scan session: %w", err)
	}

	s.ID = shared.SessionID(id)
	s.StudentID = shared.StudentID(studentID)
	s.MentorID = shared.MentorID(mentorID)
	s.Status = session.Status(status)
	s.StudentTimezone = shared.Timezone(studentTimezone)
	s.MentorTimezone = shared.Timezone(mentorTimezone)
	s.Connection = session.ConnectionPreference(connection)

	if s.RescheduleOptions, err = decodeRescheduleOptions(optionsJSON); err != nil {
		return nil, err
	}

	return &s, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Reschedule option documents
// ─────────────────────────────────────────────────────────────────────────────

type rescheduleOptionDoc struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

func encodeRescheduleOptions(options []session.RescheduleOption) ([]byte, error) {
	docs := make([]rescheduleOptionDoc, 0, len(options))
	for _, o := range options {
		docs = append(docs, rescheduleOptionDoc{Start: o.Start, End: o.End})
	}
	data, err := json.Marshal(docs)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal reschedule options: %w", err)
	}
	return data, nil
}

func decodeRescheduleOptions(raw []byte) ([]session.RescheduleOption, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var docs []rescheduleOptionDoc
	if err := json.Unmarshal(raw, &docs); err != nil {
		return nil, fmt.Errorf("failed to unmarshal reschedule options: %w", err)
	}
	if len(docs) == 0 {
		return nil, nil
	}
	options := make([]session.RescheduleOption, 0, len(docs))
	for _, d := range docs {
		options = append(options, session.RescheduleOption{Start: d.Start, End: d.End})
	}
	return options, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// SESSION NOTE REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// SessionNoteRepository implements session.NoteRepository for PostgreSQL.
type SessionNoteRepository struct {
	conn *Connection
}

// NewSessionNoteRepository creates a new SessionNoteRepository.
func NewSessionNoteRepository(conn *Connection) *SessionNoteRepository {
	return &SessionNoteRepository{conn: conn}
}

// Create appends a mentor note.
func (r *SessionNoteRepository) Create(ctx context.Context, note *session.Note) error {
	query := `
		INSERT INTO session_notes (id, session_id, mentor_id, body, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := r.conn.Exec(ctx, query,
		note.ID,
		note.SessionID.String(),
		note.MentorID.String(),
		note.Body,
		note.CreatedAt,
	)
	if err != nil {
		if IsForeignKeyViolation(err) {
			return shared.NewDomainError("session", "Create", shared.ErrNotFound,
				"session not found")
		}
		return fmt.Errorf("failed to create note: %w", err)
	}

	return nil
}

// ListBySession returns notes in creation order.
func (r *SessionNoteRepository) ListBySession(ctx context.Context, sessionID shared.SessionID) ([]*session.Note, error) {
	query := `
		SELECT id, session_id, mentor_id, body, created_at
		FROM session_notes
		WHERE session_id = $1
		ORDER BY created_at
	`

	rows, err := r.conn.Query(ctx, query, sessionID.String())
	if err != nil {
		return nil, fmt.Errorf("failed to list notes: %w", err)
	}
	defer rows.Close()

	notes := make([]*session.Note, 0)
	for rows.Next() {
		var (
			n         session.Note
			sessionID string
			mentorID  string
		)
		if err := rows.Scan(&n.ID, &sessionID, &mentorID, &n.Body, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan note: %w", err)
		}
		n.SessionID = shared.SessionID(sessionID)
		n.MentorID = shared.MentorID(mentorID)
		notes = append(notes, &n)
	}

	return notes, rows.Err()
}
