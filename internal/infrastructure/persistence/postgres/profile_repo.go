// Package postgres implements PostgreSQL persistence layer for Mentor Bridge Hub.
package postgres

import (
	"context"
	"fmt"

	"github.com/mentor-bridge/mentor-bridge-hub/internal/domain/profile"
	"github.com/mentor-bridge/mentor-bridge-hub/internal/domain/shared"

	"github.com/jackc/pgx/v5"
)

// ══════════════════════════════════════════════════════════════════════════════
// STUDENT PROFILE REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// StudentProfileRepository implements profile.StudentRepository for PostgreSQL.
type StudentProfileRepository struct {
	conn *Connection
}

// NewStudentProfileRepository creates a new StudentProfileRepository.
func NewStudentProfileRepository(conn *Connection) *StudentProfileRepository {
	return &StudentProfileRepository{conn: conn}
}

// Save creates or replaces a student profile.
func (r *StudentProfileRepository) Save(ctx context.Context, s *profile.StudentProfile) error {
	query := `
		INSERT INTO student_profiles (
			id, display_name, goals, learning_preferences, communication_methods,
			guidance_style, neurodivergence, timezone, slot_tags, age_bucket, normalized_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (id) DO UPDATE SET
			display_name = EXCLUDED.display_name,
			goals = EXCLUDED.goals,
			learning_preferences = EXCLUDED.learning_preferences,
			communication_methods = EXCLUDED.communication_methods,
			guidance_style = EXCLUDED.guidance_style,
			neurodivergence = EXCLUDED.neurodivergence,
			timezone = EXCLUDED.timezone,
			slot_tags = EXCLUDED.slot_tags,
			age_bucket = EXCLUDED.age_bucket,
			normalized_at = EXCLUDED.normalized_at
	`

	_, err := r.conn.Exec(ctx, query,
		s.ID.String(),
		s.DisplayName,
		s.Goals,
		s.LearningPreferences,
		s.CommunicationMethods,
		string(s.GuidanceStyle),
		string(s.Neurodivergence),
		s.Timezone.String(),
		s.SlotTags,
		string(s.AgeBucket),
		s.NormalizedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save student profile: %w", err)
	}

	return nil
}

// GetByID returns a student profile by ID.
func (r *StudentProfileRepository) GetByID(ctx context.Context, id shared.StudentID) (*profile.StudentProfile, error) {
	query := `
		SELECT id, display_name, goals, learning_preferences, communication_methods,
			   guidance_style, neurodivergence, timezone, slot_tags, age_bucket, normalized_at
		FROM student_profiles
		WHERE id = $1
	`

	row := r.conn.QueryRow(ctx, query, id.String())
	return scanStudentProfile(row)
}

func scanStudentProfile(row pgx.Row) (*profile.StudentProfile, error) {
	var (
		s               profile.StudentProfile
		id              string
		guidanceStyle   string
		neurodivergence string
		timezone        string
		ageBucket       string
	)

	err := row.Scan(
		&id,
		&s.DisplayName,
		&s.Goals,
		&s.LearningPreferences,
		&s.CommunicationMethods,
		&guidanceStyle,
		&neurodivergence,
		&timezone,
		&s.SlotTags,
		&ageBucket,
		&s.NormalizedAt,
	)
	if err != nil {
		if IsNoRows(err) {
			return nil, shared.NewDomainError("profile", "GetByID", shared.ErrNotFound,
				"student profile not found")
		}
		return nil, fmt.Errorf("failed to scan student profile: %w", err)
	}

	s.ID = shared.StudentID(id)
	s.GuidanceStyle = profile.GuidanceStyle(guidanceStyle)
	s.Neurodivergence = profile.NDDisclosure(neurodivergence)
	s.Timezone = shared.Timezone(timezone)
	s.AgeBucket = profile.AgeBucket(ageBucket)

	return &s, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// MENTOR PROFILE REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// MentorProfileRepository implements profile.MentorRepository for PostgreSQL.
type MentorProfileRepository struct {
	conn *Connection
}

// NewMentorProfileRepository creates a new MentorProfileRepository.
func NewMentorProfileRepository(conn *Connection) *MentorProfileRepository {
	return &MentorProfileRepository{conn: conn}
}

// Save creates or replaces a mentor profile.
func (r *MentorProfileRepository) Save(ctx context.Context, m *profile.MentorProfile) error {
	query := `
		INSERT INTO mentor_profiles (
			id, display_name, focus_areas, accepted_age_buckets, communication_methods,
			slot_tags, approaches, nd_experience, timezone, current_mentees,
			max_mentees, active, normalized_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (id) DO UPDATE SET
			display_name = EXCLUDED.display_name,
			focus_areas = EXCLUDED.focus_areas,
			accepted_age_buckets = EXCLUDED.accepted_age_buckets,
			communication_methods = EXCLUDED.communication_methods,
			slot_tags = EXCLUDED.slot_tags,
			approaches = EXCLUDED.approaches,
			nd_experience = EXCLUDED.nd_experience,
			timezone = EXCLUDED.timezone,
			current_mentees = EXCLUDED.current_mentees,
			max_mentees = EXCLUDED.max_mentees,
			active = EXCLUDED.active,
			normalized_at = EXCLUDED.normalized_at
	`

	buckets := make([]string, 0, len(m.AcceptedAgeBuckets))
	for _, b := range m.AcceptedAgeBuckets {
		buckets = append(buckets, string(b))
	}
	approaches := make([]string, 0, len(m.Approaches))
	for _, a := range m.Approaches {
		approaches = append(approaches, string(a))
	}

	_, err := r.conn.Exec(ctx, query,
		m.ID.String(),
		m.DisplayName,
		m.FocusAreas,
		buckets,
		m.CommunicationMethods,
		m.SlotTags,
		approaches,
		string(m.NDExperience),
		m.Timezone.String(),
		m.CurrentMentees,
		m.MaxMentees,
		m.Active,
		m.NormalizedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save mentor profile: %w", err)
	}

	return nil
}

// GetByID returns a mentor profile by ID.
func (r *MentorProfileRepository) GetByID(ctx context.Context, id shared.MentorID) (*profile.MentorProfile, error) {
	query := selectMentorProfile + ` WHERE id = $1`

	row := r.conn.QueryRow(ctx, query, id.String())
	return scanMentorProfile(row)
}

// ListActive returns mentors currently accepting mentees.
func (r *MentorProfileRepository) ListActive(ctx context.Context, opts profile.ListOptions) ([]*profile.MentorProfile, error) {
	query := selectMentorProfile + ` WHERE active = TRUE ORDER BY id`
	args := []interface{}{}

	if opts.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", len(args)+1)
		args = append(args, opts.Limit)
	}
	if opts.Offset > 0 {
		query += fmt.Sprintf(" OFFSET $%d", len(args)+1)
		args = append(args, opts.Offset)
	}

	rows, err := r.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list active mentors: %w", err)
	}
	defer rows.Close()

	mentors := make([]*profile.MentorProfile, 0)
	for rows.Next() {
		m, err := scanMentorProfile(rows)
		if err != nil {
			return nil, err
		}
		mentors = append(mentors, m)
	}

	return mentors, rows.Err()
}

// Count returns the total number of mentor profiles.
func (r *MentorProfileRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.conn.QueryRow(ctx, `SELECT COUNT(*) FROM mentor_profiles`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count mentors: %w", err)
	}
	return count, nil
}

const selectMentorProfile = `
	SELECT id, display_name, focus_areas, accepted_age_buckets, communication_methods,
		   slot_tags, approaches, nd_experience, timezone, current_mentees,
		   max_mentees, active, normalized_at
	FROM mentor_profiles
`

func scanMentorProfile(row pgx.Row) (*profile.MentorProfile, error) {
	var (
		m            profile.MentorProfile
		id           string
		buckets      []string
		approaches   []string
		ndExperience string
		timezone     string
	)

	err := row.Scan(
		&id,
		&m.DisplayName,
		&m.FocusAreas,
		&buckets,
		&m.CommunicationMethods,
		&m.SlotTags,
		&approaches,
		&ndExperience,
		&timezone,
		&m.CurrentMentees,
		&m.MaxMentees,
		&m.Active,
		&m.NormalizedAt,
	)
	if err != nil {
		if IsNoRows(err) {
			return nil, shared.NewDomainError("profile", "GetByID", shared.ErrNotFound,
				"mentor profile not found")
		}
		return nil, fmt.Errorf("failed to scan mentor profile: %w", err)
	}

	m.ID = shared.MentorID(id)
	m.NDExperience = profile.NDExperience(ndExperience)
	m.Timezone = shared.Timezone(timezone)
	m.AcceptedAgeBuckets = make([]profile.AgeBucket, 0, len(buckets))
	for _, b := range buckets {
		m.AcceptedAgeBuckets = append(m.AcceptedAgeBuckets, profile.AgeBucket(b))
	}
	m.Approaches = make([]profile.MentoringApproach, 0, len(approaches))
	for _, a := range approaches {
		m.Approaches = append(m.Approaches, profile.MentoringApproach(a))
	}

	return &m, nil
}
