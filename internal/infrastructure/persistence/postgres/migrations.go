// Package postgres implements PostgreSQL persistence layer for Mentor Bridge Hub.
package postgres

// GetMigrations returns all embedded migrations.
func GetMigrations() []Migration {
	return []Migration{
		{
			Version: 1,
			Name:    "create_profiles",
			UpSQL:   migration001Up,
			DownSQL: migration001Down,
		},
		{
			Version: 2,
			Name:    "create_availability",
			UpSQL:   migration002Up,
			DownSQL: migration002Down,
		},
		{
			Version: 3,
			Name:    "create_sessions",
			UpSQL:   migration003Up,
			DownSQL: migration003Down,
		},
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// MIGRATION 001: CREATE PROFILES
// ══════════════════════════════════════════════════════════════════════════════

const migration001Up = `
-- Migration: Create student and mentor profile tables
-- Version: 001

-- Canonical (normalized) student intake forms
CREATE TABLE IF NOT EXISTS student_profiles (
    id UUID PRIMARY KEY,
    display_name VARCHAR(100) NOT NULL,
    goals TEXT[] NOT NULL DEFAULT '{}',
    learning_preferences TEXT[] NOT NULL DEFAULT '{}',
    communication_methods TEXT[] NOT NULL DEFAULT '{}',
    guidance_style VARCHAR(30) NOT NULL DEFAULT '',
    neurodivergence VARCHAR(30) NOT NULL DEFAULT 'not_disclosed',
    timezone VARCHAR(64) NOT NULL DEFAULT 'UTC',
    slot_tags TEXT[] NOT NULL DEFAULT '{}',
    age_bucket VARCHAR(20) NOT NULL,
    normalized_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),

    CONSTRAINT valid_age_bucket CHECK (age_bucket IN ('middle_school', 'high_school', 'college', 'adult')),
    CONSTRAINT valid_neurodivergence CHECK (neurodivergence IN ('not_disclosed', 'prefer_not_to_say', 'disclosed'))
);

-- Canonical (normalized) mentor intake forms
CREATE TABLE IF NOT EXISTS mentor_profiles (
    id UUID PRIMARY KEY,
    display_name VARCHAR(100) NOT NULL,
    focus_areas TEXT[] NOT NULL DEFAULT '{}',
    accepted_age_buckets TEXT[] NOT NULL DEFAULT '{}',
    communication_methods TEXT[] NOT NULL DEFAULT '{}',
    slot_tags TEXT[] NOT NULL DEFAULT '{}',
    approaches TEXT[] NOT NULL DEFAULT '{}',
    nd_experience VARCHAR(30) NOT NULL DEFAULT 'none',
    timezone VARCHAR(64) NOT NULL DEFAULT 'UTC',
    current_mentees INTEGER NOT NULL DEFAULT 0,
    max_mentees INTEGER NOT NULL DEFAULT 0,
    active BOOLEAN NOT NULL DEFAULT TRUE,
    normalized_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),

    CONSTRAINT valid_mentee_counts CHECK (current_mentees >= 0 AND max_mentees >= 0)
);

-- Active mentors are the matching pool
CREATE INDEX IF NOT EXISTS idx_mentor_profiles_active ON mentor_profiles(active) WHERE active = TRUE;
`

const migration001Down = `
DROP TABLE IF EXISTS mentor_profiles;
DROP TABLE IF EXISTS student_profiles;
`

// ══════════════════════════════════════════════════════════════════════════════
// MIGRATION 002: CREATE AVAILABILITY
// ══════════════════════════════════════════════════════════════════════════════

const migration002Up = `
-- Migration: Create mentor availability schedules
-- Version: 002

-- Weekly blocks and date exceptions are stored as JSONB: the schedule is
-- always replaced as a whole and expanded in application code.
CREATE TABLE IF NOT EXISTS mentor_availability (
    mentor_id UUID PRIMARY KEY,
    timezone VARCHAR(64) NOT NULL,
    durations INTEGER[] NOT NULL,
    buffer_minutes INTEGER NOT NULL DEFAULT 0,
    max_sessions_per_day INTEGER NOT NULL DEFAULT 0,
    weekly_blocks JSONB NOT NULL DEFAULT '[]'::jsonb,
    exceptions JSONB NOT NULL DEFAULT '[]'::jsonb,
    updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),

    CONSTRAINT valid_buffer CHECK (buffer_minutes >= 0),
    CONSTRAINT valid_day_cap CHECK (max_sessions_per_day >= 0)
);
`

const migration002Down = `
DROP TABLE IF EXISTS mentor_availability;
`

// ══════════════════════════════════════════════════════════════════════════════
// MIGRATION 003: CREATE SESSIONS
// ══════════════════════════════════════════════════════════════════════════════

const migration003Up = `
-- Migration: Create sessions and mentor notes
-- Version: 003

CREATE TABLE IF NOT EXISTS sessions (
    id UUID PRIMARY KEY,
    student_id UUID NOT NULL,
    mentor_id UUID NOT NULL,
    status VARCHAR(30) NOT NULL DEFAULT 'pending',
    requested_start TIMESTAMP WITH TIME ZONE NOT NULL,
    requested_end TIMESTAMP WITH TIME ZONE NOT NULL,
    confirmed_start TIMESTAMP WITH TIME ZONE,
    confirmed_end TIMESTAMP WITH TIME ZONE,
    student_timezone VARCHAR(64) NOT NULL DEFAULT 'UTC',
    mentor_timezone VARCHAR(64) NOT NULL DEFAULT 'UTC',
    connection VARCHAR(20) NOT NULL,
    reschedule_options JSONB NOT NULL DEFAULT '[]'::jsonb,
    note TEXT NOT NULL DEFAULT '',
    status_reason TEXT NOT NULL DEFAULT '',
    reminder_24h_sent BOOLEAN NOT NULL DEFAULT FALSE,
    reminder_1h_sent BOOLEAN NOT NULL DEFAULT FALSE,
    created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),

    CONSTRAINT valid_status CHECK (status IN ('pending', 'confirmed', 'declined', 'reschedule_proposed', 'cancelled', 'completed')),
    CONSTRAINT valid_connection CHECK (connection IN ('video_call', 'voice_call', 'text_chat', 'in_person')),
    CONSTRAINT valid_interval CHECK (requested_end > requested_start)
);

CREATE INDEX IF NOT EXISTS idx_sessions_student_id ON sessions(student_id, created_at DESC);
CREATE INDEX IF NOT EXISTS idx_sessions_mentor_id ON sessions(mentor_id, created_at DESC);

-- Reserved statuses hold the mentor's time: overlap checks and the
-- reminder sweep both scan this index.
CREATE INDEX IF NOT EXISTS idx_sessions_mentor_reserved
    ON sessions(mentor_id, requested_start)
    WHERE status IN ('pending', 'confirmed', 'reschedule_proposed');

CREATE INDEX IF NOT EXISTS idx_sessions_confirmed_start
    ON sessions(confirmed_start)
    WHERE status = 'confirmed';

-- Mentor-private session notes (append-only)
CREATE TABLE IF NOT EXISTS session_notes (
    id UUID PRIMARY KEY,
    session_id UUID NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
    mentor_id UUID NOT NULL,
    body TEXT NOT NULL,
    created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_session_notes_session_id ON session_notes(session_id, created_at);
`

const migration003Down = `
DROP TABLE IF EXISTS session_notes;
DROP TABLE IF EXISTS sessions;
`
