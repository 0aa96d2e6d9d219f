// Package shared contains common domain types, errors, events, and value objects
// that are used across all domain packages.
package shared

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// ═══════════════════════════════════════════════════════════════════════════
// ID Value Objects
// ═══════════════════════════════════════════════════════════════════════════

// UUID validation regex (simple version).
var uuidRegex = regexp.MustCompile(`^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}$`)

// StudentID represents a unique student identifier (UUID format).
type StudentID string

// IsValid checks if the student ID is a valid UUID.
func (s StudentID) IsValid() bool {
	return uuidRegex.MatchString(string(s))
}

// String returns the string representation.
func (s StudentID) String() string {
	return string(s)
}

// IsEmpty checks if the ID is empty.
func (s StudentID) IsEmpty() bool {
	return s == ""
}

// NewStudentID creates a new StudentID with validation.
func NewStudentID(id string) (StudentID, error) {
	sid := StudentID(strings.ToLower(strings.TrimSpace(id)))
	if !sid.IsValid() {
		return "", NewDomainError("shared", "NewStudentID", ErrInvalidID, "invalid student ID format")
	}
	return sid, nil
}

// MentorID represents a unique mentor identifier (UUID format).
type MentorID string

// IsValid checks if the mentor ID is a valid UUID.
func (m MentorID) IsValid() bool {
	return uuidRegex.MatchString(string(m))
}

// String returns the string representation.
func (m MentorID) String() string {
	return string(m)
}

// IsEmpty checks if the ID is empty.
func (m MentorID) IsEmpty() bool {
	return m == ""
}

// NewMentorID creates a new MentorID with validation.
func NewMentorID(id string) (MentorID, error) {
	mid := MentorID(strings.ToLower(strings.TrimSpace(id)))
	if !mid.IsValid() {
		return "", NewDomainError("shared", "NewMentorID", ErrInvalidID, "invalid mentor ID format")
	}
	return mid, nil
}

// SessionID represents a unique session identifier (UUID format).
type SessionID string

// IsValid checks if the session ID is a valid UUID.
func (s SessionID) IsValid() bool {
	return uuidRegex.MatchString(string(s))
}

// String returns the string representation.
func (s SessionID) String() string {
	return string(s)
}

// IsEmpty checks if the ID is empty.
func (s SessionID) IsEmpty() bool {
	return s == ""
}

// NewSessionID creates a new SessionID with validation.
func NewSessionID(id string) (SessionID, error) {
	sid := SessionID(strings.ToLower(strings.TrimSpace(id)))
	if !sid.IsValid() {
		return "", NewDomainError("shared", "NewSessionID", ErrInvalidID, "invalid session ID format")
	}
	return sid, nil
}

// ═══════════════════════════════════════════════════════════════════════════
// Actor / Role
// ═══════════════════════════════════════════════════════════════════════════

// Role identifies the kind of actor performing an operation.
type Role string

const (
	// RoleStudent - a student (mentee) actor.
	RoleStudent Role = "student"

	// RoleMentor - a mentor actor.
	RoleMentor Role = "mentor"

	// RoleAdmin - an administrative actor with elevated read access.
	RoleAdmin Role = "admin"
)

// IsValid checks if the role is one of the defined roles.
func (r Role) IsValid() bool {
	switch r {
	case RoleStudent, RoleMentor, RoleAdmin:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (r Role) String() string {
	return string(r)
}

// ParseRole parses and validates a role string.
func ParseRole(s string) (Role, error) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	if !r.IsValid() {
		return "", NewDomainError("shared", "ParseRole", ErrInvalidInput,
			fmt.Sprintf("unknown role %q", s))
	}
	return r, nil
}

// Actor identifies who is performing an operation. Every state-changing
// operation takes an explicit Actor; the core never reads ambient identity.
type Actor struct {
	// ID - the actor's identifier (student or mentor UUID).
	ID string

	// Role - the actor's role.
	Role Role
}

// IsValid checks that the actor carries both an ID and a known role.
func (a Actor) IsValid() bool {
	return a.ID != "" && a.Role.IsValid()
}

// IsStudent reports whether the actor acts as a student.
func (a Actor) IsStudent() bool {
	return a.Role == RoleStudent
}

// IsMentor reports whether the actor acts as a mentor.
func (a Actor) IsMentor() bool {
	return a.Role == RoleMentor
}

// IsAdmin reports whether the actor acts as an administrator.
func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}

// NewActor creates a validated Actor.
func NewActor(id string, role Role) (Actor, error) {
	a := Actor{ID: strings.ToLower(strings.TrimSpace(id)), Role: role}
	if !a.IsValid() {
		return Actor{}, NewDomainError("shared", "NewActor", ErrInvalidInput, "actor requires id and role")
	}
	return a, nil
}

// ═══════════════════════════════════════════════════════════════════════════
// Timezone Value Object
// ═══════════════════════════════════════════════════════════════════════════

// Timezone is an IANA timezone name (e.g. "America/Los_Angeles").
// Resolution against the host tz database happens in pkg/timeutil;
// here we only guard against obviously malformed values.
type Timezone string

// DefaultTimezone is used when a profile declares no timezone.
const DefaultTimezone Timezone = "UTC"

// IsValid performs a syntactic check of the zone name.
func (t Timezone) IsValid() bool {
	if t == "" {
		return false
	}
	_, err := time.LoadLocation(string(t))
	return err == nil
}

// String returns the string representation.
func (t Timezone) String() string {
	return string(t)
}

// Location resolves the zone against the host tz database.
func (t Timezone) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(string(t))
	if err != nil {
		return nil, WrapError("shared", "Timezone.Location", ErrInvalidFormat,
			fmt.Sprintf("unknown timezone %q", string(t)), err)
	}
	return loc, nil
}

// NewTimezone creates a validated Timezone, defaulting empty input to UTC.
func NewTimezone(name string) (Timezone, error) {
	tz := Timezone(strings.TrimSpace(name))
	if tz == "" {
		return DefaultTimezone, nil
	}
	if !tz.IsValid() {
		return "", NewDomainError("shared", "NewTimezone", ErrInvalidFormat,
			fmt.Sprintf("unknown timezone %q", name))
	}
	return tz, nil
}

// ═══════════════════════════════════════════════════════════════════════════
// TimeOfDay Value Object
// ═══════════════════════════════════════════════════════════════════════════

// TimeOfDay is a wall-clock time within a day, stored as minutes from
// midnight (0 .. 1439). Used by weekly availability blocks.
type TimeOfDay int

const (
	// MinutesPerDay is the number of minutes in a day.
	MinutesPerDay = 24 * 60
)

// IsValid checks that the value is within a single day.
func (t TimeOfDay) IsValid() bool {
	return t >= 0 && t < MinutesPerDay
}

// Hour returns the hour component (0-23).
func (t TimeOfDay) Hour() int {
	return int(t) / 60
}

// Minute returns the minute component (0-59).
func (t TimeOfDay) Minute() int {
	return int(t) % 60
}

// Minutes returns the underlying minutes-from-midnight value.
func (t TimeOfDay) Minutes() int {
	return int(t)
}

// String formats the time as "HH:MM".
func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour(), t.Minute())
}

// Before reports whether t is strictly before other.
func (t TimeOfDay) Before(other TimeOfDay) bool {
	return t < other
}

// At anchors the wall-clock time onto a calendar date in the given location.
func (t TimeOfDay) At(year int, month time.Month, day int, loc *time.Location) time.Time {
	return time.Date(year, month, day, t.Hour(), t.Minute(), 0, 0, loc)
}

// ParseTimeOfDay parses "HH:MM" into a TimeOfDay.
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	var h, m int
	if _, err := fmt.Sscanf(strings.TrimSpace(s), "%d:%d", &h, &m); err != nil {
		return 0, WrapError("shared", "ParseTimeOfDay", ErrInvalidFormat,
			fmt.Sprintf("expected HH:MM, got %q", s), err)
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, NewDomainError("shared", "ParseTimeOfDay", ErrValueOutOfRange,
			fmt.Sprintf("time of day out of range: %q", s))
	}
	return TimeOfDay(h*60 + m), nil
}

// NewTimeOfDay creates a TimeOfDay from hour and minute components.
func NewTimeOfDay(hour, minute int) (TimeOfDay, error) {
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, NewDomainError("shared", "NewTimeOfDay", ErrValueOutOfRange,
			fmt.Sprintf("time of day out of range: %02d:%02d", hour, minute))
	}
	return TimeOfDay(hour*60 + minute), nil
}

// ═══════════════════════════════════════════════════════════════════════════
// Tag helpers
// ═══════════════════════════════════════════════════════════════════════════

// NormalizeTags lowercases, trims, and dedupes a tag list while preserving
// the first-seen order. Empty entries are dropped.
func NormalizeTags(tags []string) []string {
	if len(tags) == 0 {
		return []string{}
	}
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		normalized := strings.ToLower(strings.TrimSpace(tag))
		if normalized == "" {
			continue
		}
		if _, ok := seen[normalized]; ok {
			continue
		}
		seen[normalized] = struct{}{}
		out = append(out, normalized)
	}
	return out
}

// TagOverlap returns how many of the wanted tags are present in the offered
// set. Both lists are expected to be normalized.
func TagOverlap(wanted, offered []string) int {
	if len(wanted) == 0 || len(offered) == 0 {
		return 0
	}
	set := make(map[string]struct{}, len(offered))
	for _, tag := range offered {
		set[tag] = struct{}{}
	}
	count := 0
	for _, tag := range wanted {
		if _, ok := set[tag]; ok {
			count++
		}
	}
	return count
}

// HasAnyTag reports whether at least one of the wanted tags is offered.
func HasAnyTag(wanted, offered []string) bool {
	return TagOverlap(wanted, offered) > 0
}
