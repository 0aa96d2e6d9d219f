package query

import (
	"context"
	"time"

	"github.com/mentor-bridge/mentor-bridge-hub/internal/domain/availability"
	"github.com/mentor-bridge/mentor-bridge-hub/internal/domain/profile"
	"github.com/mentor-bridge/mentor-bridge-hub/internal/domain/session"
	"github.com/mentor-bridge/mentor-bridge-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// IN-MEMORY FAKES
// Фейки хранилищ для тестов обработчиков запросов. Счётчики вызовов
// позволяют проверять, что кэш действительно замыкает путь к хранилищу.
// ══════════════════════════════════════════════════════════════════════════════

type fakeMentorRepo struct {
	mentors         []*profile.MentorProfile
	listActiveCalls int
}

func (f *fakeMentorRepo) Save(_ context.Context, mentor *profile.MentorProfile) error {
	f.mentors = append(f.mentors, mentor)
	return nil
}

func (f *fakeMentorRepo) GetByID(_ context.Context, id shared.MentorID) (*profile.MentorProfile, error) {
	for _, mentor := range f.mentors {
		if mentor.ID == id {
			return mentor, nil
		}
	}
	return nil, shared.NewDomainError("profile", "fakeMentorRepo.GetByID",
		shared.ErrNotFound, "mentor not found")
}

func (f *fakeMentorRepo) ListActive(_ context.Context, _ profile.ListOptions) ([]*profile.MentorProfile, error) {
	f.listActiveCalls++
	active := make([]*profile.MentorProfile, 0, len(f.mentors))
	for _, mentor := range f.mentors {
		if mentor.Active {
			active = append(active, mentor)
		}
	}
	return active, nil
}

func (f *fakeMentorRepo) Count(_ context.Context) (int, error) {
	return len(f.mentors), nil
}

type fakeAvailabilityRepo struct {
	schedules map[shared.MentorID]*availability.MentorAvailability
}

func (f *fakeAvailabilityRepo) GetByMentorID(_ context.Context, mentorID shared.MentorID) (*availability.MentorAvailability, error) {
	avail, ok := f.schedules[mentorID]
	if !ok {
		return nil, shared.NewDomainError("availability", "fakeAvailabilityRepo.GetByMentorID",
			shared.ErrNotFound, "schedule not found")
	}
	return avail, nil
}

func (f *fakeAvailabilityRepo) Save(_ context.Context, avail *availability.MentorAvailability) error {
	if f.schedules == nil {
		f.schedules = make(map[shared.MentorID]*availability.MentorAvailability)
	}
	f.schedules[avail.MentorID] = avail
	return nil
}

type fakeSessionRepo struct {
	sessions []*session.Session

	lastStudentID shared.StudentID
	lastMentorID  shared.MentorID
	lastOpts      session.ListOptions
}

func (f *fakeSessionRepo) CreateGuarded(_ context.Context, s *session.Session, _ int) error {
	f.sessions = append(f.sessions, s)
	return nil
}

func (f *fakeSessionRepo) GetByID(_ context.Context, id shared.SessionID) (*session.Session, error) {
	for _, s := range f.sessions {
		if s.ID == id {
			return s, nil
		}
	}
	return nil, shared.NewDomainError("session", "fakeSessionRepo.GetByID",
		shared.ErrNotFound, "session not found")
}

func (f *fakeSessionRepo) UpdateGuarded(_ context.Context, _ *session.Session, _ session.Status) error {
	return nil
}

func (f *fakeSessionRepo) ListByStudent(_ context.Context, studentID shared.StudentID, opts session.ListOptions) ([]*session.Session, error) {
	f.lastStudentID = studentID
	f.lastOpts = opts
	var out []*session.Session
	for _, s := range f.sessions {
		if s.StudentID == studentID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeSessionRepo) ListByMentor(_ context.Context, mentorID shared.MentorID, opts session.ListOptions) ([]*session.Session, error) {
	f.lastMentorID = mentorID
	f.lastOpts = opts
	var out []*session.Session
	for _, s := range f.sessions {
		if s.MentorID == mentorID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeSessionRepo) ListReservedBetween(_ context.Context, mentorID shared.MentorID, from, to time.Time) ([]*session.Session, error) {
	var out []*session.Session
	for _, s := range f.sessions {
		if s.MentorID != mentorID || !s.Status.IsReserved() {
			continue
		}
		if s.EffectiveStart().Before(to) && from.Before(s.EffectiveEnd()) {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeSessionRepo) ListConfirmedStartingBetween(_ context.Context, _, _ time.Time) ([]*session.Session, error) {
	return nil, nil
}

func (f *fakeSessionRepo) ListPendingCreatedBefore(_ context.Context, _ time.Time, _ int) ([]*session.Session, error) {
	return nil, nil
}

func (f *fakeSessionRepo) MarkReminderScheduled(_ context.Context, _ shared.SessionID, _ session.ReminderHorizon) (bool, error) {
	return false, nil
}

type fakeNoteRepo struct {
	notes []*session.Note
}

func (f *fakeNoteRepo) Create(_ context.Context, note *session.Note) error {
	f.notes = append(f.notes, note)
	return nil
}

func (f *fakeNoteRepo) ListBySession(_ context.Context, sessionID shared.SessionID) ([]*session.Note, error) {
	var out []*session.Note
	for _, note := range f.notes {
		if note.SessionID == sessionID {
			out = append(out, note)
		}
	}
	return out, nil
}

type fakeMatchCache struct {
	entries  map[string]*FindMatchesResult
	getCalls int
	setCalls int
}

func newFakeMatchCache() *fakeMatchCache {
	return &fakeMatchCache{entries: make(map[string]*FindMatchesResult)}
}

func (f *fakeMatchCache) Get(_ context.Context, studentID string) (*FindMatchesResult, bool) {
	f.getCalls++
	result, ok := f.entries[studentID]
	return result, ok
}

func (f *fakeMatchCache) Set(_ context.Context, studentID string, result *FindMatchesResult) error {
	f.setCalls++
	f.entries[studentID] = result
	return nil
}
