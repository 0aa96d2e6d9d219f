package command

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
// Простые фейки хранилищ для тестов обработчиков команд.
// ══════════════════════════════════════════════════════════════════════════════

type fakeStudentRepo struct {
	students map[shared.StudentID]*profile.StudentProfile
}

func newFakeStudentRepo() *fakeStudentRepo {
	return &fakeStudentRepo{students: make(map[shared.StudentID]*profile.StudentProfile)}
}

func (f *fakeStudentRepo) Save(_ context.Context, student *profile.StudentProfile) error {
	f.students[student.ID] = student
	return nil
}

func (f *fakeStudentRepo) GetByID(_ context.Context, id shared.StudentID) (*profile.StudentProfile, error) {
	student, ok := f.students[id]
	if !ok {
		return nil, shared.NewDomainError("profile", "fakeStudentRepo.GetByID",
			shared.ErrNotFound, "student not found")
	}
	return student, nil
}

type fakeMentorRepo struct {
	mentors map[shared.MentorID]*profile.MentorProfile
}

func newFakeMentorRepo() *fakeMentorRepo {
	return &fakeMentorRepo{mentors: make(map[shared.MentorID]*profile.MentorProfile)}
}

func (f *fakeMentorRepo) Save(_ context.Context, mentor *profile.MentorProfile) error {
	f.mentors[mentor.ID] = mentor
	return nil
}

func (f *fakeMentorRepo) GetByID(_ context.Context, id shared.MentorID) (*profile.MentorProfile, error) {
	mentor, ok := f.mentors[id]
	if !ok {
		return nil, shared.NewDomainError("profile", "fakeMentorRepo.GetByID",
			shared.ErrNotFound, "mentor not found")
	}
	return mentor, nil
}

func (f *fakeMentorRepo) ListActive(_ context.Context, _ profile.ListOptions) ([]*profile.MentorProfile, error) {
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
	saved     *availability.MentorAvailability
}

func newFakeAvailabilityRepo() *fakeAvailabilityRepo {
	return &fakeAvailabilityRepo{schedules: make(map[shared.MentorID]*availability.MentorAvailability)}
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
	f.schedules[avail.MentorID] = avail
	f.saved = avail
	return nil
}

// fakeSessionRepo хранит сессии в памяти. Поля createErr и updateErrs
// подставляют ошибки условных записей: updateErrs снимается по одной
// ошибке на вызов, что позволяет проверять повтор после CAS-конфликта.
type fakeSessionRepo struct {
	sessions    map[shared.SessionID]*session.Session
	createErr   error
	updateErrs  []error
	updateCalls int

	// updateHook выполняется перед каждым UpdateGuarded и имитирует
	// параллельное изменение хранилища.
	updateHook func()
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{sessions: make(map[shared.SessionID]*session.Session)}
}

func (f *fakeSessionRepo) CreateGuarded(_ context.Context, s *session.Session, _ int) error {
	if f.createErr != nil {
		return f.createErr
	}
	stored := *s
	f.sessions[s.ID] = &stored
	return nil
}

func (f *fakeSessionRepo) GetByID(_ context.Context, id shared.SessionID) (*session.Session, error) {
	s, ok := f.sessions[id]
	if !ok {
		return nil, shared.NewDomainError("session", "fakeSessionRepo.GetByID",
			shared.ErrNotFound, "session not found")
	}
	// Копия: обработчик мутирует сессию in-memory до условной записи.
	clone := *s
	return &clone, nil
}

func (f *fakeSessionRepo) UpdateGuarded(_ context.Context, s *session.Session, _ session.Status) error {
	f.updateCalls++
	if f.updateHook != nil {
		f.updateHook()
	}
	if len(f.updateErrs) > 0 {
		err := f.updateErrs[0]
		f.updateErrs = f.updateErrs[1:]
		if err != nil {
			return err
		}
	}
	stored := *s
	f.sessions[s.ID] = &stored
	return nil
}

func (f *fakeSessionRepo) ListByStudent(_ context.Context, studentID shared.StudentID, _ session.ListOptions) ([]*session.Session, error) {
	var out []*session.Session
	for _, s := range f.sessions {
		if s.StudentID == studentID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeSessionRepo) ListByMentor(_ context.Context, mentorID shared.MentorID, _ session.ListOptions) ([]*session.Session, error) {
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

func (f *fakeSessionRepo) ListConfirmedStartingBetween(_ context.Context, from, to time.Time) ([]*session.Session, error) {
	var out []*session.Session
	for _, s := range f.sessions {
		if s.Status != session.StatusConfirmed {
			continue
		}
		start := s.EffectiveStart()
		if start.After(from) && !start.After(to) {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeSessionRepo) ListPendingCreatedBefore(_ context.Context, cutoff time.Time, _ int) ([]*session.Session, error) {
	var out []*session.Session
	for _, s := range f.sessions {
		if s.Status == session.StatusPending && s.CreatedAt.Before(cutoff) {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeSessionRepo) MarkReminderScheduled(_ context.Context, id shared.SessionID, horizon session.ReminderHorizon) (bool, error) {
	s, ok := f.sessions[id]
	if !ok || s.Status != session.StatusConfirmed {
		return false, nil
	}
	switch horizon {
	case session.Horizon24h:
		if s.Reminder24hSent {
			return false, nil
		}
		s.Reminder24hSent = true
	case session.Horizon1h:
		if s.Reminder1hSent {
			return false, nil
		}
		s.Reminder1hSent = true
	}
	return true, nil
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

type fakePublisher struct {
	events []shared.Event
}

func (f *fakePublisher) Publish(_ context.Context, event shared.Event) error {
	f.events = append(f.events, event)
	return nil
}

type fakeMatchInvalidator struct {
	invalidated    []string
	invalidateAlls int
}

func (f *fakeMatchInvalidator) Invalidate(_ context.Context, studentID string) error {
	f.invalidated = append(f.invalidated, studentID)
	return nil
}

func (f *fakeMatchInvalidator) InvalidateAll(context.Context) error {
	f.invalidateAlls++
	return nil
}
