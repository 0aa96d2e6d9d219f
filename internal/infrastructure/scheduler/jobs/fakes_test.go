package jobs

import (
	"context"
	"time"

	"github.com/mentor-bridge/mentor-bridge-hub/internal/domain/session"
	"github.com/mentor-bridge/mentor-bridge-hub/internal/domain/shared"
)

// fakeSessionRepo - хранилище сессий в памяти для тестов фоновых джобов.
// Поле updateErr подставляется вместо успешной условной записи и
// имитирует проигранную CAS-гонку.
type fakeSessionRepo struct {
	sessions  map[shared.SessionID]*session.Session
	updateErr error
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{sessions: make(map[shared.SessionID]*session.Session)}
}

func (f *fakeSessionRepo) CreateGuarded(_ context.Context, s *session.Session, _ int) error {
	f.sessions[s.ID] = s
	return nil
}

func (f *fakeSessionRepo) GetByID(_ context.Context, id shared.SessionID) (*session.Session, error) {
	s, ok := f.sessions[id]
	if !ok {
		return nil, shared.NewDomainError("session", "fakeSessionRepo.GetByID",
			shared.ErrNotFound, "session not found")
	}
	return s, nil
}

func (f *fakeSessionRepo) UpdateGuarded(_ context.Context, s *session.Session, _ session.Status) error {
	if f.updateErr != nil {
		return f.updateErr
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

func (f *fakeSessionRepo) ListPendingCreatedBefore(_ context.Context, cutoff time.Time, limit int) ([]*session.Session, error) {
	var out []*session.Session
	for _, s := range f.sessions {
		if s.Status != session.StatusPending || !s.CreatedAt.Before(cutoff) {
			continue
		}
		out = append(out, s)
		if limit > 0 && len(out) >= limit {
			break
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

type fakePublisher struct {
	events []shared.Event
}

func (f *fakePublisher) Publish(_ context.Context, event shared.Event) error {
	f.events = append(f.events, event)
	return nil
}
