package session

import (
	"testing"
	"time"

	"github.com/mentor-bridge/mentor-bridge-hub/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	lcSessionID = "aaaaaaaa-aaaa-aaaa-aaaa-aaaaaaaaaaaa"
	lcStudentID = "11111111-1111-1111-1111-111111111111"
	lcMentorID  = "22222222-2222-2222-2222-222222222222"
	lcOutsider  = "99999999-9999-9999-9999-999999999999"
)

var (
	studentActor = shared.Actor{ID: lcStudentID, Role: shared.RoleStudent}
	mentorActor  = shared.Actor{ID: lcMentorID, Role: shared.RoleMentor}
)

func newTestSession(t *testing.T, status Status) *Session {
	t.Helper()

	start := time.Date(2026, time.March, 10, 9, 0, 0, 0, time.UTC)
	s, err := NewSession(NewSessionParams{
		ID:         shared.SessionID(lcSessionID),
		StudentID:  shared.StudentID(lcStudentID),
		MentorID:   shared.MentorID(lcMentorID),
		Start:      start,
		End:        start.Add(45 * time.Minute),
		Connection: ConnectionVideoCall,
	})
	require.NoError(t, err)

	s.Status = status
	return s
}

func TestNewSession(t *testing.T) {
	s := newTestSession(t, StatusPending)

	assert.Equal(t, StatusPending, s.Status)
	assert.Nil(t, s.ConfirmedStart)
	assert.Equal(t, s.RequestedStart, s.EffectiveStart())
	assert.Equal(t, s.RequestedEnd, s.EffectiveEnd())
}

func TestNewSession_Validation(t *testing.T) {
	start := time.Date(2026, time.March, 10, 9, 0, 0, 0, time.UTC)

	base := NewSessionParams{
		ID:         shared.SessionID(lcSessionID),
		StudentID:  shared.StudentID(lcStudentID),
		MentorID:   shared.MentorID(lcMentorID),
		Start:      start,
		End:        start.Add(45 * time.Minute),
		Connection: ConnectionVideoCall,
	}

	tests := []struct {
		name   string
		mutate func(*NewSessionParams)
	}{
		{"invalid session id", func(p *NewSessionParams) { p.ID = "nope" }},
		{"invalid student id", func(p *NewSessionParams) { p.StudentID = "" }},
		{"invalid mentor id", func(p *NewSessionParams) { p.MentorID = "" }},
		{"end before start", func(p *NewSessionParams) { p.End = p.Start.Add(-time.Minute) }},
		{"zero-length interval", func(p *NewSessionParams) { p.End = p.Start }},
		{"unknown connection", func(p *NewSessionParams) { p.Connection = "carrier_pigeon" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			params := base
			tt.mutate(&params)
			_, err := NewSession(params)
			assert.Error(t, err)
		})
	}
}

func TestApply_TransitionMatrix(t *testing.T) {
	tests := []struct {
		name    string
		status  Status
		kind    TransitionKind
		actor   shared.Actor
		wantErr error
	}{
		{"mentor confirms pending", StatusPending, TransitionConfirm, mentorActor, nil},
		{"mentor declines pending", StatusPending, TransitionDecline, mentorActor, nil},
		{"mentor proposes reschedule from pending", StatusPending, TransitionProposeReschedule, mentorActor, nil},
		{"mentor completes confirmed", StatusConfirmed, TransitionComplete, mentorActor, nil},
		{"student cancels pending", StatusPending, TransitionCancel, studentActor, nil},
		{"mentor cancels confirmed", StatusConfirmed, TransitionCancel, mentorActor, nil},
		{"student cancels proposed reschedule", StatusRescheduleProposed, TransitionCancel, studentActor, nil},

		{"student cannot confirm", StatusPending, TransitionConfirm, studentActor, shared.ErrForbidden},
		{"student cannot decline", StatusPending, TransitionDecline, studentActor, shared.ErrForbidden},
		{"mentor cannot accept own reschedule", StatusRescheduleProposed, TransitionAcceptReschedule, mentorActor, shared.ErrForbidden},
		{"outsider cannot cancel", StatusPending, TransitionCancel, shared.Actor{ID: lcOutsider, Role: shared.RoleStudent}, shared.ErrForbidden},

		{"cannot confirm confirmed", StatusConfirmed, TransitionConfirm, mentorActor, shared.ErrStateTransition},
		{"cannot decline completed", StatusCompleted, TransitionDecline, mentorActor, shared.ErrStateTransition},
		{"cannot cancel declined", StatusDeclined, TransitionCancel, studentActor, shared.ErrStateTransition},
		{"cannot cancel completed", StatusCompleted, TransitionCancel, mentorActor, shared.ErrStateTransition},
		{"cannot complete pending", StatusPending, TransitionComplete, mentorActor, shared.ErrStateTransition},
		{"cannot accept without proposal", StatusConfirmed, TransitionAcceptReschedule, studentActor, shared.ErrStateTransition},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestSession(t, tt.status)
			req := TransitionRequest{Kind: tt.kind, Actor: tt.actor, Reason: "busy that day"}
			if tt.kind == TransitionProposeReschedule {
				req.Options = []RescheduleOption{{
					Start: s.RequestedStart.Add(24 * time.Hour),
					End:   s.RequestedEnd.Add(24 * time.Hour),
				}}
			}

			err := Apply(s, req)
			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Equal(t, tt.status, s.Status, "session is not mutated on error")
			}
		})
	}
}

func TestApply_AuthorizationBeforeState(t *testing.T) {
	// Неавторизованный актор получает forbidden даже там, где переход
	// невозможен и по состоянию.
	s := newTestSession(t, StatusCompleted)

	err := Apply(s, TransitionRequest{Kind: TransitionConfirm, Actor: studentActor})
	assert.ErrorIs(t, err, shared.ErrForbidden)
}

func TestApply_Confirm(t *testing.T) {
	s := newTestSession(t, StatusPending)

	require.NoError(t, Apply(s, TransitionRequest{Kind: TransitionConfirm, Actor: mentorActor}))

	assert.Equal(t, StatusConfirmed, s.Status)
	require.NotNil(t, s.ConfirmedStart)
	assert.Equal(t, s.RequestedStart, *s.ConfirmedStart)
	assert.Equal(t, s.RequestedEnd, *s.ConfirmedEnd)
}

func TestApply_DeclineRequiresReason(t *testing.T) {
	s := newTestSession(t, StatusPending)

	err := Apply(s, TransitionRequest{Kind: TransitionDecline, Actor: mentorActor, Reason: "   "})
	assert.ErrorIs(t, err, shared.ErrValidation)
	assert.Equal(t, StatusPending, s.Status)

	require.NoError(t, Apply(s, TransitionRequest{Kind: TransitionDecline, Actor: mentorActor, Reason: "fully booked"}))
	assert.Equal(t, StatusDeclined, s.Status)
	assert.Equal(t, "fully booked", s.StatusReason)
}

func TestApply_ProposeAndAcceptReschedule(t *testing.T) {
	s := newTestSession(t, StatusPending)

	first := RescheduleOption{
		Start: s.RequestedStart.Add(24 * time.Hour),
		End:   s.RequestedEnd.Add(24 * time.Hour),
	}
	second := RescheduleOption{
		Start: s.RequestedStart.Add(48 * time.Hour),
		End:   s.RequestedEnd.Add(48 * time.Hour),
	}

	require.NoError(t, Apply(s, TransitionRequest{
		Kind:    TransitionProposeReschedule,
		Actor:   mentorActor,
		Options: []RescheduleOption{first, second},
	}))
	assert.Equal(t, StatusRescheduleProposed, s.Status)
	assert.Len(t, s.RescheduleOptions, 2)

	// Индекс за пределами списка - ошибка валидации, статус не меняется.
	err := Apply(s, TransitionRequest{Kind: TransitionAcceptReschedule, Actor: studentActor, OptionIndex: 2})
	assert.ErrorIs(t, err, shared.ErrValidation)
	assert.Equal(t, StatusRescheduleProposed, s.Status)

	require.NoError(t, Apply(s, TransitionRequest{Kind: TransitionAcceptReschedule, Actor: studentActor, OptionIndex: 1}))

	assert.Equal(t, StatusConfirmed, s.Status)
	assert.Equal(t, second.Start, s.RequestedStart)
	require.NotNil(t, s.ConfirmedStart)
	assert.Equal(t, second.Start, *s.ConfirmedStart)
	assert.Nil(t, s.RescheduleOptions, "accepted proposal clears the option list")
	assert.Equal(t, second.Start, s.EffectiveStart())
}

func TestApply_ProposeRescheduleValidatesOptions(t *testing.T) {
	s := newTestSession(t, StatusPending)

	err := Apply(s, TransitionRequest{Kind: TransitionProposeReschedule, Actor: mentorActor})
	assert.ErrorIs(t, err, shared.ErrValidation)

	inverted := RescheduleOption{Start: s.RequestedEnd, End: s.RequestedStart}
	err = Apply(s, TransitionRequest{
		Kind:    TransitionProposeReschedule,
		Actor:   mentorActor,
		Options: []RescheduleOption{inverted},
	})
	assert.ErrorIs(t, err, shared.ErrValidation)
	assert.Equal(t, StatusPending, s.Status)
}

func TestExpire(t *testing.T) {
	s := newTestSession(t, StatusPending)

	require.NoError(t, Expire(s, "pending request expired after 72h0m0s"))
	assert.Equal(t, StatusCancelled, s.Status)
	assert.Equal(t, "pending request expired after 72h0m0s", s.StatusReason)
}

func TestExpire_OnlyPending(t *testing.T) {
	for _, status := range []Status{StatusConfirmed, StatusDeclined, StatusRescheduleProposed, StatusCancelled, StatusCompleted} {
		s := newTestSession(t, status)
		err := Expire(s, "stale")
		assert.ErrorIs(t, err, shared.ErrStateTransition, "status %s", status)
		assert.Equal(t, status, s.Status)
	}
}

func TestStatus_Predicates(t *testing.T) {
	assert.True(t, StatusDeclined.IsTerminal())
	assert.True(t, StatusCancelled.IsTerminal())
	assert.True(t, StatusCompleted.IsTerminal())
	assert.False(t, StatusPending.IsTerminal())

	assert.True(t, StatusPending.IsReserved())
	assert.True(t, StatusConfirmed.IsReserved())
	assert.True(t, StatusRescheduleProposed.IsReserved())
	assert.False(t, StatusCancelled.IsReserved())
}

func TestParseTransitionKind(t *testing.T) {
	kind, err := ParseTransitionKind("  Confirm ")
	require.NoError(t, err)
	assert.Equal(t, TransitionConfirm, kind)

	_, err = ParseTransitionKind("teleport")
	assert.ErrorIs(t, err, shared.ErrInvalidInput)
}

func TestParseStatus(t *testing.T) {
	status, err := ParseStatus("Reschedule_Proposed")
	require.NoError(t, err)
	assert.Equal(t, StatusRescheduleProposed, status)

	_, err = ParseStatus("archived")
	assert.ErrorIs(t, err, shared.ErrInvalidInput)
}

func TestNewNote(t *testing.T) {
	note, err := NewNote("note-1", shared.SessionID(lcSessionID), shared.MentorID(lcMentorID), "  следит за прогрессом по Go  ")
	require.NoError(t, err)
	assert.Equal(t, "следит за прогрессом по Go", note.Body)

	_, err = NewNote("note-2", shared.SessionID(lcSessionID), shared.MentorID(lcMentorID), "   ")
	assert.ErrorIs(t, err, shared.ErrEmptyValue)

	_, err = NewNote("", shared.SessionID(lcSessionID), shared.MentorID(lcMentorID), "body")
	assert.ErrorIs(t, err, shared.ErrEmptyValue)

	_, err = NewNote("note-3", "bad", shared.MentorID(lcMentorID), "body")
	assert.ErrorIs(t, err, shared.ErrInvalidID)
}

func TestEventTypeFor(t *testing.T) {
	assert.Equal(t, shared.EventSessionConfirmed, EventTypeFor(TransitionConfirm))
	assert.Equal(t, shared.EventSessionConfirmed, EventTypeFor(TransitionAcceptReschedule))
	assert.Equal(t, shared.EventSessionDeclined, EventTypeFor(TransitionDecline))
	assert.Equal(t, shared.EventSessionRescheduleProposed, EventTypeFor(TransitionProposeReschedule))
	assert.Equal(t, shared.EventSessionCancelled, EventTypeFor(TransitionCancel))
	assert.Equal(t, shared.EventSessionCompleted, EventTypeFor(TransitionComplete))
}
