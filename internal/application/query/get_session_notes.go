package query

import (
	"github.com/mentor-bridge/mentor-bridge-hub/internal/domain/session"
	"github.com/mentor-bridge/mentor-bridge-hub/internal/domain/shared"
	"context"
	"fmt"
)

// ══════════════════════════════════════════════════════════════════════════════
// GET SESSION NOTES QUERY
// Заметки ментора приватны: читать их может только ментор сессии
// и админ. Студент-участник не видит заметки никогда.
// ══════════════════════════════════════════════════════════════════════════════

// GetSessionNotesQuery содержит параметры чтения заметок.
type GetSessionNotesQuery struct {
	// Actor - от чьего имени выполняется запрос.
	Actor shared.Actor

	// SessionID - сессия, чьи заметки запрашиваются.
	SessionID string
}

// Validate проверяет параметры запроса.
func (q GetSessionNotesQuery) Validate() error {
	const op = "GetSessionNotesQuery.Validate"

	if !shared.SessionID(q.SessionID).IsValid() {
		return shared.NewDomainError("session", op, shared.ErrInvalidID, "invalid session id")
	}
	if !q.Actor.IsValid() {
		return shared.NewDomainError("session", op, shared.ErrUnauthorized, "actor is required")
	}
	return nil
}

// GetSessionNotesResult - результат чтения заметок.
type GetSessionNotesResult struct {
	// Notes - заметки в порядке создания.
	Notes []*session.Note
}

// GetSessionNotesHandler обрабатывает GetSessionNotesQuery.
type GetSessionNotesHandler struct {
	sessionRepo session.Repository
	noteRepo    session.NoteRepository
}

// NewGetSessionNotesHandler создаёт новый GetSessionNotesHandler.
func NewGetSessionNotesHandler(
	sessionRepo session.Repository,
	noteRepo session.NoteRepository,
) *GetSessionNotesHandler {
	return &GetSessionNotesHandler{
		sessionRepo: sessionRepo,
		noteRepo:    noteRepo,
	}
}

// Handle выполняет чтение заметок.
func (h *GetSessionNotesHandler) Handle(ctx context.Context, q GetSessionNotesQuery) (*GetSessionNotesResult, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	s, err := h.sessionRepo.GetByID(ctx, shared.SessionID(q.SessionID))
	if err != nil {
		return nil, fmt.Errorf("get_session_notes: failed to get session: %w", err)
	}

	isOwner := q.Actor.IsMentor() && q.Actor.ID == s.MentorID.String()
	if !isOwner && !q.Actor.IsAdmin() {
		return nil, shared.NewDomainError("session", "GetSessionNotesHandler.Handle",
			shared.ErrForbidden, "notes are private to the session's mentor")
	}

	notes, err := h.noteRepo.ListBySession(ctx, s.ID)
	if err != nil {
		return nil, err
	}

	return &GetSessionNotesResult{Notes: notes}, nil
}
