package command

import (
	"github.com/mentor-bridge/mentor-bridge-hub/internal/domain/session"
	"github.com/mentor-bridge/mentor-bridge-hub/internal/domain/shared"
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ══════════════════════════════════════════════════════════════════════════════
// ADD SESSION NOTE COMMAND
// Приватная заметка ментора к сессии. Заметки append-only и никогда
// не видны студенту.
// ══════════════════════════════════════════════════════════════════════════════

// AddSessionNoteCommand contains the data to record a mentor note.
type AddSessionNoteCommand struct {
	// Actor is who writes the note. Must be the session's mentor.
	Actor shared.Actor

	// SessionID is the session the note belongs to.
	SessionID string

	// Body is the note text.
	Body string
}

// Validate validates the command.
func (c AddSessionNoteCommand) Validate() error {
	const op = "AddSessionNoteCommand.Validate"

	if !shared.SessionID(c.SessionID).IsValid() {
		return shared.NewDomainError("session", op, shared.ErrInvalidID, "invalid session id")
	}
	if !c.Actor.IsValid() {
		return shared.NewDomainError("session", op, shared.ErrUnauthorized, "actor is required")
	}
	if c.Body == "" {
		return shared.NewDomainError("session", op, shared.ErrEmptyValue, "note body is required")
	}
	return nil
}

// AddSessionNoteResult contains the result of recording a note.
type AddSessionNoteResult struct {
	// NoteID is the ID of the created note.
	NoteID string

	// CreatedAt is when the note was recorded.
	CreatedAt time.Time
}

// AddSessionNoteHandler handles the AddSessionNoteCommand.
type AddSessionNoteHandler struct {
	sessionRepo session.Repository
	noteRepo    session.NoteRepository
}

// NewAddSessionNoteHandler creates a new AddSessionNoteHandler.
func NewAddSessionNoteHandler(
	sessionRepo session.Repository,
	noteRepo session.NoteRepository,
) *AddSessionNoteHandler {
	return &AddSessionNoteHandler{
		sessionRepo: sessionRepo,
		noteRepo:    noteRepo,
	}
}

// Handle executes the add note command.
func (h *AddSessionNoteHandler) Handle(ctx context.Context, cmd AddSessionNoteCommand) (*AddSessionNoteResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	s, err := h.sessionRepo.GetByID(ctx, shared.SessionID(cmd.SessionID))
	if err != nil {
		return nil, fmt.Errorf("add_session_note: failed to get session: %w", err)
	}

	if !cmd.Actor.IsMentor() || cmd.Actor.ID != s.MentorID.String() {
		return nil, shared.NewDomainError("session", "AddSessionNoteHandler.Handle", shared.ErrForbidden,
			"only the session's mentor can write notes")
	}

	note, err := session.NewNote(uuid.NewString(), s.ID, s.MentorID, cmd.Body)
	if err != nil {
		return nil, err
	}

	if err := h.noteRepo.Create(ctx, note); err != nil {
		return nil, err
	}

	return &AddSessionNoteResult{
		NoteID:    note.ID,
		CreatedAt: note.CreatedAt,
	}, nil
}
