package command

import (
	"github.com/mentor-bridge/mentor-bridge-hub/internal/domain/session"
	"github.com/mentor-bridge/mentor-bridge-hub/internal/domain/shared"
	"context"
	"errors"
	"fmt"
	"time"
)

// ══════════════════════════════════════════════════════════════════════════════
// TRANSITION SESSION COMMAND
// Применяет переход жизненного цикла к сессии: подтверждение, отклонение,
// предложение переноса, принятие переноса, отмена, завершение.
// Запись защищена compare-and-swap по статусу: параллельный переход
// другого актора не может быть молча перезаписан.
// ══════════════════════════════════════════════════════════════════════════════

// TransitionSessionCommand contains the data to apply a lifecycle transition.
type TransitionSessionCommand struct {
	// SessionID is the session to transition.
	SessionID string

	// Actor is who initiates the transition. Required: the core never
	// infers identity.
	Actor shared.Actor

	// Kind is the transition to apply.
	Kind session.TransitionKind

	// Reason is required for decline, optional for cancel.
	Reason string

	// Options are the proposed alternatives (propose_reschedule only).
	Options []session.RescheduleOption

	// OptionIndex selects the accepted alternative (accept_reschedule only).
	OptionIndex int
}

// Validate validates the command.
func (c TransitionSessionCommand) Validate() error {
	const op = "TransitionSessionCommand.Validate"

	if !shared.SessionID(c.SessionID).IsValid() {
		return shared.NewDomainError("session", op, shared.ErrInvalidID, "invalid session id")
	}
	if !c.Actor.IsValid() {
		return shared.NewDomainError("session", op, shared.ErrUnauthorized, "actor is required")
	}
	if !c.Kind.IsValid() {
		return shared.NewDomainError("session", op, shared.ErrValidation,
			"unknown transition: "+string(c.Kind))
	}
	return nil
}

// TransitionSessionResult contains the result of a transition.
type TransitionSessionResult struct {
	// SessionID is the session that was transitioned.
	SessionID shared.SessionID

	// PreviousStatus is the status before the transition.
	PreviousStatus session.Status

	// Status is the status after the transition.
	Status session.Status

	// UpdatedAt is when the transition was recorded.
	UpdatedAt time.Time
}

// TransitionSessionHandler handles the TransitionSessionCommand.
type TransitionSessionHandler struct {
	sessionRepo    session.Repository
	eventPublisher shared.EventPublisher

	// maxRetries bounds CAS retry attempts on concurrent transitions.
	maxRetries int
}

// NewTransitionSessionHandler creates a new TransitionSessionHandler.
func NewTransitionSessionHandler(
	sessionRepo session.Repository,
	eventPublisher shared.EventPublisher,
) *TransitionSessionHandler {
	return &TransitionSessionHandler{
		sessionRepo:    sessionRepo,
		eventPublisher: eventPublisher,
		maxRetries:     1,
	}
}

// Handle executes the transition command.
//
// При shared.ErrOptimisticLock сессия перечитывается и переход применяется
// заново: второй прогон либо пройдёт против нового статуса, либо вернёт
// честную ошибку предусловия состояния.
func (h *TransitionSessionHandler) Handle(ctx context.Context, cmd TransitionSessionCommand) (*TransitionSessionResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	req := session.TransitionRequest{
		Kind:        cmd.Kind,
		Actor:       cmd.Actor,
		Reason:      cmd.Reason,
		Options:     cmd.Options,
		OptionIndex: cmd.OptionIndex,
	}

	var s *session.Session
	var previous session.Status
	var err error
	// Повтор перечитывает сессию и заново прогоняет таблицу переходов:
	// это не слепая перезапись, проигравший гонку переход получает
	// ошибку предусловия против уже нового статуса.
	for attempt := 0; attempt <= h.maxRetries; attempt++ {
		s, previous, err = h.apply(ctx, cmd.SessionID, req)
		if err == nil || !errors.Is(err, shared.ErrOptimisticLock) {
			break
		}
	}
	if err != nil {
		return nil, err
	}

	event := shared.NewSessionEvent(
		session.EventTypeFor(cmd.Kind),
		s.ID.String(), s.StudentID.String(), s.MentorID.String(),
		string(s.Status),
		cmd.Actor,
		cmd.Reason,
	)
	_ = h.eventPublisher.Publish(ctx, event)

	return &TransitionSessionResult{
		SessionID:      s.ID,
		PreviousStatus: previous,
		Status:         s.Status,
		UpdatedAt:      s.UpdatedAt,
	}, nil
}

func (h *TransitionSessionHandler) apply(ctx context.Context, sessionID string, req session.TransitionRequest) (*session.Session, session.Status, error) {
	s, err := h.sessionRepo.GetByID(ctx, shared.SessionID(sessionID))
	if err != nil {
		return nil, "", fmt.Errorf("transition_session: failed to get session: %w", err)
	}

	previous := s.Status

	if err := session.Apply(s, req); err != nil {
		return nil, "", err
	}

	if err := h.sessionRepo.UpdateGuarded(ctx, s, previous); err != nil {
		return nil, "", err
	}

	return s, previous, nil
}
