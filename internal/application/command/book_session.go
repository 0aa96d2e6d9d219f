// Package command contains write operations (CQRS - Commands).
package command

import (
	"github.com/mentor-bridge/mentor-bridge-hub/internal/domain/availability"
	"github.com/mentor-bridge/mentor-bridge-hub/internal/domain/profile"
	"github.com/mentor-bridge/mentor-bridge-hub/internal/domain/session"
	"github.com/mentor-bridge/mentor-bridge-hub/internal/domain/shared"
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ══════════════════════════════════════════════════════════════════════════════
// BOOK SESSION COMMAND
// Создаёт запрос на сессию в статусе pending. Запрошенный интервал
// перепроверяется дважды: сначала против сгенерированных слотов ментора,
// затем внутри транзакции записи (условная вставка). Окно между показом
// слота и бронированием ничем не защищено, поэтому вторая проверка обязательна.
// ══════════════════════════════════════════════════════════════════════════════

// BookSessionCommand contains the data to request a session.
type BookSessionCommand struct {
	// StudentID is the requesting student.
	StudentID string

	// MentorID is the mentor being booked.
	MentorID string

	// Start is the requested start instant (UTC).
	Start time.Time

	// End is the requested end instant (UTC).
	End time.Time

	// Connection is the session connection preference.
	Connection session.ConnectionPreference

	// Note is an optional message from the student.
	Note string
}

// Validate validates the command.
func (c BookSessionCommand) Validate() error {
	const op = "BookSessionCommand.Validate"

	if !shared.StudentID(c.StudentID).IsValid() {
		return shared.NewDomainError("booking", op, shared.ErrInvalidID, "invalid student id")
	}
	if !shared.MentorID(c.MentorID).IsValid() {
		return shared.NewDomainError("booking", op, shared.ErrInvalidID, "invalid mentor id")
	}
	if c.Start.IsZero() || c.End.IsZero() {
		return shared.NewDomainError("booking", op, shared.ErrEmptyValue, "start and end are required")
	}
	if !c.Start.Before(c.End) {
		return shared.NewDomainError("booking", op, shared.ErrValidation,
			"session end must be strictly after start")
	}
	if !c.Connection.IsValid() {
		return shared.NewDomainError("booking", op, shared.ErrValidation,
			"unknown connection preference: "+string(c.Connection))
	}
	return nil
}

// BookSessionResult contains the result of booking.
type BookSessionResult struct {
	// SessionID is the ID of the created session request.
	SessionID shared.SessionID

	// Status is always pending on success.
	Status session.Status

	// CreatedAt is when the request was created.
	CreatedAt time.Time
}

// BookSessionHandler handles the BookSessionCommand.
type BookSessionHandler struct {
	studentRepo      profile.StudentRepository
	mentorRepo       profile.MentorRepository
	availabilityRepo availability.Repository
	sessionRepo      session.Repository
	eventPublisher   shared.EventPublisher
}

// NewBookSessionHandler creates a new BookSessionHandler.
func NewBookSessionHandler(
	studentRepo profile.StudentRepository,
	mentorRepo profile.MentorRepository,
	availabilityRepo availability.Repository,
	sessionRepo session.Repository,
	eventPublisher shared.EventPublisher,
) *BookSessionHandler {
	return &BookSessionHandler{
		studentRepo:      studentRepo,
		mentorRepo:       mentorRepo,
		availabilityRepo: availabilityRepo,
		sessionRepo:      sessionRepo,
		eventPublisher:   eventPublisher,
	}
}

// Handle executes the book session command.
func (h *BookSessionHandler) Handle(ctx context.Context, cmd BookSessionCommand) (*BookSessionResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	student, err := h.studentRepo.GetByID(ctx, shared.StudentID(cmd.StudentID))
	if err != nil {
		return nil, fmt.Errorf("book_session: failed to get student: %w", err)
	}

	mentor, err := h.mentorRepo.GetByID(ctx, shared.MentorID(cmd.MentorID))
	if err != nil {
		return nil, fmt.Errorf("book_session: failed to get mentor: %w", err)
	}
	if !mentor.Active {
		return nil, shared.NewDomainError("booking", "Handle", shared.ErrValidation,
			"mentor is not accepting new sessions")
	}

	avail, err := h.availabilityRepo.GetByMentorID(ctx, mentor.ID)
	if err != nil {
		return nil, fmt.Errorf("book_session: failed to get availability: %w", err)
	}

	if err := h.verifySlot(ctx, avail, cmd); err != nil {
		return nil, err
	}

	s, err := session.NewSession(session.NewSessionParams{
		ID:              shared.SessionID(uuid.NewString()),
		StudentID:       student.ID,
		MentorID:        mentor.ID,
		Start:           cmd.Start.UTC(),
		End:             cmd.End.UTC(),
		StudentTimezone: student.Timezone,
		MentorTimezone:  mentor.Timezone,
		Connection:      cmd.Connection,
		Note:            cmd.Note,
	})
	if err != nil {
		return nil, err
	}

	// Условная вставка: пересечения перепроверяются в той же транзакции.
	if err := h.sessionRepo.CreateGuarded(ctx, s, avail.BufferMinutes); err != nil {
		return nil, err
	}

	event := shared.NewSessionEvent(
		shared.EventSessionRequested,
		s.ID.String(), s.StudentID.String(), s.MentorID.String(),
		string(s.Status),
		shared.Actor{ID: s.StudentID.String(), Role: shared.RoleStudent},
		"",
	)
	_ = h.eventPublisher.Publish(ctx, event)

	return &BookSessionResult{
		SessionID: s.ID,
		Status:    s.Status,
		CreatedAt: s.CreatedAt,
	}, nil
}

// verifySlot checks that the requested interval is one of the slots the
// mentor's schedule currently produces for that date and duration.
func (h *BookSessionHandler) verifySlot(ctx context.Context, avail *availability.MentorAvailability, cmd BookSessionCommand) error {
	const op = "BookSessionHandler.verifySlot"

	duration := int(cmd.End.Sub(cmd.Start).Minutes())
	if !avail.AllowsDuration(duration) {
		return shared.NewDomainError("booking", op, shared.ErrValidation,
			fmt.Sprintf("mentor does not offer %d-minute sessions", duration))
	}

	loc, err := avail.Timezone.Location()
	if err != nil {
		return shared.NewDomainError("booking", op, shared.ErrConfiguration,
			"mentor schedule has invalid timezone: "+avail.Timezone.String())
	}

	date := availability.DateOf(cmd.Start.In(loc))
	dayStart := date.In(loc)
	dayEnd := dayStart.AddDate(0, 0, 1)

	reservedSessions, err := h.sessionRepo.ListReservedBetween(ctx, avail.MentorID, dayStart, dayEnd)
	if err != nil {
		return fmt.Errorf("book_session: failed to list reserved sessions: %w", err)
	}
	reserved := make([]availability.ReservedSpan, 0, len(reservedSessions))
	for _, rs := range reservedSessions {
		reserved = append(reserved, availability.ReservedSpan{
			Start: rs.EffectiveStart(),
			End:   rs.EffectiveEnd(),
		})
	}

	slots, err := availability.GenerateSlots(avail, date, duration, reserved)
	if err != nil {
		return err
	}

	for _, slot := range slots {
		if slot.Start.Equal(cmd.Start) && slot.End.Equal(cmd.End) {
			return nil
		}
	}

	return shared.NewDomainError("booking", op, shared.ErrSlotTaken,
		"requested interval is not an available slot")
}
