// Package session реализует бронирование: сущность сессии, машину
// состояний её жизненного цикла и приватные заметки ментора.
package session

import (
	"strings"
	"time"

	"github.com/mentor-bridge/mentor-bridge-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// STATUS
// ══════════════════════════════════════════════════════════════════════════════

// Status определяет статус сессии. Сессия никогда не удаляется - только
// переводится в терминальный статус.
type Status string

const (
	// StatusPending - студент запросил сессию, ждём ответа ментора.
	StatusPending Status = "pending"

	// StatusConfirmed - ментор подтвердил время.
	StatusConfirmed Status = "confirmed"

	// StatusDeclined - ментор отклонил запрос (терминальный).
	StatusDeclined Status = "declined"

	// StatusRescheduleProposed - ментор предложил альтернативные варианты.
	StatusRescheduleProposed Status = "reschedule_proposed"

	// StatusCancelled - отменена одним из участников (терминальный).
	StatusCancelled Status = "cancelled"

	// StatusCompleted - проведена и закрыта ментором (терминальный).
	StatusCompleted Status = "completed"
)

// IsValid проверяет корректность статуса.
func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusDeclined,
		StatusRescheduleProposed, StatusCancelled, StatusCompleted:
		return true
	default:
		return false
	}
}

// IsTerminal возвращает true для терминальных статусов.
func (s Status) IsTerminal() bool {
	return s == StatusDeclined || s == StatusCancelled || s == StatusCompleted
}

// IsReserved возвращает true, если сессия занимает время ментора при
// генерации слотов.
func (s Status) IsReserved() bool {
	return s == StatusPending || s == StatusConfirmed || s == StatusRescheduleProposed
}

// ParseStatus разбирает и валидирует строковый статус.
func ParseStatus(raw string) (Status, error) {
	s := Status(strings.ToLower(strings.TrimSpace(raw)))
	if !s.IsValid() {
		return "", shared.NewDomainError("session", "ParseStatus", shared.ErrInvalidInput,
			"unknown session status: "+raw)
	}
	return s, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// CONNECTION PREFERENCE
// ══════════════════════════════════════════════════════════════════════════════

// ConnectionPreference - способ проведения сессии.
type ConnectionPreference string

const (
	ConnectionVideoCall ConnectionPreference = "video_call"
	ConnectionVoiceCall ConnectionPreference = "voice_call"
	ConnectionTextChat  ConnectionPreference = "text_chat"
	ConnectionInPerson  ConnectionPreference = "in_person"
)

// IsValid проверяет корректность значения.
func (c ConnectionPreference) IsValid() bool {
	switch c {
	case ConnectionVideoCall, ConnectionVoiceCall, ConnectionTextChat, ConnectionInPerson:
		return true
	default:
		return false
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// SESSION
// ══════════════════════════════════════════════════════════════════════════════

// RescheduleOption - один предложенный ментором вариант переноса.
type RescheduleOption struct {
	// Start - момент начала.
	Start time.Time `json:"start"`

	// End - момент конца (строго позже начала).
	End time.Time `json:"end"`
}

// Validate проверяет инвариант варианта.
func (o RescheduleOption) Validate() error {
	if !o.Start.Before(o.End) {
		return shared.NewDomainError("session", "RescheduleOption.Validate",
			shared.ErrValidation, "option end must be strictly after start")
	}
	return nil
}

// Session - запись о бронировании между студентом и ментором.
// Создаётся действием студента; все последующие изменения полей проходят
// только через переходы жизненного цикла.
type Session struct {
	// ID - идентификатор сессии (UUID).
	ID shared.SessionID

	// StudentID - участник-студент.
	StudentID shared.StudentID

	// MentorID - участник-ментор.
	MentorID shared.MentorID

	// Status - текущий статус.
	Status Status

	// RequestedStart - запрошенное начало.
	RequestedStart time.Time

	// RequestedEnd - запрошенный конец (строго позже начала).
	RequestedEnd time.Time

	// ConfirmedStart - подтверждённое начало (nil до подтверждения;
	// после переноса может отличаться от запрошенного).
	ConfirmedStart *time.Time

	// ConfirmedEnd - подтверждённый конец.
	ConfirmedEnd *time.Time

	// StudentTimezone - таймзона студента на момент бронирования.
	StudentTimezone shared.Timezone

	// MentorTimezone - таймзона ментора на момент бронирования.
	MentorTimezone shared.Timezone

	// Connection - способ проведения сессии.
	Connection ConnectionPreference

	// RescheduleOptions - активные варианты переноса (только в статусе
	// reschedule_proposed).
	RescheduleOptions []RescheduleOption

	// Note - свободный комментарий студента к запросу.
	Note string

	// StatusReason - причина последнего отклонения или отмены.
	StatusReason string

	// Reminder24hSent - флаг запланированного напоминания за 24 часа.
	Reminder24hSent bool

	// Reminder1hSent - флаг запланированного напоминания за 1 час.
	Reminder1hSent bool

	// CreatedAt - когда создан запрос.
	CreatedAt time.Time

	// UpdatedAt - штампуется каждым переходом.
	UpdatedAt time.Time
}

// NewSessionParams - параметры создания запроса на сессию.
type NewSessionParams struct {
	ID              shared.SessionID
	StudentID       shared.StudentID
	MentorID        shared.MentorID
	Start           time.Time
	End             time.Time
	StudentTimezone shared.Timezone
	MentorTimezone  shared.Timezone
	Connection      ConnectionPreference
	Note            string
}

// NewSession создаёт сессию в статусе pending.
func NewSession(params NewSessionParams) (*Session, error) {
	const op = "NewSession"

	if !params.ID.IsValid() {
		return nil, shared.NewDomainError("session", op, shared.ErrInvalidID, "invalid session id")
	}
	if !params.StudentID.IsValid() {
		return nil, shared.NewDomainError("session", op, shared.ErrInvalidID, "invalid student id")
	}
	if !params.MentorID.IsValid() {
		return nil, shared.NewDomainError("session", op, shared.ErrInvalidID, "invalid mentor id")
	}
	if !params.Start.Before(params.End) {
		return nil, shared.NewDomainError("session", op, shared.ErrValidation,
			"session end must be strictly after start")
	}
	if !params.Connection.IsValid() {
		return nil, shared.NewDomainError("session", op, shared.ErrValidation,
			"unknown connection preference: "+string(params.Connection))
	}

	now := time.Now().UTC()

	return &Session{
		ID:              params.ID,
		StudentID:       params.StudentID,
		MentorID:        params.MentorID,
		Status:          StatusPending,
		RequestedStart:  params.Start,
		RequestedEnd:    params.End,
		StudentTimezone: params.StudentTimezone,
		MentorTimezone:  params.MentorTimezone,
		Connection:      params.Connection,
		Note:            strings.TrimSpace(params.Note),
		CreatedAt:       now,
		UpdatedAt:       now,
	}, nil
}

// InvolvesActor проверяет, является ли актор участником сессии.
func (s *Session) InvolvesActor(actor shared.Actor) bool {
	switch actor.Role {
	case shared.RoleStudent:
		return actor.ID == s.StudentID.String()
	case shared.RoleMentor:
		return actor.ID == s.MentorID.String()
	default:
		return false
	}
}

// EffectiveStart возвращает подтверждённое начало, если оно есть,
// иначе запрошенное.
func (s *Session) EffectiveStart() time.Time {
	if s.ConfirmedStart != nil {
		return *s.ConfirmedStart
	}
	return s.RequestedStart
}

// EffectiveEnd возвращает подтверждённый конец, если он есть,
// иначе запрошенный.
func (s *Session) EffectiveEnd() time.Time {
	if s.ConfirmedEnd != nil {
		return *s.ConfirmedEnd
	}
	return s.RequestedEnd
}

// ══════════════════════════════════════════════════════════════════════════════
// SESSION NOTE
// Приватная заметка ментора, привязанная к сессии. Append-only.
// ══════════════════════════════════════════════════════════════════════════════

// Note - приватная заметка ментора о сессии.
type Note struct {
	// ID - идентификатор заметки (UUID).
	ID string

	// SessionID - сессия, к которой относится заметка.
	SessionID shared.SessionID

	// MentorID - владелец заметки.
	MentorID shared.MentorID

	// Body - текст заметки.
	Body string

	// CreatedAt - когда создана.
	CreatedAt time.Time
}

// NewNote создаёт заметку с валидацией.
func NewNote(id string, sessionID shared.SessionID, mentorID shared.MentorID, body string) (*Note, error) {
	const op = "NewNote"

	if strings.TrimSpace(id) == "" {
		return nil, shared.NewDomainError("session", op, shared.ErrEmptyValue, "note id is required")
	}
	if !sessionID.IsValid() {
		return nil, shared.NewDomainError("session", op, shared.ErrInvalidID, "invalid session id")
	}
	if !mentorID.IsValid() {
		return nil, shared.NewDomainError("session", op, shared.ErrInvalidID, "invalid mentor id")
	}
	trimmed := strings.TrimSpace(body)
	if trimmed == "" {
		return nil, shared.NewDomainError("session", op, shared.ErrEmptyValue, "note body is required")
	}

	return &Note{
		ID:        id,
		SessionID: sessionID,
		MentorID:  mentorID,
		Body:      trimmed,
		CreatedAt: time.Now().UTC(),
	}, nil
}
