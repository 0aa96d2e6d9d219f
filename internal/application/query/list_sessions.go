package query

import (
	"github.com/mentor-bridge/mentor-bridge-hub/internal/domain/session"
	"github.com/mentor-bridge/mentor-bridge-hub/internal/domain/shared"
	"context"
)

// ══════════════════════════════════════════════════════════════════════════════
// LIST SESSIONS QUERY
// Возвращает сессии актора. Студент видит свои запросы, ментор - свои
// бронирования. Админ может запросить сессии любого участника.
// ══════════════════════════════════════════════════════════════════════════════

// ListSessionsQuery содержит параметры выборки сессий.
type ListSessionsQuery struct {
	// Actor - от чьего имени выполняется запрос.
	Actor shared.Actor

	// ParticipantID - чьи сессии запрашиваются. Пустое значение
	// означает "сессии самого актора". Иной участник доступен
	// только админу.
	ParticipantID string

	// ParticipantRole - роль участника из ParticipantID (для админа).
	ParticipantRole shared.Role

	// Statuses - фильтр по статусам (пустой = все).
	Statuses []session.Status

	// Limit - максимум записей (0 = без лимита).
	Limit int

	// Offset - смещение выборки.
	Offset int
}

// Validate проверяет параметры запроса.
func (q ListSessionsQuery) Validate() error {
	const op = "ListSessionsQuery.Validate"

	if !q.Actor.IsValid() {
		return shared.NewDomainError("session", op, shared.ErrUnauthorized, "actor is required")
	}
	if q.ParticipantID != "" && q.ParticipantID != q.Actor.ID && !q.Actor.IsAdmin() {
		return shared.NewDomainError("session", op, shared.ErrForbidden,
			"participants can only list their own sessions")
	}
	for _, st := range q.Statuses {
		if !st.IsValid() {
			return shared.NewDomainError("session", op, shared.ErrValidation,
				"unknown status: "+string(st))
		}
	}
	return nil
}

// participant возвращает эффективного участника и его роль.
func (q ListSessionsQuery) participant() (string, shared.Role) {
	if q.ParticipantID == "" {
		return q.Actor.ID, q.Actor.Role
	}
	role := q.ParticipantRole
	if role == "" {
		role = q.Actor.Role
	}
	return q.ParticipantID, role
}

// ListSessionsResult - результат выборки сессий.
type ListSessionsResult struct {
	// Sessions - сессии в порядке, который задаёт хранилище.
	Sessions []*session.Session
}

// ListSessionsHandler обрабатывает ListSessionsQuery.
type ListSessionsHandler struct {
	sessionRepo session.Repository
}

// NewListSessionsHandler создаёт новый ListSessionsHandler.
func NewListSessionsHandler(sessionRepo session.Repository) *ListSessionsHandler {
	return &ListSessionsHandler{sessionRepo: sessionRepo}
}

// Handle выполняет выборку сессий.
func (h *ListSessionsHandler) Handle(ctx context.Context, q ListSessionsQuery) (*ListSessionsResult, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	id, role := q.participant()
	opts := session.ListOptions{
		Statuses: q.Statuses,
		Limit:    q.Limit,
		Offset:   q.Offset,
	}

	var sessions []*session.Session
	var err error
	switch role {
	case shared.RoleMentor:
		sessions, err = h.sessionRepo.ListByMentor(ctx, shared.MentorID(id), opts)
	default:
		sessions, err = h.sessionRepo.ListByStudent(ctx, shared.StudentID(id), opts)
	}
	if err != nil {
		return nil, err
	}

	return &ListSessionsResult{Sessions: sessions}, nil
}
