package session

import (
	"context"
	"time"

	"github.com/mentor-bridge/mentor-bridge-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// REPOSITORY INTERFACES
// Контракт хранилища сессий. Ключевая особенность - условные записи:
// создание перепроверяет пересечения, обновление статуса защищено
// compare-and-swap. Реализации находятся в infrastructure/persistence.
// ══════════════════════════════════════════════════════════════════════════════

// ReminderHorizon - горизонт напоминания.
type ReminderHorizon string

const (
	// Horizon24h - напоминание за 24 часа до начала.
	Horizon24h ReminderHorizon = "24h"

	// Horizon1h - напоминание за 1 час до начала.
	Horizon1h ReminderHorizon = "1h"
)

// IsValid проверяет корректность значения.
func (h ReminderHorizon) IsValid() bool {
	return h == Horizon24h || h == Horizon1h
}

// ListOptions - опции выборки.
type ListOptions struct {
	// Statuses - фильтр по статусам (пустой = все).
	Statuses []Status

	// Limit - максимальное количество записей (0 = без лимита).
	Limit int

	// Offset - смещение выборки.
	Offset int
}

// Repository определяет операции с сессиями.
type Repository interface {
	// CreateGuarded создаёт сессию, перепроверяя внутри той же
	// транзакции, что её интервал (с буфером ментора) не пересекается
	// с занятыми сессиями ментора. Возвращает shared.ErrSlotTaken,
	// если слот успели занять.
	CreateGuarded(ctx context.Context, s *Session, bufferMinutes int) error

	// GetByID возвращает сессию по ID.
	// Возвращает shared.ErrNotFound, если сессия не найдена.
	GetByID(ctx context.Context, id shared.SessionID) (*Session, error)

	// UpdateGuarded записывает сессию при условии, что её статус в
	// хранилище всё ещё равен expected (compare-and-swap). Возвращает
	// shared.ErrOptimisticLock при несовпадении и shared.ErrNotFound,
	// если сессия исчезла.
	UpdateGuarded(ctx context.Context, s *Session, expected Status) error

	// ListByStudent возвращает сессии студента.
	ListByStudent(ctx context.Context, studentID shared.StudentID, opts ListOptions) ([]*Session, error)

	// ListByMentor возвращает сессии ментора.
	ListByMentor(ctx context.Context, mentorID shared.MentorID, opts ListOptions) ([]*Session, error)

	// ListReservedBetween возвращает занятые сессии ментора
	// (pending/confirmed/reschedule_proposed), пересекающие интервал.
	ListReservedBetween(ctx context.Context, mentorID shared.MentorID, from, to time.Time) ([]*Session, error)

	// ListConfirmedStartingBetween возвращает подтверждённые сессии,
	// начинающиеся в интервале (from, to]. Используется свипом напоминаний.
	ListConfirmedStartingBetween(ctx context.Context, from, to time.Time) ([]*Session, error)

	// ListPendingCreatedBefore возвращает pending-сессии, созданные до
	// cutoff. Используется джобом истечения просроченных запросов.
	ListPendingCreatedBefore(ctx context.Context, cutoff time.Time, limit int) ([]*Session, error)

	// MarkReminderScheduled выставляет флаг напоминания условной записью:
	// только если флаг ещё не стоит и сессия всё ещё confirmed.
	// Возвращает true, если флаг выставлен этим вызовом (идемпотентность).
	MarkReminderScheduled(ctx context.Context, id shared.SessionID, horizon ReminderHorizon) (bool, error)
}

// NoteRepository определяет операции с заметками менторов.
type NoteRepository interface {
	// Create добавляет заметку (append-only).
	Create(ctx context.Context, note *Note) error

	// ListBySession возвращает заметки сессии в порядке создания.
	ListBySession(ctx context.Context, sessionID shared.SessionID) ([]*Note, error)
}
