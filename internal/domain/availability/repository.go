package availability

import (
	"context"

	"github.com/mentor-bridge/mentor-bridge-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// REPOSITORY INTERFACE
// Реализация находится в infrastructure/persistence/postgres.
// ══════════════════════════════════════════════════════════════════════════════

// Repository определяет операции с расписаниями менторов.
type Repository interface {
	// GetByMentorID возвращает расписание ментора.
	// Возвращает shared.ErrNotFound, если расписание не задано.
	GetByMentorID(ctx context.Context, mentorID shared.MentorID) (*MentorAvailability, error)

	// Save создаёт или полностью замещает расписание ментора.
	Save(ctx context.Context, availability *MentorAvailability) error
}
