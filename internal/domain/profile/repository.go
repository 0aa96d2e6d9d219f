package profile

import (
	"context"

	"github.com/mentor-bridge/mentor-bridge-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// REPOSITORY INTERFACES
// Эти интерфейсы определяют контракт для работы с хранилищем анкет.
// Реализации находятся в infrastructure/persistence.
// ══════════════════════════════════════════════════════════════════════════════

// ListOptions - опции выборки со смещением.
type ListOptions struct {
	// Limit - максимальное количество записей (0 = без лимита).
	Limit int

	// Offset - смещение выборки.
	Offset int
}

// StudentRepository определяет операции с анкетами студентов.
type StudentRepository interface {
	// Save создаёт или обновляет анкету студента.
	Save(ctx context.Context, student *StudentProfile) error

	// GetByID возвращает анкету студента по ID.
	// Возвращает shared.ErrNotFound, если анкета отсутствует.
	GetByID(ctx context.Context, id shared.StudentID) (*StudentProfile, error)
}

// MentorRepository определяет операции с анкетами менторов.
type MentorRepository interface {
	// Save создаёт или обновляет анкету ментора.
	Save(ctx context.Context, mentor *MentorProfile) error

	// GetByID возвращает анкету ментора по ID.
	// Возвращает shared.ErrNotFound, если анкета отсутствует.
	GetByID(ctx context.Context, id shared.MentorID) (*MentorProfile, error)

	// ListActive возвращает активных менторов для прогона подбора.
	ListActive(ctx context.Context, opts ListOptions) ([]*MentorProfile, error)

	// Count возвращает общее количество менторов.
	Count(ctx context.Context) (int, error)
}
