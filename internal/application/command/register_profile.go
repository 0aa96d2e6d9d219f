package command

import (
	"github.com/mentor-bridge/mentor-bridge-hub/internal/domain/profile"
	"context"
	"time"
)

// ══════════════════════════════════════════════════════════════════════════════
// REGISTER PROFILE COMMANDS
// Приём сырых анкет: нормализация и сохранение канонической формы.
// Всё, что лежит в хранилище, уже прошло нормализацию - скоринг и
// бронирование никогда не видят сырые данные.
// ══════════════════════════════════════════════════════════════════════════════

// RegisterStudentProfileCommand contains a raw student profile to register.
type RegisterStudentProfileCommand struct {
	// Profile is the raw intake form.
	Profile profile.RawStudentProfile
}

// RegisterMentorProfileCommand contains a raw mentor profile to register.
type RegisterMentorProfileCommand struct {
	// Profile is the raw intake form.
	Profile profile.RawMentorProfile
}

// RegisterProfileResult contains the result of a profile registration.
type RegisterProfileResult struct {
	// ID is the profile owner's id.
	ID string

	// NormalizedAt is when the profile passed normalization.
	NormalizedAt time.Time
}

// RegisterProfileHandler handles profile registration commands.
type RegisterProfileHandler struct {
	studentRepo profile.StudentRepository
	mentorRepo  profile.MentorRepository
	matchCache  MatchCacheInvalidator
}

// NewRegisterProfileHandler creates a new RegisterProfileHandler.
func NewRegisterProfileHandler(
	studentRepo profile.StudentRepository,
	mentorRepo profile.MentorRepository,
	matchCache MatchCacheInvalidator,
) *RegisterProfileHandler {
	if matchCache == nil {
		matchCache = NoopMatchCacheInvalidator{}
	}
	return &RegisterProfileHandler{
		studentRepo: studentRepo,
		mentorRepo:  mentorRepo,
		matchCache:  matchCache,
	}
}

// HandleStudent normalizes and stores a student profile.
func (h *RegisterProfileHandler) HandleStudent(ctx context.Context, cmd RegisterStudentProfileCommand) (*RegisterProfileResult, error) {
	student, err := profile.NormalizeStudent(cmd.Profile)
	if err != nil {
		return nil, err
	}

	if err := h.studentRepo.Save(ctx, student); err != nil {
		return nil, err
	}

	// Перерегистрация анкеты устаревает только прогон этого студента.
	_ = h.matchCache.Invalidate(ctx, student.ID.String())

	return &RegisterProfileResult{
		ID:           student.ID.String(),
		NormalizedAt: student.NormalizedAt,
	}, nil
}

// HandleMentor normalizes and stores a mentor profile.
func (h *RegisterProfileHandler) HandleMentor(ctx context.Context, cmd RegisterMentorProfileCommand) (*RegisterProfileResult, error) {
	mentor, err := profile.NormalizeMentor(cmd.Profile)
	if err != nil {
		return nil, err
	}

	if err := h.mentorRepo.Save(ctx, mentor); err != nil {
		return nil, err
	}

	// Новый или изменённый ментор может попасть в прогон любого студента.
	_ = h.matchCache.InvalidateAll(ctx)

	return &RegisterProfileResult{
		ID:           mentor.ID.String(),
		NormalizedAt: mentor.NormalizedAt,
	}, nil
}
