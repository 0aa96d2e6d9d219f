package command

import (
	"github.com/mentor-bridge/mentor-bridge-hub/internal/domain/availability"
	"github.com/mentor-bridge/mentor-bridge-hub/internal/domain/shared"
	"context"
	"time"
)

// ══════════════════════════════════════════════════════════════════════════════
// SAVE AVAILABILITY COMMAND
// Полностью замещает расписание ментора. Уже забронированные сессии
// не трогаются: новое расписание влияет только на генерацию будущих слотов.
// ══════════════════════════════════════════════════════════════════════════════

// MatchCacheInvalidator сбрасывает закэшированные прогоны подбора, когда
// меняются их входные данные. Реализация находится в
// infrastructure/persistence/redis.
type MatchCacheInvalidator interface {
	// Invalidate сбрасывает закэшированный прогон одного студента.
	Invalidate(ctx context.Context, studentID string) error

	// InvalidateAll сбрасывает все закэшированные прогоны.
	InvalidateAll(ctx context.Context) error
}

// NoopMatchCacheInvalidator - заглушка для тестов и работы без Redis.
type NoopMatchCacheInvalidator struct{}

// Invalidate ничего не делает.
func (NoopMatchCacheInvalidator) Invalidate(context.Context, string) error { return nil }

// InvalidateAll ничего не делает.
func (NoopMatchCacheInvalidator) InvalidateAll(context.Context) error { return nil }

// SaveAvailabilityCommand contains the data to replace a mentor schedule.
type SaveAvailabilityCommand struct {
	// Actor is who submits the schedule. Must be the owning mentor.
	Actor shared.Actor

	// Availability is the full replacement schedule.
	Availability availability.MentorAvailability
}

// Validate validates the command.
func (c SaveAvailabilityCommand) Validate() error {
	const op = "SaveAvailabilityCommand.Validate"

	if !c.Actor.IsValid() {
		return shared.NewDomainError("availability", op, shared.ErrUnauthorized, "actor is required")
	}
	if !c.Actor.IsMentor() {
		return shared.NewDomainError("availability", op, shared.ErrForbidden,
			"only mentors can publish schedules")
	}
	if c.Actor.ID != c.Availability.MentorID.String() {
		return shared.NewDomainError("availability", op, shared.ErrForbidden,
			"mentors can only publish their own schedule")
	}
	return nil
}

// SaveAvailabilityResult contains the result of a schedule update.
type SaveAvailabilityResult struct {
	// MentorID is the schedule owner.
	MentorID shared.MentorID

	// UpdatedAt is when the schedule was recorded.
	UpdatedAt time.Time
}

// SaveAvailabilityHandler handles the SaveAvailabilityCommand.
type SaveAvailabilityHandler struct {
	availabilityRepo availability.Repository
	eventPublisher   shared.EventPublisher
	matchCache       MatchCacheInvalidator
}

// NewSaveAvailabilityHandler creates a new SaveAvailabilityHandler.
func NewSaveAvailabilityHandler(
	availabilityRepo availability.Repository,
	eventPublisher shared.EventPublisher,
	matchCache MatchCacheInvalidator,
) *SaveAvailabilityHandler {
	if matchCache == nil {
		matchCache = NoopMatchCacheInvalidator{}
	}
	return &SaveAvailabilityHandler{
		availabilityRepo: availabilityRepo,
		eventPublisher:   eventPublisher,
		matchCache:       matchCache,
	}
}

// Handle executes the save availability command.
func (h *SaveAvailabilityHandler) Handle(ctx context.Context, cmd SaveAvailabilityCommand) (*SaveAvailabilityResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	avail := cmd.Availability
	if err := avail.Validate(); err != nil {
		return nil, err
	}

	avail.UpdatedAt = time.Now().UTC()

	if err := h.availabilityRepo.Save(ctx, &avail); err != nil {
		return nil, err
	}

	_ = h.eventPublisher.Publish(ctx, shared.NewAvailabilityUpdatedEvent(avail.MentorID.String()))

	// Новое расписание меняет фактор доступности для любого студента,
	// чей закэшированный прогон включает этого ментора.
	_ = h.matchCache.InvalidateAll(ctx)

	return &SaveAvailabilityResult{
		MentorID:  avail.MentorID,
		UpdatedAt: avail.UpdatedAt,
	}, nil
}
