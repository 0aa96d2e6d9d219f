package query

import (
	"github.com/mentor-bridge/mentor-bridge-hub/internal/domain/availability"
	"github.com/mentor-bridge/mentor-bridge-hub/internal/domain/session"
	"github.com/mentor-bridge/mentor-bridge-hub/internal/domain/shared"
	"context"
	"fmt"
)

// ══════════════════════════════════════════════════════════════════════════════
// GET AVAILABLE SLOTS QUERY
// Разворачивает расписание ментора в конкретные слоты на дату.
// Занятые сессии (pending/confirmed/reschedule_proposed) вычитаются
// с учётом буфера. Все вычисления идут в именованной таймзоне ментора.
// ══════════════════════════════════════════════════════════════════════════════

// GetAvailableSlotsQuery содержит параметры запроса слотов.
type GetAvailableSlotsQuery struct {
	// MentorID - ментор, чьи слоты запрашиваются.
	MentorID string

	// Date - дата в таймзоне ментора.
	Date availability.Date

	// DurationMinutes - желаемая длительность сессии.
	DurationMinutes int
}

// Validate проверяет параметры запроса.
func (q GetAvailableSlotsQuery) Validate() error {
	const op = "GetAvailableSlotsQuery.Validate"

	if !shared.MentorID(q.MentorID).IsValid() {
		return shared.NewDomainError("availability", op, shared.ErrInvalidID, "invalid mentor id")
	}
	if q.Date.IsZero() {
		return shared.NewDomainError("availability", op, shared.ErrEmptyValue, "date is required")
	}
	if q.DurationMinutes <= 0 {
		return shared.NewDomainError("availability", op, shared.ErrValueOutOfRange,
			"duration must be positive")
	}
	return nil
}

// GetAvailableSlotsResult - результат запроса слотов.
type GetAvailableSlotsResult struct {
	// MentorID - владелец расписания.
	MentorID shared.MentorID

	// Date - запрошенная дата.
	Date availability.Date

	// Timezone - таймзона, в которой вычислены слоты.
	Timezone shared.Timezone

	// DurationMinutes - запрошенная длительность.
	DurationMinutes int

	// Slots - доступные слоты в хронологическом порядке.
	Slots []availability.TimeSlot
}

// GetAvailableSlotsHandler обрабатывает GetAvailableSlotsQuery.
type GetAvailableSlotsHandler struct {
	availabilityRepo availability.Repository
	sessionRepo      session.Repository
}

// NewGetAvailableSlotsHandler создаёт новый GetAvailableSlotsHandler.
func NewGetAvailableSlotsHandler(
	availabilityRepo availability.Repository,
	sessionRepo session.Repository,
) *GetAvailableSlotsHandler {
	return &GetAvailableSlotsHandler{
		availabilityRepo: availabilityRepo,
		sessionRepo:      sessionRepo,
	}
}

// Handle выполняет запрос слотов.
func (h *GetAvailableSlotsHandler) Handle(ctx context.Context, q GetAvailableSlotsQuery) (*GetAvailableSlotsResult, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	avail, err := h.availabilityRepo.GetByMentorID(ctx, shared.MentorID(q.MentorID))
	if err != nil {
		return nil, fmt.Errorf("get_available_slots: failed to get availability: %w", err)
	}

	loc, err := avail.Timezone.Location()
	if err != nil {
		return nil, shared.NewDomainError("availability", "GetAvailableSlotsHandler.Handle",
			shared.ErrConfiguration, "mentor schedule has invalid timezone: "+avail.Timezone.String())
	}

	dayStart := q.Date.In(loc)
	dayEnd := dayStart.AddDate(0, 0, 1)

	reservedSessions, err := h.sessionRepo.ListReservedBetween(ctx, avail.MentorID, dayStart, dayEnd)
	if err != nil {
		return nil, fmt.Errorf("get_available_slots: failed to list reserved sessions: %w", err)
	}

	reserved := make([]availability.ReservedSpan, 0, len(reservedSessions))
	for _, rs := range reservedSessions {
		reserved = append(reserved, availability.ReservedSpan{
			Start: rs.EffectiveStart(),
			End:   rs.EffectiveEnd(),
		})
	}

	slots, err := availability.GenerateSlots(avail, q.Date, q.DurationMinutes, reserved)
	if err != nil {
		return nil, err
	}

	return &GetAvailableSlotsResult{
		MentorID:        avail.MentorID,
		Date:            q.Date,
		Timezone:        avail.Timezone,
		DurationMinutes: q.DurationMinutes,
		Slots:           slots,
	}, nil
}
