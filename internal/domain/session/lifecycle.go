package session

import (
	"fmt"
	"strings"
	"time"

	"github.com/mentor-bridge/mentor-bridge-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// LIFECYCLE STATE MACHINE
//
// pending ──confirm──────────────▶ confirmed ──complete──▶ completed
//    │ │                              │
//    │ └──decline──▶ declined         └──cancel──▶ cancelled
//    │
//    └──propose_reschedule──▶ reschedule_proposed ──accept_reschedule──▶ confirmed
//                                      │
//                                      └──cancel──▶ cancelled
//
// Кто может инициировать переход, задаётся таблицей transitionRules.
// Любая другая пара (статус, переход) - ошибка состояния; неверный актор -
// ошибка авторизации. Фактическая запись в хранилище защищена
// compare-and-swap по текущему статусу (см. Repository).
// ══════════════════════════════════════════════════════════════════════════════

// TransitionKind - тип запрашиваемого перехода.
type TransitionKind string

const (
	// TransitionConfirm - ментор подтверждает запрос.
	TransitionConfirm TransitionKind = "confirm"

	// TransitionDecline - ментор отклоняет запрос (нужна причина).
	TransitionDecline TransitionKind = "decline"

	// TransitionProposeReschedule - ментор предлагает варианты переноса.
	TransitionProposeReschedule TransitionKind = "propose_reschedule"

	// TransitionAcceptReschedule - студент принимает один из вариантов.
	TransitionAcceptReschedule TransitionKind = "accept_reschedule"

	// TransitionCancel - любой участник отменяет сессию.
	TransitionCancel TransitionKind = "cancel"

	// TransitionComplete - ментор закрывает проведённую сессию.
	TransitionComplete TransitionKind = "complete"
)

// IsValid проверяет корректность значения.
func (t TransitionKind) IsValid() bool {
	switch t {
	case TransitionConfirm, TransitionDecline, TransitionProposeReschedule,
		TransitionAcceptReschedule, TransitionCancel, TransitionComplete:
		return true
	default:
		return false
	}
}

// ParseTransitionKind разбирает строковый тип перехода.
func ParseTransitionKind(raw string) (TransitionKind, error) {
	t := TransitionKind(strings.ToLower(strings.TrimSpace(raw)))
	if !t.IsValid() {
		return "", shared.NewDomainError("session", "ParseTransitionKind",
			shared.ErrInvalidInput, "unknown transition: "+raw)
	}
	return t, nil
}

// transitionRule описывает, кому и из каких статусов разрешён переход.
type transitionRule struct {
	// allowedRole - требуемая роль (пустая = любой участник).
	allowedRole shared.Role

	// fromStatuses - статусы, из которых переход легален.
	fromStatuses []Status
}

// transitionRules - таблица переходов жизненного цикла.
var transitionRules = map[TransitionKind]transitionRule{
	TransitionConfirm:           {allowedRole: shared.RoleMentor, fromStatuses: []Status{StatusPending}},
	TransitionDecline:           {allowedRole: shared.RoleMentor, fromStatuses: []Status{StatusPending}},
	TransitionProposeReschedule: {allowedRole: shared.RoleMentor, fromStatuses: []Status{StatusPending}},
	TransitionAcceptReschedule:  {allowedRole: shared.RoleStudent, fromStatuses: []Status{StatusRescheduleProposed}},
	TransitionCancel:            {fromStatuses: []Status{StatusPending, StatusConfirmed, StatusRescheduleProposed}},
	TransitionComplete:          {allowedRole: shared.RoleMentor, fromStatuses: []Status{StatusConfirmed}},
}

// TransitionRequest - запрос на переход жизненного цикла.
type TransitionRequest struct {
	// Kind - тип перехода.
	Kind TransitionKind

	// Actor - кто инициирует переход. Обязателен: ядро никогда не
	// читает неявную идентичность.
	Actor shared.Actor

	// Reason - причина (обязательна для decline).
	Reason string

	// Options - предлагаемые варианты переноса (для propose_reschedule).
	Options []RescheduleOption

	// OptionIndex - индекс принимаемого варианта (для accept_reschedule).
	OptionIndex int
}

// Apply применяет переход к сессии in-memory. Валидация идёт в порядке:
// сначала авторизация (участие и роль), затем предусловия состояния, затем
// данные перехода. Сессия не мутируется при любой ошибке.
func Apply(s *Session, req TransitionRequest) error {
	op := "Apply." + string(req.Kind)

	if !req.Kind.IsValid() {
		return shared.NewDomainError("session", op, shared.ErrInvalidInput,
			"unknown transition: "+string(req.Kind))
	}
	if !req.Actor.IsValid() {
		return shared.NewDomainError("session", op, shared.ErrValidation, "actor is required")
	}

	rule := transitionRules[req.Kind]

	if !s.InvolvesActor(req.Actor) {
		return shared.NewDomainError("session", op, shared.ErrForbidden,
			"actor is not a participant of this session")
	}
	if rule.allowedRole != "" && req.Actor.Role != rule.allowedRole {
		return shared.NewDomainError("session", op, shared.ErrForbidden,
			fmt.Sprintf("transition %s requires role %s", req.Kind, rule.allowedRole))
	}

	if !statusIn(s.Status, rule.fromStatuses) {
		return shared.NewDomainError("session", op, shared.ErrStateTransition,
			fmt.Sprintf("cannot %s a session in status %s", req.Kind, s.Status))
	}

	switch req.Kind {
	case TransitionConfirm:
		return applyConfirm(s)
	case TransitionDecline:
		return applyDecline(s, req.Reason)
	case TransitionProposeReschedule:
		return applyProposeReschedule(s, req.Options)
	case TransitionAcceptReschedule:
		return applyAcceptReschedule(s, req.OptionIndex)
	case TransitionCancel:
		return applyCancel(s, req.Reason)
	case TransitionComplete:
		return applyComplete(s)
	default:
		return shared.NewDomainError("session", op, shared.ErrStateTransition,
			"unhandled transition: "+string(req.Kind))
	}
}

func applyConfirm(s *Session) error {
	start, end := s.RequestedStart, s.RequestedEnd
	s.Status = StatusConfirmed
	s.ConfirmedStart = &start
	s.ConfirmedEnd = &end
	touch(s)
	return nil
}

func applyDecline(s *Session, reason string) error {
	trimmed := strings.TrimSpace(reason)
	if trimmed == "" {
		return shared.NewDomainError("session", "Apply.decline", shared.ErrValidation,
			"decline requires a reason")
	}
	s.Status = StatusDeclined
	s.StatusReason = trimmed
	touch(s)
	return nil
}

func applyProposeReschedule(s *Session, options []RescheduleOption) error {
	const op = "Apply.propose_reschedule"

	if len(options) == 0 {
		return shared.NewDomainError("session", op, shared.ErrValidation,
			"reschedule proposal requires at least one option")
	}
	for _, option := range options {
		if err := option.Validate(); err != nil {
			return err
		}
	}
	s.Status = StatusRescheduleProposed
	s.RescheduleOptions = append([]RescheduleOption(nil), options...)
	touch(s)
	return nil
}

func applyAcceptReschedule(s *Session, optionIndex int) error {
	const op = "Apply.accept_reschedule"

	if optionIndex < 0 || optionIndex >= len(s.RescheduleOptions) {
		return shared.NewDomainError("session", op, shared.ErrValidation,
			fmt.Sprintf("option index %d out of range", optionIndex))
	}

	chosen := s.RescheduleOptions[optionIndex]
	start, end := chosen.Start, chosen.End

	// Принятый вариант становится и запрошенным, и подтверждённым временем;
	// список предложений очищается.
	s.Status = StatusConfirmed
	s.RequestedStart = start
	s.RequestedEnd = end
	s.ConfirmedStart = &start
	s.ConfirmedEnd = &end
	s.RescheduleOptions = nil
	touch(s)
	return nil
}

func applyCancel(s *Session, reason string) error {
	s.Status = StatusCancelled
	s.StatusReason = strings.TrimSpace(reason)
	touch(s)
	return nil
}

func applyComplete(s *Session) error {
	s.Status = StatusCompleted
	touch(s)
	return nil
}

// Expire переводит просроченный pending-запрос в cancelled. Инициируется
// системой (фоновым джобом), а не участником, поэтому идёт в обход таблицы
// ролей; запись в хранилище всё равно защищена compare-and-swap.
func Expire(s *Session, reason string) error {
	if s.Status != StatusPending {
		return shared.NewDomainError("session", "Expire", shared.ErrStateTransition,
			fmt.Sprintf("cannot expire a session in status %s", s.Status))
	}
	s.Status = StatusCancelled
	s.StatusReason = strings.TrimSpace(reason)
	touch(s)
	return nil
}

func touch(s *Session) {
	s.UpdatedAt = time.Now().UTC()
}

func statusIn(status Status, list []Status) bool {
	for _, candidate := range list {
		if status == candidate {
			return true
		}
	}
	return false
}

// EventTypeFor возвращает тип доменного события для перехода.
func EventTypeFor(kind TransitionKind) shared.EventType {
	switch kind {
	case TransitionConfirm, TransitionAcceptReschedule:
		return shared.EventSessionConfirmed
	case TransitionDecline:
		return shared.EventSessionDeclined
	case TransitionProposeReschedule:
		return shared.EventSessionRescheduleProposed
	case TransitionCancel:
		return shared.EventSessionCancelled
	case TransitionComplete:
		return shared.EventSessionCompleted
	default:
		return shared.EventSessionRequested
	}
}
