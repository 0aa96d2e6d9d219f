// Package query contains read operations (CQRS - Queries).
package query

import (
	"github.com/mentor-bridge/mentor-bridge-hub/internal/domain/matching"
	"github.com/mentor-bridge/mentor-bridge-hub/internal/domain/profile"
	"github.com/mentor-bridge/mentor-bridge-hub/internal/domain/shared"
	"context"
	"errors"
	"time"
)

// ══════════════════════════════════════════════════════════════════════════════
// FIND MATCHES QUERY
// Находит менторов, подходящих студенту. Это КЛЮЧЕВОЙ запрос проекта:
// анкета студента прогоняется через жёсткие фильтры, пять под-оценок
// и ранжирование. Запрос stateless - пул менторов либо передаётся
// явно, либо берётся из хранилища.
// ══════════════════════════════════════════════════════════════════════════════

// FindMatchesQuery содержит параметры поиска менторов.
type FindMatchesQuery struct {
	// ─────────────────────────────────────────────────────────────────────────
	// Обязательные параметры
	// ─────────────────────────────────────────────────────────────────────────

	// Student - сырая анкета студента. Нормализуется внутри запроса.
	Student profile.RawStudentProfile

	// ─────────────────────────────────────────────────────────────────────────
	// Опциональные параметры
	// ─────────────────────────────────────────────────────────────────────────

	// Mentors - явный пул сырых анкет менторов. Пустой пул означает
	// "все активные менторы из хранилища".
	Mentors []profile.RawMentorProfile

	// Weights - переопределение весов (nil = веса из конфигурации).
	Weights *matching.Weights

	// MinResults - минимум результатов (0 = по умолчанию 3).
	MinResults int

	// MaxResults - максимум результатов (0 = по умолчанию 5).
	MaxResults int

	// QualityThreshold - порог качества (0 = по умолчанию 60).
	QualityThreshold float64

	// At - момент времени для оценки таймзон (zero = сейчас).
	At time.Time
}

// MatchMetadata - метаданные прогона ранжирования.
type MatchMetadata struct {
	// Weights - фактически применённые (нормализованные) веса.
	Weights matching.Weights

	// WeightsFellBack - true, если нулевые веса заменены весами
	// по умолчанию (ошибка конфигурации, не фатальная).
	WeightsFellBack bool

	// QualityThreshold - применённый порог качества.
	QualityThreshold float64

	// Considered - сколько менторов прошло жёсткие фильтры.
	Considered int

	// Returned - сколько рекомендаций в ответе.
	Returned int

	// Disclaimer - предупреждение о низком качестве (пустое = нет).
	Disclaimer string

	// GeneratedAt - когда прогон был выполнен.
	GeneratedAt time.Time
}

// FindMatchesResult - результат поиска менторов.
type FindMatchesResult struct {
	// Matches - упорядоченный список рекомендаций.
	Matches []matching.Match

	// Meta - метаданные прогона.
	Meta MatchMetadata
}

// MatchCache кэширует результаты прогона по ключу студента.
// Реализация находится в infrastructure/persistence/redis.
type MatchCache interface {
	// Get возвращает закэшированный результат (ok=false при промахе).
	Get(ctx context.Context, studentID string) (*FindMatchesResult, bool)

	// Set кладёт результат в кэш с TTL реализации.
	Set(ctx context.Context, studentID string, result *FindMatchesResult) error
}

// NoopMatchCache - кэш-заглушка для тестов и работы без Redis.
type NoopMatchCache struct{}

// Get всегда промахивается.
func (NoopMatchCache) Get(context.Context, string) (*FindMatchesResult, bool) { return nil, false }

// Set ничего не делает.
func (NoopMatchCache) Set(context.Context, string, *FindMatchesResult) error { return nil }

// FindMatchesHandler обрабатывает FindMatchesQuery.
type FindMatchesHandler struct {
	mentorRepo profile.MentorRepository
	cache      MatchCache

	// defaultWeights - веса из конфигурации.
	defaultWeights matching.Weights
}

// NewFindMatchesHandler создаёт новый FindMatchesHandler.
func NewFindMatchesHandler(
	mentorRepo profile.MentorRepository,
	cache MatchCache,
	defaultWeights matching.Weights,
) *FindMatchesHandler {
	if cache == nil {
		cache = NoopMatchCache{}
	}
	return &FindMatchesHandler{
		mentorRepo:     mentorRepo,
		cache:          cache,
		defaultWeights: defaultWeights,
	}
}

// Handle выполняет поиск менторов.
func (h *FindMatchesHandler) Handle(ctx context.Context, q FindMatchesQuery) (*FindMatchesResult, error) {
	student, err := profile.NormalizeStudent(q.Student)
	if err != nil {
		return nil, err
	}

	// Кэш используется только при неявном пуле: явный пул - это
	// одноразовый прогон, его кэшировать нечем.
	useCache := len(q.Mentors) == 0
	if useCache {
		if cached, ok := h.cache.Get(ctx, student.ID.String()); ok {
			return cached, nil
		}
	}

	mentors, err := h.resolvePool(ctx, q.Mentors)
	if err != nil {
		return nil, err
	}

	raw := h.defaultWeights
	if q.Weights != nil {
		raw = *q.Weights
	}
	// Нулевые веса - ошибка конфигурации, но не фатальная: прогон
	// продолжается на весах по умолчанию, факт отражается в метаданных.
	weights, werr := raw.Normalized()
	fellBack := errors.Is(werr, shared.ErrConfiguration)
	if werr != nil && !fellBack {
		return nil, werr
	}

	opts := matching.RankOptions{
		MinResults:       q.MinResults,
		MaxResults:       q.MaxResults,
		QualityThreshold: q.QualityThreshold,
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	at := q.At
	if at.IsZero() {
		at = time.Now().UTC()
	}

	scored, _ := matching.FilterAndScore(student, mentors, weights, at)

	ranked, err := matching.Rank(scored, opts)
	if err != nil {
		return nil, err
	}

	result := &FindMatchesResult{
		Matches: ranked.Matches,
		Meta: MatchMetadata{
			Weights:          weights,
			WeightsFellBack:  fellBack,
			QualityThreshold: opts.QualityThreshold,
			Considered:       ranked.Considered,
			Returned:         len(ranked.Matches),
			Disclaimer:       ranked.Disclaimer,
			GeneratedAt:      at,
		},
	}

	if useCache {
		_ = h.cache.Set(ctx, student.ID.String(), result)
	}

	return result, nil
}

// resolvePool нормализует явный пул либо загружает активных менторов.
func (h *FindMatchesHandler) resolvePool(ctx context.Context, raw []profile.RawMentorProfile) ([]*profile.MentorProfile, error) {
	if len(raw) == 0 {
		return h.mentorRepo.ListActive(ctx, profile.ListOptions{})
	}

	mentors := make([]*profile.MentorProfile, 0, len(raw))
	for _, r := range raw {
		mentor, err := profile.NormalizeMentor(r)
		if err != nil {
			return nil, err
		}
		mentors = append(mentors, mentor)
	}
	return mentors, nil
}
