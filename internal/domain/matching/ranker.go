package matching

import (
	"sort"
	"time"

	"github.com/mentor-bridge/mentor-bridge-hub/internal/domain/profile"
	"github.com/mentor-bridge/mentor-bridge-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// MATCH RANKER
// Сортирует прошедших скоринг менторов, ограничивает количество результатов
// и генерирует человекочитаемые причины. Если даже лучший кандидат не
// дотягивает до порога качества, список всё равно возвращается - с
// дисклеймером вместо отказа.
// ══════════════════════════════════════════════════════════════════════════════

// RankOptions - параметры ранжирования.
type RankOptions struct {
	// MinResults - минимальное количество результатов (по умолчанию 3).
	MinResults int

	// MaxResults - максимальное количество результатов (по умолчанию 5).
	MaxResults int

	// QualityThreshold - порог качества для дисклеймера (по умолчанию 60).
	QualityThreshold float64
}

// DefaultRankOptions возвращает параметры по умолчанию.
func DefaultRankOptions() RankOptions {
	return RankOptions{
		MinResults:       3,
		MaxResults:       5,
		QualityThreshold: 60,
	}
}

// Validate проверяет и чинит параметры, подставляя значения по умолчанию.
func (o *RankOptions) Validate() error {
	defaults := DefaultRankOptions()
	if o.MinResults <= 0 {
		o.MinResults = defaults.MinResults
	}
	if o.MaxResults <= 0 {
		o.MaxResults = defaults.MaxResults
	}
	if o.QualityThreshold <= 0 {
		o.QualityThreshold = defaults.QualityThreshold
	}
	if o.MinResults > o.MaxResults {
		return shared.NewDomainError("matching", "RankOptions.Validate",
			shared.ErrValidation, "min results cannot exceed max results")
	}
	return nil
}

// Match - один элемент ранжированного списка.
type Match struct {
	// MentorID - идентификатор ментора.
	MentorID shared.MentorID

	// DisplayName - имя ментора для отображения.
	DisplayName string

	// Score - итоговая оценка совместимости.
	Score Score

	// Reasons - причины рекомендации в фиксированном порядке факторов.
	Reasons []string

	// Breakdown - разбивка оценки по факторам.
	Breakdown Breakdown

	// RankPosition - позиция в списке (с 1).
	RankPosition int
}

// RankResult - результат прогона ранжирования.
type RankResult struct {
	// Matches - упорядоченный список рекомендаций.
	Matches []Match

	// Considered - сколько менторов прошло жёсткие фильтры.
	Considered int

	// Disclaimer - предупреждение, если лучший кандидат ниже порога.
	Disclaimer string
}

// reasonBar - под-оценка, начиная с которой фактор попадает в причины.
const reasonBar = 60.0

// Rank сортирует кандидатов по убыванию оценки и собирает итоговый список.
// Джиттер уже вшит в оценку, поэтому сортировка детерминирована.
func Rank(scored []ScoredMentor, opts RankOptions) (*RankResult, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	sorted := make([]ScoredMentor, len(scored))
	copy(sorted, scored)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Composite > sorted[j].Composite
	})

	limit := opts.MaxResults
	if len(sorted) < limit {
		limit = len(sorted)
	}

	matches := make([]Match, 0, limit)
	for i, candidate := range sorted[:limit] {
		matches = append(matches, Match{
			MentorID:     candidate.Mentor.ID,
			DisplayName:  candidate.Mentor.DisplayName,
			Score:        candidate.Composite,
			Reasons:      buildReasons(candidate),
			Breakdown:    candidate.Breakdown,
			RankPosition: i + 1,
		})
	}

	result := &RankResult{
		Matches:    matches,
		Considered: len(scored),
	}

	if len(matches) > 0 && float64(matches[0].Score) < opts.QualityThreshold {
		result.Disclaimer = "Идеального совпадения не нашлось - показываем лучших доступных менторов."
	}

	return result, nil
}

// buildReasons генерирует причины из под-оценок, преодолевших планку,
// в фиксированном порядке пяти факторов.
func buildReasons(candidate ScoredMentor) []string {
	b := candidate.Breakdown
	reasons := make([]string, 0, 5)

	if b.Goals >= reasonBar {
		reasons = append(reasons, "Экспертиза ментора покрывает твои цели")
	}
	if b.Communication >= reasonBar {
		reasons = append(reasons, "Совпадают удобные способы связи")
	}
	if b.Availability >= reasonBar {
		reasons = append(reasons, "Близкие таймзоны и пересекающиеся слоты")
	}
	if b.Style >= reasonBar {
		reasons = append(reasons, "Подход ментора совпадает с твоим стилем обучения")
	}
	if b.Neurodivergence >= reasonBar && b.Neurodivergence > ndNeutralScore {
		reasons = append(reasons, "У ментора есть релевантный опыт с нейроотличиями")
	}

	return reasons
}

// FilterAndScore - полный конвейер скоринга: жёсткие фильтры, под-оценки,
// итоговая оценка. Возвращает прошедших кандидатов и причины отказов
// (для диагностики и тестов).
func FilterAndScore(student *profile.StudentProfile, mentors []*profile.MentorProfile, weights Weights, at time.Time) ([]ScoredMentor, map[shared.MentorID]RejectionReason) {
	scored := make([]ScoredMentor, 0, len(mentors))
	rejected := make(map[shared.MentorID]RejectionReason)

	for _, mentor := range mentors {
		if reason, ok := HardFilter(student, mentor); !ok {
			rejected[mentor.ID] = reason
			continue
		}
		scored = append(scored, ScoreMentor(student, mentor, weights, at))
	}

	return scored, rejected
}
