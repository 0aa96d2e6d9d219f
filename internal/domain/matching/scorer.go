package matching

import (
	"hash/fnv"
	"time"

	"github.com/mentor-bridge/mentor-bridge-hub/internal/domain/profile"
	"github.com/mentor-bridge/mentor-bridge-hub/internal/domain/shared"
	"github.com/mentor-bridge/mentor-bridge-hub/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// COMPATIBILITY SCORER
// Для каждой пары (студент, ментор) считаются пять именованных под-оценок
// (0-100) и взвешенная итоговая оценка. Жёсткие фильтры отсекают менторов
// до скоринга: непройденный фильтр исключает кандидата независимо от
// под-оценок.
// ══════════════════════════════════════════════════════════════════════════════

// Score - оценка совместимости (0-100, дробная из-за взвешивания).
type Score float64

// IsValid проверяет корректность оценки.
func (s Score) IsValid() bool {
	return s >= 0 && s <= 101
}

// Quality возвращает качественную градацию оценки.
func (s Score) Quality() Quality {
	switch {
	case s >= 80:
		return QualityExcellent
	case s >= 60:
		return QualityGood
	case s >= 40:
		return QualityFair
	default:
		return QualityPoor
	}
}

// Quality определяет качество подбора.
type Quality string

const (
	// QualityExcellent - отличная совместимость (80-100).
	QualityExcellent Quality = "excellent"

	// QualityGood - хорошая совместимость (60-79).
	QualityGood Quality = "good"

	// QualityFair - удовлетворительная совместимость (40-59).
	QualityFair Quality = "fair"

	// QualityPoor - низкая совместимость (0-39).
	QualityPoor Quality = "poor"
)

// Breakdown - разбивка итоговой оценки по пяти факторам.
// Каждая под-оценка лежит в диапазоне 0-100.
type Breakdown struct {
	// Goals - доля целей студента, покрытых экспертизой ментора.
	Goals float64 `json:"goals"`

	// Communication - доля совпавших способов связи.
	Communication float64 `json:"communication"`

	// Availability - совместимость таймзон (70%) и слотов (30%).
	Availability float64 `json:"availability"`

	// Style - бинарная совместимость стиля наставничества.
	Style float64 `json:"style"`

	// Neurodivergence - релевантность опыта ментора.
	Neurodivergence float64 `json:"neurodivergence"`
}

// Composite возвращает взвешенную итоговую оценку по нормализованным весам.
// Итог - выпуклая комбинация под-оценок: веса в сумме дают 100.
func (b Breakdown) Composite(w Weights) Score {
	total := b.Goals*w.Goals +
		b.Communication*w.Communication +
		b.Availability*w.Availability +
		b.Style*w.Style +
		b.Neurodivergence*w.Neurodivergence
	return Score(total / 100)
}

// ══════════════════════════════════════════════════════════════════════════════
// HARD FILTERS
// ══════════════════════════════════════════════════════════════════════════════

// RejectionReason - причина дисквалификации ментора жёстким фильтром.
type RejectionReason string

const (
	// RejectNoSlotOverlap - нет пересечения тегов доступности.
	RejectNoSlotOverlap RejectionReason = "no_slot_overlap"

	// RejectAgeBucket - ментор не работает с возрастной группой студента.
	RejectAgeBucket RejectionReason = "age_bucket_mismatch"

	// RejectInactive - ментор не принимает новых подопечных.
	RejectInactive RejectionReason = "inactive"

	// RejectAtCapacity - ментор заполнен.
	RejectAtCapacity RejectionReason = "at_capacity"
)

// HardFilter проверяет жёсткие фильтры и возвращает причину отказа.
// Пустая причина означает, что ментор проходит в скоринг.
func HardFilter(student *profile.StudentProfile, mentor *profile.MentorProfile) (RejectionReason, bool) {
	if !mentor.Active {
		return RejectInactive, false
	}
	if mentor.AtCapacity() {
		return RejectAtCapacity, false
	}
	if !mentor.AcceptsAgeBucket(student.AgeBucket) {
		return RejectAgeBucket, false
	}
	// Фильтр по слотам применяется только когда обе стороны заявили теги.
	if len(student.SlotTags) > 0 && len(mentor.SlotTags) > 0 {
		if !shared.HasAnyTag(student.SlotTags, mentor.SlotTags) {
			return RejectNoSlotOverlap, false
		}
	}
	return "", true
}

// ══════════════════════════════════════════════════════════════════════════════
// SUB-SCORES
// ══════════════════════════════════════════════════════════════════════════════

// styleCompat - фиксированная таблица совместимости стиля студента с
// подходами ментора. Стиль совместим, если хотя бы один подход ментора
// присутствует в строке таблицы.
var styleCompat = map[profile.GuidanceStyle][]profile.MentoringApproach{
	profile.GuidanceStepByStep:    {profile.ApproachStructuredGuidance, profile.ApproachGoalOriented},
	profile.GuidanceOpenEnded:     {profile.ApproachOpenDiscussion, profile.ApproachFlexiblePacing},
	profile.GuidanceHandsOn:       {profile.ApproachProjectBased, profile.ApproachStructuredGuidance},
	profile.GuidanceCollaborative: {profile.ApproachOpenDiscussion, profile.ApproachProjectBased},
}

// ndRelevantScore - под-оценка за релевантный опыт.
const (
	ndNeutralScore  = 50.0
	ndRelevantScore = 100.0

	slotNeutralScore = 50.0

	tzWeight   = 0.7
	slotWeight = 0.3
)

// ScoreGoals считает долю целей студента, покрытых экспертизой ментора.
func ScoreGoals(student *profile.StudentProfile, mentor *profile.MentorProfile) float64 {
	return fractionCovered(student.Goals, mentor.FocusAreas)
}

// ScoreCommunication считает долю совпавших способов связи.
func ScoreCommunication(student *profile.StudentProfile, mentor *profile.MentorProfile) float64 {
	return fractionCovered(student.CommunicationMethods, mentor.CommunicationMethods)
}

// ScoreAvailability считает совместимость доступности: 70% - близость
// таймзон, 30% - пересечение слотов. Если студент не указал слоты,
// слотовая часть получает нейтральные 50.
func ScoreAvailability(student *profile.StudentProfile, mentor *profile.MentorProfile, at time.Time) float64 {
	tzScore := timezoneScore(student, mentor, at)

	slotScore := slotNeutralScore
	if len(student.SlotTags) > 0 {
		slotScore = fractionCovered(student.SlotTags, mentor.SlotTags)
	}

	return tzWeight*tzScore + slotWeight*slotScore
}

// ScoreStyle - бинарная совместимость стиля: 100, если предпочтение
// студента отображается таблицей styleCompat хотя бы в один заявленный
// подход ментора. Неуказанный стиль трактуется нейтрально как совпадение.
func ScoreStyle(student *profile.StudentProfile, mentor *profile.MentorProfile) float64 {
	if student.GuidanceStyle == profile.GuidanceUnspecified {
		return 100
	}
	for _, approach := range styleCompat[student.GuidanceStyle] {
		if mentor.HasApproach(approach) {
			return 100
		}
	}
	return 0
}

// ScoreNeurodivergence считает релевантность опыта ментора.
// Нераскрытое нейроотличие даёт нейтральные 50 и никогда не штрафуется.
func ScoreNeurodivergence(student *profile.StudentProfile, mentor *profile.MentorProfile) float64 {
	if student.Neurodivergence.IsNeutral() {
		return ndNeutralScore
	}
	if mentor.NDExperience.IsRelevant() {
		return ndRelevantScore
	}
	return 0
}

// timezoneScore оценивает близость таймзон по модулю разницы смещений:
// до получаса - 100, дальше ступенями вниз до 30 при разнице больше 3 часов.
// Неразрешимая таймзона трактуется как максимальная разница.
func timezoneScore(student *profile.StudentProfile, mentor *profile.MentorProfile, at time.Time) float64 {
	diff, err := timeutil.ZoneOffsetDiffHours(student.Timezone.String(), mentor.Timezone.String(), at)
	if err != nil {
		return 30
	}
	switch {
	case diff < 0.5:
		return 100
	case diff <= 1:
		return 85
	case diff <= 2:
		return 70
	case diff <= 3:
		return 50
	default:
		return 30
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// SCORING PIPELINE
// ══════════════════════════════════════════════════════════════════════════════

// ScoredMentor - ментор, прошедший жёсткие фильтры, с разбивкой оценки.
type ScoredMentor struct {
	// Mentor - анкета ментора.
	Mentor *profile.MentorProfile

	// Breakdown - разбивка по пяти факторам.
	Breakdown Breakdown

	// Composite - итоговая оценка с детерминированным джиттером.
	Composite Score
}

// ScoreMentor считает разбивку и итоговую оценку для одной пары.
// Веса должны быть уже нормализованы.
func ScoreMentor(student *profile.StudentProfile, mentor *profile.MentorProfile, weights Weights, at time.Time) ScoredMentor {
	breakdown := Breakdown{
		Goals:           ScoreGoals(student, mentor),
		Communication:   ScoreCommunication(student, mentor),
		Availability:    ScoreAvailability(student, mentor, at),
		Style:           ScoreStyle(student, mentor),
		Neurodivergence: ScoreNeurodivergence(student, mentor),
	}

	composite := breakdown.Composite(weights) + Score(jitter(mentor.ID.String()))

	return ScoredMentor{
		Mentor:    mentor,
		Breakdown: breakdown,
		Composite: composite,
	}
}

// jitter возвращает детерминированную добавку < 0.01, выведенную из
// стабильного хеша идентификатора ментора. Разрывает точные ничьи
// воспроизводимо, без случайности.
func jitter(mentorID string) float64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(mentorID))
	return float64(h.Sum64()%1000) / 100000
}

// fractionCovered возвращает долю wanted-тегов, найденных среди offered,
// приведённую к шкале 0-100. Пустой wanted-список даёт 0.
func fractionCovered(wanted, offered []string) float64 {
	if len(wanted) == 0 {
		return 0
	}
	return float64(shared.TagOverlap(wanted, offered)) / float64(len(wanted)) * 100
}
