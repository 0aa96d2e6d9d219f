// Package profile содержит доменные типы профилей студентов и менторов.
// Профили - неизменяемый вход для одного прогона подбора: нормализатор
// превращает сырые анкеты в канонические сравнимые записи.
package profile

import (
	"time"

	"github.com/mentor-bridge/mentor-bridge-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// ENUMERATIONS
// Все перечисления хранятся в нижнем регистре - нормализатор приводит
// произвольный ввод к этим значениям.
// ══════════════════════════════════════════════════════════════════════════════

// GuidanceStyle определяет предпочитаемый студентом стиль наставничества.
type GuidanceStyle string

const (
	// GuidanceStepByStep - пошаговое сопровождение с чёткой структурой.
	GuidanceStepByStep GuidanceStyle = "step_by_step"

	// GuidanceOpenEnded - свободное обсуждение без жёсткого плана.
	GuidanceOpenEnded GuidanceStyle = "open_ended"

	// GuidanceHandsOn - обучение через совместную практику.
	GuidanceHandsOn GuidanceStyle = "hands_on"

	// GuidanceCollaborative - партнёрский формат, решения принимаются вместе.
	GuidanceCollaborative GuidanceStyle = "collaborative"

	// GuidanceUnspecified - студент не указал предпочтение.
	GuidanceUnspecified GuidanceStyle = ""
)

// IsValid проверяет корректность значения.
func (g GuidanceStyle) IsValid() bool {
	switch g {
	case GuidanceStepByStep, GuidanceOpenEnded, GuidanceHandsOn,
		GuidanceCollaborative, GuidanceUnspecified:
		return true
	default:
		return false
	}
}

// MentoringApproach определяет подход ментора к работе с подопечными.
type MentoringApproach string

const (
	// ApproachStructuredGuidance - структурированное сопровождение по плану.
	ApproachStructuredGuidance MentoringApproach = "structured_guidance"

	// ApproachOpenDiscussion - открытые обсуждения и рефлексия.
	ApproachOpenDiscussion MentoringApproach = "open_discussion"

	// ApproachProjectBased - работа через совместные проекты.
	ApproachProjectBased MentoringApproach = "project_based"

	// ApproachGoalOriented - движение от цели к цели с контрольными точками.
	ApproachGoalOriented MentoringApproach = "goal_oriented"

	// ApproachFlexiblePacing - гибкий темп, подстройка под подопечного.
	ApproachFlexiblePacing MentoringApproach = "flexible_pacing"
)

// IsValid проверяет корректность значения.
func (a MentoringApproach) IsValid() bool {
	switch a {
	case ApproachStructuredGuidance, ApproachOpenDiscussion, ApproachProjectBased,
		ApproachGoalOriented, ApproachFlexiblePacing:
		return true
	default:
		return false
	}
}

// NDDisclosure описывает, раскрыл ли студент нейроотличие.
// Отсутствие ответа трактуется нейтрально и никогда не штрафуется.
type NDDisclosure string

const (
	// NDNotDisclosed - поле не заполнено (нейтральное значение по умолчанию).
	NDNotDisclosed NDDisclosure = "not_disclosed"

	// NDPreferNotToSay - студент явно отказался отвечать.
	NDPreferNotToSay NDDisclosure = "prefer_not_to_say"

	// NDDisclosed - студент раскрыл нейроотличие.
	NDDisclosed NDDisclosure = "disclosed"
)

// IsValid проверяет корректность значения.
func (d NDDisclosure) IsValid() bool {
	switch d {
	case NDNotDisclosed, NDPreferNotToSay, NDDisclosed:
		return true
	default:
		return false
	}
}

// IsNeutral возвращает true, если ответ не раскрывает нейроотличие.
func (d NDDisclosure) IsNeutral() bool {
	return d == NDNotDisclosed || d == NDPreferNotToSay
}

// NDExperience описывает опыт ментора в работе с нейроотличными подопечными.
type NDExperience string

const (
	// NDExperienceNone - опыта нет или он не заявлен.
	NDExperienceNone NDExperience = "none"

	// NDExperienceSomeFamiliarity - базовое знакомство с темой.
	NDExperienceSomeFamiliarity NDExperience = "some_familiarity"

	// NDExperiencePersonal - личный опыт нейроотличия.
	NDExperiencePersonal NDExperience = "personal_experience"

	// NDExperienceProfessional - профессиональный опыт (педагогика, терапия).
	NDExperienceProfessional NDExperience = "professional_experience"

	// NDExperienceExtensive - многолетний подтверждённый опыт.
	NDExperienceExtensive NDExperience = "extensive_experience"
)

// IsValid проверяет корректность значения.
func (e NDExperience) IsValid() bool {
	switch e {
	case NDExperienceNone, NDExperienceSomeFamiliarity, NDExperiencePersonal,
		NDExperienceProfessional, NDExperienceExtensive:
		return true
	default:
		return false
	}
}

// IsRelevant возвращает true, если опыт считается релевантным для
// нейроотличного студента.
func (e NDExperience) IsRelevant() bool {
	switch e {
	case NDExperiencePersonal, NDExperienceProfessional, NDExperienceExtensive:
		return true
	default:
		return false
	}
}

// AgeBucket - возрастная группа подопечного.
type AgeBucket string

const (
	// AgeBucketMiddleSchool - средняя школа (11-13 лет).
	AgeBucketMiddleSchool AgeBucket = "middle_school"

	// AgeBucketHighSchool - старшая школа (14-17 лет).
	AgeBucketHighSchool AgeBucket = "high_school"

	// AgeBucketCollege - колледж/университет (18-22 года).
	AgeBucketCollege AgeBucket = "college"

	// AgeBucketAdult - взрослые (23+).
	AgeBucketAdult AgeBucket = "adult"
)

// IsValid проверяет корректность значения.
func (b AgeBucket) IsValid() bool {
	switch b {
	case AgeBucketMiddleSchool, AgeBucketHighSchool, AgeBucketCollege, AgeBucketAdult:
		return true
	default:
		return false
	}
}

// DeriveAgeBucket выводит возрастную группу из возраста. Возраст имеет
// приоритет над классом; при отсутствии обоих берётся high_school.
func DeriveAgeBucket(age, grade int) AgeBucket {
	switch {
	case age >= 23:
		return AgeBucketAdult
	case age >= 18:
		return AgeBucketCollege
	case age >= 14:
		return AgeBucketHighSchool
	case age >= 11:
		return AgeBucketMiddleSchool
	case age > 0:
		return AgeBucketMiddleSchool
	}
	switch {
	case grade >= 13:
		return AgeBucketCollege
	case grade >= 9:
		return AgeBucketHighSchool
	case grade >= 6:
		return AgeBucketMiddleSchool
	case grade > 0:
		return AgeBucketMiddleSchool
	}
	return AgeBucketHighSchool
}

// ══════════════════════════════════════════════════════════════════════════════
// STUDENT PROFILE
// ══════════════════════════════════════════════════════════════════════════════

// StudentProfile - каноническая анкета студента.
// Все списки нормализованы (нижний регистр, без дубликатов), отсутствующие
// опциональные поля заполнены нейтральными значениями.
type StudentProfile struct {
	// ID - идентификатор студента (UUID).
	ID shared.StudentID

	// DisplayName - отображаемое имя.
	DisplayName string

	// Goals - цели поддержки (например, academic_support, career_guidance).
	Goals []string

	// LearningPreferences - предпочтения по формату обучения.
	LearningPreferences []string

	// CommunicationMethods - предпочитаемые способы связи.
	CommunicationMethods []string

	// GuidanceStyle - предпочитаемый стиль наставничества.
	GuidanceStyle GuidanceStyle

	// Neurodivergence - раскрытие нейроотличия.
	Neurodivergence NDDisclosure

	// Timezone - именованная таймзона студента.
	Timezone shared.Timezone

	// SlotTags - теги доступности (например, tue_evening).
	SlotTags []string

	// AgeBucket - возрастная группа (выведена из возраста или класса).
	AgeBucket AgeBucket

	// NormalizedAt - когда анкета прошла нормализацию.
	NormalizedAt time.Time
}

// ══════════════════════════════════════════════════════════════════════════════
// MENTOR PROFILE
// ══════════════════════════════════════════════════════════════════════════════

// MentorProfile - каноническая анкета ментора.
type MentorProfile struct {
	// ID - идентификатор ментора (UUID).
	ID shared.MentorID

	// DisplayName - отображаемое имя.
	DisplayName string

	// FocusAreas - области экспертизы ментора.
	FocusAreas []string

	// AcceptedAgeBuckets - возрастные группы, с которыми ментор работает.
	AcceptedAgeBuckets []AgeBucket

	// CommunicationMethods - поддерживаемые способы связи.
	CommunicationMethods []string

	// SlotTags - теги доступности ментора.
	SlotTags []string

	// Approaches - подходы ментора к наставничеству.
	Approaches []MentoringApproach

	// NDExperience - опыт работы с нейроотличными подопечными.
	NDExperience NDExperience

	// Timezone - именованная таймзона ментора.
	Timezone shared.Timezone

	// CurrentMentees - текущее число подопечных.
	CurrentMentees int

	// MaxMentees - максимум подопечных (0 = не задан, лимит не проверяется).
	MaxMentees int

	// Active - принимает ли ментор новых подопечных.
	Active bool

	// NormalizedAt - когда анкета прошла нормализацию.
	NormalizedAt time.Time
}

// AtCapacity возвращает true, если ментор заполнен.
// Лимит проверяется только когда обе величины известны.
func (m *MentorProfile) AtCapacity() bool {
	return m.MaxMentees > 0 && m.CurrentMentees >= m.MaxMentees
}

// AcceptsAgeBucket проверяет, работает ли ментор с данной возрастной группой.
// Пустой список трактуется как "любая группа".
func (m *MentorProfile) AcceptsAgeBucket(bucket AgeBucket) bool {
	if len(m.AcceptedAgeBuckets) == 0 {
		return true
	}
	for _, b := range m.AcceptedAgeBuckets {
		if b == bucket {
			return true
		}
	}
	return false
}

// HasApproach проверяет, заявлен ли у ментора данный подход.
func (m *MentorProfile) HasApproach(approach MentoringApproach) bool {
	for _, a := range m.Approaches {
		if a == approach {
			return true
		}
	}
	return false
}
