package profile

import (
	"strings"
	"time"

	"github.com/mentor-bridge/mentor-bridge-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// PROFILE NORMALIZER
// Граница валидации: сырые анкеты со строковыми полями превращаются в
// канонические записи. Дальше по конвейеру (скоринг, ранжирование) данные
// считаются уже проверенными.
// ══════════════════════════════════════════════════════════════════════════════

// RawStudentProfile - сырая анкета студента, как она приходит извне.
// Опциональные поля могут быть пустыми - нормализатор подставит
// нейтральные значения по умолчанию.
type RawStudentProfile struct {
	ID                   string   `json:"id"`
	DisplayName          string   `json:"display_name"`
	Goals                []string `json:"goals"`
	LearningPreferences  []string `json:"learning_preferences,omitempty"`
	CommunicationMethods []string `json:"communication_methods,omitempty"`
	GuidanceStyle        string   `json:"guidance_style,omitempty"`
	Neurodivergence      string   `json:"neurodivergence,omitempty"`
	Timezone             string   `json:"timezone,omitempty"`
	SlotTags             []string `json:"slot_tags,omitempty"`
	Age                  int      `json:"age,omitempty"`
	Grade                int      `json:"grade,omitempty"`
}

// RawMentorProfile - сырая анкета ментора.
type RawMentorProfile struct {
	ID                   string   `json:"id"`
	DisplayName          string   `json:"display_name"`
	FocusAreas           []string `json:"focus_areas"`
	AcceptedAgeBuckets   []string `json:"accepted_age_buckets,omitempty"`
	CommunicationMethods []string `json:"communication_methods,omitempty"`
	SlotTags             []string `json:"slot_tags,omitempty"`
	Approaches           []string `json:"approaches,omitempty"`
	NDExperience         string   `json:"nd_experience,omitempty"`
	Timezone             string   `json:"timezone,omitempty"`
	CurrentMentees       int      `json:"current_mentees,omitempty"`
	MaxMentees           int      `json:"max_mentees,omitempty"`
	Active               *bool    `json:"active,omitempty"`
}

// NormalizeStudent превращает сырую анкету студента в каноническую.
// Возвращает ошибку валидации при отсутствии обязательных полей.
func NormalizeStudent(raw RawStudentProfile) (*StudentProfile, error) {
	const op = "NormalizeStudent"

	id, err := shared.NewStudentID(raw.ID)
	if err != nil {
		return nil, shared.WrapError("profile", op, shared.ErrValidation, "invalid student id", err)
	}

	goals := shared.NormalizeTags(raw.Goals)
	if len(goals) == 0 {
		return nil, shared.NewDomainError("profile", op, shared.ErrValidation,
			"student profile requires at least one goal")
	}

	style := GuidanceStyle(strings.ToLower(strings.TrimSpace(raw.GuidanceStyle)))
	if !style.IsValid() {
		return nil, shared.NewDomainError("profile", op, shared.ErrValidation,
			"unknown guidance style: "+raw.GuidanceStyle)
	}

	disclosure := normalizeDisclosure(raw.Neurodivergence)
	if !disclosure.IsValid() {
		return nil, shared.NewDomainError("profile", op, shared.ErrValidation,
			"unknown neurodivergence disclosure: "+raw.Neurodivergence)
	}

	tz, err := shared.NewTimezone(raw.Timezone)
	if err != nil {
		return nil, shared.WrapError("profile", op, shared.ErrValidation, "invalid timezone", err)
	}

	return &StudentProfile{
		ID:                   id,
		DisplayName:          strings.TrimSpace(raw.DisplayName),
		Goals:                goals,
		LearningPreferences:  shared.NormalizeTags(raw.LearningPreferences),
		CommunicationMethods: shared.NormalizeTags(raw.CommunicationMethods),
		GuidanceStyle:        style,
		Neurodivergence:      disclosure,
		Timezone:             tz,
		SlotTags:             shared.NormalizeTags(raw.SlotTags),
		AgeBucket:            DeriveAgeBucket(raw.Age, raw.Grade),
		NormalizedAt:         time.Now().UTC(),
	}, nil
}

// NormalizeMentor превращает сырую анкету ментора в каноническую.
func NormalizeMentor(raw RawMentorProfile) (*MentorProfile, error) {
	const op = "NormalizeMentor"

	id, err := shared.NewMentorID(raw.ID)
	if err != nil {
		return nil, shared.WrapError("profile", op, shared.ErrValidation, "invalid mentor id", err)
	}

	focus := shared.NormalizeTags(raw.FocusAreas)
	if len(focus) == 0 {
		return nil, shared.NewDomainError("profile", op, shared.ErrValidation,
			"mentor profile requires at least one focus area")
	}

	buckets := make([]AgeBucket, 0, len(raw.AcceptedAgeBuckets))
	for _, b := range shared.NormalizeTags(raw.AcceptedAgeBuckets) {
		bucket := AgeBucket(b)
		if !bucket.IsValid() {
			return nil, shared.NewDomainError("profile", op, shared.ErrValidation,
				"unknown age bucket: "+b)
		}
		buckets = append(buckets, bucket)
	}

	approaches := make([]MentoringApproach, 0, len(raw.Approaches))
	for _, a := range shared.NormalizeTags(raw.Approaches) {
		approach := MentoringApproach(a)
		if !approach.IsValid() {
			return nil, shared.NewDomainError("profile", op, shared.ErrValidation,
				"unknown mentoring approach: "+a)
		}
		approaches = append(approaches, approach)
	}

	experience := NDExperience(strings.ToLower(strings.TrimSpace(raw.NDExperience)))
	if experience == "" {
		experience = NDExperienceNone
	}
	if !experience.IsValid() {
		return nil, shared.NewDomainError("profile", op, shared.ErrValidation,
			"unknown neurodivergence experience: "+raw.NDExperience)
	}

	tz, err := shared.NewTimezone(raw.Timezone)
	if err != nil {
		return nil, shared.WrapError("profile", op, shared.ErrValidation, "invalid timezone", err)
	}

	if raw.CurrentMentees < 0 || raw.MaxMentees < 0 {
		return nil, shared.NewDomainError("profile", op, shared.ErrValueOutOfRange,
			"mentee counters cannot be negative")
	}

	// Отсутствующий флаг активности трактуем как "активен": неактивность
	// должна быть заявлена явно.
	active := true
	if raw.Active != nil {
		active = *raw.Active
	}

	return &MentorProfile{
		ID:                   id,
		DisplayName:          strings.TrimSpace(raw.DisplayName),
		FocusAreas:           focus,
		AcceptedAgeBuckets:   buckets,
		CommunicationMethods: shared.NormalizeTags(raw.CommunicationMethods),
		SlotTags:             shared.NormalizeTags(raw.SlotTags),
		Approaches:           approaches,
		NDExperience:         experience,
		Timezone:             tz,
		CurrentMentees:       raw.CurrentMentees,
		MaxMentees:           raw.MaxMentees,
		Active:               active,
		NormalizedAt:         time.Now().UTC(),
	}, nil
}

// normalizeDisclosure приводит ответ о нейроотличии к каноническому виду.
// Исторические варианты ("prefer-not-to-say", "yes", "no") тоже принимаются.
func normalizeDisclosure(raw string) NDDisclosure {
	normalized := strings.ToLower(strings.TrimSpace(raw))
	normalized = strings.ReplaceAll(normalized, "-", "_")
	normalized = strings.ReplaceAll(normalized, " ", "_")

	switch normalized {
	case "":
		return NDNotDisclosed
	case "yes", "true":
		return NDDisclosed
	case "no", "false", "none":
		return NDNotDisclosed
	default:
		return NDDisclosure(normalized)
	}
}
