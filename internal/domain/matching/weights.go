// Package matching реализует скоринг совместимости и ранжирование менторов.
//
// Философия подбора: объяснимость важнее точности. Каждая рекомендация
// сопровождается разбивкой по факторам и человекочитаемыми причинами,
// чтобы студент понимал, почему ему предложили именно этого ментора.
package matching

import (
	"github.com/mentor-bridge/mentor-bridge-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// WEIGHT CONFIGURATION
// Веса факторов итоговой оценки. Сумма нормализованных весов всегда 100.
// ══════════════════════════════════════════════════════════════════════════════

// Weights - веса пяти факторов совместимости.
type Weights struct {
	// Goals - совпадение целей студента с экспертизой ментора.
	Goals float64

	// Communication - совпадение способов связи.
	Communication float64

	// Availability - совместимость таймзон и слотов доступности.
	Availability float64

	// Style - совместимость стиля наставничества.
	Style float64

	// Neurodivergence - релевантный опыт ментора.
	Neurodivergence float64
}

// DefaultWeights возвращает веса по умолчанию (в сумме 100).
func DefaultWeights() Weights {
	return Weights{
		Goals:           40,
		Communication:   20,
		Availability:    15,
		Style:           15,
		Neurodivergence: 10,
	}
}

// Sum возвращает сумму весов.
func (w Weights) Sum() float64 {
	return w.Goals + w.Communication + w.Availability + w.Style + w.Neurodivergence
}

// IsValid проверяет, что ни один вес не отрицателен.
func (w Weights) IsValid() bool {
	return w.Goals >= 0 && w.Communication >= 0 && w.Availability >= 0 &&
		w.Style >= 0 && w.Neurodivergence >= 0
}

// Normalized приводит веса к сумме 100. Отрицательный вес - ошибка
// валидации: итоговая оценка обязана оставаться выпуклой комбинацией
// под-оценок, а знакопеременные веса её ломают. Если все переданные веса
// равны нулю, возвращаются веса по умолчанию и ошибка конфигурации -
// вызывающая сторона может залогировать её, но прогон подбора продолжается.
func (w Weights) Normalized() (Weights, error) {
	if !w.IsValid() {
		return Weights{}, shared.NewDomainError("matching", "Weights.Normalized",
			shared.ErrValidation, "weights cannot be negative")
	}
	sum := w.Sum()
	if sum == 0 {
		return DefaultWeights(), shared.NewDomainError("matching", "Weights.Normalized",
			shared.ErrConfiguration, "all weights are zero, falling back to defaults")
	}
	factor := 100 / sum
	return Weights{
		Goals:           w.Goals * factor,
		Communication:   w.Communication * factor,
		Availability:    w.Availability * factor,
		Style:           w.Style * factor,
		Neurodivergence: w.Neurodivergence * factor,
	}, nil
}
