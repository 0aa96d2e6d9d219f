package shared

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeTags(t *testing.T) {
	tags := NormalizeTags([]string{" Academic_Support ", "career_guidance", "ACADEMIC_SUPPORT", "", "  "})

	assert.Equal(t, []string{"academic_support", "career_guidance"}, tags)
}

func TestTagOverlap(t *testing.T) {
	wanted := []string{"weekday_evening", "weekend_morning"}
	offered := []string{"weekend_morning", "weekday_afternoon"}

	assert.Equal(t, 1, TagOverlap(wanted, offered))
	assert.Equal(t, 0, TagOverlap(wanted, nil))
	assert.Equal(t, 0, TagOverlap(nil, offered))
	assert.Equal(t, 2, TagOverlap(wanted, wanted))
}

func TestHasAnyTag(t *testing.T) {
	assert.True(t, HasAnyTag([]string{"weekend_morning"}, []string{"weekend_morning", "weekday_evening"}))
	assert.False(t, HasAnyTag([]string{"weekend_morning"}, []string{"weekday_evening"}))
	assert.False(t, HasAnyTag(nil, []string{"weekday_evening"}))
}
