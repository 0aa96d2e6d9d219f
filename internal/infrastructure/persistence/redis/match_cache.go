package redis

import (
	"context"
	"time"

	"github.com/mentor-bridge/mentor-bridge-hub/internal/application/query"
)

// ══════════════════════════════════════════════════════════════════════════════
// MATCH CACHE
// Кэш результатов подбора по ключу студента. TTL страхует от дрейфа,
// но записи сбрасываются и явно: менторская запись (расписание, анкета)
// инвалидирует весь кэш, студенческая - только запись этого студента.
// ══════════════════════════════════════════════════════════════════════════════

// MatchCache implements query.MatchCache on top of Cache.
type MatchCache struct {
	cache *Cache
	ttl   time.Duration
}

// NewMatchCache creates a new MatchCache with the given TTL.
func NewMatchCache(cache *Cache, ttl time.Duration) *MatchCache {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &MatchCache{cache: cache, ttl: ttl}
}

// Get returns a cached matching run for the student.
func (m *MatchCache) Get(ctx context.Context, studentID string) (*query.FindMatchesResult, bool) {
	var result query.FindMatchesResult
	// Промах и деградация Redis неразличимы для вызывающей стороны:
	// подбор просто пересчитывается.
	if err := m.cache.Get(ctx, PrefixMatches+studentID, &result); err != nil {
		return nil, false
	}
	return &result, true
}

// Set stores a matching run for the student.
func (m *MatchCache) Set(ctx context.Context, studentID string, result *query.FindMatchesResult) error {
	return m.cache.Set(ctx, PrefixMatches+studentID, result, m.ttl)
}

// Invalidate drops the cached run for the student.
func (m *MatchCache) Invalidate(ctx context.Context, studentID string) error {
	return m.cache.Delete(ctx, PrefixMatches+studentID)
}

// InvalidateAll drops every cached run. Mentor-side writes go through here:
// any student's cached run may include the changed mentor.
func (m *MatchCache) InvalidateAll(ctx context.Context) error {
	return m.cache.DeleteByPrefix(ctx, PrefixMatches)
}
