package analyses

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryRepo is an in-memory Repo used when no database is configured.
type MemoryRepo struct {
	mu    sync.RWMutex
	items map[string]Analysis
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{items: make(map[string]Analysis)}
}

func (m *MemoryRepo) Create(_ context.Context, analysis Analysis) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[analysis.ID] = analysis
	return nil
}

func (m *MemoryRepo) GetByID(_ context.Context, id string) (Analysis, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	a, ok := m.items[id]
	if !ok {
		return Analysis{}, ErrNotFound
	}
	return a, nil
}

func (m *MemoryRepo) List(_ context.Context, filter ListFilter) ([]Analysis, int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var matched []Analysis
	for _, a := range m.items {
		if filter.Status != "" && a.Status != filter.Status {
			continue
		}
		matched = append(matched, a)
	}
	sort.Slice(matched, func(i, j int) bool {
		if matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].ID > matched[j].ID
		}
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := len(matched)
	if filter.Offset >= total {
		return nil, total, nil
	}
	matched = matched[filter.Offset:]
	if filter.Limit > 0 && len(matched) > filter.Limit {
		matched = matched[:filter.Limit]
	}
	out := make([]Analysis, len(matched))
	copy(out, matched)
	return out, total, nil
}

func (m *MemoryRepo) Complete(_ context.Context, id string, result ResultUpdate, completedAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.items[id]
	if !ok {
		return ErrNotFound
	}

	a.Status = StatusCompleted
	a.ExtractedClaims = result.Claims
	score := result.NoveltyScore
	a.NoveltyScore = &score
	a.Recommendation = result.Recommendation
	a.Reasoning = result.Reasoning
	patentable := result.IsPatentable
	a.IsPatentable = &patentable
	confidence := result.PatentabilityConfidence
	a.PatentabilityConfidence = &confidence
	a.MissingElements = result.MissingElements
	a.CompletedAt = &completedAt
	a.UpdatedAt = completedAt

	m.items[id] = a
	return nil
}

func (m *MemoryRepo) Fail(_ context.Context, id, reasoning string, failedAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.items[id]
	if !ok {
		return ErrNotFound
	}

	a.Status = StatusFailed
	a.Reasoning = reasoning
	a.UpdatedAt = failedAt

	m.items[id] = a
	return nil
}

func (m *MemoryRepo) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.items[id]; !ok {
		return ErrNotFound
	}
	delete(m.items, id)
	return nil
}
