package patents

import (
	"context"
	"sort"
	"sync"
)

// MemoryRepo is an in-memory Repo for local development and tests.
type MemoryRepo struct {
	mu      sync.RWMutex
	byAnlys map[string][]Patent
	nextID  int64
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{byAnlys: make(map[string][]Patent), nextID: 1}
}

func (m *MemoryRepo) ReplaceForAnalysis(_ context.Context, analysisID string, matches []Patent) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored := make([]Patent, len(matches))
	for i, p := range matches {
		p.ID = m.nextID
		m.nextID++
		p.AnalysisID = analysisID
		stored[i] = p
	}
	m.byAnlys[analysisID] = stored
	return nil
}

func (m *MemoryRepo) ListByAnalysis(_ context.Context, analysisID string) ([]Patent, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	stored := m.byAnlys[analysisID]
	out := make([]Patent, len(stored))
	copy(out, stored)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].SimilarityScore > out[j].SimilarityScore
	})
	return out, nil
}

func (m *MemoryRepo) DeleteForAnalysis(_ context.Context, analysisID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.byAnlys, analysisID)
	return nil
}
