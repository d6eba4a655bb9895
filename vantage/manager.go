package vantage

import (
	"context"
	"io"
)

// Manager binds the HTTP client, the record cache, and the poller into
// the full analysis lifecycle. All state lives in the injected Store;
// construct one Manager per workspace rather than sharing a global.
type Manager struct {
	Client *Client
	Store  *Store
	Poller *Poller
}

// NewManager wires a lifecycle manager against the given service.
func NewManager(baseURL string) *Manager {
	client := NewClient(baseURL)
	store := NewStore()
	return &Manager{
		Client: client,
		Store:  store,
		Poller: NewPoller(client, store),
	}
}

// Create uploads a disclosure, caches the initial processing record,
// and marks it current.
func (m *Manager) Create(ctx context.Context, fileName string, file io.Reader, title string) (Analysis, error) {
	analysis, err := m.Client.CreateAnalysis(ctx, fileName, file, title)
	if err != nil {
		return Analysis{}, err
	}
	m.Store.Put(analysis)
	m.Store.SetCurrent(analysis.ID)
	return analysis, nil
}

// Get fetches the current state of an analysis and refreshes the cache.
func (m *Manager) Get(ctx context.Context, id string) (Analysis, error) {
	analysis, err := m.Client.GetAnalysis(ctx, id)
	if err != nil {
		return Analysis{}, err
	}
	m.Store.Put(analysis)
	return analysis, nil
}

// Poll starts (or restarts) a polling session for the analysis.
func (m *Manager) Poll(ctx context.Context, id string) *Session {
	return m.Poller.Start(ctx, id)
}

// Delete removes the analysis server-side. Local state is touched only
// after the service confirms the deletion: the poll session is stopped,
// the record dropped, and the current selection cleared if it matched.
// On failure the cache is left exactly as it was.
func (m *Manager) Delete(ctx context.Context, id string) error {
	if err := m.Client.DeleteAnalysis(ctx, id); err != nil {
		return err
	}
	m.Poller.Stop(id)
	m.Store.Remove(id)
	return nil
}

// GenerateReport asks the service for a report on a completed analysis.
func (m *Manager) GenerateReport(ctx context.Context, id string) (Report, error) {
	return m.Client.GenerateReport(ctx, id)
}

// List fetches one page of analyses from the service and refreshes the
// cache with the returned records.
func (m *Manager) List(ctx context.Context, opts ListOptions) (AnalysisPage, error) {
	page, err := m.Client.ListAnalyses(ctx, opts)
	if err != nil {
		return AnalysisPage{}, err
	}
	for _, a := range page.Data {
		m.Store.Put(a)
	}
	return page, nil
}
