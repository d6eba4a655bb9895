package orchestrate

import (
	"context"
	"database/sql"
	"encoding/json"
	"sync"
	"time"
)

// Skill execution states recorded in orchestrate_logs.
const (
	skillStarted   = "started"
	skillCompleted = "completed"
	skillFailed    = "failed"
)

// LogEntry records one skill execution within a workflow run.
type LogEntry struct {
	ID           int64
	AnalysisID   string
	SkillName    string
	Status       string
	InputData    map[string]any
	OutputData   map[string]any
	ErrorMessage string
	ExecutionID  string
	WorkflowName string
	StartedAt    time.Time
	CompletedAt  *time.Time
}

// LogRepo persists skill execution logs.
type LogRepo interface {
	Insert(ctx context.Context, entry LogEntry) (int64, error)
	Finish(ctx context.Context, id int64, status string, output map[string]any, errMsg string) error
	ListByAnalysis(ctx context.Context, analysisID string) ([]LogEntry, error)
	DeleteForAnalysis(ctx context.Context, analysisID string) error
}

// MemoryLogRepo is an in-memory LogRepo for local development and tests.
type MemoryLogRepo struct {
	mu      sync.Mutex
	entries []LogEntry
	nextID  int64
}

func NewMemoryLogRepo() *MemoryLogRepo {
	return &MemoryLogRepo{nextID: 1}
}

func (m *MemoryLogRepo) Insert(_ context.Context, entry LogEntry) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry.ID = m.nextID
	m.nextID++
	if entry.StartedAt.IsZero() {
		entry.StartedAt = time.Now().UTC()
	}
	m.entries = append(m.entries, entry)
	return entry.ID, nil
}

func (m *MemoryLogRepo) Finish(_ context.Context, id int64, status string, output map[string]any, errMsg string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.entries {
		if m.entries[i].ID == id {
			now := time.Now().UTC()
			m.entries[i].Status = status
			m.entries[i].OutputData = output
			m.entries[i].ErrorMessage = errMsg
			m.entries[i].CompletedAt = &now
			return nil
		}
	}
	return nil
}

func (m *MemoryLogRepo) ListByAnalysis(_ context.Context, analysisID string) ([]LogEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []LogEntry
	for _, e := range m.entries {
		if e.AnalysisID == analysisID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *MemoryLogRepo) DeleteForAnalysis(_ context.Context, analysisID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	kept := m.entries[:0]
	for _, e := range m.entries {
		if e.AnalysisID != analysisID {
			kept = append(kept, e)
		}
	}
	m.entries = kept
	return nil
}

// PGLogRepo implements LogRepo using Postgres.
type PGLogRepo struct {
	DB *sql.DB
}

func (r *PGLogRepo) Insert(ctx context.Context, entry LogEntry) (int64, error) {
	input, err := marshalObject(entry.InputData)
	if err != nil {
		return 0, err
	}
	if entry.StartedAt.IsZero() {
		entry.StartedAt = time.Now().UTC()
	}

	const query = `
INSERT INTO orchestrate_logs (analysis_id, skill_name, status, input_data, execution_id, workflow_name, started_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING id`

	var id int64
	err = r.DB.QueryRowContext(ctx, query,
		entry.AnalysisID, entry.SkillName, entry.Status, input,
		nullable(entry.ExecutionID), nullable(entry.WorkflowName), entry.StartedAt,
	).Scan(&id)
	return id, err
}

func (r *PGLogRepo) Finish(ctx context.Context, id int64, status string, output map[string]any, errMsg string) error {
	payload, err := marshalObject(output)
	if err != nil {
		return err
	}
	const query = `
UPDATE orchestrate_logs
SET status = $2, output_data = $3, error_message = $4, completed_at = $5
WHERE id = $1`
	_, err = r.DB.ExecContext(ctx, query, id, status, payload, nullable(errMsg), time.Now().UTC())
	return err
}

func (r *PGLogRepo) ListByAnalysis(ctx context.Context, analysisID string) ([]LogEntry, error) {
	const query = `
SELECT id, analysis_id, skill_name, status, input_data, output_data, error_message,
	execution_id, workflow_name, started_at, completed_at
FROM orchestrate_logs
WHERE analysis_id = $1
ORDER BY id ASC`

	rows, err := r.DB.QueryContext(ctx, query, analysisID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []LogEntry
	for rows.Next() {
		var (
			e              LogEntry
			input, output  []byte
			errMsg         sql.NullString
			execID, wfName sql.NullString
			completedAt    sql.NullTime
		)
		if err := rows.Scan(&e.ID, &e.AnalysisID, &e.SkillName, &e.Status, &input, &output,
			&errMsg, &execID, &wfName, &e.StartedAt, &completedAt); err != nil {
			return nil, err
		}
		e.ErrorMessage = errMsg.String
		e.ExecutionID = execID.String
		e.WorkflowName = wfName.String
		if completedAt.Valid {
			t := completedAt.Time
			e.CompletedAt = &t
		}
		if len(input) > 0 {
			_ = json.Unmarshal(input, &e.InputData)
		}
		if len(output) > 0 {
			_ = json.Unmarshal(output, &e.OutputData)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// DeleteForAnalysis is also covered by the FK cascade from analyses;
// the explicit delete keeps log cleanup independent of row ordering.
func (r *PGLogRepo) DeleteForAnalysis(ctx context.Context, analysisID string) error {
	_, err := r.DB.ExecContext(ctx, `DELETE FROM orchestrate_logs WHERE analysis_id = $1`, analysisID)
	return err
}

func marshalObject(m map[string]any) ([]byte, error) {
	if m == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(m)
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
