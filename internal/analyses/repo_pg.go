package analyses

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"vantage-backend/internal/orchestrate"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

const analysisColumns = `
id, title, status, disclosure_filename, disclosure_key, extracted_claims,
novelty_score, recommendation, reasoning, is_patentable, patentability_confidence,
missing_elements, created_at, updated_at, completed_at`

func (r *PGRepo) Create(ctx context.Context, analysis Analysis) error {
	const query = `
INSERT INTO analyses (id, title, status, disclosure_filename, disclosure_key, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.DB.ExecContext(ctx, query,
		analysis.ID, analysis.Title, analysis.Status,
		analysis.DisclosureFilename, analysis.DisclosureKey,
		analysis.CreatedAt, analysis.UpdatedAt,
	)
	return err
}

func (r *PGRepo) GetByID(ctx context.Context, id string) (Analysis, error) {
	row := r.DB.QueryRowContext(ctx, `SELECT `+analysisColumns+` FROM analyses WHERE id = $1`, id)
	analysis, err := scanAnalysis(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Analysis{}, ErrNotFound
	}
	return analysis, err
}

func (r *PGRepo) List(ctx context.Context, filter ListFilter) ([]Analysis, int, error) {
	var total int
	var args []any
	count := `SELECT count(*) FROM analyses`
	list := `SELECT ` + analysisColumns + ` FROM analyses`
	if filter.Status != "" {
		count += ` WHERE status = $1`
		list += ` WHERE status = $1`
		args = append(args, filter.Status)
	}
	if err := r.DB.QueryRowContext(ctx, count, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	list += ` ORDER BY created_at DESC, id DESC`
	if filter.Status != "" {
		list += ` LIMIT $2 OFFSET $3`
	} else {
		list += ` LIMIT $1 OFFSET $2`
	}
	args = append(args, filter.Limit, filter.Offset)

	rows, err := r.DB.QueryContext(ctx, list, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []Analysis
	for rows.Next() {
		analysis, err := scanAnalysis(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, analysis)
	}
	return out, total, rows.Err()
}

func (r *PGRepo) Complete(ctx context.Context, id string, result ResultUpdate, completedAt time.Time) error {
	claims, err := marshalJSONB(result.Claims)
	if err != nil {
		return err
	}
	missing, err := marshalJSONB(result.MissingElements)
	if err != nil {
		return err
	}

	const query = `
UPDATE analyses
SET status = $2, extracted_claims = $3, novelty_score = $4, recommendation = $5,
	reasoning = $6, is_patentable = $7, patentability_confidence = $8,
	missing_elements = $9, completed_at = $10, updated_at = $10
WHERE id = $1`

	res, err := r.DB.ExecContext(ctx, query, id, StatusCompleted,
		claims, result.NoveltyScore, result.Recommendation, result.Reasoning,
		result.IsPatentable, result.PatentabilityConfidence, missing, completedAt)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *PGRepo) Fail(ctx context.Context, id, reasoning string, failedAt time.Time) error {
	const query = `
UPDATE analyses
SET status = $2, reasoning = $3, updated_at = $4
WHERE id = $1`
	res, err := r.DB.ExecContext(ctx, query, id, StatusFailed, reasoning, failedAt)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *PGRepo) Delete(ctx context.Context, id string) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM analyses WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAnalysis(row rowScanner) (Analysis, error) {
	var (
		a                Analysis
		claims, missing  []byte
		noveltyScore     sql.NullFloat64
		recommendation   sql.NullString
		reasoning        sql.NullString
		isPatentable     sql.NullBool
		patentConfidence sql.NullFloat64
		completedAt      sql.NullTime
	)
	if err := row.Scan(
		&a.ID, &a.Title, &a.Status, &a.DisclosureFilename, &a.DisclosureKey, &claims,
		&noveltyScore, &recommendation, &reasoning, &isPatentable, &patentConfidence,
		&missing, &a.CreatedAt, &a.UpdatedAt, &completedAt,
	); err != nil {
		return Analysis{}, err
	}

	a.Recommendation = recommendation.String
	a.Reasoning = reasoning.String
	if noveltyScore.Valid {
		v := noveltyScore.Float64
		a.NoveltyScore = &v
	}
	if isPatentable.Valid {
		v := isPatentable.Bool
		a.IsPatentable = &v
	}
	if patentConfidence.Valid {
		v := patentConfidence.Float64
		a.PatentabilityConfidence = &v
	}
	if completedAt.Valid {
		t := completedAt.Time
		a.CompletedAt = &t
	}
	if len(claims) > 0 && string(claims) != "null" {
		var parsed orchestrate.Claims
		if err := json.Unmarshal(claims, &parsed); err == nil {
			a.ExtractedClaims = &parsed
		}
	}
	if len(missing) > 0 {
		_ = json.Unmarshal(missing, &a.MissingElements)
	}
	return a, nil
}

// marshalJSONB stores absent values as SQL NULL rather than the JSON
// literal null, which a typed-nil pointer would otherwise produce.
func marshalJSONB(value any) (any, error) {
	if value == nil {
		return nil, nil
	}
	data, err := json.Marshal(value)
	if err != nil {
		return nil, err
	}
	if string(data) == "null" {
		return nil, nil
	}
	return data, nil
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
