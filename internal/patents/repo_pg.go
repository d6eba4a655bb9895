package patents

import (
	"context"
	"database/sql"
	"encoding/json"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

func (r *PGRepo) ReplaceForAnalysis(ctx context.Context, analysisID string, matches []Patent) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM patents WHERE analysis_id = $1`, analysisID); err != nil {
		return err
	}

	const insert = `
INSERT INTO patents (
	analysis_id, patent_id, title, abstract, claims, publication_date, assignee,
	inventors, ipc_classifications, similarity_score, overlapping_concepts, key_differences, source
)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`

	for _, p := range matches {
		claims, err := marshalList(p.Claims)
		if err != nil {
			return err
		}
		inventors, err := marshalList(p.Inventors)
		if err != nil {
			return err
		}
		ipc, err := marshalList(p.IPCClassifications)
		if err != nil {
			return err
		}
		overlapping, err := marshalList(p.OverlappingConcepts)
		if err != nil {
			return err
		}
		differences, err := marshalList(p.KeyDifferences)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, insert,
			analysisID, p.PatentID, p.Title, nullableString(p.Abstract), claims,
			nullableString(p.PublicationDate), nullableString(p.Assignee),
			inventors, ipc, p.SimilarityScore, overlapping, differences,
			nullableString(p.Source),
		); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (r *PGRepo) ListByAnalysis(ctx context.Context, analysisID string) ([]Patent, error) {
	const query = `
SELECT id, analysis_id, patent_id, title, abstract, claims, publication_date, assignee,
	inventors, ipc_classifications, similarity_score, overlapping_concepts, key_differences, source
FROM patents
WHERE analysis_id = $1
ORDER BY similarity_score DESC, id ASC`

	rows, err := r.DB.QueryContext(ctx, query, analysisID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Patent
	for rows.Next() {
		var (
			p                        Patent
			abstract, pubDate        sql.NullString
			assignee, source         sql.NullString
			claims, inventors, ipc   []byte
			overlapping, differences []byte
		)
		if err := rows.Scan(
			&p.ID, &p.AnalysisID, &p.PatentID, &p.Title, &abstract, &claims, &pubDate, &assignee,
			&inventors, &ipc, &p.SimilarityScore, &overlapping, &differences, &source,
		); err != nil {
			return nil, err
		}
		p.Abstract = abstract.String
		p.PublicationDate = pubDate.String
		p.Assignee = assignee.String
		p.Source = source.String
		if p.Claims, err = unmarshalList(claims); err != nil {
			return nil, err
		}
		if p.Inventors, err = unmarshalList(inventors); err != nil {
			return nil, err
		}
		if p.IPCClassifications, err = unmarshalList(ipc); err != nil {
			return nil, err
		}
		if p.OverlappingConcepts, err = unmarshalList(overlapping); err != nil {
			return nil, err
		}
		if p.KeyDifferences, err = unmarshalList(differences); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *PGRepo) DeleteForAnalysis(ctx context.Context, analysisID string) error {
	_, err := r.DB.ExecContext(ctx, `DELETE FROM patents WHERE analysis_id = $1`, analysisID)
	return err
}

func marshalList(values []string) ([]byte, error) {
	if values == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(values)
}

func unmarshalList(payload []byte) ([]string, error) {
	if len(payload) == 0 {
		return nil, nil
	}
	var out []string
	if err := json.Unmarshal(payload, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func nullableString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
