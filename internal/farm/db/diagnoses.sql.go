package farmdb

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/farmledger/farmledger/internal/farm"
)

const diagnosisColumns = `id, owner_id, type, crop, symptoms, result, image_url, session_id, language, severity,
	status, created_at`

// DiagnosisFilter narrows ListDiagnoses.
type DiagnosisFilter struct {
	Filter
	SessionID string
	Type      farm.DiagnosisType
	Status    farm.DiagnosisStatus
	Crop      string
}

func scanDiagnosis(row pgx.Row) (farm.Diagnosis, error) {
	var d farm.Diagnosis
	var result []byte
	err := row.Scan(&d.ID, &d.OwnerID, &d.Type, &d.Crop, &d.Symptoms, &result, &d.ImageURL, &d.SessionID,
		&d.Language, &d.Severity, &d.Status, &d.CreatedAt)
	if err != nil {
		return farm.Diagnosis{}, err
	}
	if len(result) > 0 {
		if err := json.Unmarshal(result, &d.Result); err != nil {
			return farm.Diagnosis{}, fmt.Errorf("decode diagnosis %s: %w", d.ID, err)
		}
	}
	return d, nil
}

// ListDiagnoses returns diagnoses newest first.
func (q *Queries) ListDiagnoses(ctx context.Context, f DiagnosisFilter) ([]farm.Diagnosis, error) {
	var w where
	w.common(f.Filter)
	if f.SessionID != "" {
		w.add("session_id = ?", f.SessionID)
	}
	if f.Type != "" {
		w.add("type = ?", string(f.Type))
	}
	if f.Status != "" {
		w.add("status = ?", string(f.Status))
	}
	if f.Crop != "" {
		w.add("lower(crop) = lower(?)", f.Crop)
	}
	query := `SELECT ` + diagnosisColumns + ` FROM diagnoses ` + w.String() + ` ORDER BY created_at DESC, id` + w.page(f.Filter)
	rows, err := q.db.Query(ctx, query, w.args...)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanDiagnosis)
}

// GetDiagnosis loads one diagnosis owned by ownerID.
func (q *Queries) GetDiagnosis(ctx context.Context, ownerID, id string) (farm.Diagnosis, error) {
	row := q.db.QueryRow(ctx, `SELECT `+diagnosisColumns+` FROM diagnoses WHERE id = $1 AND owner_id = $2`, id, ownerID)
	return scanDiagnosis(row)
}

// InsertDiagnosis stores d as given.
func (q *Queries) InsertDiagnosis(ctx context.Context, d farm.Diagnosis) error {
	result, err := json.Marshal(d.Result)
	if err != nil {
		return err
	}
	_, err = q.db.Exec(ctx, `
		INSERT INTO diagnoses (`+diagnosisColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6::jsonb, $7, $8, $9, $10, $11, $12)`,
		d.ID, d.OwnerID, string(d.Type), d.Crop, d.Symptoms, string(result), d.ImageURL, d.SessionID,
		d.Language, string(d.Severity), string(d.Status), d.CreatedAt)
	return err
}

// UpdateDiagnosis rewrites the classifier result, severity and status.
func (q *Queries) UpdateDiagnosis(ctx context.Context, d farm.Diagnosis) error {
	result, err := json.Marshal(d.Result)
	if err != nil {
		return err
	}
	return affected(q.db.Exec(ctx, `UPDATE diagnoses SET result = $3::jsonb, severity = $4, status = $5 WHERE id = $1 AND owner_id = $2`,
		d.ID, d.OwnerID, string(result), string(d.Severity), string(d.Status)))
}

// DeleteDiagnosis removes a diagnosis.
func (q *Queries) DeleteDiagnosis(ctx context.Context, ownerID, id string) error {
	return affected(q.db.Exec(ctx, `DELETE FROM diagnoses WHERE id = $1 AND owner_id = $2`, id, ownerID))
}
