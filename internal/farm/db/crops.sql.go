package farmdb

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/farmledger/farmledger/internal/farm"
)

const cropColumns = `id, owner_id, name, type, variety, field_size, location, notes, current_stage, progress,
	start_date, expected_harvest, when_to_pluck, created_at, updated_at`

// CropFilter narrows ListCrops.
type CropFilter struct {
	Filter
	IDs []string
	// ExcludeStage drops crops in this stage.
	ExcludeStage farm.Stage
	// PluckFrom and PluckTo bound when_to_pluck, inclusive.
	PluckFrom time.Time
	PluckTo   time.Time
	// ActiveFrom and ActiveTo match crops whose start date or pluck date
	// falls inside the window.
	ActiveFrom time.Time
	ActiveTo   time.Time
}

func scanCrop(row pgx.Row) (farm.Crop, error) {
	var c farm.Crop
	var start, harvest, pluck pgtype.Date
	err := row.Scan(&c.ID, &c.OwnerID, &c.Name, &c.Type, &c.Variety, &c.FieldSize, &c.Location, &c.Notes,
		&c.CurrentStage, &c.Progress, &start, &harvest, &pluck, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return farm.Crop{}, err
	}
	c.StartDate = dateValue(start)
	c.ExpectedHarvest = dateValue(harvest)
	c.WhenToPluck = dateValue(pluck)
	return c, nil
}

// ListCrops returns crops newest first.
func (q *Queries) ListCrops(ctx context.Context, f CropFilter) ([]farm.Crop, error) {
	var w where
	w.common(f.Filter)
	if len(f.IDs) > 0 {
		w.add("id = ANY(?)", f.IDs)
	}
	if f.ExcludeStage != "" {
		w.add("current_stage <> ?", string(f.ExcludeStage))
	}
	if !f.PluckFrom.IsZero() {
		w.add("when_to_pluck >= ?", pgtype.Date{Time: f.PluckFrom, Valid: true})
	}
	if !f.PluckTo.IsZero() {
		w.add("when_to_pluck <= ?", pgtype.Date{Time: f.PluckTo, Valid: true})
	}
	if !f.ActiveFrom.IsZero() && !f.ActiveTo.IsZero() {
		from := pgtype.Date{Time: f.ActiveFrom, Valid: true}
		to := pgtype.Date{Time: f.ActiveTo, Valid: true}
		w.add("((start_date BETWEEN ? AND ?) OR (when_to_pluck BETWEEN ? AND ?))", from, to, from, to)
	}
	query := `SELECT ` + cropColumns + ` FROM crops ` + w.String() + ` ORDER BY created_at DESC, id` + w.page(f.Filter)
	rows, err := q.db.Query(ctx, query, w.args...)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanCrop)
}

// GetCrop loads one crop owned by ownerID.
func (q *Queries) GetCrop(ctx context.Context, ownerID, id string) (farm.Crop, error) {
	row := q.db.QueryRow(ctx, `SELECT `+cropColumns+` FROM crops WHERE id = $1 AND owner_id = $2`, id, ownerID)
	return scanCrop(row)
}

// InsertCrop stores c as given.
func (q *Queries) InsertCrop(ctx context.Context, c farm.Crop) error {
	_, err := q.db.Exec(ctx, `
		INSERT INTO crops (`+cropColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`,
		c.ID, c.OwnerID, c.Name, string(c.Type), c.Variety, c.FieldSize, c.Location, c.Notes,
		string(c.CurrentStage), c.Progress, dateParam(c.StartDate), dateParam(c.ExpectedHarvest), dateParam(c.WhenToPluck),
		c.CreatedAt, c.UpdatedAt)
	return err
}

// UpdateCrop overwrites the mutable columns of c.
func (q *Queries) UpdateCrop(ctx context.Context, c farm.Crop) error {
	return affected(q.db.Exec(ctx, `
		UPDATE crops SET name = $3, type = $4, variety = $5, field_size = $6, location = $7, notes = $8,
			current_stage = $9, progress = $10, start_date = $11, expected_harvest = $12, when_to_pluck = $13,
			updated_at = $14
		WHERE id = $1 AND owner_id = $2`,
		c.ID, c.OwnerID, c.Name, string(c.Type), c.Variety, c.FieldSize, c.Location, c.Notes,
		string(c.CurrentStage), c.Progress, dateParam(c.StartDate), dateParam(c.ExpectedHarvest), dateParam(c.WhenToPluck),
		c.UpdatedAt))
}

// DeleteCrop removes a crop. Sales referencing it are left in place.
func (q *Queries) DeleteCrop(ctx context.Context, ownerID, id string) error {
	return affected(q.db.Exec(ctx, `DELETE FROM crops WHERE id = $1 AND owner_id = $2`, id, ownerID))
}
