package farmdb

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/farmledger/farmledger/internal/farm"
)

const diseaseColumns = `id, crop, crop_category, disease_name, pathogen_type, pathogen_name, disease_category, symptoms,
	severity, major_states, season, yield_loss, chemical_treatments, biological_treatments, organic_treatments,
	cultural_practices, prevention_methods, affected_plant_parts, economic_impact`

// DiseaseFilter narrows the catalog. Search matches any of its words against
// crop, disease name, pathogen name or disease category.
type DiseaseFilter struct {
	Search   string
	Crop     string
	Category string
	Severity string
	State    string
	Season   string
	Limit    int
	Offset   int
}

// DiseaseOptions are the distinct values each catalog filter accepts.
type DiseaseOptions struct {
	Crops      []string `json:"crops"`
	Categories []string `json:"categories"`
	Severities []string `json:"severities"`
	States     []string `json:"states"`
	Seasons    []string `json:"seasons"`
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func (f DiseaseFilter) where() *where {
	w := &where{}
	if words := strings.Fields(f.Search); len(words) > 0 {
		var ors []string
		var args []interface{}
		for _, word := range words {
			pattern := "%" + likeEscaper.Replace(word) + "%"
			ors = append(ors, "crop ILIKE ? OR disease_name ILIKE ? OR pathogen_name ILIKE ? OR disease_category ILIKE ?")
			args = append(args, pattern, pattern, pattern, pattern)
		}
		w.add("("+strings.Join(ors, " OR ")+")", args...)
	}
	if f.Crop != "" {
		w.add("crop = ?", f.Crop)
	}
	if f.Category != "" {
		w.add("disease_category = ?", f.Category)
	}
	if f.Severity != "" {
		w.add("severity = ?", f.Severity)
	}
	if f.State != "" {
		w.add("? = ANY(major_states)", f.State)
	}
	if f.Season != "" {
		w.add("season = ?", f.Season)
	}
	return w
}

func scanDisease(row pgx.Row) (farm.Disease, error) {
	var d farm.Disease
	err := row.Scan(&d.ID, &d.Crop, &d.CropCategory, &d.Name, &d.PathogenType, &d.PathogenName, &d.Category,
		&d.Symptoms, &d.Severity, &d.MajorStates, &d.Season, &d.YieldLoss, &d.ChemicalTreatments,
		&d.BiologicalTreatments, &d.OrganicTreatments, &d.CulturalPractices, &d.PreventionMethods,
		&d.AffectedPlantParts, &d.EconomicImpact)
	return d, err
}

// ListDiseases returns catalog entries ordered by id.
func (q *Queries) ListDiseases(ctx context.Context, f DiseaseFilter) ([]farm.Disease, error) {
	w := f.where()
	query := `SELECT ` + diseaseColumns + ` FROM diseases ` + w.String() + ` ORDER BY id` + w.page(Filter{Limit: f.Limit, Offset: f.Offset})
	rows, err := q.db.Query(ctx, query, w.args...)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanDisease)
}

// CountDiseases counts the entries ListDiseases would page through.
func (q *Queries) CountDiseases(ctx context.Context, f DiseaseFilter) (int, error) {
	w := f.where()
	var n int
	err := q.db.QueryRow(ctx, `SELECT COUNT(*) FROM diseases `+w.String(), w.args...).Scan(&n)
	return n, err
}

// GetDisease loads one catalog entry.
func (q *Queries) GetDisease(ctx context.Context, id int) (farm.Disease, error) {
	return scanDisease(q.db.QueryRow(ctx, `SELECT `+diseaseColumns+` FROM diseases WHERE id = $1`, id))
}

// DiseaseFilterOptions lists the distinct non-empty values of every filter.
func (q *Queries) DiseaseFilterOptions(ctx context.Context) (DiseaseOptions, error) {
	var opts DiseaseOptions
	targets := []struct {
		query string
		dest  *[]string
	}{
		{`SELECT DISTINCT crop FROM diseases WHERE crop <> '' ORDER BY 1`, &opts.Crops},
		{`SELECT DISTINCT disease_category FROM diseases WHERE disease_category <> '' ORDER BY 1`, &opts.Categories},
		{`SELECT DISTINCT severity FROM diseases WHERE severity <> '' ORDER BY 1`, &opts.Severities},
		{`SELECT DISTINCT s FROM diseases, unnest(major_states) AS s WHERE s <> '' ORDER BY 1`, &opts.States},
		{`SELECT DISTINCT season FROM diseases WHERE season <> '' ORDER BY 1`, &opts.Seasons},
	}
	for _, t := range targets {
		rows, err := q.db.Query(ctx, t.query)
		if err != nil {
			return DiseaseOptions{}, err
		}
		values, err := pgx.CollectRows(rows, pgx.RowTo[string])
		if err != nil {
			return DiseaseOptions{}, err
		}
		if values == nil {
			values = []string{}
		}
		*t.dest = values
	}
	return opts, nil
}

// UpsertDisease stores or replaces a catalog entry.
func (q *Queries) UpsertDisease(ctx context.Context, d farm.Disease) error {
	_, err := q.db.Exec(ctx, `
		INSERT INTO diseases (`+diseaseColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)
		ON CONFLICT (id) DO UPDATE SET
			crop = EXCLUDED.crop, crop_category = EXCLUDED.crop_category, disease_name = EXCLUDED.disease_name,
			pathogen_type = EXCLUDED.pathogen_type, pathogen_name = EXCLUDED.pathogen_name,
			disease_category = EXCLUDED.disease_category, symptoms = EXCLUDED.symptoms, severity = EXCLUDED.severity,
			major_states = EXCLUDED.major_states, season = EXCLUDED.season, yield_loss = EXCLUDED.yield_loss,
			chemical_treatments = EXCLUDED.chemical_treatments, biological_treatments = EXCLUDED.biological_treatments,
			organic_treatments = EXCLUDED.organic_treatments, cultural_practices = EXCLUDED.cultural_practices,
			prevention_methods = EXCLUDED.prevention_methods, affected_plant_parts = EXCLUDED.affected_plant_parts,
			economic_impact = EXCLUDED.economic_impact`,
		d.ID, d.Crop, d.CropCategory, d.Name, d.PathogenType, d.PathogenName, d.Category, d.Symptoms, d.Severity,
		textArray(d.MajorStates), d.Season, d.YieldLoss, textArray(d.ChemicalTreatments),
		textArray(d.BiologicalTreatments), textArray(d.OrganicTreatments), textArray(d.CulturalPractices),
		textArray(d.PreventionMethods), textArray(d.AffectedPlantParts), d.EconomicImpact)
	return err
}
