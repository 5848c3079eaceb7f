package analytics

import (
	"context"
	"sort"

	"github.com/farmledger/farmledger/internal/farm"
)

// CountEntry is a counted group.
type CountEntry struct {
	Key   string `json:"key"`
	Count int    `json:"count"`
}

// CropDiagnosisEntry counts diagnoses for one crop name.
type CropDiagnosisEntry struct {
	Crop          string  `json:"crop"`
	Count         int     `json:"count"`
	AvgConfidence float64 `json:"avgConfidence"`
}

// DiagnosisStats summarises stored diagnoses.
type DiagnosisStats struct {
	Total      int                  `json:"total"`
	BySeverity []CountEntry         `json:"bySeverity"`
	ByStatus   []CountEntry         `json:"byStatus"`
	ByType     []CountEntry         `json:"byType"`
	ByCrop     []CropDiagnosisEntry `json:"byCrop"`
}

// DiagnosisStats counts diagnoses in the range by severity, status, type and
// crop. Crops are ordered by count, highest first.
func (s *Service) DiagnosisStats(ctx context.Context, f Filter) (DiagnosisStats, error) {
	rng, err := s.resolve(f)
	if err != nil {
		return DiagnosisStats{}, err
	}
	q := Query{OwnerID: f.OwnerID, Range: rng}
	ds, err := s.load(ctx, loadSpec{diags: &q})
	if err != nil {
		return DiagnosisStats{}, err
	}

	counts := func(key func(farm.Diagnosis) string) []CountEntry {
		buckets := GroupBy(ds.diags, GroupSpec[farm.Diagnosis]{Key: key})
		out := make([]CountEntry, len(buckets))
		for i, b := range buckets {
			out[i] = CountEntry{Key: b.Key, Count: b.Count}
		}
		return out
	}

	byCrop := GroupBy(ds.diags, GroupSpec[farm.Diagnosis]{
		Key:    func(d farm.Diagnosis) string { return d.Crop },
		Fields: []Field[farm.Diagnosis]{diagnosisConfidence},
	})
	sort.SliceStable(byCrop, func(i, j int) bool { return byCrop[i].Count > byCrop[j].Count })

	stats := DiagnosisStats{
		Total:      len(ds.diags),
		BySeverity: counts(func(d farm.Diagnosis) string { return string(d.Severity) }),
		ByStatus:   counts(func(d farm.Diagnosis) string { return string(d.Status) }),
		ByType:     counts(func(d farm.Diagnosis) string { return string(d.Type) }),
		ByCrop:     make([]CropDiagnosisEntry, len(byCrop)),
	}
	for i, b := range byCrop {
		stats.ByCrop[i] = CropDiagnosisEntry{Crop: b.Key, Count: b.Count, AvgConfidence: Round2(b.Stat(fieldConfidence).Avg())}
	}
	return stats, nil
}
