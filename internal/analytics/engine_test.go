package analytics

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/farmledger/farmledger/internal/farm"
)

func TestResolveAllocationsFieldSizeSplit(t *testing.T) {
	allocs, err := ResolveAllocations(AllocationInput{
		Method:        farm.AllocationFieldSize,
		Amount:        1000,
		CropsInvolved: []string{"A", "B"},
		FieldSizes:    map[string]string{"A": "2", "B": "3 acres"},
	})
	require.NoError(t, err)
	require.Len(t, allocs, 2)
	assert.Equal(t, "A", allocs[0].CropID)
	assert.InDelta(t, 400, allocs[0].AllocatedAmount, 1e-9)
	assert.Equal(t, "B", allocs[1].CropID)
	assert.InDelta(t, 600, allocs[1].AllocatedAmount, 1e-9)
}

func TestResolveAllocationsFieldSizeSumsToAmount(t *testing.T) {
	allocs, err := ResolveAllocations(AllocationInput{
		Method:        farm.AllocationFieldSize,
		Amount:        999.99,
		CropsInvolved: []string{"a", "b", "c"},
		FieldSizes:    map[string]string{"a": "1.3", "b": "2.7", "c": "0.35"},
	})
	require.NoError(t, err)
	var sum float64
	for _, a := range allocs {
		sum += a.AllocatedAmount
	}
	assert.InDelta(t, 999.99, sum, 0.01)
}

func TestResolveAllocationsFieldSizeErrors(t *testing.T) {
	cases := map[string]AllocationInput{
		"no crops":     {Method: farm.AllocationFieldSize, Amount: 10},
		"zero size":    {Method: farm.AllocationFieldSize, Amount: 10, CropsInvolved: []string{"a"}, FieldSizes: map[string]string{"a": "0"}},
		"garbage size": {Method: farm.AllocationFieldSize, Amount: 10, CropsInvolved: []string{"a"}, FieldSizes: map[string]string{"a": "big"}},
		"unknown crop": {Method: farm.AllocationFieldSize, Amount: 10, CropsInvolved: []string{"a"}, FieldSizes: map[string]string{}},
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ResolveAllocations(in)
			assert.ErrorIs(t, err, ErrAllocation)
		})
	}
}

func TestResolveAllocationsManualVerbatim(t *testing.T) {
	manual := []farm.Allocation{{CropID: "a", AllocatedAmount: 100}, {CropID: "b", AllocatedAmount: 50}}
	allocs, err := ResolveAllocations(AllocationInput{Method: farm.AllocationManual, Amount: 1000, Manual: manual})
	require.NoError(t, err)
	assert.Equal(t, manual, allocs)
	allocs[0].AllocatedAmount = 1
	assert.Equal(t, 100.0, manual[0].AllocatedAmount)
}

func TestAllocatedByCropCountsSharesOnly(t *testing.T) {
	exps := []farm.Expenditure{
		{Amount: 1000, Allocations: []farm.Allocation{{CropID: "a", AllocatedAmount: 400}, {CropID: "b", AllocatedAmount: 600}}},
		{Amount: 300, Allocations: []farm.Allocation{{CropID: "a", AllocatedAmount: 100}}},
		{Amount: 80},
	}
	totals := AllocatedByCrop(exps)
	assert.Equal(t, 500.0, totals["a"])
	assert.Equal(t, 600.0, totals["b"])
	assert.Equal(t, 500.0, AllocatedToCrop(exps, "a"))
}

type row struct {
	key   string
	value float64
}

func TestGroupByAverageMatchesSumOverCount(t *testing.T) {
	rows := []row{{"x", 1}, {"y", 10}, {"x", 2}, {"x", 6}, {"", 4}, {"  ", 5}}
	spec := GroupSpec[row]{
		Key:    func(r row) string { return r.key },
		Fields: []Field[row]{{Name: "v", Value: func(r row) float64 { return r.value }}},
	}
	buckets := GroupBy(rows, spec)
	require.Len(t, buckets, 3)
	assert.Equal(t, []string{"x", "y", UnknownKey}, []string{buckets[0].Key, buckets[1].Key, buckets[2].Key})
	for _, b := range buckets {
		st := b.Stat("v")
		assert.InDelta(t, st.Sum/float64(st.Count), st.Avg(), 1e-9)
	}
	x := buckets[0].Stat("v")
	assert.Equal(t, 3, x.Count)
	assert.Equal(t, 9.0, x.Sum)
	assert.Equal(t, 1.0, x.Min)
	assert.Equal(t, 6.0, x.Max)
	assert.Equal(t, 2, buckets[2].Count)
}

func TestGroupByEmpty(t *testing.T) {
	assert.Empty(t, GroupBy([]row(nil), GroupSpec[row]{Key: func(r row) string { return r.key }}))
	total := Total([]row(nil), Field[row]{Name: "v", Value: func(r row) float64 { return r.value }})
	assert.Equal(t, 0, total.Count)
	assert.Equal(t, 0.0, total.Sum("v"))
	assert.Equal(t, 0.0, total.Stat("v").Avg())
}

func TestSortBucketsStable(t *testing.T) {
	buckets := []Bucket{
		{Key: "a", Stats: map[string]Stat{"v": {Sum: 5}}},
		{Key: "b", Stats: map[string]Stat{"v": {Sum: 9}}},
		{Key: "c", Stats: map[string]Stat{"v": {Sum: 5}}},
		{Key: "d"},
	}
	SortBuckets(buckets, "v", true)
	assert.Equal(t, []string{"b", "a", "c", "d"}, []string{buckets[0].Key, buckets[1].Key, buckets[2].Key, buckets[3].Key})
	SortBuckets(buckets, "v", false)
	assert.Equal(t, []string{"d", "a", "c", "b"}, []string{buckets[0].Key, buckets[1].Key, buckets[2].Key, buckets[3].Key})
}

func TestMetricsGuardZeroDenominators(t *testing.T) {
	for _, v := range []float64{
		ProfitMargin(0, 500),
		ROI(100, 0),
		RevenuePerUnit(100, 0),
		ExpectedProgress(10, 0),
		Percentage(5, 0),
	} {
		assert.Equal(t, 0.0, v)
		assert.False(t, math.IsNaN(v) || math.IsInf(v, 0))
	}
	assert.InDelta(t, 25.0, ProfitMargin(400, 300), 1e-9)
	assert.InDelta(t, 50.0, ROI(100, 200), 1e-9)
	assert.InDelta(t, 20.0, RevenuePerUnit(200, 10), 1e-9)
	assert.InDelta(t, 50.0, ExpectedProgress(30, 60), 1e-9)
	assert.InDelta(t, -10.0, ProgressVariance(40, 50), 1e-9)
}

func TestPerformanceScoreWeights(t *testing.T) {
	// on schedule, harvest ahead: 0.4*40 + 0 + 0.3*30
	assert.InDelta(t, 25.0, PerformanceScore(40, 0, 10), 1e-9)
	// variance clamps at +/-30
	assert.InDelta(t, 0.4*70+0.3*30+0.3*30, PerformanceScore(70, 50, 0), 1e-9)
	assert.InDelta(t, 0.4*5-0.3*30+0.3*30, PerformanceScore(5, -40, 3), 1e-9)
	// overdue harvest decays to zero after thirty days
	assert.InDelta(t, 0.4*95+0.3*20, PerformanceScore(95, 0, -10), 1e-9)
	assert.InDelta(t, 0.4*95, PerformanceScore(95, 0, -45), 1e-9)
}

func TestRound2(t *testing.T) {
	assert.Equal(t, 2.68, Round2(2.675))
	assert.Equal(t, -1.23, Round2(-1.2345))
	assert.Equal(t, 33.33, Round2(100.0/3))
	assert.Equal(t, 0.0, Round2(math.NaN()))
	assert.Equal(t, 0.0, Round2(math.Inf(1)))
}

func TestSeasonsPartitionEveryDay(t *testing.T) {
	start := time.Date(2023, 1, 1, 12, 0, 0, 0, time.UTC)
	for d := start; d.Year() == 2023; d = d.AddDate(0, 0, 1) {
		season, year := SeasonOf(d)
		first, last := SeasonBounds(season, year, time.UTC)
		assert.False(t, d.Before(first), d.String())
		assert.False(t, d.After(last), d.String())
		matches := 0
		for _, candidate := range Seasons {
			for _, y := range []int{2022, 2023} {
				lo, hi := SeasonBounds(candidate, y, time.UTC)
				if !d.Before(lo) && !d.After(hi) {
					matches++
				}
			}
		}
		assert.Equal(t, 1, matches, d.String())
	}
}

func TestSeasonOfYearBoundary(t *testing.T) {
	season, year := SeasonOf(time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC))
	assert.Equal(t, Rabi, season)
	assert.Equal(t, 2023, year)

	season, year = SeasonOf(time.Date(2024, 11, 1, 0, 0, 0, 0, time.UTC))
	assert.Equal(t, Rabi, season)
	assert.Equal(t, 2024, year)

	season, _ = SeasonOf(time.Date(2024, 5, 31, 23, 0, 0, 0, time.UTC))
	assert.Equal(t, Zaid, season)
	season, _ = SeasonOf(time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC))
	assert.Equal(t, Kharif, season)
}
