package analytics

import (
	"math"
	"sort"
	"strings"
)

// UnknownKey labels records whose group key is missing.
const UnknownKey = "Unknown"

// Field names a numeric value extracted from each record.
type Field[T any] struct {
	Name  string
	Value func(T) float64
}

// GroupSpec is a declarative grouping: a key selector plus the fields to
// reduce within each group.
type GroupSpec[T any] struct {
	Key    func(T) string
	Fields []Field[T]
}

// Stat is the reduction of one field within a bucket.
type Stat struct {
	Count int     `json:"count"`
	Sum   float64 `json:"sum"`
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
}

// Avg returns Sum/Count, or 0 for an empty stat.
func (s Stat) Avg() float64 {
	if s.Count == 0 {
		return 0
	}
	return s.Sum / float64(s.Count)
}

func (s *Stat) add(v float64) {
	if s.Count == 0 {
		s.Min, s.Max = v, v
	} else {
		s.Min = math.Min(s.Min, v)
		s.Max = math.Max(s.Max, v)
	}
	s.Count++
	s.Sum += v
}

// Bucket is one group produced by GroupBy.
type Bucket struct {
	Key   string
	Count int
	Stats map[string]Stat
}

// Stat returns the reduction for field, zero when absent.
func (b Bucket) Stat(field string) Stat {
	return b.Stats[field]
}

// Sum is shorthand for b.Stat(field).Sum.
func (b Bucket) Sum(field string) float64 {
	return b.Stats[field].Sum
}

// GroupBy buckets records by spec.Key in first-seen order.
func GroupBy[T any](records []T, spec GroupSpec[T]) []Bucket {
	index := make(map[string]int)
	var buckets []Bucket
	for _, rec := range records {
		key := UnknownKey
		if spec.Key != nil {
			if k := strings.TrimSpace(spec.Key(rec)); k != "" {
				key = k
			}
		}
		pos, ok := index[key]
		if !ok {
			pos = len(buckets)
			index[key] = pos
			buckets = append(buckets, Bucket{Key: key, Stats: make(map[string]Stat, len(spec.Fields))})
		}
		b := &buckets[pos]
		b.Count++
		for _, f := range spec.Fields {
			st := b.Stats[f.Name]
			st.add(f.Value(rec))
			b.Stats[f.Name] = st
		}
	}
	return buckets
}

// Total reduces every record into a single bucket.
func Total[T any](records []T, fields ...Field[T]) Bucket {
	buckets := GroupBy(records, GroupSpec[T]{Key: func(T) string { return "total" }, Fields: fields})
	if len(buckets) == 0 {
		return Bucket{Key: "total", Stats: map[string]Stat{}}
	}
	return buckets[0]
}

// SortBuckets orders buckets by the sum of field. Ties keep their prior order.
func SortBuckets(buckets []Bucket, field string, desc bool) {
	sort.SliceStable(buckets, func(i, j int) bool {
		a, b := buckets[i].Sum(field), buckets[j].Sum(field)
		if desc {
			return a > b
		}
		return a < b
	})
}

// Lookup indexes buckets by key.
func Lookup(buckets []Bucket) map[string]Bucket {
	out := make(map[string]Bucket, len(buckets))
	for _, b := range buckets {
		out[b.Key] = b
	}
	return out
}
