package reconcile

import (
	"sort"
	"time"

	series "entsoe-feeder/internal/series/domain"
)

// CategoryRow holds one optional value per category at a single timestamp.
type CategoryRow struct {
	values  [categoryCount]float64
	present [categoryCount]bool
}

// Set records a value for c. Setting a category twice overwrites the earlier value.
func (r *CategoryRow) Set(c Category, value float64) {
	if !c.Valid() {
		return
	}
	r.values[c] = value
	r.present[c] = true
}

// Get returns the value for c and whether it was reported.
func (r CategoryRow) Get(c Category) (float64, bool) {
	if !c.Valid() || !r.present[c] {
		return 0, false
	}
	return r.values[c], true
}

// Has reports whether c was reported, including a reported zero.
func (r CategoryRow) Has(c Category) bool {
	return c.Valid() && r.present[c]
}

// Coverage is the number of categories reported in the row.
func (r CategoryRow) Coverage() int {
	n := 0
	for _, ok := range r.present {
		if ok {
			n++
		}
	}
	return n
}

// Labels returns reported values keyed by upstream label.
func (r CategoryRow) Labels() map[string]float64 {
	out := make(map[string]float64, r.Coverage())
	for i, ok := range r.present {
		if ok {
			out[categoryLabels[i]] = r.values[i]
		}
	}
	return out
}

// CategoryTable is a timestamp × category snapshot table.
type CategoryTable map[time.Time]*CategoryRow

// Put writes every accumulated value of c into the table.
func (t CategoryTable) Put(c Category, acc series.Accumulator) {
	for at, value := range acc {
		row := t[at]
		if row == nil {
			row = &CategoryRow{}
			t[at] = row
		}
		row.Set(c, value)
	}
}

// Select picks the non-future timestamp with the highest coverage, preferring the most recent on ties.
func (t CategoryTable) Select(now time.Time) (time.Time, CategoryRow, bool) {
	candidates := make([]time.Time, 0, len(t))
	for at := range t {
		if at.After(now) {
			continue
		}
		candidates = append(candidates, at)
	}
	if len(candidates) == 0 {
		return time.Time{}, CategoryRow{}, false
	}
	sort.Slice(candidates, func(i, j int) bool { return candidates[i].After(candidates[j]) })

	best := candidates[0]
	bestCoverage := t[best].Coverage()
	for _, at := range candidates[1:] {
		if coverage := t[at].Coverage(); coverage > bestCoverage {
			best = at
			bestCoverage = coverage
		}
	}
	return best, *t[best], true
}
