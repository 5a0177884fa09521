package ledger

import (
	"sort"
	"time"

	"spendtrack/internal/validator"
)

// SortOrder orders history by date.
type SortOrder string

const (
	Descending SortOrder = "desc"
	Ascending  SortOrder = "asc"
)

// RecentWindow is the span covered by Filter.RecentOnly.
const RecentWindow = 30 * 24 * time.Hour

// Filter narrows a history view. The zero value returns everything,
// newest first.
type Filter struct {
	// Category keeps only records in this category when non-empty.
	Category string
	// RecentOnly keeps records dated within RecentWindow of Now.
	RecentOnly bool
	Order      SortOrder
	// Now anchors RecentOnly; time.Now is used when zero.
	Now time.Time
}

// History returns a filtered, sorted copy of transactions. The input is not
// modified. Records with unparseable dates are excluded by RecentOnly and
// sort after every dated record.
func History(transactions []Transaction, f Filter) []Transaction {
	now := f.Now
	if now.IsZero() {
		now = time.Now()
	}
	cutoff := now.Add(-RecentWindow)

	out := make([]Transaction, 0, len(transactions))
	for _, t := range transactions {
		if f.Category != "" && t.Category != f.Category {
			continue
		}
		if f.RecentOnly {
			d, err := time.ParseInLocation(validator.DateLayout, t.Date, now.Location())
			if err != nil || d.Before(cutoff) {
				continue
			}
		}
		out = append(out, t)
	}

	asc := f.Order == Ascending
	sort.SliceStable(out, func(i, j int) bool {
		di, ei := time.Parse(validator.DateLayout, out[i].Date)
		dj, ej := time.Parse(validator.DateLayout, out[j].Date)
		switch {
		case ei != nil && ej != nil:
			return false
		case ei != nil:
			return false
		case ej != nil:
			return true
		}
		if asc {
			return di.Before(dj)
		}
		return di.After(dj)
	})
	return out
}

// Categories returns the distinct categories in first-seen order.
func Categories(transactions []Transaction) []string {
	seen := make(map[string]bool)
	var out []string
	for _, t := range transactions {
		if t.Category == "" || seen[t.Category] {
			continue
		}
		seen[t.Category] = true
		out = append(out, t.Category)
	}
	return out
}
