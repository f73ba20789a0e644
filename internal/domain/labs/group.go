package labs

import (
	"sort"
	"time"
)

// GroupEntry is one normalized item together with the reporting context
// it gets bucketed by.
type GroupEntry struct {
	Date          string
	Facility      string
	DiagnosisCode string
	DiagnosisName string
	Item          NormalizedLabItem
}

// Group buckets entries by (date, facility). The first entry seen for a
// bucket supplies its diagnosis; item order inside a bucket preserves
// first-seen order. Groups come back sorted by date descending, stable
// for ties.
func Group(entries []GroupEntry) []LabGroup {
	type bucketKey struct{ date, facility string }
	index := make(map[bucketKey]int, len(entries))
	groups := make([]LabGroup, 0, len(entries))

	for _, e := range entries {
		key := bucketKey{date: e.Date, facility: e.Facility}
		idx, ok := index[key]
		if !ok {
			idx = len(groups)
			index[key] = idx
			groups = append(groups, LabGroup{
				Date:          e.Date,
				Facility:      e.Facility,
				DiagnosisCode: e.DiagnosisCode,
				DiagnosisName: e.DiagnosisName,
			})
		}
		groups[idx].Items = append(groups[idx].Items, e.Item)
	}

	sort.SliceStable(groups, func(i, j int) bool {
		return laterDate(groups[i].Date, groups[j].Date)
	})
	return groups
}

var dateLayouts = []string{"2006/01/02", "2006-01-02", "20060102"}

// laterDate orders parseable dates by calendar value and everything
// else lexicographically, so unknown formats still sort
// deterministically.
func laterDate(a, b string) bool {
	ta, okA := parseDate(a)
	tb, okB := parseDate(b)
	if okA && okB {
		return ta.After(tb)
	}
	return a > b
}

func parseDate(s string) (time.Time, bool) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
