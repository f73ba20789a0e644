package labs

import (
	"regexp"
	"strings"
)

// CrossDupRule drops a record whose order code is a known re-report of
// a sibling order code at a specific facility. The redundant record is
// removed before identity deduplication runs.
type CrossDupRule struct {
	Facility    string `json:"facility"`
	OrderCode   string `json:"order_code"`
	SiblingCode string `json:"sibling_code"`
}

// defaultCrossDupRules covers order codes observed re-reporting a value
// already carried by a sibling order at the named facilities.
var defaultCrossDupRules = []CrossDupRule{
	{Facility: "台大醫院", OrderCode: "09026C", SiblingCode: "09025C"},
	{Facility: "台大醫院", OrderCode: "09016C", SiblingCode: "09015C"},
	{Facility: "榮總", OrderCode: "09026C", SiblingCode: "09025C"},
}

// numericPrefixCodes lists order codes whose values arrive with
// annotation suffixes ("126(正常)") that must be stripped to the leading
// numeral before dedup keys are computed.
var numericPrefixCodes = map[string]bool{
	"09005C": true,
	"09021C": true,
	"12111C": true,
}

var leadingNumberRe = regexp.MustCompile(`^\s*-?\d+(?:\.\d+)?`)

// NumericPrefix returns the leading numeral of v, or v unchanged when
// it does not start with one.
func NumericPrefix(v string) string {
	if m := leadingNumberRe.FindString(v); m != "" {
		return strings.TrimSpace(m)
	}
	return v
}

// MergedRecord is a dedup survivor plus any same-key readings folded
// into it during the multi-value phase.
type MergedRecord struct {
	Record     RawLabRecord
	Values     []string
	TimePoints []string
}

// Deduplicator collapses raw records that encode the same clinical fact
// under overlapping groupings: once keyed by the panel's order name,
// once by the individual assay's item name.
type Deduplicator struct {
	crossDupRules []CrossDupRule
	prefixCodes   map[string]bool
}

func NewDeduplicator(rules []CrossDupRule, prefixCodes map[string]bool) *Deduplicator {
	if rules == nil {
		rules = defaultCrossDupRules
	}
	if prefixCodes == nil {
		prefixCodes = numericPrefixCodes
	}
	return &Deduplicator{crossDupRules: rules, prefixCodes: prefixCodes}
}

// keyValue is the value component of every dedup key: numeric prefix
// pre-extraction for configured order codes, then trailing-zero
// normalization.
func (d *Deduplicator) keyValue(rec RawLabRecord) string {
	v := rec.Value
	if d.prefixCodes[rec.OrderCode] {
		v = NumericPrefix(v)
	}
	return NormalizeValue(v)
}

// Deduplicate runs both phases in order. Records without a date cannot
// be grouped and are discarded up front.
func (d *Deduplicator) Deduplicate(records []RawLabRecord) []MergedRecord {
	dated := make([]RawLabRecord, 0, len(records))
	for _, rec := range records {
		if strings.TrimSpace(rec.RecipeDate) == "" {
			continue
		}
		dated = append(dated, rec)
	}

	filtered := d.applyCrossDupRules(dated)

	// Phase A: identity pass. One admitted set spans both the
	// order-name and item-name keyings, so a record admitted under
	// either key blocks later arrivals under the other.
	admitted := make(map[string]bool, len(filtered)*2)
	survivors := make([]RawLabRecord, 0, len(filtered))
	for _, rec := range filtered {
		val := d.keyValue(rec)
		ka := dedupKey(rec.RecipeDate, rec.Facility, rec.OrderCode, rec.OrderName, val)
		kb := dedupKey(rec.RecipeDate, rec.Facility, rec.OrderCode, rec.ItemName, val)
		if admitted[ka] || admitted[kb] {
			continue
		}
		admitted[ka] = true
		admitted[kb] = true
		survivors = append(survivors, rec)
	}

	// Phase B: value-agnostic re-key. The first record per key becomes
	// canonical; later ones contribute their reading to its range.
	byItem := make(map[string]int, len(survivors))
	merged := make([]MergedRecord, 0, len(survivors))
	for _, rec := range survivors {
		key := dedupKey(rec.RecipeDate, rec.Facility, rec.OrderCode, rec.ItemName, "")
		if idx, ok := byItem[key]; ok {
			merged[idx].Values = append(merged[idx].Values, rec.Value)
			merged[idx].TimePoints = append(merged[idx].TimePoints, timeOfDay(rec.InspectDate))
			continue
		}
		byItem[key] = len(merged)
		merged = append(merged, MergedRecord{
			Record:     rec,
			Values:     []string{rec.Value},
			TimePoints: []string{timeOfDay(rec.InspectDate)},
		})
	}
	return merged
}

// applyCrossDupRules drops a record outright when a sibling order code
// already carries the same value on the same day at that facility.
func (d *Deduplicator) applyCrossDupRules(records []RawLabRecord) []RawLabRecord {
	out := make([]RawLabRecord, 0, len(records))
	for _, rec := range records {
		if d.isCrossDuplicate(rec, records) {
			continue
		}
		out = append(out, rec)
	}
	return out
}

func (d *Deduplicator) isCrossDuplicate(rec RawLabRecord, all []RawLabRecord) bool {
	for _, rule := range d.crossDupRules {
		if rule.Facility != rec.Facility || rule.OrderCode != rec.OrderCode {
			continue
		}
		val := d.keyValue(rec)
		for _, other := range all {
			if other.OrderCode == rule.SiblingCode &&
				other.Facility == rec.Facility &&
				other.RecipeDate == rec.RecipeDate &&
				d.keyValue(other) == val {
				return true
			}
		}
	}
	return false
}

func dedupKey(parts ...string) string {
	return strings.Join(parts, "|")
}

var timeOfDayRe = regexp.MustCompile(`\b(\d{1,2}:\d{2})\b`)

// timeOfDay pulls an HH:MM component out of a timestamp string, when
// the facility provides one.
func timeOfDay(inspectDate string) string {
	return timeOfDayRe.FindString(inspectDate)
}
