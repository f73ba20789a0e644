package labs

import (
	"github.com/rs/zerolog"
)

// Pipeline runs the full normalization chain: range resolution, value
// classification, deduplication, abbreviation and grouping. It holds no
// mutable state between calls, so concurrent Runs with different inputs
// never interfere.
type Pipeline struct {
	dedup  *Deduplicator
	logger zerolog.Logger
}

func NewPipeline(logger zerolog.Logger) *Pipeline {
	return &Pipeline{
		dedup:  NewDeduplicator(nil, nil),
		logger: logger,
	}
}

// NewPipelineWithRules builds a pipeline with explicit dedup rules,
// used by tests and by facilities with extra cross-duplicate tables.
func NewPipelineWithRules(logger zerolog.Logger, rules []CrossDupRule, prefixCodes map[string]bool) *Pipeline {
	return &Pipeline{
		dedup:  NewDeduplicator(rules, prefixCodes),
		logger: logger,
	}
}

// Run transforms raw extracted records into display-ready groups. The
// overrides map carries user-authored custom ranges keyed by
// (order code, facility); pass nil when none exist.
func (p *Pipeline) Run(records []RawLabRecord, overrides map[OverrideKey]Range) []LabGroup {
	resolver := NewRangeResolver(overrides)
	merged := p.dedup.Deduplicate(records)

	entries := make([]GroupEntry, 0, len(merged))
	for _, m := range merged {
		entries = append(entries, GroupEntry{
			Date:          m.Record.RecipeDate,
			Facility:      m.Record.Facility,
			DiagnosisCode: m.Record.DiagnosisCode,
			DiagnosisName: m.Record.DiagnosisName,
			Item:          p.normalizeItem(resolver, m),
		})
	}
	groups := Group(entries)

	p.logger.Debug().
		Int("raw_records", len(records)).
		Int("deduped_items", len(merged)).
		Int("groups", len(groups)).
		Msg("lab pipeline run")
	return groups
}

func (p *Pipeline) normalizeItem(resolver *RangeResolver, m MergedRecord) NormalizedLabItem {
	rec := m.Record
	rng := resolver.Resolve(rec.ReferenceRaw, rec.OrderCode, rec.Facility)

	item := NormalizedLabItem{
		ItemName:         rec.ItemName,
		Unit:             rec.Unit,
		OrderCode:        rec.OrderCode,
		Type:             rec.OrderName,
		AbbrName:         ResolveAbbreviation(rec.OrderCode, rec.ItemName),
		UsingCustomRange: resolver.HasOverride(rec.OrderCode, rec.Facility),
	}
	if rng != nil {
		item.ReferenceMin = rng.Min
		item.ReferenceMax = rng.Max
	}

	if len(m.Values) > 1 {
		value, status, vr := MergeReadings(m.Values, m.TimePoints, rng)
		item.Value = value
		item.ValueStatus = status
		item.HasMultipleValues = true
		item.ValueRange = vr
		return item
	}

	value := rec.Value
	if p.dedup.prefixCodes[rec.OrderCode] {
		value = NumericPrefix(value)
	}
	item.Value = NormalizeValue(value)
	item.ValueStatus = Classify(item.Value, rng)
	return item
}
