package labs

import (
	"testing"

	"github.com/rs/zerolog"
)

func TestPipelineRun(t *testing.T) {
	p := NewPipeline(zerolog.Nop())
	records := []RawLabRecord{
		{
			RecipeDate:   "2024/01/10",
			Facility:     "Hosp A",
			OrderCode:    "09043C",
			OrderName:    "Cholesterol",
			ItemName:     "Cholesterol",
			Value:        "211.0",
			Unit:         "mg/dL",
			ReferenceRaw: "[0~200]",
		},
		{
			RecipeDate:   "2024/01/10",
			Facility:     "Hosp A",
			OrderCode:    "09015C",
			OrderName:    "Creatinine",
			ItemName:     "Creatinine",
			Value:        "0.90",
			Unit:         "mg/dL",
			ReferenceRaw: "[0.7~1.3]",
		},
		{
			RecipeDate:   "2024/02/02",
			Facility:     "Hosp B",
			OrderCode:    "09015C",
			OrderName:    "Creatinine",
			ItemName:     "Creatinine",
			Value:        "1.5",
			Unit:         "mg/dL",
			ReferenceRaw: "[0.7~1.3]",
		},
	}

	groups := p.Run(records, nil)
	if len(groups) != 2 {
		t.Fatalf("got %d groups, want 2", len(groups))
	}
	// Date descending: February first.
	if groups[0].Date != "2024/02/02" || groups[0].Facility != "Hosp B" {
		t.Errorf("groups[0] = %s %s, want 2024/02/02 Hosp B", groups[0].Date, groups[0].Facility)
	}
	if got := groups[0].Items[0].ValueStatus; got != StatusHigh {
		t.Errorf("1.5 against [0.7~1.3] = %v, want high", got)
	}

	jan := groups[1]
	if len(jan.Items) != 2 {
		t.Fatalf("january group has %d items, want 2", len(jan.Items))
	}
	chol := jan.Items[0]
	if chol.Value != "211" {
		t.Errorf("cholesterol value = %q, want trailing zero dropped", chol.Value)
	}
	if chol.ValueStatus != StatusHigh {
		t.Errorf("cholesterol status = %v, want high", chol.ValueStatus)
	}
	if chol.AbbrName != "T-CHO" {
		t.Errorf("cholesterol abbr = %q, want T-CHO", chol.AbbrName)
	}
	cr := jan.Items[1]
	if cr.Value != "0.9" || cr.ValueStatus != StatusNormal {
		t.Errorf("creatinine = %q/%v, want 0.9 normal", cr.Value, cr.ValueStatus)
	}
	if cr.ReferenceMin == nil || *cr.ReferenceMin != 0.7 || cr.ReferenceMax == nil || *cr.ReferenceMax != 1.3 {
		t.Errorf("creatinine reference = %v/%v", cr.ReferenceMin, cr.ReferenceMax)
	}
	if cr.UsingCustomRange {
		t.Error("UsingCustomRange set without an override")
	}
}

func TestPipelineRunWithOverride(t *testing.T) {
	p := NewPipeline(zerolog.Nop())
	overrides := map[OverrideKey]Range{
		{OrderCode: "09015C", Facility: "Hosp A"}: {Min: floatPtr(0.5), Max: floatPtr(0.8)},
	}
	groups := p.Run([]RawLabRecord{
		{
			RecipeDate:   "2024/01/10",
			Facility:     "Hosp A",
			OrderCode:    "09015C",
			OrderName:    "Creatinine",
			ItemName:     "Creatinine",
			Value:        "0.9",
			ReferenceRaw: "[0.7~1.3]",
		},
	}, overrides)
	if len(groups) != 1 || len(groups[0].Items) != 1 {
		t.Fatalf("got %+v", groups)
	}
	item := groups[0].Items[0]
	if !item.UsingCustomRange {
		t.Error("UsingCustomRange not set")
	}
	if item.ValueStatus != StatusHigh {
		t.Errorf("status = %v, want high under the override", item.ValueStatus)
	}
	if item.ReferenceMax == nil || *item.ReferenceMax != 0.8 {
		t.Errorf("ReferenceMax = %v, want override bound", item.ReferenceMax)
	}
}

func TestPipelineRunMultipleReadings(t *testing.T) {
	p := NewPipeline(zerolog.Nop())
	groups := p.Run([]RawLabRecord{
		{
			RecipeDate:   "2024/01/10",
			Facility:     "Hosp A",
			OrderCode:    "09005C",
			OrderName:    "Glucose AC",
			ItemName:     "Glucose AC",
			Value:        "90",
			InspectDate:  "2024/01/10 08:00",
			ReferenceRaw: "[70~120]",
		},
		{
			RecipeDate:   "2024/01/10",
			Facility:     "Hosp A",
			OrderCode:    "09005C",
			OrderName:    "Glucose AC",
			ItemName:     "Glucose AC",
			Value:        "145",
			InspectDate:  "2024/01/10 14:00",
			ReferenceRaw: "[70~120]",
		},
	}, nil)
	if len(groups) != 1 || len(groups[0].Items) != 1 {
		t.Fatalf("got %+v", groups)
	}
	item := groups[0].Items[0]
	if !item.HasMultipleValues {
		t.Fatal("HasMultipleValues not set")
	}
	if item.Value != "90-145" || item.ValueStatus != StatusHigh {
		t.Errorf("merged = %q/%v, want 90-145 high", item.Value, item.ValueStatus)
	}
	if item.ValueRange == nil || len(item.ValueRange.TimePoints) != 2 {
		t.Errorf("value range = %+v", item.ValueRange)
	}
}

func TestPipelineRunNoJudgmentRange(t *testing.T) {
	p := NewPipeline(zerolog.Nop())
	groups := p.Run([]RawLabRecord{
		{
			RecipeDate:   "2024/01/10",
			Facility:     "Hosp A",
			OrderCode:    "09006C",
			OrderName:    "HbA1c",
			ItemName:     "HbA1c",
			Value:        "12.5",
			ReferenceRaw: "[無][無]",
		},
	}, nil)
	item := groups[0].Items[0]
	if item.ValueStatus != StatusNormal {
		t.Errorf("status = %v, want normal when no judgment applies", item.ValueStatus)
	}
	if item.ReferenceMin != nil || item.ReferenceMax != nil {
		t.Errorf("reference bounds = %v/%v, want nil", item.ReferenceMin, item.ReferenceMax)
	}
}
