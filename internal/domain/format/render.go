package format

import (
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/labcopy/labcopy/internal/domain/labs"
	"github.com/labcopy/labcopy/internal/domain/meds"
)

// Renderer turns groups plus a template into clipboard text. Render is
// a total function: structural problems and faults during token
// resolution degrade to a fixed built-in formatter, never to an error.
// The consumer is an interactive copy action that must always receive
// something to copy.
type Renderer struct {
	logger zerolog.Logger
}

func NewRenderer(logger zerolog.Logger) *Renderer {
	return &Renderer{logger: logger}
}

// RenderLabs renders lab groups with the given template.
func (r *Renderer) RenderLabs(groups []labs.LabGroup, tpl Template) (out string) {
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Warn().Interface("fault", rec).Msg("render fault, using fallback formatter")
			out = fallbackLabs(groups, tpl.Mode)
		}
	}()

	if len(tpl.HeaderTokens) == 0 || len(tpl.ItemTokens) == 0 {
		r.logger.Debug().
			Str("header", describeTokens(tpl.HeaderTokens)).
			Str("items", describeTokens(tpl.ItemTokens)).
			Msg("template missing token lists, using fallback formatter")
		return fallbackLabs(groups, tpl.Mode)
	}

	blocks := make([]string, 0, len(groups))
	for _, g := range groups {
		block, err := r.renderLabGroup(g, tpl)
		if err != nil {
			r.logger.Warn().Err(err).Msg("token resolution failed, using fallback formatter")
			return fallbackLabs(groups, tpl.Mode)
		}
		blocks = append(blocks, block)
	}
	if tpl.Mode == ModeHorizontal {
		return strings.Join(blocks, "\n")
	}
	return strings.Join(blocks, "\n\n")
}

func (r *Renderer) renderLabGroup(g labs.LabGroup, tpl Template) (string, error) {
	header, err := resolveTokens(tpl.HeaderTokens, tpl.Mode, func(f FieldName) (string, error) {
		return labHeaderField(g, f)
	})
	if err != nil {
		return "", err
	}

	items := make([]string, 0, len(g.Items))
	for i := range g.Items {
		it := &g.Items[i]
		line, err := resolveTokens(tpl.ItemTokens, tpl.Mode, func(f FieldName) (string, error) {
			return labItemField(it, f)
		})
		if err != nil {
			return "", err
		}
		items = append(items, line)
	}

	if tpl.Mode == ModeHorizontal {
		return header + " " + strings.Join(items, tpl.ItemSeparator), nil
	}
	return header + "\n" + strings.Join(items, "\n"), nil
}

// RenderMedications renders medication groups with the given template.
func (r *Renderer) RenderMedications(groups []meds.MedGroup, tpl Template) (out string) {
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Warn().Interface("fault", rec).Msg("render fault, using fallback formatter")
			out = fallbackMeds(groups, tpl.Mode)
		}
	}()

	if len(tpl.HeaderTokens) == 0 || len(tpl.ItemTokens) == 0 {
		return fallbackMeds(groups, tpl.Mode)
	}

	blocks := make([]string, 0, len(groups))
	for _, g := range groups {
		header, err := resolveTokens(tpl.HeaderTokens, tpl.Mode, func(f FieldName) (string, error) {
			return medHeaderField(g, f)
		})
		if err != nil {
			r.logger.Warn().Err(err).Msg("token resolution failed, using fallback formatter")
			return fallbackMeds(groups, tpl.Mode)
		}
		items := make([]string, 0, len(g.Items))
		for i := range g.Items {
			it := &g.Items[i]
			line, err := resolveTokens(tpl.ItemTokens, tpl.Mode, func(f FieldName) (string, error) {
				return medItemField(it, f)
			})
			if err != nil {
				r.logger.Warn().Err(err).Msg("token resolution failed, using fallback formatter")
				return fallbackMeds(groups, tpl.Mode)
			}
			items = append(items, line)
		}
		if tpl.Mode == ModeHorizontal {
			blocks = append(blocks, header+" "+strings.Join(items, tpl.ItemSeparator))
		} else {
			blocks = append(blocks, header+"\n"+strings.Join(items, "\n"))
		}
	}
	if tpl.Mode == ModeHorizontal {
		return strings.Join(blocks, "\n")
	}
	return strings.Join(blocks, "\n\n")
}

// resolveTokens walks one token list. Newline tokens emit a line break
// in vertical mode and are ignored in horizontal mode.
func resolveTokens(tokens []Token, mode LayoutMode, field func(FieldName) (string, error)) (string, error) {
	var b strings.Builder
	for _, tok := range tokens {
		switch tok.Kind {
		case KindLiteral, KindSeparator:
			b.WriteString(tok.LiteralValue)
		case KindNewline:
			if mode != ModeHorizontal {
				b.WriteByte('\n')
			}
		case KindField:
			s, err := field(tok.FieldName)
			if err != nil {
				return "", err
			}
			b.WriteString(s)
		default:
			return "", fmt.Errorf("unknown token kind %q", tok.Kind)
		}
	}
	return b.String(), nil
}

func labHeaderField(g labs.LabGroup, f FieldName) (string, error) {
	switch f {
	case FieldDate:
		return formatDate(g.Date), nil
	case FieldFacility:
		return g.Facility, nil
	case FieldDiagnosisCode:
		return g.DiagnosisCode, nil
	case FieldDiagnosisName:
		return g.DiagnosisName, nil
	}
	return "", fmt.Errorf("field %q is not a header field", f)
}

func labItemField(it *labs.NormalizedLabItem, f FieldName) (string, error) {
	switch f {
	case FieldItemName:
		return it.DisplayName(), nil
	case FieldOrderCode:
		return it.OrderCode, nil
	case FieldValue:
		return it.Value, nil
	case FieldUnit:
		return it.Unit, nil
	case FieldReference:
		return referenceDisplay(it), nil
	}
	return "", fmt.Errorf("field %q is not a lab item field", f)
}

func medHeaderField(g meds.MedGroup, f FieldName) (string, error) {
	switch f {
	case FieldDate:
		return formatDate(g.Date), nil
	case FieldFacility:
		return g.Facility, nil
	case FieldDiagnosisCode, FieldDiagnosisName:
		return "", nil
	}
	return "", fmt.Errorf("field %q is not a header field", f)
}

func medItemField(it *meds.MedicationItem, f FieldName) (string, error) {
	switch f {
	case FieldDrugName:
		return it.DrugName, nil
	case FieldDose:
		return it.Dose, nil
	case FieldUnit:
		return it.Unit, nil
	case FieldFrequency:
		return it.Frequency, nil
	case FieldDays:
		return it.Days, nil
	}
	return "", fmt.Errorf("field %q is not a medication item field", f)
}

// referenceDisplay renders the resolved bounds: "min-max", ">min",
// "<max", or empty when no judgment applies.
func referenceDisplay(it *labs.NormalizedLabItem) string {
	switch {
	case it.ReferenceMin != nil && it.ReferenceMax != nil:
		return labs.FormatBound(*it.ReferenceMin) + "-" + labs.FormatBound(*it.ReferenceMax)
	case it.ReferenceMin != nil:
		return ">" + labs.FormatBound(*it.ReferenceMin)
	case it.ReferenceMax != nil:
		return "<" + labs.FormatBound(*it.ReferenceMax)
	}
	return ""
}

var renderDateLayouts = []string{"2006/01/02", "2006-01-02", "20060102"}

// formatDate normalizes parseable dates to YYYY/MM/DD and leaves
// anything else untouched.
func formatDate(s string) string {
	for _, layout := range renderDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("2006/01/02")
		}
	}
	return s
}

// fallbackLabs is the fixed built-in formatter used when the template
// is unusable. It must never fail.
func fallbackLabs(groups []labs.LabGroup, mode LayoutMode) string {
	blocks := make([]string, 0, len(groups))
	for _, g := range groups {
		header := formatDate(g.Date) + " - " + g.Facility
		items := make([]string, 0, len(g.Items))
		for i := range g.Items {
			it := &g.Items[i]
			items = append(items, strings.TrimSpace(it.DisplayName()+": "+it.Value+" "+it.Unit))
		}
		if mode == ModeHorizontal {
			blocks = append(blocks, header+" "+strings.Join(items, ", "))
		} else {
			blocks = append(blocks, header+"\n"+strings.Join(items, "\n"))
		}
	}
	if mode == ModeHorizontal {
		return strings.Join(blocks, "\n")
	}
	return strings.Join(blocks, "\n\n")
}

func fallbackMeds(groups []meds.MedGroup, mode LayoutMode) string {
	blocks := make([]string, 0, len(groups))
	for _, g := range groups {
		header := formatDate(g.Date) + " - " + g.Facility
		items := make([]string, 0, len(g.Items))
		for i := range g.Items {
			it := &g.Items[i]
			items = append(items, strings.TrimSpace(it.DrugName+" "+it.Dose+it.Unit+" "+it.Frequency))
		}
		if mode == ModeHorizontal {
			blocks = append(blocks, header+" "+strings.Join(items, ", "))
		} else {
			blocks = append(blocks, header+"\n"+strings.Join(items, "\n"))
		}
	}
	if mode == ModeHorizontal {
		return strings.Join(blocks, "\n")
	}
	return strings.Join(blocks, "\n\n")
}
