package labs

import "strings"

// staticAbbrs maps an order code straight to its display label. These
// codes identify a single assay, so no free-text disambiguation is
// needed.
var staticAbbrs = map[string]string{
	"09002C": "BUN",
	"09004C": "Hb",
	"09005C": "Glu-AC",
	"09015C": "Cr",
	"09021C": "UA",
	"09025C": "AST",
	"09026C": "ALT",
	"09031C": "Alb",
	"09038C": "ALP",
	"09043C": "T-CHO",
	"09044C": "TG",
	"09046C": "HDL-C",
	"09047C": "LDL-C",
	"09006C": "HbA1c",
	"09040C": "Na",
	"09041C": "K",
	"12015C": "CRP",
}

// compositeRule picks one label for a composite order code by matching
// the assay's free-text item name. Keywords match case-insensitively as
// substrings; tokens must match a whole word.
type compositeRule struct {
	label    string
	keywords []string
	tokens   []string
}

// compositeAbbrs covers panels that bundle several assays under one
// order code. Rule order matters: the more specific assay comes first
// so that e.g. "Creatinine (eGFR)" resolves to GFR, not Cr.
var compositeAbbrs = map[string][]compositeRule{
	// Creatinine + estimated GFR panel.
	"09016C": {
		{label: "GFR", keywords: []string{"gfr", "腎絲球", "濾過率"}},
		{label: "Cr", keywords: []string{"creatinine", "crea", "肌酸酐"}},
	},
	// Urine total protein / creatinine ratio panel.
	"12111C": {
		{label: "UPCR", keywords: []string{"ratio", "upcr", "比值"}, tokens: []string{"p/c"}},
		{label: "U-TP", keywords: []string{"protein", "蛋白"}},
		{label: "U-Cr", keywords: []string{"creatinine", "肌酸酐"}},
	},
	// Urine albumin / creatinine ratio panel.
	"12112C": {
		{label: "UACR", keywords: []string{"ratio", "uacr", "比值"}, tokens: []string{"a/c"}},
		{label: "U-Alb", keywords: []string{"albumin", "白蛋白"}},
		{label: "U-Cr", keywords: []string{"creatinine", "肌酸酐"}},
	},
	// Complete blood count bundle.
	"08011C": {
		{label: "WBC", keywords: []string{"wbc", "white blood", "白血球"}},
		{label: "Hb", keywords: []string{"hemoglobin", "hgb", "血色素"}, tokens: []string{"hb"}},
		{label: "Hct", keywords: []string{"hematocrit", "血球容積"}, tokens: []string{"hct"}},
		{label: "Plt", keywords: []string{"platelet", "血小板"}, tokens: []string{"plt"}},
		{label: "RBC", keywords: []string{"red blood", "紅血球"}, tokens: []string{"rbc"}},
	},
}

// ResolveAbbreviation maps an order code (plus the contextual item name
// for composite panels) to a short display label. Empty means no
// abbreviation is known and the caller falls back to the raw name.
func ResolveAbbreviation(orderCode, itemName string) string {
	if abbr, ok := staticAbbrs[orderCode]; ok {
		return abbr
	}
	rules, ok := compositeAbbrs[orderCode]
	if !ok {
		return ""
	}
	lower := strings.ToLower(itemName)
	for _, rule := range rules {
		for _, kw := range rule.keywords {
			if strings.Contains(lower, kw) {
				return rule.label
			}
		}
		for _, tok := range rule.tokens {
			if containsToken(lower, tok) {
				return rule.label
			}
		}
	}
	return ""
}

// containsToken reports whether name contains tok as a whole word,
// where words are runs of letters, digits and '/'.
func containsToken(name, tok string) bool {
	fields := strings.FieldsFunc(name, func(r rune) bool {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '/':
			return false
		}
		return true
	})
	for _, f := range fields {
		if f == tok {
			return true
		}
	}
	return false
}
