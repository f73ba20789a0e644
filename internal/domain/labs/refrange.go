package labs

import (
	"regexp"
	"strconv"
	"strings"
)

// Range is a resolved reference interval. A nil field means that bound
// does not apply. A nil *Range means no abnormality judgment at all.
type Range struct {
	Min *float64 `json:"min"`
	Max *float64 `json:"max"`
}

// OverrideKey identifies a facility-specific custom range for one test.
type OverrideKey struct {
	OrderCode string `json:"order_code"`
	Facility  string `json:"facility"`
}

// RangeResolver parses the bracketed reference-range strings emitted by
// hospital systems into Range values. A custom override, when present
// for (order code, facility), wins over any string parsing.
type RangeResolver struct {
	overrides map[OverrideKey]Range
}

func NewRangeResolver(overrides map[OverrideKey]Range) *RangeResolver {
	if overrides == nil {
		overrides = map[OverrideKey]Range{}
	}
	return &RangeResolver{overrides: overrides}
}

// HasOverride reports whether a custom range exists for the key.
func (r *RangeResolver) HasOverride(orderCode, facility string) bool {
	_, ok := r.overrides[OverrideKey{OrderCode: orderCode, Facility: facility}]
	return ok
}

var (
	bracketRe = regexp.MustCompile(`\[([^\]]*)\]`)
	numberRe  = regexp.MustCompile(`-?\d+(?:\.\d+)?`)
	zeroRe    = regexp.MustCompile(`^0+(?:\.0+)?$`)
)

// Resolve parses referenceRaw in strict pattern precedence. The order
// of attempts is a compatibility contract with the upstream encodings;
// do not reorder.
//
//	1. custom override for (orderCode, facility)
//	2. no-judgment sentinels: [0][0] variants, [無][無], [0][9999]
//	3. [<value unit] or [<value unit][]
//	4. [無|NA|-|empty][<value]
//	5. [min~max] optionally followed by []
//	6. [lower][upper]
//	7. [value]
//	8. no judgment
func (r *RangeResolver) Resolve(referenceRaw, orderCode, facility string) *Range {
	if ov, ok := r.overrides[OverrideKey{OrderCode: orderCode, Facility: facility}]; ok {
		cp := ov
		return &cp
	}

	bs := brackets(referenceRaw)
	if len(bs) == 0 {
		return nil
	}

	// Sentinel pairs that mean "no judgment applicable".
	if len(bs) >= 2 {
		a, b := bs[0], bs[1]
		switch {
		case zeroRe.MatchString(a) && zeroRe.MatchString(b):
			return nil
		case a == "無" && b == "無":
			return nil
		case zeroRe.MatchString(a) && numEquals(b, 9999):
			return nil
		}
	}

	// [<value unit] with an optional trailing empty bracket.
	if strings.HasPrefix(bs[0], "<") && (len(bs) == 1 || bs[1] == "") {
		if v, ok := extractNumber(bs[0]); ok {
			return &Range{Max: floatPtr(v)}
		}
	}

	// Placeholder lower bound, upper bound in the second bracket.
	if len(bs) >= 2 && isPlaceholder(bs[0]) {
		if v, ok := extractNumber(bs[1]); ok {
			return &Range{Max: floatPtr(v)}
		}
	}

	// Single-bracket min~max range.
	if (len(bs) == 1 || bs[1] == "") && strings.Contains(bs[0], "~") {
		parts := strings.SplitN(bs[0], "~", 2)
		lo, okLo := extractNumber(parts[0])
		hi, okHi := extractNumber(parts[1])
		if okLo && okHi {
			return &Range{Min: floatPtr(lo), Max: floatPtr(hi)}
		}
	}

	// Double-bracket lower/upper.
	if len(bs) >= 2 {
		if strings.Contains(bs[1], "<") {
			if v, ok := extractNumber(bs[1]); ok {
				return &Range{Max: floatPtr(v)}
			}
		}
		var rng Range
		if !isPlaceholder(bs[0]) {
			if v, ok := extractNumber(bs[0]); ok {
				rng.Min = floatPtr(v)
			}
		}
		if !isPlaceholder(bs[1]) {
			if v, ok := extractNumber(bs[1]); ok {
				rng.Max = floatPtr(v)
			}
		}
		if rng.Min != nil || rng.Max != nil {
			return &rng
		}
	}

	// Single bracketed value acts as a lower bound.
	if len(bs) == 1 {
		if v, ok := extractNumber(bs[0]); ok {
			return &Range{Min: floatPtr(v)}
		}
	}

	return nil
}

// brackets extracts the content of each [...] segment, trimmed and with
// full-width comparison characters folded to ASCII.
func brackets(raw string) []string {
	matches := bracketRe.FindAllStringSubmatch(raw, -1)
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		out = append(out, foldWidth(strings.TrimSpace(m[1])))
	}
	return out
}

var widthFolder = strings.NewReplacer("＜", "<", "＞", ">", "～", "~", "－", "-")

func foldWidth(s string) string { return widthFolder.Replace(s) }

func isPlaceholder(s string) bool {
	switch strings.TrimSpace(s) {
	case "", "無", "-":
		return true
	}
	return strings.EqualFold(strings.TrimSpace(s), "NA")
}

// extractNumber pulls the first numeral out of s. Going through float
// parsing drops insignificant trailing zeros.
func extractNumber(s string) (float64, bool) {
	m := numberRe.FindString(s)
	if m == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(m, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func numEquals(s string, want float64) bool {
	v, ok := extractNumber(s)
	return ok && v == want
}

// FormatBound renders a bound the way the reference display expects,
// without insignificant trailing zeros.
func FormatBound(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
