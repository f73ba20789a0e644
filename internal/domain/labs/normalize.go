package labs

import (
	"regexp"
	"strconv"
	"strings"
)

var plainDecimalRe = regexp.MustCompile(`^[-+]?\d+(?:\.\d+)?$`)

// NormalizeValue strips insignificant trailing zeros from plain decimal
// strings ("120.00" -> "120"). Qualitative results pass through
// verbatim ("211(high)", "Negative").
func NormalizeValue(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if !plainDecimalRe.MatchString(trimmed) {
		return raw
	}
	f, err := strconv.ParseFloat(trimmed, 64)
	if err != nil {
		return raw
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// Classify compares a single value against a resolved range. A nil
// range means no judgment applies and the value is normal. Values
// exactly equal to a bound are normal; only strict exceedance flips
// the status.
func Classify(value string, rng *Range) ValueStatus {
	if rng == nil {
		return StatusNormal
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return StatusNormal
	}
	if rng.Max != nil && f > *rng.Max {
		return StatusHigh
	}
	if rng.Min != nil && f < *rng.Min {
		return StatusLow
	}
	return StatusNormal
}

// MergeReadings collapses repeated same-day readings of one test into a
// single display value. Numeric readings fold into a min-max span whose
// status reflects whether any reading crossed a bound; non-numeric
// readings are joined verbatim and stay normal.
func MergeReadings(values []string, timePoints []string, rng *Range) (string, ValueStatus, *ValueRange) {
	numeric := make([]float64, 0, len(values))
	for _, v := range values {
		f, err := strconv.ParseFloat(strings.TrimSpace(NormalizeValue(v)), 64)
		if err != nil {
			// One qualitative reading makes the whole merge qualitative.
			return strings.Join(values, ", "), StatusNormal, &ValueRange{
				Values:     values,
				TimePoints: timePoints,
			}
		}
		numeric = append(numeric, f)
	}
	if len(numeric) == 0 {
		return "", StatusNormal, nil
	}

	lo, hi := numeric[0], numeric[0]
	for _, f := range numeric[1:] {
		if f < lo {
			lo = f
		}
		if f > hi {
			hi = f
		}
	}

	status := StatusNormal
	if rng != nil {
		if rng.Max != nil && hi > *rng.Max {
			status = StatusHigh
		}
		if rng.Min != nil && lo < *rng.Min {
			status = StatusLow
		}
	}

	loStr := strconv.FormatFloat(lo, 'f', -1, 64)
	hiStr := strconv.FormatFloat(hi, 'f', -1, 64)
	display := loStr
	if lo != hi {
		display = loStr + "-" + hiStr
	}
	return display, status, &ValueRange{
		Min:        loStr,
		Max:        hiStr,
		Values:     values,
		TimePoints: timePoints,
	}
}
