package labs

// RawLabRecord is one extracted lab reading as delivered by the
// upstream record-extraction collaborator. Field names and the
// reference-range string grammar are a bit-exact contract with that
// collaborator and must not be renamed.
type RawLabRecord struct {
	OrderCode     string `json:"order_code"`
	OrderName     string `json:"order_name"`
	ItemName      string `json:"item_name"`
	Value         string `json:"value"`
	Unit          string `json:"unit"`
	ReferenceRaw  string `json:"reference_raw"`
	Facility      string `json:"facility"`
	RecipeDate    string `json:"recipe_date"`
	InspectDate   string `json:"inspect_date"`
	DiagnosisCode string `json:"diagnosis_code"`
	DiagnosisName string `json:"diagnosis_name"`
}

// ValueStatus classifies a reading against its resolved reference range.
type ValueStatus string

const (
	StatusNormal ValueStatus = "normal"
	StatusHigh   ValueStatus = "high"
	StatusLow    ValueStatus = "low"
)

// ValueRange collects the individual readings merged into a single
// NormalizedLabItem when the same test repeats on one day.
type ValueRange struct {
	Min        string   `json:"min"`
	Max        string   `json:"max"`
	Values     []string `json:"values"`
	TimePoints []string `json:"time_points,omitempty"`
}

// NormalizedLabItem is one display-ready lab result after range
// resolution, deduplication and abbreviation.
type NormalizedLabItem struct {
	ItemName          string      `json:"item_name"`
	Value             string      `json:"value"`
	Unit              string      `json:"unit"`
	ReferenceMin      *float64    `json:"reference_min,omitempty"`
	ReferenceMax      *float64    `json:"reference_max,omitempty"`
	ValueStatus       ValueStatus `json:"value_status"`
	AbbrName          string      `json:"abbr_name,omitempty"`
	OrderCode         string      `json:"order_code"`
	Type              string      `json:"type"`
	HasMultipleValues bool        `json:"has_multiple_values"`
	ValueRange        *ValueRange `json:"value_range,omitempty"`
	UsingCustomRange  bool        `json:"using_custom_range"`
}

// DisplayName returns the short label when one resolved, otherwise the
// item name, otherwise the order name carried in Type.
func (it *NormalizedLabItem) DisplayName() string {
	if it.AbbrName != "" {
		return it.AbbrName
	}
	if it.ItemName != "" {
		return it.ItemName
	}
	return it.Type
}

// LabGroup buckets normalized items reported on one date by one
// facility. Item order preserves first-seen order from the raw feed.
type LabGroup struct {
	Date          string              `json:"date"`
	Facility      string              `json:"facility"`
	DiagnosisCode string              `json:"diagnosis_code,omitempty"`
	DiagnosisName string              `json:"diagnosis_name,omitempty"`
	Items         []NormalizedLabItem `json:"items"`
}

func floatPtr(f float64) *float64 { return &f }
