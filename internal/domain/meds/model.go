// Package meds carries the minimal medication model rendered by the
// medication copy template. Medication records arrive pre-grouped from
// the extraction collaborator; no normalization pipeline applies.
package meds

// MedicationItem is one prescribed drug line.
type MedicationItem struct {
	DrugName  string `json:"drug_name"`
	Dose      string `json:"dose"`
	Unit      string `json:"unit"`
	Frequency string `json:"frequency"`
	Days      string `json:"days"`
}

// MedGroup buckets medication lines by prescription date and facility.
type MedGroup struct {
	Date     string           `json:"date"`
	Facility string           `json:"facility"`
	Items    []MedicationItem `json:"items"`
}
