package interaction

import "strings"

// Severity is the four-level ordinal classification of how dangerous an
// interaction is. The order is total: LOW < MODERATE < HIGH < SEVERE.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityModerate Severity = "moderate"
	SeverityHigh     Severity = "high"
	SeveritySevere   Severity = "severe"
)

var severityRank = map[Severity]int{
	SeverityLow:      0,
	SeverityModerate: 1,
	SeverityHigh:     2,
	SeveritySevere:   3,
}

// Rank returns the position of s in the severity order. Unknown values
// rank below LOW so they never outrank a real classification.
func (s Severity) Rank() int {
	if r, ok := severityRank[s]; ok {
		return r
	}
	return -1
}

// Compare returns -1, 0, or 1 as s orders before, equal to, or after other.
func (s Severity) Compare(other Severity) int {
	a, b := s.Rank(), other.Rank()
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// SeverityWeights maps each severity to its contribution to the safety
// score penalty. Defaults follow the product's tuning; they are
// configuration, not validated clinical thresholds.
type SeverityWeights map[Severity]float64

// DefaultSeverityWeights returns the standard weight table.
func DefaultSeverityWeights() SeverityWeights {
	return SeverityWeights{
		SeveritySevere:   1.0,
		SeverityHigh:     0.8,
		SeverityModerate: 0.5,
		SeverityLow:      0.2,
	}
}

// severityFromLabel maps a source's free-text severity label onto the
// ordinal scale. The table is fixed for compatibility with existing
// source data: severe/major → SEVERE, high/moderate → HIGH,
// low/minor → LOW, anything else → MODERATE.
func severityFromLabel(label string) Severity {
	switch strings.ToLower(strings.TrimSpace(label)) {
	case "severe", "major":
		return SeveritySevere
	case "high", "moderate":
		return SeverityHigh
	case "low", "minor":
		return SeverityLow
	default:
		return SeverityModerate
	}
}

// Type classifies where an interaction fact came from.
type Type string

const (
	TypeDrugDrug Type = "drug_drug"
	TypeHerbDrug Type = "herb_drug"
	TypeWarning  Type = "warning"
)

// Source identifies the reference registry behind a warning together
// with its assessed reliability in [0,1].
type Source struct {
	Name        string  `json:"name"`
	Reliability float64 `json:"reliability"`
}

// SourceWarning is one raw warning from one source, before merging.
type SourceWarning struct {
	Severity      Severity `json:"severity"`
	Description   string   `json:"description"`
	Source        Source   `json:"source"`
	EvidenceLevel string   `json:"evidence_level"`
}

// Result is one detected interaction between two medications. Results
// are created fresh per aggregation call and never persisted here;
// medications are referenced by name because the reference sources key
// by drug identity, not by patient-specific records.
type Result struct {
	Severity                   Severity        `json:"severity"`
	Type                       Type            `json:"type"`
	Description                string          `json:"description"`
	Medications                [2]string       `json:"involved_medications"`
	SourceWarnings             []SourceWarning `json:"source_warnings,omitempty"`
	Recommendations            []string        `json:"recommendations,omitempty"`
	RequiresImmediateAttention bool            `json:"requires_immediate_attention"`
}

// TimingConflict reports two scheduled doses closer together than the
// minimum safe spacing. MinutesApart is strictly below the configured
// interval for every emitted conflict. Conflicts always carry medium
// severity; dose spacing is a scheduling concern, not a
// pharmacological one.
type TimingConflict struct {
	Medication1     string `json:"medication1"`
	Medication2     string `json:"medication2"`
	Severity        string `json:"severity"`
	ConflictingTime string `json:"conflicting_time"`
	MinutesApart    int    `json:"minutes_apart"`
	Recommendation  string `json:"recommendation"`
}

// TimingConflictSeverity is the fixed severity label on every emitted
// timing conflict.
const TimingConflictSeverity = "medium"
