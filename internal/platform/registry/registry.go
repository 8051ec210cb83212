// Package registry contains the typed HTTP clients for the external
// interaction reference sources: the drug-label registry serving
// drug-drug data and the supplement registry serving herb-drug data.
// Every outbound call is timeout-bounded; a 4xx is treated as "no entry
// for this name" while 5xx and transport failures surface as
// SourceUnavailableError so callers can degrade coverage instead of
// failing the whole safety check.
package registry

import (
	"context"
	"time"
)

// DrugLabel is the normalized registry entry for a single drug. The
// interaction facts arrive as free-text sections; the checkers scan them
// for mentions of the counterpart drug.
type DrugLabel struct {
	DrugInteractions  []string `json:"drug_interactions"`
	Warnings          []string `json:"warnings"`
	Precautions       []string `json:"precautions"`
	Contraindications []string `json:"contraindications"`
}

// SupplementInteraction is one herb-drug interaction fact.
type SupplementInteraction struct {
	Severity        string   `json:"severity"`
	Description     string   `json:"description"`
	Recommendations []string `json:"recommendations,omitempty"`
}

// SupplementReport is the supplement registry's answer for one
// herb/drug pair.
type SupplementReport struct {
	Interactions  []SupplementInteraction `json:"interactions"`
	EvidenceLevel string                  `json:"evidence_level"`
}

// DrugLabelClient looks up a drug's label in the primary registry.
// A nil label with nil error means the registry has no entry.
type DrugLabelClient interface {
	Lookup(ctx context.Context, drugName string) (*DrugLabel, error)
}

// SupplementClient looks up herb-drug interaction facts.
// A nil report with nil error means the registry has no entry.
type SupplementClient interface {
	Lookup(ctx context.Context, herbName, drugName string) (*SupplementReport, error)
}

// Options configures the HTTP clients.
type Options struct {
	BaseURL string
	Timeout time.Duration
}
