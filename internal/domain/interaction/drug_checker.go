package interaction

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/meditrack/meditrack/internal/platform/apperr"
	"github.com/meditrack/meditrack/internal/platform/cache"
	"github.com/meditrack/meditrack/internal/platform/registry"
)

const drugSourceName = "fda_drug_label"

// DrugChecker detects drug-drug interactions by scanning each drug's
// published label for mentions of the other drug. Successful pair
// results are cached; a registry outage is absorbed into an empty
// result for that pair and is never cached.
type DrugChecker struct {
	client registry.DrugLabelClient
	cache  cache.Cache
	ttl    time.Duration
	logger zerolog.Logger
}

// NewDrugChecker wires a checker over the given label registry client.
func NewDrugChecker(client registry.DrugLabelClient, c cache.Cache, ttl time.Duration, logger zerolog.Logger) *DrugChecker {
	return &DrugChecker{client: client, cache: c, ttl: ttl, logger: logger}
}

// drugPairKey builds the cache key for an unordered drug pair. Names
// are normalized and sorted so (A,B) and (B,A) share one entry.
func drugPairKey(a, b string) string {
	if a > b {
		a, b = b, a
	}
	return fmt.Sprintf("drug_interaction_%s_%s", a, b)
}

// CheckInteraction returns all interactions found between two drugs.
// Both names are required. The two label lookups run concurrently.
func (c *DrugChecker) CheckInteraction(ctx context.Context, name1, name2 string) ([]Result, error) {
	a := strings.ToLower(strings.TrimSpace(name1))
	b := strings.ToLower(strings.TrimSpace(name2))
	if a == "" || b == "" {
		return nil, apperr.Validation("medication_name", "medication name must not be empty")
	}
	if a == b {
		return []Result{}, nil
	}

	key := drugPairKey(a, b)
	if v, ok := c.cache.Get(key); ok {
		if cached, ok := v.([]Result); ok {
			return cached, nil
		}
	}

	type lookup struct {
		label *registry.DrugLabel
		err   error
	}
	var wg sync.WaitGroup
	lookups := make([]lookup, 2)
	for i, name := range []string{a, b} {
		wg.Add(1)
		go func(i int, name string) {
			defer wg.Done()
			lookups[i].label, lookups[i].err = c.client.Lookup(ctx, name)
		}(i, name)
	}
	wg.Wait()

	outage := false
	for i, name := range []string{a, b} {
		if err := lookups[i].err; err != nil {
			if apperr.IsSourceUnavailable(err) {
				c.logger.Warn().Err(err).Str("drug", name).Msg("drug label source unavailable, treating as no data")
				outage = true
				lookups[i].label = nil
				continue
			}
			return nil, err
		}
	}

	results := []Result{}
	results = append(results, scanLabel(lookups[0].label, a, b)...)
	results = append(results, scanLabel(lookups[1].label, b, a)...)
	results = dedupe(results)

	if !outage {
		c.cache.Set(key, results, c.ttl)
	}
	return results, nil
}

// scanLabel searches owner's label sections for mentions of other and
// emits one result per matching section. Label interaction sections
// yield drug_drug results; warning-class sections yield warning
// results, with contraindications defaulting to severe.
func scanLabel(label *registry.DrugLabel, owner, other string) []Result {
	if label == nil {
		return nil
	}
	var out []Result
	sections := []struct {
		texts       []string
		typ         Type
		defaultSev  Severity
		description string
	}{
		{label.DrugInteractions, TypeDrugDrug, SeverityModerate, "drug interaction"},
		{label.Warnings, TypeWarning, SeverityModerate, "label warning"},
		{label.Precautions, TypeWarning, SeverityModerate, "label precaution"},
		{label.Contraindications, TypeWarning, SeveritySevere, "contraindication"},
	}
	for _, sec := range sections {
		for _, text := range sec.texts {
			lower := strings.ToLower(text)
			if !strings.Contains(lower, other) {
				continue
			}
			sev := severityFromText(lower, sec.defaultSev)
			out = append(out, Result{
				Severity:    sev,
				Type:        sec.typ,
				Description: fmt.Sprintf("%s on %s label mentions %s", sec.description, owner, other),
				Medications: pairNames(owner, other),
				SourceWarnings: []SourceWarning{{
					Severity:      sev,
					Description:   excerpt(text, 280),
					Source:        Source{Name: drugSourceName, Reliability: 0.9},
					EvidenceLevel: "product_label",
				}},
				RequiresImmediateAttention: sev == SeveritySevere,
			})
		}
	}
	return out
}

// severityFromText looks for an explicit severity keyword in label
// text and falls back to the section default when none is present.
func severityFromText(lower string, fallback Severity) Severity {
	for _, kw := range []string{"severe", "major", "high", "moderate", "low", "minor"} {
		if strings.Contains(lower, kw) {
			return severityFromLabel(kw)
		}
	}
	return fallback
}

// pairNames returns the two names in lexical order so a pair has one
// canonical representation regardless of which label matched.
func pairNames(a, b string) [2]string {
	if a > b {
		a, b = b, a
	}
	return [2]string{a, b}
}

// dedupe drops results that repeat the same pair, type, severity, and
// description. A single source pair never splits into duplicates.
func dedupe(results []Result) []Result {
	seen := make(map[string]bool, len(results))
	out := results[:0]
	for _, r := range results {
		key := fmt.Sprintf("%s|%s|%s|%s|%s", r.Medications[0], r.Medications[1], r.Type, r.Severity, r.Description)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, r)
	}
	return out
}

func excerpt(s string, max int) string {
	s = strings.TrimSpace(s)
	if len(s) <= max {
		return s
	}
	return s[:max] + "…"
}
