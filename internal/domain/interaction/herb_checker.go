package interaction

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/meditrack/meditrack/internal/platform/apperr"
	"github.com/meditrack/meditrack/internal/platform/cache"
	"github.com/meditrack/meditrack/internal/platform/registry"
)

const herbSourceName = "supplement_registry"

// HerbChecker detects herb-drug interactions against the supplement
// reference registry. The herb argument must be a recognized herbal
// supplement; the check is direction-specific (herb first).
type HerbChecker struct {
	client registry.SupplementClient
	cache  cache.Cache
	ttl    time.Duration
	logger zerolog.Logger
}

// NewHerbChecker wires a checker over the given supplement registry client.
func NewHerbChecker(client registry.SupplementClient, c cache.Cache, ttl time.Duration, logger zerolog.Logger) *HerbChecker {
	return &HerbChecker{client: client, cache: c, ttl: ttl, logger: logger}
}

// CheckInteraction returns all known interactions between an herbal
// supplement and a drug. Passing a non-herb as the supplement is a
// validation error, not an empty result.
func (c *HerbChecker) CheckInteraction(ctx context.Context, herbName, drugName string) ([]Result, error) {
	herb := strings.ToLower(strings.TrimSpace(herbName))
	drug := strings.ToLower(strings.TrimSpace(drugName))
	if herb == "" || drug == "" {
		return nil, apperr.Validation("medication_name", "medication name must not be empty")
	}
	if !IsHerbalSupplement(herb) {
		return nil, apperr.Validation("herb_name", "%q is not a recognized herbal supplement", herbName)
	}

	key := fmt.Sprintf("herb_interaction_%s_%s", herb, drug)
	if v, ok := c.cache.Get(key); ok {
		if cached, ok := v.([]Result); ok {
			return cached, nil
		}
	}

	report, err := c.client.Lookup(ctx, herb, drug)
	if err != nil {
		if apperr.IsSourceUnavailable(err) {
			c.logger.Warn().Err(err).Str("herb", herb).Str("drug", drug).Msg("supplement source unavailable, treating as no data")
			return []Result{}, nil
		}
		return nil, err
	}

	results := []Result{}
	if report != nil {
		for _, si := range report.Interactions {
			sev := severityFromLabel(si.Severity)
			results = append(results, Result{
				Severity:    sev,
				Type:        TypeHerbDrug,
				Description: si.Description,
				Medications: pairNames(herb, drug),
				SourceWarnings: []SourceWarning{{
					Severity:      sev,
					Description:   si.Description,
					Source:        Source{Name: herbSourceName, Reliability: 0.8},
					EvidenceLevel: report.EvidenceLevel,
				}},
				Recommendations:            si.Recommendations,
				RequiresImmediateAttention: sev == SeveritySevere,
			})
		}
		results = dedupe(results)
	}

	c.cache.Set(key, results, c.ttl)
	return results, nil
}
