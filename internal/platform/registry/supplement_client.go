package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/rs/zerolog"

	"github.com/meditrack/meditrack/internal/platform/apperr"
)

const supplementSourceName = "supplement-registry"

// HTTPSupplementClient queries the herb-drug interaction registry.
type HTTPSupplementClient struct {
	baseURL    string
	httpClient *http.Client
	logger     zerolog.Logger
}

// NewSupplementClient creates a client for the supplement registry.
func NewSupplementClient(opts Options, logger zerolog.Logger) *HTTPSupplementClient {
	return &HTTPSupplementClient{
		baseURL:    opts.BaseURL,
		httpClient: &http.Client{Timeout: opts.Timeout},
		logger:     logger.With().Str("component", supplementSourceName).Logger(),
	}
}

// Lookup fetches interaction facts for the herb/drug pair. Returns
// (nil, nil) when the registry has no entry; wraps transport and 5xx
// failures as SourceUnavailableError.
func (c *HTTPSupplementClient) Lookup(ctx context.Context, herbName, drugName string) (*SupplementReport, error) {
	q := url.Values{}
	q.Set("herb", herbName)
	q.Set("drug", drugName)
	reqURL := c.baseURL + "/interactions?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, apperr.System("build supplement registry request", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, apperr.SourceUnavailable(supplementSourceName, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		// fallthrough to decode
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		c.logger.Debug().
			Str("herb", herbName).
			Str("drug", drugName).
			Int("status", resp.StatusCode).
			Msg("no registry entry")
		return nil, nil
	default:
		return nil, apperr.SourceUnavailable(supplementSourceName,
			fmt.Errorf("unexpected status %d", resp.StatusCode))
	}

	var report SupplementReport
	if err := json.NewDecoder(resp.Body).Decode(&report); err != nil {
		return nil, apperr.SourceUnavailable(supplementSourceName, fmt.Errorf("decode response: %w", err))
	}
	return &report, nil
}
