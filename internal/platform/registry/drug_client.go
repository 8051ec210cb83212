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

const drugSourceName = "drug-registry"

// HTTPDrugLabelClient queries an openFDA-style drug label endpoint.
type HTTPDrugLabelClient struct {
	baseURL    string
	httpClient *http.Client
	logger     zerolog.Logger
}

// NewDrugLabelClient creates a client for the primary drug registry.
func NewDrugLabelClient(opts Options, logger zerolog.Logger) *HTTPDrugLabelClient {
	return &HTTPDrugLabelClient{
		baseURL:    opts.BaseURL,
		httpClient: &http.Client{Timeout: opts.Timeout},
		logger:     logger.With().Str("component", drugSourceName).Logger(),
	}
}

// drugLabelResponse mirrors the registry's search envelope: a results
// array of label documents.
type drugLabelResponse struct {
	Results []DrugLabel `json:"results"`
}

// Lookup fetches the label for drugName. Returns (nil, nil) when the
// registry has no entry; wraps transport and 5xx failures as
// SourceUnavailableError.
func (c *HTTPDrugLabelClient) Lookup(ctx context.Context, drugName string) (*DrugLabel, error) {
	q := url.Values{}
	q.Set("search", fmt.Sprintf("openfda.generic_name:%q", drugName))
	q.Set("limit", "1")
	reqURL := c.baseURL + "?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, apperr.System("build drug registry request", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, apperr.SourceUnavailable(drugSourceName, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		// fallthrough to decode
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		// The registry answers 404 for unknown names; that is an
		// ordinary "no data" outcome, not a failure.
		c.logger.Debug().Str("drug", drugName).Int("status", resp.StatusCode).Msg("no registry entry")
		return nil, nil
	default:
		return nil, apperr.SourceUnavailable(drugSourceName,
			fmt.Errorf("unexpected status %d", resp.StatusCode))
	}

	var body drugLabelResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, apperr.SourceUnavailable(drugSourceName, fmt.Errorf("decode response: %w", err))
	}
	if len(body.Results) == 0 {
		return nil, nil
	}
	return &body.Results[0], nil
}
