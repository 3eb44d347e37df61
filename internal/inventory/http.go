package inventory

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"

	"github.com/plotscout/plotscout-cli/internal/config"
	"github.com/plotscout/plotscout-cli/internal/model"
	"github.com/plotscout/plotscout-cli/internal/resilience"
)

// HTTPSource fetches approvals from a planning-authority JSON endpoint.
// Requests are rate-limited so repeated searches stay polite to the
// authority site.
type HTTPSource struct {
	baseURL string
	client  *http.Client
	limiter *rate.Limiter
}

// NewHTTPSource creates a rate-limited HTTP inventory source.
func NewHTTPSource(cfg config.InventoryConfig) *HTTPSource {
	rps := cfg.RequestsPerSec
	if rps <= 0 {
		rps = 1
	}
	timeout := time.Duration(cfg.TimeoutSecs) * time.Second
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &HTTPSource{
		baseURL: cfg.BaseURL,
		client:  &http.Client{Timeout: timeout},
		limiter: rate.NewLimiter(rate.Limit(rps), 1),
	}
}

// Name identifies the source in the workflow trace.
func (s *HTTPSource) Name() string {
	return s.baseURL
}

func (s *HTTPSource) List(ctx context.Context, div, loc string) ([]model.Listing, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, eris.Wrap(err, "inventory: rate limit wait")
	}

	u, err := url.Parse(s.baseURL + "/approvals")
	if err != nil {
		return nil, eris.Wrap(err, "inventory: parse base url")
	}
	q := u.Query()
	if div != "" {
		q.Set("division", div)
	}
	if loc != "" {
		q.Set("location", loc)
	}
	u.RawQuery = q.Encode()

	return resilience.DoVal(ctx, resilience.DefaultRetryConfig(), func(ctx context.Context) ([]model.Listing, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
		if err != nil {
			return nil, eris.Wrap(err, "inventory: build request")
		}

		resp, err := s.client.Do(req)
		if err != nil {
			return nil, eris.Wrap(err, "inventory: fetch approvals")
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			err := eris.New(fmt.Sprintf("inventory: approvals endpoint returned %d", resp.StatusCode))
			if resilience.IsTransientHTTPStatus(resp.StatusCode) {
				return nil, resilience.NewTransientError(err, resp.StatusCode)
			}
			return nil, err
		}

		var listings []model.Listing
		if err := json.NewDecoder(resp.Body).Decode(&listings); err != nil {
			return nil, eris.Wrap(err, "inventory: decode approvals")
		}
		return listings, nil
	})
}
