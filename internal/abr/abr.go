// Package abr looks up business names on the Australian Business Register.
package abr

import (
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/time/rate"

	"marketapi/internal/config"
)

var (
	// ErrNotConfigured is returned when no authentication GUID is set.
	ErrNotConfigured = errors.New("abr lookup is not configured")
	// ErrNotFound is returned when the register has no organisation name for the ABN.
	ErrNotFound = errors.New("abn not found")
)

// Looker resolves an ABN to the registered organisation name.
type Looker interface {
	OrganisationName(ctx context.Context, abn string) (string, error)
}

// Client calls the ABR XML search service. Outbound calls are rate limited and traced.
type Client struct {
	endpoint string
	guid     string
	http     *http.Client
	limiter  *rate.Limiter
}

var _ Looker = (*Client)(nil)

// New creates a Client from cfg.
func New(cfg config.ABRConfig) *Client {
	perSec := cfg.RatePerSec
	if perSec <= 0 {
		perSec = 1
	}
	return &Client{
		endpoint: cfg.Endpoint,
		guid:     cfg.GUID,
		http: &http.Client{
			Timeout:   time.Duration(cfg.TimeoutSec) * time.Second,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		limiter: rate.NewLimiter(rate.Limit(perSec), perSec),
	}
}

type searchResults struct {
	XMLName  xml.Name `xml:"ABRPayloadSearchResults"`
	Response struct {
		Exception *struct {
			Description string `xml:"exceptionDescription"`
		} `xml:"exception"`
		Entity struct {
			MainName struct {
				OrganisationName string `xml:"organisationName"`
			} `xml:"mainName"`
		} `xml:"businessEntity201205"`
	} `xml:"response"`
}

// OrganisationName returns the main name registered against abn.
func (c *Client) OrganisationName(ctx context.Context, abn string) (string, error) {
	if c.guid == "" {
		return "", ErrNotConfigured
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limiter: %w", err)
	}

	q := url.Values{}
	q.Set("searchString", abn)
	q.Set("includeHistoricalDetails", "N")
	q.Set("authenticationGuid", c.guid)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+"?"+q.Encode(), nil)
	if err != nil {
		return "", err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("abr request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("abr request: unexpected status %d", resp.StatusCode)
	}

	var out searchResults
	if err := xml.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode abr response: %w", err)
	}
	if ex := out.Response.Exception; ex != nil {
		return "", fmt.Errorf("%w: %s", ErrNotFound, strings.TrimSpace(ex.Description))
	}
	name := strings.TrimSpace(out.Response.Entity.MainName.OrganisationName)
	if name == "" {
		return "", ErrNotFound
	}
	return name, nil
}
