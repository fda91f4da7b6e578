// Package agmarknet provides a client for the Agmarknet mandi price
// feed published through the data.gov.in API.
package agmarknet

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/mandiroute/mandiroute/internal/pricefeed"
	"github.com/mandiroute/mandiroute/internal/provider/resilience"
)

const (
	// DefaultBaseURL is the base URL for the data.gov.in API.
	DefaultBaseURL = "https://api.data.gov.in/resource"

	// DefaultResourceID is the daily mandi price resource.
	DefaultResourceID = "9ef84268-d588-465a-a308-a864a43d0070"

	// ProviderName identifies this provider.
	ProviderName = "agmarknet"

	// pageSize is the record limit per request.
	pageSize = 100
)

// ClientConfig holds configuration for the Agmarknet client.
type ClientConfig struct {
	// BaseURL is the API base URL (defaults to DefaultBaseURL).
	BaseURL string

	// ResourceID is the data.gov.in resource to query (defaults to
	// DefaultResourceID).
	ResourceID string

	// APIKey is the data.gov.in API key.
	APIKey string

	// State restricts the feed to one state (e.g. "Gujarat"). Empty
	// means no state filter.
	State string

	// MandiIDs maps the feed's market names to directory mandi IDs.
	// Records for markets without a mapping are dropped.
	MandiIDs map[string]string

	// HTTPClient is the HTTP client to use (must implement HTTPDoer).
	// If nil, a default resilient client will be created.
	HTTPClient HTTPDoer

	// Timeout for individual API requests (default: 10s).
	Timeout time.Duration
}

// HTTPDoer abstracts HTTP request execution.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client is an Agmarknet price feed client.
type Client struct {
	baseURL    string
	resourceID string
	apiKey     string
	state      string
	mandiIDs   map[string]string
	httpClient HTTPDoer
}

// NewClient creates a new Agmarknet client.
func NewClient(cfg ClientConfig) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	resourceID := cfg.ResourceID
	if resourceID == "" {
		resourceID = DefaultResourceID
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout == 0 {
			timeout = 10 * time.Second
		}
		httpClient = resilience.NewClient(resilience.ClientConfig{
			Name:            "agmarknet",
			Timeout:         timeout,
			MaxRetries:      3,
			InitialInterval: 200 * time.Millisecond,
			MaxInterval:     5 * time.Second,
		})
	}

	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		resourceID: resourceID,
		apiKey:     cfg.APIKey,
		state:      cfg.State,
		mandiIDs:   cfg.MandiIDs,
		httpClient: httpClient,
	}
}

// API response types (from the data.gov.in resource API).

type pricesResponse struct {
	Total   int           `json:"total"`
	Count   int           `json:"count"`
	Records []priceRecord `json:"records"`
}

type priceRecord struct {
	State       string `json:"state"`
	District    string `json:"district"`
	Market      string `json:"market"`
	Commodity   string `json:"commodity"`
	ArrivalDate string `json:"arrival_date"`
	ModalPrice  string `json:"modal_price"`
}

// Name returns the provider name for logging.
func (c *Client) Name() string {
	return ProviderName
}

// FetchPrices retrieves the current modal prices for a commodity
// across all covered mandis.
func (c *Client) FetchPrices(ctx context.Context, commodity string) ([]pricefeed.Quote, error) {
	var quotes []pricefeed.Quote
	offset := 0

	for {
		page, total, err := c.fetchPricesPage(ctx, commodity, offset)
		if err != nil {
			return nil, err
		}
		quotes = append(quotes, page...)

		offset += pageSize
		if offset >= total {
			break
		}
	}

	return quotes, nil
}

// fetchPricesPage fetches a single page of price records.
func (c *Client) fetchPricesPage(ctx context.Context, commodity string, offset int) ([]pricefeed.Quote, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.pricesURL(commodity, offset), http.NoBody)
	if err != nil {
		return nil, 0, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("fetch prices: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, 0, fmt.Errorf("unexpected status %d from prices endpoint", resp.StatusCode)
	}

	var result pricesResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, 0, fmt.Errorf("decode prices response: %w", err)
	}

	quotes := make([]pricefeed.Quote, 0, len(result.Records))
	for _, r := range result.Records {
		quote := c.toQuote(&r)
		if quote != nil {
			quotes = append(quotes, *quote)
		}
	}

	return quotes, result.Total, nil
}

// pricesURL builds the filtered resource URL for one page.
func (c *Client) pricesURL(commodity string, offset int) string {
	params := url.Values{}
	params.Set("api-key", c.apiKey)
	params.Set("format", "json")
	params.Set("limit", strconv.Itoa(pageSize))
	params.Set("offset", strconv.Itoa(offset))
	params.Set("filters[commodity]", commodity)
	if c.state != "" {
		params.Set("filters[state]", c.state)
	}
	return fmt.Sprintf("%s/%s?%s", c.baseURL, c.resourceID, params.Encode())
}

// toQuote converts a feed record to a domain quote. Returns nil for
// records that cannot be used: unmapped markets or unparseable prices.
func (c *Client) toQuote(r *priceRecord) *pricefeed.Quote {
	mandiID, ok := c.mandiIDs[r.Market]
	if !ok {
		return nil
	}

	modalPrice, err := strconv.ParseFloat(strings.TrimSpace(r.ModalPrice), 64)
	if err != nil || modalPrice <= 0 {
		return nil
	}

	recordedAt := time.Now()
	// The feed dates arrivals as DD/MM/YYYY.
	if t, err := time.Parse("02/01/2006", r.ArrivalDate); err == nil {
		recordedAt = t
	}

	return &pricefeed.Quote{
		MandiID:              mandiID,
		Market:               r.Market,
		District:             r.District,
		State:                r.State,
		ModalPricePerQuintal: modalPrice,
		RecordedAt:           recordedAt,
	}
}
