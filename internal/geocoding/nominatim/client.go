package nominatim

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/solix-energy/solix/internal/geo"
	"github.com/solix-energy/solix/internal/geocoding/provider"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/time/rate"
)

const name = "nominatim"

// SearchLimit caps the candidates requested per forward search.
const SearchLimit = 5

// Client is an HTTP client for a Nominatim instance.
type Client struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewClient creates a Nominatim client. rps <= 0 disables throttling.
func NewClient(baseURL, userAgent string, rps float64, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	limit := rate.Inf
	if rps > 0 {
		limit = rate.Limit(rps)
	}
	return &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		userAgent: userAgent,
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		limiter: rate.NewLimiter(limit, 1),
	}
}

type searchHit struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
}

type reverseResponse struct {
	Error       string         `json:"error"`
	DisplayName string         `json:"display_name"`
	Address     reverseAddress `json:"address"`
}

type reverseAddress struct {
	City          string `json:"city"`
	Town          string `json:"town"`
	Village       string `json:"village"`
	Suburb        string `json:"suburb"`
	County        string `json:"county"`
	StateDistrict string `json:"state_district"`
	State         string `json:"state"`
}

// Name implements provider.Geocoder.
func (c *Client) Name() string { return name }

// Search resolves free text to ranked candidates. Hits with unparseable or
// out-of-range coordinates are skipped.
func (c *Client) Search(ctx context.Context, query string) ([]provider.Candidate, error) {
	params := url.Values{}
	params.Set("format", "json")
	params.Set("q", query)
	params.Set("limit", strconv.Itoa(SearchLimit))
	params.Set("accept-language", "en")

	var hits []searchHit
	if err := c.get(ctx, "/search", params, &hits); err != nil {
		return nil, err
	}

	out := make([]provider.Candidate, 0, len(hits))
	for _, h := range hits {
		p, err := geo.ParsePoint(h.Lat, h.Lon)
		if err != nil {
			continue
		}
		out = append(out, provider.Candidate{Point: p, DisplayName: h.DisplayName})
	}
	return out, nil
}

// Reverse looks up the administrative names for a point.
func (c *Client) Reverse(ctx context.Context, p geo.Point) (provider.Address, error) {
	params := url.Values{}
	params.Set("format", "json")
	params.Set("lat", p.LatString())
	params.Set("lon", p.LonString())
	params.Set("accept-language", "en")

	var body reverseResponse
	if err := c.get(ctx, "/reverse", params, &body); err != nil {
		return provider.Address{}, err
	}
	if body.Error != "" {
		return provider.Address{}, fmt.Errorf("%w: %s", provider.ErrNoResults, body.Error)
	}

	a := body.Address
	return provider.Address{
		Locality:  firstNonEmpty(a.City, a.Town, a.Village, a.Suburb),
		County:    firstNonEmpty(a.County, a.StateDistrict),
		Region:    a.State,
		Formatted: body.DisplayName,
	}, nil
}

func (c *Client) get(ctx context.Context, path string, params url.Values, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}

	endpoint := c.baseURL + path
	fullURL := fmt.Sprintf("%s?%s", endpoint, params.Encode())

	start := time.Now()
	provider.LogRequest(name, http.MethodGet, endpoint, map[string]interface{}{
		"q":   params.Get("q"),
		"lat": params.Get("lat"),
		"lon": params.Get("lon"),
	})

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		provider.LogError(name, strings.TrimPrefix(path, "/"), err)
		return fmt.Errorf("nominatim request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		provider.LogResponse(name, resp.StatusCode, time.Since(start), 0)
		return fmt.Errorf("nominatim returned HTTP %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}

	count := 1
	if hits, ok := out.(*[]searchHit); ok {
		count = len(*hits)
	}
	provider.LogResponse(name, resp.StatusCode, time.Since(start), count)
	return nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if s := strings.TrimSpace(v); s != "" {
			return s
		}
	}
	return ""
}
