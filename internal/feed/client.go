package feed

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/goccy/go-json"
	"github.com/nmartinez/oddsedge/pkg/types"
	"go.uber.org/zap"
)

// Client is an HTTP client for The Odds API v4.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates a new odds feed client. The timeout bounds the whole
// request; there is no retry here, retrying is a scheduling concern.
func NewClient(baseURL, apiKey string, timeout time.Duration, logger *zap.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

// FetchUpcomingOdds fetches upcoming events with head-to-head odds for a
// sport, limited to games commencing within the horizon from now.
// Network or HTTP failures are wrapped in types.ErrFeedUnavailable.
func (c *Client) FetchUpcomingOdds(ctx context.Context, sport string, horizon time.Duration) ([]Event, error) {
	endpoint := fmt.Sprintf("%s/sports/%s/odds", c.baseURL, url.PathEscape(sport))

	params := url.Values{}
	params.Add("apiKey", c.apiKey)
	params.Add("regions", "us,uk,eu")
	params.Add("markets", "h2h")
	params.Add("oddsFormat", "decimal")
	params.Add("dateFormat", "iso")
	params.Add("commenceTimeTo", time.Now().UTC().Add(horizon).Format("2006-01-02T15:04:05Z"))

	requestURL := fmt.Sprintf("%s?%s", endpoint, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "oddsedge/1.0")

	c.logger.Debug("fetching-odds",
		zap.String("sport", sport),
		zap.Duration("horizon", horizon))

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	FeedRequestDurationSeconds.Observe(time.Since(start).Seconds())
	if err != nil {
		FeedRequestsTotal.WithLabelValues("network_error").Inc()
		return nil, fmt.Errorf("%w: do request: %v", types.ErrFeedUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		FeedRequestsTotal.WithLabelValues("http_error").Inc()
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("%w: unexpected status code %d: %s", types.ErrFeedUnavailable, resp.StatusCode, string(body))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		FeedRequestsTotal.WithLabelValues("read_error").Inc()
		return nil, fmt.Errorf("%w: read response body: %v", types.ErrFeedUnavailable, err)
	}

	// The /odds endpoint returns a direct array of events.
	var events []Event
	err = json.Unmarshal(body, &events)
	if err != nil {
		FeedRequestsTotal.WithLabelValues("parse_error").Inc()
		return nil, fmt.Errorf("%w: unmarshal response: %v", types.ErrFeedUnavailable, err)
	}

	FeedRequestsTotal.WithLabelValues("ok").Inc()
	FeedEventsReturned.Observe(float64(len(events)))

	c.logger.Debug("fetched-odds",
		zap.String("sport", sport),
		zap.Int("events", len(events)))

	return events, nil
}
