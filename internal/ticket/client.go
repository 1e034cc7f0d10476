package ticket

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"
)

// SearchCache is an optional read-through cache for upstream responses.
// Implemented by store/redisstore; a nil cache disables caching.
type SearchCache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, val []byte)
}

// Client is the adapter for the upstream ticket-search API. Time-of-day is
// deliberately not sent upstream; filtering by time happens locally so a
// cached response can serve refined queries too.
type Client struct {
	BaseURL string
	HTTP    *http.Client
	Cache   SearchCache

	log *zap.Logger
}

func NewClient(baseURL string, timeout time.Duration, cache SearchCache, log *zap.Logger) *Client {
	if baseURL == "" {
		baseURL = "https://api.pearktrue.cn/api/highspeedticket"
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{
		BaseURL: baseURL,
		HTTP:    &http.Client{Timeout: timeout},
		Cache:   cache,
		log:     log,
	}
}

type searchResponse struct {
	Code int         `json:"code"`
	Data []RawTicket `json:"data"`
	Msg  string      `json:"msg"`
}

// Search issues one request for (origin, destination, date) and returns the
// raw entries. Network failures and non-2xx statuses map to
// ErrUpstreamUnavailable, an unsuccessful payload code to ErrNoData.
func (c *Client) Search(ctx context.Context, q Query) ([]RawTicket, error) {
	key := q.Origin + "|" + q.Destination + "|" + q.Date

	if c.Cache != nil {
		if b, ok := c.Cache.Get(ctx, key); ok {
			var data []RawTicket
			if err := json.Unmarshal(b, &data); err == nil {
				c.log.Debug("search cache hit", zap.String("key", key))
				return data, nil
			}
		}
	}

	u, err := url.Parse(c.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("%w: bad base url: %v", ErrUpstreamUnavailable, err)
	}
	vals := url.Values{}
	vals.Set("from", q.Origin)
	vals.Set("to", q.Destination)
	vals.Set("time", q.Date)
	u.RawQuery = vals.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		c.log.Warn("ticket api request failed", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: status %d", ErrUpstreamUnavailable, resp.StatusCode)
	}

	var decoded searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)
	}
	if decoded.Code != 200 {
		c.log.Warn("ticket api returned error payload",
			zap.Int("code", decoded.Code), zap.String("msg", decoded.Msg))
		return nil, ErrNoData
	}

	if c.Cache != nil {
		if b, err := json.Marshal(decoded.Data); err == nil {
			c.Cache.Set(ctx, key, b)
		}
	}
	return decoded.Data, nil
}
