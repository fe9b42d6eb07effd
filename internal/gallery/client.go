package gallery

import (
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"github.com/gofiber/fiber/v2"
)

// Item is one gallery record as returned by the image API.
type Item struct {
	Date        string `json:"date"` // unique key
	Title       string `json:"title"`
	Explanation string `json:"explanation"`
	MediaType   string `json:"media_type"` // "image" or "video"
	URL         string `json:"url"`
	HDURL       string `json:"hdurl,omitempty"`
}

// DefaultCount is the batch size requested from the API.
const DefaultCount = 60

// Config holds the image API connection details.
type Config struct {
	BaseURL string
	APIKey  string
	Count   int
	Timeout time.Duration
}

// Client fetches gallery items from the image API. It issues one request per
// LoadItems call; there is no retry and no caching.
type Client struct {
	baseURL string
	apiKey  string
	count   int
	timeout time.Duration
}

// NewClient creates a Client from cfg, filling in defaults for the count and
// timeout.
func NewClient(cfg Config) *Client {
	if cfg.Count <= 0 {
		cfg.Count = DefaultCount
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	return &Client{
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		count:   cfg.Count,
		timeout: cfg.Timeout,
	}
}

// LoadItems fetches one batch of recent records. A transport failure, a
// non-success status or an unparseable body all collapse into a single error;
// no items are returned alongside an error.
func (c *Client) LoadItems() ([]Item, error) {
	q := url.Values{}
	q.Set("api_key", c.apiKey)
	q.Set("count", fmt.Sprintf("%d", c.count))

	agent := fiber.Get(c.baseURL + "?" + q.Encode())
	agent.Timeout(c.timeout)

	code, body, errs := agent.Bytes()
	if len(errs) > 0 {
		return nil, fmt.Errorf("failed to fetch data: %w", errs[0])
	}
	if code < 200 || code >= 300 {
		return nil, fmt.Errorf("failed to fetch data: unexpected status %d", code)
	}

	var items []Item
	if err := json.Unmarshal(body, &items); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	return items, nil
}
