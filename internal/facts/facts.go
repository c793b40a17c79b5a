// Package facts fetches background facts about landmarks from the
// Wikipedia REST summary API.
package facts

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/k3a/html2text"
	gocache "github.com/patrickmn/go-cache"

	"github.com/divyasajjan/landmark-finder/internal/conf"
	"github.com/divyasajjan/landmark-finder/internal/errors"
	"github.com/divyasajjan/landmark-finder/internal/logging"
)

// ErrNoExtract is returned when the topic has a page but no usable extract,
// or no page at all.
var ErrNoExtract = errors.NewStd("no extract available")

const userAgent = "landmark-finder/1.0 (https://github.com/divyasajjan/landmark-finder)"

// summaryResponse is the subset of the REST summary payload we consume.
type summaryResponse struct {
	Title       string `json:"title"`
	Extract     string `json:"extract"`
	ExtractHTML string `json:"extract_html"`
}

// Client fetches and memoizes page summaries.
type Client struct {
	endpoint string
	http     *http.Client
	cache    *gocache.Cache
	logger   *slog.Logger
}

// NewClient creates a facts client from the given settings.
func NewClient(settings *conf.Settings) *Client {
	return &Client{
		endpoint: settings.Facts.Endpoint,
		http:     &http.Client{Timeout: settings.Facts.Timeout},
		cache:    gocache.New(settings.Facts.CacheTTL, settings.Facts.CacheTTL),
		logger:   logging.ForService("facts"),
	}
}

// Fetch returns a plain-text extract for the topic. The topic is a
// normalized landmark name; underscores are replaced by spaces to form the
// page title. Results are cached for the configured TTL.
func (c *Client) Fetch(ctx context.Context, topic string) (string, error) {
	title := strings.ReplaceAll(topic, "_", " ")

	if cached, found := c.cache.Get(title); found {
		c.logger.Debug("Facts cache hit", "topic", topic)
		return cached.(string), nil
	}

	reqURL := c.endpoint + url.PathEscape(title)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
	if err != nil {
		return "", errors.New(err).
			Component("facts").
			Category(errors.CategoryNetwork).
			Context("topic", topic).
			Build()
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", errors.New(err).
			Component("facts").
			Category(errors.CategoryNetwork).
			NetworkContext(reqURL, c.http.Timeout).
			Context("topic", topic).
			Build()
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.logger.Debug("No summary page for topic", "topic", topic, "status_code", resp.StatusCode)
		return "", ErrNoExtract
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", errors.New(err).
			Component("facts").
			Category(errors.CategoryNetwork).
			Context("topic", topic).
			Build()
	}

	var summary summaryResponse
	if err := json.Unmarshal(body, &summary); err != nil {
		return "", errors.New(err).
			Component("facts").
			Category(errors.CategoryNetwork).
			Context("topic", topic).
			Context("operation", "parse_summary").
			Build()
	}

	extract := summary.Extract
	if extract == "" && summary.ExtractHTML != "" {
		extract = strings.TrimSpace(html2text.HTML2Text(summary.ExtractHTML))
	}
	if extract == "" {
		return "", ErrNoExtract
	}

	c.cache.Set(title, extract, gocache.DefaultExpiration)
	return extract, nil
}
