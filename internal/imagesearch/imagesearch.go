// Package imagesearch finds candidate image URLs for a keyword using the
// DuckDuckGo image search endpoint.
package imagesearch

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"regexp"

	"golang.org/x/time/rate"

	"github.com/divyasajjan/landmark-finder/internal/conf"
	"github.com/divyasajjan/landmark-finder/internal/errors"
	"github.com/divyasajjan/landmark-finder/internal/logging"
)

const (
	tokenEndpoint  = "https://duckduckgo.com/"
	searchEndpoint = "https://duckduckgo.com/i.js"
	userAgent      = "Mozilla/5.0 (X11; Linux x86_64) landmark-finder"

	requestsPerSecond = 1
)

var vqdPattern = regexp.MustCompile(`vqd=["']?([\d-]+)["']?`)

// Result is a single image search hit.
type Result struct {
	URL   string
	Title string
}

// Searcher finds image URLs for a keyword.
type Searcher interface {
	Search(ctx context.Context, keyword string, maxResults int) ([]Result, error)
}

// Client implements Searcher against DuckDuckGo.
type Client struct {
	httpClient    *http.Client
	tokenBaseURL  string
	searchBaseURL string
	limiter       *rate.Limiter
	logger        *slog.Logger
}

// NewClient creates an image search client from the given settings.
func NewClient(settings *conf.Settings) *Client {
	return &Client{
		httpClient:    &http.Client{Timeout: settings.Scraper.Timeout},
		tokenBaseURL:  tokenEndpoint,
		searchBaseURL: searchEndpoint,
		limiter:       rate.NewLimiter(rate.Limit(requestsPerSecond), 1),
		logger:        logging.ForService("imagesearch"),
	}
}

type searchResponse struct {
	Results []struct {
		Image string `json:"image"`
		Title string `json:"title"`
	} `json:"results"`
	Next string `json:"next"`
}

// Search returns up to maxResults image URLs for the keyword.
func (c *Client) Search(ctx context.Context, keyword string, maxResults int) ([]Result, error) {
	token, err := c.fetchToken(ctx, keyword)
	if err != nil {
		return nil, err
	}

	query := url.Values{}
	query.Set("l", "us-en")
	query.Set("o", "json")
	query.Set("q", keyword)
	query.Set("vqd", token)
	query.Set("f", ",,,")
	query.Set("p", "1")

	body, err := c.get(ctx, c.searchBaseURL+"?"+query.Encode())
	if err != nil {
		return nil, errors.New(err).
			Component("imagesearch").
			Category(errors.CategoryImageSearch).
			Context("keyword", keyword).
			Build()
	}

	var parsed searchResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, errors.New(err).
			Component("imagesearch").
			Category(errors.CategoryImageSearch).
			Context("operation", "decode_results").
			Context("keyword", keyword).
			Build()
	}

	results := make([]Result, 0, maxResults)
	for _, r := range parsed.Results {
		if r.Image == "" {
			continue
		}
		results = append(results, Result{URL: r.Image, Title: r.Title})
		if len(results) >= maxResults {
			break
		}
	}

	c.logger.Debug("Image search complete", "keyword", keyword, "results", len(results))
	return results, nil
}

// fetchToken requests the search page and extracts the vqd token that the
// image endpoint requires.
func (c *Client) fetchToken(ctx context.Context, keyword string) (string, error) {
	query := url.Values{}
	query.Set("q", keyword)

	body, err := c.get(ctx, c.tokenBaseURL+"?"+query.Encode())
	if err != nil {
		return "", errors.New(err).
			Component("imagesearch").
			Category(errors.CategoryImageSearch).
			Context("operation", "fetch_token").
			Context("keyword", keyword).
			Build()
	}

	match := vqdPattern.FindSubmatch(body)
	if match == nil {
		return "", errors.Newf("search token not found in response").
			Component("imagesearch").
			Category(errors.CategoryImageSearch).
			Context("keyword", keyword).
			Build()
	}
	return string(match[1]), nil
}

func (c *Client) get(ctx context.Context, rawURL string) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, http.NoBody)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d from %s", resp.StatusCode, rawURL)
	}

	return io.ReadAll(io.LimitReader(resp.Body, 4<<20))
}
