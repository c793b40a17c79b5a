// client.go: Wikidata action API client used by the resolver.
package wikidata

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"strconv"
	"time"

	"cgt.name/pkg/go-mwclient"
	"github.com/antonholmquist/jason"
	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/divyasajjan/landmark-finder/internal/conf"
	"github.com/divyasajjan/landmark-finder/internal/errors"
	"github.com/divyasajjan/landmark-finder/internal/logging"
)

const (
	// coordinateProperty is the Wikidata property holding coordinate claims.
	coordinateProperty = "P625"

	// User-Agent constants following the Wikimedia robot policy
	userAgentName    = "landmark-finder"
	userAgentContact = "https://github.com/divyasajjan/landmark-finder"
	userAgentLibrary = "Go-HTTP-Client"
)

var clientLogger *slog.Logger

func init() {
	clientLogger = logging.ForService("wikidata")
}

// Candidate is one entity returned by a knowledge-base search.
type Candidate struct {
	ID    string
	Label string
}

// Coordinates is a latitude/longitude pair from a coordinate claim.
type Coordinates struct {
	Latitude  float64
	Longitude float64
}

// API is the knowledge-base surface the resolver depends on. The production
// implementation talks to the Wikidata action API; tests substitute a stub.
type API interface {
	SearchEntities(ctx context.Context, query string) ([]Candidate, error)
	EntityCoordinates(ctx context.Context, id string) (*Coordinates, error)
}

// Client implements API against a MediaWiki action API endpoint.
type Client struct {
	mw          *mwclient.Client
	limiter     *rate.Limiter
	language    string
	searchLimit int
	maxRetries  int
}

// buildUserAgent constructs a user-agent string that complies with the
// Wikimedia robot policy.
func buildUserAgent() string {
	return fmt.Sprintf("%s/1.0 (%s) %s/%s",
		userAgentName, userAgentContact, userAgentLibrary, runtime.Version())
}

// NewClient creates a Wikidata API client from the given settings.
func NewClient(settings *conf.Settings) (*Client, error) {
	mw, err := mwclient.New(settings.Wikidata.Endpoint, buildUserAgent())
	if err != nil {
		return nil, errors.New(err).
			Component("wikidata").
			Category(errors.CategoryNetwork).
			Context("operation", "create_mwclient").
			Context("endpoint", settings.Wikidata.Endpoint).
			Build()
	}

	// 2 rps keeps well inside Wikimedia's robot rate limits
	return &Client{
		mw:          mw,
		limiter:     rate.NewLimiter(rate.Limit(2), 2),
		language:    settings.Wikidata.Language,
		searchLimit: settings.Wikidata.SearchLimit,
		maxRetries:  3,
	}, nil
}

// query performs one API call with rate limiting and retry with
// exponential backoff.
func (c *Client) query(ctx context.Context, reqID string, params map[string]string) (*jason.Object, error) {
	logger := clientLogger.With("request_id", reqID, "api_action", params["action"])

	var lastErr error
	for attempt := 0; attempt < c.maxRetries; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, errors.New(err).
				Component("wikidata").
				Category(errors.CategoryNetwork).
				Context("request_id", reqID).
				Context("operation", "rate_limiter_wait").
				Build()
		}

		resp, err := c.mw.Get(params)
		if err == nil {
			return resp, nil
		}

		lastErr = err
		logger.Warn("API request failed",
			"error", err,
			"attempt", attempt+1,
			"will_retry", attempt < c.maxRetries-1)

		if attempt < c.maxRetries-1 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(time.Second * time.Duration(1<<attempt)):
			}
		}
	}

	return nil, errors.New(lastErr).
		Component("wikidata").
		Category(errors.CategoryNetwork).
		Context("request_id", reqID).
		Context("api_action", params["action"]).
		Context("max_retries", c.maxRetries).
		Build()
}

// SearchEntities queries wbsearchentities for candidates matching the query
// string, preserving the knowledge base's own result ordering.
func (c *Client) SearchEntities(ctx context.Context, query string) ([]Candidate, error) {
	reqID := uuid.New().String()[:8]
	clientLogger.Debug("Searching entities", "request_id", reqID, "query", query)

	resp, err := c.query(ctx, reqID, map[string]string{
		"action":   "wbsearchentities",
		"search":   query,
		"language": c.language,
		"type":     "item",
		"format":   "json",
		"limit":    strconv.Itoa(c.searchLimit),
	})
	if err != nil {
		return nil, err
	}

	return parseSearchResults(resp)
}

// EntityCoordinates looks up the coordinate claim of an entity. It returns
// (nil, nil) when the entity exists but carries no coordinate claim.
func (c *Client) EntityCoordinates(ctx context.Context, id string) (*Coordinates, error) {
	reqID := uuid.New().String()[:8]
	clientLogger.Debug("Fetching entity coordinates", "request_id", reqID, "entity_id", id)

	resp, err := c.query(ctx, reqID, map[string]string{
		"action": "wbgetentities",
		"ids":    id,
		"props":  "claims",
		"format": "json",
	})
	if err != nil {
		return nil, err
	}

	return parseCoordinates(resp, id)
}

// parseSearchResults extracts candidates from a wbsearchentities response.
func parseSearchResults(resp *jason.Object) ([]Candidate, error) {
	results, err := resp.GetObjectArray("search")
	if err != nil {
		// An empty result set is delivered as an empty array; a missing
		// field means the response shape is wrong.
		return nil, errors.New(err).
			Component("wikidata").
			Category(errors.CategoryResolver).
			Context("operation", "parse_search_results").
			Build()
	}

	candidates := make([]Candidate, 0, len(results))
	for _, result := range results {
		id, err := result.GetString("id")
		if err != nil {
			continue
		}
		label, err := result.GetString("label")
		if err != nil {
			label = ""
		}
		candidates = append(candidates, Candidate{ID: id, Label: label})
	}
	return candidates, nil
}

// parseCoordinates extracts the first P625 coordinate claim from a
// wbgetentities response for the given entity id.
func parseCoordinates(resp *jason.Object, id string) (*Coordinates, error) {
	entity, err := resp.GetObject("entities", id)
	if err != nil {
		return nil, errors.New(err).
			Component("wikidata").
			Category(errors.CategoryResolver).
			Context("operation", "parse_entity").
			Context("entity_id", id).
			Build()
	}

	claims, err := entity.GetObjectArray("claims", coordinateProperty)
	if err != nil || len(claims) == 0 {
		// No coordinate claim on this entity
		return nil, nil
	}

	lat, err := claims[0].GetFloat64("mainsnak", "datavalue", "value", "latitude")
	if err != nil {
		return nil, nil
	}
	lon, err := claims[0].GetFloat64("mainsnak", "datavalue", "value", "longitude")
	if err != nil {
		return nil, nil
	}

	return &Coordinates{Latitude: lat, Longitude: lon}, nil
}
