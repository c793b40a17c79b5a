// resolver.go: tiered fuzzy-match cascade from landmark names to coordinates.
package wikidata

import (
	"context"
	"log/slog"
	"strings"

	"github.com/divyasajjan/landmark-finder/internal/errors"
	"github.com/divyasajjan/landmark-finder/internal/logging"
)

// ErrNoCoordinates is returned when no candidate with a coordinate claim
// could be found for a name or any of its aliases.
var ErrNoCoordinates = errors.NewStd("no coordinates found")

// Resolution is the outcome of a successful name resolution.
type Resolution struct {
	Coordinates Coordinates
	EntityID    string
}

// Resolver maps free-text landmark names to verified coordinates using a
// three-tier match cascade over knowledge-base search results, with an
// alias-based retry for names the cascade cannot resolve directly.
type Resolver struct {
	api     API
	aliases map[string][]string
	logger  *slog.Logger
}

// NewResolver creates a resolver over the given knowledge-base API.
// The aliases map keys are normalized landmark names; values are alternate
// labels to retry with when the direct cascade fails.
func NewResolver(api API, aliases map[string][]string) *Resolver {
	return &Resolver{
		api:     api,
		aliases: aliases,
		logger:  logging.ForService("wikidata.resolver"),
	}
}

// NormalizeQuery converts a landmark name into the query form used for
// knowledge-base search: separators replaced by spaces, lowercased.
func NormalizeQuery(name string) string {
	return strings.ToLower(strings.ReplaceAll(strings.TrimSpace(name), "_", " "))
}

// Resolve runs the cascade for the given name, then once per registered
// alias in list order, stopping at the first success. Exhaustion is
// reported as ErrNoCoordinates, never as a crash; network errors on
// individual calls are logged and treated as a miss for that call.
func (r *Resolver) Resolve(ctx context.Context, name string) (*Resolution, error) {
	query := NormalizeQuery(name)

	if res := r.runCascade(ctx, query); res != nil {
		return res, nil
	}

	for _, alias := range r.aliases[name] {
		r.logger.Info("Retrying resolution with alias", "landmark", name, "alias", alias)
		if res := r.runCascade(ctx, NormalizeQuery(alias)); res != nil {
			return res, nil
		}
	}

	r.logger.Warn("Could not resolve landmark to coordinates", "landmark", name)
	return nil, ErrNoCoordinates
}

// runCascade performs one full three-tier pass over the search results for
// a query. Returns nil when no candidate in any tier yields coordinates.
func (r *Resolver) runCascade(ctx context.Context, query string) *Resolution {
	candidates, err := r.api.SearchEntities(ctx, query)
	if err != nil {
		r.logger.Warn("Entity search failed, treating as miss", "query", query, "error", err)
		return nil
	}
	if len(candidates) == 0 {
		return nil
	}

	queryWords := wordSet(query)

	// Tier 1: exact label match
	if res := r.firstWithCoordinates(ctx, candidates, func(label string) bool {
		return label == query
	}); res != nil {
		return res
	}

	// Tier 2: word containment, label words are a superset of query words
	if res := r.firstWithCoordinates(ctx, candidates, func(label string) bool {
		return containsAllWords(wordSet(label), queryWords)
	}); res != nil {
		return res
	}

	// Tier 3: substring fallback
	return r.firstWithCoordinates(ctx, candidates, func(label string) bool {
		return strings.Contains(label, query)
	})
}

// firstWithCoordinates walks the candidates in result order and returns the
// first one whose label matches and whose entity carries a coordinate
// claim. A label match without coordinates is a non-match: the walk
// continues within the same tier.
func (r *Resolver) firstWithCoordinates(ctx context.Context, candidates []Candidate, match func(label string) bool) *Resolution {
	for i := range candidates {
		if !match(strings.ToLower(candidates[i].Label)) {
			continue
		}

		coords, err := r.api.EntityCoordinates(ctx, candidates[i].ID)
		if err != nil {
			r.logger.Warn("Coordinate lookup failed, continuing cascade",
				"entity_id", candidates[i].ID,
				"error", err)
			continue
		}
		if coords == nil {
			continue
		}

		return &Resolution{Coordinates: *coords, EntityID: candidates[i].ID}
	}
	return nil
}

func wordSet(s string) map[string]struct{} {
	words := make(map[string]struct{})
	for _, w := range strings.Fields(s) {
		words[w] = struct{}{}
	}
	return words
}

func containsAllWords(super, sub map[string]struct{}) bool {
	if len(sub) == 0 {
		return false
	}
	for w := range sub {
		if _, ok := super[w]; !ok {
			return false
		}
	}
	return true
}
