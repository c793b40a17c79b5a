// Package landmark orchestrates landmark lookup and creation across the
// resolver, facts and summary collaborators.
package landmark

import (
	"context"
	"log/slog"

	"github.com/divyasajjan/landmark-finder/internal/datastore"
	"github.com/divyasajjan/landmark-finder/internal/errors"
	"github.com/divyasajjan/landmark-finder/internal/gemini"
	"github.com/divyasajjan/landmark-finder/internal/logging"
	"github.com/divyasajjan/landmark-finder/internal/wikidata"
)

// Resolver maps a landmark name to coordinates.
type Resolver interface {
	Resolve(ctx context.Context, name string) (*wikidata.Resolution, error)
}

// FactsFetcher returns encyclopedia facts for a topic.
type FactsFetcher interface {
	Fetch(ctx context.Context, topic string) (string, error)
}

// Service is the landmark catalog orchestrator.
type Service struct {
	store      datastore.Interface
	resolver   Resolver
	facts      FactsFetcher
	summarizer gemini.Summarizer
	logger     *slog.Logger
}

// NewService wires the orchestrator. facts and summarizer may be nil, in
// which case landmarks are created without summaries.
func NewService(store datastore.Interface, resolver Resolver, facts FactsFetcher, summarizer gemini.Summarizer) *Service {
	return &Service{
		store:      store,
		resolver:   resolver,
		facts:      facts,
		summarizer: summarizer,
		logger:     logging.ForService("landmark"),
	}
}

// GetOrCreate returns the catalog entry for name, resolving and creating it
// on first sight. Resolution failure is an error; summary generation is
// best effort and never blocks creation. Concurrent first-sight creation is
// settled by re-reading the row that won.
func (s *Service) GetOrCreate(ctx context.Context, name string) (*datastore.Landmark, error) {
	if name == "" {
		return nil, errors.Newf("landmark name must not be empty").
			Component("landmark").
			Category(errors.CategoryValidation).
			Build()
	}

	existing, err := s.store.GetLandmark(name)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, datastore.ErrLandmarkNotFound) {
		return nil, err
	}

	resolution, err := s.resolver.Resolve(ctx, name)
	if err != nil {
		if errors.Is(err, wikidata.ErrNoCoordinates) {
			return nil, errors.New(err).
				Component("landmark").
				Category(errors.CategoryNotFound).
				Context("name", name).
				Build()
		}
		return nil, err
	}

	created := &datastore.Landmark{
		Name:      name,
		Latitude:  resolution.Coordinates.Latitude,
		Longitude: resolution.Coordinates.Longitude,
	}
	if resolution.EntityID != "" {
		created.WikidataID = &resolution.EntityID
	}
	if summary := s.generateSummary(ctx, name); summary != "" {
		created.Summary = &summary
	}

	if err := s.store.CreateLandmark(created); err != nil {
		if errors.Is(err, datastore.ErrDuplicateLandmark) {
			return s.store.GetLandmark(name)
		}
		return nil, err
	}

	s.logger.Info("Landmark created", "name", name,
		"latitude", created.Latitude, "longitude", created.Longitude)
	return created, nil
}

// RefreshSummary regenerates the summary for an existing landmark. It is
// the only operation that rewrites a stored summary; coordinates are never
// touched.
func (s *Service) RefreshSummary(ctx context.Context, name string) (*datastore.Landmark, error) {
	stored, err := s.store.GetLandmark(name)
	if err != nil {
		return nil, err
	}

	summary := s.generateSummary(ctx, name)
	if summary == "" {
		return nil, errors.Newf("could not produce a summary for %s", name).
			Component("landmark").
			Category(errors.CategoryLLM).
			Context("name", name).
			Build()
	}

	stored.Summary = &summary
	if err := s.store.SaveLandmark(stored); err != nil {
		return nil, err
	}
	return stored, nil
}

// generateSummary runs the facts plus summarizer chain. Any failure is
// logged and reported as an empty summary.
func (s *Service) generateSummary(ctx context.Context, name string) string {
	if s.facts == nil || s.summarizer == nil {
		return ""
	}

	facts, err := s.facts.Fetch(ctx, name)
	if err != nil {
		s.logger.Warn("Facts lookup failed, proceeding without summary",
			"name", name, "error", err)
		return ""
	}

	summary, err := s.summarizer.GenerateSummary(ctx, name, facts)
	if err != nil {
		s.logger.Warn("Summary generation failed, proceeding without summary",
			"name", name, "error", err)
		return ""
	}
	return summary
}
