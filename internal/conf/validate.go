package conf

import (
	"github.com/divyasajjan/landmark-finder/internal/errors"
)

// ValidateSettings checks the loaded settings for values the pipeline
// cannot operate with.
func ValidateSettings(settings *Settings) error {
	if settings.Datastore.Path == "" {
		return errors.Newf("datastore path must not be empty").
			Component("conf").
			Category(errors.CategoryValidation).
			Build()
	}
	if settings.Scraper.DataRoot == "" {
		return errors.Newf("scraper data root must not be empty").
			Component("conf").
			Category(errors.CategoryValidation).
			Build()
	}
	if settings.Scraper.TargetCount < 1 {
		return errors.Newf("scraper target count must be at least 1, got %d", settings.Scraper.TargetCount).
			Component("conf").
			Category(errors.CategoryValidation).
			Context("target_count", settings.Scraper.TargetCount).
			Build()
	}
	if settings.Scraper.MinDimension < 1 {
		return errors.Newf("scraper minimum image dimension must be at least 1, got %d", settings.Scraper.MinDimension).
			Component("conf").
			Category(errors.CategoryValidation).
			Context("min_dimension", settings.Scraper.MinDimension).
			Build()
	}
	if settings.Wikidata.SearchLimit < 1 {
		return errors.Newf("wikidata search limit must be at least 1, got %d", settings.Wikidata.SearchLimit).
			Component("conf").
			Category(errors.CategoryValidation).
			Context("search_limit", settings.Wikidata.SearchLimit).
			Build()
	}
	if settings.Trainer.Epochs < 1 {
		return errors.Newf("trainer epochs must be at least 1, got %d", settings.Trainer.Epochs).
			Component("conf").
			Category(errors.CategoryValidation).
			Context("epochs", settings.Trainer.Epochs).
			Build()
	}
	return nil
}
