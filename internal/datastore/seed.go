package datastore

import (
	"encoding/json"
	"log/slog"
	"os"

	"github.com/divyasajjan/landmark-finder/internal/errors"
	"github.com/divyasajjan/landmark-finder/internal/logging"
)

// seedCoordinates is the on-disk shape of one seed file entry.
type seedCoordinates struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

var seedLogger *slog.Logger

func init() {
	seedLogger = logging.ForService("datastore.seed")
}

// Seed loads a {landmark_name: {lat, lon}} mapping file into the catalog.
// Names already present are skipped, never overwritten: the pipeline does
// not delete or mutate existing landmark coordinates. Returns the number
// of landmarks created.
func Seed(store Interface, path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, errors.New(err).
			Component("datastore").
			Category(errors.CategoryFileIO).
			FileContext(path, 0).
			Context("operation", "read_seed_file").
			Build()
	}

	var entries map[string]seedCoordinates
	if err := json.Unmarshal(data, &entries); err != nil {
		return 0, errors.New(err).
			Component("datastore").
			Category(errors.CategoryValidation).
			FileContext(path, int64(len(data))).
			Context("operation", "parse_seed_file").
			Build()
	}

	created := 0
	for name, coords := range entries {
		if _, err := store.GetLandmark(name); err == nil {
			seedLogger.Debug("Seed entry already in catalog, skipping", "landmark", name)
			continue
		} else if !errors.Is(err, ErrLandmarkNotFound) {
			return created, err
		}

		landmark := &Landmark{
			Name:      name,
			Latitude:  coords.Lat,
			Longitude: coords.Lon,
		}
		if err := store.CreateLandmark(landmark); err != nil {
			if errors.Is(err, ErrDuplicateLandmark) {
				continue
			}
			return created, err
		}
		created++
		seedLogger.Info("Seeded landmark",
			"landmark", name,
			"latitude", coords.Lat,
			"longitude", coords.Lon)
	}

	return created, nil
}
