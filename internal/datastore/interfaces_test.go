package datastore

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/divyasajjan/landmark-finder/internal/conf"
)

func openTestStore(t *testing.T) *SQLiteStore {
	t.Helper()

	settings := &conf.Settings{}
	settings.Datastore.Path = filepath.Join(t.TempDir(), "landmarks.db")

	store := &SQLiteStore{Settings: settings}
	require.NoError(t, store.Open())
	t.Cleanup(func() { _ = store.Close() })

	return store
}

func TestCreateAndGetLandmark(t *testing.T) {
	store := openTestStore(t)

	landmark := &Landmark{Name: "eiffel_tower", Latitude: 48.8584, Longitude: 2.2945}
	require.NoError(t, store.CreateLandmark(landmark))
	assert.NotZero(t, landmark.ID)

	got, err := store.GetLandmark("eiffel_tower")
	require.NoError(t, err)
	assert.Equal(t, landmark.ID, got.ID)
	assert.InDelta(t, 48.8584, got.Latitude, 1e-9)
	assert.InDelta(t, 2.2945, got.Longitude, 1e-9)
	assert.Nil(t, got.Summary)
}

func TestGetLandmarkNotFound(t *testing.T) {
	store := openTestStore(t)

	_, err := store.GetLandmark("atlantis")
	assert.ErrorIs(t, err, ErrLandmarkNotFound)
}

func TestCreateLandmarkDuplicateName(t *testing.T) {
	store := openTestStore(t)

	require.NoError(t, store.CreateLandmark(&Landmark{Name: "big_ben", Latitude: 51.5007, Longitude: -0.1246}))

	err := store.CreateLandmark(&Landmark{Name: "big_ben", Latitude: 0, Longitude: 0})
	assert.ErrorIs(t, err, ErrDuplicateLandmark)

	// The original row must be untouched
	got, err := store.GetLandmark("big_ben")
	require.NoError(t, err)
	assert.InDelta(t, 51.5007, got.Latitude, 1e-9)
}

func TestSaveLandmarkAttachesSummary(t *testing.T) {
	store := openTestStore(t)

	landmark := &Landmark{Name: "colosseum", Latitude: 41.8902, Longitude: 12.4922}
	require.NoError(t, store.CreateLandmark(landmark))

	summary := "An ancient amphitheatre in the centre of Rome."
	landmark.Summary = &summary
	require.NoError(t, store.SaveLandmark(landmark))

	got, err := store.GetLandmark("colosseum")
	require.NoError(t, err)
	require.NotNil(t, got.Summary)
	assert.Equal(t, summary, *got.Summary)
}

func TestLandmarkImages(t *testing.T) {
	store := openTestStore(t)

	landmark := &Landmark{Name: "taj_mahal", Latitude: 27.1751, Longitude: 78.0421}
	require.NoError(t, store.CreateLandmark(landmark))

	require.NoError(t, store.SaveLandmarkImage(&LandmarkImage{
		LandmarkID:   landmark.ID,
		RelativePath: "taj_mahal/0.jpg",
		Source:       ImageSourceScraped,
	}))
	require.NoError(t, store.BulkCreateLandmarkImages([]LandmarkImage{
		{LandmarkID: landmark.ID, RelativePath: "taj_mahal/1.jpg", Source: ImageSourceUpload},
		{LandmarkID: landmark.ID, RelativePath: "taj_mahal/2.jpg", Source: ImageSourceUpload},
	}))

	images, err := store.GetLandmarkImages(landmark.ID)
	require.NoError(t, err)
	assert.Len(t, images, 3)

	require.NoError(t, store.DeleteLandmarkImage(landmark.ID, "taj_mahal/1.jpg"))
	images, err = store.GetLandmarkImages(landmark.ID)
	require.NoError(t, err)
	assert.Len(t, images, 2)
}

func TestBulkCreateLandmarkImagesEmpty(t *testing.T) {
	store := openTestStore(t)
	assert.NoError(t, store.BulkCreateLandmarkImages(nil))
}

func TestTrainingRunHistory(t *testing.T) {
	store := openTestStore(t)

	first := &TrainingRun{ModelName: "landmark_resnet18", Epochs: 5, Status: RunStatusProcessing}
	require.NoError(t, store.CreateTrainingRun(first))

	first.Status = RunStatusFailed
	first.Message = "insufficient image data"
	require.NoError(t, store.SaveTrainingRun(first))

	second := &TrainingRun{ModelName: "landmark_resnet18", Epochs: 5, Status: RunStatusProcessing}
	require.NoError(t, store.CreateTrainingRun(second))

	runs, err := store.GetTrainingRuns(10)
	require.NoError(t, err)
	require.Len(t, runs, 2)

	var failed, processing int
	for i := range runs {
		switch runs[i].Status {
		case RunStatusFailed:
			failed++
			assert.Equal(t, "insufficient image data", runs[i].Message)
		case RunStatusProcessing:
			processing++
		}
	}
	assert.Equal(t, 1, failed)
	assert.Equal(t, 1, processing)
}

func TestSeed(t *testing.T) {
	store := openTestStore(t)

	// big_ben already exists with its canonical coordinates
	require.NoError(t, store.CreateLandmark(&Landmark{Name: "big_ben", Latitude: 51.5007, Longitude: -0.1246}))

	seedPath := filepath.Join(t.TempDir(), "landmark_locations.json")
	seedJSON := `{
		"eiffel_tower": {"lat": 48.8584, "lon": 2.2945},
		"big_ben": {"lat": 0, "lon": 0}
	}`
	require.NoError(t, os.WriteFile(seedPath, []byte(seedJSON), 0o644))

	created, err := Seed(store, seedPath)
	require.NoError(t, err)
	assert.Equal(t, 1, created, "only the new landmark should be created")

	// Existing coordinates are never overwritten by seeding
	got, err := store.GetLandmark("big_ben")
	require.NoError(t, err)
	assert.InDelta(t, 51.5007, got.Latitude, 1e-9)

	added, err := store.GetLandmark("eiffel_tower")
	require.NoError(t, err)
	assert.InDelta(t, 48.8584, added.Latitude, 1e-9)
}

func TestSeedRejectsMalformedFile(t *testing.T) {
	store := openTestStore(t)

	seedPath := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(seedPath, []byte("{not json"), 0o644))

	_, err := Seed(store, seedPath)
	assert.Error(t, err)
}
