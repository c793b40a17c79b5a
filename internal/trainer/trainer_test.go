package trainer

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/divyasajjan/landmark-finder/internal/conf"
	"github.com/divyasajjan/landmark-finder/internal/datastore"
	"github.com/divyasajjan/landmark-finder/internal/errors"
)

type stubTrainer struct {
	result *Result
	err    error
	calls  int
}

func (s *stubTrainer) Train(_ context.Context, _ string) (*Result, error) {
	s.calls++
	return s.result, s.err
}

func writeImages(t *testing.T, root, class string, names ...string) {
	t.Helper()
	dir := filepath.Join(root, class)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	for _, name := range names {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("jpegdata"), 0o644))
	}
}

func newTestCoordinator(t *testing.T, trainer Trainer) (*Coordinator, datastore.Interface, string) {
	t.Helper()

	settings := &conf.Settings{}
	settings.Datastore.Path = filepath.Join(t.TempDir(), "landmarks.db")
	settings.Scraper.DataRoot = t.TempDir()
	settings.Trainer.ModelName = "landmark_resnet18"
	settings.Trainer.Epochs = 5

	store := &datastore.SQLiteStore{Settings: settings}
	require.NoError(t, store.Open())
	t.Cleanup(func() { _ = store.Close() })

	return NewCoordinator(settings, store, trainer), store, settings.Scraper.DataRoot
}

func TestScanDataset(t *testing.T) {
	root := t.TempDir()
	writeImages(t, root, "eiffel_tower", "0.jpg", "1.jpg")
	writeImages(t, root, "big_ben", "0.jpg")
	writeImages(t, root, "empty_class")
	require.NoError(t, os.WriteFile(filepath.Join(root, "stray.txt"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "big_ben", "notes.txt"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "big_ben", "zero.jpg"), nil, 0o644))

	classes, total, err := ScanDataset(root)
	require.NoError(t, err)
	assert.Equal(t, []string{"big_ben", "eiffel_tower"}, classes)
	assert.Equal(t, 3, total)
}

func TestScanDatasetMissingRoot(t *testing.T) {
	_, _, err := ScanDataset(filepath.Join(t.TempDir(), "absent"))
	require.Error(t, err)
}

func TestRunSuccess(t *testing.T) {
	stub := &stubTrainer{result: &Result{
		Status:               StatusComplete,
		FinalAccuracy:        0.93,
		FinalLoss:            0.21,
		TotalImagesProcessed: 4,
		Message:              "trained 2 classes",
	}}
	c, store, root := newTestCoordinator(t, stub)
	writeImages(t, root, "eiffel_tower", "0.jpg", "1.jpg")
	writeImages(t, root, "big_ben", "0.jpg", "1.jpg")

	run, err := c.Run(context.Background(), "eiffel_tower")
	require.NoError(t, err)
	require.NotNil(t, run)
	assert.Equal(t, datastore.RunStatusSuccess, run.Status)
	require.NotNil(t, run.Accuracy)
	assert.InDelta(t, 0.93, *run.Accuracy, 1e-9)
	require.NotNil(t, run.ImageCount)
	assert.Equal(t, 4, *run.ImageCount)
	require.NotNil(t, run.FinishedAt)
	assert.Equal(t, 1, stub.calls)

	history, err := store.GetTrainingRuns(10)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, datastore.RunStatusSuccess, history[0].Status)
}

func TestRunFailsWithTooFewImages(t *testing.T) {
	stub := &stubTrainer{}
	c, store, root := newTestCoordinator(t, stub)
	writeImages(t, root, "eiffel_tower", "0.jpg")

	run, err := c.Run(context.Background(), "eiffel_tower")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "at least 2")
	assert.Equal(t, 0, stub.calls)

	require.NotNil(t, run)
	assert.Equal(t, datastore.RunStatusFailed, run.Status)
	require.NotNil(t, run.FinishedAt)

	history, err := store.GetTrainingRuns(10)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, datastore.RunStatusFailed, history[0].Status)
}

func TestRunFailsForUnknownClass(t *testing.T) {
	stub := &stubTrainer{}
	c, _, root := newTestCoordinator(t, stub)
	writeImages(t, root, "big_ben", "0.jpg", "1.jpg")

	run, err := c.Run(context.Background(), "atlantis")
	require.Error(t, err)
	assert.Equal(t, datastore.RunStatusFailed, run.Status)
	assert.Equal(t, 0, stub.calls)

	var enhanced *errors.EnhancedError
	require.True(t, errors.As(err, &enhanced))
	assert.Equal(t, string(errors.CategoryValidation), enhanced.GetCategory())
}

func TestRunFailsOnIncompleteTrainerReport(t *testing.T) {
	stub := &stubTrainer{result: &Result{
		Status:  "error",
		Message: "Not enough data to create a validation split",
	}}
	c, store, root := newTestCoordinator(t, stub)
	writeImages(t, root, "eiffel_tower", "0.jpg", "1.jpg")

	run, err := c.Run(context.Background(), "eiffel_tower")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error")
	assert.Contains(t, err.Error(), "validation split")
	assert.Equal(t, 1, stub.calls)

	require.NotNil(t, run)
	assert.Equal(t, datastore.RunStatusFailed, run.Status)
	assert.Nil(t, run.Accuracy)
	assert.Nil(t, run.ImageCount)
	require.NotNil(t, run.FinishedAt)

	history, err := store.GetTrainingRuns(10)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, datastore.RunStatusFailed, history[0].Status)
}

func TestRunPropagatesTrainerError(t *testing.T) {
	stub := &stubTrainer{err: errors.NewStd("gpu on fire")}
	c, store, root := newTestCoordinator(t, stub)
	writeImages(t, root, "eiffel_tower", "0.jpg", "1.jpg")

	run, err := c.Run(context.Background(), "eiffel_tower")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "gpu on fire")
	assert.Equal(t, datastore.RunStatusFailed, run.Status)
	assert.NotEmpty(t, run.Message)

	history, err := store.GetTrainingRuns(10)
	require.NoError(t, err)
	require.Len(t, history, 1)
}
