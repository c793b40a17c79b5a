package trainer

import (
	"context"
	"log/slog"
	"slices"
	"time"

	"github.com/divyasajjan/landmark-finder/internal/conf"
	"github.com/divyasajjan/landmark-finder/internal/datastore"
	"github.com/divyasajjan/landmark-finder/internal/errors"
	"github.com/divyasajjan/landmark-finder/internal/logging"
)

// Coordinator drives a training run end to end: it validates the dataset,
// records a processing run, invokes the trainer and persists the outcome.
type Coordinator struct {
	store     datastore.Interface
	trainer   Trainer
	dataRoot  string
	modelName string
	epochs    int
	logger    *slog.Logger
}

// NewCoordinator creates a Coordinator from the given settings.
func NewCoordinator(settings *conf.Settings, store datastore.Interface, trainer Trainer) *Coordinator {
	return &Coordinator{
		store:     store,
		trainer:   trainer,
		dataRoot:  settings.Scraper.DataRoot,
		modelName: settings.Trainer.ModelName,
		epochs:    settings.Trainer.Epochs,
		logger:    logging.ForService("trainer"),
	}
}

// Run executes one training run triggered by landmarkName. The run record
// moves from processing to success or failed and is persisted at every
// transition. The external trainer retrains over the entire corpus root, so
// the recorded image count covers all classes, not just the trigger class.
func (c *Coordinator) Run(ctx context.Context, landmarkName string) (*datastore.TrainingRun, error) {
	run := &datastore.TrainingRun{
		ModelName: c.modelName,
		Epochs:    c.epochs,
		Status:    datastore.RunStatusProcessing,
		StartedAt: time.Now(),
	}
	if err := c.store.CreateTrainingRun(run); err != nil {
		return nil, err
	}
	c.logger.Info("Training run started", "run_id", run.ID, "landmark", landmarkName)

	classes, total, err := ScanDataset(c.dataRoot)
	if err != nil {
		return run, c.fail(run, err)
	}

	if !slices.Contains(classes, landmarkName) {
		err := errors.Newf("class %s has no usable images under %s", landmarkName, c.dataRoot).
			Component("trainer").
			Category(errors.CategoryValidation).
			Context("landmark", landmarkName).
			Build()
		return run, c.fail(run, err)
	}
	if total < 2 {
		err := errors.Newf("corpus has %d images, need at least 2 to train", total).
			Component("trainer").
			Category(errors.CategoryValidation).
			Build()
		return run, c.fail(run, err)
	}

	result, err := c.trainer.Train(ctx, landmarkName)
	if err != nil {
		wrapped := errors.New(err).
			Component("trainer").
			Category(errors.CategoryTraining).
			Context("landmark", landmarkName).
			Build()
		return run, c.fail(run, wrapped)
	}
	if result.Status != StatusComplete {
		err := errors.Newf("trainer reported status %q: %s", result.Status, result.Message).
			Component("trainer").
			Category(errors.CategoryTraining).
			Context("landmark", landmarkName).
			Build()
		return run, c.fail(run, err)
	}

	run.Status = datastore.RunStatusSuccess
	run.ImageCount = &result.TotalImagesProcessed
	run.Accuracy = &result.FinalAccuracy
	run.Loss = &result.FinalLoss
	run.Message = result.Message
	run.FinishedAt = timePtr(time.Now())
	if err := c.store.SaveTrainingRun(run); err != nil {
		return run, err
	}

	c.logger.Info("Training run finished", "run_id", run.ID,
		"accuracy", result.FinalAccuracy, "loss", result.FinalLoss,
		"images", result.TotalImagesProcessed)
	return run, nil
}

// fail marks the run failed with the cause and returns the original error.
// A save failure is logged but never masks the training error.
func (c *Coordinator) fail(run *datastore.TrainingRun, cause error) error {
	run.Status = datastore.RunStatusFailed
	run.Message = cause.Error()
	run.FinishedAt = timePtr(time.Now())
	if err := c.store.SaveTrainingRun(run); err != nil {
		c.logger.Error("Failed to persist failed run", "run_id", run.ID, "error", err)
	}
	return cause
}
