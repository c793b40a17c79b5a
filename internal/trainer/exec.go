package trainer

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os/exec"
	"strconv"

	"github.com/divyasajjan/landmark-finder/internal/conf"
	"github.com/divyasajjan/landmark-finder/internal/errors"
	"github.com/divyasajjan/landmark-finder/internal/logging"
)

// ExecTrainer runs the configured external trainer executable. The command
// receives the corpus root, model name, epoch count and trigger class as
// arguments and writes the run outcome as JSON on stdout.
type ExecTrainer struct {
	command   string
	dataRoot  string
	modelName string
	epochs    int
	logger    *slog.Logger
}

type execReport struct {
	Status        string  `json:"status"`
	FinalAccuracy float64 `json:"final_accuracy"`
	FinalLoss     float64 `json:"final_loss"`
	TotalImages   int     `json:"total_images_processed"`
	Message       string  `json:"message"`
}

// NewExecTrainer creates an ExecTrainer from the given settings. It fails
// when no trainer command is configured.
func NewExecTrainer(settings *conf.Settings) (*ExecTrainer, error) {
	if settings.Trainer.Command == "" {
		return nil, errors.Newf("no trainer command configured").
			Component("trainer").
			Category(errors.CategoryConfiguration).
			Build()
	}
	return &ExecTrainer{
		command:   settings.Trainer.Command,
		dataRoot:  settings.Scraper.DataRoot,
		modelName: settings.Trainer.ModelName,
		epochs:    settings.Trainer.Epochs,
		logger:    logging.ForService("trainer.exec"),
	}, nil
}

// Train invokes the external trainer and parses its JSON report.
func (t *ExecTrainer) Train(ctx context.Context, className string) (*Result, error) {
	cmd := exec.CommandContext(ctx, t.command,
		t.dataRoot, t.modelName, strconv.Itoa(t.epochs), className)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	t.logger.Info("Invoking external trainer", "command", t.command, "class", className)
	if err := cmd.Run(); err != nil {
		return nil, errors.New(err).
			Component("trainer").
			Category(errors.CategoryTraining).
			Context("command", t.command).
			Context("stderr", stderr.String()).
			Build()
	}

	var report execReport
	if err := json.Unmarshal(stdout.Bytes(), &report); err != nil {
		return nil, errors.New(err).
			Component("trainer").
			Category(errors.CategoryTraining).
			Context("operation", "parse_report").
			Build()
	}
	if report.Status != StatusComplete {
		return nil, errors.Newf("trainer reported status %q: %s", report.Status, report.Message).
			Component("trainer").
			Category(errors.CategoryTraining).
			Build()
	}

	return &Result{
		Status:               report.Status,
		FinalAccuracy:        report.FinalAccuracy,
		FinalLoss:            report.FinalLoss,
		TotalImagesProcessed: report.TotalImages,
		Message:              report.Message,
	}, nil
}
