// Package trainer coordinates model training runs and records their
// lifecycle in the datastore.
package trainer

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/divyasajjan/landmark-finder/internal/errors"
)

// StatusComplete is the terminal status an external trainer reports for a
// finished run.
const StatusComplete = "Complete"

// Result is what an external trainer returns for a finished run.
type Result struct {
	Status               string
	FinalAccuracy        float64
	FinalLoss            float64
	TotalImagesProcessed int
	Message              string
}

// Trainer is the external training collaborator. Training always covers the
// full corpus; className identifies the class whose images triggered the
// run.
type Trainer interface {
	Train(ctx context.Context, className string) (*Result, error)
}

var imageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
}

// ScanDataset walks the corpus root and returns the recognized class names
// (folders containing at least one nonempty image file) and the total image
// count across all classes, sorted by class name.
func ScanDataset(root string) (classes []string, total int, err error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, 0, errors.New(err).
			Component("trainer").
			Category(errors.CategoryFileIO).
			FileContext(root, 0).
			Build()
	}

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		count, err := countImages(filepath.Join(root, entry.Name()))
		if err != nil {
			return nil, 0, err
		}
		if count == 0 {
			continue
		}
		classes = append(classes, entry.Name())
		total += count
	}

	sort.Strings(classes)
	return classes, total, nil
}

func countImages(folder string) (int, error) {
	entries, err := os.ReadDir(folder)
	if err != nil {
		return 0, errors.New(err).
			Component("trainer").
			Category(errors.CategoryFileIO).
			FileContext(folder, 0).
			Build()
	}

	count := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if !imageExtensions[strings.ToLower(filepath.Ext(entry.Name()))] {
			continue
		}
		info, err := entry.Info()
		if err != nil || info.Size() == 0 {
			continue
		}
		count++
	}
	return count, nil
}

func timePtr(t time.Time) *time.Time { return &t }
