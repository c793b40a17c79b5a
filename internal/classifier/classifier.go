// Package classifier exposes the trained landmark recognizer behind an
// explicit lifecycle.
package classifier

import (
	"context"
	"log/slog"
	"sync"

	"github.com/divyasajjan/landmark-finder/internal/errors"
	"github.com/divyasajjan/landmark-finder/internal/logging"
)

// Prediction is a single classification outcome.
type Prediction struct {
	Label      string
	Confidence float64
}

// Predictor is the model backend. Implementations must be safe for
// concurrent use once initialized.
type Predictor interface {
	Predict(ctx context.Context, imageData []byte) (*Prediction, error)
}

// Service wraps an injected Predictor behind an explicit Initialize step so
// callers fail fast instead of tripping over a half-loaded model.
type Service struct {
	predictor   Predictor
	modelName   string
	initialized bool
	mu          sync.RWMutex
	logger      *slog.Logger
}

// NewService creates an uninitialized classifier service.
func NewService(modelName string, predictor Predictor) *Service {
	return &Service{
		predictor: predictor,
		modelName: modelName,
		logger:    logging.ForService("classifier"),
	}
}

// Initialize prepares the service for classification. It must be called
// before Classify and is safe to call more than once.
func (s *Service) Initialize() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.initialized {
		return nil
	}
	if s.predictor == nil {
		return errors.Newf("no predictor configured for model %s", s.modelName).
			Component("classifier").
			Category(errors.CategoryModelInit).
			Build()
	}

	s.initialized = true
	s.logger.Info("Classifier initialized", "model", s.modelName)
	return nil
}

// Ready reports whether Initialize has completed.
func (s *Service) Ready() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.initialized
}

// Classify runs the model on the image payload.
func (s *Service) Classify(ctx context.Context, imageData []byte) (*Prediction, error) {
	if !s.Ready() {
		return nil, errors.Newf("classifier used before initialization").
			Component("classifier").
			Category(errors.CategoryModelInit).
			Build()
	}
	if len(imageData) == 0 {
		return nil, errors.Newf("empty image payload").
			Component("classifier").
			Category(errors.CategoryValidation).
			Build()
	}

	prediction, err := s.predictor.Predict(ctx, imageData)
	if err != nil {
		return nil, errors.New(err).
			Component("classifier").
			Category(errors.CategoryGeneric).
			Context("model", s.modelName).
			Build()
	}
	return prediction, nil
}
