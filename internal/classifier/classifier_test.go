package classifier

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubPredictor struct {
	prediction *Prediction
	err        error
	calls      int
}

func (s *stubPredictor) Predict(_ context.Context, _ []byte) (*Prediction, error) {
	s.calls++
	return s.prediction, s.err
}

func TestClassifyBeforeInitializeFails(t *testing.T) {
	s := NewService("landmark_resnet18", &stubPredictor{})

	_, err := s.Classify(context.Background(), []byte("img"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "before initialization")
	assert.False(t, s.Ready())
}

func TestInitializeRequiresPredictor(t *testing.T) {
	s := NewService("landmark_resnet18", nil)
	require.Error(t, s.Initialize())
	assert.False(t, s.Ready())
}

func TestInitializeIsIdempotent(t *testing.T) {
	s := NewService("landmark_resnet18", &stubPredictor{})
	require.NoError(t, s.Initialize())
	require.NoError(t, s.Initialize())
	assert.True(t, s.Ready())
}

func TestClassifyDelegatesToPredictor(t *testing.T) {
	stub := &stubPredictor{prediction: &Prediction{Label: "eiffel_tower", Confidence: 0.97}}
	s := NewService("landmark_resnet18", stub)
	require.NoError(t, s.Initialize())

	p, err := s.Classify(context.Background(), []byte("img"))
	require.NoError(t, err)
	assert.Equal(t, "eiffel_tower", p.Label)
	assert.InDelta(t, 0.97, p.Confidence, 1e-9)
	assert.Equal(t, 1, stub.calls)
}

func TestClassifyRejectsEmptyPayload(t *testing.T) {
	stub := &stubPredictor{}
	s := NewService("landmark_resnet18", stub)
	require.NoError(t, s.Initialize())

	_, err := s.Classify(context.Background(), nil)
	require.Error(t, err)
	assert.Equal(t, 0, stub.calls)
}
