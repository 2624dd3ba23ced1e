package testutil

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"churn-prediction-service/internal/core/domain"
)

// MockArtifactSource is a mock of ArtifactSource.
type MockArtifactSource struct {
	mock.Mock
}

func (m *MockArtifactSource) LoadArtifact(ctx context.Context) (*domain.ModelArtifact, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ModelArtifact), args.Error(1)
}

// MockPredictionSource is a mock of PredictionSource.
type MockPredictionSource struct {
	mock.Mock
}

func (m *MockPredictionSource) LoadPredictions(ctx context.Context) (*domain.PredictionTable, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PredictionTable), args.Error(1)
}

// MockPredictionEncoder is a mock of PredictionEncoder.
type MockPredictionEncoder struct {
	mock.Mock
}

func (m *MockPredictionEncoder) EncodePredictions(table *domain.PredictionTable) ([]byte, error) {
	args := m.Called(table)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

// MockMetricsRecorder is a mock of MetricsRecorder.
type MockMetricsRecorder struct {
	mock.Mock
}

func (m *MockMetricsRecorder) ObserveLoad(source string, elapsed time.Duration, err error) {
	m.Called(source, elapsed, err)
}

func (m *MockMetricsRecorder) ObserveQuery(operation, outcome string) {
	m.Called(operation, outcome)
}
