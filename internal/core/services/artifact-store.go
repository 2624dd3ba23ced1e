package services

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"

	"churn-prediction-service/internal/core/domain"
	ports "churn-prediction-service/internal/core/ports/output"
)

// ArtifactStore holds the classifier and feature list for the process.
type ArtifactStore struct {
	source  ports.ArtifactSource
	metrics ports.MetricsRecorder
	timeout time.Duration
	state   memo[*domain.ModelArtifact]
}

// NewArtifactStore creates a store that reads from source on first use.
// A nil metrics recorder discards observations.
func NewArtifactStore(source ports.ArtifactSource, metrics ports.MetricsRecorder, timeout time.Duration) *ArtifactStore {
	if metrics == nil {
		metrics = ports.NopRecorder{}
	}
	return &ArtifactStore{source: source, metrics: metrics, timeout: timeout}
}

// Get returns the model artifact, loading it on the first call. Every later
// call returns the same pointer, or the same load error.
func (s *ArtifactStore) Get(ctx context.Context) (*domain.ModelArtifact, error) {
	return s.state.get(func() (*domain.ModelArtifact, error) {
		loadCtx, cancel := loadContext(ctx, s.timeout)
		defer cancel()

		start := time.Now()
		artifact, err := s.source.LoadArtifact(loadCtx)
		elapsed := time.Since(start)
		s.metrics.ObserveLoad(ports.SourceArtifacts, elapsed, err)
		if err != nil {
			log.WithError(err).Error("load model artifact failed")
			return nil, err
		}

		log.WithFields(log.Fields{
			"model_path":    artifact.ModelPath,
			"features_path": artifact.FeaturesPath,
			"algorithm":     artifact.Classifier.Algorithm,
			"features":      artifact.FeatureCount(),
			"latency_ms":    elapsed.Milliseconds(),
		}).Info("model artifact loaded")
		return artifact, nil
	})
}

// Loaded reports whether the artifact is in memory.
func (s *ArtifactStore) Loaded() bool {
	return s.state.loaded()
}
