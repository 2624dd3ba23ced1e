package ports

import (
	"context"

	"churn-prediction-service/internal/core/domain"
)

// ArtifactSource reads the classifier and its feature list from storage.
type ArtifactSource interface {
	LoadArtifact(ctx context.Context) (*domain.ModelArtifact, error)
}

// PredictionSource reads the precomputed predictions table. Implementations
// fill Columns, KeyColumn, ProbabilityColumn and each record's Row,
// CustomerID, ChurnProbability and Values; labels are derived by the caller.
type PredictionSource interface {
	LoadPredictions(ctx context.Context) (*domain.PredictionTable, error)
}

// PredictionEncoder serializes a table in the same delimited format the
// PredictionSource reads.
type PredictionEncoder interface {
	EncodePredictions(table *domain.PredictionTable) ([]byte, error)
}
