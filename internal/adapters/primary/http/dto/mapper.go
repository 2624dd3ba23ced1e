package dto

import (
	"time"

	"churn-prediction-service/internal/core/domain"
)

func ToModelArtifactResponse(a *domain.ModelArtifact) ModelArtifactResponse {
	return ModelArtifactResponse{
		Algorithm:     a.Classifier.Algorithm,
		FormatVersion: a.Classifier.Version,
		Features:      a.Features,
		FeatureCount:  a.FeatureCount(),
		ModelPath:     a.ModelPath,
		FeaturesPath:  a.FeaturesPath,
		Checksum:      a.Checksum,
		LoadedAt:      a.LoadedAt.Format(time.RFC3339),
	}
}
