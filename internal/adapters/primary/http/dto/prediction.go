package dto

import (
	"churn-prediction-service/internal/core/domain"
)

type TopRiskQuery struct {
	N int `form:"n,default=10" binding:"min=1"`
}

type ExportQuery struct {
	Encoding string `form:"encoding" binding:"omitempty,max=40"`
}

type PredictionResponse struct {
	CustomerID       string            `json:"customer_id"`
	ChurnProbability float64           `json:"churn_probability"`
	ChurnLabel       bool              `json:"churn_label"`
	Row              int               `json:"row"`
	Attributes       map[string]string `json:"attributes"`
}

type ListPredictionsResponse struct {
	Items   []PredictionResponse `json:"items"`
	Total   int                  `json:"total"`
	Columns []string             `json:"columns"`
}

type TopRiskResponse struct {
	Items     []PredictionResponse `json:"items"`
	Requested int                  `json:"requested"`
	Returned  int                  `json:"returned"`
}

type ModelArtifactResponse struct {
	Algorithm     string   `json:"algorithm"`
	FormatVersion int      `json:"format_version"`
	Features      []string `json:"features"`
	FeatureCount  int      `json:"feature_count"`
	ModelPath     string   `json:"model_path"`
	FeaturesPath  string   `json:"features_path"`
	Checksum      string   `json:"checksum"`
	LoadedAt      string   `json:"loaded_at"`
}

func ToPredictionResponse(table *domain.PredictionTable, rec domain.PredictionRecord) PredictionResponse {
	return PredictionResponse{
		CustomerID:       rec.CustomerID,
		ChurnProbability: rec.ChurnProbability,
		ChurnLabel:       rec.ChurnLabel,
		Row:              rec.Row,
		Attributes:       table.Attributes(rec),
	}
}

func ToPredictionResponses(table *domain.PredictionTable, records []domain.PredictionRecord) []PredictionResponse {
	items := make([]PredictionResponse, 0, len(records))
	for _, rec := range records {
		items = append(items, ToPredictionResponse(table, rec))
	}
	return items
}
