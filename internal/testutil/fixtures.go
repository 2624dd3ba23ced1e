package testutil

import (
	"strconv"

	"churn-prediction-service/internal/core/domain"
)

// Row is a compact fixture row: customer ID, probability and contract type.
type Row struct {
	ID       string
	Prob     float64
	Contract string
}

// NewPredictionTable builds a table shaped like the one the filesystem source
// returns: labels not yet derived.
func NewPredictionTable(rows ...Row) *domain.PredictionTable {
	table := &domain.PredictionTable{
		Columns:           []string{domain.DefaultKeyColumn, "Contract", domain.DefaultProbabilityColumn},
		KeyColumn:         domain.DefaultKeyColumn,
		ProbabilityColumn: domain.DefaultProbabilityColumn,
		LabelIndex:        -1,
	}
	for i, r := range rows {
		table.Records = append(table.Records, domain.PredictionRecord{
			Row:              i,
			CustomerID:       r.ID,
			ChurnProbability: r.Prob,
			Values:           []string{r.ID, r.Contract, strconv.FormatFloat(r.Prob, 'f', -1, 64)},
		})
	}
	return table
}

// ScenarioTable is the three-customer table used across the service tests.
func ScenarioTable() *domain.PredictionTable {
	return NewPredictionTable(
		Row{ID: "C1", Prob: 0.92, Contract: "Month-to-month"},
		Row{ID: "C2", Prob: 0.10, Contract: "Two year"},
		Row{ID: "C3", Prob: 0.51, Contract: "One year"},
	)
}

// NewModelArtifact returns a small artifact for tests.
func NewModelArtifact() *domain.ModelArtifact {
	return &domain.ModelArtifact{
		Classifier: domain.Classifier{
			Version:   domain.ClassifierFormatVersion,
			Algorithm: "RandomForestClassifier",
			Payload:   []byte{0x01, 0x02, 0x03},
		},
		Features:     []string{"tenure", "MonthlyCharges", "Contract_Two year"},
		ModelPath:    "models/model.gob",
		FeaturesPath: "models/model_features.gob",
		Checksum:     "abc123",
	}
}
