package filesystem

import (
	"context"
	"fmt"

	"churn-prediction-service/internal/core/domain"
)

// PredictionReader loads the predictions CSV and encodes tables back into
// the same format for export.
type PredictionReader struct {
	path              string
	keyColumn         string
	probabilityColumn string
}

func NewPredictionReader(path, keyColumn, probabilityColumn string) *PredictionReader {
	if keyColumn == "" {
		keyColumn = domain.DefaultKeyColumn
	}
	if probabilityColumn == "" {
		probabilityColumn = domain.DefaultProbabilityColumn
	}
	return &PredictionReader{path: path, keyColumn: keyColumn, probabilityColumn: probabilityColumn}
}

func (r *PredictionReader) LoadPredictions(ctx context.Context) (*domain.PredictionTable, error) {
	f, err := openFile(r.path, domain.ErrPredictionsNotFound)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	table, err := ParseCSV(ctxReader{ctx: ctx, r: f}, r.keyColumn, r.probabilityColumn)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", r.path, err)
	}
	return table, nil
}

func (r *PredictionReader) EncodePredictions(table *domain.PredictionTable) ([]byte, error) {
	return EncodeCSV(table)
}
