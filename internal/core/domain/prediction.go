package domain

import (
	"fmt"
	"math"
)

const (
	// ChurnThreshold is inclusive: a probability equal to it is labelled churn.
	ChurnThreshold = 0.5

	DefaultKeyColumn         = "customerID"
	DefaultProbabilityColumn = "churn_probability"
	DefaultLabelColumn       = "Churn"

	HistogramBins = 20
)

// DeriveChurnLabel maps a probability to the binary churn label.
func DeriveChurnLabel(probability float64) bool {
	return probability >= ChurnThreshold
}

// LabelValue is the exported cell text for a churn label.
func LabelValue(label bool) string {
	if label {
		return "1"
	}
	return "0"
}

// ValidateProbability rejects NaN, infinities and values outside [0, 1].
func ValidateProbability(p float64) error {
	if math.IsNaN(p) || math.IsInf(p, 0) {
		return fmt.Errorf("probability %v is not a finite number", p)
	}
	if p < 0 || p > 1 {
		return fmt.Errorf("probability %v is outside [0, 1]", p)
	}
	return nil
}

// PredictionRecord is one customer row. Values holds every cell of the
// source row in header order, as read; callers must treat it as read-only.
type PredictionRecord struct {
	Row              int
	CustomerID       string
	ChurnProbability float64
	ChurnLabel       bool
	Values           []string
}

// PredictionTable is the loaded predictions file. It is not mutated once the
// churn labels have been derived.
type PredictionTable struct {
	Columns           []string
	KeyColumn         string
	ProbabilityColumn string
	LabelColumn       string
	// LabelIndex is the position of LabelColumn in Columns, or -1 when the
	// label is appended after the source columns on export.
	LabelIndex int
	Records    []PredictionRecord
}

// Len returns the number of records.
func (t *PredictionTable) Len() int {
	return len(t.Records)
}

// ColumnIndex returns the position of name in Columns, or -1.
func (t *PredictionTable) ColumnIndex(name string) int {
	for i, c := range t.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// ExportColumns is the header written on export: the source columns followed
// by the label column unless the source already carried it.
func (t *PredictionTable) ExportColumns() []string {
	cols := make([]string, 0, len(t.Columns)+1)
	cols = append(cols, t.Columns...)
	if t.LabelIndex < 0 {
		cols = append(cols, t.LabelColumn)
	}
	return cols
}

// ExportRow returns the cells written for rec, aligned with ExportColumns.
func (t *PredictionTable) ExportRow(rec PredictionRecord) []string {
	row := make([]string, 0, len(rec.Values)+1)
	row = append(row, rec.Values...)
	if t.LabelIndex < 0 {
		row = append(row, LabelValue(rec.ChurnLabel))
	}
	return row
}

// Attributes returns rec's cells keyed by column name.
func (t *PredictionTable) Attributes(rec PredictionRecord) map[string]string {
	attrs := make(map[string]string, len(t.Columns))
	for i, c := range t.Columns {
		if i < len(rec.Values) {
			attrs[c] = rec.Values[i]
		}
	}
	return attrs
}

type HistogramBin struct {
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
	Count int     `json:"count"`
}

// PredictionSummary backs the distribution and churn-vs-retained views.
type PredictionSummary struct {
	Total           int            `json:"total"`
	Churned         int            `json:"churned"`
	Retained        int            `json:"retained"`
	MeanProbability float64        `json:"mean_probability"`
	DuplicateKeys   int            `json:"duplicate_keys"`
	Histogram       []HistogramBin `json:"histogram"`
}
