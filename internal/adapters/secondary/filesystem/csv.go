package filesystem

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"churn-prediction-service/internal/core/domain"
)

const utf8BOM = "\ufeff"

// ParseCSV reads a comma-separated predictions table with a header row.
// keyColumn and probabilityColumn must be present; every other column is
// carried through untouched.
func ParseCSV(r io.Reader, keyColumn, probabilityColumn string) (*domain.PredictionTable, error) {
	cr := csv.NewReader(r)

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: missing header row", domain.ErrPredictionsMalformed)
		}
		return nil, readError(err, "header")
	}
	header[0] = strings.TrimPrefix(header[0], utf8BOM)

	table := &domain.PredictionTable{
		Columns:           header,
		KeyColumn:         keyColumn,
		ProbabilityColumn: probabilityColumn,
		LabelIndex:        -1,
	}
	keyIdx := table.ColumnIndex(keyColumn)
	if keyIdx < 0 {
		return nil, fmt.Errorf("%w: missing key column %q", domain.ErrPredictionsMalformed, keyColumn)
	}
	probIdx := table.ColumnIndex(probabilityColumn)
	if probIdx < 0 {
		return nil, fmt.Errorf("%w: missing probability column %q", domain.ErrPredictionsMalformed, probabilityColumn)
	}

	for row := 0; ; row++ {
		values, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, readError(err, fmt.Sprintf("row %d", row+1))
		}

		cell := strings.TrimSpace(values[probIdx])
		p, err := strconv.ParseFloat(cell, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: row %d: %s %q is not a number",
				domain.ErrPredictionsMalformed, row+1, probabilityColumn, values[probIdx])
		}

		table.Records = append(table.Records, domain.PredictionRecord{
			Row:              row,
			CustomerID:       values[keyIdx],
			ChurnProbability: p,
			Values:           values,
		})
	}
	return table, nil
}

// readError classifies a csv read failure. A cancelled or expired load
// context is passed through; syntax and I/O failures are malformed input.
func readError(err error, where string) error {
	if isContextError(err) {
		return fmt.Errorf("read %s: %w", where, err)
	}
	return fmt.Errorf("%w: %s: %v", domain.ErrPredictionsMalformed, where, err)
}

// EncodeCSV writes table with its derived label column using the rules
// ParseCSV reads.
func EncodeCSV(table *domain.PredictionTable) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(table.ExportColumns()); err != nil {
		return nil, err
	}
	for _, rec := range table.Records {
		if err := w.Write(table.ExportRow(rec)); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
