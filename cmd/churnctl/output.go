package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"churn-prediction-service/internal/adapters/primary/http/dto"
	"churn-prediction-service/internal/core/domain"
)

func printJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal JSON: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

func labelText(churn bool) string {
	if churn {
		return "churn"
	}
	return "retained"
}

func printPredictionTable(out io.Writer, records []domain.PredictionRecord) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "RANK\tCUSTOMER\tPROBABILITY\tLABEL")
	for i, rec := range records {
		fmt.Fprintf(w, "%d\t%s\t%.2f\t%s\n", i+1, rec.CustomerID, rec.ChurnProbability, labelText(rec.ChurnLabel))
	}
	w.Flush()
}

func printPrediction(out io.Writer, table *domain.PredictionTable, p dto.PredictionResponse) {
	fmt.Fprintf(out, "Customer:     %s\n", p.CustomerID)
	fmt.Fprintf(out, "Probability:  %.2f\n", p.ChurnProbability)
	fmt.Fprintf(out, "Label:        %s\n", labelText(p.ChurnLabel))
	for _, c := range table.Columns {
		v, ok := p.Attributes[c]
		if !ok || c == table.KeyColumn {
			continue
		}
		fmt.Fprintf(out, "  %s: %s\n", c, v)
	}
}

func printSummary(out io.Writer, s *domain.PredictionSummary) {
	fmt.Fprintf(out, "Customers:    %d\n", s.Total)
	fmt.Fprintf(out, "Churn:        %d\n", s.Churned)
	fmt.Fprintf(out, "Retained:     %d\n", s.Retained)
	fmt.Fprintf(out, "Mean:         %.3f\n", s.MeanProbability)
	if s.DuplicateKeys > 0 {
		fmt.Fprintf(out, "Duplicates:   %d\n", s.DuplicateKeys)
	}

	peak := 0
	for _, b := range s.Histogram {
		if b.Count > peak {
			peak = b.Count
		}
	}
	fmt.Fprintln(out)
	for _, b := range s.Histogram {
		bar := 0
		if peak > 0 {
			bar = b.Count * 40 / peak
		}
		fmt.Fprintf(out, "%.2f-%.2f %6d %s\n", b.Lower, b.Upper, b.Count, strings.Repeat("#", bar))
	}
}

func printModel(out io.Writer, m dto.ModelArtifactResponse) {
	fmt.Fprintf(out, "Algorithm:    %s\n", m.Algorithm)
	fmt.Fprintf(out, "Format:       v%d\n", m.FormatVersion)
	fmt.Fprintf(out, "Model:        %s\n", m.ModelPath)
	fmt.Fprintf(out, "Features:     %s (%d)\n", m.FeaturesPath, m.FeatureCount)
	fmt.Fprintf(out, "Checksum:     %s\n", m.Checksum)
	fmt.Fprintf(out, "  %s\n", strings.Join(m.Features, ", "))
}
