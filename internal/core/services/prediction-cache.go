package services

import (
	"context"
	"fmt"
	"math"
	"slices"
	"sort"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/transform"

	"churn-prediction-service/internal/core/domain"
	ports "churn-prediction-service/internal/core/ports/output"
)

const DefaultExportEncoding = "utf-8"

type PredictionCacheOptions struct {
	// Timeout bounds the single load. Zero means no deadline.
	Timeout time.Duration
	// StrictKeys rejects a predictions file with duplicate customer IDs
	// instead of resolving lookups to the first matching row.
	StrictKeys bool
	// LabelColumn names the derived churn label column. Empty means
	// domain.DefaultLabelColumn.
	LabelColumn string
}

// PredictionCache loads the predictions table once and answers every query
// from memory.
type PredictionCache struct {
	source  ports.PredictionSource
	encoder ports.PredictionEncoder
	metrics ports.MetricsRecorder
	opts    PredictionCacheOptions
	state   memo[*predictionState]
}

// predictionState is everything derived at load time. Nothing in it changes
// afterwards.
type predictionState struct {
	table   *domain.PredictionTable
	index   map[string]int
	ranked  []int
	summary *domain.PredictionSummary
}

func NewPredictionCache(
	source ports.PredictionSource,
	encoder ports.PredictionEncoder,
	metrics ports.MetricsRecorder,
	opts PredictionCacheOptions,
) *PredictionCache {
	if metrics == nil {
		metrics = ports.NopRecorder{}
	}
	if opts.LabelColumn == "" {
		opts.LabelColumn = domain.DefaultLabelColumn
	}
	return &PredictionCache{source: source, encoder: encoder, metrics: metrics, opts: opts}
}

// All returns the full table, loading it on the first call. The table is
// shared by every caller and must not be modified.
func (s *PredictionCache) All(ctx context.Context) (*domain.PredictionTable, error) {
	st, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	return st.table, nil
}

// TopRisk returns the n records with the highest churn probability in
// descending order. Equal probabilities keep their file order. When n exceeds
// the table size the whole table is returned in that order. The records are
// copies.
func (s *PredictionCache) TopRisk(ctx context.Context, n int) ([]domain.PredictionRecord, error) {
	if n <= 0 {
		s.metrics.ObserveQuery("top_risk", ports.OutcomeError)
		return nil, fmt.Errorf("%w: got %d", domain.ErrInvalidTopN, n)
	}
	st, err := s.load(ctx)
	if err != nil {
		s.metrics.ObserveQuery("top_risk", ports.OutcomeError)
		return nil, err
	}

	if n > len(st.ranked) {
		n = len(st.ranked)
	}
	out := make([]domain.PredictionRecord, n)
	for i, idx := range st.ranked[:n] {
		out[i] = detach(st.table.Records[idx])
	}
	s.metrics.ObserveQuery("top_risk", ports.OutcomeOK)
	return out, nil
}

// Lookup finds the record whose customer ID equals customerID exactly.
// found is false when no record matches; err is only set when the table
// could not be loaded. The returned record is a copy the caller may modify.
func (s *PredictionCache) Lookup(ctx context.Context, customerID string) (rec *domain.PredictionRecord, found bool, err error) {
	st, err := s.load(ctx)
	if err != nil {
		s.metrics.ObserveQuery("lookup", ports.OutcomeError)
		return nil, false, err
	}

	idx, ok := st.index[customerID]
	if !ok {
		s.metrics.ObserveQuery("lookup", ports.OutcomeNotFound)
		return nil, false, nil
	}
	r := detach(st.table.Records[idx])
	s.metrics.ObserveQuery("lookup", ports.OutcomeFound)
	return &r, true, nil
}

// Summary returns the distribution figures computed at load time.
func (s *PredictionCache) Summary(ctx context.Context) (*domain.PredictionSummary, error) {
	st, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	summary := *st.summary
	summary.Histogram = append([]domain.HistogramBin(nil), st.summary.Histogram...)
	return &summary, nil
}

// Export serializes the table with its derived label column in the named
// character encoding. An empty name means UTF-8.
func (s *PredictionCache) Export(ctx context.Context, encodingName string) ([]byte, error) {
	if encodingName == "" {
		encodingName = DefaultExportEncoding
	}
	enc, err := htmlindex.Get(encodingName)
	if err != nil {
		s.metrics.ObserveQuery("export", ports.OutcomeError)
		return nil, fmt.Errorf("%w: %q", domain.ErrUnsupportedEncoding, encodingName)
	}

	st, err := s.load(ctx)
	if err != nil {
		s.metrics.ObserveQuery("export", ports.OutcomeError)
		return nil, err
	}

	data, err := s.encoder.EncodePredictions(st.table)
	if err != nil {
		s.metrics.ObserveQuery("export", ports.OutcomeError)
		return nil, fmt.Errorf("encode predictions: %w", err)
	}

	out, _, err := transform.Bytes(enc.NewEncoder(), data)
	if err != nil {
		s.metrics.ObserveQuery("export", ports.OutcomeError)
		return nil, fmt.Errorf("%w: %q cannot represent the table: %v", domain.ErrUnsupportedEncoding, encodingName, err)
	}
	s.metrics.ObserveQuery("export", ports.OutcomeOK)
	return out, nil
}

// Loaded reports whether the table is in memory.
func (s *PredictionCache) Loaded() bool {
	return s.state.loaded()
}

func (s *PredictionCache) load(ctx context.Context) (*predictionState, error) {
	return s.state.get(func() (*predictionState, error) {
		loadCtx, cancel := loadContext(ctx, s.opts.Timeout)
		defer cancel()

		start := time.Now()
		st, err := s.read(loadCtx)
		elapsed := time.Since(start)
		s.metrics.ObserveLoad(ports.SourcePredictions, elapsed, err)
		if err != nil {
			log.WithError(err).Error("load predictions failed")
			return nil, err
		}

		log.WithFields(log.Fields{
			"rows":           st.table.Len(),
			"churned":        st.summary.Churned,
			"duplicate_keys": st.summary.DuplicateKeys,
			"latency_ms":     elapsed.Milliseconds(),
		}).Info("predictions loaded")
		return st, nil
	})
}

func (s *PredictionCache) read(ctx context.Context) (*predictionState, error) {
	table, err := s.source.LoadPredictions(ctx)
	if err != nil {
		return nil, err
	}

	for i := range table.Records {
		rec := &table.Records[i]
		if err := domain.ValidateProbability(rec.ChurnProbability); err != nil {
			return nil, fmt.Errorf("%w: row %d (%s=%q): %v",
				domain.ErrPredictionsMalformed, rec.Row+1, table.KeyColumn, rec.CustomerID, err)
		}
	}

	applyLabels(table, s.opts.LabelColumn)

	index, duplicates := buildIndex(table)
	if len(duplicates) > 0 {
		if s.opts.StrictKeys {
			return nil, fmt.Errorf("%w: duplicate %s values: %s",
				domain.ErrPredictionsMalformed, table.KeyColumn, strings.Join(firstN(duplicates, 5), ", "))
		}
		log.WithFields(log.Fields{
			"key_column": table.KeyColumn,
			"duplicates": len(duplicates),
		}).Warn("duplicate customer IDs in predictions, lookups return the first row")
	}

	return &predictionState{
		table:   table,
		index:   index,
		ranked:  rankByRisk(table.Records),
		summary: summarize(table.Records, len(duplicates)),
	}, nil
}

// applyLabels derives every churn label once. When the source already has a
// column with the label name, its cells are overwritten in place.
func applyLabels(table *domain.PredictionTable, labelColumn string) {
	table.LabelColumn = labelColumn
	table.LabelIndex = table.ColumnIndex(labelColumn)
	for i := range table.Records {
		rec := &table.Records[i]
		rec.ChurnLabel = domain.DeriveChurnLabel(rec.ChurnProbability)
		if table.LabelIndex >= 0 && table.LabelIndex < len(rec.Values) {
			rec.Values[table.LabelIndex] = domain.LabelValue(rec.ChurnLabel)
		}
	}
}

// buildIndex maps each customer ID to its first row and returns the IDs seen
// more than once, in order of first repetition.
func buildIndex(table *domain.PredictionTable) (map[string]int, []string) {
	index := make(map[string]int, len(table.Records))
	var duplicates []string
	seen := make(map[string]bool)
	for i, rec := range table.Records {
		if _, ok := index[rec.CustomerID]; ok {
			if !seen[rec.CustomerID] {
				seen[rec.CustomerID] = true
				duplicates = append(duplicates, rec.CustomerID)
			}
			continue
		}
		index[rec.CustomerID] = i
	}
	return index, duplicates
}

func rankByRisk(records []domain.PredictionRecord) []int {
	ranked := make([]int, len(records))
	for i := range ranked {
		ranked[i] = i
	}
	sort.SliceStable(ranked, func(a, b int) bool {
		return records[ranked[a]].ChurnProbability > records[ranked[b]].ChurnProbability
	})
	return ranked
}

func summarize(records []domain.PredictionRecord, duplicates int) *domain.PredictionSummary {
	summary := &domain.PredictionSummary{
		Total:         len(records),
		DuplicateKeys: duplicates,
		Histogram:     make([]domain.HistogramBin, domain.HistogramBins),
	}
	for i := range summary.Histogram {
		summary.Histogram[i].Lower = float64(i) / domain.HistogramBins
		summary.Histogram[i].Upper = float64(i+1) / domain.HistogramBins
	}

	var sum float64
	for _, rec := range records {
		if rec.ChurnLabel {
			summary.Churned++
		} else {
			summary.Retained++
		}
		sum += rec.ChurnProbability

		bin := histogramBin(rec.ChurnProbability)
		if bin >= domain.HistogramBins {
			bin = domain.HistogramBins - 1
		}
		summary.Histogram[bin].Count++
	}
	if len(records) > 0 {
		summary.MeanProbability = sum / float64(len(records))
	}
	return summary
}

// histogramBin places p in the bin whose lower edge it reaches.
func histogramBin(p float64) int {
	return int(math.Floor(p * domain.HistogramBins))
}

// detach copies rec with its own Values so callers cannot write through to
// the cached row.
func detach(rec domain.PredictionRecord) domain.PredictionRecord {
	rec.Values = slices.Clone(rec.Values)
	return rec
}

func firstN(s []string, n int) []string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
