package services

import (
	"context"
	"fmt"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/unicode"

	"churn-prediction-service/internal/core/domain"
	ports "churn-prediction-service/internal/core/ports/output"
	"churn-prediction-service/internal/testutil"
)

func newTestCache(t *testing.T, table *domain.PredictionTable, opts PredictionCacheOptions) (*PredictionCache, *testutil.MockPredictionSource, *testutil.MockPredictionEncoder) {
	t.Helper()
	source := new(testutil.MockPredictionSource)
	source.On("LoadPredictions", mock.Anything).Return(table, nil)
	encoder := new(testutil.MockPredictionEncoder)
	return NewPredictionCache(source, encoder, nil, opts), source, encoder
}

func ids(records []domain.PredictionRecord) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.CustomerID
	}
	return out
}

// ============================================================================
// Load Tests
// ============================================================================

func TestPredictionCache_All_LoadsOnce(t *testing.T) {
	cache, source, _ := newTestCache(t, testutil.ScenarioTable(), PredictionCacheOptions{})

	first, err := cache.All(context.Background())
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		again, err := cache.All(context.Background())
		require.NoError(t, err)
		assert.Same(t, first, again)
	}

	_, _ = cache.TopRisk(context.Background(), 2)
	_, _, _ = cache.Lookup(context.Background(), "C1")
	_, _ = cache.Summary(context.Background())

	source.AssertNumberOfCalls(t, "LoadPredictions", 1)
	assert.True(t, cache.Loaded())
}

func TestPredictionCache_ConcurrentFirstAccess(t *testing.T) {
	source := new(testutil.MockPredictionSource)
	source.On("LoadPredictions", mock.Anything).
		Run(func(mock.Arguments) { time.Sleep(10 * time.Millisecond) }).
		Return(testutil.ScenarioTable(), nil)
	cache := NewPredictionCache(source, nil, nil, PredictionCacheOptions{})

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, _ = cache.TopRisk(context.Background(), 1)
		}()
		go func() {
			defer wg.Done()
			_, _, _ = cache.Lookup(context.Background(), "C2")
		}()
	}
	wg.Wait()

	source.AssertNumberOfCalls(t, "LoadPredictions", 1)
}

func TestPredictionCache_LoadErrors(t *testing.T) {
	tests := []struct {
		name     string
		table    *domain.PredictionTable
		loadErr  error
		expected error
	}{
		{
			name:     "missing file",
			loadErr:  domain.ErrPredictionsNotFound,
			expected: domain.ErrPredictionsNotFound,
		},
		{
			name:     "probability above one",
			table:    testutil.NewPredictionTable(testutil.Row{ID: "C1", Prob: 1.2}),
			expected: domain.ErrPredictionsMalformed,
		},
		{
			name:     "negative probability",
			table:    testutil.NewPredictionTable(testutil.Row{ID: "C1", Prob: -0.01}),
			expected: domain.ErrPredictionsMalformed,
		},
		{
			name:     "NaN probability",
			table:    testutil.NewPredictionTable(testutil.Row{ID: "C1", Prob: math.NaN()}),
			expected: domain.ErrPredictionsMalformed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			source := new(testutil.MockPredictionSource)
			if tt.loadErr != nil {
				source.On("LoadPredictions", mock.Anything).Return(nil, tt.loadErr)
			} else {
				source.On("LoadPredictions", mock.Anything).Return(tt.table, nil)
			}
			cache := NewPredictionCache(source, nil, nil, PredictionCacheOptions{})

			_, err := cache.All(context.Background())
			assert.ErrorIs(t, err, tt.expected)

			_, _, err = cache.Lookup(context.Background(), "C1")
			assert.ErrorIs(t, err, tt.expected)
			assert.False(t, cache.Loaded())
			source.AssertNumberOfCalls(t, "LoadPredictions", 1)
		})
	}
}

func TestPredictionCache_DuplicateKeys(t *testing.T) {
	rows := []testutil.Row{
		{ID: "C1", Prob: 0.3, Contract: "first"},
		{ID: "C2", Prob: 0.4},
		{ID: "C1", Prob: 0.9, Contract: "second"},
	}

	t.Run("first match wins", func(t *testing.T) {
		cache, _, _ := newTestCache(t, testutil.NewPredictionTable(rows...), PredictionCacheOptions{})

		rec, found, err := cache.Lookup(context.Background(), "C1")
		require.NoError(t, err)
		require.True(t, found)
		assert.Equal(t, 0, rec.Row)
		assert.Equal(t, "first", rec.Values[1])

		summary, err := cache.Summary(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 1, summary.DuplicateKeys)
	})

	t.Run("strict keys reject", func(t *testing.T) {
		cache, _, _ := newTestCache(t, testutil.NewPredictionTable(rows...), PredictionCacheOptions{StrictKeys: true})

		_, err := cache.All(context.Background())
		assert.ErrorIs(t, err, domain.ErrPredictionsMalformed)
		assert.Contains(t, err.Error(), "C1")
	})
}

// ============================================================================
// Label Derivation Tests
// ============================================================================

func TestPredictionCache_DerivesLabels(t *testing.T) {
	table := testutil.NewPredictionTable(
		testutil.Row{ID: "A", Prob: 0.0},
		testutil.Row{ID: "B", Prob: 0.4999999},
		testutil.Row{ID: "C", Prob: 0.5},
		testutil.Row{ID: "D", Prob: 1.0},
	)
	cache, _, _ := newTestCache(t, table, PredictionCacheOptions{})

	all, err := cache.All(context.Background())
	require.NoError(t, err)
	for _, rec := range all.Records {
		assert.Equal(t, rec.ChurnProbability >= 0.5, rec.ChurnLabel, rec.CustomerID)
	}

	rec, found, err := cache.Lookup(context.Background(), "C")
	require.NoError(t, err)
	require.True(t, found)
	assert.True(t, rec.ChurnLabel, "threshold is inclusive")

	assert.Equal(t, domain.DefaultLabelColumn, all.LabelColumn)
	assert.Equal(t, -1, all.LabelIndex)
}

func TestPredictionCache_OverwritesExistingLabelColumn(t *testing.T) {
	table := &domain.PredictionTable{
		Columns:           []string{"customerID", "Churn", "churn_probability"},
		KeyColumn:         "customerID",
		ProbabilityColumn: "churn_probability",
		Records: []domain.PredictionRecord{
			{Row: 0, CustomerID: "C1", ChurnProbability: 0.8, Values: []string{"C1", "No", "0.8"}},
			{Row: 1, CustomerID: "C2", ChurnProbability: 0.2, Values: []string{"C2", "Yes", "0.2"}},
		},
	}
	cache, _, _ := newTestCache(t, table, PredictionCacheOptions{})

	all, err := cache.All(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, all.LabelIndex)
	assert.Equal(t, []string{"customerID", "Churn", "churn_probability"}, all.ExportColumns())
	assert.Equal(t, []string{"C1", "1", "0.8"}, all.ExportRow(all.Records[0]))
	assert.Equal(t, []string{"C2", "0", "0.2"}, all.ExportRow(all.Records[1]))
}

// ============================================================================
// Query Tests
// ============================================================================

func TestPredictionCache_Scenario(t *testing.T) {
	cache, _, _ := newTestCache(t, testutil.ScenarioTable(), PredictionCacheOptions{})
	ctx := context.Background()

	top, err := cache.TopRisk(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"C1", "C3"}, ids(top))
	assert.Equal(t, 0.92, top[0].ChurnProbability)
	assert.Equal(t, 0.51, top[1].ChurnProbability)

	rec, found, err := cache.Lookup(ctx, "C2")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "C2", rec.CustomerID)
	assert.Equal(t, 0.10, rec.ChurnProbability)
	assert.False(t, rec.ChurnLabel)
	assert.Equal(t, []string{"C2", "Two year", "0.1"}, rec.Values)

	rec, found, err = cache.Lookup(ctx, "C9")
	assert.NoError(t, err)
	assert.False(t, found)
	assert.Nil(t, rec)
}

func TestPredictionCache_TopRisk(t *testing.T) {
	table := testutil.NewPredictionTable(
		testutil.Row{ID: "A", Prob: 0.3},
		testutil.Row{ID: "B", Prob: 0.7},
		testutil.Row{ID: "C", Prob: 0.7},
		testutil.Row{ID: "D", Prob: 0.9},
		testutil.Row{ID: "E", Prob: 0.3},
	)

	tests := []struct {
		name     string
		n        int
		expected []string
	}{
		{name: "top one", n: 1, expected: []string{"D"}},
		{name: "ties keep file order", n: 3, expected: []string{"D", "B", "C"}},
		{name: "exact size", n: 5, expected: []string{"D", "B", "C", "A", "E"}},
		{name: "larger than table", n: 50, expected: []string{"D", "B", "C", "A", "E"}},
	}

	cache, _, _ := newTestCache(t, table, PredictionCacheOptions{})
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			top, err := cache.TopRisk(context.Background(), tt.n)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, ids(top))
			for i := 1; i < len(top); i++ {
				assert.GreaterOrEqual(t, top[i-1].ChurnProbability, top[i].ChurnProbability)
			}
		})
	}

	// repeated queries are deterministic and leave the table untouched
	again, err := cache.TopRisk(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, []string{"D", "B", "C"}, ids(again))
	all, _ := cache.All(context.Background())
	assert.Equal(t, []string{"A", "B", "C", "D", "E"}, ids(all.Records))
}

func TestPredictionCache_TopRisk_InvalidN(t *testing.T) {
	cache, source, _ := newTestCache(t, testutil.ScenarioTable(), PredictionCacheOptions{})

	for _, n := range []int{0, -3} {
		_, err := cache.TopRisk(context.Background(), n)
		assert.ErrorIs(t, err, domain.ErrInvalidTopN)
	}
	source.AssertNotCalled(t, "LoadPredictions", mock.Anything)
}

func TestPredictionCache_QueryResultsAreCopies(t *testing.T) {
	cache, _, _ := newTestCache(t, testutil.ScenarioTable(), PredictionCacheOptions{})
	ctx := context.Background()

	rec, found, err := cache.Lookup(ctx, "C1")
	require.NoError(t, err)
	require.True(t, found)
	rec.Values[1] = "changed"

	top, err := cache.TopRisk(ctx, 1)
	require.NoError(t, err)
	require.Len(t, top, 1)
	top[0].Values[1] = "changed"

	again, _, err := cache.Lookup(ctx, "C1")
	require.NoError(t, err)
	assert.Equal(t, "Month-to-month", again.Values[1])

	all, err := cache.All(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Month-to-month", all.Records[0].Values[1])
}

func TestPredictionCache_Lookup_CaseSensitive(t *testing.T) {
	table := testutil.NewPredictionTable(testutil.Row{ID: "7590-VHVEG", Prob: 0.6})
	cache, _, _ := newTestCache(t, table, PredictionCacheOptions{})

	_, found, err := cache.Lookup(context.Background(), "7590-vhveg")
	require.NoError(t, err)
	assert.False(t, found)

	_, found, err = cache.Lookup(context.Background(), " 7590-VHVEG")
	require.NoError(t, err)
	assert.False(t, found)

	rec, found, err := cache.Lookup(context.Background(), "7590-VHVEG")
	require.NoError(t, err)
	assert.True(t, found)
	assert.True(t, rec.ChurnLabel)
}

func TestPredictionCache_Summary(t *testing.T) {
	table := testutil.NewPredictionTable(
		testutil.Row{ID: "A", Prob: 0.0},
		testutil.Row{ID: "B", Prob: 0.12},
		testutil.Row{ID: "C", Prob: 0.5},
		testutil.Row{ID: "D", Prob: 1.0},
	)
	cache, _, _ := newTestCache(t, table, PredictionCacheOptions{})

	summary, err := cache.Summary(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 4, summary.Total)
	assert.Equal(t, 2, summary.Churned)
	assert.Equal(t, 2, summary.Retained)
	assert.InDelta(t, 0.405, summary.MeanProbability, 1e-9)
	require.Len(t, summary.Histogram, domain.HistogramBins)

	var counted int
	for _, bin := range summary.Histogram {
		counted += bin.Count
	}
	assert.Equal(t, 4, counted)
	assert.Equal(t, 1, summary.Histogram[0].Count)
	assert.Equal(t, 1, summary.Histogram[2].Count)
	assert.Equal(t, 1, summary.Histogram[10].Count)
	assert.Equal(t, 1, summary.Histogram[domain.HistogramBins-1].Count, "1.0 lands in the last bin")

	// callers get a copy
	summary.Histogram[0].Count = 99
	again, _ := cache.Summary(context.Background())
	assert.Equal(t, 1, again.Histogram[0].Count)
}

func TestPredictionCache_Summary_BinEdges(t *testing.T) {
	tests := []struct {
		prob float64
		bin  int
	}{
		{prob: 0.05, bin: 1},
		{prob: 0.15, bin: 3},
		{prob: 0.35, bin: 7},
		{prob: 0.55, bin: 11},
		{prob: 0.9499, bin: 18},
		{prob: 0.95, bin: 19},
		{prob: 1.0, bin: 19},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%v", tt.prob), func(t *testing.T) {
			table := testutil.NewPredictionTable(testutil.Row{ID: "A", Prob: tt.prob})
			cache, _, _ := newTestCache(t, table, PredictionCacheOptions{})

			summary, err := cache.Summary(context.Background())
			require.NoError(t, err)
			assert.Equal(t, 1, summary.Histogram[tt.bin].Count)
			assert.LessOrEqual(t, summary.Histogram[tt.bin].Lower, tt.prob)
		})
	}
}

// ============================================================================
// Export Tests
// ============================================================================

func TestPredictionCache_Export(t *testing.T) {
	cache, _, encoder := newTestCache(t, testutil.ScenarioTable(), PredictionCacheOptions{})
	csv := []byte("customerID,Contract,churn_probability,Churn\nC1,Month-to-month,0.92,1\n")
	encoder.On("EncodePredictions", mock.AnythingOfType("*domain.PredictionTable")).Return(csv, nil)

	out, err := cache.Export(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, csv, out)

	out, err = cache.Export(context.Background(), "UTF-8")
	require.NoError(t, err)
	assert.Equal(t, csv, out)
}

func TestPredictionCache_Export_UTF16(t *testing.T) {
	cache, _, encoder := newTestCache(t, testutil.ScenarioTable(), PredictionCacheOptions{})
	csv := []byte("customerID,Churn\nC1,1\n")
	encoder.On("EncodePredictions", mock.Anything).Return(csv, nil)

	out, err := cache.Export(context.Background(), "utf-16le")
	require.NoError(t, err)

	decoded, err := unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM).NewDecoder().Bytes(out)
	require.NoError(t, err)
	assert.Equal(t, csv, decoded)
}

func TestPredictionCache_Export_UnsupportedEncoding(t *testing.T) {
	cache, source, encoder := newTestCache(t, testutil.ScenarioTable(), PredictionCacheOptions{})

	_, err := cache.Export(context.Background(), "klingon-8")
	assert.ErrorIs(t, err, domain.ErrUnsupportedEncoding)
	encoder.AssertNotCalled(t, "EncodePredictions", mock.Anything)
	source.AssertNotCalled(t, "LoadPredictions", mock.Anything)
}

func TestPredictionCache_Export_Unrepresentable(t *testing.T) {
	cache, _, encoder := newTestCache(t, testutil.ScenarioTable(), PredictionCacheOptions{})
	encoder.On("EncodePredictions", mock.Anything).Return([]byte("customerID\n客户\n"), nil)

	_, err := cache.Export(context.Background(), "windows-1252")
	assert.ErrorIs(t, err, domain.ErrUnsupportedEncoding)
}

func TestPredictionCache_RecordsQueryMetrics(t *testing.T) {
	source := new(testutil.MockPredictionSource)
	source.On("LoadPredictions", mock.Anything).Return(testutil.ScenarioTable(), nil)
	metrics := new(testutil.MockMetricsRecorder)
	metrics.On("ObserveLoad", ports.SourcePredictions, mock.Anything, nil).Once()
	metrics.On("ObserveQuery", "lookup", ports.OutcomeFound).Once()
	metrics.On("ObserveQuery", "lookup", ports.OutcomeNotFound).Once()
	metrics.On("ObserveQuery", "top_risk", ports.OutcomeOK).Once()

	cache := NewPredictionCache(source, nil, metrics, PredictionCacheOptions{})
	_, _, _ = cache.Lookup(context.Background(), "C1")
	_, _, _ = cache.Lookup(context.Background(), "nope")
	_, _ = cache.TopRisk(context.Background(), 10)

	metrics.AssertExpectations(t)
}
