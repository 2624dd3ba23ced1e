package ports

import "time"

// Load sources reported to MetricsRecorder.
const (
	SourceArtifacts   = "artifacts"
	SourcePredictions = "predictions"
)

// Query outcomes reported to MetricsRecorder.
const (
	OutcomeOK       = "ok"
	OutcomeFound    = "found"
	OutcomeNotFound = "not_found"
	OutcomeError    = "error"
)

// MetricsRecorder receives load and query observations.
type MetricsRecorder interface {
	ObserveLoad(source string, elapsed time.Duration, err error)
	ObserveQuery(operation, outcome string)
}

// NopRecorder discards all observations.
type NopRecorder struct{}

func (NopRecorder) ObserveLoad(string, time.Duration, error) {}
func (NopRecorder) ObserveQuery(string, string)              {}
