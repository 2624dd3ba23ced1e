package domain

import "errors"

// ============================================================================
// Artifact Errors
// ============================================================================

var (
	ErrArtifactNotFound = errors.New("model artifact not found")
	ErrArtifactCorrupt  = errors.New("model artifact is corrupt or incompatible")
)

// ============================================================================
// Prediction Errors
// ============================================================================

// Load errors
var (
	ErrPredictionsNotFound  = errors.New("predictions file not found")
	ErrPredictionsMalformed = errors.New("predictions file is malformed")
)

// Query errors
var (
	ErrCustomerNotFound    = errors.New("customer ID not found")
	ErrInvalidCustomerID   = errors.New("customer ID is required")
	ErrInvalidTopN         = errors.New("top-N size must be a positive integer")
	ErrUnsupportedEncoding = errors.New("unsupported export encoding")
)

// IsLoadError reports whether err comes from loading one of the input files.
// Load errors are fatal for the process.
func IsLoadError(err error) bool {
	return errors.Is(err, ErrArtifactNotFound) ||
		errors.Is(err, ErrArtifactCorrupt) ||
		errors.Is(err, ErrPredictionsNotFound) ||
		errors.Is(err, ErrPredictionsMalformed)
}
