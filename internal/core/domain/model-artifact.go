package domain

import "time"

// ClassifierFormatVersion is the envelope version this build can decode.
const ClassifierFormatVersion = 1

// Classifier is the gob envelope stored in the model file. Payload is the
// trained model in whatever form the training job produced; it is never
// interpreted here.
type Classifier struct {
	Version   int
	Algorithm string
	Payload   []byte
}

// ModelArtifact is the immutable handle returned by the artifact store.
type ModelArtifact struct {
	Classifier   Classifier
	Features     []string
	ModelPath    string
	FeaturesPath string
	Checksum     string
	LoadedAt     time.Time
}

// FeatureCount returns the number of features the classifier expects.
func (a *ModelArtifact) FeatureCount() int {
	return len(a.Features)
}
