package filesystem

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/gob"
	"encoding/hex"
	"fmt"
	"time"

	"churn-prediction-service/internal/core/domain"
)

// DefaultArtifactMaxBytes caps each artifact file.
const DefaultArtifactMaxBytes = 256 << 20

// ArtifactReader loads the gob-encoded classifier envelope and feature list.
type ArtifactReader struct {
	modelPath    string
	featuresPath string
	maxBytes     int64
}

func NewArtifactReader(modelPath, featuresPath string, maxBytes int64) *ArtifactReader {
	return &ArtifactReader{modelPath: modelPath, featuresPath: featuresPath, maxBytes: maxBytes}
}

func (r *ArtifactReader) LoadArtifact(ctx context.Context) (*domain.ModelArtifact, error) {
	modelBytes, err := readAll(ctx, r.modelPath, r.maxBytes, domain.ErrArtifactNotFound, domain.ErrArtifactCorrupt)
	if err != nil {
		return nil, err
	}
	featureBytes, err := readAll(ctx, r.featuresPath, r.maxBytes, domain.ErrArtifactNotFound, domain.ErrArtifactCorrupt)
	if err != nil {
		return nil, err
	}

	var clf domain.Classifier
	if err := gob.NewDecoder(bytes.NewReader(modelBytes)).Decode(&clf); err != nil {
		return nil, fmt.Errorf("%w: %s: decode classifier: %v", domain.ErrArtifactCorrupt, r.modelPath, err)
	}
	if clf.Version != domain.ClassifierFormatVersion {
		return nil, fmt.Errorf("%w: %s: classifier format version %d, want %d",
			domain.ErrArtifactCorrupt, r.modelPath, clf.Version, domain.ClassifierFormatVersion)
	}

	var features []string
	if err := gob.NewDecoder(bytes.NewReader(featureBytes)).Decode(&features); err != nil {
		return nil, fmt.Errorf("%w: %s: decode feature list: %v", domain.ErrArtifactCorrupt, r.featuresPath, err)
	}
	if len(features) == 0 {
		return nil, fmt.Errorf("%w: %s: empty feature list", domain.ErrArtifactCorrupt, r.featuresPath)
	}

	sum := sha256.Sum256(modelBytes)
	return &domain.ModelArtifact{
		Classifier:   clf,
		Features:     features,
		ModelPath:    r.modelPath,
		FeaturesPath: r.featuresPath,
		Checksum:     hex.EncodeToString(sum[:]),
		LoadedAt:     time.Now(),
	}, nil
}

// WriteArtifacts gob-encodes a classifier envelope and feature list to the
// two paths. It is the inverse of LoadArtifact and is used by tooling and
// tests to produce fixtures.
func WriteArtifacts(modelPath, featuresPath string, clf domain.Classifier, features []string) error {
	if err := writeGob(modelPath, clf); err != nil {
		return err
	}
	return writeGob(featuresPath, features)
}
