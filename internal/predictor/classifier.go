package predictor

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"slices"
)

const (
	LabelSurvived    = "Survived"
	LabelNotSurvived = "Not Survived"

	// ArtifactFormatVersion is the artifact layout this package can read.
	ArtifactFormatVersion = 1

	// DefaultThreshold applies when the artifact does not set one.
	DefaultThreshold = 0.5
)

var (
	ErrModelUnavailable = errors.New("model artifact unavailable")
	ErrArtifactInvalid  = errors.New("model artifact is invalid")
)

// Result is the outcome of a single classification. Label and Probability
// always come from the same model evaluation.
type Result struct {
	Label       string
	Probability float64
}

// Artifact is the serialized form of the trained logistic-regression model.
type Artifact struct {
	FormatVersion   int       `json:"format_version"`
	EncodingVersion int       `json:"encoding_version"`
	Features        []string  `json:"features"`
	Coefficients    []float64 `json:"coefficients"`
	Intercept       float64   `json:"intercept"`
	Threshold       *float64  `json:"threshold,omitempty"`
}

// Classifier evaluates a loaded artifact. It is immutable and safe for
// concurrent use.
type Classifier struct {
	encoding     EncodingTable
	coefficients Vector
	intercept    float64
	threshold    float64
}

// LoadArtifact reads and validates the artifact at path. Any failure wraps
// ErrModelUnavailable.
func LoadArtifact(path string) (*Classifier, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrModelUnavailable, err)
	}

	var a Artifact
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("%w: decoding %s: %w", ErrModelUnavailable, path, err)
	}

	clf, err := NewClassifier(a)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrModelUnavailable, err)
	}

	return clf, nil
}

// NewClassifier validates a against the supported format and encoding.
func NewClassifier(a Artifact) (*Classifier, error) {
	if a.FormatVersion != ArtifactFormatVersion {
		return nil, fmt.Errorf("%w: format version %d, want %d", ErrArtifactInvalid, a.FormatVersion, ArtifactFormatVersion)
	}
	if a.EncodingVersion != EncodingV1.Version {
		return nil, fmt.Errorf("%w: encoding version %d, want %d", ErrArtifactInvalid, a.EncodingVersion, EncodingV1.Version)
	}
	if !slices.Equal(a.Features, FeatureOrder[:]) {
		return nil, fmt.Errorf("%w: feature order %v, want %v", ErrArtifactInvalid, a.Features, FeatureOrder)
	}
	if len(a.Coefficients) != len(FeatureOrder) {
		return nil, fmt.Errorf("%w: %d coefficients, want %d", ErrArtifactInvalid, len(a.Coefficients), len(FeatureOrder))
	}

	threshold := DefaultThreshold
	if a.Threshold != nil {
		threshold = *a.Threshold
	}
	if threshold <= 0 || threshold >= 1 {
		return nil, fmt.Errorf("%w: threshold %v outside (0, 1)", ErrArtifactInvalid, threshold)
	}

	clf := &Classifier{
		encoding:  EncodingV1,
		intercept: a.Intercept,
		threshold: threshold,
	}
	copy(clf.coefficients[:], a.Coefficients)

	return clf, nil
}

// Classify returns the predicted label and the positive-class probability
// for f.
func (c *Classifier) Classify(f Features) Result {
	x := c.encoding.Encode(f)

	z := c.intercept
	for i, w := range c.coefficients {
		z += w * x[i]
	}
	p := sigmoid(z)

	label := LabelNotSurvived
	if p > c.threshold {
		label = LabelSurvived
	}

	return Result{Label: label, Probability: p}
}

func sigmoid(z float64) float64 {
	if z >= 0 {
		return 1 / (1 + math.Exp(-z))
	}
	e := math.Exp(z)
	return e / (1 + e)
}
