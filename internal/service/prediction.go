package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/survivalcast/survivalcast-go/internal/model"
	"github.com/survivalcast/survivalcast-go/internal/predictor"
)

// PlaceholderModelAccuracy is reported by Stats. No ground-truth labels are
// kept for submitted passengers, so accuracy cannot be measured here.
// TODO: report the held-out test accuracy recorded in the model artifact.
const PlaceholderModelAccuracy = 85

var (
	ErrFieldMissing     = errors.New("field is required")
	ErrInvalidPclass    = errors.New("pclass must be 1, 2 or 3")
	ErrInvalidSex       = errors.New(`sex must be "male" or "female"`)
	ErrInvalidAge       = errors.New("age must be non-negative")
	ErrInvalidSibSp     = errors.New("sibsp must be non-negative")
	ErrInvalidParch     = errors.New("parch must be non-negative")
	ErrInvalidFare      = errors.New("fare must be non-negative")
	ErrInvalidEmbarked  = errors.New(`embarked must be one of "S", "C" or "Q"`)
	ErrModelUnavailable = predictor.ErrModelUnavailable
)

// Classifier maps passenger features to a survival prediction.
type Classifier interface {
	Classify(f predictor.Features) (predictor.Result, error)
}

// PredictionLedger stores predictions.
type PredictionLedger interface {
	Create(ctx context.Context, p *model.Prediction) error
	ListByUser(ctx context.Context, email string) ([]model.Prediction, error)
	Count(ctx context.Context) (int64, error)
}

// PredictionService runs the classifier and records every prediction.
type PredictionService struct {
	classifier Classifier
	ledger     PredictionLedger
}

// NewPredictionService creates a new PredictionService.
func NewPredictionService(classifier Classifier, ledger PredictionLedger) *PredictionService {
	return &PredictionService{
		classifier: classifier,
		ledger:     ledger,
	}
}

// Predict classifies the passenger described by req and appends the result
// to owner's history.
func (s *PredictionService) Predict(ctx context.Context, owner string, req model.PredictionRequest) (model.PredictionResult, error) {
	features, err := validatePrediction(req)
	if err != nil {
		return model.PredictionResult{}, err
	}

	result, err := s.classifier.Classify(features)
	if err != nil {
		return model.PredictionResult{}, err
	}

	record := &model.Prediction{
		UserEmail:   owner,
		Pclass:      features.Pclass,
		Sex:         features.Sex,
		Age:         features.Age,
		SibSp:       features.SibSp,
		Parch:       features.Parch,
		Fare:        features.Fare,
		Embarked:    features.Embarked,
		Result:      result.Label,
		Probability: result.Probability,
	}
	if err := s.ledger.Create(ctx, record); err != nil {
		return model.PredictionResult{}, fmt.Errorf("recording prediction: %w", err)
	}

	return model.PredictionResult{
		Result:      result.Label,
		Probability: result.Probability,
	}, nil
}

// History returns owner's predictions, oldest first.
func (s *PredictionService) History(ctx context.Context, owner string) ([]model.Prediction, error) {
	predictions, err := s.ledger.ListByUser(ctx, owner)
	if err != nil {
		return nil, err
	}
	if predictions == nil {
		predictions = []model.Prediction{}
	}
	return predictions, nil
}

// Stats reports the total number of predictions made by all users.
func (s *PredictionService) Stats(ctx context.Context) (model.StatsResponse, error) {
	total, err := s.ledger.Count(ctx)
	if err != nil {
		return model.StatsResponse{}, err
	}

	return model.StatsResponse{
		TotalPredictions: total,
		ModelAccuracy:    PlaceholderModelAccuracy,
	}, nil
}

// validatePrediction checks req and normalizes sex to lower case and
// embarked to upper case.
func validatePrediction(req model.PredictionRequest) (predictor.Features, error) {
	missing := missingFields(req)
	if len(missing) > 0 {
		return predictor.Features{}, fmt.Errorf("%w: %s", ErrFieldMissing, strings.Join(missing, ", "))
	}

	f := predictor.Features{
		Pclass:   *req.Pclass,
		Sex:      strings.ToLower(strings.TrimSpace(*req.Sex)),
		Age:      *req.Age,
		SibSp:    *req.SibSp,
		Parch:    *req.Parch,
		Fare:     *req.Fare,
		Embarked: strings.ToUpper(strings.TrimSpace(*req.Embarked)),
	}

	switch {
	case f.Pclass < 1 || f.Pclass > 3:
		return predictor.Features{}, ErrInvalidPclass
	case f.Sex != "male" && f.Sex != "female":
		return predictor.Features{}, ErrInvalidSex
	case f.Age < 0:
		return predictor.Features{}, ErrInvalidAge
	case f.SibSp < 0:
		return predictor.Features{}, ErrInvalidSibSp
	case f.Parch < 0:
		return predictor.Features{}, ErrInvalidParch
	case f.Fare < 0:
		return predictor.Features{}, ErrInvalidFare
	}

	if _, ok := predictor.EncodingV1.Embarked[f.Embarked]; !ok {
		return predictor.Features{}, ErrInvalidEmbarked
	}

	return f, nil
}

func missingFields(req model.PredictionRequest) []string {
	var missing []string
	if req.Pclass == nil {
		missing = append(missing, "pclass")
	}
	if req.Sex == nil {
		missing = append(missing, "sex")
	}
	if req.Age == nil {
		missing = append(missing, "age")
	}
	if req.SibSp == nil {
		missing = append(missing, "sibsp")
	}
	if req.Parch == nil {
		missing = append(missing, "parch")
	}
	if req.Fare == nil {
		missing = append(missing, "fare")
	}
	if req.Embarked == nil {
		missing = append(missing, "embarked")
	}
	return missing
}

// IsValidationError reports whether err rejects the caller's input.
func IsValidationError(err error) bool {
	for _, target := range []error{
		ErrEmailRequired, ErrEmailInvalid, ErrPasswordRequired, ErrPasswordTooLong,
		ErrFieldMissing, ErrInvalidPclass, ErrInvalidSex, ErrInvalidAge,
		ErrInvalidSibSp, ErrInvalidParch, ErrInvalidFare, ErrInvalidEmbarked,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
