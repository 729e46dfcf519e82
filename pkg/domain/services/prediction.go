package services

import (
	"context"
	"fmt"

	"github.com/vsinha/fcrecon/pkg/domain/entities"
)

// FeatureNames is the fixed input order of the consumption model. Total_MRP
// is the row's ForecastQty.
var FeatureNames = []string{
	entities.FeatureTotalMRPName,
	entities.FeatureWIP,
	entities.FeatureStock,
	entities.FeatureMRPBacklog,
	entities.FeaturePrice,
	entities.FeaturePriceUnit,
	entities.FeatureSafetyStock,
}

// Predictor estimates consumption for feature vectors laid out as
// FeatureNames. It must return one value per vector.
type Predictor interface {
	Predict(ctx context.Context, features [][]float64) ([]float64, error)
}

// PredictorFunc adapts a function to the Predictor interface
type PredictorFunc func(ctx context.Context, features [][]float64) ([]float64, error)

// Predict calls f
func (f PredictorFunc) Predict(ctx context.Context, features [][]float64) ([]float64, error) {
	return f(ctx, features)
}

// FeatureVector builds the model input for one row. Missing or non-numeric
// features are 0.
func FeatureVector(forecastQty float64, features map[string]string) []float64 {
	vector := make([]float64, len(FeatureNames))
	vector[0] = entities.FiniteOrZero(forecastQty)
	for i, name := range FeatureNames[1:] {
		vector[i+1] = entities.NumberOrZero(features[name])
	}
	return vector
}

// PredictionService scores rows with a Predictor and explains their risk
type PredictionService struct {
	predictor  Predictor
	classifier *RiskClassifier
}

// NewPredictionService creates a prediction service
func NewPredictionService(predictor Predictor, classifier *RiskClassifier) *PredictionService {
	return &PredictionService{predictor: predictor, classifier: classifier}
}

// PredictForecasts scores forecast rows that have no consumption yet
func (s *PredictionService) PredictForecasts(ctx context.Context, rows []entities.ForecastRow) ([]entities.ForecastOutlook, error) {
	vectors := make([][]float64, len(rows))
	for i, row := range rows {
		vectors[i] = FeatureVector(row.ForecastQty, row.Features)
	}

	predicted, err := s.predict(ctx, vectors)
	if err != nil {
		return nil, err
	}

	outlook := make([]entities.ForecastOutlook, len(rows))
	for i, row := range rows {
		o := entities.ForecastOutlook{
			ForecastRow: row,
			Prediction:  entities.NewPrediction(row.ForecastQty, predicted[i]),
		}
		o.RiskExplanation = s.classifier.Classify(o.RiskFactors())
		outlook[i] = o
	}
	return outlook, nil
}

// PredictMerged returns a copy of rows with Prediction and RiskExplanation set
func (s *PredictionService) PredictMerged(ctx context.Context, rows []entities.MergedRow) ([]entities.MergedRow, error) {
	vectors := make([][]float64, len(rows))
	for i, row := range rows {
		vectors[i] = FeatureVector(row.ForecastQty, row.Features)
	}

	predicted, err := s.predict(ctx, vectors)
	if err != nil {
		return nil, err
	}

	scored := make([]entities.MergedRow, len(rows))
	for i, row := range rows {
		p := entities.NewPrediction(row.ForecastQty, predicted[i])
		row.Prediction = &p
		row.RiskExplanation = s.classifier.Classify(row.RiskFactors())
		scored[i] = row
	}
	return scored, nil
}

func (s *PredictionService) predict(ctx context.Context, vectors [][]float64) ([]float64, error) {
	if len(vectors) == 0 {
		return nil, nil
	}
	predicted, err := s.predictor.Predict(ctx, vectors)
	if err != nil {
		return nil, fmt.Errorf("failed to predict consumption: %w", err)
	}
	if len(predicted) != len(vectors) {
		return nil, fmt.Errorf("predictor returned %d values for %d rows", len(predicted), len(vectors))
	}
	return predicted, nil
}
