package predict

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/hjson/hjson-go/v4"
	"github.com/vsinha/fcrecon/pkg/domain/services"
	"gonum.org/v1/gonum/mat"
	"gopkg.in/yaml.v3"
)

// LinearModel is a fitted linear regression over services.FeatureNames
type LinearModel struct {
	Intercept    float64            `yaml:"intercept" json:"intercept"`
	Coefficients map[string]float64 `yaml:"coefficients" json:"coefficients"`
	// ClampNegative floors predictions at zero
	ClampNegative bool `yaml:"clamp_negative" json:"clamp_negative"`
}

// LinearPredictor evaluates a LinearModel
type LinearPredictor struct {
	model   LinearModel
	weights *mat.VecDense
}

var _ services.Predictor = (*LinearPredictor)(nil)

// NewLinearPredictor rejects coefficients for unknown features
func NewLinearPredictor(model LinearModel) (*LinearPredictor, error) {
	known := make(map[string]int, len(services.FeatureNames))
	for i, name := range services.FeatureNames {
		known[name] = i
	}

	weights := mat.NewVecDense(len(services.FeatureNames), nil)
	for name, coef := range model.Coefficients {
		idx, ok := known[name]
		if !ok {
			return nil, fmt.Errorf("unknown model feature %q (expected one of %s)", name, strings.Join(services.FeatureNames, ", "))
		}
		weights.SetVec(idx, coef)
	}
	return &LinearPredictor{model: model, weights: weights}, nil
}

// LoadLinearModel reads a model from YAML, or from JSON/Hjson for .json and
// .hjson files
func LoadLinearModel(path string) (*LinearPredictor, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read model file %s: %w", path, err)
	}

	var model LinearModel
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".hjson":
		err = hjson.Unmarshal(data, &model)
	default:
		err = yaml.Unmarshal(data, &model)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse model file %s: %w", path, err)
	}
	return NewLinearPredictor(model)
}

// Predict computes X*w + b for every feature vector
func (p *LinearPredictor) Predict(_ context.Context, features [][]float64) ([]float64, error) {
	if len(features) == 0 {
		return nil, nil
	}

	cols := len(services.FeatureNames)
	flat := make([]float64, 0, len(features)*cols)
	for i, vector := range features {
		if len(vector) != cols {
			return nil, fmt.Errorf("feature vector %d has %d values, expected %d", i, len(vector), cols)
		}
		flat = append(flat, vector...)
	}

	x := mat.NewDense(len(features), cols, flat)
	var y mat.VecDense
	y.MulVec(x, p.weights)

	out := make([]float64, len(features))
	for i := range out {
		v := y.AtVec(i) + p.model.Intercept
		if p.model.ClampNegative && v < 0 {
			v = 0
		}
		out[i] = v
	}
	return out, nil
}
