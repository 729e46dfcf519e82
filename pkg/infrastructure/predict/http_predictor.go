package predict

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	jsonrepair "github.com/RealAlexandreAI/json-repair"
	"github.com/vsinha/fcrecon/pkg/domain/entities"
	"github.com/vsinha/fcrecon/pkg/domain/services"
)

// DefaultTimeout bounds one prediction request
const DefaultTimeout = 30 * time.Second

// HTTPPredictor posts feature records to a remote /predict endpoint
type HTTPPredictor struct {
	url    string
	client *http.Client
}

// NewHTTPPredictor creates a predictor for url. A zero timeout uses
// DefaultTimeout.
func NewHTTPPredictor(url string, timeout time.Duration) *HTTPPredictor {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &HTTPPredictor{url: url, client: &http.Client{Timeout: timeout}}
}

var _ services.Predictor = (*HTTPPredictor)(nil)

// Predict sends one JSON object per vector, keyed by feature name. The
// response is either a list of numbers or a list of records carrying
// Predicted_ConsumptionQty.
func (p *HTTPPredictor) Predict(ctx context.Context, features [][]float64) ([]float64, error) {
	records := make([]map[string]float64, len(features))
	for i, vector := range features {
		record := make(map[string]float64, len(services.FeatureNames))
		for j, name := range services.FeatureNames {
			if j < len(vector) {
				record[name] = entities.FiniteOrZero(vector[j])
			}
		}
		records[i] = record
	}

	body, err := json.Marshal(records)
	if err != nil {
		return nil, fmt.Errorf("failed to encode prediction request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create prediction request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("prediction request to %s failed: %w", p.url, err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read prediction response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("prediction API %d: %s", resp.StatusCode, bytes.TrimSpace(payload))
	}

	return decodePredictions(payload)
}

func decodePredictions(payload []byte) ([]float64, error) {
	var raw []json.RawMessage
	if err := json.Unmarshal(payload, &raw); err != nil {
		// Model servers built on pandas emit NaN and trailing commas
		repaired, repairErr := jsonrepair.RepairJSON(string(payload))
		if repairErr != nil {
			return nil, fmt.Errorf("failed to decode prediction response: %w", err)
		}
		if err := json.Unmarshal([]byte(repaired), &raw); err != nil {
			return nil, fmt.Errorf("failed to decode prediction response: %w", err)
		}
	}

	out := make([]float64, len(raw))
	for i, item := range raw {
		var value float64
		if err := json.Unmarshal(item, &value); err == nil {
			out[i] = value
			continue
		}
		var record struct {
			Predicted *float64 `json:"Predicted_ConsumptionQty"`
		}
		if err := json.Unmarshal(item, &record); err != nil || record.Predicted == nil {
			return nil, fmt.Errorf("prediction %d has no Predicted_ConsumptionQty", i)
		}
		out[i] = *record.Predicted
	}
	return out, nil
}
