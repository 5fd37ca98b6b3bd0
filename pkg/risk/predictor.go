package risk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Predictor is the trained diabetes classifier, served out of process.
type Predictor interface {
	// Predict returns 0 (negative) or 1 (positive) for a complete feature set.
	Predict(ctx context.Context, features Features) (int, error)
}

// HTTPPredictor talks to the model-serving sidecar.
type HTTPPredictor struct {
	BaseURL string
	client  *http.Client
}

func NewHTTPPredictor(baseURL string) *HTTPPredictor {
	if baseURL == "" {
		baseURL = "http://localhost:8501"
	}
	return &HTTPPredictor{
		BaseURL: baseURL,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

type predictRequest struct {
	Features []float64 `json:"features"`
}

type predictResponse struct {
	Result int `json:"result"`
}

func (p *HTTPPredictor) Predict(ctx context.Context, features Features) (int, error) {
	if missing := features.Missing(); len(missing) > 0 {
		return 0, fmt.Errorf("incomplete feature set, missing %v", missing)
	}

	jsonBody, err := json.Marshal(predictRequest{Features: features.Vector()})
	if err != nil {
		return 0, err
	}

	endpoint := fmt.Sprintf("%s/predict", p.BaseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewBuffer(jsonBody))
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("predictor request failed: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, err
	}
	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("predictor error: %s", string(bodyBytes))
	}

	var out predictResponse
	if err := json.Unmarshal(bodyBytes, &out); err != nil {
		return 0, fmt.Errorf("predictor returned invalid JSON: %w", err)
	}
	if out.Result != 0 && out.Result != 1 {
		return 0, fmt.Errorf("predictor returned out-of-range label %d", out.Result)
	}
	return out.Result, nil
}
