package translate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Translator is the external text-translation collaborator. Failures are
// non-fatal for callers: the convention is to fall back to the input text.
type Translator interface {
	Translate(ctx context.Context, text, source, target string) (string, error)
}

// HTTPTranslator talks to a LibreTranslate-compatible endpoint.
type HTTPTranslator struct {
	BaseURL string
	APIKey  string
	client  *http.Client
}

func NewHTTPTranslator(baseURL, apiKey string) *HTTPTranslator {
	if baseURL == "" {
		baseURL = "http://localhost:5000"
	}
	return &HTTPTranslator{
		BaseURL: baseURL,
		APIKey:  apiKey,
		client:  &http.Client{Timeout: 8 * time.Second},
	}
}

type translateRequest struct {
	Q      string `json:"q"`
	Source string `json:"source"`
	Target string `json:"target"`
	APIKey string `json:"api_key,omitempty"`
}

type translateResponse struct {
	TranslatedText string `json:"translatedText"`
}

func (t *HTTPTranslator) Translate(ctx context.Context, text, source, target string) (string, error) {
	jsonBody, err := json.Marshal(translateRequest{Q: text, Source: source, Target: target, APIKey: t.APIKey})
	if err != nil {
		return "", err
	}

	endpoint := fmt.Sprintf("%s/translate", t.BaseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewBuffer(jsonBody))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("translator request failed: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("translator error: %s", string(bodyBytes))
	}

	var out translateResponse
	if err := json.Unmarshal(bodyBytes, &out); err != nil {
		return "", err
	}
	if out.TranslatedText == "" {
		return "", fmt.Errorf("translator returned empty result")
	}
	return out.TranslatedText, nil
}

// Noop is used when no translation service is configured; every call
// reports failure so callers keep the original text.
type Noop struct{}

func (Noop) Translate(ctx context.Context, text, source, target string) (string, error) {
	return "", fmt.Errorf("translation service not configured")
}
