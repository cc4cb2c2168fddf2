package language

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Detector detects the language of a text.
type Detector interface {
	DetectLanguage(ctx context.Context, text string) (string, error)
}

// Translator translates a text into a single target language.
type Translator interface {
	TranslateText(ctx context.Context, text, targetLanguage string) (string, error)
}

// Client talks to the translation service REST API (v2 wire format).
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewClient constructs the translation API client.
func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

type detectResponse struct {
	Data struct {
		Detections [][]struct {
			Language   string  `json:"language"`
			Confidence float64 `json:"confidence"`
		} `json:"detections"`
	} `json:"data"`
}

type translateResponse struct {
	Data struct {
		Translations []struct {
			TranslatedText string `json:"translatedText"`
		} `json:"translations"`
	} `json:"data"`
}

// DetectLanguage returns the detected language code for text.
func (c *Client) DetectLanguage(ctx context.Context, text string) (string, error) {
	body := map[string]any{"q": text}

	var resp detectResponse
	if err := c.post(ctx, c.baseURL+"/detect", body, &resp); err != nil {
		return "", err
	}

	if len(resp.Data.Detections) == 0 || len(resp.Data.Detections[0]) == 0 {
		return "", fmt.Errorf("detect: empty response")
	}
	return resp.Data.Detections[0][0].Language, nil
}

// TranslateText translates text into targetLanguage.
func (c *Client) TranslateText(ctx context.Context, text, targetLanguage string) (string, error) {
	body := map[string]any{
		"q":      []string{text},
		"target": targetLanguage,
		"format": "text",
	}

	var resp translateResponse
	if err := c.post(ctx, c.baseURL, body, &resp); err != nil {
		return "", err
	}

	if len(resp.Data.Translations) == 0 || resp.Data.Translations[0].TranslatedText == "" {
		return "", fmt.Errorf("translate: empty response")
	}
	return resp.Data.Translations[0].TranslatedText, nil
}

func (c *Client) post(ctx context.Context, url string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url+"?key="+c.apiKey, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("translation api status %d: %s", resp.StatusCode, truncate(string(data), 200))
	}

	return json.Unmarshal(data, out)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
