// Package sentiment scores free-text answers with the Google Cloud Natural
// Language API. The score reflects the overall emotional leaning of a text
// (-1.0 to 1.0) and the magnitude its strength.
package sentiment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"time"
)

// DefaultEndpoint is the Google Cloud Natural Language REST endpoint.
const DefaultEndpoint = "https://language.googleapis.com/v1/documents:analyzeSentiment"

// Result holds the sentiment of a single text.
type Result struct {
	// Score ranges from -1.0 (negative) to 1.0 (positive).
	Score float64
	// Magnitude indicates the overall strength of emotion, from 0 upward.
	Magnitude float64
}

// Analyzer scores the sentiment of a text.
type Analyzer interface {
	Analyze(ctx context.Context, text string) (Result, error)
}

// Opts holds configuration for the Google client.
type Opts struct {
	APIKey   string
	Endpoint string
	HTTP     *http.Client
}

// Option configures client creation.
type Option func(*Opts)

// WithAPIKey sets the Google Cloud API key.
func WithAPIKey(key string) Option {
	return func(o *Opts) { o.APIKey = key }
}

// WithEndpoint overrides the API endpoint.
func WithEndpoint(endpoint string) Option {
	return func(o *Opts) { o.Endpoint = endpoint }
}

// WithHTTPClient sets the HTTP client used for requests.
func WithHTTPClient(c *http.Client) Option {
	return func(o *Opts) { o.HTTP = c }
}

// GoogleClient calls the Google Cloud Natural Language API.
type GoogleClient struct {
	apiKey   string
	endpoint string
	http     *http.Client
}

// NewGoogleClient creates a sentiment client. The API key falls back to the
// GOOGLE_API_KEY environment variable.
func NewGoogleClient(opts ...Option) (*GoogleClient, error) {
	cfg := Opts{Endpoint: DefaultEndpoint}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.APIKey == "" {
		cfg.APIKey = os.Getenv("GOOGLE_API_KEY")
	}
	if cfg.APIKey == "" {
		slog.Error("NewGoogleClient: API key not provided")
		return nil, fmt.Errorf("google API key not set")
	}
	if cfg.HTTP == nil {
		cfg.HTTP = &http.Client{Timeout: 15 * time.Second}
	}
	slog.Debug("GoogleClient initialized", "endpoint", cfg.Endpoint)
	return &GoogleClient{apiKey: cfg.APIKey, endpoint: cfg.Endpoint, http: cfg.HTTP}, nil
}

type analyzeRequest struct {
	Document struct {
		Type    string `json:"type"`
		Content string `json:"content"`
	} `json:"document"`
}

type analyzeResponse struct {
	DocumentSentiment struct {
		Score     float64 `json:"score"`
		Magnitude float64 `json:"magnitude"`
	} `json:"documentSentiment"`
}

// Analyze scores the sentiment of the given text.
func (c *GoogleClient) Analyze(ctx context.Context, text string) (Result, error) {
	var reqBody analyzeRequest
	reqBody.Document.Type = "PLAIN_TEXT"
	reqBody.Document.Content = text

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return Result{}, fmt.Errorf("failed to encode request: %w", err)
	}

	u := c.endpoint + "?key=" + url.QueryEscape(c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(payload))
	if err != nil {
		return Result{}, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return Result{}, fmt.Errorf("sentiment request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		slog.Warn("GoogleClient.Analyze: non-OK status", "status", resp.StatusCode)
		return Result{}, fmt.Errorf("sentiment request failed with status %d", resp.StatusCode)
	}

	var decoded analyzeResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return Result{}, fmt.Errorf("failed to decode response: %w", err)
	}
	return Result{
		Score:     decoded.DocumentSentiment.Score,
		Magnitude: decoded.DocumentSentiment.Magnitude,
	}, nil
}
