// Package analyzer calls the external image analysis service that produces a
// caption and OCR text for uploaded medical images.
package analyzer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"
)

const (
	// FallbackCaption is substituted when the service is unreachable or
	// answers with an error. Image ingestion never fails on analyzer outages.
	FallbackCaption = "Error analyzing image."

	defaultTimeout = 30 * time.Second
)

// Result is the analyzer's reply. Both fields are optional on the wire;
// absent fields decode to empty strings.
type Result struct {
	Caption       string `json:"caption"`
	ExtractedText string `json:"extracted_text"`
}

// Client posts image files to the analysis service.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient constructs a Client for the service at baseURL. A non-positive
// timeout falls back to a conservative 30s default.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL:    strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Analyze uploads the image as multipart form data and decodes the JSON
// reply. Network errors, non-2xx statuses, and malformed bodies all surface
// as errors; the caller applies the documented fallback.
func (c *Client) Analyze(ctx context.Context, fileName string, data []byte) (Result, error) {
	if c.baseURL == "" {
		return Result{}, fmt.Errorf("analyzer: base url not configured")
	}

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", fileName)
	if err != nil {
		return Result{}, fmt.Errorf("analyzer: build form: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return Result{}, fmt.Errorf("analyzer: build form: %w", err)
	}
	if err := writer.Close(); err != nil {
		return Result{}, fmt.Errorf("analyzer: build form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/analyze", &body)
	if err != nil {
		return Result{}, fmt.Errorf("analyzer: build request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Result{}, fmt.Errorf("analyzer: call failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return Result{}, fmt.Errorf("analyzer: status %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet)))
	}

	var result Result
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return Result{}, fmt.Errorf("analyzer: decode response: %w", err)
	}
	return result, nil
}
