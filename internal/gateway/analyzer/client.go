// Package analyzer is the HTTP client for the external readability analysis
// service. The readability computation itself (Flesch-Kincaid, Gunning-Fog,
// tokenization) lives in that service; this package only speaks its JSON
// contract.
package analyzer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/clauseease/clauseease/internal/config"
	"github.com/clauseease/clauseease/internal/domain"
)

// Gateway computes readability metrics for submitted text.
type Gateway interface {
	// Analyze scores raw text.
	Analyze(ctx context.Context, text string) (*domain.AnalysisResult, error)

	// AnalyzeFile scores the text extracted from an uploaded document.
	AnalyzeFile(ctx context.Context, filename string, content io.Reader) (*domain.AnalysisResult, error)
}

// Client is the HTTP implementation of Gateway.
type Client struct {
	baseURL string
	client  *http.Client
}

// NewClient creates a new analyzer client
func NewClient(cfg config.AnalyzerConfig) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 60 * time.Second
	}
	return &Client{
		baseURL: cfg.BaseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

type analyzeRequest struct {
	Text string `json:"text"`
}

type gatewayError struct {
	Message string `json:"message"`
}

// Analyze scores raw text.
func (c *Client) Analyze(ctx context.Context, text string) (*domain.AnalysisResult, error) {
	body, err := json.Marshal(analyzeRequest{Text: text})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/analyze", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	return c.do(httpReq)
}

// AnalyzeFile forwards an uploaded document as multipart form data.
func (c *Client) AnalyzeFile(ctx context.Context, filename string, content io.Reader) (*domain.AnalysisResult, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return nil, fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := io.Copy(part, content); err != nil {
		return nil, fmt.Errorf("failed to copy file content: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize form: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/analyze", &buf)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", mw.FormDataContentType())

	return c.do(httpReq)
}

func (c *Client) do(req *http.Request) (*domain.AnalysisResult, error) {
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("analyzer request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var gerr gatewayError
		if err := json.NewDecoder(resp.Body).Decode(&gerr); err == nil && gerr.Message != "" {
			return nil, fmt.Errorf("analyzer returned status %d: %s", resp.StatusCode, gerr.Message)
		}
		return nil, fmt.Errorf("analyzer returned status %d", resp.StatusCode)
	}

	var result domain.AnalysisResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode analyzer response: %w", err)
	}

	result.Normalize()
	return &result, nil
}
