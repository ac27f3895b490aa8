// Package pdfexport is the HTTP client for the external report rendering
// service.
package pdfexport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/clauseease/clauseease/internal/config"
	"github.com/clauseease/clauseease/internal/domain"
)

// Gateway renders a PDF report from analysis summary fields.
type Gateway interface {
	Render(ctx context.Context, req domain.ExportRequest) (*domain.ExportResult, error)
}

// Client is the HTTP implementation of Gateway.
type Client struct {
	baseURL string
	client  *http.Client
}

// NewClient creates a new PDF renderer client
func NewClient(cfg config.PDFConfig) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL: cfg.BaseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

type renderResponse struct {
	Message  string `json:"message"`
	Filename string `json:"filename"`
}

// Render asks the gateway for a report and returns the artifact name.
func (c *Client) Render(ctx context.Context, req domain.ExportRequest) (*domain.ExportResult, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/render", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("renderer request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var rr renderResponse
		if err := json.NewDecoder(resp.Body).Decode(&rr); err == nil && rr.Message != "" {
			return nil, fmt.Errorf("renderer returned status %d: %s", resp.StatusCode, rr.Message)
		}
		return nil, fmt.Errorf("renderer returned status %d", resp.StatusCode)
	}

	var rr renderResponse
	if err := json.NewDecoder(resp.Body).Decode(&rr); err != nil {
		return nil, fmt.Errorf("failed to decode renderer response: %w", err)
	}

	return &domain.ExportResult{Filename: rr.Filename}, nil
}
