// Package client is the HTTP implementation of session.Backend against the
// ClauseEase API. Server-sent failures surface as their {message} text;
// transport failures and malformed bodies collapse into
// domain.ErrUnreachable so the caller never sees raw exception detail.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"time"

	"github.com/clauseease/clauseease/internal/domain"
)

// Client talks to a running ClauseEase server.
type Client struct {
	baseURL string
	http    *http.Client
}

// New creates a client for the given base URL, e.g. "http://localhost:8080".
func New(baseURL string, timeout time.Duration) *Client {
	if timeout == 0 {
		timeout = 60 * time.Second
	}
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
	}
}

type messageBody struct {
	Message string `json:"message"`
}

// Register creates an account and returns the server's confirmation message.
func (c *Client) Register(ctx context.Context, name, email, password string) (string, error) {
	body := map[string]string{"name": name, "email": email, "password": password}
	var out messageBody
	if err := c.postJSON(ctx, "/api/register", body, nil, &out); err != nil {
		return "", err
	}
	return out.Message, nil
}

type loginResponse struct {
	Message string            `json:"message"`
	User    domain.PublicUser `json:"user"`
	Token   string            `json:"token"`
}

// Login authenticates and returns the public user plus the session token.
func (c *Client) Login(ctx context.Context, email, password string) (*domain.PublicUser, string, error) {
	body := map[string]string{"email": email, "password": password}
	var out loginResponse
	if err := c.postJSON(ctx, "/api/login", body, nil, &out); err != nil {
		return nil, "", err
	}
	return &out.User, out.Token, nil
}

// AnalyzeText submits pasted text for analysis.
func (c *Client) AnalyzeText(ctx context.Context, text, attributedEmail string) (*domain.AnalysisResult, error) {
	headers := attributionHeaders(attributedEmail)
	var out domain.AnalysisResult
	if err := c.postJSON(ctx, "/api/analyze", map[string]string{"text": text}, headers, &out); err != nil {
		return nil, err
	}
	out.Normalize()
	return &out, nil
}

// AnalyzeFile submits an uploaded document for analysis.
func (c *Client) AnalyzeFile(ctx context.Context, filename string, content io.Reader, attributedEmail string) (*domain.AnalysisResult, error) {
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

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/analyze", &buf)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	for k, v := range attributionHeaders(attributedEmail) {
		req.Header.Set(k, v)
	}

	var out domain.AnalysisResult
	if err := c.do(req, &out); err != nil {
		return nil, err
	}
	out.Normalize()
	return &out, nil
}

// History fetches a user's past runs, newest first.
func (c *Client) History(ctx context.Context, email string) ([]domain.HistoryEntry, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/history?email="+url.QueryEscape(email), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	var entries []domain.HistoryEntry
	if err := c.do(req, &entries); err != nil {
		return nil, err
	}
	if entries == nil {
		entries = []domain.HistoryEntry{}
	}
	return entries, nil
}

type exportResponse struct {
	Message  string `json:"message"`
	Filename string `json:"filename"`
}

// Export requests a rendered PDF report.
func (c *Client) Export(ctx context.Context, req domain.ExportRequest) (*domain.ExportResult, error) {
	var out exportResponse
	if err := c.postJSON(ctx, "/api/export-pdf", req, nil, &out); err != nil {
		return nil, err
	}
	return &domain.ExportResult{Filename: out.Filename}, nil
}

func attributionHeaders(email string) map[string]string {
	if email == "" {
		return nil
	}
	return map[string]string{"X-User-Email": email}
}

func (c *Client) postJSON(ctx context.Context, path string, body any, headers map[string]string, out any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return c.do(req, out)
}

// do sends the request and decodes the response. Non-2xx responses become
// errors carrying the server's message; anything unparseable becomes
// domain.ErrUnreachable.
func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrUnreachable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var msg messageBody
		if err := json.NewDecoder(resp.Body).Decode(&msg); err != nil || msg.Message == "" {
			return fmt.Errorf("%w: status %d", domain.ErrUnreachable, resp.StatusCode)
		}
		return errors.New(msg.Message)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrUnreachable, err)
	}
	return nil
}
