package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/clauseease/clauseease/internal/api/middleware"
	"github.com/clauseease/clauseease/internal/api/response"
	"github.com/clauseease/clauseease/internal/domain"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Analysis is the analysis surface handlers call into.
type Analysis interface {
	AnalyzeText(ctx context.Context, text, attributedEmail string) (*domain.AnalysisResult, error)
	AnalyzeFile(ctx context.Context, filename string, content io.Reader, attributedEmail string) (*domain.AnalysisResult, error)
	History(ctx context.Context, email string) ([]domain.HistoryEntry, error)
	Export(ctx context.Context, req domain.ExportRequest) (*domain.ExportResult, error)
}

// AnalyzeHandler handles text analysis endpoints
type AnalyzeHandler struct {
	analysis  Analysis
	uploadDir string
	maxBytes  int64
}

// NewAnalyzeHandler creates a new analyze handler
func NewAnalyzeHandler(analysis Analysis, uploadDir string, maxUploadMB int64) *AnalyzeHandler {
	os.MkdirAll(uploadDir, 0755)
	return &AnalyzeHandler{
		analysis:  analysis,
		uploadDir: uploadDir,
		maxBytes:  maxUploadMB << 20,
	}
}

// Analyze accepts either JSON {text} or a multipart file and relays the
// readability result. An attributed email (token or X-User-Email header)
// records the run in that user's history.
func (h *AnalyzeHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	email, _ := middleware.GetUserEmail(r.Context())

	contentType := r.Header.Get("Content-Type")
	if strings.HasPrefix(contentType, "multipart/form-data") {
		h.analyzeUpload(w, r, email)
		return
	}

	var input struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	result, err := h.analysis.AnalyzeText(r.Context(), input.Text, email)
	if err != nil {
		h.writeAnalysisError(w, err)
		return
	}

	response.OK(w, result)
}

func (h *AnalyzeHandler) analyzeUpload(w http.ResponseWriter, r *http.Request, email string) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes)
	if err := r.ParseMultipartForm(h.maxBytes); err != nil {
		response.BadRequest(w, "Upload too large or malformed")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		response.BadRequest(w, "No text provided or file is empty")
		return
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		log.Error().Err(err).Msg("failed to read upload")
		response.InternalError(w)
		return
	}
	if len(content) == 0 {
		response.BadRequest(w, "No text provided or file is empty")
		return
	}

	savedName, saveErr := h.saveUpload(header.Filename, content)
	if saveErr != nil {
		// The copy is a convenience; analysis still proceeds.
		log.Warn().Err(saveErr).Str("filename", header.Filename).Msg("failed to keep upload copy")
	}

	result, err := h.analysis.AnalyzeFile(r.Context(), header.Filename, bytes.NewReader(content), email)
	if err != nil {
		h.writeAnalysisError(w, err)
		return
	}

	if saveErr == nil {
		result.FileSaved = true
		result.SavedFilename = savedName
	}

	response.OK(w, result)
}

// saveUpload keeps a uniquely named copy of the uploaded document.
func (h *AnalyzeHandler) saveUpload(originalName string, content []byte) (string, error) {
	ext := strings.ToLower(filepath.Ext(originalName))
	uniqueName := fmt.Sprintf("%s%s", uuid.New().String(), ext)
	destPath := filepath.Join(h.uploadDir, uniqueName)

	if err := os.WriteFile(destPath, content, 0644); err != nil {
		return "", err
	}
	return uniqueName, nil
}

func (h *AnalyzeHandler) writeAnalysisError(w http.ResponseWriter, err error) {
	if errors.Is(err, domain.ErrEmptyText) {
		response.BadRequest(w, "No text provided or file is empty")
		return
	}
	log.Error().Err(err).Msg("analysis failed")
	response.UpstreamUnavailable(w, "Analysis service unavailable")
}

// History returns the attributed user's past runs, newest first.
func (h *AnalyzeHandler) History(w http.ResponseWriter, r *http.Request) {
	email := r.URL.Query().Get("email")
	if email == "" {
		response.BadRequest(w, "Email is required")
		return
	}

	entries, err := h.analysis.History(r.Context(), email)
	if err != nil {
		log.Error().Err(err).Msg("history lookup failed")
		response.InternalError(w)
		return
	}

	response.OK(w, entries)
}

// exportSuccess names the rendered report.
type exportSuccess struct {
	Message  string `json:"message"`
	Filename string `json:"filename"`
}

// Export asks the PDF gateway for a rendered report.
func (h *AnalyzeHandler) Export(w http.ResponseWriter, r *http.Request) {
	var req domain.ExportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	if strings.TrimSpace(req.Text) == "" {
		response.BadRequest(w, "Text is required")
		return
	}

	result, err := h.analysis.Export(r.Context(), req)
	if err != nil {
		log.Error().Err(err).Msg("pdf export failed")
		response.UpstreamUnavailable(w, "PDF renderer unavailable")
		return
	}

	response.OK(w, exportSuccess{Message: "PDF generated", Filename: result.Filename})
}
