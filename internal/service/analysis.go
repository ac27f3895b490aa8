package service

import (
	"context"
	"io"
	"strings"

	"github.com/clauseease/clauseease/internal/domain"
	"github.com/clauseease/clauseease/internal/gateway/analyzer"
	"github.com/clauseease/clauseease/internal/gateway/pdfexport"
	"github.com/rs/zerolog/log"
)

const historyPreviewLen = 200

// HistoryStore persists and lists analysis runs.
type HistoryStore interface {
	Insert(ctx context.Context, userID int64, entry *domain.HistoryEntry) error
	ListByEmail(ctx context.Context, email string) ([]domain.HistoryEntry, error)
}

// ResultCache memoizes analysis results by submitted text. May be nil.
type ResultCache interface {
	Get(ctx context.Context, text string) (*domain.AnalysisResult, error)
	Set(ctx context.Context, text string, result *domain.AnalysisResult) error
}

// AnalysisService coordinates the analysis gateway, the result cache and
// history attribution.
type AnalysisService struct {
	gateway analyzer.Gateway
	pdf     pdfexport.Gateway
	users   UserStore
	history HistoryStore
	cache   ResultCache
}

// NewAnalysisService creates a new analysis service. cache may be nil.
func NewAnalysisService(
	gateway analyzer.Gateway,
	pdf pdfexport.Gateway,
	users UserStore,
	history HistoryStore,
	cache ResultCache,
) *AnalysisService {
	return &AnalysisService{
		gateway: gateway,
		pdf:     pdf,
		users:   users,
		history: history,
		cache:   cache,
	}
}

// AnalyzeText scores pasted text. attributedEmail, when non-empty, names the
// user whose history the run is recorded under; an unknown email is ignored.
func (s *AnalysisService) AnalyzeText(ctx context.Context, text, attributedEmail string) (*domain.AnalysisResult, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, domain.ErrEmptyText
	}

	if s.cache != nil {
		cached, err := s.cache.Get(ctx, text)
		if err != nil {
			log.Warn().Err(err).Msg("analysis cache read failed")
		}
		if cached != nil {
			cached.Normalize()
			s.recordHistory(ctx, attributedEmail, text, cached)
			return cached, nil
		}
	}

	result, err := s.gateway.Analyze(ctx, text)
	if err != nil {
		return nil, err
	}
	result.Normalize()
	if result.OriginalText == "" {
		result.OriginalText = text
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, text, result); err != nil {
			log.Warn().Err(err).Msg("analysis cache write failed")
		}
	}

	s.recordHistory(ctx, attributedEmail, text, result)
	return result, nil
}

// AnalyzeFile scores an uploaded document. The gateway extracts the text.
func (s *AnalysisService) AnalyzeFile(ctx context.Context, filename string, content io.Reader, attributedEmail string) (*domain.AnalysisResult, error) {
	result, err := s.gateway.AnalyzeFile(ctx, filename, content)
	if err != nil {
		return nil, err
	}
	result.Normalize()

	preview := result.OriginalText
	if preview == "" {
		preview = result.CleanedText
	}
	s.recordHistory(ctx, attributedEmail, preview, result)
	return result, nil
}

// recordHistory is a best-effort side effect: failures are logged and never
// fail the analysis itself.
func (s *AnalysisService) recordHistory(ctx context.Context, email, text string, result *domain.AnalysisResult) {
	if email == "" {
		return
	}

	user, err := s.users.GetByEmail(ctx, domain.NormalizeEmail(email))
	if err != nil {
		log.Warn().Err(err).Msg("history attribution lookup failed")
		return
	}
	if user == nil {
		return
	}

	entry := &domain.HistoryEntry{
		TextPreview: textPreview(text),
		FleschScore: result.Readability.FleschReadingEase,
		FogScore:    result.Readability.GunningFog,
	}
	if err := s.history.Insert(ctx, user.ID, entry); err != nil {
		log.Warn().Err(err).Int64("user_id", user.ID).Msg("failed to save analysis history")
	}
}

// History returns a user's past runs, newest first. An unknown email yields
// an empty list, not an error.
func (s *AnalysisService) History(ctx context.Context, email string) ([]domain.HistoryEntry, error) {
	entries, err := s.history.ListByEmail(ctx, domain.NormalizeEmail(email))
	if err != nil {
		return nil, err
	}
	if entries == nil {
		entries = []domain.HistoryEntry{}
	}
	return entries, nil
}

// Export asks the PDF gateway for a rendered report.
func (s *AnalysisService) Export(ctx context.Context, req domain.ExportRequest) (*domain.ExportResult, error) {
	if strings.TrimSpace(req.Text) == "" {
		return nil, domain.ErrEmptyText
	}
	return s.pdf.Render(ctx, req)
}

func textPreview(text string) string {
	runes := []rune(text)
	if len(runes) <= historyPreviewLen {
		return text
	}
	return string(runes[:historyPreviewLen]) + "..."
}
