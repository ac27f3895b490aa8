package domain

import "time"

// Readability holds the numeric scores computed by the analysis gateway.
type Readability struct {
	FleschKincaidGrade float64 `json:"flesch_kincaid_grade"`
	GunningFog         float64 `json:"gunning_fog"`
	FleschReadingEase  float64 `json:"flesch_reading_ease"`
}

// WordMark annotates a single token with its complexity class.
// Complexity is one of "simple", "normal", "complex" or "none" for
// punctuation and whitespace.
type WordMark struct {
	Text       string `json:"text"`
	Complexity string `json:"complexity"`
	POS        string `json:"pos,omitempty"`
}

// AnalysisResult is the full payload returned to clients from /api/analyze.
type AnalysisResult struct {
	Readability     Readability `json:"readability"`
	ComplexityLabel string      `json:"complexity_label"`
	WordAnalysis    []WordMark  `json:"word_analysis"`
	WordCount       int         `json:"word_count"`
	SentenceCount   int         `json:"sentence_count"`
	CleanedText     string      `json:"cleaned_text"`
	SentenceTokens  []string    `json:"sentence_tokens"`
	WordTokens      []string    `json:"word_tokens"`
	OriginalText    string      `json:"original_text"`
	FileSaved       bool        `json:"file_saved"`
	SavedFilename   string      `json:"saved_filename,omitempty"`
}

// Normalize replaces nil optional arrays with empty ones so consumers
// never have to distinguish absent from empty.
func (r *AnalysisResult) Normalize() {
	if r.WordAnalysis == nil {
		r.WordAnalysis = []WordMark{}
	}
	if r.SentenceTokens == nil {
		r.SentenceTokens = []string{}
	}
	if r.WordTokens == nil {
		r.WordTokens = []string{}
	}
}

// HistoryEntry is one persisted analysis run.
type HistoryEntry struct {
	ID          int64     `json:"id"`
	TextPreview string    `json:"text_preview"`
	FleschScore float64   `json:"flesch_score"`
	FogScore    float64   `json:"fog_score"`
	CreatedAt   time.Time `json:"created_at"`
}

// ExportRequest asks the PDF gateway to render a report.
type ExportRequest struct {
	Text   string  `json:"text" validate:"required"`
	Flesch float64 `json:"flesch"`
	Fog    float64 `json:"fog"`
}

// ExportResult names the rendered artifact.
type ExportResult struct {
	Filename string `json:"filename"`
}
