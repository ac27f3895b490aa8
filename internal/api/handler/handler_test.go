package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/clauseease/clauseease/internal/api/handler"
	"github.com/clauseease/clauseease/internal/api/middleware"
	"github.com/clauseease/clauseease/internal/domain"
	"github.com/clauseease/clauseease/internal/security"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockCredentials mocks the Credentials interface
type MockCredentials struct {
	mock.Mock
}

func (m *MockCredentials) Register(ctx context.Context, input domain.UserCreate) (*domain.User, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockCredentials) Login(ctx context.Context, input domain.UserLogin) (*domain.PublicUser, string, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, "", args.Error(2)
	}
	return args.Get(0).(*domain.PublicUser), args.String(1), args.Error(2)
}

// MockAnalysis mocks the Analysis interface
type MockAnalysis struct {
	mock.Mock
}

func (m *MockAnalysis) AnalyzeText(ctx context.Context, text, attributedEmail string) (*domain.AnalysisResult, error) {
	args := m.Called(ctx, text, attributedEmail)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AnalysisResult), args.Error(1)
}

func (m *MockAnalysis) AnalyzeFile(ctx context.Context, filename string, content io.Reader, attributedEmail string) (*domain.AnalysisResult, error) {
	args := m.Called(ctx, filename, content, attributedEmail)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AnalysisResult), args.Error(1)
}

func (m *MockAnalysis) History(ctx context.Context, email string) ([]domain.HistoryEntry, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.HistoryEntry), args.Error(1)
}

func (m *MockAnalysis) Export(ctx context.Context, req domain.ExportRequest) (*domain.ExportResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ExportResult), args.Error(1)
}

// Helper to make JSON request
func makeJSONRequest(method, path string, body any) *http.Request {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	return req
}

func decodeMessage(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Message string `json:"message"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	return body.Message
}

func TestAuthHandler_Register(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		auth := new(MockCredentials)
		h := handler.NewAuthHandler(auth)

		auth.On("Register", mock.Anything, mock.AnythingOfType("domain.UserCreate")).
			Return(&domain.User{ID: 1, Name: "Alice", Email: "alice@example.com"}, nil)

		req := makeJSONRequest(http.MethodPost, "/api/register", map[string]string{
			"name": "Alice", "email": "alice@example.com", "password": "secret123",
		})
		rec := httptest.NewRecorder()
		h.Register(rec, req)

		assert.Equal(t, http.StatusCreated, rec.Code)
		assert.Equal(t, "Registered successfully", decodeMessage(t, rec))
	})

	t.Run("missing fields", func(t *testing.T) {
		auth := new(MockCredentials)
		h := handler.NewAuthHandler(auth)

		req := makeJSONRequest(http.MethodPost, "/api/register", map[string]string{
			"email": "alice@example.com",
		})
		rec := httptest.NewRecorder()
		h.Register(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "All fields are required", decodeMessage(t, rec))
		auth.AssertNotCalled(t, "Register", mock.Anything, mock.Anything)
	})

	t.Run("invalid email", func(t *testing.T) {
		auth := new(MockCredentials)
		h := handler.NewAuthHandler(auth)

		req := makeJSONRequest(http.MethodPost, "/api/register", map[string]string{
			"name": "Alice", "email": "not-an-email", "password": "secret123",
		})
		rec := httptest.NewRecorder()
		h.Register(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "Invalid email format", decodeMessage(t, rec))
	})

	t.Run("short password", func(t *testing.T) {
		auth := new(MockCredentials)
		h := handler.NewAuthHandler(auth)

		req := makeJSONRequest(http.MethodPost, "/api/register", map[string]string{
			"name": "Alice", "email": "alice@example.com", "password": "abc",
		})
		rec := httptest.NewRecorder()
		h.Register(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "Password must be at least 6 characters", decodeMessage(t, rec))
	})

	t.Run("duplicate email", func(t *testing.T) {
		auth := new(MockCredentials)
		h := handler.NewAuthHandler(auth)

		auth.On("Register", mock.Anything, mock.Anything).Return(nil, domain.ErrDuplicateEmail)

		req := makeJSONRequest(http.MethodPost, "/api/register", map[string]string{
			"name": "Alice", "email": "alice@example.com", "password": "secret123",
		})
		rec := httptest.NewRecorder()
		h.Register(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "Email already registered", decodeMessage(t, rec))
	})

	t.Run("internal failure stays generic", func(t *testing.T) {
		auth := new(MockCredentials)
		h := handler.NewAuthHandler(auth)

		auth.On("Register", mock.Anything, mock.Anything).Return(nil, errors.New("dial tcp: connection refused"))

		req := makeJSONRequest(http.MethodPost, "/api/register", map[string]string{
			"name": "Alice", "email": "alice@example.com", "password": "secret123",
		})
		rec := httptest.NewRecorder()
		h.Register(rec, req)

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Equal(t, "Server error", decodeMessage(t, rec))
		assert.NotContains(t, rec.Body.String(), "connection refused")
	})
}

func TestAuthHandler_Login(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		auth := new(MockCredentials)
		h := handler.NewAuthHandler(auth)

		auth.On("Login", mock.Anything, mock.AnythingOfType("domain.UserLogin")).
			Return(&domain.PublicUser{ID: 1, Name: "Alice", Email: "alice@example.com"}, "tok123", nil)

		req := makeJSONRequest(http.MethodPost, "/api/login", map[string]string{
			"email": "alice@example.com", "password": "secret123",
		})
		rec := httptest.NewRecorder()
		h.Login(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)

		var body struct {
			Message string            `json:"message"`
			User    domain.PublicUser `json:"user"`
			Token   string            `json:"token"`
		}
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
		assert.Equal(t, "Login successful. Welcome Alice!", body.Message)
		assert.Equal(t, "alice@example.com", body.User.Email)
		assert.Equal(t, "tok123", body.Token)
	})

	t.Run("missing credentials", func(t *testing.T) {
		auth := new(MockCredentials)
		h := handler.NewAuthHandler(auth)

		req := makeJSONRequest(http.MethodPost, "/api/login", map[string]string{"email": "alice@example.com"})
		rec := httptest.NewRecorder()
		h.Login(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "Email & password required", decodeMessage(t, rec))
	})

	t.Run("invalid credentials", func(t *testing.T) {
		auth := new(MockCredentials)
		h := handler.NewAuthHandler(auth)

		auth.On("Login", mock.Anything, mock.Anything).Return(nil, "", domain.ErrInvalidCredentials)

		req := makeJSONRequest(http.MethodPost, "/api/login", map[string]string{
			"email": "alice@example.com", "password": "wrong",
		})
		rec := httptest.NewRecorder()
		h.Login(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "Invalid email or password", decodeMessage(t, rec))
	})
}

func TestAnalyzeHandler_Analyze(t *testing.T) {
	newHandler := func(analysis handler.Analysis, t *testing.T) *handler.AnalyzeHandler {
		return handler.NewAnalyzeHandler(analysis, t.TempDir(), 5)
	}

	t.Run("json text", func(t *testing.T) {
		analysis := new(MockAnalysis)
		h := newHandler(analysis, t)

		analysis.On("AnalyzeText", mock.Anything, "Some legal text", "").
			Return(&domain.AnalysisResult{WordCount: 3}, nil)

		req := makeJSONRequest(http.MethodPost, "/api/analyze", map[string]string{"text": "Some legal text"})
		rec := httptest.NewRecorder()
		h.Analyze(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)

		var result domain.AnalysisResult
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&result))
		assert.Equal(t, 3, result.WordCount)
	})

	t.Run("empty text", func(t *testing.T) {
		analysis := new(MockAnalysis)
		h := newHandler(analysis, t)

		analysis.On("AnalyzeText", mock.Anything, "", "").Return(nil, domain.ErrEmptyText)

		req := makeJSONRequest(http.MethodPost, "/api/analyze", map[string]string{"text": ""})
		rec := httptest.NewRecorder()
		h.Analyze(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "No text provided or file is empty", decodeMessage(t, rec))
	})

	t.Run("gateway down", func(t *testing.T) {
		analysis := new(MockAnalysis)
		h := newHandler(analysis, t)

		analysis.On("AnalyzeText", mock.Anything, "Some legal text", "").
			Return(nil, errors.New("connection refused"))

		req := makeJSONRequest(http.MethodPost, "/api/analyze", map[string]string{"text": "Some legal text"})
		rec := httptest.NewRecorder()
		h.Analyze(rec, req)

		assert.Equal(t, http.StatusBadGateway, rec.Code)
		assert.Equal(t, "Analysis service unavailable", decodeMessage(t, rec))
	})

	t.Run("attributed email flows through", func(t *testing.T) {
		analysis := new(MockAnalysis)
		h := newHandler(analysis, t)
		jwtManager := security.NewJWTManager("test-secret-key-32-characters!!!", 0)
		attribution := middleware.NewAttributionMiddleware(jwtManager)

		analysis.On("AnalyzeText", mock.Anything, "Some legal text", "alice@example.com").
			Return(&domain.AnalysisResult{WordCount: 3}, nil)

		req := makeJSONRequest(http.MethodPost, "/api/analyze", map[string]string{"text": "Some legal text"})
		req.Header.Set("X-User-Email", "Alice@Example.com")
		rec := httptest.NewRecorder()
		attribution.Attribute(http.HandlerFunc(h.Analyze)).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		analysis.AssertExpectations(t)
	})

	t.Run("multipart upload", func(t *testing.T) {
		analysis := new(MockAnalysis)
		h := newHandler(analysis, t)

		analysis.On("AnalyzeFile", mock.Anything, "contract.txt", mock.Anything, "").
			Return(&domain.AnalysisResult{WordCount: 2}, nil)

		var buf bytes.Buffer
		mw := multipart.NewWriter(&buf)
		part, err := mw.CreateFormFile("file", "contract.txt")
		require.NoError(t, err)
		_, err = part.Write([]byte("file body"))
		require.NoError(t, err)
		require.NoError(t, mw.Close())

		req := httptest.NewRequest(http.MethodPost, "/api/analyze", &buf)
		req.Header.Set("Content-Type", mw.FormDataContentType())
		rec := httptest.NewRecorder()
		h.Analyze(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)

		var result domain.AnalysisResult
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&result))
		assert.True(t, result.FileSaved)
		assert.NotEmpty(t, result.SavedFilename)
	})

	t.Run("empty upload", func(t *testing.T) {
		analysis := new(MockAnalysis)
		h := newHandler(analysis, t)

		var buf bytes.Buffer
		mw := multipart.NewWriter(&buf)
		_, err := mw.CreateFormFile("file", "empty.txt")
		require.NoError(t, err)
		require.NoError(t, mw.Close())

		req := httptest.NewRequest(http.MethodPost, "/api/analyze", &buf)
		req.Header.Set("Content-Type", mw.FormDataContentType())
		rec := httptest.NewRecorder()
		h.Analyze(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "No text provided or file is empty", decodeMessage(t, rec))
		analysis.AssertNotCalled(t, "AnalyzeFile", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestAnalyzeHandler_History(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		analysis := new(MockAnalysis)
		h := handler.NewAnalyzeHandler(analysis, t.TempDir(), 5)

		analysis.On("History", mock.Anything, "alice@example.com").
			Return([]domain.HistoryEntry{{ID: 1, TextPreview: "abc"}}, nil)

		req := httptest.NewRequest(http.MethodGet, "/api/history?email=alice@example.com", nil)
		rec := httptest.NewRecorder()
		h.History(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)

		var entries []domain.HistoryEntry
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&entries))
		assert.Len(t, entries, 1)
	})

	t.Run("missing email", func(t *testing.T) {
		analysis := new(MockAnalysis)
		h := handler.NewAnalyzeHandler(analysis, t.TempDir(), 5)

		req := httptest.NewRequest(http.MethodGet, "/api/history", nil)
		rec := httptest.NewRecorder()
		h.History(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "Email is required", decodeMessage(t, rec))
	})
}

func TestAnalyzeHandler_Export(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		analysis := new(MockAnalysis)
		h := handler.NewAnalyzeHandler(analysis, t.TempDir(), 5)

		analysis.On("Export", mock.Anything, mock.AnythingOfType("domain.ExportRequest")).
			Return(&domain.ExportResult{Filename: "report.pdf"}, nil)

		req := makeJSONRequest(http.MethodPost, "/api/export-pdf", domain.ExportRequest{
			Text: "Some legal text", Flesch: 45.2, Fog: 14.1,
		})
		rec := httptest.NewRecorder()
		h.Export(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)

		var body struct {
			Message  string `json:"message"`
			Filename string `json:"filename"`
		}
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
		assert.Equal(t, "PDF generated", body.Message)
		assert.Equal(t, "report.pdf", body.Filename)
	})

	t.Run("missing text", func(t *testing.T) {
		analysis := new(MockAnalysis)
		h := handler.NewAnalyzeHandler(analysis, t.TempDir(), 5)

		req := makeJSONRequest(http.MethodPost, "/api/export-pdf", domain.ExportRequest{Text: " "})
		rec := httptest.NewRecorder()
		h.Export(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "Text is required", decodeMessage(t, rec))
		analysis.AssertNotCalled(t, "Export", mock.Anything, mock.Anything)
	})

	t.Run("renderer down", func(t *testing.T) {
		analysis := new(MockAnalysis)
		h := handler.NewAnalyzeHandler(analysis, t.TempDir(), 5)

		analysis.On("Export", mock.Anything, mock.Anything).Return(nil, errors.New("connection refused"))

		req := makeJSONRequest(http.MethodPost, "/api/export-pdf", domain.ExportRequest{Text: "Some legal text"})
		rec := httptest.NewRecorder()
		h.Export(rec, req)

		assert.Equal(t, http.StatusBadGateway, rec.Code)
		assert.Equal(t, "PDF renderer unavailable", decodeMessage(t, rec))
	})
}

func TestHealthCheck(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()

	handler.HealthCheck(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var body map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "ok", body["status"])
}
