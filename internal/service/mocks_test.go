package service

import (
	"context"
	"io"

	"github.com/clauseease/clauseease/internal/domain"
	"github.com/stretchr/testify/mock"
)

// MockUserStore mocks the UserStore interface
type MockUserStore struct {
	mock.Mock
}

func (m *MockUserStore) Create(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserStore) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserStore) EmailExists(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}

// MockHistoryStore mocks the HistoryStore interface
type MockHistoryStore struct {
	mock.Mock
}

func (m *MockHistoryStore) Insert(ctx context.Context, userID int64, entry *domain.HistoryEntry) error {
	args := m.Called(ctx, userID, entry)
	return args.Error(0)
}

func (m *MockHistoryStore) ListByEmail(ctx context.Context, email string) ([]domain.HistoryEntry, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.HistoryEntry), args.Error(1)
}

// MockResultCache mocks the ResultCache interface
type MockResultCache struct {
	mock.Mock
}

func (m *MockResultCache) Get(ctx context.Context, text string) (*domain.AnalysisResult, error) {
	args := m.Called(ctx, text)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AnalysisResult), args.Error(1)
}

func (m *MockResultCache) Set(ctx context.Context, text string, result *domain.AnalysisResult) error {
	args := m.Called(ctx, text, result)
	return args.Error(0)
}

// MockAnalyzerGateway mocks analyzer.Gateway
type MockAnalyzerGateway struct {
	mock.Mock
}

func (m *MockAnalyzerGateway) Analyze(ctx context.Context, text string) (*domain.AnalysisResult, error) {
	args := m.Called(ctx, text)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AnalysisResult), args.Error(1)
}

func (m *MockAnalyzerGateway) AnalyzeFile(ctx context.Context, filename string, content io.Reader) (*domain.AnalysisResult, error) {
	args := m.Called(ctx, filename, content)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AnalysisResult), args.Error(1)
}

// MockPDFGateway mocks pdfexport.Gateway
type MockPDFGateway struct {
	mock.Mock
}

func (m *MockPDFGateway) Render(ctx context.Context, req domain.ExportRequest) (*domain.ExportResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ExportResult), args.Error(1)
}
