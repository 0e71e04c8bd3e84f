package rag_test

import (
	"context"

	"github.com/akolanti/IntelAPI/internal/domain/commonModels"
	"github.com/akolanti/IntelAPI/internal/fetch"
	"github.com/akolanti/IntelAPI/internal/rag/vectorDB"
)

// MockVectorDB implements vectorDB.DataProcessor
type MockVectorDB struct {
	// Control fields to simulate different behaviors
	OnSearch           func(ctx context.Context, vectorVal []float32, filter vectorDB.SearchFilter, limit uint64) ([]vectorDB.SearchMatch, error)
	OnCount            func(ctx context.Context, filter vectorDB.SearchFilter) (uint64, error)
	OnGetCachedAnswer  func(ctx context.Context, queryVector []float32) (string, bool, error)
	OnSaveToCache      func(ctx context.Context, id string, vector []float32, answer string) error
	OnCreateCollection func(ctx context.Context, name string) error
	OnUpsertBatch      func(ctx context.Context, name string, chunks []commonModels.Chunk, vectors [][]float32) error
}

func (m *MockVectorDB) Search(ctx context.Context, v []float32, filter vectorDB.SearchFilter, limit uint64) ([]vectorDB.SearchMatch, error) {
	if m.OnSearch != nil {
		return m.OnSearch(ctx, v, filter, limit)
	}
	return []vectorDB.SearchMatch{{Content: "default context", Ticker: "HIG", FormType: "10-Q", Year: 2025, Quarter: "Q2"}}, nil
}

func (m *MockVectorDB) Count(ctx context.Context, filter vectorDB.SearchFilter) (uint64, error) {
	if m.OnCount != nil {
		return m.OnCount(ctx, filter)
	}
	return 1, nil
}

func (m *MockVectorDB) GetCachedAnswer(ctx context.Context, v []float32) (string, bool, error) {
	if m.OnGetCachedAnswer != nil {
		return m.OnGetCachedAnswer(ctx, v)
	}
	return "", false, nil
}

func (m *MockVectorDB) SaveToCache(ctx context.Context, id string, v []float32, a string) error {
	if m.OnSaveToCache != nil {
		return m.OnSaveToCache(ctx, id, v, a)
	}
	return nil
}

func (m *MockVectorDB) CreateCollection(ctx context.Context, name string) error {
	if m.OnCreateCollection != nil {
		return m.OnCreateCollection(ctx, name)
	}
	return nil
}

func (m *MockVectorDB) UpsertBatch(ctx context.Context, name string, chunks []commonModels.Chunk, vectors [][]float32) error {
	if m.OnUpsertBatch != nil {
		return m.OnUpsertBatch(ctx, name, chunks, vectors)
	}
	return nil
}

type MockEmbedder struct {
	OnGetEmbedding   func(ctx context.Context, text string) ([]float32, error)
	OnBatchEmbedding func(ctx context.Context, chunks []string, isHuge bool) ([][]float32, error)
}

func (m *MockEmbedder) BatchEmbedding(ctx context.Context, chunks []string, isHuge bool) ([][]float32, error) {
	if m.OnBatchEmbedding != nil {
		return m.OnBatchEmbedding(ctx, chunks, isHuge)
	}
	// Return dummy vectors matching chunk size
	return make([][]float32, len(chunks)), nil
}

func (m *MockEmbedder) GetEmbedding(ctx context.Context, query string) ([]float32, error) {
	if m.OnGetEmbedding != nil {
		return m.OnGetEmbedding(ctx, query)
	}
	return []float32{0.1}, nil
}

// MockLLM implements llm.Provider
type MockLLM struct {
	OnGenerate func(ctx context.Context, query string, matches []vectorDB.SearchMatch) (string, error)
}

func (m *MockLLM) Generate(ctx context.Context, q string, matches []vectorDB.SearchMatch) (string, error) {
	if m.OnGenerate != nil {
		return m.OnGenerate(ctx, q, matches)
	}
	return "mocked llm response", nil
}

// MockFilingSource implements ingest.FilingSource
type MockFilingSource struct {
	OnRecentFilings  func(ctx context.Context, cik string, sinceYear int) ([]fetch.Filing, error)
	OnDownloadFiling func(ctx context.Context, ticker string, f fetch.Filing, dir string) (commonModels.SourceDocument, error)
}

func (m *MockFilingSource) RecentFilings(ctx context.Context, cik string, sinceYear int) ([]fetch.Filing, error) {
	if m.OnRecentFilings != nil {
		return m.OnRecentFilings(ctx, cik, sinceYear)
	}
	return nil, fetch.ErrNotFound
}

func (m *MockFilingSource) DownloadFiling(ctx context.Context, ticker string, f fetch.Filing, dir string) (commonModels.SourceDocument, error) {
	if m.OnDownloadFiling != nil {
		return m.OnDownloadFiling(ctx, ticker, f, dir)
	}
	return commonModels.SourceDocument{}, fetch.ErrNotFound
}

// MockTranscriptSource implements ingest.TranscriptSource
type MockTranscriptSource struct {
	OnFetchTranscript func(ctx context.Context, ticker string, year, quarter int, dir string) (commonModels.SourceDocument, error)
}

func (m *MockTranscriptSource) FetchTranscript(ctx context.Context, ticker string, year, quarter int, dir string) (commonModels.SourceDocument, error) {
	if m.OnFetchTranscript != nil {
		return m.OnFetchTranscript(ctx, ticker, year, quarter, dir)
	}
	return commonModels.SourceDocument{}, fetch.ErrNotFound
}

// MockReporter implements rag.ReportGenerator
type MockReporter struct {
	OnGenerate func(ctx context.Context, year, quarter int) (string, string, []string, error)
}

func (m *MockReporter) Generate(ctx context.Context, year, quarter int) (string, string, []string, error) {
	if m.OnGenerate != nil {
		return m.OnGenerate(ctx, year, quarter)
	}
	return "generated_reports/ci_report_Q2_2025.md", "# Report", []string{"find_latest_quarter"}, nil
}
