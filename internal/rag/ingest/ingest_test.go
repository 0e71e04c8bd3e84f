package ingest

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/akolanti/IntelAPI/internal/config"
	"github.com/akolanti/IntelAPI/internal/domain/commonModels"
	"github.com/akolanti/IntelAPI/internal/fetch"
	"github.com/akolanti/IntelAPI/internal/rag/vectorDB"
)

// --- Mocks ---

type mockEmbedder struct {
	batchFunc func(ctx context.Context, chunks []string, isHuge bool) ([][]float32, error)
}

func (m *mockEmbedder) GetEmbedding(ctx context.Context, query string) ([]float32, error) {
	return nil, nil
}
func (m *mockEmbedder) BatchEmbedding(ctx context.Context, chunks []string, isHuge bool) ([][]float32, error) {
	return m.batchFunc(ctx, chunks, isHuge)
}

type mockVectorDB struct {
	upsertFunc func(ctx context.Context, coll string, chunks []commonModels.Chunk, vectors [][]float32) error
}

func (m *mockVectorDB) Search(ctx context.Context, v []float32, f vectorDB.SearchFilter, limit uint64) ([]vectorDB.SearchMatch, error) {
	return nil, nil
}
func (m *mockVectorDB) Count(ctx context.Context, f vectorDB.SearchFilter) (uint64, error) {
	return 0, nil
}
func (m *mockVectorDB) GetCachedAnswer(ctx context.Context, v []float32) (string, bool, error) {
	return "", false, nil
}
func (m *mockVectorDB) SaveToCache(ctx context.Context, id string, v []float32, a string) error {
	return nil
}
func (m *mockVectorDB) CreateCollection(ctx context.Context, name string) error { return nil }
func (m *mockVectorDB) UpsertBatch(ctx context.Context, coll string, chunks []commonModels.Chunk, vectors [][]float32) error {
	return m.upsertFunc(ctx, coll, chunks, vectors)
}

type mockFilingSource struct {
	listFunc     func(ctx context.Context, cik string, sinceYear int) ([]fetch.Filing, error)
	downloadFunc func(ctx context.Context, ticker string, f fetch.Filing, dir string) (commonModels.SourceDocument, error)
}

func (m *mockFilingSource) RecentFilings(ctx context.Context, cik string, sinceYear int) ([]fetch.Filing, error) {
	return m.listFunc(ctx, cik, sinceYear)
}
func (m *mockFilingSource) DownloadFiling(ctx context.Context, ticker string, f fetch.Filing, dir string) (commonModels.SourceDocument, error) {
	return m.downloadFunc(ctx, ticker, f, dir)
}

func okEmbedder() *mockEmbedder {
	return &mockEmbedder{
		batchFunc: func(ctx context.Context, ch []string, huge bool) ([][]float32, error) {
			return make([][]float32, len(ch)), nil
		},
	}
}

func testChunking() config.ChunkingConfig {
	return config.ChunkingConfig{FilingMaxChunk: 200, TranscriptMaxChunk: 100, Overlap: 20}
}

func filingDoc(ticker string) commonModels.SourceDocument {
	return commonModels.SourceDocument{
		Id:         ticker + "_10-Q_2025-07-18",
		Ticker:     ticker,
		Kind:       commonModels.QuarterlyFiling,
		FormType:   "10-Q",
		Period:     commonModels.Period{Year: 2025, Quarter: "Q2"},
		FilingDate: "2025-07-18",
		SourceFile: ticker + "_10-Q_2025-07-18.html",
	}
}

// --- Unit Tests ---

func TestPrepareChunksFiling(t *testing.T) {
	text := "<html><body><p>Item 1. Business</p><p>" + strings.Repeat("We underwrite commercial insurance. ", 12) + "</p></body></html>"

	chunks, err := PrepareChunks(filingDoc("TRV"), text, testChunking())
	if err != nil {
		t.Fatal(err)
	}
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}

	for i, chunk := range chunks {
		if chunk.Meta.ChunkIndex != i {
			t.Errorf("chunk[%d] index = %d", i, chunk.Meta.ChunkIndex)
		}
		if chunk.Meta.TotalChunks != len(chunks) {
			t.Errorf("chunk[%d] total = %d, want %d", i, chunk.Meta.TotalChunks, len(chunks))
		}
		if chunk.Meta.DocumentType != "SEC Filing" {
			t.Errorf("chunk[%d] document type = %q", i, chunk.Meta.DocumentType)
		}
		if chunk.ChunkId == "" {
			t.Errorf("chunk[%d] has no id", i)
		}
	}
	if chunks[1].Meta.Section != "Item 1. Business" {
		t.Errorf("section = %q", chunks[1].Meta.Section)
	}
}

func TestPrepareChunksTranscriptNeverSpansSpeakers(t *testing.T) {
	doc := commonModels.SourceDocument{
		Id:         "HIG_EARNINGS_2025_Q1",
		Ticker:     "HIG",
		Kind:       commonModels.EarningsCall,
		Period:     commonModels.Period{Year: 2025, Quarter: "Q1"},
		SourceFile: "HIG_EARNINGS_2025_Q1.txt",
	}
	text := "Operator:\n" + strings.Repeat("Welcome to the call. ", 10) +
		"\n\nBeth Costello - CFO (The Hartford):\n" + strings.Repeat("Net income improved. ", 10)

	chunks, err := PrepareChunks(doc, text, testChunking())
	if err != nil {
		t.Fatal(err)
	}

	for _, chunk := range chunks {
		switch chunk.Meta.Speaker {
		case "Operator":
			if strings.Contains(chunk.Content, "Net income") {
				t.Errorf("operator chunk carries CFO text: %q", chunk.Content)
			}
		case "Beth Costello":
			if strings.Contains(chunk.Content, "Welcome") {
				t.Errorf("CFO chunk carries operator text: %q", chunk.Content)
			}
		default:
			t.Errorf("unexpected speaker %q", chunk.Meta.Speaker)
		}
	}
}

func TestBatchIngestBatchCount(t *testing.T) {
	chunks := make([]commonModels.Chunk, 150)
	for i := range chunks {
		chunks[i] = commonModels.Chunk{ChunkId: fmt.Sprintf("c-%d", i), Content: "test content"}
	}

	callCount := 0
	vDB := &mockVectorDB{
		upsertFunc: func(ctx context.Context, coll string, c []commonModels.Chunk, v [][]float32) error {
			callCount++
			return nil
		},
	}

	if err := BatchIngest(context.Background(), chunks, 100, vDB, okEmbedder(), t.TempDir()); err != nil {
		t.Fatalf("BatchIngest failed: %v", err)
	}
	if callCount != 2 {
		t.Errorf("Expected 2 batches to be upserted, got %d", callCount)
	}
}

func TestBatchIngestRejectedBatchIsCheckpointed(t *testing.T) {
	dir := t.TempDir()
	chunks := []commonModels.Chunk{
		{ChunkId: "c-1", Content: "alpha"},
		{ChunkId: "c-2", Content: "beta"},
	}

	vDB := &mockVectorDB{
		upsertFunc: func(ctx context.Context, coll string, c []commonModels.Chunk, v [][]float32) error {
			ids := make([]string, len(c))
			for i := range c {
				ids[i] = c[i].ChunkId
			}
			return &vectorDB.RejectedBatchError{ChunkIds: ids, Err: errors.New("index unavailable")}
		},
	}

	err := BatchIngest(context.Background(), chunks, 100, vDB, okEmbedder(), dir)
	if err == nil {
		t.Fatal("expected error from rejected batch")
	}
	var rejected *vectorDB.RejectedBatchError
	if !errors.As(err, &rejected) {
		t.Fatalf("err = %v, want RejectedBatchError", err)
	}
	if len(rejected.ChunkIds) != 2 || rejected.ChunkIds[0] != "c-1" {
		t.Errorf("rejected ids = %v", rejected.ChunkIds)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || !strings.HasPrefix(entries[0].Name(), "chunks_") {
		t.Errorf("expected one checkpoint file, got %v", entries)
	}
}

func TestCheckpointRoundTrip(t *testing.T) {
	dir := t.TempDir()
	chunks := []commonModels.Chunk{
		{
			ChunkId: "c-1",
			Content: "Premium growth was 8% — driven by workers' comp.\nNew line.",
			Meta: commonModels.ChunkMeta{
				Ticker: "HIG", SourceFile: "HIG_10-Q.html", Year: 2025, Quarter: "Q2",
				ChunkIndex: 3, TotalChunks: 9, DocumentType: "SEC Filing",
			},
		},
	}
	vectors := [][]float32{{0.1, 0.2, 0.3}}

	path, err := WriteCheckpoint(dir, chunks, vectors)
	if err != nil {
		t.Fatal(err)
	}

	gotChunks, gotVectors, err := LoadCheckpoint(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(gotChunks) != 1 {
		t.Fatalf("chunk count = %d", len(gotChunks))
	}
	if gotChunks[0].Content != chunks[0].Content {
		t.Errorf("content round trip: %q != %q", gotChunks[0].Content, chunks[0].Content)
	}
	if gotChunks[0].ChunkId != "c-1" || gotChunks[0].Meta.Ticker != "HIG" {
		t.Errorf("identity lost: %+v", gotChunks[0])
	}
	if len(gotVectors) != 1 || len(gotVectors[0]) != 3 || gotVectors[0][1] != 0.2 {
		t.Errorf("vectors lost: %v", gotVectors)
	}
	if filepath.Ext(path) != ".json" {
		t.Errorf("checkpoint path = %q", path)
	}
}

// --- Driver tests ---

func driverConfig(dir string) config.IngestionConfig {
	cfg := config.DefaultIngestionConfig()
	cfg.Companies = []config.CompanyConfig{
		{Ticker: "TRV", Name: "Travelers", CIK: "86312", HasEarningsCall: true},
		{Ticker: "CB", Name: "Chubb", CIK: "896159", HasEarningsCall: true},
	}
	cfg.Chunking = testChunking()
	cfg.DownloadDir = dir
	cfg.CheckpointDir = dir
	return cfg
}

func TestIngestFilingsIsolatesCompanyFailures(t *testing.T) {
	dir := t.TempDir()

	filings := &mockFilingSource{
		listFunc: func(ctx context.Context, cik string, sinceYear int) ([]fetch.Filing, error) {
			if cik == "896159" {
				return nil, errors.New("edgar unavailable")
			}
			return []fetch.Filing{{FormType: "10-Q", FilingDate: "2025-07-18"}}, nil
		},
		downloadFunc: func(ctx context.Context, ticker string, f fetch.Filing, dir string) (commonModels.SourceDocument, error) {
			doc := filingDoc(ticker)
			content := "<html><body>Item 1. Business\nWe underwrite commercial insurance.</body></html>"
			if err := os.WriteFile(filepath.Join(dir, doc.SourceFile), []byte(content), 0o644); err != nil {
				return commonModels.SourceDocument{}, err
			}
			return doc, nil
		},
	}

	var uploaded int
	vDB := &mockVectorDB{
		upsertFunc: func(ctx context.Context, coll string, c []commonModels.Chunk, v [][]float32) error {
			uploaded += len(c)
			return nil
		},
	}

	p := NewPipeline(driverConfig(dir), filings, nil, okEmbedder(), vDB)
	summary := p.IngestFilings(context.Background(), nil, 0)

	if len(summary.Succeeded) != 1 || summary.Succeeded[0] != "TRV" {
		t.Errorf("succeeded = %v", summary.Succeeded)
	}
	if len(summary.Failed) != 1 || summary.Failed[0].Ticker != "CB" {
		t.Fatalf("failed = %v", summary.Failed)
	}
	if !strings.Contains(summary.Failed[0].Reason, "edgar unavailable") {
		t.Errorf("failure reason = %q", summary.Failed[0].Reason)
	}
	if uploaded == 0 || summary.Chunks != uploaded {
		t.Errorf("chunks = %d, uploaded = %d", summary.Chunks, uploaded)
	}
}

func TestIngestFilingsIsolatesDocumentFailures(t *testing.T) {
	dir := t.TempDir()

	filings := &mockFilingSource{
		listFunc: func(ctx context.Context, cik string, sinceYear int) ([]fetch.Filing, error) {
			return []fetch.Filing{
				{FormType: "10-Q", FilingDate: "2025-07-18"},
				{FormType: "10-Q", FilingDate: "2025-04-18"},
			}, nil
		},
		downloadFunc: func(ctx context.Context, ticker string, f fetch.Filing, dir string) (commonModels.SourceDocument, error) {
			if f.FilingDate == "2025-04-18" {
				return commonModels.SourceDocument{}, errors.New("malformed document")
			}
			doc := filingDoc(ticker)
			content := "<html><body>Item 1. Business\nWe underwrite commercial insurance.</body></html>"
			if err := os.WriteFile(filepath.Join(dir, doc.SourceFile), []byte(content), 0o644); err != nil {
				return commonModels.SourceDocument{}, err
			}
			return doc, nil
		},
	}

	var uploaded int
	vDB := &mockVectorDB{
		upsertFunc: func(ctx context.Context, coll string, c []commonModels.Chunk, v [][]float32) error {
			uploaded += len(c)
			return nil
		},
	}

	p := NewPipeline(driverConfig(dir), filings, nil, okEmbedder(), vDB)
	summary := p.IngestFilings(context.Background(), []string{"TRV"}, 0)

	// The healthy sibling still uploads, the bad document is dropped alone.
	if len(summary.Succeeded) != 1 || summary.Succeeded[0] != "TRV" {
		t.Fatalf("succeeded = %v, failed = %v", summary.Succeeded, summary.Failed)
	}
	if len(summary.Failed) != 0 {
		t.Errorf("failed = %v", summary.Failed)
	}
	if uploaded == 0 || summary.Chunks != uploaded {
		t.Errorf("chunks = %d, uploaded = %d", summary.Chunks, uploaded)
	}
}

func TestIngestFilingsFailsCompanyWhenEveryDocumentFails(t *testing.T) {
	dir := t.TempDir()

	filings := &mockFilingSource{
		listFunc: func(ctx context.Context, cik string, sinceYear int) ([]fetch.Filing, error) {
			return []fetch.Filing{{FormType: "10-K", FilingDate: "2025-02-13"}}, nil
		},
		downloadFunc: func(ctx context.Context, ticker string, f fetch.Filing, dir string) (commonModels.SourceDocument, error) {
			return commonModels.SourceDocument{}, errors.New("malformed document")
		},
	}

	vDB := &mockVectorDB{upsertFunc: func(ctx context.Context, coll string, c []commonModels.Chunk, v [][]float32) error {
		return nil
	}}

	p := NewPipeline(driverConfig(dir), filings, nil, okEmbedder(), vDB)
	summary := p.IngestFilings(context.Background(), []string{"TRV"}, 0)

	if len(summary.Succeeded) != 0 || len(summary.Failed) != 1 {
		t.Fatalf("succeeded = %v, failed = %v", summary.Succeeded, summary.Failed)
	}
	if !strings.Contains(summary.Failed[0].Reason, "malformed document") {
		t.Errorf("failure reason = %q", summary.Failed[0].Reason)
	}
}

func TestIngestFilingsHonorsStartYear(t *testing.T) {
	dir := t.TempDir()

	var since []int
	filings := &mockFilingSource{
		listFunc: func(ctx context.Context, cik string, sinceYear int) ([]fetch.Filing, error) {
			since = append(since, sinceYear)
			return nil, fetch.ErrNotFound
		},
		downloadFunc: func(ctx context.Context, ticker string, f fetch.Filing, dir string) (commonModels.SourceDocument, error) {
			return commonModels.SourceDocument{}, nil
		},
	}

	vDB := &mockVectorDB{upsertFunc: func(ctx context.Context, coll string, c []commonModels.Chunk, v [][]float32) error {
		return nil
	}}

	p := NewPipeline(driverConfig(dir), filings, nil, okEmbedder(), vDB)
	p.IngestFilings(context.Background(), []string{"TRV"}, 2023)

	if len(since) != 1 || since[0] != 2023 {
		t.Errorf("since years = %v, want [2023]", since)
	}
}

func TestIngestFilingsHonorsTickerFilter(t *testing.T) {
	dir := t.TempDir()

	var listed []string
	filings := &mockFilingSource{
		listFunc: func(ctx context.Context, cik string, sinceYear int) ([]fetch.Filing, error) {
			listed = append(listed, cik)
			return nil, fetch.ErrNotFound
		},
		downloadFunc: func(ctx context.Context, ticker string, f fetch.Filing, dir string) (commonModels.SourceDocument, error) {
			return commonModels.SourceDocument{}, nil
		},
	}

	vDB := &mockVectorDB{upsertFunc: func(ctx context.Context, coll string, c []commonModels.Chunk, v [][]float32) error {
		return nil
	}}

	p := NewPipeline(driverConfig(dir), filings, nil, okEmbedder(), vDB)
	p.IngestFilings(context.Background(), []string{"TRV"}, 0)

	if len(listed) != 1 || listed[0] != "86312" {
		t.Errorf("listed CIKs = %v", listed)
	}
}
