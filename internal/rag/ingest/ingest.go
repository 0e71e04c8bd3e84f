package ingest

import (
	"context"

	"github.com/akolanti/IntelAPI/internal/config"
	"github.com/akolanti/IntelAPI/internal/domain/commonModels"
	"github.com/akolanti/IntelAPI/internal/fetch"
	"github.com/akolanti/IntelAPI/internal/rag/embedding"
	"github.com/akolanti/IntelAPI/internal/rag/vectorDB"
	"github.com/akolanti/IntelAPI/pkg/logger_i"
)

var logger *logger_i.Logger

func init() {
	logger = logger_i.NewLogger("Ingestion")
}

// FilingSource lists and downloads SEC filings for a company.
type FilingSource interface {
	RecentFilings(ctx context.Context, cik string, sinceYear int) ([]fetch.Filing, error)
	DownloadFiling(ctx context.Context, ticker string, f fetch.Filing, dir string) (commonModels.SourceDocument, error)
}

// TranscriptSource downloads one quarter's earnings call for a company.
type TranscriptSource interface {
	FetchTranscript(ctx context.Context, ticker string, year, quarter int, dir string) (commonModels.SourceDocument, error)
}

// Pipeline drives fetching, chunking, embedding and upload for the tracked
// companies.
type Pipeline struct {
	cfg         config.IngestionConfig
	filings     FilingSource
	transcripts TranscriptSource
	embedder    embedding.Embedder
	db          vectorDB.DataProcessor
}

func NewPipeline(cfg config.IngestionConfig, filings FilingSource, transcripts TranscriptSource, embedder embedding.Embedder, db vectorDB.DataProcessor) *Pipeline {
	return &Pipeline{
		cfg:         cfg,
		filings:     filings,
		transcripts: transcripts,
		embedder:    embedder,
		db:          db,
	}
}
