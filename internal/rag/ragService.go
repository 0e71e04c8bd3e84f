package rag

import (
	"context"
	"time"

	"github.com/akolanti/IntelAPI/internal/adapter/utils"
	"github.com/akolanti/IntelAPI/internal/config"
	"github.com/akolanti/IntelAPI/internal/domain/commonModels"
	"github.com/akolanti/IntelAPI/internal/domain/jobModel"
	"github.com/akolanti/IntelAPI/internal/metrics"
	"github.com/akolanti/IntelAPI/internal/rag/embedding"
	"github.com/akolanti/IntelAPI/internal/rag/ingest"
	"github.com/akolanti/IntelAPI/internal/rag/llm"
	"github.com/akolanti/IntelAPI/internal/rag/vectorDB"
	"github.com/akolanti/IntelAPI/pkg/logger_i"
)

/*
ARCHITECTURE NOTE: OPAQUE INTERFACE PATTERN
---------------------------------------------------------

1. Service (Interface):
  - Real work happens down low bruh
  - This is the PUBLIC contract.
  - It defines the "behavior" (what the worker can do).
  - We expose this to keep the worker decoupled from our specific logic.

2. service (Private Struct):
  - down low stuff
  - This is the PRIVATE implementation.
  - It holds the "state" (database connections and LLM clients).
  - It is lowercase to prevent external packages from accessing our
    internal dependencies (vectorDB, llmProvider) directly.

3. Pointer Receiver (*service):
  - By defining methods on (*service), the struct IMPLICITLY satisfies
    the Service interface.
  - if it quacks like a duck, -it's a duck (Duck Typing)

4. Dependency Injection (NewService):
  - This constructor links the private struct to the public interface.
  - It allows us to swap real DBs for mocks during testing without
    changing the worker's code.
*/

// ReportGenerator produces the quarterly competitive intelligence report.
// Defined here so this package never imports the agent stack directly.
type ReportGenerator interface {
	Generate(ctx context.Context, year, quarter int) (path string, answer string, toolCalls []string, err error)
}

// Service Worker will only call this service - it doesn't need to know the llm or the vector
type Service interface {
	ProcessSearch(ctx context.Context, job jobModel.Job) jobModel.Job
	IngestFilings(ctx context.Context, job jobModel.Job) jobModel.Job
	IngestTranscripts(ctx context.Context, job jobModel.Job) jobModel.Job
	GenerateReport(ctx context.Context, job jobModel.Job) jobModel.Job
}

type service struct {
	vectorDB    vectorDB.DataProcessor
	llmProvider llm.Provider
	embedder    embedding.Embedder
	pipeline    *ingest.Pipeline
	reporter    ReportGenerator
	logger      *logger_i.Logger
}

// NewService constructor
func NewService(vector vectorDB.DataProcessor, llm llm.Provider, em embedding.Embedder, pipeline *ingest.Pipeline, reporter ReportGenerator) Service {
	return &service{
		vectorDB:    vector,
		llmProvider: llm,
		embedder:    em,
		pipeline:    pipeline,
		reporter:    reporter,
		logger:      logger_i.NewLogger("RAG Service :"),
	}
}

func (s *service) ProcessSearch(ctx context.Context, jobt jobModel.Job) jobModel.Job {
	inMethodLogger := s.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY).(string), "JobId", jobt.Id)

	processContext, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	jobt.CurrentStep = jobModel.RAGCall

	// Embedding
	embeddingStep, err := s.executeEmbeddingStep(processContext, inMethodLogger, &jobt)
	if err != nil {
		return s.jobError(jobt, err, "EMBEDDING_FAILURE", true)
	}

	// Cache Check
	cachedAnswer, found := s.executeCacheCheckStep(ctx, inMethodLogger, &jobt, embeddingStep)
	if found {
		return returnOutput(jobt, cachedAnswer)
	}

	// Vector DB Search
	matches, err := s.executeVectorSearchStep(processContext, inMethodLogger, &jobt, embeddingStep)
	if err != nil {
		return s.jobError(jobt, err, "VECTOR_DB_FAILURE", true)
	}

	// LLM Generation
	answer, err := s.executeLLMStep(processContext, inMethodLogger, &jobt, matches)
	if err != nil {
		return s.jobError(jobt, err, "LLM_GENERATION_FAILURE", true)
	}

	//Background Cache Save
	go func() {
		err = s.vectorDB.SaveToCache(ctx, utils.GetNewUUID(), embeddingStep, answer)
		if err != nil {
			s.logger.Error("Failed to save to cache")
		}
	}()

	return returnOutput(jobt, answer)
}

func (s *service) IngestFilings(ctx context.Context, job jobModel.Job) jobModel.Job {
	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("filings_ingestion", time.Since(start)) }()

	job.CurrentStep = jobModel.IngestFetching
	summary := s.pipeline.IngestFilings(ctx, job.JobPayload.Tickers, job.JobPayload.StartYear)
	return s.finishIngest(job, summary)
}

func (s *service) IngestTranscripts(ctx context.Context, job jobModel.Job) jobModel.Job {
	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("transcripts_ingestion", time.Since(start)) }()

	job.CurrentStep = jobModel.IngestFetching
	summary := s.pipeline.IngestTranscripts(ctx, job.JobPayload.Tickers, job.JobPayload.StartYear)
	return s.finishIngest(job, summary)
}

// finishIngest records the run summary on the job. A run where every single
// company failed is a job error, partial failures complete normally.
func (s *service) finishIngest(job jobModel.Job, summary commonModels.RunSummary) jobModel.Job {
	job.JobPayload.Summary = &summary
	if len(summary.Succeeded) == 0 && len(summary.Failed) > 0 {
		return s.jobError(job, errorFromSummary(summary), "INGESTION_FAILURE", true)
	}
	job.Status = jobModel.JobStatusComplete
	job.CurrentStep = jobModel.Complete
	return job
}

func (s *service) GenerateReport(ctx context.Context, job jobModel.Job) jobModel.Job {
	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("report_generation", time.Since(start)) }()

	job.CurrentStep = jobModel.ReportGenerating
	path, answer, toolCalls, err := s.reporter.Generate(ctx, job.JobPayload.Year, job.JobPayload.Quarter)
	if err != nil {
		return s.jobError(job, err, "REPORT_FAILURE", true)
	}
	job.JobPayload.ReportPath = path
	job.JobPayload.ToolCalls = toolCalls
	return returnOutput(job, answer)
}
