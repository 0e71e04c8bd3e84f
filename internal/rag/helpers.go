package rag

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/akolanti/IntelAPI/internal/domain/commonModels"
	"github.com/akolanti/IntelAPI/internal/domain/jobModel"
	"github.com/akolanti/IntelAPI/internal/metrics"
	"github.com/akolanti/IntelAPI/internal/rag/vectorDB"
	"github.com/akolanti/IntelAPI/pkg/logger_i"
)

func returnOutput(job jobModel.Job, ans string) jobModel.Job {
	job.JobPayload.Answer = ans
	job.Status = jobModel.JobStatusComplete
	job.CurrentStep = jobModel.Complete
	return job
}

func logOutput(job jobModel.Job, status jobModel.InternalStatus, log *logger_i.Logger) jobModel.Job {
	job.CurrentStep = status
	log.Debug("ProcessSearch", "Current Status", job.CurrentStep)
	return job
}

func (s *service) jobError(job jobModel.Job, err error, message string, canRetry bool) jobModel.Job {
	s.logger.Error(message, "error", err)

	job.Error = jobModel.JobError{
		Code:    http.StatusInternalServerError,
		Message: "Internal Server Error",
		Retry:   canRetry,
	}
	job.Status = jobModel.JobStatusError
	return job
}

func errorFromSummary(summary commonModels.RunSummary) error {
	if len(summary.Failed) == 0 {
		return nil
	}
	return errors.New("all companies failed, first reason: " + summary.Failed[0].Reason)
}

func (s *service) executeEmbeddingStep(ctx context.Context, log *logger_i.Logger, job *jobModel.Job) ([]float32, error) {
	*job = logOutput(*job, jobModel.EmbeddingAPICall, log)

	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("embedding", time.Since(start)) }()

	return s.embedder.GetEmbedding(ctx, job.JobPayload.Question)
}

func (s *service) executeCacheCheckStep(ctx context.Context, log *logger_i.Logger, job *jobModel.Job, emb []float32) (string, bool) {
	*job = logOutput(*job, jobModel.CacheCall, log)

	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("cache_lookup", time.Since(start)) }()

	ans, found, _ := s.vectorDB.GetCachedAnswer(ctx, emb)
	return ans, found
}

func (s *service) executeVectorSearchStep(ctx context.Context, log *logger_i.Logger, job *jobModel.Job, emb []float32) ([]vectorDB.SearchMatch, error) {
	*job = logOutput(*job, jobModel.VectorDBCall, log)

	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("vector_search", time.Since(start)) }()

	filter := vectorDB.SearchFilter{
		Year: job.JobPayload.Year,
	}
	if job.JobPayload.Quarter != 0 {
		filter.Quarter = quarterLabel(job.JobPayload.Quarter)
	}
	if len(job.JobPayload.Tickers) == 1 {
		filter.Ticker = job.JobPayload.Tickers[0]
	}

	matches, err := s.vectorDB.Search(ctx, emb, filter, 5)
	if err != nil {
		return nil, err
	}

	for _, m := range matches {
		job.JobPayload.Sources = append(job.JobPayload.Sources, m.Citation())
	}
	return matches, nil
}

func quarterLabel(q int) string {
	switch q {
	case 1:
		return "Q1"
	case 2:
		return "Q2"
	case 3:
		return "Q3"
	case 4:
		return "Q4"
	default:
		return ""
	}
}

func (s *service) executeLLMStep(ctx context.Context, log *logger_i.Logger, job *jobModel.Job, matches []vectorDB.SearchMatch) (string, error) {
	*job = logOutput(*job, jobModel.LLMCall, log)

	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("llm_generation", time.Since(start)) }()

	return s.llmProvider.Generate(ctx, job.JobPayload.Question, matches)
}
