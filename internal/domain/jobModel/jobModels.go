package jobModel

import (
	"context"
	"time"

	"github.com/akolanti/IntelAPI/internal/domain/commonModels"
)

type JobStatus string
type InternalStatus string

type JobType string

const (
	JobStatusQueued   JobStatus = "QUEUED"
	JobStatusRunning  JobStatus = "RUNNING"
	JobStatusComplete JobStatus = "COMPLETE"
	JobStatusError    JobStatus = "Error"

	SearchInit       InternalStatus = "Init"
	CacheCall        InternalStatus = "CacheCall"
	RAGCall          InternalStatus = "RAG"
	LLMCall          InternalStatus = "LLM"
	VectorDBCall     InternalStatus = "VectorDB"
	EmbeddingAPICall InternalStatus = "EmbeddingAPI"
	RedisCall        InternalStatus = "Redis"

	IngestInit       InternalStatus = "IngestInit"
	IngestFetching   InternalStatus = "IngestFetching"
	IngestChunking   InternalStatus = "IngestChunking"
	IngestUploading  InternalStatus = "IngestUploading"
	ReportInit       InternalStatus = "ReportInit"
	ReportGenerating InternalStatus = "ReportGenerating"
	Error            InternalStatus = "Error"

	Complete InternalStatus = "Complete"

	JobTypeSearch            JobType = "Search"
	JobTypeIngestFilings     JobType = "IngestFilings"
	JobTypeIngestTranscripts JobType = "IngestTranscripts"
	JobTypeReport            JobType = "Report"
)

type Job struct {
	Id          string         `json:"id"`
	TraceId     string         `json:"trace_id"`
	JobType     JobType        `json:"job_type"`
	JobPayload  JobPayload     `json:"job_payload"`
	Error       JobError       `json:"error,omitempty"`
	CreatedTime time.Time      `json:"created_time"`
	EndTime     time.Time      `json:"end_time,omitempty"`
	Status      JobStatus      `json:"status"`
	CurrentStep InternalStatus `json:"current_step"`
}

type JobError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Retry   bool   `json:"retry"`
}

type JobPayload struct {
	Question string   `json:"question,omitempty"`
	Answer   string   `json:"answer,omitempty"`
	Sources  []string `json:"sources,omitempty"`

	Tickers   []string `json:"tickers,omitempty"`
	StartYear int      `json:"start_year,omitempty"`

	Year    int    `json:"year,omitempty"`
	Quarter int    `json:"quarter,omitempty"`
	Summary *commonModels.RunSummary `json:"summary,omitempty"`

	ReportPath string   `json:"report_path,omitempty"`
	ToolCalls  []string `json:"tool_calls,omitempty"`
}

type JobStore interface {
	GetJob(ctx context.Context, jobId string) (Job, bool)
	SaveJob(ctx context.Context, job Job) error
	DeleteJob(ctx context.Context, jobID string)
}
