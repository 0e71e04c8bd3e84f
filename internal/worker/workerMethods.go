package worker

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/akolanti/IntelAPI/internal/config"
	jobmodel "github.com/akolanti/IntelAPI/internal/domain/jobModel"
	"github.com/akolanti/IntelAPI/internal/metrics"
)

// Ingestion walks every company through EDGAR and the transcript API, and
// report generation runs a full agent workflow. Both run far longer than a
// search.
const (
	searchJobTimeout = 60 * time.Second
	ingestJobTimeout = 30 * time.Minute
	reportJobTimeout = 15 * time.Minute
)

func executeJob(job jobmodel.Job) {
	start := time.Now()
	defer func() {
		// Record total time at the end
		metrics.CaptureJobMetrics(string(job.Status), time.Since(start))
	}()
	ctxTrace := context.WithValue(context.Background(), config.TRACE_ID_KEY, job.TraceId)
	ctx, cancel := context.WithTimeout(ctxTrace, jobTimeout(job.JobType))
	defer cancel()
	logger.With("trace Id ", job.TraceId)
	logger.Debug("Processing job:", "job Id:", job.Id)

	saveJobState(ctx, job, jobmodel.JobStatusRunning)

	switch job.JobType {
	case jobmodel.JobTypeIngestFilings:
		job.CurrentStep = jobmodel.IngestInit
		job = _ragService.IngestFilings(ctx, job)

	case jobmodel.JobTypeIngestTranscripts:
		job.CurrentStep = jobmodel.IngestInit
		job = _ragService.IngestTranscripts(ctx, job)

	case jobmodel.JobTypeReport:
		job.CurrentStep = jobmodel.ReportInit
		job = _ragService.GenerateReport(ctx, job)

	default:
		job.CurrentStep = jobmodel.SearchInit
		job = _ragService.ProcessSearch(ctx, job)
	}

	job.EndTime = time.Now()
	saveJobState(ctx, job, job.Status)
}

func jobTimeout(jobType jobmodel.JobType) time.Duration {
	switch jobType {
	case jobmodel.JobTypeIngestFilings, jobmodel.JobTypeIngestTranscripts:
		return ingestJobTimeout
	case jobmodel.JobTypeReport:
		return reportJobTimeout
	default:
		return searchJobTimeout
	}
}

func removeWorker(reason string) {

	workerWaitGroup.Done()
	atomic.AddInt64(&currentWorkerCount, -1)
	logger.Info("Removed worker ", "reason", reason, "workerCount", currentWorkerCount)
	metrics.DecrementActiveWorkerCount()

}

func saveJobState(ctx context.Context, job jobmodel.Job, jobStatus jobmodel.JobStatus) {
	job.Status = jobStatus
	if err := _jobService.JobStore.SaveJob(ctx, job); err != nil {
		logger.Error("Failed to update status in Redis", "err", err)
	}
}
