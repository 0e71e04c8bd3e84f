package adapter

import (
	"fmt"
	"time"

	"github.com/akolanti/IntelAPI/internal/api"
	"github.com/akolanti/IntelAPI/internal/domain/jobModel"
)

func ToInitJobResponse(id string) api.InitJobResponse {
	return api.InitJobResponse{
		Id:        id,
		StatusURL: fmt.Sprintf("status/%s", id), //pass "status/job.Id"
	}
}

func ToAPIResponse(job jobModel.Job) api.JobResponse {

	var errorPtr *api.JobOutgoingError
	if job.Error.Message != "" || job.Error.Code != 0 {
		errorPtr = &api.JobOutgoingError{
			Code:    job.Error.Code,
			Message: job.Error.Message,
			Retry:   job.Error.Retry,
		}
	}

	result := api.Result{
		Status:         string(job.Status),
		SearchResponse: ToSearchResponse(job.JobPayload),
		IngestResponse: ToIngestResponse(job.JobPayload),
		ReportResponse: ToReportResponse(job.JobPayload),
	}

	return api.JobResponse{
		Id:        job.Id,
		StartTime: job.CreatedTime,
		EndTime:   job.EndTime,
		Error:     errorPtr,
		Result:    result,
	}
}

func ToSearchResponse(payload jobModel.JobPayload) *api.SearchResponse {
	// Report jobs also carry an answer, the question marks a search job.
	if payload.Question == "" {
		return nil
	}

	return &api.SearchResponse{
		Question: payload.Question,
		Answer:   payload.Answer,
		Sources:  payload.Sources,
	}
}

func ToIngestResponse(payload jobModel.JobPayload) *api.IngestResponse {
	if payload.Summary == nil {
		return nil
	}

	failed := make([]api.IngestFailure, 0, len(payload.Summary.Failed))
	for _, f := range payload.Summary.Failed {
		failed = append(failed, api.IngestFailure{Ticker: f.Ticker, Reason: f.Reason})
	}

	return &api.IngestResponse{
		Succeeded: payload.Summary.Succeeded,
		Failed:    failed,
		Chunks:    payload.Summary.Chunks,
	}
}

func ToReportResponse(payload jobModel.JobPayload) *api.ReportResponse {
	if payload.ReportPath == "" {
		return nil
	}

	return &api.ReportResponse{
		ReportPath: payload.ReportPath,
		Report:     payload.Answer,
		ToolCalls:  payload.ToolCalls,
	}
}

func BadRequest(id string, error string, code int) api.JobResponse {
	return api.JobResponse{
		Id:        id,
		StartTime: time.Time{},
		EndTime:   time.Time{},
		Result: api.Result{
			Status: string(api.JobStatusError),
		},
		Error: &api.JobOutgoingError{
			Code:    code,
			Message: error,
			Retry:   false,
		},
	}
}
