package api

import "time"

type JobExternalStatus string

const (
	JobStatusError JobExternalStatus = "Error"
)

type JobResponse struct {
	Id        string            `json:"id" example:"job_cz109"`
	Result    Result            `json:"result"`
	Error     *JobOutgoingError `json:"error,omitempty"`
	StartTime time.Time         `json:"start_time"`
	EndTime   time.Time         `json:"end_time,omitempty"`
}

type JobOutgoingError struct {
	Code    int    `json:"code" example:"400"`
	Message string `json:"message" example:"Job not found"`
	Retry   bool   `json:"can_retry" example:"false"`
}

type SearchResponse struct {
	Question string   `json:"question"`
	Answer   string   `json:"answer"`
	Sources  []string `json:"sources"`
}

type IngestResponse struct {
	Succeeded []string        `json:"succeeded"`
	Failed    []IngestFailure `json:"failed,omitempty"`
	Chunks    int             `json:"chunks"`
}

type IngestFailure struct {
	Ticker string `json:"ticker"`
	Reason string `json:"reason"`
}

type ReportResponse struct {
	ReportPath string   `json:"report_path"`
	Report     string   `json:"report"`
	ToolCalls  []string `json:"tool_calls,omitempty"`
}

type Result struct {
	Status         string          `json:"status"`
	SearchResponse *SearchResponse `json:"search_response,omitempty"`
	IngestResponse *IngestResponse `json:"ingest_response,omitempty"`
	ReportResponse *ReportResponse `json:"report_response,omitempty"`
}

type InitJobResponse struct {
	Id        string `json:"id"`
	StatusURL string `json:"status_url"`
}

// requests---------------------

type SearchRequest struct {
	Question string `json:"question" validate:"required"`
	Ticker   string `json:"ticker,omitempty"`
	Year     int    `json:"year,omitempty"`
	Quarter  int    `json:"quarter,omitempty"`
}

type IngestRequest struct {
	Tickers   []string `json:"tickers,omitempty"`
	StartYear int      `json:"start_year,omitempty"`
}

type ReportRequest struct {
	Year    int `json:"year,omitempty"`
	Quarter int `json:"quarter,omitempty"`
}

type JobStatusRequest struct {
	JobId string `json:"job_id" validate:"required"`
}
