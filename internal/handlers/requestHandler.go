package handlers

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/akolanti/IntelAPI/internal/adapter"
	"github.com/akolanti/IntelAPI/internal/adapter/utils"
	"github.com/akolanti/IntelAPI/internal/api"
	"github.com/akolanti/IntelAPI/internal/config"
	"github.com/akolanti/IntelAPI/internal/domain/jobModel"
	"github.com/akolanti/IntelAPI/pkg/logger_i"
)

var logRH *logger_i.Logger

// technically i dont need this
// but i want to eventually remove jobHandler from handlers and set it in another package
// so in anticipation for that this struct exists
type newJobData struct {
	id      string
	traceId string
	jobType jobModel.JobType
	payload jobModel.JobPayload
}

func GetHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	return
}

// SearchHandler godoc
// @Summary      Start a search job
// @Description  Accepts a question with optional ticker/year/quarter filters, queues a background search job and returns a job ID to track status.
// @Tags         Search
// @Accept       json
// @Produce      json
// @Param        request  body      api.SearchRequest    true  "Question and optional filters"
// @Success      202      {object}  api.InitJobResponse  "Job successfully created"
// @Failure      400      {object}  api.JobResponse      "Invalid request data"
// @Router       /search [post]
func SearchHandler(w http.ResponseWriter, request *http.Request) {

	if validateContext(request.Context()) {

		var requestData api.SearchRequest
		defer closeBody(request.Body)
		if err := json.NewDecoder(request.Body).Decode(&requestData); err != nil || requestData.Question == "" {
			logRH.Warn("Bad Search Request: ", "error:", err, "request data:", requestData)
			WriteErrorResponse(w, http.StatusBadRequest, "", "Bad Request")
			return
		}

		queueJob(request, w, jobModel.JobTypeSearch, jobModel.JobPayload{
			Question: requestData.Question,
			Tickers:  tickerFilter(requestData.Ticker),
			Year:     requestData.Year,
			Quarter:  requestData.Quarter,
		})
		return
	}
	logRH.Warn("Invalid Context by request ", request.RemoteAddr)
}

// GetStatusHandler godoc
// @Summary      Get job status
// @Description  Retrieves the current status of a specific job using its ID.
// @Tags         Job Status
// @Accept       json
// @Produce      json
// @Param        id   path      string  true  "Job ID "
// @Success      200  {object}  api.JobResponse   "The current status of the job"
// @Failure      404  {object}  api.JobResponse   "Job not found (returns Error object within JobResponse)"
// @Router       /status/{id} [get]
func GetStatusHandler(w http.ResponseWriter, r *http.Request) {
	if validateContext(r.Context()) {
		//use chi get the url id
		idString := utils.GetChiURLParam(r, "id")
		result, isFound := validateId(idString, r.Context().Value(config.TRACE_ID_KEY).(string))

		logRH.Debug("Get Status Request:", "URL path", r.URL.Path)
		if !isFound {
			WriteErrorResponse(w, http.StatusNotFound, idString, "Job not found")
			return
		}

		writeJsonResponse(w, http.StatusOK, adapter.ToAPIResponse(result))
	}
}

// PostIngestFilingsHandler godoc
// @Summary      Ingest SEC filings
// @Description  Queues a job that downloads recent 10-K and 10-Q filings from EDGAR for the requested tickers (all tracked companies when omitted), chunks them and uploads them to the vector index.
// @Tags         Ingestion
// @Accept       json
// @Produce      json
// @Param        request  body      api.IngestRequest    false  "Optional ticker filter and start year"
// @Success      202      {object}  api.InitJobResponse  "Accepted - returns job id"
// @Failure      400      {object}  api.JobResponse      "Bad Request"
// @Router       /ingest/filings [post]
func PostIngestFilingsHandler(w http.ResponseWriter, r *http.Request) {
	postIngestHandler(w, r, jobModel.JobTypeIngestFilings)
}

// PostIngestTranscriptsHandler godoc
// @Summary      Ingest earnings call transcripts
// @Description  Queues a job that fetches earnings call transcripts for the requested tickers (all companies that hold calls when omitted), chunks them by speaker and uploads them to the vector index.
// @Tags         Ingestion
// @Accept       json
// @Produce      json
// @Param        request  body      api.IngestRequest    false  "Optional ticker filter and start year"
// @Success      202      {object}  api.InitJobResponse  "Accepted - returns job id"
// @Failure      400      {object}  api.JobResponse      "Bad Request"
// @Router       /ingest/transcripts [post]
func PostIngestTranscriptsHandler(w http.ResponseWriter, r *http.Request) {
	postIngestHandler(w, r, jobModel.JobTypeIngestTranscripts)
}

func postIngestHandler(w http.ResponseWriter, r *http.Request, jobType jobModel.JobType) {
	if validateContext(r.Context()) {

		var requestData api.IngestRequest
		defer closeBody(r.Body)
		// an empty body means ingest everything
		if err := json.NewDecoder(r.Body).Decode(&requestData); err != nil && err != io.EOF {
			logRH.Warn("Bad Ingest Request: ", "error:", err)
			WriteErrorResponse(w, http.StatusBadRequest, "", "Bad Request")
			return
		}

		queueJob(r, w, jobType, jobModel.JobPayload{
			Tickers:   requestData.Tickers,
			StartYear: requestData.StartYear,
		})
		return
	}
	logRH.Warn("Invalid Context by request ", r.RemoteAddr)
}

// PostReportHandler godoc
// @Summary      Generate a competitive intelligence report
// @Description  Queues a job that runs the agent workflow and produces the quarterly competitive intelligence report. Omit year and quarter to target the most recent complete quarter.
// @Tags         Report
// @Accept       json
// @Produce      json
// @Param        request  body      api.ReportRequest    false  "Optional target year and quarter"
// @Success      202      {object}  api.InitJobResponse  "Accepted - returns job id"
// @Failure      400      {object}  api.JobResponse      "Bad Request"
// @Router       /report [post]
func PostReportHandler(w http.ResponseWriter, r *http.Request) {
	if validateContext(r.Context()) {

		var requestData api.ReportRequest
		defer closeBody(r.Body)
		if err := json.NewDecoder(r.Body).Decode(&requestData); err != nil && err != io.EOF {
			logRH.Warn("Bad Report Request: ", "error:", err)
			WriteErrorResponse(w, http.StatusBadRequest, "", "Bad Request")
			return
		}
		if requestData.Year != 0 && (requestData.Quarter < 1 || requestData.Quarter > 4) {
			WriteErrorResponse(w, http.StatusBadRequest, "", "quarter must be between 1 and 4 when year is set")
			return
		}

		queueJob(r, w, jobModel.JobTypeReport, jobModel.JobPayload{
			Year:    requestData.Year,
			Quarter: requestData.Quarter,
		})
		return
	}
	logRH.Warn("Invalid Context by request ", r.RemoteAddr)
}
