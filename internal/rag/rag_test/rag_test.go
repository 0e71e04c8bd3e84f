package rag_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/akolanti/IntelAPI/internal/config"
	"github.com/akolanti/IntelAPI/internal/domain/commonModels"
	"github.com/akolanti/IntelAPI/internal/domain/jobModel"
	"github.com/akolanti/IntelAPI/internal/fetch"
	"github.com/akolanti/IntelAPI/internal/rag"
	"github.com/akolanti/IntelAPI/internal/rag/ingest"
	"github.com/akolanti/IntelAPI/internal/rag/vectorDB"
)

func newTestService(t *testing.T, v *MockVectorDB, l *MockLLM, e *MockEmbedder, filings *MockFilingSource, transcripts *MockTranscriptSource, reporter rag.ReportGenerator) rag.Service {
	t.Helper()
	cfg := config.DefaultIngestionConfig()
	cfg.Companies = []config.CompanyConfig{
		{Ticker: "TRV", Name: "Travelers", CIK: "0000086312", HasEarningsCall: true},
	}
	cfg.DownloadDir = t.TempDir()
	cfg.CheckpointDir = t.TempDir()
	pipeline := ingest.NewPipeline(cfg, filings, transcripts, e, v)
	return rag.NewService(v, l, e, pipeline, reporter)
}

func TestProcessSearch_Scenarios(t *testing.T) {
	tests := []struct {
		name           string
		setupMocks     func(e *MockEmbedder, v *MockVectorDB, l *MockLLM)
		expectedStatus jobModel.JobStatus
		expectedAnswer string
		expectedErr    string
	}{
		{
			name: "Success_Full_Flow",
			setupMocks: func(e *MockEmbedder, v *MockVectorDB, l *MockLLM) {
				v.OnGetCachedAnswer = func(ctx context.Context, emb []float32) (string, bool, error) {
					return "", false, nil
				}
				l.OnGenerate = func(ctx context.Context, q string, m []vectorDB.SearchMatch) (string, error) {
					return "final answer", nil
				}
			},
			expectedStatus: jobModel.JobStatusComplete,
			expectedAnswer: "final answer",
		},
		{
			name: "Success_Cache_Hit",
			setupMocks: func(e *MockEmbedder, v *MockVectorDB, l *MockLLM) {
				v.OnGetCachedAnswer = func(ctx context.Context, emb []float32) (string, bool, error) {
					return "cached answer", true, nil
				}
			},
			expectedStatus: jobModel.JobStatusComplete,
			expectedAnswer: "cached answer",
		},
		{
			name: "Failure_Embedding",
			setupMocks: func(e *MockEmbedder, v *MockVectorDB, l *MockLLM) {
				e.OnGetEmbedding = func(ctx context.Context, text string) ([]float32, error) {
					return nil, errors.New("api limit")
				}
			},
			expectedStatus: jobModel.JobStatusError,
			expectedErr:    "EMBEDDING_FAILURE",
		},
		{
			name: "Failure_Vector_Search",
			setupMocks: func(e *MockEmbedder, v *MockVectorDB, l *MockLLM) {
				v.OnGetCachedAnswer = func(ctx context.Context, emb []float32) (string, bool, error) {
					return "", false, nil
				}
				v.OnSearch = func(ctx context.Context, vec []float32, filter vectorDB.SearchFilter, limit uint64) ([]vectorDB.SearchMatch, error) {
					return nil, errors.New("db timeout")
				}
			},
			expectedStatus: jobModel.JobStatusError,
			expectedErr:    "VECTOR_DB_FAILURE",
		},
		{
			name: "Failure_LLM_Generation",
			setupMocks: func(e *MockEmbedder, v *MockVectorDB, l *MockLLM) {
				v.OnGetCachedAnswer = func(ctx context.Context, emb []float32) (string, bool, error) {
					return "", false, nil
				}
				l.OnGenerate = func(ctx context.Context, q string, m []vectorDB.SearchMatch) (string, error) {
					return "", errors.New("provider down")
				}
			},
			expectedStatus: jobModel.JobStatusError,
			expectedErr:    "LLM_GENERATION_FAILURE",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mEmbed := &MockEmbedder{}
			mVec := &MockVectorDB{}
			mLLM := &MockLLM{}

			tt.setupMocks(mEmbed, mVec, mLLM)

			s := newTestService(t, mVec, mLLM, mEmbed, &MockFilingSource{}, &MockTranscriptSource{}, &MockReporter{})

			ctx := context.WithValue(context.Background(), config.TRACE_ID_KEY, "test-trace")
			job := jobModel.Job{
				Id: "test-job",
				JobPayload: jobModel.JobPayload{
					Question: "test question",
				},
			}

			result := s.ProcessSearch(ctx, job)

			if result.Status != tt.expectedStatus {
				t.Errorf("Status got %v, want %v", result.Status, tt.expectedStatus)
			}

			if tt.expectedAnswer != "" && result.JobPayload.Answer != tt.expectedAnswer {
				t.Errorf("Answer got %s, want %s", result.JobPayload.Answer, tt.expectedAnswer)
			}

			if tt.expectedErr != "" && result.Error.Code != http.StatusInternalServerError {
				t.Errorf("Error Code got %d, want internal server error for %s", result.Error.Code, tt.expectedErr)
			}
		})
	}
}

func TestProcessSearch_FilterFromPayload(t *testing.T) {
	var gotFilter vectorDB.SearchFilter
	mVec := &MockVectorDB{
		OnSearch: func(ctx context.Context, vec []float32, filter vectorDB.SearchFilter, limit uint64) ([]vectorDB.SearchMatch, error) {
			gotFilter = filter
			return []vectorDB.SearchMatch{{Content: "segment results", Ticker: "TRV", FormType: "10-Q", Year: 2025, Quarter: "Q2"}}, nil
		},
	}
	s := newTestService(t, mVec, &MockLLM{}, &MockEmbedder{}, &MockFilingSource{}, &MockTranscriptSource{}, &MockReporter{})

	ctx := context.WithValue(context.Background(), config.TRACE_ID_KEY, "filter-trace")
	job := jobModel.Job{
		Id: "filter-job",
		JobPayload: jobModel.JobPayload{
			Question: "combined ratio",
			Tickers:  []string{"TRV"},
			Year:     2025,
			Quarter:  2,
		},
	}

	result := s.ProcessSearch(ctx, job)

	if gotFilter.Ticker != "TRV" || gotFilter.Year != 2025 || gotFilter.Quarter != "Q2" {
		t.Errorf("filter = %+v", gotFilter)
	}
	if len(result.JobPayload.Sources) != 1 {
		t.Fatalf("sources = %v", result.JobPayload.Sources)
	}
	if result.JobPayload.Sources[0] != "[Source: TRV 10-Q Q2 2025]" {
		t.Errorf("citation = %q", result.JobPayload.Sources[0])
	}
}

func writeFilingFixture(t *testing.T) (*MockFilingSource, commonModels.SourceDocument) {
	t.Helper()
	doc := commonModels.SourceDocument{
		Id:         "TRV_10-Q_2025-07-18",
		Ticker:     "TRV",
		Kind:       commonModels.QuarterlyFiling,
		FormType:   "10-Q",
		Period:     commonModels.Period{Year: 2025, Quarter: "Q2"},
		FilingDate: "2025-07-18",
		SourceFile: "TRV_10-Q_2025-07-18.html",
	}
	source := &MockFilingSource{
		OnRecentFilings: func(ctx context.Context, cik string, sinceYear int) ([]fetch.Filing, error) {
			return []fetch.Filing{{FormType: "10-Q", FilingDate: "2025-07-18"}}, nil
		},
		OnDownloadFiling: func(ctx context.Context, ticker string, f fetch.Filing, downloadDir string) (commonModels.SourceDocument, error) {
			content := "<html><body><p>Item 1. Business</p><p>We underwrite commercial property and casualty insurance.</p></body></html>"
			if err := os.WriteFile(filepath.Join(downloadDir, doc.SourceFile), []byte(content), 0o644); err != nil {
				return commonModels.SourceDocument{}, err
			}
			return doc, nil
		},
	}
	return source, doc
}

func TestIngestFilings_Scenarios(t *testing.T) {
	t.Run("Ingestion_Success", func(t *testing.T) {
		mVec := &MockVectorDB{}
		source, _ := writeFilingFixture(t)

		s := newTestService(t, mVec, &MockLLM{}, &MockEmbedder{}, source, &MockTranscriptSource{}, &MockReporter{})

		ctx := context.WithValue(context.Background(), config.TRACE_ID_KEY, "ingest-trace")
		result := s.IngestFilings(ctx, jobModel.Job{Id: "ingest-job-1"})

		if result.Status != jobModel.JobStatusComplete {
			t.Fatalf("Status got %v, want Complete (error: %+v)", result.Status, result.Error)
		}
		if result.JobPayload.Summary == nil {
			t.Fatal("Summary missing from payload")
		}
		if len(result.JobPayload.Summary.Succeeded) != 1 || result.JobPayload.Summary.Succeeded[0] != "TRV" {
			t.Errorf("Succeeded = %v", result.JobPayload.Summary.Succeeded)
		}
		if result.JobPayload.Summary.Chunks == 0 {
			t.Error("expected chunks to be counted")
		}
	})

	t.Run("Failure_All_Companies", func(t *testing.T) {
		source := &MockFilingSource{
			OnRecentFilings: func(ctx context.Context, cik string, sinceYear int) ([]fetch.Filing, error) {
				return nil, errors.New("edgar unavailable")
			},
		}
		s := newTestService(t, &MockVectorDB{}, &MockLLM{}, &MockEmbedder{}, source, &MockTranscriptSource{}, &MockReporter{})

		ctx := context.WithValue(context.Background(), config.TRACE_ID_KEY, "ingest-trace")
		result := s.IngestFilings(ctx, jobModel.Job{Id: "ingest-job-2"})

		if result.Status != jobModel.JobStatusError {
			t.Errorf("Status got %v, want Error", result.Status)
		}
		if result.JobPayload.Summary == nil || len(result.JobPayload.Summary.Failed) != 1 {
			t.Errorf("Summary = %+v", result.JobPayload.Summary)
		}
	})
}

func TestIngestTranscripts_SingleQuarterHit(t *testing.T) {
	targetYear := time.Now().Year() - 1
	source := &MockTranscriptSource{
		OnFetchTranscript: func(ctx context.Context, ticker string, year, quarter int, dir string) (commonModels.SourceDocument, error) {
			if year != targetYear || quarter != 1 {
				return commonModels.SourceDocument{}, fetch.ErrNotFound
			}
			doc := commonModels.SourceDocument{
				Id:         fmt.Sprintf("%s_EARNINGS_%d_Q1", ticker, year),
				Ticker:     ticker,
				Kind:       commonModels.EarningsCall,
				Period:     commonModels.Period{Year: year, Quarter: "Q1"},
				SourceFile: fmt.Sprintf("%s_EARNINGS_%d_Q1_2025-01-25.txt", ticker, year),
			}
			content := "Alan Schnitzer - CEO (Travelers):\nWe delivered strong underwriting results this quarter.\n\n"
			if err := os.WriteFile(filepath.Join(dir, doc.SourceFile), []byte(content), 0o644); err != nil {
				return commonModels.SourceDocument{}, err
			}
			return doc, nil
		},
	}

	s := newTestService(t, &MockVectorDB{}, &MockLLM{}, &MockEmbedder{}, &MockFilingSource{}, source, &MockReporter{})

	ctx := context.WithValue(context.Background(), config.TRACE_ID_KEY, "transcript-trace")
	result := s.IngestTranscripts(ctx, jobModel.Job{Id: "transcript-job-1"})

	if result.Status != jobModel.JobStatusComplete {
		t.Fatalf("Status got %v, want Complete (error: %+v)", result.Status, result.Error)
	}
	if result.JobPayload.Summary == nil || result.JobPayload.Summary.Chunks == 0 {
		t.Errorf("Summary = %+v", result.JobPayload.Summary)
	}
}

func TestGenerateReport_Scenarios(t *testing.T) {
	t.Run("Report_Success", func(t *testing.T) {
		reporter := &MockReporter{
			OnGenerate: func(ctx context.Context, year, quarter int) (string, string, []string, error) {
				if year != 2025 || quarter != 2 {
					t.Errorf("Generate(%d, %d), want (2025, 2)", year, quarter)
				}
				return "generated_reports/ci_report_Q2_2025.md", "# Report body", []string{"find_latest_quarter", "extract_financial_metrics"}, nil
			},
		}
		s := newTestService(t, &MockVectorDB{}, &MockLLM{}, &MockEmbedder{}, &MockFilingSource{}, &MockTranscriptSource{}, reporter)

		ctx := context.WithValue(context.Background(), config.TRACE_ID_KEY, "report-trace")
		job := jobModel.Job{Id: "report-job-1", JobPayload: jobModel.JobPayload{Year: 2025, Quarter: 2}}

		result := s.GenerateReport(ctx, job)

		if result.Status != jobModel.JobStatusComplete {
			t.Fatalf("Status got %v", result.Status)
		}
		if result.JobPayload.ReportPath != "generated_reports/ci_report_Q2_2025.md" {
			t.Errorf("ReportPath = %q", result.JobPayload.ReportPath)
		}
		if result.JobPayload.Answer != "# Report body" {
			t.Errorf("Answer = %q", result.JobPayload.Answer)
		}
		if len(result.JobPayload.ToolCalls) != 2 {
			t.Errorf("ToolCalls = %v", result.JobPayload.ToolCalls)
		}
	})

	t.Run("Report_Failure", func(t *testing.T) {
		reporter := &MockReporter{
			OnGenerate: func(ctx context.Context, year, quarter int) (string, string, []string, error) {
				return "", "", nil, errors.New("agent run failed")
			},
		}
		s := newTestService(t, &MockVectorDB{}, &MockLLM{}, &MockEmbedder{}, &MockFilingSource{}, &MockTranscriptSource{}, reporter)

		ctx := context.WithValue(context.Background(), config.TRACE_ID_KEY, "report-trace")
		result := s.GenerateReport(ctx, jobModel.Job{Id: "report-job-2"})

		if result.Status != jobModel.JobStatusError {
			t.Errorf("Status got %v, want Error", result.Status)
		}
	})
}
