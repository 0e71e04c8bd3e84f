package fetch

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/akolanti/IntelAPI/internal/config"
	"github.com/akolanti/IntelAPI/internal/domain/commonModels"
)

const transcriptFixture = `{
  "date": "2025-04-24",
  "transcript": "flat text fallback",
  "transcript_split": [
    {"speaker": "Operator", "text": "Good morning and welcome."},
    {"speaker": "Christopher Swift", "role": "Chairman and CEO", "company": "The Hartford", "text": "Core earnings were strong."}
  ]
}`

func transcriptTestClient(serverURL string) *TranscriptClient {
	cfg := config.DefaultIngestionConfig().Transcript
	cfg.BaseURL = serverURL
	cfg.APIKey = "test-key"
	return NewTranscriptClient(cfg)
}

func TestFetchTranscript(t *testing.T) {
	var gotKey string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("X-Api-Key")
		q := r.URL.Query()
		if q.Get("ticker") != "HIG" || q.Get("year") != "2025" || q.Get("quarter") != "1" {
			t.Errorf("unexpected query %q", r.URL.RawQuery)
		}
		w.Write([]byte(transcriptFixture))
	}))
	defer server.Close()

	client := transcriptTestClient(server.URL)
	dir := t.TempDir()

	doc, err := client.FetchTranscript(t.Context(), "HIG", 2025, 1, dir)
	if err != nil {
		t.Fatal(err)
	}

	if gotKey != "test-key" {
		t.Errorf("X-Api-Key = %q", gotKey)
	}
	if doc.Kind != commonModels.EarningsCall {
		t.Errorf("Kind = %q", doc.Kind)
	}
	if doc.Period.Year != 2025 || doc.Period.Quarter != "Q1" {
		t.Errorf("Period = %+v", doc.Period)
	}
	if doc.SourceFile != "HIG_EARNINGS_2025_Q1_2025-04-24.txt" {
		t.Errorf("SourceFile = %q", doc.SourceFile)
	}

	data, err := os.ReadFile(filepath.Join(dir, doc.SourceFile))
	if err != nil {
		t.Fatal(err)
	}
	text := string(data)
	if !strings.Contains(text, "Christopher Swift - Chairman and CEO (The Hartford):\nCore earnings were strong.") {
		t.Errorf("speaker turn not formatted: %q", text)
	}
	if !strings.HasPrefix(text, "Operator:\nGood morning and welcome.") {
		t.Errorf("first turn wrong: %q", text)
	}
	if strings.Contains(text, "flat text fallback") {
		t.Error("split form should win over flat transcript")
	}
}

func TestFetchTranscriptEmptyIsNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	client := transcriptTestClient(server.URL)
	if _, err := client.FetchTranscript(t.Context(), "BRK.B", 2025, 1, t.TempDir()); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestFormatTranscriptFlatFallback(t *testing.T) {
	tr := transcriptResponse{Transcript: "  flat only  "}
	if got := FormatTranscript(tr); got != "flat only" {
		t.Errorf("FormatTranscript = %q", got)
	}
}
