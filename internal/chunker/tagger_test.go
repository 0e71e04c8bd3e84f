package chunker

import (
	"errors"
	"testing"

	"github.com/akolanti/IntelAPI/internal/domain/commonModels"
)

func filingDoc() commonModels.SourceDocument {
	return commonModels.SourceDocument{
		Id:         "TRV_10-Q_2025-07-18",
		Ticker:     "TRV",
		Kind:       commonModels.QuarterlyFiling,
		FormType:   "10-Q",
		Period:     commonModels.Period{Year: 2025, Quarter: "Q2"},
		FilingDate: "2025-07-18",
		SourceFile: "TRV_10-Q_2025-07-18.html",
		SourceURL:  "https://www.sec.gov/Archives/edgar/data/86312/000008631225000050/trv-20250630.htm",
	}
}

func TestTagFilingChunk(t *testing.T) {
	meta, err := Tag(filingDoc(), "Item 1A. Risk Factors", 2, 14)
	if err != nil {
		t.Fatal(err)
	}

	if meta.DocumentType != "SEC Filing" {
		t.Errorf("DocumentType = %q", meta.DocumentType)
	}
	if meta.Section != "Item 1A. Risk Factors" {
		t.Errorf("Section = %q", meta.Section)
	}
	if meta.Speaker != "" {
		t.Errorf("filing chunk should not carry a speaker, got %q", meta.Speaker)
	}
	if meta.Ticker != "TRV" || meta.Year != 2025 || meta.Quarter != "Q2" {
		t.Errorf("identity fields wrong: %+v", meta)
	}
	if meta.ChunkIndex != 2 || meta.TotalChunks != 14 {
		t.Errorf("chunk position wrong: index=%d total=%d", meta.ChunkIndex, meta.TotalChunks)
	}
	if meta.Industry != "Insurance" {
		t.Errorf("Industry = %q", meta.Industry)
	}
}

func TestTagTranscriptChunk(t *testing.T) {
	doc := commonModels.SourceDocument{
		Id:         "HIG_EARNINGS_2025_Q1_2025-04-24",
		Ticker:     "HIG",
		Kind:       commonModels.EarningsCall,
		Period:     commonModels.Period{Year: 2025, Quarter: "Q1"},
		SourceFile: "HIG_EARNINGS_2025_Q1_2025-04-24.txt",
	}

	meta, err := Tag(doc, "Christopher Swift", 0, 5)
	if err != nil {
		t.Fatal(err)
	}
	if meta.DocumentType != "earnings_call_transcript" {
		t.Errorf("DocumentType = %q", meta.DocumentType)
	}
	if meta.Speaker != "Christopher Swift" {
		t.Errorf("Speaker = %q", meta.Speaker)
	}
	if meta.Section != "" {
		t.Errorf("transcript chunk should not carry a section, got %q", meta.Section)
	}
}

func TestTagDefaultsUnlabeled(t *testing.T) {
	meta, err := Tag(filingDoc(), "", 0, 1)
	if err != nil {
		t.Fatal(err)
	}
	if meta.Section != UnlabeledSection {
		t.Errorf("Section = %q, want %q", meta.Section, UnlabeledSection)
	}
}

func TestTagWithoutSourceFile(t *testing.T) {
	doc := filingDoc()
	doc.SourceFile = ""

	meta, err := Tag(doc, "Item 1", 0, 1)
	if err != nil {
		t.Fatal(err)
	}
	if meta.SourceFile != "" {
		t.Errorf("SourceFile = %q", meta.SourceFile)
	}
}

func TestTagMissingMetadata(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*commonModels.SourceDocument)
	}{
		{"no ticker", func(d *commonModels.SourceDocument) { d.Ticker = "" }},
		{"no year", func(d *commonModels.SourceDocument) { d.Period.Year = 0 }},
		{"no quarter", func(d *commonModels.SourceDocument) { d.Period.Quarter = "" }},
		{"unknown kind", func(d *commonModels.SourceDocument) { d.Kind = "PRESS_RELEASE" }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			doc := filingDoc()
			tc.mutate(&doc)
			if _, err := Tag(doc, "Item 1", 0, 1); !errors.Is(err, ErrMissingMetadata) {
				t.Errorf("err = %v, want ErrMissingMetadata", err)
			}
		})
	}
}
