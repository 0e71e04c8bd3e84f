package commonModels

import "time"

type DocKind string

var AnnualFiling DocKind = "ANNUAL_FILING"
var QuarterlyFiling DocKind = "QUARTERLY_FILING"
var EarningsCall DocKind = "EARNINGS_CALL"
var ERR DocKind = "ERROR"

type Period struct {
	Year    int    `json:"year"`
	Quarter string `json:"quarter"` // "Q1".."Q4", or "FY" for annual filings
}

type SourceDocument struct {
	Id         string    `json:"source_doc_id"`
	Ticker     string    `json:"ticker"`
	Kind       DocKind   `json:"document_kind"`
	FormType   string    `json:"form_type,omitempty"`
	Period     Period    `json:"period"`
	FilingDate string    `json:"filing_date,omitempty"`
	SourceFile string    `json:"source_file"`
	SourceURL  string    `json:"url,omitempty"`
	FetchedAt  time.Time `json:"fetched_at"`
}

// Unit is a structural slice of a document that chunking never spans,
// an Item section of a filing or a single speaker turn of a transcript.
type Unit struct {
	Label string `json:"label"`
	Text  string `json:"text"`
}

type Chunk struct {
	Doc        SourceDocument
	ChunkId    string    `json:"chunk_id"`
	Content    string    `json:"content"`
	Meta       ChunkMeta `json:"struct_data"`
	ChunkIndex int       `json:"chunk_index"`
}

type ChunkMeta struct {
	Title        string `json:"title"`
	Summary      string `json:"description,omitempty"`
	SourceFile   string `json:"source_file"`
	Ticker       string `json:"ticker"`
	FormType     string `json:"form_type,omitempty"`
	FilingDate   string `json:"filing_date,omitempty"`
	Year         int    `json:"year"`
	Quarter      string `json:"quarter"`
	DocumentType string `json:"document_type"`
	Industry     string `json:"industry"`
	Section      string `json:"section,omitempty"`
	Speaker      string `json:"speaker,omitempty"`
	ChunkIndex   int    `json:"chunk_index"`
	TotalChunks  int    `json:"total_chunks"`
	URL          string `json:"url,omitempty"`
}

// RunSummary is the outcome of one ingestion fan-out. Failures are isolated
// per company, one bad fetch never fails the run.
type RunSummary struct {
	Succeeded []string         `json:"succeeded"`
	Failed    []CompanyFailure `json:"failed"`
	Chunks    int              `json:"chunks_uploaded"`
}

type CompanyFailure struct {
	Ticker string `json:"ticker"`
	Reason string `json:"reason"`
}
