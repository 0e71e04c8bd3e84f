package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// IngestionConfig is the explicit value object handed to the ingestion and
// reporting services at construction time. Defaults cover local runs; a TOML
// file and a handful of env vars can override them.
type IngestionConfig struct {
	Companies []CompanyConfig `toml:"companies"`

	Chunking   ChunkingConfig   `toml:"chunking"`
	Edgar      EdgarConfig      `toml:"edgar"`
	Transcript TranscriptConfig `toml:"transcripts"`

	// Upload batching to the vector index.
	UploadBatchSize int `toml:"upload_batch_size"`

	// Documents are fetched from this many years back.
	LookbackYears int `toml:"lookback_years"`

	// Per-company timeout during an ingestion fan-out.
	CompanyTimeout time.Duration `toml:"company_timeout"`

	DownloadDir   string `toml:"download_dir"`
	CheckpointDir string `toml:"checkpoint_dir"`
	ReportDir     string `toml:"report_dir"`
}

type CompanyConfig struct {
	Ticker          string `toml:"ticker"`
	Name            string `toml:"name"`
	CIK             string `toml:"cik"`
	HasEarningsCall bool   `toml:"has_earnings_calls"`
}

type ChunkingConfig struct {
	FilingMaxChunk     int `toml:"filing_max_chunk"`
	TranscriptMaxChunk int `toml:"transcript_max_chunk"`
	Overlap            int `toml:"overlap"`
}

type EdgarConfig struct {
	BaseURL     string  `toml:"base_url"`
	ArchiveURL  string  `toml:"archive_url"`
	UserAgent   string  `toml:"user_agent"`
	RatePerSec  float64 `toml:"rate_per_sec"`
	MaxAttempts uint64  `toml:"max_attempts"`
}

type TranscriptConfig struct {
	BaseURL     string `toml:"base_url"`
	APIKey      string `toml:"api_key"`
	MaxQuarters int    `toml:"max_quarters"`
}

func DefaultIngestionConfig() IngestionConfig {
	return IngestionConfig{
		Companies: []CompanyConfig{
			{Ticker: "HIG", Name: "The Hartford Financial Services Group", CIK: "874766", HasEarningsCall: true},
			{Ticker: "TRV", Name: "Travelers Companies, Inc.", CIK: "86312", HasEarningsCall: true},
			{Ticker: "CB", Name: "Chubb Ltd.", CIK: "896159", HasEarningsCall: true},
			{Ticker: "BRK.B", Name: "Berkshire Hathaway Inc.", CIK: "1067983", HasEarningsCall: false}, //holds no earnings calls
			{Ticker: "AIG", Name: "American International Group", CIK: "5272", HasEarningsCall: true},
			{Ticker: "CNA", Name: "CNA Financial Corp.", CIK: "21175", HasEarningsCall: true},
			{Ticker: "WRB", Name: "W. R. Berkley Corporation", CIK: "11544", HasEarningsCall: true},
		},
		Chunking: ChunkingConfig{
			FilingMaxChunk:     8000,
			TranscriptMaxChunk: 2000,
			Overlap:            200,
		},
		Edgar: EdgarConfig{
			BaseURL:     "https://data.sec.gov",
			ArchiveURL:  "https://www.sec.gov/Archives/edgar/data",
			UserAgent:   "IntelAPI research ank.github@gmail.com",
			RatePerSec:  5,
			MaxAttempts: 4,
		},
		Transcript: TranscriptConfig{
			BaseURL:     "https://api.api-ninjas.com/v1",
			MaxQuarters: 8,
		},
		UploadBatchSize: 100,
		LookbackYears:   3,
		CompanyTimeout:  5 * time.Minute,
		DownloadDir:     "downloaded_reports",
		CheckpointDir:   "chunked_reports",
		ReportDir:       "generated_reports",
	}
}

// LoadIngestionConfig layers an optional TOML file and env overrides over the
// defaults. A missing file is not an error, a malformed one is.
func LoadIngestionConfig(path string) (IngestionConfig, error) {
	cfg := DefaultIngestionConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil && !os.IsNotExist(err) {
			return cfg, fmt.Errorf("reading config file: %w", err)
		}
		if err == nil {
			if err := toml.Unmarshal(data, &cfg); err != nil {
				return cfg, fmt.Errorf("parsing config file %s: %w", path, err)
			}
		}
	}

	applyEnvOverrides(&cfg)
	return cfg, nil
}

func applyEnvOverrides(cfg *IngestionConfig) {
	if v := os.Getenv("TRANSCRIPT_API_KEY"); v != "" {
		cfg.Transcript.APIKey = v
	}
	if v := os.Getenv("EDGAR_USER_AGENT"); v != "" {
		cfg.Edgar.UserAgent = v
	}
	if v := os.Getenv("UPLOAD_BATCH_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.UploadBatchSize = n
		}
	}
}
