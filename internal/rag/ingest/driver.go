package ingest

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/akolanti/IntelAPI/internal/config"
	"github.com/akolanti/IntelAPI/internal/domain/commonModels"
	"github.com/akolanti/IntelAPI/internal/fetch"
)

// IngestFilings pulls the recent 10-K and 10-Q filings for the requested
// tickers, chunks them and uploads the lot. Companies run concurrently and
// fail independently, one dead fetch never takes down the run.
func (p *Pipeline) IngestFilings(ctx context.Context, tickers []string, startYear int) commonModels.RunSummary {
	if err := p.db.CreateCollection(ctx, config.FilingsCollectionName); err != nil {
		logger.Error("Error creating collection", "error", err)
	}

	sinceYear := p.sinceYear(startYear)
	return p.fanOut(ctx, tickers, func(ctx context.Context, company config.CompanyConfig) (int, error) {
		return p.ingestCompanyFilings(ctx, company, sinceYear)
	})
}

// IngestTranscripts does the same for earnings call transcripts. Companies
// that hold no earnings calls are skipped, not failed.
func (p *Pipeline) IngestTranscripts(ctx context.Context, tickers []string, startYear int) commonModels.RunSummary {
	if err := p.db.CreateCollection(ctx, config.FilingsCollectionName); err != nil {
		logger.Error("Error creating collection", "error", err)
	}

	sinceYear := p.sinceYear(startYear)
	return p.fanOut(ctx, tickers, func(ctx context.Context, company config.CompanyConfig) (int, error) {
		return p.ingestCompanyTranscripts(ctx, company, sinceYear)
	})
}

// sinceYear resolves the first year a run covers. An explicit start year
// from the request wins, otherwise the configured lookback applies.
func (p *Pipeline) sinceYear(startYear int) int {
	if startYear > 0 {
		return startYear
	}
	return time.Now().Year() - p.cfg.LookbackYears
}

func (p *Pipeline) fanOut(ctx context.Context, tickers []string, work func(context.Context, config.CompanyConfig) (int, error)) commonModels.RunSummary {
	companies := p.companiesFor(tickers)

	var wg sync.WaitGroup
	var mu sync.Mutex
	summary := commonModels.RunSummary{}

	for _, company := range companies {
		wg.Add(1)
		go func(company config.CompanyConfig) {
			defer wg.Done()

			companyCtx, cancel := context.WithTimeout(ctx, p.cfg.CompanyTimeout)
			defer cancel()

			count, err := work(companyCtx, company)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				logger.Error("company ingestion failed", "ticker", company.Ticker, "error", err)
				summary.Failed = append(summary.Failed, commonModels.CompanyFailure{
					Ticker: company.Ticker,
					Reason: err.Error(),
				})
				return
			}
			summary.Succeeded = append(summary.Succeeded, company.Ticker)
			summary.Chunks += count
		}(company)
	}
	wg.Wait()

	logger.Info("ingestion run finished", "succeeded", len(summary.Succeeded), "failed", len(summary.Failed), "chunks", summary.Chunks)
	return summary
}

func (p *Pipeline) companiesFor(tickers []string) []config.CompanyConfig {
	if len(tickers) == 0 {
		return p.cfg.Companies
	}
	wanted := make(map[string]bool, len(tickers))
	for _, t := range tickers {
		wanted[t] = true
	}
	var out []config.CompanyConfig
	for _, c := range p.cfg.Companies {
		if wanted[c.Ticker] {
			out = append(out, c)
		}
	}
	return out
}

func (p *Pipeline) ingestCompanyFilings(ctx context.Context, company config.CompanyConfig, sinceYear int) (int, error) {
	filings, err := p.filings.RecentFilings(ctx, company.CIK, sinceYear)
	if err != nil {
		return 0, fmt.Errorf("listing filings: %w", err)
	}
	if len(filings) == 0 {
		return 0, fmt.Errorf("no filings since %d: %w", sinceYear, fetch.ErrNotFound)
	}

	// A bad document only loses that document, the siblings still upload.
	var allChunks []commonModels.Chunk
	var docFailures []string
	for _, filing := range filings {
		chunks, err := p.prepareFilingChunks(ctx, company.Ticker, filing)
		if err != nil {
			logger.Error("filing skipped", "ticker", company.Ticker, "accession", filing.AccessionNumber, "error", err)
			docFailures = append(docFailures, fmt.Sprintf("%s %s: %v", filing.FormType, filing.FilingDate, err))
			continue
		}
		allChunks = append(allChunks, chunks...)
	}
	if len(allChunks) == 0 && len(docFailures) > 0 {
		return 0, fmt.Errorf("all %d filings failed: %s", len(docFailures), strings.Join(docFailures, "; "))
	}

	if err := BatchIngest(ctx, allChunks, p.cfg.UploadBatchSize, p.db, p.embedder, p.cfg.CheckpointDir); err != nil {
		return 0, err
	}
	return len(allChunks), nil
}

func (p *Pipeline) prepareFilingChunks(ctx context.Context, ticker string, filing fetch.Filing) ([]commonModels.Chunk, error) {
	doc, err := p.filings.DownloadFiling(ctx, ticker, filing, p.cfg.DownloadDir)
	if err != nil {
		return nil, err
	}

	text, err := fetch.ExtractLocalFile(filepath.Join(p.cfg.DownloadDir, doc.SourceFile))
	if err != nil {
		return nil, err
	}

	chunks, err := PrepareChunks(doc, text, p.cfg.Chunking)
	if err != nil {
		return nil, fmt.Errorf("chunking %s: %w", doc.Id, err)
	}
	return chunks, nil
}

func (p *Pipeline) ingestCompanyTranscripts(ctx context.Context, company config.CompanyConfig, sinceYear int) (int, error) {
	if !company.HasEarningsCall {
		logger.Info("company holds no earnings calls, skipping", "ticker", company.Ticker)
		return 0, nil
	}

	now := time.Now()

	var allChunks []commonModels.Chunk
	var docFailures []string
	for year := sinceYear; year <= now.Year(); year++ {
		for quarter := 1; quarter <= 4; quarter++ {
			if !quarterCompleted(year, quarter, now) {
				continue
			}

			chunks, err := p.prepareTranscriptChunks(ctx, company.Ticker, year, quarter)
			if errors.Is(err, fetch.ErrNotFound) {
				continue
			}
			if err != nil {
				logger.Error("transcript skipped", "ticker", company.Ticker, "year", year, "quarter", quarter, "error", err)
				docFailures = append(docFailures, fmt.Sprintf("Q%d %d: %v", quarter, year, err))
				continue
			}
			allChunks = append(allChunks, chunks...)
		}
	}
	if len(allChunks) == 0 && len(docFailures) > 0 {
		return 0, fmt.Errorf("all %d transcripts failed: %s", len(docFailures), strings.Join(docFailures, "; "))
	}

	if err := BatchIngest(ctx, allChunks, p.cfg.UploadBatchSize, p.db, p.embedder, p.cfg.CheckpointDir); err != nil {
		return 0, err
	}
	return len(allChunks), nil
}

func (p *Pipeline) prepareTranscriptChunks(ctx context.Context, ticker string, year, quarter int) ([]commonModels.Chunk, error) {
	doc, err := p.transcripts.FetchTranscript(ctx, ticker, year, quarter, p.cfg.DownloadDir)
	if err != nil {
		return nil, err
	}

	text, err := fetch.ExtractLocalFile(filepath.Join(p.cfg.DownloadDir, doc.SourceFile))
	if err != nil {
		return nil, err
	}

	chunks, err := PrepareChunks(doc, text, p.cfg.Chunking)
	if err != nil {
		return nil, fmt.Errorf("chunking %s: %w", doc.Id, err)
	}
	return chunks, nil
}

// quarterCompleted reports whether a calendar quarter has fully elapsed, a
// transcript cannot exist for a quarter still in progress.
func quarterCompleted(year, quarter int, now time.Time) bool {
	if year < now.Year() {
		return true
	}
	if year > now.Year() {
		return false
	}
	return quarter*3 < int(now.Month())
}
