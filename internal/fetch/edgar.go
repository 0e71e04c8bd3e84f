package fetch

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"golang.org/x/time/rate"

	"github.com/akolanti/IntelAPI/internal/config"
	"github.com/akolanti/IntelAPI/internal/customHttpClient"
	"github.com/akolanti/IntelAPI/internal/domain/commonModels"
	"github.com/akolanti/IntelAPI/pkg/logger_i"
)

var logger = logger_i.NewLogger("fetch")

// EDGARClient pulls filing indexes and documents from the SEC. EDGAR bans
// clients without a descriptive User-Agent and throttles aggressive ones, so
// every request goes through the shared limiter.
type EDGARClient struct {
	cfg        config.EdgarConfig
	httpClient *http.Client
	limiter    *rate.Limiter
}

func NewEDGARClient(cfg config.EdgarConfig) *EDGARClient {
	return &EDGARClient{
		cfg:        cfg,
		httpClient: customHttpClient.NewPooledClient(60 * time.Second),
		limiter:    rate.NewLimiter(rate.Limit(cfg.RatePerSec), 1),
	}
}

type Filing struct {
	FormType        string
	FilingDate      string
	AccessionNumber string
	PrimaryDocument string
	URL             string
}

// submissionsEnvelope mirrors the column-oriented layout of the EDGAR
// submissions endpoint, parallel arrays indexed together.
type submissionsEnvelope struct {
	Filings struct {
		Recent struct {
			AccessionNumber []string `json:"accessionNumber"`
			FilingDate      []string `json:"filingDate"`
			Form            []string `json:"form"`
			PrimaryDocument []string `json:"primaryDocument"`
		} `json:"recent"`
	} `json:"filings"`
}

// RecentFilings lists the 10-K and 10-Q filings for a company since
// sinceYear, newest first, with document URLs resolved.
func (c *EDGARClient) RecentFilings(ctx context.Context, cik string, sinceYear int) ([]Filing, error) {
	url := fmt.Sprintf("%s/submissions/CIK%010s.json", c.cfg.BaseURL, cik)

	body, err := c.get(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("fetching submissions for CIK %s: %w", cik, err)
	}

	var env submissionsEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("decoding submissions for CIK %s: %w", cik, err)
	}

	recent := env.Filings.Recent
	cikNum := strings.TrimLeft(cik, "0")

	var filings []Filing
	for i, form := range recent.Form {
		if form != "10-K" && form != "10-Q" {
			continue
		}
		if i >= len(recent.FilingDate) || i >= len(recent.AccessionNumber) || i >= len(recent.PrimaryDocument) {
			break
		}
		if len(recent.FilingDate[i]) < 4 {
			continue
		}
		year, err := strconv.Atoi(recent.FilingDate[i][:4])
		if err != nil || year < sinceYear {
			continue
		}
		accession := strings.ReplaceAll(recent.AccessionNumber[i], "-", "")
		filings = append(filings, Filing{
			FormType:        form,
			FilingDate:      recent.FilingDate[i],
			AccessionNumber: recent.AccessionNumber[i],
			PrimaryDocument: recent.PrimaryDocument[i],
			URL:             fmt.Sprintf("%s/%s/%s/%s", c.cfg.ArchiveURL, cikNum, accession, recent.PrimaryDocument[i]),
		})
	}

	logger.Info("RecentFilings", "cik", cik, "since", sinceYear, "count", len(filings))
	return filings, nil
}

// DownloadFiling saves the filing document under dir and returns its source
// record with the covered period resolved from the filing date.
func (c *EDGARClient) DownloadFiling(ctx context.Context, ticker string, f Filing, dir string) (commonModels.SourceDocument, error) {
	body, err := c.get(ctx, f.URL)
	if err != nil {
		return commonModels.SourceDocument{}, fmt.Errorf("downloading %s %s for %s: %w", f.FormType, f.FilingDate, ticker, err)
	}

	fileName := FilingFileName(ticker, f.FormType, f.FilingDate)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return commonModels.SourceDocument{}, fmt.Errorf("creating download dir: %w", err)
	}
	path := filepath.Join(dir, fileName)
	if err := os.WriteFile(path, body, 0o644); err != nil {
		return commonModels.SourceDocument{}, fmt.Errorf("writing %s: %w", path, err)
	}

	kind := commonModels.QuarterlyFiling
	year, _ := strconv.Atoi(f.FilingDate[:4])
	if f.FormType == "10-K" {
		kind = commonModels.AnnualFiling
		// An annual report covers the fiscal year before its filing date.
		year--
	}

	doc := commonModels.SourceDocument{
		Id:         SanitizeDocumentID(strings.TrimSuffix(fileName, ".html")),
		Ticker:     ticker,
		Kind:       kind,
		FormType:   f.FormType,
		Period:     commonModels.Period{Year: year, Quarter: QuarterFromFilingDate(f.FormType, f.FilingDate)},
		FilingDate: f.FilingDate,
		SourceFile: fileName,
		SourceURL:  f.URL,
		FetchedAt:  time.Now(),
	}
	logger.Info("DownloadFiling", "ticker", ticker, "form", f.FormType, "date", f.FilingDate, "bytes", len(body))
	return doc, nil
}

// get performs a rate-limited GET with retries on transient failures.
func (c *EDGARClient) get(ctx context.Context, url string) ([]byte, error) {
	var body []byte

	operation := func() error {
		if err := c.limiter.Wait(ctx); err != nil {
			return backoff.Permanent(err)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return backoff.Permanent(err)
		}
		req.Header.Set("User-Agent", c.cfg.UserAgent)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return &TransientError{Err: err}
		}
		defer resp.Body.Close()

		switch {
		case resp.StatusCode == http.StatusOK:
			body, err = io.ReadAll(resp.Body)
			if err != nil {
				return &TransientError{Err: err}
			}
			return nil
		case resp.StatusCode == http.StatusNotFound:
			return backoff.Permanent(ErrNotFound)
		case resp.StatusCode == http.StatusTooManyRequests:
			return ErrRateLimited
		case resp.StatusCode >= 500:
			return &TransientError{Err: fmt.Errorf("status %d from %s", resp.StatusCode, url)}
		default:
			return backoff.Permanent(fmt.Errorf("status %d from %s", resp.StatusCode, url))
		}
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), c.cfg.MaxAttempts), ctx)
	if err := backoff.Retry(operation, policy); err != nil {
		return nil, err
	}
	return body, nil
}
