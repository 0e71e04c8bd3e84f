package fetch

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/akolanti/IntelAPI/internal/config"
	"github.com/akolanti/IntelAPI/internal/customHttpClient"
	"github.com/akolanti/IntelAPI/internal/domain/commonModels"
)

// TranscriptClient pulls earnings call transcripts from the api-ninjas
// style endpoint.
type TranscriptClient struct {
	cfg        config.TranscriptConfig
	httpClient *http.Client
}

func NewTranscriptClient(cfg config.TranscriptConfig) *TranscriptClient {
	return &TranscriptClient{
		cfg:        cfg,
		httpClient: customHttpClient.NewPooledClient(60 * time.Second),
	}
}

type transcriptResponse struct {
	Date            string           `json:"date"`
	Transcript      string           `json:"transcript"`
	TranscriptSplit []transcriptTurn `json:"transcript_split"`
}

type transcriptTurn struct {
	Speaker string `json:"speaker"`
	Role    string `json:"role"`
	Company string `json:"company"`
	Text    string `json:"text"`
}

// FetchTranscript downloads one quarter's earnings call for a ticker, saves
// the formatted text under dir and returns the source record. Quarters with
// no transcript return ErrNotFound.
func (c *TranscriptClient) FetchTranscript(ctx context.Context, ticker string, year, quarter int, dir string) (commonModels.SourceDocument, error) {
	q := url.Values{}
	q.Set("ticker", ticker)
	q.Set("year", strconv.Itoa(year))
	q.Set("quarter", strconv.Itoa(quarter))
	endpoint := fmt.Sprintf("%s/earningstranscript?%s", c.cfg.BaseURL, q.Encode())

	var tr transcriptResponse

	operation := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return backoff.Permanent(err)
		}
		req.Header.Set("X-Api-Key", c.cfg.APIKey)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return &TransientError{Err: err}
		}
		defer resp.Body.Close()

		switch {
		case resp.StatusCode == http.StatusOK:
			body, err := io.ReadAll(resp.Body)
			if err != nil {
				return &TransientError{Err: err}
			}
			if err := json.Unmarshal(body, &tr); err != nil {
				return backoff.Permanent(fmt.Errorf("decoding transcript response: %w", err))
			}
			return nil
		case resp.StatusCode == http.StatusNotFound:
			return backoff.Permanent(ErrNotFound)
		case resp.StatusCode == http.StatusTooManyRequests:
			return ErrRateLimited
		case resp.StatusCode >= 500:
			return &TransientError{Err: fmt.Errorf("status %d from transcript endpoint", resp.StatusCode)}
		default:
			return backoff.Permanent(fmt.Errorf("status %d from transcript endpoint", resp.StatusCode))
		}
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 3), ctx)
	if err := backoff.Retry(operation, policy); err != nil {
		return commonModels.SourceDocument{}, fmt.Errorf("fetching transcript %s %d Q%d: %w", ticker, year, quarter, err)
	}

	text := FormatTranscript(tr)
	if text == "" {
		return commonModels.SourceDocument{}, fmt.Errorf("transcript %s %d Q%d is empty: %w", ticker, year, quarter, ErrNotFound)
	}

	date := tr.Date
	if date == "" {
		date = "unknown"
	}
	fileName := TranscriptFileName(ticker, year, quarter, date)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return commonModels.SourceDocument{}, fmt.Errorf("creating download dir: %w", err)
	}
	path := filepath.Join(dir, fileName)
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		return commonModels.SourceDocument{}, fmt.Errorf("writing %s: %w", path, err)
	}

	doc := commonModels.SourceDocument{
		Id:         SanitizeDocumentID(strings.TrimSuffix(fileName, ".txt")),
		Ticker:     ticker,
		Kind:       commonModels.EarningsCall,
		Period:     commonModels.Period{Year: year, Quarter: fmt.Sprintf("Q%d", quarter)},
		FilingDate: tr.Date,
		SourceFile: fileName,
		SourceURL:  endpoint,
		FetchedAt:  time.Now(),
	}
	logger.Info("FetchTranscript", "ticker", ticker, "year", year, "quarter", quarter, "turns", len(tr.TranscriptSplit))
	return doc, nil
}

// FormatTranscript renders a transcript one speaker turn per block. The
// split form carries speaker attribution, so it wins over the flat text.
func FormatTranscript(tr transcriptResponse) string {
	if len(tr.TranscriptSplit) == 0 {
		return strings.TrimSpace(tr.Transcript)
	}

	var sb strings.Builder
	for _, turn := range tr.TranscriptSplit {
		if turn.Text == "" {
			continue
		}
		sb.WriteString(turn.Speaker)
		if turn.Role != "" {
			sb.WriteString(" - ")
			sb.WriteString(turn.Role)
			if turn.Company != "" {
				sb.WriteString(" (")
				sb.WriteString(turn.Company)
				sb.WriteString(")")
			}
		}
		sb.WriteString(":\n")
		sb.WriteString(turn.Text)
		sb.WriteString("\n\n")
	}
	return strings.TrimSpace(sb.String())
}
