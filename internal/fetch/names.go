package fetch

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	invalidIDCharsRe = regexp.MustCompile(`[^a-zA-Z0-9\-_]`)
	underscoreRunRe  = regexp.MustCompile(`_+`)
)

// SanitizeDocumentID maps an arbitrary name onto the character set the
// vector index accepts for document ids. Runs of rejected characters
// collapse to a single underscore.
func SanitizeDocumentID(name string) string {
	id := invalidIDCharsRe.ReplaceAllString(name, "_")
	id = underscoreRunRe.ReplaceAllString(id, "_")
	return strings.Trim(id, "_")
}

// FilingFileName is TICKER_FORM_DATE.html, e.g. TRV_10-Q_2025-07-18.html.
func FilingFileName(ticker, formType, filingDate string) string {
	return fmt.Sprintf("%s_%s_%s.html", ticker, formType, filingDate)
}

// TranscriptFileName is TICKER_EARNINGS_YEAR_QQ_DATE.txt,
// e.g. HIG_EARNINGS_2025_Q1_2025-04-24.txt.
func TranscriptFileName(ticker string, year, quarter int, date string) string {
	return fmt.Sprintf("%s_EARNINGS_%d_Q%d_%s.txt", ticker, year, quarter, date)
}

// QuarterFromFilingDate derives the fiscal period a filing covers. A 10-Q
// filed by May covers Q1, by August Q2, by November Q3. 10-Ks cover the
// full year.
func QuarterFromFilingDate(formType, filingDate string) string {
	if formType == "10-K" {
		return "FY"
	}
	var year, month, day int
	if _, err := fmt.Sscanf(filingDate, "%d-%d-%d", &year, &month, &day); err != nil {
		return ""
	}
	switch {
	case month <= 5:
		return "Q1"
	case month <= 8:
		return "Q2"
	default:
		return "Q3"
	}
}
