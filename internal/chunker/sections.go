package chunker

import (
	"html"
	"regexp"
	"strings"

	"github.com/akolanti/IntelAPI/internal/domain/commonModels"
)

// SEC filings mark sections with "Item N" headings. The nbsp variant shows
// up after HTML unescaping in older EDGAR documents.
var (
	scriptBlockRe = regexp.MustCompile(`(?is)<(script|style)[^>]*>.*?</(script|style)>`)
	htmlTagRe     = regexp.MustCompile(`(?s)<[^>]+>`)
	itemHeadingRe = regexp.MustCompile(`(?im)^[ \t\x{00A0}]*((?:item|part)[\s\x{00A0}]*\d{1,2}[a-z]?\b\.?[^\n]*)`)
	spaceRunRe    = regexp.MustCompile(`[ \t\x{00A0}]+`)
)

const (
	minHeadingLen = 4
	maxHeadingLen = 250
)

// StripHTML reduces a filing document to plain text while keeping line
// breaks, which the Item heading detection depends on.
func StripHTML(doc string) string {
	text := scriptBlockRe.ReplaceAllString(doc, " ")
	text = htmlTagRe.ReplaceAllString(text, "\n")
	text = html.UnescapeString(text)

	lines := strings.Split(text, "\n")
	out := lines[:0]
	for _, line := range lines {
		line = strings.TrimSpace(spaceRunRe.ReplaceAllString(line, " "))
		if line != "" {
			out = append(out, line)
		}
	}
	return strings.Join(out, "\n")
}

// SplitItems cuts the plain text of a filing into structural units at Item
// headings so that chunking never spans a section boundary. Text before the
// first recognized heading becomes an unlabeled unit. A document with no
// headings at all comes back as a single unlabeled unit.
func SplitItems(text string) []commonModels.Unit {
	if text == "" {
		return nil
	}

	matches := itemHeadingRe.FindAllStringSubmatchIndex(text, -1)

	var units []commonModels.Unit
	seen := make(map[string]bool)
	prevStart, prevLabel := 0, ""

	for _, m := range matches {
		heading := normalizeHeading(text[m[2]:m[3]])
		if len(heading) < minHeadingLen || len(heading) > maxHeadingLen {
			continue
		}
		if seen[heading] {
			continue
		}
		seen[heading] = true

		if body := strings.TrimSpace(text[prevStart:m[0]]); body != "" {
			units = append(units, commonModels.Unit{Label: prevLabel, Text: body})
		}
		prevStart, prevLabel = m[0], heading
	}

	if body := strings.TrimSpace(text[prevStart:]); body != "" {
		units = append(units, commonModels.Unit{Label: prevLabel, Text: body})
	}
	return units
}

func normalizeHeading(h string) string {
	h = spaceRunRe.ReplaceAllString(h, " ")
	return strings.TrimRight(strings.TrimSpace(h), ".")
}
