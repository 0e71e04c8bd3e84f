package chunker

import (
	"regexp"
	"strings"

	"github.com/akolanti/IntelAPI/internal/domain/commonModels"
)

// Transcript text is formatted one turn per block, each introduced by a
// "Name - Role (Company):" line. Names without role or company still match.
var speakerLineRe = regexp.MustCompile(`(?m)^([A-Z][A-Za-z .']+?)(?:\s-\s[^:\n]+)?:\s*$`)

// SplitSpeakers cuts a formatted transcript into per-speaker units so that
// chunking never mixes two speakers in one chunk. Text before the first
// recognized speaker line becomes an unlabeled unit.
func SplitSpeakers(text string) []commonModels.Unit {
	if text == "" {
		return nil
	}

	matches := speakerLineRe.FindAllStringSubmatchIndex(text, -1)
	if len(matches) == 0 {
		return []commonModels.Unit{{Text: strings.TrimSpace(text)}}
	}

	var units []commonModels.Unit
	if lead := strings.TrimSpace(text[:matches[0][0]]); lead != "" {
		units = append(units, commonModels.Unit{Text: lead})
	}

	for i, m := range matches {
		speaker := strings.TrimSpace(text[m[2]:m[3]])
		end := len(text)
		if i+1 < len(matches) {
			end = matches[i+1][0]
		}
		body := strings.TrimSpace(text[m[1]:end])
		if body == "" {
			continue
		}
		units = append(units, commonModels.Unit{Label: speaker, Text: body})
	}
	return units
}
