package chunker

import (
	"fmt"

	"github.com/akolanti/IntelAPI/internal/domain/commonModels"
)

const (
	filingDocumentType     = "SEC Filing"
	transcriptDocumentType = "earnings_call_transcript"
	industryLabel          = "Insurance"

	// Structural label applied when section or speaker detection found
	// nothing for a chunk.
	UnlabeledSection = "unlabeled"
)

// Tag builds the metadata record attached to every uploaded chunk. The
// sectionLabel is the Item heading for filings or the speaker name for
// transcripts, falling back to UnlabeledSection when detection found none.
func Tag(doc commonModels.SourceDocument, sectionLabel string, chunkIndex, totalChunks int) (commonModels.ChunkMeta, error) {
	if doc.Ticker == "" {
		return commonModels.ChunkMeta{}, fmt.Errorf("document %q has no ticker: %w", doc.Id, ErrMissingMetadata)
	}
	if doc.Period.Year == 0 || doc.Period.Quarter == "" {
		return commonModels.ChunkMeta{}, fmt.Errorf("document %q has no period: %w", doc.Id, ErrMissingMetadata)
	}

	if sectionLabel == "" {
		sectionLabel = UnlabeledSection
	}

	meta := commonModels.ChunkMeta{
		SourceFile:  doc.SourceFile,
		Ticker:      doc.Ticker,
		FilingDate:  doc.FilingDate,
		Year:        doc.Period.Year,
		Quarter:     doc.Period.Quarter,
		Industry:    industryLabel,
		ChunkIndex:  chunkIndex,
		TotalChunks: totalChunks,
		URL:         doc.SourceURL,
	}

	switch doc.Kind {
	case commonModels.EarningsCall:
		meta.DocumentType = transcriptDocumentType
		meta.Speaker = sectionLabel
		meta.Title = fmt.Sprintf("%s Earnings Call %s %d", doc.Ticker, doc.Period.Quarter, doc.Period.Year)
		meta.Summary = fmt.Sprintf("Earnings call transcript for %s, %s %d", doc.Ticker, doc.Period.Quarter, doc.Period.Year)
	case commonModels.AnnualFiling, commonModels.QuarterlyFiling:
		meta.DocumentType = filingDocumentType
		meta.FormType = doc.FormType
		meta.Section = sectionLabel
		meta.Title = fmt.Sprintf("%s %s %s", doc.Ticker, doc.FormType, doc.FilingDate)
		meta.Summary = fmt.Sprintf("%s filing for %s dated %s", doc.FormType, doc.Ticker, doc.FilingDate)
	default:
		return commonModels.ChunkMeta{}, fmt.Errorf("document %q has kind %q: %w", doc.Id, doc.Kind, ErrMissingMetadata)
	}

	return meta, nil
}
