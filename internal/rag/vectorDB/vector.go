package vectorDB

import (
	"context"
	"fmt"
	"strings"

	"github.com/akolanti/IntelAPI/internal/domain/commonModels"
)

// SearchFilter narrows a query to a slice of the corpus. Zero values mean
// no constraint on that field.
type SearchFilter struct {
	Ticker       string
	Year         int
	Quarter      string
	DocumentType string
}

// SearchMatch is one scored hit with the payload fields needed to build a
// citation.
type SearchMatch struct {
	Content      string
	Score        float32
	Ticker       string
	FormType     string
	Year         int64
	Quarter      string
	Section      string
	Speaker      string
	SourceFile   string
	DocumentType string
	URL          string
}

// Citation renders the bracketed source reference for this match.
func (m SearchMatch) Citation() string {
	label := m.FormType
	if label == "" {
		label = "Earnings Call"
	}
	return fmt.Sprintf("[Source: %s %s %s %d]", m.Ticker, label, m.Quarter, m.Year)
}

// RejectedBatchError reports an upsert the index refused, naming the chunks
// in the failed batch so the caller can checkpoint and retry them.
type RejectedBatchError struct {
	ChunkIds []string
	Err      error
}

func (e *RejectedBatchError) Error() string {
	return fmt.Sprintf("index rejected batch of %d chunks [%s]: %v", len(e.ChunkIds), strings.Join(e.ChunkIds, ", "), e.Err)
}

func (e *RejectedBatchError) Unwrap() error {
	return e.Err
}

type DataProcessor interface {
	Search(ctx context.Context, vectorVal []float32, filter SearchFilter, limit uint64) ([]SearchMatch, error)
	Count(ctx context.Context, filter SearchFilter) (uint64, error)
	GetCachedAnswer(ctx context.Context, queryVector []float32) (string, bool, error)
	SaveToCache(ctx context.Context, id string, vector []float32, answer string) error

	// CreateCollection Ingest document call
	CreateCollection(ctx context.Context, collectionName string) error
	UpsertBatch(ctx context.Context, collectionName string, chunks []commonModels.Chunk, vectors [][]float32) error
}
