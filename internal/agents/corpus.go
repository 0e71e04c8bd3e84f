package agents

import (
	"context"
	"fmt"

	"github.com/akolanti/IntelAPI/internal/rag/embedding"
	"github.com/akolanti/IntelAPI/internal/rag/vectorDB"
	"github.com/akolanti/IntelAPI/pkg/logger_i"
)

var logger = logger_i.NewLogger("Agents")

// Corpus is the document store surface the agent tools run against. The
// analysis sub-agents search it, the availability tools count it.
type Corpus interface {
	Search(ctx context.Context, query string, filter vectorDB.SearchFilter, limit uint64) ([]vectorDB.SearchMatch, error)
	Count(ctx context.Context, filter vectorDB.SearchFilter) (uint64, error)
}

// VectorCorpus backs Corpus with the embedding model and the vector index.
type VectorCorpus struct {
	Embedder embedding.Embedder
	DB       vectorDB.DataProcessor
}

func (c *VectorCorpus) Search(ctx context.Context, query string, filter vectorDB.SearchFilter, limit uint64) ([]vectorDB.SearchMatch, error) {
	vector, err := c.Embedder.GetEmbedding(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}
	return c.DB.Search(ctx, vector, filter, limit)
}

func (c *VectorCorpus) Count(ctx context.Context, filter vectorDB.SearchFilter) (uint64, error) {
	return c.DB.Count(ctx, filter)
}
