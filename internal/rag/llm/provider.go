package llm

import (
	"context"

	"github.com/akolanti/IntelAPI/internal/rag/vectorDB"
)

type Provider interface {
	Generate(ctx context.Context, query string, matches []vectorDB.SearchMatch) (string, error)
}
