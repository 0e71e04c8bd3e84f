package agents

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akolanti/IntelAPI/internal/rag/vectorDB"
)

func TestCorpusSearchToolBuildsFilter(t *testing.T) {
	var gotFilter vectorDB.SearchFilter
	corpus := &fakeCorpus{
		searchFn: func(_ context.Context, query string, filter vectorDB.SearchFilter, limit uint64) ([]vectorDB.SearchMatch, error) {
			gotFilter = filter
			assert.Equal(t, "combined ratio", query)
			assert.EqualValues(t, 5, limit)
			return []vectorDB.SearchMatch{
				{
					Content:  "The Business Insurance combined ratio was 91.2.",
					Ticker:   "HIG",
					FormType: "10-Q",
					Year:     2025,
					Quarter:  "Q2",
				},
			}, nil
		},
	}

	tool := newCorpusSearchTool(corpus)
	out, err := tool.OnInvokeTool(context.Background(), `{"query":"combined ratio","ticker":"HIG","year":2025,"quarter":2}`)
	require.NoError(t, err)

	assert.Equal(t, "HIG", gotFilter.Ticker)
	assert.Equal(t, 2025, gotFilter.Year)
	assert.Equal(t, "Q2", gotFilter.Quarter)

	text, ok := out.(string)
	require.True(t, ok)
	assert.Contains(t, text, "[Source: HIG 10-Q Q2 2025]")
	assert.Contains(t, text, "combined ratio was 91.2")
}

func TestCorpusSearchToolNoMatches(t *testing.T) {
	tool := newCorpusSearchTool(&fakeCorpus{})
	out, err := tool.OnInvokeTool(context.Background(), `{"query":"anything"}`)
	require.NoError(t, err)
	assert.Equal(t, "No matching passages found.", out)
}
