package agents

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/nlpodyssey/openai-agents-go/agents"

	"github.com/akolanti/IntelAPI/internal/rag/vectorDB"
)

type corpusSearchArgs struct {
	Query   string `json:"query"`
	Ticker  string `json:"ticker"`
	Year    int    `json:"year"`
	Quarter int    `json:"quarter"`
}

// newCorpusSearchTool builds the search tool every analysis sub-agent gets.
// Results come back as citation-prefixed passages so the agent can quote
// sources verbatim.
func newCorpusSearchTool(corpus Corpus) agents.FunctionTool {
	return agents.FunctionTool{
		Name:        "corpus_search",
		Description: "Search the SEC filing and earnings call corpus. Returns passages with bracketed source citations.",
		ParamsJSONSchema: map[string]any{
			"title":                "corpus_search_args",
			"type":                 "object",
			"required":             []string{"query"},
			"additionalProperties": false,
			"properties": map[string]any{
				"query": map[string]any{
					"title": "Query",
					"type":  "string",
				},
				"ticker": map[string]any{
					"title":       "Ticker",
					"type":        "string",
					"description": "Restrict results to one company ticker.",
				},
				"year": map[string]any{
					"title": "Year",
					"type":  "integer",
				},
				"quarter": map[string]any{
					"title":       "Quarter",
					"type":        "integer",
					"description": "Calendar quarter 1-4.",
				},
			},
		},
		OnInvokeTool: func(ctx context.Context, arguments string) (any, error) {
			var args corpusSearchArgs
			if err := json.Unmarshal([]byte(arguments), &args); err != nil {
				return nil, err
			}

			filter := vectorDB.SearchFilter{
				Ticker: args.Ticker,
				Year:   args.Year,
			}
			if args.Quarter >= 1 && args.Quarter <= 4 {
				filter.Quarter = fmt.Sprintf("Q%d", args.Quarter)
			}

			matches, err := corpus.Search(ctx, args.Query, filter, 5)
			if err != nil {
				return nil, err
			}
			if len(matches) == 0 {
				return "No matching passages found.", nil
			}

			var sb strings.Builder
			for i, m := range matches {
				if i > 0 {
					sb.WriteString("\n\n")
				}
				sb.WriteString(m.Citation())
				sb.WriteString("\n")
				sb.WriteString(m.Content)
			}
			return sb.String(), nil
		},
	}
}
