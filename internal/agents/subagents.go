package agents

import (
	"fmt"
	"strings"

	"github.com/nlpodyssey/openai-agents-go/agents"

	"github.com/akolanti/IntelAPI/internal/config"
)

// AnalysisSummary is the structured output every analysis sub-agent emits.
type AnalysisSummary struct {
	Headline  string   `json:"headline"`
	Findings  []string `json:"findings"`
	Citations []string `json:"citations"`
}

func renderSummary(s AnalysisSummary) string {
	var sb strings.Builder
	sb.WriteString(s.Headline)
	for _, f := range s.Findings {
		sb.WriteString("\n- ")
		sb.WriteString(f)
	}
	if len(s.Citations) > 0 {
		sb.WriteString("\nSources: ")
		sb.WriteString(strings.Join(s.Citations, "; "))
	}
	return sb.String()
}

const financialMetricsPrompt = `You are a financial metrics extraction specialist focused EXCLUSIVELY on COMMERCIAL INSURANCE segments.
Extract commercial lines metrics from 10-K and 10-Q segment disclosures: combined ratio, net written premiums,
net earned premiums, underwriting income, net investment income, catastrophe losses, prior year development and ROE.
Segment names differ per carrier: TRV and HIG report "Business Insurance", AIG "North America Commercial" only,
CB "North America Commercial P&C", CNA "Commercial", WRB "Insurance", BRK.B "BH Primary" excluding GEICO.
Exclude Personal Lines, Life and asset management. Use corpus_search to retrieve segment tables and carry the
bracketed citation of every passage into your citations list. Never report a number without a citation.`

const competitivePositioningPrompt = `You are a commercial insurance market analyst.
Analyze competitive positioning in COMMERCIAL LINES only: premium growth versus peers, rate change commentary,
product mix across GL, workers' compensation, property and specialty, and The Hartford's rank against competitors.
Exclude Berkshire Hathaway (BRK.B) from positioning comparisons, it holds no earnings calls.
Use corpus_search for evidence and cite every claim with the bracketed source given with each passage.`

const strategicInitiativesPrompt = `You are a strategy analyst tracking initiatives that affect COMMERCIAL INSURANCE business.
Identify M&A and partnerships, commercial product launches, underwriting technology, organizational changes and
capital allocation, per company and as industry themes. Ignore Personal Lines moves.
Use corpus_search, prefer earnings call passages for forward-looking statements, and cite every finding.`

const riskOutlookPrompt = `You are a risk analyst for the COMMERCIAL INSURANCE segment.
Assess catastrophe exposure, reserve adequacy in long-tail casualty lines, social inflation, the underwriting cycle
and management's forward guidance, per company and industry-wide. Exclude Personal Lines exposures.
Use corpus_search for evidence and cite every assessment with the bracketed source citations.`

func (t *Toolset) newAnalysisAgent(name, instructions string) *agents.Agent {
	agent := agents.New(name).
		WithInstructions(instructions).
		WithTools(newCorpusSearchTool(t.corpus)).
		WithOutputType(agents.OutputType[AnalysisSummary]())
	if t.model.Valid() {
		return agent.WithModelOpt(t.model)
	}
	return agent.WithModel(config.AgentModelName)
}

// runAnalysis runs one sub-agent and renders its structured output.
func runAnalysis(result *agents.RunResult) (string, error) {
	summary, ok := result.FinalOutput.(AnalysisSummary)
	if !ok {
		return "", fmt.Errorf("unexpected sub-agent output type %T", result.FinalOutput)
	}
	return renderSummary(summary), nil
}
