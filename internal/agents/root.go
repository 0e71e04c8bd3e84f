package agents

import (
	"context"
	"fmt"

	"github.com/nlpodyssey/openai-agents-go/agents"

	"github.com/akolanti/IntelAPI/internal/config"
)

const rootInstructions = `You are a competitive intelligence analyst for The Hartford's COMMERCIAL LINES business.
You produce quarterly competitive intelligence reports covering seven carriers:

- The Hartford (HIG), segment "Business Insurance"
- Travelers (TRV), segment "Business Insurance"
- Chubb (CB), segment "North America Commercial P&C"
- Berkshire Hathaway (BRK.B), segment "BH Primary" excluding GEICO
- AIG, segment "North America Commercial" only
- CNA Financial (CNA), segment "Commercial"
- W. R. Berkley (WRB), segment "Insurance"

SCOPE: commercial insurance segments ONLY. Exclude Personal Lines, Life, asset management and GEICO.
Berkshire Hathaway holds no earnings calls, so exclude it from positioning comparisons and rely on its filings.

WORKFLOW, in order:
1. If the user asks for the most recent complete quarter, call find_latest_quarter first.
2. Call validate_data_availability for the target quarter and note any gaps in the report.
3. Call extract_financial_metrics, analyze_competitive_positioning, identify_strategic_initiatives and
   assess_risk_outlook for the target quarter.
4. Synthesize the results into the final report.

REPORT FORMAT, as markdown:
- Title: "Competitive Intelligence Report - Commercial Lines - Q{quarter} {year}"
- Open with this scope notice as a blockquote:
  "> Scope: this report covers the seven tracked public carriers only. Private and foreign competitors
  such as Liberty Mutual, Zurich and Tokio Marine are out of scope because they file no SEC reports."
- Sections: Executive Summary, Financial Metrics by Company, Competitive Positioning,
  Strategic Initiatives, Risk Outlook, Data Gaps.
- Carry citations through from the tool results in the form [Source: Company 10-K Q3 2025].
  Every quantitative claim needs a citation. If data is missing, say so instead of guessing.`

// Orchestrator owns the root agent and its toolset.
type Orchestrator struct {
	agent *agents.Agent
}

func NewOrchestrator(toolset *Toolset) *Orchestrator {
	agent := agents.New("CompetitiveIntelligenceOrchestrator").
		WithInstructions(rootInstructions).
		WithTools(toolset.Tools()...)
	if toolset.model.Valid() {
		agent = agent.WithModelOpt(toolset.model)
	} else {
		agent = agent.WithModel(config.AgentModelName)
	}
	return &Orchestrator{agent: agent}
}

// GenerateReport runs the full workflow for one quarter. A zero year asks
// the agent to detect the latest complete quarter itself. It returns the
// report markdown and the names of the tools the run invoked.
func (o *Orchestrator) GenerateReport(ctx context.Context, year, quarter int) (string, []string, error) {
	input := "Generate a comprehensive competitive intelligence report for the most recent complete quarter."
	if year != 0 {
		input = fmt.Sprintf("Generate a comprehensive competitive intelligence report for Q%d %d.", quarter, year)
	}

	result, err := agents.Run(ctx, o.agent, input)
	if err != nil {
		return "", nil, fmt.Errorf("report generation failed: %w", err)
	}

	report, ok := result.FinalOutput.(string)
	if !ok {
		return "", nil, fmt.Errorf("unexpected orchestrator output type %T", result.FinalOutput)
	}

	return report, toolCallNames(result), nil
}

// toolCallNames extracts the function tool names a run actually invoked,
// in order.
func toolCallNames(result *agents.RunResult) []string {
	var names []string
	for _, item := range result.NewItems {
		if tc, ok := item.(agents.ToolCallItem); ok {
			if fc, ok := tc.RawItem.(agents.ResponseFunctionToolCall); ok {
				names = append(names, fc.Name)
			}
		}
	}
	return names
}
