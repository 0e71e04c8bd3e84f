package agents

import (
	"testing"
	"time"

	"github.com/nlpodyssey/openai-agents-go/agents"
	"github.com/nlpodyssey/openai-agents-go/agentstesting"
	"github.com/openai/openai-go/v2/packages/param"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akolanti/IntelAPI/internal/config"
)

func TestOrchestratorTracksToolCalls(t *testing.T) {
	model := agentstesting.NewFakeModel(false, nil)
	model.AddMultipleTurnOutputs([]agentstesting.FakeModelTurnOutput{
		// First turn: detect the quarter to report on
		{Value: []agents.TResponseOutputItem{
			agentstesting.GetFunctionToolCall("find_latest_quarter", `{}`),
		}},
		// Second turn: validate it
		{Value: []agents.TResponseOutputItem{
			agentstesting.GetFunctionToolCall("validate_data_availability", `{"year":2025,"quarter":2}`),
		}},
		// Third turn: the report
		{Value: []agents.TResponseOutputItem{
			agentstesting.GetTextMessage("# Competitive Intelligence Report - Commercial Lines - Q2 2025"),
		}},
	})

	ts := NewToolset(config.DefaultIngestionConfig(), fullCorpus()).
		WithModel(param.NewOpt(agents.NewAgentModel(model))).
		WithClock(fixedClock(time.Date(2025, time.September, 10, 0, 0, 0, 0, time.UTC)))
	orchestrator := NewOrchestrator(ts)

	report, toolCalls, err := orchestrator.GenerateReport(t.Context(), 0, 0)
	require.NoError(t, err)
	assert.Contains(t, report, "Q2 2025")
	assert.Equal(t, []string{"find_latest_quarter", "validate_data_availability"}, toolCalls)
}

func TestOrchestratorExplicitQuarter(t *testing.T) {
	model := agentstesting.NewFakeModel(false, nil)
	model.AddMultipleTurnOutputs([]agentstesting.FakeModelTurnOutput{
		{Value: []agents.TResponseOutputItem{
			agentstesting.GetFunctionToolCall("validate_data_availability", `{"year":2024,"quarter":4}`),
		}},
		{Value: []agents.TResponseOutputItem{
			agentstesting.GetTextMessage("# Competitive Intelligence Report - Commercial Lines - Q4 2024"),
		}},
	})

	ts := NewToolset(config.DefaultIngestionConfig(), fullCorpus()).
		WithModel(param.NewOpt(agents.NewAgentModel(model))).
		WithClock(fixedClock(time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC)))
	orchestrator := NewOrchestrator(ts)

	report, toolCalls, err := orchestrator.GenerateReport(t.Context(), 2024, 4)
	require.NoError(t, err)
	assert.Contains(t, report, "Q4 2024")
	assert.Equal(t, []string{"validate_data_availability"}, toolCalls)
}
