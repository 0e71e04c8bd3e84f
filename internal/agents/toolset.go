package agents

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/nlpodyssey/openai-agents-go/agents"
	"github.com/openai/openai-go/v2/packages/param"

	"github.com/akolanti/IntelAPI/internal/config"
	"github.com/akolanti/IntelAPI/internal/rag/vectorDB"
)

const (
	filingDocumentType     = "SEC Filing"
	transcriptDocumentType = "earnings_call_transcript"

	// How far back find_latest_quarter walks before giving up.
	maxQuarterLookback = 8

	earliestSupportedYear = 2020
)

// Toolset builds the six tools the orchestrator exposes. The availability
// tools are deterministic index lookups, the four analysis tools delegate
// to sub-agents.
type Toolset struct {
	cfg         config.IngestionConfig
	corpus      Corpus
	model       param.Opt[agents.AgentModel]
	toolTimeout time.Duration
	now         func() time.Time
}

func NewToolset(cfg config.IngestionConfig, corpus Corpus) *Toolset {
	return &Toolset{
		cfg:         cfg,
		corpus:      corpus,
		toolTimeout: 5 * time.Minute,
		now:         time.Now,
	}
}

// WithModel overrides the model every agent in the toolset runs on. Tests
// inject a scripted fake through here.
func (t *Toolset) WithModel(model param.Opt[agents.AgentModel]) *Toolset {
	t.model = model
	return t
}

func (t *Toolset) WithClock(now func() time.Time) *Toolset {
	t.now = now
	return t
}

func (t *Toolset) WithToolTimeout(d time.Duration) *Toolset {
	t.toolTimeout = d
	return t
}

// latestCompletedQuarter is the most recent calendar quarter whose filings
// can exist yet. Filings trail the quarter end by over a month, so Q3 only
// counts as complete from November on, and January through April fall back
// to Q4 of the previous year.
func latestCompletedQuarter(now time.Time) (year, quarter int) {
	switch month := int(now.Month()); {
	case month >= 11:
		return now.Year(), 3
	case month >= 8:
		return now.Year(), 2
	case month >= 5:
		return now.Year(), 1
	default:
		return now.Year() - 1, 4
	}
}

// quarterLabelFor maps a calendar quarter onto the index label filings
// carry. Annual reports cover Q4 and are tagged FY.
func quarterLabelFor(quarter int) string {
	if quarter == 4 {
		return "FY"
	}
	return fmt.Sprintf("Q%d", quarter)
}

type companyAvailability struct {
	Complete bool
	Missing  []string
}

func (t *Toolset) checkCompany(ctx context.Context, company config.CompanyConfig, year, quarter int) companyAvailability {
	var missing []string

	filingFilter := vectorDB.SearchFilter{
		Ticker:       company.Ticker,
		Year:         year,
		Quarter:      quarterLabelFor(quarter),
		DocumentType: filingDocumentType,
	}
	count, err := t.corpus.Count(ctx, filingFilter)
	if err != nil {
		logger.Error("availability check failed", "ticker", company.Ticker, "error", err)
	}
	if count == 0 {
		missing = append(missing, "SEC filing")
	}

	if company.HasEarningsCall {
		callFilter := vectorDB.SearchFilter{
			Ticker:       company.Ticker,
			Year:         year,
			Quarter:      fmt.Sprintf("Q%d", quarter),
			DocumentType: transcriptDocumentType,
		}
		count, err := t.corpus.Count(ctx, callFilter)
		if err != nil {
			logger.Error("availability check failed", "ticker", company.Ticker, "error", err)
		}
		if count == 0 {
			missing = append(missing, "earnings call")
		}
	}

	return companyAvailability{Complete: len(missing) == 0, Missing: missing}
}

func (t *Toolset) validateQuarter(ctx context.Context, year, quarter int) map[string]companyAvailability {
	availability := make(map[string]companyAvailability, len(t.cfg.Companies))
	for _, company := range t.cfg.Companies {
		availability[company.Ticker] = t.checkCompany(ctx, company, year, quarter)
	}
	return availability
}

type quarterResult struct {
	Year    int    `json:"year"`
	Quarter int    `json:"quarter"`
	Status  string `json:"status"`
	Message string `json:"message"`
}

// FindLatestQuarterTool walks back from the latest completed calendar
// quarter until it finds one where every company has its required
// documents, defaulting to the computed latest when none does.
func (t *Toolset) FindLatestQuarterTool() agents.FunctionTool {
	return agents.FunctionTool{
		Name:        "find_latest_quarter",
		Description: "Automatically detect the most recent quarter with complete data for all tracked companies.",
		ParamsJSONSchema: map[string]any{
			"title":                "find_latest_quarter_args",
			"type":                 "object",
			"required":             []string{},
			"additionalProperties": false,
			"properties":           map[string]any{},
		},
		OnInvokeTool: func(ctx context.Context, _ string) (any, error) {
			latestYear, latestQuarter := latestCompletedQuarter(t.now())

			year, quarter := latestYear, latestQuarter
			for i := 0; i < maxQuarterLookback; i++ {
				availability := t.validateQuarter(ctx, year, quarter)

				complete := 0
				for _, a := range availability {
					if a.Complete {
						complete++
					}
				}
				if complete == len(t.cfg.Companies) {
					return marshalResult(quarterResult{
						Year:    year,
						Quarter: quarter,
						Status:  "complete",
						Message: fmt.Sprintf("Latest complete quarter: Q%d %d", quarter, year),
					})
				}

				quarter--
				if quarter < 1 {
					quarter = 4
					year--
				}
			}

			return marshalResult(quarterResult{
				Year:    latestYear,
				Quarter: latestQuarter,
				Status:  "incomplete",
				Message: fmt.Sprintf("No complete quarter found, defaulting to Q%d %d", latestQuarter, latestYear),
			})
		},
	}
}

type availabilityResult struct {
	Year              int    `json:"year"`
	Quarter           int    `json:"quarter"`
	TotalCompanies    int    `json:"total_companies"`
	CompleteCompanies int    `json:"complete_companies"`
	CompleteList      string `json:"complete_list"`
	MissingCount      int    `json:"missing_count"`
	MissingSummary    string `json:"missing_summary"`
	AllComplete       bool   `json:"all_complete"`
	Status            string `json:"status"`
}

// ValidateDataTool checks whether every company has its required filing
// and, where applicable, earnings call for one quarter.
func (t *Toolset) ValidateDataTool() agents.FunctionTool {
	return agents.FunctionTool{
		Name:             "validate_data_availability",
		Description:      "Check if required SEC filings and earnings call transcripts are available for all companies for a specific quarter. Berkshire Hathaway (BRK.B) holds no earnings calls, only its filing is required.",
		ParamsJSONSchema: yearQuarterSchema("validate_data_availability_args"),
		OnInvokeTool: func(ctx context.Context, arguments string) (any, error) {
			args, err := parseYearQuarter(arguments)
			if err != nil {
				return nil, err
			}

			now := t.now()
			currentQuarter := (int(now.Month())-1)/3 + 1
			if args.Year > now.Year() || (args.Year == now.Year() && args.Quarter > currentQuarter) {
				return marshalResult(availabilityResult{
					Year:           args.Year,
					Quarter:        args.Quarter,
					TotalCompanies: len(t.cfg.Companies),
					MissingCount:   len(t.cfg.Companies),
					MissingSummary: "Data not yet available (future quarter)",
					Status:         "Future quarter - no data available",
				})
			}

			availability := t.validateQuarter(ctx, args.Year, args.Quarter)

			var completeList, missingSummary []string
			for _, company := range t.cfg.Companies {
				a := availability[company.Ticker]
				if a.Complete {
					completeList = append(completeList, company.Ticker)
					continue
				}
				missingSummary = append(missingSummary, fmt.Sprintf("%s: %s", company.Ticker, strings.Join(a.Missing, ", ")))
			}

			result := availabilityResult{
				Year:              args.Year,
				Quarter:           args.Quarter,
				TotalCompanies:    len(t.cfg.Companies),
				CompleteCompanies: len(completeList),
				CompleteList:      strings.Join(completeList, ", "),
				MissingCount:      len(missingSummary),
				MissingSummary:    strings.Join(missingSummary, "; "),
				AllComplete:       len(completeList) == len(t.cfg.Companies),
				Status:            fmt.Sprintf("%d/%d companies ready", len(completeList), len(t.cfg.Companies)),
			}
			if result.AllComplete {
				result.Status = "complete"
			}
			if result.MissingSummary == "" {
				result.MissingSummary = "None"
			}
			return marshalResult(result)
		},
	}
}

type metricsResult struct {
	Year              int               `json:"year"`
	Quarter           int               `json:"quarter"`
	MetricsByCompany  map[string]string `json:"metrics_by_company"`
	Status            string            `json:"status"`
	CompaniesAnalyzed int               `json:"companies_analyzed"`
}

// FinancialMetricsTool fans the metrics sub-agent out across all companies
// concurrently. A company whose analysis fails gets a note in the result,
// the rest are kept.
func (t *Toolset) FinancialMetricsTool() agents.FunctionTool {
	agent := t.newAnalysisAgent("FinancialMetricsAgent", financialMetricsPrompt)

	return agents.FunctionTool{
		Name:             "extract_financial_metrics",
		Description:      "Extract key commercial segment financial metrics (combined ratio, net written premiums, underwriting income, catastrophe losses) for all companies.",
		ParamsJSONSchema: yearQuarterSchema("extract_financial_metrics_args"),
		OnInvokeTool: func(ctx context.Context, arguments string) (any, error) {
			args, err := parseYearQuarter(arguments)
			if err != nil {
				return nil, err
			}

			childCtx, cancel := context.WithTimeout(ctx, t.toolTimeout)
			defer cancel()

			var wg sync.WaitGroup
			results := make([]string, len(t.cfg.Companies))
			runErrors := make([]error, len(t.cfg.Companies))

			wg.Add(len(t.cfg.Companies))
			for i, company := range t.cfg.Companies {
				go func(i int, company config.CompanyConfig) {
					defer wg.Done()
					input := fmt.Sprintf(
						"Extract commercial segment financial metrics for %s (%s) for Q%d %d. Restrict corpus_search to ticker %q.",
						company.Name, company.Ticker, args.Quarter, args.Year, company.Ticker,
					)
					result, err := agents.Run(childCtx, agent, input)
					if err != nil {
						runErrors[i] = err
						return
					}
					results[i], runErrors[i] = runAnalysis(result)
				}(i, company)
			}
			wg.Wait()

			metrics := make(map[string]string, len(t.cfg.Companies))
			analyzed := 0
			for i, company := range t.cfg.Companies {
				if runErrors[i] != nil {
					logger.Error("metrics extraction failed", "ticker", company.Ticker, "error", runErrors[i])
					metrics[company.Ticker] = fmt.Sprintf("analysis unavailable: %v", runErrors[i])
					continue
				}
				metrics[company.Ticker] = results[i]
				analyzed++
			}

			return marshalResult(metricsResult{
				Year:              args.Year,
				Quarter:           args.Quarter,
				MetricsByCompany:  metrics,
				Status:            "complete",
				CompaniesAnalyzed: analyzed,
			})
		},
	}
}

// CompetitivePositioningTool delegates to the positioning sub-agent.
func (t *Toolset) CompetitivePositioningTool() agents.FunctionTool {
	agent := t.newAnalysisAgent("CompetitivePositioningAgent", competitivePositioningPrompt)
	return t.delegatingTool(
		"analyze_competitive_positioning",
		"Analyze competitive positioning in the commercial insurance market: market share trends, pricing power and The Hartford's rank versus peers.",
		"analysis",
		agent,
		"Analyze commercial lines competitive positioning for Q%d %d across HIG, TRV, CB, AIG, CNA and WRB.",
	)
}

// StrategicInitiativesTool delegates to the initiatives sub-agent.
func (t *Toolset) StrategicInitiativesTool() agents.FunctionTool {
	agent := t.newAnalysisAgent("StrategicInitiativesAgent", strategicInitiativesPrompt)
	return t.delegatingTool(
		"identify_strategic_initiatives",
		"Identify strategic initiatives affecting commercial insurance: M&A, product innovation, technology and capital allocation.",
		"initiatives",
		agent,
		"Identify strategic initiatives affecting commercial insurance business for Q%d %d across all tracked companies.",
	)
}

// RiskOutlookTool delegates to the risk sub-agent.
func (t *Toolset) RiskOutlookTool() agents.FunctionTool {
	agent := t.newAnalysisAgent("RiskOutlookAgent", riskOutlookPrompt)
	return t.delegatingTool(
		"assess_risk_outlook",
		"Assess commercial segment risk exposure and management's forward-looking guidance.",
		"risk_analysis",
		agent,
		"Assess commercial segment risk and outlook for Q%d %d across all tracked companies.",
	)
}

func (t *Toolset) delegatingTool(name, description, resultKey string, agent *agents.Agent, inputFormat string) agents.FunctionTool {
	return agents.FunctionTool{
		Name:             name,
		Description:      description,
		ParamsJSONSchema: yearQuarterSchema(name + "_args"),
		OnInvokeTool: func(ctx context.Context, arguments string) (any, error) {
			args, err := parseYearQuarter(arguments)
			if err != nil {
				return nil, err
			}

			childCtx, cancel := context.WithTimeout(ctx, t.toolTimeout)
			defer cancel()

			var analysis string
			result, err := agents.Run(childCtx, agent, fmt.Sprintf(inputFormat, args.Quarter, args.Year))
			if err == nil {
				analysis, err = runAnalysis(result)
			}
			if err != nil {
				// A failed or timed-out analysis must not sink the whole
				// report, the orchestrator works with whatever survived.
				logger.Error("analysis failed", "tool", name, "error", err)
				reason := fmt.Sprintf("%s failed: %v", name, err)
				if childCtx.Err() != nil {
					reason = fmt.Sprintf("%s timed out after %s", name, t.toolTimeout)
				}
				return marshalResult(map[string]any{
					"year":    args.Year,
					"quarter": args.Quarter,
					resultKey: "",
					"status":  "failed",
					"error":   reason,
				})
			}

			return marshalResult(map[string]any{
				"year":    args.Year,
				"quarter": args.Quarter,
				resultKey: analysis,
				"status":  "complete",
			})
		},
	}
}

// Tools returns all six tools in workflow order.
func (t *Toolset) Tools() []agents.Tool {
	return []agents.Tool{
		t.FindLatestQuarterTool(),
		t.ValidateDataTool(),
		t.FinancialMetricsTool(),
		t.CompetitivePositioningTool(),
		t.StrategicInitiativesTool(),
		t.RiskOutlookTool(),
	}
}

type yearQuarterArgs struct {
	Year    int `json:"year"`
	Quarter int `json:"quarter"`
}

func parseYearQuarter(arguments string) (yearQuarterArgs, error) {
	var args yearQuarterArgs
	if err := json.Unmarshal([]byte(arguments), &args); err != nil {
		return args, err
	}
	if args.Quarter < 1 || args.Quarter > 4 {
		return args, fmt.Errorf("quarter must be between 1 and 4, got: %d", args.Quarter)
	}
	if args.Year < earliestSupportedYear {
		return args, fmt.Errorf("year must be %d or later, got: %d", earliestSupportedYear, args.Year)
	}
	return args, nil
}

func yearQuarterSchema(title string) map[string]any {
	return map[string]any{
		"title":                title,
		"type":                 "object",
		"required":             []string{"year", "quarter"},
		"additionalProperties": false,
		"properties": map[string]any{
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
	}
}

func marshalResult(v any) (any, error) {
	out, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return string(out), nil
}
