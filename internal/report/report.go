package report

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	intelagents "github.com/akolanti/IntelAPI/internal/agents"
	"github.com/akolanti/IntelAPI/pkg/logger_i"
)

var logger = logger_i.NewLogger("Report")

const scopeNotice = "> Scope: this report covers the seven tracked public carriers only. Private and foreign competitors\n" +
	"such as Liberty Mutual, Zurich and Tokio Marine are out of scope because they file no SEC reports."

var titleQuarterRe = regexp.MustCompile(`Q([1-4])\s+(\d{4})`)

// Runner is the orchestrator surface the writer needs.
type Runner interface {
	GenerateReport(ctx context.Context, year, quarter int) (string, []string, error)
}

// compile-time check that the agent orchestrator satisfies Runner
var _ Runner = (*intelagents.Orchestrator)(nil)

// Writer runs the orchestrator for one quarter and persists the report
// under the configured report directory.
type Writer struct {
	orchestrator Runner
	reportDir    string
}

func NewWriter(orchestrator Runner, reportDir string) *Writer {
	return &Writer{orchestrator: orchestrator, reportDir: reportDir}
}

// Generate produces the report markdown, saves it as
// ci_report_QX_YYYY.md and returns the saved path, the markdown and the
// tool calls the run made.
func (w *Writer) Generate(ctx context.Context, year, quarter int) (string, string, []string, error) {
	report, toolCalls, err := w.orchestrator.GenerateReport(ctx, year, quarter)
	if err != nil {
		return "", "", nil, err
	}
	if !strings.Contains(report, "out of scope") {
		report = scopeNotice + "\n\n" + report
	}

	// A zero year means the agent picked the quarter itself, recover it
	// from the report title for the file name.
	if year == 0 {
		if m := titleQuarterRe.FindStringSubmatch(report); m != nil {
			quarter, _ = strconv.Atoi(m[1])
			year, _ = strconv.Atoi(m[2])
		}
	}

	if err := os.MkdirAll(w.reportDir, 0o755); err != nil {
		return "", report, toolCalls, fmt.Errorf("creating report dir: %w", err)
	}
	path := filepath.Join(w.reportDir, fmt.Sprintf("ci_report_Q%d_%d.md", quarter, year))
	if err := os.WriteFile(path, []byte(report), 0o644); err != nil {
		return "", report, toolCalls, fmt.Errorf("writing report: %w", err)
	}

	logger.Info("report saved", "path", path, "toolCalls", len(toolCalls))
	return path, report, toolCalls, nil
}
