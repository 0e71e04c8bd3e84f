package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	intelagents "github.com/akolanti/IntelAPI/internal/agents"
	"github.com/akolanti/IntelAPI/internal/config"
	"github.com/akolanti/IntelAPI/internal/domain/commonModels"
	"github.com/akolanti/IntelAPI/internal/fetch"
	"github.com/akolanti/IntelAPI/internal/rag/embedding"
	"github.com/akolanti/IntelAPI/internal/rag/embedding/googleEmbedding"
	"github.com/akolanti/IntelAPI/internal/rag/ingest"
	"github.com/akolanti/IntelAPI/internal/rag/llm/gemini"
	"github.com/akolanti/IntelAPI/internal/rag/vectorDB"
	"github.com/akolanti/IntelAPI/internal/rag/vectorDB/qdrantDB"
	"github.com/akolanti/IntelAPI/internal/report"
	"github.com/akolanti/IntelAPI/pkg/logger_i"
)

var configPath string

func main() {
	logger_i.Init()

	root := &cobra.Command{
		Use:           "ingestctl",
		Short:         "Run ingestion, search and report generation without the API server",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "intel.toml", "ingestion config file")

	root.AddCommand(filingsCmd(), transcriptsCmd(), reportCmd(), searchCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

type clients struct {
	cfg      config.IngestionConfig
	db       vectorDB.DataProcessor
	embedder embedding.Embedder
}

func connect(ctx context.Context) (clients, error) {
	cfg, err := config.LoadIngestionConfig(configPath)
	if err != nil {
		return clients{}, err
	}

	db := qdrantDB.GetQuadrantClient(ctx)
	if db == nil {
		return clients{}, errors.New("could not connect to the vector index")
	}
	embedder := googleEmbedding.GetGoogleEmbeddingClient(ctx, config.GoogleEmbeddingModel, config.GoogleAPIKey)
	if embedder == nil {
		return clients{}, errors.New("could not initialize the embedding client")
	}

	return clients{cfg: cfg, db: db, embedder: embedder}, nil
}

func newPipeline(c clients) *ingest.Pipeline {
	return ingest.NewPipeline(
		c.cfg,
		fetch.NewEDGARClient(c.cfg.Edgar),
		fetch.NewTranscriptClient(c.cfg.Transcript),
		c.embedder,
		c.db,
	)
}

func printSummary(summary commonModels.RunSummary) {
	fmt.Printf("Succeeded: %v\n", summary.Succeeded)
	for _, f := range summary.Failed {
		fmt.Printf("Failed:    %s: %s\n", f.Ticker, f.Reason)
	}
	fmt.Printf("Chunks uploaded: %d\n", summary.Chunks)
}

func filingsCmd() *cobra.Command {
	var startYear int
	cmd := &cobra.Command{
		Use:   "filings [ticker...]",
		Short: "Download, chunk and upload recent 10-K and 10-Q filings",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := connect(cmd.Context())
			if err != nil {
				return err
			}
			summary := newPipeline(c).IngestFilings(cmd.Context(), args, startYear)
			printSummary(summary)
			if len(summary.Succeeded) == 0 && len(summary.Failed) > 0 {
				return errors.New("every company failed")
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&startYear, "start-year", 0, "earliest filing year to ingest (default: configured lookback)")
	return cmd
}

func transcriptsCmd() *cobra.Command {
	var startYear int
	cmd := &cobra.Command{
		Use:   "transcripts [ticker...]",
		Short: "Fetch, chunk and upload earnings call transcripts",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := connect(cmd.Context())
			if err != nil {
				return err
			}
			summary := newPipeline(c).IngestTranscripts(cmd.Context(), args, startYear)
			printSummary(summary)
			if len(summary.Succeeded) == 0 && len(summary.Failed) > 0 {
				return errors.New("every company failed")
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&startYear, "start-year", 0, "earliest transcript year to ingest (default: configured lookback)")
	return cmd
}

func reportCmd() *cobra.Command {
	var year, quarter int

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Generate the quarterly competitive intelligence report",
		RunE: func(cmd *cobra.Command, args []string) error {
			if year != 0 && (quarter < 1 || quarter > 4) {
				return errors.New("quarter must be between 1 and 4 when year is set")
			}

			c, err := connect(cmd.Context())
			if err != nil {
				return err
			}

			corpus := &intelagents.VectorCorpus{Embedder: c.embedder, DB: c.db}
			orchestrator := intelagents.NewOrchestrator(intelagents.NewToolset(c.cfg, corpus))
			writer := report.NewWriter(orchestrator, c.cfg.ReportDir)

			path, _, toolCalls, err := writer.Generate(cmd.Context(), year, quarter)
			if err != nil {
				return err
			}
			fmt.Printf("Report saved to %s\n", path)
			fmt.Printf("Tool calls: %v\n", toolCalls)
			return nil
		},
	}
	cmd.Flags().IntVar(&year, "year", 0, "target year, omit for the most recent complete quarter")
	cmd.Flags().IntVar(&quarter, "quarter", 0, "target quarter 1-4")
	return cmd
}

func searchCmd() *cobra.Command {
	var ticker string
	var year, quarter int

	cmd := &cobra.Command{
		Use:   "search <question>",
		Short: "Ask a question against the ingested corpus",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := connect(cmd.Context())
			if err != nil {
				return err
			}
			llmProvider := gemini.GetGeminiClient(cmd.Context(), config.GeminiModelName, config.GoogleAPIKey)
			if llmProvider == nil {
				return errors.New("could not initialize the llm client")
			}

			vector, err := c.embedder.GetEmbedding(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			filter := vectorDB.SearchFilter{Ticker: ticker, Year: year}
			if quarter >= 1 && quarter <= 4 {
				filter.Quarter = fmt.Sprintf("Q%d", quarter)
			}
			matches, err := c.db.Search(cmd.Context(), vector, filter, 5)
			if err != nil {
				return err
			}
			if len(matches) == 0 {
				fmt.Println("No matching passages found.")
				return nil
			}

			answer, err := llmProvider.Generate(cmd.Context(), args[0], matches)
			if err != nil {
				return err
			}
			fmt.Println(answer)
			fmt.Println()
			for _, m := range matches {
				fmt.Println(m.Citation())
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&ticker, "ticker", "", "restrict to one company ticker")
	cmd.Flags().IntVar(&year, "year", 0, "restrict to one year")
	cmd.Flags().IntVar(&quarter, "quarter", 0, "restrict to one calendar quarter")
	return cmd
}
