package gemini

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/akolanti/IntelAPI/internal/config"
	"github.com/akolanti/IntelAPI/internal/rag/llm"
	"github.com/akolanti/IntelAPI/internal/rag/vectorDB"
	"github.com/akolanti/IntelAPI/pkg/logger_i"
	"google.golang.org/genai"
)

// Answers must stay grounded in the retrieved passages. Citation format
// matches what the report agent expects, e.g. [Source: TRV 10-K FY 2024].
const systemPrompt = `You are a competitive intelligence analyst for a commercial lines insurance carrier.
Answer the question using only the provided context passages from SEC filings and earnings call transcripts.
Every factual claim must carry the bracketed citation given with the passage it came from.
If the context does not contain the answer, say so instead of guessing.`

type llmClient struct {
	client    *genai.Client
	modelName string
}

var logger *logger_i.Logger
var geminiClient *llmClient
var once sync.Once

func GetGeminiClient(ctx context.Context, modelName string, apikey string) llm.Provider {
	once.Do(func() {
		logger = logger_i.NewLogger("llm_gemini")
		newGeminiClient(ctx, modelName, apikey)
	})

	if geminiClient == nil {
		return nil
	}
	return &llmClient{client: geminiClient.client, modelName: geminiClient.modelName}
}

func newGeminiClient(ctx context.Context, modelName string, apikey string) {

	c, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apikey})
	if err != nil {
		logger.Error("Error creating Gemini client:", "error", err)
	}
	if c != nil {
		geminiClient = &llmClient{client: c, modelName: modelName}
		logger.Debug("Gemini ", modelName, " client created")
		logger.Info("Gemini client created")
		go closeClient(ctx, geminiClient)
	}

}

func (c *llmClient) Generate(ctx context.Context, userQuery string, matches []vectorDB.SearchMatch) (string, error) {
	logger.With("traceId", ctx.Value("traceId"))
	systemInstruction := &genai.Content{
		Parts: []*genai.Part{
			{Text: systemPrompt},
		},
	}

	var contextLines []string
	for _, m := range matches {
		contextLines = append(contextLines, fmt.Sprintf("%s\n%s", m.Citation(), m.Content))
	}
	userPrompt := fmt.Sprintf("Context:\n%s\n\nUser Question: %s", strings.Join(contextLines, "\n\n"), userQuery)

	temperature := config.ModelTemperature
	contentConfig := &genai.GenerateContentConfig{
		SystemInstruction: systemInstruction,
		Temperature:       &temperature,
	}

	result, err := c.client.Models.GenerateContent(
		ctx,
		c.modelName,
		genai.Text(userPrompt),
		contentConfig,
	)
	if err != nil {
		logger.Error("Error generating answer", "error", err)
		return "", err
	}
	return result.Text(), nil
}

func closeClient(ctx context.Context, llm *llmClient) {
	<-ctx.Done()
	logger.Info("Closing Gemini client")
	llm.client = nil
	llm.modelName = ""
}
