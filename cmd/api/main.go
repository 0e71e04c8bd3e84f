// @title           Competitive Intelligence RAG API
// @version         1.0
// @description     Asynchronous ingestion, search and report generation over SEC filings and earnings call transcripts
// @termsOfService  http://swagger.io/terms/

// @contact.name    me lol
// @contact.url
// @contact.email

// @license.name    Apache 2.0
// @license.url     http://www.apache.org/licenses/LICENSE-2.0.html

// @host      localhost:3000
// @BasePath  /
// @schemes   http https
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"sync"
	"syscall"

	intelagents "github.com/akolanti/IntelAPI/internal/agents"
	"github.com/akolanti/IntelAPI/internal/config"
	"github.com/akolanti/IntelAPI/internal/data/store"
	jobmodel "github.com/akolanti/IntelAPI/internal/domain/jobModel"
	"github.com/akolanti/IntelAPI/internal/fetch"
	"github.com/akolanti/IntelAPI/internal/handlers"
	"github.com/akolanti/IntelAPI/internal/job"
	"github.com/akolanti/IntelAPI/internal/rag"
	"github.com/akolanti/IntelAPI/internal/rag/embedding/googleEmbedding"
	"github.com/akolanti/IntelAPI/internal/rag/ingest"
	"github.com/akolanti/IntelAPI/internal/rag/llm/gemini"
	"github.com/akolanti/IntelAPI/internal/rag/vectorDB/qdrantDB"
	"github.com/akolanti/IntelAPI/internal/report"
	"github.com/akolanti/IntelAPI/internal/server"
	"github.com/akolanti/IntelAPI/internal/worker"
	"github.com/akolanti/IntelAPI/pkg/logger_i"
)

var (
	listenAddr        string
	configPath        string
	requestCount      int64
	stopWorkerChannel chan bool
	workerWaitGroup   sync.WaitGroup
)

func main() {

	logger_i.Init()
	var logger = logger_i.NewLogger("main")

	//config
	flag.StringVar(&listenAddr, "listen-addr", config.ServerListenAddr, "server listen address")
	flag.StringVar(&configPath, "config", "intel.toml", "ingestion config file")
	flag.Parse()

	ingestionConfig, err := config.LoadIngestionConfig(configPath)
	if err != nil {
		logger.Error("Could not load ingestion config", "error", err)
		return
	}

	//init buffered job channel
	jobChannel := make(chan jobmodel.Job, config.BufferLimit)
	dispatcherChannel := make(chan bool, 1)
	stopWorkerChannel = make(chan bool, 1)

	serviceContext, closeExternalServices := context.WithCancel(context.Background())
	defer closeExternalServices()

	//init job service and job store
	serviceConfig := job.ServiceConfig{
		JobChannel:        jobChannel,
		RequestCount:      requestCount,
		DispatcherChannel: dispatcherChannel,
		JobStore:          store.GetRedisJobStore(serviceContext),
	}
	logger.Info("Starting job service")

	if serviceConfig.JobStore == nil {
		logger.Error("Redis store is offline")
		serviceConfig.JobStore = store.InitInMemoryJobStore()
	}
	service := job.InitJobService(serviceConfig)

	vectorDB := qdrantDB.GetQuadrantClient(serviceContext)
	embeddingService := googleEmbedding.GetGoogleEmbeddingClient(serviceContext, config.GoogleEmbeddingModel, config.GoogleAPIKey)
	llmProvider := gemini.GetGeminiClient(serviceContext, config.GeminiModelName, config.GoogleAPIKey)

	if vectorDB == nil || embeddingService == nil || llmProvider == nil {
		logger.Error("One or more external services failed to initialize. Shutting down.")
		logger.Debug("Available services : ", "VectorDB", vectorDB != nil, "EmbeddingService", embeddingService != nil, "LLMProvider", llmProvider != nil)
		return
	}

	//document sources and ingestion pipeline
	edgarClient := fetch.NewEDGARClient(ingestionConfig.Edgar)
	transcriptClient := fetch.NewTranscriptClient(ingestionConfig.Transcript)
	pipeline := ingest.NewPipeline(ingestionConfig, edgarClient, transcriptClient, embeddingService, vectorDB)

	//agent stack for report generation
	corpus := &intelagents.VectorCorpus{Embedder: embeddingService, DB: vectorDB}
	toolset := intelagents.NewToolset(ingestionConfig, corpus)
	orchestrator := intelagents.NewOrchestrator(toolset)
	reporter := report.NewWriter(orchestrator, ingestionConfig.ReportDir)

	ragService := rag.NewService(vectorDB, llmProvider, embeddingService, pipeline, reporter)

	handlers.InitJobHandler(service)

	//init worker pool
	worker.InitServices(service, ragService)
	worker.InitWorkerPool(stopWorkerChannel, &workerWaitGroup)

	//server handling
	gracefulShutdown := make(chan os.Signal, 1)
	signal.Notify(gracefulShutdown, syscall.SIGINT, syscall.SIGTERM)
	stopExecution := make(chan bool, 1)

	shutdownParams := server.ShutdownParams{
		GracefulShutdown: gracefulShutdown,
		StopExecution:    stopExecution,
		WorkerStop:       stopWorkerChannel,
		Group:            &workerWaitGroup,
		CloseServices:    closeExternalServices,
	}
	go server.ShutDownHandler(shutdownParams)
	go server.CreateServer(listenAddr)

	<-stopExecution
	logger.Info("Server stopped")
}
