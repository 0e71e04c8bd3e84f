package qdrantDB

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"sync"

	"github.com/akolanti/IntelAPI/internal/config"
	"github.com/akolanti/IntelAPI/internal/domain/commonModels"
	"github.com/akolanti/IntelAPI/internal/rag/vectorDB"
	"github.com/akolanti/IntelAPI/pkg/logger_i"
	"github.com/qdrant/go-client/qdrant"
)

var logger *logger_i.Logger
var quadrantInstance *qdrant.Client
var once sync.Once
var dimension = uint64(config.EmbeddingOutputDimensionality)
var collectionName = config.FilingsCollectionName

type ClientHolder struct {
	QObj *qdrant.Client
}

func GetQuadrantClient(ctx context.Context) *ClientHolder {

	once.Do(func() {
		logger = logger_i.NewLogger("Qdrant")
		res := newClient()
		if res != nil {
			quadrantInstance = res
			initCacheCollection(ctx, quadrantInstance)
			go closeQdrant(ctx, quadrantInstance)
		}
	})

	if quadrantInstance == nil {
		return nil
	}
	return &ClientHolder{
		QObj: quadrantInstance,
	}
}

func newClient() *qdrant.Client {

	host := os.Getenv("QDRANT_HOST")
	port, er := strconv.Atoi(os.Getenv("QDRANT_PORT"))

	if host == "" || er != nil {
		host = config.QdrantHost
		port = config.QdrantGrpcPort
	}

	client, err := qdrant.NewClient(&qdrant.Config{
		Host:     host,
		Port:     port,
		UseTLS:   config.QdrantUseTLS,
		PoolSize: uint(config.QdrantPoolSize),
	})
	if err != nil {
		logger.Error("could not instantiate: ", "error:", err)
	}

	err = createCollection(context.Background(), client, config.FilingsCollectionName)
	if err != nil {
		logger.Error("could not create collection: ", "collectionName", config.FilingsCollectionName, "error:", err)
		return nil
	}

	return client
}

func closeQdrant(ctx context.Context, qi *qdrant.Client) {
	<-ctx.Done()
	logger.Info("Shutting down Qdrant")
	err := qi.Close()
	if err != nil {
		logger.Error("could not close Qdrant: ", "error:", err)
	}
	logger.Info("Closed Qdrant")
}

// buildFilter translates the domain filter into qdrant match conditions.
func buildFilter(filter vectorDB.SearchFilter) *qdrant.Filter {
	var must []*qdrant.Condition
	if filter.Ticker != "" {
		must = append(must, qdrant.NewMatch("ticker", filter.Ticker))
	}
	if filter.Year != 0 {
		must = append(must, qdrant.NewMatchInt("year", int64(filter.Year)))
	}
	if filter.Quarter != "" {
		must = append(must, qdrant.NewMatch("quarter", filter.Quarter))
	}
	if filter.DocumentType != "" {
		must = append(must, qdrant.NewMatch("document_type", filter.DocumentType))
	}
	if len(must) == 0 {
		return nil
	}
	return &qdrant.Filter{Must: must}
}

func (db *ClientHolder) Search(ctx context.Context, vectorFloat []float32, filter vectorDB.SearchFilter, limit uint64) ([]vectorDB.SearchMatch, error) {
	loggr := logger.With("traceId", ctx.Value(config.TRACE_ID_KEY))

	if limit == 0 {
		limit = 3
	}
	result, err := db.QObj.Query(ctx, &qdrant.QueryPoints{
		CollectionName: collectionName,
		Query:          qdrant.NewQuery(vectorFloat...),
		Filter:         buildFilter(filter),
		Limit:          qdrant.PtrOf(limit),
		WithPayload:    qdrant.NewWithPayload(true),
	})

	if err != nil {
		loggr.Error("Error querying Qdrant: ", "error:", err)
		return nil, err
	}

	var matches []vectorDB.SearchMatch
	for _, hit := range result {
		// Check if the keys exist to avoid nil pointer panics
		matches = append(matches, vectorDB.SearchMatch{
			Content:      hit.Payload["content"].GetStringValue(),
			Score:        hit.Score,
			Ticker:       hit.Payload["ticker"].GetStringValue(),
			FormType:     hit.Payload["form_type"].GetStringValue(),
			Year:         hit.Payload["year"].GetIntegerValue(),
			Quarter:      hit.Payload["quarter"].GetStringValue(),
			Section:      hit.Payload["section"].GetStringValue(),
			Speaker:      hit.Payload["speaker"].GetStringValue(),
			SourceFile:   hit.Payload["source_file"].GetStringValue(),
			DocumentType: hit.Payload["document_type"].GetStringValue(),
			URL:          hit.Payload["url"].GetStringValue(),
		})
	}

	loggr.Debug("Found matches", "count", len(matches))
	return matches, nil
}

// Count reports how many chunks match the filter, which is how data
// availability checks decide whether a period is covered.
func (db *ClientHolder) Count(ctx context.Context, filter vectorDB.SearchFilter) (uint64, error) {
	loggr := logger.With("traceId", ctx.Value(config.TRACE_ID_KEY))

	count, err := db.QObj.Count(ctx, &qdrant.CountPoints{
		CollectionName: collectionName,
		Filter:         buildFilter(filter),
		Exact:          qdrant.PtrOf(true),
	})
	if err != nil {
		loggr.Error("Error counting points: ", "error:", err)
		return 0, err
	}
	return count, nil
}

func (db *ClientHolder) CreateCollection(ctx context.Context, collectionName string) error {
	return createCollection(ctx, db.QObj, collectionName)
}

func (db *ClientHolder) UpsertBatch(ctx context.Context, collectionName string, chunks []commonModels.Chunk, vectors [][]float32) error {
	if len(chunks) != len(vectors) {
		return fmt.Errorf("mismatch: got %d chunks but %d vectors", len(chunks), len(vectors))
	}

	qdrantPoints := make([]*qdrant.PointStruct, len(chunks))
	chunkIds := make([]string, len(chunks))

	for i, chunk := range chunks {
		chunkIds[i] = chunk.ChunkId
		qdrantPoints[i] = &qdrant.PointStruct{
			// Converts my UUID string to Qdrant's ID format
			Id: qdrant.NewID(chunk.ChunkId),

			// Converts []float32 to Qdrant's Vector format
			Vectors: qdrant.NewVectors(vectors[i]...),

			Payload: qdrant.NewValueMap(map[string]any{
				"content":       chunk.Content,
				"chunk_id":      chunk.ChunkId,
				"source_doc_id": chunk.Doc.Id,
				"title":         chunk.Meta.Title,
				"description":   chunk.Meta.Summary,
				"source_file":   chunk.Meta.SourceFile,
				"ticker":        chunk.Meta.Ticker,
				"form_type":     chunk.Meta.FormType,
				"filing_date":   chunk.Meta.FilingDate,
				"year":          chunk.Meta.Year,
				"quarter":       chunk.Meta.Quarter,
				"document_type": chunk.Meta.DocumentType,
				"industry":      chunk.Meta.Industry,
				"section":       chunk.Meta.Section,
				"speaker":       chunk.Meta.Speaker,
				"chunk_index":   chunk.Meta.ChunkIndex,
				"total_chunks":  chunk.Meta.TotalChunks,
				"url":           chunk.Meta.URL,
				"ingested_at":   chunk.Doc.FetchedAt.Unix(),
			}),
		}
	}

	_, err := db.QObj.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: collectionName,
		Points:         qdrantPoints,
		Wait:           qdrant.PtrOf(true),
	})

	if err != nil {
		return &vectorDB.RejectedBatchError{ChunkIds: chunkIds, Err: err}
	}

	return nil

}

func createCollection(ctx context.Context, client *qdrant.Client, collectionName string) error {
	if collectionName == "" {
		return errors.New("empty collection name")
	}

	exists, err := client.CollectionExists(ctx, collectionName)
	if err != nil {
		return err
	}
	if exists {

		return nil
	}

	err = client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: collectionName,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     dimension, //TODO:this shouldnt be hardcoded
			Distance: qdrant.Distance_Cosine,
		}),
	})
	return err
}
