package ingest

import (
	"context"
	"errors"
	"fmt"

	"github.com/akolanti/IntelAPI/internal/adapter/utils"
	"github.com/akolanti/IntelAPI/internal/chunker"
	"github.com/akolanti/IntelAPI/internal/config"
	"github.com/akolanti/IntelAPI/internal/domain/commonModels"
	"github.com/akolanti/IntelAPI/internal/rag/embedding"
	"github.com/akolanti/IntelAPI/internal/rag/vectorDB"
)

// PrepareChunks turns one document's text into tagged chunks. Filings are
// split at Item headings and transcripts at speaker turns before the
// overlapping windows are cut, so no chunk ever spans a structural boundary.
func PrepareChunks(doc commonModels.SourceDocument, text string, chunking config.ChunkingConfig) ([]commonModels.Chunk, error) {
	var units []commonModels.Unit
	size := chunking.FilingMaxChunk

	switch doc.Kind {
	case commonModels.EarningsCall:
		units = chunker.SplitSpeakers(text)
		size = chunking.TranscriptMaxChunk
	case commonModels.AnnualFiling, commonModels.QuarterlyFiling:
		units = chunker.SplitItems(chunker.StripHTML(text))
	default:
		return nil, fmt.Errorf("cannot chunk document kind %q", doc.Kind)
	}

	c, err := chunker.New(size, chunking.Overlap)
	if err != nil {
		return nil, err
	}

	// First pass cuts everything so each chunk can carry the document
	// total.
	type cut struct {
		label string
		text  string
	}
	var cuts []cut
	for _, unit := range units {
		pieces, err := c.Split(unit.Text)
		if err != nil {
			return nil, fmt.Errorf("splitting %s: %w", doc.Id, err)
		}
		for _, piece := range pieces {
			cuts = append(cuts, cut{label: unit.Label, text: piece})
		}
	}

	allChunks := make([]commonModels.Chunk, 0, len(cuts))
	for i, piece := range cuts {
		meta, err := chunker.Tag(doc, piece.label, i, len(cuts))
		if err != nil {
			return nil, err
		}
		allChunks = append(allChunks, commonModels.Chunk{
			Doc:        doc,
			ChunkId:    utils.GetNewUUID(),
			Content:    piece.text,
			Meta:       meta,
			ChunkIndex: i,
		})
	}

	return allChunks, nil
}

// BatchIngest embeds and uploads chunks in fixed-size batches. A batch the
// index rejects is checkpointed to disk before the error surfaces, so
// nothing embedded is lost.
func BatchIngest(ctx context.Context, chunks []commonModels.Chunk, batchSize int, db vectorDB.DataProcessor, embedder embedding.Embedder, checkpointDir string) error {
	if batchSize <= 0 {
		batchSize = 100
	}

	isHugeDataSet := false
	if len(chunks) > 1000000 { //we only want to do this if there is a huge document
		isHugeDataSet = true
		logger.Debug("Is a huge dataset")
	}

	for i := 0; i < len(chunks); i += batchSize {
		end := i + batchSize
		if end > len(chunks) {
			end = len(chunks)
		}

		currentBatch := chunks[i:end]

		//TODO:each batch can be its own go routine
		//but we will monitor the memory before introducing its own worker routine

		texts := make([]string, len(currentBatch))
		for j, c := range currentBatch {
			texts[j] = c.Content
		}

		logger.Debug("Starting embedding call", "current batch length ", len(currentBatch))
		vectors, err := embedder.BatchEmbedding(ctx, texts, isHugeDataSet)
		if err != nil {
			return fmt.Errorf("embedding batch failed: %w", err)
		}

		err = db.UpsertBatch(ctx, config.FilingsCollectionName, currentBatch, vectors)
		if err != nil {
			var rejected *vectorDB.RejectedBatchError
			if errors.As(err, &rejected) {
				if path, cpErr := WriteCheckpoint(checkpointDir, currentBatch, vectors); cpErr != nil {
					logger.Error("checkpoint write failed", "error", cpErr)
				} else {
					logger.Info("rejected batch checkpointed", "path", path, "chunks", len(rejected.ChunkIds))
				}
			}
			return fmt.Errorf("upserting to qdrant failed: %w", err)
		}
	}

	return nil
}
