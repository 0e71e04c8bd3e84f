package ingest

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/akolanti/IntelAPI/internal/domain/commonModels"
)

// Checkpoint files hold embedded chunks the index rejected, one JSON record
// per chunk, so a later run can replay them without re-embedding.
type checkpointRecord struct {
	Id         string                 `json:"id"`
	StructData commonModels.ChunkMeta `json:"struct_data"`
	Content    checkpointContent      `json:"content"`
	Embedding  []float32              `json:"embedding,omitempty"`
}

type checkpointContent struct {
	MimeType string `json:"mime_type"`
	RawBytes []byte `json:"raw_bytes"`
}

// WriteCheckpoint saves a batch as chunks_TIMESTAMP.json and returns the
// path.
func WriteCheckpoint(dir string, chunks []commonModels.Chunk, vectors [][]float32) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating checkpoint dir: %w", err)
	}

	records := make([]checkpointRecord, len(chunks))
	for i, chunk := range chunks {
		rec := checkpointRecord{
			Id:         chunk.ChunkId,
			StructData: chunk.Meta,
			Content: checkpointContent{
				MimeType: "text/plain",
				RawBytes: []byte(chunk.Content),
			},
		}
		if i < len(vectors) {
			rec.Embedding = vectors[i]
		}
		records[i] = rec
	}

	path := filepath.Join(dir, fmt.Sprintf("chunks_%s.json", time.Now().Format("20060102_150405")))
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encoding checkpoint: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("writing checkpoint %s: %w", path, err)
	}
	return path, nil
}

// LoadCheckpoint reads a checkpoint back into chunks and their embeddings.
// Chunk content round-trips byte for byte.
func LoadCheckpoint(path string) ([]commonModels.Chunk, [][]float32, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("reading checkpoint %s: %w", path, err)
	}

	var records []checkpointRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, nil, fmt.Errorf("decoding checkpoint %s: %w", path, err)
	}

	chunks := make([]commonModels.Chunk, len(records))
	vectors := make([][]float32, len(records))
	for i, rec := range records {
		chunks[i] = commonModels.Chunk{
			ChunkId:    rec.Id,
			Content:    string(rec.Content.RawBytes),
			Meta:       rec.StructData,
			ChunkIndex: rec.StructData.ChunkIndex,
			Doc: commonModels.SourceDocument{
				Ticker:     rec.StructData.Ticker,
				SourceFile: rec.StructData.SourceFile,
			},
		}
		vectors[i] = rec.Embedding
	}
	return chunks, vectors, nil
}
