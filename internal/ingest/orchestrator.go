// Package ingest drives a document through extraction, staging,
// chunking, embedding and upsert into the vector index.
package ingest

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"docubot/internal/chunker"
	"docubot/internal/models"
)

// Extractor converts raw file bytes into ordered text segments.
type Extractor interface {
	Extract(ctx context.Context, data []byte, filename string, format models.Format) (models.ExtractedText, error)
}

// Embedder embeds the chunks of one document.
type Embedder interface {
	EmbedChunks(ctx context.Context, chunks []string) ([][]float32, error)
}

// Index receives the embedded records.
type Index interface {
	Upsert(ctx context.Context, records []models.VectorRecord) error
}

// Orchestrator wires the pipeline. Checkpoint may be nil, in which
// case the pipeline runs entirely in memory.
type Orchestrator struct {
	extractor  Extractor
	embedder   Embedder
	index      Index
	checkpoint Checkpoint

	chunkSize    int
	chunkOverlap int
}

func NewOrchestrator(extractor Extractor, embedder Embedder, index Index, checkpoint Checkpoint, chunkSize, chunkOverlap int) *Orchestrator {
	if chunkSize <= 0 {
		chunkSize = chunker.DefaultChunkSize
	}
	if chunkOverlap < 0 {
		chunkOverlap = chunker.DefaultChunkOverlap
	}
	return &Orchestrator{
		extractor:    extractor,
		embedder:     embedder,
		index:        index,
		checkpoint:   checkpoint,
		chunkSize:    chunkSize,
		chunkOverlap: chunkOverlap,
	}
}

// Ingest processes one document start to finish and returns the
// extracted text for caller feedback. Each step depends on the
// previous one succeeding; a failure after staging deliberately
// leaves the staging artifact in place.
func (o *Orchestrator) Ingest(ctx context.Context, data []byte, filename string, format models.Format) (string, error) {
	doc, err := o.extractor.Extract(ctx, data, filename, format)
	if err != nil {
		return "", fmt.Errorf("extracting %s: %w", filename, err)
	}
	text := doc.Render()

	staged := false
	if o.checkpoint != nil {
		if err := o.checkpoint.Stage(filename, text); err != nil {
			return "", err
		}
		staged = true
	}

	chunks, err := chunker.Split(text, o.chunkSize, o.chunkOverlap)
	if err != nil {
		return "", fmt.Errorf("chunking %s: %w", filename, err)
	}
	log.Debug().Str("file", filename).Int("chunks", len(chunks)).Msg("Split document")

	vectors, err := o.embedder.EmbedChunks(ctx, chunks)
	if err != nil {
		return "", fmt.Errorf("embedding %s: %w", filename, err)
	}

	records := make([]models.VectorRecord, len(chunks))
	for i := range chunks {
		records[i] = models.VectorRecord{
			ID:     fmt.Sprintf("doc_%d", i),
			Values: vectors[i],
			Metadata: models.Metadata{
				Source: filename,
				Text:   chunks[i],
			},
		}
	}

	if err := o.index.Upsert(ctx, records); err != nil {
		if staged {
			log.Warn().Str("file", filename).Msg("Upsert failed, staging artifact retained for retry")
		}
		return "", fmt.Errorf("upserting %s: %w", filename, err)
	}

	if staged {
		if err := o.checkpoint.Discard(filename); err != nil {
			log.Warn().Err(err).Str("file", filename).Msg("Could not remove staging artifact")
		}
	}

	log.Info().Str("file", filename).Int("vectors", len(records)).Msg("Document ingested")
	return text, nil
}

// FileInput is one uploaded file of a batch.
type FileInput struct {
	Filename string
	Data     []byte
}

// FileResult reports the outcome for one file.
type FileResult struct {
	Filename string
	Text     string
	Err      error
}

// IngestBatch processes every file independently: a failure is
// reported for that file only and never aborts the rest. The boolean
// is true only when every file succeeded.
func (o *Orchestrator) IngestBatch(ctx context.Context, files []FileInput) ([]FileResult, bool) {
	results := make([]FileResult, 0, len(files))
	allOK := true
	for _, f := range files {
		res := FileResult{Filename: f.Filename}
		format, err := models.ParseFormat(f.Filename)
		if err != nil {
			res.Err = err
		} else {
			res.Text, res.Err = o.Ingest(ctx, f.Data, f.Filename, format)
		}
		if res.Err != nil {
			allOK = false
			log.Error().Err(res.Err).Str("file", f.Filename).Msg("Ingestion failed")
		}
		results = append(results, res)
	}
	return results, allOK
}
