package server

import (
	"context"
	"time"

	"qa/chunker"
	"qa/knowledge"
	"qa/model"
	"qa/parser"

	"github.com/google/uuid"
)

// indexer is the single consumer of the ingestion queue: parse, embed,
// publish, one document at a time. A failure abandons the current file with
// a log entry and moves on; the file stays on disk for the startup
// re-index pass.
func (s *Server) indexer(ctx context.Context, queue <-chan parser.File, chk *chunker.Chunker, embedder model.EmbedderInterface, brain *knowledge.Brain) {
	s.logger.Info("indexer start")
	for file := range queue {
		jobID := uuid.New().String()
		s.logger.Info("indexer receive file", "job_id", jobID, "file", file.String())

		unlearned, err := file.Parse(chk)
		if err != nil {
			s.logger.Warn("indexer parse failed", "job_id", jobID, "file", file.FileName, "error", err)
			continue
		}

		var vectors [][]float32
		if len(unlearned.Chunks) > 0 {
			texts := make([]string, len(unlearned.Chunks))
			for i, chunk := range unlearned.Chunks {
				texts[i] = chunk.Content
			}
			start := time.Now()
			vectors, err = embedder.EmbedBatch(ctx, texts)
			if err != nil {
				s.logger.Warn("indexer embedding failed", "job_id", jobID, "file", file.FileName, "error", err)
				continue
			}
			s.logger.Info("embedding done", "job_id", jobID, "file", file.FileName, "spends", time.Since(start).Seconds())
		}

		start := time.Now()
		id, err := brain.Index(ctx, unlearned, vectors)
		if err != nil {
			s.logger.Warn("indexer persist failed", "job_id", jobID, "file", file.FileName, "error", err)
			continue
		}
		s.logger.Info("indexer index succeed",
			"job_id", jobID,
			"file", file.FileName,
			"id", id,
			"chunks", len(unlearned.Chunks),
			"spends", time.Since(start).Seconds(),
		)
	}
}
