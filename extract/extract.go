// Package extract turns annotated questionnaire text into structured
// questions using a language model as the sole extraction engine. The regex
// scan from the chunker package is used for chunk sizing only; it never
// feeds hints into the prompt.
package extract

import (
	"context"
	"log/slog"
	"sync"

	"github.com/hazyhaar/surveypipe/chunker"
	"github.com/hazyhaar/surveypipe/survey"
)

// maxWorkers bounds parallel model calls.
const maxWorkers = 4

// ProgressFunc receives pipeline progress events. Events:
// "regex_done", "rechunk", "chunk_start", "chunk_done", "merge_done".
// Calls may come from worker goroutines; implementations must be safe for
// concurrent use.
type ProgressFunc func(event string, data map[string]any)

// Extractor runs the extraction pipeline over pre-chunked text.
type Extractor struct {
	client   Completer
	logger   *slog.Logger
	progress ProgressFunc
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithLogger sets the extractor's logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Extractor) { e.logger = l }
}

// WithProgress registers a progress callback.
func WithProgress(fn ProgressFunc) Option {
	return func(e *Extractor) { e.progress = fn }
}

// New creates an Extractor around a completion client.
func New(client Completer, opts ...Option) *Extractor {
	e := &Extractor{client: client, logger: slog.Default()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Extractor) notify(event string, data map[string]any) {
	if e.progress != nil {
		e.progress(event, data)
	}
}

// Extract runs the full pipeline on annotated-text chunks:
//
//  1. regex scan per chunk for question density
//  2. adaptive rechunk when a chunk's density exceeds the model's output
//     ceiling, cutting at question boundaries
//  3. parallel model extraction, at most maxWorkers in flight
//  4. merge and dedup across chunks
//
// A failed chunk contributes zero questions rather than failing the whole
// document; the error is logged and surfaced through chunk_done events.
func (e *Extractor) Extract(ctx context.Context, chunks []string) ([]survey.Question, error) {
	if len(chunks) == 0 {
		return nil, nil
	}

	hints := make([][]chunker.Hint, len(chunks))
	totalHints := 0
	for i, chunk := range chunks {
		hints[i] = chunker.ScanQuestions(chunk)
		totalHints += len(hints[i])
	}
	e.notify("regex_done", map[string]any{
		"total_hints": totalHints,
		"chunk_count": len(chunks),
	})

	maxPerChunk := chunker.MaxQuestionsForModel(e.client.Model())
	maxDensity := 0
	for _, h := range hints {
		if len(h) > maxDensity {
			maxDensity = len(h)
		}
	}
	if maxDensity > maxPerChunk {
		e.logger.Info("rechunking for model output ceiling",
			"max_density", maxDensity, "ceiling", maxPerChunk, "model", e.client.Model())
		original := len(chunks)
		chunks, hints = chunker.Rechunk(chunks, hints, maxPerChunk)
		e.notify("rechunk", map[string]any{
			"original_chunks": original,
			"new_chunks":      len(chunks),
		})
	}

	total := len(chunks)
	for i := range chunks {
		e.notify("chunk_start", map[string]any{
			"chunk_index":  i,
			"total_chunks": total,
			"regex_hints":  len(hints[i]),
		})
	}

	results := make([][]survey.Question, total)
	var wg sync.WaitGroup
	sem := make(chan struct{}, maxWorkers)
	for i := range chunks {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			questions := e.extractChunk(ctx, chunks[idx], idx, total, len(hints[idx]))
			results[idx] = questions
			e.notify("chunk_done", map[string]any{
				"chunk_index":         idx,
				"total_chunks":        total,
				"questions_extracted": len(questions),
			})
		}(i)
	}
	wg.Wait()

	merged := MergeChunkResults(results)
	e.notify("merge_done", map[string]any{"total_questions": len(merged)})
	e.logger.Info("extraction complete", "questions", len(merged), "chunks", total)

	return merged, ctx.Err()
}

// extractChunk calls the model for one chunk and validates its response.
// Any failure yields an empty result for this chunk.
func (e *Extractor) extractChunk(ctx context.Context, chunk string, idx, total, hintCount int) []survey.Question {
	content, finishReason, err := e.client.Complete(ctx, systemPrompt, buildPrompt(chunk, idx, total))
	if err != nil {
		e.logger.Error("model call failed", "chunk", idx, "error", err)
		return nil
	}
	if finishReason == "length" {
		e.logger.Warn("response truncated", "chunk", idx)
	}

	questions, ok := parseResponse(content)
	if !ok {
		e.logger.Error("unparseable model response",
			"chunk", idx, "response_length", len(content), "finish_reason", finishReason)
		return nil
	}

	e.logger.Info("chunk extracted",
		"chunk", idx, "questions", len(questions), "regex_density", hintCount)
	return questions
}
