// Package index builds corpus search indexes: it resolves flat records
// into a documentation tree, chunks each root subtree, embeds changed
// chunks, and upserts the vectors into the corpus collection.
package index

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/refdex"
	"golang.org/x/sync/errgroup"
)

// Defaults.
const (
	DefaultConcurrency       = 10
	DefaultBatchSize         = 32
	DefaultQuestionsPerChunk = 3
)

// languageConfidence is the minimum detection confidence before an
// element's language is recorded.
const languageConfidence = 0.5

// DefaultRetryDelays returns the backoff delays for unavailable external
// services during indexing: 1s, 2s, 4s.
func DefaultRetryDelays() []time.Duration {
	return []time.Duration{1 * time.Second, 2 * time.Second, 4 * time.Second}
}

// QuestionGenerator produces hypothetical questions a chunk answers, used
// to build the question-vector side of the index.
type QuestionGenerator interface {
	Questions(ctx context.Context, chunk *refdex.Chunk, n int) ([]string, error)
}

// QuestionDeduper drops repeated question texts across an indexing run.
// Satisfied by bloom.Filter.
type QuestionDeduper interface {
	Seen(text string) bool
}

// Indexer orchestrates corpus indexing.
type Indexer struct {
	Corpora  refdex.CorpusService
	Elements refdex.ElementService
	Chunks   refdex.ChunkService
	Embedder refdex.Embedder
	Index    refdex.VectorIndex
	Chunker  *refdex.Chunker
	Detector refdex.LanguageDetector

	// Questions enables the question index when set.
	Questions         QuestionGenerator
	QuestionsPerChunk int

	// Deduper drops repeated generated questions across the run.
	Deduper QuestionDeduper

	// Concurrency bounds parallel subtree chunking, default
	// DefaultConcurrency.
	Concurrency int

	// BatchSize bounds how many texts go into one embedding call.
	BatchSize int

	// Limiter, when set, paces embedding and generation calls.
	Limiter *CallLimiter

	// RetryDelays are the backoff delays for unavailable-service retries.
	RetryDelays []time.Duration

	Logger *slog.Logger
}

// Stats summarizes one indexing run.
type Stats struct {
	Elements  int // resolved elements persisted
	Chunks    int // chunks persisted
	Embedded  int // chunks embedded this run
	Reused    int // chunks skipped as unchanged
	Questions int // question vectors upserted
	Skipped   int // records excluded by validation or structure
	Failed    int // per-element chunking failures
	Tokens    int // token total of embedded chunks
}

// ProgressEvent reports progress during an indexing run.
type ProgressEvent struct {
	Type      ProgressType
	Completed int
	Total     int
	RootID    string
	Error     error
}

// ProgressType indicates the type of progress event.
type ProgressType int

const (
	ProgressStarted ProgressType = iota
	ProgressCompleted
	ProgressFailed
	ProgressFinished
)

// ProgressFunc is a callback for reporting indexing progress.
type ProgressFunc func(event ProgressEvent)

// rootResult holds the chunking outcome for a single root subtree.
type rootResult struct {
	position int
	rootID   string
	chunks   []*refdex.Chunk
	errs     []error
}

// IndexCorpus replaces the corpus's elements, chunks, and vectors with the
// index built from records. Invalid records and structural violations are
// skipped and counted, never fatal; an unreachable store or embedding
// provider fails the run.
func (ix *Indexer) IndexCorpus(ctx context.Context, corpus *refdex.Corpus, records []*refdex.Record, progress ProgressFunc) (*Stats, error) {
	if err := corpus.Validate(); err != nil {
		return nil, err
	}
	if corpus.Model != ix.Embedder.Model() {
		return nil, refdex.Errorf(refdex.EINVALID,
			"corpus %q pins model %q, embedder provides %q",
			corpus.Name, corpus.Model, ix.Embedder.Model())
	}

	logger := ix.Logger
	if logger == nil {
		logger = slog.Default()
	}

	stats := &Stats{}

	tree := refdex.NewTree(corpus.ID)
	for _, rec := range records {
		if err := tree.Insert(rec); err != nil {
			logger.Warn("skipping record", "id", rec.ID, "err", err)
			stats.Skipped++
		}
	}
	for _, err := range tree.Resolve() {
		logger.Warn("structural error", "corpus", corpus.Name, "err", err)
		stats.Skipped++
	}

	elements := ix.detectLanguages(tree)
	stats.Elements = len(elements)

	if err := ix.Elements.DeleteElementsByCorpus(ctx, corpus.ID); err != nil {
		return nil, err
	}
	if err := ix.Elements.CreateElements(ctx, elements); err != nil {
		return nil, err
	}

	chunks := ix.chunkRoots(ctx, tree, stats, progress, logger)
	stats.Chunks = len(chunks)

	if err := ix.Chunks.DeleteChunksByCorpus(ctx, corpus.ID); err != nil {
		return nil, err
	}
	if err := ix.Chunks.CreateChunks(ctx, chunks); err != nil {
		return nil, err
	}

	if err := ix.embedChunks(ctx, corpus, chunks, stats, logger); err != nil {
		return nil, err
	}

	if _, err := ix.Corpora.UpdateCorpus(ctx, corpus.ID, refdex.CorpusUpdate{Model: &corpus.Model}); err != nil {
		return nil, err
	}

	if progress != nil {
		progress(ProgressEvent{Type: ProgressFinished, Completed: len(tree.Roots()), Total: len(tree.Roots())})
	}

	return stats, nil
}

// detectLanguages collects all resolved elements in tree order, tagging
// each with its detected natural language.
func (ix *Indexer) detectLanguages(tree *refdex.Tree) []*refdex.Element {
	elements := make([]*refdex.Element, 0, tree.Len())
	for _, root := range tree.Roots() {
		subtree, err := tree.Subtree(root.ID)
		if err != nil {
			continue
		}
		elements = append(elements, subtree...)
	}

	if ix.Detector == nil {
		return elements
	}
	for _, el := range elements {
		if tag, confidence := ix.Detector.Detect(el.Text); tag != "" && confidence >= languageConfidence {
			el.Language = tag
		}
	}
	return elements
}

// chunkRoots chunks every root subtree concurrently and returns the chunks
// in root order. Per-element failures are logged and counted; a root whose
// subtree produced nothing but errors reports a failed event.
func (ix *Indexer) chunkRoots(ctx context.Context, tree *refdex.Tree, stats *Stats, progress ProgressFunc, logger *slog.Logger) []*refdex.Chunk {
	roots := tree.Roots()
	if len(roots) == 0 {
		return nil
	}

	concurrency := ix.Concurrency
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}

	if progress != nil {
		progress(ProgressEvent{Type: ProgressStarted, Total: len(roots)})
	}

	resultCh := make(chan rootResult, len(roots))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	go func() {
		for i, root := range roots {
			g.Go(func() error {
				chunks, errs := ix.Chunker.Chunk(gctx, tree, root.ID)
				resultCh <- rootResult{position: i, rootID: root.ID, chunks: chunks, errs: errs}
				return nil
			})
		}
		_ = g.Wait()
		close(resultCh)
	}()

	results := make([]rootResult, len(roots))
	completed := 0
	for result := range resultCh {
		completed++
		results[result.position] = result

		for _, err := range result.errs {
			logger.Warn("chunking error", "root", result.rootID, "err", err)
		}
		stats.Failed += len(result.errs)

		if progress != nil {
			event := ProgressEvent{
				Type:      ProgressCompleted,
				Completed: completed,
				Total:     len(roots),
				RootID:    result.rootID,
			}
			if len(result.chunks) == 0 && len(result.errs) > 0 {
				event.Type = ProgressFailed
				event.Error = result.errs[0]
			}
			progress(event)
		}
	}

	var chunks []*refdex.Chunk
	for _, result := range results {
		chunks = append(chunks, result.chunks...)
	}
	return chunks
}

// embedChunks embeds chunks whose content changed since they were last
// embedded under the corpus model, upserts the vectors, and builds the
// question index for them.
func (ix *Indexer) embedChunks(ctx context.Context, corpus *refdex.Corpus, chunks []*refdex.Chunk, stats *Stats, logger *slog.Logger) error {
	collection := refdex.CollectionName(corpus.ID)
	if err := ix.Index.EnsureCollection(ctx, collection, ix.Embedder.Dimensions()); err != nil {
		return err
	}

	var pending []*refdex.Chunk
	for _, chunk := range chunks {
		embedded, err := ix.Chunks.EmbeddedHash(ctx, corpus.ID, chunk.ID, corpus.Model)
		if err != nil {
			return err
		}
		if embedded != "" && embedded == chunk.ContentHash {
			stats.Reused++
			continue
		}
		pending = append(pending, chunk)
	}

	batchSize := ix.BatchSize
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}

	for start := 0; start < len(pending); start += batchSize {
		batch := pending[start:min(start+batchSize, len(pending))]

		texts := make([]string, len(batch))
		for i, chunk := range batch {
			texts[i] = chunk.Text
		}

		if err := ix.wait(ctx, "embed"); err != nil {
			return err
		}
		var vectors [][]float32
		err := ix.withRetry(ctx, func() error {
			var err error
			vectors, err = ix.Embedder.Embed(ctx, texts)
			return err
		})
		if err != nil {
			return err
		}
		if len(vectors) != len(batch) {
			return refdex.Errorf(refdex.EINTERNAL, "embedder returned %d vectors for %d chunks", len(vectors), len(batch))
		}

		records := make([]refdex.EmbeddingRecord, len(batch))
		for i, chunk := range batch {
			records[i] = refdex.EmbeddingRecord{
				ChunkID:     chunk.ID,
				CorpusID:    chunk.CorpusID,
				Vector:      vectors[i],
				Model:       corpus.Model,
				TextKind:    refdex.TextKindContent,
				Ordinal:     0,
				Granularity: chunk.Granularity,
				Language:    chunk.Language,
				ContentHash: chunk.ContentHash,
			}
		}
		if err := ix.withRetry(ctx, func() error {
			return ix.Index.Upsert(ctx, collection, records)
		}); err != nil {
			return err
		}

		for _, chunk := range batch {
			if err := ix.Chunks.MarkEmbedded(ctx, corpus.ID, chunk.ID, corpus.Model, chunk.ContentHash); err != nil {
				return err
			}
			stats.Embedded++
			stats.Tokens += chunk.TokenCount
		}
	}

	if ix.Questions != nil {
		return ix.indexQuestions(ctx, corpus, collection, pending, stats, logger)
	}
	return nil
}

// indexQuestions generates hypothetical questions for freshly embedded
// chunks and upserts them as question-kind vectors carrying the owning
// chunk's ID. Generation failures skip the chunk; a question lost to the
// deduper costs nothing but one candidate.
func (ix *Indexer) indexQuestions(ctx context.Context, corpus *refdex.Corpus, collection string, chunks []*refdex.Chunk, stats *Stats, logger *slog.Logger) error {
	perChunk := ix.QuestionsPerChunk
	if perChunk <= 0 {
		perChunk = DefaultQuestionsPerChunk
	}

	for _, chunk := range chunks {
		if err := ix.wait(ctx, "generate"); err != nil {
			return err
		}
		questions, err := ix.Questions.Questions(ctx, chunk, perChunk)
		if err != nil {
			logger.Warn("question generation failed", "chunk", chunk.ID, "err", err)
			continue
		}

		fresh := questions[:0]
		for _, q := range questions {
			if ix.Deduper != nil && ix.Deduper.Seen(q) {
				continue
			}
			fresh = append(fresh, q)
		}
		if len(fresh) == 0 {
			continue
		}

		if err := ix.wait(ctx, "embed"); err != nil {
			return err
		}
		var vectors [][]float32
		err = ix.withRetry(ctx, func() error {
			var err error
			vectors, err = ix.Embedder.Embed(ctx, fresh)
			return err
		})
		if err != nil {
			return err
		}
		if len(vectors) != len(fresh) {
			return refdex.Errorf(refdex.EINTERNAL, "embedder returned %d vectors for %d questions", len(vectors), len(fresh))
		}

		records := make([]refdex.EmbeddingRecord, len(vectors))
		for i, vector := range vectors {
			records[i] = refdex.EmbeddingRecord{
				ChunkID:     chunk.ID,
				CorpusID:    chunk.CorpusID,
				Vector:      vector,
				Model:       corpus.Model,
				TextKind:    refdex.TextKindQuestion,
				Ordinal:     i,
				Granularity: chunk.Granularity,
				Language:    chunk.Language,
				ContentHash: chunk.ContentHash,
			}
		}
		if err := ix.withRetry(ctx, func() error {
			return ix.Index.Upsert(ctx, collection, records)
		}); err != nil {
			return err
		}
		stats.Questions += len(records)
	}

	return nil
}

func (ix *Indexer) wait(ctx context.Context, op string) error {
	if ix.Limiter == nil {
		return nil
	}
	return ix.Limiter.Wait(ctx, op)
}

// withRetry retries fn with backoff while it fails with EUNAVAILABLE.
func (ix *Indexer) withRetry(ctx context.Context, fn func() error) error {
	delays := ix.RetryDelays

	var lastErr error
	for attempt := 0; attempt <= len(delays); attempt++ {
		err := fn()
		if err == nil {
			return nil
		}
		lastErr = err

		if refdex.ErrorCode(err) != refdex.EUNAVAILABLE || attempt >= len(delays) {
			break
		}

		select {
		case <-ctx.Done():
			return lastErr
		case <-time.After(delays[attempt]):
		}
	}

	return lastErr
}
