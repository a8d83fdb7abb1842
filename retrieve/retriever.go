// Package retrieve implements multi-probe vector retrieval with score
// fusion and ancestor context attachment.
package retrieve

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/fwojciec/refdex"
	"golang.org/x/sync/errgroup"
)

// Defaults.
const (
	DefaultTopK          = 5
	DefaultScoreFloor    = 0.25
	DefaultContextBudget = 2000
	DefaultTimeout       = 15 * time.Second

	// probeTopK is how many hits each individual probe search fetches;
	// fusion narrows them down to TopK.
	probeTopK = 10
)

// DefaultRetryDelays returns the backoff delays for index searches that
// fail with EUNAVAILABLE: 1s, 2s, 4s.
func DefaultRetryDelays() []time.Duration {
	return []time.Duration{1 * time.Second, 2 * time.Second, 4 * time.Second}
}

// Ensure Retriever implements refdex.Retriever at compile time.
var _ refdex.Retriever = (*Retriever)(nil)

// Retriever searches a corpus index with expanded query probes and fuses
// the per-probe rankings into one result list.
type Retriever struct {
	Embedder refdex.Embedder
	Index    refdex.VectorIndex
	Chunks   refdex.ChunkService
	Expander refdex.Expander

	// TopK is the maximum number of results, default DefaultTopK.
	TopK int

	// ScoreFloor drops hits below this cosine similarity.
	ScoreFloor float32

	// ContextBudget caps the token total of results plus attached
	// ancestors, default DefaultContextBudget.
	ContextBudget int

	// Timeout bounds the concurrent search phase; searches still running
	// at the deadline are cancelled and fusion proceeds without them.
	Timeout time.Duration

	// RetryDelays are the backoff delays for unavailable-index retries.
	RetryDelays []time.Duration

	Logger *slog.Logger
}

// NewRetriever creates a Retriever with default tuning.
func NewRetriever(embedder refdex.Embedder, index refdex.VectorIndex, chunks refdex.ChunkService, expander refdex.Expander) *Retriever {
	return &Retriever{
		Embedder:      embedder,
		Index:         index,
		Chunks:        chunks,
		Expander:      expander,
		TopK:          DefaultTopK,
		ScoreFloor:    DefaultScoreFloor,
		ContextBudget: DefaultContextBudget,
		Timeout:       DefaultTimeout,
		RetryDelays:   DefaultRetryDelays(),
		Logger:        slog.Default(),
	}
}

// search is one (probe, granularity) index lookup.
type search struct {
	vector      []float32
	textKind    refdex.TextKind
	granularity refdex.Granularity
}

// fusedHit carries a chunk's best score across all searches.
type fusedHit struct {
	chunkID     string
	score       float32
	granularity refdex.Granularity
}

// Retrieve expands the query, embeds the probes, searches the corpus
// collection per (probe, granularity) concurrently, and fuses the hits by
// max score. Each result carries its ancestor coarse chunks within the
// context budget.
func (r *Retriever) Retrieve(ctx context.Context, corpus *refdex.Corpus, query string) ([]refdex.RetrievedChunk, error) {
	if corpus == nil {
		return nil, refdex.Errorf(refdex.EINVALID, "corpus required")
	}
	if corpus.Model != r.Embedder.Model() {
		return nil, refdex.Errorf(refdex.EINVALID,
			"corpus %q was indexed with model %q, embedder provides %q",
			corpus.Name, corpus.Model, r.Embedder.Model())
	}

	logger := r.Logger
	if logger == nil {
		logger = slog.Default()
	}

	probes, err := r.Expander.Expand(ctx, query)
	if err != nil {
		return nil, err
	}

	texts := make([]string, len(probes))
	for i, probe := range probes {
		texts[i] = probe.Text
	}
	vectors, err := r.Embedder.Embed(ctx, texts)
	if err != nil {
		return nil, err
	}
	if len(vectors) != len(probes) {
		return nil, refdex.Errorf(refdex.EINTERNAL, "embedder returned %d vectors for %d probes", len(vectors), len(probes))
	}

	searches := make([]search, 0, 2*len(probes))
	for i, probe := range probes {
		textKind := refdex.TextKindContent
		if probe.Type == refdex.ProbeHyQE {
			textKind = refdex.TextKindQuestion
		}
		for _, granularity := range []refdex.Granularity{refdex.GranularityCoarse, refdex.GranularityFine} {
			searches = append(searches, search{
				vector:      vectors[i],
				textKind:    textKind,
				granularity: granularity,
			})
		}
	}

	fused, err := r.runSearches(ctx, refdex.CollectionName(corpus.ID), corpus.Model, searches, logger)
	if err != nil {
		return nil, err
	}

	ranked := rank(fused)

	topK := r.TopK
	if topK <= 0 {
		topK = DefaultTopK
	}
	if len(ranked) > topK {
		ranked = ranked[:topK]
	}

	results, err := r.loadChunks(ctx, corpus.ID, ranked)
	if err != nil {
		return nil, err
	}

	if err := r.attachAncestors(ctx, corpus.ID, results); err != nil {
		return nil, err
	}

	return results, nil
}

// runSearches executes all searches concurrently under the per-query
// timeout and fuses hits by max score. Individual search failures degrade
// the result set; only a fully unavailable index fails the query.
func (r *Retriever) runSearches(ctx context.Context, collection, model string, searches []search, logger *slog.Logger) (map[string]*fusedHit, error) {
	timeout := r.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	sctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var (
		mu          sync.Mutex
		fused       = make(map[string]*fusedHit)
		succeeded   int
		unavailable int
	)

	g, sctx := errgroup.WithContext(sctx)
	for _, s := range searches {
		g.Go(func() error {
			hits, err := r.queryWithRetry(sctx, collection, s.vector, refdex.VectorQuery{
				Model:       model,
				TextKind:    s.textKind,
				Granularity: s.granularity,
				TopK:        probeTopK,
				MinScore:    r.ScoreFloor,
			})

			mu.Lock()
			defer mu.Unlock()

			if err != nil {
				if refdex.ErrorCode(err) == refdex.EUNAVAILABLE {
					unavailable++
				}
				logger.Warn("probe search failed",
					"text_kind", string(s.textKind),
					"granularity", string(s.granularity),
					"err", err)
				return nil
			}

			succeeded++
			for _, hit := range hits {
				cur, ok := fused[hit.ChunkID]
				if !ok {
					fused[hit.ChunkID] = &fusedHit{
						chunkID:     hit.ChunkID,
						score:       hit.Score,
						granularity: s.granularity,
					}
					continue
				}
				if hit.Score > cur.score {
					cur.score = hit.Score
				}
			}
			return nil
		})
	}
	_ = g.Wait()

	if succeeded == 0 && unavailable > 0 {
		return nil, refdex.Errorf(refdex.EUNAVAILABLE, "vector index unavailable")
	}

	return fused, nil
}

// queryWithRetry retries unavailable-index errors with backoff. Other
// errors, including context cancellation, are returned immediately.
func (r *Retriever) queryWithRetry(ctx context.Context, collection string, vector []float32, q refdex.VectorQuery) ([]refdex.VectorHit, error) {
	delays := r.RetryDelays

	var lastErr error
	for attempt := 0; attempt <= len(delays); attempt++ {
		hits, err := r.Index.Query(ctx, collection, vector, q)
		if err == nil {
			return hits, nil
		}
		lastErr = err

		if refdex.ErrorCode(err) != refdex.EUNAVAILABLE || attempt >= len(delays) {
			break
		}

		select {
		case <-ctx.Done():
			return nil, lastErr
		case <-time.After(delays[attempt]):
		}
	}

	return nil, lastErr
}

// rank orders fused hits by score descending, breaking ties by finer
// granularity and then by chunk ID so a fixed hit set always ranks the
// same way.
func rank(fused map[string]*fusedHit) []*fusedHit {
	ranked := make([]*fusedHit, 0, len(fused))
	for _, hit := range fused {
		ranked = append(ranked, hit)
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].score != ranked[j].score {
			return ranked[i].score > ranked[j].score
		}
		if ri, rj := ranked[i].granularity.Rank(), ranked[j].granularity.Rank(); ri != rj {
			return ri > rj
		}
		return ranked[i].chunkID < ranked[j].chunkID
	})
	return ranked
}

// loadChunks resolves ranked hits into retrieved chunks, preserving rank
// order. Hits whose chunk is gone (re-index race) are dropped.
func (r *Retriever) loadChunks(ctx context.Context, corpusID string, ranked []*fusedHit) ([]refdex.RetrievedChunk, error) {
	if len(ranked) == 0 {
		return nil, nil
	}

	ids := make([]string, len(ranked))
	scores := make(map[string]float32, len(ranked))
	for i, hit := range ranked {
		ids[i] = hit.chunkID
		scores[hit.chunkID] = hit.score
	}

	chunks, err := r.Chunks.FindChunksByIDs(ctx, corpusID, ids)
	if err != nil {
		return nil, err
	}

	results := make([]refdex.RetrievedChunk, 0, len(chunks))
	for _, chunk := range chunks {
		results = append(results, refdex.RetrievedChunk{
			Chunk: chunk,
			Score: scores[chunk.ID],
		})
	}
	return results, nil
}

// attachAncestors fetches each fine result's parent coarse chunk and
// attaches it while the token total of results plus ancestors stays within
// the context budget. Ancestors over budget are skipped whole. An ancestor
// shared by several results attaches once, to the best-scored one.
func (r *Retriever) attachAncestors(ctx context.Context, corpusID string, results []refdex.RetrievedChunk) error {
	budget := r.ContextBudget
	if budget <= 0 {
		budget = DefaultContextBudget
	}

	total := 0
	seen := make(map[string]bool, len(results))
	for _, result := range results {
		total += result.Chunk.TokenCount
		seen[result.Chunk.ID] = true
	}

	type want struct {
		result   int
		parentID string
	}
	var wants []want
	for i, result := range results {
		parentID := result.Chunk.ParentChunkID
		if parentID == "" || seen[parentID] {
			continue
		}
		seen[parentID] = true
		wants = append(wants, want{result: i, parentID: parentID})
	}
	if len(wants) == 0 {
		return nil
	}

	ids := make([]string, len(wants))
	for i, w := range wants {
		ids[i] = w.parentID
	}
	ancestors, err := r.Chunks.FindChunksByIDs(ctx, corpusID, ids)
	if err != nil {
		return err
	}
	byID := make(map[string]*refdex.Chunk, len(ancestors))
	for _, ancestor := range ancestors {
		byID[ancestor.ID] = ancestor
	}

	for _, w := range wants {
		ancestor, ok := byID[w.parentID]
		if !ok {
			continue
		}
		if total+ancestor.TokenCount > budget {
			continue
		}
		total += ancestor.TokenCount
		results[w.result].Ancestors = append(results[w.result].Ancestors, ancestor)
	}

	return nil
}
