package knowledge

import (
	"context"
	"log/slog"
	"sync"

	"qa/store"
	"qa/types"

	"golang.org/x/sync/semaphore"
)

// Brain owns the in-memory mirror of the persisted store: the ordered list
// of document names and every document's vectors. Coarse search reads a
// snapshot of the mirror; publishes go through a single-permit semaphore so
// at most one document is persisted and cached at a time.
type Brain struct {
	storage  store.Storer
	logger   *slog.Logger
	fraction int
	weight   float32
	head     int
	tail     int

	mu      sync.RWMutex
	list    []string
	vectors map[int][][]float32

	publish *semaphore.Weighted
}

// NewBrain warms the mirror from storage. Both scans cover [0, count), so a
// document interrupted mid-persist is invisible here.
func NewBrain(ctx context.Context, storage store.Storer, cfg types.Config) (*Brain, error) {
	if cfg.MatchFraction <= 0 {
		cfg.MatchFraction = 6
	}
	vectors, err := storage.RebuildVectors(ctx)
	if err != nil {
		return nil, err
	}
	list, err := storage.RebuildNames(ctx)
	if err != nil {
		return nil, err
	}
	brain := &Brain{
		storage:  storage,
		logger:   slog.Default(),
		fraction: cfg.MatchFraction,
		weight:   cfg.TextSimWeight,
		head:     cfg.ChunkHead,
		tail:     cfg.ChunkTail,
		list:     list,
		vectors:  vectors,
		publish:  semaphore.NewWeighted(1),
	}
	brain.logger.Info("brain init", "recovered", len(list), "list", list)
	return brain, nil
}

// Index publishes a document: persist, then fold the vectors into the
// mirror. The semaphore serializes concurrent publishes so two documents
// can never race for the same id.
func (b *Brain) Index(ctx context.Context, knowledge types.Knowledge, vectors [][]float32) (int, error) {
	if err := b.publish.Acquire(ctx, 1); err != nil {
		return 0, err
	}
	defer b.publish.Release(1)

	id, err := b.storage.Persist(ctx, knowledge, vectors)
	if err != nil {
		return 0, err
	}

	b.mu.Lock()
	b.vectors[id] = vectors
	b.list = append(b.list, knowledge.FileName)
	b.mu.Unlock()

	return id, nil
}

// Retrieve runs the full query path: coarse top-N over the cached vectors,
// text rerank over storage, then a context window of head chunks before and
// tail chunks after the best match. The returned document's first chunk
// carries the page of the matched chunk, not its own: the window may start
// earlier than the match, but the citation must name where the match is.
func (b *Brain) Retrieve(ctx context.Context, vector []float32, query string) (types.Knowledge, error) {
	topN, err := MatchTopN(b.snapshot(), vector, b.fraction)
	if err != nil {
		return types.Knowledge{}, err
	}
	matched, err := MatchFinal(ctx, b.storage, topN, query, b.weight)
	if err != nil {
		return types.Knowledge{}, err
	}

	start := matched.VectorIndex - min(b.head, matched.VectorIndex)
	// Clamped against the last valid index: a tail window at the end of the
	// document must not request one chunk past it.
	end := min(matched.VectorIndex+b.tail, matched.Len-1)
	indices := make([]int, 0, end-start+1)
	for i := start; i <= end; i++ {
		indices = append(indices, i)
	}

	knowledge, err := b.storage.Load(ctx, matched.Index, indices)
	if err != nil {
		return types.Knowledge{}, err
	}
	matchedPage := knowledge.Chunks[matched.VectorIndex-start].Page
	knowledge.Chunks[0].Page = matchedPage
	return knowledge, nil
}

// List returns the cached document names in publish order.
func (b *Brain) List() []string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	list := make([]string, len(b.list))
	copy(list, b.list)
	return list
}

// snapshot copies the top-level vector map under a brief read lock. Scoring
// happens outside the lock; per-document vector slices are immutable once
// published, so sharing them is safe.
func (b *Brain) snapshot() map[int][][]float32 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	vectors := make(map[int][][]float32, len(b.vectors))
	for id, vecList := range b.vectors {
		vectors[id] = vecList
	}
	return vectors
}
