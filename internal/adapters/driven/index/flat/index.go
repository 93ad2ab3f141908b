// Package flat provides an exact nearest-neighbour vector index held in
// memory, persisted through point-in-time snapshots on disk.
//
// Every query scans all records, so similarity scores are exact rather
// than approximate. A single writer mutates the index under an exclusive
// lock while readers share a read lock, giving each search a consistent
// view: an in-flight batch insert is either fully visible or not at all.
package flat

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/veritas-labs/counsel/internal/core/domain"
	"github.com/veritas-labs/counsel/internal/core/ports/driven"
)

// DefaultName is the snapshot filename prefix when none is configured.
const DefaultName = "counsel"

// Index is an in-memory flat vector index.
// All methods are safe for concurrent use.
type Index struct {
	mu      sync.RWMutex
	records []record
	byChunk map[string]int
	gen     uint64
	dirty   bool

	dims int
	dir  string
	name string
	keep int
}

// record is one stored vector with its ownership metadata and
// precomputed norm. Fields are exported for snapshot encoding.
type record struct {
	ChunkID         string
	DocumentID      string
	KnowledgeBaseID string
	ConversationID  string
	Vector          []float32
	Norm            float64
}

// Option configures an Index.
type Option func(*Index)

// WithName sets the snapshot filename prefix.
func WithName(name string) Option {
	return func(i *Index) {
		if name != "" {
			i.name = name
		}
	}
}

// WithKeepSnapshots sets how many snapshot generations to retain on disk.
func WithKeepSnapshots(n int) Option {
	return func(i *Index) {
		if n > 0 {
			i.keep = n
		}
	}
}

// New creates an empty index for vectors of the given dimensionality.
// Snapshots are written to dir; call Load to restore the latest one.
func New(dir string, dims int, opts ...Option) (*Index, error) {
	if dims <= 0 {
		return nil, fmt.Errorf("%w: dimensions must be positive, got %d", domain.ErrInvalidInput, dims)
	}

	idx := &Index{
		byChunk: make(map[string]int),
		dims:    dims,
		dir:     dir,
		name:    DefaultName,
		keep:    defaultKeepSnapshots,
	}
	for _, opt := range opts {
		opt(idx)
	}
	return idx, nil
}

var _ driven.VectorIndex = (*Index)(nil)

// Insert adds vectors to the index. The whole batch is validated before
// anything is stored: a single wrong-sized vector rejects the batch and
// leaves the index unchanged. Records whose chunk ID is already present
// are updated in place, keeping their original insertion position.
func (i *Index) Insert(ctx context.Context, recs []domain.VectorRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(recs) == 0 {
		return nil
	}

	for _, r := range recs {
		if len(r.Vector) != i.dims {
			return &domain.DimensionMismatchError{Want: i.dims, Got: len(r.Vector)}
		}
	}

	i.mu.Lock()
	defer i.mu.Unlock()

	for _, r := range recs {
		vec := make([]float32, len(r.Vector))
		copy(vec, r.Vector)

		stored := record{
			ChunkID:         r.ChunkID,
			DocumentID:      r.DocumentID,
			KnowledgeBaseID: r.KnowledgeBaseID,
			ConversationID:  r.ConversationID,
			Vector:          vec,
			Norm:            norm(vec),
		}
		if pos, ok := i.byChunk[r.ChunkID]; ok {
			i.records[pos] = stored
			continue
		}
		i.byChunk[r.ChunkID] = len(i.records)
		i.records = append(i.records, stored)
	}
	i.gen++
	i.dirty = true
	return nil
}

// Search returns the k most similar records to the query vector within
// the scope, ordered by descending cosine similarity. Records with equal
// scores keep their insertion order.
func (i *Index) Search(ctx context.Context, query []float32, k int, scope domain.Scope) ([]driven.VectorHit, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(query) != i.dims {
		return nil, &domain.DimensionMismatchError{Want: i.dims, Got: len(query)}
	}
	if k <= 0 {
		return nil, nil
	}

	qnorm := norm(query)

	i.mu.RLock()
	defer i.mu.RUnlock()

	hits := make([]driven.VectorHit, 0, len(i.records))
	for _, r := range i.records {
		if !scope.Matches(r.KnowledgeBaseID, r.DocumentID, r.ConversationID) {
			continue
		}
		hits = append(hits, driven.VectorHit{
			ChunkID:    r.ChunkID,
			DocumentID: r.DocumentID,
			Score:      cosine(query, qnorm, r),
		})
	}

	sort.SliceStable(hits, func(a, b int) bool {
		return hits[a].Score > hits[b].Score
	})
	if len(hits) > k {
		hits = hits[:k]
	}
	return hits, nil
}

// Remove deletes every vector belonging to the document.
func (i *Index) Remove(ctx context.Context, documentID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	i.mu.Lock()
	defer i.mu.Unlock()

	kept := i.records[:0]
	for _, r := range i.records {
		if r.DocumentID == documentID {
			delete(i.byChunk, r.ChunkID)
			continue
		}
		kept = append(kept, r)
	}
	if len(kept) == len(i.records) {
		return nil
	}

	i.records = kept
	for pos, r := range i.records {
		i.byChunk[r.ChunkID] = pos
	}
	i.gen++
	i.dirty = true
	return nil
}

// Len returns the number of vectors in the index.
func (i *Index) Len() int {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return len(i.records)
}

// Close persists unsaved changes.
func (i *Index) Close() error {
	i.mu.RLock()
	dirty := i.dirty
	i.mu.RUnlock()

	if !dirty {
		return nil
	}
	return i.Save(context.Background())
}

// norm returns the Euclidean norm of v, accumulated in float64.
func norm(v []float32) float64 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	return math.Sqrt(sum)
}

// cosine computes the cosine similarity between the query and a stored
// record. Zero vectors score 0 rather than dividing by zero.
func cosine(query []float32, qnorm float64, r record) float64 {
	if qnorm == 0 || r.Norm == 0 {
		return 0
	}
	var dot float64
	for n, x := range query {
		dot += float64(x) * float64(r.Vector[n])
	}
	return dot / (qnorm * r.Norm)
}
