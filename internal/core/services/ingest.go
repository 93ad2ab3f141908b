package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/veritas-labs/counsel/internal/core/domain"
	"github.com/veritas-labs/counsel/internal/core/ports/driven"
	"github.com/veritas-labs/counsel/internal/core/ports/driving"
	"github.com/veritas-labs/counsel/internal/logger"
)

// Ensure IngestService implements the interface.
var _ driving.IngestService = (*IngestService)(nil)

// DefaultWorkers is the number of documents processed concurrently.
const DefaultWorkers = 4

// embedBatchSize bounds the number of chunks sent per embedding
// request so request bodies stay small.
const embedBatchSize = 64

// waitPollInterval is how often Wait re-reads the document status.
const waitPollInterval = 100 * time.Millisecond

// IngestService runs the asynchronous ingestion pipeline:
// extract, chunk, embed, index. Ingest returns as soon as the
// document row exists; all later stages run on a bounded worker pool.
type IngestService struct {
	docStore  driven.DocumentStore
	extractor driven.ExtractorRegistry
	chunker   driven.Chunker
	embedder  driven.EmbeddingService
	index     driven.VectorIndex

	// workers is a semaphore bounding concurrent pipeline runs.
	workers chan struct{}

	// jobs maps in-flight document IDs to their cancel funcs so
	// Delete can abandon processing.
	mu   sync.Mutex
	jobs map[string]context.CancelFunc

	wg sync.WaitGroup
}

// NewIngestService creates an ingestion service.
// workers bounds pipeline concurrency; <= 0 means DefaultWorkers.
func NewIngestService(
	docStore driven.DocumentStore,
	extractor driven.ExtractorRegistry,
	chunker driven.Chunker,
	embedder driven.EmbeddingService,
	index driven.VectorIndex,
	workers int,
) *IngestService {
	if workers <= 0 {
		workers = DefaultWorkers
	}
	return &IngestService{
		docStore:  docStore,
		extractor: extractor,
		chunker:   chunker,
		embedder:  embedder,
		index:     index,
		workers:   make(chan struct{}, workers),
		jobs:      make(map[string]context.CancelFunc),
	}
}

// Ingest registers a raw document and queues it for processing.
// It returns immediately with the document in pending status.
func (s *IngestService) Ingest(ctx context.Context, raw *domain.RawDocument) (*domain.Document, error) {
	if raw == nil || len(raw.Content) == 0 {
		return nil, fmt.Errorf("%w: empty document", domain.ErrInvalidInput)
	}
	if s.embedder == nil {
		return nil, fmt.Errorf("no embedding provider configured")
	}

	now := time.Now()
	doc := &domain.Document{
		ID:              uuid.NewString(),
		KnowledgeBaseID: raw.KnowledgeBaseID,
		ConversationID:  raw.ConversationID,
		URI:             raw.URI,
		Title:           raw.Title,
		Description:     raw.Description,
		SourceKind:      raw.SourceKind,
		ByteSize:        int64(len(raw.Content)),
		Status:          domain.StatusPending,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := s.docStore.SaveDocument(ctx, doc); err != nil {
		return nil, fmt.Errorf("save document: %w", err)
	}

	// The job outlives the caller's context: Ingest returns
	// immediately and processing continues in the background.
	jobCtx, cancel := context.WithCancel(context.Background())
	s.registerJob(doc.ID, cancel)

	logger.Debug("Queued document %s (%s)", doc.ID, doc.URI)

	s.wg.Add(1)
	go s.process(jobCtx, doc, raw)

	return doc, nil
}

// process runs the pipeline for one document on a worker slot.
func (s *IngestService) process(ctx context.Context, doc *domain.Document, raw *domain.RawDocument) {
	defer s.wg.Done()
	defer s.clearJob(doc.ID)

	select {
	case s.workers <- struct{}{}:
	case <-ctx.Done():
		return
	}
	defer func() { <-s.workers }()

	if err := s.processOne(ctx, doc, raw); err != nil {
		if ctx.Err() != nil || errors.Is(err, domain.ErrIngestCancelled) {
			logger.Debug("Ingestion of %s abandoned", doc.ID)
			return
		}
		logger.Error("Ingestion of %s failed: %v", doc.ID, err)
		// The job context is still live here; only cancellation paths
		// return early above.
		if uerr := s.docStore.UpdateDocumentStatus(ctx, doc.ID, domain.StatusFailed, err.Error()); uerr != nil {
			logger.Error("Recording failure for %s: %v", doc.ID, uerr)
		}
	}
}

// processOne runs the sequential pipeline stages for one document.
//
//nolint:gocyclo // Pipeline orchestration with necessary sequential steps
func (s *IngestService) processOne(ctx context.Context, doc *domain.Document, raw *domain.RawDocument) error {
	// 1. MARK PROCESSING
	if err := s.docStore.UpdateDocumentStatus(ctx, doc.ID, domain.StatusProcessing, ""); err != nil {
		return fmt.Errorf("mark processing: %w", err)
	}

	// 2. EXTRACT TEXT
	result, err := s.extractor.Extract(ctx, raw)
	if err != nil {
		return fmt.Errorf("extract: %w", err)
	}
	doc.Content = result.Document.Content
	doc.Title = result.Document.Title
	doc.ByteSize = result.Document.ByteSize
	doc.UpdatedAt = time.Now()
	if err := s.docStore.SaveDocument(ctx, doc); err != nil {
		return fmt.Errorf("save extracted text: %w", err)
	}

	// 3. CHUNK
	chunks, err := s.chunker.Split(ctx, doc)
	if err != nil {
		return fmt.Errorf("chunk: %w", err)
	}
	if len(chunks) == 0 {
		// Nothing searchable, but the document itself is fine.
		logger.Debug("Document %s produced no chunks", doc.ID)
		return s.docStore.UpdateDocumentStatus(ctx, doc.ID, domain.StatusIndexed, "")
	}

	// 4. EMBED IN BATCHES
	texts := make([]string, len(chunks))
	for i := range chunks {
		texts[i] = chunks[i].Content
	}
	for start := 0; start < len(chunks); start += embedBatchSize {
		end := start + embedBatchSize
		if end > len(chunks) {
			end = len(chunks)
		}
		vectors, err := s.embedder.EmbedBatch(ctx, texts[start:end])
		if err != nil {
			return fmt.Errorf("embed chunks: %w", err)
		}
		for i, vector := range vectors {
			chunks[start+i].Embedding = vector
		}
	}

	// 5. RE-CHECK LIVENESS
	// The document may have been deleted, or the job cancelled, while
	// embedding ran. Either way: stop silently, nothing is indexed.
	if ctx.Err() != nil {
		return domain.ErrIngestCancelled
	}
	if _, err := s.docStore.GetDocument(ctx, doc.ID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrIngestCancelled
		}
		return fmt.Errorf("liveness check: %w", err)
	}

	// 6. SAVE CHUNKS
	if err := s.docStore.SaveChunks(ctx, chunks); err != nil {
		return fmt.Errorf("save chunks: %w", err)
	}

	// 7. INDEX VECTORS
	// One all-or-nothing batch as the final step; a document is never
	// partially searchable.
	records := make([]domain.VectorRecord, len(chunks))
	for i, chunk := range chunks {
		records[i] = domain.VectorRecord{
			ChunkID:         chunk.ID,
			DocumentID:      doc.ID,
			KnowledgeBaseID: doc.KnowledgeBaseID,
			ConversationID:  doc.ConversationID,
			Vector:          chunk.Embedding,
		}
	}
	if err := s.index.Insert(ctx, records); err != nil {
		return fmt.Errorf("index vectors: %w", err)
	}

	// 8. AUTOSAVE INDEX
	if err := s.index.Save(ctx); err != nil {
		// The vectors are live in memory; a failed snapshot only
		// costs durability and reindex recovers it.
		logger.Warn("Index autosave failed after ingesting %s: %v", doc.ID, err)
	}

	// 9. MARK INDEXED
	if err := s.docStore.UpdateDocumentStatus(ctx, doc.ID, domain.StatusIndexed, ""); err != nil {
		return fmt.Errorf("mark indexed: %w", err)
	}

	logger.Info("Indexed %s: %d chunks", doc.ID, len(chunks))
	return nil
}

// Wait blocks until the document reaches a terminal status or the
// context is cancelled.
func (s *IngestService) Wait(ctx context.Context, documentID string) (*domain.Document, error) {
	ticker := time.NewTicker(waitPollInterval)
	defer ticker.Stop()

	for {
		doc, err := s.docStore.GetDocument(ctx, documentID)
		if err != nil {
			return nil, err
		}
		if doc.Status.Terminal() {
			return doc, nil
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}

// Get retrieves a document with its current status.
func (s *IngestService) Get(ctx context.Context, documentID string) (*domain.Document, error) {
	return s.docStore.GetDocument(ctx, documentID)
}

// List returns documents matching the scope, newest first.
func (s *IngestService) List(ctx context.Context, scope domain.Scope) ([]domain.Document, error) {
	return s.docStore.ListDocuments(ctx, scope)
}

// Delete cancels any in-flight job for the document, removes its
// vectors and deletes the stored document and chunks.
func (s *IngestService) Delete(ctx context.Context, documentID string) error {
	s.cancelJob(documentID)

	if err := s.index.Remove(ctx, documentID); err != nil {
		return fmt.Errorf("remove vectors: %w", err)
	}
	if err := s.docStore.DeleteDocument(ctx, documentID); err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	if err := s.index.Save(ctx); err != nil {
		logger.Warn("Index autosave failed after deleting %s: %v", documentID, err)
	}

	logger.Info("Deleted document %s", documentID)
	return nil
}

// Reindex rebuilds the vector index from chunk embeddings stored in
// the document store. Documents without stored embeddings are skipped.
func (s *IngestService) Reindex(ctx context.Context) error {
	docs, err := s.docStore.ListDocuments(ctx, domain.Scope{})
	if err != nil {
		return fmt.Errorf("list documents: %w", err)
	}

	var vectors, rebuilt int
	for i := range docs {
		doc := &docs[i]
		if doc.Status != domain.StatusIndexed {
			continue
		}

		chunks, err := s.docStore.GetChunks(ctx, doc.ID)
		if err != nil {
			return fmt.Errorf("get chunks for %s: %w", doc.ID, err)
		}

		records := make([]domain.VectorRecord, 0, len(chunks))
		for _, chunk := range chunks {
			if len(chunk.Embedding) == 0 {
				continue
			}
			records = append(records, domain.VectorRecord{
				ChunkID:         chunk.ID,
				DocumentID:      doc.ID,
				KnowledgeBaseID: doc.KnowledgeBaseID,
				ConversationID:  doc.ConversationID,
				Vector:          chunk.Embedding,
			})
		}
		if len(records) == 0 {
			continue
		}

		// Remove first so reindexing a healthy index does not
		// duplicate records.
		if err := s.index.Remove(ctx, doc.ID); err != nil {
			return fmt.Errorf("remove stale vectors for %s: %w", doc.ID, err)
		}
		if err := s.index.Insert(ctx, records); err != nil {
			return fmt.Errorf("reinsert vectors for %s: %w", doc.ID, err)
		}
		vectors += len(records)
		rebuilt++
	}

	if err := s.index.Save(ctx); err != nil {
		return fmt.Errorf("save index: %w", err)
	}

	logger.Info("Reindexed %d vectors from %d documents", vectors, rebuilt)
	return nil
}

// Drain waits for all queued pipeline work to finish without
// cancelling it. Used by one-shot callers that must not exit while
// documents are still processing.
func (s *IngestService) Drain() {
	s.wg.Wait()
}

// Close cancels all in-flight jobs and waits for workers to drain.
func (s *IngestService) Close() error {
	s.mu.Lock()
	for id, cancel := range s.jobs {
		cancel()
		delete(s.jobs, id)
	}
	s.mu.Unlock()

	s.wg.Wait()
	return nil
}

func (s *IngestService) registerJob(documentID string, cancel context.CancelFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[documentID] = cancel
}

func (s *IngestService) clearJob(documentID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if cancel, ok := s.jobs[documentID]; ok {
		cancel()
		delete(s.jobs, documentID)
	}
}

func (s *IngestService) cancelJob(documentID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if cancel, ok := s.jobs[documentID]; ok {
		cancel()
	}
}
