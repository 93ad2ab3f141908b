package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/veritas-labs/counsel/internal/core/ports/driven"
	"github.com/veritas-labs/counsel/internal/core/ports/driving"
	"github.com/veritas-labs/counsel/internal/logger"
)

// Ensure WatchService implements the interface.
var _ driving.Watcher = (*WatchService)(nil)

// WatchService ingests documents dropped into a watched directory.
// The directory watcher handles filesystem events and debouncing;
// this service stamps scope onto the emitted documents and queues
// them for ingestion.
type WatchService struct {
	watcher driven.DirectoryWatcher
	ingest  driving.IngestService

	// knowledgeBaseID scopes every ingested file; empty means unfiled.
	knowledgeBaseID string

	stopOnce sync.Once
	stopped  chan struct{}
}

// NewWatchService creates a watch service. Files are ingested into
// the given knowledge base; empty means no knowledge base.
func NewWatchService(watcher driven.DirectoryWatcher, ingest driving.IngestService, knowledgeBaseID string) *WatchService {
	return &WatchService{
		watcher:         watcher,
		ingest:          ingest,
		knowledgeBaseID: knowledgeBaseID,
		stopped:         make(chan struct{}),
	}
}

// Watch observes the directory and ingests every settled supported
// file. Blocks until the context is cancelled or Stop is called.
func (s *WatchService) Watch(ctx context.Context, dir string) error {
	docs, err := s.watcher.Watch(ctx, dir)
	if err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}

	logger.Info("Watching %s", dir)

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-s.stopped:
			return nil
		case raw, ok := <-docs:
			if !ok {
				return nil
			}
			raw.KnowledgeBaseID = s.knowledgeBaseID

			doc, err := s.ingest.Ingest(ctx, &raw)
			if err != nil {
				logger.Error("Ingesting %s: %v", raw.URI, err)
				continue
			}
			logger.Info("Queued %s as %s", raw.URI, doc.ID)
		}
	}
}

// Stop gracefully stops watching.
func (s *WatchService) Stop() error {
	s.stopOnce.Do(func() {
		close(s.stopped)
	})
	return s.watcher.Close()
}
