package driven

import (
	"context"

	"github.com/veritas-labs/counsel/internal/core/domain"
)

// DirectoryWatcher observes a directory and emits raw documents for
// files created or modified under it. Implementations detect MIME
// types, skip hidden and unsupported files, and debounce write bursts
// so each settled file is emitted once.
type DirectoryWatcher interface {
	// Watch starts observing the directory. The channel yields one
	// raw document per settled file and closes when the context is
	// cancelled or the watcher is closed.
	Watch(ctx context.Context, dir string) (<-chan domain.RawDocument, error)

	// Close stops watching and releases resources.
	Close() error
}
