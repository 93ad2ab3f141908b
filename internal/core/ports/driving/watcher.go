package driving

import "context"

// Watcher ingests documents dropped into watched directories.
type Watcher interface {
	// Watch begins observing a directory for supported document types.
	// Blocks until the context is cancelled or an error occurs.
	Watch(ctx context.Context, dir string) error

	// Stop gracefully stops watching.
	Stop() error
}
