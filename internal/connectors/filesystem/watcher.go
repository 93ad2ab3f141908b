package filesystem

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/veritas-labs/counsel/internal/core/domain"
	"github.com/veritas-labs/counsel/internal/core/ports/driven"
	"github.com/veritas-labs/counsel/internal/logger"
)

// Ensure Watcher implements the interface.
var _ driven.DirectoryWatcher = (*Watcher)(nil)

// defaultSettle is how long a file must stay quiet after its last
// write before it is considered complete and emitted.
const defaultSettle = 500 * time.Millisecond

// Watcher emits raw documents for files created or modified under a
// directory. Write bursts are debounced per file so a document is
// emitted once, after it has settled. A Watcher observes a single
// directory for its lifetime.
type Watcher struct {
	mu       sync.Mutex
	fsw      *fsnotify.Watcher
	root     string
	watching bool
	closed   bool

	settle    time.Duration
	supported map[string]bool

	// timers is owned by the run goroutine.
	timers  map[string]*time.Timer
	settled chan string
	done    chan struct{}
}

// NewWatcher creates a directory watcher. Files whose MIME type is not
// in supportedMIMETypes are dropped; an empty list admits everything.
func NewWatcher(supportedMIMETypes []string) *Watcher {
	supported := make(map[string]bool, len(supportedMIMETypes))
	for _, mt := range supportedMIMETypes {
		supported[mt] = true
	}
	return &Watcher{
		settle:    defaultSettle,
		supported: supported,
	}
}

// Watch starts observing dir and every visible subdirectory. The
// returned channel yields one raw document per settled file and closes
// when the context is cancelled or the watcher is closed.
func (w *Watcher) Watch(ctx context.Context, dir string) (<-chan domain.RawDocument, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return nil, fmt.Errorf("watcher is closed")
	}
	if w.watching {
		return nil, fmt.Errorf("already watching %s", w.root)
	}

	info, err := os.Stat(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%s does not exist", dir)
		}
		return nil, fmt.Errorf("stat %s: %w", dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", dir)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}

	w.fsw = fsw
	w.root = dir
	w.watching = true
	w.timers = make(map[string]*time.Timer)
	w.settled = make(chan string, 16)
	w.done = make(chan struct{})

	if err := w.addTree(dir); err != nil {
		fsw.Close()
		w.fsw = nil
		w.watching = false
		return nil, err
	}

	out := make(chan domain.RawDocument)
	go w.run(ctx, out)
	return out, nil
}

// Close stops watching and releases resources. Safe to call more than
// once.
func (w *Watcher) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return nil
	}
	w.closed = true

	if w.fsw != nil {
		return w.fsw.Close()
	}
	return nil
}

// addTree registers dir and every visible subdirectory with fsnotify,
// which does not recurse on its own.
func (w *Watcher) addTree(dir string) error {
	return filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if w.hidden(path) {
			return filepath.SkipDir
		}
		if err := w.fsw.Add(path); err != nil {
			return fmt.Errorf("watch %s: %w", path, err)
		}
		return nil
	})
}

// run is the event loop. It owns the timers map and the output channel.
func (w *Watcher) run(ctx context.Context, out chan<- domain.RawDocument) {
	defer close(out)
	defer close(w.done)
	defer func() {
		for _, t := range w.timers {
			t.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			w.handleEvent(event)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			logger.Warn("Watching %s: %v", w.root, err)

		case path := <-w.settled:
			delete(w.timers, path)
			raw, ok := w.loadSettled(path)
			if !ok {
				continue
			}
			select {
			case out <- *raw:
			case <-ctx.Done():
				return
			}
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if w.hidden(event.Name) {
		return
	}

	if event.Op.Has(fsnotify.Remove) || event.Op.Has(fsnotify.Rename) {
		// A pending emission for a vanished file is moot.
		if t, ok := w.timers[event.Name]; ok {
			t.Stop()
			delete(w.timers, event.Name)
		}
		return
	}

	if !event.Op.Has(fsnotify.Create) && !event.Op.Has(fsnotify.Write) {
		return
	}

	info, err := os.Stat(event.Name)
	if err != nil {
		return
	}
	if info.IsDir() {
		if event.Op.Has(fsnotify.Create) {
			w.adopt(event.Name)
		}
		return
	}

	w.schedule(event.Name)
}

// adopt registers a directory created mid-watch and schedules any
// files that landed in it before the watch took effect.
func (w *Watcher) adopt(dir string) {
	_ = filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if w.hidden(path) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			if addErr := w.fsw.Add(path); addErr != nil {
				logger.Debug("Watching %s: %v", path, addErr)
			}
			return nil
		}
		w.schedule(path)
		return nil
	})
}

// schedule arms the settle timer for path, resetting it while a write
// burst is still in progress.
func (w *Watcher) schedule(path string) {
	if t, ok := w.timers[path]; ok {
		t.Reset(w.settle)
		return
	}
	w.timers[path] = time.AfterFunc(w.settle, func() {
		select {
		case w.settled <- path:
		case <-w.done:
		}
	})
}

// loadSettled reads a settled file, dropping it when it has vanished,
// is empty, or has an unsupported MIME type.
func (w *Watcher) loadSettled(path string) (*domain.RawDocument, bool) {
	raw, err := Load(path)
	if err != nil {
		logger.Debug("Skipping %s: %v", path, err)
		return nil, false
	}
	if len(raw.Content) == 0 {
		return nil, false
	}
	if len(w.supported) > 0 && !w.supported[raw.MIMEType] {
		logger.Debug("Skipping %s: unsupported type %s", path, raw.MIMEType)
		return nil, false
	}
	return raw, true
}

// hidden reports whether path is hidden relative to the watch root.
// The root itself is exempt so a watch rooted inside a dot directory
// still works.
func (w *Watcher) hidden(path string) bool {
	rel, err := filepath.Rel(w.root, path)
	if err != nil || rel == "." {
		return false
	}
	return isHidden(rel)
}
