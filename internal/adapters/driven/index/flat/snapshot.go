package flat

import (
	"context"
	"encoding/gob"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/veritas-labs/counsel/internal/core/domain"
)

const (
	defaultKeepSnapshots = 3
	snapshotSuffix       = ".snap"
)

// snapshot is the on-disk form of the index.
type snapshot struct {
	Dims    int
	Records []record
}

// pointerFile names the current snapshot. It is rewritten atomically
// after each successful save, so a crash mid-save leaves the previous
// generation intact.
type pointerFile struct {
	Snapshot string    `json:"snapshot"`
	SavedAt  time.Time `json:"saved_at"`
	Count    int       `json:"count"`
	Dims     int       `json:"dims"`
}

func (i *Index) pointerPath() string {
	return filepath.Join(i.dir, i.name+"_latest.json")
}

// Save writes a new snapshot generation and repoints the pointer file.
// Both writes go through a temp file and rename, so readers never see a
// partial file. Searches proceed while the snapshot is written.
func (i *Index) Save(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.MkdirAll(i.dir, 0o755); err != nil {
		return fmt.Errorf("creating index directory: %w", err)
	}

	i.mu.RLock()
	gen := i.gen
	snap := snapshot{
		Dims:    i.dims,
		Records: make([]record, len(i.records)),
	}
	copy(snap.Records, i.records)
	i.mu.RUnlock()

	name := fmt.Sprintf("%s-%d%s", i.name, time.Now().UnixNano(), snapshotSuffix)
	if err := i.writeSnapshot(name, snap); err != nil {
		return err
	}
	if err := i.writePointer(pointerFile{
		Snapshot: name,
		SavedAt:  time.Now().UTC(),
		Count:    len(snap.Records),
		Dims:     snap.Dims,
	}); err != nil {
		return err
	}
	i.prune()

	i.mu.Lock()
	if i.gen == gen {
		i.dirty = false
	}
	i.mu.Unlock()
	return nil
}

func (i *Index) writeSnapshot(name string, snap snapshot) error {
	tmp, err := os.CreateTemp(i.dir, i.name+"-*.tmp")
	if err != nil {
		return fmt.Errorf("creating snapshot temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := gob.NewEncoder(tmp).Encode(snap); err != nil {
		tmp.Close()
		return fmt.Errorf("encoding snapshot: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("syncing snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing snapshot: %w", err)
	}
	if err := os.Rename(tmp.Name(), filepath.Join(i.dir, name)); err != nil {
		return fmt.Errorf("publishing snapshot: %w", err)
	}
	return nil
}

func (i *Index) writePointer(ptr pointerFile) error {
	data, err := json.MarshalIndent(ptr, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding snapshot pointer: %w", err)
	}

	tmp, err := os.CreateTemp(i.dir, i.name+"-ptr-*.tmp")
	if err != nil {
		return fmt.Errorf("creating pointer temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing snapshot pointer: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("syncing snapshot pointer: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing snapshot pointer: %w", err)
	}
	if err := os.Rename(tmp.Name(), i.pointerPath()); err != nil {
		return fmt.Errorf("publishing snapshot pointer: %w", err)
	}
	return nil
}

// prune removes snapshot generations beyond the retention count.
// Best effort: removal failures are ignored and retried on next save.
func (i *Index) prune() {
	entries, err := os.ReadDir(i.dir)
	if err != nil {
		return
	}

	var snaps []string
	prefix := i.name + "-"
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if strings.HasPrefix(e.Name(), prefix) && strings.HasSuffix(e.Name(), snapshotSuffix) {
			snaps = append(snaps, e.Name())
		}
	}
	if len(snaps) <= i.keep {
		return
	}

	// Names embed a nanosecond timestamp, so lexical order is age order.
	sort.Strings(snaps)
	for _, name := range snaps[:len(snaps)-i.keep] {
		os.Remove(filepath.Join(i.dir, name))
	}
}

// Load replaces the index contents with the latest snapshot.
//
// A missing pointer file means no snapshot was ever saved: the index is
// reset to empty and Load returns nil. Any unreadable, undecodable or
// mismatched snapshot also resets the index to empty but returns
// domain.ErrCorruptIndex, leaving the caller an index that works and a
// signal that reindexing is needed.
func (i *Index) Load(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := os.ReadFile(i.pointerPath())
	if errors.Is(err, fs.ErrNotExist) {
		i.reset()
		return nil
	}
	if err != nil {
		i.reset()
		return fmt.Errorf("%w: reading snapshot pointer: %v", domain.ErrCorruptIndex, err)
	}

	var ptr pointerFile
	if err := json.Unmarshal(data, &ptr); err != nil {
		i.reset()
		return fmt.Errorf("%w: decoding snapshot pointer: %v", domain.ErrCorruptIndex, err)
	}
	if ptr.Snapshot == "" || ptr.Snapshot != filepath.Base(ptr.Snapshot) {
		i.reset()
		return fmt.Errorf("%w: pointer names invalid snapshot %q", domain.ErrCorruptIndex, ptr.Snapshot)
	}

	f, err := os.Open(filepath.Join(i.dir, ptr.Snapshot))
	if err != nil {
		i.reset()
		return fmt.Errorf("%w: opening snapshot %s: %v", domain.ErrCorruptIndex, ptr.Snapshot, err)
	}
	defer f.Close()

	var snap snapshot
	if err := gob.NewDecoder(f).Decode(&snap); err != nil {
		i.reset()
		return fmt.Errorf("%w: decoding snapshot %s: %v", domain.ErrCorruptIndex, ptr.Snapshot, err)
	}
	if snap.Dims != i.dims {
		i.reset()
		return fmt.Errorf("%w: snapshot has %d dimensions, index configured for %d", domain.ErrCorruptIndex, snap.Dims, i.dims)
	}

	byChunk := make(map[string]int, len(snap.Records))
	for pos, r := range snap.Records {
		byChunk[r.ChunkID] = pos
	}

	i.mu.Lock()
	i.records = snap.Records
	i.byChunk = byChunk
	i.gen++
	i.dirty = false
	i.mu.Unlock()
	return nil
}

func (i *Index) reset() {
	i.mu.Lock()
	i.records = nil
	i.byChunk = make(map[string]int)
	i.gen++
	i.dirty = false
	i.mu.Unlock()
}
