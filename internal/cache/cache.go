// Package cache implements the client side of the daemon/client cache
// protocol: a single JSON document of per-provider variable snapshots,
// written atomically by the daemon and read, never mutated, by clients.
package cache

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/twigprompt/twig/internal/provider"
)

const currentVersion = 1

// Document is the on-disk cache file shape.
type Document struct {
	Version int              `json:"version"`
	Entries map[string]Entry `json:"entries"`
}

// Entry is one provider's most recent snapshot.
type Entry struct {
	TimestampMs int64             `json:"timestamp_ms"`
	Vars        map[string]string `json:"vars"`
}

// FileName is the cache document's name inside the twig data directory.
const FileName = "data.json"

// Reader reads the daemon-maintained cache file. It implements
// provider.CacheReader so the provider registry can consult it
// transparently during collection.
type Reader struct {
	path string
}

// New returns a Reader for the cache file at path.
func New(path string) *Reader {
	return &Reader{path: path}
}

// Get returns a provider's cached vars if present and no older than ttl.
// Any read error (missing file, truncation, malformed JSON) is treated
// as a cache miss rather than an error — the caller falls back to a
// live provider call.
func (r *Reader) Get(providerName string, ttl time.Duration) (provider.Vars, bool) {
	data, err := os.ReadFile(r.path)
	if err != nil {
		return nil, false
	}

	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, false
	}

	entry, ok := doc.Entries[providerName]
	if !ok {
		return nil, false
	}

	age := time.Since(time.UnixMilli(entry.TimestampMs))
	if age > ttl {
		return nil, false
	}

	return provider.Vars(entry.Vars), true
}

// Writer writes the cache document atomically via write-temp-then-rename,
// the way a single reader-visible file is normally replaced under a
// directory multiple clients read concurrently without locking.
type Writer struct {
	path string
}

// NewWriter returns a Writer for the cache file at path.
func NewWriter(path string) *Writer {
	return &Writer{path: path}
}

// Write replaces the cache file's contents with doc.
func (w *Writer) Write(doc *Document) error {
	if doc.Version == 0 {
		doc.Version = currentVersion
	}

	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal cache document: %w", err)
	}

	dir := filepath.Dir(w.path)
	tmp, err := os.CreateTemp(dir, ".cache-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp cache file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp cache file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync temp cache file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp cache file: %w", err)
	}

	if err := os.Rename(tmpPath, w.path); err != nil {
		return fmt.Errorf("rename cache file into place: %w", err)
	}

	return nil
}

// Path returns the cache file path for a given data directory.
func Path(dataDir string) string {
	return filepath.Join(dataDir, FileName)
}
