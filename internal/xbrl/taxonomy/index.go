// Package taxonomy implements C6: a local on-disk cache of MOPS
// taxonomy schema/linkbase files with a badgerhold-backed URL→local
// path index and per-URL single-flight fetching (spec.md §4.6).
package taxonomy

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/timshannon/badgerhold/v4"
)

// IndexEntry records where a remote taxonomy URL was cached on disk
// and when it was last fetched.
type IndexEntry struct {
	URL       string `boltholdKey:"URL"`
	LocalPath string
	FetchedAt int64 // unix seconds; avoids importing time into the indexed struct
}

// Index wraps a badgerhold store dedicated to the URL→local-path
// mapping, grounded on the teacher's BadgerDB/KVStorage split
// (connection management separated from the record operations).
type Index struct {
	store *badgerhold.Store
}

// OpenIndex opens (creating if absent) a badgerhold store at dir.
func OpenIndex(dir string) (*Index, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("taxonomy: create index dir: %w", err)
	}

	options := badgerhold.DefaultOptions
	options.Dir = dir
	options.ValueDir = dir
	options.Logger = nil

	store, err := badgerhold.Open(options)
	if err != nil {
		return nil, fmt.Errorf("taxonomy: open index: %w", err)
	}
	return &Index{store: store}, nil
}

func (idx *Index) Close() error {
	return idx.store.Close()
}

// Lookup returns the cached entry for url, or (nil, nil) when absent.
func (idx *Index) Lookup(url string) (*IndexEntry, error) {
	var entry IndexEntry
	err := idx.store.Get(url, &entry)
	if err == badgerhold.ErrNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("taxonomy: lookup %s: %w", url, err)
	}
	return &entry, nil
}

// Put records that url was fetched and stored at localPath.
func (idx *Index) Put(entry IndexEntry) error {
	if err := idx.store.Upsert(entry.URL, &entry); err != nil {
		return fmt.Errorf("taxonomy: put %s: %w", entry.URL, err)
	}
	return nil
}

// LocalPathFor deterministically derives a filesystem path under root
// for a remote taxonomy URL, keyed by its basename so repeated
// resolutions of the same URL hit the same file.
func LocalPathFor(root, url string) string {
	return filepath.Join(root, filepath.Base(url))
}
