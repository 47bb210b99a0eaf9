// pkg/cache/cache.go

package cache

import (
	"sort"

	"fapiao/pkg/models"
)

// Store is a persistent map from filename to the last extraction result,
// valid while the file's mtime and size are unchanged.
type Store interface {
	// Load replaces the in-memory state with the persisted one. On error the
	// store is left empty and usable.
	Load() error
	// Lookup returns the cached record when name is known with exactly this
	// mtime and size.
	Lookup(name string, mtime float64, size int64) (models.InvoiceRecord, bool)
	Upsert(name string, entry models.CacheEntry)
	// PurgeMissing drops entries whose file is not in present and returns
	// how many were dropped.
	PurgeMissing(present []string) int
	// Flush persists pending changes
	Flush() error
}

// Index is the in-memory state shared by the store backends. It tracks which
// entries changed since the last flush.
type Index struct {
	entries map[string]models.CacheEntry
	dirty   map[string]struct{}
	removed map[string]struct{}
}

// NewIndex creates an empty index
func NewIndex() *Index {
	ix := &Index{}
	ix.Reset(nil)
	return ix
}

// Reset replaces all entries and clears change tracking
func (ix *Index) Reset(entries map[string]models.CacheEntry) {
	if entries == nil {
		entries = make(map[string]models.CacheEntry)
	}
	ix.entries = entries
	ix.dirty = make(map[string]struct{})
	ix.removed = make(map[string]struct{})
}

// Lookup returns the cached record for name if its metadata still matches
func (ix *Index) Lookup(name string, mtime float64, size int64) (models.InvoiceRecord, bool) {
	entry, ok := ix.entries[name]
	if !ok || !entry.Matches(mtime, size) {
		return models.InvoiceRecord{}, false
	}
	return entry.Data, true
}

// Upsert stores entry under name
func (ix *Index) Upsert(name string, entry models.CacheEntry) {
	ix.entries[name] = entry
	ix.dirty[name] = struct{}{}
	delete(ix.removed, name)
}

// PurgeMissing removes every entry not named in present
func (ix *Index) PurgeMissing(present []string) int {
	keep := make(map[string]struct{}, len(present))
	for _, name := range present {
		keep[name] = struct{}{}
	}

	purged := 0
	for name := range ix.entries {
		if _, ok := keep[name]; ok {
			continue
		}
		delete(ix.entries, name)
		delete(ix.dirty, name)
		ix.removed[name] = struct{}{}
		purged++
	}
	return purged
}

// Len returns the number of entries
func (ix *Index) Len() int {
	return len(ix.entries)
}

// Entries returns a copy of all entries
func (ix *Index) Entries() map[string]models.CacheEntry {
	out := make(map[string]models.CacheEntry, len(ix.entries))
	for k, v := range ix.entries {
		out[k] = v
	}
	return out
}

// Changed reports whether anything was upserted or purged since the last
// Reset or MarkClean
func (ix *Index) Changed() bool {
	return len(ix.dirty) > 0 || len(ix.removed) > 0
}

// Dirty returns the names upserted since the last flush, sorted
func (ix *Index) Dirty() []string {
	return sortedKeys(ix.dirty)
}

// Removed returns the names purged since the last flush, sorted
func (ix *Index) Removed() []string {
	return sortedKeys(ix.removed)
}

// Entry returns the entry stored under name
func (ix *Index) Entry(name string) (models.CacheEntry, bool) {
	e, ok := ix.entries[name]
	return e, ok
}

// MarkClean clears change tracking after a successful flush
func (ix *Index) MarkClean() {
	ix.dirty = make(map[string]struct{})
	ix.removed = make(map[string]struct{})
}

func sortedKeys(m map[string]struct{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
