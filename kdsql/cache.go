package kdsql

import (
	"database/sql/driver"
	"strings"
	"sync"

	sqlite "modernc.org/sqlite"

	"github.com/viant/sqlite-kd/kdtree"
)

// snapshot is an immutable tree over shadow rows. Point IDs are shadow rowids.
type snapshot struct {
	tree *kdtree.Tree
	ids  map[int64]int64
	dim  int
}

// Global shared cache of snapshots keyed by db path/table for cross-connection reuse.
var sharedCache = struct {
	mu    sync.RWMutex
	byKey map[string]*cacheEntry
}{byKey: make(map[string]*cacheEntry)}

type cacheEntry struct {
	mu       sync.RWMutex
	snap     *snapshot
	building bool
	gen      uint64
	cond     *sync.Cond
}

func newCacheEntry() *cacheEntry {
	e := &cacheEntry{}
	e.cond = sync.NewCond(&e.mu)
	return e
}

func (e *cacheEntry) get() *snapshot {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.snap
}

func (e *cacheEntry) generation() uint64 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.gen
}

// setIfCurrent stores snap unless the entry was invalidated after gen was read.
func (e *cacheEntry) setIfCurrent(snap *snapshot, gen uint64) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.gen != gen {
		return false
	}
	e.snap = snap
	return true
}

func (e *cacheEntry) invalidate() {
	e.mu.Lock()
	e.snap = nil
	e.gen++
	e.mu.Unlock()
}

func (e *cacheEntry) waitForBuild() *snapshot {
	e.mu.Lock()
	for e.building {
		e.cond.Wait()
	}
	snap := e.snap
	e.mu.Unlock()
	return snap
}

func (e *cacheEntry) startBuild() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.snap != nil || e.building {
		return false
	}
	e.building = true
	return true
}

func (e *cacheEntry) finishBuild() {
	e.mu.Lock()
	e.building = false
	e.cond.Broadcast()
	e.mu.Unlock()
}

func cacheKey(dbPath, tableName string) string {
	return dbPath + "|" + tableName
}

func getCacheEntry(key string) *cacheEntry {
	sharedCache.mu.RLock()
	entry := sharedCache.byKey[key]
	sharedCache.mu.RUnlock()
	if entry != nil {
		return entry
	}
	sharedCache.mu.Lock()
	defer sharedCache.mu.Unlock()
	if entry = sharedCache.byKey[key]; entry == nil {
		entry = newCacheEntry()
		sharedCache.byKey[key] = entry
	}
	return entry
}

// InvalidateCache drops cached trees for a shadow table (or plain table
// name) across active connections and returns the number of entries cleared.
func InvalidateCache(shadow string) int {
	tableName := tableNameFromShadow(shadow)
	if tableName == "" {
		tableName = shadow
	}
	suffix := "|" + tableName
	sharedCache.mu.RLock()
	defer sharedCache.mu.RUnlock()
	count := 0
	for k, entry := range sharedCache.byKey {
		if strings.HasSuffix(k, suffix) {
			entry.invalidate()
			count++
		}
	}
	return count
}

// invalidateFunc implements SQL scalar kd_invalidate(shadow TEXT) → INT.
func invalidateFunc(_ *sqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
	if len(args) != 1 {
		return int64(0), nil
	}
	var s string
	switch v := args[0].(type) {
	case string:
		s = v
	case []byte:
		s = string(v)
	default:
		return int64(0), nil
	}
	return int64(InvalidateCache(s)), nil
}
