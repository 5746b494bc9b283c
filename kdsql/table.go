package kdsql

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"

	"k8s.io/klog/v2"
	"modernc.org/sqlite/vtab"

	"github.com/viant/sqlite-kd/kdtree"
	"github.com/viant/sqlite-kd/vector"
)

const shadowPrefix = "_kd_"

// Table represents a single kd virtual table instance.
type Table struct {
	db        *sql.DB
	dbName    string
	tableName string
	shadow    string // qualified shadow table name (e.g. "main._kd_near")
	dim       int    // declared dimension, 0 when taken from the first row

	shadowMu    sync.Mutex
	shadowReady bool

	dbPathOnce sync.Once
	dbPath     string
}

const (
	idxScan = iota
	idxRadius
)

// BestIndex pushes down MATCH on coords together with an equality constraint
// on the hidden radius column. Without constraints the table lists its rows.
func (t *Table) BestIndex(info *vtab.IndexInfo) error {
	var (
		matchConstraint  *vtab.Constraint
		radiusConstraint *vtab.Constraint
	)
	for i := range info.Constraints {
		c := &info.Constraints[i]
		if !c.Usable {
			continue
		}
		switch {
		case c.Column == 1 && c.Op == vtab.OpMATCH:
			matchConstraint = c
		case c.Column == 2 && c.Op == vtab.OpEQ:
			radiusConstraint = c
		}
	}

	switch {
	case matchConstraint == nil:
		info.IdxNum = idxScan
	case radiusConstraint == nil:
		return fmt.Errorf("kd: radius constraint is required with MATCH")
	default:
		matchConstraint.ArgIndex = 0
		matchConstraint.Omit = true
		radiusConstraint.ArgIndex = 1
		radiusConstraint.Omit = true
		info.IdxNum = idxRadius
	}
	return nil
}

// Open allocates a new cursor.
func (t *Table) Open() (vtab.Cursor, error) { return &Cursor{table: t}, nil }

// Disconnect cleans up per-connection resources.
func (t *Table) Disconnect() error { return nil }

// Destroy drops the cached tree; the shadow table persists.
func (t *Table) Destroy() error {
	InvalidateCache(t.shadow)
	return nil
}

// ensureShadow ensures the per-table shadow table and its invalidation
// triggers exist.
func (t *Table) ensureShadow() error {
	if t.db == nil {
		return fmt.Errorf("kd: db is nil")
	}
	t.shadowMu.Lock()
	defer t.shadowMu.Unlock()
	if t.shadowReady {
		return nil
	}
	t.shadow = t.qualifiedShadow()
	if err := createShadow(t.db, t.shadow); err != nil {
		return err
	}
	t.shadowReady = true
	return nil
}

// EnsureShadow creates the shadow table and triggers backing the kd virtual
// table named table, so that rows can be loaded before the first query.
func EnsureShadow(db *sql.DB, table string) error {
	if db == nil {
		return fmt.Errorf("kd: db is nil")
	}
	return createShadow(db, ShadowName(table))
}

// ShadowName returns the shadow table name for a kd virtual table.
func ShadowName(table string) string { return shadowPrefix + table }

func createShadow(db *sql.DB, shadow string) error {
	if _, err := db.Exec(fmt.Sprintf(`
CREATE TABLE IF NOT EXISTS %s (
    id INTEGER NOT NULL,
    coords BLOB NOT NULL
);
`, shadow)); err != nil {
		return err
	}
	trigBase := sanitizeName("trg_kd_" + tableNameFromShadow(shadow))
	inv := `SELECT kd_invalidate(` + quoteLiteral(shadow) + `);`
	for _, event := range []string{"INSERT", "UPDATE", "DELETE"} {
		stmt := fmt.Sprintf(`CREATE TRIGGER IF NOT EXISTS %s_%s AFTER %s ON %s BEGIN %s END;`,
			trigBase, strings.ToLower(event[:3]), event, shadow, inv)
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// qualifiedShadow returns a fully-qualified shadow table name.
func (t *Table) qualifiedShadow() string {
	base := shadowPrefix + t.tableName
	if strings.TrimSpace(t.dbName) == "" {
		return base
	}
	return t.dbName + "." + base
}

func tableNameFromShadow(shadow string) string {
	if shadow == "" {
		return ""
	}
	if i := strings.Index(shadow, "."+shadowPrefix); i >= 0 {
		return shadow[i+len("."+shadowPrefix):]
	}
	if strings.HasPrefix(shadow, shadowPrefix) {
		return strings.TrimPrefix(shadow, shadowPrefix)
	}
	return ""
}

func resolveDbPath(ctx context.Context, db *sql.DB, dbName string) (string, error) {
	if db == nil {
		return "", fmt.Errorf("kd: db is nil")
	}
	if dbName == "" {
		dbName = "main"
	}
	rows, err := db.QueryContext(ctx, `SELECT name, file FROM pragma_database_list`)
	if err != nil {
		return "", err
	}
	defer rows.Close()
	for rows.Next() {
		var name, file string
		if err := rows.Scan(&name, &file); err != nil {
			return "", err
		}
		if name != dbName {
			continue
		}
		if file == "" {
			return name, nil
		}
		return file, nil
	}
	if err := rows.Err(); err != nil {
		return "", err
	}
	return dbName, nil
}

func (t *Table) cachedDbPath(ctx context.Context) string {
	t.dbPathOnce.Do(func() {
		path, err := resolveDbPath(ctx, t.db, t.dbName)
		if err != nil {
			klog.V(2).InfoS("cannot resolve database path", "table", t.tableName, "err", err)
			path = t.dbName
			if path == "" {
				path = "main"
			}
		}
		t.dbPath = path
	})
	return t.dbPath
}

// ensureTree returns the cached snapshot for this table, building it from
// the shadow rows when missing. Only one caller builds at a time; the others
// wait for its result.
func (t *Table) ensureTree(ctx context.Context) (*snapshot, error) {
	if err := t.ensureShadow(); err != nil {
		return nil, err
	}
	entry := getCacheEntry(cacheKey(t.cachedDbPath(ctx), t.tableName))
	for {
		if snap := entry.get(); snap != nil {
			return snap, nil
		}
		if entry.startBuild() {
			break
		}
		if snap := entry.waitForBuild(); snap != nil {
			return snap, nil
		}
	}
	defer entry.finishBuild()

	gen := entry.generation()
	snap, err := t.loadSnapshot(ctx)
	if err != nil {
		return nil, err
	}
	cached := entry.setIfCurrent(snap, gen)
	size, height := 0, 0
	if snap.tree != nil {
		stats := snap.tree.Stats()
		size, height = stats.Size, stats.Height
	}
	klog.V(2).InfoS("built kd tree", "table", t.tableName, "size", size, "height", height, "cached", cached)
	return snap, nil
}

// loadSnapshot inserts the shadow rows into a new tree in rowid order.
func (t *Table) loadSnapshot(ctx context.Context) (*snapshot, error) {
	rows, err := t.db.QueryContext(ctx, fmt.Sprintf("SELECT rowid, id, coords FROM %s ORDER BY rowid", t.shadow))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	snap := &snapshot{ids: make(map[int64]int64), dim: t.dim}
	for rows.Next() {
		var (
			rowid, id int64
			blob      []byte
		)
		if err := rows.Scan(&rowid, &id, &blob); err != nil {
			return nil, err
		}
		coords, err := vector.DecodeCoords(blob)
		if err != nil {
			return nil, fmt.Errorf("kd: %s row %d: %w", t.shadow, rowid, err)
		}
		if len(coords) == 0 {
			return nil, fmt.Errorf("kd: %s row %d: %w: empty coords", t.shadow, rowid, kdtree.ErrInvalidArgument)
		}
		if snap.tree == nil {
			if snap.dim == 0 {
				snap.dim = len(coords)
			}
			if snap.tree, err = kdtree.New(snap.dim); err != nil {
				return nil, err
			}
		}
		if err := snap.tree.Insert(kdtree.Point{ID: rowid, Coords: coords}); err != nil {
			return nil, fmt.Errorf("kd: %s row %d: %w", t.shadow, rowid, err)
		}
		snap.ids[rowid] = id
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if snap.tree == nil && snap.dim > 0 {
		if snap.tree, err = kdtree.New(snap.dim); err != nil {
			return nil, err
		}
	}
	return snap, nil
}
