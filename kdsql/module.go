package kdsql

import (
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"sync"

	sqlite "modernc.org/sqlite"
	"modernc.org/sqlite/vtab"
)

// Module implements vtab.Module for the kd virtual table.
type Module struct {
	db *sql.DB
}

var registerInvalidateOnce sync.Once

// Register registers the kd virtual table module with the provided *sql.DB,
// along with the kd_invalidate scalar used by shadow triggers.
//
// Module registration is process-wide: the module keeps serving the database
// passed to the first successful Register, and later calls with another
// *sql.DB return nil without rebinding it.
func Register(db *sql.DB) error {
	if db == nil {
		return fmt.Errorf("kd: db is nil")
	}
	// Global for new connections; idempotent.
	registerInvalidateOnce.Do(func() { _ = sqlite.RegisterDeterministicScalarFunction("kd_invalidate", 1, invalidateFunc) })
	mod := &Module{db: db}
	if err := vtab.RegisterModule(db, "kd", mod); err != nil {
		if !strings.Contains(err.Error(), "already registered") {
			return err
		}
	}
	return nil
}

type tableOptions struct {
	dim int
}

// parseOptions reads key=value module arguments, e.g. USING kd(dim=3).
func parseOptions(args []string) (tableOptions, error) {
	var opts tableOptions
	for _, arg := range args {
		arg = strings.TrimSpace(arg)
		if arg == "" {
			continue
		}
		key, value, ok := strings.Cut(arg, "=")
		if !ok {
			return opts, fmt.Errorf("kd: invalid option %q, want key=value", arg)
		}
		key = strings.ToLower(strings.TrimSpace(key))
		value = strings.Trim(strings.TrimSpace(value), `'"`)
		switch key {
		case "dim", "dimension":
			dim, err := strconv.Atoi(value)
			if err != nil || dim <= 0 {
				return opts, fmt.Errorf("kd: invalid dim %q", value)
			}
			opts.dim = dim
		default:
			return opts, fmt.Errorf("kd: unknown option %q", key)
		}
	}
	return opts, nil
}

// Create initializes a kd table instance. The shadow table is created on
// first use to avoid cross-connection DDL during xCreate.
func (m *Module) Create(ctx vtab.Context, args []string) (vtab.Table, error) {
	return m.connect(ctx, args, "CREATE")
}

// Connect attaches to an existing kd table instance.
func (m *Module) Connect(ctx vtab.Context, args []string) (vtab.Table, error) {
	return m.connect(ctx, args, "CONNECT")
}

func (m *Module) connect(ctx vtab.Context, args []string, op string) (vtab.Table, error) {
	if len(args) < 3 {
		return nil, fmt.Errorf("kd: %s expects at least 3 args, got %d", op, len(args))
	}
	if err := ctx.EnableConstraintSupport(); err != nil {
		return nil, fmt.Errorf("kd: EnableConstraintSupport failed: %w", err)
	}
	opts, err := parseOptions(args[3:])
	if err != nil {
		return nil, err
	}
	if err := ctx.Declare(fmt.Sprintf("CREATE TABLE %s(id INTEGER, coords BLOB, radius REAL HIDDEN, distance REAL HIDDEN)", args[2])); err != nil {
		return nil, err
	}
	t := &Table{db: m.db, dbName: args[1], tableName: args[2], dim: opts.dim}
	t.shadow = t.qualifiedShadow()
	return t, nil
}
