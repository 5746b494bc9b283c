package engine

import (
	"database/sql/driver"
	"encoding/binary"
	"fmt"
	"math"
	"strings"

	sqlite "modernc.org/sqlite"

	"github.com/viant/sqlite-kd/kdtree"
)

// RegisterPointFunctions registers kd_dist2, kd_dist and kd_within with the
// driver so they are available on connections opened after this call.
// Existing open connections will not see new functions. Registering a name a
// second time is not an error.
func RegisterPointFunctions() error {
	if err := tolerate("kd_dist2", sqlite.RegisterDeterministicScalarFunction("kd_dist2", 2, kdDist2Impl)); err != nil {
		return err
	}
	if err := tolerate("kd_dist", sqlite.RegisterDeterministicScalarFunction("kd_dist", 2, kdDistImpl)); err != nil {
		return err
	}
	return tolerate("kd_within", sqlite.RegisterDeterministicScalarFunction("kd_within", 3, kdWithinImpl))
}

func tolerate(name string, err error) error {
	if err == nil || strings.Contains(err.Error(), "already registered") {
		return nil
	}
	return fmt.Errorf("engine: register %s: %w", name, err)
}

func asCoords(arg driver.Value) ([]float32, error) {
	switch v := arg.(type) {
	case nil:
		return nil, nil
	case []byte:
		return decodeCoords(v)
	default:
		return nil, fmt.Errorf("kd: unsupported argument type %T for coords; want BLOB", arg)
	}
}

func asFloat(arg driver.Value) (float64, bool, error) {
	switch v := arg.(type) {
	case nil:
		return 0, false, nil
	case float64:
		return v, true, nil
	case int64:
		return float64(v), true, nil
	default:
		return 0, false, fmt.Errorf("kd: unsupported argument type %T for radius; want REAL", arg)
	}
}

func pair(name string, args []driver.Value) ([]float32, []float32, error) {
	a, err := asCoords(args[0])
	if err != nil {
		return nil, nil, err
	}
	b, err := asCoords(args[1])
	if err != nil {
		return nil, nil, err
	}
	if a == nil || b == nil {
		return nil, nil, nil
	}
	if len(a) != len(b) {
		return nil, nil, fmt.Errorf("%s: %w: %d vs %d", name, kdtree.ErrDimensionMismatch, len(a), len(b))
	}
	return a, b, nil
}

func kdDist2Impl(_ *sqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
	if len(args) != 2 {
		return nil, fmt.Errorf("kd_dist2: expected 2 arguments, got %d", len(args))
	}
	a, b, err := pair("kd_dist2", args)
	if err != nil || a == nil {
		return nil, err
	}
	return kdtree.SquaredDistance(a, b), nil
}

func kdDistImpl(_ *sqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
	if len(args) != 2 {
		return nil, fmt.Errorf("kd_dist: expected 2 arguments, got %d", len(args))
	}
	a, b, err := pair("kd_dist", args)
	if err != nil || a == nil {
		return nil, err
	}
	return math.Sqrt(kdtree.SquaredDistance(a, b)), nil
}

func kdWithinImpl(_ *sqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
	if len(args) != 3 {
		return nil, fmt.Errorf("kd_within: expected 3 arguments, got %d", len(args))
	}
	radius, ok, err := asFloat(args[2])
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	if radius < 0 || math.IsNaN(radius) {
		return nil, fmt.Errorf("kd_within: %w: radius %v", kdtree.ErrInvalidArgument, radius)
	}
	a, b, err := pair("kd_within", args)
	if err != nil || a == nil {
		return nil, err
	}
	if kdtree.InRange(a, b, float32(radius)) {
		return int64(1), nil
	}
	return int64(0), nil
}

// Local decoder; the vector package imports engine in its tests.
func decodeCoords(b []byte) ([]float32, error) {
	if len(b) == 0 {
		return nil, nil
	}
	if len(b)%4 != 0 {
		return nil, fmt.Errorf("kd: invalid coords blob length %d", len(b))
	}
	n := len(b) / 4
	v := make([]float32, n)
	for i := 0; i < n; i++ {
		v[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*4:]))
	}
	return v, nil
}
