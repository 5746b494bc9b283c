package vector

import (
	"encoding/binary"
	"fmt"
	"math"
)

// EncodeCoords encodes a slice of float32 values into a BLOB representation
// suitable for storage in SQLite. The encoding is a little-endian sequence
// of IEEE 754 float32 values without a length prefix; the length is derived
// from the BLOB size on decode.
func EncodeCoords(coords []float32) ([]byte, error) {
	if len(coords) == 0 {
		return nil, nil
	}
	b := make([]byte, len(coords)*4)
	for i, v := range coords {
		binary.LittleEndian.PutUint32(b[i*4:], math.Float32bits(v))
	}
	return b, nil
}

// DecodeCoords decodes a BLOB produced by EncodeCoords.
func DecodeCoords(b []byte) ([]float32, error) {
	if len(b) == 0 {
		return nil, nil
	}
	if len(b)%4 != 0 {
		return nil, fmt.Errorf("vector: invalid coords blob length %d (not multiple of 4)", len(b))
	}
	n := len(b) / 4
	coords := make([]float32, n)
	for i := 0; i < n; i++ {
		coords[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*4:]))
	}
	return coords, nil
}
