package vector

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// ParseCoords parses a textual point. Accepted forms are a JSON array
// ("[1.5, 2]"), a comma separated list ("1.5,2"), a single number, and a
// base64 encoded coords BLOB.
func ParseCoords(raw string) ([]float32, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil, fmt.Errorf("vector: coords string is empty")
	}
	if strings.HasPrefix(s, "[") {
		var floats []float64
		if err := json.Unmarshal([]byte(s), &floats); err != nil {
			return nil, fmt.Errorf("vector: invalid JSON coords %q: %w", s, err)
		}
		coords := make([]float32, len(floats))
		for i, f := range floats {
			coords[i] = float32(f)
		}
		return coords, nil
	}
	if strings.Contains(s, ",") {
		parts := strings.Split(s, ",")
		coords := make([]float32, 0, len(parts))
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p == "" {
				continue
			}
			f, err := strconv.ParseFloat(p, 32)
			if err != nil {
				return nil, fmt.Errorf("vector: invalid coordinate %q: %w", p, err)
			}
			coords = append(coords, float32(f))
		}
		if len(coords) > 0 {
			return coords, nil
		}
	}
	if f, err := strconv.ParseFloat(s, 32); err == nil {
		return []float32{float32(f)}, nil
	}
	if b, err := base64.StdEncoding.DecodeString(s); err == nil {
		if coords, err := DecodeCoords(b); err == nil && len(coords) > 0 {
			return coords, nil
		}
	}
	return nil, fmt.Errorf("vector: coords must be a JSON/CSV float list or base64-encoded blob")
}
