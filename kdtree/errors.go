package kdtree

import "errors"

var (
	// ErrDimensionMismatch reports a point whose coordinate count differs from
	// the tree dimension.
	ErrDimensionMismatch = errors.New("dimension mismatch")
	// ErrInvalidArgument reports an unusable argument such as a negative radius.
	ErrInvalidArgument = errors.New("invalid argument")
)
