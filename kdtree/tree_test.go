package kdtree_test

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/viant/sqlite-kd/kdtree"
)

func TestNew(t *testing.T) {
	tree, err := kdtree.New(3)
	require.NoError(t, err)
	assert.Equal(t, 3, tree.Dimension())
	assert.Equal(t, 0, tree.Len())
	assert.Nil(t, tree.Root())
	assert.NoError(t, tree.Validate())

	for _, dim := range []int{0, -1} {
		_, err := kdtree.New(dim)
		assert.True(t, errors.Is(err, kdtree.ErrInvalidArgument), "New(%d) = %v", dim, err)
	}
}

func TestNewWithPoint(t *testing.T) {
	tree, err := kdtree.NewWithPoint(kdtree.NewPoint(1, 0.3, 0.5))
	require.NoError(t, err)
	assert.Equal(t, 2, tree.Dimension())
	assert.Equal(t, 1, tree.Len())
	require.NotNil(t, tree.Root())
	assert.Equal(t, int64(1), tree.Root().Point().ID)
	assert.Equal(t, 0, tree.Root().Axis())

	_, err = kdtree.NewWithPoint(kdtree.Point{ID: 7})
	assert.True(t, errors.Is(err, kdtree.ErrInvalidArgument))
}

func TestTree_InsertDirection(t *testing.T) {
	tree, err := kdtree.NewWithPoint(kdtree.NewPoint(1, 0, 0))
	require.NoError(t, err)
	require.NoError(t, tree.Insert(kdtree.NewPoint(2, -1, 5)))
	require.NoError(t, tree.Insert(kdtree.NewPoint(3, 1, 5)))
	// depth 1 splits on y
	require.NoError(t, tree.Insert(kdtree.NewPoint(4, 2, 4)))
	require.NoError(t, tree.Insert(kdtree.NewPoint(5, 2, 6)))

	root := tree.Root()
	require.NotNil(t, root.Left())
	require.NotNil(t, root.Right())
	assert.Equal(t, int64(2), root.Left().Point().ID)
	assert.Equal(t, int64(3), root.Right().Point().ID)
	assert.Equal(t, 1, root.Right().Axis())
	assert.Equal(t, int64(4), root.Right().Left().Point().ID)
	assert.Equal(t, int64(5), root.Right().Right().Point().ID)
	assert.Equal(t, 2, root.Right().Right().Depth())
	assert.Equal(t, 0, root.Right().Right().Axis())
	assert.True(t, root.Left().IsLeaf())
	assert.Equal(t, 5, tree.Len())
	assert.NoError(t, tree.Validate())
}

func TestTree_InsertDuplicatesGoRight(t *testing.T) {
	tree, err := kdtree.NewWithPoint(kdtree.NewPoint(1, 0.5, 0.5))
	require.NoError(t, err)
	require.NoError(t, tree.Insert(kdtree.NewPoint(2, 0.5, 0.5)))
	require.NoError(t, tree.Insert(kdtree.NewPoint(2, 0.5, 0.5)))

	assert.Nil(t, tree.Root().Left())
	require.NotNil(t, tree.Root().Right())
	assert.Equal(t, 3, tree.Len())
	assert.NoError(t, tree.Validate())

	points, err := tree.NearbyPoints(kdtree.NewPoint(0, 0.5, 0.5), 0)
	require.NoError(t, err)
	assert.Len(t, points, 3)
}

func TestTree_InsertDimensionMismatch(t *testing.T) {
	tree, err := kdtree.NewWithPoint(kdtree.NewPoint(1, 0.3, 0.5))
	require.NoError(t, err)

	for _, p := range []kdtree.Point{
		kdtree.NewPoint(2, 1),
		kdtree.NewPoint(3, 1, 2, 3),
		{ID: 4},
	} {
		err := tree.Insert(p)
		assert.True(t, errors.Is(err, kdtree.ErrDimensionMismatch), "Insert(%v) = %v", p, err)
	}
	assert.Equal(t, 1, tree.Len())
	assert.True(t, tree.Root().IsLeaf())
}

func TestTree_InsertEmptyWithDimension(t *testing.T) {
	tree, err := kdtree.New(2)
	require.NoError(t, err)
	require.NoError(t, tree.Insert(kdtree.NewPoint(9, 1, 1)))
	assert.Equal(t, int64(9), tree.Root().Point().ID)
	assert.Error(t, tree.Insert(kdtree.NewPoint(10, 1)))
	assert.Equal(t, 1, tree.Len())
}

func TestTree_InsertCopiesCoordinates(t *testing.T) {
	tree, err := kdtree.New(2)
	require.NoError(t, err)
	buf := []float32{1, 2}
	require.NoError(t, tree.Insert(kdtree.Point{ID: 1, Coords: buf}))
	buf[0] = 100
	assert.Equal(t, float32(1), tree.Root().Point().X())
}

func TestTree_InsertNaN(t *testing.T) {
	tree, err := kdtree.New(2)
	require.NoError(t, err)
	err = tree.Insert(kdtree.NewPoint(1, float32(math.NaN()), 0))
	assert.True(t, errors.Is(err, kdtree.ErrInvalidArgument))
	assert.Equal(t, 0, tree.Len())
}

func TestTree_SortedInsertDegenerates(t *testing.T) {
	tree, err := kdtree.New(1)
	require.NoError(t, err)
	for i := 0; i < 64; i++ {
		require.NoError(t, tree.Insert(kdtree.NewPoint(int64(i), float32(i))))
	}
	stats := tree.Stats()
	assert.Equal(t, 64, stats.Size)
	assert.Equal(t, 64, stats.Height)
	assert.Equal(t, 7, stats.IdealHeight)
	assert.NoError(t, tree.Validate())
}

func TestTree_Walk(t *testing.T) {
	tree, err := kdtree.NewWithPoint(kdtree.NewPoint(1, 0, 0))
	require.NoError(t, err)
	require.NoError(t, tree.Insert(kdtree.NewPoint(2, -1, 0)))
	require.NoError(t, tree.Insert(kdtree.NewPoint(3, 1, 0)))

	var ids []int64
	tree.Walk(func(n *kdtree.Node) bool {
		ids = append(ids, n.Point().ID)
		return true
	})
	assert.Equal(t, []int64{1, 2, 3}, ids)

	ids = ids[:0]
	tree.Walk(func(n *kdtree.Node) bool {
		ids = append(ids, n.Point().ID)
		return false
	})
	assert.Equal(t, []int64{1}, ids)
}

func TestPoint_Accessors(t *testing.T) {
	p := kdtree.NewPoint(5, 1, 2, 3)
	assert.Equal(t, 3, p.Dimension())
	assert.Equal(t, float32(1), p.X())
	assert.Equal(t, float32(2), p.Y())
	assert.Equal(t, float32(3), p.Z())
	assert.Equal(t, float32(2), p.Coord(1))
	assert.Panics(t, func() { kdtree.NewPoint(1, 1).Y() })
}
