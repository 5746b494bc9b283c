package kdtree_test

import (
	"math/rand"
	"sort"
	"testing"

	"github.com/davecgh/go-spew/spew"
	fuzz "github.com/google/gofuzz"
	"github.com/stretchr/testify/require"

	"github.com/viant/sqlite-kd/index/bruteforce"
	"github.com/viant/sqlite-kd/kdtree"
)

// randomPoints returns n points with coordinates in [-extent, extent) and
// IDs equal to their position.
func randomPoints(seed int64, n, dim int, extent float32) []kdtree.Point {
	f := fuzz.NewWithSeed(seed).NilChance(0).NumElements(n, n).Funcs(
		func(p *kdtree.Point, c fuzz.Continue) {
			p.Coords = make([]float32, dim)
			for i := range p.Coords {
				p.Coords[i] = (c.Float32()*2 - 1) * extent
			}
		},
	)
	var points []kdtree.Point
	f.Fuzz(&points)
	for i := range points {
		points[i].ID = int64(i)
	}
	return points
}

func oracle(t *testing.T, points []kdtree.Point) *bruteforce.Index {
	t.Helper()
	ids := make([]int64, len(points))
	vecs := make([][]float32, len(points))
	for i, p := range points {
		ids[i] = p.ID
		vecs[i] = p.Coords
	}
	idx := &bruteforce.Index{}
	require.NoError(t, idx.Build(ids, vecs))
	return idx
}

func sortInt64s(ids []int64) []int64 {
	out := append([]int64{}, ids...)
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func TestTree_MatchesBruteForceRandom(t *testing.T) {
	testCases := []struct {
		description string
		seed        int64
		n, dim      int
		extent      float32
		queries     int
		minR, maxR  float32
	}{
		{description: "2d", seed: 123, n: 5000, dim: 2, extent: 100, queries: 20, minR: 1, maxR: 30},
		{description: "3d", seed: 456, n: 1000, dim: 3, extent: 50, queries: 10, minR: 1, maxR: 20},
		{description: "5d", seed: 789, n: 2000, dim: 5, extent: 10, queries: 25, minR: 0, maxR: 8},
		{description: "1d", seed: 42, n: 500, dim: 1, extent: 10, queries: 25, minR: 0, maxR: 2},
	}
	for _, testCase := range testCases {
		points := randomPoints(testCase.seed, testCase.n, testCase.dim, testCase.extent)
		tree := buildTree(t, points)
		ref := oracle(t, points)
		rng := rand.New(rand.NewSource(testCase.seed))
		for q := 0; q < testCase.queries; q++ {
			coords := make([]float32, testCase.dim)
			for i := range coords {
				coords[i] = (rng.Float32()*2 - 1) * testCase.extent
			}
			radius := testCase.minR + rng.Float32()*(testCase.maxR-testCase.minR)
			expect, err := ref.Within(coords, radius)
			require.NoError(t, err)
			got := treeIDs(t, tree, kdtree.Point{ID: int64(testCase.n + q), Coords: coords}, radius)
			require.Equal(t, sortInt64s(expect), got, "%s query #%d radius %v", testCase.description, q, radius)
		}
	}
}

func TestTree_QueryOnStoredPoints(t *testing.T) {
	// querying exactly at stored coordinates exercises the equal-split path
	points := randomPoints(7, 300, 2, 5)
	points = append(points, points[:50]...)
	for i := range points {
		points[i].ID = int64(i)
	}
	tree := buildTree(t, points)
	for _, p := range points[:60] {
		for _, radius := range []float32{0, 0.25, 1} {
			require.Equal(t, bruteIDs(points, p, radius), treeIDs(t, tree, p, radius))
		}
	}
}

func TestTree_InvariantAfterEveryInsert(t *testing.T) {
	points := randomPoints(99, 400, 3, 20)
	tree, err := kdtree.New(3)
	require.NoError(t, err)
	for i, p := range points {
		require.NoError(t, tree.Insert(p))
		if err := tree.Validate(); err != nil {
			t.Fatalf("invariant broken after insert #%d: %v\n%s", i, err, spew.Sdump(tree.Root()))
		}
	}
	require.Equal(t, len(points), tree.Len())
}

func TestTree_InsertionOrderIndependence(t *testing.T) {
	points := randomPoints(2024, 800, 2, 10)
	shuffled := append([]kdtree.Point{}, points...)
	rng := rand.New(rand.NewSource(5))
	rng.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })
	sorted := append([]kdtree.Point{}, points...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Coords[0] < sorted[j].Coords[0] })

	trees := []*kdtree.Tree{buildTree(t, points), buildTree(t, shuffled), buildTree(t, sorted)}
	for q := 0; q < 30; q++ {
		query := kdtree.NewPoint(0, (rng.Float32()*2-1)*10, (rng.Float32()*2-1)*10)
		radius := rng.Float32() * 4
		expect := treeIDs(t, trees[0], query, radius)
		for _, tree := range trees[1:] {
			require.Equal(t, expect, treeIDs(t, tree, query, radius))
		}
	}
}

func TestTree_RadiusMonotonicity(t *testing.T) {
	points := randomPoints(31, 1000, 3, 10)
	tree := buildTree(t, points)
	rng := rand.New(rand.NewSource(31))
	for q := 0; q < 20; q++ {
		query := kdtree.NewPoint(0, (rng.Float32()*2-1)*10, (rng.Float32()*2-1)*10, (rng.Float32()*2-1)*10)
		var prev map[int64]bool
		for _, radius := range []float32{0, 0.5, 1, 2, 4, 8, 16, 40} {
			ids, err := tree.NearbyPointIDs(query, radius)
			require.NoError(t, err)
			current := make(map[int64]bool, len(ids))
			for _, id := range ids {
				current[id] = true
			}
			for id := range prev {
				require.True(t, current[id], "point %d lost when radius grew to %v", id, radius)
			}
			prev = current
		}
		require.Len(t, prev, len(points))
	}
}

func TestTree_DimensionErrorsDoNotMutate(t *testing.T) {
	points := randomPoints(8, 100, 2, 10)
	tree := buildTree(t, points)
	before := tree.Stats()
	query := kdtree.NewPoint(0, 1, 1)
	expect := treeIDs(t, tree, query, 3)

	require.Error(t, tree.Insert(kdtree.NewPoint(1000, 1, 2, 3)))
	require.Error(t, tree.Insert(kdtree.NewPoint(1001, 1)))
	_, err := tree.NearbyPoints(kdtree.NewPoint(0, 1, 1, 1), 3)
	require.Error(t, err)

	require.Equal(t, before, tree.Stats())
	require.Equal(t, expect, treeIDs(t, tree, query, 3))
	require.NoError(t, tree.Validate())
}
