package quadindex

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/usdot-its/ppm/internal/geo"
)

func smallWorld() geo.Bounds {
	return geo.NewBounds(geo.NewPoint(40, -84), geo.NewPoint(41, -83))
}

func TestInsertAndRetrieveFindsContainingShape(t *testing.T) {
	world := smallWorld()
	tree := New(world, DefaultConfig())

	circle := geo.NewCircle(geo.NewPoint(40.5, -83.5), 1000)
	tree.Insert(1, circle)

	assert.True(t, tree.AnyContains(geo.NewPoint(40.5, -83.5)))
	assert.False(t, tree.AnyContains(geo.NewPoint(40.01, -83.99)))
}

func TestRetrievalOutsideWorldIsEmpty(t *testing.T) {
	tree := New(smallWorld(), DefaultConfig())
	tree.Insert(1, geo.NewCircle(geo.NewPoint(40.5, -83.5), 100))

	assert.Empty(t, tree.Retrieve(geo.NewPoint(0, 0)))
}

func TestCrispPartitionsAreDisjointAndExhaustive(t *testing.T) {
	// Invariant 1: for every point inside the world, retrieval descends
	// to exactly one leaf. We verify by checking that at every level the
	// point matches exactly one child's crisp bounds.
	cfg := DefaultConfig()
	cfg.MaxElements = 2
	cfg.MinLevels = 2
	cfg.MaxLevels = 4
	tree := New(smallWorld(), cfg)

	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 50; i++ {
		tree.Insert(uint64(i), randomCircle(rng, smallWorld()))
	}

	for i := 0; i < 200; i++ {
		p := randomPoint(rng, smallWorld())
		n := tree.root
		for len(n.children) > 0 {
			matches := 0
			var next *Node
			for _, c := range n.children {
				if c.crisp.Contains(p) {
					matches++
					if next == nil {
						next = c
					}
				}
			}
			require.Equal(t, 1, matches, "point inside a node must match exactly one child")
			n = next
		}
	}
}

func TestFuzzyInsertionCoversBoundaryShapes(t *testing.T) {
	// Invariant 2: every leaf whose fuzzy bounds touch an inserted shape
	// must contain it. We check this indirectly: a circle straddling a
	// split boundary must be retrievable from points on both sides.
	cfg := DefaultConfig()
	cfg.MinLevels = 1
	cfg.MaxLevels = 1
	tree := New(smallWorld(), cfg)

	center := smallWorld().Center()
	circle := geo.NewCircle(center, 2000) // straddles the quad split at center
	tree.Insert(1, circle)

	left := geo.NewPoint(center.Lat, center.Lon-0.001)
	right := geo.NewPoint(center.Lat, center.Lon+0.001)
	assert.True(t, tree.AnyContains(left))
	assert.True(t, tree.AnyContains(right))
}

func TestForceSplitOnMaxElementsRedistributes(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MinLevels = 0
	cfg.MaxLevels = 0
	cfg.MaxElements = 3
	tree := New(smallWorld(), cfg)

	rng := rand.New(rand.NewSource(2))
	for i := 0; i < 20; i++ {
		tree.Insert(uint64(i), randomCircle(rng, smallWorld()))
	}
	assert.Greater(t, len(tree.root.children), 0, "root should have split after exceeding MaxElements")
	assert.Empty(t, tree.root.elements, "root elements should have been redistributed to its children")
}

func TestQuadPropertyNoFalseNegatives(t *testing.T) {
	// Property test from spec §8: the union of elements returned by
	// retrieval must be a superset of the rectangles actually containing
	// each query point (false positives allowed, false negatives are not).
	cfg := DefaultConfig()
	cfg.MaxElements = 4
	tree := New(smallWorld(), cfg)

	rng := rand.New(rand.NewSource(3))
	type rect struct {
		id   uint64
		area geo.Area
	}
	var rects []rect
	for i := 0; i < 40; i++ {
		sw := randomPoint(rng, smallWorld())
		ne := geo.NewPoint(sw.Lat+rng.Float64()*0.05, sw.Lon+rng.Float64()*0.05)
		b := geo.NewBounds(sw, ne)
		area := geo.Area{Corners: [4]geo.Point{b.NW(), b.NE, b.SE(), b.SW}}
		id := uint64(i + 1)
		tree.Insert(id, area)
		rects = append(rects, rect{id: id, area: area})
	}

	for i := 0; i < 100; i++ {
		p := randomPoint(rng, smallWorld())
		retrieved := make(map[uint64]bool)
		for _, id := range tree.Retrieve(p) {
			retrieved[id] = true
		}
		for _, r := range rects {
			if r.area.Contains(p) {
				assert.True(t, retrieved[r.id], "rectangle %d contains query point but was not retrieved", r.id)
			}
		}
	}
}

func TestSplitPolicyPrefersQuadOverBi(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MinLevels = 0
	n := newNode(smallWorld(), 0, &cfg)
	n.split(false)
	assert.Len(t, n.children, 4, "both half-width and half-height clear MinDegrees, so a quad split is expected")
}

func TestSplitPolicyFallsBackToBiSplit(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MinDegrees = 1
	// Half-height (5) clears MinDegrees but half-width (0.0005) does not,
	// so only a horizontal (N/S) bi-split is legal.
	narrow := geo.NewBounds(geo.NewPoint(30, -84), geo.NewPoint(40, -83.999))
	n := newNode(narrow, 0, &cfg)
	n.split(false)
	assert.Len(t, n.children, 2)
}

func randomPoint(rng *rand.Rand, b geo.Bounds) geo.Point {
	lat := b.SW.Lat + rng.Float64()*b.Height()
	lon := b.SW.Lon + rng.Float64()*b.Width()
	return geo.NewPoint(lat, lon)
}

func randomCircle(rng *rand.Rand, b geo.Bounds) geo.Circle {
	return geo.NewCircle(randomPoint(rng, b), 50+rng.Float64()*500)
}
