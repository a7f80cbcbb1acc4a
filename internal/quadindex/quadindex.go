// Package quadindex implements the mixed quad/bi-partition spatial tree
// that answers "which shapes touch this point" in O(log N) expected
// time. The tree is built once from a set of geo.Shape values and a
// rectangular world bound, then read by any number of concurrent
// goroutines; insertion is not safe to call concurrently with itself or
// with retrieval.
package quadindex

import (
	"fmt"
	"strings"

	"github.com/usdot-its/ppm/internal/geo"
)

// Config holds the process-global, set-once tuning parameters for a
// tree. Zero values for FuzzyWidth/FuzzyHeight mean "derive from the
// node's crisp width/height divided by 10", matching the reference
// default.
type Config struct {
	MinLevels   int     // below this depth, a node always splits on insertion
	MaxLevels   int     // from this depth on, a node splits only when it holds more than MaxElements
	MinDegrees  float64 // minimum half-width/half-height for a directional split
	MaxElements int     // leaf occupancy above which a node at depth >= MaxLevels is force-split
	FuzzyWidth  float64 // fixed fuzzy extension in degrees longitude, or 0 for crispWidth/10
	FuzzyHeight float64 // fixed fuzzy extension in degrees latitude, or 0 for crispHeight/10
}

// DefaultConfig mirrors spec §4.2's defaults.
func DefaultConfig() Config {
	return Config{
		MinLevels:   7,
		MaxLevels:   9,
		MinDegrees:  0.003,
		MaxElements: 32,
	}
}

// element is a shape stored at a leaf, paired with an opaque id that
// Retrieve and Lookup return so callers can refer back to their record.
type element struct {
	shape geo.Shape
	id    uint64
}

// Node is one node of the tree: either an internal node with exactly 2
// or 4 children, or a leaf with an element set. Both states are never
// populated at once.
type Node struct {
	crisp geo.Bounds
	fuzzy geo.Bounds
	depth int

	children []*Node
	elements []element

	cfg *Config
}

// Tree is the built, read-only spatial index plus the config it was
// built with.
type Tree struct {
	root *Node
	cfg  Config
}

// New builds an empty tree over world bounds, with root fuzzy bounds
// widened per cfg's fuzzy parameters (or the crisp/10 default).
func New(world geo.Bounds, cfg Config) *Tree {
	t := &Tree{cfg: cfg}
	t.root = newNode(world, 0, &t.cfg)
	return t
}

func newNode(crisp geo.Bounds, depth int, cfg *Config) *Node {
	return &Node{
		crisp: crisp,
		fuzzy: fuzzyBounds(crisp, cfg),
		depth: depth,
		cfg:   cfg,
	}
}

func fuzzyBounds(crisp geo.Bounds, cfg *Config) geo.Bounds {
	fw := cfg.FuzzyWidth
	if fw == 0 {
		fw = crisp.Width() / 10
	}
	fh := cfg.FuzzyHeight
	if fh == 0 {
		fh = crisp.Height() / 10
	}
	return geo.NewBounds(
		geo.NewPoint(crisp.SW.Lat-fh, crisp.SW.Lon-fw),
		geo.NewPoint(crisp.NE.Lat+fh, crisp.NE.Lon+fw),
	)
}

// Insert places shape (tagged with id, an opaque caller identifier) into
// every leaf whose fuzzy bounds it touches. Total: silently does nothing
// if the shape touches no part of the tree. Not safe to call
// concurrently with Insert or Retrieve.
func (t *Tree) Insert(id uint64, shape geo.Shape) {
	type work struct{ n *Node }
	stack := []work{{t.root}}

	for len(stack) > 0 {
		w := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		n := w.n

		if !shape.Touches(n.fuzzy) {
			continue
		}

		if len(n.children) > 0 {
			for _, c := range n.children {
				if shape.Touches(c.fuzzy) {
					stack = append(stack, work{c})
				}
			}
			continue
		}

		switch {
		case n.depth < n.cfg.MinLevels:
			n.split(true)
			for _, c := range n.children {
				if shape.Touches(c.fuzzy) {
					stack = append(stack, work{c})
				}
			}
		case n.depth < n.cfg.MaxLevels:
			n.split(false)
			if len(n.children) > 0 {
				for _, c := range n.children {
					if shape.Touches(c.fuzzy) {
						stack = append(stack, work{c})
					}
				}
			} else {
				n.elements = append(n.elements, element{shape: shape, id: id})
			}
		default:
			n.elements = append(n.elements, element{shape: shape, id: id})
			if len(n.elements) > n.cfg.MaxElements {
				n.split(true)
				if len(n.children) > 0 {
					n.redistribute()
				}
			}
		}
	}
}

// split attempts to partition n per spec §4.2's split policy. If force
// is false and neither half-width nor half-height clears MinDegrees,
// split is a no-op (n stays a leaf). If force is true in that case, a
// quad split happens anyway; otherwise force changes nothing, and the
// quad or bi-split chosen by MinDegrees is made.
func (n *Node) split(force bool) {
	if len(n.children) > 0 {
		return
	}
	halfW := n.crisp.Width() / 2
	halfH := n.crisp.Height() / 2
	minDeg := n.cfg.MinDegrees

	quadOK := halfW >= minDeg && halfH >= minDeg
	heightOK := halfH >= minDeg
	widthOK := halfW >= minDeg

	switch {
	case quadOK:
		n.quadSplit()
	case heightOK:
		n.horizontalSplit()
	case widthOK:
		n.verticalSplit()
	case force:
		n.quadSplit()
	}
}

func (n *Node) quadSplit() {
	mid := n.crisp.Center()
	nw := geo.NewBounds(geo.NewPoint(mid.Lat, n.crisp.SW.Lon), geo.NewPoint(n.crisp.NE.Lat, mid.Lon))
	ne := geo.NewBounds(mid, n.crisp.NE)
	sw := geo.NewBounds(n.crisp.SW, mid)
	se := geo.NewBounds(geo.NewPoint(n.crisp.SW.Lat, mid.Lon), geo.NewPoint(mid.Lat, n.crisp.NE.Lon))
	n.children = []*Node{
		newNode(nw, n.depth+1, n.cfg),
		newNode(ne, n.depth+1, n.cfg),
		newNode(sw, n.depth+1, n.cfg),
		newNode(se, n.depth+1, n.cfg),
	}
}

func (n *Node) horizontalSplit() {
	mid := n.crisp.Center()
	north := geo.NewBounds(geo.NewPoint(mid.Lat, n.crisp.SW.Lon), n.crisp.NE)
	south := geo.NewBounds(n.crisp.SW, geo.NewPoint(mid.Lat, n.crisp.NE.Lon))
	n.children = []*Node{
		newNode(north, n.depth+1, n.cfg),
		newNode(south, n.depth+1, n.cfg),
	}
}

func (n *Node) verticalSplit() {
	mid := n.crisp.Center()
	west := geo.NewBounds(n.crisp.SW, geo.NewPoint(n.crisp.NE.Lat, mid.Lon))
	east := geo.NewBounds(geo.NewPoint(n.crisp.SW.Lat, mid.Lon), n.crisp.NE)
	n.children = []*Node{
		newNode(west, n.depth+1, n.cfg),
		newNode(east, n.depth+1, n.cfg),
	}
}

// redistribute pushes n's elements down into whichever children's fuzzy
// bounds they touch, then empties n's own element set. Called right
// after a forced split triggered by exceeding MaxElements.
func (n *Node) redistribute() {
	old := n.elements
	n.elements = nil
	for _, el := range old {
		for _, c := range n.children {
			if el.shape.Touches(c.fuzzy) {
				c.elements = append(c.elements, el)
			}
		}
	}
}

// Retrieve returns every shape id stored in the leaf whose crisp bounds
// contain p. Never fails: a point outside the world returns nil.
// Children's crisp bounds are disjoint by construction, so the first
// match at each level is unambiguous.
func (t *Tree) Retrieve(p geo.Point) []uint64 {
	ids, _ := t.retrieve(p)
	return ids
}

// Lookup descends to the leaf containing p and returns its raw elements
// (shape + id pairs): nil if p is outside the world, an empty slice if
// the leaf is empty.
func (t *Tree) Lookup(p geo.Point) []struct {
	ID    uint64
	Shape geo.Shape
} {
	n := t.root
	if !n.crisp.Contains(p) {
		return nil
	}
	for len(n.children) > 0 {
		next := firstContaining(n.children, p)
		if next == nil {
			break
		}
		n = next
	}
	out := make([]struct {
		ID    uint64
		Shape geo.Shape
	}, len(n.elements))
	for i, el := range n.elements {
		out[i] = struct {
			ID    uint64
			Shape geo.Shape
		}{ID: el.id, Shape: el.shape}
	}
	return out
}

func (t *Tree) retrieve(p geo.Point) ([]uint64, *Node) {
	n := t.root
	if !n.crisp.Contains(p) {
		return nil, nil
	}
	for len(n.children) > 0 {
		next := firstContaining(n.children, p)
		if next == nil {
			return nil, n
		}
		n = next
	}
	ids := make([]uint64, len(n.elements))
	for i, el := range n.elements {
		ids[i] = el.id
	}
	return ids, n
}

func firstContaining(children []*Node, p geo.Point) *Node {
	for _, c := range children {
		if c.crisp.Contains(p) {
			return c
		}
	}
	return nil
}

// AnyContains reports whether any shape retrieved for p actually
// contains p (as opposed to merely having been stored in p's leaf via
// fuzzy insertion slack). This is the geofence containment test the
// message handler consults.
func (t *Tree) AnyContains(p geo.Point) bool {
	for _, e := range t.Lookup(p) {
		if e.Shape.Contains(p) {
			return true
		}
	}
	return false
}

// String renders a human-readable dump of the tree (level, element
// count, crisp/fuzzy bounds per node), used by the ppm-quaddump CLI.
func (t *Tree) String() string {
	var b strings.Builder
	t.root.write(&b)
	return b.String()
}

func (n *Node) write(b *strings.Builder) {
	indent := strings.Repeat("  ", n.depth)
	if len(n.children) > 0 {
		fmt.Fprintf(b, "%slevel=%d children=%d crisp=%v fuzzy=%v\n", indent, n.depth, len(n.children), n.crisp, n.fuzzy)
		for _, c := range n.children {
			c.write(b)
		}
		return
	}
	fmt.Fprintf(b, "%slevel=%d elements=%d crisp=%v fuzzy=%v\n", indent, n.depth, len(n.elements), n.crisp, n.fuzzy)
}
