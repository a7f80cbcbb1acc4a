package geo

// Vertex is a named point shared by every edge incident on it. Per
// DESIGN.md's ownership note, the vertex<->edge cycle from the reference
// implementation is broken here: a Vertex tracks the UIDs of its incident
// edges rather than back-pointers, so callers resolve an edge through the
// loader's edge slab instead of following a pointer cycle.
type Vertex struct {
	Point
	UID        uint64
	edgeUIDs   []uint64
	edgeUIDSet map[uint64]struct{}
}

// NewVertex constructs a Vertex with no incident edges.
func NewVertex(uid uint64, p Point) *Vertex {
	return &Vertex{Point: p, UID: uid}
}

// AddEdge records uid as incident on v. A no-op if already recorded.
func (v *Vertex) AddEdge(uid uint64) {
	if v.edgeUIDSet == nil {
		v.edgeUIDSet = make(map[uint64]struct{})
	}
	if _, ok := v.edgeUIDSet[uid]; ok {
		return
	}
	v.edgeUIDSet[uid] = struct{}{}
	v.edgeUIDs = append(v.edgeUIDs, uid)
}

// Degree returns the number of edges incident on v.
func (v *Vertex) Degree() int { return len(v.edgeUIDs) }

// IncidentEdges returns the UIDs of edges incident on v, in insertion
// order. The returned slice is borrowed and must not be mutated.
func (v *Vertex) IncidentEdges() []uint64 { return v.edgeUIDs }

// UpdateLocation replaces v's coordinate in place.
func (v *Vertex) UpdateLocation(p Point) { v.Point = p }

// IsSamePoint reports whether v and o occupy the same coordinate within
// Epsilon.
func (v *Vertex) IsSamePoint(o *Vertex) bool { return v.Point.Equal(o.Point) }
