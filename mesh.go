package hemesh

import (
	"fmt"
	"sort"

	"github.com/go-gl/mathgl/mgl64"
)

// HalfEdgeMesh owns every vertex, half-edge and face of one triangulated
// surface. The three tables are the sole strong owners of their entities;
// everything else refers by vertex id, edge key or face key and resolves
// through them. A mesh is built once from an indexed triangle mesh and
// mutated only through Contract. It is not safe for concurrent use.
type HalfEdgeMesh struct {
	vertices map[int]*Vertex
	edges    map[EdgeKey]*HalfEdge
	faces    map[FaceKey]*Face
}

// NewHalfEdgeMesh builds the full half-edge graph from an indexed triangle
// mesh in one pass. For every triangle it creates (or adopts) the three
// directed half-edges, closes their next cycle, registers the face and
// links each half-edge to its opposite direction. The reverse of every
// directed edge is always registered: where no adjacent triangle claims
// it, it stays a faceless boundary stub, so interior and boundary edges
// alike carry a usable flip.
//
// Triangles sharing an edge must be wound consistently; a directed edge
// claimed by two triangles, a repeated face, a collinear triangle or an
// out-of-range index fails construction.
func NewHalfEdgeMesh(tm TriMesh) (*HalfEdgeMesh, error) {
	if len(tm.Indices)%3 != 0 {
		return nil, fmt.Errorf("hemesh: index count %d is not a multiple of 3", len(tm.Indices))
	}

	m := &HalfEdgeMesh{
		vertices: make(map[int]*Vertex),
		edges:    make(map[EdgeKey]*HalfEdge),
		faces:    make(map[FaceKey]*Face),
	}

	for t := 0; t+2 < len(tm.Indices); t += 3 {
		var corners [3]*Vertex
		for i, id := range tm.Indices[t : t+3] {
			if id < 0 || id >= len(tm.Positions) {
				return nil, fmt.Errorf("hemesh: triangle %d: index %d out of range", t/3, id)
			}
			v, ok := m.vertices[id]
			if !ok {
				v = &Vertex{ID: id, Position: tm.Positions[id]}
				m.vertices[id] = v
			}
			corners[i] = v
		}

		f, err := NewFace(corners[0], corners[1], corners[2])
		if err != nil {
			return nil, fmt.Errorf("hemesh: triangle %d: %w", t/3, err)
		}
		if _, dup := m.faces[f.Key()]; dup {
			return nil, fmt.Errorf("hemesh: triangle %d: duplicate face %v", t/3, f.Key())
		}
		f.mesh = m
		m.faces[f.Key()] = f

		var loop [3]*HalfEdge
		for i := range loop {
			he, err := m.adoptEdge(corners[i].ID, corners[(i+1)%3].ID)
			if err != nil {
				return nil, fmt.Errorf("hemesh: triangle %d: %w", t/3, err)
			}
			he.SetFace(f)
			loop[i] = he
		}
		for i := range loop {
			loop[i].SetNext(loop[(i+1)%3])
		}
	}

	return m, nil
}

// adoptEdge returns the half-edge src->dst ready to join a face, creating
// it and its reverse as needed and linking the two as flips. A half-edge
// that already bounds a face cannot be claimed again.
func (m *HalfEdgeMesh) adoptEdge(src, dst int) (*HalfEdge, error) {
	key := EdgeKey{Src: src, Dst: dst}
	he, ok := m.edges[key]
	if !ok {
		he = newHalfEdge(m, src, dst)
		m.edges[key] = he
	} else if he.HasFace() {
		return nil, fmt.Errorf("directed edge %v bounded by two faces", key)
	}

	rev, ok := m.edges[key.Reversed()]
	if !ok {
		rev = newHalfEdge(m, dst, src)
		m.edges[key.Reversed()] = rev
	}
	he.SetFlip(rev)
	rev.SetFlip(he)
	return he, nil
}

// Vertices returns the vertex table keyed by id. Callers must treat it as
// read-only.
func (m *HalfEdgeMesh) Vertices() map[int]*Vertex {
	return m.vertices
}

// Edges returns the directed half-edge table keyed by (src, dst). Callers
// must treat it as read-only.
func (m *HalfEdgeMesh) Edges() map[EdgeKey]*HalfEdge {
	return m.edges
}

// Faces returns the face table keyed by canonical vertex triple. Callers
// must treat it as read-only.
func (m *HalfEdgeMesh) Faces() map[FaceKey]*Face {
	return m.faces
}

// Vertex looks up a vertex by id.
func (m *HalfEdgeMesh) Vertex(id int) (*Vertex, bool) {
	v, ok := m.vertices[id]
	return v, ok
}

// HalfEdge looks up the directed half-edge src->dst.
func (m *HalfEdgeMesh) HalfEdge(src, dst int) (*HalfEdge, bool) {
	he, ok := m.edges[EdgeKey{Src: src, Dst: dst}]
	return he, ok
}

// Face looks up a face by any cyclic rotation of its vertex ids.
func (m *HalfEdgeMesh) Face(a, b, c int) (*Face, bool) {
	f, ok := m.faces[canonicalFaceKey(a, b, c)]
	return f, ok
}

// TriMesh rebuilds a deterministic indexed triangle mesh from the current
// graph: vertices ordered by id, faces by canonical key, suitable for a
// renderer's vertex/index buffers.
func (m *HalfEdgeMesh) TriMesh() TriMesh {
	ids := make([]int, 0, len(m.vertices))
	for id := range m.vertices {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	tm := TriMesh{
		Positions: make([]mgl64.Vec3, len(ids)),
		Indices:   make([]int, 0, len(m.faces)*3),
	}
	index := make(map[int]int, len(ids))
	for i, id := range ids {
		index[id] = i
		tm.Positions[i] = m.vertices[id].Position
	}

	keys := make([]FaceKey, 0, len(m.faces))
	for k := range m.faces {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		a, b := keys[i], keys[j]
		if a.V0 != b.V0 {
			return a.V0 < b.V0
		}
		if a.V1 != b.V1 {
			return a.V1 < b.V1
		}
		return a.V2 < b.V2
	})
	for _, k := range keys {
		tm.Indices = append(tm.Indices, index[k.V0], index[k.V1], index[k.V2])
	}
	return tm
}

// Validate walks the whole graph and checks every structural invariant:
// keys agree with stored fields, every referent is registered, flips are
// mutual, every face loop closes after exactly three steps and agrees
// with its face's vertex triple, and faceless half-edges are genuine
// boundary stubs. It is meant for quiescent points and tests; Contract
// maintains these invariants on its own.
func (m *HalfEdgeMesh) Validate() error {
	for key, he := range m.edges {
		if he.Key() != key {
			return fmt.Errorf("hemesh: half-edge filed under %v has key %v", key, he.Key())
		}
		if _, ok := m.vertices[he.src]; !ok {
			return fmt.Errorf("hemesh: half-edge %v references removed vertex %d", key, he.src)
		}
		if _, ok := m.vertices[he.dst]; !ok {
			return fmt.Errorf("hemesh: half-edge %v references removed vertex %d", key, he.dst)
		}

		if !he.HasFlip() {
			return fmt.Errorf("hemesh: half-edge %v has no flip", key)
		}
		if he.flip != key.Reversed() {
			return fmt.Errorf("hemesh: half-edge %v flip is %v, want %v", key, he.flip, key.Reversed())
		}
		flip, ok := m.edges[he.flip]
		if !ok {
			return fmt.Errorf("hemesh: half-edge %v flip %v not registered", key, he.flip)
		}
		if flip.flip != key {
			return fmt.Errorf("hemesh: half-edges %v and %v are not mutual flips", key, he.flip)
		}

		if !he.HasFace() {
			if he.HasNext() {
				return fmt.Errorf("hemesh: boundary half-edge %v has a next", key)
			}
			continue
		}

		face, ok := m.faces[he.face]
		if !ok {
			return fmt.Errorf("hemesh: half-edge %v references removed face %v", key, he.face)
		}
		if !face.references(he.src) || !face.references(he.dst) {
			return fmt.Errorf("hemesh: half-edge %v not an edge of its face %v", key, he.face)
		}

		// next chain must close after exactly three steps, stay on the
		// same face and carry the winding forward
		e := he
		for i := 0; i < 3; i++ {
			if !e.HasNext() {
				return fmt.Errorf("hemesh: half-edge %v breaks the loop of face %v", e.Key(), he.face)
			}
			n, ok := m.edges[e.next]
			if !ok {
				return fmt.Errorf("hemesh: half-edge %v next %v not registered", e.Key(), e.next)
			}
			if n.src != e.dst {
				return fmt.Errorf("hemesh: half-edge %v next %v does not continue it", e.Key(), e.next)
			}
			if n.face != he.face {
				return fmt.Errorf("hemesh: face loop of %v strays onto face %v", he.face, n.face)
			}
			e = n
		}
		if e != he {
			return fmt.Errorf("hemesh: face loop of %v does not close after three steps", he.face)
		}
	}

	for key, f := range m.faces {
		if f.Key() != key {
			return fmt.Errorf("hemesh: face filed under %v has key %v", key, f.Key())
		}
		if f.mesh != m {
			return fmt.Errorf("hemesh: face %v not bound to this mesh", key)
		}
		loop := [3]EdgeKey{
			{Src: key.V0, Dst: key.V1},
			{Src: key.V1, Dst: key.V2},
			{Src: key.V2, Dst: key.V0},
		}
		for _, ek := range loop {
			he, ok := m.edges[ek]
			if !ok {
				return fmt.Errorf("hemesh: face %v is missing half-edge %v", key, ek)
			}
			if he.face != key {
				return fmt.Errorf("hemesh: half-edge %v of face %v claims face %v", ek, key, he.face)
			}
		}
	}

	return nil
}
