package hemesh

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
)

// Contract collapses the undirected edge {e.Flip().Vertex(), e.Vertex()}
// into newVertex. The at-most-two faces incident to the edge degenerate to
// zero area and are removed together with their half-edges; every
// surviving half-edge and face that referenced either endpoint is re-keyed
// to reference newVertex instead (identity is content-addressed, so this
// is a remove-and-reinsert, never an in-place key change); the half-edges
// that bounded a removed face are re-spliced so the loops around newVertex
// close again; the two old vertices leave the table and newVertex enters
// it.
//
// Contract validates everything before touching the mesh, so on error the
// mesh is exactly as it was. It fails when e or its flip is not registered
// in this mesh, when newVertex's id is already taken or negative, and when
// the collapse itself would corrupt the mesh: a surviving face becoming
// degenerate, two faces pinching onto the same edge, the two faces
// sharing their third vertex.
func (m *HalfEdgeMesh) Contract(e *HalfEdge, newVertex Vertex) error {
	if newVertex.ID < 0 {
		return fmt.Errorf("hemesh: new vertex id %d is negative", newVertex.ID)
	}
	edge, ok := m.edges[e.Key()]
	if !ok {
		return fmt.Errorf("hemesh: half-edge %v is not registered in this mesh", e.Key())
	}
	flip, ok := m.edges[e.Key().Reversed()]
	if !ok || edge.flip != flip.Key() {
		return fmt.Errorf("hemesh: half-edge %v has no registered flip", e.Key())
	}
	if _, taken := m.vertices[newVertex.ID]; taken {
		return fmt.Errorf("hemesh: vertex id %d already present in mesh", newVertex.ID)
	}

	u, v, n := edge.src, edge.dst, newVertex.ID
	sub := func(id int) int {
		if id == u || id == v {
			return n
		}
		return id
	}
	posOf := func(id int) mgl64.Vec3 {
		if id == n {
			return newVertex.Position
		}
		return m.vertices[id].Position
	}

	// The collapsed pair dies, and so do the removed faces' own loops;
	// each removed face leaves behind its two outer partners, which must
	// end up as mutual flips.
	removedEdges := map[EdgeKey]struct{}{
		edge.Key(): {},
		flip.Key(): {},
	}
	removedFaces := make(map[FaceKey]struct{}, 2)
	var splices [][2]*HalfEdge
	for _, d := range [2]*HalfEdge{edge, flip} {
		if !d.HasFace() {
			continue
		}
		inner1 := d.Next()
		inner2 := inner1.Next()
		removedFaces[d.face] = struct{}{}
		removedEdges[inner1.Key()] = struct{}{}
		removedEdges[inner2.Key()] = struct{}{}
		splices = append(splices, [2]*HalfEdge{inner1.Flip(), inner2.Flip()})
	}
	for _, p := range splices {
		for _, outer := range p {
			if _, gone := removedEdges[outer.Key()]; gone {
				return fmt.Errorf("hemesh: contracting %v collapses both its faces onto each other", edge.Key())
			}
		}
	}

	// Prevalidate the post-collapse tables so the mutation below cannot
	// fail: every surviving face must stay non-degenerate and the
	// substituted keys must stay unique.
	newFaceKeys := make(map[FaceKey]struct{}, len(m.faces))
	for key := range m.faces {
		if _, gone := removedFaces[key]; gone {
			continue
		}
		a, b, c := sub(key.V0), sub(key.V1), sub(key.V2)
		nk := canonicalFaceKey(a, b, c)
		if _, dup := newFaceKeys[nk]; dup {
			return fmt.Errorf("hemesh: contracting %v would merge two faces into %v", edge.Key(), nk)
		}
		newFaceKeys[nk] = struct{}{}
		if nk == key {
			continue
		}
		va := Vertex{ID: a, Position: posOf(a)}
		vb := Vertex{ID: b, Position: posOf(b)}
		vc := Vertex{ID: c, Position: posOf(c)}
		if _, err := NewFace(&va, &vb, &vc); err != nil {
			return fmt.Errorf("hemesh: contracting %v would degenerate face %v: %w", edge.Key(), key, err)
		}
	}
	newEdgeKeys := make(map[EdgeKey]struct{}, len(m.edges))
	for key := range m.edges {
		if _, gone := removedEdges[key]; gone {
			continue
		}
		nk := EdgeKey{Src: sub(key.Src), Dst: sub(key.Dst)}
		if nk.Src == nk.Dst {
			return fmt.Errorf("hemesh: contracting %v would close half-edge %v onto itself", edge.Key(), key)
		}
		if _, dup := newEdgeKeys[nk]; dup {
			return fmt.Errorf("hemesh: contracting %v would duplicate half-edge %v", edge.Key(), nk)
		}
		newEdgeKeys[nk] = struct{}{}
	}

	// From here on nothing can fail.

	for k := range removedEdges {
		delete(m.edges, k)
	}
	for k := range removedFaces {
		delete(m.faces, k)
	}
	delete(m.vertices, u)
	delete(m.vertices, v)
	m.vertices[n] = &Vertex{ID: n, Position: newVertex.Position}

	// Substitute the collapsed ids in every surviving half-edge. Entries
	// whose own key changed are re-filed; handle fields that merely
	// mention u or v are rewritten in place.
	survivors := make([]*HalfEdge, 0, len(m.edges))
	for _, he := range m.edges {
		survivors = append(survivors, he)
	}
	var moved []*HalfEdge
	for _, he := range survivors {
		before := he.Key()
		he.substituteIDs(u, v, n)
		if he.Key() != before {
			delete(m.edges, before)
			moved = append(moved, he)
		}
	}
	for _, he := range moved {
		m.edges[he.Key()] = he
	}

	// Re-key the surviving faces that referenced an endpoint. Each is
	// superseded by a freshly constructed face so area and normal reflect
	// the new corner position.
	touched := make([]*Face, 0, 8)
	for _, f := range m.faces {
		if f.references(u) || f.references(v) {
			touched = append(touched, f)
		}
	}
	for _, f := range touched {
		delete(m.faces, f.Key())
		a, b, c := sub(f.key.V0), sub(f.key.V1), sub(f.key.V2)
		nf, err := NewFace(m.vertices[a], m.vertices[b], m.vertices[c])
		if err != nil {
			panic(fmt.Sprintf("Contract: prevalidated face %v degenerated: %v", f.Key(), err))
		}
		nf.mesh = m
		m.faces[nf.Key()] = nf
	}

	// Re-splice: across each removed face the two outer partners now
	// share endpoints, so they become each other's flip directly.
	for _, p := range splices {
		p[0].SetFlip(p[1])
		p[1].SetFlip(p[0])
	}

	return nil
}

// MustContract is Contract with the debug-build contract: any violation
// aborts instead of returning an error.
func (m *HalfEdgeMesh) MustContract(e *HalfEdge, newVertex Vertex) {
	if err := m.Contract(e, newVertex); err != nil {
		panic(err)
	}
}
