package hemesh

import "fmt"

// EdgeKey identifies a directed edge by the ids of its source and
// destination vertices. The two directions of an undirected edge have
// distinct keys, so both occupy their own entry in the mesh's edge table.
type EdgeKey struct {
	Src, Dst int
}

func (k EdgeKey) Reversed() EdgeKey {
	return EdgeKey{Src: k.Dst, Dst: k.Src}
}

func (k EdgeKey) String() string {
	return fmt.Sprintf("%d->%d", k.Src, k.Dst)
}

// Empty handle sentinels. Vertex ids are non-negative, so -1 can never
// collide with a real key.
var (
	noEdge = EdgeKey{Src: -1, Dst: -1}
	noFace = FaceKey{V0: -1, V1: -1, V2: -1}
)

// HalfEdge is one direction of a mesh edge. It refers to its head vertex,
// its opposite-direction partner (flip), its successor around the owning
// face (next) and the face itself purely by key; the owning mesh's tables
// resolve those keys. A half-edge bounding no face (the reverse of a
// boundary edge) has an empty next and face.
//
// Two half-edges with the same source and destination vertex compare equal
// through their Key regardless of when they were allocated.
type HalfEdge struct {
	mesh *HalfEdgeMesh
	src  int
	dst  int
	flip EdgeKey
	next EdgeKey
	face FaceKey
}

func newHalfEdge(m *HalfEdgeMesh, src, dst int) *HalfEdge {
	return &HalfEdge{
		mesh: m,
		src:  src,
		dst:  dst,
		flip: noEdge,
		next: noEdge,
		face: noFace,
	}
}

// Key returns the directed-edge identity (source id, destination id).
func (h *HalfEdge) Key() EdgeKey {
	return EdgeKey{Src: h.src, Dst: h.dst}
}

func (h *HalfEdge) HasFlip() bool { return h.flip != noEdge }
func (h *HalfEdge) HasNext() bool { return h.next != noEdge }
func (h *HalfEdge) HasFace() bool { return h.face != noFace }

// Vertex returns the head (destination) vertex. It panics if the vertex
// has been removed from the owning mesh.
func (h *HalfEdge) Vertex() *Vertex {
	v, ok := h.mesh.vertices[h.dst]
	if !ok {
		panic(fmt.Sprintf("Vertex: half-edge %v references removed vertex %d", h.Key(), h.dst))
	}
	return v
}

// Flip returns the opposite-direction half-edge between the same two
// vertices. It panics if no flip is registered.
func (h *HalfEdge) Flip() *HalfEdge {
	if !h.HasFlip() {
		panic(fmt.Sprintf("Flip: half-edge %v has no flip", h.Key()))
	}
	f, ok := h.mesh.edges[h.flip]
	if !ok {
		panic(fmt.Sprintf("Flip: half-edge %v references removed half-edge %v", h.Key(), h.flip))
	}
	return f
}

// Next returns the successor half-edge around the owning face. It panics
// for a boundary half-edge, which belongs to no face loop.
func (h *HalfEdge) Next() *HalfEdge {
	if !h.HasNext() {
		panic(fmt.Sprintf("Next: half-edge %v has no next", h.Key()))
	}
	n, ok := h.mesh.edges[h.next]
	if !ok {
		panic(fmt.Sprintf("Next: half-edge %v references removed half-edge %v", h.Key(), h.next))
	}
	return n
}

// Face returns the owning face. It panics for a boundary half-edge.
func (h *HalfEdge) Face() *Face {
	if !h.HasFace() {
		panic(fmt.Sprintf("Face: half-edge %v has no face", h.Key()))
	}
	f, ok := h.mesh.faces[h.face]
	if !ok {
		panic(fmt.Sprintf("Face: half-edge %v references removed face %v", h.Key(), h.face))
	}
	return f
}

func (h *HalfEdge) SetFlip(o *HalfEdge) { h.flip = o.Key() }
func (h *HalfEdge) SetNext(o *HalfEdge) { h.next = o.Key() }
func (h *HalfEdge) SetFace(f *Face)     { h.face = f.Key() }

// Length returns the distance between the two endpoints.
func (h *HalfEdge) Length() float64 {
	return h.Vertex().Position.Sub(h.Flip().Vertex().Position).Len()
}

// substituteIDs rewrites every id mentioned by this half-edge, replacing u
// and v with n. The half-edge's own key may change; the caller re-files it
// in the edge table.
func (h *HalfEdge) substituteIDs(u, v, n int) {
	sub := func(id int) int {
		if id == u || id == v {
			return n
		}
		return id
	}
	h.src = sub(h.src)
	h.dst = sub(h.dst)
	if h.HasFlip() {
		h.flip = EdgeKey{Src: sub(h.flip.Src), Dst: sub(h.flip.Dst)}
	}
	if h.HasNext() {
		h.next = EdgeKey{Src: sub(h.next.Src), Dst: sub(h.next.Dst)}
	}
	if h.HasFace() {
		h.face = canonicalFaceKey(sub(h.face.V0), sub(h.face.V1), sub(h.face.V2))
	}
}
