package hemesh

import "github.com/go-gl/mathgl/mgl64"

// TriMesh is the indexed triangle mesh exchanged with the outside world:
// the asset pipeline produces one, NewHalfEdgeMesh consumes it, and
// HalfEdgeMesh.TriMesh rebuilds one for a renderer. Indices holds three
// entries per triangle. Attributes, when present, carries arbitrary
// per-vertex data parallel to Positions; the topology engine ignores it.
type TriMesh struct {
	Positions  []mgl64.Vec3
	Attributes [][]float64
	Indices    []int
}

func (tm TriMesh) NumTriangles() int {
	return len(tm.Indices) / 3
}

// TriMeshBuilder accumulates triangles while deduplicating identical
// positions, so generators can emit shared corners without tracking
// indices themselves.
type TriMeshBuilder struct {
	mesh       TriMesh
	pointIndex map[mgl64.Vec3]int
}

func NewTriMeshBuilder() *TriMeshBuilder {
	return &TriMeshBuilder{
		pointIndex: make(map[mgl64.Vec3]int),
	}
}

// AddPoint registers a position, reusing the index of a previously added
// identical position.
func (b *TriMeshBuilder) AddPoint(p mgl64.Vec3) int {
	if i, found := b.pointIndex[p]; found {
		return i
	}
	b.mesh.Positions = append(b.mesh.Positions, p)
	i := len(b.mesh.Positions) - 1
	b.pointIndex[p] = i
	return i
}

// AddTriangle appends one triangle given its corner positions in winding
// order.
func (b *TriMeshBuilder) AddTriangle(p0, p1, p2 mgl64.Vec3) {
	b.mesh.Indices = append(b.mesh.Indices, b.AddPoint(p0), b.AddPoint(p1), b.AddPoint(p2))
}

func (b *TriMeshBuilder) TriMesh() TriMesh {
	return b.mesh
}
