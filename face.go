package hemesh

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
)

// collinearEps bounds the cross-product magnitude below which a triangle
// counts as degenerate.
const collinearEps = 1e-12

var errDegenerateFace = errors.New("hemesh: face vertices are collinear or coincident")

// FaceKey identifies a triangle by its canonical vertex-id triple: the
// cyclic rotation that puts the smallest id first. Rotations of the same
// winding share a key; the reversed winding does not, since it is a
// geometrically distinct oriented triangle.
type FaceKey struct {
	V0, V1, V2 int
}

func (k FaceKey) String() string {
	return fmt.Sprintf("(%d %d %d)", k.V0, k.V1, k.V2)
}

func canonicalFaceKey(a, b, c int) FaceKey {
	// rotate, never reflect
	switch {
	case a <= b && a <= c:
		return FaceKey{V0: a, V1: b, V2: c}
	case b <= a && b <= c:
		return FaceKey{V0: b, V1: c, V2: a}
	default:
		return FaceKey{V0: c, V1: a, V2: b}
	}
}

// Face is a triangle in canonical vertex order with its area and unit
// normal computed once at construction. Vertices are referenced by id and
// resolved through the owning mesh.
type Face struct {
	mesh   *HalfEdgeMesh
	key    FaceKey
	area   float64
	normal mgl64.Vec3
}

// NewFace builds a face from three vertices in arbitrary cyclic order,
// canonicalizing the stored order so the minimum id comes first while
// preserving the winding. It fails if the vertices are coincident or
// collinear, which keeps NaN normals out of the graph.
func NewFace(a, b, c *Vertex) (*Face, error) {
	if a.ID == b.ID || b.ID == c.ID || c.ID == a.ID {
		return nil, errDegenerateFace
	}

	cross := b.Position.Sub(a.Position).Cross(c.Position.Sub(a.Position))
	length := cross.Len()
	if length <= collinearEps {
		return nil, errDegenerateFace
	}

	return &Face{
		key:    canonicalFaceKey(a.ID, b.ID, c.ID),
		area:   length / 2,
		normal: cross.Mul(1 / length),
	}, nil
}

// Key returns the canonical vertex-id triple.
func (f *Face) Key() FaceKey {
	return f.key
}

// Area is half the magnitude of the cross product of two edge vectors,
// fixed at construction time.
func (f *Face) Area() float64 {
	return f.area
}

// Normal is the unit normal implied by the face winding, fixed at
// construction time.
func (f *Face) Normal() mgl64.Vec3 {
	return f.normal
}

func (f *Face) vertex(id int) *Vertex {
	if f.mesh == nil {
		panic(fmt.Sprintf("Face %v is not registered in a mesh", f.key))
	}
	v, ok := f.mesh.vertices[id]
	if !ok {
		panic(fmt.Sprintf("Face %v references removed vertex %d", f.key, id))
	}
	return v
}

// V0 returns the first vertex in canonical order. It panics if the vertex
// has been removed from the owning mesh.
func (f *Face) V0() *Vertex { return f.vertex(f.key.V0) }

// V1 returns the second vertex in canonical order.
func (f *Face) V1() *Vertex { return f.vertex(f.key.V1) }

// V2 returns the third vertex in canonical order.
func (f *Face) V2() *Vertex { return f.vertex(f.key.V2) }

// references reports whether the face names the given vertex id.
func (f *Face) references(id int) bool {
	return f.key.V0 == id || f.key.V1 == id || f.key.V2 == id
}
