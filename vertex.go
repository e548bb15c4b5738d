package hemesh

import "github.com/go-gl/mathgl/mgl64"

// Vertex is an identified point in space. Identity is the ID alone; the
// position plays no part in equality. A Vertex is immutable once created
// and is owned by the mesh it was inserted into.
type Vertex struct {
	ID       int
	Position mgl64.Vec3
}

func NewVertex(id int, x, y, z float64) Vertex {
	return Vertex{
		ID:       id,
		Position: mgl64.Vec3{x, y, z},
	}
}
