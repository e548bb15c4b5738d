package hemesh

import (
	"fmt"
	"math"

	"github.com/aquilax/go-perlin"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/golang/geo/r3"
	"github.com/markus-wa/quickhull-go/v2"
)

const hullEps = 1e-12

// UVSphere builds a closed latitude/longitude sphere with the given number
// of segments around the equator and rings from pole to pole. Shared
// corners are merged, so the result is watertight: every edge is interior.
func UVSphere(radius float64, segments, rings int) TriMesh {
	if segments < 3 {
		segments = 3
	}
	if rings < 2 {
		rings = 2
	}

	point := func(r, s int) mgl64.Vec3 {
		// sin(pi) is not exactly zero; pin the poles so shared corners
		// deduplicate
		switch r {
		case 0:
			return mgl64.Vec3{0, radius, 0}
		case rings:
			return mgl64.Vec3{0, -radius, 0}
		}
		phi := math.Pi * float64(r) / float64(rings)
		theta := 2 * math.Pi * float64(s%segments) / float64(segments)
		return mgl64.Vec3{
			radius * math.Sin(phi) * math.Cos(theta),
			radius * math.Cos(phi),
			radius * math.Sin(phi) * math.Sin(theta),
		}
	}

	b := NewTriMeshBuilder()
	for r := 0; r < rings; r++ {
		for s := 0; s < segments; s++ {
			a := point(r, s)
			bb := point(r+1, s)
			c := point(r+1, s+1)
			d := point(r, s+1)
			// the quad degenerates to a single triangle at each pole
			if r != rings-1 {
				b.AddTriangle(a, bb, c)
			}
			if r != 0 {
				b.AddTriangle(a, c, d)
			}
		}
	}
	return b.TriMesh()
}

// ConvexHull triangulates the convex hull of a point cloud. Points inside
// the hull stay in the position table but are referenced by no triangle,
// so they never enter a half-edge mesh built from the result.
func ConvexHull(points []mgl64.Vec3) (TriMesh, error) {
	if len(points) < 4 {
		return TriMesh{}, fmt.Errorf("hemesh: convex hull needs at least 4 points, got %d", len(points))
	}

	cloud := make([]r3.Vector, len(points))
	for i, p := range points {
		cloud[i] = r3.Vector{X: p.X(), Y: p.Y(), Z: p.Z()}
	}
	hull := new(quickhull.QuickHull).ConvexHull(cloud, true, true, hullEps)
	if len(hull.Indices)%3 != 0 {
		return TriMesh{}, fmt.Errorf("hemesh: inconsistent index count %d from quickhull", len(hull.Indices))
	}

	return TriMesh{
		Positions: points,
		Indices:   hull.Indices,
	}, nil
}

// Terrain builds an open heightfield grid of nx by nz cells of the given
// size, displaced by Perlin noise scaled to amplitude. The grid boundary
// gives the mesh genuine boundary edges.
func Terrain(nx, nz int, cell, amplitude float64, seed int64) TriMesh {
	if nx < 1 {
		nx = 1
	}
	if nz < 1 {
		nz = 1
	}

	noise := perlin.NewPerlin(2, 2, 3, seed)
	const frequency = 0.15

	b := NewTriMeshBuilder()
	point := func(x, z int) mgl64.Vec3 {
		h := noise.Noise2D(float64(x)*frequency, float64(z)*frequency)
		return mgl64.Vec3{float64(x) * cell, h * amplitude, float64(z) * cell}
	}
	for z := 0; z < nz; z++ {
		for x := 0; x < nx; x++ {
			a := point(x, z)
			bb := point(x, z+1)
			c := point(x+1, z+1)
			d := point(x+1, z)
			b.AddTriangle(a, bb, c)
			b.AddTriangle(a, c, d)
		}
	}
	return b.TriMesh()
}
