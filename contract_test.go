package hemesh

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/go-cmp/cmp"
)

func TestContractDoubleFan(t *testing.T) {
	m := mustMesh(t, doubleFan())

	he, ok := m.HalfEdge(0, 1)
	if !ok {
		t.Fatal("edge 0->1 missing")
	}
	mid := NewVertex(10, 0, 0, 0) // midpoint of the two hubs
	if err := m.Contract(he, mid); err != nil {
		t.Fatalf("Contract() error = %v", err)
	}
	if err := m.Validate(); err != nil {
		t.Fatalf("Validate() after contract = %v", err)
	}

	if got := len(m.Vertices()); got != 9 {
		t.Errorf("vertex count = %d, want 9", got)
	}
	if got := len(m.Edges()); got != 32 {
		t.Errorf("half-edge count = %d, want 32", got)
	}
	if got := len(m.Faces()); got != 8 {
		t.Errorf("face count = %d, want 8", got)
	}

	for _, id := range []int{0, 1} {
		if _, ok := m.Vertex(id); ok {
			t.Errorf("collapsed vertex %d still present", id)
		}
	}
	v, ok := m.Vertex(10)
	if !ok {
		t.Fatal("new vertex 10 missing")
	}
	if want := (mgl64.Vec3{0, 0, 0}); v.Position != want {
		t.Errorf("vertex 10 position = %v, want %v", v.Position, want)
	}

	// no surviving entity may mention a collapsed id
	for key := range m.Edges() {
		if key.Src == 0 || key.Src == 1 || key.Dst == 0 || key.Dst == 1 {
			t.Errorf("half-edge %v references a collapsed vertex", key)
		}
	}
	for key, f := range m.Faces() {
		if f.references(0) || f.references(1) {
			t.Errorf("face %v references a collapsed vertex", key)
		}
	}

	// the survivors form one closed fan around vertex 10 with the ring
	// 2..9 in cyclic order
	for k := 2; k <= 9; k++ {
		next := k + 1
		if next > 9 {
			next = 2
		}
		if _, ok := m.Face(10, k, next); !ok {
			t.Errorf("fan face (10 %d %d) missing", k, next)
		}
		spoke, ok := m.HalfEdge(10, k)
		if !ok {
			t.Fatalf("spoke 10->%d missing", k)
		}
		if !spoke.HasFace() || !spoke.Flip().HasFace() {
			t.Errorf("spoke 10->%d is not interior", k)
		}
	}
}

func TestContractRecomputesFaceGeometry(t *testing.T) {
	m := mustMesh(t, doubleFan())
	he, _ := m.HalfEdge(0, 1)
	m.MustContract(he, NewVertex(10, 0, 0, 5))

	// the fan apex moved to z=5, so the re-keyed faces must carry fresh
	// area and normals, not the ones computed at construction
	f, ok := m.Face(10, 2, 3)
	if !ok {
		t.Fatal("fan face (10 2 3) missing")
	}
	apex := mgl64.Vec3{0, 0, 5}
	b := m.Vertices()[2].Position
	c := m.Vertices()[3].Position
	cross := b.Sub(apex).Cross(c.Sub(apex))
	if !almostEqual(f.Area(), cross.Len()/2) {
		t.Errorf("Area() = %v, want %v", f.Area(), cross.Len()/2)
	}
	if !almostEqual(f.Normal().Dot(cross.Normalize()), 1) {
		t.Errorf("Normal() = %v, want %v", f.Normal(), cross.Normalize())
	}
}

func TestContractPreconditionFailuresDoNotMutate(t *testing.T) {
	foreign := TriMesh{
		Positions: make([]mgl64.Vec3, 7),
		Indices:   []int{2, 4, 6},
	}
	foreign.Positions[2] = mgl64.Vec3{0, 0, 0}
	foreign.Positions[4] = mgl64.Vec3{1, 0, 0}
	foreign.Positions[6] = mgl64.Vec3{0, 1, 0}

	tests := []struct {
		name string
		run  func(t *testing.T, m *HalfEdgeMesh) error
	}{
		{
			name: "new vertex id already present",
			run: func(t *testing.T, m *HalfEdgeMesh) error {
				he, _ := m.HalfEdge(0, 1)
				return m.Contract(he, NewVertex(5, 0, 0, 0))
			},
		},
		{
			name: "negative new vertex id",
			run: func(t *testing.T, m *HalfEdgeMesh) error {
				he, _ := m.HalfEdge(0, 1)
				return m.Contract(he, NewVertex(-2, 0, 0, 0))
			},
		},
		{
			name: "half-edge from another mesh",
			run: func(t *testing.T, m *HalfEdgeMesh) error {
				other := mustMesh(t, foreign)
				he, _ := other.HalfEdge(2, 4)
				return m.Contract(he, NewVertex(10, 0, 0, 0))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := mustMesh(t, doubleFan())
			before := m.TriMesh()

			if err := tt.run(t, m); err == nil {
				t.Fatal("Contract() error = nil, want error")
			}
			if err := m.Validate(); err != nil {
				t.Fatalf("Validate() after failed contract = %v", err)
			}
			if diff := cmp.Diff(before, m.TriMesh()); diff != "" {
				t.Errorf("failed contract mutated the mesh (-before +after):\n%s", diff)
			}
		})
	}
}

func TestMustContractPanics(t *testing.T) {
	m := mustMesh(t, doubleFan())
	he, _ := m.HalfEdge(0, 1)

	defer func() {
		if recover() == nil {
			t.Error("MustContract with a taken vertex id did not panic")
		}
	}()
	m.MustContract(he, NewVertex(7, 0, 0, 0))
}

// TestContractBoundaryEdge collapses an edge with no opposing face: a
// two-triangle quad whose every edge is boundary except the diagonal.
func TestContractBoundaryEdge(t *testing.T) {
	quad := TriMesh{
		Positions: []mgl64.Vec3{
			{0, 0, 0},
			{1, 0, 0},
			{1, 1, 0},
			{0, 1, 0},
		},
		Indices: []int{
			0, 1, 2,
			0, 2, 3,
		},
	}
	m := mustMesh(t, quad)

	he, ok := m.HalfEdge(0, 1)
	if !ok {
		t.Fatal("edge 0->1 missing")
	}
	if he.Flip().HasFace() {
		t.Fatal("edge 0->1 should be boundary in this fixture")
	}

	if err := m.Contract(he, NewVertex(4, 0.5, 0, 0)); err != nil {
		t.Fatalf("Contract() error = %v", err)
	}
	if err := m.Validate(); err != nil {
		t.Fatalf("Validate() after boundary contract = %v", err)
	}

	// only the one incident face goes away
	if got := len(m.Vertices()); got != 3 {
		t.Errorf("vertex count = %d, want 3", got)
	}
	if got := len(m.Faces()); got != 1 {
		t.Errorf("face count = %d, want 1", got)
	}
	if got := len(m.Edges()); got != 6 {
		t.Errorf("half-edge count = %d, want 6", got)
	}
	if _, ok := m.Face(4, 2, 3); !ok {
		t.Error("surviving face (4 2 3) missing")
	}
}

// TestContractUVSphere drives repeated collapses on a closed sphere the
// way a simplification driver would: shortest interior edge to midpoint,
// skipping candidates the mesh rejects.
func TestContractUVSphere(t *testing.T) {
	m := mustMesh(t, UVSphere(100, 10, 6))

	nextID := 0
	for id := range m.Vertices() {
		if id >= nextID {
			nextID = id + 1
		}
	}

	const target = 12
	for i := 0; i < target; i++ {
		vBefore := len(m.Vertices())
		eBefore := len(m.Edges())
		fBefore := len(m.Faces())

		if !contractShortest(m, nextID) {
			t.Fatalf("pass %d: no contractible edge left", i)
		}
		nextID++

		if err := m.Validate(); err != nil {
			t.Fatalf("pass %d: Validate() = %v", i, err)
		}
		if got := len(m.Vertices()); got != vBefore-1 {
			t.Errorf("pass %d: vertex count = %d, want %d", i, got, vBefore-1)
		}
		if got := len(m.Edges()); got != eBefore-6 {
			t.Errorf("pass %d: half-edge count = %d, want %d", i, got, eBefore-6)
		}
		if got := len(m.Faces()); got != fBefore-2 {
			t.Errorf("pass %d: face count = %d, want %d", i, got, fBefore-2)
		}
	}
}

// contractShortest collapses the shortest edge the mesh will accept into
// its midpoint, trying candidates in ascending length order.
func contractShortest(m *HalfEdgeMesh, newID int) bool {
	type candidate struct {
		key    EdgeKey
		length float64
	}
	var candidates []candidate
	seen := make(map[EdgeKey]bool, len(m.Edges()))
	for key, he := range m.Edges() {
		if seen[key.Reversed()] {
			continue
		}
		seen[key] = true
		candidates = append(candidates, candidate{key: key, length: he.Length()})
	}
	for len(candidates) > 0 {
		best := 0
		for i := range candidates {
			if candidates[i].length < candidates[best].length {
				best = i
			}
		}
		he := m.Edges()[candidates[best].key]
		a := he.Flip().Vertex().Position
		b := he.Vertex().Position
		mid := a.Add(b).Mul(0.5)
		if err := m.Contract(he, Vertex{ID: newID, Position: mid}); err == nil {
			return true
		}
		candidates = append(candidates[:best], candidates[best+1:]...)
	}
	return false
}
