package exact

import (
	"testing"

	"github.com/chazu/reboot/pkg/cuboid"
	"github.com/chazu/reboot/pkg/kernel"
)

func volume(t *testing.T, s kernel.Solid) uint64 {
	t.Helper()
	es := s.(*Solid)
	if !cuboid.IsPairwiseDisjoint(es.Cuboids()) {
		t.Fatalf("solid is not disjoint: %v", es.Cuboids())
	}
	return es.Volume()
}

func TestBooleans(t *testing.T) {
	k := New(1)
	a := k.Box(cuboid.Cube(10, 12))
	b := k.Box(cuboid.Cube(11, 13))

	tests := []struct {
		name string
		s    kernel.Solid
		want uint64
	}{
		{"union", k.Union(a, b), 46},
		{"difference", k.Difference(a, b), 19},
		{"intersection", k.Intersection(a, b), 8},
		{"union with self", k.Union(a, a), 27},
		{"difference with self", k.Difference(a, a), 0},
		{"invalid box", k.Box(cuboid.New(1, 0, 0, 0, 0, 0)), 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := volume(t, tt.s); got != tt.want {
				t.Errorf("Volume() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestSmallExampleThroughKernel(t *testing.T) {
	k := New(2)
	s := k.Union(k.Box(cuboid.Cube(10, 12)), k.Box(cuboid.Cube(11, 13)))
	s = k.Difference(s, k.Box(cuboid.Cube(9, 11)))
	s = k.Union(s, k.Box(cuboid.Cube(10, 10)))
	if got := volume(t, s); got != 39 {
		t.Errorf("Volume() = %d, want 39", got)
	}
}

func TestTranslate(t *testing.T) {
	k := New(1)
	s := k.Translate(k.Box(cuboid.Cube(0, 1)), 5, -5, 0)
	min, max := s.BoundingBox()
	if min != [3]float64{5, -5, 0} || max != [3]float64{7, -3, 2} {
		t.Errorf("BoundingBox() = %v, %v", min, max)
	}
}

func TestEmptyBoundingBox(t *testing.T) {
	min, max := (&Solid{}).BoundingBox()
	if min != [3]float64{} || max != [3]float64{} {
		t.Errorf("BoundingBox() = %v, %v, want zero", min, max)
	}
}

func TestToMesh(t *testing.T) {
	k := New(1)
	s := k.Union(k.Box(cuboid.Cube(0, 1)), k.Box(cuboid.Cube(5, 5)))
	m, err := k.ToMesh(s)
	if err != nil {
		t.Fatalf("ToMesh() error = %v", err)
	}
	if got := m.TriangleCount(); got != 24 {
		t.Errorf("TriangleCount() = %d, want 24", got)
	}
	if got := m.VertexCount(); got != 48 {
		t.Errorf("VertexCount() = %d, want 48", got)
	}
	lo, hi, ok := m.Bounds()
	if !ok || lo != [3]float32{0, 0, 0} || hi != [3]float32{6, 6, 6} {
		t.Errorf("Bounds() = %v, %v, %v", lo, hi, ok)
	}
}

func TestToMeshWinding(t *testing.T) {
	k := New(1)
	m, err := k.ToMesh(k.Box(cuboid.New(0, 2, 0, 3, 0, 4)))
	if err != nil {
		t.Fatalf("ToMesh() error = %v", err)
	}
	vert := func(i uint32) [3]float32 {
		return [3]float32{m.Vertices[3*i], m.Vertices[3*i+1], m.Vertices[3*i+2]}
	}
	for tri := 0; tri < m.TriangleCount(); tri++ {
		a, b, c := vert(m.Indices[3*tri]), vert(m.Indices[3*tri+1]), vert(m.Indices[3*tri+2])
		u := [3]float32{b[0] - a[0], b[1] - a[1], b[2] - a[2]}
		v := [3]float32{c[0] - a[0], c[1] - a[1], c[2] - a[2]}
		cross := [3]float32{u[1]*v[2] - u[2]*v[1], u[2]*v[0] - u[0]*v[2], u[0]*v[1] - u[1]*v[0]}
		n := m.Indices[3*tri]
		normal := [3]float32{m.Normals[3*n], m.Normals[3*n+1], m.Normals[3*n+2]}
		dot := cross[0]*normal[0] + cross[1]*normal[1] + cross[2]*normal[2]
		if dot <= 0 {
			t.Errorf("triangle %d winds against its normal %v", tri, normal)
		}
	}
}

func TestFromCuboids(t *testing.T) {
	cs := []cuboid.Cuboid{cuboid.Cube(0, 0), cuboid.Cube(2, 3)}
	s := FromCuboids(cs)
	if got := s.Volume(); got != 9 {
		t.Errorf("Volume() = %d, want 9", got)
	}
}
