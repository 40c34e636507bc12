// Package exact implements kernel.Kernel on disjoint integer cuboid sets.
// Booleans are the cuboid decomposer itself, so results are exact at any
// scale and meshing never samples.
package exact

import (
	"fmt"

	"github.com/chazu/reboot/pkg/cuboid"
	"github.com/chazu/reboot/pkg/kernel"
	"github.com/op/go-logging"
)

var log = logging.MustGetLogger("kernel/exact")

// Compile-time interface check.
var _ kernel.Kernel = (*Kernel)(nil)

// Solid is a pairwise-disjoint set of cuboids.
type Solid struct {
	cuboids []cuboid.Cuboid
}

// Cuboids returns the disjoint fragments of s.
func (s *Solid) Cuboids() []cuboid.Cuboid {
	return s.cuboids
}

// Volume returns the number of cells covered by s.
func (s *Solid) Volume() uint64 {
	return cuboid.TotalVolume(s.cuboids)
}

// BoundingBox returns the axis-aligned bounding box in cell space. An empty
// solid reports a zero box.
func (s *Solid) BoundingBox() (min, max [3]float64) {
	b, ok := cuboid.Bounds(s.cuboids)
	if !ok {
		return min, max
	}
	return kernel.CellBounds(b)
}

// Kernel is the exact cuboid kernel. The zero value is ready to use.
type Kernel struct {
	opts []cuboid.Option
}

// New returns an exact kernel. workers parallelizes the overlap scan in
// Union as cuboid.WithWorkers does.
func New(workers int) *Kernel {
	if workers == 1 {
		return &Kernel{}
	}
	return &Kernel{opts: []cuboid.Option{cuboid.WithWorkers(workers)}}
}

func unwrap(s kernel.Solid) *Solid {
	es, ok := s.(*Solid)
	if !ok {
		panic(fmt.Sprintf("exact: foreign solid %T", s))
	}
	return es
}

// FromCuboids wraps an already disjoint collection without copying it.
func FromCuboids(cs []cuboid.Cuboid) *Solid {
	return &Solid{cuboids: cs}
}

// Box returns the solid covering c. An invalid c yields the empty solid.
func (k *Kernel) Box(c cuboid.Cuboid) kernel.Solid {
	if !c.IsValid() {
		return &Solid{}
	}
	return &Solid{cuboids: []cuboid.Cuboid{c}}
}

// Union returns a ∪ b.
func (k *Kernel) Union(a, b kernel.Solid) kernel.Solid {
	ca, cb := unwrap(a).cuboids, unwrap(b).cuboids
	all := make([]cuboid.Cuboid, 0, len(ca)+len(cb))
	all = append(all, ca...)
	all = append(all, cb...)
	return &Solid{cuboids: cuboid.Normalize(all, k.opts...)}
}

// Difference returns a - b.
func (k *Kernel) Difference(a, b kernel.Solid) kernel.Solid {
	out := unwrap(a).cuboids
	for _, cut := range unwrap(b).cuboids {
		next := make([]cuboid.Cuboid, 0, len(out))
		for _, c := range out {
			if c.IsDisjoint(cut) {
				next = append(next, c)
				continue
			}
			next = append(next, cuboid.Remove(c, cut)...)
		}
		out = next
	}
	return &Solid{cuboids: out}
}

// Intersection returns a ∩ b. Pairwise intersections of two disjoint sets
// are themselves disjoint.
func (k *Kernel) Intersection(a, b kernel.Solid) kernel.Solid {
	var out []cuboid.Cuboid
	for _, ca := range unwrap(a).cuboids {
		for _, cb := range unwrap(b).cuboids {
			if in := ca.Intersect(cb); in.IsValid() {
				out = append(out, in)
			}
		}
	}
	return &Solid{cuboids: out}
}

// Translate moves every fragment by (x, y, z) cells.
func (k *Kernel) Translate(s kernel.Solid, x, y, z int) kernel.Solid {
	src := unwrap(s).cuboids
	out := make([]cuboid.Cuboid, len(src))
	for i, c := range src {
		out[i] = cuboid.New(c.XMin+x, c.XMax+x, c.YMin+y, c.YMax+y, c.ZMin+z, c.ZMax+z)
	}
	return &Solid{cuboids: out}
}

// ToMesh emits one closed box per fragment: 6 faces of 4 vertices and 2
// triangles each. Faces shared by adjacent fragments are kept.
func (k *Kernel) ToMesh(s kernel.Solid) (*kernel.Mesh, error) {
	cs := unwrap(s).cuboids
	m := &kernel.Mesh{
		Vertices: make([]float32, 0, len(cs)*24*3),
		Normals:  make([]float32, 0, len(cs)*24*3),
		Indices:  make([]uint32, 0, len(cs)*36),
	}
	for _, c := range cs {
		appendBox(m, c)
	}
	log.Debugf("meshed %d fragments into %d triangles", len(cs), m.TriangleCount())
	return m, nil
}

// boxFaces lists, per face, the outward normal and its corners as
// (x, y, z) selectors into {min, max}, counter-clockwise seen from outside.
var boxFaces = [6]struct {
	normal  [3]float32
	corners [4][3]int
}{
	{[3]float32{-1, 0, 0}, [4][3]int{{0, 0, 0}, {0, 0, 1}, {0, 1, 1}, {0, 1, 0}}},
	{[3]float32{1, 0, 0}, [4][3]int{{1, 0, 0}, {1, 1, 0}, {1, 1, 1}, {1, 0, 1}}},
	{[3]float32{0, -1, 0}, [4][3]int{{0, 0, 0}, {1, 0, 0}, {1, 0, 1}, {0, 0, 1}}},
	{[3]float32{0, 1, 0}, [4][3]int{{0, 1, 0}, {0, 1, 1}, {1, 1, 1}, {1, 1, 0}}},
	{[3]float32{0, 0, -1}, [4][3]int{{0, 0, 0}, {0, 1, 0}, {1, 1, 0}, {1, 0, 0}}},
	{[3]float32{0, 0, 1}, [4][3]int{{0, 0, 1}, {1, 0, 1}, {1, 1, 1}, {0, 1, 1}}},
}

func appendBox(m *kernel.Mesh, c cuboid.Cuboid) {
	lo, hi := kernel.CellBounds(c)
	pick := [2][3]float64{lo, hi}
	for _, f := range boxFaces {
		base := uint32(m.VertexCount())
		for _, sel := range f.corners {
			m.Vertices = append(m.Vertices,
				float32(pick[sel[0]][0]), float32(pick[sel[1]][1]), float32(pick[sel[2]][2]))
			m.Normals = append(m.Normals, f.normal[0], f.normal[1], f.normal[2])
		}
		m.Indices = append(m.Indices, base, base+1, base+2, base, base+2, base+3)
	}
}
