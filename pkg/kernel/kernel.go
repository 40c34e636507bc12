// Package kernel defines the abstract geometry kernel interface.
// Implementations (exact, sdfx) build solids from lit cuboids and turn
// them into triangle meshes. The kernel abstraction allows swapping
// backends without changing the rest of the system.
//
// Kernels work in cell space: the cuboid x=a..b covers the unit cells
// [a, b+1) on that axis, so a single lit cell is a 1x1x1 box.
package kernel

import "github.com/chazu/reboot/pkg/cuboid"

// Solid is an opaque handle to a geometry kernel solid.
// Implementations wrap their internal representation.
type Solid interface {
	// BoundingBox returns the axis-aligned bounding box.
	BoundingBox() (min, max [3]float64)
}

// Kernel is the abstract geometry kernel interface.
type Kernel interface {
	// Box returns the solid covering every cell of c. c must be valid.
	Box(c cuboid.Cuboid) Solid

	// Boolean operations
	Union(a, b Solid) Solid
	Difference(a, b Solid) Solid
	Intersection(a, b Solid) Solid

	// Translate moves a solid by a whole number of cells.
	Translate(s Solid, x, y, z int) Solid

	// Mesh output
	ToMesh(s Solid) (*Mesh, error)
}

// CellBounds returns the cell-space extent of c as float bounds.
func CellBounds(c cuboid.Cuboid) (min, max [3]float64) {
	min = [3]float64{float64(c.XMin), float64(c.YMin), float64(c.ZMin)}
	max = [3]float64{float64(c.XMax + 1), float64(c.YMax + 1), float64(c.ZMax + 1)}
	return min, max
}

// UnionAll folds cs into one solid with k. It returns nil when cs has no
// valid member.
func UnionAll(k Kernel, cs []cuboid.Cuboid) Solid {
	var s Solid
	for _, c := range cs {
		if !c.IsValid() {
			continue
		}
		b := k.Box(c)
		if s == nil {
			s = b
			continue
		}
		s = k.Union(s, b)
	}
	return s
}
