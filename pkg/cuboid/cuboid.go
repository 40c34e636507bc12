// Package cuboid implements exact integer geometry on axis-aligned boxes:
// the box value type, the slab decomposition that splits one box around
// another, the loop that keeps a collection pairwise disjoint, and volume
// accumulation over such a collection.
//
// All bounds are inclusive. A cuboid whose minimum exceeds its maximum on any
// axis is "invalid" and stands for the empty set; every operation in this
// package accepts invalid cuboids and treats them as empty.
package cuboid

import (
	"fmt"

	"github.com/op/go-logging"
)

var log = logging.MustGetLogger("cuboid")

// Axis identifies one of the three coordinate axes.
type Axis int

const (
	AxisX Axis = iota
	AxisY
	AxisZ
)

func (a Axis) String() string {
	switch a {
	case AxisX:
		return "x"
	case AxisY:
		return "y"
	case AxisZ:
		return "z"
	default:
		return fmt.Sprintf("Axis(%d)", int(a))
	}
}

// Cuboid is an axis-aligned box with inclusive integer bounds.
type Cuboid struct {
	XMin, XMax int
	YMin, YMax int
	ZMin, ZMax int
}

// New returns the cuboid spanning the given inclusive ranges.
func New(xMin, xMax, yMin, yMax, zMin, zMax int) Cuboid {
	return Cuboid{
		XMin: xMin, XMax: xMax,
		YMin: yMin, YMax: yMax,
		ZMin: zMin, ZMax: zMax,
	}
}

// Cube returns the cuboid [lo,hi] on every axis.
func Cube(lo, hi int) Cuboid {
	return New(lo, hi, lo, hi, lo, hi)
}

// IsValid reports whether the cuboid contains at least one unit cell.
func (c Cuboid) IsValid() bool {
	return c.XMin <= c.XMax && c.YMin <= c.YMax && c.ZMin <= c.ZMax
}

// Intersect returns the overlap of c and other. The result is invalid when
// the two do not overlap on some axis.
func (c Cuboid) Intersect(other Cuboid) Cuboid {
	return Cuboid{
		XMin: max(c.XMin, other.XMin),
		XMax: min(c.XMax, other.XMax),
		YMin: max(c.YMin, other.YMin),
		YMax: min(c.YMax, other.YMax),
		ZMin: max(c.ZMin, other.ZMin),
		ZMax: min(c.ZMax, other.ZMax),
	}
}

// IsDisjoint reports whether c and other share no unit cell.
func (c Cuboid) IsDisjoint(other Cuboid) bool {
	return !c.Intersect(other).IsValid()
}

// Contains reports whether other lies entirely inside c. An invalid other is
// contained in everything.
func (c Cuboid) Contains(other Cuboid) bool {
	if !other.IsValid() {
		return true
	}
	return c.Intersect(other) == other
}

// Volume returns the number of unit cells in c, or 0 if c is invalid.
func (c Cuboid) Volume() uint64 {
	if !c.IsValid() {
		return 0
	}
	dx := uint64(int64(c.XMax) - int64(c.XMin) + 1)
	dy := uint64(int64(c.YMax) - int64(c.YMin) + 1)
	dz := uint64(int64(c.ZMax) - int64(c.ZMin) + 1)
	return dx * dy * dz
}

// Range returns the inclusive bounds of c along axis a.
func (c Cuboid) Range(a Axis) (lo, hi int) {
	switch a {
	case AxisX:
		return c.XMin, c.XMax
	case AxisY:
		return c.YMin, c.YMax
	default:
		return c.ZMin, c.ZMax
	}
}

// String renders c in instruction syntax, e.g. "x=10..12,y=10..12,z=10..12".
func (c Cuboid) String() string {
	return fmt.Sprintf("x=%d..%d,y=%d..%d,z=%d..%d",
		c.XMin, c.XMax, c.YMin, c.YMax, c.ZMin, c.ZMax)
}
