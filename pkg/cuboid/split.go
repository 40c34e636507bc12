package cuboid

// Mode selects what Split does with the reference cuboid.
type Mode int

const (
	// ModeMerge appends the reference as the last fragment, so the result
	// covers old ∪ reference.
	ModeMerge Mode = iota
	// ModeRemove leaves the reference out, so the result covers
	// old \ reference.
	ModeRemove
)

func (m Mode) String() string {
	if m == ModeRemove {
		return "remove"
	}
	return "merge"
}

// Split decomposes old around ref into at most six pairwise-disjoint slabs
// that cover old \ ref, followed by ref itself in ModeMerge.
//
// Slabs are cut in a fixed order: the parts of old below and above ref on x;
// then, inside the x-overlap, below and above on y; then, inside the x and y
// overlap, below and above on z. Restricting each later axis to the overlap
// of the earlier ones is what keeps edges and corners from being covered
// twice.
//
//	┌─────────────┐              ┌─────┬┬──────┐
//	│    old      │              │     ││  y+  │
//	│      ┌──────┼─────┐        │     │┌──────────┐
//	│      │      │ ref │   =>   │ x-  ││   ref    │
//	│      └──────┼─────┘        │     │└──────────┘
//	│             │              │     ││  y-  │
//	└─────────────┘              └─────┴┴──────┘
//
// Invalid slabs are dropped. The returned slice is newly allocated.
func Split(old, ref Cuboid, mode Mode) []Cuboid {
	out := make([]Cuboid, 0, 7)
	emit := func(side string, c Cuboid) {
		if !c.IsValid() {
			return
		}
		log.Debugf("%s fragment: %s", side, c)
		out = append(out, c)
	}

	// x: full y/z extent of old.
	below := old
	below.XMax = min(old.XMax, ref.XMin-1)
	emit("x-below", below)

	above := old
	above.XMin = max(old.XMin, ref.XMax+1)
	emit("x-above", above)

	// y: x clipped to the x-overlap.
	xMin, xMax := max(old.XMin, ref.XMin), min(old.XMax, ref.XMax)

	below = old
	below.XMin, below.XMax = xMin, xMax
	below.YMax = min(old.YMax, ref.YMin-1)
	emit("y-below", below)

	above = old
	above.XMin, above.XMax = xMin, xMax
	above.YMin = max(old.YMin, ref.YMax+1)
	emit("y-above", above)

	// z: x and y clipped to the overlap.
	yMin, yMax := max(old.YMin, ref.YMin), min(old.YMax, ref.YMax)

	below = old
	below.XMin, below.XMax = xMin, xMax
	below.YMin, below.YMax = yMin, yMax
	below.ZMax = min(old.ZMax, ref.ZMin-1)
	emit("z-below", below)

	above = old
	above.XMin, above.XMax = xMin, xMax
	above.YMin, above.YMax = yMin, yMax
	above.ZMin = max(old.ZMin, ref.ZMax+1)
	emit("z-above", above)

	if mode == ModeMerge {
		out = append(out, ref)
	}
	return out
}

// Merge returns a disjoint decomposition of old ∪ ref with ref as the last
// element.
func Merge(old, ref Cuboid) []Cuboid {
	return Split(old, ref, ModeMerge)
}

// Remove returns a disjoint decomposition of old \ ref.
func Remove(old, ref Cuboid) []Cuboid {
	return Split(old, ref, ModeRemove)
}
