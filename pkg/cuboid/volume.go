package cuboid

// InitializationRegion is the [-50,50]³ region used for the bounded volume
// query.
var InitializationRegion = Cube(-50, 50)

// TotalVolume sums the volumes of cuboids. The result is only the volume of
// their union when the collection is pairwise disjoint.
func TotalVolume(cuboids []Cuboid) uint64 {
	var total uint64
	for _, c := range cuboids {
		total += c.Volume()
	}
	return total
}

// BoundedVolume sums the part of each cuboid that falls inside region.
// Like TotalVolume it assumes a pairwise-disjoint collection.
func BoundedVolume(cuboids []Cuboid, region Cuboid) uint64 {
	var total uint64
	for _, c := range cuboids {
		if in := c.Intersect(region); in.IsValid() {
			total += in.Volume()
		}
	}
	return total
}

// Bounds returns the smallest cuboid containing every valid element of
// cuboids. ok is false when there is none.
func Bounds(cuboids []Cuboid) (b Cuboid, ok bool) {
	for _, c := range cuboids {
		if !c.IsValid() {
			continue
		}
		if !ok {
			b, ok = c, true
			continue
		}
		b.XMin, b.XMax = min(b.XMin, c.XMin), max(b.XMax, c.XMax)
		b.YMin, b.YMax = min(b.YMin, c.YMin), max(b.YMax, c.YMax)
		b.ZMin, b.ZMax = min(b.ZMin, c.ZMin), max(b.ZMax, c.ZMax)
	}
	return b, ok
}
