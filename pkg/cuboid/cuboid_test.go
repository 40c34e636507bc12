package cuboid

import "testing"

func TestIsValid(t *testing.T) {
	tests := []struct {
		name string
		c    Cuboid
		want bool
	}{
		{"unit cell", Cube(0, 0), true},
		{"regular", New(-5, 5, 0, 3, 7, 9), true},
		{"inverted x", New(2, 1, 0, 0, 0, 0), false},
		{"inverted y", New(0, 0, 2, 1, 0, 0), false},
		{"inverted z", New(0, 0, 0, 0, 2, 1), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.c.IsValid(); got != tt.want {
				t.Errorf("IsValid(%s) = %v, want %v", tt.c, got, tt.want)
			}
		})
	}
}

func TestVolume(t *testing.T) {
	tests := []struct {
		name string
		c    Cuboid
		want uint64
	}{
		{"unit cell", Cube(4, 4), 1},
		{"3x3x3", Cube(10, 12), 27},
		{"mixed extents", New(-1, 1, 0, 4, 10, 19), 3 * 5 * 10},
		{"invalid is empty", New(1, 0, 0, 0, 0, 0), 0},
		{"region of interest", InitializationRegion, 101 * 101 * 101},
		// Needs more than 32 bits.
		{"large", New(-100000, 99999, -100000, 99999, -100000, 99999), 8_000_000_000_000_000},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.c.Volume(); got != tt.want {
				t.Errorf("Volume(%s) = %d, want %d", tt.c, got, tt.want)
			}
		})
	}
}

func TestIntersect(t *testing.T) {
	a := Cube(10, 12)
	b := Cube(11, 13)

	got := a.Intersect(b)
	if want := Cube(11, 12); got != want {
		t.Fatalf("Intersect = %s, want %s", got, want)
	}
	if a.Intersect(b) != b.Intersect(a) {
		t.Error("Intersect is not commutative")
	}

	far := Cube(20, 30)
	if in := a.Intersect(far); in.IsValid() {
		t.Errorf("Intersect with distant cuboid = %s, want invalid", in)
	}
	if !a.IsDisjoint(far) {
		t.Error("IsDisjoint = false for distant cuboids")
	}
	if a.IsDisjoint(b) {
		t.Error("IsDisjoint = true for overlapping cuboids")
	}

	// Touching faces share no cell.
	touching := New(13, 15, 10, 12, 10, 12)
	if !a.IsDisjoint(touching) {
		t.Error("IsDisjoint = false for face-adjacent cuboids")
	}
}

func TestContains(t *testing.T) {
	outer := Cube(0, 10)
	if !outer.Contains(Cube(2, 3)) {
		t.Error("Contains(inner) = false")
	}
	if outer.Contains(Cube(5, 11)) {
		t.Error("Contains(straddling) = true")
	}
	if !outer.Contains(New(1, 0, 0, 0, 0, 0)) {
		t.Error("Contains(invalid) = false")
	}
}

func TestRange(t *testing.T) {
	c := New(1, 2, 3, 4, 5, 6)
	for _, tt := range []struct {
		axis   Axis
		lo, hi int
	}{
		{AxisX, 1, 2},
		{AxisY, 3, 4},
		{AxisZ, 5, 6},
	} {
		lo, hi := c.Range(tt.axis)
		if lo != tt.lo || hi != tt.hi {
			t.Errorf("Range(%s) = %d..%d, want %d..%d", tt.axis, lo, hi, tt.lo, tt.hi)
		}
	}
}

func TestString(t *testing.T) {
	c := New(-20, 26, -36, 17, -47, 7)
	if got, want := c.String(), "x=-20..26,y=-36..17,z=-47..7"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}
