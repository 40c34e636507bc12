package cuboid

import (
	"math/rand/v2"
	"slices"
	"testing"
)

func TestNormalizeAlreadyDisjoint(t *testing.T) {
	in := []Cuboid{Cube(0, 1), Cube(2, 3), Cube(10, 12)}
	got := Normalize(in)
	if !slices.Equal(got, in) {
		t.Errorf("Normalize(disjoint) = %v, want input unchanged", got)
	}
}

func TestNormalizeEmpty(t *testing.T) {
	if got := Normalize(nil); len(got) != 0 {
		t.Errorf("Normalize(nil) = %v, want empty", got)
	}
}

func TestNormalizeDoesNotMutateInput(t *testing.T) {
	in := []Cuboid{Cube(10, 12), Cube(11, 13)}
	orig := slices.Clone(in)
	_ = Normalize(in)
	if !slices.Equal(in, orig) {
		t.Errorf("input mutated: %v, want %v", in, orig)
	}
}

func TestNormalizeResolvesFirstPairFirst(t *testing.T) {
	// (0,1) and (0,3) both overlap; scan order picks (0,1).
	a := Cube(0, 4)
	b := Cube(3, 6)
	c := Cube(10, 11)
	d := Cube(2, 3)
	in := []Cuboid{a, b, c, d}

	i, j, ok := FirstOverlap(in)
	if !ok || i != 0 || j != 1 {
		t.Fatalf("FirstOverlap = (%d,%d,%v), want (0,1,true)", i, j, ok)
	}

	// Only a and b overlapping: one pass, fragments first, rest in order.
	single := Normalize([]Cuboid{a, b, c})
	want := append(Merge(a, b), c)
	if !slices.Equal(single, want) {
		t.Errorf("Normalize(a, b, c) = %v, want %v", single, want)
	}

	got := Normalize(in)
	assertPairwiseDisjoint(t, got)
	if !slices.Contains(got, c) {
		t.Errorf("untouched cuboid %s missing from %v", c, got)
	}
	if vol, want := TotalVolume(got), uint64(len(cells(a, b, c, d))); vol != want {
		t.Errorf("TotalVolume = %d, want %d", vol, want)
	}
}

func TestNormalizePreservesUnion(t *testing.T) {
	r := rand.New(rand.NewPCG(7, 11))
	for round := 0; round < 40; round++ {
		in := make([]Cuboid, 2+r.IntN(6))
		for i := range in {
			in[i] = randomCuboid(r, 16, 7)
		}

		got := Normalize(in)
		assertPairwiseDisjoint(t, got)

		want := cells(in...)
		covered := cells(got...)
		if len(covered) != len(want) {
			t.Fatalf("round %d: normalized covers %d cells, want %d", round, len(covered), len(want))
		}
		for k := range want {
			if covered[k] != 1 {
				t.Fatalf("round %d: cell %v covered %d times", round, k, covered[k])
			}
		}
		if vol := TotalVolume(got); vol != uint64(len(want)) {
			t.Fatalf("round %d: TotalVolume = %d, want %d", round, vol, len(want))
		}
	}
}

func TestNormalizeIgnoresInvalid(t *testing.T) {
	bad := New(5, 1, 0, 0, 0, 0)
	got := Normalize([]Cuboid{Cube(0, 2), bad, Cube(1, 3)})
	assertPairwiseDisjoint(t, got)
	if vol := TotalVolume(got); vol != uint64(len(cells(Cube(0, 2), Cube(1, 3)))) {
		t.Errorf("TotalVolume = %d", vol)
	}
}

func TestFirstOverlapParallelMatchesSequential(t *testing.T) {
	r := rand.New(rand.NewPCG(1, 2))
	for round := 0; round < 50; round++ {
		in := make([]Cuboid, 100+r.IntN(100))
		for i := range in {
			// Sparse so that the first overlap lands at varying rows.
			in[i] = randomCuboid(r, 2000, 1+r.IntN(60))
		}
		si, sj, sok := FirstOverlap(in)
		for _, workers := range []int{2, 3, 8} {
			pi, pj, pok := firstOverlapParallel(in, workers)
			if pi != si || pj != sj || pok != sok {
				t.Fatalf("round %d workers %d: parallel = (%d,%d,%v), sequential = (%d,%d,%v)",
					round, workers, pi, pj, pok, si, sj, sok)
			}
		}
	}
}

func TestNormalizeWithWorkersMatchesSequential(t *testing.T) {
	r := rand.New(rand.NewPCG(3, 4))
	in := make([]Cuboid, 12)
	for i := range in {
		in[i] = randomCuboid(r, 30, 12)
	}

	want := Normalize(in)

	o := newOptions([]Option{WithWorkers(4)})
	o.parallelThreshold = 0
	got := slices.Clone(in)
	for {
		i, j, ok := o.firstOverlap(got)
		if !ok {
			break
		}
		next := Merge(got[i], got[j])
		for k, c := range got {
			if k != i && k != j {
				next = append(next, c)
			}
		}
		got = next
	}
	if !slices.Equal(got, want) {
		t.Errorf("parallel normalization diverged from sequential:\n got %v\nwant %v", got, want)
	}

	if viaOption := Normalize(in, WithWorkers(4)); !slices.Equal(viaOption, want) {
		t.Errorf("Normalize(WithWorkers) diverged from sequential")
	}
}

func TestWithWorkersDefault(t *testing.T) {
	o := newOptions([]Option{WithWorkers(0)})
	if o.workers < 1 {
		t.Errorf("workers = %d, want >= 1", o.workers)
	}
}

func TestIsPairwiseDisjoint(t *testing.T) {
	if !IsPairwiseDisjoint([]Cuboid{Cube(0, 0), Cube(1, 1)}) {
		t.Error("IsPairwiseDisjoint = false for adjacent cells")
	}
	if IsPairwiseDisjoint([]Cuboid{Cube(0, 1), Cube(1, 2)}) {
		t.Error("IsPairwiseDisjoint = true for overlapping cuboids")
	}
}
