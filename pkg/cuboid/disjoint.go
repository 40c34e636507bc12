package cuboid

import (
	"runtime"
	"slices"
	"sync/atomic"

	"golang.org/x/sync/errgroup"
)

// defaultParallelThreshold is the collection size below which the overlap
// scan always runs on the calling goroutine.
const defaultParallelThreshold = 64

type options struct {
	workers           int
	parallelThreshold int
}

// Option configures Normalize.
type Option func(*options)

// WithWorkers spreads the pairwise overlap scan over n goroutines. The pair
// that gets resolved is always the one the sequential scan would pick, so
// results are identical for every n. n <= 0 selects GOMAXPROCS.
func WithWorkers(n int) Option {
	return func(o *options) {
		if n <= 0 {
			n = runtime.GOMAXPROCS(0)
		}
		o.workers = n
	}
}

func newOptions(opts []Option) options {
	o := options{workers: 1, parallelThreshold: defaultParallelThreshold}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func (o options) firstOverlap(cuboids []Cuboid) (int, int, bool) {
	if o.workers > 1 && len(cuboids) >= o.parallelThreshold {
		return firstOverlapParallel(cuboids, o.workers)
	}
	return FirstOverlap(cuboids)
}

// Normalize returns a pairwise-disjoint collection covering exactly the same
// unit cells as cuboids. The input slice is not modified.
//
// Each pass resolves the first intersecting pair in scan order (lowest i,
// then lowest j): the pair is replaced by Merge(cuboids[i], cuboids[j]),
// followed by every other element in its original order. Passes repeat until
// no pair intersects.
func Normalize(cuboids []Cuboid, opts ...Option) []Cuboid {
	o := newOptions(opts)
	cur := slices.Clone(cuboids)
	passes := 0
	for {
		i, j, ok := o.firstOverlap(cur)
		if !ok {
			if passes > 0 {
				log.Debugf("normalized in %d passes, %d fragments", passes, len(cur))
			}
			return cur
		}
		passes++
		merged := Merge(cur[i], cur[j])
		next := make([]Cuboid, 0, len(cur)+len(merged)-2)
		next = append(next, merged...)
		for k, c := range cur {
			if k == i || k == j {
				continue
			}
			next = append(next, c)
		}
		cur = next
	}
}

// FirstOverlap returns the first pair i < j in scan order whose cuboids
// intersect.
func FirstOverlap(cuboids []Cuboid) (i, j int, ok bool) {
	for i = 0; i < len(cuboids); i++ {
		if j, ok = firstOverlapInRow(cuboids, i); ok {
			return i, j, true
		}
	}
	return 0, 0, false
}

// IsPairwiseDisjoint reports whether no two cuboids intersect.
func IsPairwiseDisjoint(cuboids []Cuboid) bool {
	_, _, found := FirstOverlap(cuboids)
	return !found
}

func firstOverlapInRow(cuboids []Cuboid, i int) (int, bool) {
	a := cuboids[i]
	for j := i + 1; j < len(cuboids); j++ {
		if !a.IsDisjoint(cuboids[j]) {
			return j, true
		}
	}
	return 0, false
}

// firstOverlapParallel deals rows round-robin to workers. A worker stops as
// soon as its next row lies past the best row found so far, so only rows that
// can still win are scanned.
func firstOverlapParallel(cuboids []Cuboid, workers int) (int, int, bool) {
	n := len(cuboids)
	var best atomic.Int64
	best.Store(int64(n))
	hits := make([]int, n)

	var g errgroup.Group
	for w := 0; w < workers; w++ {
		g.Go(func() error {
			for i := w; i < n; i += workers {
				if int64(i) >= best.Load() {
					return nil
				}
				j, ok := firstOverlapInRow(cuboids, i)
				if !ok {
					continue
				}
				hits[i] = j
				for {
					cur := best.Load()
					if int64(i) >= cur || best.CompareAndSwap(cur, int64(i)) {
						break
					}
				}
				return nil
			}
			return nil
		})
	}
	_ = g.Wait()

	i := int(best.Load())
	if i == n {
		return 0, 0, false
	}
	return i, hits[i], true
}
