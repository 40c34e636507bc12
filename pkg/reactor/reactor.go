package reactor

import (
	"context"
	"fmt"
	"slices"

	"github.com/chazu/reboot/pkg/cuboid"
	"github.com/op/go-logging"
)

var log = logging.MustGetLogger("reactor")

// Phase is the state of the instruction state machine.
type Phase int

const (
	PhaseIdle      Phase = iota // disjoint collection, waiting for input
	PhaseApply                  // instruction being applied
	PhaseNormalize              // overlaps being resolved
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseApply:
		return "apply"
	case PhaseNormalize:
		return "normalize"
	default:
		return fmt.Sprintf("Phase(%d)", int(p))
	}
}

// Observer is called on every phase transition. It must not call back into
// the reactor's mutating methods.
type Observer func(phase Phase, ins Instruction)

type options struct {
	workers  int
	strict   bool
	observer Observer
}

// Option configures a Reactor.
type Option func(*options)

// WithWorkers parallelizes the overlap scan during normalization. Results do
// not depend on n.
func WithWorkers(n int) Option {
	return func(o *options) { o.workers = n }
}

// WithStrictNormalize also normalizes after Off instructions. Removal already
// leaves the collection disjoint, so this only costs a scan.
func WithStrictNormalize() Option {
	return func(o *options) { o.strict = true }
}

// WithObserver registers a phase transition callback.
func WithObserver(fn Observer) Option {
	return func(o *options) { o.observer = fn }
}

// Reactor holds the lit cells as a pairwise-disjoint cuboid collection.
// A Reactor is not safe for concurrent use.
type Reactor struct {
	cuboids []cuboid.Cuboid
	phase   Phase
	applied int
	opts    options
}

// New returns an empty reactor.
func New(opts ...Option) *Reactor {
	r := &Reactor{opts: options{workers: 1}}
	for _, opt := range opts {
		opt(&r.opts)
	}
	return r
}

func (r *Reactor) enter(p Phase, ins Instruction) {
	r.phase = p
	if r.opts.observer != nil {
		r.opts.observer(p, ins)
	}
}

func (r *Reactor) normalizeOptions() []cuboid.Option {
	if r.opts.workers == 1 {
		return nil
	}
	return []cuboid.Option{cuboid.WithWorkers(r.opts.workers)}
}

// Apply runs one instruction through the Apply and Normalize phases and
// returns the reactor to Idle.
func (r *Reactor) Apply(ins Instruction) {
	r.enter(PhaseApply, ins)

	normalize := r.opts.strict
	switch ins.State {
	case On:
		if ins.Cuboid.IsValid() {
			r.cuboids = append(r.cuboids, ins.Cuboid)
			normalize = true
		} else {
			log.Debugf("ignoring empty cuboid %s", ins)
		}
	case Off:
		r.cuboids = removeRegion(r.cuboids, ins.Cuboid)
	}

	if normalize {
		r.enter(PhaseNormalize, ins)
		r.cuboids = cuboid.Normalize(r.cuboids, r.normalizeOptions()...)
	}

	r.applied++
	log.Debugf("applied %s (line %d): %d fragments", ins, ins.Source.Line, len(r.cuboids))
	r.enter(PhaseIdle, ins)
}

// removeRegion replaces every member that meets region by its fragments
// outside region.
func removeRegion(cuboids []cuboid.Cuboid, region cuboid.Cuboid) []cuboid.Cuboid {
	out := make([]cuboid.Cuboid, 0, len(cuboids))
	for _, c := range cuboids {
		if c.IsDisjoint(region) {
			out = append(out, c)
			continue
		}
		out = append(out, cuboid.Remove(c, region)...)
	}
	return out
}

// Run applies instructions strictly in order. The context is consulted
// between instructions; an instruction that has started always completes.
func (r *Reactor) Run(ctx context.Context, instructions []Instruction) error {
	for i, ins := range instructions {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("reactor: stopped before instruction %d (line %d): %w", i, ins.Source.Line, err)
		}
		r.Apply(ins)
	}
	return nil
}

// Phase returns the current state machine phase.
func (r *Reactor) Phase() Phase {
	return r.phase
}

// Applied returns the number of instructions applied so far.
func (r *Reactor) Applied() int {
	return r.applied
}

// Len returns the number of fragments in the collection.
func (r *Reactor) Len() int {
	return len(r.cuboids)
}

// Cuboids returns a copy of the disjoint collection.
func (r *Reactor) Cuboids() []cuboid.Cuboid {
	return slices.Clone(r.cuboids)
}

// TotalVolume returns the number of lit cells.
func (r *Reactor) TotalVolume() uint64 {
	return cuboid.TotalVolume(r.cuboids)
}

// BoundedVolume returns the number of lit cells inside region.
func (r *Reactor) BoundedVolume(region cuboid.Cuboid) uint64 {
	return cuboid.BoundedVolume(r.cuboids, region)
}

// Result is the outcome of running a program to completion.
type Result struct {
	Bounded   uint64          `json:"bounded"`
	Total     uint64          `json:"total"`
	Fragments []cuboid.Cuboid `json:"fragments"`
}

// Reboot runs p on a fresh reactor and reports both volumes.
func Reboot(ctx context.Context, p *Program, opts ...Option) (*Result, error) {
	r := New(opts...)
	if err := r.Run(ctx, p.Instructions); err != nil {
		return nil, err
	}
	return &Result{
		Bounded:   r.BoundedVolume(p.Region),
		Total:     r.TotalVolume(),
		Fragments: r.Cuboids(),
	}, nil
}
