package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/chazu/reboot/pkg/config"
	"github.com/chazu/reboot/pkg/cuboid"
	"github.com/chazu/reboot/pkg/engine"
	"github.com/chazu/reboot/pkg/kernel"
	"github.com/chazu/reboot/pkg/kernel/exact"
	"github.com/chazu/reboot/pkg/kernel/sdfx"
	"github.com/chazu/reboot/pkg/reactor"
	"github.com/chazu/reboot/pkg/snapshot"
	"github.com/chazu/reboot/pkg/tessellate"
	"github.com/op/go-logging"
)

var log = logging.MustGetLogger("reboot")

// App wires the parser, script engine, reactor and mesh kernel together
// under one configuration.
type App struct {
	cfg    *config.Config
	engine *engine.Engine
	kernel kernel.Kernel
}

// RunResult is the outcome of running one program.
type RunResult struct {
	Program  *reactor.Program
	Result   *reactor.Result
	Findings []reactor.Finding
	Elapsed  time.Duration
}

// ScriptResult is the outcome of evaluating and running a script. Run is
// nil when the script did not evaluate cleanly.
type ScriptResult struct {
	Errors   []engine.EvalError
	Warnings []engine.EvalWarning
	Run      *RunResult
}

// NewApp creates an App with the engine and kernel selected by cfg.
func NewApp(cfg *config.Config) *App {
	eng := engine.NewEngineWithTimeout(cfg.EvalTimeout)
	eng.SetRegion(cfg.Region())

	var k kernel.Kernel
	switch cfg.MeshKernel {
	case config.KernelSdfx:
		k = sdfx.NewWithCells(cfg.MeshCells)
	default:
		k = exact.New(cfg.Workers)
	}
	return &App{cfg: cfg, engine: eng, kernel: k}
}

func (a *App) reactorOptions() []reactor.Option {
	opts := []reactor.Option{reactor.WithWorkers(a.cfg.Workers)}
	if a.cfg.Strict {
		opts = append(opts, reactor.WithStrictNormalize())
	}
	return opts
}

// RunProgram validates p and runs it on a fresh reactor. Error-severity
// findings stop the run.
func (a *App) RunProgram(ctx context.Context, p *reactor.Program) (*RunResult, error) {
	findings := reactor.Validate(p)
	for _, f := range findings {
		log.Warning(f.Error())
	}
	if reactor.HasErrors(findings) {
		return &RunResult{Program: p, Findings: findings}, fmt.Errorf("program has %d validation findings", len(findings))
	}

	start := time.Now()
	res, err := reactor.Reboot(ctx, p, a.reactorOptions()...)
	if err != nil {
		return nil, err
	}
	elapsed := time.Since(start)
	log.Infof("ran %d instructions in %s: %d fragments", p.Len(), elapsed, len(res.Fragments))
	return &RunResult{Program: p, Result: res, Findings: findings, Elapsed: elapsed}, nil
}

// RunReader parses an instruction list from r and runs it with the
// configured region.
func (a *App) RunReader(ctx context.Context, r io.Reader) (*RunResult, error) {
	p, err := reactor.Parse(r)
	if err != nil {
		return nil, err
	}
	p.Region = a.cfg.Region()
	return a.RunProgram(ctx, p)
}

// RunFile parses and runs the instruction file at path.
func (a *App) RunFile(ctx context.Context, path string) (*RunResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	res, err := a.RunReader(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return res, nil
}

// EvalScript evaluates a reactor script and, when it produced no errors,
// runs the resulting program.
func (a *App) EvalScript(ctx context.Context, source string) (*ScriptResult, error) {
	ev, err := a.engine.EvaluateFull(source)
	if err != nil {
		return nil, err
	}
	out := &ScriptResult{Errors: ev.Errors, Warnings: ev.Warnings}
	if len(ev.Errors) > 0 {
		return out, nil
	}
	for _, w := range ev.Warnings {
		log.Warningf("line %d: %s", w.Line, w.Message)
	}
	run, err := a.RunProgram(ctx, ev.Program)
	if err != nil {
		return nil, err
	}
	out.Run = run
	return out, nil
}

// Mesh tessellates fragments with the configured kernel. When mesh.clip is
// set the output is restricted to region.
func (a *App) Mesh(fragments []cuboid.Cuboid, region cuboid.Cuboid, merge bool) ([]*kernel.Mesh, error) {
	opts := tessellate.Options{Merge: merge}
	if a.cfg.MeshClip {
		opts.Clip = &region
	}
	return tessellate.Tessellate(fragments, a.kernel, opts)
}

// State returns the snapshot of a finished run.
func (r *RunResult) State() *snapshot.State {
	return &snapshot.State{Region: r.Program.Region, Cuboids: r.Result.Fragments}
}

// printParts writes the two puzzle answers.
func printParts(w io.Writer, bounded, total uint64) {
	fmt.Fprintf(w, "Part 1: %d\n", bounded)
	fmt.Fprintf(w, "Part 2: %d\n", total)
}

// ScriptExt marks files that RunPath evaluates as scripts.
const ScriptExt = ".zy"

// RunPath runs path as a script when it has ScriptExt and as an
// instruction list otherwise.
func (a *App) RunPath(ctx context.Context, path string) (*RunResult, error) {
	if filepath.Ext(path) != ScriptExt {
		return a.RunFile(ctx, path)
	}
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	sr, err := a.EvalScript(ctx, string(src))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if len(sr.Errors) > 0 {
		return nil, &ScriptError{Path: path, Errors: sr.Errors}
	}
	return sr.Run, nil
}

// ScriptError reports the evaluation errors of a script file.
type ScriptError struct {
	Path   string
	Errors []engine.EvalError
}

func (e *ScriptError) Error() string {
	if len(e.Errors) == 1 {
		return fmt.Sprintf("%s: %s", e.Path, e.Errors[0])
	}
	return fmt.Sprintf("%s: %s (and %d more errors)", e.Path, e.Errors[0], len(e.Errors)-1)
}
