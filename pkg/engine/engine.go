// Package engine evaluates reactor scripts. It wraps zygomys in a sandboxed
// environment and produces a reactor.Program from user source code.
package engine

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/chazu/reboot/pkg/cuboid"
	"github.com/chazu/reboot/pkg/reactor"
	zygo "github.com/glycerine/zygomys/zygo"
	"github.com/op/go-logging"
)

var log = logging.MustGetLogger("engine")

// EvalError represents a non-fatal error encountered during evaluation,
// such as a parse error or a runtime error in user code.
type EvalError struct {
	Line    int
	Col     int
	Message string
}

func (e EvalError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s", e.Line, e.Message)
	}
	return e.Message
}

// EvalWarning represents a non-fatal warning about the produced program.
type EvalWarning struct {
	Line    int
	Index   int
	Message string
}

// EvalResult bundles the full output of an evaluation.
type EvalResult struct {
	Program  *reactor.Program
	Errors   []EvalError
	Warnings []EvalWarning
}

// Engine wraps the zygomys interpreter for reactor scripts.
// It is safe for concurrent use; each call to Evaluate creates a fresh
// sandboxed environment for determinism.
type Engine struct {
	mu         sync.Mutex
	generation uint64
	timeout    time.Duration
	region     cuboid.Cuboid
}

// NewEngine creates a new Engine with the default EvalTimeout.
func NewEngine() *Engine {
	return &Engine{timeout: EvalTimeout, region: cuboid.InitializationRegion}
}

// NewEngineWithTimeout creates an Engine whose evaluations are abandoned
// after d. A non-positive d selects EvalTimeout.
func NewEngineWithTimeout(d time.Duration) *Engine {
	if d <= 0 {
		d = EvalTimeout
	}
	return &Engine{timeout: d, region: cuboid.InitializationRegion}
}

// SetRegion sets the region programs start with. A script's (region ...)
// call still replaces it.
func (e *Engine) SetRegion(c cuboid.Cuboid) {
	e.mu.Lock()
	e.region = c
	e.mu.Unlock()
}

// Timeout returns the per-evaluation time limit.
func (e *Engine) Timeout() time.Duration {
	return e.timeout
}

// Evaluate takes Lisp source code and produces the reactor program it
// describes. Each call creates a fresh zygomys sandbox.
//
// Return semantics:
//   - On success: returns program + nil errors + nil error
//   - On parse/eval failure: returns nil program + eval errors + nil error
//   - On fatal failure (timeout, panic): returns nil + nil + error
func (e *Engine) Evaluate(source string) (*reactor.Program, []EvalError, error) {
	e.mu.Lock()
	e.generation++
	gen := e.generation
	region := e.region
	e.mu.Unlock()

	ch := make(chan evalResult, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				ch <- evalResult{err: fmt.Errorf("panic during evaluation: %v", r)}
			}
		}()

		p, evalErrs, err := e.evaluate(source, region)
		ch <- evalResult{program: p, errors: evalErrs, err: err}
	}()

	return waitWithTimeout(ch, gen, &e.mu, &e.generation, e.timeout)
}

// EvaluateFull runs Evaluate and attaches validation findings for the
// resulting program as warnings. Error-severity findings become EvalErrors.
func (e *Engine) EvaluateFull(source string) (*EvalResult, error) {
	p, evalErrs, err := e.Evaluate(source)
	if err != nil {
		return nil, err
	}
	res := &EvalResult{Program: p, Errors: evalErrs}
	if p == nil {
		return res, nil
	}
	for _, f := range reactor.Validate(p) {
		if f.Severity == reactor.SeverityError {
			res.Errors = append(res.Errors, EvalError{Line: f.Line, Message: f.Message})
			continue
		}
		res.Warnings = append(res.Warnings, EvalWarning{Line: f.Line, Index: f.Index, Message: f.Message})
	}
	return res, nil
}

// evaluate performs the actual zygomys evaluation in a fresh sandbox.
func (e *Engine) evaluate(source string, region cuboid.Cuboid) (*reactor.Program, []EvalError, error) {
	p := reactor.NewProgram()
	p.Region = region

	// Empty source is a valid program with no instructions.
	if strings.TrimSpace(source) == "" {
		return p, nil, nil
	}

	// Sandbox mode prevents user code from accessing the filesystem or syscalls.
	env := zygo.NewZlispSandbox()
	defer env.Stop()

	registerBuiltins(env, p)

	err := env.LoadString(preprocessSource(source))
	if err != nil {
		return nil, parseZygomysError(err), nil
	}

	_, err = env.Run()
	if err != nil {
		return nil, parseZygomysError(err), nil
	}

	log.Debugf("script produced %d instructions", p.Len())
	return p, nil, nil
}

// linePattern matches zygomys error messages that include "Error on line N: ..."
var linePattern = regexp.MustCompile(`(?i)(?:error )?on line (\d+):\s*(.*)`)

// linePatternShort matches simpler "line N: ..." patterns.
var linePatternShort = regexp.MustCompile(`(?i)\bline (\d+):\s*(.*)`)

// parseZygomysError converts a zygomys error into one or more EvalError values.
// It attempts to extract line number information from the error message.
func parseZygomysError(err error) []EvalError {
	msg := err.Error()

	// zygomys formats parse errors as "Error on line N: <details>\n"
	if m := linePattern.FindStringSubmatch(msg); m != nil {
		line, _ := strconv.Atoi(m[1])
		return []EvalError{{Line: line, Message: strings.TrimSpace(m[2])}}
	}

	// Builtin errors carry the call's line as "line N: ..." (see lineError).
	if m := linePatternShort.FindStringSubmatch(msg); m != nil {
		line, _ := strconv.Atoi(m[1])
		return []EvalError{{Line: line, Message: strings.TrimSpace(m[2])}}
	}

	return []EvalError{{Message: strings.TrimSpace(msg)}}
}
