package engine

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/chazu/reboot/pkg/cuboid"
	"github.com/chazu/reboot/pkg/reactor"
	zygo "github.com/glycerine/zygomys/zygo"
)

// ---------------------------------------------------------------------------
// Source preprocessing
// ---------------------------------------------------------------------------

// lineTagged lists the builtins whose calls are stamped with their source
// line during preprocessing.
var lineTagged = map[string]bool{
	"on":     true,
	"off":    true,
	"region": true,
}

// preprocessSource transforms reactor script source before passing it to
// zygomys. It performs three transformations:
//
//  1. Keyword conversion: :keyword -> "__kw_keyword" (string literal)
//     This avoids the need to register keyword symbols as globals, which
//     would conflict with user-defined variables of the same name.
//
//  2. Kebab-case to underscore: lit-region -> lit_region
//     zygomys does not allow hyphens in identifiers (it interprets them
//     as the subtraction operator).
//
//  3. Line stamping: (on ...) -> (on "__ln_N" ...) where N is the line of
//     the opening parenthesis, so instructions remember where they came from.
//
// All transformations respect string literal boundaries and line comments,
// and none of them adds or removes newlines.
func preprocessSource(source string) string {
	result := make([]byte, 0, len(source)+len(source)/4)
	b := []byte(source)
	line := 1
	i := 0
	for i < len(b) {
		if b[i] == '\n' {
			line++
		}
		// Skip double-quoted string literals.
		if b[i] == '"' {
			result = append(result, b[i])
			i++
			for i < len(b) && b[i] != '"' {
				if b[i] == '\\' && i+1 < len(b) {
					result = append(result, b[i], b[i+1])
					i += 2
					continue
				}
				if b[i] == '\n' {
					line++
				}
				result = append(result, b[i])
				i++
			}
			if i < len(b) {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Skip backtick-quoted string literals.
		if b[i] == '`' {
			result = append(result, b[i])
			i++
			for i < len(b) && b[i] != '`' {
				if b[i] == '\n' {
					line++
				}
				result = append(result, b[i])
				i++
			}
			if i < len(b) {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// zygomys uses // for line comments, not the traditional Lisp ;.
		if b[i] == ';' {
			result = append(result, '/', '/')
			i++
			for i < len(b) && b[i] == ';' {
				i++
			}
			for i < len(b) && b[i] != '\n' {
				result = append(result, b[i])
				i++
			}
			continue
		}
		if b[i] == '(' {
			j := i + 1
			for j < len(b) && isIdentChar(b[j]) {
				j++
			}
			if lineTagged[string(b[i+1:j])] && (j == len(b) || isSpaceOrClose(b[j])) {
				result = append(result, b[i:j]...)
				result = append(result, fmt.Sprintf(" %q", lnPrefix+strconv.Itoa(line))...)
				i = j
				continue
			}
		}
		// Transform :keyword to "__kw_keyword".
		if b[i] == ':' && i+1 < len(b) {
			// Preserve := (assignment operator).
			if b[i+1] == '=' {
				result = append(result, b[i], b[i+1])
				i += 2
				continue
			}
			if isLetter(b[i+1]) {
				j := i + 1
				for j < len(b) && isKWChar(b[j]) {
					j++
				}
				result = append(result, '"')
				result = append(result, kwPrefix...)
				result = append(result, b[i+1:j]...)
				result = append(result, '"')
				i = j
				continue
			}
		}
		// Only when the hyphen sits between identifier characters is it part
		// of a name rather than a minus operator.
		if b[i] == '-' && i > 0 && i+1 < len(b) &&
			isIdentChar(b[i-1]) && isIdentStartChar(b[i+1]) {
			result = append(result, '_')
			i++
			continue
		}
		result = append(result, b[i])
		i++
	}
	return string(result)
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isKWChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '-' || c == '_'
}

func isIdentChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '_'
}

func isIdentStartChar(c byte) bool {
	return isLetter(c)
}

func isSpaceOrClose(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == ')'
}

// ---------------------------------------------------------------------------
// Custom Sexp types
// ---------------------------------------------------------------------------

// sexpCuboid wraps a cuboid.Cuboid so it can be passed between builtins.
type sexpCuboid struct {
	c cuboid.Cuboid
}

func (s *sexpCuboid) SexpString(ps *zygo.PrintState) string {
	c := s.c
	return fmt.Sprintf("(cuboid %d %d %d %d %d %d)", c.XMin, c.XMax, c.YMin, c.YMax, c.ZMin, c.ZMax)
}
func (s *sexpCuboid) Type() *zygo.RegisteredType { return nil }

// ---------------------------------------------------------------------------
// Keyword argument parsing
// ---------------------------------------------------------------------------

// kwPrefix is the marker prepended to keyword names by preprocessSource.
const kwPrefix = "__kw_"

// lnPrefix marks the source line stamped onto line-tagged calls.
const lnPrefix = "__ln_"

// isKW checks if a Sexp is a preprocessed keyword string.
// Returns the keyword name (without prefix) and true if it is.
func isKW(s zygo.Sexp) (string, bool) {
	str, ok := s.(*zygo.SexpStr)
	if !ok {
		return "", false
	}
	if strings.HasPrefix(str.S, kwPrefix) {
		return str.S[len(kwPrefix):], true
	}
	return "", false
}

// takeLine strips a leading line stamp from args. It returns 0 when the call
// was not stamped, e.g. when the builtin is invoked through apply.
func takeLine(args []zygo.Sexp) (int, []zygo.Sexp) {
	if len(args) == 0 {
		return 0, args
	}
	str, ok := args[0].(*zygo.SexpStr)
	if !ok || !strings.HasPrefix(str.S, lnPrefix) {
		return 0, args
	}
	n, err := strconv.Atoi(str.S[len(lnPrefix):])
	if err != nil {
		return 0, args
	}
	return n, args[1:]
}

// kwArgs holds the result of parsing a mixed positional+keyword argument list.
type kwArgs struct {
	kw         map[string]zygo.Sexp
	positional []zygo.Sexp
}

// parseArgs separates args into keyword and positional arguments.
func parseArgs(args []zygo.Sexp) kwArgs {
	result := kwArgs{kw: make(map[string]zygo.Sexp)}
	i := 0
	for i < len(args) {
		name, ok := isKW(args[i])
		if ok {
			if i+1 < len(args) {
				result.kw[name] = args[i+1]
				i += 2
			} else {
				result.kw[name] = zygo.SexpNull
				i++
			}
		} else {
			result.positional = append(result.positional, args[i])
			i++
		}
	}
	return result
}

// ---------------------------------------------------------------------------
// Value extraction helpers
// ---------------------------------------------------------------------------

// toInt extracts a coordinate from a Sexp. Floats are accepted when they are
// integral. Coordinates are limited to the 32-bit range so that bound+1
// arithmetic in the decomposer cannot overflow.
func toInt(s zygo.Sexp) (int, error) {
	var v int64
	switch n := s.(type) {
	case *zygo.SexpInt:
		v = n.Val
	case *zygo.SexpFloat:
		if n.Val != math.Trunc(n.Val) || math.IsInf(n.Val, 0) {
			return 0, fmt.Errorf("expected integer, got %v", n.Val)
		}
		if n.Val < math.MinInt32 || n.Val > math.MaxInt32 {
			return 0, fmt.Errorf("coordinate %v out of range", n.Val)
		}
		v = int64(n.Val)
	default:
		return 0, fmt.Errorf("expected integer, got %T (%s)", s, s.SexpString(nil))
	}
	if v < math.MinInt32 || v > math.MaxInt32 {
		return 0, fmt.Errorf("coordinate %d out of range", v)
	}
	return int(v), nil
}

// sexpListToSlice converts a SexpPair (Lisp list) or SexpArray to a Go slice.
func sexpListToSlice(s zygo.Sexp) ([]zygo.Sexp, error) {
	switch v := s.(type) {
	case *zygo.SexpPair:
		return zygo.ListToArray(v)
	case *zygo.SexpArray:
		return v.Val, nil
	case *zygo.SexpSentinel:
		if v == zygo.SexpNull {
			return nil, nil
		}
	}
	return nil, fmt.Errorf("expected list or array, got %T", s)
}

// toRange reads a [min max] pair.
func toRange(s zygo.Sexp) (lo, hi int, err error) {
	items, err := sexpListToSlice(s)
	if err != nil {
		return 0, 0, err
	}
	if len(items) != 2 {
		return 0, 0, fmt.Errorf("expected [min max], got %d values", len(items))
	}
	if lo, err = toInt(items[0]); err != nil {
		return 0, 0, err
	}
	if hi, err = toInt(items[1]); err != nil {
		return 0, 0, err
	}
	return lo, hi, nil
}

// toCuboid accepts the three argument shapes shared by the cuboid builtins:
//
//	(f c)                          ; a cuboid value
//	(f x0 x1 y0 y1 z0 z1)          ; six coordinates
//	(f :x [x0 x1] :y [y0 y1] :z [z0 z1])
func toCuboid(args []zygo.Sexp) (cuboid.Cuboid, error) {
	pa := parseArgs(args)
	if len(pa.kw) > 0 {
		if len(pa.positional) > 0 {
			return cuboid.Cuboid{}, fmt.Errorf("cannot mix keyword and positional bounds")
		}
		var bounds [6]int
		for i, axis := range []string{"x", "y", "z"} {
			v, ok := pa.kw[axis]
			if !ok {
				return cuboid.Cuboid{}, fmt.Errorf("missing :%s range", axis)
			}
			lo, hi, err := toRange(v)
			if err != nil {
				return cuboid.Cuboid{}, fmt.Errorf("%s: %w", axis, err)
			}
			bounds[2*i], bounds[2*i+1] = lo, hi
		}
		if len(pa.kw) > 3 {
			for k := range pa.kw {
				if k != "x" && k != "y" && k != "z" {
					return cuboid.Cuboid{}, fmt.Errorf("unknown keyword :%s", k)
				}
			}
		}
		return cuboid.New(bounds[0], bounds[1], bounds[2], bounds[3], bounds[4], bounds[5]), nil
	}

	switch len(args) {
	case 1:
		if c, ok := args[0].(*sexpCuboid); ok {
			return c.c, nil
		}
		return cuboid.Cuboid{}, fmt.Errorf("expected cuboid, got %T (%s)", args[0], args[0].SexpString(nil))
	case 6:
		var bounds [6]int
		for i, a := range args {
			v, err := toInt(a)
			if err != nil {
				return cuboid.Cuboid{}, fmt.Errorf("argument %d: %w", i+1, err)
			}
			bounds[i] = v
		}
		return cuboid.New(bounds[0], bounds[1], bounds[2], bounds[3], bounds[4], bounds[5]), nil
	}
	return cuboid.Cuboid{}, fmt.Errorf("expected a cuboid or 6 coordinates, got %d arguments", len(args))
}

// lineError prefixes err with the call's line so parseZygomysError can
// recover it.
func lineError(line int, fn string, err error) error {
	if line > 0 {
		return fmt.Errorf("line %d: %s: %w", line, fn, err)
	}
	return fmt.Errorf("%s: %w", fn, err)
}

// ---------------------------------------------------------------------------
// Builtin registration
// ---------------------------------------------------------------------------

// registerBuiltins installs the reactor builtins into a zygomys environment.
// on, off and region append to or modify p during evaluation.
//
// Source code must be preprocessed with preprocessSource() before evaluation so
// that :keyword tokens and line stamps are recognizable.
func registerBuiltins(env *zygo.Zlisp, p *reactor.Program) {

	// (cuboid x0 x1 y0 y1 z0 z1) or (cuboid :x [x0 x1] :y [y0 y1] :z [z0 z1])
	env.AddFunction("cuboid", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		c, err := toCuboid(args)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("cuboid: %w", err)
		}
		return &sexpCuboid{c: c}, nil
	})

	// (cube lo hi)
	env.AddFunction("cube", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 2 {
			return zygo.SexpNull, fmt.Errorf("cube requires exactly 2 arguments, got %d", len(args))
		}
		lo, err := toInt(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("cube: lo: %w", err)
		}
		hi, err := toInt(args[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("cube: hi: %w", err)
		}
		return &sexpCuboid{c: cuboid.Cube(lo, hi)}, nil
	})

	// (on ...) / (off ...)
	instruction := func(state reactor.State) func(*zygo.Zlisp, string, []zygo.Sexp) (zygo.Sexp, error) {
		return func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
			line, args := takeLine(args)
			c, err := toCuboid(args)
			if err != nil {
				return zygo.SexpNull, lineError(line, name, err)
			}
			p.Instructions = append(p.Instructions, reactor.Instruction{
				State:  state,
				Cuboid: c,
				Source: reactor.SourceRef{Line: line},
			})
			return &sexpCuboid{c: c}, nil
		}
	}
	env.AddFunction("on", instruction(reactor.On))
	env.AddFunction("off", instruction(reactor.Off))

	// (region ...) replaces the bounded-volume region.
	env.AddFunction("region", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		line, args := takeLine(args)
		c, err := toCuboid(args)
		if err != nil {
			return zygo.SexpNull, lineError(line, name, err)
		}
		p.Region = c
		return &sexpCuboid{c: c}, nil
	})
}
