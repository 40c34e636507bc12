package reactor

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/chazu/reboot/pkg/cuboid"
)

// ParseError reports an input line that is not a valid instruction.
type ParseError struct {
	Line int
	Text string
	Err  error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("line %d: %q: %v", e.Line, e.Text, e.Err)
	}
	return fmt.Sprintf("line %d: %q: not an instruction", e.Line, e.Text)
}

func (e *ParseError) Unwrap() error { return e.Err }

var instructionPattern = regexp.MustCompile(
	`^(on|off)\s+x=(-?\d+)\.\.(-?\d+),y=(-?\d+)\.\.(-?\d+),z=(-?\d+)\.\.(-?\d+)$`)

// ParseLine parses a single "on|off x=a..b,y=c..d,z=e..f" line. Bounds with
// min > max are accepted and yield an invalid (empty) cuboid.
func ParseLine(line string) (Instruction, error) {
	m := instructionPattern.FindStringSubmatch(strings.TrimSpace(line))
	if m == nil {
		return Instruction{}, &ParseError{Text: line}
	}

	var bounds [6]int
	for i := range bounds {
		// Bounds are limited to 32 bits so that ref±1 in the decomposer
		// never overflows.
		v, err := strconv.ParseInt(m[i+2], 10, 32)
		if err != nil {
			return Instruction{}, &ParseError{Text: line, Err: err}
		}
		bounds[i] = int(v)
	}

	state := On
	if m[1] == "off" {
		state = Off
	}
	return Instruction{
		State:  state,
		Cuboid: cuboid.New(bounds[0], bounds[1], bounds[2], bounds[3], bounds[4], bounds[5]),
	}, nil
}

// Parse reads one instruction per line from r. Blank lines are skipped;
// any other unparseable line aborts parsing with a *ParseError.
func Parse(r io.Reader) (*Program, error) {
	p := NewProgram()
	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		text := sc.Text()
		if strings.TrimSpace(text) == "" {
			continue
		}
		ins, err := ParseLine(text)
		if err != nil {
			if pe, ok := err.(*ParseError); ok {
				pe.Line = line
			}
			return nil, err
		}
		ins.Source = SourceRef{Line: line}
		log.Debugf("parsed cuboid: %s", ins)
		p.Instructions = append(p.Instructions, ins)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reactor: reading instructions: %w", err)
	}
	return p, nil
}

// ParseString is Parse over an in-memory string.
func ParseString(s string) (*Program, error) {
	return Parse(strings.NewReader(s))
}
