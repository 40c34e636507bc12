package reactor

import "fmt"

// Severity indicates whether a finding blocks a run or is informational.
type Severity int

const (
	SeverityError   Severity = iota // blocks the run
	SeverityWarning                 // informational
)

func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	default:
		return fmt.Sprintf("Severity(%d)", int(s))
	}
}

// Finding describes one validation result for a program.
type Finding struct {
	Index    int // instruction index, -1 for program-level findings
	Line     int
	Message  string
	Severity Severity
}

func (f Finding) Error() string {
	if f.Index < 0 {
		return fmt.Sprintf("[%s] %s", f.Severity, f.Message)
	}
	if f.Line > 0 {
		return fmt.Sprintf("[%s] line %d: %s", f.Severity, f.Line, f.Message)
	}
	return fmt.Sprintf("[%s] instruction %d: %s", f.Severity, f.Index, f.Message)
}

// Validate inspects p without running it. Malformed bounds are not errors:
// such instructions cover no cells and are absorbed by the reactor.
func Validate(p *Program) []Finding {
	var findings []Finding
	if !p.Region.IsValid() {
		findings = append(findings, Finding{
			Index:    -1,
			Message:  fmt.Sprintf("region %s is empty; bounded volume is always 0", p.Region),
			Severity: SeverityWarning,
		})
	}
	for i, ins := range p.Instructions {
		if ins.State != On && ins.State != Off {
			findings = append(findings, Finding{
				Index:    i,
				Line:     ins.Source.Line,
				Message:  fmt.Sprintf("unknown state %s", ins.State),
				Severity: SeverityError,
			})
			continue
		}
		if !ins.Cuboid.IsValid() {
			findings = append(findings, Finding{
				Index:    i,
				Line:     ins.Source.Line,
				Message:  fmt.Sprintf("%s has min > max on some axis and covers no cells", ins.Cuboid),
				Severity: SeverityWarning,
			})
		}
	}
	if len(p.Instructions) > 0 && p.Instructions[0].State == Off {
		findings = append(findings, Finding{
			Index:    0,
			Line:     p.Instructions[0].Source.Line,
			Message:  "program starts with off; it has no effect on an empty reactor",
			Severity: SeverityWarning,
		})
	}
	return findings
}

// HasErrors reports whether any finding has SeverityError.
func HasErrors(findings []Finding) bool {
	for _, f := range findings {
		if f.Severity == SeverityError {
			return true
		}
	}
	return false
}
