package reactor

import (
	"fmt"

	"github.com/chazu/reboot/pkg/cuboid"
)

// State is the target state of an instruction.
type State int

const (
	Off State = iota
	On
)

func (s State) String() string {
	switch s {
	case Off:
		return "off"
	case On:
		return "on"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// SourceRef points back at the text an instruction was read from.
type SourceRef struct {
	Line int `json:"line"` // 1-based, 0 when unknown
}

// Instruction turns every cell of Cuboid on or off.
type Instruction struct {
	State  State         `json:"state"`
	Cuboid cuboid.Cuboid `json:"cuboid"`
	Source SourceRef     `json:"source"`
}

// String renders the instruction in input syntax.
func (ins Instruction) String() string {
	return ins.State.String() + " " + ins.Cuboid.String()
}

// TurnOn is shorthand for an On instruction without source information.
func TurnOn(c cuboid.Cuboid) Instruction {
	return Instruction{State: On, Cuboid: c}
}

// TurnOff is shorthand for an Off instruction without source information.
func TurnOff(c cuboid.Cuboid) Instruction {
	return Instruction{State: Off, Cuboid: c}
}

// Program is an ordered instruction list plus the region used for the
// bounded volume query.
type Program struct {
	Instructions []Instruction `json:"instructions"`
	Region       cuboid.Cuboid `json:"region"`
}

// NewProgram returns a program over the default initialization region.
func NewProgram(instructions ...Instruction) *Program {
	return &Program{
		Instructions: instructions,
		Region:       cuboid.InitializationRegion,
	}
}

// Len returns the number of instructions.
func (p *Program) Len() int {
	return len(p.Instructions)
}
