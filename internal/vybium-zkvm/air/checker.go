package air

import (
	"fmt"
	"strings"

	"github.com/vybium/vybium-crypto/pkg/vybium-crypto/field"
)

// ConstraintFailure is an assertion that did not hold on a row
type ConstraintFailure struct {
	Row   int
	Index int
	Label string
	Value field.Element
}

// String formats the failure for reports
func (f ConstraintFailure) String() string {
	label := f.Label
	if label == "" {
		label = "constraint"
	}
	return fmt.Sprintf("row %d: %s #%d evaluates to %s", f.Row, label, f.Index, f.Value.String())
}

type checkerState struct {
	row          int
	count        int
	failures     []ConstraintFailure
	interactions []Interaction
}

// RowChecker is an AirBuilder that evaluates constraints on concrete values
type RowChecker struct {
	state *checkerState
	cond  field.Element
	label string
}

// NewRowChecker creates a checker for the given row index
func NewRowChecker(row int) *RowChecker {
	return &RowChecker{
		state: &checkerState{row: row},
		cond:  field.One,
	}
}

// Failures returns the assertions that did not hold
func (c *RowChecker) Failures() []ConstraintFailure {
	return c.state.failures
}

// Interactions returns every bus message of the row
func (c *RowChecker) Interactions() []Interaction {
	return c.state.interactions
}

// Count returns the number of assertions evaluated
func (c *RowChecker) Count() int {
	return c.state.count
}

// AssertZero implements AirBuilder
func (c *RowChecker) AssertZero(x field.Element) {
	idx := c.state.count
	c.state.count++
	v := c.cond.Mul(x)
	if !v.IsZero() {
		c.state.failures = append(c.state.failures, ConstraintFailure{
			Row:   c.state.row,
			Index: idx,
			Label: c.label,
			Value: v,
		})
	}
}

// AssertEq implements AirBuilder
func (c *RowChecker) AssertEq(a, b field.Element) {
	c.AssertZero(a.Sub(b))
}

// AssertBool implements AirBuilder
func (c *RowChecker) AssertBool(x field.Element) {
	c.AssertZero(x.Mul(x.Sub(field.One)))
}

// AssertAllEq implements AirBuilder
func (c *RowChecker) AssertAllEq(a, b []field.Element) {
	if len(a) != len(b) {
		panic(fmt.Sprintf("air: AssertAllEq on %d and %d values", len(a), len(b)))
	}
	for i := range a {
		c.AssertEq(a[i], b[i])
	}
}

// When implements AirBuilder
func (c *RowChecker) When(cond field.Element) AirBuilder {
	return &RowChecker{state: c.state, cond: c.cond.Mul(cond), label: c.label}
}

// Named implements AirBuilder
func (c *RowChecker) Named(label string) AirBuilder {
	if c.label != "" {
		label = c.label + "/" + label
	}
	return &RowChecker{state: c.state, cond: c.cond, label: label}
}

func (c *RowChecker) push(kind InteractionKind, values []field.Element, multiplicity field.Element, send bool) {
	c.state.interactions = append(c.state.interactions, Interaction{
		Kind:         kind,
		Scope:        Local,
		Values:       append([]field.Element(nil), values...),
		Multiplicity: multiplicity,
		IsSend:       send,
	})
}

// SendByte implements AirBuilder
func (c *RowChecker) SendByte(opcode, a, b, cc, multiplicity field.Element) {
	c.push(ByteBus, []field.Element{opcode, a, b, cc}, multiplicity, true)
}

// ReceiveByte implements AirBuilder
func (c *RowChecker) ReceiveByte(opcode, a, b, cc, multiplicity field.Element) {
	c.push(ByteBus, []field.Element{opcode, a, b, cc}, multiplicity, false)
}

// SendMemory implements AirBuilder
func (c *RowChecker) SendMemory(values []field.Element, multiplicity field.Element) {
	c.push(MemoryBus, values, multiplicity, true)
}

// ReceiveMemory implements AirBuilder
func (c *RowChecker) ReceiveMemory(values []field.Element, multiplicity field.Element) {
	c.push(MemoryBus, values, multiplicity, false)
}

// SendSyscall implements AirBuilder
func (c *RowChecker) SendSyscall(shard, clk, syscallID, arg1, arg2, multiplicity field.Element) {
	c.push(SyscallBus, []field.Element{shard, clk, syscallID, arg1, arg2}, multiplicity, true)
}

// ReceiveSyscall implements AirBuilder
func (c *RowChecker) ReceiveSyscall(shard, clk, syscallID, arg1, arg2, multiplicity field.Element) {
	c.push(SyscallBus, []field.Element{shard, clk, syscallID, arg1, arg2}, multiplicity, false)
}

// Summary joins the failures into one line
func Summary(failures []ConstraintFailure, limit int) string {
	if len(failures) == 0 {
		return "no failures"
	}
	parts := make([]string, 0, limit)
	for i, f := range failures {
		if i == limit {
			parts = append(parts, fmt.Sprintf("... %d more", len(failures)-limit))
			break
		}
		parts = append(parts, f.String())
	}
	return strings.Join(parts, "; ")
}
