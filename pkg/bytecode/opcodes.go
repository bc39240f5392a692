package bytecode

import "fmt"

// Opcode identifies one instruction's operation.
type Opcode byte

const (
	OpConstant Opcode = iota // Push constant from pool: OpConstant <index:u16>
	OpPop                    // Discard top of stack

	OpTrue  // Push true
	OpFalse // Push false
	OpNull  // Push null

	// Arithmetic: pop two, push result
	OpAdd
	OpSub
	OpMul
	OpDiv

	// Comparison: pop two, push boolean. There is no less-than opcode; the
	// compiler reverses operand order and reuses OpGreaterThan.
	OpEqual
	OpNotEqual
	OpGreaterThan

	// Unary: replace top of stack
	OpMinus
	OpBang

	// Control flow: operand is the absolute byte offset of the jump target
	OpJump          // OpJump <target:u16>
	OpJumpWhenFalse // OpJumpWhenFalse <target:u16>, pops the condition

	// Global bindings
	OpGetGlobal // OpGetGlobal <index:u16>
	OpSetGlobal // OpSetGlobal <index:u16>, pops the value

	// Composite values
	OpArray // OpArray <count:u16>, pops count elements, pushes array
	OpIndex // Pops index and subject, pushes element

	OpReturnValue // Pop top of stack and halt with it
)

// Definition describes an opcode: its mnemonic, the byte width of each
// operand (big-endian), and its stack effect. A StackPop of -1 means the pop
// count is the value of the first operand.
type Definition struct {
	Name          string
	OperandWidths []int
	StackPop      int
	StackPush     int
}

var definitions = map[Opcode]*Definition{
	OpConstant: {"OpConstant", []int{2}, 0, 1},
	OpPop:      {"OpPop", []int{}, 1, 0},

	OpTrue:  {"OpTrue", []int{}, 0, 1},
	OpFalse: {"OpFalse", []int{}, 0, 1},
	OpNull:  {"OpNull", []int{}, 0, 1},

	OpAdd: {"OpAdd", []int{}, 2, 1},
	OpSub: {"OpSub", []int{}, 2, 1},
	OpMul: {"OpMul", []int{}, 2, 1},
	OpDiv: {"OpDiv", []int{}, 2, 1},

	OpEqual:       {"OpEqual", []int{}, 2, 1},
	OpNotEqual:    {"OpNotEqual", []int{}, 2, 1},
	OpGreaterThan: {"OpGreaterThan", []int{}, 2, 1},

	OpMinus: {"OpMinus", []int{}, 1, 1},
	OpBang:  {"OpBang", []int{}, 1, 1},

	OpJump:          {"OpJump", []int{2}, 0, 0},
	OpJumpWhenFalse: {"OpJumpWhenFalse", []int{2}, 1, 0},

	OpGetGlobal: {"OpGetGlobal", []int{2}, 0, 1},
	OpSetGlobal: {"OpSetGlobal", []int{2}, 1, 0},

	OpArray: {"OpArray", []int{2}, -1, 1},
	OpIndex: {"OpIndex", []int{}, 2, 1},

	OpReturnValue: {"OpReturnValue", []int{}, 1, 0},
}

// Lookup returns the definition for an opcode byte.
func Lookup(op byte) (*Definition, error) {
	def, ok := definitions[Opcode(op)]
	if !ok {
		return nil, fmt.Errorf("opcode %d undefined", op)
	}
	return def, nil
}

// String returns the opcode's mnemonic.
func (op Opcode) String() string {
	if def, ok := definitions[op]; ok {
		return def.Name
	}
	return fmt.Sprintf("Opcode(%d)", byte(op))
}

// OperandWidths returns the operand byte widths for this opcode, or nil if
// the opcode is undefined.
func (op Opcode) OperandWidths() []int {
	if def, ok := definitions[op]; ok {
		return def.OperandWidths
	}
	return nil
}

// NetStackEffect returns pushes minus pops for one instruction, given its
// decoded operands. Used by tooling to verify stack discipline.
func (d *Definition) NetStackEffect(operands []int) int {
	pop := d.StackPop
	if pop == -1 {
		pop = 0
		if len(operands) > 0 {
			pop = operands[0]
		}
	}
	return d.StackPush - pop
}

// AllOpcodes returns every defined opcode. Useful for testing that the
// definition table stays complete.
func AllOpcodes() []Opcode {
	ops := make([]Opcode, 0, len(definitions))
	for op := range definitions {
		ops = append(ops, op)
	}
	return ops
}
