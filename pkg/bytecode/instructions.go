package bytecode

import (
	"encoding/binary"
	"fmt"
	"strings"
)

// Instructions is a flat instruction stream: opcodes and their big-endian
// operands concatenated with no padding. Byte offsets double as addresses.
type Instructions []byte

// Make encodes one instruction. Supplying the wrong operand count for the
// opcode is a programmer error and panics; it is never a recoverable runtime
// condition.
func Make(op Opcode, operands ...int) []byte {
	def, ok := definitions[op]
	if !ok {
		panic(fmt.Sprintf("bytecode: Make called with undefined opcode %d", byte(op)))
	}
	if len(operands) != len(def.OperandWidths) {
		panic(fmt.Sprintf("bytecode: %s wants %d operands, got %d",
			def.Name, len(def.OperandWidths), len(operands)))
	}

	instructionLen := 1
	for _, w := range def.OperandWidths {
		instructionLen += w
	}

	instruction := make([]byte, instructionLen)
	instruction[0] = byte(op)

	offset := 1
	for i, operand := range operands {
		width := def.OperandWidths[i]
		switch width {
		case 2:
			binary.BigEndian.PutUint16(instruction[offset:], uint16(operand))
		case 1:
			instruction[offset] = byte(operand)
		}
		offset += width
	}

	return instruction
}

// Decode reads one instruction at offset, returning its opcode, decoded
// operands, and the offset of the next instruction. It is the exact inverse
// of Make for every opcode in the definition table.
func Decode(ins Instructions, offset int) (Opcode, []int, int, error) {
	if offset >= len(ins) {
		return 0, nil, offset, fmt.Errorf("offset %d past end of instructions (%d bytes)", offset, len(ins))
	}

	op := Opcode(ins[offset])
	def, err := Lookup(byte(op))
	if err != nil {
		return 0, nil, offset, fmt.Errorf("at offset %d: %w", offset, err)
	}

	width := 0
	for _, w := range def.OperandWidths {
		width += w
	}
	if offset+1+width > len(ins) {
		return 0, nil, offset, fmt.Errorf("truncated %s at offset %d", def.Name, offset)
	}

	operands, read := ReadOperands(def, ins[offset+1:])
	return op, operands, offset + 1 + read, nil
}

// ReadOperands decodes an instruction's operands, returning them along with
// the number of bytes read.
func ReadOperands(def *Definition, ins Instructions) ([]int, int) {
	operands := make([]int, len(def.OperandWidths))
	offset := 0

	for i, width := range def.OperandWidths {
		switch width {
		case 2:
			operands[i] = int(ReadUint16(ins[offset:]))
		case 1:
			operands[i] = int(ins[offset])
		}
		offset += width
	}

	return operands, offset
}

// ReadUint16 decodes a big-endian 2-byte operand.
func ReadUint16(ins Instructions) uint16 {
	return binary.BigEndian.Uint16(ins)
}

// String disassembles the stream: one instruction per line, prefixed with its
// byte offset. Derivable purely from the bytes; used for diagnostics and as
// the comparison form in tests.
func (ins Instructions) String() string {
	var sb strings.Builder

	offset := 0
	for offset < len(ins) {
		op, operands, next, err := Decode(ins, offset)
		if err != nil {
			fmt.Fprintf(&sb, "ERROR: %s\n", err)
			break
		}
		fmt.Fprintf(&sb, "%04d %s\n", offset, fmtInstruction(op, operands))
		offset = next
	}

	return sb.String()
}

func fmtInstruction(op Opcode, operands []int) string {
	switch len(operands) {
	case 0:
		return op.String()
	case 1:
		return fmt.Sprintf("%s %d", op, operands[0])
	default:
		return fmt.Sprintf("ERROR: unhandled operand count for %s", op)
	}
}
