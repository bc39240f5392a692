package bytecode

import (
	"bytes"
	"testing"
)

func TestMake(t *testing.T) {
	tests := []struct {
		op       Opcode
		operands []int
		expected []byte
	}{
		{OpConstant, []int{65534}, []byte{byte(OpConstant), 255, 254}},
		{OpConstant, []int{0}, []byte{byte(OpConstant), 0, 0}},
		{OpAdd, []int{}, []byte{byte(OpAdd)}},
		{OpJump, []int{10}, []byte{byte(OpJump), 0, 10}},
		{OpJumpWhenFalse, []int{65535}, []byte{byte(OpJumpWhenFalse), 255, 255}},
		{OpArray, []int{3}, []byte{byte(OpArray), 0, 3}},
	}

	for _, tt := range tests {
		instruction := Make(tt.op, tt.operands...)
		if !bytes.Equal(instruction, tt.expected) {
			t.Errorf("Make(%s, %v) = %v, want %v", tt.op, tt.operands, instruction, tt.expected)
		}
	}
}

func TestMakeArityMismatchPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic for wrong operand count")
		}
	}()
	Make(OpConstant) // OpConstant wants one operand
}

func TestInstructionsString(t *testing.T) {
	instructions := []Instructions{
		Make(OpAdd),
		Make(OpGetGlobal, 1),
		Make(OpConstant, 2),
		Make(OpConstant, 65535),
	}

	expected := `0000 OpAdd
0001 OpGetGlobal 1
0004 OpConstant 2
0007 OpConstant 65535
`

	concatted := Instructions{}
	for _, ins := range instructions {
		concatted = append(concatted, ins...)
	}

	if concatted.String() != expected {
		t.Errorf("instructions wrongly formatted.\nwant %q\ngot  %q", expected, concatted.String())
	}
}

func TestReadOperands(t *testing.T) {
	tests := []struct {
		op        Opcode
		operands  []int
		bytesRead int
	}{
		{OpConstant, []int{65535}, 2},
		{OpJump, []int{12}, 2},
		{OpArray, []int{0}, 2},
	}

	for _, tt := range tests {
		instruction := Make(tt.op, tt.operands...)

		def, err := Lookup(byte(tt.op))
		if err != nil {
			t.Fatalf("definition not found: %v", err)
		}

		operandsRead, n := ReadOperands(def, instruction[1:])
		if n != tt.bytesRead {
			t.Fatalf("n wrong. want %d, got %d", tt.bytesRead, n)
		}
		for i, want := range tt.operands {
			if operandsRead[i] != want {
				t.Errorf("operand wrong. want %d, got %d", want, operandsRead[i])
			}
		}
	}
}

// Decoding an instruction and re-encoding it must reproduce the original
// bytes for every opcode in the table.
func TestDecodeEncodeRoundTrip(t *testing.T) {
	for _, op := range AllOpcodes() {
		def, _ := Lookup(byte(op))

		operands := make([]int, len(def.OperandWidths))
		for i, w := range def.OperandWidths {
			switch w {
			case 2:
				operands[i] = 1234
			case 1:
				operands[i] = 56
			}
		}

		original := Make(op, operands...)

		decodedOp, decodedOperands, next, err := Decode(original, 0)
		if err != nil {
			t.Fatalf("Decode(%s): %v", op, err)
		}
		if decodedOp != op {
			t.Errorf("decoded opcode %s, want %s", decodedOp, op)
		}
		if next != len(original) {
			t.Errorf("%s: next offset %d, want %d", op, next, len(original))
		}

		reencoded := Make(decodedOp, decodedOperands...)
		if !bytes.Equal(reencoded, original) {
			t.Errorf("%s: re-encoding %v produced %v", op, original, reencoded)
		}
	}
}

func TestDecodeErrors(t *testing.T) {
	if _, _, _, err := Decode(Instructions{}, 0); err == nil {
		t.Error("expected error decoding past end of stream")
	}
	if _, _, _, err := Decode(Instructions{255}, 0); err == nil {
		t.Error("expected error decoding undefined opcode")
	}
}
