// Package vm implements the stack machine that executes compiled chunks.
package vm

import (
	"fmt"

	"github.com/tusk-lang/tusk/pkg/bytecode"
	"github.com/tusk-lang/tusk/pkg/object"
)

const (
	// StackSize bounds the operand stack.
	StackSize = 2048

	// GlobalsSize matches the 2-byte operand space of OpGetGlobal/OpSetGlobal.
	GlobalsSize = 65536
)

// Shared singletons so comparisons can use pointer identity.
var (
	True  = &object.Boolean{Value: true}
	False = &object.Boolean{Value: false}
	Null  = &object.Null{}
)

// VM executes one chunk. It owns its stack and globals exclusively;
// independent VMs need no coordination.
type VM struct {
	chunk   *bytecode.Chunk
	globals []object.Object

	stack []object.Object
	sp    int // next free slot; top of stack is stack[sp-1]

	result object.Object // set by OpReturnValue
}

// New creates a VM for the given chunk.
func New(chunk *bytecode.Chunk) *VM {
	return &VM{
		chunk:   chunk,
		globals: make([]object.Object, GlobalsSize),
		stack:   make([]object.Object, StackSize),
	}
}

// NewWithGlobals creates a VM sharing a globals store, so a REPL can carry
// bindings across lines.
func NewWithGlobals(chunk *bytecode.Chunk, globals []object.Object) *VM {
	vm := New(chunk)
	vm.globals = globals
	return vm
}

// LastPopped returns the value most recently discarded by OpPop. Expression
// statements pop their value, so after a program runs this is the last
// statement's result.
func (vm *VM) LastPopped() object.Object {
	return vm.stack[vm.sp]
}

// Result returns the value produced by OpReturnValue, or nil if the program
// ran off the end of the stream.
func (vm *VM) Result() object.Object {
	return vm.result
}

// Run executes the chunk's instruction stream from offset zero until the end
// of the stream or an OpReturnValue.
func (vm *VM) Run() error {
	code := vm.chunk.Code

	for ip := 0; ip < len(code); {
		op := bytecode.Opcode(code[ip])

		switch op {
		case bytecode.OpConstant:
			idx := bytecode.ReadUint16(code[ip+1:])
			ip += 3
			if err := vm.push(vm.chunk.Constants[idx]); err != nil {
				return err
			}

		case bytecode.OpPop:
			ip++
			if _, err := vm.pop(); err != nil {
				return err
			}

		case bytecode.OpTrue:
			ip++
			if err := vm.push(True); err != nil {
				return err
			}

		case bytecode.OpFalse:
			ip++
			if err := vm.push(False); err != nil {
				return err
			}

		case bytecode.OpNull:
			ip++
			if err := vm.push(Null); err != nil {
				return err
			}

		case bytecode.OpAdd, bytecode.OpSub, bytecode.OpMul, bytecode.OpDiv:
			ip++
			if err := vm.executeBinaryOperation(op); err != nil {
				return err
			}

		case bytecode.OpEqual, bytecode.OpNotEqual, bytecode.OpGreaterThan:
			ip++
			if err := vm.executeComparison(op); err != nil {
				return err
			}

		case bytecode.OpMinus:
			ip++
			if err := vm.executeMinus(); err != nil {
				return err
			}

		case bytecode.OpBang:
			ip++
			if err := vm.executeBang(); err != nil {
				return err
			}

		case bytecode.OpJump:
			ip = int(bytecode.ReadUint16(code[ip+1:]))

		case bytecode.OpJumpWhenFalse:
			target := int(bytecode.ReadUint16(code[ip+1:]))
			ip += 3
			condition, err := vm.pop()
			if err != nil {
				return err
			}
			if !isTruthy(condition) {
				ip = target
			}

		case bytecode.OpSetGlobal:
			idx := bytecode.ReadUint16(code[ip+1:])
			ip += 3
			val, err := vm.pop()
			if err != nil {
				return err
			}
			vm.globals[idx] = val

		case bytecode.OpGetGlobal:
			idx := bytecode.ReadUint16(code[ip+1:])
			ip += 3
			if err := vm.push(vm.globals[idx]); err != nil {
				return err
			}

		case bytecode.OpArray:
			count := int(bytecode.ReadUint16(code[ip+1:]))
			ip += 3
			arr, err := vm.buildArray(count)
			if err != nil {
				return err
			}
			if err := vm.push(arr); err != nil {
				return err
			}

		case bytecode.OpIndex:
			ip++
			index, err := vm.pop()
			if err != nil {
				return err
			}
			left, err := vm.pop()
			if err != nil {
				return err
			}
			if err := vm.executeIndex(left, index); err != nil {
				return err
			}

		case bytecode.OpReturnValue:
			result, err := vm.pop()
			if err != nil {
				return err
			}
			vm.result = result
			return nil

		default:
			return fmt.Errorf("unknown opcode %d at offset %d", byte(op), ip)
		}
	}

	return nil
}

func (vm *VM) push(o object.Object) error {
	if vm.sp >= StackSize {
		return fmt.Errorf("stack overflow")
	}
	vm.stack[vm.sp] = o
	vm.sp++
	return nil
}

// pop errors on underflow rather than panicking, so a corrupted or
// hand-built chunk fails with a diagnosable message.
func (vm *VM) pop() (object.Object, error) {
	if vm.sp == 0 {
		return nil, fmt.Errorf("stack underflow")
	}
	vm.sp--
	return vm.stack[vm.sp], nil
}

func (vm *VM) executeBinaryOperation(op bytecode.Opcode) error {
	right, err := vm.pop()
	if err != nil {
		return err
	}
	left, err := vm.pop()
	if err != nil {
		return err
	}

	switch {
	case left.Type() == object.IntegerType && right.Type() == object.IntegerType:
		return vm.executeIntegerOperation(op, left.(*object.Integer), right.(*object.Integer))
	case left.Type() == object.StringType && right.Type() == object.StringType:
		if op != bytecode.OpAdd {
			return fmt.Errorf("unknown string operation: %s", op)
		}
		return vm.push(&object.String{
			Value: left.(*object.String).Value + right.(*object.String).Value,
		})
	default:
		return fmt.Errorf("unsupported types for binary operation: %s %s", left.Type(), right.Type())
	}
}

func (vm *VM) executeIntegerOperation(op bytecode.Opcode, left, right *object.Integer) error {
	var result int64
	switch op {
	case bytecode.OpAdd:
		result = left.Value + right.Value
	case bytecode.OpSub:
		result = left.Value - right.Value
	case bytecode.OpMul:
		result = left.Value * right.Value
	case bytecode.OpDiv:
		if right.Value == 0 {
			return fmt.Errorf("division by zero")
		}
		result = left.Value / right.Value
	default:
		return fmt.Errorf("unknown integer operation: %s", op)
	}
	return vm.push(&object.Integer{Value: result})
}

func (vm *VM) executeComparison(op bytecode.Opcode) error {
	right, err := vm.pop()
	if err != nil {
		return err
	}
	left, err := vm.pop()
	if err != nil {
		return err
	}

	if left.Type() == object.IntegerType && right.Type() == object.IntegerType {
		return vm.executeIntegerComparison(op, left.(*object.Integer), right.(*object.Integer))
	}

	// Strings compare by value; constants are not interned, so pointer
	// identity would make equal literals unequal.
	if left.Type() == object.StringType && right.Type() == object.StringType {
		l, r := left.(*object.String).Value, right.(*object.String).Value
		switch op {
		case bytecode.OpEqual:
			return vm.push(nativeBool(l == r))
		case bytecode.OpNotEqual:
			return vm.push(nativeBool(l != r))
		default:
			return fmt.Errorf("unknown string comparison: %s", op)
		}
	}

	switch op {
	case bytecode.OpEqual:
		return vm.push(nativeBool(left == right))
	case bytecode.OpNotEqual:
		return vm.push(nativeBool(left != right))
	default:
		return fmt.Errorf("unknown comparison for types %s %s: %s", left.Type(), right.Type(), op)
	}
}

func (vm *VM) executeIntegerComparison(op bytecode.Opcode, left, right *object.Integer) error {
	switch op {
	case bytecode.OpEqual:
		return vm.push(nativeBool(left.Value == right.Value))
	case bytecode.OpNotEqual:
		return vm.push(nativeBool(left.Value != right.Value))
	case bytecode.OpGreaterThan:
		return vm.push(nativeBool(left.Value > right.Value))
	default:
		return fmt.Errorf("unknown integer comparison: %s", op)
	}
}

func (vm *VM) executeMinus() error {
	operand, err := vm.pop()
	if err != nil {
		return err
	}
	i, ok := operand.(*object.Integer)
	if !ok {
		return fmt.Errorf("unsupported type for negation: %s", operand.Type())
	}
	return vm.push(&object.Integer{Value: -i.Value})
}

func (vm *VM) executeBang() error {
	operand, err := vm.pop()
	if err != nil {
		return err
	}
	switch operand {
	case False, Null:
		return vm.push(True)
	default:
		return vm.push(False)
	}
}

func (vm *VM) buildArray(count int) (object.Object, error) {
	elements := make([]object.Object, count)
	for i := count - 1; i >= 0; i-- {
		element, err := vm.pop()
		if err != nil {
			return nil, err
		}
		elements[i] = element
	}
	return &object.Array{Elements: elements}, nil
}

func (vm *VM) executeIndex(left, index object.Object) error {
	arr, ok := left.(*object.Array)
	if !ok {
		return fmt.Errorf("index operator not supported for %s", left.Type())
	}
	i, ok := index.(*object.Integer)
	if !ok {
		return fmt.Errorf("array index must be INTEGER, got %s", index.Type())
	}
	if i.Value < 0 || i.Value > int64(len(arr.Elements)-1) {
		return vm.push(Null)
	}
	return vm.push(arr.Elements[i.Value])
}

func nativeBool(b bool) *object.Boolean {
	if b {
		return True
	}
	return False
}

func isTruthy(obj object.Object) bool {
	switch obj {
	case False, Null:
		return false
	default:
		return true
	}
}
