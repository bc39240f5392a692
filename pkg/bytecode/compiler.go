package bytecode

import (
	"errors"
	"fmt"
	"math"

	"github.com/tusk-lang/tusk/pkg/ast"
	"github.com/tusk-lang/tusk/pkg/object"
)

// Address-space limits imposed by the fixed 2-byte operand width.
const (
	MaxConstants = math.MaxUint16 + 1
	MaxCodeSize  = math.MaxUint16 + 1
)

// placeholderTarget fills a jump operand until back-patching overwrites it.
// The value is never observed by the VM.
const placeholderTarget = 0xFFFF

// ErrUnsupported marks AST constructs the bytecode compiler has no codegen
// rule for. Callers can detect it with errors.Is and fall back to the
// tree-walking backend.
var ErrUnsupported = errors.New("unsupported in compiled mode")

// EmittedInstruction records the opcode and position of an emitted
// instruction, so trailing pops can be removed from conditional arms.
type EmittedInstruction struct {
	Opcode   Opcode
	Position int
}

// Compiler walks one AST and appends instructions and constants to a chunk.
// A compiler instance processes one program from an empty starting state; it
// is not safe for concurrent use, but independent instances need no
// coordination.
type Compiler struct {
	chunk   *Chunk
	symbols *SymbolTable

	lastInstruction     EmittedInstruction
	previousInstruction EmittedInstruction
}

// NewCompiler creates a compiler with an empty chunk and symbol table.
func NewCompiler() *Compiler {
	return &Compiler{
		chunk: &Chunk{
			Code:      make(Instructions, 0, 256),
			Constants: make([]object.Object, 0, 16),
		},
		symbols: NewSymbolTable(),
	}
}

// NewCompilerWithState creates a compiler that extends an existing symbol
// table and constant pool, so a REPL can carry global bindings across lines.
func NewCompilerWithState(symbols *SymbolTable, constants []object.Object) *Compiler {
	c := NewCompiler()
	c.symbols = symbols
	c.chunk.Constants = constants
	return c
}

// Bytecode returns the compiled chunk.
func (c *Compiler) Bytecode() *Chunk {
	return c.chunk
}

// Compile recursively compiles one AST node. On failure the whole compile is
// aborted with a single descriptive error; no partial output is returned to
// the caller as success.
func (c *Compiler) Compile(node ast.Node) error {
	switch node := node.(type) {
	case *ast.Program:
		for _, s := range node.Statements {
			if err := c.Compile(s); err != nil {
				return err
			}
		}
		if len(c.chunk.Code) > MaxCodeSize {
			return fmt.Errorf("code size %d exceeds the %d-byte jump address space", len(c.chunk.Code), MaxCodeSize)
		}

	case *ast.ExpressionStatement:
		if err := c.Compile(node.Expression); err != nil {
			return err
		}
		c.emit(OpPop)

	case *ast.BlockStatement:
		for _, s := range node.Statements {
			if err := c.Compile(s); err != nil {
				return err
			}
		}

	case *ast.LetStatement:
		if err := c.Compile(node.Value); err != nil {
			return err
		}
		sym := c.symbols.Define(node.Name.Value)
		c.emit(OpSetGlobal, sym.Index)

	case *ast.ReturnStatement:
		if err := c.Compile(node.Value); err != nil {
			return err
		}
		c.emit(OpReturnValue)

	case *ast.Identifier:
		sym, ok := c.symbols.Resolve(node.Value)
		if !ok {
			return fmt.Errorf("undefined variable %s", node.Value)
		}
		c.emit(OpGetGlobal, sym.Index)

	case *ast.IntegerLiteral:
		idx, err := c.addConstant(&object.Integer{Value: node.Value})
		if err != nil {
			return err
		}
		c.emit(OpConstant, idx)

	case *ast.StringLiteral:
		idx, err := c.addConstant(&object.String{Value: node.Value})
		if err != nil {
			return err
		}
		c.emit(OpConstant, idx)

	case *ast.BooleanLiteral:
		if node.Value {
			c.emit(OpTrue)
		} else {
			c.emit(OpFalse)
		}

	case *ast.NullLiteral:
		c.emit(OpNull)

	case *ast.PrefixExpression:
		if err := c.Compile(node.Right); err != nil {
			return err
		}
		switch node.Operator {
		case "-":
			c.emit(OpMinus)
		case "!":
			c.emit(OpBang)
		default:
			return fmt.Errorf("unknown prefix operator %s", node.Operator)
		}

	case *ast.InfixExpression:
		return c.compileInfix(node)

	case *ast.IfExpression:
		return c.compileIf(node)

	case *ast.ArrayLiteral:
		for _, el := range node.Elements {
			if err := c.Compile(el); err != nil {
				return err
			}
		}
		c.emit(OpArray, len(node.Elements))

	case *ast.IndexExpression:
		if err := c.Compile(node.Left); err != nil {
			return err
		}
		if err := c.Compile(node.Index); err != nil {
			return err
		}
		c.emit(OpIndex)

	case *ast.FunctionLiteral:
		return fmt.Errorf("function literals are %w", ErrUnsupported)

	case *ast.CallExpression:
		return fmt.Errorf("function calls are %w", ErrUnsupported)

	default:
		return fmt.Errorf("no codegen rule for %T: %w", node, ErrUnsupported)
	}

	return nil
}

// compileInfix compiles a binary expression: both operands, then the
// operator. Ordering comparisons are normalized to greater-than: a < b is
// compiled as b, a, OpGreaterThan, so no less-than opcode exists.
func (c *Compiler) compileInfix(node *ast.InfixExpression) error {
	if node.Operator == "<" {
		if err := c.Compile(node.Right); err != nil {
			return err
		}
		if err := c.Compile(node.Left); err != nil {
			return err
		}
		c.emit(OpGreaterThan)
		return nil
	}

	if err := c.Compile(node.Left); err != nil {
		return err
	}
	if err := c.Compile(node.Right); err != nil {
		return err
	}

	switch node.Operator {
	case "+":
		c.emit(OpAdd)
	case "-":
		c.emit(OpSub)
	case "*":
		c.emit(OpMul)
	case "/":
		c.emit(OpDiv)
	case "==":
		c.emit(OpEqual)
	case "!=":
		c.emit(OpNotEqual)
	case ">":
		c.emit(OpGreaterThan)
	default:
		return fmt.Errorf("unknown infix operator %s", node.Operator)
	}
	return nil
}

// compileIf compiles a conditional as a value-producing expression: whichever
// arm runs leaves its value on the stack, and a missing alternative pushes
// null. Jump operands are emitted as placeholders and patched to absolute
// offsets once the targets are known.
func (c *Compiler) compileIf(node *ast.IfExpression) error {
	if err := c.Compile(node.Condition); err != nil {
		return err
	}

	jumpWhenFalsePos := c.emit(OpJumpWhenFalse, placeholderTarget)

	if err := c.compileBranch(node.Consequence); err != nil {
		return err
	}

	jumpPos := c.emit(OpJump, placeholderTarget)

	if err := c.changeOperand(jumpWhenFalsePos, len(c.chunk.Code)); err != nil {
		return err
	}

	if node.Alternative == nil {
		c.emit(OpNull)
	} else {
		if err := c.compileBranch(node.Alternative); err != nil {
			return err
		}
	}

	return c.changeOperand(jumpPos, len(c.chunk.Code))
}

// compileBranch compiles one conditional arm so it leaves exactly one value
// on the stack: a trailing OpPop from a final expression statement is
// removed, an empty arm degenerates to pushing null, and an arm whose last
// statement pushes nothing (a let or return) gets an explicit OpNull so the
// statement-level pop always has a value to consume.
func (c *Compiler) compileBranch(block *ast.BlockStatement) error {
	if len(block.Statements) == 0 {
		c.emit(OpNull)
		return nil
	}
	if err := c.Compile(block); err != nil {
		return err
	}
	if c.lastInstructionIs(OpPop) {
		c.removeLastPop()
	} else {
		c.emit(OpNull)
	}
	return nil
}

// emit appends one encoded instruction and returns its byte offset.
func (c *Compiler) emit(op Opcode, operands ...int) int {
	pos := len(c.chunk.Code)
	c.chunk.Code = append(c.chunk.Code, Make(op, operands...)...)

	c.previousInstruction = c.lastInstruction
	c.lastInstruction = EmittedInstruction{Opcode: op, Position: pos}
	return pos
}

func (c *Compiler) lastInstructionIs(op Opcode) bool {
	if len(c.chunk.Code) == 0 {
		return false
	}
	return c.lastInstruction.Opcode == op
}

// removeLastPop truncates the most recent OpPop so a branch's final value
// stays on the stack.
func (c *Compiler) removeLastPop() {
	c.chunk.Code = c.chunk.Code[:c.lastInstruction.Position]
	c.lastInstruction = c.previousInstruction
}

// changeOperand back-patches the operand of the instruction at opPos,
// overwriting the already-written operand bytes in place. The opcode and all
// surrounding instructions are untouched.
func (c *Compiler) changeOperand(opPos int, operand int) error {
	if operand > math.MaxUint16 {
		return fmt.Errorf("jump target %d exceeds the 2-byte operand range", operand)
	}
	op := Opcode(c.chunk.Code[opPos])
	copy(c.chunk.Code[opPos:], Make(op, operand))
	return nil
}

// addConstant appends to the constant pool and returns the new index.
// Indices are assigned in first-use order; equal literals are not interned,
// each occurrence gets its own slot.
func (c *Compiler) addConstant(obj object.Object) (int, error) {
	if len(c.chunk.Constants) >= MaxConstants {
		return 0, fmt.Errorf("constant pool overflow: limit is %d entries", MaxConstants)
	}
	c.chunk.Constants = append(c.chunk.Constants, obj)
	return len(c.chunk.Constants) - 1, nil
}
