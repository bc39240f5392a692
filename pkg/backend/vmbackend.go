package backend

import (
	"errors"
	"fmt"

	"github.com/tliron/commonlog"

	"github.com/tusk-lang/tusk/pkg/ast"
	"github.com/tusk-lang/tusk/pkg/bytecode"
	"github.com/tusk-lang/tusk/pkg/object"
	"github.com/tusk-lang/tusk/pkg/vm"
)

var log = commonlog.GetLogger("tusk.backend")

// VMBackend compiles programs to bytecode and runs them on the stack machine.
// Programs using constructs the compiler has no rule for (functions) fall
// back to the tree-walking backend transparently.
type VMBackend struct {
	symbols   *bytecode.SymbolTable
	constants []object.Object
	globals   []object.Object

	fallback *TreeWalkBackend
}

// NewVM creates a VM backend. Symbol table, constant pool and globals persist
// across Run calls so a REPL keeps its bindings.
func NewVM() *VMBackend {
	return &VMBackend{
		symbols:  bytecode.NewSymbolTable(),
		globals:  make([]object.Object, vm.GlobalsSize),
		fallback: NewTreeWalk(),
	}
}

func (b *VMBackend) Name() string { return "vm" }

func (b *VMBackend) Run(program *ast.Program) (object.Object, error) {
	compiler := bytecode.NewCompilerWithState(b.symbols, b.constants)
	if err := compiler.Compile(program); err != nil {
		if errors.Is(err, bytecode.ErrUnsupported) {
			log.Debugf("falling back to tree-walk: %s", err)
			return b.fallback.Run(program)
		}
		return nil, fmt.Errorf("compilation error: %w", err)
	}

	chunk := compiler.Bytecode()
	b.constants = chunk.Constants

	machine := vm.NewWithGlobals(chunk, b.globals)
	if err := machine.Run(); err != nil {
		return nil, fmt.Errorf("runtime error: %w", err)
	}

	if result := machine.Result(); result != nil {
		return result, nil
	}
	if result := machine.LastPopped(); result != nil {
		return result, nil
	}
	return vm.Null, nil
}
