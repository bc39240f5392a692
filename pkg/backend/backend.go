// Package backend provides an interface over the two execution strategies:
// the tree-walking evaluator and the bytecode VM.
package backend

import (
	"github.com/tusk-lang/tusk/pkg/ast"
	"github.com/tusk-lang/tusk/pkg/object"
)

// Backend executes a parsed program and returns its last value.
type Backend interface {
	// Run executes the program and returns the value of its last statement.
	Run(program *ast.Program) (object.Object, error)

	// Name returns the backend name for display.
	Name() string
}

// Select returns the backend for a name; unknown names get the VM backend.
func Select(name string) Backend {
	switch name {
	case "treewalk":
		return NewTreeWalk()
	default:
		return NewVM()
	}
}
