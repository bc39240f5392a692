package backend

import (
	"fmt"

	"github.com/tusk-lang/tusk/pkg/ast"
	"github.com/tusk-lang/tusk/pkg/evaluator"
	"github.com/tusk-lang/tusk/pkg/object"
)

// TreeWalkBackend executes programs with the environment-based evaluator.
type TreeWalkBackend struct {
	env *object.Environment
}

// NewTreeWalk creates a tree-walking backend with a fresh global environment.
// The environment persists across Run calls, so a REPL keeps its bindings.
func NewTreeWalk() *TreeWalkBackend {
	return &TreeWalkBackend{env: object.NewEnvironment()}
}

func (b *TreeWalkBackend) Name() string { return "treewalk" }

func (b *TreeWalkBackend) Run(program *ast.Program) (object.Object, error) {
	result := evaluator.Eval(program, b.env)
	if err, ok := result.(*object.Error); ok {
		return nil, fmt.Errorf("runtime error: %s", err.Message)
	}
	return result, nil
}
