package object

// Environment is a lexically scoped name-to-value store used by the
// tree-walking evaluator.
type Environment struct {
	store map[string]Object
	outer *Environment
}

// NewEnvironment creates an empty top-level environment.
func NewEnvironment() *Environment {
	return &Environment{store: make(map[string]Object)}
}

// NewEnclosedEnvironment creates an environment chained to an outer scope.
func NewEnclosedEnvironment(outer *Environment) *Environment {
	env := NewEnvironment()
	env.outer = outer
	return env
}

// Get resolves a name, searching enclosing scopes outward.
func (e *Environment) Get(name string) (Object, bool) {
	obj, ok := e.store[name]
	if !ok && e.outer != nil {
		return e.outer.Get(name)
	}
	return obj, ok
}

// Set binds a name in this scope.
func (e *Environment) Set(name string, val Object) Object {
	e.store[name] = val
	return val
}
