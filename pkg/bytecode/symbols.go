package bytecode

// Symbol is a resolved global binding.
type Symbol struct {
	Name  string
	Index int
}

// SymbolTable assigns constant-time indices to global bindings in definition
// order. The language is single-unit, so there is one flat global scope.
type SymbolTable struct {
	store          map[string]Symbol
	numDefinitions int
}

// NewSymbolTable creates an empty symbol table.
func NewSymbolTable() *SymbolTable {
	return &SymbolTable{store: make(map[string]Symbol)}
}

// Define binds a name, reusing the existing index if the name was already
// defined (rebinding via a second let).
func (s *SymbolTable) Define(name string) Symbol {
	if sym, ok := s.store[name]; ok {
		return sym
	}
	sym := Symbol{Name: name, Index: s.numDefinitions}
	s.store[name] = sym
	s.numDefinitions++
	return sym
}

// Resolve looks up a name.
func (s *SymbolTable) Resolve(name string) (Symbol, bool) {
	sym, ok := s.store[name]
	return sym, ok
}

// NumDefinitions returns how many globals have been defined.
func (s *SymbolTable) NumDefinitions() int {
	return s.numDefinitions
}
