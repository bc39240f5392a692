package bytecode

import "testing"

func TestDefineAndResolve(t *testing.T) {
	table := NewSymbolTable()

	a := table.Define("a")
	if a.Index != 0 {
		t.Errorf("a.Index = %d, want 0", a.Index)
	}
	b := table.Define("b")
	if b.Index != 1 {
		t.Errorf("b.Index = %d, want 1", b.Index)
	}

	for _, expected := range []Symbol{{Name: "a", Index: 0}, {Name: "b", Index: 1}} {
		got, ok := table.Resolve(expected.Name)
		if !ok {
			t.Fatalf("name %s not resolvable", expected.Name)
		}
		if got != expected {
			t.Errorf("Resolve(%s) = %+v, want %+v", expected.Name, got, expected)
		}
	}

	if _, ok := table.Resolve("missing"); ok {
		t.Error("resolved a name that was never defined")
	}
}

func TestRedefineKeepsIndex(t *testing.T) {
	table := NewSymbolTable()

	first := table.Define("x")
	second := table.Define("x")
	if first != second {
		t.Errorf("redefinition changed symbol: %+v vs %+v", first, second)
	}
	if table.NumDefinitions() != 1 {
		t.Errorf("NumDefinitions = %d, want 1", table.NumDefinitions())
	}
}
