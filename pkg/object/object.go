// Package object defines the runtime values shared by the tree-walking
// evaluator and the bytecode VM, and the constant values carried in compiled
// chunks.
package object

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/tusk-lang/tusk/pkg/ast"
)

// Type identifies the kind of a runtime value.
type Type string

const (
	IntegerType     Type = "INTEGER"
	BooleanType     Type = "BOOLEAN"
	StringType      Type = "STRING"
	NullType        Type = "NULL"
	ArrayType       Type = "ARRAY"
	FunctionType    Type = "FUNCTION"
	BuiltinType     Type = "BUILTIN"
	ReturnValueType Type = "RETURN_VALUE"
	ErrorType       Type = "ERROR"
)

// Object is implemented by every runtime value.
type Object interface {
	Type() Type
	Inspect() string
}

// Integer is a 64-bit signed integer.
type Integer struct {
	Value int64
}

func (i *Integer) Type() Type      { return IntegerType }
func (i *Integer) Inspect() string { return strconv.FormatInt(i.Value, 10) }

// Boolean is true or false.
type Boolean struct {
	Value bool
}

func (b *Boolean) Type() Type      { return BooleanType }
func (b *Boolean) Inspect() string { return strconv.FormatBool(b.Value) }

// String is an immutable byte string.
type String struct {
	Value string
}

func (s *String) Type() Type      { return StringType }
func (s *String) Inspect() string { return s.Value }

// Null is the absence of a value.
type Null struct{}

func (n *Null) Type() Type      { return NullType }
func (n *Null) Inspect() string { return "null" }

// Array is an ordered sequence of values.
type Array struct {
	Elements []Object
}

func (a *Array) Type() Type { return ArrayType }
func (a *Array) Inspect() string {
	elems := make([]string, len(a.Elements))
	for i, e := range a.Elements {
		elems[i] = e.Inspect()
	}
	return "[" + strings.Join(elems, ", ") + "]"
}

// Function is a user-defined function closing over its defining environment.
// Only the tree-walking backend produces these.
type Function struct {
	Parameters []*ast.Identifier
	Body       *ast.BlockStatement
	Env        *Environment
}

func (f *Function) Type() Type { return FunctionType }
func (f *Function) Inspect() string {
	params := make([]string, len(f.Parameters))
	for i, p := range f.Parameters {
		params[i] = p.String()
	}
	return "fn(" + strings.Join(params, ", ") + ") {\n" + f.Body.String() + "\n}"
}

// BuiltinFunction is the Go signature of a builtin.
type BuiltinFunction func(args ...Object) Object

// Builtin wraps a Go function exposed to Tusk programs.
type Builtin struct {
	Fn BuiltinFunction
}

func (b *Builtin) Type() Type      { return BuiltinType }
func (b *Builtin) Inspect() string { return "builtin function" }

// ReturnValue wraps a value being returned so it can unwind block evaluation.
type ReturnValue struct {
	Value Object
}

func (rv *ReturnValue) Type() Type      { return ReturnValueType }
func (rv *ReturnValue) Inspect() string { return rv.Value.Inspect() }

// Error is a runtime error value; it propagates through evaluation like a
// return value.
type Error struct {
	Message string
}

func (e *Error) Type() Type      { return ErrorType }
func (e *Error) Inspect() string { return "ERROR: " + e.Message }

// Errorf creates an Error from a format string.
func Errorf(format string, args ...interface{}) *Error {
	return &Error{Message: fmt.Sprintf(format, args...)}
}
