package evaluator

import (
	"fmt"

	"github.com/tusk-lang/tusk/pkg/object"
)

var builtins = map[string]*object.Builtin{
	"len": {Fn: func(args ...object.Object) object.Object {
		if len(args) != 1 {
			return object.Errorf("wrong number of arguments: want 1, got %d", len(args))
		}
		switch arg := args[0].(type) {
		case *object.String:
			return &object.Integer{Value: int64(len(arg.Value))}
		case *object.Array:
			return &object.Integer{Value: int64(len(arg.Elements))}
		default:
			return object.Errorf("argument to len not supported, got %s", arg.Type())
		}
	}},

	"first": {Fn: func(args ...object.Object) object.Object {
		arr, err := singleArray("first", args)
		if err != nil {
			return err
		}
		if len(arr.Elements) == 0 {
			return Null
		}
		return arr.Elements[0]
	}},

	"last": {Fn: func(args ...object.Object) object.Object {
		arr, err := singleArray("last", args)
		if err != nil {
			return err
		}
		if len(arr.Elements) == 0 {
			return Null
		}
		return arr.Elements[len(arr.Elements)-1]
	}},

	"rest": {Fn: func(args ...object.Object) object.Object {
		arr, err := singleArray("rest", args)
		if err != nil {
			return err
		}
		if len(arr.Elements) == 0 {
			return Null
		}
		elements := make([]object.Object, len(arr.Elements)-1)
		copy(elements, arr.Elements[1:])
		return &object.Array{Elements: elements}
	}},

	"push": {Fn: func(args ...object.Object) object.Object {
		if len(args) != 2 {
			return object.Errorf("wrong number of arguments: want 2, got %d", len(args))
		}
		arr, ok := args[0].(*object.Array)
		if !ok {
			return object.Errorf("argument to push must be ARRAY, got %s", args[0].Type())
		}
		elements := make([]object.Object, len(arr.Elements), len(arr.Elements)+1)
		copy(elements, arr.Elements)
		return &object.Array{Elements: append(elements, args[1])}
	}},

	"puts": {Fn: func(args ...object.Object) object.Object {
		for _, arg := range args {
			fmt.Println(arg.Inspect())
		}
		return Null
	}},
}

func singleArray(name string, args []object.Object) (*object.Array, *object.Error) {
	if len(args) != 1 {
		return nil, object.Errorf("wrong number of arguments: want 1, got %d", len(args))
	}
	arr, ok := args[0].(*object.Array)
	if !ok {
		return nil, object.Errorf("argument to %s must be ARRAY, got %s", name, args[0].Type())
	}
	return arr, nil
}
