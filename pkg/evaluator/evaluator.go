// Package evaluator is the tree-walking execution backend: it evaluates the
// AST directly against lexically scoped environments, with full support for
// functions and closures.
package evaluator

import (
	"github.com/tusk-lang/tusk/pkg/ast"
	"github.com/tusk-lang/tusk/pkg/object"
)

// Shared singletons so comparisons can use pointer identity.
var (
	True  = &object.Boolean{Value: true}
	False = &object.Boolean{Value: false}
	Null  = &object.Null{}
)

// Eval evaluates one AST node in the given environment.
func Eval(node ast.Node, env *object.Environment) object.Object {
	switch node := node.(type) {
	case *ast.Program:
		return evalProgram(node, env)

	case *ast.ExpressionStatement:
		return Eval(node.Expression, env)

	case *ast.BlockStatement:
		return evalBlockStatement(node, env)

	case *ast.LetStatement:
		val := Eval(node.Value, env)
		if isError(val) {
			return val
		}
		env.Set(node.Name.Value, val)
		return Null

	case *ast.ReturnStatement:
		val := Eval(node.Value, env)
		if isError(val) {
			return val
		}
		return &object.ReturnValue{Value: val}

	case *ast.IntegerLiteral:
		return &object.Integer{Value: node.Value}

	case *ast.StringLiteral:
		return &object.String{Value: node.Value}

	case *ast.BooleanLiteral:
		return nativeBool(node.Value)

	case *ast.NullLiteral:
		return Null

	case *ast.Identifier:
		return evalIdentifier(node, env)

	case *ast.PrefixExpression:
		right := Eval(node.Right, env)
		if isError(right) {
			return right
		}
		return evalPrefixExpression(node.Operator, right)

	case *ast.InfixExpression:
		left := Eval(node.Left, env)
		if isError(left) {
			return left
		}
		right := Eval(node.Right, env)
		if isError(right) {
			return right
		}
		return evalInfixExpression(node.Operator, left, right)

	case *ast.IfExpression:
		return evalIfExpression(node, env)

	case *ast.FunctionLiteral:
		return &object.Function{
			Parameters: node.Parameters,
			Body:       node.Body,
			Env:        env,
		}

	case *ast.CallExpression:
		fn := Eval(node.Function, env)
		if isError(fn) {
			return fn
		}
		args := evalExpressions(node.Arguments, env)
		if len(args) == 1 && isError(args[0]) {
			return args[0]
		}
		return applyFunction(fn, args)

	case *ast.ArrayLiteral:
		elements := evalExpressions(node.Elements, env)
		if len(elements) == 1 && isError(elements[0]) {
			return elements[0]
		}
		return &object.Array{Elements: elements}

	case *ast.IndexExpression:
		left := Eval(node.Left, env)
		if isError(left) {
			return left
		}
		index := Eval(node.Index, env)
		if isError(index) {
			return index
		}
		return evalIndexExpression(left, index)
	}

	return object.Errorf("unknown node type %T", node)
}

func evalProgram(program *ast.Program, env *object.Environment) object.Object {
	var result object.Object = Null

	for _, stmt := range program.Statements {
		result = Eval(stmt, env)

		switch result := result.(type) {
		case *object.ReturnValue:
			return result.Value
		case *object.Error:
			return result
		}
	}

	return result
}

func evalBlockStatement(block *ast.BlockStatement, env *object.Environment) object.Object {
	var result object.Object = Null

	for _, stmt := range block.Statements {
		result = Eval(stmt, env)

		// Return values and errors unwind without being unwrapped, so they
		// propagate through nested blocks.
		if result != nil {
			t := result.Type()
			if t == object.ReturnValueType || t == object.ErrorType {
				return result
			}
		}
	}

	return result
}

func evalIdentifier(node *ast.Identifier, env *object.Environment) object.Object {
	if val, ok := env.Get(node.Value); ok {
		return val
	}
	if builtin, ok := builtins[node.Value]; ok {
		return builtin
	}
	return object.Errorf("undefined variable %s", node.Value)
}

func evalPrefixExpression(operator string, right object.Object) object.Object {
	switch operator {
	case "!":
		return nativeBool(!isTruthy(right))
	case "-":
		i, ok := right.(*object.Integer)
		if !ok {
			return object.Errorf("unknown operator: -%s", right.Type())
		}
		return &object.Integer{Value: -i.Value}
	default:
		return object.Errorf("unknown operator: %s%s", operator, right.Type())
	}
}

func evalInfixExpression(operator string, left, right object.Object) object.Object {
	switch {
	case left.Type() == object.IntegerType && right.Type() == object.IntegerType:
		return evalIntegerInfix(operator, left.(*object.Integer), right.(*object.Integer))
	case left.Type() == object.StringType && right.Type() == object.StringType:
		return evalStringInfix(operator, left.(*object.String), right.(*object.String))
	case operator == "==":
		return nativeBool(left == right)
	case operator == "!=":
		return nativeBool(left != right)
	case left.Type() != right.Type():
		return object.Errorf("type mismatch: %s %s %s", left.Type(), operator, right.Type())
	default:
		return object.Errorf("unknown operator: %s %s %s", left.Type(), operator, right.Type())
	}
}

func evalIntegerInfix(operator string, left, right *object.Integer) object.Object {
	switch operator {
	case "+":
		return &object.Integer{Value: left.Value + right.Value}
	case "-":
		return &object.Integer{Value: left.Value - right.Value}
	case "*":
		return &object.Integer{Value: left.Value * right.Value}
	case "/":
		if right.Value == 0 {
			return object.Errorf("division by zero")
		}
		return &object.Integer{Value: left.Value / right.Value}
	case "<":
		return nativeBool(left.Value < right.Value)
	case ">":
		return nativeBool(left.Value > right.Value)
	case "==":
		return nativeBool(left.Value == right.Value)
	case "!=":
		return nativeBool(left.Value != right.Value)
	default:
		return object.Errorf("unknown operator: INTEGER %s INTEGER", operator)
	}
}

func evalStringInfix(operator string, left, right *object.String) object.Object {
	switch operator {
	case "+":
		return &object.String{Value: left.Value + right.Value}
	case "==":
		return nativeBool(left.Value == right.Value)
	case "!=":
		return nativeBool(left.Value != right.Value)
	default:
		return object.Errorf("unknown operator: STRING %s STRING", operator)
	}
}

func evalIfExpression(ie *ast.IfExpression, env *object.Environment) object.Object {
	condition := Eval(ie.Condition, env)
	if isError(condition) {
		return condition
	}

	if isTruthy(condition) {
		return Eval(ie.Consequence, env)
	}
	if ie.Alternative != nil {
		return Eval(ie.Alternative, env)
	}
	return Null
}

func evalExpressions(exprs []ast.Expression, env *object.Environment) []object.Object {
	var result []object.Object

	for _, e := range exprs {
		val := Eval(e, env)
		if isError(val) {
			return []object.Object{val}
		}
		result = append(result, val)
	}

	return result
}

func applyFunction(fn object.Object, args []object.Object) object.Object {
	switch fn := fn.(type) {
	case *object.Function:
		if len(args) != len(fn.Parameters) {
			return object.Errorf("wrong number of arguments: want %d, got %d",
				len(fn.Parameters), len(args))
		}
		env := object.NewEnclosedEnvironment(fn.Env)
		for i, param := range fn.Parameters {
			env.Set(param.Value, args[i])
		}
		result := Eval(fn.Body, env)
		if rv, ok := result.(*object.ReturnValue); ok {
			return rv.Value
		}
		return result

	case *object.Builtin:
		return fn.Fn(args...)

	default:
		return object.Errorf("not a function: %s", fn.Type())
	}
}

func evalIndexExpression(left, index object.Object) object.Object {
	arr, ok := left.(*object.Array)
	if !ok {
		return object.Errorf("index operator not supported for %s", left.Type())
	}
	i, ok := index.(*object.Integer)
	if !ok {
		return object.Errorf("array index must be INTEGER, got %s", index.Type())
	}
	if i.Value < 0 || i.Value > int64(len(arr.Elements)-1) {
		return Null
	}
	return arr.Elements[i.Value]
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

func isError(obj object.Object) bool {
	if obj != nil {
		return obj.Type() == object.ErrorType
	}
	return false
}
