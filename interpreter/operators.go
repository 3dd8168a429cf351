package interpreter

import (
	"nervs/object"
)

func evalBinaryExpression(op string, left, right object.Object) object.Object {
	switch {
	case left.Type() == object.INTEGER_OBJ && right.Type() == object.INTEGER_OBJ:
		return evalIntegerInfixExpression(op, left.(*object.Integer), right.(*object.Integer))

	case isNumber(left) && isNumber(right):
		// mixed operands are promoted to float
		return evalFloatInfixExpression(op, toFloat(left), toFloat(right))

	case left.Type() == object.BOOLEAN_OBJ && right.Type() == object.BOOLEAN_OBJ:
		return evalEqualityExpression(op, left.(*object.Boolean).Value, right.(*object.Boolean).Value, left, right)

	case left.Type() == object.STRING_OBJ && right.Type() == object.STRING_OBJ:
		return evalEqualityExpression(op, left.(*object.String).Value, right.(*object.String).Value, left, right)

	case left.Type() != right.Type():
		return object.NewError("type mismatch: %s %s %s",
			left.Type(), op, right.Type())

	default:
		return object.NewError("unknown operator: %s %s %s",
			left.Type(), op, right.Type())
	}
}

func isNumber(obj object.Object) bool {
	return obj.Type() == object.INTEGER_OBJ || obj.Type() == object.FLOAT_OBJ
}

func toFloat(obj object.Object) float64 {
	switch obj := obj.(type) {
	case *object.Integer:
		return float64(obj.Value)
	case *object.Float:
		return obj.Value
	}
	return 0
}

func evalIntegerInfixExpression(op string, left, right *object.Integer) object.Object {
	switch op {
	case "+":
		return &object.Integer{Value: left.Value + right.Value}
	case "-":
		return &object.Integer{Value: left.Value - right.Value}
	case "*":
		return &object.Integer{Value: left.Value * right.Value}
	case "/":
		if right.Value == 0 {
			return object.NewError("division by zero")
		}
		// truncated, int / int stays an int
		return &object.Integer{Value: left.Value / right.Value}

	case ">":
		return object.NativeBoolean(left.Value > right.Value)
	case "<":
		return object.NativeBoolean(left.Value < right.Value)
	case "==":
		return object.NativeBoolean(left.Value == right.Value)
	case "!=":
		return object.NativeBoolean(left.Value != right.Value)

	default:
		return object.NewError("unknown operator: %s %s %s",
			left.Type(), op, right.Type())
	}
}

func evalFloatInfixExpression(op string, left, right float64) object.Object {
	switch op {
	case "+":
		return &object.Float{Value: left + right}
	case "-":
		return &object.Float{Value: left - right}
	case "*":
		return &object.Float{Value: left * right}
	case "/":
		if right == 0 {
			return object.NewError("division by zero")
		}
		return &object.Float{Value: left / right}

	case ">":
		return object.NativeBoolean(left > right)
	case "<":
		return object.NativeBoolean(left < right)
	case "==":
		return object.NativeBoolean(left == right)
	case "!=":
		return object.NativeBoolean(left != right)

	default:
		return object.NewError("unknown operator: %s %s %s",
			object.FLOAT_OBJ, op, object.FLOAT_OBJ)
	}
}

// strings and booleans only support == and !=
func evalEqualityExpression[T comparable](op string, left, right T, lo, ro object.Object) object.Object {
	switch op {
	case "==":
		return object.NativeBoolean(left == right)
	case "!=":
		return object.NativeBoolean(left != right)
	default:
		return object.NewError("unsupported operator: %s %s %s",
			lo.Type(), op, ro.Type())
	}
}
