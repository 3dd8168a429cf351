// Package object is the runtime value model of Nervs.
package object

import (
	"fmt"
	"strconv"

	"nervs/types"
)

type ObjectType string

const (
	INTEGER_OBJ      = "INTEGER"
	BOOLEAN_OBJ      = "BOOLEAN"
	FLOAT_OBJ        = "FLOAT"
	STRING_OBJ       = "STRING"
	VOID_OBJ         = "VOID"
	RETURN_VALUE_OBJ = "RETURN_VALUE"

	// errors
	ERROR_OBJ = "ERROR"
)

type Object interface {
	Type() ObjectType
	Inspect() string
}

type Integer struct {
	Value int64
}

func (i *Integer) Type() ObjectType { return INTEGER_OBJ }
func (i *Integer) Inspect() string  { return strconv.FormatInt(i.Value, 10) }

type Boolean struct {
	Value bool
}

func (b *Boolean) Type() ObjectType { return BOOLEAN_OBJ }
func (b *Boolean) Inspect() string  { return strconv.FormatBool(b.Value) }

type Float struct {
	Value float64
}

func (f *Float) Type() ObjectType { return FLOAT_OBJ }
func (f *Float) Inspect() string  { return strconv.FormatFloat(f.Value, 'g', -1, 64) }

type String struct {
	Value string
}

func (s *String) Type() ObjectType { return STRING_OBJ }
func (s *String) Inspect() string  { return s.Value }

// Void is the result of rituals without a return type, and the value of
// members whose type has no runtime representation.
type Void struct{}

func (v *Void) Type() ObjectType { return VOID_OBJ }
func (v *Void) Inspect() string  { return "void" }

var (
	TRUE  = &Boolean{Value: true}
	FALSE = &Boolean{Value: false}
	VOID  = &Void{}
)

func NativeBoolean(val bool) *Boolean {
	if val {
		return TRUE
	}
	return FALSE
}

type ReturnValue struct {
	Value Object
}

func (rv *ReturnValue) Type() ObjectType { return RETURN_VALUE_OBJ }
func (rv *ReturnValue) Inspect() string  { return rv.Value.Inspect() }

// Error is a runtime failure. It travels through evaluation as an Object and
// leaves the interpreter as a Go error.
type Error struct {
	Message string
}

func (e *Error) Type() ObjectType { return ERROR_OBJ }
func (e *Error) Inspect() string  { return "ERROR: " + e.Message }
func (e *Error) Error() string    { return e.Inspect() }

func NewError(format string, a ...any) *Error {
	return &Error{Message: fmt.Sprintf(format, a...)}
}

func IsError(obj Object) bool {
	return obj != nil && obj.Type() == ERROR_OBJ
}

// Zero returns the initial value of a member of type tp.
func Zero(tp types.Type) Object {
	switch tp.Kind {
	case types.KindInteger:
		return &Integer{}
	case types.KindFloat:
		return &Float{}
	case types.KindString:
		return &String{}
	case types.KindBoolean:
		return FALSE
	default:
		return VOID
	}
}

// TypeOf maps a value back to its static type, ok is false for values that
// no static type describes (return wrappers and errors).
func TypeOf(obj Object) (types.Type, bool) {
	switch obj.(type) {
	case *Integer:
		return types.Integer, true
	case *Float:
		return types.Float, true
	case *String:
		return types.String, true
	case *Boolean:
		return types.Boolean, true
	case *Void:
		return types.Void, true
	default:
		return types.Type{}, false
	}
}

// Parse reads a value of type tp from its textual form, as given on the
// command line or in the repl.
func Parse(tp types.Type, text string) (Object, error) {
	switch tp.Kind {
	case types.KindInteger:
		v, err := strconv.ParseInt(text, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("(%s) is not an int: %w", text, err)
		}
		return &Integer{Value: v}, nil
	case types.KindFloat:
		v, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return nil, fmt.Errorf("(%s) is not a float: %w", text, err)
		}
		return &Float{Value: v}, nil
	case types.KindBoolean:
		v, err := strconv.ParseBool(text)
		if err != nil {
			return nil, fmt.Errorf("(%s) is not a bool: %w", text, err)
		}
		return NativeBoolean(v), nil
	case types.KindString:
		return &String{Value: text}, nil
	default:
		return nil, fmt.Errorf("values of type (%s) can't be written as text", tp)
	}
}
