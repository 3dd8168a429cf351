// Package types holds the closed set of Nervs value types and the
// compatibility rules used by the analyzer.
package types

type Kind int

const (
	KindInteger Kind = iota
	KindFloat
	KindString
	KindBoolean
	KindVoid
	KindNamed
)

// type names as written in source
const (
	IntType    = "int"
	FloatType  = "float"
	StringType = "string"
	BoolType   = "bool"
	VoidType   = "void"
)

// Type is a value type. Named types carry the name they were declared with and
// compare by that name only.
type Type struct {
	Kind Kind
	Name string
}

var (
	Integer = Type{Kind: KindInteger}
	Float   = Type{Kind: KindFloat}
	String  = Type{Kind: KindString}
	Boolean = Type{Kind: KindBoolean}
	Void    = Type{Kind: KindVoid}
)

// Named returns the nominal type called name.
func Named(name string) Type {
	return Type{Kind: KindNamed, Name: name}
}

// FromName maps a type name from source to its Type, anything that isn't a
// primitive becomes a named type.
func FromName(name string) Type {
	switch name {
	case IntType:
		return Integer
	case FloatType:
		return Float
	case StringType:
		return String
	case BoolType:
		return Boolean
	case VoidType:
		return Void
	default:
		return Named(name)
	}
}

func (t Type) String() string {
	switch t.Kind {
	case KindInteger:
		return IntType
	case KindFloat:
		return FloatType
	case KindString:
		return StringType
	case KindBoolean:
		return BoolType
	case KindVoid:
		return VoidType
	default:
		return t.Name
	}
}

func (t Type) IsVoid() bool {
	return t.Kind == KindVoid
}

func (t Type) IsNumeric() bool {
	return t.Kind == KindInteger || t.Kind == KindFloat
}

// Compatible reports whether a value of type got may be used where want is
// expected. No implicit widening happens here, Integer and Float are distinct.
func Compatible(want, got Type) bool {
	if want.Kind != got.Kind {
		return false
	}
	if want.Kind == KindNamed {
		return want.Name == got.Name
	}
	return true
}

// Promote computes the result type of an arithmetic operation between two
// numeric operands: Float if either side is Float, Integer otherwise.
func Promote(left, right Type) (Type, bool) {
	if !left.IsNumeric() || !right.IsNumeric() {
		return Type{}, false
	}
	if left.Kind == KindFloat || right.Kind == KindFloat {
		return Float, true
	}
	return Integer, true
}
