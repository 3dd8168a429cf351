package semantics

import (
	"errors"
	"fmt"

	"nervs/lexer"
	"nervs/types"
)

// DefinitionKind names the namespace level a duplicate was found at.
type DefinitionKind string

const (
	KindRealm     DefinitionKind = "realm"
	KindBeing     DefinitionKind = "being"
	KindVariable  DefinitionKind = "variable"
	KindRitual    DefinitionKind = "ritual"
	KindParameter DefinitionKind = "parameter"
)

// ErrNotRegistered is returned when a registration names a parent that was
// never registered. The analyzer always registers parents first, so seeing it
// means a bug in the caller.
var ErrNotRegistered = errors.New("not registered")

func message(tok lexer.Token, msg string) string {
	if !tok.IsValid() {
		return "ERROR: " + msg
	}
	return fmt.Sprintf("%s: ERROR: %s", tok.Pos(), msg)
}

type DuplicateDefinitionError struct {
	Kind  DefinitionKind
	Name  string
	Path  string // qualified path of the enclosing level, empty for realms
	Token lexer.Token
}

func (e *DuplicateDefinitionError) Error() string {
	msg := fmt.Sprintf("%s (%s) is already declared", e.Kind, e.Name)
	if e.Path != "" {
		msg += " in " + e.Path
	}
	return message(e.Token, msg+", consider removing the duplicate")
}

func (e *DuplicateDefinitionError) Position() lexer.Token { return e.Token }

type UndefinedVariableError struct {
	Name  string
	Token lexer.Token
}

func (e *UndefinedVariableError) Error() string {
	return message(e.Token, fmt.Sprintf("variable (%s) is not declared", e.Name))
}

func (e *UndefinedVariableError) Position() lexer.Token { return e.Token }

type UndefinedRitualError struct {
	Name  string
	Token lexer.Token
}

func (e *UndefinedRitualError) Error() string {
	return message(e.Token, fmt.Sprintf("ritual (%s) is not declared in this being", e.Name))
}

func (e *UndefinedRitualError) Position() lexer.Token { return e.Token }

type ArityMismatchError struct {
	Ritual   string
	Expected int
	Found    int
	Token    lexer.Token
}

func (e *ArityMismatchError) Error() string {
	return message(e.Token, fmt.Sprintf("ritual (%s) expects %d argument(s), got %d", e.Ritual, e.Expected, e.Found))
}

func (e *ArityMismatchError) Position() lexer.Token { return e.Token }

// TypeMismatchError reports a type rule violation. Expected is either a type
// name or a class of types such as "numeric".
type TypeMismatchError struct {
	Expected string
	Found    string
	Site     string
	Token    lexer.Token
}

func (e *TypeMismatchError) Error() string {
	return message(e.Token, fmt.Sprintf("type mismatch in %s, expected (%s), got (%s)", e.Site, e.Expected, e.Found))
}

func (e *TypeMismatchError) Position() lexer.Token { return e.Token }

type MissingReturnError struct {
	Ritual     string
	ReturnType types.Type
	Token      lexer.Token
}

func (e *MissingReturnError) Error() string {
	return message(e.Token, fmt.Sprintf("ritual (%s) has (%s) as return type, it needs a return statement", e.Ritual, e.ReturnType))
}

func (e *MissingReturnError) Position() lexer.Token { return e.Token }

// pair renders the operand types of a binary operation
func pair(left, right types.Type) string {
	return left.String() + ", " + right.String()
}

// positioned fills in the position of a duplicate definition reported by a
// layer that only knows names.
func positioned(err error, tok lexer.Token) error {
	var dup *DuplicateDefinitionError
	if errors.As(err, &dup) && !dup.Token.IsValid() {
		dup.Token = tok
	}
	return err
}
