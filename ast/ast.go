package ast

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"nervs/lexer"
	"nervs/types"
)

type Node interface {
	TokenLiteral() string
	String() string
	GetToken() lexer.Token
}

type Statement interface {
	Node
	statementNode()
}

type Expression interface {
	Node
	expressionNode()
}

type Program struct {
	Realms []*Realm
}

func (p *Program) TokenLiteral() string {
	if len(p.Realms) > 0 {
		return p.Realms[0].TokenLiteral()
	}
	return ""
}

func (p *Program) GetToken() lexer.Token {
	if len(p.Realms) > 0 {
		return p.Realms[0].Token
	}
	return lexer.Token{}
}

func (p *Program) String() string {
	var out bytes.Buffer
	for idx, r := range p.Realms {
		if idx > 0 {
			out.WriteString(" ")
		}
		out.WriteString(r.String())
	}
	return out.String()
}

type Realm struct {
	Token  lexer.Token // the realm token
	Name   string
	Beings []*Being
}

func (r *Realm) TokenLiteral() string  { return r.Token.Text }
func (r *Realm) GetToken() lexer.Token { return r.Token }
func (r *Realm) String() string {
	var out bytes.Buffer
	out.WriteString("realm " + r.Name + " { ")
	for _, b := range r.Beings {
		out.WriteString(b.String())
		out.WriteString(" ")
	}
	out.WriteString("}")
	return out.String()
}

type Being struct {
	Token     lexer.Token // the being token
	Name      string
	Variables []*Variable
	Rituals   []*Ritual
}

func (b *Being) TokenLiteral() string  { return b.Token.Text }
func (b *Being) GetToken() lexer.Token { return b.Token }
func (b *Being) String() string {
	var out bytes.Buffer
	out.WriteString("being " + b.Name + " { ")
	for _, v := range b.Variables {
		out.WriteString(v.String())
		out.WriteString("; ")
	}
	for _, r := range b.Rituals {
		out.WriteString(r.String())
		out.WriteString(" ")
	}
	out.WriteString("}")
	return out.String()
}

// Variable is a typed name, used for member variables, parameters and locals.
type Variable struct {
	Token lexer.Token // the identifier token
	Name  string
	Type  types.Type
}

func (v *Variable) TokenLiteral() string  { return v.Token.Text }
func (v *Variable) GetToken() lexer.Token { return v.Token }
func (v *Variable) String() string        { return v.Name + ": " + v.Type.String() }

type Ritual struct {
	Token      lexer.Token // the ritual token
	Name       string
	Parameters []*Variable
	ReturnType types.Type
	Body       []Statement
}

func (r *Ritual) TokenLiteral() string  { return r.Token.Text }
func (r *Ritual) GetToken() lexer.Token { return r.Token }
func (r *Ritual) String() string {
	var out bytes.Buffer
	params := []string{}
	for _, p := range r.Parameters {
		params = append(params, p.String())
	}
	out.WriteString("ritual " + r.Name)
	out.WriteString("(" + strings.Join(params, ", ") + ")")
	if !r.ReturnType.IsVoid() {
		out.WriteString(" -> " + r.ReturnType.String())
	}
	out.WriteString(" " + blockString(r.Body))
	return out.String()
}

func blockString(body []Statement) string {
	var out bytes.Buffer
	out.WriteString("{ ")
	for _, s := range body {
		out.WriteString(s.String())
		out.WriteString(" ")
	}
	out.WriteString("}")
	return out.String()
}

// Statements

type VarDeclaration struct {
	Token       lexer.Token // the let token
	Variable    *Variable
	Initializer Expression // optional
}

func (vd *VarDeclaration) statementNode()        {}
func (vd *VarDeclaration) TokenLiteral() string  { return vd.Token.Text }
func (vd *VarDeclaration) GetToken() lexer.Token { return vd.Token }
func (vd *VarDeclaration) String() string {
	var out bytes.Buffer
	out.WriteString("let " + vd.Variable.String())
	if vd.Initializer != nil {
		out.WriteString(" = " + vd.Initializer.String())
	}
	out.WriteString(";")
	return out.String()
}

type AssignStatement struct {
	Token lexer.Token // the identifier token
	Name  string
	Value Expression
}

func (as *AssignStatement) statementNode()        {}
func (as *AssignStatement) TokenLiteral() string  { return as.Token.Text }
func (as *AssignStatement) GetToken() lexer.Token { return as.Token }
func (as *AssignStatement) String() string {
	return as.Name + " = " + as.Value.String() + ";"
}

// CallStatement is a ritual call whose result is discarded.
type CallStatement struct {
	Token lexer.Token
	Call  *CallExpression
}

func (cs *CallStatement) statementNode()        {}
func (cs *CallStatement) TokenLiteral() string  { return cs.Token.Text }
func (cs *CallStatement) GetToken() lexer.Token { return cs.Token }
func (cs *CallStatement) String() string        { return cs.Call.String() + ";" }

type IfStatement struct {
	Token       lexer.Token // the if token
	Condition   Expression
	Consequence []Statement
	Alternative []Statement // nil when there is no else arm
}

func (is *IfStatement) statementNode()        {}
func (is *IfStatement) TokenLiteral() string  { return is.Token.Text }
func (is *IfStatement) GetToken() lexer.Token { return is.Token }
func (is *IfStatement) String() string {
	var out bytes.Buffer
	out.WriteString("if " + is.Condition.String() + " " + blockString(is.Consequence))
	if is.Alternative != nil {
		out.WriteString(" else " + blockString(is.Alternative))
	}
	return out.String()
}

type CycleStatement struct {
	Token     lexer.Token // the cycle token
	Condition Expression  // optional, nil loops until a return
	Body      []Statement
}

func (cs *CycleStatement) statementNode()        {}
func (cs *CycleStatement) TokenLiteral() string  { return cs.Token.Text }
func (cs *CycleStatement) GetToken() lexer.Token { return cs.Token }
func (cs *CycleStatement) String() string {
	if cs.Condition == nil {
		return "cycle " + blockString(cs.Body)
	}
	return "cycle " + cs.Condition.String() + " " + blockString(cs.Body)
}

type ReturnStatement struct {
	Token       lexer.Token // the return token
	ReturnValue Expression  // optional
}

func (rs *ReturnStatement) statementNode()        {}
func (rs *ReturnStatement) TokenLiteral() string  { return rs.Token.Text }
func (rs *ReturnStatement) GetToken() lexer.Token { return rs.Token }
func (rs *ReturnStatement) String() string {
	if rs.ReturnValue == nil {
		return "return;"
	}
	return "return " + rs.ReturnValue.String() + ";"
}

// Expressions

type Identifier struct {
	Token lexer.Token
	Value string
}

func (i *Identifier) expressionNode()       {}
func (i *Identifier) TokenLiteral() string  { return i.Token.Text }
func (i *Identifier) GetToken() lexer.Token { return i.Token }
func (i *Identifier) String() string        { return i.Value }

type IntegerLiteral struct {
	Token lexer.Token
	Value int64
}

func (il *IntegerLiteral) expressionNode()       {}
func (il *IntegerLiteral) TokenLiteral() string  { return il.Token.Text }
func (il *IntegerLiteral) GetToken() lexer.Token { return il.Token }
func (il *IntegerLiteral) String() string        { return strconv.FormatInt(il.Value, 10) }

type FloatLiteral struct {
	Token lexer.Token
	Value float64
}

func (fl *FloatLiteral) expressionNode()       {}
func (fl *FloatLiteral) TokenLiteral() string  { return fl.Token.Text }
func (fl *FloatLiteral) GetToken() lexer.Token { return fl.Token }
func (fl *FloatLiteral) String() string {
	s := strconv.FormatFloat(fl.Value, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

type StringLiteral struct {
	Token lexer.Token
	Value string
}

func (sl *StringLiteral) expressionNode()       {}
func (sl *StringLiteral) TokenLiteral() string  { return sl.Token.Text }
func (sl *StringLiteral) GetToken() lexer.Token { return sl.Token }
func (sl *StringLiteral) String() string        { return strconv.Quote(sl.Value) }

type BooleanLiteral struct {
	Token lexer.Token
	Value bool
}

func (bl *BooleanLiteral) expressionNode()       {}
func (bl *BooleanLiteral) TokenLiteral() string  { return bl.Token.Text }
func (bl *BooleanLiteral) GetToken() lexer.Token { return bl.Token }
func (bl *BooleanLiteral) String() string        { return strconv.FormatBool(bl.Value) }

type BinaryExpression struct {
	Token    lexer.Token // the operator token
	Operator string
	Left     Expression
	Right    Expression
}

func (be *BinaryExpression) expressionNode()       {}
func (be *BinaryExpression) TokenLiteral() string  { return be.Token.Text }
func (be *BinaryExpression) GetToken() lexer.Token { return be.Token }
func (be *BinaryExpression) String() string {
	return fmt.Sprintf("(%s %s %s)", be.Left, be.Operator, be.Right)
}

type CallExpression struct {
	Token    lexer.Token // the ritual name token
	Function string
	Args     []Expression
}

func (ce *CallExpression) expressionNode()       {}
func (ce *CallExpression) TokenLiteral() string  { return ce.Token.Text }
func (ce *CallExpression) GetToken() lexer.Token { return ce.Token }
func (ce *CallExpression) String() string {
	args := []string{}
	for _, a := range ce.Args {
		args = append(args, a.String())
	}
	return ce.Function + "(" + strings.Join(args, ", ") + ")"
}
