package parser

import (
	"strconv"

	"nervs/ast"
	"nervs/internals"
	"nervs/lexer"
	"nervs/types"
)

const (
	_ int = iota
	LOWEST
	EQUALS      // == !=
	LESSGREATER // > <
	SUM         // + -
	PRODUCT     // * /
	CALL        // myRitual(X)
)

var precedences = map[lexer.TokenKind]int{
	lexer.TokenEquals:    EQUALS,
	lexer.TokenNotEquals: EQUALS,
	lexer.TokenLess:      LESSGREATER,
	lexer.TokenGreater:   LESSGREATER,
	lexer.TokenPlus:      SUM,
	lexer.TokenMinus:     SUM,
	lexer.TokenSlash:     PRODUCT,
	lexer.TokenMultiply:  PRODUCT,
	lexer.TokenBraceOpen: CALL,
}

type (
	prefixParseFn func() (ast.Expression, error)
	infixParseFn  func(ast.Expression) (ast.Expression, error)
)

type Parser struct {
	lexer          *lexer.Lexer
	FilePath       string
	collector      *internals.ErrorCollector
	prefixParseFns map[lexer.TokenKind]prefixParseFn
	infixParseFns  map[lexer.TokenKind]infixParseFn

	curToken  lexer.Token
	peekToken lexer.Token // one token lookahead
}

func NewParser(lex *lexer.Lexer, filepath string) *Parser {
	p := Parser{
		lexer:          lex,
		FilePath:       filepath,
		collector:      internals.NewErrorCollector(filepath),
		prefixParseFns: make(map[lexer.TokenKind]prefixParseFn),
		infixParseFns:  make(map[lexer.TokenKind]infixParseFn),
	}

	// prefix/unary operators
	p.registerPrefix(lexer.TokenIdentifier, p.parseIdentifier)
	p.registerPrefix(lexer.TokenInt, p.parseIntLiteral)
	p.registerPrefix(lexer.TokenFloat, p.parseFloatLiteral)
	p.registerPrefix(lexer.TokenString, p.parseStringLiteral)
	p.registerPrefix(lexer.TokenBool, p.parseBooleanLiteral)
	p.registerPrefix(lexer.TokenBraceOpen, p.parseGroupedExpression)
	p.registerPrefix(lexer.TokenMinus, p.parseNegation)

	// infix/binary operators
	for kind := range lexer.BinOperators {
		p.registerInfix(kind, p.parseInfixExpression)
	}
	p.registerInfix(lexer.TokenBraceOpen, p.parseCallExpression)

	// set the tok position
	p.nextToken()
	p.nextToken()

	return &p
}

// Parse reads the whole source into a Program. Statement level syntax errors
// are collected and parsing resumes after the broken statement; errors in
// declarations stop the parse. The returned error joins everything collected.
func (p *Parser) Parse() (*ast.Program, error) {
	program := &ast.Program{
		Realms: []*ast.Realm{},
	}

	for !p.curTokenKindIs(lexer.TokenEOF) {
		realm, err := p.parseRealm()
		if err != nil {
			p.add(err)
			break
		}
		program.Realms = append(program.Realms, realm)
	}

	if p.collector.HasErrors() {
		return program, p.collector.Err()
	}
	return program, nil
}

func (p *Parser) nextToken() {
	p.curToken = p.peekToken
	p.peekToken = p.lexer.NextToken()
}

func (p *Parser) add(err error) {
	if err != nil {
		p.collector.Add(err)
	}
}

// skips the rest of a broken statement: up to and including the next ;, or
// up to (not including) the } closing the block
func (p *Parser) sync() {
	depth := 0
	for !p.curTokenKindIs(lexer.TokenEOF) {
		switch p.curToken.Kind {
		case lexer.TokenSemicolon:
			if depth == 0 {
				p.nextToken()
				return
			}
		case lexer.TokenCurlyBraceOpen:
			depth++
		case lexer.TokenCurlyBraceClose:
			if depth == 0 {
				return
			}
			depth--
			if depth == 0 {
				p.nextToken()
				return
			}
		}
		p.nextToken()
	}
}

func (p *Parser) curTokenKindIs(kind lexer.TokenKind) bool {
	return p.curToken.Kind == kind
}

func (p *Parser) peekTokenKindIs(kind lexer.TokenKind) bool {
	return p.peekToken.Kind == kind
}

func (p *Parser) error(tok lexer.Token, msg ...any) error {
	if tok.Kind == lexer.TokenError {
		return p.collector.Error(tok, tok.Text)
	}
	if lexer.ReservedKeywords[tok.Kind] {
		return p.collector.Error(tok, "(", tok.Text, ") is a reserved keyword")
	}
	return p.collector.Error(tok, msg...)
}

// expect checks the current token kind and consumes it
func (p *Parser) expect(kind lexer.TokenKind) (lexer.Token, error) {
	tok := p.curToken
	if !p.curTokenKindIs(kind) {
		return tok, p.error(tok, "expected (", kind, "), instead got ", describe(tok))
	}
	p.nextToken()
	return tok, nil
}

func describe(tok lexer.Token) string {
	if tok.Kind == lexer.TokenEOF {
		return tok.Kind
	}
	return "(" + tok.Text + ")"
}

func (p *Parser) registerPrefix(tokenType lexer.TokenKind, fn prefixParseFn) {
	p.prefixParseFns[tokenType] = fn
}
func (p *Parser) registerInfix(tokenType lexer.TokenKind, fn infixParseFn) {
	p.infixParseFns[tokenType] = fn
}

// Declarations

func (p *Parser) parseRealm() (*ast.Realm, error) {
	tok, err := p.expect(lexer.TokenRealm)
	if err != nil {
		return nil, err
	}
	realm := &ast.Realm{Token: tok, Beings: []*ast.Being{}}

	name, err := p.expect(lexer.TokenIdentifier)
	if err != nil {
		return nil, err
	}
	realm.Name = name.Text

	if _, err := p.expect(lexer.TokenCurlyBraceOpen); err != nil {
		return nil, err
	}

	for !p.curTokenKindIs(lexer.TokenCurlyBraceClose) {
		if p.curTokenKindIs(lexer.TokenEOF) {
			return nil, p.error(p.curToken, "realm (", realm.Name, ") expects }, instead got ", describe(p.curToken))
		}
		being, err := p.parseBeing()
		if err != nil {
			return nil, err
		}
		realm.Beings = append(realm.Beings, being)
	}

	// consume }
	p.nextToken()
	return realm, nil
}

func (p *Parser) parseBeing() (*ast.Being, error) {
	tok, err := p.expect(lexer.TokenBeing)
	if err != nil {
		return nil, err
	}
	being := &ast.Being{Token: tok, Variables: []*ast.Variable{}, Rituals: []*ast.Ritual{}}

	name, err := p.expect(lexer.TokenIdentifier)
	if err != nil {
		return nil, err
	}
	being.Name = name.Text

	if _, err := p.expect(lexer.TokenCurlyBraceOpen); err != nil {
		return nil, err
	}

	for !p.curTokenKindIs(lexer.TokenCurlyBraceClose) {
		switch p.curToken.Kind {
		case lexer.TokenRitual:
			ritual, err := p.parseRitual()
			if err != nil {
				return nil, err
			}
			being.Rituals = append(being.Rituals, ritual)
		case lexer.TokenIdentifier:
			variable, err := p.parseVariable()
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(lexer.TokenSemicolon); err != nil {
				return nil, err
			}
			being.Variables = append(being.Variables, variable)
		default:
			return nil, p.error(p.curToken, "being (", being.Name, ") expects a variable, a ritual or }, instead got ", describe(p.curToken))
		}
	}

	// consume }
	p.nextToken()
	return being, nil
}

// name: type
func (p *Parser) parseVariable() (*ast.Variable, error) {
	name, err := p.expect(lexer.TokenIdentifier)
	if err != nil {
		return nil, err
	}

	if _, err := p.expect(lexer.TokenColon); err != nil {
		return nil, err
	}

	tp, err := p.parseType()
	if err != nil {
		return nil, err
	}

	return &ast.Variable{Token: name, Name: name.Text, Type: tp}, nil
}

func (p *Parser) parseType() (types.Type, error) {
	tok := p.curToken
	if !p.curTokenKindIs(lexer.TokenIdentifier) {
		return types.Type{}, p.error(tok, "expected a type, instead got ", describe(tok))
	}
	p.nextToken()
	return types.FromName(tok.Text), nil
}

func (p *Parser) parseRitual() (*ast.Ritual, error) {
	tok, err := p.expect(lexer.TokenRitual)
	if err != nil {
		return nil, err
	}
	ritual := &ast.Ritual{Token: tok, Parameters: []*ast.Variable{}, ReturnType: types.Void}

	name, err := p.expect(lexer.TokenIdentifier)
	if err != nil {
		return nil, err
	}
	ritual.Name = name.Text

	if _, err := p.expect(lexer.TokenBraceOpen); err != nil {
		return nil, err
	}

	if !p.curTokenKindIs(lexer.TokenBraceClose) {
		for {
			param, err := p.parseVariable()
			if err != nil {
				return nil, err
			}
			ritual.Parameters = append(ritual.Parameters, param)

			if !p.curTokenKindIs(lexer.TokenComma) {
				break
			}
			// consume ,
			p.nextToken()
		}
	}

	if _, err := p.expect(lexer.TokenBraceClose); err != nil {
		return nil, err
	}

	if p.curTokenKindIs(lexer.TokenArrow) {
		p.nextToken()
		tp, err := p.parseType()
		if err != nil {
			return nil, err
		}
		ritual.ReturnType = tp
	}

	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	ritual.Body = body
	return ritual, nil
}

// Statements

// parseBlock parses { statement* }. Broken statements are reported and
// skipped so the rest of the block still gets checked.
func (p *Parser) parseBlock() ([]ast.Statement, error) {
	open, err := p.expect(lexer.TokenCurlyBraceOpen)
	if err != nil {
		return nil, err
	}

	body := make([]ast.Statement, 0)

	for !p.curTokenKindIs(lexer.TokenCurlyBraceClose) {
		if p.curTokenKindIs(lexer.TokenEOF) {
			return nil, p.error(open, "block opened here is never closed")
		}

		stmt, err := p.parseStatement()
		if err != nil {
			p.add(err)
			p.sync()
			continue
		}
		if stmt != nil {
			body = append(body, stmt)
		}
	}

	// consume }
	p.nextToken()
	return body, nil
}

func (p *Parser) parseStatement() (ast.Statement, error) {
	switch p.curToken.Kind {
	case lexer.TokenLet:
		return p.parseVarDeclaration()
	case lexer.TokenReturn:
		return p.parseReturnStatement()
	case lexer.TokenIf:
		return p.parseIfStatement()
	case lexer.TokenCycle:
		return p.parseCycleStatement()
	case lexer.TokenSemicolon:
		// empty statement
		p.nextToken()
		return nil, nil
	case lexer.TokenIdentifier:
		if p.peekTokenKindIs(lexer.TokenAssign) {
			return p.parseAssignStatement()
		}
		if p.peekTokenKindIs(lexer.TokenBraceOpen) {
			return p.parseCallStatement()
		}
		return nil, p.error(p.peekToken, "expected assignment (=) or ritual call after (", p.curToken.Text, "), instead got ", describe(p.peekToken))
	default:
		return nil, p.error(p.curToken, "unexpected ", describe(p.curToken), " at the start of a statement")
	}
}

func (p *Parser) parseVarDeclaration() (*ast.VarDeclaration, error) {
	stmt := &ast.VarDeclaration{Token: p.curToken}
	p.nextToken()

	variable, err := p.parseVariable()
	if err != nil {
		return nil, err
	}
	stmt.Variable = variable

	if p.curTokenKindIs(lexer.TokenAssign) {
		// consume =
		p.nextToken()
		stmt.Initializer, err = p.parseExpression(LOWEST)
		if err != nil {
			return nil, err
		}
	}

	if _, err := p.expect(lexer.TokenSemicolon); err != nil {
		return nil, err
	}
	return stmt, nil
}

func (p *Parser) parseAssignStatement() (*ast.AssignStatement, error) {
	stmt := &ast.AssignStatement{Token: p.curToken, Name: p.curToken.Text}
	// consume identifier and =
	p.nextToken()
	p.nextToken()

	value, err := p.parseExpression(LOWEST)
	if err != nil {
		return nil, err
	}
	stmt.Value = value

	if _, err := p.expect(lexer.TokenSemicolon); err != nil {
		return nil, err
	}
	return stmt, nil
}

func (p *Parser) parseCallStatement() (*ast.CallStatement, error) {
	tok := p.curToken
	expr, err := p.parseExpression(LOWEST)
	if err != nil {
		return nil, err
	}

	call, ok := expr.(*ast.CallExpression)
	if !ok {
		return nil, p.error(tok, "only ritual calls can be used as statements, got ", expr.String())
	}

	if _, err := p.expect(lexer.TokenSemicolon); err != nil {
		return nil, err
	}
	return &ast.CallStatement{Token: tok, Call: call}, nil
}

func (p *Parser) parseReturnStatement() (*ast.ReturnStatement, error) {
	stmt := &ast.ReturnStatement{Token: p.curToken}
	p.nextToken()

	if !p.curTokenKindIs(lexer.TokenSemicolon) {
		value, err := p.parseExpression(LOWEST)
		if err != nil {
			return nil, err
		}
		stmt.ReturnValue = value
	}

	if _, err := p.expect(lexer.TokenSemicolon); err != nil {
		return nil, err
	}
	return stmt, nil
}

func (p *Parser) parseIfStatement() (*ast.IfStatement, error) {
	stmt := &ast.IfStatement{Token: p.curToken}
	p.nextToken()

	condition, err := p.parseExpression(LOWEST)
	if err != nil {
		return nil, err
	}
	stmt.Condition = condition

	stmt.Consequence, err = p.parseBlock()
	if err != nil {
		return nil, err
	}

	// check if there is an else stmt
	if p.curTokenKindIs(lexer.TokenElse) {
		p.nextToken()
		// support for else if, it becomes the only statement of the else arm
		if p.curTokenKindIs(lexer.TokenIf) {
			nested, err := p.parseIfStatement()
			if err != nil {
				return nil, err
			}
			stmt.Alternative = []ast.Statement{nested}
		} else {
			stmt.Alternative, err = p.parseBlock()
			if err != nil {
				return nil, err
			}
		}
	}

	return stmt, nil
}

func (p *Parser) parseCycleStatement() (*ast.CycleStatement, error) {
	stmt := &ast.CycleStatement{Token: p.curToken}
	p.nextToken()

	if !p.curTokenKindIs(lexer.TokenCurlyBraceOpen) {
		condition, err := p.parseExpression(LOWEST)
		if err != nil {
			return nil, err
		}
		stmt.Condition = condition
	}

	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	stmt.Body = body
	return stmt, nil
}

// Expressions

func (p *Parser) parseExpression(precedence int) (ast.Expression, error) {
	cur := p.curToken

	prefix := p.prefixParseFns[cur.Kind]
	if prefix == nil {
		return nil, p.error(cur, "unrecognized token ", describe(cur), " in expression")
	}

	leftExp, err := prefix()
	if err != nil {
		return nil, err
	}

	for !p.curTokenKindIs(lexer.TokenEOF) && precedence < p.curPrecedence() {
		infix := p.infixParseFns[p.curToken.Kind]
		if infix == nil {
			return leftExp, nil
		}
		leftExp, err = infix(leftExp)
		if err != nil {
			return nil, err
		}
	}

	return leftExp, nil
}

func (p *Parser) curPrecedence() int {
	if p, ok := precedences[p.curToken.Kind]; ok {
		return p
	}
	return LOWEST
}

func (p *Parser) parseIdentifier() (ast.Expression, error) {
	ident := &ast.Identifier{Token: p.curToken, Value: p.curToken.Text}
	p.nextToken()
	return ident, nil
}

func (p *Parser) parseIntLiteral() (ast.Expression, error) {
	tok := p.curToken
	p.nextToken()

	num, err := strconv.ParseInt(tok.Text, 10, 64)
	if err != nil {
		return nil, p.error(tok, "integer literal (", tok.Text, ") is out of range")
	}
	return &ast.IntegerLiteral{
		Token: tok,
		Value: num,
	}, nil
}

func (p *Parser) parseFloatLiteral() (ast.Expression, error) {
	tok := p.curToken
	p.nextToken()

	num, err := strconv.ParseFloat(tok.Text, 64)
	if err != nil {
		return nil, p.error(tok, "float literal (", tok.Text, ") is out of range")
	}
	return &ast.FloatLiteral{
		Token: tok,
		Value: num,
	}, nil
}

func (p *Parser) parseStringLiteral() (ast.Expression, error) {
	tok := p.curToken
	p.nextToken()

	return &ast.StringLiteral{
		Token: tok,
		Value: tok.Text,
	}, nil
}

func (p *Parser) parseBooleanLiteral() (ast.Expression, error) {
	tok := p.curToken
	p.nextToken()

	return &ast.BooleanLiteral{
		Token: tok,
		Value: tok.Text == "true",
	}, nil
}

func (p *Parser) parseGroupedExpression() (ast.Expression, error) {
	p.nextToken()
	exp, err := p.parseExpression(LOWEST)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.TokenBraceClose); err != nil {
		return nil, err
	}
	return exp, nil
}

// -literal folds into the literal, -expr becomes (0 - expr) so the expression
// set stays closed
func (p *Parser) parseNegation() (ast.Expression, error) {
	tok := p.curToken
	p.nextToken()

	switch p.curToken.Kind {
	case lexer.TokenInt:
		lit := p.curToken
		lit.Text = "-" + lit.Text
		lit.Col = tok.Col
		p.curToken = lit
		return p.parseIntLiteral()
	case lexer.TokenFloat:
		lit := p.curToken
		lit.Text = "-" + lit.Text
		lit.Col = tok.Col
		p.curToken = lit
		return p.parseFloatLiteral()
	}

	right, err := p.parseExpression(PRODUCT)
	if err != nil {
		return nil, err
	}
	zero := lexer.Token{LiteralToken: lexer.LiteralToken{Kind: lexer.TokenInt, Text: "0"}, Row: tok.Row, Col: tok.Col}
	return &ast.BinaryExpression{
		Token:    tok,
		Operator: tok.Text,
		Left:     &ast.IntegerLiteral{Token: zero, Value: 0},
		Right:    right,
	}, nil
}

func (p *Parser) parseInfixExpression(left ast.Expression) (ast.Expression, error) {
	tok := p.curToken

	precedence := p.curPrecedence()
	p.nextToken()
	right, err := p.parseExpression(precedence)
	if err != nil {
		return nil, err
	}

	return &ast.BinaryExpression{
		Token:    tok,
		Operator: lexer.BinOperators[tok.Kind],
		Left:     left,
		Right:    right,
	}, nil
}

func (p *Parser) parseCallExpression(left ast.Expression) (ast.Expression, error) {
	ident, ok := left.(*ast.Identifier)
	if !ok {
		return nil, p.error(p.curToken, "only rituals can be called, got ", left.String())
	}

	exp := &ast.CallExpression{Token: ident.Token, Function: ident.Value, Args: []ast.Expression{}}

	// consume (
	p.nextToken()

	if p.curTokenKindIs(lexer.TokenBraceClose) {
		p.nextToken()
		return exp, nil
	}

	for {
		arg, err := p.parseExpression(LOWEST)
		if err != nil {
			return nil, err
		}
		exp.Args = append(exp.Args, arg)

		if !p.curTokenKindIs(lexer.TokenComma) {
			break
		}
		p.nextToken()
	}

	if _, err := p.expect(lexer.TokenBraceClose); err != nil {
		return nil, err
	}

	return exp, nil
}
