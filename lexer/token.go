package lexer

import "fmt"

type TokenKind = string

const (

	// Keywords
	TokenRealm  TokenKind = "realm"
	TokenBeing  TokenKind = "being"
	TokenRitual TokenKind = "ritual"
	TokenCycle  TokenKind = "cycle"
	TokenIf     TokenKind = "if"
	TokenElse   TokenKind = "else"
	TokenReturn TokenKind = "return"
	TokenLet    TokenKind = "let"

	// reserved by the language, not usable yet
	TokenEssence     TokenKind = "essence"
	TokenSeal        TokenKind = "seal"
	TokenPerceptions TokenKind = "perceptions"
	TokenExtensions  TokenKind = "extensions"
	TokenMemory      TokenKind = "memory"
	TokenHive        TokenKind = "hive"

	// Units
	TokenCurlyBraceOpen  TokenKind = "{"
	TokenCurlyBraceClose TokenKind = "}"
	TokenBraceOpen       TokenKind = "("
	TokenBraceClose      TokenKind = ")"
	TokenColon           TokenKind = ":"
	TokenSemicolon       TokenKind = ";"
	TokenComma           TokenKind = ","
	TokenArrow           TokenKind = "->"

	// Arithmetic Operators
	TokenPlus     TokenKind = "+"
	TokenMinus    TokenKind = "-"
	TokenMultiply TokenKind = "*"
	TokenSlash    TokenKind = "/"

	// Comparison Operators
	TokenEquals    TokenKind = "=="
	TokenNotEquals TokenKind = "!="
	TokenLess      TokenKind = "<"
	TokenGreater   TokenKind = ">"

	// Bind Operators
	TokenAssign TokenKind = "="

	// Var Naming
	TokenIdentifier TokenKind = "identifier"

	// Literals
	TokenInt    TokenKind = "int literal"
	TokenFloat  TokenKind = "float literal"
	TokenString TokenKind = "string literal"
	TokenBool   TokenKind = "bool literal"

	// Error
	TokenError TokenKind = "error"

	// EOF
	TokenEOF TokenKind = "end of file"
)

type LiteralToken struct {
	Text string
	Kind TokenKind
}

type Token struct {
	LiteralToken
	Row int
	Col int
}

// Pos renders the token position as row:col, used as a prefix in error messages.
func (t Token) Pos() string {
	return fmt.Sprintf("%d:%d", t.Row, t.Col)
}

// IsValid reports whether the token was produced by the lexer (as opposed to a
// node built by hand without position information).
func (t Token) IsValid() bool {
	return t.Row > 0 && t.Col > 0
}

type Lexer struct {
	Content []rune
	// help mainly in error detection when having multi file execution
	FilePath string
	Row      int
	Col      int
	Cur      int
}
