package lexer

import (
	"strings"
	"unicode"
)

func NewLexer(filePath string, content string) *Lexer {
	lexer := Lexer{
		Content:  []rune(content),
		FilePath: filePath,
		Row:      1,
		Col:      1,
		Cur:      0,
	}
	return &lexer
}

func (l *Lexer) readChar() {
	if l.Cur >= len(l.Content) {
		// reach end of file
		return
	}

	char := l.Content[l.Cur]

	switch char {
	case '\n':
		l.Row++
		l.Col = 1
	default:
		l.Col++
	}

	// increment to deal with the next char
	l.Cur++
}

func (l *Lexer) peekChar() rune {
	if l.Cur+1 >= len(l.Content) {
		return 0
	}
	return l.Content[l.Cur+1]
}

func (l *Lexer) NextToken() Token {
	if tok, ok := l.skipTrivia(); !ok {
		return tok
	}

	token := Token{
		Row: l.Row,
		Col: l.Col,
	}

	if l.Cur >= len(l.Content) {
		token.LiteralToken = LiteralToken{
			Kind: TokenEOF,
			Text: "",
		}
		return token
	}

	char := l.Content[l.Cur]

	if kind, ok := singleRuneTokens[char]; ok {
		l.readChar()
		token.LiteralToken = LiteralToken{
			Kind: kind,
			Text: string(char),
		}
		return token
	}

	switch char {
	case '-':
		l.readChar()
		if l.Cur < len(l.Content) && l.Content[l.Cur] == '>' {
			l.readChar()
			token.LiteralToken = LiteralToken{
				Kind: TokenArrow,
				Text: "->",
			}
		} else {
			token.LiteralToken = LiteralToken{
				Kind: TokenMinus,
				Text: "-",
			}
		}
	case '/':
		// comments are already skipped, so this is always a division
		l.readChar()
		token.LiteralToken = LiteralToken{
			Kind: TokenSlash,
			Text: "/",
		}
	case '=':
		l.readChar()
		if l.Cur < len(l.Content) && l.Content[l.Cur] == '=' {
			l.readChar()
			token.LiteralToken = LiteralToken{
				Kind: TokenEquals,
				Text: "==",
			}
		} else {
			token.LiteralToken = LiteralToken{
				Kind: TokenAssign,
				Text: "=",
			}
		}
	case '!':
		l.readChar()
		if l.Cur < len(l.Content) && l.Content[l.Cur] == '=' {
			l.readChar()
			token.LiteralToken = LiteralToken{
				Kind: TokenNotEquals,
				Text: "!=",
			}
		} else {
			token.LiteralToken = LiteralToken{
				Kind: TokenError,
				Text: "unexpected character (!), did you mean (!=)",
			}
		}
	case '"':
		return l.readString()
	default:
		if isLetter(char) {
			return l.readIdentifier()
		}
		if isDigit(char) {
			return l.readNumber()
		}
		l.readChar()
		token.LiteralToken = LiteralToken{
			Kind: TokenError,
			Text: "unexpected character (" + string(char) + ")",
		}
	}

	return token
}

func (l *Lexer) Tokenize() []Token {
	var tokens []Token
	for {
		tok := l.NextToken()
		tokens = append(tokens, tok)
		if tok.Kind == TokenEOF {
			break
		}
	}
	return tokens
}

func isLetter(char rune) bool {
	return unicode.IsLetter(char) || char == '_'
}

func isDigit(char rune) bool {
	return char >= '0' && char <= '9'
}

func (l *Lexer) readIdentifier() Token {
	startPos := l.Cur

	// save them to return
	row := l.Row
	col := l.Col

	for l.Cur < len(l.Content) {
		char := l.Content[l.Cur]
		if isLetter(char) || isDigit(char) {
			l.readChar()
		} else {
			break
		}
	}

	text := string(l.Content[startPos:l.Cur])

	if tokenKind, isKeyword := Keywords[text]; isKeyword {
		return Token{LiteralToken: LiteralToken{
			Kind: tokenKind,
			Text: text,
		}, Row: row, Col: col}
	}

	return Token{
		LiteralToken: LiteralToken{
			Kind: TokenIdentifier,
			Text: text,
		},
		Row: row,
		Col: col,
	}
}

func (l *Lexer) readString() Token {
	row, col := l.Row, l.Col

	// skip the opening quote
	l.readChar()

	var out strings.Builder
	for l.Cur < len(l.Content) && l.Content[l.Cur] != '"' {
		char := l.Content[l.Cur]
		if char == '\\' && l.Cur+1 < len(l.Content) {
			l.readChar()
			switch l.Content[l.Cur] {
			case 'n':
				out.WriteRune('\n')
			case 't':
				out.WriteRune('\t')
			case '"':
				out.WriteRune('"')
			case '\\':
				out.WriteRune('\\')
			default:
				out.WriteRune('\\')
				out.WriteRune(l.Content[l.Cur])
			}
			l.readChar()
			continue
		}
		out.WriteRune(char)
		l.readChar()
	}

	if l.Cur >= len(l.Content) {
		return Token{
			LiteralToken: LiteralToken{
				Kind: TokenError,
				Text: `the quoted data, doesn't have a closing quote (")`,
			},
			Row: row,
			Col: col,
		}
	}

	l.readChar() // consume the closing quote

	return Token{
		LiteralToken: LiteralToken{
			Kind: TokenString,
			Text: out.String(),
		},
		Row: row,
		Col: col,
	}
}

func (l *Lexer) readNumber() Token {
	startPos := l.Cur
	row := l.Row
	col := l.Col

	// Read integer part
	for l.Cur < len(l.Content) && isDigit(l.Content[l.Cur]) {
		l.readChar()
	}

	// a dot only belongs to the number when a digit follows it
	if l.Cur < len(l.Content) && l.Content[l.Cur] == '.' && isDigit(l.peekChar()) {
		l.readChar() // consume '.'

		// Read fractional part
		for l.Cur < len(l.Content) && isDigit(l.Content[l.Cur]) {
			l.readChar()
		}

		return Token{
			LiteralToken: LiteralToken{
				Kind: TokenFloat,
				Text: string(l.Content[startPos:l.Cur]),
			},
			Row: row,
			Col: col,
		}
	}

	return Token{
		LiteralToken: LiteralToken{
			Kind: TokenInt,
			Text: string(l.Content[startPos:l.Cur]),
		},
		Row: row,
		Col: col,
	}
}

// skips whitespace, line comments (//) and block comments (/* */). A block
// comment running into the end of file comes back as an error token.
func (l *Lexer) skipTrivia() (Token, bool) {
	for l.Cur < len(l.Content) {
		char := l.Content[l.Cur]
		switch {
		case unicode.IsSpace(char):
			l.readChar()
		case char == '/' && l.peekChar() == '/':
			for l.Cur < len(l.Content) && l.Content[l.Cur] != '\n' {
				l.readChar()
			}
		case char == '/' && l.peekChar() == '*':
			row, col := l.Row, l.Col
			l.readChar()
			l.readChar()
			for l.Cur < len(l.Content) && !(l.Content[l.Cur] == '*' && l.peekChar() == '/') {
				l.readChar()
			}
			if l.Cur >= len(l.Content) {
				return Token{
					LiteralToken: LiteralToken{
						Kind: TokenError,
						Text: "block comment is never closed, missing (*/)",
					},
					Row: row,
					Col: col,
				}, false
			}
			// consume the closing */
			l.readChar()
			l.readChar()
		default:
			return Token{}, true
		}
	}
	return Token{}, true
}
