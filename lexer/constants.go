package lexer

type Operator = string

var (
	Keywords = map[string]TokenKind{
		"realm":  TokenRealm,
		"being":  TokenBeing,
		"ritual": TokenRitual,
		"cycle":  TokenCycle,
		"if":     TokenIf,
		"else":   TokenElse,
		"return": TokenReturn,
		"let":    TokenLet,
		"true":   TokenBool,
		"false":  TokenBool,

		"essence":     TokenEssence,
		"seal":        TokenSeal,
		"perceptions": TokenPerceptions,
		"extensions":  TokenExtensions,
		"memory":      TokenMemory,
		"hive":        TokenHive,
	}

	// keywords the lexer knows about but the parser refuses
	ReservedKeywords = map[TokenKind]bool{
		TokenEssence:     true,
		TokenSeal:        true,
		TokenPerceptions: true,
		TokenExtensions:  true,
		TokenMemory:      true,
		TokenHive:        true,
	}

	BinOperators = map[TokenKind]Operator{
		TokenPlus:      "+",
		TokenMinus:     "-",
		TokenMultiply:  "*",
		TokenSlash:     "/",
		TokenEquals:    "==",
		TokenNotEquals: "!=",
		TokenLess:      "<",
		TokenGreater:   ">",
	}

	// single rune tokens, the multi rune ones are handled in NextToken
	singleRuneTokens = map[rune]TokenKind{
		'{': TokenCurlyBraceOpen,
		'}': TokenCurlyBraceClose,
		'(': TokenBraceOpen,
		')': TokenBraceClose,
		':': TokenColon,
		';': TokenSemicolon,
		',': TokenComma,
		'+': TokenPlus,
		'*': TokenMultiply,
		'<': TokenLess,
		'>': TokenGreater,
	}
)
