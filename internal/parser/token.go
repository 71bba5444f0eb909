package parser

// TokenType represents the type of a lexical token.
type TokenType int

const (
	// Literals
	TokenIdentifier TokenType = iota
	TokenNumber               // integer or float literal
	TokenString               // 'single-quoted string'

	// Keywords
	TokenCREATE
	TokenTABLE
	TokenMATERIALIZED
	TokenVIEW
	TokenVIEWS
	TokenENGINE
	TokenORDER
	TokenBY
	TokenPARTITION
	TokenPARTITIONS
	TokenALTER
	TokenADD
	TokenDROP
	TokenVALUES
	TokenFROM
	TokenTO
	TokenON
	TokenAS
	TokenIF
	TokenNOT
	TokenEXISTS
	TokenSHOW
	TokenTABLES
	TokenINSERT
	TokenINTO
	TokenREFRESH
	TokenSTOP
	TokenROUTINE
	TokenLOAD
	TokenFOR

	// Operators and punctuation
	TokenLParen    // (
	TokenRParen    // )
	TokenComma     // ,
	TokenDot       // .
	TokenEQ        // =
	TokenStar      // *
	TokenSemicolon // ;

	TokenEOF
)

// Token represents a lexical token. Offset is the byte position of the
// token in the original input, used to slice out raw statement bodies.
type Token struct {
	Type    TokenType
	Literal string
	Line    int
	Col     int
	Offset  int
}

var keywords = map[string]TokenType{
	"CREATE":       TokenCREATE,
	"TABLE":        TokenTABLE,
	"MATERIALIZED": TokenMATERIALIZED,
	"VIEW":         TokenVIEW,
	"VIEWS":        TokenVIEWS,
	"ENGINE":       TokenENGINE,
	"ORDER":        TokenORDER,
	"BY":           TokenBY,
	"PARTITION":    TokenPARTITION,
	"PARTITIONS":   TokenPARTITIONS,
	"ALTER":        TokenALTER,
	"ADD":          TokenADD,
	"DROP":         TokenDROP,
	"VALUES":       TokenVALUES,
	"FROM":         TokenFROM,
	"TO":           TokenTO,
	"ON":           TokenON,
	"AS":           TokenAS,
	"IF":           TokenIF,
	"NOT":          TokenNOT,
	"EXISTS":       TokenEXISTS,
	"SHOW":         TokenSHOW,
	"TABLES":       TokenTABLES,
	"INSERT":       TokenINSERT,
	"INTO":         TokenINTO,
	"REFRESH":      TokenREFRESH,
	"STOP":         TokenSTOP,
	"ROUTINE":      TokenROUTINE,
	"LOAD":         TokenLOAD,
	"FOR":          TokenFOR,
}

// LookupKeyword returns the keyword token type for an identifier, or TokenIdentifier.
func LookupKeyword(ident string) TokenType {
	// Case-insensitive lookup
	upper := toUpper(ident)
	if tt, ok := keywords[upper]; ok {
		return tt
	}
	return TokenIdentifier
}

func toUpper(s string) string {
	b := make([]byte, len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c >= 'a' && c <= 'z' {
			b[i] = c - 32
		} else {
			b[i] = c
		}
	}
	return string(b)
}
