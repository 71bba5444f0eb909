package parser

import (
	"fmt"
	"strings"
)

// Parser is a recursive descent SQL parser.
type Parser struct {
	input  string // original SQL text, for slicing raw statement bodies
	tokens []Token
	pos    int
}

// NewParser creates a parser from a slice of tokens. The original input
// text is kept so AS SELECT bodies can be carried verbatim.
func NewParser(tokens []Token, input string) *Parser {
	return &Parser{input: input, tokens: tokens, pos: 0}
}

// ParseSQL is a convenience function: lex + parse a SQL string.
func ParseSQL(sql string) (Statement, error) {
	lexer := NewLexer(sql)
	tokens, err := lexer.Tokenize()
	if err != nil {
		return nil, err
	}
	parser := NewParser(tokens, sql)
	return parser.Parse()
}

// Parse parses the token stream into a statement.
func (p *Parser) Parse() (Statement, error) {
	tok := p.peek()

	var stmt Statement
	var err error
	switch tok.Type {
	case TokenCREATE:
		stmt, err = p.parseCreate()
	case TokenALTER:
		stmt, err = p.parseAlter()
	case TokenINSERT:
		stmt, err = p.parseInsert()
	case TokenDROP:
		stmt, err = p.parseDrop()
	case TokenSHOW:
		stmt, err = p.parseShow()
	case TokenREFRESH:
		stmt, err = p.parseRefresh()
	case TokenSTOP:
		stmt, err = p.parseStopRoutineLoad()
	default:
		return nil, p.errorf("unexpected token %q, expected a statement", tok.Literal)
	}
	if err != nil {
		return nil, err
	}

	p.match(TokenSemicolon)
	if p.peek().Type != TokenEOF {
		// CREATE MATERIALIZED VIEW consumes the rest of the input itself.
		if _, ok := stmt.(*CreateMaterializedViewStmt); !ok {
			return nil, p.errorf("unexpected trailing token %q", p.peek().Literal)
		}
	}
	return stmt, nil
}

func (p *Parser) parseCreate() (Statement, error) {
	if p.peekAt(p.pos+1).Type == TokenMATERIALIZED {
		return p.parseCreateMaterializedView()
	}
	return p.parseCreateTable()
}

// --- Token helpers ---

func (p *Parser) peek() Token {
	return p.peekAt(p.pos)
}

func (p *Parser) peekAt(i int) Token {
	if i >= len(p.tokens) {
		return Token{Type: TokenEOF}
	}
	return p.tokens[i]
}

func (p *Parser) advance() Token {
	tok := p.peek()
	if p.pos < len(p.tokens) {
		p.pos++
	}
	return tok
}

func (p *Parser) expect(tt TokenType) (Token, error) {
	tok := p.advance()
	if tok.Type != tt {
		return tok, p.errorf("expected token type %d, got %q (%d)", tt, tok.Literal, tok.Type)
	}
	return tok, nil
}

func (p *Parser) expectKeyword(tt TokenType) error {
	_, err := p.expect(tt)
	return err
}

func (p *Parser) match(tt TokenType) bool {
	if p.peek().Type == tt {
		p.advance()
		return true
	}
	return false
}

func (p *Parser) errorf(format string, args ...interface{}) error {
	tok := p.peek()
	prefix := fmt.Sprintf("line %d col %d: ", tok.Line, tok.Col)
	return fmt.Errorf(prefix+format, args...)
}

// --- CREATE TABLE ---

func (p *Parser) parseCreateTable() (*CreateTableStmt, error) {
	if err := p.expectKeyword(TokenCREATE); err != nil {
		return nil, err
	}
	if err := p.expectKeyword(TokenTABLE); err != nil {
		return nil, err
	}

	stmt := &CreateTableStmt{}

	if p.peek().Type == TokenIF {
		p.advance()
		if err := p.expectKeyword(TokenNOT); err != nil {
			return nil, err
		}
		if err := p.expectKeyword(TokenEXISTS); err != nil {
			return nil, err
		}
		stmt.IfNotExists = true
	}

	nameTok, err := p.expect(TokenIdentifier)
	if err != nil {
		return nil, err
	}
	stmt.TableName = nameTok.Literal

	// Column definitions: ( col1 Type1, col2 Type2, ... )
	if _, err := p.expect(TokenLParen); err != nil {
		return nil, err
	}
	for {
		colName, err := p.expect(TokenIdentifier)
		if err != nil {
			return nil, err
		}
		colType, err := p.expect(TokenIdentifier)
		if err != nil {
			return nil, err
		}
		stmt.Columns = append(stmt.Columns, ColumnDefNode{
			Name:     colName.Literal,
			TypeName: colType.Literal,
		})
		if !p.match(TokenComma) {
			break
		}
	}
	if _, err := p.expect(TokenRParen); err != nil {
		return nil, err
	}

	// Optional ENGINE = MergeTree()
	if p.peek().Type == TokenENGINE {
		p.advance()
		if _, err := p.expect(TokenEQ); err != nil {
			return nil, err
		}
		engineTok, err := p.expect(TokenIdentifier)
		if err != nil {
			return nil, err
		}
		stmt.Engine = engineTok.Literal
		if p.match(TokenLParen) {
			if _, err := p.expect(TokenRParen); err != nil {
				return nil, err
			}
		}
	}

	// ORDER BY (col1, col2, ...) or ORDER BY col1
	if p.peek().Type == TokenORDER {
		p.advance()
		if err := p.expectKeyword(TokenBY); err != nil {
			return nil, err
		}
		stmt.OrderBy, err = p.parseColumnList()
		if err != nil {
			return nil, err
		}
	}

	// PARTITION BY col
	if p.peek().Type == TokenPARTITION {
		p.advance()
		if err := p.expectKeyword(TokenBY); err != nil {
			return nil, err
		}
		colTok, err := p.expect(TokenIdentifier)
		if err != nil {
			return nil, err
		}
		stmt.PartitionBy = colTok.Literal
	}

	return stmt, nil
}

// parseColumnList parses either a single identifier or a parenthesized
// comma-separated identifier list.
func (p *Parser) parseColumnList() ([]string, error) {
	var cols []string
	if p.match(TokenLParen) {
		for {
			tok, err := p.expect(TokenIdentifier)
			if err != nil {
				return nil, err
			}
			cols = append(cols, tok.Literal)
			if !p.match(TokenComma) {
				break
			}
		}
		if _, err := p.expect(TokenRParen); err != nil {
			return nil, err
		}
		return cols, nil
	}
	tok, err := p.expect(TokenIdentifier)
	if err != nil {
		return nil, err
	}
	return []string{tok.Literal}, nil
}

// --- CREATE MATERIALIZED VIEW ---

func (p *Parser) parseCreateMaterializedView() (*CreateMaterializedViewStmt, error) {
	if err := p.expectKeyword(TokenCREATE); err != nil {
		return nil, err
	}
	if err := p.expectKeyword(TokenMATERIALIZED); err != nil {
		return nil, err
	}
	if err := p.expectKeyword(TokenVIEW); err != nil {
		return nil, err
	}

	stmt := &CreateMaterializedViewStmt{}

	if p.peek().Type == TokenIF {
		p.advance()
		if err := p.expectKeyword(TokenNOT); err != nil {
			return nil, err
		}
		if err := p.expectKeyword(TokenEXISTS); err != nil {
			return nil, err
		}
		stmt.IfNotExists = true
	}

	nameTok, err := p.expect(TokenIdentifier)
	if err != nil {
		return nil, err
	}
	stmt.ViewName = nameTok.Literal

	if err := p.expectKeyword(TokenON); err != nil {
		return nil, err
	}
	srcTok, err := p.expect(TokenIdentifier)
	if err != nil {
		return nil, err
	}
	stmt.SourceTable = srcTok.Literal

	if err := p.expectKeyword(TokenPARTITION); err != nil {
		return nil, err
	}
	if err := p.expectKeyword(TokenBY); err != nil {
		return nil, err
	}
	if err := p.parsePartitionExpr(stmt); err != nil {
		return nil, err
	}

	if err := p.expectKeyword(TokenAS); err != nil {
		return nil, err
	}

	// The SELECT body is carried verbatim; slice the raw input from the
	// first token after AS through the end of the statement.
	bodyTok := p.peek()
	if bodyTok.Type == TokenEOF {
		return nil, p.errorf("expected SELECT body after AS")
	}
	body := strings.TrimSpace(p.input[bodyTok.Offset:])
	body = strings.TrimSuffix(body, ";")
	stmt.SelectSQL = strings.TrimSpace(body)
	if !strings.EqualFold(firstWord(stmt.SelectSQL), "SELECT") {
		return nil, p.errorf("expected SELECT body after AS, got %q", firstWord(stmt.SelectSQL))
	}
	p.pos = len(p.tokens)

	return stmt, nil
}

// parsePartitionExpr parses either a bare column name (same-partition
// mode) or date_trunc('<granularity>', col).
func (p *Parser) parsePartitionExpr(stmt *CreateMaterializedViewStmt) error {
	tok, err := p.expect(TokenIdentifier)
	if err != nil {
		return err
	}
	if !strings.EqualFold(tok.Literal, "date_trunc") {
		stmt.PartitionColumn = tok.Literal
		return nil
	}
	if _, err := p.expect(TokenLParen); err != nil {
		return err
	}
	granTok, err := p.expect(TokenString)
	if err != nil {
		return err
	}
	stmt.Granularity = strings.ToLower(granTok.Literal)
	if _, err := p.expect(TokenComma); err != nil {
		return err
	}
	colTok, err := p.expect(TokenIdentifier)
	if err != nil {
		return err
	}
	stmt.PartitionColumn = colTok.Literal
	if _, err := p.expect(TokenRParen); err != nil {
		return err
	}
	return nil
}

func firstWord(s string) string {
	for i := 0; i < len(s); i++ {
		ch := s[i]
		if ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r' {
			return s[:i]
		}
	}
	return s
}

// --- ALTER TABLE ---

func (p *Parser) parseAlter() (Statement, error) {
	if err := p.expectKeyword(TokenALTER); err != nil {
		return nil, err
	}
	if err := p.expectKeyword(TokenTABLE); err != nil {
		return nil, err
	}
	nameTok, err := p.expect(TokenIdentifier)
	if err != nil {
		return nil, err
	}

	switch p.peek().Type {
	case TokenADD:
		p.advance()
		if err := p.expectKeyword(TokenPARTITION); err != nil {
			return nil, err
		}
		partTok, err := p.expect(TokenIdentifier)
		if err != nil {
			return nil, err
		}
		if err := p.expectKeyword(TokenVALUES); err != nil {
			return nil, err
		}
		if err := p.expectKeyword(TokenFROM); err != nil {
			return nil, err
		}
		lowerTok, err := p.expect(TokenString)
		if err != nil {
			return nil, err
		}
		if err := p.expectKeyword(TokenTO); err != nil {
			return nil, err
		}
		upperTok, err := p.expect(TokenString)
		if err != nil {
			return nil, err
		}
		return &AlterTableAddPartitionStmt{
			TableName:     nameTok.Literal,
			PartitionName: partTok.Literal,
			Lower:         lowerTok.Literal,
			Upper:         upperTok.Literal,
		}, nil
	case TokenDROP:
		p.advance()
		if err := p.expectKeyword(TokenPARTITION); err != nil {
			return nil, err
		}
		partTok, err := p.expect(TokenIdentifier)
		if err != nil {
			return nil, err
		}
		return &AlterTableDropPartitionStmt{
			TableName:     nameTok.Literal,
			PartitionName: partTok.Literal,
		}, nil
	default:
		return nil, p.errorf("expected ADD or DROP after ALTER TABLE %s", nameTok.Literal)
	}
}

// --- INSERT ---

func (p *Parser) parseInsert() (*InsertStmt, error) {
	if err := p.expectKeyword(TokenINSERT); err != nil {
		return nil, err
	}
	if err := p.expectKeyword(TokenINTO); err != nil {
		return nil, err
	}

	nameTok, err := p.expect(TokenIdentifier)
	if err != nil {
		return nil, err
	}
	stmt := &InsertStmt{TableName: nameTok.Literal}

	// Optional column list
	if p.peek().Type == TokenLParen {
		p.advance()
		for {
			colTok, err := p.expect(TokenIdentifier)
			if err != nil {
				return nil, err
			}
			stmt.Columns = append(stmt.Columns, colTok.Literal)
			if !p.match(TokenComma) {
				break
			}
		}
		if _, err := p.expect(TokenRParen); err != nil {
			return nil, err
		}
	}

	if err := p.expectKeyword(TokenVALUES); err != nil {
		return nil, err
	}

	for {
		if _, err := p.expect(TokenLParen); err != nil {
			return nil, err
		}
		var row []ValueLiteral
		for {
			tok := p.advance()
			switch tok.Type {
			case TokenString:
				row = append(row, ValueLiteral{Text: tok.Literal, IsString: true})
			case TokenNumber:
				row = append(row, ValueLiteral{Text: tok.Literal})
			default:
				return nil, p.errorf("expected a literal in VALUES, got %q", tok.Literal)
			}
			if !p.match(TokenComma) {
				break
			}
		}
		if _, err := p.expect(TokenRParen); err != nil {
			return nil, err
		}
		stmt.Values = append(stmt.Values, row)
		if !p.match(TokenComma) {
			break
		}
	}

	return stmt, nil
}

// --- DROP ---

func (p *Parser) parseDrop() (*DropTableStmt, error) {
	if err := p.expectKeyword(TokenDROP); err != nil {
		return nil, err
	}
	if err := p.expectKeyword(TokenTABLE); err != nil {
		return nil, err
	}
	stmt := &DropTableStmt{}
	if p.peek().Type == TokenIF {
		p.advance()
		if err := p.expectKeyword(TokenEXISTS); err != nil {
			return nil, err
		}
		stmt.IfExists = true
	}
	nameTok, err := p.expect(TokenIdentifier)
	if err != nil {
		return nil, err
	}
	stmt.TableName = nameTok.Literal
	return stmt, nil
}

// --- SHOW ---

func (p *Parser) parseShow() (Statement, error) {
	if err := p.expectKeyword(TokenSHOW); err != nil {
		return nil, err
	}
	switch p.peek().Type {
	case TokenTABLES:
		p.advance()
		return &ShowTablesStmt{}, nil
	case TokenMATERIALIZED:
		p.advance()
		if err := p.expectKeyword(TokenVIEWS); err != nil {
			return nil, err
		}
		return &ShowViewsStmt{}, nil
	case TokenPARTITIONS:
		p.advance()
		if err := p.expectKeyword(TokenFROM); err != nil {
			return nil, err
		}
		nameTok, err := p.expect(TokenIdentifier)
		if err != nil {
			return nil, err
		}
		return &ShowPartitionsStmt{TableName: nameTok.Literal}, nil
	default:
		return nil, p.errorf("expected TABLES, MATERIALIZED VIEWS or PARTITIONS after SHOW")
	}
}

// --- REFRESH ---

func (p *Parser) parseRefresh() (*RefreshMaterializedViewStmt, error) {
	if err := p.expectKeyword(TokenREFRESH); err != nil {
		return nil, err
	}
	if err := p.expectKeyword(TokenMATERIALIZED); err != nil {
		return nil, err
	}
	if err := p.expectKeyword(TokenVIEW); err != nil {
		return nil, err
	}
	nameTok, err := p.expect(TokenIdentifier)
	if err != nil {
		return nil, err
	}
	return &RefreshMaterializedViewStmt{ViewName: nameTok.Literal}, nil
}

// --- STOP ROUTINE LOAD ---

func (p *Parser) parseStopRoutineLoad() (*StopRoutineLoadStmt, error) {
	if err := p.expectKeyword(TokenSTOP); err != nil {
		return nil, err
	}
	if err := p.expectKeyword(TokenROUTINE); err != nil {
		return nil, err
	}
	if err := p.expectKeyword(TokenLOAD); err != nil {
		return nil, err
	}
	if err := p.expectKeyword(TokenFOR); err != nil {
		return nil, err
	}
	nameTok, err := p.expect(TokenIdentifier)
	if err != nil {
		return nil, err
	}
	stmt := &StopRoutineLoadStmt{JobName: nameTok.Literal}
	if p.match(TokenDot) {
		jobTok, err := p.expect(TokenIdentifier)
		if err != nil {
			return nil, err
		}
		stmt.DbName = nameTok.Literal
		stmt.JobName = jobTok.Literal
	}
	return stmt, nil
}
