// Package parser is a recursive-descent parser over the HolyC token stream,
// producing the typed ast.File described in spec.md §3-§4.2.
package parser

import (
	"holybpf/ast"
	"holybpf/lexer"
	"holybpf/token"
)

const maxParams = 5

// Parser consumes a token slice and produces an ast.File, or fails with the
// first Error encountered — there is no error recovery, matching spec.md
// §4.2's failure model.
type Parser struct {
	tokens  []token.Token
	pos     int
	classes map[string][]ast.Field
}

// Make constructs a Parser over an already-lexed token stream.
func Make(tokens []token.Token) *Parser {
	return &Parser{tokens: tokens, classes: map[string][]ast.Field{}}
}

func (p *Parser) peek() token.Token   { return p.tokens[p.pos] }
func (p *Parser) peekAt(n int) token.Token {
	i := p.pos + n
	if i >= len(p.tokens) {
		return p.tokens[len(p.tokens)-1] // EOF
	}
	return p.tokens[i]
}
func (p *Parser) previous() token.Token { return p.tokens[p.pos-1] }
func (p *Parser) isFinished() bool      { return p.peek().Type == token.EOF }

func (p *Parser) advance() token.Token {
	if !p.isFinished() {
		p.pos++
	}
	return p.previous()
}

func (p *Parser) check(t token.Type) bool { return p.peek().Type == t }

func (p *Parser) match(t token.Type) bool {
	if p.check(t) {
		p.advance()
		return true
	}
	return false
}

func (p *Parser) consume(t token.Type, what string) (token.Token, error) {
	if p.check(t) {
		return p.advance(), nil
	}
	tok := p.peek()
	return token.Token{}, errExpected(tok.Pos, tok.Type.String(), what)
}

// Parse parses the entire token stream into an ast.File.
func (p *Parser) Parse() (*ast.File, error) {
	var items []ast.Item

	for !p.isFinished() {
		item, err := p.topLevelItem()
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}

	file := &ast.File{Items: items}
	p.resolveClassTypes(file)
	return file, nil
}

func (p *Parser) topLevelItem() (ast.Item, error) {
	tok := p.peek()
	switch tok.Type {
	case token.PP_INCLUDE:
		p.advance()
		return ast.IncludeDecl{Path: tok.PP.Value, Position: tok.Pos}, nil
	case token.PP_DEFINE:
		return p.defineDecl(tok)
	case token.CLASS:
		return p.classDecl()
	default:
		if p.isTypeStart() {
			return p.funcDecl()
		}
		return nil, errExpected(tok.Pos, tok.Type.String(), "class", "#define", "#include", "a function definition")
	}
}

func (p *Parser) defineDecl(tok token.Token) (ast.Item, error) {
	p.advance()
	valueTokens, err := lexSubExpr(tok.PP.Value, tok.Pos)
	if err != nil {
		return nil, err
	}
	sub := Make(valueTokens)
	sub.classes = p.classes
	value, err := sub.expression()
	if err != nil {
		return nil, err
	}
	return ast.DefineDecl{Name: tok.PP.Name, Value: value, Position: tok.Pos}, nil
}

// lexSubExpr re-lexes a #define's already-captured tail text as a standalone
// token stream so the ordinary expression grammar can parse it.
func lexSubExpr(text string, pos token.Position) ([]token.Token, error) {
	toks, err := lexer.New(text).Scan()
	if err != nil {
		return nil, &Error{Kind: "parse.bad-type", Pos: pos, Msg: "invalid #define value: " + err.Error()}
	}
	return toks, nil
}

func (p *Parser) classDecl() (ast.Item, error) {
	pos := p.peek().Pos
	p.advance() // 'class'
	nameTok, err := p.consume(token.IDENT, "class name")
	if err != nil {
		return nil, err
	}
	if _, err := p.consume(token.LBRACE, "'{'"); err != nil {
		return nil, err
	}

	var fields []ast.Field
	seen := map[string]bool{}
	for !p.check(token.RBRACE) && !p.isFinished() {
		fieldType, err := p.parseType()
		if err != nil {
			return nil, err
		}
		fieldNameTok, err := p.consume(token.IDENT, "field name")
		if err != nil {
			return nil, err
		}
		if p.match(token.LBRACKET) {
			length, err := p.constArrayLength()
			if err != nil {
				return nil, err
			}
			fieldType = ast.ArrayOf(fieldType, length)
		}
		if _, err := p.consume(token.SEMICOLON, "';'"); err != nil {
			return nil, err
		}
		if seen[fieldNameTok.Lexeme] {
			return nil, errDuplicateField(fieldNameTok.Pos, fieldNameTok.Lexeme)
		}
		seen[fieldNameTok.Lexeme] = true
		fields = append(fields, ast.Field{Name: fieldNameTok.Lexeme, Type: fieldType})
	}
	if _, err := p.consume(token.RBRACE, "'}'"); err != nil {
		return nil, err
	}
	if _, err := p.consume(token.SEMICOLON, "';'"); err != nil {
		return nil, err
	}

	p.classes[nameTok.Lexeme] = fields
	return ast.ClassDecl{Name: nameTok.Lexeme, Fields: fields, Position: pos}, nil
}

func (p *Parser) funcDecl() (ast.Item, error) {
	pos := p.peek().Pos
	retType, err := p.parseType()
	if err != nil {
		return nil, err
	}
	nameTok, err := p.consume(token.IDENT, "function name")
	if err != nil {
		return nil, err
	}
	if _, err := p.consume(token.LPAREN, "'('"); err != nil {
		return nil, err
	}
	params, err := p.paramList()
	if err != nil {
		return nil, err
	}
	if _, err := p.consume(token.RPAREN, "')'"); err != nil {
		return nil, err
	}
	body, err := p.block()
	if err != nil {
		return nil, err
	}
	return ast.FuncDecl{RetType: retType, Name: nameTok.Lexeme, Params: params, Body: body, Position: pos}, nil
}

func (p *Parser) paramList() ([]ast.Param, error) {
	var params []ast.Param
	if p.check(token.RPAREN) {
		return params, nil
	}
	for {
		typ, err := p.parseType()
		if err != nil {
			return nil, err
		}
		nameTok, err := p.consume(token.IDENT, "parameter name")
		if err != nil {
			return nil, err
		}
		if p.match(token.LBRACKET) {
			if !p.match(token.RBRACKET) {
				if _, err := p.constArrayLength(); err != nil {
					return nil, err
				}
				if _, err := p.consume(token.RBRACKET, "']'"); err != nil {
					return nil, err
				}
			}
			typ = ast.PointerTo(typ)
		}
		if len(params) == maxParams {
			return nil, errTooManyParams(nameTok.Pos, maxParams+1)
		}
		params = append(params, ast.Param{Type: typ, Name: nameTok.Lexeme})
		if !p.match(token.COMMA) {
			break
		}
	}
	return params, nil
}

// parseType parses a base type followed by zero or more '*' (pointer).
// Bracket/array suffixes are handled by the declarator's caller, since they
// attach to the declared name, not the base type (spec.md §4.2).
func (p *Parser) parseType() (*ast.Type, error) {
	tok := p.peek()
	var base *ast.Type
	switch tok.Type {
	case token.U8:
		base = ast.U8()
	case token.U16:
		base = ast.U16()
	case token.U32:
		base = ast.U32()
	case token.U64:
		base = ast.U64()
	case token.I8:
		base = ast.I8()
	case token.I16:
		base = ast.I16()
	case token.I32:
		base = ast.I32()
	case token.I64:
		base = ast.I64()
	case token.BOOL:
		base = ast.BoolType()
	case token.VOID:
		base = ast.VoidType()
	case token.F64:
		base = ast.F64Type()
	case token.IDENT:
		base = ast.ClassRef(tok.Lexeme)
	default:
		return nil, errBadType(tok.Pos, "expected a type, found "+tok.Type.String())
	}
	p.advance()

	for p.match(token.STAR) {
		base = ast.PointerTo(base)
	}
	return base, nil
}

func (p *Parser) isTypeStart() bool {
	tok := p.peek()
	if tok.Type.IsTypeKeyword() {
		return true
	}
	if tok.Type == token.IDENT {
		if _, ok := p.classes[tok.Lexeme]; ok {
			return true
		}
	}
	return false
}

// constArrayLength parses a bracketed constant expression and folds it to
// a length, consuming through the closing ']'.
func (p *Parser) constArrayLength() (uint64, error) {
	expr, err := p.expression()
	if err != nil {
		return 0, err
	}
	if _, err := p.consume(token.RBRACKET, "']'"); err != nil {
		return 0, err
	}
	return foldConstInt(expr)
}

// resolveClassTypes patches every KindClass ast.Type reachable from the
// parsed file with its class's resolved field list. Classes may be declared
// anywhere in the file relative to their uses (spec.md §4.2: "in any
// order"), so this runs once, after the whole file is parsed.
func (p *Parser) resolveClassTypes(file *ast.File) {
	var fix func(t *ast.Type)
	fix = func(t *ast.Type) {
		if t == nil {
			return
		}
		switch t.Kind {
		case ast.KindPointer, ast.KindArray:
			fix(t.Elem)
		case ast.KindClass:
			if fields, ok := p.classes[t.ClassName]; ok {
				t.Fields = fields
			}
		}
	}

	var fixStmt func(s ast.Stmt)
	fixStmt = func(s ast.Stmt) {
		switch v := s.(type) {
		case ast.DeclStmt:
			fix(v.Type)
		case *ast.Block:
			for _, inner := range v.Stmts {
				fixStmt(inner)
			}
		case ast.If:
			fixStmt(v.Then)
			if v.Else != nil {
				fixStmt(v.Else)
			}
		case ast.While:
			fixStmt(v.Body)
		case ast.For:
			if v.Init != nil {
				fixStmt(v.Init)
			}
			fixStmt(v.Body)
		}
	}

	for _, item := range file.Items {
		switch v := item.(type) {
		case ast.ClassDecl:
			for _, f := range v.Fields {
				fix(f.Type)
			}
		case ast.FuncDecl:
			fix(v.RetType)
			for _, param := range v.Params {
				fix(param.Type)
			}
			fixStmt(v.Body)
		}
	}
}
