package parser

import (
	"holybpf/ast"
	"holybpf/token"
)

func (p *Parser) block() (*ast.Block, error) {
	pos := p.peek().Pos
	if _, err := p.consume(token.LBRACE, "'{'"); err != nil {
		return nil, err
	}
	var stmts []ast.Stmt
	for !p.check(token.RBRACE) && !p.isFinished() {
		s, err := p.statement()
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, s)
	}
	if _, err := p.consume(token.RBRACE, "'}'"); err != nil {
		return nil, err
	}
	return &ast.Block{Stmts: stmts, Position: pos}, nil
}

func (p *Parser) statement() (ast.Stmt, error) {
	switch p.peek().Type {
	case token.LBRACE:
		return p.block()
	case token.IF:
		return p.ifStmt()
	case token.WHILE:
		return p.whileStmt()
	case token.FOR:
		return p.forStmt()
	case token.RETURN:
		return p.returnStmt()
	case token.BREAK:
		pos := p.advance().Pos
		if _, err := p.consume(token.SEMICOLON, "';'"); err != nil {
			return nil, err
		}
		return ast.Break{Position: pos}, nil
	case token.CONTINUE:
		pos := p.advance().Pos
		if _, err := p.consume(token.SEMICOLON, "';'"); err != nil {
			return nil, err
		}
		return ast.Continue{Position: pos}, nil
	default:
		if p.isDeclStart() {
			return p.declStmt()
		}
		return p.exprStmt()
	}
}

// isDeclStart reports whether the statement ahead begins a local
// declaration: a primitive-type keyword, or a known class name followed by
// an identifier. A bare class name not followed by an identifier is
// unambiguously an expression (no statement begins with a lone class name).
func (p *Parser) isDeclStart() bool {
	tok := p.peek()
	if tok.Type.IsTypeKeyword() {
		return true
	}
	if tok.Type == token.IDENT {
		if _, ok := p.classes[tok.Lexeme]; ok && p.peekAt(1).Type == token.IDENT {
			return true
		}
	}
	return false
}

func (p *Parser) declStmt() (ast.Stmt, error) {
	pos := p.peek().Pos
	typ, err := p.parseType()
	if err != nil {
		return nil, err
	}
	nameTok, err := p.consume(token.IDENT, "variable name")
	if err != nil {
		return nil, err
	}
	if p.match(token.LBRACKET) {
		length, err := p.constArrayLength()
		if err != nil {
			return nil, err
		}
		typ = ast.ArrayOf(typ, length)
	}
	var init ast.Expr
	if p.match(token.ASSIGN) {
		init, err = p.expression()
		if err != nil {
			return nil, err
		}
	}
	if _, err := p.consume(token.SEMICOLON, "';'"); err != nil {
		return nil, err
	}
	return ast.DeclStmt{Type: typ, Name: nameTok.Lexeme, Init: init, Position: pos}, nil
}

func (p *Parser) exprStmt() (ast.Stmt, error) {
	pos := p.peek().Pos
	e, err := p.expression()
	if err != nil {
		return nil, err
	}
	if _, err := p.consume(token.SEMICOLON, "';'"); err != nil {
		return nil, err
	}
	return ast.ExprStmt{X: e, Position: pos}, nil
}

func (p *Parser) ifStmt() (ast.Stmt, error) {
	pos := p.advance().Pos // 'if'
	if _, err := p.consume(token.LPAREN, "'('"); err != nil {
		return nil, err
	}
	cond, err := p.expression()
	if err != nil {
		return nil, err
	}
	if _, err := p.consume(token.RPAREN, "')'"); err != nil {
		return nil, err
	}
	then, err := p.statement()
	if err != nil {
		return nil, err
	}
	var els ast.Stmt
	if p.match(token.ELSE) {
		els, err = p.statement()
		if err != nil {
			return nil, err
		}
	}
	return ast.If{Cond: cond, Then: then, Else: els, Position: pos}, nil
}

func (p *Parser) whileStmt() (ast.Stmt, error) {
	pos := p.advance().Pos // 'while'
	if _, err := p.consume(token.LPAREN, "'('"); err != nil {
		return nil, err
	}
	cond, err := p.expression()
	if err != nil {
		return nil, err
	}
	if _, err := p.consume(token.RPAREN, "')'"); err != nil {
		return nil, err
	}
	body, err := p.statement()
	if err != nil {
		return nil, err
	}
	return ast.While{Cond: cond, Body: body, Position: pos}, nil
}

func (p *Parser) forStmt() (ast.Stmt, error) {
	pos := p.advance().Pos // 'for'
	if _, err := p.consume(token.LPAREN, "'('"); err != nil {
		return nil, err
	}

	var init ast.Stmt
	if p.check(token.SEMICOLON) {
		p.advance()
	} else if p.isDeclStart() {
		var err error
		init, err = p.declStmt() // consumes its own trailing ';'
		if err != nil {
			return nil, err
		}
	} else {
		var err error
		init, err = p.exprStmt() // consumes its own trailing ';'
		if err != nil {
			return nil, err
		}
	}

	var cond ast.Expr
	if !p.check(token.SEMICOLON) {
		var err error
		cond, err = p.expression()
		if err != nil {
			return nil, err
		}
	}
	if _, err := p.consume(token.SEMICOLON, "';'"); err != nil {
		return nil, err
	}

	var step ast.Expr
	if !p.check(token.RPAREN) {
		var err error
		step, err = p.expression()
		if err != nil {
			return nil, err
		}
	}
	if _, err := p.consume(token.RPAREN, "')'"); err != nil {
		return nil, err
	}

	body, err := p.statement()
	if err != nil {
		return nil, err
	}
	return ast.For{Init: init, Cond: cond, Step: step, Body: body, Position: pos}, nil
}

func (p *Parser) returnStmt() (ast.Stmt, error) {
	pos := p.advance().Pos // 'return'
	var value ast.Expr
	if !p.check(token.SEMICOLON) {
		var err error
		value, err = p.expression()
		if err != nil {
			return nil, err
		}
	}
	if _, err := p.consume(token.SEMICOLON, "';'"); err != nil {
		return nil, err
	}
	return ast.Return{Value: value, Position: pos}, nil
}
