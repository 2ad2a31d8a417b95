package parser

import (
	"fmt"

	"holybpf/ast"
	"holybpf/token"
)

const maxArgs = 5

// expression is the grammar's entry point: level 1 (assignment) down through
// level 14 (primary), per spec.md §4.2's precedence ladder.
func (p *Parser) expression() (ast.Expr, error) {
	return p.assignment()
}

func (p *Parser) assignment() (ast.Expr, error) {
	left, err := p.binary(2)
	if err != nil {
		return nil, err
	}
	if assignOps[p.peek().Type] {
		opTok := p.advance()
		if !isLValue(left) {
			return nil, errBadLValue(opTok.Pos, "assignment target must be a variable, dereference, index, or field access")
		}
		right, err := p.assignment() // right-associative
		if err != nil {
			return nil, err
		}
		return ast.Assign{Op: opTok.Type, Target: left, Value: right, Position: left.Pos()}, nil
	}
	return left, nil
}

// binary implements precedence climbing over binaryPrecedence, levels 2-11.
// Every level is left-associative: the recursive call for the right operand
// asks for prec+1.
func (p *Parser) binary(minPrec int) (ast.Expr, error) {
	left, err := p.unary()
	if err != nil {
		return nil, err
	}
	for {
		prec, ok := binaryPrecedence[p.peek().Type]
		if !ok || prec < minPrec {
			return left, nil
		}
		opTok := p.advance()
		right, err := p.binary(prec + 1)
		if err != nil {
			return nil, err
		}
		if opTok.Type == token.ANDAND || opTok.Type == token.OROR {
			left = ast.LogicalOp{Op: opTok.Type, Left: left, Right: right, Position: left.Pos()}
		} else {
			left = ast.BinaryOp{Op: opTok.Type, Left: left, Right: right, Position: left.Pos()}
		}
	}
}

// unary is level 12: prefix -, !, ~, *, &, ++, --, right-associative so that
// chains like `**p` or `!!x` parse.
func (p *Parser) unary() (ast.Expr, error) {
	if unaryOps[p.peek().Type] {
		opTok := p.advance()
		operand, err := p.unary()
		if err != nil {
			return nil, err
		}
		return ast.UnaryOp{Op: opTok.Type, Operand: operand, Position: opTok.Pos}, nil
	}
	return p.postfix()
}

// postfix is level 13: call, index, member access, and postfix ++/--.
func (p *Parser) postfix() (ast.Expr, error) {
	expr, err := p.primary()
	if err != nil {
		return nil, err
	}
	for {
		switch p.peek().Type {
		case token.LPAREN:
			ident, ok := expr.(ast.Ident)
			if !ok {
				tok := p.peek()
				return nil, errExpected(tok.Pos, "(", "a function name before '('")
			}
			p.advance()
			args, err := p.argList()
			if err != nil {
				return nil, err
			}
			if _, err := p.consume(token.RPAREN, "')'"); err != nil {
				return nil, err
			}
			expr = ast.Call{Callee: ident.Name, Args: args, Position: ident.Position}
		case token.LBRACKET:
			p.advance()
			idx, err := p.expression()
			if err != nil {
				return nil, err
			}
			if _, err := p.consume(token.RBRACKET, "']'"); err != nil {
				return nil, err
			}
			expr = ast.Index{Base: expr, Idx: idx, Position: expr.Pos()}
		case token.DOT:
			p.advance()
			fieldTok, err := p.consume(token.IDENT, "field name")
			if err != nil {
				return nil, err
			}
			expr = ast.Member{Base: expr, Field: fieldTok.Lexeme, Position: expr.Pos()}
		case token.INC, token.DEC:
			opTok := p.advance()
			expr = ast.UnaryOp{Op: opTok.Type, Operand: expr, Postfix: true, Position: expr.Pos()}
		default:
			return expr, nil
		}
	}
}

func (p *Parser) argList() ([]ast.Expr, error) {
	var args []ast.Expr
	if p.check(token.RPAREN) {
		return args, nil
	}
	for {
		arg, err := p.expression()
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
		if !p.match(token.COMMA) {
			break
		}
	}
	return args, nil
}

// primary is level 14: literals, identifiers, and parenthesized expressions.
func (p *Parser) primary() (ast.Expr, error) {
	tok := p.peek()
	switch tok.Type {
	case token.INT:
		p.advance()
		return ast.IntLiteral{Value: tok.Int, Radix: tok.Radix, Position: tok.Pos}, nil
	case token.CHAR:
		p.advance()
		var v uint64
		if len(tok.Str) > 0 {
			v = uint64(tok.Str[0])
		}
		return ast.IntLiteral{Value: v, Radix: 10, Position: tok.Pos}, nil
	case token.STRING:
		p.advance()
		return ast.StringLiteral{Value: tok.Str, Position: tok.Pos}, nil
	case token.TRUE:
		p.advance()
		return ast.BoolLiteral{Value: true, Position: tok.Pos}, nil
	case token.FALSE:
		p.advance()
		return ast.BoolLiteral{Value: false, Position: tok.Pos}, nil
	case token.IDENT:
		p.advance()
		return ast.Ident{Name: tok.Lexeme, Position: tok.Pos}, nil
	case token.LPAREN:
		p.advance()
		inner, err := p.expression()
		if err != nil {
			return nil, err
		}
		if _, err := p.consume(token.RPAREN, "')'"); err != nil {
			return nil, err
		}
		return ast.Paren{Inner: inner, Position: tok.Pos}, nil
	default:
		return nil, errExpected(tok.Pos, tok.Type.String(), "an expression")
	}
}

// isLValue reports whether e is a valid assignment target: a variable, a
// pointer dereference, an index, or a field access (spec.md §4.2).
func isLValue(e ast.Expr) bool {
	switch v := e.(type) {
	case ast.Ident:
		return true
	case ast.UnaryOp:
		return v.Op == token.STAR && !v.Postfix
	case ast.Index:
		return true
	case ast.Member:
		return true
	default:
		return false
	}
}

// foldConstInt evaluates a constant-integer expression built from literals
// and operators; the parser uses it for array lengths. Identifiers,
// including #define names, are not resolved here. Any non-constant shape is
// reported as parse.bad-type, the closest-fitting of the enumerated parse
// error kinds.
func foldConstInt(e ast.Expr) (uint64, error) {
	switch v := e.(type) {
	case ast.IntLiteral:
		return v.Value, nil
	case ast.BoolLiteral:
		if v.Value {
			return 1, nil
		}
		return 0, nil
	case ast.Paren:
		return foldConstInt(v.Inner)
	case ast.UnaryOp:
		operand, err := foldConstInt(v.Operand)
		if err != nil {
			return 0, err
		}
		switch v.Op {
		case token.MINUS:
			return -operand, nil
		case token.TILDE:
			return ^operand, nil
		case token.BANG:
			if operand == 0 {
				return 1, nil
			}
			return 0, nil
		default:
			return 0, errBadType(v.Position, fmt.Sprintf("%q is not a constant-expression operator", v.Op))
		}
	case ast.BinaryOp:
		l, err := foldConstInt(v.Left)
		if err != nil {
			return 0, err
		}
		r, err := foldConstInt(v.Right)
		if err != nil {
			return 0, err
		}
		return foldBinary(v.Op, l, r, v.Position)
	default:
		return 0, errBadType(e.Pos(), "expected a constant expression")
	}
}

func foldBinary(op token.Type, l, r uint64, pos token.Position) (uint64, error) {
	boolVal := func(b bool) uint64 {
		if b {
			return 1
		}
		return 0
	}
	switch op {
	case token.PLUS:
		return l + r, nil
	case token.MINUS:
		return l - r, nil
	case token.STAR:
		return l * r, nil
	case token.SLASH:
		if r == 0 {
			return 0, errBadType(pos, "division by zero in constant expression")
		}
		return l / r, nil
	case token.PERCENT:
		if r == 0 {
			return 0, errBadType(pos, "division by zero in constant expression")
		}
		return l % r, nil
	case token.AMP:
		return l & r, nil
	case token.PIPE:
		return l | r, nil
	case token.CARET:
		return l ^ r, nil
	case token.SHL:
		return l << r, nil
	case token.SHR:
		return l >> r, nil
	case token.EQ:
		return boolVal(l == r), nil
	case token.NE:
		return boolVal(l != r), nil
	case token.LT:
		return boolVal(l < r), nil
	case token.LE:
		return boolVal(l <= r), nil
	case token.GT:
		return boolVal(l > r), nil
	case token.GE:
		return boolVal(l >= r), nil
	default:
		return 0, errBadType(pos, fmt.Sprintf("%q is not a constant-expression operator", op))
	}
}
