package codegen

import (
	"fmt"

	"holybpf/ast"
	"holybpf/token"
)

// foldConst evaluates a #define's value expression to a constant integer,
// consulting previously folded defines (spec.md §3: "#define values are
// constant integers available to the codegen's symbol lookup"). It mirrors
// the parser's own array-length folder, kept as a separate unexported copy
// so the two packages stay decoupled.
func foldConst(e ast.Expr, defines map[string]uint64) (uint64, error) {
	switch v := e.(type) {
	case ast.IntLiteral:
		return v.Value, nil
	case ast.BoolLiteral:
		if v.Value {
			return 1, nil
		}
		return 0, nil
	case ast.Paren:
		return foldConst(v.Inner, defines)
	case ast.Ident:
		if val, ok := defines[v.Name]; ok {
			return val, nil
		}
		return 0, errUnknownIdent(v.Position, v.Name)
	case ast.UnaryOp:
		operand, err := foldConst(v.Operand, defines)
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
			return 0, errTypeMismatch(v.Position, fmt.Sprintf("%q is not a constant-expression operator", v.Op))
		}
	case ast.BinaryOp:
		l, err := foldConst(v.Left, defines)
		if err != nil {
			return 0, err
		}
		r, err := foldConst(v.Right, defines)
		if err != nil {
			return 0, err
		}
		return foldConstBinary(v.Op, l, r, v.Position)
	default:
		return 0, errTypeMismatch(e.Pos(), "expected a constant expression")
	}
}

func foldConstBinary(op token.Type, l, r uint64, pos token.Position) (uint64, error) {
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
			return 0, errTypeMismatch(pos, "division by zero in constant expression")
		}
		return l / r, nil
	case token.PERCENT:
		if r == 0 {
			return 0, errTypeMismatch(pos, "division by zero in constant expression")
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
		return 0, errTypeMismatch(pos, fmt.Sprintf("%q is not a constant-expression operator", op))
	}
}
