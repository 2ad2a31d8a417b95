package codegen

import (
	"holybpf/ast"
	"holybpf/bpf"
	"holybpf/token"
)

// inferType resolves the static type of e without emitting any code. It is
// used to decide an addressing strategy (array vs. pointer base, class vs.
// pointer-to-class base) before genAddr commits to one.
func (g *funcGen) inferType(e ast.Expr) (*ast.Type, error) {
	switch v := e.(type) {
	case ast.IntLiteral:
		return ast.I64(), nil
	case ast.BoolLiteral:
		return ast.BoolType(), nil
	case ast.StringLiteral:
		return nil, errUnsupported(v.Position, "string literals have no runtime representation in compiled output")
	case ast.Ident:
		if slot, ok := g.env.lookupVar(v.Name); ok {
			return slot.Type, nil
		}
		if _, ok := g.env.Defines[v.Name]; ok {
			return ast.I64(), nil
		}
		return nil, errUnknownIdent(v.Position, v.Name)
	case ast.UnaryOp:
		switch v.Op {
		case token.STAR:
			operandType, err := g.inferType(v.Operand)
			if err != nil {
				return nil, err
			}
			if operandType.Kind != ast.KindPointer {
				return nil, errTypeMismatch(v.Position, "cannot dereference a non-pointer")
			}
			return operandType.Elem, nil
		case token.AMP:
			operandType, err := g.inferType(v.Operand)
			if err != nil {
				return nil, err
			}
			return ast.PointerTo(operandType), nil
		case token.BANG:
			return ast.BoolType(), nil
		default:
			return g.inferType(v.Operand)
		}
	case ast.BinaryOp:
		switch v.Op {
		case token.EQ, token.NE, token.LT, token.LE, token.GT, token.GE:
			return ast.BoolType(), nil
		default:
			return g.inferType(v.Left)
		}
	case ast.LogicalOp:
		return ast.BoolType(), nil
	case ast.Assign:
		return g.inferType(v.Target)
	case ast.Call:
		sig, ok := g.env.Funcs[v.Callee]
		if !ok {
			return nil, errUnknownIdent(v.Position, v.Callee)
		}
		return sig.RetType, nil
	case ast.Index:
		baseType, err := g.inferType(v.Base)
		if err != nil {
			return nil, err
		}
		if baseType.Kind != ast.KindArray && baseType.Kind != ast.KindPointer {
			return nil, errTypeMismatch(v.Position, "cannot index a non-array, non-pointer value")
		}
		return baseType.Elem, nil
	case ast.Member:
		baseType, err := g.inferType(v.Base)
		if err != nil {
			return nil, err
		}
		classType := baseType
		if baseType.Kind == ast.KindPointer {
			classType = baseType.Elem
		}
		if classType.Kind != ast.KindClass {
			return nil, errTypeMismatch(v.Position, "field access on a non-aggregate value")
		}
		for _, f := range classType.Fields {
			if f.Name == v.Field {
				return f.Type, nil
			}
		}
		return nil, errTypeMismatch(v.Position, "no field named "+v.Field+" on "+classType.ClassName)
	case ast.Paren:
		return g.inferType(v.Inner)
	default:
		return nil, errTypeMismatch(e.Pos(), "expression has no inferrable type")
	}
}

func fieldOffset(classType *ast.Type, name string) (int, *ast.Type, bool) {
	offset := 0
	for _, f := range classType.Fields {
		if f.Name == name {
			return offset, f.Type, true
		}
		offset += f.Type.Size()
	}
	return 0, nil, false
}

// sizeFor maps a type to its memory-access width, used by load/store
// instruction selection: narrow types use the matching sub-word width;
// pointers and 64-bit integers use a double-word (Open Question (b)).
func sizeFor(t *ast.Type) bpf.Size {
	switch t.Size() {
	case 1:
		return bpf.Byte
	case 2:
		return bpf.Half
	case 4:
		return bpf.Word
	default:
		return bpf.DWord
	}
}
