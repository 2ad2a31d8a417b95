package codegen

import (
	"holybpf/ast"
	"holybpf/bpf"
	"holybpf/token"
)

func (g *funcGen) emit(i bpf.Instruction) {
	g.code = append(g.code, i)
}

// genExpr lowers e to a register holding its value, returning the
// register (owned by the caller — release it once consumed) and e's
// static type.
func (g *funcGen) genExpr(e ast.Expr) (bpf.Register, *ast.Type, error) {
	switch v := e.(type) {
	case ast.IntLiteral:
		reg, err := g.regs.Acquire(v.Position)
		if err != nil {
			return 0, nil, err
		}
		for _, ins := range bpf.MovImm64(reg, v.Value) {
			g.emit(ins)
		}
		return reg, ast.I64(), nil

	case ast.BoolLiteral:
		reg, err := g.regs.Acquire(v.Position)
		if err != nil {
			return 0, nil, err
		}
		imm := int32(0)
		if v.Value {
			imm = 1
		}
		g.emit(bpf.ALU64Imm(bpf.Mov, reg, imm))
		return reg, ast.BoolType(), nil

	case ast.StringLiteral:
		return 0, nil, errUnsupported(v.Position, "string literals have no runtime representation in compiled output")

	case ast.Ident:
		if slot, ok := g.env.lookupVar(v.Name); ok {
			reg, err := g.regs.Acquire(v.Position)
			if err != nil {
				return 0, nil, err
			}
			g.emit(bpf.LoadMem(sizeFor(slot.Type), reg, bpf.R10, slot.Offset))
			return reg, slot.Type, nil
		}
		if val, ok := g.env.Defines[v.Name]; ok {
			reg, err := g.regs.Acquire(v.Position)
			if err != nil {
				return 0, nil, err
			}
			for _, ins := range bpf.MovImm64(reg, val) {
				g.emit(ins)
			}
			return reg, ast.I64(), nil
		}
		if _, ok := g.env.Funcs[v.Name]; ok {
			return 0, nil, errUnsupported(v.Position, "function names are not first-class values")
		}
		return 0, nil, errUnknownIdent(v.Position, v.Name)

	case ast.UnaryOp:
		return g.genUnary(v)

	case ast.BinaryOp:
		return g.genBinary(v)

	case ast.LogicalOp:
		return g.genLogical(v)

	case ast.Assign:
		return g.genAssign(v)

	case ast.Call:
		return g.genCall(v)

	case ast.Index, ast.Member:
		addrReg, elemType, err := g.genAddr(e)
		if err != nil {
			return 0, nil, err
		}
		reg, err := g.regs.Acquire(e.Pos())
		if err != nil {
			g.regs.Release(addrReg)
			return 0, nil, err
		}
		g.emit(bpf.LoadMem(sizeFor(elemType), reg, addrReg, 0))
		g.regs.Release(addrReg)
		return reg, elemType, nil

	case ast.Paren:
		return g.genExpr(v.Inner)

	default:
		return 0, nil, errTypeMismatch(e.Pos(), "unsupported expression form")
	}
}

func (g *funcGen) genUnary(v ast.UnaryOp) (bpf.Register, *ast.Type, error) {
	switch v.Op {
	case token.MINUS:
		reg, typ, err := g.genExpr(v.Operand)
		if err != nil {
			return 0, nil, err
		}
		g.emit(bpf.ALU64Imm(bpf.Neg, reg, 0))
		return reg, typ, nil

	case token.TILDE:
		reg, typ, err := g.genExpr(v.Operand)
		if err != nil {
			return 0, nil, err
		}
		g.emit(bpf.ALU64Imm(bpf.Xor, reg, -1))
		return reg, typ, nil

	case token.BANG:
		reg, _, err := g.genExpr(v.Operand)
		if err != nil {
			return 0, nil, err
		}
		dest, err := g.regs.Acquire(v.Position)
		if err != nil {
			g.regs.Release(reg)
			return 0, nil, err
		}
		g.emit(bpf.ALU64Imm(bpf.Mov, dest, 1))
		g.emit(bpf.JumpCondImm(bpf.JEQ, reg, 0, 1))
		g.emit(bpf.ALU64Imm(bpf.Mov, dest, 0))
		g.regs.Release(reg)
		return dest, ast.BoolType(), nil

	case token.STAR:
		addrReg, elemType, err := g.genAddr(v)
		if err != nil {
			return 0, nil, err
		}
		reg, err := g.regs.Acquire(v.Position)
		if err != nil {
			g.regs.Release(addrReg)
			return 0, nil, err
		}
		g.emit(bpf.LoadMem(sizeFor(elemType), reg, addrReg, 0))
		g.regs.Release(addrReg)
		return reg, elemType, nil

	case token.AMP:
		addrReg, elemType, err := g.genAddr(v.Operand)
		if err != nil {
			return 0, nil, err
		}
		return addrReg, ast.PointerTo(elemType), nil

	case token.INC, token.DEC:
		return g.genIncDec(v)

	default:
		return 0, nil, errTypeMismatch(v.Position, "unsupported unary operator")
	}
}

func (g *funcGen) genIncDec(v ast.UnaryOp) (bpf.Register, *ast.Type, error) {
	addrReg, typ, err := g.genAddr(v.Operand)
	if err != nil {
		return 0, nil, err
	}
	aluOp := bpf.Add
	if v.Op == token.DEC {
		aluOp = bpf.Sub
	}
	step := int32(1)
	if typ.Kind == ast.KindPointer {
		step = int32(typ.Elem.Size())
	}

	old, err := g.regs.Acquire(v.Position)
	if err != nil {
		g.regs.Release(addrReg)
		return 0, nil, err
	}
	g.emit(bpf.LoadMem(sizeFor(typ), old, addrReg, 0))

	if !v.Postfix {
		g.emit(bpf.ALU64Imm(aluOp, old, step))
		g.emit(bpf.StoreReg(sizeFor(typ), addrReg, 0, old))
		g.regs.Release(addrReg)
		return old, typ, nil
	}

	updated, err := g.regs.Acquire(v.Position)
	if err != nil {
		g.regs.Release(addrReg)
		g.regs.Release(old)
		return 0, nil, err
	}
	g.emit(bpf.ALU64Reg(bpf.Mov, updated, old))
	g.emit(bpf.ALU64Imm(aluOp, updated, step))
	g.emit(bpf.StoreReg(sizeFor(typ), addrReg, 0, updated))
	g.regs.Release(addrReg)
	g.regs.Release(updated)
	return old, typ, nil
}

var arithOps = map[token.Type]bpf.AluOp{
	token.PLUS: bpf.Add, token.MINUS: bpf.Sub, token.STAR: bpf.Mul, token.SLASH: bpf.Div,
	token.PERCENT: bpf.Mod, token.AMP: bpf.And, token.PIPE: bpf.Or, token.CARET: bpf.Xor,
	token.SHL: bpf.Lsh, token.SHR: bpf.Rsh,
}

var unsignedCompare = map[token.Type]bpf.CondOp{
	token.EQ: bpf.JEQ, token.NE: bpf.JNE, token.LT: bpf.JLT, token.LE: bpf.JLE,
	token.GT: bpf.JGT, token.GE: bpf.JGE,
}

var signedCompare = map[token.Type]bpf.CondOp{
	token.EQ: bpf.JEQ, token.NE: bpf.JNE, token.LT: bpf.JSLT, token.LE: bpf.JSLE,
	token.GT: bpf.JSGT, token.GE: bpf.JSGE,
}

func isComparison(op token.Type) bool {
	switch op {
	case token.EQ, token.NE, token.LT, token.LE, token.GT, token.GE:
		return true
	}
	return false
}

func (g *funcGen) genBinary(v ast.BinaryOp) (bpf.Register, *ast.Type, error) {
	lreg, ltype, err := g.genExpr(v.Left)
	if err != nil {
		return 0, nil, err
	}
	rreg, rtype, err := g.genExpr(v.Right)
	if err != nil {
		g.regs.Release(lreg)
		return 0, nil, err
	}

	if isComparison(v.Op) {
		// Open Question (c): use the signed jump form whenever either
		// operand's static type is signed.
		cond := unsignedCompare[v.Op]
		if ltype.IsSigned() || rtype.IsSigned() {
			cond = signedCompare[v.Op]
		}
		dest, err := g.regs.Acquire(v.Position)
		if err != nil {
			g.regs.Release(lreg)
			g.regs.Release(rreg)
			return 0, nil, err
		}
		g.emit(bpf.ALU64Imm(bpf.Mov, dest, 1))
		g.emit(bpf.JumpCondReg(cond, lreg, rreg, 1))
		g.emit(bpf.ALU64Imm(bpf.Mov, dest, 0))
		g.regs.Release(lreg)
		g.regs.Release(rreg)
		return dest, ast.BoolType(), nil
	}

	aluOp, ok := arithOps[v.Op]
	if !ok {
		g.regs.Release(lreg)
		g.regs.Release(rreg)
		return 0, nil, errTypeMismatch(v.Position, "unsupported binary operator")
	}

	// Pointer arithmetic: scale the integer operand by the pointee's size.
	if ltype.Kind == ast.KindPointer && (v.Op == token.PLUS || v.Op == token.MINUS) {
		if elemSize := ltype.Elem.Size(); elemSize > 1 {
			g.emit(bpf.ALU64Imm(bpf.Mul, rreg, int32(elemSize)))
		}
	}

	g.emit(bpf.ALU64Reg(aluOp, lreg, rreg))
	g.regs.Release(rreg)
	return lreg, ltype, nil
}

func (g *funcGen) genLogical(v ast.LogicalOp) (bpf.Register, *ast.Type, error) {
	dest, err := g.regs.Acquire(v.Position)
	if err != nil {
		return 0, nil, err
	}

	lreg, _, err := g.genExpr(v.Left)
	if err != nil {
		g.regs.Release(dest)
		return 0, nil, err
	}
	shortCircuitIdx := len(g.code)
	if v.Op == token.ANDAND {
		g.emit(bpf.JumpCondImm(bpf.JEQ, lreg, 0, 0)) // && : short-circuit when left is false
	} else {
		g.emit(bpf.JumpCondImm(bpf.JNE, lreg, 0, 0)) // || : short-circuit when left is true
	}
	g.regs.Release(lreg)

	rreg, _, err := g.genExpr(v.Right)
	if err != nil {
		return 0, nil, err
	}
	testEndIdx := len(g.code)
	g.emit(bpf.JumpCondImm(bpf.JEQ, rreg, 0, 0))
	g.regs.Release(rreg)

	trueIdx := len(g.code)
	g.emit(bpf.ALU64Imm(bpf.Mov, dest, 1))
	doneIdx := len(g.code)
	g.emit(bpf.JumpAlways(0))

	falseLabel := len(g.code)
	shortCircuitTarget := falseLabel
	if v.Op == token.OROR {
		shortCircuitTarget = trueIdx
	}
	if err := g.patch(shortCircuitIdx, shortCircuitTarget); err != nil {
		return 0, nil, err
	}
	if err := g.patch(testEndIdx, falseLabel); err != nil {
		return 0, nil, err
	}
	g.emit(bpf.ALU64Imm(bpf.Mov, dest, 0))
	if err := g.patch(doneIdx, len(g.code)); err != nil {
		return 0, nil, err
	}

	return dest, ast.BoolType(), nil
}

func (g *funcGen) genAssign(v ast.Assign) (bpf.Register, *ast.Type, error) {
	addrReg, targetType, err := g.genAddr(v.Target)
	if err != nil {
		return 0, nil, err
	}
	if targetType.Kind == ast.KindClass || targetType.Kind == ast.KindArray {
		g.regs.Release(addrReg)
		return 0, nil, errUnsupported(v.Position, "whole-aggregate assignment is not supported; assign individual fields or elements")
	}

	if v.Op == token.ASSIGN {
		valReg, valType, err := g.genExpr(v.Value)
		if err != nil {
			g.regs.Release(addrReg)
			return 0, nil, err
		}
		g.emit(bpf.StoreReg(sizeFor(targetType), addrReg, 0, valReg))
		g.regs.Release(addrReg)
		return valReg, valType, nil
	}

	aluOp, ok := compoundOps[v.Op]
	if !ok {
		g.regs.Release(addrReg)
		return 0, nil, errTypeMismatch(v.Position, "unsupported compound-assignment operator")
	}
	cur, err := g.regs.Acquire(v.Position)
	if err != nil {
		g.regs.Release(addrReg)
		return 0, nil, err
	}
	g.emit(bpf.LoadMem(sizeFor(targetType), cur, addrReg, 0))

	valReg, _, err := g.genExpr(v.Value)
	if err != nil {
		g.regs.Release(addrReg)
		g.regs.Release(cur)
		return 0, nil, err
	}
	g.emit(bpf.ALU64Reg(aluOp, cur, valReg))
	g.regs.Release(valReg)
	g.emit(bpf.StoreReg(sizeFor(targetType), addrReg, 0, cur))
	g.regs.Release(addrReg)
	return cur, targetType, nil
}

var compoundOps = map[token.Type]bpf.AluOp{
	token.PLUS_ASSIGN: bpf.Add, token.MINUS_ASSIGN: bpf.Sub, token.STAR_ASSIGN: bpf.Mul,
	token.SLASH_ASSIGN: bpf.Div, token.PERCENT_ASSIGN: bpf.Mod, token.AMP_ASSIGN: bpf.And,
	token.PIPE_ASSIGN: bpf.Or, token.CARET_ASSIGN: bpf.Xor, token.SHL_ASSIGN: bpf.Lsh,
	token.SHR_ASSIGN: bpf.Rsh,
}

func (g *funcGen) genCall(v ast.Call) (bpf.Register, *ast.Type, error) {
	sig, ok := g.env.Funcs[v.Callee]
	if !ok {
		return 0, nil, errUnknownIdent(v.Position, v.Callee)
	}
	if len(v.Args) > 5 {
		return 0, nil, errUnsupported(v.Position, "calls with more than 5 arguments are not supported")
	}
	argRegs := bpf.R1
	for _, arg := range v.Args {
		reg, _, err := g.genExpr(arg)
		if err != nil {
			return 0, nil, err
		}
		g.emit(bpf.ALU64Reg(bpf.Mov, argRegs, reg))
		g.regs.Release(reg)
		argRegs++
	}

	idx := len(g.code)
	g.emit(bpf.Call(0))
	g.pendingCalls = append(g.pendingCalls, pendingCall{index: idx, callee: v.Callee})

	result, err := g.regs.Acquire(v.Position)
	if err != nil {
		return 0, nil, err
	}
	g.emit(bpf.ALU64Reg(bpf.Mov, result, bpf.R0))
	return result, sig.RetType, nil
}

// genAddr lowers e to a register holding its address, used for assignment
// targets, &, and increment/decrement operands (spec.md §4.2 lvalues).
func (g *funcGen) genAddr(e ast.Expr) (bpf.Register, *ast.Type, error) {
	switch v := e.(type) {
	case ast.Ident:
		slot, ok := g.env.lookupVar(v.Name)
		if !ok {
			return 0, nil, errUnknownIdent(v.Position, v.Name)
		}
		reg, err := g.regs.Acquire(v.Position)
		if err != nil {
			return 0, nil, err
		}
		g.emit(bpf.ALU64Imm(bpf.Mov, reg, int32(slot.Offset)))
		g.emit(bpf.ALU64Reg(bpf.Add, reg, bpf.R10))
		return reg, slot.Type, nil

	case ast.UnaryOp:
		if v.Op != token.STAR || v.Postfix {
			return 0, nil, errTypeMismatch(v.Position, "not an addressable expression")
		}
		ptrReg, ptrType, err := g.genExpr(v.Operand)
		if err != nil {
			return 0, nil, err
		}
		if ptrType.Kind != ast.KindPointer {
			g.regs.Release(ptrReg)
			return 0, nil, errTypeMismatch(v.Position, "cannot dereference a non-pointer")
		}
		return ptrReg, ptrType.Elem, nil

	case ast.Index:
		baseType, err := g.inferType(v.Base)
		if err != nil {
			return 0, nil, err
		}
		var baseReg bpf.Register
		switch baseType.Kind {
		case ast.KindArray:
			baseReg, _, err = g.genAddr(v.Base)
		case ast.KindPointer:
			baseReg, _, err = g.genExpr(v.Base)
		default:
			return 0, nil, errTypeMismatch(v.Position, "cannot index a non-array, non-pointer value")
		}
		if err != nil {
			return 0, nil, err
		}
		elemType := baseType.Elem

		idxReg, _, err := g.genExpr(v.Idx)
		if err != nil {
			g.regs.Release(baseReg)
			return 0, nil, err
		}
		if elemSize := elemType.Size(); elemSize > 1 {
			g.emit(bpf.ALU64Imm(bpf.Mul, idxReg, int32(elemSize)))
		}
		g.emit(bpf.ALU64Reg(bpf.Add, baseReg, idxReg))
		g.regs.Release(idxReg)
		return baseReg, elemType, nil

	case ast.Member:
		baseType, err := g.inferType(v.Base)
		if err != nil {
			return 0, nil, err
		}
		classType := baseType
		var baseReg bpf.Register
		if baseType.Kind == ast.KindClass {
			baseReg, _, err = g.genAddr(v.Base)
		} else if baseType.Kind == ast.KindPointer && baseType.Elem.Kind == ast.KindClass {
			classType = baseType.Elem
			baseReg, _, err = g.genExpr(v.Base)
		} else {
			return 0, nil, errTypeMismatch(v.Position, "field access on a non-aggregate value")
		}
		if err != nil {
			return 0, nil, err
		}
		off, fieldType, ok := fieldOffset(classType, v.Field)
		if !ok {
			g.regs.Release(baseReg)
			return 0, nil, errTypeMismatch(v.Position, "no field named "+v.Field+" on "+classType.ClassName)
		}
		if off != 0 {
			g.emit(bpf.ALU64Imm(bpf.Add, baseReg, int32(off)))
		}
		return baseReg, fieldType, nil

	case ast.Paren:
		return g.genAddr(v.Inner)

	default:
		return 0, nil, errTypeMismatch(e.Pos(), "expression is not an lvalue")
	}
}
