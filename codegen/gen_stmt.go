package codegen

import (
	"holybpf/ast"
	"holybpf/bpf"
	"holybpf/token"
)

type pendingCall struct {
	index  int
	callee string
}

type loopCtx struct {
	breaks    []int
	continues []int
}

// funcGen compiles one function body into a self-contained instruction
// list; jump offsets are resolved locally (spec.md §4.4's two-pass
// fixup), and calls to other functions are recorded as pendingCalls,
// resolved once every function's final position in the concatenated
// program is known.
type funcGen struct {
	code         []bpf.Instruction
	regs         *RegPool
	frame        *Frame
	env          *Env
	loops        []*loopCtx
	pendingCalls []pendingCall
}

func newFuncGen(env *Env) *funcGen {
	return &funcGen{regs: newRegPool(), frame: newFrame(), env: env}
}

// patch resolves a branch instruction at idx to target the instruction
// index target, encoding the eBPF convention that Off counts instructions
// after the one following the branch.
func (g *funcGen) patch(idx, target int) error {
	off := target - idx - 1
	if off < -32768 || off > 32767 {
		return errJumpOutOfRange(token.Position{})
	}
	g.code[idx].Off = int16(off)
	return nil
}

func (g *funcGen) pushLoop()     { g.loops = append(g.loops, &loopCtx{}) }
func (g *funcGen) popLoop()      { g.loops = g.loops[:len(g.loops)-1] }
func (g *funcGen) currentLoop() *loopCtx {
	if len(g.loops) == 0 {
		return nil
	}
	return g.loops[len(g.loops)-1]
}

func (g *funcGen) genStmt(s ast.Stmt) error {
	switch v := s.(type) {
	case ast.ExprStmt:
		reg, _, err := g.genExpr(v.X)
		if err != nil {
			return err
		}
		g.regs.Release(reg)
		return nil

	case ast.DeclStmt:
		slot, err := g.frame.Alloc(v.Type, v.Position)
		if err != nil {
			return err
		}
		g.env.bind(v.Name, slot)
		if v.Init != nil {
			reg, _, err := g.genExpr(v.Init)
			if err != nil {
				return err
			}
			g.emit(bpf.StoreReg(sizeFor(v.Type), bpf.R10, slot.Offset, reg))
			g.regs.Release(reg)
		}
		return nil

	case *ast.Block:
		g.env.pushScope()
		defer g.env.popScope()
		for _, inner := range v.Stmts {
			if err := g.genStmt(inner); err != nil {
				return err
			}
		}
		return nil

	case ast.If:
		return g.genIf(v)

	case ast.While:
		return g.genWhile(v)

	case ast.For:
		return g.genFor(v)

	case ast.Return:
		if v.Value != nil {
			reg, _, err := g.genExpr(v.Value)
			if err != nil {
				return err
			}
			g.emit(bpf.ALU64Reg(bpf.Mov, bpf.R0, reg))
			g.regs.Release(reg)
		} else {
			g.emit(bpf.ALU64Imm(bpf.Mov, bpf.R0, 0))
		}
		g.emit(bpf.Exit())
		return nil

	case ast.Break:
		loop := g.currentLoop()
		if loop == nil {
			return errUnsupported(v.Position, "break outside a loop")
		}
		idx := len(g.code)
		g.emit(bpf.JumpAlways(0))
		loop.breaks = append(loop.breaks, idx)
		return nil

	case ast.Continue:
		loop := g.currentLoop()
		if loop == nil {
			return errUnsupported(v.Position, "continue outside a loop")
		}
		idx := len(g.code)
		g.emit(bpf.JumpAlways(0))
		loop.continues = append(loop.continues, idx)
		return nil

	default:
		return errTypeMismatch(s.Pos(), "unsupported statement form")
	}
}

func (g *funcGen) genCond(cond ast.Expr) (int, error) {
	reg, _, err := g.genExpr(cond)
	if err != nil {
		return 0, err
	}
	idx := len(g.code)
	g.emit(bpf.JumpCondImm(bpf.JEQ, reg, 0, 0))
	g.regs.Release(reg)
	return idx, nil
}

func (g *funcGen) genIf(v ast.If) error {
	falseIdx, err := g.genCond(v.Cond)
	if err != nil {
		return err
	}
	if err := g.genStmt(v.Then); err != nil {
		return err
	}
	if v.Else == nil {
		return g.patch(falseIdx, len(g.code))
	}
	overElseIdx := len(g.code)
	g.emit(bpf.JumpAlways(0))
	if err := g.patch(falseIdx, len(g.code)); err != nil {
		return err
	}
	if err := g.genStmt(v.Else); err != nil {
		return err
	}
	return g.patch(overElseIdx, len(g.code))
}

func (g *funcGen) genWhile(v ast.While) error {
	loopStart := len(g.code)
	falseIdx, err := g.genCond(v.Cond)
	if err != nil {
		return err
	}
	g.pushLoop()
	if err := g.genStmt(v.Body); err != nil {
		return err
	}
	loop := g.currentLoop()
	for _, idx := range loop.continues {
		if err := g.patch(idx, loopStart); err != nil {
			return err
		}
	}
	backIdx := len(g.code)
	g.emit(bpf.JumpAlways(0))
	if err := g.patch(backIdx, loopStart); err != nil {
		return err
	}
	if err := g.patch(falseIdx, len(g.code)); err != nil {
		return err
	}
	for _, idx := range loop.breaks {
		if err := g.patch(idx, len(g.code)); err != nil {
			return err
		}
	}
	g.popLoop()
	return nil
}

func (g *funcGen) genFor(v ast.For) error {
	g.env.pushScope()
	defer g.env.popScope()

	if v.Init != nil {
		if err := g.genStmt(v.Init); err != nil {
			return err
		}
	}

	loopStart := len(g.code)
	haveCond := v.Cond != nil
	var falseIdx int
	var err error
	if haveCond {
		falseIdx, err = g.genCond(v.Cond)
		if err != nil {
			return err
		}
	}

	g.pushLoop()
	if err := g.genStmt(v.Body); err != nil {
		return err
	}
	loop := g.currentLoop()

	stepStart := len(g.code)
	for _, idx := range loop.continues {
		if err := g.patch(idx, stepStart); err != nil {
			return err
		}
	}
	if v.Step != nil {
		reg, _, err := g.genExpr(v.Step)
		if err != nil {
			return err
		}
		g.regs.Release(reg)
	}
	backIdx := len(g.code)
	g.emit(bpf.JumpAlways(0))
	if err := g.patch(backIdx, loopStart); err != nil {
		return err
	}
	if haveCond {
		if err := g.patch(falseIdx, len(g.code)); err != nil {
			return err
		}
	}
	for _, idx := range loop.breaks {
		if err := g.patch(idx, len(g.code)); err != nil {
			return err
		}
	}
	g.popLoop()
	return nil
}
