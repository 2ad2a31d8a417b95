// Package codegen lowers a parsed ast.File into a single concatenated eBPF
// instruction stream: one self-contained code region per function, with
// inter-function calls resolved to pc-relative offsets once every
// function's position in the stream is fixed (spec.md §4.4).
package codegen

import (
	"holybpf/ast"
	"holybpf/bpf"
)

// Result is a compiled program: the full instruction stream plus the entry
// offset of every compiled function, keyed by name.
type Result struct {
	Instructions []bpf.Instruction
	FuncOffsets  map[string]int
}

// Compile lowers every class, #define, and function declaration in file.
// Class declarations only contribute field-offset metadata (already
// resolved onto their ast.Type by the parser); #defines are folded to
// constants available to every function; functions are compiled in
// declaration order.
func Compile(file *ast.File) (*Result, error) {
	defines := map[string]uint64{}
	funcs := map[string]*FuncSig{}
	var order []*ast.FuncDecl

	for _, item := range file.Items {
		switch v := item.(type) {
		case ast.DefineDecl:
			val, err := foldConst(v.Value, defines)
			if err != nil {
				return nil, err
			}
			defines[v.Name] = val
		case ast.FuncDecl:
			fn := v
			funcs[fn.Name] = &FuncSig{Name: fn.Name, Params: fn.Params, RetType: fn.RetType, EntryIndex: -1}
			order = append(order, &fn)
		}
	}

	var program []bpf.Instruction
	type callFixup struct {
		globalIndex int
		callee      string
	}
	var fixups []callFixup

	for _, fn := range order {
		env := newEnv(defines, funcs)
		fg := newFuncGen(env)

		for i, param := range fn.Params {
			slot, err := fg.frame.Alloc(param.Type, fn.Position)
			if err != nil {
				return nil, err
			}
			env.bind(param.Name, slot)
			fg.emit(bpf.StoreReg(sizeFor(param.Type), bpf.R10, slot.Offset, bpf.Register(int(bpf.R1)+i)))
		}

		for _, stmt := range fn.Body.Stmts {
			if err := fg.genStmt(stmt); err != nil {
				return nil, err
			}
		}
		fg.emit(bpf.ALU64Imm(bpf.Mov, bpf.R0, 0))
		fg.emit(bpf.Exit())

		base := len(program)
		funcs[fn.Name].EntryIndex = base
		for _, pc := range fg.pendingCalls {
			fixups = append(fixups, callFixup{globalIndex: base + pc.index, callee: pc.callee})
		}
		program = append(program, fg.code...)
	}

	for _, f := range fixups {
		sig, ok := funcs[f.callee]
		if !ok || sig.EntryIndex < 0 {
			return nil, errUnknownIdent(ast.Ident{Name: f.callee}.Pos(), f.callee)
		}
		off := sig.EntryIndex - f.globalIndex - 1
		if off < -2147483648 || off > 2147483647 {
			return nil, errJumpOutOfRange(ast.Ident{Name: f.callee}.Pos())
		}
		program[f.globalIndex].Imm = int32(off)
	}

	offsets := map[string]int{}
	for name, sig := range funcs {
		offsets[name] = sig.EntryIndex
	}
	return &Result{Instructions: program, FuncOffsets: offsets}, nil
}
