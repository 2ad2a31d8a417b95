package codegen

import "holybpf/ast"

// FuncSig is a function's declared signature plus its resolved location in
// the final concatenated instruction stream (set once every function has
// been compiled).
type FuncSig struct {
	Name       string
	Params     []ast.Param
	RetType    *ast.Type
	EntryIndex int
}

// Env is one compilation's symbol environment: #define constants and
// function signatures are global; locals are resolved through a stack of
// lexical scopes, innermost first, so a nested block's declaration can
// shadow an outer one without disturbing the outer binding (spec.md §4.2
// block scoping). Slots themselves are never reclaimed when a scope
// closes — only the name binding is (frame allocation stays monotonic).
type Env struct {
	Defines map[string]uint64
	Funcs   map[string]*FuncSig
	scopes  []map[string]*Slot
}

func newEnv(defines map[string]uint64, funcs map[string]*FuncSig) *Env {
	return &Env{Defines: defines, Funcs: funcs, scopes: []map[string]*Slot{{}}}
}

func (e *Env) pushScope() { e.scopes = append(e.scopes, map[string]*Slot{}) }
func (e *Env) popScope()  { e.scopes = e.scopes[:len(e.scopes)-1] }

func (e *Env) bind(name string, slot *Slot) {
	e.scopes[len(e.scopes)-1][name] = slot
}

func (e *Env) lookupVar(name string) (*Slot, bool) {
	for i := len(e.scopes) - 1; i >= 0; i-- {
		if slot, ok := e.scopes[i][name]; ok {
			return slot, true
		}
	}
	return nil, false
}
