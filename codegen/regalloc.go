package codegen

import (
	"holybpf/bpf"
	"holybpf/token"
)

// RegPool is the 4-entry scratch register pool over R6-R9 (spec.md §4.4).
// Expression generation acquires a register per live intermediate value and
// releases it once consumed; nesting deeper than 4 live values is rejected
// as too-complex rather than spilled to memory — a deliberate scope
// reduction for this compiler, recorded in DESIGN.md.
type RegPool struct {
	free []bpf.Register
}

func newRegPool() *RegPool {
	return &RegPool{free: []bpf.Register{bpf.R9, bpf.R8, bpf.R7, bpf.R6}}
}

func (p *RegPool) Acquire(pos token.Position) (bpf.Register, error) {
	if len(p.free) == 0 {
		return 0, errTooComplex(pos, "expression needs more than 4 live temporaries")
	}
	r := p.free[len(p.free)-1]
	p.free = p.free[:len(p.free)-1]
	return r, nil
}

func (p *RegPool) Release(r bpf.Register) {
	p.free = append(p.free, r)
}
